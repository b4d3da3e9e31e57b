package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/rcliao/habit-agent/internal/model"
)

// AppendObservation durably persists one derived habit fact. Values must be
// positive; the extractor cannot produce non-positive values, but direct
// callers are validated the same way.
func (s *SQLiteStore) AppendObservation(ctx context.Context, p AppendObservationParams) (*model.Observation, error) {
	if strings.TrimSpace(p.UserID) == "" {
		return nil, fmt.Errorf("%w: user id is required", model.ErrValidation)
	}
	if !model.ValidObservationKinds[p.Kind] {
		return nil, fmt.Errorf("%w: unknown observation kind %q", model.ErrValidation, p.Kind)
	}
	if p.Value <= 0 {
		return nil, fmt.Errorf("%w: observation value must be positive, got %v", model.ErrValidation, p.Value)
	}
	if _, err := time.Parse(model.DateLayout, p.Date); err != nil {
		return nil, fmt.Errorf("%w: bad date %q", model.ErrValidation, p.Date)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o := &model.Observation{
		ID:         s.newID(),
		UserID:     p.UserID,
		Date:       p.Date,
		Kind:       p.Kind,
		Value:      p.Value,
		SourceText: p.SourceText,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO observations (id, user_id, date, kind, value, source_text, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.UserID, o.Date, string(o.Kind), o.Value, o.SourceText,
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert observation: %w", err)
	}

	return o, nil
}

// ListObservations returns the user's observations ordered by date then
// append order. Since filters to dates >= the floor; it is how aggregate
// views apply age-based retention without touching raw history.
func (s *SQLiteStore) ListObservations(ctx context.Context, p ObservationParams) ([]model.Observation, error) {
	where := []string{"user_id = ?"}
	args := []interface{}{p.UserID}

	if p.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(p.Kind))
	}
	if p.Since != "" {
		where = append(where, "date >= ?")
		args = append(args, p.Since)
	}

	query := `SELECT id, user_id, date, kind, value, source_text
	          FROM observations WHERE ` + strings.Join(where, " AND ") + ` ORDER BY date, seq`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Warn("observation query failed, returning empty", "user", p.UserID, "err", err)
		return []model.Observation{}, nil
	}
	defer rows.Close()

	observations := []model.Observation{}
	for rows.Next() {
		var o model.Observation
		var kind string
		if err := rows.Scan(&o.ID, &o.UserID, &o.Date, &kind, &o.Value, &o.SourceText); err != nil {
			log.Warn("skipping malformed observation row", "user", p.UserID, "err", err)
			continue
		}
		o.Kind = model.ObservationKind(kind)
		observations = append(observations, o)
	}
	return observations, nil
}

// PruneObservations hard-deletes observations older than the given date
// across all users. It is an explicit, opt-in retention pass; aggregate
// views already exclude old entries via ObservationParams.Since.
func (s *SQLiteStore) PruneObservations(ctx context.Context, olderThan string) (int, error) {
	if _, err := time.Parse(model.DateLayout, olderThan); err != nil {
		return 0, fmt.Errorf("%w: bad date %q", model.ErrValidation, olderThan)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM observations WHERE date < ?`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("prune observations: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

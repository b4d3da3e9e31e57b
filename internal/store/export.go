package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rcliao/habit-agent/internal/model"
)

// Export is a portable dump of one user's partition. Message order matches
// the snapshot order; importing preserves it.
type Export struct {
	UserID       string              `json:"user_id"`
	Messages     []model.Message     `json:"messages"`
	Observations []model.Observation `json:"observations"`
}

// ExportUser dumps the user's full partition.
func (s *SQLiteStore) ExportUser(ctx context.Context, userID string) (*Export, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", model.ErrValidation)
	}

	messages, err := s.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	observations, err := s.ListObservations(ctx, ObservationParams{UserID: userID})
	if err != nil {
		return nil, err
	}

	return &Export{UserID: userID, Messages: messages, Observations: observations}, nil
}

// Import restores a partition dump, preserving ids, timestamps, and order.
// This is the migration path; normal appends always assign fresh ids and
// timestamps. Rows whose id already exists are skipped. Every row is held to
// the same rules as the append paths, so a hand-edited dump cannot plant
// data a normal write would have rejected.
func (s *SQLiteStore) Import(ctx context.Context, e *Export) (int, error) {
	for _, m := range e.Messages {
		if err := validateImportMessage(m); err != nil {
			return 0, err
		}
	}
	for _, o := range e.Observations {
		if err := validateImportObservation(o); err != nil {
			return 0, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	imported := 0
	for _, m := range e.Messages {
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO messages (id, user_id, role, category, content, timestamp)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			m.ID, m.UserID, string(m.Role), string(m.Category), m.Content,
			m.Timestamp.Format(time.RFC3339Nano))
		if err != nil {
			return imported, fmt.Errorf("import message: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			imported++
		}
	}
	for _, o := range e.Observations {
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO observations (id, user_id, date, kind, value, source_text, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			o.ID, o.UserID, o.Date, string(o.Kind), o.Value, o.SourceText,
			time.Now().UTC().Format(time.RFC3339Nano))
		if err != nil {
			return imported, fmt.Errorf("import observation: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			imported++
		}
	}

	if err := tx.Commit(); err != nil {
		return imported, err
	}
	return imported, nil
}

func validateImportMessage(m model.Message) error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("%w: message id is required", model.ErrValidation)
	}
	if strings.TrimSpace(m.UserID) == "" {
		return fmt.Errorf("%w: message %s: user id is required", model.ErrValidation, m.ID)
	}
	if !model.ValidRoles[m.Role] {
		return fmt.Errorf("%w: message %s: unknown role %q", model.ErrValidation, m.ID, m.Role)
	}
	if !model.ValidCategories[m.Category] {
		return fmt.Errorf("%w: message %s: unknown category %q", model.ErrValidation, m.ID, m.Category)
	}
	if strings.TrimSpace(m.Content) == "" {
		return fmt.Errorf("%w: message %s: content is required", model.ErrValidation, m.ID)
	}
	if m.Timestamp.IsZero() {
		return fmt.Errorf("%w: message %s: timestamp is required", model.ErrValidation, m.ID)
	}
	return nil
}

func validateImportObservation(o model.Observation) error {
	if strings.TrimSpace(o.ID) == "" {
		return fmt.Errorf("%w: observation id is required", model.ErrValidation)
	}
	if strings.TrimSpace(o.UserID) == "" {
		return fmt.Errorf("%w: observation %s: user id is required", model.ErrValidation, o.ID)
	}
	if !model.ValidObservationKinds[o.Kind] {
		return fmt.Errorf("%w: observation %s: unknown kind %q", model.ErrValidation, o.ID, o.Kind)
	}
	if o.Value <= 0 {
		return fmt.Errorf("%w: observation %s: value must be positive, got %v", model.ErrValidation, o.ID, o.Value)
	}
	if _, err := time.Parse(model.DateLayout, o.Date); err != nil {
		return fmt.Errorf("%w: observation %s: bad date %q", model.ErrValidation, o.ID, o.Date)
	}
	return nil
}

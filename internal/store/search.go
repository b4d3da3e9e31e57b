package store

import (
	"context"

	"github.com/rcliao/habit-agent/internal/model"
)

// SearchParams holds parameters for searching a user's message log.
type SearchParams struct {
	UserID string
	Query  string
	Limit  int
}

// Search finds the user's messages whose content matches the query
// substring, newest first.
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]model.Message, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, role, category, content, timestamp
		 FROM messages WHERE user_id = ? AND content LIKE ?
		 ORDER BY seq DESC LIMIT ?`,
		p.UserID, "%"+p.Query+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			continue
		}
		results = append(results, m)
	}
	return results, nil
}

// Users returns every user id present in the store, sorted.
func (s *SQLiteStore) Users(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id FROM messages
		UNION
		SELECT user_id FROM observations
		ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

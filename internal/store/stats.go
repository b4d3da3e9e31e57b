package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath            string      `json:"db_path"`
	DBSizeBytes       int64       `json:"db_size_bytes"`
	TotalMessages     int         `json:"total_messages"`
	TotalObservations int         `json:"total_observations"`
	Users             []UserStats `json:"users"`
}

// UserStats holds per-user counts.
type UserStats struct {
	UserID       string `json:"user_id"`
	Messages     int    `json:"messages"`
	Observations int    `json:"observations"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{DBPath: s.path}

	if info, err := os.Stat(s.path); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&st.TotalMessages)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM observations`).Scan(&st.TotalObservations)

	rows, err := s.db.QueryContext(ctx, `
		SELECT u.user_id,
		       (SELECT COUNT(*) FROM messages m WHERE m.user_id = u.user_id),
		       (SELECT COUNT(*) FROM observations o WHERE o.user_id = u.user_id)
		FROM (SELECT user_id FROM messages UNION SELECT user_id FROM observations) u
		ORDER BY u.user_id`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var u UserStats
		rows.Scan(&u.UserID, &u.Messages, &u.Observations)
		st.Users = append(st.Users, u)
	}

	return st, nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/habit-agent/internal/model"
)

// SQLiteStore implements Store using SQLite. Each user's partition is the
// set of rows carrying their user_id; the seq column is the append order.
type SQLiteStore struct {
	db      *sql.DB
	path    string
	entropy *rand.Rand

	// Writes are serialized: Erase rewrites a whole partition, and an
	// append racing it must not resurrect deleted rows.
	mu sync.Mutex

	// recovered is set when the store reinitialized itself after an
	// unreadable database file. HealthCheck surfaces it.
	recovered bool
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
// An unreadable or corrupt file is quarantined aside and the store starts
// fresh and empty: availability is preferred over failing startup.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	s, err := openSQLite(dbPath)
	if err == nil {
		return s, nil
	}

	log.Warn("store unreadable, reinitializing empty", "path", dbPath, "err", err)
	quarantine := fmt.Sprintf("%s.corrupt.%d", dbPath, time.Now().Unix())
	if renameErr := os.Rename(dbPath, quarantine); renameErr != nil {
		return nil, fmt.Errorf("quarantine corrupt db: %w", renameErr)
	}

	s, err = openSQLite(dbPath)
	if err != nil {
		return nil, fmt.Errorf("reinitialize store: %w", err)
	}
	s.recovered = true
	return s, nil
}

func openSQLite(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		path:    dbPath,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		seq       INTEGER PRIMARY KEY AUTOINCREMENT,
		id        TEXT NOT NULL UNIQUE,
		user_id   TEXT NOT NULL,
		role      TEXT NOT NULL,
		category  TEXT NOT NULL DEFAULT 'general',
		content   TEXT NOT NULL,
		timestamp TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_user ON messages(user_id, seq);
	CREATE INDEX IF NOT EXISTS idx_messages_user_ts ON messages(user_id, timestamp);

	CREATE TABLE IF NOT EXISTS observations (
		seq         INTEGER PRIMARY KEY AUTOINCREMENT,
		id          TEXT NOT NULL UNIQUE,
		user_id     TEXT NOT NULL,
		date        TEXT NOT NULL,
		kind        TEXT NOT NULL,
		value       REAL NOT NULL,
		source_text TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_observations_user ON observations(user_id, date);
	CREATE INDEX IF NOT EXISTS idx_observations_kind ON observations(user_id, kind, date);
	`
	_, err := s.db.Exec(schema)
	return err
}

// AppendMessage durably persists one turn. The timestamp is assigned here,
// in UTC, and never changes afterward.
func (s *SQLiteStore) AppendMessage(ctx context.Context, p AppendMessageParams) (*model.Message, error) {
	if strings.TrimSpace(p.UserID) == "" {
		return nil, fmt.Errorf("%w: user id is required", model.ErrValidation)
	}
	if !model.ValidRoles[p.Role] {
		return nil, fmt.Errorf("%w: unknown role %q", model.ErrValidation, p.Role)
	}
	category := p.Category
	if category == "" {
		category = model.CategoryGeneral
	}
	if !model.ValidCategories[category] {
		return nil, fmt.Errorf("%w: unknown category %q", model.ErrValidation, category)
	}
	if strings.TrimSpace(p.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", model.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m := &model.Message{
		ID:        s.newID(),
		UserID:    p.UserID,
		Role:      p.Role,
		Category:  category,
		Content:   p.Content,
		Timestamp: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, user_id, role, category, content, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.UserID, string(m.Role), string(m.Category), m.Content,
		m.Timestamp.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	return m, nil
}

// Snapshot returns the user's message log in append order, oldest first.
// Read-path corruption degrades instead of failing the caller: malformed
// rows are logged and skipped, and a broken query yields an empty result.
func (s *SQLiteStore) Snapshot(ctx context.Context, userID string) ([]model.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, role, category, content, timestamp
		 FROM messages WHERE user_id = ? ORDER BY seq`, userID)
	if err != nil {
		log.Warn("snapshot query failed, returning empty", "user", userID, "err", err)
		return []model.Message{}, nil
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			log.Warn("skipping malformed message row", "user", userID, "err", err)
			continue
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		log.Warn("snapshot read truncated", "user", userID, "err", err)
	}
	return messages, nil
}

// Erase removes all messages and observations for the user in one
// transaction. Other users' partitions are untouched. Erasing a user with
// no data is a no-op.
func (s *SQLiteStore) Erase(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id is required", model.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("erase messages: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM observations WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("erase observations: %w", err)
	}

	return tx.Commit()
}

// Health reports store integrity.
type Health struct {
	OK      bool   `json:"ok"`
	Corrupt string `json:"corrupt,omitempty"`
}

// HealthCheck detects structural inconsistency without throwing from normal
// read paths. It never returns an error; problems land in Corrupt.
func (s *SQLiteStore) HealthCheck(ctx context.Context) *Health {
	var problems []string

	var integrity string
	if err := s.db.QueryRowContext(ctx, `PRAGMA integrity_check`).Scan(&integrity); err != nil {
		problems = append(problems, fmt.Sprintf("integrity check failed: %v", err))
	} else if integrity != "ok" {
		problems = append(problems, "integrity check: "+integrity)
	}

	if s.recovered {
		problems = append(problems, "store was reinitialized after an unreadable database file")
	}

	var blank int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE user_id = '' OR timestamp = ''`).Scan(&blank); err == nil && blank > 0 {
		problems = append(problems, fmt.Sprintf("%d message rows missing user or timestamp", blank))
	}

	if n := s.countMalformedTimestamps(ctx); n > 0 {
		problems = append(problems, fmt.Sprintf("%d message rows with unparseable timestamps", n))
	}

	if len(problems) == 0 {
		return &Health{OK: true}
	}
	return &Health{Corrupt: strings.Join(problems, "; ")}
}

func (s *SQLiteStore) countMalformedTimestamps(ctx context.Context) int {
	rows, err := s.db.QueryContext(ctx, `SELECT timestamp FROM messages`)
	if err != nil {
		return 0
	}
	defer rows.Close()

	malformed := 0
	for rows.Next() {
		var ts string
		if rows.Scan(&ts) != nil {
			malformed++
			continue
		}
		if _, err := time.Parse(time.RFC3339Nano, ts); err != nil {
			malformed++
		}
	}
	return malformed
}

// Close closes the store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMessage(row scanner) (model.Message, error) {
	var m model.Message
	var role, category, timestamp string

	if err := row.Scan(&m.ID, &m.UserID, &role, &category, &m.Content, &timestamp); err != nil {
		return m, err
	}

	ts, err := time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		return m, fmt.Errorf("parse timestamp %q: %w", timestamp, err)
	}
	m.Timestamp = ts
	m.Role = model.Role(role)
	m.Category = model.Category(category)
	return m, nil
}

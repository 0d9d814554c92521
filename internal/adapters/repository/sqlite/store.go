// Package sqlite persists meets in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/liftboard/internal/domain/model"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// ErrPathRequired is returned by Open for an empty path.
var ErrPathRequired = errors.New("storage path is required")

// Store persists meets, athletes and saved history.
type Store struct {
	db *sql.DB
}

// Open opens the database at path, configures pragmas and applies the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrPathRequired
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load reads all meets in stored order and all history entries.
func (s *Store) Load(ctx context.Context) ([]model.Meet, []model.HistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	meets, err := s.loadMeets(ctx)
	if err != nil {
		return nil, nil, err
	}
	history, err := s.loadHistory(ctx)
	if err != nil {
		return nil, nil, err
	}
	return meets, history, nil
}

func (s *Store) loadMeets(ctx context.Context) ([]model.Meet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, date, location FROM meets ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("query meets: %w", err)
	}
	defer rows.Close()

	var (
		meets []model.Meet
		index = make(map[string]int)
	)
	for rows.Next() {
		var m model.Meet
		if err := rows.Scan(&m.ID, &m.Name, &m.Date, &m.Location); err != nil {
			return nil, fmt.Errorf("scan meet: %w", err)
		}
		index[m.ID] = len(meets)
		meets = append(meets, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meets: %w", err)
	}

	arows, err := s.db.QueryContext(ctx,
		`SELECT meet_id, id, name, sex, category, bodyweight, weight_class, attempts
		 FROM athletes ORDER BY meet_id, position`)
	if err != nil {
		return nil, fmt.Errorf("query athletes: %w", err)
	}
	defer arows.Close()

	for arows.Next() {
		var (
			meetID   string
			a        model.Athlete
			bw       int64
			attempts string
		)
		if err := arows.Scan(&meetID, &a.ID, &a.Name, &a.Sex, &a.Category, &bw, &a.WeightClass, &attempts); err != nil {
			return nil, fmt.Errorf("scan athlete: %w", err)
		}
		a.Bodyweight = model.Weight(bw)
		if err := json.Unmarshal([]byte(attempts), &a.Attempts); err != nil {
			return nil, fmt.Errorf("decode attempts for %s: %w", a.ID, err)
		}
		i, ok := index[meetID]
		if !ok {
			continue
		}
		meets[i].Athletes = append(meets[i].Athletes, a)
	}
	if err := arows.Err(); err != nil {
		return nil, fmt.Errorf("iterate athletes: %w", err)
	}
	return meets, nil
}

func (s *Store) loadHistory(ctx context.Context) ([]model.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM history ORDER BY saved_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []model.HistoryEntry
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		var h model.HistoryEntry
		if err := json.Unmarshal([]byte(payload), &h); err != nil {
			return nil, fmt.Errorf("decode history: %w", err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return out, nil
}

// SaveMeet writes the meet and replaces its roster.
func (s *Store) SaveMeet(ctx context.Context, m model.Meet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO meets (id, position, name, date, location)
		 VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM meets), ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   date = excluded.date,
		   location = excluded.location`,
		m.ID, m.Name, m.Date, m.Location,
	)
	if err != nil {
		return fmt.Errorf("upsert meet: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM athletes WHERE meet_id = ?`, m.ID); err != nil {
		return fmt.Errorf("clear athletes: %w", err)
	}
	for i, a := range m.Athletes {
		attempts, err := json.Marshal(a.Attempts)
		if err != nil {
			return fmt.Errorf("encode attempts for %s: %w", a.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO athletes (meet_id, id, position, name, sex, category, bodyweight, weight_class, attempts)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, a.ID, i, a.Name, string(a.Sex), string(a.Category), int64(a.Bodyweight), a.WeightClass, string(attempts),
		)
		if err != nil {
			return fmt.Errorf("insert athlete %s: %w", a.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// DeleteMeet removes a meet. Athletes and history cascade.
func (s *Store) DeleteMeet(ctx context.Context, meetID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM meets WHERE id = ?`, meetID); err != nil {
		return fmt.Errorf("delete meet: %w", err)
	}
	return nil
}

// SaveHistory stores the meet's history entry, replacing any previous one.
func (s *Store) SaveHistory(ctx context.Context, h model.HistoryEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	savedAt := h.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO history (meet_id, saved_at, payload) VALUES (?, ?, ?)
		 ON CONFLICT(meet_id) DO UPDATE SET saved_at = excluded.saved_at, payload = excluded.payload`,
		h.MeetID, savedAt.UTC().UnixMilli(), string(payload),
	)
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

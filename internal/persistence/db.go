// Package persistence provides session storage: a SQLite database and a
// directory of JSON documents. Both store the roster as a full snapshot and
// the round history append-only.
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite connection for session persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One writer; sessions are never saved concurrently.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS players (
		session_id INTEGER NOT NULL,
		id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		district TEXT NOT NULL,
		hp INTEGER NOT NULL,
		alive INTEGER NOT NULL,
		PRIMARY KEY (session_id, id)
	);

	CREATE TABLE IF NOT EXISTS rounds (
		id TEXT PRIMARY KEY,
		session_id INTEGER NOT NULL,
		seq INTEGER NOT NULL,
		lines_json TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		UNIQUE (session_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_players_session ON players(session_id, position);
	CREATE INDEX IF NOT EXISTS idx_rounds_session ON rounds(session_id, seq);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Save writes a session document in one transaction: the roster is replaced
// and history batches not yet stored are appended.
func (db *DB) Save(ctx context.Context, doc Document) error {
	if err := db.save(ctx, doc); err != nil {
		return writeError(doc.ID, err)
	}
	slog.Info("session saved", "session", doc.ID, "players", len(doc.Players), "rounds", len(doc.History))
	return nil
}

func (db *DB) save(ctx context.Context, doc Document) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (id, updated_at) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at`,
		doc.ID, now,
	); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	var stored int
	if err := tx.GetContext(ctx, &stored, "SELECT COUNT(*) FROM rounds WHERE session_id = ?", doc.ID); err != nil {
		return fmt.Errorf("count rounds: %w", err)
	}
	if stored > len(doc.History) {
		return fmt.Errorf("%w: %d rounds stored, document has %d", ErrHistoryRewrite, stored, len(doc.History))
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM players WHERE session_id = ?", doc.ID); err != nil {
		return err
	}

	stmt, err := tx.PreparexContext(ctx, `INSERT INTO players
		(session_id, id, position, name, district, hp, alive)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, p := range doc.Players {
		alive := 0
		if p.Alive {
			alive = 1
		}
		if _, err := stmt.ExecContext(ctx, doc.ID, p.ID, i, p.Name, p.District, p.HP, alive); err != nil {
			return fmt.Errorf("insert player %d: %w", p.ID, err)
		}
	}

	for seq := stored; seq < len(doc.History); seq++ {
		lines := doc.History[seq]
		if lines == nil {
			lines = []string{}
		}
		linesJSON, err := json.Marshal(lines)
		if err != nil {
			return fmt.Errorf("marshal round %d: %w", seq, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO rounds (id, session_id, seq, lines_json, created_at) VALUES (?, ?, ?, ?, ?)",
			uuid.NewString(), doc.ID, seq, string(linesJSON), now,
		); err != nil {
			return fmt.Errorf("insert round %d: %w", seq, err)
		}
	}

	return tx.Commit()
}

// Load reads a session document. An unknown session yields an empty
// document with only the ID set.
func (db *DB) Load(ctx context.Context, id int) (Document, error) {
	doc := Document{ID: id}

	var exists int
	err := db.conn.GetContext(ctx, &exists, "SELECT 1 FROM sessions WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return doc, nil
	}
	if err != nil {
		return Document{}, fmt.Errorf("load session %d: %w", id, err)
	}

	if err := db.conn.SelectContext(ctx, &doc.Players,
		"SELECT id, name, district, hp, alive FROM players WHERE session_id = ? ORDER BY position",
		id,
	); err != nil {
		return Document{}, fmt.Errorf("load players: %w", err)
	}

	var rows []struct {
		Seq   int    `db:"seq"`
		Lines string `db:"lines_json"`
	}
	if err := db.conn.SelectContext(ctx, &rows,
		"SELECT seq, lines_json FROM rounds WHERE session_id = ? ORDER BY seq",
		id,
	); err != nil {
		return Document{}, fmt.Errorf("load rounds: %w", err)
	}
	for _, r := range rows {
		var lines []string
		if err := json.Unmarshal([]byte(r.Lines), &lines); err != nil {
			return Document{}, fmt.Errorf("decode round %d: %w", r.Seq, err)
		}
		doc.History = append(doc.History, lines)
	}
	if len(doc.History) > 0 {
		doc.Latest = doc.History[len(doc.History)-1]
	}

	return doc, nil
}

// Sessions lists the IDs of every stored session.
func (db *DB) Sessions(ctx context.Context) ([]int, error) {
	var ids []int
	err := db.conn.SelectContext(ctx, &ids, "SELECT id FROM sessions ORDER BY id")
	return ids, err
}

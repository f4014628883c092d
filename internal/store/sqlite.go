package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"gamedocs.dev/interview-wizard/internal/wizard"
)

// settingsKey is the key-value slot holding the generation Settings blob.
const settingsKey = "generation_settings"

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS sessions (
        id TEXT PRIMARY KEY, -- UUID
        title TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS turns (
        session_id TEXT NOT NULL,
        position INTEGER NOT NULL,
        question TEXT NOT NULL,
        answer TEXT, -- NULL while the turn is open
        tags_json TEXT NOT NULL DEFAULT '[]',
        liked BOOLEAN NOT NULL DEFAULT FALSE,
        PRIMARY KEY (session_id, position),
        FOREIGN KEY (session_id) REFERENCES sessions (id)
    );

    CREATE TABLE IF NOT EXISTS settings (
        key TEXT PRIMARY KEY,
        value_json TEXT NOT NULL
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// Session methods

func (s *SQLiteStore) CreateSession(title *string) (*Session, error) {
	sessionID := uuid.NewString()
	stmt, err := s.db.Prepare("INSERT INTO sessions (id, title, created_at) VALUES (?, ?, ?)")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare session insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	if _, err = stmt.Exec(sessionID, title, now); err != nil {
		return nil, fmt.Errorf("failed to execute session insert: %w", err)
	}
	return &Session{ID: sessionID, Title: title, CreatedAt: now}, nil
}

func (s *SQLiteStore) GetSession(sessionID string) (*Session, error) {
	var session Session
	var title sql.NullString
	err := s.db.QueryRow("SELECT id, title, created_at FROM sessions WHERE id = ?", sessionID).
		Scan(&session.ID, &title, &session.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if title.Valid {
		session.Title = &title.String
	}
	return &session, nil
}

func (s *SQLiteStore) ListSessions() ([]Session, error) {
	rows, err := s.db.Query("SELECT id, title, created_at FROM sessions ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var session Session
		var title sql.NullString
		if err := rows.Scan(&session.ID, &title, &session.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		if title.Valid {
			session.Title = &title.String
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (s *SQLiteStore) UpdateSessionTitle(sessionID, title string) error {
	res, err := s.db.Exec("UPDATE sessions SET title = ? WHERE id = ?", title, sessionID)
	if err != nil {
		return fmt.Errorf("failed to update session title: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("session not found, title not updated")
	}
	return nil
}

// Turn methods. The ledger in memory is the working copy; every mutation
// is written through so sessions survive a restart.

func (s *SQLiteStore) InsertTurn(sessionID string, position int, question string) error {
	stmt, err := s.db.Prepare("INSERT INTO turns (session_id, position, question) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare turn insert: %w", err)
	}
	defer stmt.Close()

	if _, err = stmt.Exec(sessionID, position, question); err != nil {
		return fmt.Errorf("failed to execute turn insert: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SetTurnAnswer(sessionID string, position int, answer string) error {
	return s.updateTurn(sessionID, position, "UPDATE turns SET answer = ? WHERE session_id = ? AND position = ?", answer)
}

func (s *SQLiteStore) SetTurnTags(sessionID string, position int, tags []string) error {
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}
	return s.updateTurn(sessionID, position, "UPDATE turns SET tags_json = ? WHERE session_id = ? AND position = ?", string(tagsJSON))
}

func (s *SQLiteStore) SetTurnLiked(sessionID string, position int, liked bool) error {
	return s.updateTurn(sessionID, position, "UPDATE turns SET liked = ? WHERE session_id = ? AND position = ?", liked)
}

func (s *SQLiteStore) updateTurn(sessionID string, position int, query string, value any) error {
	res, err := s.db.Exec(query, value, sessionID, position)
	if err != nil {
		return fmt.Errorf("failed to update turn: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("turn not found, not updated")
	}
	return nil
}

// GetTurns returns the session's turns in conversation order, ready to
// rebuild a ledger via wizard.LedgerFromTurns.
func (s *SQLiteStore) GetTurns(sessionID string) ([]wizard.Turn, error) {
	rows, err := s.db.Query(
		"SELECT question, answer, tags_json, liked FROM turns WHERE session_id = ? ORDER BY position ASC",
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []wizard.Turn
	for rows.Next() {
		var turn wizard.Turn
		var answer sql.NullString
		var tagsJSON string
		if err := rows.Scan(&turn.Question, &answer, &tagsJSON, &turn.Liked); err != nil {
			return nil, fmt.Errorf("failed to scan turn row: %w", err)
		}
		if answer.Valid {
			turn.Answer = answer.String
			turn.Answered = true
		}
		if err := json.Unmarshal([]byte(tagsJSON), &turn.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags for session %s: %w", sessionID, err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

// Settings blob. The settings table is a plain key-value store of JSON
// blobs; the generation Settings live under a single key.

func (s *SQLiteStore) GetSettings() (*wizard.Settings, error) {
	var valueJSON string
	err := s.db.QueryRow("SELECT value_json FROM settings WHERE key = ?", settingsKey).Scan(&valueJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not set yet; caller seeds defaults
		}
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}

	var settings wizard.Settings
	if err := json.Unmarshal([]byte(valueJSON), &settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings blob: %w", err)
	}
	return &settings, nil
}

func (s *SQLiteStore) PutSettings(settings wizard.Settings) error {
	valueJSON, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	_, err = s.db.Exec(
		"INSERT INTO settings (key, value_json) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value_json = excluded.value_json",
		settingsKey, string(valueJSON))
	if err != nil {
		return fmt.Errorf("failed to upsert settings: %w", err)
	}
	return nil
}

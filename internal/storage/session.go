package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	SessionActive    = "active"
	SessionCompleted = "completed"
)

// Session is one run of the command loop against a project.
type Session struct {
	ID        string
	Project   string
	Status    string
	LineCount int
	StartedAt time.Time
	EndedAt   time.Time
}

// SessionLine is one dispatched input line. Error is empty on success.
type SessionLine struct {
	Line      string `db:"line"`
	Ref       string `db:"ref"`
	Error     string `db:"error"`
	CreatedAt string `db:"created_at"`
}

type sessionRow struct {
	ID        string         `db:"id"`
	Project   string         `db:"project"`
	Status    string         `db:"status"`
	StartedAt string         `db:"started_at"`
	EndedAt   sql.NullString `db:"ended_at"`
	LineCount int            `db:"line_count"`
}

func (r sessionRow) session() *Session {
	s := &Session{
		ID:        r.ID,
		Project:   r.Project,
		Status:    r.Status,
		LineCount: r.LineCount,
	}
	s.StartedAt, _ = time.Parse(time.RFC3339, r.StartedAt)
	if r.EndedAt.Valid {
		s.EndedAt, _ = time.Parse(time.RFC3339, r.EndedAt.String)
	}
	return s
}

// StartSession opens a new active session for project.
func (s *Store) StartSession(ctx context.Context, project string) (*Session, error) {
	now := time.Now().UTC()
	session := &Session{
		ID:        uuid.NewString(),
		Project:   project,
		Status:    SessionActive,
		StartedAt: now.Truncate(time.Second),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, project, status, started_at) VALUES (?, ?, ?, ?)`,
		session.ID, project, SessionActive, now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	return session, nil
}

// RecordLine appends a dispatched line to the session. cmdErr is the
// command's failure, if any.
func (s *Store) RecordLine(ctx context.Context, sessionID, line, ref string, cmdErr error) error {
	var msg sql.NullString
	if cmdErr != nil {
		msg = sql.NullString{String: cmdErr.Error(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_lines (session_id, line, ref, error, created_at) VALUES (?, ?, ?, ?, ?)`,
		sessionID, line, ref, msg, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to record line: %w", err)
	}
	return nil
}

// CompleteSession marks the session completed.
func (s *Store) CompleteSession(ctx context.Context, sessionID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET status = ?, ended_at = ? WHERE id = ?`,
		SessionCompleted, time.Now().UTC().Format(time.RFC3339), sessionID)
	if err != nil {
		return fmt.Errorf("failed to complete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	return nil
}

const sessionQuery = `
	SELECT s.id, s.project, s.status, s.started_at, s.ended_at,
	       (SELECT COUNT(*) FROM session_lines l WHERE l.session_id = s.id) AS line_count
	FROM sessions s`

// GetSession returns the session with the given id.
func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row, sessionQuery+` WHERE s.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return row.session(), nil
}

// ListSessions returns the newest sessions first. Empty project or status
// match everything.
func (s *Store) ListSessions(ctx context.Context, project, status string, limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []sessionRow
	err := s.db.SelectContext(ctx, &rows, sessionQuery+`
		WHERE (? = '' OR s.project = ?) AND (? = '' OR s.status = ?)
		ORDER BY s.started_at DESC, s.rowid DESC
		LIMIT ?`,
		project, project, status, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := make([]*Session, 0, len(rows))
	for _, r := range rows {
		sessions = append(sessions, r.session())
	}
	return sessions, nil
}

// SessionLines returns the lines of a session in the order they ran.
func (s *Store) SessionLines(ctx context.Context, sessionID string) ([]SessionLine, error) {
	var lines []SessionLine
	err := s.db.SelectContext(ctx, &lines, `
		SELECT line, ref, COALESCE(error, '') AS error, created_at
		FROM session_lines
		WHERE session_id = ?
		ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session lines: %w", err)
	}
	return lines, nil
}

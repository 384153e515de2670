package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mfenderov/chrono/internal/project"
	"github.com/mfenderov/chrono/internal/snapshot"
)

// BackupSuffix is appended to a project name to form its backup's name.
const BackupSuffix = "_backup"

// ProjectInfo describes a stored project.
type ProjectInfo struct {
	Name    string `db:"name"`
	Path    string `db:"path"`
	SavedAt string `db:"saved_at"`
	Days    int    `db:"days"`
}

type noteRow struct {
	ID        string `db:"id"`
	Text      string `db:"text"`
	CreatedAt string `db:"created_at"`
}

type dayRow struct {
	Date        string         `db:"date"`
	SleepStart  sql.NullString `db:"sleep_start"`
	SleepEnd    sql.NullString `db:"sleep_end"`
	SleepPhases string         `db:"sleep_phases"`
}

type eventRow struct {
	Date  string `db:"date"`
	Start string `db:"start_time"`
	End   string `db:"end_time"`
	What  string `db:"what"`
	Tags  string `db:"tags"`
}

type silentRow struct {
	Date string `db:"date"`
	At   string `db:"at_time"`
	What string `db:"what"`
	Tags string `db:"tags"`
}

type sportRow struct {
	Date    string `db:"date"`
	Kind    string `db:"kind"`
	Payload string `db:"payload"`
}

type functionRow struct {
	Date  string  `db:"date"`
	Name  string  `db:"name"`
	Value float64 `db:"value"`
}

var projectTables = []string{"functions", "sport", "events", "silent_events", "notes", "days", "projects"}

// SaveProject replaces the stored rows of snap.Name with snap in one transaction.
func (s *Store) SaveProject(ctx context.Context, snap *snapshot.Project) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := deleteProject(ctx, tx, snap.Name); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO projects (name, path, saved_at) VALUES (?, ?, ?)",
		snap.Name, snap.Path, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}

	for i, n := range snap.Todo {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO notes (project, seq, id, text, created_at) VALUES (?, ?, ?, ?, ?)",
			snap.Name, i, n.ID, n.Text, n.Datetime,
		); err != nil {
			return fmt.Errorf("failed to insert note: %w", err)
		}
	}

	for key, d := range snap.Days {
		if err := insertDay(ctx, tx, snap.Name, key, d); err != nil {
			return fmt.Errorf("failed to insert day %s: %w", key, err)
		}
	}

	for i, se := range snap.SEvents {
		tags, err := json.Marshal(se.Tags)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO silent_events (project, seq, date, at_time, what, tags) VALUES (?, ?, ?, ?, ?, ?)",
			snap.Name, i, se.TDate, se.Start, se.What, string(tags),
		); err != nil {
			return fmt.Errorf("failed to insert silent event: %w", err)
		}
	}

	return tx.Commit()
}

func insertDay(ctx context.Context, tx *sqlx.Tx, name, key string, d snapshot.Day) error {
	var start, end sql.NullString
	phases := ""
	if len(d.Sleep) >= 2 {
		start = sql.NullString{String: d.Sleep[0], Valid: true}
		end = sql.NullString{String: d.Sleep[1], Valid: true}
		if len(d.Sleep) > 2 {
			phases = d.Sleep[2]
		}
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO days (project, date, sleep_start, sleep_end, sleep_phases) VALUES (?, ?, ?, ?, ?)",
		name, key, start, end, phases,
	); err != nil {
		return err
	}

	for i, e := range d.Events {
		tags, err := json.Marshal(e.Tags)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO events (project, date, seq, start_time, end_time, what, tags) VALUES (?, ?, ?, ?, ?, ?, ?)",
			name, key, i, e.Start, e.End, e.What, string(tags),
		); err != nil {
			return err
		}
	}

	entries := []struct {
		kind  string
		items any
		n     int
	}{
		{project.KindRuns, d.Sport.Runs, len(d.Sport.Runs)},
		{project.KindPushUps, d.Sport.PushUps, len(d.Sport.PushUps)},
		{project.KindPlanks, d.Sport.Planks, len(d.Sport.Planks)},
		{project.KindSitUps, d.Sport.SitUps, len(d.Sport.SitUps)},
	}
	for _, entry := range entries {
		if entry.n == 0 {
			continue
		}
		var payloads []json.RawMessage
		raw, err := json.Marshal(entry.items)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, &payloads); err != nil {
			return err
		}
		for i, p := range payloads {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO sport (project, date, kind, seq, payload) VALUES (?, ?, ?, ?, ?)",
				name, key, entry.kind, i, string(p),
			); err != nil {
				return err
			}
		}
	}

	for fname, v := range d.Functions {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO functions (project, date, name, value) VALUES (?, ?, ?, ?)",
			name, key, fname, v,
		); err != nil {
			return err
		}
	}
	return nil
}

func deleteProject(ctx context.Context, tx *sqlx.Tx, name string) error {
	for _, table := range projectTables {
		col := "project"
		if table == "projects" {
			col = "name"
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE "+col+" = ?", name); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// LoadProject reads the snapshot stored under name.
func (s *Store) LoadProject(ctx context.Context, name string) (*snapshot.Project, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	snap := &snapshot.Project{Name: name, Days: make(map[string]snapshot.Day)}
	err = tx.QueryRowxContext(ctx, "SELECT path FROM projects WHERE name = ?", name).Scan(&snap.Path)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	var notes []noteRow
	if err := tx.SelectContext(ctx, &notes,
		"SELECT id, text, created_at FROM notes WHERE project = ? ORDER BY seq", name); err != nil {
		return nil, err
	}
	snap.Todo = make([]snapshot.Note, len(notes))
	for i, n := range notes {
		snap.Todo[i] = snapshot.Note{ID: n.ID, Text: n.Text, Datetime: n.CreatedAt}
	}

	var days []dayRow
	if err := tx.SelectContext(ctx, &days,
		"SELECT date, sleep_start, sleep_end, sleep_phases FROM days WHERE project = ?", name); err != nil {
		return nil, err
	}
	for _, d := range days {
		day := snapshot.Day{Date: d.Date, Sleep: []string{}}
		if d.SleepStart.Valid && d.SleepEnd.Valid {
			day.Sleep = []string{d.SleepStart.String, d.SleepEnd.String, d.SleepPhases}
		}
		snap.Days[d.Date] = day
	}

	if err := loadEvents(ctx, tx, name, snap); err != nil {
		return nil, err
	}
	if err := loadSport(ctx, tx, name, snap); err != nil {
		return nil, err
	}
	if err := loadFunctions(ctx, tx, name, snap); err != nil {
		return nil, err
	}

	var silent []silentRow
	if err := tx.SelectContext(ctx, &silent,
		"SELECT date, at_time, what, tags FROM silent_events WHERE project = ? ORDER BY seq", name); err != nil {
		return nil, err
	}
	snap.SEvents = make([]snapshot.SilentEvent, len(silent))
	for i, se := range silent {
		var tags []string
		if err := json.Unmarshal([]byte(se.Tags), &tags); err != nil {
			return nil, fmt.Errorf("silent event tags: %w", err)
		}
		snap.SEvents[i] = snapshot.SilentEvent{TDate: se.Date, Start: se.At, What: se.What, Tags: tags}
	}

	return snap, nil
}

func loadEvents(ctx context.Context, tx *sqlx.Tx, name string, snap *snapshot.Project) error {
	var rows []eventRow
	if err := tx.SelectContext(ctx, &rows,
		"SELECT date, start_time, end_time, what, tags FROM events WHERE project = ? ORDER BY date, seq", name); err != nil {
		return err
	}
	for _, r := range rows {
		var tags []string
		if err := json.Unmarshal([]byte(r.Tags), &tags); err != nil {
			return fmt.Errorf("event tags on %s: %w", r.Date, err)
		}
		day := snap.Days[r.Date]
		day.Events = append(day.Events, snapshot.Event{Start: r.Start, End: r.End, What: r.What, Tags: tags})
		snap.Days[r.Date] = day
	}
	return nil
}

func loadSport(ctx context.Context, tx *sqlx.Tx, name string, snap *snapshot.Project) error {
	var rows []sportRow
	if err := tx.SelectContext(ctx, &rows,
		"SELECT date, kind, payload FROM sport WHERE project = ? ORDER BY date, kind, seq", name); err != nil {
		return err
	}
	for _, r := range rows {
		day := snap.Days[r.Date]
		var err error
		switch r.Kind {
		case project.KindRuns:
			var v snapshot.Run
			err = json.Unmarshal([]byte(r.Payload), &v)
			day.Sport.Runs = append(day.Sport.Runs, v)
		case project.KindPushUps:
			var v snapshot.PushUp
			err = json.Unmarshal([]byte(r.Payload), &v)
			day.Sport.PushUps = append(day.Sport.PushUps, v)
		case project.KindPlanks:
			var v snapshot.Plank
			err = json.Unmarshal([]byte(r.Payload), &v)
			day.Sport.Planks = append(day.Sport.Planks, v)
		case project.KindSitUps:
			var v snapshot.SitUp
			err = json.Unmarshal([]byte(r.Payload), &v)
			day.Sport.SitUps = append(day.Sport.SitUps, v)
		default:
			err = fmt.Errorf("unknown sport kind %q", r.Kind)
		}
		if err != nil {
			return fmt.Errorf("sport on %s: %w", r.Date, err)
		}
		snap.Days[r.Date] = day
	}
	return nil
}

func loadFunctions(ctx context.Context, tx *sqlx.Tx, name string, snap *snapshot.Project) error {
	var rows []functionRow
	if err := tx.SelectContext(ctx, &rows,
		"SELECT date, name, value FROM functions WHERE project = ?", name); err != nil {
		return err
	}
	for _, r := range rows {
		day := snap.Days[r.Date]
		if day.Functions == nil {
			day.Functions = make(map[string]float64)
		}
		day.Functions[r.Name] = r.Value
		snap.Days[r.Date] = day
	}
	return nil
}

// DeleteProject removes a stored project.
func (s *Store) DeleteProject(ctx context.Context, name string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var n int
	if err := tx.GetContext(ctx, &n, "SELECT COUNT(*) FROM projects WHERE name = ?", name); err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("project %s: %w", name, ErrNotFound)
	}
	if err := deleteProject(ctx, tx, name); err != nil {
		return err
	}
	return tx.Commit()
}

// ListProjects returns all stored projects ordered by name.
func (s *Store) ListProjects(ctx context.Context) ([]ProjectInfo, error) {
	var out []ProjectInfo
	err := s.db.SelectContext(ctx, &out, `
		SELECT p.name, p.path, p.saved_at,
		       (SELECT COUNT(*) FROM days d WHERE d.project = p.name) AS days
		FROM projects p
		ORDER BY p.name
	`)
	return out, err
}

// Stats counts the stored rows.
type Stats struct {
	Projects     int `db:"projects"`
	Days         int `db:"days"`
	Events       int `db:"events"`
	Notes        int `db:"notes"`
	SilentEvents int `db:"silent_events"`
}

// GetStats returns row counts over all projects.
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	var st Stats
	err := s.db.GetContext(ctx, &st, `
		SELECT
			(SELECT COUNT(*) FROM projects) AS projects,
			(SELECT COUNT(*) FROM days) AS days,
			(SELECT COUNT(*) FROM events) AS events,
			(SELECT COUNT(*) FROM notes) AS notes,
			(SELECT COUNT(*) FROM silent_events) AS silent_events
	`)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// Backup stores a copy of snap under its name with BackupSuffix appended.
func (s *Store) Backup(ctx context.Context, snap *snapshot.Project) error {
	backup := *snap
	backup.Name = snap.Name + BackupSuffix
	if err := s.SaveProject(ctx, &backup); err != nil {
		return fmt.Errorf("failed to back up %s: %w", snap.Name, err)
	}
	return nil
}

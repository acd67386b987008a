// Package db provides the optional SQLite-backed record store. The JSON file
// store remains the default backend; this one trades the whole-document
// write-back for row-level statements while keeping identical semantics.
package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/jdlive/kteval/internal/services"
	"github.com/jdlive/kteval/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS evaluations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	room_id TEXT NOT NULL,
	sku_id TEXT NOT NULL,
	evaluator_id TEXT NOT NULL,
	video_qualified TEXT NOT NULL DEFAULT '',
	visual_qualified TEXT NOT NULL DEFAULT '',
	board_appearance_count INTEGER NOT NULL DEFAULT 0,
	issues TEXT NOT NULL DEFAULT '[]',
	other_issue_desc TEXT NOT NULL DEFAULT '',
	ts INTEGER NOT NULL DEFAULT 0,
	UNIQUE (room_id, sku_id, evaluator_id)
);
CREATE TABLE IF NOT EXISTS submissions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	room_id TEXT NOT NULL,
	evaluator_id TEXT NOT NULL,
	submitted_at INTEGER NOT NULL DEFAULT 0,
	UNIQUE (room_id, evaluator_id)
);
`

type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?cache=shared&_busy_timeout=5000", filepath.ToSlash(path))
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	st, err := NewSQLiteStore(sqlDB)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return st, nil
}

func NewSQLiteStore(sqlDB *sql.DB) (*SQLiteStore, error) {
	if sqlDB == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := sqlDB.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: sqlDB, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func encodeIssues(issues []string) (string, error) {
	if issues == nil {
		issues = []string{}
	}
	b, err := json.Marshal(issues)
	if err != nil {
		return "", fmt.Errorf("encode issues: %w", err)
	}
	return string(b), nil
}

func decodeIssues(raw string) []string {
	var issues []string
	if err := json.Unmarshal([]byte(raw), &issues); err != nil {
		return nil
	}
	return issues
}

func (s *SQLiteStore) ListEvaluations(submittedOnly bool) ([]store.Evaluation, error) {
	q := `SELECT room_id, sku_id, evaluator_id, video_qualified, visual_qualified,
	board_appearance_count, issues, other_issue_desc, ts FROM evaluations e`
	if submittedOnly {
		q += ` WHERE EXISTS (SELECT 1 FROM submissions s
	WHERE s.room_id = e.room_id AND s.evaluator_id = e.evaluator_id)`
	}
	q += ` ORDER BY id`
	rows, err := s.db.Query(q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []store.Evaluation{}
	for rows.Next() {
		var e store.Evaluation
		var issuesJSON string
		if err := rows.Scan(&e.RoomID, &e.SkuID, &e.EvaluatorID, &e.VideoQualified, &e.VisualQualified,
			&e.BoardAppearanceCount, &issuesJSON, &e.OtherIssueDesc, &e.Timestamp); err != nil {
			return nil, err
		}
		e.Issues = decodeIssues(issuesJSON)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpsertEvaluation(p store.EvaluationPatch) error {
	if p.EvaluatorID == "" {
		return store.ErrEvaluatorRequired
	}
	e := store.Evaluation{RoomID: p.RoomID, SkuID: p.SkuID, EvaluatorID: p.EvaluatorID}
	var issuesJSON string
	err := s.db.QueryRow(`SELECT video_qualified, visual_qualified, board_appearance_count,
	issues, other_issue_desc, ts FROM evaluations WHERE room_id = ? AND sku_id = ? AND evaluator_id = ?`,
		p.RoomID, p.SkuID, p.EvaluatorID).
		Scan(&e.VideoQualified, &e.VisualQualified, &e.BoardAppearanceCount, &issuesJSON, &e.OtherIssueDesc, &e.Timestamp)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		e.Timestamp = s.now().UnixMilli()
		e.Apply(p)
		return s.insertEvaluation(e)
	case err != nil:
		return err
	}
	e.Issues = decodeIssues(issuesJSON)
	e.Apply(p)
	encoded, err := encodeIssues(e.Issues)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`UPDATE evaluations SET video_qualified = ?, visual_qualified = ?,
	board_appearance_count = ?, issues = ?, other_issue_desc = ?, ts = ?
	WHERE room_id = ? AND sku_id = ? AND evaluator_id = ?`,
		e.VideoQualified, e.VisualQualified, e.BoardAppearanceCount, encoded, e.OtherIssueDesc, e.Timestamp,
		e.RoomID, e.SkuID, e.EvaluatorID)
	return err
}

func (s *SQLiteStore) insertEvaluation(e store.Evaluation) error {
	encoded, err := encodeIssues(e.Issues)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT INTO evaluations (room_id, sku_id, evaluator_id, video_qualified,
	visual_qualified, board_appearance_count, issues, other_issue_desc, ts)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RoomID, e.SkuID, e.EvaluatorID, e.VideoQualified, e.VisualQualified,
		e.BoardAppearanceCount, encoded, e.OtherIssueDesc, e.Timestamp)
	return err
}

func (s *SQLiteStore) ListSubmissions(f store.SubmissionFilter) ([]store.Submission, error) {
	q := `SELECT room_id, evaluator_id, submitted_at FROM submissions WHERE 1 = 1`
	args := []any{}
	if f.EvaluatorID != "" {
		q += ` AND evaluator_id = ?`
		args = append(args, f.EvaluatorID)
	}
	if f.RoomID != "" {
		q += ` AND room_id = ?`
		args = append(args, f.RoomID)
	}
	q += ` ORDER BY id`
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []store.Submission{}
	for rows.Next() {
		var sub store.Submission
		if err := rows.Scan(&sub.RoomID, &sub.EvaluatorID, &sub.SubmittedAt); err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CreateSubmission(sub store.Submission) error {
	if sub.EvaluatorID == "" {
		return store.ErrEvaluatorRequired
	}
	if sub.SubmittedAt == 0 {
		sub.SubmittedAt = s.now().UnixMilli()
	}
	// First submission wins; the unique pair constraint turns replays into no-ops.
	_, err := s.db.Exec(`INSERT OR IGNORE INTO submissions (room_id, evaluator_id, submitted_at)
	VALUES (?, ?, ?)`, sub.RoomID, sub.EvaluatorID, sub.SubmittedAt)
	return err
}

func (s *SQLiteStore) ClearAll() error {
	if _, err := s.db.Exec(`DELETE FROM evaluations`); err != nil {
		return err
	}
	_, err := s.db.Exec(`DELETE FROM submissions`)
	return err
}

// ImportEvaluation inserts a full record as-is. Used by the one-time JSON to
// SQLite migration.
func (s *SQLiteStore) ImportEvaluation(e store.Evaluation) error {
	return s.insertEvaluation(e)
}

// ImportSubmission inserts a submission as-is, keeping first-wins semantics.
func (s *SQLiteStore) ImportSubmission(sub store.Submission) error {
	_, err := s.db.Exec(`INSERT OR IGNORE INTO submissions (room_id, evaluator_id, submitted_at)
	VALUES (?, ?, ?)`, sub.RoomID, sub.EvaluatorID, sub.SubmittedAt)
	return err
}

var _ services.RecordStore = (*SQLiteStore)(nil)

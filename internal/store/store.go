package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pranavlonari/interview-assistant/internal/model"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS candidates (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		resume_text TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		current_question_index INTEGER NOT NULL DEFAULT 0,
		answers TEXT NOT NULL DEFAULT '[]',
		total_score INTEGER NOT NULL DEFAULT 0,
		time_spent_seconds INTEGER NOT NULL DEFAULT 0,
		summary TEXT NOT NULL DEFAULT '',
		strengths TEXT NOT NULL DEFAULT '[]',
		improvements TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME NOT NULL,
		started_at DATETIME,
		completed_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS app_state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'interviewer',
		active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS auth_sessions (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		expires_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

const candidateColumns = `id, name, email, phone, resume_text, status, current_question_index,
	answers, total_score, time_spent_seconds, summary, strengths, improvements,
	created_at, started_at, completed_at`

// UpsertCandidate writes a candidate's full record. Answers and summary
// lists are stored as JSON documents so the captured-by-value question
// fields on each Answer survive unchanged.
func (s *Store) UpsertCandidate(c model.Candidate) error {
	answers, err := json.Marshal(c.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	strengths, err := json.Marshal(c.Strengths)
	if err != nil {
		return fmt.Errorf("marshal strengths: %w", err)
	}
	improvements, err := json.Marshal(c.Improvements)
	if err != nil {
		return fmt.Errorf("marshal improvements: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO candidates (`+candidateColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			phone = excluded.phone,
			resume_text = excluded.resume_text,
			status = excluded.status,
			current_question_index = excluded.current_question_index,
			answers = excluded.answers,
			total_score = excluded.total_score,
			time_spent_seconds = excluded.time_spent_seconds,
			summary = excluded.summary,
			strengths = excluded.strengths,
			improvements = excluded.improvements,
			started_at = excluded.started_at,
			completed_at = excluded.completed_at`,
		c.ID, c.Name, c.Email, c.Phone, c.ResumeText, c.Status, c.CurrentQuestionIndex,
		string(answers), c.TotalScore, c.TimeSpentSeconds, c.Summary, string(strengths),
		string(improvements), c.CreatedAt, c.StartedAt, c.CompletedAt,
	)
	return err
}

func scanCandidate(row interface{ Scan(...any) error }) (model.Candidate, error) {
	var c model.Candidate
	var answers, strengths, improvements string
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.ResumeText, &c.Status,
		&c.CurrentQuestionIndex, &answers, &c.TotalScore, &c.TimeSpentSeconds,
		&c.Summary, &strengths, &improvements, &c.CreatedAt, &c.StartedAt, &c.CompletedAt,
	)
	if err != nil {
		return c, err
	}
	if err := json.Unmarshal([]byte(answers), &c.Answers); err != nil {
		return c, fmt.Errorf("unmarshal answers: %w", err)
	}
	if err := json.Unmarshal([]byte(strengths), &c.Strengths); err != nil {
		return c, fmt.Errorf("unmarshal strengths: %w", err)
	}
	if err := json.Unmarshal([]byte(improvements), &c.Improvements); err != nil {
		return c, fmt.Errorf("unmarshal improvements: %w", err)
	}
	return c, nil
}

// GetCandidate returns a candidate by ID.
func (s *Store) GetCandidate(id string) (model.Candidate, error) {
	row := s.db.QueryRow(`SELECT `+candidateColumns+` FROM candidates WHERE id = ?`, id)
	return scanCandidate(row)
}

// ListCandidates returns all candidates, highest score first.
func (s *Store) ListCandidates() ([]model.Candidate, error) {
	rows, err := s.db.Query(`SELECT ` + candidateColumns + ` FROM candidates
		ORDER BY total_score DESC, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var candidates []model.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// FindCompletedByContact returns a completed candidate matching the email
// or phone, or nil. Used to reject duplicate reattempts before a session
// is created.
func (s *Store) FindCompletedByContact(email, phone string) (*model.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates
		WHERE status = ? AND (`
	var args []any
	args = append(args, model.StatusCompleted)
	var conds []string
	if email != "" {
		conds = append(conds, `LOWER(email) = LOWER(?)`)
		args = append(args, email)
	}
	if phone != "" {
		conds = append(conds, `phone = ?`)
		args = append(args, phone)
	}
	if len(conds) == 0 {
		return nil, nil
	}
	query += conds[0]
	if len(conds) == 2 {
		query += ` OR ` + conds[1]
	}
	query += `) LIMIT 1`

	row := s.db.QueryRow(query, args...)
	c, err := scanCandidate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteCandidate removes a candidate record.
func (s *Store) DeleteCandidate(id string) error {
	_, err := s.db.Exec(`DELETE FROM candidates WHERE id = ?`, id)
	return err
}

// DeleteAllCandidates removes every candidate record.
func (s *Store) DeleteAllCandidates() error {
	_, err := s.db.Exec(`DELETE FROM candidates`)
	return err
}

// CandidateCount returns the number of stored candidates.
func (s *Store) CandidateCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM candidates`).Scan(&count)
	return count, err
}

package store

import (
	"database/sql"

	"github.com/pranavlonari/interview-assistant/internal/model"
)

const (
	stateKeyCurrentCandidate = "current_candidate_id"
	stateKeyShowResumePrompt = "show_resume_prompt"
)

func (s *Store) setState(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO app_state (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *Store) getState(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM app_state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SaveAppState persists which candidate the kiosk is showing and whether
// the welcome-back prompt should appear on the next load.
func (s *Store) SaveAppState(state model.AppState) error {
	if err := s.setState(stateKeyCurrentCandidate, state.CurrentCandidateID); err != nil {
		return err
	}
	prompt := "0"
	if state.ShowResumePrompt {
		prompt = "1"
	}
	return s.setState(stateKeyShowResumePrompt, prompt)
}

// LoadAppState returns the persisted kiosk state. Missing keys yield the
// zero value.
func (s *Store) LoadAppState() (model.AppState, error) {
	var state model.AppState
	id, err := s.getState(stateKeyCurrentCandidate)
	if err != nil {
		return state, err
	}
	prompt, err := s.getState(stateKeyShowResumePrompt)
	if err != nil {
		return state, err
	}
	state.CurrentCandidateID = id
	state.ShowResumePrompt = prompt == "1"
	return state, nil
}

package model

import "time"

// InterviewExport is the top-level JSON structure for result export.
type InterviewExport struct {
	ExportedAt time.Time         `json:"exported_at"`
	Config     ExportConfig      `json:"config"`
	Candidates []CandidateResult `json:"candidates"`
}

// ExportConfig records the interview shape the results were produced under.
type ExportConfig struct {
	TotalQuestions int                `json:"total_questions"`
	Quota          map[Difficulty]int `json:"quota"`
	PointCaps      map[Difficulty]int `json:"point_caps"`
}

// CandidateResult holds one candidate's session data for export.
type CandidateResult struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	Phone            string          `json:"phone"`
	Status           CandidateStatus `json:"status"`
	TotalScore       int             `json:"total_score"`
	TimeSpentSeconds int             `json:"time_spent_seconds"`
	Summary          string          `json:"summary,omitempty"`
	Strengths        []string        `json:"strengths,omitempty"`
	Improvements     []string        `json:"improvements,omitempty"`
	StartedAt        *time.Time      `json:"started_at,omitempty"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
	Answers          []Answer        `json:"answers"`
}

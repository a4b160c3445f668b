package model

import (
	"context"
	"strings"
	"time"
)

// UserRole represents a dashboard user's access level.
type UserRole string

const (
	// UserRoleInterviewer can review completed interviews.
	UserRoleInterviewer UserRole = "interviewer"
	// UserRoleAdmin can additionally delete candidates.
	UserRoleAdmin UserRole = "admin"
)

// User represents a dashboard user.
type User struct {
	ID           int64
	Username     string
	DisplayName  string
	PasswordHash string
	Role         UserRole
	Active       bool
	CreatedAt    time.Time
}

// AuthSession represents an authentication session.
type AuthSession struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

type userCtxKey struct{}

// ContextWithUser stores a user in the request context.
func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext retrieves the authenticated user from context, or nil.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userCtxKey{}).(*User)
	return u
}

// CandidateStatus represents the lifecycle state of a candidate's session.
type CandidateStatus string

const (
	StatusPending    CandidateStatus = "pending"
	StatusInProgress CandidateStatus = "in-progress"
	StatusPaused     CandidateStatus = "paused"
	StatusCompleted  CandidateStatus = "completed"
)

// Difficulty represents question difficulty level.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists the tiers in ascending order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Question is a generated interview question. It lives only while it is the
// active question; once answered, its fields are captured by value on the
// Answer and the Question itself is discarded.
type Question struct {
	ID               string     `json:"id"`
	Text             string     `json:"text"`
	Difficulty       Difficulty `json:"difficulty"`
	TimeLimitSeconds int        `json:"time_limit_seconds"`
	Options          []string   `json:"options,omitempty"`
	// CorrectAnswer never leaves the server; matching is done here.
	CorrectAnswer string `json:"-"`
}

// MultipleChoice reports whether the question carries answer options.
func (q Question) MultipleChoice() bool {
	return len(q.Options) > 0
}

// Answer is an immutable record of one submitted answer. Question fields are
// copied in so the record stays stable after the Question is discarded.
// Score is the converted point value, not the raw 0-100 percentage.
type Answer struct {
	ID               string     `json:"id"`
	QuestionText     string     `json:"question_text"`
	Difficulty       Difficulty `json:"difficulty"`
	TimeLimitSeconds int        `json:"time_limit_seconds"`
	Text             string     `json:"text"`
	TimeSpentSeconds int        `json:"time_spent_seconds"`
	Score            int        `json:"score"`
	Feedback         string     `json:"feedback"`
	AutoSubmitted    bool       `json:"auto_submitted"`
	SubmittedAt      time.Time  `json:"submitted_at"`
}

// Candidate holds a candidate's identity and full session history.
type Candidate struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	Email                string          `json:"email"`
	Phone                string          `json:"phone"`
	ResumeText           string          `json:"resume_text,omitempty"`
	Status               CandidateStatus `json:"status"`
	CurrentQuestionIndex int             `json:"current_question_index"`
	Answers              []Answer        `json:"answers"`
	TotalScore           int             `json:"total_score"`
	TimeSpentSeconds     int             `json:"time_spent_seconds"`
	Summary              string          `json:"summary,omitempty"`
	Strengths            []string        `json:"strengths,omitempty"`
	Improvements         []string        `json:"improvements,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	StartedAt            *time.Time      `json:"started_at,omitempty"`
	CompletedAt          *time.Time      `json:"completed_at,omitempty"`
}

// MissingContactFields returns the contact fields still needed before an
// interview can start.
func (c Candidate) MissingContactFields() []string {
	var missing []string
	if strings.TrimSpace(c.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(c.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(c.Phone) == "" {
		missing = append(missing, "phone")
	}
	return missing
}

// InterviewConfig defines the fixed shape of one interview. Read-only after
// session start.
type InterviewConfig struct {
	TotalQuestions int
	Quota          map[Difficulty]int
	TimeLimits     map[Difficulty]int
	PointCaps      map[Difficulty]int
}

// DefaultInterviewConfig returns the production interview shape: six
// questions, two per tier, point caps summing to 100.
func DefaultInterviewConfig() InterviewConfig {
	return InterviewConfig{
		TotalQuestions: 6,
		Quota: map[Difficulty]int{
			DifficultyEasy:   2,
			DifficultyMedium: 2,
			DifficultyHard:   2,
		},
		TimeLimits: map[Difficulty]int{
			DifficultyEasy:   20,
			DifficultyMedium: 60,
			DifficultyHard:   120,
		},
		PointCaps: map[Difficulty]int{
			DifficultyEasy:   5,
			DifficultyMedium: 15,
			DifficultyHard:   30,
		},
	}
}

// QuotaFor returns the question quota for a difficulty tier.
func (c InterviewConfig) QuotaFor(d Difficulty) int { return c.Quota[d] }

// TimeLimitFor returns the per-question time budget in seconds.
func (c InterviewConfig) TimeLimitFor(d Difficulty) int { return c.TimeLimits[d] }

// CapFor returns the maximum point value for a difficulty tier.
func (c InterviewConfig) CapFor(d Difficulty) int { return c.PointCaps[d] }

// TimerState is a read-only view of the active question's countdown.
type TimerState struct {
	TimeLeft  int  `json:"time_left"`
	TotalTime int  `json:"total_time"`
	IsRunning bool `json:"is_running"`
	Warning   bool `json:"warning"`
}

// Snapshot is the read-only session view handed to the control surface.
type Snapshot struct {
	Candidate        *Candidate `json:"candidate,omitempty"`
	ActiveQuestion   *Question  `json:"active_question,omitempty"`
	Timer            TimerState `json:"timer"`
	ShowResumePrompt bool       `json:"show_resume_prompt"`
	// GenerationError reports the last failed question-generation attempt,
	// so the view can offer a retry instead of waiting forever.
	GenerationError string `json:"generation_error,omitempty"`
}

// AppState is the persisted key-value snapshot beside the candidate list.
type AppState struct {
	CurrentCandidateID string
	ShowResumePrompt   bool
}

// Placeholder answer texts recorded when the candidate submitted nothing.
// The scoring engine recognizes these and scores them zero without a
// gateway call.
const (
	PlaceholderTimeout   = "No answer provided - time expired"
	PlaceholderTabSwitch = "Interview ended - tab switch or focus loss detected"
	PlaceholderEmpty     = "No answer provided"
)

// IsPlaceholderAnswer reports whether text is one of the system-generated
// placeholder answers.
func IsPlaceholderAnswer(text string) bool {
	switch strings.TrimSpace(text) {
	case PlaceholderTimeout, PlaceholderTabSwitch, PlaceholderEmpty:
		return true
	}
	return false
}

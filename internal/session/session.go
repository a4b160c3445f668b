package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/pranavlonari/interview-assistant/internal/gateway"
	"github.com/pranavlonari/interview-assistant/internal/i18n"
	"github.com/pranavlonari/interview-assistant/internal/metrics"
	"github.com/pranavlonari/interview-assistant/internal/model"
	"github.com/pranavlonari/interview-assistant/internal/scoring"
	"github.com/pranavlonari/interview-assistant/internal/sequencer"

	"github.com/google/uuid"
)

// Store is the persistence surface the manager needs.
type Store interface {
	UpsertCandidate(model.Candidate) error
	GetCandidate(id string) (model.Candidate, error)
	FindCompletedByContact(email, phone string) (*model.Candidate, error)
	DeleteCandidate(id string) error
	SaveAppState(model.AppState) error
	LoadAppState() (model.AppState, error)
}

// Gateway is the AI surface the manager needs: question generation,
// answer scoring, and the final summary.
type Gateway interface {
	GenerateQuestion(ctx context.Context, difficulty model.Difficulty, candidateContext string) (model.Question, error)
	ScoreAnswer(ctx context.Context, req gateway.ScoreRequest) (gateway.ScoreResult, error)
	Summarize(ctx context.Context, items []gateway.SummaryItem) (gateway.SummaryResult, error)
}

// Manager owns the single live interview session: the current candidate,
// the active question and its timer, and the background generation and
// scoring work. All state transitions go through it, serialized by one
// mutex. Persistence happens on every transition so a process restart
// can offer to resume.
type Manager struct {
	mu      sync.Mutex
	store   Store
	gw      Gateway
	scorer  *scoring.Engine
	seq     *sequencer.Sequencer
	cfg     model.InterviewConfig
	metrics *metrics.Metrics

	candidate        *model.Candidate
	active           *model.Question
	timer            *Timer
	showResumePrompt bool

	generating    bool
	genFailure    error
	closing       bool
	pendingScores int
	scoreWG       sync.WaitGroup

	// epoch invalidates in-flight gateway results after a Clear.
	epoch int

	timerTick     time.Duration
	timerDebounce time.Duration
}

// New creates a session manager. Call Load before serving requests.
func New(st Store, gw Gateway, cfg model.InterviewConfig, m *metrics.Metrics) *Manager {
	return &Manager{
		store:         st,
		gw:            gw,
		scorer:        scoring.New(gw, cfg, m),
		seq:           sequencer.New(cfg),
		cfg:           cfg,
		metrics:       m,
		timerTick:     defaultTick,
		timerDebounce: defaultDebounce,
	}
}

// Load restores the persisted session at startup. An interview that was
// in progress when the process died comes back paused, with the resume
// prompt raised; its difficulty counters are re-derived from the answer
// history, never trusted from memory.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.store.LoadAppState()
	if err != nil {
		return err
	}
	if state.CurrentCandidateID == "" {
		return nil
	}
	c, err := m.store.GetCandidate(state.CurrentCandidateID)
	if errors.Is(err, sql.ErrNoRows) {
		return m.store.SaveAppState(model.AppState{})
	}
	if err != nil {
		return err
	}

	if c.Status == model.StatusInProgress {
		c.Status = model.StatusPaused
	}
	m.candidate = &c
	m.seq.Sync(c.Answers)
	m.showResumePrompt = c.Status == model.StatusPaused
	if err := m.persistLocked(); err != nil {
		return err
	}
	slog.Info("restored session", "candidate", c.ID, "status", c.Status, "answers", len(c.Answers))
	return nil
}

// Intake registers a new candidate from extracted resume contact details.
// A candidate who already completed an interview is rejected. A pending
// candidate that never started is replaced; a started one must be cleared
// first.
func (m *Manager) Intake(name, email, phone, resumeText string) (model.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.candidate != nil {
		switch m.candidate.Status {
		case model.StatusInProgress, model.StatusPaused:
			return model.Candidate{}, ErrSessionActive
		}
	}

	prior, err := m.store.FindCompletedByContact(strings.TrimSpace(email), strings.TrimSpace(phone))
	if err != nil {
		return model.Candidate{}, err
	}
	if prior != nil {
		return model.Candidate{}, ErrDuplicateCandidate
	}

	c := model.Candidate{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(name),
		Email:      strings.TrimSpace(email),
		Phone:      strings.TrimSpace(phone),
		ResumeText: resumeText,
		Status:     model.StatusPending,
		CreatedAt:  time.Now(),
	}
	replaced := m.candidate
	m.candidate = &c
	m.showResumePrompt = false
	if err := m.persistLocked(); err != nil {
		m.candidate = replaced
		return model.Candidate{}, err
	}
	if replaced != nil && replaced.Status == model.StatusPending {
		if err := m.store.DeleteCandidate(replaced.ID); err != nil {
			slog.Warn("failed to delete replaced candidate", "id", replaced.ID, "error", err)
		}
	}
	slog.Info("candidate registered", "id", c.ID, "missing", c.MissingContactFields())
	return c, nil
}

// StartInterview transitions a pending candidate to in-progress, resets
// the difficulty counters, and kicks off generation of the first question.
func (m *Manager) StartInterview(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.candidate == nil {
		return ErrNoCandidate
	}
	switch m.candidate.Status {
	case model.StatusCompleted:
		return ErrSessionCompleted
	case model.StatusInProgress, model.StatusPaused:
		return ErrSessionActive
	}
	if len(m.candidate.MissingContactFields()) > 0 {
		return ErrMissingContact
	}

	now := time.Now()
	m.candidate.Status = model.StatusInProgress
	m.candidate.StartedAt = &now
	m.candidate.CurrentQuestionIndex = 0
	m.candidate.Answers = nil
	m.candidate.TotalScore = 0
	m.candidate.TimeSpentSeconds = 0
	m.seq.Reset()
	m.showResumePrompt = false
	if err := m.persistLocked(); err != nil {
		return err
	}
	m.metrics.SessionStarted()
	slog.Info("interview started", "candidate", m.candidate.ID)
	m.beginGenerationLocked()
	return nil
}

// Pause stops the timer, keeping the active question and remaining time.
func (m *Manager) Pause(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.candidate == nil {
		return ErrNoCandidate
	}
	if m.candidate.Status != model.StatusInProgress {
		return ErrIllegalTransition
	}
	m.candidate.Status = model.StatusPaused
	if m.timer != nil {
		m.timer.Pause()
	}
	return m.persistLocked()
}

// Resume restarts a paused interview. If the active question survived in
// memory its timer continues from where it stopped; after a restart there
// is no active question, so a fresh one is generated against the
// re-derived difficulty counters.
func (m *Manager) Resume(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.candidate == nil {
		return ErrNoCandidate
	}
	if m.candidate.Status != model.StatusPaused {
		return ErrIllegalTransition
	}
	m.candidate.Status = model.StatusInProgress
	m.showResumePrompt = false
	if err := m.persistLocked(); err != nil {
		return err
	}
	if m.active != nil && m.timer != nil {
		m.timer.Start()
	} else if m.candidate.CurrentQuestionIndex >= m.cfg.TotalQuestions {
		// Every question was answered before the pause; finish as soon
		// as nothing is left to score.
		if m.pendingScores == 0 {
			m.finishLocked()
		}
	} else {
		// No live question to pick up: re-derive the quota counters from
		// the persisted history before generating, never trust the tally.
		m.seq.Sync(m.candidate.Answers)
		m.beginGenerationLocked()
	}
	return nil
}

// SubmitAnswer records the candidate's answer to the active question. The
// answer is persisted immediately with a zero score; scoring fills the
// score in asynchronously. An empty submission is recorded as a
// placeholder and scored zero without a gateway call. autoSubmitted marks
// answers the view layer committed on the candidate's behalf, which scoring
// penalizes.
func (m *Manager) SubmitAnswer(ctx context.Context, text string, autoSubmitted bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.candidate == nil {
		return ErrNoCandidate
	}
	switch m.candidate.Status {
	case model.StatusCompleted:
		return ErrSessionCompleted
	case model.StatusInProgress:
	default:
		return ErrIllegalTransition
	}
	if m.active == nil {
		return ErrNoActiveQuestion
	}
	if strings.TrimSpace(text) == "" {
		text = model.PlaceholderEmpty
	}
	return m.submitLocked(text, autoSubmitted, true)
}

// submitLocked records the active question's answer, schedules scoring,
// and optionally starts generating the next question. Callers hold m.mu.
func (m *Manager) submitLocked(text string, autoSubmitted, advance bool) error {
	q := *m.active
	m.active = nil
	timeSpent := 0
	if m.timer != nil {
		m.timer.Cancel()
		timeSpent = m.timer.TimeSpent()
		m.timer = nil
	}

	answer := model.Answer{
		ID:               uuid.NewString(),
		QuestionText:     q.Text,
		Difficulty:       q.Difficulty,
		TimeLimitSeconds: q.TimeLimitSeconds,
		Text:             text,
		TimeSpentSeconds: timeSpent,
		AutoSubmitted:    autoSubmitted,
		SubmittedAt:      time.Now(),
	}
	m.candidate.Answers = append(m.candidate.Answers, answer)
	m.candidate.CurrentQuestionIndex++
	m.candidate.TimeSpentSeconds += timeSpent
	if err := m.persistLocked(); err != nil {
		return err
	}

	idx := len(m.candidate.Answers) - 1
	m.pendingScores++
	m.scoreWG.Add(1)
	go m.scoreAnswer(m.epoch, m.candidate.ID, idx, q, text, timeSpent, autoSubmitted)

	if advance && m.candidate.CurrentQuestionIndex < m.cfg.TotalQuestions {
		m.beginGenerationLocked()
	}
	return nil
}

// scoreAnswer runs off the lock: it calls the scoring engine, then fills
// the settled score into the answer it was scheduled for. Results arriving
// after a Clear are dropped. The goroutine that settles the last pending
// score of a fully answered interview completes the session.
func (m *Manager) scoreAnswer(epoch int, candidateID string, idx int, q model.Question, text string, timeSpent int, autoSubmitted bool) {
	defer m.scoreWG.Done()
	outcome := m.scorer.Score(context.Background(), q, text, timeSpent, autoSubmitted)

	m.mu.Lock()
	defer m.mu.Unlock()
	if epoch != m.epoch {
		// Clear already reset the pending counter for this epoch; a stale
		// decrement here would absorb a newer session's completion trigger.
		return
	}
	m.pendingScores--
	if m.candidate == nil || m.candidate.ID != candidateID {
		return
	}
	if idx < len(m.candidate.Answers) {
		m.candidate.Answers[idx].Score = outcome.Points
		m.candidate.Answers[idx].Feedback = outcome.Feedback
	}
	m.candidate.TotalScore = scoring.TotalScore(m.candidate.Answers)
	if err := m.persistLocked(); err != nil {
		slog.Error("failed to persist score", "candidate", candidateID, "error", err)
	}
	if m.pendingScores == 0 && m.candidate.Status == model.StatusInProgress &&
		m.candidate.CurrentQuestionIndex >= m.cfg.TotalQuestions {
		m.finishLocked()
	}
}

// Complete force-finishes the interview. A still-active question is
// recorded as unanswered. The call blocks until all pending scores have
// settled so the final total is deterministic.
func (m *Manager) Complete(ctx context.Context) error {
	return m.forceComplete(ctx, model.PlaceholderEmpty, false)
}

// ReportVisibilityLoss ends the interview when the candidate leaves the
// page. The active question, if any, is recorded with the tab-switch
// placeholder. Reports outside an in-progress session are ignored.
func (m *Manager) ReportVisibilityLoss(ctx context.Context) error {
	return m.forceComplete(ctx, model.PlaceholderTabSwitch, true)
}

// forceComplete drives the session to completed. With onlyInProgress set,
// any other state is silently ignored; the check happens under the same
// lock hold as the transition so a concurrent pause cannot slip between
// them.
func (m *Manager) forceComplete(ctx context.Context, placeholder string, onlyInProgress bool) error {
	m.mu.Lock()
	if m.candidate == nil {
		m.mu.Unlock()
		if onlyInProgress {
			return nil
		}
		return ErrNoCandidate
	}
	if onlyInProgress && m.candidate.Status != model.StatusInProgress {
		m.mu.Unlock()
		return nil
	}
	if m.candidate.Status == model.StatusCompleted {
		m.mu.Unlock()
		return ErrSessionCompleted
	}
	m.closing = true
	if m.active != nil {
		if err := m.submitLocked(placeholder, true, false); err != nil {
			m.closing = false
			m.mu.Unlock()
			return err
		}
	}
	m.mu.Unlock()

	m.scoreWG.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.closing = false
	if m.candidate != nil && m.candidate.Status != model.StatusCompleted {
		m.finishLocked()
	}
	return nil
}

// finishLocked marks the session completed and kicks off summary
// generation. Callers hold m.mu.
func (m *Manager) finishLocked() {
	now := time.Now()
	m.candidate.Status = model.StatusCompleted
	m.candidate.CompletedAt = &now
	m.candidate.TotalScore = scoring.TotalScore(m.candidate.Answers)
	if m.timer != nil {
		m.timer.Cancel()
		m.timer = nil
	}
	m.active = nil
	m.closing = false
	if err := m.persistLocked(); err != nil {
		slog.Error("failed to persist completion", "candidate", m.candidate.ID, "error", err)
	}
	m.metrics.SessionCompleted()
	slog.Info("interview completed", "candidate", m.candidate.ID, "score", m.candidate.TotalScore)

	items := make([]gateway.SummaryItem, 0, len(m.candidate.Answers))
	for _, a := range m.candidate.Answers {
		items = append(items, gateway.SummaryItem{
			Question:         a.QuestionText,
			Answer:           a.Text,
			Score:            a.Score,
			Difficulty:       a.Difficulty,
			TimeSpentSeconds: a.TimeSpentSeconds,
			AutoSubmitted:    a.AutoSubmitted,
		})
	}
	go m.buildSummary(m.epoch, m.candidate.ID, items, m.candidate.TotalScore, len(m.candidate.Answers))
}

// buildSummary asks the gateway for the final assessment. When the
// gateway fails, a local one-line summary stands in; the total score is
// always the computed one, never the gateway's.
func (m *Manager) buildSummary(epoch int, candidateID string, items []gateway.SummaryItem, totalScore, answered int) {
	result, err := m.gw.Summarize(context.Background(), items)
	summary := result.Summary
	if err != nil {
		slog.Warn("summary generation failed, using fallback", "candidate", candidateID, "error", err)
		summary = i18n.Td(context.Background(), "SummaryFallback", map[string]any{
			"Score":     totalScore,
			"Questions": answered,
		})
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if epoch != m.epoch || m.candidate == nil || m.candidate.ID != candidateID {
		return
	}
	m.candidate.Summary = summary
	if err == nil {
		m.candidate.Strengths = result.Strengths
		m.candidate.Improvements = result.Improvements
	}
	if err := m.persistLocked(); err != nil {
		slog.Error("failed to persist summary", "candidate", candidateID, "error", err)
	}
}

// RequestNextQuestion explicitly retries question generation, for when a
// previous attempt failed. Unlike the generation kicked off by start and
// submit, the retry runs synchronously so the caller learns whether the
// gateway came back: a failed attempt returns ErrGatewayUnavailable. It is
// a no-op error when a question is already active or generation is running.
func (m *Manager) RequestNextQuestion(ctx context.Context) error {
	m.mu.Lock()

	if m.candidate == nil {
		m.mu.Unlock()
		return ErrNoCandidate
	}
	switch m.candidate.Status {
	case model.StatusCompleted:
		m.mu.Unlock()
		return ErrSessionCompleted
	case model.StatusInProgress:
	default:
		m.mu.Unlock()
		return ErrIllegalTransition
	}
	if m.active != nil {
		m.mu.Unlock()
		return ErrQuestionActive
	}
	if m.generating || m.closing {
		m.mu.Unlock()
		return ErrGenerationInFlight
	}
	if m.candidate.CurrentQuestionIndex >= m.cfg.TotalQuestions {
		m.mu.Unlock()
		return ErrIllegalTransition
	}

	epoch := m.epoch
	candidateID := m.candidate.ID
	resumeText := m.candidate.ResumeText
	difficulty := m.seq.Assign(m.candidate.CurrentQuestionIndex)
	m.generating = true
	m.genFailure = nil
	m.mu.Unlock()

	q, err := m.gw.GenerateQuestion(ctx, difficulty, resumeText)
	return m.installQuestion(epoch, candidateID, difficulty, q, err)
}

// beginGenerationLocked starts asynchronous question generation for the
// current index, if nothing blocks it. The difficulty counter is only
// recorded once generation succeeds, so a failed attempt does not burn
// quota. Callers hold m.mu.
func (m *Manager) beginGenerationLocked() {
	if m.generating || m.active != nil || m.closing {
		return
	}
	if m.candidate == nil || m.candidate.Status != model.StatusInProgress {
		return
	}
	idx := m.candidate.CurrentQuestionIndex
	if idx >= m.cfg.TotalQuestions {
		return
	}
	difficulty := m.seq.Assign(idx)
	m.generating = true
	m.genFailure = nil
	go m.generateQuestion(m.epoch, m.candidate.ID, difficulty, m.candidate.ResumeText)
}

func (m *Manager) generateQuestion(epoch int, candidateID string, difficulty model.Difficulty, candidateContext string) {
	q, err := m.gw.GenerateQuestion(context.Background(), difficulty, candidateContext)
	_ = m.installQuestion(epoch, candidateID, difficulty, q, err)
}

// installQuestion settles one generation attempt. On success the question
// becomes active and its timer starts; on failure the error is recorded so
// the snapshot can tell the view to retry or abort. Results for a stale
// epoch or candidate are dropped.
func (m *Manager) installQuestion(epoch int, candidateID string, difficulty model.Difficulty, q model.Question, genErr error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if epoch != m.epoch || m.candidate == nil || m.candidate.ID != candidateID {
		// Stale result; a newer session may own the generating flag.
		return nil
	}
	m.generating = false
	if m.closing || m.candidate.Status != model.StatusInProgress {
		return nil
	}
	if genErr != nil {
		m.genFailure = genErr
		slog.Error("question generation failed", "candidate", candidateID, "difficulty", difficulty, "error", genErr)
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, genErr)
	}
	m.genFailure = nil
	m.seq.Record(difficulty)
	q.TimeLimitSeconds = m.cfg.TimeLimitFor(difficulty)
	m.active = &q
	m.timer = m.newQuestionTimer(q)
	m.timer.Start()
	m.metrics.QuestionAsked()
	slog.Info("question ready", "candidate", candidateID, "index", m.candidate.CurrentQuestionIndex,
		"difficulty", difficulty, "limit_seconds", q.TimeLimitSeconds)
	return nil
}

func (m *Manager) newQuestionTimer(q model.Question) *Timer {
	questionID := q.ID
	t := NewTimer(q.TimeLimitSeconds,
		func() {
			slog.Debug("time warning", "question", questionID)
		},
		func() {
			m.expireQuestion(questionID)
		},
	)
	t.SetInterval(m.timerTick, m.timerDebounce)
	return t
}

// expireQuestion is the timer's expiry callback: it auto-submits the
// timeout placeholder, unless the question was already answered or the
// session left the in-progress state.
func (m *Manager) expireQuestion(questionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil || m.active.ID != questionID {
		return
	}
	if m.candidate == nil || m.candidate.Status != model.StatusInProgress {
		return
	}
	slog.Info("question timed out", "question", questionID)
	if err := m.submitLocked(model.PlaceholderTimeout, true, true); err != nil {
		slog.Error("failed to record timeout answer", "question", questionID, "error", err)
	}
}

// Clear dismisses the current candidate: the welcome screen is blank on
// the next load. An unfinished candidate's record is deleted; a completed
// one stays in the dashboard. In-flight gateway work is invalidated.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.epoch++
	m.generating = false
	m.genFailure = nil
	m.closing = false
	// In-flight scoring calls belong to the old epoch and will never
	// decrement the counter; zero it so the next session starts clean.
	m.pendingScores = 0
	if m.timer != nil {
		m.timer.Cancel()
		m.timer = nil
	}
	m.active = nil
	m.seq.Reset()
	m.showResumePrompt = false

	if m.candidate != nil && m.candidate.Status != model.StatusCompleted {
		if err := m.store.DeleteCandidate(m.candidate.ID); err != nil {
			return err
		}
	}
	m.candidate = nil
	return m.store.SaveAppState(model.AppState{})
}

// Snapshot returns a read-only copy of the session for the control
// surface. The candidate and question are copied so callers cannot
// mutate manager state.
func (m *Manager) Snapshot() model.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := model.Snapshot{ShowResumePrompt: m.showResumePrompt}
	if m.candidate != nil {
		c := *m.candidate
		c.Answers = append([]model.Answer(nil), m.candidate.Answers...)
		snap.Candidate = &c
	}
	if m.active != nil {
		q := *m.active
		snap.ActiveQuestion = &q
	}
	if m.timer != nil {
		snap.Timer = m.timer.Snapshot()
	}
	if m.genFailure != nil {
		snap.GenerationError = m.genFailure.Error()
	}
	return snap
}

// Config returns the fixed interview shape.
func (m *Manager) Config() model.InterviewConfig {
	return m.cfg
}

func (m *Manager) persistLocked() error {
	if err := m.store.UpsertCandidate(*m.candidate); err != nil {
		return err
	}
	return m.store.SaveAppState(model.AppState{
		CurrentCandidateID: m.candidate.ID,
		ShowResumePrompt:   m.showResumePrompt,
	})
}

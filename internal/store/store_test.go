package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/pranavlonari/interview-assistant/internal/model"

	"github.com/google/uuid"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func insertTestCandidate(t *testing.T, s *Store, name, email string, status model.CandidateStatus, score int) model.Candidate {
	t.Helper()
	c := model.Candidate{
		ID:         uuid.NewString(),
		Name:       name,
		Email:      email,
		Phone:      "+1 555 0100",
		Status:     status,
		TotalScore: score,
		CreatedAt:  time.Now(),
	}
	if err := s.UpsertCandidate(c); err != nil {
		t.Fatalf("insertTestCandidate: %v", err)
	}
	return c
}

func TestCandidateCRUD(t *testing.T) {
	s := newTestStore(t)

	// Empty DB should return zero count and empty list.
	count, err := s.CandidateCount()
	if err != nil {
		t.Fatalf("CandidateCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 candidates, got %d", count)
	}

	c := insertTestCandidate(t, s, "Jane Doe", "jane@example.com", model.StatusPending, 0)
	got, err := s.GetCandidate(c.ID)
	if err != nil {
		t.Fatalf("GetCandidate: %v", err)
	}
	if got.Name != "Jane Doe" {
		t.Errorf("expected name 'Jane Doe', got %q", got.Name)
	}
	if got.Status != model.StatusPending {
		t.Errorf("expected status pending, got %q", got.Status)
	}
	if len(got.Answers) != 0 {
		t.Errorf("expected no answers, got %d", len(got.Answers))
	}

	// Not found.
	_, err = s.GetCandidate("missing")
	if err != sql.ErrNoRows {
		t.Errorf("expected ErrNoRows, got %v", err)
	}

	// Delete.
	if err := s.DeleteCandidate(c.ID); err != nil {
		t.Fatalf("DeleteCandidate: %v", err)
	}
	if _, err := s.GetCandidate(c.ID); err != sql.ErrNoRows {
		t.Errorf("expected ErrNoRows after delete, got %v", err)
	}
}

func TestUpsertCandidateRoundTripsAnswers(t *testing.T) {
	s := newTestStore(t)

	c := insertTestCandidate(t, s, "Sam Lee", "sam@example.com", model.StatusInProgress, 0)
	started := time.Now().Truncate(time.Second)
	c.StartedAt = &started
	c.CurrentQuestionIndex = 2
	c.Answers = []model.Answer{
		{
			ID:               uuid.NewString(),
			QuestionText:     "What is a closure?",
			Difficulty:       model.DifficultyEasy,
			Text:             "A function capturing its environment.",
			Score:            4,
			TimeSpentSeconds: 12,
		},
		{
			ID:            uuid.NewString(),
			QuestionText:  "Explain event delegation.",
			Difficulty:    model.DifficultyEasy,
			Text:          model.PlaceholderTimeout,
			AutoSubmitted: true,
		},
	}
	c.TotalScore = 4
	if err := s.UpsertCandidate(c); err != nil {
		t.Fatalf("UpsertCandidate: %v", err)
	}

	got, err := s.GetCandidate(c.ID)
	if err != nil {
		t.Fatalf("GetCandidate: %v", err)
	}
	if got.CurrentQuestionIndex != 2 {
		t.Errorf("expected index 2, got %d", got.CurrentQuestionIndex)
	}
	if len(got.Answers) != 2 {
		t.Fatalf("expected 2 answers, got %d", len(got.Answers))
	}
	if got.Answers[0].Score != 4 {
		t.Errorf("expected answer score 4, got %d", got.Answers[0].Score)
	}
	if !got.Answers[1].AutoSubmitted {
		t.Error("expected second answer to be auto-submitted")
	}
	if got.StartedAt == nil {
		t.Fatal("expected started_at to survive the round trip")
	}
}

func TestListCandidatesOrdersByScore(t *testing.T) {
	s := newTestStore(t)

	insertTestCandidate(t, s, "Low", "low@example.com", model.StatusCompleted, 40)
	insertTestCandidate(t, s, "High", "high@example.com", model.StatusCompleted, 88)
	insertTestCandidate(t, s, "Mid", "mid@example.com", model.StatusCompleted, 61)

	list, err := s.ListCandidates()
	if err != nil {
		t.Fatalf("ListCandidates: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(list))
	}
	if list[0].Name != "High" || list[1].Name != "Mid" || list[2].Name != "Low" {
		t.Errorf("unexpected order: %s, %s, %s", list[0].Name, list[1].Name, list[2].Name)
	}
}

func TestFindCompletedByContact(t *testing.T) {
	s := newTestStore(t)

	done := insertTestCandidate(t, s, "Done", "done@example.com", model.StatusCompleted, 70)
	insertTestCandidate(t, s, "Active", "active@example.com", model.StatusInProgress, 0)

	// Email match is case insensitive.
	found, err := s.FindCompletedByContact("DONE@example.com", "")
	if err != nil {
		t.Fatalf("FindCompletedByContact: %v", err)
	}
	if found == nil || found.ID != done.ID {
		t.Fatalf("expected completed candidate, got %v", found)
	}

	// Phone match.
	found, err = s.FindCompletedByContact("", "+1 555 0100")
	if err != nil {
		t.Fatalf("FindCompletedByContact by phone: %v", err)
	}
	if found == nil {
		t.Fatal("expected a phone match")
	}

	// In-progress candidates do not count as reattempts.
	found, err = s.FindCompletedByContact("active@example.com", "")
	if err != nil {
		t.Fatalf("FindCompletedByContact active: %v", err)
	}
	if found != nil {
		t.Errorf("expected no match for in-progress candidate, got %v", found)
	}

	// Nothing to match on.
	found, err = s.FindCompletedByContact("", "")
	if err != nil {
		t.Fatalf("FindCompletedByContact empty: %v", err)
	}
	if found != nil {
		t.Errorf("expected nil for empty contact, got %v", found)
	}
}

func TestAppStateRoundTrip(t *testing.T) {
	s := newTestStore(t)

	// Fresh DB yields the zero state.
	state, err := s.LoadAppState()
	if err != nil {
		t.Fatalf("LoadAppState: %v", err)
	}
	if state.CurrentCandidateID != "" || state.ShowResumePrompt {
		t.Errorf("expected zero state, got %+v", state)
	}

	want := model.AppState{CurrentCandidateID: uuid.NewString(), ShowResumePrompt: true}
	if err := s.SaveAppState(want); err != nil {
		t.Fatalf("SaveAppState: %v", err)
	}
	state, err = s.LoadAppState()
	if err != nil {
		t.Fatalf("LoadAppState: %v", err)
	}
	if state != want {
		t.Errorf("expected %+v, got %+v", want, state)
	}

	// Clearing writes through.
	if err := s.SaveAppState(model.AppState{}); err != nil {
		t.Fatalf("SaveAppState clear: %v", err)
	}
	state, err = s.LoadAppState()
	if err != nil {
		t.Fatalf("LoadAppState after clear: %v", err)
	}
	if state.CurrentCandidateID != "" || state.ShowResumePrompt {
		t.Errorf("expected cleared state, got %+v", state)
	}
}

func TestUserAndAuthSessions(t *testing.T) {
	s := newTestStore(t)

	count, err := s.UserCount()
	if err != nil {
		t.Fatalf("UserCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 users, got %d", count)
	}

	id, err := s.CreateUser(model.User{
		Username:     "admin",
		DisplayName:  "Admin",
		PasswordHash: "x",
		Role:         model.UserRoleAdmin,
		Active:       true,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	u, err := s.GetUserByUsername("admin")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if u == nil || u.ID != id {
		t.Fatalf("expected user %d, got %v", id, u)
	}

	missing, err := s.GetUserByUsername("nobody")
	if err != nil {
		t.Fatalf("GetUserByUsername missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown user, got %v", missing)
	}

	token, err := s.CreateAuthSession(id)
	if err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}
	sess, err := s.GetAuthSession(token)
	if err != nil {
		t.Fatalf("GetAuthSession: %v", err)
	}
	if sess == nil || sess.UserID != id {
		t.Fatalf("expected session for user %d, got %v", id, sess)
	}

	if err := s.DeleteAuthSession(token); err != nil {
		t.Fatalf("DeleteAuthSession: %v", err)
	}
	sess, err = s.GetAuthSession(token)
	if err != nil {
		t.Fatalf("GetAuthSession after delete: %v", err)
	}
	if sess != nil {
		t.Errorf("expected nil session after delete, got %v", sess)
	}
}

func TestExportAllCandidates(t *testing.T) {
	s := newTestStore(t)

	c := insertTestCandidate(t, s, "Exported", "exp@example.com", model.StatusCompleted, 77)

	export, err := s.ExportAllCandidates(model.DefaultInterviewConfig())
	if err != nil {
		t.Fatalf("ExportAllCandidates: %v", err)
	}
	if export.Config.TotalQuestions != 6 {
		t.Errorf("expected 6 total questions, got %d", export.Config.TotalQuestions)
	}
	if len(export.Candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(export.Candidates))
	}
	if export.Candidates[0].ID != c.ID || export.Candidates[0].TotalScore != 77 {
		t.Errorf("unexpected export entry: %+v", export.Candidates[0])
	}
}

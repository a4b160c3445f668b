package scoring

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pranavlonari/interview-assistant/internal/gateway"
	appI18n "github.com/pranavlonari/interview-assistant/internal/i18n"
	"github.com/pranavlonari/interview-assistant/internal/model"
)

func TestMain(m *testing.M) {
	if err := appI18n.Init("en"); err != nil {
		panic(err)
	}
	m.Run()
}

// fakeGateway returns a fixed result or error for every scoring call.
type fakeGateway struct {
	result gateway.ScoreResult
	err    error
	calls  int
}

func (f *fakeGateway) ScoreAnswer(ctx context.Context, req gateway.ScoreRequest) (gateway.ScoreResult, error) {
	f.calls++
	return f.result, f.err
}

func newTestEngine(t *testing.T, gw Gateway) *Engine {
	t.Helper()
	return New(gw, model.DefaultInterviewConfig(), nil)
}

func mcqQuestion() model.Question {
	return model.Question{
		Text:             "What does JSX stand for?",
		Difficulty:       model.DifficultyEasy,
		TimeLimitSeconds: 20,
		Options:          []string{"JavaScript XML", "JSON Syntax Extension", "Java Syntax", "JS Extra"},
		CorrectAnswer:    "JavaScript XML",
	}
}

func freeTextQuestion(d model.Difficulty) model.Question {
	return model.Question{
		Text:             "Explain the event loop.",
		Difficulty:       d,
		TimeLimitSeconds: 60,
	}
}

func TestValidationShortCircuits(t *testing.T) {
	gw := &fakeGateway{}
	e := newTestEngine(t, gw)

	tests := []struct {
		name   string
		answer string
	}{
		{"empty", ""},
		{"timeout placeholder", model.PlaceholderTimeout},
		{"tab switch placeholder", model.PlaceholderTabSwitch},
		{"too short", "React"},
		{"too short even if dense", "O(n log n) heapsort"},
		{"denylist exact", "i don't know"},
		{"denylist embedded", "Honestly I'm not sure about this one, maybe the virtual DOM diffing does it somehow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := e.Score(context.Background(), freeTextQuestion(model.DifficultyMedium), tt.answer, 10, false)
			if out.Score != 0 || out.Points != 0 {
				t.Errorf("score = %d, points = %d, want 0/0", out.Score, out.Points)
			}
			if out.Feedback == "" {
				t.Error("validation failures must carry feedback")
			}
		})
	}
	if gw.calls != 0 {
		t.Errorf("validation failures must not call the gateway, got %d calls", gw.calls)
	}
}

func TestMultipleChoiceScoring(t *testing.T) {
	gw := &fakeGateway{}
	e := newTestEngine(t, gw)
	q := mcqQuestion()

	t.Run("correct within time", func(t *testing.T) {
		out := e.Score(context.Background(), q, "JavaScript XML", 8, false)
		if out.Score != 100 {
			t.Errorf("score = %d, want 100", out.Score)
		}
		if out.Points != 5 {
			t.Errorf("points = %d, want full easy cap 5", out.Points)
		}
	})

	t.Run("correct but auto-submitted", func(t *testing.T) {
		out := e.Score(context.Background(), q, "JavaScript XML", 20, true)
		if out.Score != 85 {
			t.Errorf("score = %d, want 85", out.Score)
		}
		if out.Points != 4 {
			t.Errorf("points = %d, want round(0.85*5) = 4", out.Points)
		}
	})

	t.Run("correct with surrounding whitespace", func(t *testing.T) {
		out := e.Score(context.Background(), q, "  JavaScript XML  ", 8, false)
		if out.Score != 100 {
			t.Errorf("score = %d, want 100 after trim", out.Score)
		}
	})

	t.Run("incorrect discloses answer", func(t *testing.T) {
		out := e.Score(context.Background(), q, "Java Syntax", 8, false)
		if out.Score != 0 || out.Points != 0 {
			t.Errorf("score/points = %d/%d, want 0/0", out.Score, out.Points)
		}
		if !strings.Contains(out.Feedback, "JavaScript XML") {
			t.Errorf("feedback %q should disclose the correct answer", out.Feedback)
		}
	})

	t.Run("short labels allowed", func(t *testing.T) {
		// The 20-character minimum applies to free text only.
		out := e.Score(context.Background(), q, "JS Extra", 8, false)
		if out.Feedback == appI18n.T(context.Background(), "FeedbackTooShort") {
			t.Error("MCQ answers must not be rejected for length")
		}
	})

	if gw.calls != 0 {
		t.Errorf("MCQ scoring must not call the gateway, got %d calls", gw.calls)
	}
}

const longAnswer = "The event loop processes the callback queue after the current call stack " +
	"empties, letting asynchronous work interleave with synchronous code on one thread."

func TestFreeTextGatewayScoring(t *testing.T) {
	t.Run("gateway score converted to points", func(t *testing.T) {
		gw := &fakeGateway{result: gateway.ScoreResult{Score: 90, Feedback: "good"}}
		e := newTestEngine(t, gw)

		out := e.Score(context.Background(), freeTextQuestion(model.DifficultyHard), longAnswer, 50, false)
		if out.Score != 90 {
			t.Errorf("score = %d, want 90", out.Score)
		}
		if out.Points != 27 {
			t.Errorf("points = %d, want round(0.9*30) = 27", out.Points)
		}
		if out.Fallback {
			t.Error("gateway path must not be marked fallback")
		}
	})

	t.Run("auto-submit penalty", func(t *testing.T) {
		gw := &fakeGateway{result: gateway.ScoreResult{Score: 90}}
		e := newTestEngine(t, gw)

		out := e.Score(context.Background(), freeTextQuestion(model.DifficultyMedium), longAnswer, 60, true)
		if out.Score != 75 {
			t.Errorf("score = %d, want 90-15 = 75", out.Score)
		}
		if out.Points != 11 {
			t.Errorf("points = %d, want round(0.75*15) = 11", out.Points)
		}
	})

	t.Run("penalty floors at zero", func(t *testing.T) {
		gw := &fakeGateway{result: gateway.ScoreResult{Score: 10}}
		e := newTestEngine(t, gw)

		out := e.Score(context.Background(), freeTextQuestion(model.DifficultyMedium), longAnswer, 60, true)
		if out.Score != 0 {
			t.Errorf("score = %d, want 0", out.Score)
		}
	})
}

func TestFreeTextFallbackScoring(t *testing.T) {
	gw := &fakeGateway{err: errors.New("gateway unavailable")}
	e := newTestEngine(t, gw)

	out := e.Score(context.Background(), freeTextQuestion(model.DifficultyMedium), longAnswer, 30, false)
	if !out.Fallback {
		t.Fatal("gateway failure must mark the outcome as fallback")
	}
	if out.Score == 0 {
		t.Error("fallback must still produce a usable score")
	}
	if out.Feedback == "" {
		t.Error("fallback must carry feedback")
	}
}

func TestFallbackScoreBands(t *testing.T) {
	words := func(n int) string {
		return strings.TrimSpace(strings.Repeat("word ", n))
	}

	tests := []struct {
		name          string
		answer        string
		autoSubmitted bool
		want          int
	}{
		{"30 words over 100 chars", words(30), false, 95},
		{"20 words over 50 chars", words(20), false, 85},
		{"10 words", words(10), false, 70},
		{"short", words(3), false, 50},
		{"95 band auto-submitted", words(30), true, 80},
		{"70 band auto-submitted floors at 55", words(10), true, 55},
		{"50 band auto-submitted floors at 50", words(3), true, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FallbackScore(tt.answer, tt.autoSubmitted); got != tt.want {
				t.Errorf("FallbackScore = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPointsFor(t *testing.T) {
	e := newTestEngine(t, &fakeGateway{})

	tests := []struct {
		score int
		d     model.Difficulty
		want  int
	}{
		{100, model.DifficultyEasy, 5},
		{85, model.DifficultyEasy, 4},
		{0, model.DifficultyEasy, 0},
		{100, model.DifficultyMedium, 15},
		{50, model.DifficultyMedium, 8},
		{100, model.DifficultyHard, 30},
		{95, model.DifficultyHard, 29},
		{-10, model.DifficultyHard, 0},
		{200, model.DifficultyHard, 30},
	}

	for _, tt := range tests {
		if got := e.PointsFor(tt.score, tt.d); got != tt.want {
			t.Errorf("PointsFor(%d, %s) = %d, want %d", tt.score, tt.d, got, tt.want)
		}
	}
}

func TestTotalScore(t *testing.T) {
	answers := []model.Answer{
		{Score: 5, Difficulty: model.DifficultyEasy},
		{Score: 0, Difficulty: model.DifficultyEasy},
		{Score: 11, Difficulty: model.DifficultyMedium},
		{Score: 15, Difficulty: model.DifficultyMedium},
		{Score: 27, Difficulty: model.DifficultyHard},
		{Score: 30, Difficulty: model.DifficultyHard},
	}
	if got := TotalScore(answers); got != 88 {
		t.Errorf("TotalScore = %d, want 88", got)
	}
	if got := TotalScore(nil); got != 0 {
		t.Errorf("TotalScore(nil) = %d, want 0", got)
	}
}

// Package scoring turns submitted answers into point values. It validates
// answers locally, scores multiple-choice turns without a gateway call, and
// delegates free-text scoring to the AI gateway with a deterministic local
// fallback, so a turn can always be scored even when the gateway is down.
package scoring

import (
	"context"
	"math"
	"strings"

	"github.com/pranavlonari/interview-assistant/internal/gateway"
	appI18n "github.com/pranavlonari/interview-assistant/internal/i18n"
	"github.com/pranavlonari/interview-assistant/internal/metrics"
	"github.com/pranavlonari/interview-assistant/internal/model"
)

const (
	// minFreeTextLength is the shortest free-text answer worth evaluating.
	// Multiple-choice answers may be as short as a label.
	minFreeTextLength = 20

	mcqFullScore            = 100
	mcqAutoSubmitScore      = 85
	autoSubmitPenalty       = 15
	fallbackAutoSubmitFloor = 50
)

// genericNonAnswers is matched case-insensitively as substrings; an answer
// containing one scores zero without a gateway call.
var genericNonAnswers = []string{
	"i don't know",
	"i dont know",
	"don't know",
	"dont know",
	"not sure",
	"no idea",
	"idk",
}

// Gateway is the scoring side of the AI gateway.
type Gateway interface {
	ScoreAnswer(ctx context.Context, req gateway.ScoreRequest) (gateway.ScoreResult, error)
}

// Outcome is the settled verdict for one answer.
type Outcome struct {
	// Score is the raw 0-100 percentage.
	Score int
	// Points is the converted value actually stored on the Answer.
	Points    int
	Feedback  string
	Reasoning string
	// Fallback marks outcomes produced by the local heuristic.
	Fallback bool
}

// Engine scores answers. It is a pure function over its inputs and never
// touches session state.
type Engine struct {
	gw      Gateway
	cfg     model.InterviewConfig
	metrics *metrics.Metrics
}

// New creates a scoring engine.
func New(gw Gateway, cfg model.InterviewConfig, m *metrics.Metrics) *Engine {
	return &Engine{gw: gw, cfg: cfg, metrics: m}
}

// Score settles the score for one answer to the given question. It never
// returns an error: gateway failures fall through to the local heuristic.
func (e *Engine) Score(ctx context.Context, q model.Question, answerText string, timeSpent int, autoSubmitted bool) Outcome {
	if out, done := e.validate(ctx, q, answerText); done {
		e.metrics.AnswerScored(false)
		return out
	}

	var out Outcome
	if q.MultipleChoice() {
		out = e.scoreMultipleChoice(ctx, q, answerText, autoSubmitted)
	} else {
		out = e.scoreFreeText(ctx, q, answerText, timeSpent, autoSubmitted)
	}
	e.metrics.AnswerScored(out.Fallback)
	return out
}

// validate applies the pre-gateway rules. done reports whether the outcome
// is already settled.
func (e *Engine) validate(ctx context.Context, q model.Question, answerText string) (Outcome, bool) {
	trimmed := strings.TrimSpace(answerText)

	if trimmed == "" || model.IsPlaceholderAnswer(trimmed) {
		return e.zero(appI18n.T(ctx, "FeedbackNoAnswer")), true
	}

	if q.MultipleChoice() {
		return Outcome{}, false
	}

	if len(trimmed) < minFreeTextLength {
		return e.zero(appI18n.T(ctx, "FeedbackTooShort")), true
	}

	lower := strings.ToLower(trimmed)
	for _, phrase := range genericNonAnswers {
		if strings.Contains(lower, phrase) {
			return e.zero(appI18n.T(ctx, "FeedbackNonAnswer")), true
		}
	}

	return Outcome{}, false
}

func (e *Engine) zero(feedback string) Outcome {
	return Outcome{Score: 0, Points: 0, Feedback: feedback}
}

// scoreMultipleChoice matches the trimmed answer against the correct choice.
func (e *Engine) scoreMultipleChoice(ctx context.Context, q model.Question, answerText string, autoSubmitted bool) Outcome {
	if strings.TrimSpace(answerText) == strings.TrimSpace(q.CorrectAnswer) {
		score := mcqFullScore
		feedback := appI18n.T(ctx, "FeedbackMCQCorrect")
		if autoSubmitted {
			score = mcqAutoSubmitScore
			feedback = appI18n.T(ctx, "FeedbackMCQCorrectLate")
		}
		return Outcome{
			Score:    score,
			Points:   e.PointsFor(score, q.Difficulty),
			Feedback: feedback,
		}
	}

	return Outcome{
		Score:  0,
		Points: 0,
		Feedback: appI18n.Td(ctx, "FeedbackMCQIncorrect", map[string]any{
			"Correct": q.CorrectAnswer,
		}),
	}
}

// scoreFreeText delegates to the gateway, falling back to the local
// heuristic on any gateway failure.
func (e *Engine) scoreFreeText(ctx context.Context, q model.Question, answerText string, timeSpent int, autoSubmitted bool) Outcome {
	result, err := e.gw.ScoreAnswer(ctx, gateway.ScoreRequest{
		Question:         q.Text,
		Answer:           answerText,
		Difficulty:       q.Difficulty,
		TimeSpentSeconds: timeSpent,
		TimeLimitSeconds: q.TimeLimitSeconds,
		AutoSubmitted:    autoSubmitted,
	})
	e.metrics.GatewayCall(err == nil)
	if err != nil {
		return e.fallback(ctx, q, answerText, autoSubmitted)
	}

	score := result.Score
	if autoSubmitted {
		score -= autoSubmitPenalty
		if score < 0 {
			score = 0
		}
	}
	return Outcome{
		Score:     score,
		Points:    e.PointsFor(score, q.Difficulty),
		Feedback:  result.Feedback,
		Reasoning: result.Reasoning,
	}
}

// fallback maps answer length to a score band. Deterministic and
// gateway-independent.
func (e *Engine) fallback(ctx context.Context, q model.Question, answerText string, autoSubmitted bool) Outcome {
	score := FallbackScore(answerText, autoSubmitted)
	return Outcome{
		Score:    score,
		Points:   e.PointsFor(score, q.Difficulty),
		Feedback: appI18n.T(ctx, "FeedbackFallbackNote"),
		Fallback: true,
	}
}

// FallbackScore is the local heuristic: word-count and character-length
// thresholds map to score bands, with the auto-submit penalty applied and
// floored at 50 for auto-submitted answers.
func FallbackScore(answerText string, autoSubmitted bool) int {
	trimmed := strings.TrimSpace(answerText)
	words := len(strings.Fields(trimmed))
	chars := len(trimmed)

	var score int
	switch {
	case words >= 30 && chars > 100:
		score = 95
	case words >= 20 && chars > 50:
		score = 85
	case words >= 10:
		score = 70
	default:
		score = 50
	}

	if autoSubmitted {
		score -= autoSubmitPenalty
		if score < fallbackAutoSubmitFloor {
			score = fallbackAutoSubmitFloor
		}
	}
	return score
}

// PointsFor converts a 0-100 score into the point value for a tier,
// capped at [0, cap]. The converted value, not the raw percentage, is what
// gets stored and summed.
func (e *Engine) PointsFor(score int, d model.Difficulty) int {
	maxPts := e.cfg.CapFor(d)
	points := int(math.Round(float64(score) / 100 * float64(maxPts)))
	if points < 0 {
		return 0
	}
	if points > maxPts {
		return maxPts
	}
	return points
}

// TotalScore recomputes the aggregate from the full answer sequence. The
// answers carry point values already, so the total is their plain sum.
func TotalScore(answers []model.Answer) int {
	total := 0
	for _, a := range answers {
		total += a.Score
	}
	return total
}

// Package gateway wraps the external AI question-generation and scoring
// endpoint behind a retrying client with bounded timeouts.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/pranavlonari/interview-assistant/internal/gateway/prompts"
	"github.com/pranavlonari/interview-assistant/internal/model"
)

const (
	// requestTimeout bounds a single gateway attempt, independent of the
	// question's own time limit.
	requestTimeout = 30 * time.Second
	maxAttempts    = 3
	// rateLimitMultiplier stretches the backoff when the endpoint says 429.
	rateLimitMultiplier = 3
	// mcqOptionCount is the required option count for multiple-choice turns.
	mcqOptionCount = 4
)

// baseBackoff is a variable so tests can shrink the retry delay.
var baseBackoff = time.Second

// ScoreRequest carries everything the gateway needs to score one answer.
type ScoreRequest struct {
	Question         string
	Answer           string
	Difficulty       model.Difficulty
	TimeSpentSeconds int
	TimeLimitSeconds int
	AutoSubmitted    bool
}

// ScoreResult is the gateway's verdict on one answer, as a 0-100 percentage.
type ScoreResult struct {
	Score     int    `json:"score"`
	Feedback  string `json:"feedback"`
	Reasoning string `json:"reasoning"`
}

// SummaryItem is one answered question in a summary request.
type SummaryItem struct {
	Question         string           `json:"question"`
	Answer           string           `json:"answer"`
	Score            int              `json:"score"`
	Difficulty       model.Difficulty `json:"difficulty"`
	TimeSpentSeconds int              `json:"time_spent_seconds"`
	AutoSubmitted    bool             `json:"auto_submitted"`
}

// SummaryResult is the gateway's final interview assessment.
type SummaryResult struct {
	OverallScore int      `json:"overall_score"`
	Summary      string   `json:"summary"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api   *openai.Client
	model string
}

// New creates a new gateway client.
func New(baseURL, apiKey, modelName string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:   openai.NewClientWithConfig(config),
		model: modelName,
	}
}

// Ping verifies the endpoint is reachable.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("gateway health check: %w", err)
	}
	return nil
}

// GenerateQuestion asks the gateway for one question of the given tier.
// Easy-tier questions are multiple-choice and must come back with exactly
// four options; any other count fails that attempt and is retried. After
// the final attempt the error surfaces to the caller: a turn cannot
// proceed without a question.
func (c *Client) GenerateQuestion(ctx context.Context, difficulty model.Difficulty, candidateContext string) (model.Question, error) {
	mcq := difficulty == model.DifficultyEasy
	prompt := prompts.BuildGeneratePrompt(prompts.GenerateData{
		Difficulty:       difficulty,
		CandidateContext: candidateContext,
		MultipleChoice:   mcq,
		OptionCount:      mcqOptionCount,
	})

	var parsed struct {
		Question      string   `json:"question"`
		Options       []string `json:"options"`
		CorrectAnswer string   `json:"correct_answer"`
	}

	err := c.withRetry(ctx, "generate question", func(ctx context.Context) error {
		raw, err := c.complete(ctx, prompt, 0.7)
		if err != nil {
			return err
		}
		parsed.Options = nil
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			return fmt.Errorf("parse generation response: %w (raw: %s)", err, raw)
		}
		if strings.TrimSpace(parsed.Question) == "" {
			return errors.New("generation response has empty question")
		}
		if mcq && len(parsed.Options) != mcqOptionCount {
			return fmt.Errorf("expected %d options, got %d", mcqOptionCount, len(parsed.Options))
		}
		return nil
	})
	if err != nil {
		return model.Question{}, err
	}

	q := model.Question{
		ID:         uuid.NewString(),
		Text:       strings.TrimSpace(parsed.Question),
		Difficulty: difficulty,
	}
	if mcq {
		q.Options = parsed.Options
		q.CorrectAnswer = strings.TrimSpace(parsed.CorrectAnswer)
	}
	return q, nil
}

// ScoreAnswer asks the gateway to score a free-text answer. The returned
// score is clamped to 0-100. Errors are surfaced to the caller, which is
// expected to fall back to local heuristic scoring.
func (c *Client) ScoreAnswer(ctx context.Context, req ScoreRequest) (ScoreResult, error) {
	prompt := prompts.BuildScorePrompt(prompts.ScoreData{
		Question:         req.Question,
		Answer:           req.Answer,
		Difficulty:       req.Difficulty,
		TimeSpentSeconds: req.TimeSpentSeconds,
		TimeLimitSeconds: req.TimeLimitSeconds,
		AutoSubmitted:    req.AutoSubmitted,
	})

	var result ScoreResult
	err := c.withRetry(ctx, "score answer", func(ctx context.Context) error {
		raw, err := c.complete(ctx, prompt, 0.3)
		if err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(raw), &result); err != nil {
			return fmt.Errorf("parse scoring response: %w (raw: %s)", err, raw)
		}
		return nil
	})
	if err != nil {
		return ScoreResult{}, err
	}

	if result.Score < 0 {
		result.Score = 0
	}
	if result.Score > 100 {
		result.Score = 100
	}
	return result, nil
}

// Summarize asks the gateway for a final assessment of the whole interview.
func (c *Client) Summarize(ctx context.Context, items []SummaryItem) (SummaryResult, error) {
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return SummaryResult{}, fmt.Errorf("marshal summary items: %w", err)
	}
	prompt := prompts.BuildSummaryPrompt(string(itemsJSON))

	var result SummaryResult
	err = c.withRetry(ctx, "summarize interview", func(ctx context.Context) error {
		raw, err := c.complete(ctx, prompt, 0.3)
		if err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(raw), &result); err != nil {
			return fmt.Errorf("parse summary response: %w (raw: %s)", err, raw)
		}
		return nil
	})
	if err != nil {
		return SummaryResult{}, err
	}
	return result, nil
}

// complete runs one chat completion and returns the raw content with any
// markdown code fences stripped.
func (c *Client) complete(ctx context.Context, systemPrompt string, temperature float32) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("gateway API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("gateway returned no choices")
	}
	raw := cleanJSONResponse(resp.Choices[0].Message.Content)
	slog.Debug("gateway response", "raw", raw)
	return raw, nil
}

// withRetry runs fn up to maxAttempts times with a bounded per-attempt
// timeout. Backoff grows linearly with the attempt number and is amplified
// past the first retry; rate-limit responses stretch it further.
func (c *Client) withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		err := fn(attemptCtx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		if attempt == maxAttempts {
			break
		}
		delay := backoffDelay(attempt, isRateLimited(err))
		slog.Warn("gateway call failed, retrying",
			"op", op, "attempt", attempt, "delay", delay, "error", err)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", op, ctx.Err())
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", op, maxAttempts, lastErr)
}

func backoffDelay(attempt int, rateLimited bool) time.Duration {
	d := time.Duration(attempt) * baseBackoff
	if attempt > 1 {
		d *= 2
	}
	if rateLimited {
		d *= rateLimitMultiplier
	}
	return d
}

func isRateLimited(err error) bool {
	var apiErr *openai.APIError
	return errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests
}

// cleanJSONResponse strips markdown code fences some models wrap around
// JSON output.
func cleanJSONResponse(response string) string {
	response = strings.ReplaceAll(response, "```json", "")
	response = strings.ReplaceAll(response, "```", "")
	return strings.TrimSpace(response)
}

package prompts

import (
	"strings"
	"testing"

	"github.com/pranavlonari/interview-assistant/internal/model"
)

func TestBuildGeneratePrompt(t *testing.T) {
	t.Run("multiple choice", func(t *testing.T) {
		prompt := BuildGeneratePrompt(GenerateData{
			Difficulty:     model.DifficultyEasy,
			MultipleChoice: true,
			OptionCount:    4,
		})
		if !strings.Contains(prompt, "easy") {
			t.Error("prompt should name the difficulty")
		}
		if !strings.Contains(prompt, "exactly 4 answer choices") {
			t.Error("prompt should require exactly 4 options")
		}
		if !strings.Contains(prompt, "correct_answer") {
			t.Error("prompt should request the correct answer field")
		}
	})

	t.Run("free text", func(t *testing.T) {
		prompt := BuildGeneratePrompt(GenerateData{Difficulty: model.DifficultyHard})
		if strings.Contains(prompt, "options") {
			t.Error("free-text prompt should not mention options")
		}
		if !strings.Contains(prompt, "hard") {
			t.Error("prompt should name the difficulty")
		}
	})

	t.Run("candidate context", func(t *testing.T) {
		prompt := BuildGeneratePrompt(GenerateData{
			Difficulty:       model.DifficultyMedium,
			CandidateContext: "5 years of React experience",
		})
		if !strings.Contains(prompt, "5 years of React experience") {
			t.Error("prompt should include the candidate context")
		}

		without := BuildGeneratePrompt(GenerateData{Difficulty: model.DifficultyMedium})
		if strings.Contains(without, "CANDIDATE BACKGROUND") {
			t.Error("prompt should omit the background section when context is empty")
		}
	})
}

func TestBuildScorePrompt(t *testing.T) {
	d := ScoreData{
		Question:         "Explain the virtual DOM.",
		Answer:           "It is an in-memory representation of the real DOM.",
		Difficulty:       model.DifficultyMedium,
		TimeSpentSeconds: 45,
		TimeLimitSeconds: 60,
	}

	prompt := BuildScorePrompt(d)
	if !strings.Contains(prompt, d.Question) {
		t.Error("prompt should contain the question")
	}
	if !strings.Contains(prompt, d.Answer) {
		t.Error("prompt should contain the answer")
	}
	if !strings.Contains(prompt, "LENIENT") {
		t.Error("prompt should state the lenient rubric")
	}
	if !strings.Contains(prompt, "45 of 60 seconds") {
		t.Error("prompt should report time spent against the limit")
	}
	if strings.Contains(prompt, "auto-submitted") {
		t.Error("prompt should omit the auto-submit note when not auto-submitted")
	}

	d.AutoSubmitted = true
	prompt = BuildScorePrompt(d)
	if !strings.Contains(prompt, "auto-submitted") {
		t.Error("prompt should carry the auto-submit note")
	}
}

func TestBuildSummaryPrompt(t *testing.T) {
	itemsJSON := `[{"question":"Q1","answer":"A1","score":4}]`
	prompt := BuildSummaryPrompt(itemsJSON)
	if !strings.Contains(prompt, itemsJSON) {
		t.Error("prompt should embed the answer history JSON")
	}
	if !strings.Contains(prompt, "overall_score") {
		t.Error("prompt should request the overall score field")
	}
}

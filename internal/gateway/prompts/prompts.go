// Package prompts builds the system prompts sent to the AI gateway.
package prompts

import (
	"fmt"
	"strings"

	"github.com/pranavlonari/interview-assistant/internal/model"
)

// GenerateData holds the inputs for a question-generation prompt.
type GenerateData struct {
	Difficulty       model.Difficulty
	CandidateContext string
	MultipleChoice   bool
	OptionCount      int
}

// ScoreData holds the inputs for an answer-scoring prompt.
type ScoreData struct {
	Question         string
	Answer           string
	Difficulty       model.Difficulty
	TimeSpentSeconds int
	TimeLimitSeconds int
	AutoSubmitted    bool
}

// BuildGeneratePrompt produces the system prompt for generating one
// interview question of the given tier.
func BuildGeneratePrompt(d GenerateData) string {
	var sb strings.Builder
	sb.WriteString("You are a technical interviewer for a full-stack (React/Node.js) software engineering role.\n")
	sb.WriteString(fmt.Sprintf("Generate exactly ONE %s interview question.\n\n", d.Difficulty))

	switch d.Difficulty {
	case model.DifficultyEasy:
		sb.WriteString("The question must test fundamental knowledge answerable in under 20 seconds.\n")
	case model.DifficultyMedium:
		sb.WriteString("The question must require practical understanding, answerable in about a minute.\n")
	case model.DifficultyHard:
		sb.WriteString("The question must probe architecture or deep internals, answerable in about two minutes.\n")
	}

	if d.CandidateContext != "" {
		sb.WriteString("\nCANDIDATE BACKGROUND (tailor the question to it where sensible):\n")
		sb.WriteString(d.CandidateContext + "\n")
	}

	sb.WriteString("\nRespond ONLY with a JSON object:\n")
	if d.MultipleChoice {
		sb.WriteString(fmt.Sprintf(
			`{"question": "<question text>", "options": [<exactly %d answer choices>], "correct_answer": "<the one correct choice, verbatim>"}`,
			d.OptionCount,
		))
	} else {
		sb.WriteString(`{"question": "<question text>"}`)
	}
	sb.WriteString("\n")

	return sb.String()
}

// BuildScorePrompt produces the system prompt for scoring a free-text
// answer. The rubric weights correctness and relevance most heavily and is
// deliberately lenient: a partially relevant, on-topic answer belongs in
// the 80-100 band; only clearly wrong or off-topic answers score low.
func BuildScorePrompt(d ScoreData) string {
	var sb strings.Builder
	sb.WriteString("You are scoring a candidate's answer in a technical interview.\n\n")
	sb.WriteString("QUESTION: " + d.Question + "\n\n")
	sb.WriteString("CANDIDATE ANSWER: " + d.Answer + "\n\n")
	sb.WriteString(fmt.Sprintf("DIFFICULTY: %s\n", d.Difficulty))
	sb.WriteString(fmt.Sprintf("TIME SPENT: %d of %d seconds\n", d.TimeSpentSeconds, d.TimeLimitSeconds))
	if d.AutoSubmitted {
		sb.WriteString("NOTE: the answer was auto-submitted when time expired; do not penalize for that here.\n")
	}

	sb.WriteString("\nSCORING RUBRIC (0-100):\n")
	sb.WriteString("- Correctness and relevance to the question carry most of the weight.\n")
	sb.WriteString("- Be LENIENT: a partially relevant, on-topic answer scores 80-100.\n")
	sb.WriteString("- An answer showing some understanding but with gaps scores 60-80.\n")
	sb.WriteString("- Only clearly wrong or off-topic answers score below 40.\n")
	sb.WriteString("- Do not penalize brevity if the core idea is right.\n")

	sb.WriteString("\nRespond ONLY with a JSON object:\n")
	sb.WriteString(`{"score": <integer 0 to 100>, "feedback": "<one or two sentences for the candidate>", "reasoning": "<brief internal reasoning>"}`)
	sb.WriteString("\n")

	return sb.String()
}

// BuildSummaryPrompt produces the system prompt for the final interview
// summary. itemsJSON is the serialized answer history.
func BuildSummaryPrompt(itemsJSON string) string {
	var sb strings.Builder
	sb.WriteString("You are summarizing a completed technical interview. ")
	sb.WriteString("Below is the full list of questions, answers, and per-question scores as JSON:\n\n")
	sb.WriteString(itemsJSON + "\n\n")
	sb.WriteString("Write a concise hiring summary of the candidate's performance.\n")
	sb.WriteString("Respond ONLY with a JSON object:\n")
	sb.WriteString(`{"overall_score": <integer 0 to 100>, "summary": "<2-3 sentence summary>", "strengths": ["<strength>", ...], "improvements": ["<area to improve>", ...]}`)
	sb.WriteString("\n")

	return sb.String()
}

package i18n

import (
	"context"
	"strings"
	"testing"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init(lang); err != nil {
		t.Fatalf("Init(%q): %v", lang, err)
	}
	loc := NewLocalizer(lang)
	return WithLocalizer(context.Background(), loc)
}

func TestTranslateEnglish(t *testing.T) {
	ctx := initLang(t, "en")

	got := T(ctx, "FeedbackMCQCorrect")
	if got != "Correct answer, well done." {
		t.Errorf("T(FeedbackMCQCorrect) = %q", got)
	}
}

func TestTranslateRussian(t *testing.T) {
	ctx := initLang(t, "ru")

	got := T(ctx, "FeedbackMCQCorrect")
	if got != "Правильный ответ, отлично." {
		t.Errorf("T(FeedbackMCQCorrect) = %q", got)
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	got := Td(ctx, "FeedbackMCQIncorrect", map[string]any{"Correct": "JavaScript XML"})
	if got != "Incorrect. The correct answer is: JavaScript XML." {
		t.Errorf("Td(FeedbackMCQIncorrect) = %q", got)
	}

	got = Td(ctx, "SummaryFallback", map[string]any{"Score": 64, "Questions": 6})
	if !strings.Contains(got, "64/100") {
		t.Errorf("Td(SummaryFallback) = %q, want score embedded", got)
	}
}

func TestDefaultLocalizerWithoutContext(t *testing.T) {
	initLang(t, "en")

	// Background contexts (scoring engine, timer path) fall back to the
	// Init language.
	got := T(context.Background(), "FeedbackNoAnswer")
	if got != "No answer was submitted before the question ended." {
		t.Errorf("T without localizer = %q", got)
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initLang(t, "en")

	got := T(ctx, "NonExistentKey")
	if got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want the key itself", got)
	}
}

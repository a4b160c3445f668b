// Package resume extracts contact fields from resume text. The orchestrator
// only consumes the structured fields plus the raw text; extraction of
// binary document formats happens upstream and is out of scope here.
package resume

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

// Typed extraction failures.
var (
	ErrUnsupportedFormat = errors.New("unsupported resume format")
	ErrEmptyContent      = errors.New("resume has no extractable text")
)

// Contact holds the fields guessed from a resume.
type Contact struct {
	Name    string
	Email   string
	Phone   string
	RawText string
}

var (
	emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRegex = regexp.MustCompile(`\+?\d[\d\s\-().]{7,}\d`)
)

// Extract parses resume text and guesses the contact fields. Binary input
// yields ErrUnsupportedFormat; blank input yields ErrEmptyContent.
func Extract(data []byte) (Contact, error) {
	if looksBinary(data) {
		return Contact{}, ErrUnsupportedFormat
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return Contact{}, ErrEmptyContent
	}

	c := Contact{RawText: text}
	c.Email = emailRegex.FindString(text)
	c.Phone = strings.TrimSpace(phoneRegex.FindString(text))
	c.Name = guessName(text)
	return c, nil
}

// looksBinary rejects known binary document magics and anything with NUL
// bytes in its head.
func looksBinary(data []byte) bool {
	if len(data) >= 4 {
		head := string(data[:4])
		// PDF and ZIP-based formats (docx etc).
		if head == "%PDF" || head == "PK\x03\x04" {
			return true
		}
	}
	limit := len(data)
	if limit > 512 {
		limit = 512
	}
	for _, b := range data[:limit] {
		if b == 0 {
			return true
		}
	}
	return false
}

// guessName returns the first short, letters-only line that is not an email
// or phone line. Resumes conventionally open with the candidate's name.
func guessName(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if emailRegex.MatchString(line) || phoneRegex.MatchString(line) {
			continue
		}
		words := strings.Fields(line)
		if len(words) < 2 || len(words) > 4 {
			continue
		}
		if !lettersOnly(words) {
			continue
		}
		return line
	}
	return ""
}

func lettersOnly(words []string) bool {
	for _, w := range words {
		for _, r := range w {
			if !unicode.IsLetter(r) && r != '.' && r != '-' && r != '\'' {
				return false
			}
		}
	}
	return true
}

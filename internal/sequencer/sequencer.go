// Package sequencer assigns a difficulty tier to each question slot of an
// interview under a fixed per-tier quota.
package sequencer

import (
	"github.com/pranavlonari/interview-assistant/internal/model"
)

// Sequencer tracks how many questions of each tier have actually been
// generated for the current session. The tracked counts are authoritative
// for quota enforcement; the index-derived expectation is only a starting
// point. Counters are session-scoped: Reset on start, Sync on resume.
//
// Sequencer is not safe for concurrent use; the session manager serializes
// access to it.
type Sequencer struct {
	cfg       model.InterviewConfig
	generated map[model.Difficulty]int
}

// New creates a sequencer for one session.
func New(cfg model.InterviewConfig) *Sequencer {
	s := &Sequencer{cfg: cfg}
	s.Reset()
	return s
}

// DifficultyForIndex maps a 0-based question index to its expected tier.
// It is a pure function of the configuration and the index, independent of
// what has actually been generated.
func (s *Sequencer) DifficultyForIndex(i int) model.Difficulty {
	easy := s.cfg.QuotaFor(model.DifficultyEasy)
	medium := s.cfg.QuotaFor(model.DifficultyMedium)
	switch {
	case i < easy:
		return model.DifficultyEasy
	case i < easy+medium:
		return model.DifficultyMedium
	default:
		return model.DifficultyHard
	}
}

// Assign returns the tier to generate for the question at index i. If the
// expected tier's quota is already exhausted the request is silently
// upgraded (easy to medium, medium to hard). This guards against the index
// and the generation counters drifting apart.
func (s *Sequencer) Assign(i int) model.Difficulty {
	d := s.DifficultyForIndex(i)
	if d == model.DifficultyEasy && s.generated[model.DifficultyEasy] >= s.cfg.QuotaFor(model.DifficultyEasy) {
		d = model.DifficultyMedium
	}
	if d == model.DifficultyMedium && s.generated[model.DifficultyMedium] >= s.cfg.QuotaFor(model.DifficultyMedium) {
		d = model.DifficultyHard
	}
	return d
}

// Record notes that a question of tier d was successfully generated.
// Failed generation attempts must not be recorded.
func (s *Sequencer) Record(d model.Difficulty) {
	s.generated[d]++
}

// Reset zeroes all generation counters. Called on session start so a fresh
// session never inherits stale counts.
func (s *Sequencer) Reset() {
	s.generated = make(map[model.Difficulty]int, len(model.Difficulties))
}

// Sync re-derives the generation counters from the actual answer history.
// Called on resume instead of trusting a running tally, so counters cannot
// stay out of step with persisted history after a reload.
func (s *Sequencer) Sync(answers []model.Answer) {
	s.Reset()
	for _, a := range answers {
		s.generated[a.Difficulty]++
	}
}

// Generated returns how many questions of tier d have been generated.
func (s *Sequencer) Generated(d model.Difficulty) int {
	return s.generated[d]
}

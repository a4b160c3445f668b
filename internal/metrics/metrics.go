// Package metrics holds in-process counters for the interview service.
package metrics

import (
	"sync"
	"time"
)

// Metrics counts orchestrator activity. All methods are safe for concurrent
// use and are no-ops on a nil receiver so wiring stays optional in tests.
type Metrics struct {
	mu sync.RWMutex

	SessionsStarted   int64
	SessionsCompleted int64
	QuestionsAsked    int64
	AnswersScored     int64
	FallbackScorings  int64
	GatewayCalls      int64
	GatewayFailures   int64

	LastUpdate time.Time
}

// New creates a zeroed metrics set.
func New() *Metrics {
	return &Metrics{LastUpdate: time.Now()}
}

func (m *Metrics) bump(f func()) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f()
	m.LastUpdate = time.Now()
}

// SessionStarted records one interview start.
func (m *Metrics) SessionStarted() { m.bump(func() { m.SessionsStarted++ }) }

// SessionCompleted records one interview completion.
func (m *Metrics) SessionCompleted() { m.bump(func() { m.SessionsCompleted++ }) }

// QuestionAsked records one successfully generated question.
func (m *Metrics) QuestionAsked() { m.bump(func() { m.QuestionsAsked++ }) }

// AnswerScored records one scored answer; fallback marks the local
// heuristic path.
func (m *Metrics) AnswerScored(fallback bool) {
	m.bump(func() {
		m.AnswersScored++
		if fallback {
			m.FallbackScorings++
		}
	})
}

// GatewayCall records one gateway round trip.
func (m *Metrics) GatewayCall(success bool) {
	m.bump(func() {
		m.GatewayCalls++
		if !success {
			m.GatewayFailures++
		}
	})
}

// Snapshot is a point-in-time copy of the counters, safe to serialize.
type Snapshot struct {
	SessionsStarted   int64     `json:"sessions_started"`
	SessionsCompleted int64     `json:"sessions_completed"`
	QuestionsAsked    int64     `json:"questions_asked"`
	AnswersScored     int64     `json:"answers_scored"`
	FallbackScorings  int64     `json:"fallback_scorings"`
	GatewayCalls      int64     `json:"gateway_calls"`
	GatewayFailures   int64     `json:"gateway_failures"`
	LastUpdate        time.Time `json:"last_update"`
}

// Snapshot returns a copy of the current counters.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		SessionsStarted:   m.SessionsStarted,
		SessionsCompleted: m.SessionsCompleted,
		QuestionsAsked:    m.QuestionsAsked,
		AnswersScored:     m.AnswersScored,
		FallbackScorings:  m.FallbackScorings,
		GatewayCalls:      m.GatewayCalls,
		GatewayFailures:   m.GatewayFailures,
		LastUpdate:        m.LastUpdate,
	}
}

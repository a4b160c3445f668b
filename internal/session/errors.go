package session

import "errors"

// Typed errors returned by Manager operations. The HTTP layer maps these
// to status codes.
var (
	ErrNoCandidate        = errors.New("no candidate session")
	ErrSessionActive      = errors.New("an interview is already in progress")
	ErrSessionCompleted   = errors.New("interview already completed")
	ErrIllegalTransition  = errors.New("operation not allowed in the current state")
	ErrMissingContact     = errors.New("candidate contact details incomplete")
	ErrDuplicateCandidate = errors.New("candidate has already completed an interview")
	ErrNoActiveQuestion   = errors.New("no active question")
	ErrQuestionActive     = errors.New("a question is already active")
	ErrGenerationInFlight = errors.New("question generation already in progress")
	ErrGatewayUnavailable = errors.New("question generation failed")
)

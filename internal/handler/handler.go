package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pranavlonari/interview-assistant/internal/metrics"
	"github.com/pranavlonari/interview-assistant/internal/model"
	"github.com/pranavlonari/interview-assistant/internal/resume"
	"github.com/pranavlonari/interview-assistant/internal/session"
	"github.com/pranavlonari/interview-assistant/internal/store"
)

// maxResumeSize bounds uploaded resume files.
const maxResumeSize = 5 << 20

// Config holds handler-level settings.
type Config struct {
	SecureCookies bool
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store   *store.Store
	manager *session.Manager
	metrics *metrics.Metrics
	config  Config
}

// New creates a new Handler.
func New(s *store.Store, m *session.Manager, mtr *metrics.Metrics, cfg Config) *Handler {
	return &Handler{store: s, manager: m, metrics: mtr, config: cfg}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/candidates", h.handleIntake)

	r.Route("/api/session", func(r chi.Router) {
		r.Get("/", h.handleSession)
		r.Post("/start", h.handleStart)
		r.Post("/pause", h.handlePause)
		r.Post("/resume", h.handleResume)
		r.Post("/complete", h.handleComplete)
		r.Post("/question", h.handleNextQuestion)
		r.Post("/answer", h.handleAnswer)
		r.Post("/visibility", h.handleVisibilityLoss)
		r.Post("/clear", h.handleClear)
	})

	r.Post("/api/login", h.handleLogin)
	r.Post("/api/logout", h.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Get("/api/candidates", h.handleListCandidates)
		r.Get("/api/candidates/{id}", h.handleGetCandidate)
		r.Get("/api/metrics", h.handleMetrics)
		r.With(requireRole(model.UserRoleAdmin)).Delete("/api/candidates/{id}", h.handleDeleteCandidate)
		r.With(requireRole(model.UserRoleAdmin)).Delete("/api/candidates", h.handleDeleteAllCandidates)
	})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// statusForError maps manager errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, session.ErrNoCandidate):
		return http.StatusNotFound
	case errors.Is(err, session.ErrDuplicateCandidate),
		errors.Is(err, session.ErrSessionActive),
		errors.Is(err, session.ErrQuestionActive),
		errors.Is(err, session.ErrGenerationInFlight):
		return http.StatusConflict
	case errors.Is(err, session.ErrSessionCompleted),
		errors.Is(err, session.ErrIllegalTransition),
		errors.Is(err, session.ErrMissingContact),
		errors.Is(err, session.ErrNoActiveQuestion):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrGatewayUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondManagerError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		slog.Error("session operation failed", "error", err)
		respondError(w, status, "internal error")
		return
	}
	respondError(w, status, err.Error())
}

type intakeRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	ResumeText string `json:"resume_text"`
}

type intakeResponse struct {
	Candidate     model.Candidate `json:"candidate"`
	MissingFields []string        `json:"missing_fields,omitempty"`
}

// handleIntake registers a candidate. The request is either a multipart
// form with a "resume" file plus optional field overrides, or a JSON body
// with the contact details spelled out. Extracted fields fill whatever
// the overrides leave blank.
func (h *Handler) handleIntake(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseIntake(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.manager.Intake(req.Name, req.Email, req.Phone, req.ResumeText)
	if err != nil {
		h.respondManagerError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, intakeResponse{
		Candidate:     c,
		MissingFields: c.MissingContactFields(),
	})
}

func (h *Handler) parseIntake(r *http.Request) (intakeRequest, error) {
	var req intakeRequest
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "multipart/form-data") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, errors.New("invalid request body")
		}
		return req, nil
	}

	if err := r.ParseMultipartForm(maxResumeSize); err != nil {
		return req, errors.New("invalid multipart form")
	}
	req.Name = r.FormValue("name")
	req.Email = r.FormValue("email")
	req.Phone = r.FormValue("phone")

	file, _, err := r.FormFile("resume")
	if err != nil {
		return req, errors.New("resume file missing")
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxResumeSize))
	if err != nil {
		return req, errors.New("failed to read resume file")
	}

	contact, err := resume.Extract(data)
	if err != nil {
		return req, err
	}
	if req.Name == "" {
		req.Name = contact.Name
	}
	if req.Email == "" {
		req.Email = contact.Email
	}
	if req.Phone == "" {
		req.Phone = contact.Phone
	}
	req.ResumeText = contact.RawText
	return req, nil
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.manager.Snapshot())
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.StartInterview(r.Context()); err != nil {
		h.respondManagerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.manager.Snapshot())
}

func (h *Handler) handlePause(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Pause(r.Context()); err != nil {
		h.respondManagerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.manager.Snapshot())
}

func (h *Handler) handleResume(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Resume(r.Context()); err != nil {
		h.respondManagerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.manager.Snapshot())
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Complete(r.Context()); err != nil {
		h.respondManagerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.manager.Snapshot())
}

// handleNextQuestion runs a synchronous generation retry: the response
// carries either the fresh question or a 502 when the gateway stayed down.
func (h *Handler) handleNextQuestion(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.RequestNextQuestion(r.Context()); err != nil {
		h.respondManagerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.manager.Snapshot())
}

type answerRequest struct {
	Text string `json:"text"`
	// AutoSubmitted marks answers the view committed on the candidate's
	// behalf, e.g. the typed text captured when the countdown ran out.
	AutoSubmitted bool `json:"auto_submitted"`
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.manager.SubmitAnswer(r.Context(), req.Text, req.AutoSubmitted); err != nil {
		h.respondManagerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.manager.Snapshot())
}

func (h *Handler) handleVisibilityLoss(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.ReportVisibilityLoss(r.Context()); err != nil {
		h.respondManagerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.manager.Snapshot())
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Clear(r.Context()); err != nil {
		h.respondManagerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.manager.Snapshot())
}

func (h *Handler) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.store.ListCandidates()
	if err != nil {
		slog.Error("list candidates", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if candidates == nil {
		candidates = []model.Candidate{}
	}
	respondJSON(w, http.StatusOK, candidates)
}

func (h *Handler) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.GetCandidate(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "candidate not found")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handler) handleDeleteCandidate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.store.GetCandidate(id); err != nil {
		respondError(w, http.StatusNotFound, "candidate not found")
		return
	}
	if err := h.store.DeleteCandidate(id); err != nil {
		slog.Error("delete candidate", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDeleteAllCandidates(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteAllCandidates(); err != nil {
		slog.Error("delete all candidates", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.metrics.Snapshot())
}

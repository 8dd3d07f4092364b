package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"classroom-backend/internal/middleware"
	"classroom-backend/internal/models"
	"classroom-backend/internal/quiz"
	"classroom-backend/internal/services"
)

type attemptService interface {
	Start(ctx context.Context, p middleware.Principal, quizID uuid.UUID) (*services.AttemptView, error)
	Get(ctx context.Context, p middleware.Principal, id uuid.UUID) (*services.AttemptView, error)
	SelectAnswer(ctx context.Context, p middleware.Principal, id uuid.UUID, questionIndex, optionIndex int) (*quiz.Snapshot, error)
	Submit(ctx context.Context, p middleware.Principal, id uuid.UUID) (*quiz.Result, error)
	Review(ctx context.Context, p middleware.Principal, id uuid.UUID, index *int) (*services.ReviewView, error)
	Reset(ctx context.Context, p middleware.Principal, id uuid.UUID) (*services.AttemptView, error)
	Cancel(ctx context.Context, p middleware.Principal, id uuid.UUID) (*quiz.Snapshot, error)
}

type AttemptHandler struct {
	attempts attemptService
}

func NewAttemptHandler(attempts attemptService) *AttemptHandler {
	return &AttemptHandler{attempts: attempts}
}

// Start begins an attempt at the quiz in the URL.
func (h *AttemptHandler) Start(w http.ResponseWriter, r *http.Request) {
	quizID, ok := pathID(w, r, "quiz")
	if !ok {
		return
	}

	view, err := h.attempts.Start(r.Context(), middleware.GetPrincipal(r.Context()), quizID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *AttemptHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "attempt")
	if !ok {
		return
	}

	view, err := h.attempts.Get(r.Context(), middleware.GetPrincipal(r.Context()), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *AttemptHandler) SelectAnswer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "attempt")
	if !ok {
		return
	}
	var req models.SelectAnswerRequest
	if !decode(w, r, &req) {
		return
	}

	snap, err := h.attempts.SelectAnswer(r.Context(), middleware.GetPrincipal(r.Context()), id, *req.QuestionIndex, *req.OptionIndex)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Submit scores the attempt. A result that was scored but not saved is still
// returned with persisted=false and a warning.
func (h *AttemptHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "attempt")
	if !ok {
		return
	}

	res, err := h.attempts.Submit(r.Context(), middleware.GetPrincipal(r.Context()), id)
	if err != nil && !errors.Is(err, quiz.ErrNotPersisted) {
		handleServiceError(w, r, err)
		return
	}

	body := map[string]interface{}{
		"result":    res,
		"persisted": res.Persisted,
	}
	if !res.Persisted {
		body["warning"] = "Your answers were scored but could not be saved. Please tell your teacher."
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *AttemptHandler) Review(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "attempt")
	if !ok {
		return
	}

	var index *int
	if raw := r.URL.Query().Get("index"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
				map[string]string{"index": "Must be a number"}, r))
			return
		}
		index = &n
	}

	review, err := h.attempts.Review(r.Context(), middleware.GetPrincipal(r.Context()), id, index)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (h *AttemptHandler) Reset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "attempt")
	if !ok {
		return
	}

	view, err := h.attempts.Reset(r.Context(), middleware.GetPrincipal(r.Context()), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *AttemptHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "attempt")
	if !ok {
		return
	}

	snap, err := h.attempts.Cancel(r.Context(), middleware.GetPrincipal(r.Context()), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

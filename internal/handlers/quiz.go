package handlers

import (
	"net/http"

	"classroom-backend/internal/middleware"
	"classroom-backend/internal/models"
	"classroom-backend/internal/services"
)

type QuizHandler struct {
	quizzes *services.QuizService
	catalog *services.CatalogService
}

func NewQuizHandler(quizzes *services.QuizService, catalog *services.CatalogService) *QuizHandler {
	return &QuizHandler{quizzes: quizzes, catalog: catalog}
}

func (h *QuizHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateQuizRequest
	if !decode(w, r, &req) {
		return
	}

	q, err := h.quizzes.Create(r.Context(), middleware.GetPrincipal(r.Context()), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

func (h *QuizHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.quizzes.ListMine(r.Context(), middleware.GetPrincipal(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch quizzes", r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"quizzes": quizzes})
}

func (h *QuizHandler) Publish(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "quiz")
	if !ok {
		return
	}

	q, err := h.quizzes.Publish(r.Context(), middleware.GetPrincipal(r.Context()), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *QuizHandler) Attempts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "quiz")
	if !ok {
		return
	}

	attempts, err := h.quizzes.Attempts(r.Context(), middleware.GetPrincipal(r.Context()), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"attempts": attempts})
}

// Catalog lists the published quizzes a student can take.
func (h *QuizHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	entries, err := h.catalog.Load(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load quizzes", r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"quizzes": entries})
}

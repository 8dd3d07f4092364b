package handlers

import (
	"net/http"

	"classroom-backend/internal/middleware"
	"classroom-backend/internal/models"
	"classroom-backend/internal/services"
)

type LabHandler struct {
	lab *services.LabService
}

func NewLabHandler(lab *services.LabService) *LabHandler {
	return &LabHandler{lab: lab}
}

func (h *LabHandler) CreateProblem(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProblemRequest
	if !decode(w, r, &req) {
		return
	}

	problem, err := h.lab.CreateProblem(r.Context(), middleware.GetPrincipal(r.Context()), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, problem)
}

func (h *LabHandler) ListProblems(w http.ResponseWriter, r *http.Request) {
	problems, err := h.lab.ListProblems(r.Context(), middleware.GetPrincipal(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch problems", r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"problems": problems})
}

func (h *LabHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "problem")
	if !ok {
		return
	}
	var req models.SubmitSolutionRequest
	if !decode(w, r, &req) {
		return
	}

	sub, err := h.lab.Submit(r.Context(), middleware.GetPrincipal(r.Context()), id, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *LabHandler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "problem")
	if !ok {
		return
	}

	subs, err := h.lab.ListSubmissions(r.Context(), middleware.GetPrincipal(r.Context()), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"submissions": subs})
}

func (h *LabHandler) Grade(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "submission")
	if !ok {
		return
	}
	var req models.GradeRequest
	if !decode(w, r, &req) {
		return
	}

	sub, err := h.lab.Grade(r.Context(), middleware.GetPrincipal(r.Context()), id, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

package handlers

import (
	"net/http"

	"classroom-backend/internal/middleware"
	"classroom-backend/internal/models"
	"classroom-backend/internal/services"
)

type CourseworkHandler struct {
	coursework *services.CourseworkService
}

func NewCourseworkHandler(coursework *services.CourseworkService) *CourseworkHandler {
	return &CourseworkHandler{coursework: coursework}
}

func (h *CourseworkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAssignmentRequest
	if !decode(w, r, &req) {
		return
	}

	a, err := h.coursework.CreateAssignment(r.Context(), middleware.GetPrincipal(r.Context()), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// List returns the teacher's own assignments, or a student's assignments
// with their submission status.
func (h *CourseworkHandler) List(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())

	var (
		list interface{}
		err  error
	)
	if p.Role == models.RoleTeacher {
		list, err = h.coursework.ListForTeacher(r.Context(), p)
	} else {
		list, err = h.coursework.ListForStudent(r.Context(), p)
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch assignments", r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"assignments": list})
}

func (h *CourseworkHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "assignment")
	if !ok {
		return
	}

	a, err := h.coursework.Get(r.Context(), middleware.GetPrincipal(r.Context()), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *CourseworkHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "assignment")
	if !ok {
		return
	}
	var req models.SubmitAssignmentRequest
	if !decode(w, r, &req) {
		return
	}

	sub, err := h.coursework.Submit(r.Context(), middleware.GetPrincipal(r.Context()), id, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *CourseworkHandler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "assignment")
	if !ok {
		return
	}

	subs, err := h.coursework.ListSubmissions(r.Context(), middleware.GetPrincipal(r.Context()), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"submissions": subs})
}

func (h *CourseworkHandler) Grade(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "submission")
	if !ok {
		return
	}
	var req models.GradeRequest
	if !decode(w, r, &req) {
		return
	}

	sub, err := h.coursework.Grade(r.Context(), middleware.GetPrincipal(r.Context()), id, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *CourseworkHandler) SuggestFeedback(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "submission")
	if !ok {
		return
	}

	suggestion, err := h.coursework.SuggestFeedback(r.Context(), middleware.GetPrincipal(r.Context()), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestion)
}

package handlers

import (
	"net/http"

	"classroom-backend/internal/middleware"
	"classroom-backend/internal/models"
	"classroom-backend/internal/services"
)

type CourseHandler struct {
	courses *services.CourseService
}

func NewCourseHandler(courses *services.CourseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCourseRequest
	if !decode(w, r, &req) {
		return
	}

	course, err := h.courses.Create(r.Context(), middleware.GetPrincipal(r.Context()), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, course)
}

func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courses.List(r.Context(), middleware.GetPrincipal(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"courses": courses})
}

func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "course")
	if !ok {
		return
	}

	course, err := h.courses.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (h *CourseHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "course")
	if !ok {
		return
	}

	enrollment, err := h.courses.Enroll(r.Context(), middleware.GetPrincipal(r.Context()), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, enrollment)
}

func (h *CourseHandler) Enrolled(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courses.Enrolled(r.Context(), middleware.GetPrincipal(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"courses": courses})
}

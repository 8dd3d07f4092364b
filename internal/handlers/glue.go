package handlers

import (
	"net/http"

	"classroom-backend/internal/middleware"
	"classroom-backend/internal/models"
	"classroom-backend/internal/services"
)

type GlueHandler struct {
	glue *services.GlueService
}

func NewGlueHandler(glue *services.GlueService) *GlueHandler {
	return &GlueHandler{glue: glue}
}

func (h *GlueHandler) CheckPlagiarism(w http.ResponseWriter, r *http.Request) {
	var req models.PlagiarismRequest
	if !decode(w, r, &req) {
		return
	}

	report, err := h.glue.CheckPlagiarism(r.Context(), middleware.GetPrincipal(r.Context()), req)
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *GlueHandler) GenerateLessonPlan(w http.ResponseWriter, r *http.Request) {
	var req models.LessonPlanRequest
	if !decode(w, r, &req) {
		return
	}

	plan, err := h.glue.LessonPlan(r.Context(), req)
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *GlueHandler) SaveLessonPlan(w http.ResponseWriter, r *http.Request) {
	var plan models.LessonPlan
	if !decode(w, r, &plan) {
		return
	}

	saved, err := h.glue.SaveLessonPlan(r.Context(), middleware.GetPrincipal(r.Context()), plan)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (h *GlueHandler) ListLessonPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.glue.ListLessonPlans(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch lesson plans", r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"lesson_plans": plans})
}

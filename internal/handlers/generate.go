package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"classroom-backend/internal/middleware"
	"classroom-backend/internal/models"
	"classroom-backend/internal/services"
)

// GenerateHandler queues generation jobs. Results arrive as drafts and are
// announced over the websocket.
type GenerateHandler struct {
	jobs *services.JobService
}

func NewGenerateHandler(jobs *services.JobService) *GenerateHandler {
	return &GenerateHandler{jobs: jobs}
}

func (h *GenerateHandler) enqueue(w http.ResponseWriter, r *http.Request, jobType string, courseID uuid.UUID, cfg any) {
	job, err := h.jobs.Enqueue(r.Context(), middleware.GetPrincipal(r.Context()), jobType, courseID, cfg)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id": job.ID,
		"status": job.Status,
	})
}

func (h *GenerateHandler) Quiz(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateQuizRequest
	if !decode(w, r, &req) {
		return
	}
	h.enqueue(w, r, models.JobQuizGeneration, req.CourseID, req)
}

func (h *GenerateHandler) Assignment(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateAssignmentRequest
	if !decode(w, r, &req) {
		return
	}
	h.enqueue(w, r, models.JobAssignmentGeneration, req.CourseID, req)
}

func (h *GenerateHandler) Problem(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateProblemRequest
	if !decode(w, r, &req) {
		return
	}
	h.enqueue(w, r, models.JobProblemGeneration, req.CourseID, req)
}

type JobHandler struct {
	jobs *services.JobService
}

func NewJobHandler(jobs *services.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "job")
	if !ok {
		return
	}

	job, err := h.jobs.Get(r.Context(), middleware.GetPrincipal(r.Context()), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

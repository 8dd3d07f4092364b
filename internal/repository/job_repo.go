package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"classroom-backend/internal/docstore"
	"classroom-backend/internal/models"
)

type JobRepo struct {
	store docstore.Store
}

func NewJobRepo(store docstore.Store) *JobRepo {
	return &JobRepo{store: store}
}

func (r *JobRepo) Create(ctx context.Context, j *models.Job) error {
	j.ID = uuid.New()
	j.Status = models.JobPending
	j.CreatedAt = time.Now().UTC()
	if len(j.ConfigJSON) == 0 {
		j.ConfigJSON = []byte("{}")
	}
	return docstore.Put(ctx, r.store, CollJobs, j.ID.String(), j)
}

func (r *JobRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	return docstore.GetAs[models.Job](ctx, r.store, CollJobs, id.String())
}

func (r *JobRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	fields := map[string]any{"status": status}
	if status == models.JobCompleted || status == models.JobFailed {
		fields["completed_at"] = time.Now().UTC()
	}
	return r.store.Update(ctx, CollJobs, id.String(), fields)
}

// SetReference records the draft a completed job produced.
func (r *JobRepo) SetReference(ctx context.Context, id, referenceID uuid.UUID) error {
	return r.store.Update(ctx, CollJobs, id.String(), map[string]any{"reference_id": referenceID})
}

func (r *JobRepo) UpdateError(ctx context.Context, id uuid.UUID, errMsg string) error {
	return r.store.Update(ctx, CollJobs, id.String(), map[string]any{"error_message": errMsg})
}

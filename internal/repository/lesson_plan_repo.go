package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"classroom-backend/internal/docstore"
	"classroom-backend/internal/models"
)

type LessonPlanRepo struct {
	store docstore.Store
}

func NewLessonPlanRepo(store docstore.Store) *LessonPlanRepo {
	return &LessonPlanRepo{store: store}
}

func (r *LessonPlanRepo) Create(ctx context.Context, p *models.LessonPlan) error {
	p.ID = uuid.New()
	now := time.Now().UTC()
	p.CreatedAt = &now
	return docstore.Put(ctx, r.store, CollLessonPlans, p.ID.String(), p)
}

func (r *LessonPlanRepo) ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]models.LessonPlan, error) {
	items, err := docstore.QueryAs[models.LessonPlan](ctx, r.store, CollLessonPlans, "teacher_id", teacherID)
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

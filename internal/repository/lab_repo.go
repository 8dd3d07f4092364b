package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"classroom-backend/internal/docstore"
	"classroom-backend/internal/models"
)

// LabRepo covers coding problems and the solutions submitted for them.
type LabRepo struct {
	store docstore.Store
}

func NewLabRepo(store docstore.Store) *LabRepo {
	return &LabRepo{store: store}
}

func (r *LabRepo) CreateProblem(ctx context.Context, p *models.CodingProblem) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now().UTC()
	return docstore.Put(ctx, r.store, CollProblems, p.ID.String(), p)
}

func (r *LabRepo) GetProblem(ctx context.Context, id uuid.UUID) (*models.CodingProblem, error) {
	return docstore.GetAs[models.CodingProblem](ctx, r.store, CollProblems, id.String())
}

func (r *LabRepo) ListProblems(ctx context.Context) ([]models.CodingProblem, error) {
	items, err := docstore.ListAs[models.CodingProblem](ctx, r.store, CollProblems)
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

func (r *LabRepo) ListProblemsByTeacher(ctx context.Context, teacherID uuid.UUID) ([]models.CodingProblem, error) {
	items, err := docstore.QueryAs[models.CodingProblem](ctx, r.store, CollProblems, "teacher_id", teacherID)
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

func (r *LabRepo) CreateSubmission(ctx context.Context, s *models.LabSubmission) error {
	s.ID = uuid.New()
	s.SubmittedAt = time.Now().UTC()
	return docstore.Put(ctx, r.store, CollLabSubmissions, s.ID.String(), s)
}

func (r *LabRepo) GetSubmission(ctx context.Context, id uuid.UUID) (*models.LabSubmission, error) {
	return docstore.GetAs[models.LabSubmission](ctx, r.store, CollLabSubmissions, id.String())
}

func (r *LabRepo) ListSubmissionsByUser(ctx context.Context, userID uuid.UUID) ([]models.LabSubmission, error) {
	items, err := docstore.QueryAs[models.LabSubmission](ctx, r.store, CollLabSubmissions, "user_id", userID)
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

func (r *LabRepo) ListSubmissionsByProblem(ctx context.Context, problemID uuid.UUID) ([]models.LabSubmission, error) {
	items, err := docstore.QueryAs[models.LabSubmission](ctx, r.store, CollLabSubmissions, "problem_id", problemID)
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

func (r *LabRepo) GradeSubmission(ctx context.Context, id uuid.UUID, grade int, feedback string) error {
	return r.store.Update(ctx, CollLabSubmissions, id.String(), map[string]any{
		"grade":     grade,
		"feedback":  feedback,
		"graded_at": time.Now().UTC(),
	})
}

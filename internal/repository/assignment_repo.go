package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"classroom-backend/internal/docstore"
	"classroom-backend/internal/models"
)

type AssignmentRepo struct {
	store docstore.Store
}

func NewAssignmentRepo(store docstore.Store) *AssignmentRepo {
	return &AssignmentRepo{store: store}
}

func (r *AssignmentRepo) Create(ctx context.Context, a *models.Assignment) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()
	return docstore.Put(ctx, r.store, CollAssignments, a.ID.String(), a)
}

func (r *AssignmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	return docstore.GetAs[models.Assignment](ctx, r.store, CollAssignments, id.String())
}

func (r *AssignmentRepo) List(ctx context.Context) ([]models.Assignment, error) {
	items, err := docstore.ListAs[models.Assignment](ctx, r.store, CollAssignments)
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

func (r *AssignmentRepo) ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]models.Assignment, error) {
	items, err := docstore.QueryAs[models.Assignment](ctx, r.store, CollAssignments, "teacher_id", teacherID)
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

type SubmissionRepo struct {
	store docstore.Store
}

func NewSubmissionRepo(store docstore.Store) *SubmissionRepo {
	return &SubmissionRepo{store: store}
}

func (r *SubmissionRepo) Create(ctx context.Context, s *models.Submission) error {
	s.ID = uuid.New()
	s.SubmittedAt = time.Now().UTC()
	return docstore.Put(ctx, r.store, CollSubmissions, s.ID.String(), s)
}

func (r *SubmissionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	return docstore.GetAs[models.Submission](ctx, r.store, CollSubmissions, id.String())
}

func (r *SubmissionRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Submission, error) {
	items, err := docstore.QueryAs[models.Submission](ctx, r.store, CollSubmissions, "user_id", userID)
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

func (r *SubmissionRepo) ListByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]models.Submission, error) {
	items, err := docstore.QueryAs[models.Submission](ctx, r.store, CollSubmissions, "assignment_id", assignmentID)
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

// Grade is a partial update: content and metadata are left alone.
func (r *SubmissionRepo) Grade(ctx context.Context, id uuid.UUID, grade int, feedback string, gradedBy uuid.UUID) error {
	return r.store.Update(ctx, CollSubmissions, id.String(), map[string]any{
		"grade":     grade,
		"feedback":  feedback,
		"graded_at": time.Now().UTC(),
		"graded_by": gradedBy,
	})
}

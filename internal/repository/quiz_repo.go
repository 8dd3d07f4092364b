package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"classroom-backend/internal/docstore"
	"classroom-backend/internal/models"
)

type QuizRepo struct {
	store docstore.Store
}

func NewQuizRepo(store docstore.Store) *QuizRepo {
	return &QuizRepo{store: store}
}

func (r *QuizRepo) Create(ctx context.Context, q *models.Quiz) error {
	q.ID = uuid.New()
	q.CreatedAt = time.Now().UTC()
	return docstore.Put(ctx, r.store, CollQuizzes, q.ID.String(), q)
}

func (r *QuizRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Quiz, error) {
	return docstore.GetAs[models.Quiz](ctx, r.store, CollQuizzes, id.String())
}

// List returns every quiz, drafts included.
func (r *QuizRepo) List(ctx context.Context) ([]models.Quiz, error) {
	quizzes, err := docstore.ListAs[models.Quiz](ctx, r.store, CollQuizzes)
	if err != nil {
		return nil, err
	}
	return deref(quizzes), nil
}

func (r *QuizRepo) ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]models.Quiz, error) {
	quizzes, err := docstore.QueryAs[models.Quiz](ctx, r.store, CollQuizzes, "teacher_id", teacherID)
	if err != nil {
		return nil, err
	}
	return deref(quizzes), nil
}

func (r *QuizRepo) Publish(ctx context.Context, id uuid.UUID) error {
	return r.store.Update(ctx, CollQuizzes, id.String(), map[string]any{"published": true})
}

// AttemptRepo stores submitted attempts. Records are written once and
// never updated.
type AttemptRepo struct {
	store docstore.Store
}

func NewAttemptRepo(store docstore.Store) *AttemptRepo {
	return &AttemptRepo{store: store}
}

func (r *AttemptRepo) SaveAttempt(ctx context.Context, rec *models.AttemptRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	return docstore.Put(ctx, r.store, CollAttempts, rec.ID.String(), rec)
}

func (r *AttemptRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.AttemptRecord, error) {
	attempts, err := docstore.QueryAs[models.AttemptRecord](ctx, r.store, CollAttempts, "user_id", userID)
	if err != nil {
		return nil, err
	}
	return deref(attempts), nil
}

func (r *AttemptRepo) ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]models.AttemptRecord, error) {
	attempts, err := docstore.QueryAs[models.AttemptRecord](ctx, r.store, CollAttempts, "quiz_id", quizID)
	if err != nil {
		return nil, err
	}
	return deref(attempts), nil
}

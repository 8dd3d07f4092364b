package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"classroom-backend/internal/middleware"
	"classroom-backend/internal/models"
	"classroom-backend/internal/repository"
)

// QuizService is the teacher side of quizzes: drafts, publishing and the
// responses view.
type QuizService struct {
	quizzes  *repository.QuizRepo
	attempts *repository.AttemptRepo
	courses  *CourseService
}

func NewQuizService(quizzes *repository.QuizRepo, attempts *repository.AttemptRepo, courses *CourseService) *QuizService {
	return &QuizService{quizzes: quizzes, attempts: attempts, courses: courses}
}

// Create stores a quiz. It stays a draft unless req.Published is set.
func (s *QuizService) Create(ctx context.Context, p middleware.Principal, req models.CreateQuizRequest) (*models.Quiz, error) {
	course, err := s.courses.Owned(ctx, p, req.CourseID)
	if err != nil {
		return nil, err
	}

	q := &models.Quiz{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Questions:   req.Questions,
		TimeLimit:   req.TimeLimit,
		DueDate:     req.DueDate,
		Published:   req.Published,
		CourseID:    course.ID,
		CourseName:  course.Title,
		TeacherID:   p.UserID,
	}
	if err := s.quizzes.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuizService) ListMine(ctx context.Context, p middleware.Principal) ([]models.Quiz, error) {
	return s.quizzes.ListByTeacher(ctx, p.UserID)
}

func (s *QuizService) owned(ctx context.Context, p middleware.Principal, id uuid.UUID) (*models.Quiz, error) {
	q, err := s.quizzes.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Quiz not found")
	}
	if q.TeacherID != p.UserID {
		return nil, &ForbiddenError{Message: "You do not own this quiz"}
	}
	return q, nil
}

// Publish makes a draft visible to enrolled students. Published quizzes are
// not edited afterwards, so publishing twice is a conflict.
func (s *QuizService) Publish(ctx context.Context, p middleware.Principal, id uuid.UUID) (*models.Quiz, error) {
	q, err := s.owned(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if q.Published {
		return nil, &ConflictError{Message: "Quiz is already published"}
	}
	if len(q.Questions) == 0 {
		return nil, &ValidationError{Fields: map[string]string{"questions": "A quiz needs at least one question before it can be published"}}
	}
	if err := s.quizzes.Publish(ctx, id); err != nil {
		return nil, notFound(err, "Quiz not found")
	}
	q.Published = true
	return q, nil
}

// Attempts lists every submitted attempt at one of the teacher's quizzes.
func (s *QuizService) Attempts(ctx context.Context, p middleware.Principal, id uuid.UUID) ([]models.AttemptRecord, error) {
	if _, err := s.owned(ctx, p, id); err != nil {
		return nil, err
	}
	return s.attempts.ListByQuiz(ctx, id)
}

// SaveDraft stores a generated quiz as an unpublished draft.
func (s *QuizService) SaveDraft(ctx context.Context, q *models.Quiz) error {
	q.Published = false
	return s.quizzes.Create(ctx, q)
}

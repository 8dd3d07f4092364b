package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"

	"classroom-backend/internal/models"
	"classroom-backend/internal/repository"
)

// CatalogService builds the list of quizzes a student can take.
type CatalogService struct {
	enrollments *repository.EnrollmentRepo
	quizzes     *repository.QuizRepo
	attempts    *repository.AttemptRepo
}

func NewCatalogService(enrollments *repository.EnrollmentRepo, quizzes *repository.QuizRepo, attempts *repository.AttemptRepo) *CatalogService {
	return &CatalogService{enrollments: enrollments, quizzes: quizzes, attempts: attempts}
}

// Load returns every published quiz in the student's enrolled courses, with
// completion and score taken from the student's latest submitted attempt.
// Drafts are never included.
func (s *CatalogService) Load(ctx context.Context, studentID uuid.UUID) ([]models.CatalogEntry, error) {
	courseIDs, err := s.enrollments.CourseIDs(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("load enrollments: %w", err)
	}
	if len(courseIDs) == 0 {
		return []models.CatalogEntry{}, nil
	}

	quizzes, err := s.quizzes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load quizzes: %w", err)
	}

	attempts, err := s.attempts.ListByUser(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("load attempts: %w", err)
	}
	latest := make(map[uuid.UUID]models.AttemptRecord, len(attempts))
	for _, a := range attempts {
		if a.Status != models.AttemptSubmitted {
			continue
		}
		if prev, ok := latest[a.QuizID]; !ok || a.SubmittedAt.After(prev.SubmittedAt) {
			latest[a.QuizID] = a
		}
	}

	entries := make([]models.CatalogEntry, 0, len(quizzes))
	for i := range quizzes {
		q := &quizzes[i]
		if !q.Published || !courseIDs[q.CourseID] {
			continue
		}

		var entry models.CatalogEntry
		if err := copier.Copy(&entry, q); err != nil {
			return nil, fmt.Errorf("map quiz %s: %w", q.ID, err)
		}
		entry.QuestionCount = len(q.Questions)
		if a, ok := latest[q.ID]; ok {
			score := a.Score
			entry.Completed = true
			entry.Score = &score
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

package services

import (
	"context"
	"hash/fnv"
	"strings"
	"time"

	"github.com/google/uuid"

	"classroom-backend/internal/middleware"
	"classroom-backend/internal/models"
	"classroom-backend/internal/repository"
)

// GlueService backs the two simulated endpoints: plagiarism checks and
// lesson-plan generation. Both answer after a fixed delay with canned
// content shaped like the real thing.
type GlueService struct {
	delay      time.Duration
	coursework *CourseworkService
	plans      *repository.LessonPlanRepo
}

func NewGlueService(delay time.Duration, coursework *CourseworkService, plans *repository.LessonPlanRepo) *GlueService {
	return &GlueService{delay: delay, coursework: coursework, plans: plans}
}

var plagiarismAnalysis = []string{
	"Text analyzed for common patterns and online matches.",
	"Linguistic analysis performed to detect unusual writing styles.",
	"Paragraph structures examined for consistency.",
}

var plagiarismSources = []string{
	"www.example.com/essay-resources (73% match)",
	"www.academicpapers.org/topics/science (41% match)",
}

func (s *GlueService) CheckPlagiarism(ctx context.Context, p middleware.Principal, req models.PlagiarismRequest) (*models.PlagiarismReport, error) {
	text := req.Text
	if req.SubmissionID != nil {
		var err error
		if text, err = s.coursework.Text(ctx, p, *req.SubmissionID); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(text) == "" {
		return nil, &ValidationError{Fields: map[string]string{"text": "There is no text to check"}}
	}

	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	score := plagiarismScore(text)
	report := &models.PlagiarismReport{
		PlagiarismScore: score,
		Analysis:        append([]string(nil), plagiarismAnalysis...),
		MatchedSources:  []string{},
	}
	if score > 30 {
		report.MatchedSources = append(report.MatchedSources, plagiarismSources...)
	}
	return report, nil
}

// plagiarismScore is a stable 0..99 value derived from the normalized text,
// so the same essay always gets the same score.
func plagiarismScore(text string) int {
	normalized := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	h := fnv.New32a()
	h.Write([]byte(normalized))
	return int(h.Sum32() % 100)
}

func (s *GlueService) LessonPlan(ctx context.Context, req models.LessonPlanRequest) (*models.LessonPlan, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	topic := strings.TrimSpace(req.Topic)
	return &models.LessonPlan{
		MainTopic: topic,
		Subtopics: []models.Subtopic{
			{
				Title:       "Introduction to " + topic,
				Description: "Basic concepts and historical context",
				Activities:  []string{"Group discussion", "Video introduction", "Interactive timeline"},
				Resources:   []string{"Introductory video", "Digital timeline", "Reading materials"},
			},
			{
				Title:       "Core Concepts of " + topic,
				Description: "Detailed exploration of fundamental principles",
				Activities:  []string{"Guided practice", "Concept mapping", "Digital simulation"},
				Resources:   []string{"Practice worksheet", "Digital simulation tool", "Visual aids"},
			},
		},
		LearningObjectives: []string{
			"Students will explain the key principles",
			"Students will apply concepts to solve problems",
			"Students will analyze real-world examples",
		},
		SuggestedTimeframe: req.Duration,
		AssessmentIdeas: []string{
			"Portfolio of concept applications",
			"Project-based assessment with presentation",
			"Formative quizzes throughout the unit",
		},
	}, nil
}

func (s *GlueService) SaveLessonPlan(ctx context.Context, p middleware.Principal, plan models.LessonPlan) (*models.LessonPlan, error) {
	if plan.CourseID != nil {
		if _, err := s.coursework.courses.Owned(ctx, p, *plan.CourseID); err != nil {
			return nil, err
		}
	}
	plan.TeacherID = p.UserID
	if err := s.plans.Create(ctx, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (s *GlueService) ListLessonPlans(ctx context.Context, teacherID uuid.UUID) ([]models.LessonPlan, error) {
	return s.plans.ListByTeacher(ctx, teacherID)
}

func (s *GlueService) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return nil
	}
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

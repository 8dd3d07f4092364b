package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"classroom-backend/internal/docstore"
	"classroom-backend/internal/generation"
	"classroom-backend/internal/middleware"
	"classroom-backend/internal/models"
	"classroom-backend/internal/repository"
)

type recordingPublisher struct {
	mu       sync.Mutex
	messages []models.WSMessage
}

func (r *recordingPublisher) PublishUpdate(_ context.Context, _ uuid.UUID, msg models.WSMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.messages))
	for i, m := range r.messages {
		out[i] = m.Type
	}
	return out
}

// classroom is one teacher, one course and one enrolled student on a memory
// store.
type classroom struct {
	store       docstore.Store
	courseRepo  *repository.CourseRepo
	enrollments *repository.EnrollmentRepo
	quizRepo    *repository.QuizRepo
	attemptRepo *repository.AttemptRepo

	courses    *CourseService
	quizzes    *QuizService
	coursework *CourseworkService
	lab        *LabService
	generator  *generation.MockGenerator
	published  *recordingPublisher

	teacher  middleware.Principal
	student  middleware.Principal
	outsider middleware.Principal
	course   *models.Course
}

func newClassroom(t *testing.T, responses ...generation.MockResponse) *classroom {
	t.Helper()
	ctx := context.Background()
	store := docstore.NewMemoryStore()

	c := &classroom{
		store:       store,
		courseRepo:  repository.NewCourseRepo(store),
		enrollments: repository.NewEnrollmentRepo(store),
		quizRepo:    repository.NewQuizRepo(store),
		attemptRepo: repository.NewAttemptRepo(store),
		generator:   generation.NewMockGenerator(responses...),
		published:   &recordingPublisher{},
		teacher:     middleware.Principal{UserID: uuid.New(), Name: "Ada Teacher", Role: models.RoleTeacher},
		student:     middleware.Principal{UserID: uuid.New(), Name: "Sam Student", Role: models.RoleStudent},
		outsider:    middleware.Principal{UserID: uuid.New(), Name: "Olu Outsider", Role: models.RoleStudent},
	}
	c.courses = NewCourseService(c.courseRepo, c.enrollments)
	c.quizzes = NewQuizService(c.quizRepo, c.attemptRepo, c.courses)
	c.coursework = NewCourseworkService(
		repository.NewAssignmentRepo(store),
		repository.NewSubmissionRepo(store),
		c.enrollments,
		c.courses,
		generation.NewService(c.generator, nil),
		nil,
		NewFileExtractService(DefaultMaxExtractChars),
	)
	c.lab = NewLabService(repository.NewLabRepo(store), c.enrollments, c.courses)

	course, err := c.courses.Create(ctx, c.teacher, models.CreateCourseRequest{Title: "Physics 101"})
	require.NoError(t, err)
	c.course = course

	_, err = c.courses.Enroll(ctx, c.student, course.ID)
	require.NoError(t, err)
	return c
}

func threeQuestions() []models.Question {
	return []models.Question{
		{Question: "Unit of force?", Options: []string{"Joule", "Newton", "Watt", "Pascal"}, CorrectAnswer: 1},
		{Question: "Speed of light in km/s?", Options: []string{"300000", "150000", "3000", "30"}, CorrectAnswer: 0},
		{Question: "g on Earth in m/s²?", Options: []string{"1.6", "3.7", "9.8", "24.8"}, CorrectAnswer: 2},
	}
}

func (c *classroom) quiz(t *testing.T, published bool, timeLimit int) *models.Quiz {
	t.Helper()
	q, err := c.quizzes.Create(context.Background(), c.teacher, models.CreateQuizRequest{
		Title:     "Mechanics",
		CourseID:  c.course.ID,
		TimeLimit: timeLimit,
		Published: published,
		Questions: threeQuestions(),
	})
	require.NoError(t, err)
	return q
}

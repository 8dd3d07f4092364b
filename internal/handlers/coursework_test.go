package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"classroom-backend/internal/docstore"
	"classroom-backend/internal/generation"
	"classroom-backend/internal/middleware"
	"classroom-backend/internal/models"
	"classroom-backend/internal/repository"
	"classroom-backend/internal/services"
)

type school struct {
	courses    *services.CourseService
	quizzes    *services.QuizService
	catalog    *services.CatalogService
	coursework *services.CourseworkService
	glue       *services.GlueService
	teacher    middleware.Principal
	course     *models.Course
}

func newSchool(t *testing.T) *school {
	t.Helper()
	store := docstore.NewMemoryStore()
	courseRepo := repository.NewCourseRepo(store)
	enrollments := repository.NewEnrollmentRepo(store)
	quizRepo := repository.NewQuizRepo(store)
	attemptRepo := repository.NewAttemptRepo(store)

	courses := services.NewCourseService(courseRepo, enrollments)
	coursework := services.NewCourseworkService(
		repository.NewAssignmentRepo(store), repository.NewSubmissionRepo(store),
		enrollments, courses, generation.NewService(generation.NewMockGenerator(), nil), nil, nil,
	)
	s := &school{
		courses:    courses,
		quizzes:    services.NewQuizService(quizRepo, attemptRepo, courses),
		catalog:    services.NewCatalogService(enrollments, quizRepo, attemptRepo),
		coursework: coursework,
		glue:       services.NewGlueService(0, coursework, repository.NewLessonPlanRepo(store)),
		teacher:    middleware.Principal{UserID: uuid.New(), Name: "Ada", Role: models.RoleTeacher},
	}

	course, err := courses.Create(context.Background(), s.teacher, models.CreateCourseRequest{Title: "History"})
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	s.course = course
	return s
}

func TestQuizHandler_CreatePublishCatalog(t *testing.T) {
	s := newSchool(t)
	h := NewQuizHandler(s.quizzes, s.catalog)

	body := models.CreateQuizRequest{
		Title:    "Rome",
		CourseID: s.course.ID,
		Questions: []models.Question{
			{Question: "Founded?", Options: []string{"753 BC", "509 BC", "27 BC", "476 AD"}, CorrectAnswer: 0},
		},
	}
	rr := httptest.NewRecorder()
	h.Create(rr, as(newRequest(http.MethodPost, "/quizzes", body), s.teacher))
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var q models.Quiz
	json.NewDecoder(rr.Body).Decode(&q)
	if q.Published {
		t.Error("Expected a draft")
	}

	learner := middleware.Principal{UserID: uuid.New(), Name: "Lin", Role: models.RoleStudent}
	if _, err := s.courses.Enroll(context.Background(), learner, s.course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	rr = httptest.NewRecorder()
	h.Catalog(rr, as(newRequest(http.MethodGet, "/quizzes/catalog", nil), learner))
	var catalog struct {
		Quizzes []models.CatalogEntry `json:"quizzes"`
	}
	json.NewDecoder(rr.Body).Decode(&catalog)
	if len(catalog.Quizzes) != 0 {
		t.Fatalf("Expected drafts to be hidden, got %d entries", len(catalog.Quizzes))
	}

	rr = httptest.NewRecorder()
	h.Publish(rr, as(withID(newRequest(http.MethodPut, "/", nil), q.ID.String()), s.teacher))
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.Publish(rr, as(withID(newRequest(http.MethodPut, "/", nil), q.ID.String()), s.teacher))
	if rr.Code != http.StatusConflict {
		t.Errorf("Expected 409 on second publish, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.Catalog(rr, as(newRequest(http.MethodGet, "/quizzes/catalog", nil), learner))
	json.NewDecoder(rr.Body).Decode(&catalog)
	if len(catalog.Quizzes) != 1 || catalog.Quizzes[0].QuestionCount != 1 {
		t.Errorf("Unexpected catalog %+v", catalog.Quizzes)
	}
}

func TestCourseworkHandler_GradeOutOfRange(t *testing.T) {
	s := newSchool(t)
	h := NewCourseworkHandler(s.coursework)
	ctx := context.Background()

	a, err := s.coursework.CreateAssignment(ctx, s.teacher, models.CreateAssignmentRequest{Title: "Essay", CourseID: s.course.ID})
	if err != nil {
		t.Fatal(err)
	}
	learner := middleware.Principal{UserID: uuid.New(), Name: "Lin", Role: models.RoleStudent}
	s.courses.Enroll(ctx, learner, s.course.ID)
	sub, err := s.coursework.Submit(ctx, learner, a.ID, models.SubmitAssignmentRequest{Content: "Carthage must be destroyed."})
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	h.Grade(rr, as(withID(newRequest(http.MethodPut, "/", map[string]int{"grade": 11}), sub.ID.String()), s.teacher))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rr.Code)
	}
	if _, ok := decodeError(t, rr).Fields["grade"]; !ok {
		t.Error("Expected a grade field error")
	}

	rr = httptest.NewRecorder()
	h.Grade(rr, as(withID(newRequest(http.MethodPut, "/", map[string]interface{}{"grade": 9, "feedback": "Good"}), sub.ID.String()), s.teacher))
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	// The generator has no replies, so the suggestion endpoint reports 503.
	rr = httptest.NewRecorder()
	h.SuggestFeedback(rr, as(withID(newRequest(http.MethodPost, "/", nil), sub.ID.String()), s.teacher))
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", rr.Code)
	}
}

func TestGlueHandler_CheckPlagiarism(t *testing.T) {
	s := newSchool(t)
	h := NewGlueHandler(s.glue)

	rr := httptest.NewRecorder()
	h.CheckPlagiarism(rr, as(newRequest(http.MethodPost, "/check-plagiarism", map[string]string{"text": "hello world"}), s.teacher))
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	var body map[string]interface{}
	json.NewDecoder(rr.Body).Decode(&body)
	if body["plagiarismScore"] != float64(7) {
		t.Errorf("Expected score 7, got %v", body["plagiarismScore"])
	}
	sources, ok := body["matchedSources"].([]interface{})
	if !ok || len(sources) != 0 {
		t.Errorf("Expected an empty matchedSources array, got %v", body["matchedSources"])
	}

	rr = httptest.NewRecorder()
	h.CheckPlagiarism(rr, as(newRequest(http.MethodPost, "/check-plagiarism", map[string]string{}), s.teacher))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an empty body, got %d", rr.Code)
	}
}

func TestGlueHandler_GenerateLessonPlan(t *testing.T) {
	s := newSchool(t)
	h := NewGlueHandler(s.glue)

	rr := httptest.NewRecorder()
	h.GenerateLessonPlan(rr, as(newRequest(http.MethodPost, "/generate-lesson-plan", map[string]string{"topic": "The Renaissance", "duration": "3 weeks"}), s.teacher))
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	var body map[string]interface{}
	json.NewDecoder(rr.Body).Decode(&body)
	for _, key := range []string{"mainTopic", "subtopics", "learningObjectives", "suggestedTimeframe", "assessmentIdeas"} {
		if _, ok := body[key]; !ok {
			t.Errorf("Missing %q in lesson plan", key)
		}
	}
	if body["mainTopic"] != "The Renaissance" {
		t.Errorf("Unexpected mainTopic %v", body["mainTopic"])
	}
}

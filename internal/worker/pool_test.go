package worker

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classroom-backend/internal/docstore"
	"classroom-backend/internal/generation"
	"classroom-backend/internal/middleware"
	"classroom-backend/internal/models"
	"classroom-backend/internal/repository"
	"classroom-backend/internal/services"
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

func (r *recordingPublisher) last() models.WSMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.messages[len(r.messages)-1]
}

type fixture struct {
	pool      *Pool
	store     docstore.Store
	jobs      *repository.JobRepo
	published *recordingPublisher
	teacher   middleware.Principal
	course    *models.Course
}

func newFixture(t *testing.T, responses ...generation.MockResponse) *fixture {
	t.Helper()
	ctx := context.Background()
	store := docstore.NewMemoryStore()

	courseRepo := repository.NewCourseRepo(store)
	enrollments := repository.NewEnrollmentRepo(store)
	courses := services.NewCourseService(courseRepo, enrollments)
	gen := generation.NewService(generation.NewMockGenerator(responses...), generation.LineFormat{})

	teacher := middleware.Principal{UserID: uuid.New(), Name: "Ms. Frizzle", Role: models.RoleTeacher}
	course, err := courses.Create(ctx, teacher, models.CreateCourseRequest{Title: "Biology"})
	require.NoError(t, err)

	jobs := repository.NewJobRepo(store)
	published := &recordingPublisher{}
	drafts := Drafts{
		Quizzes:    services.NewQuizService(repository.NewQuizRepo(store), repository.NewAttemptRepo(store), courses),
		Coursework: services.NewCourseworkService(repository.NewAssignmentRepo(store), repository.NewSubmissionRepo(store), enrollments, courses, gen, nil, nil),
		Lab:        services.NewLabService(repository.NewLabRepo(store), enrollments, courses),
		Courses:    courses,
	}

	return &fixture{
		pool:      NewPool(nil, gen, jobs, drafts, published, 1),
		store:     store,
		jobs:      jobs,
		published: published,
		teacher:   teacher,
		course:    course,
	}
}

func (f *fixture) job(t *testing.T, jobType string, cfg any) *models.Job {
	t.Helper()
	raw, err := json.Marshal(cfg)
	require.NoError(t, err)
	j := &models.Job{UserID: f.teacher.UserID, Type: jobType, ConfigJSON: raw}
	require.NoError(t, f.jobs.Create(context.Background(), j))
	return j
}

const twoQuestions = `Question: What do plants absorb for photosynthesis?
1. Oxygen
2. Carbon dioxide
3. Nitrogen
4. Helium
Correct Answer: 2
Explanation: Plants take in CO2.

Question: Where does photosynthesis happen?
1. Mitochondria
2. Nucleus
3. Chloroplast
4. Ribosome
Correct Answer: 3
Explanation: Chloroplasts hold chlorophyll.`

func TestRun_QuizGenerationStoresDraft(t *testing.T) {
	f := newFixture(t, generation.MockResponse{Text: twoQuestions})
	ctx := context.Background()

	j := f.job(t, models.JobQuizGeneration, models.GenerateQuizRequest{
		CourseID: f.course.ID, Topic: "photosynthesis", Difficulty: "easy", NumQuestions: 2, TimeLimit: 5,
	})
	f.pool.Run(ctx, j)

	got, err := f.jobs.GetByID(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobCompleted, got.Status)
	require.NotEqual(t, uuid.Nil, got.ReferenceID)

	q, err := docstore.GetAs[models.Quiz](ctx, f.store, repository.CollQuizzes, got.ReferenceID.String())
	require.NoError(t, err)
	assert.False(t, q.Published)
	assert.Equal(t, "Biology", q.CourseName)
	assert.Equal(t, 5, q.TimeLimit)
	require.Len(t, q.Questions, 2)
	assert.Equal(t, 1, q.Questions[0].CorrectAnswer)
	assert.Equal(t, 2, q.Questions[1].CorrectAnswer)

	assert.Equal(t, "completed", f.published.last().Type)
}

func TestRun_ParseFailureFailsWholeJobWithoutRetry(t *testing.T) {
	broken := strings.Replace(twoQuestions, "Correct Answer: 3", "Correct Answer: C", 1)
	f := newFixture(t, generation.MockResponse{Text: broken})
	ctx := context.Background()

	j := f.job(t, models.JobQuizGeneration, models.GenerateQuizRequest{
		CourseID: f.course.ID, Topic: "photosynthesis", Difficulty: "easy", NumQuestions: 2,
	})
	f.pool.Run(ctx, j)

	got, err := f.jobs.GetByID(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)

	quizzes, err := f.store.List(ctx, repository.CollQuizzes)
	require.NoError(t, err)
	assert.Empty(t, quizzes, "no partial quiz may be stored")

	msg := f.published.last()
	assert.Equal(t, "error", msg.Type)
	assert.Equal(t, "PARSE_FAILED", msg.Payload.(models.ErrorEvent).ErrorCode)
}

func TestRun_EndpointFailure(t *testing.T) {
	f := newFixture(t) // no canned responses: the mock reports the endpoint as unavailable
	ctx := context.Background()

	j := f.job(t, models.JobAssignmentGeneration, models.GenerateAssignmentRequest{
		CourseID: f.course.ID, Subject: "Biology", Topic: "Cells", DifficultyLevel: "medium",
	})
	f.pool.Run(ctx, j)

	got, err := f.jobs.GetByID(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobFailed, got.Status)
	assert.Equal(t, "GENERATION_UNAVAILABLE", f.published.last().Payload.(models.ErrorEvent).ErrorCode)
}

func TestRun_AssignmentAndProblem(t *testing.T) {
	f := newFixture(t,
		generation.MockResponse{Text: "# Cell Structure Essay\n\nDescribe the parts of a cell."},
		generation.MockResponse{Text: "Title: FizzBuzz\nDescription: Classic.\nLanguage: Go\nDifficulty: Easy\n```go\nfunc main() {}\n```"},
	)
	ctx := context.Background()

	aj := f.job(t, models.JobAssignmentGeneration, models.GenerateAssignmentRequest{
		CourseID: f.course.ID, Subject: "Biology", Topic: "Cells", DifficultyLevel: "medium",
	})
	f.pool.Run(ctx, aj)
	got, err := f.jobs.GetByID(ctx, aj.ID)
	require.NoError(t, err)
	require.Equal(t, models.JobCompleted, got.Status)

	a, err := docstore.GetAs[models.Assignment](ctx, f.store, repository.CollAssignments, got.ReferenceID.String())
	require.NoError(t, err)
	assert.Equal(t, "Cell Structure Essay", a.Title)
	assert.Equal(t, models.DefaultAssignmentPoints, a.Points)

	pj := f.job(t, models.JobProblemGeneration, models.GenerateProblemRequest{
		CourseID: f.course.ID, Topic: "loops", Language: "go", Difficulty: "easy",
	})
	f.pool.Run(ctx, pj)
	got, err = f.jobs.GetByID(ctx, pj.ID)
	require.NoError(t, err)
	require.Equal(t, models.JobCompleted, got.Status)

	p, err := docstore.GetAs[models.CodingProblem](ctx, f.store, repository.CollProblems, got.ReferenceID.String())
	require.NoError(t, err)
	assert.Equal(t, "FizzBuzz", p.Title)
	assert.Equal(t, "func main() {}", p.StartCode)
	assert.Equal(t, "problem", f.published.last().Payload.(models.CompletedEvent).ResultType)
}

func TestRun_UnknownType(t *testing.T) {
	f := newFixture(t)
	j := f.job(t, "video-generation", map[string]string{})
	f.pool.Run(context.Background(), j)

	got, err := f.jobs.GetByID(context.Background(), j.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobFailed, got.Status)
}

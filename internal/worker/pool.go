// Package worker drains the generation queues. Each job runs once: a failed
// job is marked failed and reported, never re-queued.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"classroom-backend/internal/generation"
	"classroom-backend/internal/models"
	"classroom-backend/internal/repository"
	"classroom-backend/internal/services"
)

// Drafts is where finished generation results are stored.
type Drafts struct {
	Quizzes    *services.QuizService
	Coursework *services.CourseworkService
	Lab        *services.LabService
	Courses    *services.CourseService
}

type Pool struct {
	redis       *redis.Client
	generator   *generation.Service
	jobRepo     *repository.JobRepo
	drafts      Drafts
	publisher   services.Publisher
	workerCount int
	wg          sync.WaitGroup
}

func NewPool(
	redisClient *redis.Client,
	generator *generation.Service,
	jobRepo *repository.JobRepo,
	drafts Drafts,
	publisher services.Publisher,
	workerCount int,
) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Pool{
		redis:       redisClient,
		generator:   generator,
		jobRepo:     jobRepo,
		drafts:      drafts,
		publisher:   publisher,
		workerCount: workerCount,
	}
}

var jobTypes = []string{
	models.JobQuizGeneration,
	models.JobAssignmentGeneration,
	models.JobProblemGeneration,
}

// Start launches the workers. They exit when ctx is cancelled; Wait blocks
// until they have.
func (p *Pool) Start(ctx context.Context) {
	queues := make([]string, len(jobTypes))
	for i, t := range jobTypes {
		queues[i] = services.QueueName(t)
	}

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.worker(ctx, id, queues)
		}(i)
	}

	log.Info().Int("workers", p.workerCount).Msg("worker pool started")
}

func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) worker(ctx context.Context, id int, queues []string) {
	for {
		if ctx.Err() != nil {
			log.Debug().Int("worker", id).Msg("worker shutting down")
			return
		}

		result, err := p.redis.BLPop(ctx, 30*time.Second, queues...).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				log.Warn().Err(err).Int("worker", id).Msg("queue read failed")
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}

		var job models.Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Error().Err(err).Int("worker", id).Msg("failed to parse job")
			continue
		}

		lockKey := fmt.Sprintf("job_lock:%s", job.ID.String())
		locked, err := p.redis.SetNX(ctx, lockKey, "1", 10*time.Minute).Result()
		if err != nil || !locked {
			continue
		}

		p.Run(ctx, &job)

		p.redis.Del(context.Background(), lockKey)
	}
}

// Run executes one job and records the outcome.
func (p *Pool) Run(ctx context.Context, job *models.Job) {
	log.Info().Str("job_id", job.ID.String()).Str("type", job.Type).Msg("processing job")

	p.jobRepo.UpdateStatus(ctx, job.ID, models.JobProcessing)
	p.step(ctx, job, 1, "Generating content")

	var (
		resultID uuid.UUID
		err      error
	)
	switch job.Type {
	case models.JobQuizGeneration:
		resultID, err = p.processQuiz(ctx, job)
	case models.JobAssignmentGeneration:
		resultID, err = p.processAssignment(ctx, job)
	case models.JobProblemGeneration:
		resultID, err = p.processProblem(ctx, job)
	default:
		err = fmt.Errorf("unknown job type: %s", job.Type)
	}

	if err != nil {
		p.handleFailure(ctx, job, err)
		return
	}
	job.ReferenceID = resultID
	p.handleSuccess(ctx, job)
}

func (p *Pool) step(ctx context.Context, job *models.Job, n int, name string) {
	p.publisher.PublishUpdate(ctx, job.UserID, models.WSMessage{
		Type: "status_update",
		Payload: models.StatusUpdate{
			JobID:    job.ID,
			Step:     n,
			StepName: name,
		},
	})
}

func (p *Pool) courseName(ctx context.Context, id uuid.UUID) string {
	c, err := p.drafts.Courses.Get(ctx, id)
	if err != nil {
		return ""
	}
	return c.Title
}

func (p *Pool) processQuiz(ctx context.Context, job *models.Job) (uuid.UUID, error) {
	var cfg models.GenerateQuizRequest
	if err := json.Unmarshal(job.ConfigJSON, &cfg); err != nil {
		return uuid.Nil, fmt.Errorf("invalid job config: %w", err)
	}

	parsed, err := p.generator.Quiz(ctx, generation.QuizRequest{
		Topic:        cfg.Topic,
		Difficulty:   cfg.Difficulty,
		NumQuestions: cfg.NumQuestions,
	})
	if err != nil {
		return uuid.Nil, err
	}

	p.step(ctx, job, 2, "Saving draft")
	q := &models.Quiz{
		Title:       parsed.Title,
		Description: parsed.Description,
		Questions:   parsed.Questions,
		TimeLimit:   cfg.TimeLimit,
		CourseID:    cfg.CourseID,
		CourseName:  p.courseName(ctx, cfg.CourseID),
		TeacherID:   job.UserID,
		Topic:       cfg.Topic,
		Difficulty:  cfg.Difficulty,
	}
	if err := p.drafts.Quizzes.SaveDraft(ctx, q); err != nil {
		return uuid.Nil, fmt.Errorf("failed to save quiz: %w", err)
	}
	return q.ID, nil
}

func (p *Pool) processAssignment(ctx context.Context, job *models.Job) (uuid.UUID, error) {
	var cfg models.GenerateAssignmentRequest
	if err := json.Unmarshal(job.ConfigJSON, &cfg); err != nil {
		return uuid.Nil, fmt.Errorf("invalid job config: %w", err)
	}

	title, body, err := p.generator.Assignment(ctx, generation.AssignmentRequest{
		Subject:         cfg.Subject,
		Topic:           cfg.Topic,
		DifficultyLevel: cfg.DifficultyLevel,
		Grade:           cfg.Grade,
	})
	if err != nil {
		return uuid.Nil, err
	}

	p.step(ctx, job, 2, "Saving draft")
	a := &models.Assignment{
		Title:              title,
		Description:        body,
		CourseID:           cfg.CourseID,
		CourseName:         p.courseName(ctx, cfg.CourseID),
		Points:             cfg.Points,
		TeacherID:          job.UserID,
		AssignmentType:     "text",
		AIGeneratedContent: body,
	}
	if err := p.drafts.Coursework.SaveGeneratedAssignment(ctx, a); err != nil {
		return uuid.Nil, fmt.Errorf("failed to save assignment: %w", err)
	}
	return a.ID, nil
}

func (p *Pool) processProblem(ctx context.Context, job *models.Job) (uuid.UUID, error) {
	var cfg models.GenerateProblemRequest
	if err := json.Unmarshal(job.ConfigJSON, &cfg); err != nil {
		return uuid.Nil, fmt.Errorf("invalid job config: %w", err)
	}

	gp, err := p.generator.Problem(ctx, generation.ProblemRequest{
		Topic:      cfg.Topic,
		Language:   cfg.Language,
		Difficulty: cfg.Difficulty,
	})
	if err != nil {
		return uuid.Nil, err
	}

	p.step(ctx, job, 2, "Saving draft")
	problem := &models.CodingProblem{
		Title:        gp.Title,
		Description:  gp.Description,
		Instructions: gp.Instructions,
		Difficulty:   gp.Difficulty,
		Language:     gp.Language,
		StartCode:    gp.StartCode,
		CourseID:     cfg.CourseID,
		CourseName:   p.courseName(ctx, cfg.CourseID),
		TeacherID:    job.UserID,
		Points:       cfg.Points,
	}
	if err := p.drafts.Lab.SaveProblem(ctx, problem); err != nil {
		return uuid.Nil, fmt.Errorf("failed to save problem: %w", err)
	}
	return problem.ID, nil
}

func (p *Pool) handleSuccess(ctx context.Context, job *models.Job) {
	p.jobRepo.SetReference(ctx, job.ID, job.ReferenceID)
	p.jobRepo.UpdateStatus(ctx, job.ID, models.JobCompleted)

	p.publisher.PublishUpdate(ctx, job.UserID, models.WSMessage{
		Type: "completed",
		Payload: models.CompletedEvent{
			JobID:      job.ID,
			ResultID:   job.ReferenceID,
			ResultType: resultType(job.Type),
		},
	})

	log.Info().Str("job_id", job.ID.String()).Str("result_id", job.ReferenceID.String()).Msg("job completed")
}

func (p *Pool) handleFailure(ctx context.Context, job *models.Job, err error) {
	errMsg := err.Error()
	log.Error().Err(err).Str("job_id", job.ID.String()).Str("type", job.Type).Msg("job failed")

	p.jobRepo.UpdateError(ctx, job.ID, errMsg)
	p.jobRepo.UpdateStatus(ctx, job.ID, models.JobFailed)

	p.publisher.PublishUpdate(ctx, job.UserID, models.WSMessage{
		Type: "error",
		Payload: models.ErrorEvent{
			JobID:        job.ID,
			ErrorCode:    errorCode(err),
			ErrorMessage: errMsg,
		},
	})
}

func errorCode(err error) string {
	var unavailable *generation.UnavailableError
	switch {
	case errors.As(err, &unavailable):
		return "GENERATION_UNAVAILABLE"
	case errors.Is(err, generation.ErrParse):
		return "PARSE_FAILED"
	default:
		return "JOB_FAILED"
	}
}

func resultType(jobType string) string {
	return strings.TrimSuffix(jobType, "-generation")
}

package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"classroom-backend/internal/middleware"
	"classroom-backend/internal/models"
	"classroom-backend/internal/repository"
)

// QueueName is the Redis list a job type is pushed onto.
func QueueName(jobType string) string {
	return "queue:" + jobType
}

// Queue hands a serialized job to the worker pool.
type Queue interface {
	Push(ctx context.Context, queue string, payload []byte) error
}

type RedisQueue struct {
	redis *redis.Client
}

func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{redis: client}
}

func (q *RedisQueue) Push(ctx context.Context, queue string, payload []byte) error {
	return q.redis.LPush(ctx, queue, payload).Err()
}

// JobService records generation requests and queues them for the workers.
type JobService struct {
	jobs    *repository.JobRepo
	queue   Queue
	courses *CourseService
}

func NewJobService(jobs *repository.JobRepo, queue Queue, courses *CourseService) *JobService {
	return &JobService{jobs: jobs, queue: queue, courses: courses}
}

// Enqueue stores a pending job for courseID and pushes it to its queue.
// config is kept on the job and read back by the worker.
func (s *JobService) Enqueue(ctx context.Context, p middleware.Principal, jobType string, courseID uuid.UUID, config any) (*models.Job, error) {
	if _, err := s.courses.Owned(ctx, p, courseID); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("encode job config: %w", err)
	}

	job := &models.Job{
		UserID:     p.UserID,
		Type:       jobType,
		ConfigJSON: raw,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("encode job: %w", err)
	}
	if err := s.queue.Push(ctx, QueueName(jobType), payload); err != nil {
		msg := "failed to queue job"
		s.jobs.UpdateError(ctx, job.ID, msg)
		s.jobs.UpdateStatus(ctx, job.ID, models.JobFailed)
		return nil, &UnavailableError{Message: "Could not queue the job. Please try again.", Err: err}
	}

	log.Info().Str("job_id", job.ID.String()).Str("type", jobType).Msg("job queued")
	return job, nil
}

func (s *JobService) Get(ctx context.Context, p middleware.Principal, id uuid.UUID) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Job not found")
	}
	if job.UserID != p.UserID {
		return nil, &NotFoundError{Message: "Job not found"}
	}
	return job, nil
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classroom-backend/internal/models"
	"classroom-backend/internal/repository"
)

type pushed struct {
	queue   string
	payload []byte
}

type fakeQueue struct {
	pushes []pushed
	err    error
}

func (q *fakeQueue) Push(_ context.Context, queue string, payload []byte) error {
	if q.err != nil {
		return q.err
	}
	q.pushes = append(q.pushes, pushed{queue: queue, payload: payload})
	return nil
}

func TestJobs_EnqueuePushesPendingJob(t *testing.T) {
	c := newClassroom(t)
	ctx := context.Background()
	queue := &fakeQueue{}
	svc := NewJobService(repository.NewJobRepo(c.store), queue, c.courses)

	req := models.GenerateQuizRequest{CourseID: c.course.ID, Topic: "optics", Difficulty: "easy", NumQuestions: 5}
	job, err := svc.Enqueue(ctx, c.teacher, models.JobQuizGeneration, c.course.ID, req)
	require.NoError(t, err)
	assert.Equal(t, models.JobPending, job.Status)

	require.Len(t, queue.pushes, 1)
	assert.Equal(t, "queue:quiz-generation", queue.pushes[0].queue)

	var queued models.Job
	require.NoError(t, json.Unmarshal(queue.pushes[0].payload, &queued))
	assert.Equal(t, job.ID, queued.ID)
	var cfg models.GenerateQuizRequest
	require.NoError(t, json.Unmarshal(queued.ConfigJSON, &cfg))
	assert.Equal(t, req, cfg)

	got, err := svc.Get(ctx, c.teacher, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)

	_, err = svc.Get(ctx, c.student, job.ID)
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestJobs_EnqueueChecksCourseOwnership(t *testing.T) {
	c := newClassroom(t)
	queue := &fakeQueue{}
	svc := NewJobService(repository.NewJobRepo(c.store), queue, c.courses)

	_, err := svc.Enqueue(context.Background(), c.student, models.JobQuizGeneration, c.course.ID, struct{}{})
	var forbidden *ForbiddenError
	assert.ErrorAs(t, err, &forbidden)
	assert.Empty(t, queue.pushes)
}

func TestJobs_QueueFailureMarksJobFailed(t *testing.T) {
	c := newClassroom(t)
	ctx := context.Background()
	jobs := repository.NewJobRepo(c.store)
	svc := NewJobService(jobs, &fakeQueue{err: errors.New("connection refused")}, c.courses)

	_, err := svc.Enqueue(ctx, c.teacher, models.JobAssignmentGeneration, c.course.ID, struct{}{})
	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)

	docs, err := c.store.List(ctx, repository.CollJobs)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	var stored models.Job
	require.NoError(t, json.Unmarshal(docs[0].Data, &stored))
	assert.Equal(t, models.JobFailed, stored.Status)
}

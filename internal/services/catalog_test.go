package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classroom-backend/internal/models"
)

func TestCatalog_OnlyPublishedQuizzesInEnrolledCourses(t *testing.T) {
	c := newClassroom(t)
	ctx := context.Background()

	published := c.quiz(t, true, 0)
	c.quiz(t, false, 0)

	other, err := c.courses.Create(ctx, c.teacher, models.CreateCourseRequest{Title: "Chemistry"})
	require.NoError(t, err)
	_, err = c.quizzes.Create(ctx, c.teacher, models.CreateQuizRequest{
		Title: "Bonds", CourseID: other.ID, Published: true, Questions: threeQuestions(),
	})
	require.NoError(t, err)

	catalog := NewCatalogService(c.enrollments, c.quizRepo, c.attemptRepo)
	entries, err := catalog.Load(ctx, c.student.UserID)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, published.ID, e.ID)
	assert.Equal(t, "Physics 101", e.CourseName)
	assert.Equal(t, 3, e.QuestionCount)
	assert.False(t, e.Completed)
	assert.Nil(t, e.Score)
}

func TestCatalog_LatestSubmittedAttemptWins(t *testing.T) {
	c := newClassroom(t)
	ctx := context.Background()
	q := c.quiz(t, true, 0)

	base := time.Now().UTC()
	for i, score := range []int{40, 90, 70} {
		require.NoError(t, c.attemptRepo.SaveAttempt(ctx, &models.AttemptRecord{
			ID:          uuid.New(),
			QuizID:      q.ID,
			UserID:      c.student.UserID,
			Score:       score,
			Status:      models.AttemptSubmitted,
			SubmittedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, err := NewCatalogService(c.enrollments, c.quizRepo, c.attemptRepo).Load(ctx, c.student.UserID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Completed)
	require.NotNil(t, entries[0].Score)
	assert.Equal(t, 70, *entries[0].Score)
}

func TestCatalog_NotEnrolled(t *testing.T) {
	c := newClassroom(t)
	c.quiz(t, true, 0)

	entries, err := NewCatalogService(c.enrollments, c.quizRepo, c.attemptRepo).Load(context.Background(), c.outsider.UserID)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

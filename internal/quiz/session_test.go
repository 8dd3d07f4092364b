package quiz

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classroom-backend/internal/models"
)

type memRecorder struct {
	mu      sync.Mutex
	records []*models.AttemptRecord
	err     error
}

func (m *memRecorder) SaveAttempt(ctx context.Context, rec *models.AttemptRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memRecorder) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func newQuiz(correct []int, timeLimit int) *models.Quiz {
	qs := make([]models.Question, len(correct))
	for i, c := range correct {
		qs[i] = models.Question{
			Question:      "Q",
			Options:       []string{"a", "b", "c", "d"},
			CorrectAnswer: c,
			Explanation:   "because",
		}
	}
	return &models.Quiz{
		ID:        uuid.New(),
		Title:     "Quiz",
		Questions: qs,
		TimeLimit: timeLimit,
		Published: true,
		CourseID:  uuid.New(),
	}
}

var student = Student{ID: uuid.New(), Name: "Ada"}

func started(t *testing.T, q *models.Quiz, rec Recorder, opts ...Option) *Session {
	t.Helper()
	s := NewSession(q, student, rec, append([]Option{WithManualTicks()}, opts...)...)
	require.NoError(t, s.Start(context.Background(), true))
	t.Cleanup(s.Cancel)
	return s
}

func TestStart_Preconditions(t *testing.T) {
	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	draft := newQuiz([]int{0}, 0)
	draft.Published = false
	assert.ErrorIs(t, NewSession(draft, student, nil).Start(context.Background(), true), ErrNotPublished)

	assert.ErrorIs(t, NewSession(newQuiz([]int{0}, 0), student, nil).Start(context.Background(), false), ErrNotEnrolled)

	overdue := newQuiz([]int{0}, 0)
	overdue.DueDate = &past
	assert.ErrorIs(t, NewSession(overdue, student, nil).Start(context.Background(), true), ErrPastDue)
	assert.NoError(t, NewSession(overdue, student, nil, WithLateStart(true)).Start(context.Background(), true))
}

func TestStart_FillsAnswersWithSentinel(t *testing.T) {
	s := started(t, newQuiz([]int{0, 1, 2}, 5), nil)

	snap := s.Snapshot()
	assert.Equal(t, "in_progress", snap.State)
	assert.Equal(t, []int{-1, -1, -1}, snap.Answers)
	assert.True(t, snap.Timed)
	assert.Equal(t, 300, snap.Remaining)

	assert.ErrorIs(t, s.Start(context.Background(), true), ErrAlreadyStarted)
}

func TestSelectAnswer_OverwritesAndValidates(t *testing.T) {
	s := started(t, newQuiz([]int{0, 1}, 0), nil)

	require.NoError(t, s.SelectAnswer(0, 1))
	require.NoError(t, s.SelectAnswer(0, 0))
	assert.Equal(t, []int{0, -1}, s.Snapshot().Answers)

	var aerr *AnswerError
	for _, tc := range []struct{ q, o int }{{-1, 0}, {2, 0}, {0, -1}, {0, 4}} {
		err := s.SelectAnswer(tc.q, tc.o)
		require.ErrorAs(t, err, &aerr)
	}
	assert.Equal(t, []int{0, -1}, s.Snapshot().Answers)
}

func TestSubmit_ScoreScenario(t *testing.T) {
	rec := &memRecorder{}
	s := started(t, newQuiz([]int{0, 1, 2}, 0), rec)

	require.NoError(t, s.SelectAnswer(0, 0))
	require.NoError(t, s.SelectAnswer(1, 1))
	require.NoError(t, s.SelectAnswer(2, 3))

	res, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 67, res.Score)
	assert.Equal(t, 2, res.Correct)
	assert.Equal(t, TriggerManual, res.Trigger)
	assert.True(t, res.Persisted)

	require.Equal(t, 1, rec.count())
	stored := rec.records[0]
	assert.Equal(t, 67, stored.Score)
	assert.Equal(t, []int{0, 1, 3}, stored.Answers)
	assert.Equal(t, models.AttemptSubmitted, stored.Status)
	assert.Equal(t, models.TriggerManual, stored.Trigger)
	assert.Equal(t, student.ID, stored.UserID)
	assert.Equal(t, "Ada", stored.StudentName)

	assert.Equal(t, Submitted, s.State())
	assert.ErrorIs(t, s.SelectAnswer(0, 1), ErrNotInProgress)
	_, err = s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotInProgress)
}

func TestScore_Bounds(t *testing.T) {
	questions := newQuiz([]int{3, 2, 1, 0}, 0).Questions

	cases := []struct {
		answers []int
		want    int
	}{
		{[]int{3, 2, 1, 0}, 100},
		{[]int{-1, -1, -1, -1}, 0},
		{[]int{3, 2, 1, 1}, 75},
		{[]int{0, 0, 0, 0}, 25},
	}
	for _, tc := range cases {
		score, _ := Score(questions, tc.answers)
		assert.Equal(t, tc.want, score, "%v", tc.answers)
		assert.GreaterOrEqual(t, score, 0)
		assert.LessOrEqual(t, score, 100)
	}
}

func TestSubmit_EmptyQuizScoresZero(t *testing.T) {
	s := started(t, newQuiz(nil, 0), nil)

	res, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Score)
	assert.Equal(t, 0, res.Total)
}

func TestSubmit_StoreFailureKeepsLocalResult(t *testing.T) {
	rec := &memRecorder{err: errors.New("connection reset")}
	var notified []Result
	s := started(t, newQuiz([]int{1}, 0), rec, OnSubmit(func(ctx context.Context, _ *Session, res Result) {
		notified = append(notified, res)
	}))
	require.NoError(t, s.SelectAnswer(0, 1))

	res, err := s.Submit(context.Background())
	require.ErrorIs(t, err, ErrNotPersisted)
	assert.Equal(t, 100, res.Score)
	assert.False(t, res.Persisted)
	assert.Equal(t, Submitted, s.State())

	require.Len(t, notified, 1)
	assert.False(t, notified[0].Persisted)
}

func TestTick_AutoSubmitsExactlyOnceAfterTimeLimit(t *testing.T) {
	rec := &memRecorder{}
	s := started(t, newQuiz([]int{0, 1}, 1), rec)
	require.NoError(t, s.SelectAnswer(0, 0))

	prev := s.Snapshot().Remaining
	submits := 0
	for i := 0; i < 60; i++ {
		remaining, submitted := s.Tick(context.Background())
		assert.LessOrEqual(t, remaining, prev)
		prev = remaining
		if submitted {
			submits++
			assert.Equal(t, 59, i, "submitted before the limit")
		}
	}
	assert.Equal(t, 1, submits)

	// Extra ticks after expiry are no-ops.
	for i := 0; i < 5; i++ {
		_, submitted := s.Tick(context.Background())
		assert.False(t, submitted)
	}

	require.Equal(t, 1, rec.count())
	assert.Equal(t, models.TriggerTimeout, rec.records[0].Trigger)
	assert.Equal(t, []int{0, -1}, rec.records[0].Answers)
	assert.Equal(t, 50, rec.records[0].Score)
	assert.Equal(t, Submitted, s.State())
}

func TestTick_UntimedQuizNeverSubmits(t *testing.T) {
	s := started(t, newQuiz([]int{0}, 0), nil)
	for i := 0; i < 120; i++ {
		_, submitted := s.Tick(context.Background())
		require.False(t, submitted)
	}
	assert.Equal(t, InProgress, s.State())
}

func TestCountdown_RealTimerAutoSubmits(t *testing.T) {
	rec := &memRecorder{}
	done := make(chan Result, 2)
	s := NewSession(newQuiz([]int{2}, 1), student, rec,
		WithTickInterval(time.Millisecond),
		OnSubmit(func(ctx context.Context, _ *Session, res Result) { done <- res }),
	)
	require.NoError(t, s.Start(context.Background(), true))
	defer s.Cancel()

	select {
	case res := <-done:
		assert.Equal(t, TriggerTimeout, res.Trigger)
	case <-time.After(5 * time.Second):
		t.Fatal("countdown never submitted")
	}

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, rec.count())
	assert.Len(t, done, 0)
}

func TestCancel_StopsCountdownWithoutSaving(t *testing.T) {
	rec := &memRecorder{}
	s := NewSession(newQuiz([]int{2}, 1), student, rec, WithTickInterval(time.Millisecond))
	require.NoError(t, s.Start(context.Background(), true))

	s.Cancel()
	s.Cancel()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, Abandoned, s.State())
	assert.Equal(t, 0, rec.count())
	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotInProgress)
}

func TestManualSubmitStopsCountdown(t *testing.T) {
	rec := &memRecorder{}
	s := NewSession(newQuiz([]int{2}, 1), student, rec, WithTickInterval(time.Millisecond))
	require.NoError(t, s.Start(context.Background(), true))
	defer s.Cancel()

	_, err := s.Submit(context.Background())
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, rec.count())
	assert.Equal(t, models.TriggerManual, rec.records[0].Trigger)
}

func TestReview_ReadOnlyAndRestartable(t *testing.T) {
	s := started(t, newQuiz([]int{0, 1, 2}, 0), nil)

	_, err := s.Review()
	assert.ErrorIs(t, err, ErrNotSubmitted)

	require.NoError(t, s.SelectAnswer(0, 0))
	require.NoError(t, s.SelectAnswer(2, 1))
	res, err := s.Submit(context.Background())
	require.NoError(t, err)

	r, err := s.Review()
	require.NoError(t, err)
	require.Equal(t, 3, r.Len())

	first, ok := r.Current()
	require.True(t, ok)
	assert.True(t, first.IsCorrect)
	assert.False(t, r.Prev())
	assert.True(t, r.Next())
	second, _ := r.Current()
	assert.Equal(t, -1, second.Selected)
	assert.Equal(t, 1, second.Correct)
	assert.True(t, r.Next())
	assert.False(t, r.Next())
	assert.True(t, r.Prev())
	assert.True(t, r.Seek(0))

	second.Options[0] = "mutated"
	var seen []int
	for item := range r.All() {
		seen = append(seen, item.Index)
		assert.NotEqual(t, "mutated", item.Options[0])
	}
	assert.Equal(t, []int{0, 1, 2}, seen)

	again, err := s.Review()
	require.NoError(t, err)
	assert.Equal(t, 0, again.Position())

	after, _ := s.Result()
	assert.Equal(t, res.Score, after.Score)
	assert.Equal(t, res.Answers, after.Answers)
}

func TestReset_StartsFreshAttemptAndKeepsHistory(t *testing.T) {
	rec := &memRecorder{}
	s := started(t, newQuiz([]int{0, 1}, 2), rec)

	require.NoError(t, s.SelectAnswer(0, 0))
	first, err := s.Submit(context.Background())
	require.NoError(t, err)

	assert.ErrorIs(t, NewSession(newQuiz([]int{0}, 0), student, nil).Reset(), ErrNotSubmitted)
	require.NoError(t, s.Reset())

	snap := s.Snapshot()
	assert.Equal(t, "in_progress", snap.State)
	assert.Equal(t, []int{-1, -1}, snap.Answers)
	assert.Equal(t, 120, snap.Remaining)
	assert.Nil(t, snap.Result)

	require.NoError(t, s.SelectAnswer(0, 0))
	require.NoError(t, s.SelectAnswer(1, 1))
	second, err := s.Submit(context.Background())
	require.NoError(t, err)

	require.Equal(t, 2, rec.count())
	assert.NotEqual(t, first.AttemptID, second.AttemptID)
	assert.Equal(t, 50, rec.records[0].Score)
	assert.Equal(t, 100, rec.records[1].Score)
	assert.Equal(t, 2, s.Snapshot().Attempts)
}

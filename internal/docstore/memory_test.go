package docstore

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type enrollment struct {
	UserID   uuid.UUID `json:"user_id"`
	CourseID string    `json:"course_id"`
	Points   int       `json:"points"`
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Get(context.Background(), "quizzes", "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ListKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for _, key := range []string{"c", "a", "b"} {
		require.NoError(t, s.Set(ctx, "courses", key, json.RawMessage(`{"k":"`+key+`"}`)))
	}
	// Overwriting keeps the original position.
	require.NoError(t, s.Set(ctx, "courses", "c", json.RawMessage(`{"k":"c2"}`)))

	docs, err := s.List(ctx, "courses")
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{docs[0].Key, docs[1].Key, docs[2].Key})
	assert.JSONEq(t, `{"k":"c2"}`, string(docs[0].Data))
}

func TestMemoryStore_QueryEquality(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	alice, bob := uuid.New(), uuid.New()

	require.NoError(t, Put(ctx, s, "enrollments", "e1", enrollment{UserID: alice, CourseID: "c1", Points: 10}))
	require.NoError(t, Put(ctx, s, "enrollments", "e2", enrollment{UserID: bob, CourseID: "c1", Points: 5}))
	require.NoError(t, Put(ctx, s, "enrollments", "e3", enrollment{UserID: alice, CourseID: "c2", Points: 10}))

	got, err := QueryAs[enrollment](ctx, s, "enrollments", "user_id", alice)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c1", got[0].CourseID)
	assert.Equal(t, "c2", got[1].CourseID)

	byPoints, err := QueryAs[enrollment](ctx, s, "enrollments", "points", 10)
	require.NoError(t, err)
	assert.Len(t, byPoints, 2)

	none, err := QueryAs[enrollment](ctx, s, "enrollments", "user_id", uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryStore_UpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, "submissions", "s1", json.RawMessage(`{"content":"essay","grade":null}`)))

	require.NoError(t, s.Update(ctx, "submissions", "s1", map[string]any{"grade": 8, "feedback": "good"}))

	data, err := s.Get(ctx, "submissions", "s1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":"essay","grade":8,"feedback":"good"}`, string(data))

	assert.ErrorIs(t, s.Update(ctx, "submissions", "missing", map[string]any{"grade": 1}), ErrNotFound)
}

func TestMemoryStore_ReturnedDataIsACopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, "quizzes", "q1", json.RawMessage(`{"title":"a"}`)))

	data, err := s.Get(ctx, "quizzes", "q1")
	require.NoError(t, err)
	data[2] = 'X'

	again, err := s.Get(ctx, "quizzes", "q1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"a"}`, string(again))
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, "quizzes", "q1", json.RawMessage(`{}`)))
	require.NoError(t, s.Delete(ctx, "quizzes", "q1"))
	require.NoError(t, s.Delete(ctx, "quizzes", "q1"))

	docs, err := s.List(ctx, "quizzes")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestSplitPath(t *testing.T) {
	c, k, err := SplitPath("/quiz_attempts/abc/")
	require.NoError(t, err)
	assert.Equal(t, "quiz_attempts", c)
	assert.Equal(t, "abc", k)

	for _, bad := range []string{"", "quizzes", "/x", "quizzes/"} {
		_, _, err := SplitPath(bad)
		assert.Error(t, err, bad)
	}
}

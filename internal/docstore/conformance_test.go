package docstore

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Published bool      `json:"published"`
	Points    int       `json:"points"`
	Title     string    `json:"title"`
	Note      *string   `json:"note"`
}

// exerciseStore runs the same checks against any Store so the memory and
// Postgres implementations are held to one behaviour.
func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()
	collection := "conformance_" + uuid.NewString()
	t.Cleanup(func() {
		docs, _ := s.List(ctx, collection)
		for _, d := range docs {
			s.Delete(ctx, collection, d.Key)
		}
	})

	owner := uuid.New()
	empty := ""
	recs := []record{
		{ID: uuid.New(), OwnerID: owner, Published: true, Points: 10, Title: "Forces"},
		{ID: uuid.New(), OwnerID: owner, Published: false, Points: 5, Title: "Energy", Note: &empty},
		{ID: uuid.New(), OwnerID: uuid.New(), Published: true, Points: 10, Title: "Waves"},
	}
	for _, r := range recs {
		require.NoError(t, Put(ctx, s, collection, r.ID.String(), r))
	}

	t.Run("get missing", func(t *testing.T) {
		_, err := s.Get(ctx, collection, uuid.NewString())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list keeps insertion order", func(t *testing.T) {
		all, err := ListAs[record](ctx, s, collection)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{"Forces", "Energy", "Waves"}, []string{all[0].Title, all[1].Title, all[2].Title})
	})

	t.Run("query by uuid bool int and string", func(t *testing.T) {
		byOwner, err := QueryAs[record](ctx, s, collection, "owner_id", owner)
		require.NoError(t, err)
		assert.Len(t, byOwner, 2)

		published, err := QueryAs[record](ctx, s, collection, "published", true)
		require.NoError(t, err)
		assert.Len(t, published, 2)

		tens, err := QueryAs[record](ctx, s, collection, "points", 10)
		require.NoError(t, err)
		assert.Len(t, tens, 2)

		waves, err := QueryAs[record](ctx, s, collection, "title", "Waves")
		require.NoError(t, err)
		require.Len(t, waves, 1)
		assert.Equal(t, recs[2].ID, waves[0].ID)
	})

	t.Run("null never matches", func(t *testing.T) {
		blank, err := QueryAs[record](ctx, s, collection, "note", "")
		require.NoError(t, err)
		require.Len(t, blank, 1, "only the explicit empty string")
		assert.Equal(t, recs[1].ID, blank[0].ID)

		none, err := QueryAs[record](ctx, s, collection, "missing_field", "x")
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})

	t.Run("update merges top-level fields", func(t *testing.T) {
		key := recs[1].ID.String()
		require.NoError(t, s.Update(ctx, collection, key, map[string]any{"points": 8, "feedback": "ok"}))

		raw, err := s.Get(ctx, collection, key)
		require.NoError(t, err)
		var got map[string]any
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.EqualValues(t, 8, got["points"])
		assert.Equal(t, "ok", got["feedback"])
		assert.Equal(t, "Energy", got["title"])

		err = s.Update(ctx, collection, uuid.NewString(), map[string]any{"points": 1})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		key := recs[2].ID.String()
		require.NoError(t, s.Delete(ctx, collection, key))
		_, err := s.Get(ctx, collection, key)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMemoryStore_Conformance(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestPostgresStore_Conformance(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	schema, err := os.ReadFile("../../migrations/001_documents.sql")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(schema))
	require.NoError(t, err)

	exerciseStore(t, NewPostgresStore(pool))
}

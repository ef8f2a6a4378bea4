package testrun

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormStore_Create(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	t.Run("stores run with results", func(t *testing.T) {
		run := newRun(time.Now(),
			[2]string{"tagger", OutcomePassed},
			[2]string{"reporter", OutcomeFailed},
		)
		require.NoError(t, store.Create(ctx, run))
		assert.NotEqual(t, uuid.Nil, run.ID)
		for _, r := range run.Results {
			assert.NotEqual(t, uuid.Nil, r.ID)
			assert.Equal(t, run.ID, r.RunID)
		}
	})

	t.Run("invalid status is rejected", func(t *testing.T) {
		run := newRun(time.Now(), [2]string{"tagger", OutcomePassed})
		run.Status = "unknown"
		assert.ErrorIs(t, store.Create(ctx, run), ErrInvalidStatus)
	})

	t.Run("mismatched counts are rejected", func(t *testing.T) {
		run := newRun(time.Now(), [2]string{"tagger", OutcomePassed})
		run.Failed = 3
		assert.ErrorIs(t, store.Create(ctx, run), ErrInvalidCounts)
	})

	t.Run("result without agent is rejected", func(t *testing.T) {
		run := newRun(time.Now(), [2]string{"", OutcomePassed})
		assert.ErrorIs(t, store.Create(ctx, run), ErrInvalidAgent)
	})

	t.Run("unknown outcome is rejected", func(t *testing.T) {
		run := newRun(time.Now(), [2]string{"tagger", "flaky"})
		assert.ErrorIs(t, store.Create(ctx, run), ErrInvalidOutcome)
	})
}

func TestGormStore_GetByID(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	t.Run("results come back in run order", func(t *testing.T) {
		run := newRun(time.Now(),
			[2]string{"tagger", OutcomePassed},
			[2]string{"reporter", OutcomeSkipped},
			[2]string{"charter", OutcomeTimeout},
			[2]string{"retirement", OutcomeFailed},
			[2]string{"planner", OutcomePassed},
		)
		require.NoError(t, store.Create(ctx, run))

		got, err := store.GetByID(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusFailed, got.Status)
		assert.Equal(t, 5, got.Total)
		assert.Equal(t, 3, got.Passed)
		assert.Equal(t, 2, got.Failed)
		assert.Equal(t, 1, got.Skipped)

		require.Len(t, got.Results, 5)
		var agents []string
		for _, r := range got.Results {
			agents = append(agents, r.Agent)
		}
		assert.Equal(t, []string{"tagger", "reporter", "charter", "retirement", "planner"}, agents)
	})

	t.Run("unknown run returns error", func(t *testing.T) {
		_, err := store.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrRunNotFound)
	})
}

func TestGormStore_ListAndCount(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		run := newRun(base.Add(time.Duration(i)*time.Minute), [2]string{"tagger", OutcomePassed})
		require.NoError(t, store.Create(ctx, run))
		ids = append(ids, run.ID)
	}

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	runs, err := store.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID, "newest first")
	assert.Equal(t, ids[1], runs[1].ID)
	assert.Empty(t, runs[0].Results)

	runs, err = store.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, ids[0], runs[0].ID)
}

func TestAgentResult_ArtifactKey(t *testing.T) {
	r := AgentResult{StdoutKey: "runs/1/tagger/stdout.log"}

	key, ok := r.ArtifactKey("stdout")
	assert.True(t, ok)
	assert.Equal(t, "runs/1/tagger/stdout.log", key)

	_, ok = r.ArtifactKey("stderr")
	assert.False(t, ok)

	_, ok = r.ArtifactKey("combined")
	assert.False(t, ok)
}

package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopspot/loopspot/internal/domain"
	"github.com/loopspot/loopspot/internal/repo"
)

// runLoopStoreContract exercises the behaviour every LoopStore backend must
// share. Each backend test calls it with a fresh, empty store.
func runLoopStoreContract(t *testing.T, newStore func(t *testing.T) repo.LoopStore) {
	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)

		_, err := s.Get(context.Background(), "loop_missing")

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("SetThenGet", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Set(ctx, "loop_1", []byte(`{"id":"loop_1"}`)))

		got, err := s.Get(ctx, "loop_1")
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"loop_1"}`, string(got))
	})

	t.Run("SetOverwrites", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Set(ctx, "loop_1", []byte(`{"v":1}`)))
		require.NoError(t, s.Set(ctx, "loop_1", []byte(`{"v":2}`)))

		got, err := s.Get(ctx, "loop_1")
		require.NoError(t, err)
		assert.JSONEq(t, `{"v":2}`, string(got))
	})

	t.Run("Delete", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "loop_1", []byte(`{}`)))

		require.NoError(t, s.Delete(ctx, "loop_1"))

		_, err := s.Get(ctx, "loop_1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		s := newStore(t)

		err := s.Delete(context.Background(), "loop_missing")

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("KeysSorted", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		for _, id := range []string{"loop_b", "loop_c", "loop_a"} {
			require.NoError(t, s.Set(ctx, id, []byte(`{}`)))
		}

		keys, err := s.Keys(ctx)

		require.NoError(t, err)
		assert.Equal(t, []string{"loop_a", "loop_b", "loop_c"}, keys)
	})

	t.Run("KeysEmpty", func(t *testing.T) {
		s := newStore(t)

		keys, err := s.Keys(context.Background())

		require.NoError(t, err)
		assert.NotNil(t, keys, "should return empty slice, not nil")
		assert.Empty(t, keys)
	})
}

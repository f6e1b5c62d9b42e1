package auth

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeContract runs the behaviour every Store implementation must share.
func storeContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("unknown token", func(t *testing.T) {
		_, ok, err := store.Get(ctx, "never-issued")
		require.NoError(t, err)
		assert.False(t, ok)

		deleted, err := store.Delete(ctx, "never-issued")
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("put get delete", func(t *testing.T) {
		token := NewToken()
		require.NoError(t, store.Put(ctx, token, "ann@example.com"))

		email, ok, err := store.Get(ctx, token)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "ann@example.com", email)

		deleted, err := store.Delete(ctx, token)
		require.NoError(t, err)
		assert.True(t, deleted)

		_, ok, err = store.Get(ctx, token)
		require.NoError(t, err)
		assert.False(t, ok, "token must be invalid after Delete")
	})

	t.Run("concurrent sessions for one user", func(t *testing.T) {
		first, second := NewToken(), NewToken()
		require.NoError(t, store.Put(ctx, first, "bob@example.com"))
		require.NoError(t, store.Put(ctx, second, "bob@example.com"))

		_, err := store.Delete(ctx, first)
		require.NoError(t, err)

		email, ok, err := store.Get(ctx, second)
		require.NoError(t, err)
		assert.True(t, ok, "deleting one token must not affect another")
		assert.Equal(t, "bob@example.com", email)
	})
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token := NewToken()
			_ = store.Put(ctx, token, fmt.Sprintf("user%d@example.com", i))
			_, _, _ = store.Get(ctx, token)
			_, _ = store.Delete(ctx, token)
		}()
	}
	wg.Wait()

	assert.Empty(t, store.sessions)
}

func TestNewToken_IsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		tok := NewToken()
		require.False(t, seen[tok], "duplicate token %s", tok)
		seen[tok] = true
	}
}

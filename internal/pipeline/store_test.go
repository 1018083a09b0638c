package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutGet(t *testing.T) {
	store := NewStore(time.Hour)
	res := &Result{Filename: "budget.pdf"}
	id := store.Put(res)

	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, res.ID)
	assert.False(t, res.CreatedAt.IsZero())
	assert.Same(t, res, store.Get(id))
	assert.Equal(t, 1, store.Len())
}

func TestStore_PutKeepsID(t *testing.T) {
	store := NewStore(time.Hour)
	assert.Equal(t, "fixed", store.Put(&Result{ID: "fixed"}))
}

func TestStore_GetMissing(t *testing.T) {
	store := NewStore(time.Hour)
	assert.Nil(t, store.Get("nonexistent"))
}

func TestStore_TTLCleanup(t *testing.T) {
	store := NewStore(time.Minute)
	store.Put(&Result{ID: "old", CreatedAt: time.Now().Add(-2 * time.Minute)})
	store.Put(&Result{ID: "new"})

	store.Cleanup()

	assert.Nil(t, store.Get("old"))
	assert.NotNil(t, store.Get("new"))
}

func TestStore_RunJanitor(t *testing.T) {
	store := NewStore(time.Millisecond)
	store.Put(&Result{ID: "old", CreatedAt: time.Now().Add(-time.Second)})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.RunJanitor(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestStore_ListAndDelete(t *testing.T) {
	store := NewStore(time.Hour)
	now := time.Now()
	store.Put(&Result{ID: "b", CreatedAt: now})
	store.Put(&Result{ID: "a", CreatedAt: now.Add(-time.Minute)})
	store.Put(&Result{ID: "c", CreatedAt: now})

	var ids []string
	for _, res := range store.List() {
		ids = append(ids, res.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)

	assert.True(t, store.Delete("b"))
	assert.False(t, store.Delete("b"))
	assert.Equal(t, 2, store.Len())
}

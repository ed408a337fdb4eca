package queue_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z-h-i/iterative-dichotomiser-three/queue"
	"github.com/z-h-i/iterative-dichotomiser-three/tree"
)

func task(id string) *queue.Task {
	return &queue.Task{Node: &tree.Node{ID: id}}
}

func counts(t *testing.T, q queue.Queue) (int, int) {
	t.Helper()
	pending, running, err := q.Count(context.Background())
	require.NoError(t, err)
	return pending, running
}

func TestFIFO(t *testing.T) {
	ctx := context.Background()
	q := queue.New()
	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, q.Push(ctx, task(id)))
	}
	pending, running := counts(t, q)
	assert.Equal(t, 3, pending)
	assert.Equal(t, 0, running)

	for _, id := range []string{"1", "2", "3"} {
		tk, err := q.Pull(ctx)
		require.NoError(t, err)
		require.NotNil(t, tk)
		assert.Equal(t, id, tk.ID())
	}
	pending, running = counts(t, q)
	assert.Equal(t, 0, pending)
	assert.Equal(t, 3, running)

	tk, err := q.Pull(ctx)
	require.NoError(t, err)
	assert.Nil(t, tk)
}

func TestDropAndComplete(t *testing.T) {
	ctx := context.Background()
	q := queue.New()
	require.NoError(t, q.Push(ctx, task("1")))
	require.NoError(t, q.Push(ctx, task("2")))

	tk, err := q.Pull(ctx)
	require.NoError(t, err)
	require.NoError(t, q.Drop(ctx, tk.ID()))
	pending, running := counts(t, q)
	assert.Equal(t, 2, pending)
	assert.Equal(t, 0, running)

	// the dropped task goes to the back of the queue
	tk, err = q.Pull(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2", tk.ID())
	require.NoError(t, q.Complete(ctx, tk.ID()))
	// completing twice or dropping a completed task is harmless
	require.NoError(t, q.Complete(ctx, tk.ID()))
	require.NoError(t, q.Drop(ctx, tk.ID()))

	pending, running = counts(t, q)
	assert.Equal(t, 1, pending)
	assert.Equal(t, 0, running)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := queue.New().Push(ctx, task("1"))
	assert.True(t, errors.Is(err, context.Canceled))
}

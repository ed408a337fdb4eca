package queue

import (
	"context"
	"fmt"
	"sync"
)

// Queue represents a queue where tasks to develop
// tree nodes can be pushed and pulled. The idea
// is a worker will use the Pull method to obtain
// a task. It will start processing it and will then
// either complete it or drop it halfway.
//
// All its methods have a context.Context as first
// parameter that implementations may use to allow
// timeouts and cancellations on the Queue operations.
type Queue interface {
	// Push takes a task and stores it in the queue or
	// returns an error. The task will count as pending.
	Push(context.Context, *Task) error
	// Pull returns the oldest pending task or an error.
	// The pulled task will be counted as running from
	// then on. If there are no tasks to pull,
	// implementations should not return an error, but
	// a nil task.
	Pull(context.Context) (*Task, error)
	// Drop takes the ID for a running task and makes it
	// available for pulling from the Queue again.
	// Workers should use this to return to the queue
	// tasks they have not completed.
	Drop(context.Context, string) error
	// Complete takes the ID for a task. Implementations
	// should remove the task from the running state.
	Complete(context.Context, string) error
	// Count returns the number of
	// pending and running tasks in the queue
	// or an error
	Count(context.Context) (int, int, error)
}

type memQueue struct {
	pendingTasks []*Task
	runningTasks map[string]*Task
	lock         sync.Mutex
}

// New returns a FIFO queue backed only by the process memory
func New() Queue {
	return &memQueue{runningTasks: make(map[string]*Task)}
}

func (mq *memQueue) Push(ctx context.Context, t *Task) error {
	return mq.withLock(ctx, func() error {
		mq.pendingTasks = append(mq.pendingTasks, t)
		return nil
	})
}

func (mq *memQueue) Pull(ctx context.Context) (*Task, error) {
	var task *Task
	err := mq.withLock(ctx, func() error {
		if len(mq.pendingTasks) == 0 {
			return nil
		}
		task = mq.pendingTasks[0]
		mq.pendingTasks[0] = nil
		mq.pendingTasks = mq.pendingTasks[1:]
		mq.runningTasks[task.ID()] = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (mq *memQueue) Drop(ctx context.Context, id string) error {
	return mq.withLock(ctx, func() error {
		t, ok := mq.runningTasks[id]
		if !ok {
			return nil
		}
		delete(mq.runningTasks, id)
		mq.pendingTasks = append(mq.pendingTasks, t)
		return nil
	})
}

func (mq *memQueue) Complete(ctx context.Context, id string) error {
	return mq.withLock(ctx, func() error {
		delete(mq.runningTasks, id)
		return nil
	})
}

func (mq *memQueue) Count(ctx context.Context) (int, int, error) {
	var pending, running int
	err := mq.withLock(ctx, func() error {
		pending = len(mq.pendingTasks)
		running = len(mq.runningTasks)
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return pending, running, nil
}

func (mq *memQueue) String() string {
	mq.lock.Lock()
	defer mq.lock.Unlock()
	return fmt.Sprintf("{Queue pending: %d running: %d}", len(mq.pendingTasks), len(mq.runningTasks))
}

func (mq *memQueue) withLock(ctx context.Context, f func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	mq.lock.Lock()
	defer mq.lock.Unlock()
	return f()
}

package tree

import (
	"context"
	"strconv"
	"sync"
)

/*
NodeStore is an interface to manage a store
where nodes can be created, retrieved, updated
and deleted.

All it methods take a context that may allow
cancelling the operation (thus forcing the return
of an error) if the implementation allows it.
*/
type NodeStore interface {
	// Create takes a node and stores it for the
	// first time in the store, creating an ID for
	// it and setting it for the node. It returns
	// an error if the node cannot be stored.
	Create(ctx context.Context, n *Node) error
	// Get takes an id and returns the node in the
	// store with that id (or nil if it cannot be
	// found) or an error if the store cannot be
	// queried
	Get(ctx context.Context, id string) (*Node, error)
	// Store takes a node already existing in the store
	// and updates it on the store. It expect the node
	// to have an ID which it will not alter.
	Store(ctx context.Context, n *Node) error
	// Delete takes a node already existing in the store
	// and deletes it on the store.
	Delete(ctx context.Context, n *Node) error
	// Count returns the number of nodes in the store
	Count(ctx context.Context) (int, error)
}

type memoryNodeStore struct {
	nodes  map[string]*Node
	lock   sync.RWMutex
	nextID uint64
}

// NewMemoryNodeStore returns an implementation
// of NodeStore with the process memory space
// as underlying backend. Node IDs are assigned
// sequentially starting at "1".
func NewMemoryNodeStore() NodeStore {
	return &memoryNodeStore{nodes: make(map[string]*Node)}
}

func (mns *memoryNodeStore) Create(ctx context.Context, n *Node) error {
	return mns.withLock(ctx, func() error {
		mns.nextID++
		n.ID = strconv.FormatUint(mns.nextID, 10)
		mns.nodes[n.ID] = n
		return nil
	})
}

func (mns *memoryNodeStore) Store(ctx context.Context, n *Node) error {
	return mns.withLock(ctx, func() error {
		mns.nodes[n.ID] = n
		return nil
	})
}

func (mns *memoryNodeStore) Get(ctx context.Context, id string) (*Node, error) {
	var n *Node
	err := mns.withRLock(ctx, func() error {
		n = mns.nodes[id]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (mns *memoryNodeStore) Delete(ctx context.Context, n *Node) error {
	return mns.withLock(ctx, func() error {
		delete(mns.nodes, n.ID)
		return nil
	})
}

func (mns *memoryNodeStore) Count(ctx context.Context) (int, error) {
	var count int
	err := mns.withRLock(ctx, func() error {
		count = len(mns.nodes)
		return nil
	})
	return count, err
}

func (mns *memoryNodeStore) withLock(ctx context.Context, f func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	mns.lock.Lock()
	defer mns.lock.Unlock()
	return f()
}

func (mns *memoryNodeStore) withRLock(ctx context.Context, f func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	mns.lock.RLock()
	defer mns.lock.RUnlock()
	return f()
}

/*
Package tree provides the binary decision tree grown by the id3 package,
the store its nodes live in, and the operations to classify datasets with
it and render it as text.
*/
package tree

import (
	"context"
	"fmt"

	"github.com/z-h-i/iterative-dichotomiser-three/feature"
)

// Error represents an error related with trees
type Error string

const (
	// ErrEmptyTree is returned when operating on a nil tree
	ErrEmptyTree = Error("tree has no nodes")
	// ErrNodeNotFound is returned when a node referenced by the tree
	// is missing from its node store
	ErrNodeNotFound = Error("node not found")
	// ErrIncompleteTree is returned when reaching a node that has neither
	// a label nor subtrees, which happens on trees that are not fully grown
	ErrIncompleteTree = Error("tree is not fully grown")
	// ErrFeatureNotInDataset is returned when a tree is tested against
	// a dataset lacking one of the features the tree splits on
	ErrFeatureNotInDataset = Error("feature used by the tree is not in the dataset")
)

func (e Error) Error() string {
	return string(e)
}

// Tree represents a binary decision tree. It is composed of a
// NodeStore where all its nodes are stored, the id for the
// root node of the tree, the label it is able to predict and
// the majority label on the whole training data.
type Tree struct {
	NodeStore
	RootID   string
	Label    feature.Feature
	Majority feature.Value
}

// New takes the ID for the root Node, a NodeStore, a label feature and the
// training majority label and returns a tree composed of the nodes in the
// NodeStore connected to the node with the given root ID.
func New(rootID string, nodeStore NodeStore, label feature.Feature, majority feature.Value) *Tree {
	return &Tree{nodeStore, rootID, label, majority}
}

// Traverse takes a context, bottomup boolean and an
// error-returning function that takes a context and a node
// as parameters, and goes through the tree running the
// function with the context and every traversed node.
// Traverse will call the function with a parent node before
// calling it for its children if bottomup is false, and
// call it after its children if bottomup is true.
// If the given context times out or is cancelled, the context
// error is returned. If a node cannot be retrieved from the
// tree's node store, the obtained error is returned. If the
// call to the function returns an error, the traversing is
// aborted and the error is returned.
func (t *Tree) Traverse(ctx context.Context, bottomup bool, f func(context.Context, *Node) error) error {
	if t == nil {
		return ErrEmptyTree
	}
	n, err := t.node(ctx, t.RootID)
	if err != nil {
		return err
	}
	return t.traverse(ctx, n, bottomup, f)
}

func (t *Tree) traverse(ctx context.Context, n *Node, bottomup bool, f func(context.Context, *Node) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !bottomup {
		if err := f(ctx, n); err != nil {
			return err
		}
	}
	for _, snID := range n.SubtreeIDs {
		sn, err := t.node(ctx, snID)
		if err != nil {
			return err
		}
		if err = t.traverse(ctx, sn, bottomup, f); err != nil {
			return err
		}
	}
	if bottomup {
		return f(ctx, n)
	}
	return nil
}

// Depth returns the number of splits on the longest path from the root
// to a leaf.
func (t *Tree) Depth(ctx context.Context) (int, error) {
	depths := make(map[string]int)
	var result int
	err := t.Traverse(ctx, false, func(ctx context.Context, n *Node) error {
		d := 0
		if n.ParentID != "" {
			d = depths[n.ParentID] + 1
		}
		depths[n.ID] = d
		if d > result {
			result = d
		}
		return nil
	})
	return result, err
}

func (t *Tree) node(ctx context.Context, id string) (*Node, error) {
	n, err := t.NodeStore.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("retrieving node %v: %w", id, err)
	}
	if n == nil {
		return nil, fmt.Errorf("%w: %v", ErrNodeNotFound, id)
	}
	return n, nil
}

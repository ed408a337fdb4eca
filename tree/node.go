package tree

import (
	"github.com/z-h-i/iterative-dichotomiser-three/feature"
)

/*
Kind tells apart the roles a node can play in a tree.
*/
type Kind int

const (
	// Leaf nodes hold a label and have no subtrees
	Leaf Kind = iota
	// RootInternal is the kind of a root node that splits the data
	RootInternal
	// Internal is the kind of non-root nodes that split the data
	Internal
)

func (k Kind) String() string {
	switch k {
	case Leaf:
		return "leaf"
	case RootInternal:
		return "root"
	case Internal:
		return "internal"
	}
	return "unknown"
}

/*
Node is a node of the tree
*/
type Node struct {
	// An ID to identify the node
	ID string
	// The ID for the parent of the node in the tree
	ParentID string
	// The IDs of the nodes directly under this node: the subtree
	// for samples with value 0 on SubtreeFeature first, then the
	// subtree for value 1.
	SubtreeIDs []string
	// The constraint on the parent's SubtreeFeature that samples satisfy
	// when they reach this node. Nil for the root.
	Criterion feature.Criterion
	// The feature whose value selects the subtree to continue with.
	// Nil for leaves.
	SubtreeFeature feature.Feature
	// The label predicted for samples reaching this node. Only set
	// on leaves.
	Label *feature.Value
	// The number of training samples that reached the node.
	Weight int
}

/*
Kind returns the role of the node: Leaf if it has a label, RootInternal
if it has no criterion and Internal otherwise.
*/
func (n *Node) Kind() Kind {
	if n.Label != nil {
		return Leaf
	}
	if n.Criterion == nil {
		return RootInternal
	}
	return Internal
}

/*
SetLabel turns the node into a leaf predicting the given value.
*/
func (n *Node) SetLabel(v feature.Value) {
	n.Label = &v
	n.SubtreeFeature = nil
	n.SubtreeIDs = nil
}

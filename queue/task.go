package queue

import (
	"fmt"

	"github.com/z-h-i/iterative-dichotomiser-three/dataset"
	"github.com/z-h-i/iterative-dichotomiser-three/feature"
	"github.com/z-h-i/iterative-dichotomiser-three/tree"
)

// Task represents a tree.Node to be developed
// on a tree.Tree.
type Task struct {
	// The node to be developed
	Node *tree.Node
	// The dataset of training data with samples
	// satisfying the constraints on the node
	// and its ancestors. Features used by the
	// ancestors have been dropped from it.
	Dataset dataset.Dataset
	// The label for the node should the dataset
	// be empty: the majority label on the parent's
	// dataset.
	Fallback feature.Value
}

// ID returns a string that identifies the
// task, the ID of its Node.
func (t *Task) ID() string {
	return t.Node.ID
}

func (t *Task) String() string {
	return fmt.Sprintf("{Task %s}", t.Node.ID)
}

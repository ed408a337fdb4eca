package tree

import (
	"context"
	"fmt"
	"strings"
)

const indentation = "| "

/*
Lines takes a context and returns the diagram of the tree as a slice of
lines, one per node below the root, in pre-order with the subtree for value 0
before the one for value 1:

	A = 0 :
	| B = 0 :  0
	| B = 1 :  1
	A = 1 :  1

Each line shows the criterion leading to the node, indented once per level,
and for leaves the label they predict. A tree whose root is a leaf renders as
a single line with the label.
*/
func (t *Tree) Lines(ctx context.Context) ([]string, error) {
	if t == nil {
		return nil, ErrEmptyTree
	}
	root, err := t.node(ctx, t.RootID)
	if err != nil {
		return nil, err
	}
	if root.Label != nil {
		return []string{fmt.Sprintf(":  %v", *root.Label)}, nil
	}
	var lines []string
	for _, id := range root.SubtreeIDs {
		lines, err = t.appendLines(ctx, lines, id, 0)
		if err != nil {
			return nil, err
		}
	}
	return lines, nil
}

func (t *Tree) appendLines(ctx context.Context, lines []string, nodeID string, depth int) ([]string, error) {
	n, err := t.node(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	line := fmt.Sprintf("%s%s = %v :", strings.Repeat(indentation, depth), n.Criterion.Feature().Name(), n.Criterion.Value())
	if n.Label != nil {
		return append(lines, fmt.Sprintf("%s  %v", line, *n.Label)), nil
	}
	lines = append(lines, line)
	for _, id := range n.SubtreeIDs {
		lines, err = t.appendLines(ctx, lines, id, depth+1)
		if err != nil {
			return nil, err
		}
	}
	return lines, nil
}

func (t *Tree) String() string {
	lines, err := t.Lines(context.TODO())
	if err != nil {
		return fmt.Sprintf("ERROR: %s\n", err.Error())
	}
	return strings.Join(lines, "\n")
}

package tree

import (
	"context"
	"fmt"

	"github.com/z-h-i/iterative-dichotomiser-three/dataset"
	"github.com/z-h-i/iterative-dichotomiser-three/feature"
)

// tally counts the samples that reached a part of the tree and how many
// of them were labeled as predicted.
type tally struct {
	correct int
	total   int
}

func (tl tally) add(o tally) tally {
	return tally{tl.correct + o.correct, tl.total + o.total}
}

/*
Predict takes a context and a sample and returns the label the tree predicts
for it or an error if the sample lacks a feature on its path down the tree.
*/
func (t *Tree) Predict(ctx context.Context, s feature.Sample) (feature.Value, error) {
	if t == nil {
		return feature.False, ErrEmptyTree
	}
	n, err := t.node(ctx, t.RootID)
	if err != nil {
		return feature.False, fmt.Errorf("predicting sample: %w", err)
	}
	for n.Label == nil {
		if len(n.SubtreeIDs) == 0 {
			return feature.False, fmt.Errorf("predicting sample: node %v: %w", n.ID, ErrIncompleteTree)
		}
		var selected *Node
		for _, id := range n.SubtreeIDs {
			sn, err := t.node(ctx, id)
			if err != nil {
				return feature.False, fmt.Errorf("predicting sample: %w", err)
			}
			ok, err := sn.Criterion.SatisfiedBy(ctx, s)
			if err != nil {
				return feature.False, fmt.Errorf("predicting sample: %w", err)
			}
			if ok {
				selected = sn
				break
			}
		}
		if selected == nil {
			return feature.False, fmt.Errorf("sample does not satisfy any subtree criteria on feature %s", n.SubtreeFeature.Name())
		}
		n = selected
	}
	return *n.Label, nil
}

/*
Test takes a context.Context and a dataset and returns the fraction of its
samples whose label the tree predicts correctly.

The dataset is routed down the tree by subsetting it with the criterion of
every node, so it must carry, by name, every feature the tree splits on. If
it does not, an error wrapping ErrFeatureNotInDataset is returned. Testing
against an empty dataset returns an error wrapping dataset.ErrEmptyDataset.

Counts are accumulated on each call, so a tree may be tested any number of
times, concurrently or not, with independent results.
*/
func (t *Tree) Test(ctx context.Context, s dataset.Dataset) (float64, error) {
	if t == nil {
		return 0.0, ErrEmptyTree
	}
	count, err := s.Count(ctx)
	if err != nil {
		return 0.0, err
	}
	if count == 0 {
		return 0.0, fmt.Errorf("testing tree: %w", dataset.ErrEmptyDataset)
	}
	err = t.checkFeatures(ctx, s)
	if err != nil {
		return 0.0, err
	}
	root, err := t.node(ctx, t.RootID)
	if err != nil {
		return 0.0, fmt.Errorf("testing tree: %w", err)
	}
	result, err := t.test(ctx, root, s)
	if err != nil {
		return 0.0, fmt.Errorf("testing tree: %w", err)
	}
	return float64(result.correct) / float64(count), nil
}

func (t *Tree) test(ctx context.Context, n *Node, s dataset.Dataset) (tally, error) {
	if n.Label != nil {
		counts, err := s.CountFeatureValues(ctx, s.Label())
		if err != nil {
			return tally{}, err
		}
		return tally{counts[*n.Label], counts[feature.False] + counts[feature.True]}, nil
	}
	if len(n.SubtreeIDs) == 0 {
		return tally{}, fmt.Errorf("node %v: %w", n.ID, ErrIncompleteTree)
	}
	var result tally
	for _, id := range n.SubtreeIDs {
		sn, err := t.node(ctx, id)
		if err != nil {
			return tally{}, err
		}
		ss, err := s.SubsetWith(ctx, sn.Criterion)
		if err != nil {
			return tally{}, err
		}
		st, err := t.test(ctx, sn, ss)
		if err != nil {
			return tally{}, err
		}
		result = result.add(st)
	}
	return result, nil
}

// checkFeatures makes sure the dataset has every feature the tree splits on
// before routing any sample, so a schema mismatch is reported even when no
// sample would reach the offending node.
func (t *Tree) checkFeatures(ctx context.Context, s dataset.Dataset) error {
	available := make(map[string]bool)
	for _, f := range s.Features() {
		available[f.Name()] = true
	}
	return t.Traverse(ctx, false, func(ctx context.Context, n *Node) error {
		if n.SubtreeFeature == nil || available[n.SubtreeFeature.Name()] {
			return nil
		}
		return fmt.Errorf("testing tree: %w: %s", ErrFeatureNotInDataset, n.SubtreeFeature.Name())
	})
}

package id3

import (
	"context"
	"fmt"

	"github.com/z-h-i/iterative-dichotomiser-three/dataset"
	"github.com/z-h-i/iterative-dichotomiser-three/feature"
)

/*
Partition represents the split of a dataset on a feature: the subsets of
samples taking each of its values, with the feature's column dropped from
them, and the conditional entropy of the label given the feature.
*/
type Partition struct {
	Feature            feature.Feature
	ConditionalEntropy float64
	// Subsets holds the subset for value 0 at index 0 and the one for
	// value 1 at index 1. Either may be empty.
	Subsets [2]dataset.Dataset
}

/*
SelectBestFeature takes a context.Context, a dataset, a slice of its
attribute features and a TieBreaker and returns the partition of the
dataset on the feature with the minimum conditional entropy. When several
features share the minimum, the TieBreaker picks among them. A nil
TieBreaker behaves as FirstTieBreaker.

An error wrapping dataset.ErrEmptyDataset is returned if the dataset has no
samples, and ErrNoFeatures if the slice of features is empty.
*/
func SelectBestFeature(ctx context.Context, s dataset.Dataset, features []feature.Feature, tb TieBreaker) (*Partition, error) {
	if len(features) == 0 {
		return nil, ErrNoFeatures
	}
	count, err := s.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("selecting feature: %w", dataset.ErrEmptyDataset)
	}
	if tb == nil {
		tb = FirstTieBreaker()
	}
	var tied []feature.Feature
	var minimum float64
	for _, f := range features {
		ce, err := dataset.ConditionalEntropy(ctx, s, f)
		if err != nil {
			return nil, fmt.Errorf("conditional entropy on %s: %w", f.Name(), err)
		}
		switch {
		case tied == nil || ce < minimum:
			minimum = ce
			tied = []feature.Feature{f}
		case ce == minimum:
			tied = append(tied, f)
		}
	}
	selected, err := tb.Break(ctx, tied)
	if err != nil {
		return nil, fmt.Errorf("breaking tie among %v: %w", feature.Names(tied), err)
	}
	return partition(ctx, s, selected, minimum)
}

func partition(ctx context.Context, s dataset.Dataset, f feature.Feature, ce float64) (*Partition, error) {
	result := &Partition{Feature: f, ConditionalEntropy: ce}
	for _, v := range feature.Values() {
		ss, err := s.SubsetWith(ctx, feature.NewCriterion(f, v))
		if err != nil {
			return nil, err
		}
		ss, err = ss.Drop(ctx, f)
		if err != nil {
			return nil, err
		}
		result.Subsets[v] = ss
	}
	return result, nil
}

package dataset

import (
	"context"
	"math"

	"github.com/z-h-i/iterative-dichotomiser-three/feature"
)

/*
BinaryEntropy takes the probability p of one of the two outcomes of a
binary distribution and returns its base-2 Shannon entropy
-p*log2(p) - (1-p)*log2(1-p), taking 0*log2(0) as 0. The result is in [0, 1].
*/
func BinaryEntropy(p float64) float64 {
	return -plog2p(p) - plog2p(1-p)
}

func plog2p(p float64) float64 {
	if p <= 0 {
		return 0
	}
	return p * math.Log2(p)
}

func labelEntropy(counts map[feature.Value]int) (float64, error) {
	total := counts[feature.False] + counts[feature.True]
	if total == 0 {
		return 0, ErrEmptyDataset
	}
	return BinaryEntropy(float64(counts[feature.True]) / float64(total)), nil
}

/*
Frequency takes a context and a dataset and returns the fraction of its
samples labeled True, or ErrEmptyDataset if it has no samples.
*/
func Frequency(ctx context.Context, s Dataset) (float64, error) {
	counts, err := s.CountFeatureValues(ctx, s.Label())
	if err != nil {
		return 0, err
	}
	total := counts[feature.False] + counts[feature.True]
	if total == 0 {
		return 0, ErrEmptyDataset
	}
	return float64(counts[feature.True]) / float64(total), nil
}

/*
MajorityLabel takes a context and a dataset and returns the most frequent
label on it: True when at least half of the samples are labeled True,
False otherwise.
*/
func MajorityLabel(ctx context.Context, s Dataset) (feature.Value, error) {
	p, err := Frequency(ctx, s)
	if err != nil {
		return feature.False, err
	}
	if p >= 0.5 {
		return feature.True, nil
	}
	return feature.False, nil
}

/*
ConditionalEntropy takes a context, a dataset and one of its attribute features
and returns the expected entropy of the label once the dataset is partitioned
by the feature's value: the entropy of each partition weighted by its share
of the samples. Empty partitions contribute nothing.
*/
func ConditionalEntropy(ctx context.Context, s Dataset, f feature.Feature) (float64, error) {
	count, err := s.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, ErrEmptyDataset
	}
	var result float64
	for _, v := range feature.Values() {
		part, err := s.SubsetWith(ctx, feature.NewCriterion(f, v))
		if err != nil {
			return 0, err
		}
		partCount, err := part.Count(ctx)
		if err != nil {
			return 0, err
		}
		if partCount == 0 {
			continue
		}
		partEntropy, err := part.Entropy(ctx)
		if err != nil {
			return 0, err
		}
		result += partEntropy * float64(partCount) / float64(count)
	}
	return result, nil
}

/*
IdenticalAttributes takes a context and a dataset and returns whether all
its samples take the same values for every attribute feature, regardless
of their labels.
*/
func IdenticalAttributes(ctx context.Context, s Dataset) (bool, error) {
	samples, err := s.Samples(ctx)
	if err != nil {
		return false, err
	}
	if len(samples) < 2 {
		return true, nil
	}
	features := s.Features()
	first := make([]feature.Value, len(features))
	for i, f := range features {
		first[i], err = samples[0].ValueFor(ctx, f)
		if err != nil {
			return false, err
		}
	}
	for _, sample := range samples[1:] {
		for i, f := range features {
			v, err := sample.ValueFor(ctx, f)
			if err != nil {
				return false, err
			}
			if v != first[i] {
				return false, nil
			}
		}
	}
	return true, nil
}

package id3_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id3 "github.com/z-h-i/iterative-dichotomiser-three"
	"github.com/z-h-i/iterative-dichotomiser-three/dataset"
	"github.com/z-h-i/iterative-dichotomiser-three/feature"
)

func TestSelectBestFeature(t *testing.T) {
	ctx := context.Background()
	s := build(t, []string{"A", "B", "T"}, abtRows)
	p, err := id3.SelectBestFeature(ctx, s, s.Features(), nil)
	require.NoError(t, err)
	assert.Equal(t, "A", p.Feature.Name())
	assert.Equal(t, 0.0, p.ConditionalEntropy)
	for v, ss := range p.Subsets {
		assert.Equal(t, []string{"B"}, feature.Names(ss.Features()))
		count, err := ss.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
		counts, err := ss.CountFeatureValues(ctx, ss.Label())
		require.NoError(t, err)
		assert.Equal(t, 2, counts[feature.Value(v)])
	}
}

func TestSelectBestFeatureOnlyAmongGivenFeatures(t *testing.T) {
	ctx := context.Background()
	s := build(t, []string{"A", "B", "T"}, abtRows)
	p, err := id3.SelectBestFeature(ctx, s, []feature.Feature{s.Features()[1]}, nil)
	require.NoError(t, err)
	assert.Equal(t, "B", p.Feature.Name())
	assert.Equal(t, 1.0, p.ConditionalEntropy)
}

func TestSelectBestFeatureTies(t *testing.T) {
	ctx := context.Background()
	// B and C carry the same information, A none
	s := build(t, []string{"A", "B", "C", "T"}, [][]feature.Value{
		{0, 0, 1, 0},
		{1, 0, 1, 0},
		{0, 1, 0, 1},
		{1, 1, 0, 1},
	})
	var seen []string
	last := id3.TieBreakerFunc(func(ctx context.Context, tied []feature.Feature) (feature.Feature, error) {
		seen = feature.Names(tied)
		return tied[len(tied)-1], nil
	})
	p, err := id3.SelectBestFeature(ctx, s, s.Features(), last)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, seen)
	assert.Equal(t, "C", p.Feature.Name())

	p, err = id3.SelectBestFeature(ctx, s, s.Features(), id3.FirstTieBreaker())
	require.NoError(t, err)
	assert.Equal(t, "B", p.Feature.Name())
}

func TestSelectBestFeatureErrors(t *testing.T) {
	ctx := context.Background()
	s := build(t, []string{"A", "B", "T"}, abtRows)
	_, err := id3.SelectBestFeature(ctx, s, nil, nil)
	assert.True(t, errors.Is(err, id3.ErrNoFeatures))

	empty := build(t, []string{"A", "B", "T"}, nil)
	_, err = id3.SelectBestFeature(ctx, empty, empty.Features(), nil)
	assert.True(t, errors.Is(err, dataset.ErrEmptyDataset))

	failing := id3.TieBreakerFunc(func(ctx context.Context, tied []feature.Feature) (feature.Feature, error) {
		return nil, errors.New("boom")
	})
	_, err = id3.SelectBestFeature(ctx, s, s.Features(), failing)
	assert.EqualError(t, err, "breaking tie among [A]: boom")
}

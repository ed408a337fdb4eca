package tree_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z-h-i/iterative-dichotomiser-three/dataset"
	"github.com/z-h-i/iterative-dichotomiser-three/feature"
	"github.com/z-h-i/iterative-dichotomiser-three/tree"
)

// depthTwoTree builds the tree
//
//	X = 0 :
//	| Y = 0 :  0
//	| Y = 1 :  1
//	X = 1 :  1
func depthTwoTree(t *testing.T) *tree.Tree {
	t.Helper()
	ctx := context.Background()
	ns := tree.NewMemoryNodeStore()
	x, y := feature.New("X"), feature.New("Y")

	root := &tree.Node{SubtreeFeature: x}
	require.NoError(t, ns.Create(ctx, root))
	x0 := &tree.Node{ParentID: root.ID, Criterion: feature.NewCriterion(x, feature.False), SubtreeFeature: y}
	require.NoError(t, ns.Create(ctx, x0))
	x1 := &tree.Node{ParentID: root.ID, Criterion: feature.NewCriterion(x, feature.True)}
	x1.SetLabel(feature.True)
	require.NoError(t, ns.Create(ctx, x1))
	y0 := &tree.Node{ParentID: x0.ID, Criterion: feature.NewCriterion(y, feature.False)}
	y0.SetLabel(feature.False)
	require.NoError(t, ns.Create(ctx, y0))
	y1 := &tree.Node{ParentID: x0.ID, Criterion: feature.NewCriterion(y, feature.True)}
	y1.SetLabel(feature.True)
	require.NoError(t, ns.Create(ctx, y1))

	root.SubtreeIDs = []string{x0.ID, x1.ID}
	x0.SubtreeIDs = []string{y0.ID, y1.ID}
	require.NoError(t, ns.Store(ctx, root))
	require.NoError(t, ns.Store(ctx, x0))
	return tree.New(root.ID, ns, feature.New("T"), feature.True)
}

func table(t *testing.T, columns []string, rows [][]feature.Value) dataset.Dataset {
	t.Helper()
	return tableWith(t, dataset.NewMemoryIntensive, columns, rows)
}

func tableWith(t *testing.T, gen dataset.Generator, columns []string, rows [][]feature.Value) dataset.Dataset {
	t.Helper()
	sc, err := dataset.NewSchema(columns)
	require.NoError(t, err)
	samples := make([]dataset.Sample, 0, len(rows))
	for _, row := range rows {
		values := make(map[string]feature.Value, len(row))
		for i, v := range row {
			values[columns[i]] = v
		}
		samples = append(samples, dataset.NewSample(values))
	}
	return gen(sc, samples)
}

func TestNodeKind(t *testing.T) {
	root := &tree.Node{SubtreeFeature: feature.New("X")}
	assert.Equal(t, tree.RootInternal, root.Kind())
	internal := &tree.Node{Criterion: feature.NewCriterion(feature.New("X"), feature.True)}
	assert.Equal(t, tree.Internal, internal.Kind())
	internal.SetLabel(feature.False)
	assert.Equal(t, tree.Leaf, internal.Kind())
	assert.Nil(t, internal.SubtreeFeature)
	pureRoot := &tree.Node{}
	pureRoot.SetLabel(feature.True)
	assert.Equal(t, tree.Leaf, pureRoot.Kind())
}

func TestLines(t *testing.T) {
	lines, err := depthTwoTree(t).Lines(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"X = 0 :",
		"| Y = 0 :  0",
		"| Y = 1 :  1",
		"X = 1 :  1",
	}, lines)
}

func TestLinesForLeafRoot(t *testing.T) {
	ctx := context.Background()
	ns := tree.NewMemoryNodeStore()
	root := &tree.Node{}
	root.SetLabel(feature.False)
	require.NoError(t, ns.Create(ctx, root))
	tr := tree.New(root.ID, ns, feature.New("T"), feature.False)
	lines, err := tr.Lines(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{":  0"}, lines)
	assert.Equal(t, ":  0", tr.String())
}

func TestTest(t *testing.T) {
	ctx := context.Background()
	tr := depthTwoTree(t)
	s := table(t, []string{"X", "Y", "T"}, [][]feature.Value{
		{0, 0, 0}, // correct
		{0, 1, 1}, // correct
		{1, 0, 1}, // correct
		{1, 1, 0}, // wrong
	})
	acc, err := tr.Test(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 0.75, acc)

	again, err := tr.Test(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, acc, again, "repeated tests must not share counts")
}

func TestTestConcurrently(t *testing.T) {
	ctx := context.Background()
	tr := depthTwoTree(t)
	rows := [][]feature.Value{
		{0, 0, 0},
		{0, 1, 0},
		{1, 1, 1},
		{1, 0, 0},
		{1, 1, 1},
	}
	generators := map[string]dataset.Generator{
		"memory-intensive": dataset.NewMemoryIntensive,
		"cpu-intensive":    dataset.NewCPUIntensive,
	}
	for name, gen := range generators {
		t.Run(name, func(t *testing.T) {
			s := tableWith(t, gen, []string{"X", "Y", "T"}, rows)
			var wg sync.WaitGroup
			results := make([]float64, 16)
			for i := range results {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					acc, err := tr.Test(ctx, s)
					assert.NoError(t, err)
					results[i] = acc
				}(i)
			}
			wg.Wait()
			for _, acc := range results {
				assert.Equal(t, 0.6, acc)
			}
		})
	}
}

func TestTestReordersColumnsByName(t *testing.T) {
	ctx := context.Background()
	s := table(t, []string{"Y", "Z", "X", "T"}, [][]feature.Value{
		{1, 0, 0, 1},
		{0, 1, 1, 1},
	})
	acc, err := depthTwoTree(t).Test(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 1.0, acc)
}

func TestTestSchemaMismatch(t *testing.T) {
	ctx := context.Background()
	// no sample reaches the Y split, the mismatch must still be reported
	s := table(t, []string{"X", "T"}, [][]feature.Value{{1, 1}})
	_, err := depthTwoTree(t).Test(ctx, s)
	assert.True(t, errors.Is(err, tree.ErrFeatureNotInDataset), "got %v", err)
}

func TestTestEmptyDataset(t *testing.T) {
	s := table(t, []string{"X", "Y", "T"}, nil)
	_, err := depthTwoTree(t).Test(context.Background(), s)
	assert.True(t, errors.Is(err, dataset.ErrEmptyDataset))
}

func TestPredict(t *testing.T) {
	ctx := context.Background()
	tr := depthTwoTree(t)
	cases := []struct {
		values map[string]feature.Value
		want   feature.Value
	}{
		{map[string]feature.Value{"X": 0, "Y": 0}, feature.False},
		{map[string]feature.Value{"X": 0, "Y": 1}, feature.True},
		{map[string]feature.Value{"X": 1}, feature.True},
	}
	for _, c := range cases {
		got, err := tr.Predict(ctx, dataset.NewSample(c.values))
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "%v", c.values)
	}
	_, err := tr.Predict(ctx, dataset.NewSample(map[string]feature.Value{"X": 0}))
	assert.True(t, errors.Is(err, feature.ErrUndefinedFeature))
}

func TestDepthAndTraverse(t *testing.T) {
	ctx := context.Background()
	tr := depthTwoTree(t)
	d, err := tr.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, d)

	var kinds []tree.Kind
	err = tr.Traverse(ctx, true, func(ctx context.Context, n *tree.Node) error {
		kinds = append(kinds, n.Kind())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []tree.Kind{tree.Leaf, tree.Leaf, tree.Internal, tree.Leaf, tree.RootInternal}, kinds)

	count, err := tr.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestNilTree(t *testing.T) {
	var tr *tree.Tree
	_, err := tr.Lines(context.Background())
	assert.True(t, errors.Is(err, tree.ErrEmptyTree))
	_, err = tr.Test(context.Background(), table(t, []string{"X", "T"}, nil))
	assert.True(t, errors.Is(err, tree.ErrEmptyTree))
}

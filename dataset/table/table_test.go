package table_test

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z-h-i/iterative-dichotomiser-three/dataset"
	"github.com/z-h-i/iterative-dichotomiser-three/dataset/table"
	"github.com/z-h-i/iterative-dichotomiser-three/feature"
)

const abt = "A\tB\tT\n1\t1\t1\n1\t0\t1\n0\t1\t0\n\n0\t0\t0\n"

func TestReadDataset(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name  string
		input string
		tf    table.Format
	}{
		{"tabs", abt, table.Format{}},
		{"commas", "A,B,T\n1,1,1\n1,0,1\n0,1,0\n0,0,0\n", table.Format{Delimiter: ','}},
		{"whitespace", "A  B\tT\n 1 1 1\n1 0   1\n\n0\t1 0\n0 0 0\n", table.Format{Whitespace: true}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s, err := table.ReadDataset(strings.NewReader(c.input), c.tf, dataset.NewMemoryIntensive)
			require.NoError(t, err)
			assert.Equal(t, "T", s.Label().Name())
			assert.Equal(t, []string{"A", "B"}, feature.Names(s.Features()))
			count, err := s.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 4, count)
			h, err := s.Entropy(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1.0, h)
		})
	}
}

func TestReadDatasetErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "reading header: table is empty"},
		{"repeated column", "A\tA\tT\n", "parsing header on line 1: column name A is repeated"},
		{"ragged row", "A\tT\n1\t0\n1\n", "parsing line 3: expected 2 cells, found 1"},
		{"non binary value", "A\tT\n1\t0\n\n2\t1\n", `parsing line 4: column A: invalid binary value "2"`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := table.ReadDataset(strings.NewReader(c.input), table.Format{}, dataset.New)
			assert.EqualError(t, err, c.want)
		})
	}
}

func TestReadBySampleStops(t *testing.T) {
	var indexes []int
	sc, err := table.ReadBySample(strings.NewReader(abt), table.Format{}, func(i int, _ dataset.Sample) (bool, error) {
		indexes = append(indexes, i)
		return i < 1, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "T"}, sc.Columns())
	assert.Equal(t, []int{0, 1}, indexes)
}

func TestWriteAndReadBack(t *testing.T) {
	ctx := context.Background()
	s, err := table.ReadDataset(strings.NewReader(abt), table.Format{}, dataset.NewCPUIntensive)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "abt.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, table.WriteDataset(ctx, f, table.Format{Delimiter: ','}, s))
	require.NoError(t, f.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A,B,T\n1,1,1\n1,0,1\n0,1,0\n0,0,0\n", string(content))

	read, err := table.ReadDatasetFromFilePath(path, table.Format{Delimiter: ','}, dataset.New)
	require.NoError(t, err)
	count, err := read.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestWriterCountsSamples(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	columns := []feature.Feature{feature.New("A"), feature.New("T")}
	w, err := table.NewWriter(&buf, table.Format{Whitespace: true}, columns)
	require.NoError(t, err)
	n, err := w.Write(ctx, []dataset.Sample{
		dataset.NewSample(map[string]feature.Value{"A": 1, "T": 0}),
		dataset.NewSample(map[string]feature.Value{"A": 0, "T": 1}),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = w.Write(ctx, []dataset.Sample{dataset.NewSample(map[string]feature.Value{"A": 1})})
	assert.Error(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 2, w.Count())
	require.NoError(t, w.Flush())
	assert.Equal(t, "A T\n1 0\n0 1\n", buf.String())
}

func TestReadDatasetFromMissingFile(t *testing.T) {
	_, err := table.ReadDatasetFromFilePath(filepath.Join(t.TempDir(), "missing"), table.Format{}, dataset.New)
	assert.True(t, errors.Is(err, fs.ErrNotExist), "got %v", err)
}

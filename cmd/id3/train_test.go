package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/z-h-i/iterative-dichotomiser-three/dataset"
	"github.com/z-h-i/iterative-dichotomiser-three/dataset/table"
	"github.com/z-h-i/iterative-dichotomiser-three/feature"
)

const (
	trainTable = "A\tB\tT\n1\t1\t1\n1\t0\t1\n0\t1\t0\n0\t0\t0\n"
	testTable  = "B\tA\tT\n1\t1\t1\n0\t1\t0\n0\t0\t0\n1\t0\t0\n"
)

func testConfig() *rootCmdConfig {
	return &rootCmdConfig{tieBreak: "first", delimiter: `\t`, table: "samples"}
}

func TestTrainAndTest(t *testing.T) {
	train := writeFile(t, "train.tsv", trainTable)
	test := writeFile(t, "test.tsv", testTable)
	var out bytes.Buffer
	code, err := trainAndTest(context.Background(), testConfig(), train, test, &out)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, `A = 0 :  0
A = 1 :  1

Accuracy on training set (4 instances):  100.0%

Accuracy on test set (4 instances):  75.0%
`, out.String())
}

func TestTrainAndTestExitCodes(t *testing.T) {
	train := writeFile(t, "train.tsv", trainTable)
	cases := []struct {
		name  string
		train string
		test  string
		code  int
	}{
		{"missing training file", filepath.Join(t.TempDir(), "missing.tsv"), train, 2},
		{"malformed test file", train, writeFile(t, "bad.tsv", "A\tT\n1\t2\n"), 3},
		{"empty training set", writeFile(t, "empty.tsv", "A\tB\tT\n"), train, 4},
		{"test set lacks a split feature", train, writeFile(t, "other.tsv", "B\tT\n1\t1\n"), 7},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var out bytes.Buffer
			code, err := trainAndTest(context.Background(), testConfig(), c.train, c.test, &out)
			assert.Error(t, err)
			assert.Equal(t, c.code, code)
		})
	}
}

func TestRunFlushesLogsBeforeReportingFailure(t *testing.T) {
	var logs, stderr bytes.Buffer
	ws := &zapcore.BufferedWriteSyncer{WS: zapcore.AddSync(&logs), Size: 1 << 20, FlushInterval: time.Hour}
	defer ws.Stop()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), ws, zapcore.DebugLevel)
	config := testConfig()
	config.logger = zap.New(core).Sugar()

	missing := filepath.Join(t.TempDir(), "missing.tsv")
	code := run(config, &stderr, func() (int, error) {
		return trainAndTest(context.Background(), config, missing, missing, io.Discard)
	})
	assert.Equal(t, 2, code)
	assert.Contains(t, logs.String(), "Reading training dataset from "+missing)
	assert.Contains(t, stderr.String(), "reading training dataset")

	stderr.Reset()
	assert.Equal(t, 0, run(config, &stderr, func() (int, error) { return 0, nil }))
	assert.Empty(t, stderr.String())
}

func TestSplitIntoSQLite3AndBack(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	rows := strings.Repeat("1\t0\t1\n0\t1\t0\n", 50)
	input := writeFile(t, "input.tsv", "A\tB\tT\n"+rows)
	config := &splitCmdConfig{
		rootCmdConfig:    &rootCmdConfig{delimiter: `\t`, table: "samples", seed: 7},
		input:            input,
		output:           filepath.Join(dir, "train.tsv"),
		splitOutput:      filepath.Join(dir, "test.db"),
		splitProbability: 30,
	}
	require.NoError(t, config.Validate())
	code, err := config.split()
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	kept, err := table.ReadDatasetFromFilePath(config.output, config.format(), dataset.New)
	require.NoError(t, err)
	keptCount, err := kept.Count(ctx)
	require.NoError(t, err)

	split, closer, err := openDataset(ctx, config.rootCmdConfig, config.splitOutput)
	require.NoError(t, err)
	defer closer.Close()
	splitCount, err := split.Count(ctx)
	require.NoError(t, err)

	assert.Equal(t, 100, keptCount+splitCount)
	assert.Greater(t, keptCount, 0)
	assert.Greater(t, splitCount, 0)
	assert.Equal(t, []string{"A", "B"}, feature.Names(split.Features()))
	assert.Equal(t, "T", split.Label().Name())

	var out bytes.Buffer
	code, err = trainAndTest(ctx, testConfig(), config.output, config.splitOutput, &out)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "Accuracy on test set")
}

func TestSplitValidation(t *testing.T) {
	base := splitCmdConfig{input: "in.tsv", splitOutput: "out.tsv", splitProbability: 20}
	require.NoError(t, base.Validate())
	for _, mutate := range []func(*splitCmdConfig){
		func(c *splitCmdConfig) { c.input = "" },
		func(c *splitCmdConfig) { c.splitOutput = "" },
		func(c *splitCmdConfig) { c.splitProbability = 0 },
		func(c *splitCmdConfig) { c.splitProbability = 101 },
	} {
		c := base
		mutate(&c)
		assert.Error(t, c.Validate())
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, tableInput, kindOf("train.dat"))
	assert.Equal(t, sqlite3Input, kindOf("train.db"))
	assert.Equal(t, postgreSQLInput, kindOf("postgresql://localhost/id3"))
	assert.Equal(t, postgreSQLInput, kindOf("postgres://localhost/id3"))
	assert.Equal(t, mongoDBInput, kindOf("mongodb://localhost/id3"))
}

func TestOpenMissingSQLite3File(t *testing.T) {
	_, _, err := openDataset(context.Background(), testConfig(), filepath.Join(t.TempDir(), "missing.db"))
	assert.True(t, os.IsNotExist(err))
}

package main

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/multierr"

	id3 "github.com/z-h-i/iterative-dichotomiser-three"
	"github.com/z-h-i/iterative-dichotomiser-three/dataset"
)

/*
trainAndTest grows a tree from the dataset at trainInput, writes
its diagram to w followed by its accuracy on the training dataset and on
the dataset at testInput. On failure it returns the exit code for
the failing step along with the error.
*/
func trainAndTest(ctx context.Context, config *rootCmdConfig, trainInput, testInput string, w io.Writer) (code int, e error) {
	logger := config.Logger()
	var closers closers
	defer func() {
		if err := closers.Close(); err != nil && e == nil {
			code, e = 9, err
		}
	}()

	logger.Infof("Reading training dataset from %s...", trainInput)
	train, closer, err := openDataset(ctx, config, trainInput)
	closers.add(closer)
	if err != nil {
		return 2, fmt.Errorf("reading training dataset: %w", err)
	}
	logger.Infof("Reading test dataset from %s...", testInput)
	test, closer, err := openDataset(ctx, config, testInput)
	closers.add(closer)
	if err != nil {
		return 3, fmt.Errorf("reading test dataset: %w", err)
	}

	trainCount, err := train.Count(ctx)
	if err != nil {
		return 4, fmt.Errorf("counting training samples: %w", err)
	}
	logger.Infof("Growing tree from a dataset with %d samples and %d features to predict %s...", trainCount, len(train.Features()), train.Label().Name())
	tree, err := id3.Grow(ctx, train,
		id3.WithTieBreaker(config.tieBreaker()),
		id3.WithLogger(logger.Desugar()))
	if err != nil {
		return 4, err
	}
	logger.Infof("Done")

	lines, err := tree.Lines(ctx)
	if err != nil {
		return 5, fmt.Errorf("rendering tree: %w", err)
	}
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}

	err = report(ctx, w, "training", tree.Test, train)
	if err != nil {
		return 6, err
	}
	err = report(ctx, w, "test", tree.Test, test)
	if err != nil {
		return 7, err
	}
	return 0, nil
}

func report(ctx context.Context, w io.Writer, name string, test func(context.Context, dataset.Dataset) (float64, error), s dataset.Dataset) error {
	count, err := s.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting %s samples: %w", name, err)
	}
	accuracy, err := test(ctx, s)
	if err != nil {
		return fmt.Errorf("testing tree on %s dataset: %w", name, err)
	}
	// a single blank line separates each accuracy line from what precedes it
	_, err = fmt.Fprintf(w, "\nAccuracy on %s set (%d instances):  %.1f%%\n", name, count, accuracy*100)
	return err
}

// closers releases the connections opened for datasets
type closers []io.Closer

func (cs *closers) add(c io.Closer) {
	if c != nil {
		*cs = append(*cs, c)
	}
}

func (cs closers) Close() error {
	var err error
	for _, c := range cs {
		err = multierr.Append(err, c.Close())
	}
	return err
}

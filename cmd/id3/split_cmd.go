package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/z-h-i/iterative-dichotomiser-three/dataset"
	"github.com/z-h-i/iterative-dichotomiser-three/dataset/table"
	"github.com/z-h-i/iterative-dichotomiser-three/feature"
)

type splitCmdConfig struct {
	*rootCmdConfig
	input            string
	output           string
	splitOutput      string
	splitProbability int
}

func splitCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &splitCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a dataset into two datasets",
		Long:  `Split a dataset into an output dataset and a split dataset, for instance to obtain training and test datasets`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			code := run(config.rootCmdConfig, os.Stderr, func() (int, error) {
				if err := config.Validate(); err != nil {
					return 1, err
				}
				return config.split()
			})
			if code != 0 {
				os.Exit(code)
			}
		},
	}
	cmd.Flags().StringVarP(&(config.input), "input", "i", "", "path to an input table or SQLite3 (.db) file, or a PostgreSQL or MongoDB URL with the dataset to split (required)")
	cmd.Flags().StringVarP(&(config.output), "output", "o", "", "path to a table or SQLite3 (.db) file, or a PostgreSQL or MongoDB URL to dump the output dataset (defaults to STDOUT as a table)")
	cmd.Flags().IntVarP(&(config.splitProbability), "split-probability", "p", 20, "probability as percent integer that a sample of the dataset will be assigned to the split dataset")
	cmd.Flags().StringVarP(&(config.splitOutput), "split-output", "s", "", "path to a table or SQLite3 (.db) file, or a PostgreSQL or MongoDB URL to dump the split dataset (required)")
	return cmd
}

func (scc *splitCmdConfig) Validate() error {
	if scc.input == "" {
		return fmt.Errorf("required input flag was not set")
	}
	if scc.splitOutput == "" {
		return fmt.Errorf("required split-output flag was not set")
	}
	if scc.splitProbability <= 0 || scc.splitProbability > 100 {
		return fmt.Errorf("split-probability flag was set to an invalid value: it must be set to an integer between 1 and 100")
	}
	return nil
}

/*
split reads the input dataset and writes every sample either to the output
or to the split output, at random. It returns the exit code for the failing
step along with the error, if any.
*/
func (scc *splitCmdConfig) split() (code int, e error) {
	ctx := scc.Context()
	logger := scc.Logger()
	var closers closers
	defer func() {
		if err := closers.Close(); err != nil && e == nil {
			code, e = 9, err
		}
	}()

	logger.Infof("Reading input dataset from %s...", scc.input)
	s, closer, err := openDataset(ctx, scc.rootCmdConfig, scc.input)
	closers.add(closer)
	if err != nil {
		return 2, err
	}
	sc, err := dataset.NewSchema(feature.Names(table.Columns(s)))
	if err != nil {
		return 2, err
	}
	out, closer, err := openOutput(ctx, scc.rootCmdConfig, scc.output, sc)
	closers.add(closer)
	if err != nil {
		return 3, err
	}
	splitOut, closer, err := openOutput(ctx, scc.rootCmdConfig, scc.splitOutput, sc)
	closers.add(closer)
	if err != nil {
		return 4, err
	}

	samples, err := s.Samples(ctx)
	if err != nil {
		return 5, err
	}
	logger.Infof("Splitting %d samples...", len(samples))
	randomizer := rand.New(scc.randSource())
	var kept, split []dataset.Sample
	for _, sample := range samples {
		if (100 * randomizer.Float32()) > float32(scc.splitProbability) {
			kept = append(kept, sample)
		} else {
			split = append(split, sample)
		}
	}
	_, err = out.Write(ctx, kept)
	if err != nil {
		return 6, err
	}
	_, err = splitOut.Write(ctx, split)
	if err != nil {
		return 7, err
	}
	logger.Infof("Flushing outputs...")
	err = multierr.Combine(out.Flush(), splitOut.Flush())
	if err != nil {
		return 8, err
	}
	logger.Infof("Input dataset with %d samples was split into datasets with %d and %d samples", out.Count()+splitOut.Count(), out.Count(), splitOut.Count())
	return 0, nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	id3 "github.com/z-h-i/iterative-dichotomiser-three"
	"github.com/z-h-i/iterative-dichotomiser-three/dataset"
	"github.com/z-h-i/iterative-dichotomiser-three/dataset/table"
)

type rootCmdConfig struct {
	verbose         bool
	configFile      string
	tieBreak        string
	seed            int64
	delimiter       string
	whitespace      bool
	table           string
	memoryIntensive bool
	cpuIntensive    bool
	logger          *zap.SugaredLogger
	ctx             context.Context
	cancelFunc      context.CancelFunc
}

func main() {
	if err := cliParser().Execute(); err != nil {
		os.Exit(1)
	}
}

func cliParser() *cobra.Command {
	return newRootCmd(&rootCmdConfig{})
}

func newRootCmd(config *rootCmdConfig) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "id3 TRAIN TEST",
		Short: "id3 grows binary decision trees",
		Long: `Grow a binary decision tree with the ID3 algorithm from the TRAIN dataset,
print it and report its accuracy on both TRAIN and TEST datasets.

Datasets are tables of 0/1 values with a header row naming the columns, the
label being the last one, or SQLite3 (.db) files, PostgreSQL (postgresql://)
or MongoDB (mongodb://) URLs holding them.`,
		Args: cobra.ExactArgs(2),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.Setup(cmd)
		},
		Run: func(cmd *cobra.Command, args []string) {
			code := run(config, os.Stderr, func() (int, error) {
				return trainAndTest(config.Context(), config, args[0], args[1], os.Stdout)
			})
			if code != 0 {
				os.Exit(code)
			}
		},
	}
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&(config.verbose), "verbose", "v", false, "log progress and every decision taken while growing the tree to STDERR")
	flags.StringVarP(&(config.configFile), "config", "c", "", "path to a YAML file with values for the flags; flags set on the command line take precedence")
	flags.StringVar(&(config.tieBreak), "tie-break", "random", "how to choose among features with the same conditional entropy: random or first")
	flags.Int64Var(&(config.seed), "seed", 0, "seed for the random tie-break and split (defaults to 0: seeded with the current time)")
	flags.StringVarP(&(config.delimiter), "delimiter", "d", `\t`, "cell delimiter of table files")
	flags.BoolVarP(&(config.whitespace), "whitespace", "w", false, "take any run of spaces and tabs as cell delimiter of table files")
	flags.StringVarP(&(config.table), "table", "t", "samples", "table or collection holding the samples on SQL and MongoDB datasets")
	flags.BoolVar(&(config.memoryIntensive), "memory-intensive", false, "force the use of memory-intensive subsetting to decrease time at the cost of increasing memory use")
	flags.BoolVar(&(config.cpuIntensive), "cpu-intensive", false, "force the use of cpu-intensive subsetting to decrease memory use at the cost of increasing time")
	rootCmd.AddCommand(versionCmd(), splitCmd(config))
	return rootCmd
}

/*
run calls f and flushes the logs before reporting the error it
returned, if any, on stderr. It returns the exit code for the process.
*/
func run(config *rootCmdConfig, stderr io.Writer, f func() (int, error)) int {
	code, err := f()
	config.Sync()
	if err == nil {
		return 0
	}
	fmt.Fprintln(stderr, err)
	if code == 0 {
		return 1
	}
	return code
}

/*
Setup loads the configuration file, if any, onto the flags
of the command that were not set, validates the result and
builds the logger.
*/
func (rcc *rootCmdConfig) Setup(cmd *cobra.Command) error {
	if rcc.configFile != "" {
		fc, err := loadConfigFile(rcc.configFile)
		if err != nil {
			return err
		}
		err = fc.applyTo(cmd)
		if err != nil {
			return err
		}
	}
	err := rcc.Validate()
	if err != nil {
		return err
	}
	logger, err := newLogger(rcc.verbose)
	if err != nil {
		return err
	}
	rcc.logger = logger.Sugar()
	return nil
}

func (rcc *rootCmdConfig) Validate() error {
	if rcc.cpuIntensive && rcc.memoryIntensive {
		return fmt.Errorf("cannot set both memory-intensive and cpu-intensive flags at the same time")
	}
	if rcc.tieBreak != "random" && rcc.tieBreak != "first" {
		return fmt.Errorf("tie-break flag was set to an invalid value %q: it must be random or first", rcc.tieBreak)
	}
	if _, err := parseDelimiter(rcc.delimiter); err != nil {
		return err
	}
	if rcc.table == "" {
		return fmt.Errorf("table flag cannot be empty")
	}
	return nil
}

func (rcc *rootCmdConfig) Logger() *zap.SugaredLogger {
	if rcc.logger == nil {
		rcc.logger = zap.NewNop().Sugar()
	}
	return rcc.logger
}

func (rcc *rootCmdConfig) Sync() {
	rcc.Logger().Sync()
}

func (rcc *rootCmdConfig) generator() dataset.Generator {
	if rcc.memoryIntensive {
		return dataset.NewMemoryIntensive
	}
	if rcc.cpuIntensive {
		return dataset.NewCPUIntensive
	}
	return dataset.New
}

func (rcc *rootCmdConfig) format() table.Format {
	d, _ := parseDelimiter(rcc.delimiter)
	return table.Format{Delimiter: d, Whitespace: rcc.whitespace}
}

func (rcc *rootCmdConfig) randSource() rand.Source {
	if rcc.seed == 0 {
		return rand.NewSource(time.Now().UnixNano())
	}
	return rand.NewSource(rcc.seed)
}

func (rcc *rootCmdConfig) tieBreaker() id3.TieBreaker {
	if rcc.tieBreak == "first" {
		return id3.FirstTieBreaker()
	}
	return id3.RandomTieBreaker(rcc.randSource())
}

func (rcc *rootCmdConfig) Context() context.Context {
	rcc.setContextAndCancelFunc()
	return rcc.ctx
}

func (rcc *rootCmdConfig) ContextCancelFunc() context.CancelFunc {
	rcc.setContextAndCancelFunc()
	return rcc.cancelFunc
}

func (rcc *rootCmdConfig) setContextAndCancelFunc() {
	if rcc.ctx == nil {
		rcc.ctx, rcc.cancelFunc = context.WithCancel(context.Background())
	}
}

func parseDelimiter(d string) (rune, error) {
	switch d {
	case `\t`, "tab":
		return '\t', nil
	}
	r := []rune(d)
	if len(r) != 1 || r[0] == '\n' || r[0] == '\r' || r[0] == '"' {
		return 0, fmt.Errorf("delimiter flag was set to an invalid value %q: it must be a single character other than a quote or line break", d)
	}
	return r[0], nil
}

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	yaml "gopkg.in/yaml.v2"
)

/*
fileConfig holds the values for flags read from a YAML
configuration file. Unset keys leave their flag alone.
*/
type fileConfig struct {
	Verbose    *bool   `yaml:"verbose"`
	TieBreak   *string `yaml:"tie-break"`
	Seed       *int64  `yaml:"seed"`
	Delimiter  *string `yaml:"delimiter"`
	Whitespace *bool   `yaml:"whitespace"`
	Table      *string `yaml:"table"`
	// Dataset is either memory-intensive or cpu-intensive
	Dataset *string `yaml:"dataset"`
}

func loadConfigFile(path string) (*fileConfig, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	fc := &fileConfig{}
	err = yaml.UnmarshalStrict(content, fc)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return fc, nil
}

/*
applyTo sets the flags of the command that were not set on the
command line to the values in the configuration file.
*/
func (fc *fileConfig) applyTo(cmd *cobra.Command) error {
	values := make(map[string]string)
	if fc.Verbose != nil {
		values["verbose"] = strconv.FormatBool(*fc.Verbose)
	}
	if fc.TieBreak != nil {
		values["tie-break"] = *fc.TieBreak
	}
	if fc.Seed != nil {
		values["seed"] = strconv.FormatInt(*fc.Seed, 10)
	}
	if fc.Delimiter != nil {
		values["delimiter"] = *fc.Delimiter
	}
	if fc.Whitespace != nil {
		values["whitespace"] = strconv.FormatBool(*fc.Whitespace)
	}
	if fc.Table != nil {
		values["table"] = *fc.Table
	}
	if fc.Dataset != nil {
		switch *fc.Dataset {
		case "memory-intensive", "cpu-intensive":
			if !cmd.Flags().Changed("memory-intensive") && !cmd.Flags().Changed("cpu-intensive") {
				values[*fc.Dataset] = "true"
			}
		default:
			return fmt.Errorf("config file: dataset must be memory-intensive or cpu-intensive, not %q", *fc.Dataset)
		}
	}
	for name, value := range values {
		if cmd.Flags().Changed(name) {
			continue
		}
		err := cmd.Flags().Set(name, value)
		if err != nil {
			return fmt.Errorf("config file: %s: %w", name, err)
		}
	}
	return nil
}

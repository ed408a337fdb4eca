package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	mgo "gopkg.in/mgo.v2"

	"github.com/z-h-i/iterative-dichotomiser-three/dataset"
	"github.com/z-h-i/iterative-dichotomiser-three/dataset/mongodataset"
	"github.com/z-h-i/iterative-dichotomiser-three/dataset/sqldataset"
	"github.com/z-h-i/iterative-dichotomiser-three/dataset/sqldataset/pgadapter"
	"github.com/z-h-i/iterative-dichotomiser-three/dataset/sqldataset/sqlite3adapter"
	"github.com/z-h-i/iterative-dichotomiser-three/dataset/table"
	"github.com/z-h-i/iterative-dichotomiser-three/feature"
)

type inputKind int

const (
	tableInput inputKind = iota
	sqlite3Input
	postgreSQLInput
	mongoDBInput
)

func kindOf(input string) inputKind {
	switch {
	case strings.HasPrefix(input, "postgresql://"), strings.HasPrefix(input, "postgres://"):
		return postgreSQLInput
	case strings.HasPrefix(input, "mongodb://"):
		return mongoDBInput
	case strings.HasSuffix(input, ".db"):
		return sqlite3Input
	}
	return tableInput
}

type closerFunc func() error

func (cf closerFunc) Close() error {
	return cf()
}

func sessionCloser(session *mgo.Session) io.Closer {
	return closerFunc(func() error {
		session.Close()
		return nil
	})
}

/*
openDataset takes a context, the configuration and an input, and returns
the dataset it holds along with a closer for the connection opened to
read it, if any.
*/
func openDataset(ctx context.Context, config *rootCmdConfig, input string) (dataset.Dataset, io.Closer, error) {
	logger := config.Logger()
	switch kindOf(input) {
	case postgreSQLInput:
		logger.Infof("Opening dataset over PostgreSQL adapter for table %s...", config.table)
		a, err := pgadapter.New(input)
		if err != nil {
			return nil, nil, err
		}
		s, err := sqldataset.Open(ctx, a, config.table)
		return s, a, err
	case sqlite3Input:
		if _, err := os.Stat(input); err != nil {
			return nil, nil, err
		}
		logger.Infof("Opening dataset over SQLite3 adapter for file %s and table %s...", input, config.table)
		a, err := sqlite3adapter.New(input)
		if err != nil {
			return nil, nil, err
		}
		s, err := sqldataset.Open(ctx, a, config.table)
		return s, a, err
	case mongoDBInput:
		logger.Infof("Opening dataset over MongoDB collection %s...", config.table)
		session, err := mgo.Dial(input)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to MongoDB: %w", err)
		}
		s, err := mongodataset.Open(ctx, session, config.table)
		return s, sessionCloser(session), err
	}
	s, err := table.ReadDatasetFromFilePath(input, config.format(), config.generator())
	return s, nil, err
}

/*
output is a destination for samples
*/
type output interface {
	Write(context.Context, []dataset.Sample) (int, error)
	Count() int
	Flush() error
}

// datasetOutput counts the samples written to a
// dataset, which needs no flushing.
type datasetOutput struct {
	w interface {
		Write(context.Context, []dataset.Sample) (int, error)
	}
	count int
}

func (do *datasetOutput) Write(ctx context.Context, samples []dataset.Sample) (int, error) {
	n, err := do.w.Write(ctx, samples)
	do.count += n
	return n, err
}

func (do *datasetOutput) Count() int {
	return do.count
}

func (do *datasetOutput) Flush() error {
	return nil
}

/*
openOutput takes a context, the configuration, a destination and a schema
and returns an output to write samples with that schema to the
destination along with a closer for it. An empty destination means STDOUT.
*/
func openOutput(ctx context.Context, config *rootCmdConfig, destination string, sc *dataset.Schema) (output, io.Closer, error) {
	logger := config.Logger()
	switch kindOf(destination) {
	case postgreSQLInput:
		logger.Infof("Creating table %s over PostgreSQL adapter...", config.table)
		a, err := pgadapter.New(destination)
		if err != nil {
			return nil, nil, err
		}
		s, err := sqldataset.Create(ctx, a, config.table, sc)
		return &datasetOutput{w: s}, a, err
	case sqlite3Input:
		logger.Infof("Creating table %s over SQLite3 adapter for file %s...", config.table, destination)
		a, err := sqlite3adapter.New(destination)
		if err != nil {
			return nil, nil, err
		}
		s, err := sqldataset.Create(ctx, a, config.table, sc)
		return &datasetOutput{w: s}, a, err
	case mongoDBInput:
		logger.Infof("Preparing MongoDB collection %s...", config.table)
		session, err := mgo.Dial(destination)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to MongoDB: %w", err)
		}
		s, err := mongodataset.Create(ctx, session, config.table, sc)
		return &datasetOutput{w: s}, sessionCloser(session), err
	}
	var f *os.File
	var closer io.Closer
	if destination == "" {
		logger.Infof("Using STDOUT to dump output...")
		f = os.Stdout
	} else {
		logger.Infof("Creating %s to dump output...", destination)
		var err error
		f, err = os.Create(destination)
		if err != nil {
			return nil, nil, err
		}
		closer = f
	}
	w, err := table.NewWriter(f, config.format(), schemaColumns(sc))
	return w, closer, err
}

func schemaColumns(sc *dataset.Schema) []feature.Feature {
	columns := make([]feature.Feature, 0, len(sc.Features())+1)
	columns = append(columns, sc.Features()...)
	return append(columns, sc.Label())
}

/*
Package table reads and writes datasets as delimited text tables: a header
row with the column names, the label last, followed by one row of 0/1
values per sample.
*/
package table

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/z-h-i/iterative-dichotomiser-three/dataset"
	"github.com/z-h-i/iterative-dichotomiser-three/feature"
)

// DefaultDelimiter separates the cells of a row unless told otherwise
const DefaultDelimiter = '\t'

/*
Format describes how the cells of a table are separated. With Whitespace
set, any run of spaces and tabs separates cells and Delimiter is ignored.
A zero Delimiter means DefaultDelimiter.
*/
type Format struct {
	Delimiter  rune
	Whitespace bool
}

func (tf Format) delimiter() rune {
	if tf.Delimiter == 0 {
		return DefaultDelimiter
	}
	return tf.Delimiter
}

/*
Writer is an interface for a table to which samples
can be written to.
*/
type Writer interface {
	// Write will attempt to write the given number
	// of samples and will return the actually written
	// number of samples and an error (if not all samples
	// could be written)
	Write(context.Context, []dataset.Sample) (int, error)
	// Count returns the total number of samples written
	// to the writer
	Count() int
	// Flush ensures any pending written operations finish
	// before returning. It returns an error if that cannot
	// be ensured.
	Flush() error
}

type tableWriter struct {
	count   int
	columns []feature.Feature
	w       *csv.Writer
}

// rowReader yields the cells of every non-blank row
// along with the line it starts on.
type rowReader interface {
	Read() ([]string, int, error)
}

type csvRowReader struct {
	r *csv.Reader
}

func (cr *csvRowReader) Read() ([]string, int, error) {
	row, err := cr.r.Read()
	if err != nil {
		return nil, 0, err
	}
	line, _ := cr.r.FieldPos(0)
	return row, line, nil
}

type whitespaceRowReader struct {
	s    *bufio.Scanner
	line int
}

func (wr *whitespaceRowReader) Read() ([]string, int, error) {
	for wr.s.Scan() {
		wr.line++
		fields := strings.Fields(wr.s.Text())
		if len(fields) > 0 {
			return fields, wr.line, nil
		}
	}
	if err := wr.s.Err(); err != nil {
		return nil, 0, err
	}
	return nil, 0, io.EOF
}

func newRowReader(reader io.Reader, tf Format) rowReader {
	if tf.Whitespace {
		return &whitespaceRowReader{s: bufio.NewScanner(reader)}
	}
	r := csv.NewReader(reader)
	r.Comma = tf.delimiter()
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return &csvRowReader{r}
}

/*
ReadDataset takes an io.Reader for a table, its Format and a
dataset.Generator and returns the dataset built with the Generator from
the schema in the header and the samples parsed from the rows, or an error.
*/
func ReadDataset(reader io.Reader, tf Format, gen dataset.Generator) (dataset.Dataset, error) {
	samples := []dataset.Sample{}
	sc, err := ReadBySample(reader, tf, func(_ int, s dataset.Sample) (bool, error) {
		samples = append(samples, s)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return gen(sc, samples), nil
}

/*
ReadBySample takes an io.Reader for a table, its Format and a lambda
function on an integer and a dataset.Sample that returns a boolean value.
It parses the header into a schema, then parses the samples from the reader
and for each it calls the lambda function with its index and the sample as
parameters. If the lambda function returns true, it will continue processing
the next sample, otherwise it will stop. It returns the schema, or an error if
something goes wrong when reading the table or parsing a row.

Rows must have as many cells as the header, each being 0 or 1. Blank lines
are skipped. Errors name the line they were found on.
*/
func ReadBySample(reader io.Reader, tf Format, lambda func(int, dataset.Sample) (bool, error)) (*dataset.Schema, error) {
	rr := newRowReader(reader, tf)
	header, line, err := rr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("reading header: table is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	sc, err := dataset.NewSchema(header)
	if err != nil {
		return nil, fmt.Errorf("parsing header on line %d: %w", line, err)
	}
	for i := 0; ; i++ {
		row, line, err := rr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading body: %w", err)
		}
		sample, err := parseSample(row, header)
		if err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", line, err)
		}
		ok, err := lambda(i, sample)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
	}
	return sc, nil
}

/*
ReadDatasetFromFilePath takes a filepath string, a Format and a Generator,
opens the file to which the filepath points to and uses ReadDataset to return
a dataset or an error read from it. If the filepath is "" os.Stdin is read
instead.
*/
func ReadDatasetFromFilePath(filepath string, tf Format, gen dataset.Generator) (dataset.Dataset, error) {
	var f *os.File
	var err error
	if filepath == "" {
		f = os.Stdin
	} else {
		f, err = os.Open(filepath)
		if err != nil {
			return nil, fmt.Errorf("opening table: %w", err)
		}
		defer f.Close()
	}
	s, err := ReadDataset(f, tf, gen)
	if err != nil {
		return nil, fmt.Errorf("reading table %s: %w", filepath, err)
	}
	return s, nil
}

/*
ReadBySampleFromFilePath takes a filepath string, a Format and a lambda
function and calls ReadBySample on the file the filepath points to (or
os.Stdin if the filepath is "").
*/
func ReadBySampleFromFilePath(filepath string, tf Format, lambda func(int, dataset.Sample) (bool, error)) (*dataset.Schema, error) {
	var f *os.File
	var err error
	if filepath == "" {
		f = os.Stdin
	} else {
		f, err = os.Open(filepath)
		if err != nil {
			return nil, fmt.Errorf("opening table: %w", err)
		}
		defer f.Close()
	}
	sc, err := ReadBySample(f, tf, lambda)
	if err != nil {
		return nil, fmt.Errorf("reading table %s: %w", filepath, err)
	}
	return sc, nil
}

/*
Columns takes a dataset and returns its columns as written to a table:
its attribute features followed by its label.
*/
func Columns(s dataset.Dataset) []feature.Feature {
	features := s.Features()
	columns := make([]feature.Feature, 0, len(features)+1)
	columns = append(columns, features...)
	return append(columns, s.Label())
}

/*
NewWriter takes an io.Writer, a Format and a slice of feature.Features
for the columns, and returns a Writer that will write the header and
then any samples on the io.Writer. Whitespace formats are written with a
single space between cells.
*/
func NewWriter(writer io.Writer, tf Format, columns []feature.Feature) (Writer, error) {
	w := csv.NewWriter(writer)
	w.Comma = tf.delimiter()
	if tf.Whitespace {
		w.Comma = ' '
	}
	err := w.Write(feature.Names(columns))
	if err != nil {
		return nil, fmt.Errorf("writing table header: %w", err)
	}
	return &tableWriter{columns: columns, w: w}, nil
}

/*
WriteDataset takes a context, a writer, a Format and a dataset and dumps
the dataset to the writer as a table. It returns an error if something
went wrong when writing to the writer.
*/
func WriteDataset(ctx context.Context, writer io.Writer, tf Format, s dataset.Dataset) error {
	tw, err := NewWriter(writer, tf, Columns(s))
	if err != nil {
		return err
	}
	samples, err := s.Samples(ctx)
	if err != nil {
		return err
	}
	_, err = tw.Write(ctx, samples)
	if err != nil {
		return err
	}
	return tw.Flush()
}

func parseSample(row []string, header []string) (dataset.Sample, error) {
	if len(row) != len(header) {
		return nil, fmt.Errorf("expected %d cells, found %d", len(header), len(row))
	}
	values := make(map[string]feature.Value, len(row))
	for i, cell := range row {
		v, err := feature.ParseValue(strings.TrimSpace(cell))
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", header[i], err)
		}
		values[header[i]] = v
	}
	return dataset.NewSample(values), nil
}

func (tw *tableWriter) Count() int {
	return tw.count
}

func (tw *tableWriter) Write(ctx context.Context, samples []dataset.Sample) (int, error) {
	for n, sample := range samples {
		err := tw.writeSample(ctx, sample)
		if err != nil {
			return n, err
		}
	}
	return len(samples), nil
}

func (tw *tableWriter) writeSample(ctx context.Context, sample dataset.Sample) error {
	record := make([]string, len(tw.columns))
	for j, f := range tw.columns {
		v, err := sample.ValueFor(ctx, f)
		if err != nil {
			return err
		}
		record[j] = v.String()
	}
	err := tw.w.Write(record)
	if err != nil {
		return fmt.Errorf("writing table row for sample %d: %w", tw.count+1, err)
	}
	tw.count++
	return nil
}

func (tw *tableWriter) Flush() error {
	tw.w.Flush()
	return tw.w.Error()
}

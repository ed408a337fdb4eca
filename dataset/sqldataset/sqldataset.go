package sqldataset

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/z-h-i/iterative-dichotomiser-three/dataset"
	"github.com/z-h-i/iterative-dichotomiser-three/feature"
)

/*
Dataset is a dataset.Dataset to which samples can be added

Its Write method takes a slice of samples and inserts them
on the table, returning the number of samples inserted and
an error if not all of them could be.
*/
type Dataset interface {
	dataset.Dataset
	Write(context.Context, []dataset.Sample) (int, error)
}

type sqlDataset struct {
	*dataset.Schema
	db       Adapter
	table    string
	columns  map[string]string
	criteria []feature.Criterion
	lock     sync.Mutex
	count    *int
	entropy  *float64
}

/*
Open takes a context, an Adapter and the name of a table already
existing on the adapter's database and returns a Dataset with its
samples. The columns of the table, in order, make up the schema of the
dataset: the last one is the label.
*/
func Open(ctx context.Context, a Adapter, table string) (Dataset, error) {
	columns, err := a.TableColumns(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("inspecting table %s: %w", table, err)
	}
	sc, err := dataset.NewSchema(columns)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", table, err)
	}
	return newSQLDataset(a, table, sc)
}

/*
Create takes a context, an Adapter, the name of a table and a schema,
ensures the table exists with a column for every column of the schema,
and returns a Dataset on it.
*/
func Create(ctx context.Context, a Adapter, table string, sc *dataset.Schema) (Dataset, error) {
	sds, err := newSQLDataset(a, table, sc)
	if err != nil {
		return nil, err
	}
	quotedTable, err := a.Identifier(table)
	if err != nil {
		return nil, err
	}
	definitions := make([]string, 0, len(sds.columns))
	for _, name := range sc.Columns() {
		column := sds.columns[name]
		definitions = append(definitions, fmt.Sprintf("%s SMALLINT NOT NULL CHECK (%s IN (0, 1))", column, column))
	}
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quotedTable, strings.Join(definitions, ", "))
	_, err = a.DB().ExecContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("creating table %s: %w", table, err)
	}
	return sds, nil
}

func newSQLDataset(a Adapter, table string, sc *dataset.Schema) (*sqlDataset, error) {
	columns := make(map[string]string)
	for _, name := range sc.Columns() {
		column, err := a.Identifier(name)
		if err != nil {
			return nil, fmt.Errorf("invalid feature %s: %w", name, err)
		}
		columns[name] = column
	}
	return &sqlDataset{Schema: sc, db: a, table: table, columns: columns}, nil
}

func (sds *sqlDataset) Count(ctx context.Context) (int, error) {
	sds.lock.Lock()
	defer sds.lock.Unlock()
	if sds.count != nil {
		return *sds.count, nil
	}
	from, args, err := sds.fromWhere()
	if err != nil {
		return 0, err
	}
	var count int
	err = sds.db.DB().QueryRowContext(ctx, "SELECT COUNT(*)"+from, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting samples: %w", err)
	}
	sds.count = &count
	return count, nil
}

func (sds *sqlDataset) Entropy(ctx context.Context) (float64, error) {
	sds.lock.Lock()
	defer sds.lock.Unlock()
	if sds.entropy != nil {
		return *sds.entropy, nil
	}
	counts, err := sds.CountFeatureValues(ctx, sds.Label())
	if err != nil {
		return 0, err
	}
	total := counts[feature.False] + counts[feature.True]
	if total == 0 {
		return 0, dataset.ErrEmptyDataset
	}
	result := dataset.BinaryEntropy(float64(counts[feature.True]) / float64(total))
	sds.entropy = &result
	return result, nil
}

func (sds *sqlDataset) CountFeatureValues(ctx context.Context, f feature.Feature) (map[feature.Value]int, error) {
	column, ok := sds.columns[f.Name()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dataset.ErrUnknownFeature, f.Name())
	}
	from, args, err := sds.fromWhere()
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s, COUNT(*)%s GROUP BY %s", column, from, column)
	rows, err := sds.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("counting values of %s: %w", f.Name(), err)
	}
	defer rows.Close()
	result := make(map[feature.Value]int)
	for rows.Next() {
		var value, count int
		err = rows.Scan(&value, &count)
		if err != nil {
			return nil, err
		}
		result[feature.Value(value)] = count
	}
	return result, rows.Err()
}

func (sds *sqlDataset) SubsetWith(ctx context.Context, fc feature.Criterion) (dataset.Dataset, error) {
	if _, ok := sds.columns[fc.Feature().Name()]; !ok {
		return nil, fmt.Errorf("%w: %s", dataset.ErrUnknownFeature, fc.Feature().Name())
	}
	criteria := make([]feature.Criterion, 0, len(sds.criteria)+1)
	criteria = append(criteria, sds.criteria...)
	criteria = append(criteria, fc)
	return &sqlDataset{
		Schema:   sds.Schema,
		db:       sds.db,
		table:    sds.table,
		columns:  sds.columns,
		criteria: criteria,
	}, nil
}

func (sds *sqlDataset) Drop(ctx context.Context, f feature.Feature) (dataset.Dataset, error) {
	sc, err := sds.Without(f)
	if err != nil {
		return nil, err
	}
	sds.lock.Lock()
	defer sds.lock.Unlock()
	return &sqlDataset{
		Schema:   sc,
		db:       sds.db,
		table:    sds.table,
		columns:  sds.columns,
		criteria: sds.criteria,
		count:    sds.count,
		entropy:  sds.entropy,
	}, nil
}

func (sds *sqlDataset) Samples(ctx context.Context) ([]dataset.Sample, error) {
	names := sds.Columns()
	selected := make([]string, len(names))
	for i, name := range names {
		selected[i] = sds.columns[name]
	}
	from, args, err := sds.fromWhere()
	if err != nil {
		return nil, err
	}
	rows, err := sds.db.DB().QueryContext(ctx, "SELECT "+strings.Join(selected, ", ")+from, args...)
	if err != nil {
		return nil, fmt.Errorf("listing samples: %w", err)
	}
	defer rows.Close()
	var samples []dataset.Sample
	raw := make([]int, len(names))
	dest := make([]interface{}, len(names))
	for i := range raw {
		dest[i] = &raw[i]
	}
	for rows.Next() {
		err = rows.Scan(dest...)
		if err != nil {
			return nil, err
		}
		values := make(map[string]feature.Value, len(names))
		for i, name := range names {
			values[name] = feature.Value(raw[i])
		}
		samples = append(samples, dataset.NewSample(values))
	}
	return samples, rows.Err()
}

func (sds *sqlDataset) Criteria(ctx context.Context) ([]feature.Criterion, error) {
	return sds.criteria, nil
}

func (sds *sqlDataset) Write(ctx context.Context, samples []dataset.Sample) (n int, e error) {
	if len(samples) == 0 {
		return 0, nil
	}
	features := append(append([]feature.Feature{}, sds.Features()...), sds.Label())
	columns := make([]string, len(features))
	placeholders := make([]string, len(features))
	for i, f := range features {
		columns[i] = sds.columns[f.Name()]
		placeholders[i] = sds.db.Placeholder(i + 1)
	}
	table, err := sds.db.Identifier(sds.table)
	if err != nil {
		return 0, err
	}
	tx, err := sds.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if e != nil {
			tx.Rollback()
			n = 0
		}
	}()
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", ")))
	if err != nil {
		return 0, fmt.Errorf("preparing insert statement: %w", err)
	}
	defer stmt.Close()
	args := make([]interface{}, len(features))
	for i, s := range samples {
		for j, f := range features {
			v, err := s.ValueFor(ctx, f)
			if err != nil {
				return 0, fmt.Errorf("sample %d: %w", i+1, err)
			}
			args[j] = int(v)
		}
		_, err = stmt.ExecContext(ctx, args...)
		if err != nil {
			return 0, fmt.Errorf("inserting sample %d: %w", i+1, err)
		}
	}
	err = tx.Commit()
	if err != nil {
		return 0, err
	}
	sds.lock.Lock()
	sds.count = nil
	sds.entropy = nil
	sds.lock.Unlock()
	return len(samples), nil
}

func (sds *sqlDataset) String() string {
	return fmt.Sprintf("{SQLDataset %s %v}", sds.table, sds.criteria)
}

// fromWhere returns the FROM clause on the table with the WHERE
// clause for the criteria of the dataset, and the arguments for it.
func (sds *sqlDataset) fromWhere() (string, []interface{}, error) {
	table, err := sds.db.Identifier(sds.table)
	if err != nil {
		return "", nil, err
	}
	if len(sds.criteria) == 0 {
		return " FROM " + table, nil, nil
	}
	conditions := make([]string, 0, len(sds.criteria))
	args := make([]interface{}, 0, len(sds.criteria))
	for i, fc := range sds.criteria {
		conditions = append(conditions, fmt.Sprintf("%s = %s", sds.columns[fc.Feature().Name()], sds.db.Placeholder(i+1)))
		args = append(args, int(fc.Value()))
	}
	return " FROM " + table + " WHERE " + strings.Join(conditions, " AND "), args, nil
}

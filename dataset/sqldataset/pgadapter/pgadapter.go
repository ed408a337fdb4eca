/*
Package pgadapter provides an implementation of the
Adapter interface in the sqldataset package that works
over a PostgreSQL database.
*/
package pgadapter

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/z-h-i/iterative-dichotomiser-three/dataset/sqldataset"

	// Import of PostgreSQL driver
	_ "github.com/lib/pq"
)

const tableColumnsQuery = `SELECT column_name FROM information_schema.columns
	WHERE table_schema = current_schema() AND table_name = $1
	ORDER BY ordinal_position`

type adapter struct {
	db *sql.DB
}

/*
New takes a PostgreSQL database connection URL and returns
an Adapter that works on the database or an error if it fails to connect to it.
*/
func New(url string) (sqldataset.Adapter, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, err
	}
	return &adapter{db}, nil
}

func (a *adapter) DB() *sql.DB {
	return a.db
}

func (a *adapter) Placeholder(i int) string {
	return fmt.Sprintf("$%d", i)
}

func (a *adapter) Identifier(name string) (string, error) {
	return sqldataset.QuoteIdentifier(name)
}

func (a *adapter) TableColumns(ctx context.Context, table string) ([]string, error) {
	rows, err := a.db.QueryContext(ctx, tableColumnsQuery, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var columns []string
	for rows.Next() {
		var name string
		err = rows.Scan(&name)
		if err != nil {
			return nil, err
		}
		columns = append(columns, name)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}
	return columns, nil
}

func (a *adapter) Close() error {
	return a.db.Close()
}

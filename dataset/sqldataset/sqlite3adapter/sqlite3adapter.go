/*
Package sqlite3adapter provides an implementation of the
Adapter interface in the sqldataset package that works
over a SQLite3 database.
*/
package sqlite3adapter

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/z-h-i/iterative-dichotomiser-three/dataset/sqldataset"

	// Import of SQLite3 driver
	_ "github.com/mattn/go-sqlite3"
)

type adapter struct {
	db *sql.DB
}

/*
New takes a path to a SQLite3 database file and returns an Adapter
that works on the database or an error if it fails to open it.
The file is created if it does not exist.
*/
func New(path string) (sqldataset.Adapter, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// SQLite3 allows a single writer
	db.SetMaxOpenConns(1)
	return &adapter{db}, nil
}

func (a *adapter) DB() *sql.DB {
	return a.db
}

func (a *adapter) Placeholder(int) string {
	return "?"
}

func (a *adapter) Identifier(name string) (string, error) {
	return sqldataset.QuoteIdentifier(name)
}

func (a *adapter) TableColumns(ctx context.Context, table string) ([]string, error) {
	rows, err := a.db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?) ORDER BY cid`, table)
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

package sqldataset

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

/*
Adapter is an interface for the database specifics a Dataset
needs to work on a SQL database.
*/
type Adapter interface {
	// DB returns the handle to run queries on the database
	DB() *sql.DB
	// Placeholder takes the 1-based position of an argument
	// and returns the marker for it on a query
	Placeholder(int) string
	// Identifier takes the name of a table or column and
	// returns it quoted for use in a query or an error if
	// the name cannot be used
	Identifier(string) (string, error)
	// TableColumns takes a table name and returns the names
	// of its columns in order, or an error if the table
	// does not exist or cannot be inspected
	TableColumns(context.Context, string) ([]string, error)
	// Close releases the database handle
	Close() error
}

/*
QuoteIdentifier takes a table or column name and returns it between
double quotes, as both SQLite3 and PostgreSQL expect identifiers. It
returns an error for empty names and names containing double quotes.
*/
func QuoteIdentifier(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty identifier")
	}
	if strings.ContainsAny(name, `"`) {
		return "", fmt.Errorf(`name '%s' contains invalid character '"'`, name)
	}
	return `"` + name + `"`, nil
}

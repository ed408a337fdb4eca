/*
Package sqldataset provides an implementation of dataset.Dataset
that uses a table on a SQL database as backend.

Every column of the table holds the 0/1 values of a feature, the label
being the last one. Subsets are never materialized: their criteria are
added to the WHERE clause of the queries run to count, read and
compute the entropy of their samples.

Database specifics are handled by an Adapter. The sqlite3adapter and
pgadapter packages provide them for SQLite3 and PostgreSQL.
*/
package sqldataset

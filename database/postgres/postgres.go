/*
Package postgres loads the converted tables into PostgreSQL.

Each table is loaded in its own transaction with COPY FROM STDIN. Existing
tables are truncated, missing tables are created.
*/
package postgres

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	pq "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/omniscale/osmcsv/element"
	"github.com/omniscale/osmcsv/log"
	"github.com/omniscale/osmcsv/writer"
)

type SQLError struct {
	query         string
	originalError error
}

func (e *SQLError) Error() string {
	return fmt.Sprintf("SQL Error: %s in query %s", e.originalError.Error(), e.query)
}

func (e *SQLError) Cause() error { return e.originalError }

type SQLInsertError struct {
	SQLError
	data interface{}
}

func (e *SQLInsertError) Error() string {
	return fmt.Sprintf("SQL Error: %s in query %s (%+v)", e.originalError.Error(), e.query, e.data)
}

// DB implements writer.Opener for a PostgreSQL database.
type DB struct {
	Db     *sql.DB
	Schema string
}

// Open connects to the database. connection is either a postgres:// URL
// or a list of key=value parameters.
func Open(connection, schema string) (*DB, error) {
	params, err := ConnectionParams(connection)
	if err != nil {
		return nil, err
	}
	if schema == "" {
		schema = "public"
	}

	db, err := sql.Open("postgres", params)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	// check that the connection actually works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "connecting to database")
	}
	return &DB{Db: db, Schema: schema}, nil
}

func (db *DB) Close() error {
	return db.Db.Close()
}

// ConnectionParams converts URLs into key=value parameters and disables
// SSL for connections to localhost, unless configured otherwise.
func ConnectionParams(connection string) (string, error) {
	params := connection
	if strings.HasPrefix(connection, "postgres://") || strings.HasPrefix(connection, "postgresql://") {
		var err error
		params, err = pq.ParseURL(connection)
		if err != nil {
			return "", errors.Wrap(err, "parsing connection URL")
		}
	}
	return disableDefaultSslOnLocalhost(params), nil
}

func disableDefaultSslOnLocalhost(params string) string {
	parts := strings.Fields(params)
	isLocalHost := false
	for _, p := range parts {
		if strings.HasPrefix(p, "sslmode=") {
			return params
		}
		if p == "host=localhost" || p == "host=127.0.0.1" || strings.HasPrefix(p, "host=/") {
			isLocalHost = true
		}
	}

	if !isLocalHost {
		return params
	}
	if _, ok := os.LookupEnv("PGSSLMODE"); ok {
		return params
	}
	return params + " sslmode=disable"
}

// Open creates the table if it does not exist and starts the COPY of all
// rows in a new transaction. Existing rows are removed.
func (db *DB) Open(table element.Table) (writer.TableWriter, error) {
	spec := NewTableSpec(db.Schema, table)
	if err := db.prepareTable(spec); err != nil {
		return nil, err
	}
	tt := &tableTx{spec: spec}
	if err := tt.Begin(db.Db); err != nil {
		return nil, err
	}
	return tt, nil
}

func (db *DB) prepareTable(spec *TableSpec) error {
	tx, err := db.Db.Begin()
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	defer tx.Rollback()

	for _, query := range []string{spec.CreateSchemaSQL(), spec.CreateTableSQL()} {
		if _, err := tx.Exec(query); err != nil {
			return &SQLError{query, err}
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrapf(err, "creating table %s", spec.FullName())
	}
	log.Printf("[info] Prepared table %s", spec.FullName())
	return nil
}

package postgres

import (
	"database/sql"

	pq "github.com/lib/pq"
	"github.com/pkg/errors"
)

// tableTx copies all rows of one table within a single transaction.
type tableTx struct {
	spec *TableSpec
	tx   *sql.Tx
	stmt *sql.Stmt
	row  []interface{}
}

func (tt *tableTx) Begin(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	tt.tx = tx

	truncate := tt.spec.TruncateSQL()
	if _, err := tx.Exec(truncate); err != nil {
		tx.Rollback()
		return &SQLError{truncate, err}
	}

	stmt, err := tx.Prepare(pq.CopyInSchema(tt.spec.Schema, tt.spec.Table.Name, tt.spec.Table.ColumnNames()...))
	if err != nil {
		tx.Rollback()
		return &SQLError{tt.spec.CopySQL(), err}
	}
	tt.stmt = stmt
	tt.row = make([]interface{}, len(tt.spec.Table.Columns))
	return nil
}

func (tt *tableTx) Write(row []string) error {
	for i, v := range row {
		tt.row[i] = v
	}
	if _, err := tt.stmt.Exec(tt.row...); err != nil {
		return &SQLInsertError{SQLError{tt.spec.CopySQL(), err}, row}
	}
	return nil
}

// Close flushes the COPY and commits the transaction.
func (tt *tableTx) Close() error {
	if _, err := tt.stmt.Exec(); err != nil {
		tt.tx.Rollback()
		return &SQLError{tt.spec.CopySQL(), err}
	}
	if err := tt.stmt.Close(); err != nil {
		tt.tx.Rollback()
		return &SQLError{tt.spec.CopySQL(), err}
	}
	if err := tt.tx.Commit(); err != nil {
		return errors.Wrapf(err, "committing %s", tt.spec.FullName())
	}
	return nil
}

// Abort rolls back the transaction. The table keeps its previous rows.
func (tt *tableTx) Abort() error {
	tt.stmt.Close()
	if err := tt.tx.Rollback(); err != nil {
		return errors.Wrapf(err, "rolling back %s", tt.spec.FullName())
	}
	return nil
}

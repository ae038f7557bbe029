package postgres

import (
	"fmt"
	"strings"

	pq "github.com/lib/pq"

	"github.com/omniscale/osmcsv/element"
)

type TableSpec struct {
	Schema string
	Table  element.Table
}

func NewTableSpec(schema string, table element.Table) *TableSpec {
	return &TableSpec{Schema: schema, Table: table}
}

// FullName returns the quoted, schema qualified table name.
func (spec *TableSpec) FullName() string {
	return pq.QuoteIdentifier(spec.Schema) + "." + pq.QuoteIdentifier(spec.Table.Name)
}

func (spec *TableSpec) CreateSchemaSQL() string {
	return fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, pq.QuoteIdentifier(spec.Schema))
}

func (spec *TableSpec) CreateTableSQL() string {
	cols := make([]string, 0, len(spec.Table.Columns))
	for _, col := range spec.Table.Columns {
		colSQL := pq.QuoteIdentifier(col.Name) + " " + string(col.Type)
		if col.Name == spec.Table.PrimaryKey {
			colSQL += " PRIMARY KEY"
		} else {
			colSQL += " NOT NULL"
		}
		cols = append(cols, colSQL)
	}
	columnSQL := strings.Join(cols, ",\n    ")
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n    %s\n)",
		spec.FullName(),
		columnSQL,
	)
}

func (spec *TableSpec) TruncateSQL() string {
	return fmt.Sprintf(`TRUNCATE TABLE %s`, spec.FullName())
}

// CopySQL returns the statement used by pq.CopyInSchema, for error
// messages.
func (spec *TableSpec) CopySQL() string {
	cols := make([]string, len(spec.Table.Columns))
	for i, col := range spec.Table.Columns {
		cols[i] = pq.QuoteIdentifier(col.Name)
	}
	return fmt.Sprintf(`COPY %s (%s) FROM STDIN`, spec.FullName(), strings.Join(cols, ", "))
}

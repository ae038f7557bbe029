/*
Package writer defines the destinations of the converted rows.
*/
package writer

import (
	"github.com/omniscale/osmcsv/element"
)

// TableWriter receives all rows of one output table. Either Close or
// Abort is called once after the last row.
type TableWriter interface {
	Write(row []string) error
	// Close finalizes the table.
	Close() error
	// Abort releases the table after a failed conversion.
	Abort() error
}

// Opener opens the TableWriter for a table.
type Opener interface {
	Open(table element.Table) (TableWriter, error)
}

package element

type ColumnType string

const (
	BigInt      ColumnType = "BIGINT"
	Integer     ColumnType = "INTEGER"
	Double      ColumnType = "DOUBLE PRECISION"
	Text        ColumnType = "TEXT"
	TimestampTZ ColumnType = "TIMESTAMP WITH TIME ZONE"
)

type Column struct {
	Name string
	Type ColumnType
}

// Table describes one output table. The order of the columns is the order
// of the values in each row and must match the target schema.
type Table struct {
	Name    string
	Columns []Column
	// PrimaryKey is the column with unique values, if any.
	PrimaryKey string
}

func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

var (
	NodesTable = Table{
		Name: "nodes",
		Columns: []Column{
			{"id", BigInt},
			{"lat", Double},
			{"lon", Double},
			{"user", Text},
			{"uid", Integer},
			{"version", Integer},
			{"changeset", BigInt},
			{"timestamp", TimestampTZ},
		},
		PrimaryKey: "id",
	}
	NodeTagsTable = Table{
		Name:    "nodes_tags",
		Columns: tagColumns,
	}
	WaysTable = Table{
		Name: "ways",
		Columns: []Column{
			{"id", BigInt},
			{"user", Text},
			{"uid", Integer},
			{"version", Integer},
			{"changeset", BigInt},
			{"timestamp", TimestampTZ},
		},
		PrimaryKey: "id",
	}
	WayNodesTable = Table{
		Name: "ways_nodes",
		Columns: []Column{
			{"id", BigInt},
			{"node_id", BigInt},
			{"position", Integer},
		},
	}
	WayTagsTable = Table{
		Name:    "ways_tags",
		Columns: tagColumns,
	}
)

var tagColumns = []Column{
	{"id", BigInt},
	{"key", Text},
	{"value", Text},
	{"type", Text},
}

// Tables lists all output tables in the order they are opened.
var Tables = []Table{NodesTable, NodeTagsTable, WaysTable, WayNodesTable, WayTagsTable}

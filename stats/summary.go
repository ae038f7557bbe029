package stats

import (
	"io"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
)

// WriteSummary renders the counts of s as tables: rows per output table in
// the order of tables, followed by the cleaner results.
func (s *Stats) WriteSummary(w io.Writer, tables []string) {
	c := s.Counts()

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("osmcsv " + s.Duration().Round(1e6).String())
	t.AppendHeader(table.Row{"Table", "Rows"})
	var total int64
	for _, name := range tables {
		t.AppendRow(table.Row{name, humanize.Comma(c.Rows[name])})
		total += c.Rows[name]
	}
	t.AppendFooter(table.Row{"Total", humanize.Comma(total)})
	t.Render()

	t = table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Elements", "Count"})
	t.AppendRows([]table.Row{
		{"nodes", humanize.Comma(c.Nodes)},
		{"ways", humanize.Comma(c.Ways)},
		{"skipped", humanize.Comma(c.Skipped)},
		{"dropped tags", humanize.Comma(c.DroppedTags)},
	})
	t.Render()

	if len(c.Cleaned) == 0 {
		return
	}
	cleaners := make([]string, 0, len(c.Cleaned))
	for name := range c.Cleaned {
		cleaners = append(cleaners, name)
	}
	sort.Strings(cleaners)

	t = table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Cleaner", "Values", "Changed"})
	for _, name := range cleaners {
		t.AppendRow(table.Row{name, humanize.Comma(c.Cleaned[name]), humanize.Comma(c.Changed[name])})
	}
	t.Render()
}

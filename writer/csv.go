package writer

import (
	"bufio"
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/omniscale/osmcsv/element"
)

// CSVOpener writes each table into a delimited file with a header row.
type CSVOpener struct {
	// Dir is the directory of all files.
	Dir string
	// Files maps table names to file names. Tables without entry
	// are written to <table name>.csv.
	Files map[string]string
	// Delimiter separates the fields, defaults to comma.
	Delimiter rune
}

func (o *CSVOpener) Filename(table element.Table) string {
	name, ok := o.Files[table.Name]
	if !ok || name == "" {
		name = table.Name + ".csv"
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(o.Dir, name)
}

// Open creates the file for table and writes the header. Rows are written
// to a temporary file in the same directory that replaces the file on Close.
func (o *CSVOpener) Open(table element.Table) (TableWriter, error) {
	fname := o.Filename(table)
	tmpname := fname + ".tmp"
	f, err := os.Create(tmpname)
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s", table.Name)
	}
	buf := bufio.NewWriterSize(f, 64*1024)
	w := csv.NewWriter(buf)
	if o.Delimiter != 0 {
		w.Comma = o.Delimiter
	}
	cw := &csvTable{fname: fname, tmpname: tmpname, f: f, buf: buf, w: w}
	if err := cw.Write(table.ColumnNames()); err != nil {
		cw.Abort()
		return nil, err
	}
	return cw, nil
}

type csvTable struct {
	fname   string
	tmpname string
	f       *os.File
	buf     *bufio.Writer
	w       *csv.Writer
}

func (t *csvTable) Write(row []string) error {
	if err := t.w.Write(row); err != nil {
		return errors.Wrapf(err, "writing %s", t.fname)
	}
	return nil
}

// Close flushes all rows and moves the file to its final name.
func (t *csvTable) Close() error {
	t.w.Flush()
	err := t.w.Error()
	if err == nil {
		err = t.buf.Flush()
	}
	if cerr := t.f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(t.tmpname, t.fname)
	}
	if err != nil {
		os.Remove(t.tmpname)
		return errors.Wrapf(err, "closing %s", t.fname)
	}
	return nil
}

// Abort removes the temporary file. An existing file from a previous
// conversion is kept.
func (t *csvTable) Abort() error {
	t.f.Close()
	if err := os.Remove(t.tmpname); err != nil {
		return errors.Wrapf(err, "removing %s", t.tmpname)
	}
	return nil
}

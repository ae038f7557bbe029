/*
Package reader opens the element source for an OSM input file.
*/
package reader

import (
	"strings"

	"github.com/omniscale/osmcsv/element"
	"github.com/omniscale/osmcsv/parser/osmpbf"
	"github.com/omniscale/osmcsv/parser/osmxml"
)

// Source returns the nodes and ways of an OSM file in file order. Next
// returns io.EOF after the last element. A Source can only be read once.
type Source interface {
	Next() (element.RawElement, error)
	// Skipped returns the number of relations consumed without being
	// returned by Next.
	Skipped() int64
	Close() error
}

// Open returns a PBF parser for .pbf files and an XML parser for all
// other files (.osm, .osm.gz, .osm.bz2).
func Open(fname string) (Source, error) {
	if IsPBF(fname) {
		p, err := osmpbf.Open(fname)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	p, err := osmxml.Open(fname)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func IsPBF(fname string) bool {
	return strings.HasSuffix(strings.ToLower(fname), ".pbf")
}

/*
Package osmpbf returns the nodes and ways of OSM PBF files as raw elements.

It uses the PBF parser of github.com/omniscale/go-osm with a single
decoding goroutine, so that all elements are returned in file order.
*/
package osmpbf

import (
	"context"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	osm "github.com/omniscale/go-osm"
	"github.com/omniscale/go-osm/parser/pbf"
	"github.com/pkg/errors"

	"github.com/omniscale/osmcsv/element"
)

type Parser struct {
	parser    *pbf.Parser
	nodes     chan []osm.Node
	ways      chan []osm.Way
	relations chan []osm.Relation
	errc      chan error
	cancel    context.CancelFunc
	onClose   func() error

	running  bool
	finished bool
	pending  []element.RawElement
	skipped  int64
	err      error
}

// New returns a parser for the PBF data of r.
func New(r io.Reader) *Parser {
	nodes := make(chan []osm.Node)
	ways := make(chan []osm.Way)
	relations := make(chan []osm.Relation)
	p := &Parser{
		nodes:     nodes,
		ways:      ways,
		relations: relations,
		errc:      make(chan error, 1),
	}
	p.parser = pbf.New(r, pbf.Config{
		IncludeMetadata: true,
		Nodes:           nodes,
		Ways:            ways,
		Relations:       relations,
		Concurrency:     1,
	})
	return p
}

// Open returns a parser for an .osm.pbf file.
func Open(fname string) (*Parser, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, errors.Wrap(err, "opening PBF file")
	}
	p := New(f)
	p.onClose = f.Close
	return p, nil
}

func (p *Parser) start() {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.running = true
	go func() {
		p.errc <- p.parser.Parse(ctx)
	}()
}

// Skipped returns the number of relations read so far.
func (p *Parser) Skipped() int64 {
	return p.skipped
}

// Next returns the next node or way. It returns io.EOF after the last
// element.
func (p *Parser) Next() (element.RawElement, error) {
	if p.err != nil {
		return element.RawElement{}, p.err
	}
	if !p.running {
		p.start()
	}
	for len(p.pending) == 0 {
		if p.finished {
			p.err = io.EOF
			return element.RawElement{}, io.EOF
		}
		select {
		case nds, ok := <-p.nodes:
			if !ok {
				p.nodes = nil
				continue
			}
			p.pending = appendNodes(p.pending, nds)
		case ws, ok := <-p.ways:
			if !ok {
				p.ways = nil
				continue
			}
			p.pending = appendWays(p.pending, ws)
		case rels, ok := <-p.relations:
			if !ok {
				p.relations = nil
				continue
			}
			p.skipped += int64(len(rels))
		case err := <-p.errc:
			p.finished = true
			if err != nil {
				// Parse does not close the channels after a read error and
				// its worker can still be sending the current block.
				go drainIdle(p.nodes, p.ways, p.relations, drainTimeout)
				p.err = errors.Wrap(err, "parsing PBF")
				return element.RawElement{}, p.err
			}
			// all nodes and ways are received once Parse returned
		}
	}
	elem := p.pending[0]
	p.pending[0] = element.RawElement{}
	p.pending = p.pending[1:]
	return elem, nil
}

// Close stops the parser and closes the underlying file.
func (p *Parser) Close() error {
	if p.running && !p.finished {
		p.cancel()
		go drain(p.nodes, p.ways, p.relations, p.errc)
		p.finished = true
	}
	if p.onClose == nil {
		return nil
	}
	err := p.onClose()
	p.onClose = nil
	return err
}

// drain unblocks the parse goroutine until it returns.
func drain(nodes chan []osm.Node, ways chan []osm.Way, relations chan []osm.Relation, errc chan error) {
	for {
		select {
		case _, ok := <-nodes:
			if !ok {
				nodes = nil
			}
		case _, ok := <-ways:
			if !ok {
				ways = nil
			}
		case _, ok := <-relations:
			if !ok {
				relations = nil
			}
		case <-errc:
			return
		}
	}
}

var drainTimeout = time.Second

// drainIdle receives the remaining batches of a failed parse until no
// batch arrived for idle.
func drainIdle(nodes chan []osm.Node, ways chan []osm.Way, relations chan []osm.Relation, idle time.Duration) {
	timer := time.NewTimer(idle)
	defer timer.Stop()
	for {
		select {
		case _, ok := <-nodes:
			if !ok {
				nodes = nil
			}
		case _, ok := <-ways:
			if !ok {
				ways = nil
			}
		case _, ok := <-relations:
			if !ok {
				relations = nil
			}
		case <-timer.C:
			return
		}
		if nodes == nil && ways == nil && relations == nil {
			return
		}
		timer.Reset(idle)
	}
}

func appendNodes(elems []element.RawElement, nodes []osm.Node) []element.RawElement {
	for i := range nodes {
		elems = append(elems, NodeElement(&nodes[i]))
	}
	return elems
}

func appendWays(elems []element.RawElement, ways []osm.Way) []element.RawElement {
	for i := range ways {
		elems = append(elems, WayElement(&ways[i]))
	}
	return elems
}

// NodeElement converts a parsed node. Metadata attributes are missing if
// the PBF does not contain metadata.
func NodeElement(n *osm.Node) element.RawElement {
	attrs := []element.Attr{
		{Name: "id", Value: strconv.FormatInt(n.ID, 10)},
		{Name: "lat", Value: FormatCoord(n.Lat)},
		{Name: "lon", Value: FormatCoord(n.Long)},
	}
	return element.RawElement{
		Kind:  element.NodeKind,
		Attrs: appendMetadata(attrs, n.Metadata),
		Tags:  sortedTags(n.Tags),
	}
}

// WayElement converts a parsed way.
func WayElement(w *osm.Way) element.RawElement {
	attrs := []element.Attr{{Name: "id", Value: strconv.FormatInt(w.ID, 10)}}
	var refs []string
	if len(w.Refs) > 0 {
		refs = make([]string, len(w.Refs))
		for i, ref := range w.Refs {
			refs[i] = strconv.FormatInt(ref, 10)
		}
	}
	return element.RawElement{
		Kind:  element.WayKind,
		Attrs: appendMetadata(attrs, w.Metadata),
		Tags:  sortedTags(w.Tags),
		Refs:  refs,
	}
}

func appendMetadata(attrs []element.Attr, md *osm.Metadata) []element.Attr {
	if md == nil {
		return attrs
	}
	return append(attrs,
		element.Attr{Name: "user", Value: md.UserName},
		element.Attr{Name: "uid", Value: strconv.FormatInt(int64(md.UserID), 10)},
		element.Attr{Name: "version", Value: strconv.FormatInt(int64(md.Version), 10)},
		element.Attr{Name: "changeset", Value: strconv.FormatInt(md.Changeset, 10)},
		element.Attr{Name: "timestamp", Value: md.Timestamp.UTC().Format(time.RFC3339)},
	)
}

// sortedTags returns the tags ordered by key, as PBF tags have no
// defined order.
func sortedTags(tags osm.Tags) []element.Tag {
	if len(tags) == 0 {
		return nil
	}
	result := make([]element.Tag, 0, len(tags))
	for k, v := range tags {
		result = append(result, element.Tag{Key: k, Value: v})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result
}

// FormatCoord formats a coordinate with the 7 decimal places of OSM
// without trailing zeros.
func FormatCoord(c float64) string {
	s := strconv.FormatFloat(math.Round(c*1e7)/1e7, 'f', 7, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

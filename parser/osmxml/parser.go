/*
Package osmxml implements a stream based parser for OSM XML files (.osm).

Only nodes and ways are returned; all other elements are skipped. Skipped
relations are counted.
*/
package osmxml

import (
	"compress/bzip2"
	"compress/gzip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/omniscale/osmcsv/element"
)

// SyntaxError is returned for XML documents that are not well-formed
// or that do not match the structure of an OSM file.
type SyntaxError struct {
	Line   int
	Column int
	Err    error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid OSM XML in line %d column %d: %s", e.Line, e.Column, e.Err)
}

// Parser returns the nodes and ways of an OSM XML document in document
// order. Only the element that is currently parsed is kept in memory.
type Parser struct {
	decoder *xml.Decoder
	onClose func() error
	err     error
	skipped int64
}

// New returns a parser for an uncompressed OSM XML document.
func New(r io.Reader) *Parser {
	return &Parser{decoder: xml.NewDecoder(r)}
}

// Open returns a parser for an .osm file. Files ending with .gz or .bz2
// are decompressed.
func Open(fname string) (*Parser, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, errors.Wrap(err, "opening OSM file")
	}

	var r io.Reader = f
	onClose := f.Close
	switch {
	case strings.HasSuffix(fname, ".gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "initializing gzip reader for %s", fname)
		}
		r = gz
		onClose = func() error {
			gz.Close()
			return f.Close()
		}
	case strings.HasSuffix(fname, ".bz2"):
		r = bzip2.NewReader(f)
	}

	p := New(r)
	p.onClose = onClose
	return p, nil
}

// Close closes the underlying file, if the parser was created with Open.
func (p *Parser) Close() error {
	if p.onClose == nil {
		return nil
	}
	err := p.onClose()
	p.onClose = nil
	return err
}

// Skipped returns the number of relations read so far.
func (p *Parser) Skipped() int64 {
	return p.skipped
}

// Next returns the next node or way. It returns io.EOF at the end of the
// document. All following calls return the same error.
func (p *Parser) Next() (element.RawElement, error) {
	if p.err != nil {
		return element.RawElement{}, p.err
	}
	elem, err := p.next()
	if err != nil {
		p.err = err
		return element.RawElement{}, err
	}
	return elem, nil
}

func (p *Parser) next() (element.RawElement, error) {
	var elem *element.RawElement
	for {
		token, err := p.decoder.Token()
		if err == io.EOF {
			if elem != nil {
				return element.RawElement{}, p.syntaxError(
					errors.Errorf("unexpected end of document in %s %s", elem.Kind, elem.ID()))
			}
			return element.RawElement{}, io.EOF
		}
		if err != nil {
			return element.RawElement{}, p.syntaxError(err)
		}

		switch tok := token.(type) {
		case xml.StartElement:
			switch tok.Name.Local {
			case "node", "way":
				if elem != nil {
					return element.RawElement{}, p.syntaxError(
						errors.Errorf("%s nested in %s %s", tok.Name.Local, elem.Kind, elem.ID()))
				}
				elem = &element.RawElement{
					Kind:  element.Kind(tok.Name.Local),
					Attrs: make([]element.Attr, len(tok.Attr)),
				}
				for i, attr := range tok.Attr {
					elem.Attrs[i] = element.Attr{Name: attr.Name.Local, Value: attr.Value}
				}
			case "relation":
				if elem == nil {
					p.skipped++
				}
			case "tag":
				if elem == nil {
					// tag of a relation or changeset
					continue
				}
				k, okK := attrValue(tok.Attr, "k")
				v, okV := attrValue(tok.Attr, "v")
				if !okK || !okV {
					return element.RawElement{}, p.syntaxError(
						errors.Errorf("tag without k or v in %s %s", elem.Kind, elem.ID()))
				}
				elem.Tags = append(elem.Tags, element.Tag{Key: k, Value: v})
			case "nd":
				if elem == nil {
					continue
				}
				ref, ok := attrValue(tok.Attr, "ref")
				if !ok {
					return element.RawElement{}, p.syntaxError(
						errors.Errorf("nd without ref in %s %s", elem.Kind, elem.ID()))
				}
				elem.Refs = append(elem.Refs, ref)
			}
		case xml.EndElement:
			if elem != nil && tok.Name.Local == string(elem.Kind) {
				return *elem, nil
			}
		}
	}
}

func (p *Parser) syntaxError(err error) error {
	line, column := p.decoder.InputPos()
	return &SyntaxError{Line: line, Column: column, Err: err}
}

func attrValue(attrs []xml.Attr, name string) (string, bool) {
	for _, attr := range attrs {
		if attr.Name.Local == name {
			return attr.Value, true
		}
	}
	return "", false
}

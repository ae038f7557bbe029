/*
Package shape converts raw OSM elements into the records of the output tables.
*/
package shape

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/omniscale/osmcsv/clean"
	"github.com/omniscale/osmcsv/element"
)

// ErrNotApplicable is returned for all elements other than nodes and ways.
var ErrNotApplicable = errors.New("element is neither node nor way")

// problemChars matches keys that are not usable as column names or that
// interfere with the quoting of the output files.
var problemChars = regexp.MustCompile(`[=\+/&<>;'"\?%#$@\,\.\s]`)

var (
	nodeFields = []string{"id", "lat", "lon", "user", "uid", "version", "changeset", "timestamp"}
	wayFields  = []string{"id", "user", "uid", "version", "changeset", "timestamp"}
)

// MissingAttributeError is returned if a mandatory attribute of a node or
// way is absent.
type MissingAttributeError struct {
	Kind      element.Kind
	ID        string
	Attribute string
}

func (e *MissingAttributeError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s without %s attribute", e.Kind, e.Attribute)
	}
	return fmt.Sprintf("%s %s without %s attribute", e.Kind, e.ID, e.Attribute)
}

// Observer gets notified about dropped tags and cleaned values.
type Observer interface {
	DroppedTag(key string)
	CleanedValue(cleaner string, changed bool)
}

type Shaper struct {
	cleaner  *clean.Cleaner
	observer Observer
}

func New(cleaner *clean.Cleaner) *Shaper {
	return &Shaper{cleaner: cleaner}
}

func (s *Shaper) SetObserver(o Observer) {
	s.observer = o
}

// IsProblemKey returns whether a tag with this key is dropped.
func IsProblemKey(key string) bool {
	return problemChars.MatchString(key)
}

// SplitKey returns the type and key of a raw tag key. The type is the part
// before the first colon, or element.DefaultTagType.
func SplitKey(raw string) (typ, key string) {
	if i := strings.IndexByte(raw, ':'); i >= 0 {
		return raw[:i], raw[i+1:]
	}
	return element.DefaultTagType, raw
}

// Shape returns the records for a node or way.
func (s *Shaper) Shape(elem element.RawElement) (*element.Shaped, error) {
	if elem.Kind != element.NodeKind && elem.Kind != element.WayKind {
		return nil, ErrNotApplicable
	}

	values, err := attrValues(&elem, fieldsFor(elem.Kind))
	if err != nil {
		return nil, err
	}
	id := values[0]

	shaped := &element.Shaped{}
	shaped.Tags = s.tags(id, elem.Tags)

	if elem.Kind == element.NodeKind {
		shaped.Node = &element.Node{
			ID:        id,
			Lat:       values[1],
			Lon:       values[2],
			User:      values[3],
			UID:       values[4],
			Version:   values[5],
			Changeset: values[6],
			Timestamp: values[7],
		}
		return shaped, nil
	}

	if len(elem.Refs) > 0 {
		shaped.WayNodes = make([]element.WayNode, len(elem.Refs))
		for pos, ref := range elem.Refs {
			shaped.WayNodes[pos] = element.WayNode{ID: id, NodeID: ref, Position: pos}
		}
	}
	shaped.Way = &element.Way{
		ID:        id,
		User:      values[1],
		UID:       values[2],
		Version:   values[3],
		Changeset: values[4],
		Timestamp: values[5],
	}
	return shaped, nil
}

func (s *Shaper) tags(id string, tags []element.Tag) []element.TagRecord {
	if len(tags) == 0 {
		return nil
	}
	records := make([]element.TagRecord, 0, len(tags))
	for _, tag := range tags {
		if IsProblemKey(tag.Key) {
			if s.observer != nil {
				s.observer.DroppedTag(tag.Key)
			}
			continue
		}
		typ, key := SplitKey(tag.Key)
		value := tag.Value
		if s.cleaner != nil {
			var cleaner string
			value, cleaner = s.cleaner.Value(typ, key, tag.Value)
			if cleaner != "" && s.observer != nil {
				s.observer.CleanedValue(cleaner, value != tag.Value)
			}
		}
		records = append(records, element.TagRecord{ID: id, Key: key, Value: value, Type: typ})
	}
	return records
}

func fieldsFor(kind element.Kind) []string {
	if kind == element.NodeKind {
		return nodeFields
	}
	return wayFields
}

func attrValues(elem *element.RawElement, fields []string) ([]string, error) {
	values := make([]string, len(fields))
	for i, field := range fields {
		v, ok := elem.Attr(field)
		if !ok {
			return nil, &MissingAttributeError{Kind: elem.Kind, ID: elem.ID(), Attribute: field}
		}
		values[i] = v
	}
	return values, nil
}

package element

import "strconv"

type Kind string

const (
	NodeKind Kind = "node"
	WayKind  Kind = "way"
)

// DefaultTagType is the type of all tags without a colon in their key.
const DefaultTagType = "regular"

type Attr struct {
	Name  string
	Value string
}

type Tag struct {
	Key   string
	Value string
}

// RawElement is a single top-level element of an OSM document. Attrs,
// Tags and Refs keep the document order.
type RawElement struct {
	Kind  Kind
	Attrs []Attr
	Tags  []Tag
	// Refs contains the node IDs of all nd children of a way.
	Refs []string
}

// Attr returns the value of the attribute name and whether it was present.
func (e *RawElement) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// ID returns the id attribute or an empty string.
func (e *RawElement) ID() string {
	id, _ := e.Attr("id")
	return id
}

// Node is the entity record of a node. All values are kept as they
// appear in the source document.
type Node struct {
	ID        string
	Lat       string
	Lon       string
	User      string
	UID       string
	Version   string
	Changeset string
	Timestamp string
}

func (n *Node) Row() []string {
	return []string{n.ID, n.Lat, n.Lon, n.User, n.UID, n.Version, n.Changeset, n.Timestamp}
}

// Way is the entity record of a way.
type Way struct {
	ID        string
	User      string
	UID       string
	Version   string
	Changeset string
	Timestamp string
}

func (w *Way) Row() []string {
	return []string{w.ID, w.User, w.UID, w.Version, w.Changeset, w.Timestamp}
}

// TagRecord is a single tag of a node or way. ID references the parent.
type TagRecord struct {
	ID    string
	Key   string
	Value string
	Type  string
}

func (t *TagRecord) Row() []string {
	return []string{t.ID, t.Key, t.Value, t.Type}
}

// WayNode references a node of a way. Position is the zero-based index
// of the node within the way.
type WayNode struct {
	ID       string
	NodeID   string
	Position int
}

func (wn *WayNode) Row() []string {
	return []string{wn.ID, wn.NodeID, strconv.Itoa(wn.Position)}
}

// Shaped contains all records derived from a single RawElement.
// Either Node or Way is set.
type Shaped struct {
	Node     *Node
	Way      *Way
	Tags     []TagRecord
	WayNodes []WayNode
}

func (s *Shaped) Kind() Kind {
	if s.Way != nil {
		return WayKind
	}
	return NodeKind
}

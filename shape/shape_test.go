package shape

import (
	"reflect"
	"testing"

	"github.com/omniscale/osmcsv/clean"
	"github.com/omniscale/osmcsv/element"
)

func metaAttrs(id string) []element.Attr {
	return []element.Attr{
		{Name: "id", Value: id},
		{Name: "user", Value: "th84sn"},
		{Name: "uid", Value: "1234"},
		{Name: "version", Value: "3"},
		{Name: "changeset", Value: "56789"},
		{Name: "timestamp", Value: "2018-04-20T09:24:56Z"},
	}
}

func testNode(id string, tags ...element.Tag) element.RawElement {
	attrs := append(metaAttrs(id), element.Attr{Name: "lat", Value: "54.7833"}, element.Attr{Name: "lon", Value: "9.4333"})
	return element.RawElement{Kind: element.NodeKind, Attrs: attrs, Tags: tags}
}

type recorder struct {
	dropped []string
	cleaned map[string]int
	changed int
}

func (r *recorder) DroppedTag(key string) { r.dropped = append(r.dropped, key) }
func (r *recorder) CleanedValue(cleaner string, changed bool) {
	if r.cleaned == nil {
		r.cleaned = make(map[string]int)
	}
	r.cleaned[cleaner]++
	if changed {
		r.changed++
	}
}

func TestSplitKey(t *testing.T) {
	for _, tc := range []struct {
		raw, typ, key string
	}{
		{"name", "regular", "name"},
		{"addr:street", "addr", "street"},
		{"addr:street:foo", "addr", "street:foo"},
		{"a:b:c", "a", "b:c"},
		{":x", "", "x"},
		{"x:", "x", ""},
	} {
		typ, key := SplitKey(tc.raw)
		if typ != tc.typ || key != tc.key {
			t.Errorf("SplitKey(%q) = %q, %q", tc.raw, typ, key)
		}
	}
}

func TestIsProblemKey(t *testing.T) {
	for _, key := range []string{
		"addr,street", "a=b", "a+b", "a/b", "a&b", "a<b", "a>b", "a;b", "a'b",
		`a"b`, "a?b", "a%b", "a#b", "a$b", "a@b", "a.b", "a b", "a\tb", "a\nb", "a\rb",
	} {
		if !IsProblemKey(key) {
			t.Errorf("%q should be a problem key", key)
		}
	}
	for _, key := range []string{"name", "addr:street", "name:de", "seamark:light:1:colour", "is_in", "ref-nr"} {
		if IsProblemKey(key) {
			t.Errorf("%q should not be a problem key", key)
		}
	}
}

func TestShapeNode(t *testing.T) {
	s := New(clean.New(true, clean.DefaultCorrections()))
	r := &recorder{}
	s.SetObserver(r)

	shaped, err := s.Shape(testNode("100",
		element.Tag{Key: "addr:street", Value: "Hauptstrasse"},
		element.Tag{Key: "addr:postcode", Value: "99999"},
		element.Tag{Key: "addr,street", Value: "Nebenstrasse"},
		element.Tag{Key: "phone", Value: "0461 1234567"},
		element.Tag{Key: "name", Value: "Café Strasse"},
	))
	if err != nil {
		t.Fatal(err)
	}
	if shaped.Kind() != element.NodeKind || shaped.Way != nil || shaped.WayNodes != nil {
		t.Fatal(shaped)
	}
	expectedNode := element.Node{
		ID: "100", Lat: "54.7833", Lon: "9.4333", User: "th84sn", UID: "1234",
		Version: "3", Changeset: "56789", Timestamp: "2018-04-20T09:24:56Z",
	}
	if *shaped.Node != expectedNode {
		t.Errorf("unexpected node %#v", shaped.Node)
	}

	expectedTags := []element.TagRecord{
		{ID: "100", Key: "street", Value: "Hauptstraße", Type: "addr"},
		{ID: "100", Key: "postcode", Value: clean.InvalidPostalCode, Type: "addr"},
		{ID: "100", Key: "phone", Value: "+49 461 1234567", Type: "regular"},
		{ID: "100", Key: "name", Value: "Café Strasse", Type: "regular"},
	}
	if !reflect.DeepEqual(shaped.Tags, expectedTags) {
		t.Errorf("unexpected tags %#v", shaped.Tags)
	}

	if !reflect.DeepEqual(r.dropped, []string{"addr,street"}) {
		t.Error(r.dropped)
	}
	if r.cleaned["street"] != 1 || r.cleaned["postcode"] != 1 || r.cleaned["phone"] != 1 || r.changed != 3 {
		t.Error(r.cleaned, r.changed)
	}
}

func TestShapeWay(t *testing.T) {
	s := New(clean.New(false, nil))
	refs := []string{"5", "3", "9", "5"}
	shaped, err := s.Shape(element.RawElement{
		Kind:  element.WayKind,
		Attrs: metaAttrs("200"),
		Tags:  []element.Tag{{Key: "highway", Value: "residential"}, {Key: "name:de", Value: "Schlossstrasse"}},
		Refs:  refs,
	})
	if err != nil {
		t.Fatal(err)
	}
	if shaped.Kind() != element.WayKind || shaped.Node != nil {
		t.Fatal(shaped)
	}
	expectedWay := element.Way{
		ID: "200", User: "th84sn", UID: "1234", Version: "3", Changeset: "56789", Timestamp: "2018-04-20T09:24:56Z",
	}
	if *shaped.Way != expectedWay {
		t.Errorf("unexpected way %#v", shaped.Way)
	}
	if len(shaped.WayNodes) != len(refs) {
		t.Fatal(shaped.WayNodes)
	}
	for i, wn := range shaped.WayNodes {
		if wn.ID != "200" || wn.Position != i || wn.NodeID != refs[i] {
			t.Errorf("unexpected way node %d: %#v", i, wn)
		}
	}
	expectedTags := []element.TagRecord{
		{ID: "200", Key: "highway", Value: "residential", Type: "regular"},
		{ID: "200", Key: "de", Value: "Schlossstrasse", Type: "name"},
	}
	if !reflect.DeepEqual(shaped.Tags, expectedTags) {
		t.Errorf("unexpected tags %#v", shaped.Tags)
	}
}

func TestShapeWayWithoutNodes(t *testing.T) {
	s := New(nil)
	shaped, err := s.Shape(element.RawElement{Kind: element.WayKind, Attrs: metaAttrs("1")})
	if err != nil {
		t.Fatal(err)
	}
	if len(shaped.WayNodes) != 0 || len(shaped.Tags) != 0 {
		t.Error(shaped)
	}
}

func TestShapeWithoutCleaner(t *testing.T) {
	s := New(nil)
	shaped, err := s.Shape(testNode("1", element.Tag{Key: "addr:postcode", Value: "99999"}))
	if err != nil {
		t.Fatal(err)
	}
	if shaped.Tags[0].Value != "99999" {
		t.Error(shaped.Tags)
	}
}

func TestShapeMissingAttribute(t *testing.T) {
	s := New(nil)

	elem := testNode("300")
	elem.Attrs = elem.Attrs[:len(elem.Attrs)-1] // drop lon
	_, err := s.Shape(elem)
	mErr, ok := err.(*MissingAttributeError)
	if !ok {
		t.Fatalf("expected MissingAttributeError, got %v", err)
	}
	if mErr.Attribute != "lon" || mErr.ID != "300" || mErr.Kind != element.NodeKind {
		t.Error(mErr)
	}
	if mErr.Error() != "node 300 without lon attribute" {
		t.Error(mErr.Error())
	}

	_, err = s.Shape(element.RawElement{Kind: element.WayKind})
	if mErr, ok := err.(*MissingAttributeError); !ok || mErr.Attribute != "id" {
		t.Errorf("expected missing id, got %v", err)
	}
}

func TestShapeNotApplicable(t *testing.T) {
	s := New(nil)
	_, err := s.Shape(element.RawElement{Kind: "relation", Attrs: metaAttrs("1")})
	if err != ErrNotApplicable {
		t.Error(err)
	}
}

package osmxml

import (
	"compress/gzip"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/omniscale/osmcsv/element"
)

const testDoc = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
  <bounds minlat="54.7" minlon="9.3" maxlat="54.9" maxlon="9.5"/>
  <node id="1" lat="54.7833" lon="9.4333" user="a" uid="1" version="1" changeset="10" timestamp="2018-04-20T09:24:56Z">
    <tag k="addr:street" v="Hauptstrasse"/>
    <tag k="name" v="Caf&#233; &amp; Bar"/>
  </node>
  <node id="2" lat="54.78" lon="9.43" user="b" uid="2" version="2" changeset="11" timestamp="2018-04-21T09:24:56Z"/>
  <way id="3" user="a" uid="1" version="1" changeset="12" timestamp="2018-04-22T09:24:56Z">
    <nd ref="2"/>
    <nd ref="1"/>
    <nd ref="2"/>
    <tag k="highway" v="residential"/>
  </way>
  <relation id="4" user="a" uid="1" version="1" changeset="13" timestamp="2018-04-23T09:24:56Z">
    <member type="way" ref="3" role="outer"/>
    <tag k="type" v="multipolygon"/>
  </relation>
  <way id="5" user="c" uid="3" version="1" changeset="14" timestamp="2018-04-24T09:24:56Z"/>
</osm>
`

func readAll(t *testing.T, p *Parser) []element.RawElement {
	t.Helper()
	var elems []element.RawElement
	for {
		elem, err := p.Next()
		if err == io.EOF {
			return elems
		}
		if err != nil {
			t.Fatal(err)
		}
		elems = append(elems, elem)
	}
}

func checkTestDoc(t *testing.T, elems []element.RawElement) {
	t.Helper()
	if len(elems) != 4 {
		t.Fatalf("expected 4 elements, got %d: %v", len(elems), elems)
	}
	var ids []string
	for _, e := range elems {
		ids = append(ids, string(e.Kind)+e.ID())
	}
	if !reflect.DeepEqual(ids, []string{"node1", "node2", "way3", "way5"}) {
		t.Error(ids)
	}

	n := elems[0]
	if lat, _ := n.Attr("lat"); lat != "54.7833" {
		t.Error(n.Attrs)
	}
	if ts, _ := n.Attr("timestamp"); ts != "2018-04-20T09:24:56Z" {
		t.Error(n.Attrs)
	}
	expectedTags := []element.Tag{{Key: "addr:street", Value: "Hauptstrasse"}, {Key: "name", Value: "Café & Bar"}}
	if !reflect.DeepEqual(n.Tags, expectedTags) {
		t.Error(n.Tags)
	}
	if len(n.Refs) != 0 || len(elems[1].Tags) != 0 {
		t.Error(n.Refs, elems[1].Tags)
	}

	w := elems[2]
	if !reflect.DeepEqual(w.Refs, []string{"2", "1", "2"}) {
		t.Error(w.Refs)
	}
	if !reflect.DeepEqual(w.Tags, []element.Tag{{Key: "highway", Value: "residential"}}) {
		t.Error(w.Tags)
	}
	if len(elems[3].Refs) != 0 {
		t.Error(elems[3].Refs)
	}
}

func TestParser(t *testing.T) {
	p := New(strings.NewReader(testDoc))
	checkTestDoc(t, readAll(t, p))
	if p.Skipped() != 1 {
		t.Error("expected one skipped relation, got", p.Skipped())
	}

	// EOF is sticky
	if _, err := p.Next(); err != io.EOF {
		t.Error(err)
	}
	if err := p.Close(); err != nil {
		t.Error(err)
	}
}

func TestOpenGzip(t *testing.T) {
	tmpdir, err := ioutil.TempDir("", "osmcsv_test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpdir)

	fname := filepath.Join(tmpdir, "test.osm.gz")
	f, err := os.Create(fname)
	if err != nil {
		t.Fatal(err)
	}
	gz := gzip.NewWriter(f)
	if _, err := gz.Write([]byte(testDoc)); err != nil {
		t.Fatal(err)
	}
	gz.Close()
	f.Close()

	p, err := Open(fname)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	checkTestDoc(t, readAll(t, p))
}

func TestOpenBzip2(t *testing.T) {
	p, err := Open("./testdata/test.osm.bz2")
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	checkTestDoc(t, readAll(t, p))
}

func TestOpenMissing(t *testing.T) {
	if _, err := Open("/does/not/exist.osm"); err == nil {
		t.Error("expected error")
	}
}

func TestParserErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		doc  string
	}{
		{"truncated", `<osm><node id="1" lat="1" lon="1"><tag k="a" v="b"/>`},
		{"unclosed tag", `<osm><node id="1"></way></osm>`},
		{"nested", `<osm><way id="1"><node id="2"/></way></osm>`},
		{"tag without v", `<osm><node id="1"><tag k="a"/></node></osm>`},
		{"nd without ref", `<osm><way id="1"><nd/></way></osm>`},
		{"garbage", `<osm><node id="1" lat=1/></osm>`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p := New(strings.NewReader(tc.doc))
			var err error
			for err == nil {
				_, err = p.Next()
			}
			if err == io.EOF {
				t.Fatal("expected syntax error")
			}
			if _, ok := err.(*SyntaxError); !ok {
				t.Errorf("expected SyntaxError, got %T %v", err, err)
			}
			if _, err2 := p.Next(); err2 != err {
				t.Errorf("error not sticky: %v", err2)
			}
		})
	}
}

func TestParserSkipsRelationTags(t *testing.T) {
	doc := `<osm>
	<relation id="1"><tag k="name" v="x"/><nd ref="1"/></relation>
	<node id="2" lat="1" lon="2"/>
	</osm>`
	p := New(strings.NewReader(doc))
	elems := readAll(t, p)
	if len(elems) != 1 || elems[0].ID() != "2" || len(elems[0].Tags) != 0 {
		t.Error(elems)
	}
	if p.Skipped() != 1 {
		t.Error(p.Skipped())
	}
}

/*
Package convert converts OSM files into the five output tables.
*/
package convert

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/omniscale/osmcsv/clean"
	"github.com/omniscale/osmcsv/config"
	"github.com/omniscale/osmcsv/element"
	"github.com/omniscale/osmcsv/log"
	"github.com/omniscale/osmcsv/reader"
	"github.com/omniscale/osmcsv/shape"
	"github.com/omniscale/osmcsv/stats"
	"github.com/omniscale/osmcsv/writer"
)

type Converter struct {
	conf   config.Config
	opener writer.Opener
	shaper *shape.Shaper
	stats  *stats.Stats
}

// New returns a Converter that writes all tables with opener.
func New(conf config.Config, opener writer.Opener, st *stats.Stats) (*Converter, error) {
	corrections := clean.DefaultCorrections()
	if conf.CorrectionsFile != "" {
		extra, err := clean.LoadCorrections(conf.CorrectionsFile)
		if err != nil {
			return nil, err
		}
		if err := corrections.Merge(extra); err != nil {
			return nil, errors.Wrapf(err, "merging corrections from %s", conf.CorrectionsFile)
		}
	}
	if st == nil {
		st = stats.New()
	}
	shaper := shape.New(clean.New(conf.HandCleaning, corrections))
	shaper.SetObserver(st)
	return &Converter{
		conf:   conf,
		opener: opener,
		shaper: shaper,
		stats:  st,
	}, nil
}

// Run converts the configured input file.
func (c *Converter) Run(ctx context.Context) error {
	src, err := reader.Open(c.conf.Input)
	if err != nil {
		return err
	}
	defer src.Close()

	defer log.Step("Converting " + c.conf.Input)()
	return c.Convert(ctx, src)
}

// Convert writes all nodes and ways of src. All tables are closed when
// Convert returns. If the conversion fails, the tables are aborted instead
// and the first error is returned.
func (c *Converter) Convert(ctx context.Context, src reader.Source) (err error) {
	tables, err := openTables(c.opener)
	if err != nil {
		return err
	}
	defer func() {
		c.stats.AddSkipped(src.Skipped())
		err = tables.finish(err)
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		elem, err := src.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "reading elements")
		}

		shaped, err := c.shaper.Shape(elem)
		if err == shape.ErrNotApplicable {
			c.stats.AddSkipped(1)
			continue
		}
		if err != nil {
			return err
		}
		if err := tables.write(shaped, c.stats); err != nil {
			return err
		}
	}
}

// tables contains the writers of all output tables.
type tables struct {
	nodes    writer.TableWriter
	nodeTags writer.TableWriter
	ways     writer.TableWriter
	wayNodes writer.TableWriter
	wayTags  writer.TableWriter
}

func openTables(opener writer.Opener) (*tables, error) {
	t := &tables{}
	dests := []*writer.TableWriter{&t.nodes, &t.nodeTags, &t.ways, &t.wayNodes, &t.wayTags}
	for i, table := range element.Tables {
		w, err := opener.Open(table)
		if err != nil {
			t.finish(err)
			return nil, errors.Wrapf(err, "opening %s", table.Name)
		}
		*dests[i] = w
	}
	return t, nil
}

func (t *tables) all() []writer.TableWriter {
	return []writer.TableWriter{t.nodes, t.nodeTags, t.ways, t.wayNodes, t.wayTags}
}

// finish closes all opened writers, or aborts them if err is not nil.
// After a failed Close the remaining writers are aborted. It returns err
// or the first error while closing.
func (t *tables) finish(err error) error {
	for _, w := range t.all() {
		if w == nil {
			continue
		}
		if err != nil {
			if aerr := w.Abort(); aerr != nil {
				log.Printf("[warn] %s", aerr)
			}
			continue
		}
		if cerr := w.Close(); cerr != nil {
			err = cerr
		}
	}
	return err
}

func (t *tables) write(s *element.Shaped, st *stats.Stats) error {
	if s.Node != nil {
		if err := t.nodes.Write(s.Node.Row()); err != nil {
			return err
		}
		if err := writeTags(t.nodeTags, s.Tags); err != nil {
			return err
		}
		st.AddNode()
		st.AddRows(element.NodesTable.Name, 1)
		st.AddRows(element.NodeTagsTable.Name, len(s.Tags))
		return nil
	}

	if err := t.ways.Write(s.Way.Row()); err != nil {
		return err
	}
	for i := range s.WayNodes {
		if err := t.wayNodes.Write(s.WayNodes[i].Row()); err != nil {
			return err
		}
	}
	if err := writeTags(t.wayTags, s.Tags); err != nil {
		return err
	}
	st.AddWay()
	st.AddRows(element.WaysTable.Name, 1)
	st.AddRows(element.WayNodesTable.Name, len(s.WayNodes))
	st.AddRows(element.WayTagsTable.Name, len(s.Tags))
	return nil
}

func writeTags(w writer.TableWriter, tags []element.TagRecord) error {
	for i := range tags {
		if err := w.Write(tags[i].Row()); err != nil {
			return err
		}
	}
	return nil
}

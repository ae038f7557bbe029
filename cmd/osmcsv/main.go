package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/omniscale/osmcsv"
	"github.com/omniscale/osmcsv/config"
	"github.com/omniscale/osmcsv/convert"
	"github.com/omniscale/osmcsv/database/postgres"
	"github.com/omniscale/osmcsv/element"
	"github.com/omniscale/osmcsv/log"
	"github.com/omniscale/osmcsv/stats"
	"github.com/omniscale/osmcsv/writer"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "osmcsv",
		Short:         "Convert OpenStreetMap files into normalized CSV tables",
		Version:       osmcsv.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newConvertCmd())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), osmcsv.Version)
		},
	})
	return root
}

func newConvertCmd() *cobra.Command {
	opts := &config.Options{}
	cmd := &cobra.Command{
		Use:   "convert [input]",
		Short: "Convert an .osm, .osm.gz, .osm.bz2 or .osm.pbf file",
		Long: `Convert writes the nodes and ways of an OSM file into five tables:
nodes, nodes_tags, ways, ways_nodes and ways_tags.

Street names, postal codes and phone numbers are cleaned, tags with
problematic keys are dropped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input string
			if len(args) == 1 {
				input = args[0]
			}
			conf, err := opts.Resolve(cmd.Flags(), input)
			if err != nil {
				return err
			}
			if errs := conf.Check(); len(errs) != 0 {
				for _, err := range errs {
					log.Println("[error]", err)
				}
				return errors.New("invalid configuration")
			}
			return run(cmd.Context(), conf)
		},
	}
	opts.AddFlags(cmd.Flags())
	return cmd
}

func run(ctx context.Context, conf config.Config) error {
	level, err := log.ParseLevel(conf.LogLevel)
	if err != nil {
		return err
	}
	if conf.Quiet {
		level = log.LWarn
	}
	log.SetMinLevel(level)

	st := stats.New()
	if conf.HTTPBind != "" {
		stats.StartHTTP(conf.HTTPBind, st)
	}

	var opener writer.Opener
	if conf.Connection != "" {
		db, err := postgres.Open(conf.Connection, conf.Schema)
		if err != nil {
			return err
		}
		defer db.Close()
		opener = db
	} else {
		opener = &writer.CSVOpener{
			Dir:       conf.OutputDir,
			Files:     conf.Files.ByTable(),
			Delimiter: conf.DelimiterRune(),
		}
	}

	c, err := convert.New(conf, opener, st)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	convErr := c.Run(ctx)
	if !conf.Quiet {
		names := make([]string, len(element.Tables))
		for i, t := range element.Tables {
			names[i] = t.Name
		}
		st.WriteSummary(os.Stdout, names)
	}
	if conf.MetricsFile != "" {
		if err := st.WriteTextfile(conf.MetricsFile); err != nil {
			log.Println("[error] writing metrics:", err)
		}
	}
	return convErr
}

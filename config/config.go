/*
Package config contains the options of a conversion.

Options are read from the defaults, an optional YAML file and the command
line, in that order.
*/
package config

import (
	"io/ioutil"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v2"

	"github.com/omniscale/osmcsv/element"
)

type Config struct {
	// Input is the .osm, .osm.gz, .osm.bz2 or .osm.pbf file to convert.
	Input string `yaml:"input"`
	// OutputDir is the directory of the output files.
	OutputDir string `yaml:"output_dir"`
	Files     Files  `yaml:"files"`
	Delimiter string `yaml:"delimiter"`

	// HandCleaning enables the corrections of street names found during
	// the manual audit of the data.
	HandCleaning    bool   `yaml:"hand_cleaning"`
	CorrectionsFile string `yaml:"corrections"`

	// Connection loads the tables into PostgreSQL instead of writing files.
	Connection string `yaml:"connection"`
	Schema     string `yaml:"schema"`

	MetricsFile string `yaml:"metrics_file"`
	HTTPBind    string `yaml:"http"`
	LogLevel    string `yaml:"log_level"`
	Quiet       bool   `yaml:"quiet"`
}

// Files contains the file names of the output tables.
type Files struct {
	Nodes    string `yaml:"nodes"`
	NodeTags string `yaml:"nodes_tags"`
	Ways     string `yaml:"ways"`
	WayNodes string `yaml:"ways_nodes"`
	WayTags  string `yaml:"ways_tags"`
}

const (
	defaultOutputDir = "."
	defaultDelimiter = ","
	defaultSchema    = "public"
	defaultLogLevel  = "progress"
)

func Default() Config {
	return Config{
		OutputDir: defaultOutputDir,
		Files: Files{
			Nodes:    "nodes.csv",
			NodeTags: "nodes_tags.csv",
			Ways:     "ways.csv",
			WayNodes: "ways_nodes.csv",
			WayTags:  "ways_tags.csv",
		},
		Delimiter:    defaultDelimiter,
		HandCleaning: true,
		Schema:       defaultSchema,
		LogLevel:     defaultLogLevel,
	}
}

// ByTable returns the file names by table name.
func (f Files) ByTable() map[string]string {
	return map[string]string{
		element.NodesTable.Name:    f.Nodes,
		element.NodeTagsTable.Name: f.NodeTags,
		element.WaysTable.Name:     f.Ways,
		element.WayNodesTable.Name: f.WayNodes,
		element.WayTagsTable.Name:  f.WayTags,
	}
}

// DelimiterRune returns the first rune of Delimiter.
func (c *Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

// Load updates conf with all options of the YAML file.
func Load(filename string, conf *Config) error {
	b, err := ioutil.ReadFile(filename)
	if err != nil {
		return errors.Wrap(err, "reading config")
	}
	if err := yaml.UnmarshalStrict(b, conf); err != nil {
		return errors.Wrapf(err, "parsing config %s", filename)
	}
	return nil
}

func (c *Config) Check() []error {
	errs := []error{}
	if c.Input == "" {
		errs = append(errs, errors.New("missing input"))
	}
	if c.Connection == "" {
		if utf8.RuneCountInString(c.Delimiter) != 1 {
			errs = append(errs, errors.Errorf("delimiter %q is not a single character", c.Delimiter))
		} else if r := c.DelimiterRune(); r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
			errs = append(errs, errors.Errorf("invalid delimiter %q", c.Delimiter))
		}
		seen := make(map[string]string)
		for table, fname := range c.Files.ByTable() {
			if fname == "" {
				errs = append(errs, errors.Errorf("missing file name for %s", table))
				continue
			}
			if other, ok := seen[fname]; ok {
				errs = append(errs, errors.Errorf("%s and %s are both written to %s", table, other, fname))
			}
			seen[fname] = table
		}
	}
	if c.Connection != "" && c.Schema == "" {
		errs = append(errs, errors.New("missing schema"))
	}
	return errs
}

// Options holds the command line flags.
type Options struct {
	ConfigFile string
	flags      Config
}

// AddFlags registers all options. The defaults of the flags are the
// defaults of Config.
func (o *Options) AddFlags(flags *pflag.FlagSet) {
	d := Default()
	f := &o.flags
	flags.StringVar(&o.ConfigFile, "config", "", "config (yaml)")
	flags.StringVar(&f.OutputDir, "output-dir", d.OutputDir, "directory for the output files")
	flags.StringVar(&f.Files.Nodes, "nodes", d.Files.Nodes, "file name for nodes")
	flags.StringVar(&f.Files.NodeTags, "nodes-tags", d.Files.NodeTags, "file name for node tags")
	flags.StringVar(&f.Files.Ways, "ways", d.Files.Ways, "file name for ways")
	flags.StringVar(&f.Files.WayNodes, "ways-nodes", d.Files.WayNodes, "file name for way node references")
	flags.StringVar(&f.Files.WayTags, "ways-tags", d.Files.WayTags, "file name for way tags")
	flags.StringVar(&f.Delimiter, "delimiter", d.Delimiter, "field delimiter of the output files")
	flags.BoolVar(&f.HandCleaning, "hand-cleaning", d.HandCleaning, "apply hand cleaned street name corrections")
	flags.StringVar(&f.CorrectionsFile, "corrections", "", "additional street name corrections (yaml)")
	flags.StringVar(&f.Connection, "connection", "", "load into PostgreSQL instead of writing files")
	flags.StringVar(&f.Schema, "schema", d.Schema, "PostgreSQL schema for the tables")
	flags.StringVar(&f.MetricsFile, "metrics-file", "", "write metrics in Prometheus text format to this file")
	flags.StringVar(&f.HTTPBind, "http", "", "bind address for metrics and profiling server")
	flags.StringVar(&f.LogLevel, "log-level", d.LogLevel, "minimal log level")
	flags.BoolVar(&f.Quiet, "quiet", false, "only log warnings and errors")
}

// Resolve returns the defaults, updated by the config file and all flags
// that were set on the command line. input is used if not empty.
func (o *Options) Resolve(flags *pflag.FlagSet, input string) (Config, error) {
	conf := Default()
	if o.ConfigFile != "" {
		if err := Load(o.ConfigFile, &conf); err != nil {
			return conf, err
		}
	}
	f := &o.flags
	flags.Visit(func(flag *pflag.Flag) {
		switch flag.Name {
		case "output-dir":
			conf.OutputDir = f.OutputDir
		case "nodes":
			conf.Files.Nodes = f.Files.Nodes
		case "nodes-tags":
			conf.Files.NodeTags = f.Files.NodeTags
		case "ways":
			conf.Files.Ways = f.Files.Ways
		case "ways-nodes":
			conf.Files.WayNodes = f.Files.WayNodes
		case "ways-tags":
			conf.Files.WayTags = f.Files.WayTags
		case "delimiter":
			conf.Delimiter = f.Delimiter
		case "hand-cleaning":
			conf.HandCleaning = f.HandCleaning
		case "corrections":
			conf.CorrectionsFile = f.CorrectionsFile
		case "connection":
			conf.Connection = f.Connection
		case "schema":
			conf.Schema = f.Schema
		case "metrics-file":
			conf.MetricsFile = f.MetricsFile
		case "http":
			conf.HTTPBind = f.HTTPBind
		case "log-level":
			conf.LogLevel = f.LogLevel
		case "quiet":
			conf.Quiet = f.Quiet
		}
	})
	if input != "" {
		conf.Input = input
	}
	return conf, nil
}

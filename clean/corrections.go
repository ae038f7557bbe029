package clean

import (
	"io/ioutil"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Corrections maps misspelled street names to their canonical spelling.
// Lookups are exact matches.
type Corrections map[string]string

// DefaultCorrections returns the corrections found while auditing the
// Flensburg extract.
func DefaultCorrections() Corrections {
	return Corrections{
		"Scandinavian Park":             "Scandinavian-Park",
		"Scandinavien-Park":             "Scandinavian-Park",
		"Geheimrat-Dr.-Schaedel-Straße": "Geheimrat-Doktor-Schaedel-Straße",
	}
}

// correctionsFile lists the variants for each canonical name:
//
//	streets:
//	  Scandinavian-Park:
//	    - Scandinavian Park
//	    - Scandinavien-Park
type correctionsFile struct {
	Streets map[string][]string `yaml:"streets"`
}

// LoadCorrections reads corrections from a YAML file.
func LoadCorrections(filename string) (Corrections, error) {
	b, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "reading corrections")
	}
	c, err := ParseCorrections(b)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing corrections %s", filename)
	}
	return c, nil
}

func ParseCorrections(b []byte) (Corrections, error) {
	f := correctionsFile{}
	if err := yaml.UnmarshalStrict(b, &f); err != nil {
		return nil, err
	}
	c := Corrections{}
	canonicals := make([]string, 0, len(f.Streets))
	for canonical := range f.Streets {
		canonicals = append(canonicals, canonical)
	}
	sort.Strings(canonicals)
	for _, canonical := range canonicals {
		for _, variant := range f.Streets[canonical] {
			if err := c.add(variant, canonical); err != nil {
				return nil, err
			}
		}
	}
	if err := c.Check(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c Corrections) add(variant, canonical string) error {
	if variant == canonical {
		return errors.Errorf("%q is listed as variant of itself", variant)
	}
	if prev, ok := c[variant]; ok && prev != canonical {
		return errors.Errorf("%q is a variant of %q and %q", variant, prev, canonical)
	}
	c[variant] = canonical
	return nil
}

// Merge adds all corrections of other. Entries of other win.
func (c Corrections) Merge(other Corrections) error {
	for variant, canonical := range other {
		c[variant] = canonical
	}
	return c.Check()
}

// Check verifies that no canonical name is itself corrected again, so that
// cleaning a cleaned name does not change it.
func (c Corrections) Check() error {
	for variant, canonical := range c {
		if next, ok := c[canonical]; ok {
			return errors.Errorf("correction %q -> %q is corrected again to %q", variant, canonical, next)
		}
	}
	return nil
}

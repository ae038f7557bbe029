package clean

import "strings"

// Street normalizes the spelling of German street names.
//
// Names containing "strasse" get "trasse" replaced by "traße", which keeps
// the capitalization of the leading S. Otherwise the abbreviation "str." is
// expanded to "straße". With handCleaning, "chloss" is replaced by "chloß"
// in names containing "schloss", and the result is looked up in the
// corrections table.
func Street(name string, handCleaning bool, corrections Corrections) string {
	lower := strings.ToLower(name)
	if strings.Contains(lower, "strasse") {
		name = strings.Replace(name, "trasse", "traße", -1)
	} else if strings.Contains(lower, "str.") {
		name = strings.Replace(name, "str.", "straße", -1)
	}

	if !handCleaning {
		return name
	}
	// Hand cleaning also applies to names changed above, so that
	// "Schlossstrasse" and "Schloßstraße" are both cleaned to "Schloßstraße".
	if strings.Contains(strings.ToLower(name), "schloss") {
		name = strings.Replace(name, "chloss", "chloß", -1)
	}
	if corrected, ok := corrections[name]; ok {
		return corrected
	}
	return name
}

/*
Package clean normalizes tag values of street names, postal codes and phone numbers.
*/
package clean

// Names of the cleaners, as returned by Cleaner.Value.
const (
	StreetCleaner     = "street"
	PostalCodeCleaner = "postcode"
	PhoneCleaner      = "phone"
)

// Cleaner selects the cleaner for a tag by its type and key.
type Cleaner struct {
	handCleaning bool
	corrections  Corrections
}

// New returns a Cleaner. corrections are only used with handCleaning and
// can be nil.
func New(handCleaning bool, corrections Corrections) *Cleaner {
	return &Cleaner{handCleaning: handCleaning, corrections: corrections}
}

// Value returns the cleaned value and the name of the cleaner that was
// applied. The name is empty if no cleaner exists for this tag and value is
// returned as is.
func (c *Cleaner) Value(typ, key, value string) (string, string) {
	switch {
	case typ == "addr" && key == "street":
		return Street(value, c.handCleaning, c.corrections), StreetCleaner
	case typ == "addr" && key == "postcode":
		return PostalCode(value), PostalCodeCleaner
	case typ == "regular" && key == "phone":
		return Phone(value), PhoneCleaner
	}
	return value, ""
}

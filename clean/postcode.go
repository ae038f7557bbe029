package clean

import "regexp"

// InvalidPostalCode replaces all postal codes outside of the covered region.
const InvalidPostalCode = "no valid postal code"

// postal codes of northern Germany (20000-25999)
var postalCodeArea = regexp.MustCompile(`^2[0-5][0-9]{3}`)

// PostalCode returns code if it starts with a postal code of the covered
// region, InvalidPostalCode otherwise.
func PostalCode(code string) string {
	if postalCodeArea.MatchString(code) {
		return code
	}
	return InvalidPostalCode
}

package clean

import "strings"

// CountryCode is used for numbers with a national area code prefix.
const CountryCode = "+49"

var phoneSeparators = strings.NewReplacer(
	"/", "",
	"-", "",
	"(", "",
	")", "",
	".", "",
	" ", "",
)

// Phone converts a phone number into the international notation of ITU-T
// E.123, e.g. "0461 1234567" becomes "+49 461 1234567".
//
// Numbers with a foreign country code only get a space after the first
// three characters, as the length of their area code is unknown.
func Phone(number string) string {
	number = phoneSeparators.Replace(number)

	switch {
	case strings.HasPrefix(number, "00"):
		number = "+" + number[2:]
	case strings.HasPrefix(number, "0"):
		number = CountryCode + number[1:]
	}

	if strings.HasPrefix(number, "+") {
		spaced := insertSpace(number, 3)
		if strings.HasPrefix(number, CountryCode) {
			spaced = insertSpace(spaced, 7)
		}
		number = spaced
	}
	return number
}

// insertSpace inserts a space before the rune at index i. The space is
// appended if s is shorter.
func insertSpace(s string, i int) string {
	r := []rune(s)
	if i >= len(r) {
		return s + " "
	}
	return string(r[:i]) + " " + string(r[i:])
}

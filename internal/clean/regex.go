package clean

import "regexp"

// Validation patterns for the derived check columns. These reproduce the
// warehouse's established validation rules verbatim; the check columns exist
// so analysts can filter on them, so changing a pattern changes reported data
// quality downstream.
var (
	// emailRe is an RFC-5322-lite address check: dot-separated local part over
	// the common atom characters, then one or more lowercase labels and a TLD.
	emailRe = regexp.MustCompile(`^[a-z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+(?:\.[a-z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+)*@(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\.)+[a-z0-9](?:[a-z0-9-]*[a-z0-9])?$`)

	// latitudeRe and longitudeRe accept an optional sign, the 0-90 / 0-180
	// range, and at most six decimal places.
	latitudeRe  = regexp.MustCompile(`^(\+|-)?(?:90(?:(?:\.0{1,6})?)|(?:[0-9]|[1-8][0-9])(?:(?:\.[0-9]{1,6})?))$`)
	longitudeRe = regexp.MustCompile(`^(\+|-)?(?:180(?:(?:\.0{1,6})?)|(?:[0-9]|[1-9][0-9]|1[0-7][0-9])(?:(?:\.[0-9]{1,6})?))$`)

	// eanRe matches international article numbers: exactly 8, 12, 13 or 14 digits.
	eanRe = regexp.MustCompile(`^(?:\d{8}|\d{12}|\d{13}|\d{14})$`)

	// productCodeRe is a prefix match (letter, digit, hyphen, digits, optional
	// trailing letter); codes are validated from the start of the string only.
	productCodeRe = regexp.MustCompile(`^[a-zA-Z]\d-[0-9]+[a-zA-Z]?`)

	// uuidRe matches the canonical 8-4-4-4-12 hex form.
	uuidRe = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

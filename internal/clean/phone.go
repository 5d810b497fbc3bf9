package clean

import "regexp"

// phoneRule is one ordered substitution in a country's normalization list.
// Order is significant: the GB "+44(0)" rule must run before the bare "+44"
// rule or the stray "(0)" survives.
type phoneRule struct {
	re   *regexp.Regexp
	repl string
}

// phoneRules normalizes national dialing-prefix conventions per country code.
var phoneRules = map[string][]phoneRule{
	"GB": {
		{regexp.MustCompile(`\+44\(0\)`), "0"},
		{regexp.MustCompile(`\+44`), "0"},
		{regexp.MustCompile(`\(`), ""},
		{regexp.MustCompile(`\)`), ""},
	},
	"DE": {
		{regexp.MustCompile(`\+49\(0\)`), "0"},
	},
	"US": {
		{regexp.MustCompile(`\+1`), ""},
		{regexp.MustCompile(`001-`), ""},
		{regexp.MustCompile(`\(`), ""},
		{regexp.MustCompile(`\)`), ""},
		{regexp.MustCompile(`-`), ""},
		{regexp.MustCompile(`\.`), ""},
	},
}

// phoneChecks validates the normalized number per country.
var phoneChecks = map[string]*regexp.Regexp{
	"GB": regexp.MustCompile(`^(?:(?:\(?(?:0(?:0|11)\)?[\s-]?\(?|\+)44\)?[\s-]?(?:\(?0\)?[\s-]?)?)|(?:\(?0))(?:(?:\d{5}\)?[\s-]?\d{4,5})|(?:\d{4}\)?[\s-]?(?:\d{5}|\d{3}[\s-]?\d{3}))|(?:\d{3}\)?[\s-]?\d{3}[\s-]?\d{3,4})|(?:\d{2}\)?[\s-]?\d{4}[\s-]?\d{4}))(?:[\s-]?(?:x|ext\.?|\#)\d{3,4})?$`),
	"DE": regexp.MustCompile(`^(\(?([\d \-\)\-\+\/\(]+){6,}\)?([ .\--\/]?)([\d]+))`),
	"US": regexp.MustCompile(`^(?:\+?1[-\.\s]?)?\(?([2-9][0-8][0-9])\)?[-\.\s]?([2-9][0-9]{2})[-\.\s]?([0-9]{4})$`),
}

var (
	tenDigitsRe = regexp.MustCompile(`^\d{10}$`)
	usGroupRe   = regexp.MustCompile(`(\d{3})(\d{3})(\d{4})`)
)

// normalizePhone applies the country's substitution list in order and reports
// whether the result satisfies the country's validation pattern. Unrecognized
// country codes pass through unmodified and unchecked.
func normalizePhone(number, countryCode string) (string, bool) {
	for _, rule := range phoneRules[countryCode] {
		number = rule.re.ReplaceAllString(number, rule.repl)
	}
	re, known := phoneChecks[countryCode]
	if !known {
		return number, false
	}
	return number, re.MatchString(number)
}

// formatUSPhone renders an exactly-10-digit US number as (XXX) XXX-XXXX.
// Anything else is returned untouched.
func formatUSPhone(number string) string {
	if !tenDigitsRe.MatchString(number) {
		return number
	}
	return usGroupRe.ReplaceAllString(number, "($1) $2-$3")
}

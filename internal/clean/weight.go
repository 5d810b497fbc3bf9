package clean

import (
	"regexp"
	"strconv"
)

// weightRe decomposes a compound weight expression: a number, an optional
// "x <number>" multiplier, and a trailing unit. Examples: "200g", "2 x 200g",
// "0.75kg", "16oz".
var weightRe = regexp.MustCompile(`(\d+\.\d*|\d*\.\d+|\d+)\s*(?:x\s*(\d+\.\d*|\d*\.\d+|\d+))?\s*([a-zA-Z]+)`)

// kgDivisors converts a parsed quantity into kilograms. Millilitres are
// treated as gram-equivalent (1:1000); that conflates volume with mass but is
// the established warehouse convention for these products.
var kgDivisors = map[string]float64{
	"g":  1000,
	"ml": 1000,
	"oz": 35.27396195,
}

// parseWeightKG parses a raw weight expression and converts it to kilograms.
// When a multiplier is present the two numbers are multiplied first. A unit
// with no known conversion passes the numeric value through unconverted.
// Returns ok=false when the expression has no parsable number+unit.
func parseWeightKG(raw string) (float64, bool) {
	m := weightRe.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}
	w, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	if m[2] != "" {
		mult, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return 0, false
		}
		w *= mult
	}
	if div, known := kgDivisors[m[3]]; known {
		w /= div
	}
	return w, true
}

// weightClasses buckets weight_kg into the ordered, left-closed ranges used by
// the dim_products weight_class column.
var weightClasses = []struct {
	max   float64 // exclusive
	label string
}{
	{2, "Light"},
	{40, "Mid_Sized"},
	{140, "Heavy"},
	{10000, "Truck_Required"},
}

// weightClass assigns the categorical bucket for a weight in kilograms.
// Weights outside [0, 10000) have no class.
func weightClass(kg float64) string {
	if kg < 0 {
		return ""
	}
	for _, c := range weightClasses {
		if kg < c.max {
			return c.label
		}
	}
	return ""
}

package clean

import (
	"strconv"
	"strings"
	"time"

	"salesetl/internal/records"
)

// Store is a cleaned dim_store_details row. Latitude and longitude are
// nullable: the web-order pseudo-store has no physical location.
type Store struct {
	StoreCode      string
	StoreType      string
	OpeningDate    time.Time
	StaffNumbers   int
	Address        string
	Locality       string
	CountryCode    string
	Continent      string
	Latitude       *float64
	Longitude      *float64
	LatitudeCheck  bool
	LongitudeCheck bool
}

// StoreColumns is the canonical dim_store_details column order.
var StoreColumns = []string{
	"store_code", "store_type", "opening_date", "staff_numbers", "address",
	"locality", "country_code", "continent", "latitude", "longitude",
	"latitude_check", "longitude_check",
}

// The raw "lat" column (a dead duplicate) and the source row index are not
// inputs; they are simply never read.
var storeInputColumns = []string{
	"store_code", "store_type", "opening_date", "staff_numbers", "address",
	"locality", "country_code", "continent", "latitude", "longitude",
}

// StoreRows projects stores into warehouse rows in StoreColumns order.
func StoreRows(ss []Store) [][]any {
	rows := make([][]any, len(ss))
	for i, s := range ss {
		var lat, lon any
		if s.Latitude != nil {
			lat = *s.Latitude
		}
		if s.Longitude != nil {
			lon = *s.Longitude
		}
		rows[i] = []any{
			s.StoreCode, s.StoreType, s.OpeningDate, s.StaffNumbers, s.Address,
			s.Locality, s.CountryCode, s.Continent, lat, lon,
			s.LatitudeCheck, s.LongitudeCheck,
		}
	}
	return rows
}

// parseCoord validates a coordinate string against re and parses it. "N/A"
// and empty values become null with a false check.
func parseCoord(s string, check func(string) bool) (*float64, bool) {
	if s == "" || s == "N/A" {
		return nil, false
	}
	ok := check(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, ok
	}
	return &f, ok
}

// Stores cleans a raw store batch. Rows with an unparseable opening date are
// dropped (the API's garbage rows all fail there), the corrupted "ee" prefix
// is removed from continents, staff numbers are reduced to their digits, and
// the mislabeled latitude/longitude inputs are swapped before the range
// checks run.
func Stores(in []records.Record) ([]Store, error) {
	if err := requireColumns("store", in, storeInputColumns...); err != nil {
		return nil, err
	}

	out := make([]Store, 0, len(in))
	for _, r := range in {
		opened, ok := parseDate(r.String("opening_date"))
		if !ok {
			continue
		}

		staff := digitsOnly(r.String("staff_numbers"))
		if staff == "" {
			continue
		}
		staffN, err := strconv.Atoi(staff)
		if err != nil {
			continue
		}

		// The source labels these two columns the wrong way around: the raw
		// "latitude" column holds longitudes and vice versa.
		lat, latOK := parseCoord(r.String("longitude"), latitudeRe.MatchString)
		lon, lonOK := parseCoord(r.String("latitude"), longitudeRe.MatchString)

		out = append(out, Store{
			StoreCode:      r.String("store_code"),
			StoreType:      r.String("store_type"),
			OpeningDate:    opened,
			StaffNumbers:   staffN,
			Address:        r.String("address"),
			Locality:       r.String("locality"),
			CountryCode:    r.String("country_code"),
			Continent:      strings.ReplaceAll(r.String("continent"), "ee", ""),
			Latitude:       lat,
			Longitude:      lon,
			LatitudeCheck:  latOK,
			LongitudeCheck: lonOK,
		})
	}
	return out, nil
}

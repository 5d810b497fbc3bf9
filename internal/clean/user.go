package clean

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"salesetl/internal/records"
)

// User is a cleaned dim_users row.
type User struct {
	FirstName         string
	LastName          string
	DateOfBirth       time.Time
	Company           string
	Address           string
	Country           string
	CountryCode       string
	UserUUID          string
	JoinDate          time.Time
	EmailAddress      string
	EmailAddressCheck bool
	PhoneNumber       string
	PhoneExtension    string
	PhoneNumberCheck  bool
}

// UserColumns is the canonical dim_users column order.
var UserColumns = []string{
	"first_name", "last_name", "date_of_birth", "company", "address",
	"country", "country_code", "user_uuid", "join_date", "email_address",
	"email_address_check", "phone_number", "phone_extension", "phone_number_check",
}

var userInputColumns = []string{
	"first_name", "last_name", "date_of_birth", "company", "address",
	"country", "country_code", "user_uuid", "join_date", "email_address",
	"phone_number",
}

// UserRows projects users into warehouse rows in UserColumns order.
func UserRows(us []User) [][]any {
	rows := make([][]any, len(us))
	for i, u := range us {
		rows[i] = []any{
			u.FirstName, u.LastName, u.DateOfBirth, u.Company, u.Address,
			u.Country, u.CountryCode, u.UserUUID, u.JoinDate, u.EmailAddress,
			u.EmailAddressCheck, u.PhoneNumber, u.PhoneExtension, u.PhoneNumberCheck,
		}
	}
	return rows
}

// emailFold decomposes accented runes and drops the combining marks, so the
// known defect 'ä' collapses to plain 'a'.
var emailFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// fixEmail applies the known data-entry corrections: duplicated '@' collapsed
// to one, diacritics folded to ASCII.
func fixEmail(s string) string {
	s = strings.ReplaceAll(s, "@@", "@")
	if folded, _, err := transform.String(emailFold, s); err == nil {
		s = folded
	}
	return s
}

// Users cleans a raw user batch. Duplicate rows are collapsed, known value
// defects corrected, rows with unparseable dates dropped, the phone extension
// split out, and the email/phone check columns computed against the corrected
// values. Returns an error only when a required column is absent.
func Users(in []records.Record) ([]User, error) {
	if err := requireColumns("user", in, userInputColumns...); err != nil {
		return nil, err
	}
	in = dedupe(in, userInputColumns)

	out := make([]User, 0, len(in))
	for _, r := range in {
		dob, ok := parseDate(r.String("date_of_birth"))
		if !ok {
			continue
		}
		joined, ok := parseDate(r.String("join_date"))
		if !ok {
			continue
		}

		u := User{
			FirstName:   r.String("first_name"),
			LastName:    r.String("last_name"),
			DateOfBirth: dob,
			Company:     r.String("company"),
			Address:     r.String("address"),
			Country:     r.String("country"),
			CountryCode: strings.ReplaceAll(r.String("country_code"), "GGB", "GB"),
			UserUUID:    r.String("user_uuid"),
			JoinDate:    joined,
		}

		u.EmailAddress = fixEmail(r.String("email_address"))
		u.EmailAddressCheck = emailRe.MatchString(u.EmailAddress)

		// Phones: strip spaces, split the extension off at the first literal
		// 'x', then normalize per country and validate the result.
		phone := strings.ReplaceAll(r.String("phone_number"), " ", "")
		if i := strings.IndexByte(phone, 'x'); i >= 0 {
			u.PhoneExtension = phone[i+1:]
			phone = phone[:i]
		}
		phone, checkOK := normalizePhone(phone, u.CountryCode)
		u.PhoneNumberCheck = checkOK
		if u.CountryCode == "US" {
			phone = formatUSPhone(phone)
		}
		u.PhoneNumber = phone

		out = append(out, u)
	}
	return out, nil
}

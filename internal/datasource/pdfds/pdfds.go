// Package pdfds extracts card detail records from PDF statements. The PDF
// text is pulled out page by page and scanned for rows of the tabular layout
// card_number, expiry_date, card_provider, date_payment_confirmed.
package pdfds

import (
	"bytes"
	"regexp"

	"github.com/ledongthuc/pdf"
	"github.com/pkg/errors"

	"salesetl/internal/records"
)

// Column names produced for each extracted card row.
const (
	colCardNumber  = "card_number"
	colExpiryDate  = "expiry_date"
	colProvider    = "card_provider"
	colPaymentDate = "date_payment_confirmed"
)

// rowRe matches one card row in the extracted text: a card number (possibly
// prefixed with stray question marks), an MM/YY expiry, a provider name, and
// a payment date in any of the source's date spellings.
var rowRe = regexp.MustCompile(
	`(\?*\d{8,19})\s+` +
		`(\d{2}/\d{2})\s+` +
		`(\S.*?)\s+` +
		`(\d{4}[-/]\d{1,2}[-/]\d{1,2}` +
		`|\d{4} [A-Za-z]+ \d{1,2}` +
		`|[A-Za-z]+ \d{4} \d{1,2})`,
)

// Retrieve opens the PDF at path and returns every card row found in it.
func Retrieve(path string) ([]records.Record, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "pdfds: open %s", path)
	}
	defer f.Close()

	var buf bytes.Buffer
	plain, err := r.GetPlainText()
	if err != nil {
		return nil, errors.Wrapf(err, "pdfds: extract text from %s", path)
	}
	if _, err := buf.ReadFrom(plain); err != nil {
		return nil, errors.Wrapf(err, "pdfds: extract text from %s", path)
	}

	rows := ParseStatements(buf.String())
	if len(rows) == 0 {
		return nil, errors.Errorf("pdfds: no card rows found in %s", path)
	}
	return rows, nil
}

// ParseStatements scans extracted PDF text for card rows. Text that does not
// form a complete row (headers, page furniture, corrupted entries) is
// skipped.
func ParseStatements(text string) []records.Record {
	var out []records.Record
	for _, m := range rowRe.FindAllStringSubmatch(text, -1) {
		out = append(out, records.Record{
			colCardNumber:  m[1],
			colExpiryDate:  m[2],
			colProvider:    m[3],
			colPaymentDate: m[4],
		})
	}
	return out
}

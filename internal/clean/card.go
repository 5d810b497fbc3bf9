package clean

import (
	"strings"
	"time"

	"salesetl/internal/records"
)

// Card is a cleaned dim_card_details row. The expiry date stays in its MM/YY
// string form (the warehouse stores it as text); it is still parsed during
// cleaning so rows with a broken expiry are dropped.
type Card struct {
	CardNumber           string
	ExpiryDate           string
	CardProvider         string
	DatePaymentConfirmed time.Time
}

// CardColumns is the canonical dim_card_details column order.
var CardColumns = []string{
	"card_number", "expiry_date", "card_provider", "date_payment_confirmed",
}

var cardInputColumns = []string{
	"card_number", "expiry_date", "card_provider", "date_payment_confirmed",
}

// CardRows projects cards into warehouse rows in CardColumns order.
func CardRows(cs []Card) [][]any {
	rows := make([][]any, len(cs))
	for i, c := range cs {
		rows[i] = []any{c.CardNumber, c.ExpiryDate, c.CardProvider, c.DatePaymentConfirmed}
	}
	return rows
}

// Cards cleans a raw card batch. The PDF source contains duplicated rows,
// rows with missing fields, card numbers polluted with letters, and a '?'
// artifact in otherwise valid numbers.
func Cards(in []records.Record) ([]Card, error) {
	if err := requireColumns("card", in, cardInputColumns...); err != nil {
		return nil, err
	}
	in = dedupe(in, cardInputColumns)

	out := make([]Card, 0, len(in))
	for _, r := range in {
		if r.Empty("card_number") || r.Empty("expiry_date") ||
			r.Empty("card_provider") || r.Empty("date_payment_confirmed") {
			continue
		}

		number := r.String("card_number")
		if hasLetter(number) {
			continue
		}
		number = strings.ReplaceAll(number, "?", "")

		expiry := r.String("expiry_date")
		if _, err := time.Parse("01/06", expiry); err != nil {
			continue
		}

		confirmed, ok := parseDate(r.String("date_payment_confirmed"))
		if !ok {
			continue
		}

		out = append(out, Card{
			CardNumber:           number,
			ExpiryDate:           expiry,
			CardProvider:         r.String("card_provider"),
			DatePaymentConfirmed: confirmed,
		})
	}
	return out, nil
}

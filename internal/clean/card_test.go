package clean

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesetl/internal/records"
)

func rawCard(overrides records.Record) records.Record {
	r := records.Record{
		"card_number":            "30060773296197",
		"expiry_date":            "09/26",
		"card_provider":          "Diners Club / Carte Blanche",
		"date_payment_confirmed": "2015-11-25",
	}
	for k, v := range overrides {
		r[k] = v
	}
	return r
}

func TestCards(t *testing.T) {
	t.Parallel()

	out, err := Cards([]records.Record{rawCard(nil)})
	require.NoError(t, err)
	require.Len(t, out, 1)

	c := out[0]
	assert.Equal(t, "30060773296197", c.CardNumber)
	assert.Equal(t, "09/26", c.ExpiryDate)
	assert.Equal(t, "Diners Club / Carte Blanche", c.CardProvider)
	assert.Equal(t, "2015-11-25", c.DatePaymentConfirmed.Format("2006-01-02"))
}

func TestCardsStripsQuestionMarks(t *testing.T) {
	t.Parallel()

	out, err := Cards([]records.Record{rawCard(records.Record{
		"card_number": "??4971858637664481",
	})})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "4971858637664481", out[0].CardNumber)
}

func TestCardsDropsBadRows(t *testing.T) {
	t.Parallel()

	in := []records.Record{
		rawCard(records.Record{"card_number": "VAB9DSB8ZM"}),    // letters
		rawCard(records.Record{"card_number": "NULL"}),          // missing value
		rawCard(records.Record{"expiry_date": "13/26"}),         // month 13
		rawCard(records.Record{"date_payment_confirmed": "xx"}), // bad date
		rawCard(nil),
	}
	out, err := Cards(in)
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestCardsDeduplicates(t *testing.T) {
	t.Parallel()

	r := rawCard(nil)
	out, err := Cards([]records.Record{r, r.Clone(), r.Clone()})
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestCardsTextualPaymentDate(t *testing.T) {
	t.Parallel()

	out, err := Cards([]records.Record{rawCard(records.Record{
		"date_payment_confirmed": "December 2021 10",
	})})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "2021-12-10", out[0].DatePaymentConfirmed.Format("2006-01-02"))
}

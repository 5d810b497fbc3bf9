package clean

import (
	"fmt"
	"time"

	"salesetl/internal/records"
)

// DateEvent is a cleaned dim_date_times row: the composite timestamp plus the
// original parts, which the warehouse keeps as text.
type DateEvent struct {
	DateUUID   string
	DateTime   time.Time
	TimePeriod string
	Month      string
	Year       string
	Day        string
	Timestamp  string
}

// DateColumns is the canonical dim_date_times column order.
var DateColumns = []string{
	"date_uuid", "date_time", "time_period", "month", "year", "day", "timestamp",
}

var dateInputColumns = []string{
	"date_uuid", "time_period", "month", "year", "day", "timestamp",
}

// DateRows projects date events into warehouse rows in DateColumns order.
func DateRows(ds []DateEvent) [][]any {
	rows := make([][]any, len(ds))
	for i, d := range ds {
		rows[i] = []any{
			d.DateUUID, d.DateTime, d.TimePeriod, d.Month, d.Year, d.Day,
			d.Timestamp,
		}
	}
	return rows
}

// Dates cleans a raw date batch. Garbage rows announce themselves with
// letters in the month column; valid rows get a composite date_time derived
// from the year/month/day parts and the HH:MM:SS timestamp.
func Dates(in []records.Record) ([]DateEvent, error) {
	if err := requireColumns("date", in, dateInputColumns...); err != nil {
		return nil, err
	}

	out := make([]DateEvent, 0, len(in))
	for _, r := range in {
		month := r.String("month")
		if hasLetter(month) {
			continue
		}
		composite := fmt.Sprintf("%s-%s-%s %s",
			r.String("year"), month, r.String("day"), r.String("timestamp"))
		dt, err := time.Parse("2006-1-2 15:04:05", composite)
		if err != nil {
			continue
		}
		out = append(out, DateEvent{
			DateUUID:   r.String("date_uuid"),
			DateTime:   dt,
			TimePeriod: r.String("time_period"),
			Month:      month,
			Year:       r.String("year"),
			Day:        r.String("day"),
			Timestamp:  r.String("timestamp"),
		})
	}
	return out, nil
}

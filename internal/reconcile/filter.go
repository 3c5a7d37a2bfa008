package reconcile

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ginjaninja78/retail-sales-cleaner/internal/logger"
	"github.com/ginjaninja78/retail-sales-cleaner/internal/record"
)

// ErrUnparsableDate is wrapped by the *record.MalformedFieldError returned
// when no layout matches a transaction date.
var ErrUnparsableDate = errors.New("date matches no configured layout")

// Result is the partition produced by Filter.
type Result struct {
	Cleaned []*record.Record
	Dropped []*record.Record

	// DroppedCount is always len(store) - len(Cleaned).
	DroppedCount int
}

// Filter partitions the store into retained and dropped records. A record is
// retained iff TotalSpent, UnitPrice, Quantity and Item are all set.
//
// Retained records get Date parsed from RawDate with the first matching
// layout, and DiscountApplied defaulted to false when missing. A date that
// cannot be parsed is a fatal *record.MalformedFieldError naming dateColumn.
//
// Reads every field. Writes Date and DiscountApplied.
func Filter(ctx context.Context, store *record.Store, dateColumn string, layouts []string) (*Result, error) {
	log := logger.FromContext(ctx)

	result := &Result{
		Cleaned: make([]*record.Record, 0, len(store.Records)),
	}

	for _, rec := range store.Records {
		if !rec.Complete() {
			result.Dropped = append(result.Dropped, rec)
			continue
		}

		date, err := ParseDate(rec.RawDate, layouts)
		if err != nil {
			return nil, &record.MalformedFieldError{
				Row:    rec.Row,
				Column: dateColumn,
				Value:  rec.RawDate,
				Err:    err,
			}
		}
		rec.Date = date

		if rec.DiscountApplied == nil {
			rec.DiscountApplied = record.Bool(false)
		}

		result.Cleaned = append(result.Cleaned, rec)
	}

	result.DroppedCount = len(store.Records) - len(result.Cleaned)

	log.Info().
		Int("original", len(store.Records)).
		Int("cleaned", len(result.Cleaned)).
		Int("dropped", result.DroppedCount).
		Msg("records filtered")

	return result, nil
}

// ParseDate tries each layout in order and returns the first match.
func ParseDate(value string, layouts []string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrUnparsableDate
}

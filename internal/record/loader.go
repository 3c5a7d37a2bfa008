package record

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/retail-sales-cleaner/internal/config"
	"github.com/ginjaninja78/retail-sales-cleaner/internal/logger"
	"github.com/ginjaninja78/retail-sales-cleaner/internal/types"
)

// Load builds a Store from a raw table using the configured column mapping.
// Missing cells become nil fields. A present numeric cell that does not parse
// yields a *MalformedFieldError.
func Load(ctx context.Context, table *types.Table, cfg *config.MainConfig) (*Store, error) {
	log := logger.FromContext(ctx)
	cols := cfg.Columns

	if missing := table.MissingColumns(cols.All()...); len(missing) > 0 {
		return nil, fmt.Errorf("missing column(s): %s", strings.Join(missing, ", "))
	}

	store := &Store{
		Headers: append([]string(nil), table.Headers...),
		Records: make([]*Record, 0, len(table.Rows)),
	}

	for _, row := range table.Rows {
		l := rowLoader{row: row, cfg: cfg}

		rec := &Record{
			Row:        row.Number,
			Item:       l.text(cols.Item),
			Category:   l.text(cols.Category),
			UnitPrice:  l.number(cols.PricePerUnit),
			Quantity:   l.number(cols.Quantity),
			TotalSpent: l.number(cols.TotalSpent),
			RawDate:    row.Fields[cols.TransactionDate],
			Source:     row.Fields,
		}
		if loc := l.text(cols.Location); loc != nil {
			rec.Location = *loc
		}

		if raw := l.text(cols.DiscountApplied); raw != nil {
			flag, ok := ParseBool(*raw)
			if !ok {
				log.Warn().Int("row", row.Number).Str("value", *raw).
					Msg("unrecognized discount flag, treating as true")
			}
			rec.DiscountApplied = &flag
		}

		if l.err != nil {
			return nil, l.err
		}
		store.Records = append(store.Records, rec)
	}

	return store, nil
}

// ParseBool interprets a discount flag. The second result is false when the
// token is not a recognized boolean; such a token counts as true because it
// is a present, non-empty value.
func ParseBool(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "y", "t", "1", "1.0":
		return true, true
	case "false", "no", "n", "f", "0", "0.0":
		return false, true
	default:
		return true, false
	}
}

// rowLoader extracts typed fields from one row and keeps the first error.
type rowLoader struct {
	row types.Row
	cfg *config.MainConfig
	err error
}

func (l *rowLoader) text(column string) *string {
	value := l.row.Fields[column]
	if l.cfg.IsNull(value) {
		return nil
	}
	value = strings.TrimSpace(value)
	return &value
}

func (l *rowLoader) number(column string) *decimal.Decimal {
	raw := l.text(column)
	if raw == nil {
		return nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(*raw, ",", ""))
	if err != nil {
		if l.err == nil {
			l.err = &MalformedFieldError{Row: l.row.Number, Column: column, Value: *raw, Err: err}
		}
		return nil
	}
	return &d
}

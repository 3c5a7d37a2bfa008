package report

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/retail-sales-cleaner/internal/kpi"
	"github.com/ginjaninja78/retail-sales-cleaner/internal/record"
)

func summary(t *testing.T, records ...*record.Record) *kpi.Summary {
	t.Helper()
	s, err := kpi.Aggregate(context.Background(), records, 1)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	return s
}

func sale(category, location, total string, discounted bool) *record.Record {
	return &record.Record{
		Item:            record.String("x"),
		Category:        record.String(category),
		TotalSpent:      record.Decimal(decimal.RequireFromString(total)),
		Location:        location,
		DiscountApplied: record.Bool(discounted),
	}
}

func TestRender(t *testing.T) {
	data := &Data{
		OriginalRows: 5,
		CleanedRows:  2,
		DroppedRows:  3,
		Summary: summary(t,
			sale("Beverages", record.LocationOnline, "10", false),
			sale("Food", record.LocationInStore, "20.5", false),
		),
		Collisions: 1,
		RunID:      "run-1",
		Currency:   "R",
	}

	out := Render(data)

	for _, want := range []string{
		"======== RETAIL PERFORMANCE REPORT ========",
		"Original Rows:  5",
		"Cleaned Rows:   2 (Dropped 3 unrecoverable)",
		"Total Revenue:  R30.50",
		"    - Online:   R10.00",
		"    - In-Store: R20.50",
		"    -Full Price: R15.25",
		"    -Discounted: n/a",
		`Top Category:   "Beverages"`,
		"Reference Collisions: 1",
		"Run ID:         run-1",
		"Validation: PASSED (Total == Price * Qty)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Generated:") {
		t.Fatalf("zero GeneratedAt should be omitted")
	}
}

func TestRender_NoCategory(t *testing.T) {
	out := Render(&Data{Summary: summary(t), Currency: "$"})
	if !strings.Contains(out, "Top Category:   n/a") {
		t.Fatalf("expected n/a top category:\n%s", out)
	}
	if !strings.Contains(out, "Total Revenue:  $0.00") {
		t.Fatalf("expected zero revenue:\n%s", out)
	}
}

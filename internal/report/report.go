// =============================================================================
// Retail Sales Cleaner - Text Report
// =============================================================================
//
// This module renders the performance report written after a successful run:
//
//   ======== RETAIL PERFORMANCE REPORT ========
//   Original Rows:  12575
//   Cleaned Rows:   11971 (Dropped 604 unrecoverable)
//   -------------------------------------------
//   Total Revenue:  R1558229.50
//   ...
//   Validation: PASSED (Total == Price * Qty)
//   ===========================================
//
// Monetary values are printed with two decimals and the configured currency
// prefix. An average over an empty partition prints "n/a".
//
// =============================================================================

package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/retail-sales-cleaner/internal/kpi"
)

const (
	rule   = "-------------------------------------------"
	footer = "==========================================="
)

// Data is everything the report prints.
type Data struct {
	OriginalRows int
	CleanedRows  int
	DroppedRows  int

	Summary *kpi.Summary

	// Collisions is the number of reference keys bound to more than one value.
	Collisions int

	RunID       string
	GeneratedAt time.Time

	// Currency prefixes every monetary value.
	Currency string
}

// Render returns the report text.
func Render(data *Data) string {
	s := data.Summary
	var b strings.Builder

	b.WriteString("\n======== RETAIL PERFORMANCE REPORT ========\n")
	fmt.Fprintf(&b, "Original Rows:  %d\n", data.OriginalRows)
	fmt.Fprintf(&b, "Cleaned Rows:   %d (Dropped %d unrecoverable)\n", data.CleanedRows, data.DroppedRows)
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Total Revenue:  %s\n", data.money(s.TotalRevenue))
	fmt.Fprintf(&b, "    - Online:   %s\n", data.money(s.OnlineRevenue))
	fmt.Fprintf(&b, "    - In-Store: %s\n", data.money(s.StoreRevenue))
	b.WriteString(rule + "\n")
	b.WriteString("Average Spent:\n")
	fmt.Fprintf(&b, "    -Full Price: %s\n", data.average(s.AvgFullPrice))
	fmt.Fprintf(&b, "    -Discounted: %s\n", data.average(s.AvgDiscounted))
	b.WriteString(rule + "\n")
	if s.TopCategory.Valid {
		fmt.Fprintf(&b, "Top Category:   %q\n", s.TopCategory.Name)
	} else {
		b.WriteString("Top Category:   n/a\n")
	}
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Reference Collisions: %d\n", data.Collisions)
	if data.RunID != "" {
		fmt.Fprintf(&b, "Run ID:         %s\n", data.RunID)
	}
	if !data.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "Generated:      %s\n", data.GeneratedAt.Format(time.RFC3339))
	}
	b.WriteString(rule + "\n")
	b.WriteString("Validation: PASSED (Total == Price * Qty)\n")
	b.WriteString(footer + "\n")

	return b.String()
}

func (d *Data) money(v decimal.Decimal) string {
	return d.Currency + v.StringFixed(2)
}

func (d *Data) average(v decimal.NullDecimal) string {
	if !v.Valid {
		return "n/a"
	}
	return d.money(v.Decimal)
}

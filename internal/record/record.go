// Package record defines the transaction record, the in-memory record store
// the cleaning stages operate on, and the loader that builds a store from a
// raw table.
//
// A nil pointer field means the value is missing. Stages document which
// fields they read and which they write; nothing outside the reconciler
// writes the nullable sale fields.
package record

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Location values with dedicated revenue buckets.
const (
	LocationOnline  = "Online"
	LocationInStore = "In-store"
)

// Record is one sale event.
type Record struct {
	// Row is the 1-indexed row number in the source file.
	Row int

	Item       *string
	Category   *string
	UnitPrice  *decimal.Decimal
	Quantity   *decimal.Decimal
	TotalSpent *decimal.Decimal

	// RawDate is the transaction date as read. Date is set by the filter.
	RawDate string
	Date    time.Time

	// DiscountApplied is nil when the cell was missing.
	DiscountApplied *bool

	// Location is "Online", "In-store", any other label, or empty when unset.
	Location string

	// Source holds the original cell values keyed by header, used to carry
	// unmapped columns through to the cleaned dataset.
	Source map[string]string
}

// Complete reports whether every field required to keep the record is set.
func (r *Record) Complete() bool {
	return r.TotalSpent != nil && r.UnitPrice != nil && r.Quantity != nil && r.Item != nil
}

// Discounted reports the discount flag, treating a missing flag as false.
func (r *Record) Discounted() bool {
	return r.DiscountApplied != nil && *r.DiscountApplied
}

// CategoryName returns the category, or "" when missing.
func (r *Record) CategoryName() string {
	if r.Category == nil {
		return ""
	}
	return *r.Category
}

// Store is the ordered, mutable collection of records passed between stages.
type Store struct {
	// Headers are the source column headers in file order.
	Headers []string

	Records []*Record
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.Records)
}

// MalformedFieldError reports a present value that cannot be interpreted.
// It is fatal: missing values are expected, malformed ones are not.
type MalformedFieldError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *MalformedFieldError) Error() string {
	return fmt.Sprintf("row %d: malformed %s value %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *MalformedFieldError) Unwrap() error {
	return e.Err
}

// String returns a pointer to s.
func String(s string) *string {
	return &s
}

// Decimal returns a pointer to d.
func Decimal(d decimal.Decimal) *decimal.Decimal {
	return &d
}

// Bool returns a pointer to b.
func Bool(b bool) *bool {
	return &b
}

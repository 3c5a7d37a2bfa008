// =============================================================================
// Retail Sales Cleaner - Consistency Validator
// =============================================================================
//
// This module checks the arithmetic identity on every cleaned record:
//
//   |unit price * quantity - total spent| < 0.01
//
// The check is a post-condition on reconciliation, not a data-quality filter.
// A violation means the reconciler produced an inconsistent record, so the
// pipeline stops before any output artifact is written.
//
// ERROR HANDLING:
//   - Every violating record is collected, not only the first one
//   - Each violation carries the source row and the values involved
//   - The returned *InvariantError wraps ErrInvariantViolated
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/retail-sales-cleaner/internal/record"
)

// DefaultTolerance is the largest accepted absolute difference, exclusive.
var DefaultTolerance = decimal.RequireFromString("0.01")

// ErrInvariantViolated is matched with errors.Is on any *InvariantError.
var ErrInvariantViolated = errors.New("consistency invariant violated: total != price * quantity")

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// Violation describes one record that breaks the identity.
type Violation struct {
	// RowNumber is the source row of the record.
	RowNumber int

	UnitPrice  decimal.Decimal
	Quantity   decimal.Decimal
	TotalSpent decimal.Decimal

	// Difference is |price * quantity - total|.
	Difference decimal.Decimal

	// Message is set instead of the values when a required field is missing.
	Message string
}

// Error implements the error interface.
func (v *Violation) Error() string {
	if v.Message != "" {
		return fmt.Sprintf("[ERROR] Row %d: %s", v.RowNumber, v.Message)
	}
	return fmt.Sprintf("[ERROR] Row %d: %s * %s != %s (difference: %s)",
		v.RowNumber,
		v.UnitPrice.String(),
		v.Quantity.String(),
		v.TotalSpent.String(),
		v.Difference.String(),
	)
}

// InvariantError is the fatal error returned when any record fails the check.
type InvariantError struct {
	Violations []*Violation
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s (%d record(s))", ErrInvariantViolated.Error(), len(e.Violations))
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariantViolated
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if no record violates the identity.
	IsValid bool

	// Violations contains every violating record.
	Violations []*Violation

	// RecordsValidated is the number of records checked.
	RecordsValidated int

	// MaxDifference is the largest difference seen across all records.
	MaxDifference decimal.Decimal
}

// Err returns an *InvariantError listing every violation, or nil when the
// result is valid.
func (r *ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}
	return &InvariantError{Violations: r.Violations}
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator checks the consistency identity.
type Validator struct {
	tolerance decimal.Decimal
}

// NewValidator creates a Validator. A tolerance that is not positive is
// replaced by DefaultTolerance.
func NewValidator(tolerance decimal.Decimal) *Validator {
	if !tolerance.IsPositive() {
		tolerance = DefaultTolerance
	}
	return &Validator{tolerance: tolerance}
}

// ValidateAll checks every record and returns a detailed result.
func (v *Validator) ValidateAll(records []*record.Record) *ValidationResult {
	result := &ValidationResult{
		IsValid:          true,
		RecordsValidated: len(records),
	}

	for _, rec := range records {
		violation, diff := v.ValidateRecord(rec)
		if diff.GreaterThan(result.MaxDifference) {
			result.MaxDifference = diff
		}
		if violation != nil {
			result.Violations = append(result.Violations, violation)
			result.IsValid = false
		}
	}

	return result
}

// ValidateRecord checks a single record. It returns the violation, if any,
// and the absolute difference.
func (v *Validator) ValidateRecord(rec *record.Record) (*Violation, decimal.Decimal) {
	if rec.UnitPrice == nil || rec.Quantity == nil || rec.TotalSpent == nil {
		return &Violation{
			RowNumber: rec.Row,
			Message:   "price, quantity or total is missing on a cleaned record",
		}, decimal.Zero
	}

	diff := rec.UnitPrice.Mul(*rec.Quantity).Sub(*rec.TotalSpent).Abs()
	if diff.LessThan(v.tolerance) {
		return nil, diff
	}

	return &Violation{
		RowNumber:  rec.Row,
		UnitPrice:  *rec.UnitPrice,
		Quantity:   *rec.Quantity,
		TotalSpent: *rec.TotalSpent,
		Difference: diff,
	}, diff
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatViolations formats violations for display or logging.
//
// PARAMETERS:
//   - violations: The violations to format.
//
// RETURNS:
//   - A formatted string containing all violations.
func FormatViolations(violations []*Violation) string {
	if len(violations) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation failed with %d error(s):\n\n", len(violations)))

	for i, v := range violations {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, v.Error()))
	}

	return builder.String()
}

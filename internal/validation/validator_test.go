package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/retail-sales-cleaner/internal/record"
)

func sale(row int, price, qty, total string) *record.Record {
	return &record.Record{
		Row:        row,
		Item:       record.String("Soda"),
		UnitPrice:  record.Decimal(decimal.RequireFromString(price)),
		Quantity:   record.Decimal(decimal.RequireFromString(qty)),
		TotalSpent: record.Decimal(decimal.RequireFromString(total)),
	}
}

func TestValidateAll(t *testing.T) {
	tests := []struct {
		name    string
		records []*record.Record
		wantErr bool
	}{
		{"empty", nil, false},
		{"exact", []*record.Record{sale(2, "2.50", "4", "10.00")}, false},
		{"within tolerance", []*record.Record{sale(2, "3.3333333333333333", "3", "10")}, false},
		{"just under tolerance", []*record.Record{sale(2, "1", "1", "1.009")}, false},
		{"at tolerance", []*record.Record{sale(2, "1", "1", "1.01")}, true},
		{"far off", []*record.Record{sale(2, "2", "2", "5")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidator(DefaultTolerance).ValidateAll(tt.records).Err()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateAll err=%v wantErr=%v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvariantViolated) {
				t.Fatalf("error should wrap ErrInvariantViolated: %v", err)
			}
		})
	}
}

func TestValidate_ListsEveryViolation(t *testing.T) {
	records := []*record.Record{
		sale(2, "2", "2", "5"),
		sale(3, "1", "1", "1"),
		sale(4, "3", "1", "1"),
	}

	err := NewValidator(DefaultTolerance).ValidateAll(records).Err()
	var inv *InvariantError
	if !errors.As(err, &inv) {
		t.Fatalf("expected InvariantError, got %v", err)
	}
	if len(inv.Violations) != 2 {
		t.Fatalf("violations got=%d want=%d", len(inv.Violations), 2)
	}
	if inv.Violations[0].RowNumber != 2 || inv.Violations[1].RowNumber != 4 {
		t.Fatalf("unexpected rows: %d, %d", inv.Violations[0].RowNumber, inv.Violations[1].RowNumber)
	}
	if !inv.Violations[1].Difference.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("difference got=%s want=2", inv.Violations[1].Difference)
	}

	out := FormatViolations(inv.Violations)
	if !strings.Contains(out, "2 error(s)") || !strings.Contains(out, "Row 4") {
		t.Fatalf("unexpected format output:\n%s", out)
	}
}

func TestValidateAll_MissingFieldIsViolation(t *testing.T) {
	rec := sale(7, "1", "1", "1")
	rec.Quantity = nil

	result := NewValidator(DefaultTolerance).ValidateAll([]*record.Record{rec})
	if result.IsValid || len(result.Violations) != 1 {
		t.Fatalf("expected one violation, got %+v", result)
	}
	if !strings.Contains(result.Violations[0].Error(), "missing") {
		t.Fatalf("unexpected message: %s", result.Violations[0].Error())
	}
}

func TestValidateAll_MaxDifference(t *testing.T) {
	result := NewValidator(DefaultTolerance).ValidateAll([]*record.Record{
		sale(2, "1", "1", "1.004"),
		sale(3, "1", "1", "1.002"),
	})
	if !result.IsValid {
		t.Fatalf("expected valid result")
	}
	if !result.MaxDifference.Equal(decimal.RequireFromString("0.004")) {
		t.Fatalf("MaxDifference got=%s want=0.004", result.MaxDifference)
	}
	if FormatViolations(nil) != "No validation errors." {
		t.Fatalf("unexpected empty format")
	}
}

func TestNewValidator_Tolerance(t *testing.T) {
	records := []*record.Record{sale(2, "1", "1", "1.04")}

	if err := NewValidator(decimal.RequireFromString("0.05")).ValidateAll(records).Err(); err != nil {
		t.Fatalf("0.04 should pass with tolerance 0.05: %v", err)
	}
	if err := NewValidator(decimal.Zero).ValidateAll(records).Err(); err == nil {
		t.Fatalf("zero tolerance should fall back to the default and reject 0.04")
	}
	if err := NewValidator(decimal.RequireFromString("-1")).ValidateAll(records).Err(); err == nil {
		t.Fatalf("negative tolerance should fall back to the default and reject 0.04")
	}
}

package record

import (
	"context"
	"errors"
	"testing"

	"github.com/ginjaninja78/retail-sales-cleaner/internal/config"
	"github.com/ginjaninja78/retail-sales-cleaner/internal/types"
)

var headers = []string{
	"Transaction ID", "Transaction Date", "Item", "Category", "Price Per Unit",
	"Quantity", "Total Spent", "Discount Applied", "Location",
}

func row(n int, values ...string) types.Row {
	fields := make(map[string]string, len(headers))
	for i, h := range headers {
		if i < len(values) {
			fields[h] = values[i]
		}
	}
	return types.Row{Number: n, Fields: fields}
}

func TestLoad_MapsFieldsAndNulls(t *testing.T) {
	table := &types.Table{
		Headers: headers,
		Rows: []types.Row{
			row(2, "TXN_1", "2023-01-01", "Soda", "Beverages", "2.50", "4", "10.00", "True", "Online"),
			row(3, "TXN_2", "2023-01-02", "", "NaN", "", "3", "9", "", "In-store"),
			row(4, "TXN_3", "2023-01-03", "Widget", "Tools", "3", "1", "3", "maybe", ""),
		},
	}

	store, err := Load(context.Background(), table, config.Default())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if store.Len() != 3 {
		t.Fatalf("Len got=%d want=%d", store.Len(), 3)
	}

	first := store.Records[0]
	if first.Row != 2 || *first.Item != "Soda" || *first.Category != "Beverages" {
		t.Fatalf("first record mapped wrong: %+v", first)
	}
	if first.UnitPrice.String() != "2.5" || first.TotalSpent.String() != "10" {
		t.Fatalf("decimals got price=%s total=%s", first.UnitPrice, first.TotalSpent)
	}
	if !first.Discounted() || first.Location != LocationOnline {
		t.Fatalf("discount/location got=%v/%q", first.Discounted(), first.Location)
	}
	if first.Source["Transaction ID"] != "TXN_1" {
		t.Fatalf("source passthrough missing: %v", first.Source)
	}

	second := store.Records[1]
	if second.Item != nil || second.Category != nil || second.UnitPrice != nil {
		t.Fatalf("expected nil item/category/price, got %+v", second)
	}
	if second.DiscountApplied != nil {
		t.Fatalf("expected nil discount, got %v", *second.DiscountApplied)
	}
	if second.Complete() {
		t.Fatalf("second record must not be complete")
	}

	third := store.Records[2]
	if !third.Discounted() {
		t.Fatalf("unrecognized discount token should count as true")
	}
	if third.Location != "" {
		t.Fatalf("empty location got=%q", third.Location)
	}
	if !third.Complete() {
		t.Fatalf("third record should be complete")
	}
}

func TestLoad_MalformedNumber(t *testing.T) {
	table := &types.Table{
		Headers: headers,
		Rows: []types.Row{
			row(7, "TXN_1", "2023-01-01", "Soda", "Beverages", "two", "4", "10", "", "Online"),
		},
	}

	_, err := Load(context.Background(), table, config.Default())
	var mf *MalformedFieldError
	if !errors.As(err, &mf) {
		t.Fatalf("expected MalformedFieldError, got %v", err)
	}
	if mf.Row != 7 || mf.Column != "Price Per Unit" || mf.Value != "two" {
		t.Fatalf("unexpected error detail: %+v", mf)
	}
}

func TestLoad_MissingColumn(t *testing.T) {
	table := &types.Table{Headers: []string{"Item", "Category"}}
	if _, err := Load(context.Background(), table, config.Default()); err == nil {
		t.Fatalf("expected missing column error")
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		in     string
		want   bool
		wantOK bool
	}{
		{"True", true, true},
		{"false", false, true},
		{" Y ", true, true},
		{"0", false, true},
		{"1.0", true, true},
		{"whatever", true, false},
	}
	for _, tt := range tests {
		got, ok := ParseBool(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseBool(%q) = %v,%v want %v,%v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

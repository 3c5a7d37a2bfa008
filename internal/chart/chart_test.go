package chart

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/retail-sales-cleaner/internal/kpi"
	"github.com/ginjaninja78/retail-sales-cleaner/internal/record"
)

func totals(t *testing.T) *kpi.CategoryLocationTotals {
	t.Helper()
	sale := func(category, location, total string) *record.Record {
		return &record.Record{
			Item:       record.String("x"),
			Category:   record.String(category),
			TotalSpent: record.Decimal(decimal.RequireFromString(total)),
			Location:   location,
		}
	}
	s, err := kpi.Aggregate(context.Background(), []*record.Record{
		sale("Food", record.LocationOnline, "120"),
		sale("Food", record.LocationInStore, "80"),
		sale("Toys", record.LocationOnline, "45.5"),
	}, 1)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	return s.Totals
}

func hasColor(img image.Image, want color.NRGBA) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if color.NRGBAModel.Convert(img.At(x, y)) == want {
				return true
			}
		}
	}
	return false
}

func TestRender(t *testing.T) {
	r, err := NewRenderer(800, 500, "R")
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, totals(t)); err != nil {
		t.Fatalf("Render: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := img.Bounds().Size(); got.X != 800 || got.Y != 500 {
		t.Fatalf("size got=%v want=800x500", got)
	}
	// One bar color per location.
	if !hasColor(img, palette[0]) || !hasColor(img, palette[1]) {
		t.Fatalf("expected bars for both locations")
	}
	if hasColor(img, palette[2]) {
		t.Fatalf("unexpected third series color")
	}
}

func TestRender_Empty(t *testing.T) {
	r, err := NewRenderer(400, 300, "R")
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestNiceStep(t *testing.T) {
	tests := []struct {
		limit float64
		want  float64
	}{
		{0, 1},
		{10, 2},
		{120, 25},
		{1000, 200},
		{1, 0.2},
	}
	for _, tt := range tests {
		if got := niceStep(tt.limit, 5); got != tt.want {
			t.Errorf("niceStep(%v) got=%v want=%v", tt.limit, got, tt.want)
		}
	}
}

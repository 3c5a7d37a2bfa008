package kpi

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/retail-sales-cleaner/internal/record"
)

func sale(category, location string, total string, discounted bool) *record.Record {
	rec := &record.Record{
		Item:            record.String("x"),
		TotalSpent:      record.Decimal(decimal.RequireFromString(total)),
		Location:        location,
		DiscountApplied: record.Bool(discounted),
	}
	if category != "" {
		rec.Category = record.String(category)
	}
	return rec
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAggregate_RevenueByLocation(t *testing.T) {
	records := []*record.Record{
		sale("Beverages", record.LocationOnline, "10.00", false),
		sale("Food", record.LocationInStore, "20.00", true),
	}

	s, err := Aggregate(context.Background(), records, 1)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if !s.TotalRevenue.Equal(d("30.00")) {
		t.Fatalf("TotalRevenue got=%s want=30.00", s.TotalRevenue)
	}
	if !s.OnlineRevenue.Equal(d("10.00")) {
		t.Fatalf("OnlineRevenue got=%s want=10.00", s.OnlineRevenue)
	}
	if !s.StoreRevenue.Equal(d("20.00")) {
		t.Fatalf("StoreRevenue got=%s want=20.00", s.StoreRevenue)
	}
	if !s.AvgFullPrice.Valid || !s.AvgFullPrice.Decimal.Equal(d("10")) {
		t.Fatalf("AvgFullPrice got=%v", s.AvgFullPrice)
	}
	if !s.AvgDiscounted.Valid || !s.AvgDiscounted.Decimal.Equal(d("20")) {
		t.Fatalf("AvgDiscounted got=%v", s.AvgDiscounted)
	}
}

func TestAggregate_OtherLocationsOnlyInTotal(t *testing.T) {
	records := []*record.Record{
		sale("Food", "Kiosk", "5", false),
		sale("Food", "", "7", false),
		sale("Food", record.LocationOnline, "1", false),
	}

	s, err := Aggregate(context.Background(), records, 1)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if !s.TotalRevenue.Equal(d("13")) {
		t.Fatalf("TotalRevenue got=%s want=13", s.TotalRevenue)
	}
	if !s.OnlineRevenue.Equal(d("1")) || !s.StoreRevenue.IsZero() {
		t.Fatalf("buckets got online=%s store=%s", s.OnlineRevenue, s.StoreRevenue)
	}
	if len(s.Totals.Locations) != 2 {
		t.Fatalf("locations got=%v want [Kiosk Online]", s.Totals.Locations)
	}
}

func TestAggregate_EmptyPartitionsAreUndefined(t *testing.T) {
	s, err := Aggregate(context.Background(), []*record.Record{
		sale("Food", record.LocationOnline, "4", false),
	}, 1)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if s.AvgDiscounted.Valid {
		t.Fatalf("AvgDiscounted should be undefined, got %s", s.AvgDiscounted.Decimal)
	}

	empty, err := Aggregate(context.Background(), nil, 1)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if empty.AvgFullPrice.Valid || empty.AvgDiscounted.Valid || empty.TopCategory.Valid {
		t.Fatalf("empty input should leave averages and top category undefined: %+v", empty)
	}
	if !empty.TotalRevenue.IsZero() {
		t.Fatalf("TotalRevenue got=%s want=0", empty.TotalRevenue)
	}
}

func TestAggregate_TopCategoryTieBreak(t *testing.T) {
	records := []*record.Record{
		sale("", record.LocationOnline, "1", false),
		sale("", record.LocationOnline, "1", false),
		sale("", record.LocationOnline, "1", false),
		sale("Toys", record.LocationOnline, "1", false),
		sale("Food", record.LocationOnline, "1", false),
		sale("Food", record.LocationOnline, "1", false),
		sale("Toys", record.LocationOnline, "1", false),
	}

	s, err := Aggregate(context.Background(), records, 1)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if s.TopCategory.Name != "Toys" || s.TopCategory.Count != 2 {
		t.Fatalf("TopCategory got=%+v want Toys/2", s.TopCategory)
	}
}

func TestAggregate_ShardedMatchesInline(t *testing.T) {
	var records []*record.Record
	categories := []string{"Food", "Toys", "Beverages", ""}
	locations := []string{record.LocationOnline, record.LocationInStore, ""}
	for i := 0; i < 97; i++ {
		records = append(records, sale(
			categories[i%len(categories)],
			locations[i%len(locations)],
			decimal.NewFromInt(int64(i)).Div(decimal.NewFromInt(4)).String(),
			i%5 == 0,
		))
	}

	inline, err := Aggregate(context.Background(), records, 1)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	sharded, err := Aggregate(context.Background(), records, 6)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if !inline.TotalRevenue.Equal(sharded.TotalRevenue) ||
		!inline.OnlineRevenue.Equal(sharded.OnlineRevenue) ||
		!inline.AvgDiscounted.Decimal.Equal(sharded.AvgDiscounted.Decimal) {
		t.Fatalf("sharded sums differ")
	}
	if inline.TopCategory != sharded.TopCategory {
		t.Fatalf("TopCategory inline=%+v sharded=%+v", inline.TopCategory, sharded.TopCategory)
	}
	for i, c := range inline.Totals.Categories {
		if sharded.Totals.Categories[i] != c {
			t.Fatalf("category order differs at %d", i)
		}
		for _, loc := range inline.Totals.Locations {
			if !inline.Totals.Get(c, loc).Equal(sharded.Totals.Get(c, loc)) {
				t.Fatalf("total %s/%s differs", c, loc)
			}
		}
	}
}

func TestCategoryLocationTotals(t *testing.T) {
	s, err := Aggregate(context.Background(), []*record.Record{
		sale("Food", record.LocationOnline, "3", false),
		sale("Toys", record.LocationInStore, "8", false),
		sale("Food", record.LocationOnline, "4", true),
		sale("Food", record.LocationInStore, "1", false),
	}, 1)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	totals := s.Totals
	if len(totals.Categories) != 2 || totals.Categories[0] != "Food" {
		t.Fatalf("Categories got=%v", totals.Categories)
	}
	if totals.Locations[0] != record.LocationInStore || totals.Locations[1] != record.LocationOnline {
		t.Fatalf("Locations got=%v", totals.Locations)
	}
	if !totals.Get("Food", record.LocationOnline).Equal(d("7")) {
		t.Fatalf("Food/Online got=%s want=7", totals.Get("Food", record.LocationOnline))
	}
	if !totals.Get("Toys", record.LocationOnline).IsZero() {
		t.Fatalf("absent pair should be zero")
	}
	if !totals.Max().Equal(d("8")) {
		t.Fatalf("Max got=%s want=8", totals.Max())
	}
}

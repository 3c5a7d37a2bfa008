// Package kpi reduces a cleaned record set to the summary figures used by the
// report and the chart. The reduction is read-only and may be computed over
// contiguous shards and merged in order.
package kpi

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/retail-sales-cleaner/internal/logger"
	"github.com/ginjaninja78/retail-sales-cleaner/internal/record"
)

// TopCategory is the most frequent category. Valid is false when no record
// has a category.
type TopCategory struct {
	Name  string
	Count int
	Valid bool
}

// Summary holds the computed KPIs.
type Summary struct {
	Records int

	TotalRevenue  decimal.Decimal
	OnlineRevenue decimal.Decimal
	StoreRevenue  decimal.Decimal
	OnlineCount   int
	StoreCount    int

	// AvgFullPrice and AvgDiscounted are not Valid when their partition is empty.
	AvgFullPrice    decimal.NullDecimal
	AvgDiscounted   decimal.NullDecimal
	FullPriceCount  int
	DiscountedCount int

	TopCategory TopCategory

	// Totals is total spent by category and location, for the chart.
	Totals *CategoryLocationTotals
}

// CategoryLocationTotals is total spent keyed by category then location.
// Categories keep first-appearance order; locations are sorted. Records
// without a category or location are left out.
type CategoryLocationTotals struct {
	Categories []string
	Locations  []string
	sums       map[string]map[string]decimal.Decimal
}

// Get returns the total for a category and location, zero when absent.
func (t *CategoryLocationTotals) Get(category, location string) decimal.Decimal {
	return t.sums[category][location]
}

// Max returns the largest single total.
func (t *CategoryLocationTotals) Max() decimal.Decimal {
	top := decimal.Zero
	for _, byLoc := range t.sums {
		for _, v := range byLoc {
			if v.GreaterThan(top) {
				top = v
			}
		}
	}
	return top
}

// Accumulator is a partial reduction. Zero value is not usable; use
// NewAccumulator.
type Accumulator struct {
	records int

	total, online, store    decimal.Decimal
	onlineCount, storeCount int

	fullSum, discSum     decimal.Decimal
	fullCount, discCount int

	categories []string
	counts     map[string]int

	locations map[string]struct{}
	sums      map[string]map[string]decimal.Decimal
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		counts:    make(map[string]int),
		locations: make(map[string]struct{}),
		sums:      make(map[string]map[string]decimal.Decimal),
	}
}

// Add folds one cleaned record into the accumulator. Records without a
// total are ignored.
func (a *Accumulator) Add(rec *record.Record) {
	if rec.TotalSpent == nil {
		return
	}
	amount := *rec.TotalSpent
	a.records++
	a.total = a.total.Add(amount)

	switch rec.Location {
	case record.LocationOnline:
		a.online = a.online.Add(amount)
		a.onlineCount++
	case record.LocationInStore:
		a.store = a.store.Add(amount)
		a.storeCount++
	}

	if rec.Discounted() {
		a.discSum = a.discSum.Add(amount)
		a.discCount++
	} else {
		a.fullSum = a.fullSum.Add(amount)
		a.fullCount++
	}

	if rec.Category == nil {
		return
	}
	category := *rec.Category
	a.countCategory(category, 1)

	if rec.Location == "" {
		return
	}
	a.addTotal(category, rec.Location, amount)
}

// Merge folds b into a. b must cover records that come after a's.
func (a *Accumulator) Merge(b *Accumulator) {
	a.records += b.records
	a.total = a.total.Add(b.total)
	a.online = a.online.Add(b.online)
	a.store = a.store.Add(b.store)
	a.onlineCount += b.onlineCount
	a.storeCount += b.storeCount
	a.fullSum = a.fullSum.Add(b.fullSum)
	a.discSum = a.discSum.Add(b.discSum)
	a.fullCount += b.fullCount
	a.discCount += b.discCount

	for _, category := range b.categories {
		a.countCategory(category, b.counts[category])
	}
	for category, byLoc := range b.sums {
		for location, v := range byLoc {
			a.addTotal(category, location, v)
		}
	}
}

func (a *Accumulator) countCategory(category string, n int) {
	if _, ok := a.counts[category]; !ok {
		a.categories = append(a.categories, category)
	}
	a.counts[category] += n
}

func (a *Accumulator) addTotal(category, location string, amount decimal.Decimal) {
	byLoc, ok := a.sums[category]
	if !ok {
		byLoc = make(map[string]decimal.Decimal)
		a.sums[category] = byLoc
	}
	byLoc[location] = byLoc[location].Add(amount)
	a.locations[location] = struct{}{}
}

// Summary computes the KPIs from the accumulated values.
func (a *Accumulator) Summary() *Summary {
	s := &Summary{
		Records:         a.records,
		TotalRevenue:    a.total,
		OnlineRevenue:   a.online,
		StoreRevenue:    a.store,
		OnlineCount:     a.onlineCount,
		StoreCount:      a.storeCount,
		AvgFullPrice:    mean(a.fullSum, a.fullCount),
		AvgDiscounted:   mean(a.discSum, a.discCount),
		FullPriceCount:  a.fullCount,
		DiscountedCount: a.discCount,
	}

	for _, category := range a.categories {
		if n := a.counts[category]; n > s.TopCategory.Count {
			s.TopCategory = TopCategory{Name: category, Count: n, Valid: true}
		}
	}

	totals := &CategoryLocationTotals{sums: a.sums}
	for _, category := range a.categories {
		if _, ok := a.sums[category]; ok {
			totals.Categories = append(totals.Categories, category)
		}
	}
	for location := range a.locations {
		totals.Locations = append(totals.Locations, location)
	}
	sort.Strings(totals.Locations)
	s.Totals = totals

	return s
}

func mean(sum decimal.Decimal, n int) decimal.NullDecimal {
	if n == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(sum.Div(decimal.NewFromInt(int64(n))))
}

// Aggregate computes the KPIs over the cleaned records. With workers > 1 the
// records are reduced in contiguous shards and merged in order.
func Aggregate(ctx context.Context, records []*record.Record, workers int) (*Summary, error) {
	log := logger.FromContext(ctx)

	shards := shard(records, workers)
	parts := make([]*Accumulator, len(shards))

	g, gctx := errgroup.WithContext(ctx)
	for i, part := range shards {
		i, part := i, part
		g.Go(func() error {
			acc := NewAccumulator()
			for _, rec := range part {
				if err := gctx.Err(); err != nil {
					return err
				}
				acc.Add(rec)
			}
			parts[i] = acc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := NewAccumulator()
	for _, p := range parts {
		total.Merge(p)
	}
	summary := total.Summary()

	log.Info().
		Int("records", summary.Records).
		Str("total_revenue", summary.TotalRevenue.StringFixed(2)).
		Str("top_category", summary.TopCategory.Name).
		Msg("kpis computed")

	return summary, nil
}

func shard(records []*record.Record, n int) [][]*record.Record {
	if n <= 1 || len(records) < 2 {
		return [][]*record.Record{records}
	}
	if n > len(records) {
		n = len(records)
	}
	size := (len(records) + n - 1) / n
	out := make([][]*record.Record, 0, n)
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		out = append(out, records[start:end])
	}
	return out
}

package reconcile

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/retail-sales-cleaner/internal/logger"
	"github.com/ginjaninja78/retail-sales-cleaner/internal/record"
)

// Stats counts the fields filled by each rule.
type Stats struct {
	PriceFromItem       int
	PriceFromArithmetic int
	ItemFromPrice       int
	TotalFromPrice      int

	// ZeroQuantity counts records where the price could not be derived
	// because the quantity was zero.
	ZeroQuantity int
}

// Filled returns the total number of fields written.
func (s Stats) Filled() int {
	return s.PriceFromItem + s.PriceFromArithmetic + s.ItemFromPrice + s.TotalFromPrice
}

func (s *Stats) add(o Stats) {
	s.PriceFromItem += o.PriceFromItem
	s.PriceFromArithmetic += o.PriceFromArithmetic
	s.ItemFromPrice += o.ItemFromPrice
	s.TotalFromPrice += o.TotalFromPrice
	s.ZeroQuantity += o.ZeroQuantity
}

// Reconciler fills missing fields in place from the references and the
// identity total = price * quantity.
//
// Reads Item, Category, UnitPrice, Quantity, TotalSpent.
// Writes UnitPrice, Item, TotalSpent.
type Reconciler struct {
	refs    *References
	workers int
}

// NewReconciler creates a Reconciler. workers <= 1 reconciles inline.
func NewReconciler(refs *References, workers int) *Reconciler {
	if workers < 1 {
		workers = 1
	}
	return &Reconciler{refs: refs, workers: workers}
}

// Reconcile applies the rules to every record of the store. Records are never
// added or removed. Each rule reads only its own record and the references,
// so shards may run concurrently.
func (r *Reconciler) Reconcile(ctx context.Context, store *record.Store) (Stats, error) {
	log := logger.FromContext(ctx)

	var total Stats
	shards := split(store.Records, r.workers)
	if len(shards) <= 1 {
		for _, rec := range store.Records {
			total.add(r.Apply(rec))
		}
	} else {
		results := make([]Stats, len(shards))
		g, gctx := errgroup.WithContext(ctx)
		for i, shard := range shards {
			i, shard := i, shard
			g.Go(func() error {
				for _, rec := range shard {
					if err := gctx.Err(); err != nil {
						return err
					}
					results[i].add(r.Apply(rec))
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return Stats{}, err
		}
		for _, s := range results {
			total.add(s)
		}
	}

	log.Debug().
		Int("price_from_item", total.PriceFromItem).
		Int("price_from_arithmetic", total.PriceFromArithmetic).
		Int("item_from_price", total.ItemFromPrice).
		Int("total_from_price", total.TotalFromPrice).
		Int("zero_quantity", total.ZeroQuantity).
		Int("shards", len(shards)).
		Msg("reconciliation finished")

	return total, nil
}

// Apply runs the four rules, in order, on a single record.
func (r *Reconciler) Apply(rec *record.Record) Stats {
	var s Stats

	// Rule 1: price from item.
	if rec.UnitPrice == nil && rec.Item != nil {
		if price, ok := r.refs.PriceFor(*rec.Item); ok {
			rec.UnitPrice = record.Decimal(price)
			s.PriceFromItem++
		}
	}

	// Rule 2: price from total / quantity.
	if rec.UnitPrice == nil && rec.Quantity != nil && rec.TotalSpent != nil {
		if rec.Quantity.IsZero() {
			s.ZeroQuantity++
		} else {
			rec.UnitPrice = record.Decimal(rec.TotalSpent.Div(*rec.Quantity))
			s.PriceFromArithmetic++
		}
	}

	// Rule 3: item from (category, price), exact match only.
	if rec.Item == nil && rec.UnitPrice != nil && rec.Category != nil {
		if item, ok := r.refs.ItemFor(*rec.Category, *rec.UnitPrice); ok {
			rec.Item = record.String(item)
			s.ItemFromPrice++
		}
	}

	// Rule 4: total from price * quantity.
	if rec.TotalSpent == nil && rec.UnitPrice != nil && rec.Quantity != nil {
		rec.TotalSpent = record.Decimal(rec.UnitPrice.Mul(*rec.Quantity))
		s.TotalFromPrice++
	}

	return s
}

// split cuts records into at most n contiguous shards.
func split(records []*record.Record, n int) [][]*record.Record {
	if n <= 1 || len(records) < 2 {
		return [][]*record.Record{records}
	}
	if n > len(records) {
		n = len(records)
	}
	size := (len(records) + n - 1) / n
	shards := make([][]*record.Record, 0, n)
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		shards = append(shards, records[start:end])
	}
	return shards
}

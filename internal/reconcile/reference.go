// =============================================================================
// Retail Sales Cleaner - Reference Builder
// =============================================================================
//
// This module builds the lookup tables the reconciler uses to fill missing
// fields. Only records with an item, a category and a unit price take part.
//
//   Map A: (category, unit price) -> item
//   Map B: item -> unit price
//
// Entries are deduplicated by (category, price, item) in first-seen order and
// then indexed. When two distinct values compete for one key the later entry
// wins; every such collision is kept on References and logged.
//
// Prices are keyed by their canonical decimal string, so "2.5" and "2.50" are
// the same key. There is no tolerance beyond that.
//
// =============================================================================

package reconcile

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/retail-sales-cleaner/internal/logger"
	"github.com/ginjaninja78/retail-sales-cleaner/internal/record"
)

// Map names used in Collision.Map.
const (
	MapItemByCategoryPrice = "category_price_to_item"
	MapPriceByItem         = "item_to_price"
)

// References holds the read-only lookup tables. It is never modified after
// BuildReferences returns, so it may be shared across goroutines.
type References struct {
	itemByCategoryPrice map[string]string
	priceByItem         map[string]decimal.Decimal

	// Entries is the number of distinct (category, price, item) triples indexed.
	Entries int

	// Collisions lists keys that were bound to more than one value.
	Collisions []Collision
}

// Collision describes a key that was rebound while indexing.
type Collision struct {
	Map      string
	Key      string
	Replaced string
	Kept     string
}

type triple struct {
	category string
	price    decimal.Decimal
	item     string
}

// BuildReferences scans the store for reference-eligible records and indexes
// them. Reads Item, Category and UnitPrice. Writes nothing.
func BuildReferences(ctx context.Context, store *record.Store) *References {
	log := logger.FromContext(ctx)

	refs := &References{
		itemByCategoryPrice: make(map[string]string),
		priceByItem:         make(map[string]decimal.Decimal),
	}

	// Deduplicate in first-seen order.
	seen := make(map[string]struct{})
	var entries []triple
	for _, rec := range store.Records {
		if rec.Item == nil || rec.Category == nil || rec.UnitPrice == nil {
			continue
		}
		t := triple{category: *rec.Category, price: *rec.UnitPrice, item: *rec.Item}
		k := categoryPriceKey(t.category, t.price) + "\x00" + t.item
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		entries = append(entries, t)
	}
	refs.Entries = len(entries)

	for _, t := range entries {
		key := categoryPriceKey(t.category, t.price)
		if prev, ok := refs.itemByCategoryPrice[key]; ok && prev != t.item {
			refs.Collisions = append(refs.Collisions, Collision{
				Map:      MapItemByCategoryPrice,
				Key:      t.category + " @ " + t.price.String(),
				Replaced: prev,
				Kept:     t.item,
			})
		}
		refs.itemByCategoryPrice[key] = t.item

		if prev, ok := refs.priceByItem[t.item]; ok && !prev.Equal(t.price) {
			refs.Collisions = append(refs.Collisions, Collision{
				Map:      MapPriceByItem,
				Key:      t.item,
				Replaced: prev.String(),
				Kept:     t.price.String(),
			})
		}
		refs.priceByItem[t.item] = t.price
	}

	for _, c := range refs.Collisions {
		log.Warn().
			Str("map", c.Map).
			Str("key", c.Key).
			Str("replaced", c.Replaced).
			Str("kept", c.Kept).
			Msg("reference key collision, last value wins")
	}

	log.Debug().
		Int("entries", refs.Entries).
		Int("category_price_keys", len(refs.itemByCategoryPrice)).
		Int("item_keys", len(refs.priceByItem)).
		Msg("references built")

	return refs
}

// ItemFor returns the item bound to an exact (category, price) key.
func (r *References) ItemFor(category string, price decimal.Decimal) (string, bool) {
	item, ok := r.itemByCategoryPrice[categoryPriceKey(category, price)]
	return item, ok
}

// PriceFor returns the unit price bound to an item.
func (r *References) PriceFor(item string) (decimal.Decimal, bool) {
	price, ok := r.priceByItem[item]
	return price, ok
}

func categoryPriceKey(category string, price decimal.Decimal) string {
	return category + "\x00" + price.String()
}

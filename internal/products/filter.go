package product

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hivehoney/aisla-sub000/pkg/clock"
)

// Predicate is one filter category rendered against the products table aliased as p.
type Predicate interface {
	Clause() (string, []any)
	predicate()
}

// TextMatch is a substring match on the product name.
type TextMatch struct{ Term string }

// BarcodeMatch is an exact match on the product code.
type BarcodeMatch struct{ Code string }

type CategoryEq struct{ CategoryID uuid.UUID }

// PriceRange bounds the current price inclusively. Either side may be nil.
type PriceRange struct{ Min, Max *int64 }

// DiscountEligible keeps products whose original price is above the current one.
type DiscountEligible struct{}

// InventoryAvailable requires a positive inventory lot in the store.
type InventoryAvailable struct{ StoreID uuid.UUID }

// ExpirationSoon requires a store lot expiring within [From, To]. Bounds are bound
// in UTC, the zone expiration dates are stored in.
type ExpirationSoon struct {
	StoreID  uuid.UUID
	From, To time.Time
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (t TextMatch) Clause() (string, []any) {
	return `p.name LIKE ? ESCAPE '\'`, []any{"%" + likeEscaper.Replace(t.Term) + "%"}
}

func (b BarcodeMatch) Clause() (string, []any) {
	return "p.code = ?", []any{b.Code}
}

func (c CategoryEq) Clause() (string, []any) {
	return "p.category_id = ?", []any{c.CategoryID}
}

func (r PriceRange) Clause() (string, []any) {
	switch {
	case r.Min != nil && r.Max != nil:
		return "p.price BETWEEN ? AND ?", []any{*r.Min, *r.Max}
	case r.Min != nil:
		return "p.price >= ?", []any{*r.Min}
	case r.Max != nil:
		return "p.price <= ?", []any{*r.Max}
	}
	return "1 = 1", nil
}

func (DiscountEligible) Clause() (string, []any) {
	return "p.price_original IS NOT NULL AND p.price_original > 0 AND p.price < p.price_original", nil
}

func (i InventoryAvailable) Clause() (string, []any) {
	sql := "EXISTS (SELECT 1 FROM inventories ia WHERE ia.product_id = p.id AND ia.store_id = ? AND ia.quantity > 0)"
	return sql, []any{i.StoreID}
}

func (e ExpirationSoon) Clause() (string, []any) {
	sql := "EXISTS (SELECT 1 FROM inventories ie WHERE ie.product_id = p.id AND ie.store_id = ? " +
		"AND ie.expiration_date >= ? AND ie.expiration_date <= ?)"
	return sql, []any{e.StoreID, e.From.UTC(), e.To.UTC()}
}

func (TextMatch) predicate()          {}
func (BarcodeMatch) predicate()       {}
func (CategoryEq) predicate()         {}
func (PriceRange) predicate()         {}
func (DiscountEligible) predicate()   {}
func (InventoryAvailable) predicate() {}
func (ExpirationSoon) predicate()     {}

// Filter is an ordered conjunction of predicates.
type Filter struct {
	Predicates []Predicate
}

// With returns a copy of f extended with extra predicates, skipping kinds already present.
func (f Filter) With(extra ...Predicate) Filter {
	out := Filter{Predicates: append([]Predicate(nil), f.Predicates...)}
	for _, p := range extra {
		if !out.has(p) {
			out.Predicates = append(out.Predicates, p)
		}
	}
	return out
}

func (f Filter) has(target Predicate) bool {
	for _, p := range f.Predicates {
		if sameKind(p, target) {
			return true
		}
	}
	return false
}

func sameKind(a, b Predicate) bool {
	switch a.(type) {
	case TextMatch:
		_, ok := b.(TextMatch)
		return ok
	case BarcodeMatch:
		_, ok := b.(BarcodeMatch)
		return ok
	case CategoryEq:
		_, ok := b.(CategoryEq)
		return ok
	case PriceRange:
		_, ok := b.(PriceRange)
		return ok
	case DiscountEligible:
		_, ok := b.(DiscountEligible)
		return ok
	case InventoryAvailable:
		_, ok := b.(InventoryAvailable)
		return ok
	case ExpirationSoon:
		_, ok := b.(ExpirationSoon)
		return ok
	}
	return false
}

// Apply adds every predicate as a WHERE clause.
func (f Filter) Apply(db *gorm.DB) *gorm.DB {
	for _, p := range f.Predicates {
		sql, args := p.Clause()
		db = db.Where(sql, args...)
	}
	return db
}

// SQL renders the conjunction as one fragment.
func (f Filter) SQL() (string, []any) {
	if len(f.Predicates) == 0 {
		return "1 = 1", nil
	}
	parts := make([]string, 0, len(f.Predicates))
	var args []any
	for _, p := range f.Predicates {
		sql, pargs := p.Clause()
		parts = append(parts, "("+sql+")")
		args = append(args, pargs...)
	}
	return strings.Join(parts, " AND "), args
}

// ComposeFilter turns request params into predicates. The expiration window is
// [start of today, start of today + windowDays] and only applies with a store.
func ComposeFilter(p Params, now time.Time, windowDays int) Filter {
	var f Filter

	if code := strings.TrimSpace(p.Barcode); code != "" {
		f.Predicates = append(f.Predicates, BarcodeMatch{Code: code})
	} else if term := strings.TrimSpace(p.Query); term != "" {
		f.Predicates = append(f.Predicates, TextMatch{Term: term})
	}

	if p.CategoryID != nil && *p.CategoryID != uuid.Nil {
		f.Predicates = append(f.Predicates, CategoryEq{CategoryID: *p.CategoryID})
	}

	if p.HasStore() && p.InventoryFilter {
		f.Predicates = append(f.Predicates, InventoryAvailable{StoreID: *p.StoreID})
	}

	if p.MinPrice != nil || p.MaxPrice != nil {
		f.Predicates = append(f.Predicates, PriceRange{Min: p.MinPrice, Max: p.MaxPrice})
	}

	if p.HasDiscount {
		f.Predicates = append(f.Predicates, DiscountEligible{})
	}

	if p.ExpirationFilter == ExpirationSoonFilter && p.HasStore() {
		from := clock.StartOfDay(now)
		f.Predicates = append(f.Predicates, ExpirationSoon{
			StoreID: *p.StoreID,
			From:    from,
			To:      from.AddDate(0, 0, windowDays),
		})
	}

	return f
}

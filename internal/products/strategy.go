package product

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hivehoney/aisla-sub000/pkg/db/models"
	pkgerrors "github.com/hivehoney/aisla-sub000/pkg/errors"
	"github.com/hivehoney/aisla-sub000/pkg/numeric"
	"github.com/hivehoney/aisla-sub000/pkg/pagination"
)

type sortKind int

const (
	sortByField sortKind = iota
	sortByInventory
	sortByDiscount
)

// SortPlan is the resolved ordering for a paged search.
type SortPlan struct {
	Name   string
	kind   sortKind
	desc   bool
	orders []string
}

// ResolveSort picks the ordering for sortBy. Inventory sorts need both a store and the
// inventory filter; without them they order by the product's own quantity instead.
func ResolveSort(sortBy SortBy, storeID *uuid.UUID, inventoryFilter bool) SortPlan {
	inventoryLegal := storeID != nil && *storeID != uuid.Nil && inventoryFilter

	switch sortBy {
	case SortPriceAsc:
		return SortPlan{Name: "price-asc", kind: sortByField, orders: []string{"p.price ASC", "p.id ASC"}}
	case SortPriceDesc:
		return SortPlan{Name: "price-desc", kind: sortByField, desc: true, orders: []string{"p.price DESC", "p.id ASC"}}
	case SortInventoryDesc, SortInventoryAsc:
		desc := sortBy == SortInventoryDesc
		if inventoryLegal {
			return SortPlan{Name: string(sortBy), kind: sortByInventory, desc: desc}
		}
		if desc {
			return SortPlan{Name: "quantity-desc", kind: sortByField, desc: true, orders: []string{"COALESCE(p.quantity, 0) DESC", "p.id ASC"}}
		}
		return SortPlan{Name: "quantity-asc", kind: sortByField, orders: []string{"COALESCE(p.quantity, 0) ASC", "p.id ASC"}}
	case SortDiscount:
		return SortPlan{Name: "discount", kind: sortByDiscount, desc: true}
	}
	return SortPlan{Name: "code-desc", kind: sortByField, desc: true, orders: []string{"p.code DESC", "p.id ASC"}}
}

// rankQuery is the input every strategy receives.
type rankQuery struct {
	filter  Filter
	storeID *uuid.UUID
	page    pagination.Params
}

// rankedPage is one window of ordered products plus the total the window was cut from.
type rankedPage struct {
	products []models.Product
	total    int64
	// inventoriesLoaded is set when products already carry their store-scoped lots.
	inventoriesLoaded bool
}

type rankFunc func(ctx context.Context, q rankQuery) (*rankedPage, error)

// strategy pairs a primary implementation with an optional in-memory fallback.
type strategy struct {
	name     string
	primary  rankFunc
	fallback rankFunc
}

func (s *service) strategyFor(plan SortPlan) strategy {
	switch plan.kind {
	case sortByInventory:
		return strategy{
			name:     plan.Name,
			primary:  s.inventoryPrimary(plan.desc),
			fallback: s.inventoryFallback(plan.desc),
		}
	case sortByDiscount:
		return strategy{
			name:     plan.Name,
			primary:  s.discountPrimary,
			fallback: s.discountFallback,
		}
	}
	return strategy{name: plan.Name, primary: s.fieldPrimary(plan.orders)}
}

// runWithFallback runs the primary; on failure it runs the fallback once. A failed
// fallback, or a failed primary without one, is terminal.
func (s *service) runWithFallback(ctx context.Context, st strategy, q rankQuery) (*rankedPage, error) {
	page, err := st.primary(ctx, q)
	if err == nil {
		return page, nil
	}
	primaryErr := fmt.Errorf("%w: %s: %w", ErrQueryExecution, st.name, err)

	if st.fallback == nil {
		s.metrics.IncFailure(st.name)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, primaryErr, "rank products")
	}

	logCtx := s.logg.WithField(ctx, "strategy", st.name)
	s.logg.WarnErr(logCtx, "products.search.fallback", primaryErr)
	s.metrics.IncFallback(st.name)

	page, err = st.fallback(ctx, q)
	if err != nil {
		s.metrics.IncFailure(st.name)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, fmt.Errorf("%w: %s: %w", ErrFallbackExecution, st.name, err), "rank products")
	}
	return page, nil
}

// fieldPrimary counts, then fetches one ordered window.
func (s *service) fieldPrimary(orders []string) rankFunc {
	return func(ctx context.Context, q rankQuery) (*rankedPage, error) {
		total, err := s.store.Count(ctx, q.filter)
		if err != nil {
			return nil, fmt.Errorf("count products: %w", err)
		}
		rows, err := s.store.FindPage(ctx, q.filter, orders, q.page.Skip(), q.page.Limit)
		if err != nil {
			return nil, fmt.Errorf("find products: %w", err)
		}
		return &rankedPage{products: rows, total: total}, nil
	}
}

func (s *service) inventoryPrimary(desc bool) rankFunc {
	return func(ctx context.Context, q rankQuery) (*rankedPage, error) {
		storeID := *q.storeID
		total, err := s.store.CountInventoryRanked(ctx, q.filter, storeID)
		if err != nil {
			return nil, fmt.Errorf("count inventory ranking: %w", err)
		}
		raw, err := s.store.RankByInventory(ctx, q.filter, storeID, desc, q.page.Skip(), q.page.Limit)
		if err != nil {
			return nil, fmt.Errorf("inventory ranking: %w", err)
		}
		ids, err := rankedIDs(numeric.SanitizeRows(raw))
		if err != nil {
			return nil, err
		}
		rows, err := s.store.FindByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("load ranked products: %w", err)
		}
		return &rankedPage{products: rows, total: total}, nil
	}
}

// inventoryFallback sums store lots in memory over the full filtered set. Only products
// with a positive sum qualify, the same rule the primary's HAVING applies.
func (s *service) inventoryFallback(desc bool) rankFunc {
	return func(ctx context.Context, q rankQuery) (*rankedPage, error) {
		all, err := s.store.FindAllWithInventories(ctx, q.filter, q.storeID)
		if err != nil {
			return nil, fmt.Errorf("load products with inventories: %w", err)
		}

		type scored struct {
			product models.Product
			total   int64
		}
		eligible := make([]scored, 0, len(all))
		for _, p := range all {
			if sum := sumQuantity(p.Inventories); sum > 0 {
				eligible = append(eligible, scored{product: p, total: sum})
			}
		}
		sort.SliceStable(eligible, func(i, j int) bool {
			a, b := eligible[i], eligible[j]
			if a.total != b.total {
				if desc {
					return a.total > b.total
				}
				return a.total < b.total
			}
			return a.product.ID.String() < b.product.ID.String()
		})

		window := pagination.Window(eligible, q.page)
		rows := make([]models.Product, 0, len(window))
		for _, item := range window {
			rows = append(rows, item.product)
		}
		return &rankedPage{products: rows, total: int64(len(eligible)), inventoriesLoaded: true}, nil
	}
}

// discountFilter restricts to discount-eligible products and, with a store, to products
// stocked there. Primary and fallback share it.
func discountFilter(q rankQuery) Filter {
	f := q.filter.With(DiscountEligible{})
	if q.storeID != nil {
		f = f.With(InventoryAvailable{StoreID: *q.storeID})
	}
	return f
}

// discountPrimary issues the count and the ranked read concurrently.
func (s *service) discountPrimary(ctx context.Context, q rankQuery) (*rankedPage, error) {
	f := discountFilter(q)

	var (
		total int64
		raw   []map[string]any
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.store.Count(gctx, f)
		if err != nil {
			return fmt.Errorf("count discounted products: %w", err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		rows, err := s.store.RankByDiscount(gctx, f, q.page.Skip(), q.page.Limit)
		if err != nil {
			return fmt.Errorf("discount ranking: %w", err)
		}
		raw = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ids, err := rankedIDs(numeric.SanitizeRows(raw))
	if err != nil {
		return nil, err
	}
	rows, err := s.store.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load ranked products: %w", err)
	}
	return &rankedPage{products: rows, total: total}, nil
}

func (s *service) discountFallback(ctx context.Context, q rankQuery) (*rankedPage, error) {
	all, err := s.store.FindAllWithInventories(ctx, discountFilter(q), q.storeID)
	if err != nil {
		return nil, fmt.Errorf("load discounted products: %w", err)
	}

	rates := make(map[uuid.UUID]int64, len(all))
	for _, p := range all {
		rates[p.ID] = DiscountRate(p.Price, p.PriceOriginal)
	}
	sort.SliceStable(all, func(i, j int) bool {
		ri, rj := rates[all[i].ID], rates[all[j].ID]
		if ri != rj {
			return ri > rj
		}
		return all[i].ID.String() < all[j].ID.String()
	})

	return &rankedPage{
		products:          pagination.Window(all, q.page),
		total:             int64(len(all)),
		inventoriesLoaded: q.storeID != nil,
	}, nil
}

// rankedIDs reads the id column of sanitized aggregate rows, keeping their order.
func rankedIDs(rows []map[string]any) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		id, err := idFromValue(row["id"])
		if err != nil {
			return nil, fmt.Errorf("read ranked id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func sumQuantity(lots []models.Inventory) int64 {
	var total int64
	for _, lot := range lots {
		total += int64(lot.Quantity)
	}
	return total
}

package product

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hivehoney/aisla-sub000/pkg/clock"
	"github.com/hivehoney/aisla-sub000/pkg/db/models"
)

type inventoryReader interface {
	InventoriesFor(ctx context.Context, productIDs []uuid.UUID, storeID uuid.UUID) ([]models.Inventory, error)
}

// Enricher attaches store-scoped inventory and derived fields to ranked products.
type Enricher struct {
	inventory  inventoryReader
	clock      clock.Clock
	windowDays int
}

func NewEnricher(inventory inventoryReader, clk clock.Clock, windowDays int) *Enricher {
	if clk == nil {
		clk = clock.New()
	}
	if windowDays <= 0 {
		windowDays = 7
	}
	return &Enricher{inventory: inventory, clock: clk, windowDays: windowDays}
}

// Enrich builds result rows. When loaded is false and a store is given, the store's lots
// are fetched in one batch. Without a store every row gets no lots and a zero total.
func (e *Enricher) Enrich(ctx context.Context, products []models.Product, storeID *uuid.UUID, loaded bool) ([]ResultRow, error) {
	lots := map[uuid.UUID][]models.Inventory{}
	if storeID != nil {
		if loaded {
			for _, p := range products {
				lots[p.ID] = p.Inventories
			}
		} else if len(products) > 0 {
			ids := make([]uuid.UUID, 0, len(products))
			for _, p := range products {
				ids = append(ids, p.ID)
			}
			rows, err := e.inventory.InventoriesFor(ctx, ids, *storeID)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrEnrichment, err)
			}
			for _, inv := range rows {
				lots[inv.ProductID] = append(lots[inv.ProductID], inv)
			}
		}
	}

	now := e.clock.Now()
	out := make([]ResultRow, 0, len(products))
	for _, p := range products {
		row := newResultRow(p)
		scoped := lots[p.ID]
		row.Inventories = inventoryDTOs(scoped)
		row.TotalQuantity = sumQuantity(scoped)
		row.HasExpiringSoon = e.anyExpiringSoon(scoped, now)
		row.DiscountRate = DiscountRate(p.Price, p.PriceOriginal)
		out = append(out, row)
	}
	return out, nil
}

func (e *Enricher) anyExpiringSoon(lots []models.Inventory, now time.Time) bool {
	for _, lot := range lots {
		if lot.ExpirationDate != nil && ExpiresWithin(*lot.ExpirationDate, now, e.windowDays) {
			return true
		}
	}
	return false
}

// ExpiresWithin reports 0 < ceil(days until exp) <= days: strictly in the future and
// no later than the last day of the window.
func ExpiresWithin(exp, now time.Time, days int) bool {
	until := exp.Sub(now)
	return until > 0 && until <= time.Duration(days)*24*time.Hour
}

// DiscountRate is round((1 - price/original) * 100), half-up, when original > price > 0.
// Otherwise it is 0.
func DiscountRate(price int64, original *int64) int64 {
	if original == nil {
		return 0
	}
	o := *original
	if o <= 0 || price <= 0 || price >= o {
		return 0
	}
	return (200*(o-price) + o) / (2 * o)
}

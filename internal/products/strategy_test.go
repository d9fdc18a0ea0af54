package product

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/hivehoney/aisla-sub000/pkg/errors"
	"github.com/hivehoney/aisla-sub000/pkg/logger"
	"github.com/hivehoney/aisla-sub000/pkg/metrics"
)

func TestResolveSort(t *testing.T) {
	store := uuid.New()

	tests := []struct {
		sortBy          SortBy
		storeID         *uuid.UUID
		inventoryFilter bool
		wantName        string
		wantKind        sortKind
	}{
		{sortBy: "", wantName: "code-desc", wantKind: sortByField},
		{sortBy: SortCreatedAt, wantName: "code-desc", wantKind: sortByField},
		{sortBy: SortCodeDesc, wantName: "code-desc", wantKind: sortByField},
		{sortBy: "bogus", wantName: "code-desc", wantKind: sortByField},
		{sortBy: SortPriceAsc, wantName: "price-asc", wantKind: sortByField},
		{sortBy: SortPriceDesc, wantName: "price-desc", wantKind: sortByField},
		{sortBy: SortInventoryDesc, storeID: &store, inventoryFilter: true, wantName: "inventory-desc", wantKind: sortByInventory},
		{sortBy: SortInventoryAsc, storeID: &store, inventoryFilter: true, wantName: "inventory-asc", wantKind: sortByInventory},
		{sortBy: SortInventoryDesc, storeID: &store, wantName: "quantity-desc", wantKind: sortByField},
		{sortBy: SortInventoryDesc, inventoryFilter: true, wantName: "quantity-desc", wantKind: sortByField},
		{sortBy: SortInventoryAsc, wantName: "quantity-asc", wantKind: sortByField},
		{sortBy: SortDiscount, wantName: "discount", wantKind: sortByDiscount},
		{sortBy: SortDiscount, storeID: &store, wantName: "discount", wantKind: sortByDiscount},
	}
	for _, tt := range tests {
		t.Run(string(tt.sortBy)+"/"+tt.wantName, func(t *testing.T) {
			plan := ResolveSort(tt.sortBy, tt.storeID, tt.inventoryFilter)
			assert.Equal(t, tt.wantName, plan.Name)
			assert.Equal(t, tt.wantKind, plan.kind)
			if plan.kind == sortByField {
				assert.NotEmpty(t, plan.orders)
			}
		})
	}
}

func TestDiscountRate(t *testing.T) {
	tests := []struct {
		price    int64
		original *int64
		want     int64
	}{
		{price: 1000, original: int64Ptr(2000), want: 50},
		{price: 5000, original: int64Ptr(6000), want: 17},
		{price: 800, original: int64Ptr(900), want: 11},
		{price: 995, original: int64Ptr(1000), want: 1},
		{price: 1, original: int64Ptr(200), want: 100},
		{price: 1990, original: int64Ptr(2000), want: 1},
		{price: 1995, original: int64Ptr(2000), want: 0},
		{price: 2500, original: int64Ptr(2500), want: 0},
		{price: 3000, original: int64Ptr(2000), want: 0},
		{price: 0, original: int64Ptr(2000), want: 0},
		{price: 1000, original: nil, want: 0},
		{price: 1000, original: int64Ptr(0), want: 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DiscountRate(tt.price, tt.original), "price=%d original=%v", tt.price, tt.original)
	}
}

func TestExpiresWithin(t *testing.T) {
	now := fixtureNow
	tests := []struct {
		name string
		exp  time.Time
		want bool
	}{
		{name: "already expired", exp: now.Add(-time.Minute), want: false},
		{name: "exactly now", exp: now, want: false},
		{name: "later today", exp: now.Add(time.Hour), want: true},
		{name: "seventh day", exp: now.Add(7 * 24 * time.Hour), want: true},
		{name: "just past seventh day", exp: now.Add(7*24*time.Hour + time.Minute), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpiresWithin(tt.exp, now, 7))
		})
	}
}

func newStrategyService(t *testing.T) (*service, *prometheus.Registry, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	reg := prometheus.NewRegistry()
	svc := &service{
		logg:    logger.New(logger.Options{ServiceName: "test", Output: buf}),
		metrics: metrics.NewSearchMetrics(reg),
	}
	return svc, reg, buf
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, strategy string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "strategy" && label.GetValue() == strategy {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestRunWithFallbackPrefersPrimary(t *testing.T) {
	svc, _, buf := newStrategyService(t)
	fallbackCalled := false

	page, err := svc.runWithFallback(context.Background(), strategy{
		name:    "discount",
		primary: func(context.Context, rankQuery) (*rankedPage, error) { return &rankedPage{total: 3}, nil },
		fallback: func(context.Context, rankQuery) (*rankedPage, error) {
			fallbackCalled = true
			return nil, nil
		},
	}, rankQuery{})

	require.NoError(t, err)
	assert.Equal(t, int64(3), page.total)
	assert.False(t, fallbackCalled)
	assert.Zero(t, buf.Len())
}

func TestRunWithFallbackRecoversFromPrimaryFailure(t *testing.T) {
	svc, reg, buf := newStrategyService(t)

	page, err := svc.runWithFallback(context.Background(), strategy{
		name:     "inventory-desc",
		primary:  func(context.Context, rankQuery) (*rankedPage, error) { return nil, errInjected },
		fallback: func(context.Context, rankQuery) (*rankedPage, error) { return &rankedPage{total: 2}, nil },
	}, rankQuery{})

	require.NoError(t, err)
	assert.Equal(t, int64(2), page.total)
	assert.Contains(t, buf.String(), "products.search.fallback")
	assert.Contains(t, buf.String(), `"strategy":"inventory-desc"`)
	assert.Equal(t, 1.0, counterValue(t, reg, "product_search_fallback_total", "inventory-desc"))
}

func TestRunWithFallbackFailsClosedWhenFallbackFails(t *testing.T) {
	svc, reg, _ := newStrategyService(t)
	fallbackErr := errors.New("fallback boom")

	_, err := svc.runWithFallback(context.Background(), strategy{
		name:     "discount",
		primary:  func(context.Context, rankQuery) (*rankedPage, error) { return nil, errInjected },
		fallback: func(context.Context, rankQuery) (*rankedPage, error) { return nil, fallbackErr },
	}, rankQuery{})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFallbackExecution)
	assert.ErrorIs(t, err, fallbackErr)
	assert.Equal(t, pkgerrors.CodeInternal, pkgerrors.CodeOf(err))
	assert.Equal(t, 1.0, counterValue(t, reg, "product_search_failure_total", "discount"))
}

func TestRunWithFallbackWithoutFallbackIsTerminal(t *testing.T) {
	svc, _, buf := newStrategyService(t)

	_, err := svc.runWithFallback(context.Background(), strategy{
		name:    "price-asc",
		primary: func(context.Context, rankQuery) (*rankedPage, error) { return nil, errInjected },
	}, rankQuery{})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQueryExecution)
	assert.ErrorIs(t, err, errInjected)
	assert.Equal(t, pkgerrors.CodeInternal, pkgerrors.CodeOf(err))
	assert.NotContains(t, buf.String(), "products.search.fallback")
}

func TestRankedIDsRejectsMissingID(t *testing.T) {
	id := uuid.New()
	ids, err := rankedIDs([]map[string]any{{"id": id.String()}, {"id": []byte(id.String())}})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{id, id}, ids)

	_, err = rankedIDs([]map[string]any{{"total_quantity": 3.0}})
	require.Error(t, err)
}

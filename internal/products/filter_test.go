package product

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/hivehoney/aisla-sub000/pkg/errors"
)

func TestComposeFilterBarcodeTakesPrecedenceOverText(t *testing.T) {
	f := ComposeFilter(Params{Query: "cola", Barcode: " 00123 "}, fixtureNow, 7)

	require.Len(t, f.Predicates, 1)
	assert.Equal(t, BarcodeMatch{Code: "00123"}, f.Predicates[0])
}

func TestComposeFilterTextMatchEscapesWildcards(t *testing.T) {
	f := ComposeFilter(Params{Query: "100%_off"}, fixtureNow, 7)

	require.Len(t, f.Predicates, 1)
	sql, args := f.Predicates[0].Clause()
	assert.Equal(t, `p.name LIKE ? ESCAPE '\'`, sql)
	assert.Equal(t, []any{`%100\%\_off%`}, args)
}

func TestComposeFilterStoreScopedPredicates(t *testing.T) {
	store := uuid.New()

	tests := []struct {
		name   string
		params Params
		want   int
	}{
		{name: "inventory filter without store", params: Params{InventoryFilter: true}, want: 0},
		{name: "store without inventory filter", params: Params{StoreID: &store}, want: 0},
		{name: "store with inventory filter", params: Params{StoreID: &store, InventoryFilter: true}, want: 1},
		{name: "expiration soon without store", params: Params{ExpirationFilter: ExpirationSoonFilter}, want: 0},
		{name: "expiration with unknown value", params: Params{StoreID: &store, ExpirationFilter: "later"}, want: 0},
		{name: "expiration soon with store", params: Params{StoreID: &store, ExpirationFilter: ExpirationSoonFilter}, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ComposeFilter(tt.params, fixtureNow, 7)
			assert.Len(t, f.Predicates, tt.want)
		})
	}
}

func TestComposeFilterExpirationWindowStartsAtMidnight(t *testing.T) {
	store := uuid.New()
	f := ComposeFilter(Params{StoreID: &store, ExpirationFilter: ExpirationSoonFilter}, fixtureNow, 7)

	require.Len(t, f.Predicates, 1)
	exp, ok := f.Predicates[0].(ExpirationSoon)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, time.October, 18, 0, 0, 0, 0, time.UTC), exp.From)
	assert.Equal(t, time.Date(2026, time.October, 25, 0, 0, 0, 0, time.UTC), exp.To)
	assert.Equal(t, store, exp.StoreID)
}

func TestComposeFilterCombinesEverythingWithAnd(t *testing.T) {
	store := uuid.New()
	category := uuid.New()
	params := Params{
		Query:           "cola",
		CategoryID:      &category,
		StoreID:         &store,
		InventoryFilter: true,
		MinPrice:        int64Ptr(1000),
		MaxPrice:        int64Ptr(5000),
		HasDiscount:     true,
	}

	sql, args := ComposeFilter(params, fixtureNow, 7).SQL()

	assert.Equal(t, "(p.name LIKE ? ESCAPE '\\') AND (p.category_id = ?) AND "+
		"(EXISTS (SELECT 1 FROM inventories ia WHERE ia.product_id = p.id AND ia.store_id = ? AND ia.quantity > 0)) AND "+
		"(p.price BETWEEN ? AND ?) AND "+
		"(p.price_original IS NOT NULL AND p.price_original > 0 AND p.price < p.price_original)", sql)
	assert.Equal(t, []any{"%cola%", category, store, int64(1000), int64(5000)}, args)
	assert.NotContains(t, sql, " OR ")
}

func TestPriceRangeBoundsAreIndependent(t *testing.T) {
	sql, args := PriceRange{Min: int64Ptr(10)}.Clause()
	assert.Equal(t, "p.price >= ?", sql)
	assert.Equal(t, []any{int64(10)}, args)

	sql, args = PriceRange{Max: int64Ptr(20)}.Clause()
	assert.Equal(t, "p.price <= ?", sql)
	assert.Equal(t, []any{int64(20)}, args)
}

func TestEmptyFilterRendersTautology(t *testing.T) {
	sql, args := Filter{}.SQL()
	assert.Equal(t, "1 = 1", sql)
	assert.Empty(t, args)
}

func TestFilterWithSkipsDuplicateKinds(t *testing.T) {
	store := uuid.New()
	base := ComposeFilter(Params{HasDiscount: true, StoreID: &store, InventoryFilter: true}, fixtureNow, 7)

	extended := base.With(DiscountEligible{}, InventoryAvailable{StoreID: store})
	assert.Len(t, extended.Predicates, 2)

	plain := Filter{}.With(DiscountEligible{})
	assert.Len(t, plain.Predicates, 1)
	base.With(TextMatch{Term: "x"})
	assert.Len(t, base.Predicates, 2, "With must not mutate the receiver")
}

func TestParseCategory(t *testing.T) {
	id, err := ParseCategory("all")
	require.NoError(t, err)
	assert.Nil(t, id)

	id, err = ParseCategory("")
	require.NoError(t, err)
	assert.Nil(t, id)

	want := uuid.New()
	id, err = ParseCategory(want.String())
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, want, *id)

	_, err = ParseCategory("not-a-uuid")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestParseStore(t *testing.T) {
	id, err := ParseStore("  ")
	require.NoError(t, err)
	assert.Nil(t, id)

	_, err = ParseStore("store-1")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestExpirationSoonBindsBoundsInUTC(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	now := time.Date(2026, time.October, 18, 10, 0, 0, 0, tokyo)
	store := uuid.New()

	f := ComposeFilter(Params{StoreID: &store, ExpirationFilter: ExpirationSoonFilter}, now, 7)
	require.Len(t, f.Predicates, 1)

	_, args := f.Predicates[0].Clause()
	require.Len(t, args, 3)
	from := args[1].(time.Time)
	to := args[2].(time.Time)
	assert.Equal(t, time.UTC, from.Location())
	assert.Equal(t, time.Date(2026, time.October, 17, 15, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, time.October, 24, 15, 0, 0, 0, time.UTC), to)
}

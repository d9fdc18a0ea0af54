package product

import (
	"strings"

	"github.com/google/uuid"

	"github.com/hivehoney/aisla-sub000/pkg/enums"
	pkgerrors "github.com/hivehoney/aisla-sub000/pkg/errors"
)

// SortBy names a requested ordering. Unknown values resolve to the default.
type SortBy = enums.ProductSort

const (
	SortCreatedAt     = enums.ProductSortCreatedAt
	SortCodeDesc      = enums.ProductSortCodeDesc
	SortPriceAsc      = enums.ProductSortPriceAsc
	SortPriceDesc     = enums.ProductSortPriceDesc
	SortInventoryDesc = enums.ProductSortInventoryDesc
	SortInventoryAsc  = enums.ProductSortInventoryAsc
	SortDiscount      = enums.ProductSortDiscount
)

const (
	// CategoryAll is the sentinel that disables category filtering.
	CategoryAll = "all"
	// ExpirationSoonFilter enables the expiring-lots predicate when a store is given.
	ExpirationSoonFilter = string(enums.ExpirationFilterSoon)
)

// Params is the parsed search request.
type Params struct {
	Query            string
	Barcode          string
	CategoryID       *uuid.UUID
	StoreID          *uuid.UUID
	InventoryFilter  bool
	MinPrice         *int64
	MaxPrice         *int64
	HasDiscount      bool
	ExpirationFilter string
	IsPOS            bool
	Page             int
	Limit            int
	SortBy           SortBy
}

// HasStore reports whether the request is scoped to a store.
func (p Params) HasStore() bool {
	return p.StoreID != nil && *p.StoreID != uuid.Nil
}

// ParseCategory turns the raw categoryId value into a filter id. Empty and "all" yield nil.
func ParseCategory(raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, CategoryAll) {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid categoryId").
			WithDetails(map[string]any{"field": "categoryId"})
	}
	return &id, nil
}

// ParseStore turns the raw storeId value into a scoping id. Empty yields nil.
func ParseStore(raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid storeId").
			WithDetails(map[string]any{"field": "storeId"})
	}
	return &id, nil
}

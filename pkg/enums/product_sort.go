package enums

import "fmt"

// ProductSort is the ordering a product search asks for.
type ProductSort string

const (
	ProductSortCreatedAt     ProductSort = "createdAt"
	ProductSortCodeDesc      ProductSort = "code-desc"
	ProductSortPriceAsc      ProductSort = "price-asc"
	ProductSortPriceDesc     ProductSort = "price-desc"
	ProductSortInventoryDesc ProductSort = "inventory-desc"
	ProductSortInventoryAsc  ProductSort = "inventory-asc"
	ProductSortDiscount      ProductSort = "discount"
)

var validProductSorts = []ProductSort{
	ProductSortCreatedAt,
	ProductSortCodeDesc,
	ProductSortPriceAsc,
	ProductSortPriceDesc,
	ProductSortInventoryDesc,
	ProductSortInventoryAsc,
	ProductSortDiscount,
}

// String implements fmt.Stringer.
func (s ProductSort) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ProductSort.
func (s ProductSort) IsValid() bool {
	for _, candidate := range validProductSorts {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseProductSort converts raw input into a ProductSort.
func ParseProductSort(value string) (ProductSort, error) {
	for _, candidate := range validProductSorts {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product sort %q", value)
}

// ProductSortOrDefault parses value, falling back to ProductSortCreatedAt for empty or
// unknown input.
func ProductSortOrDefault(value string) ProductSort {
	if s, err := ParseProductSort(value); err == nil {
		return s
	}
	return ProductSortCreatedAt
}

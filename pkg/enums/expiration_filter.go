package enums

// ExpirationFilter narrows a store-scoped search to lots by expiry.
type ExpirationFilter string

const (
	// ExpirationFilterSoon keeps products with a lot expiring within the configured window.
	ExpirationFilterSoon ExpirationFilter = "soon"
)

// IsValid reports whether the value is a known ExpirationFilter.
func (f ExpirationFilter) IsValid() bool {
	return f == ExpirationFilterSoon
}

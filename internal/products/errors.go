package product

import "errors"

var (
	// ErrQueryExecution marks a failed primary ranking query. Strategies with a fallback recover from it.
	ErrQueryExecution = errors.New("query execution failed")
	// ErrFallbackExecution marks a failed fallback; the request fails closed.
	ErrFallbackExecution = errors.New("fallback execution failed")
	// ErrEnrichment marks a failed inventory batch fetch.
	ErrEnrichment = errors.New("inventory enrichment failed")
	// ErrStoreUnavailable marks a failed count or lookup read.
	ErrStoreUnavailable = errors.New("product store unavailable")
)

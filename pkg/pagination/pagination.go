package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 10
	// MaxLimit caps how many rows any page can request.
	MaxLimit = 100
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// Meta is the pagination block of a paged response.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit, defaultLimit, maxLimit int) int {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// ValidPage clamps the requested page to at least 1. Pages past the end are kept.
func ValidPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// Skip is the row offset for the page.
func (p Params) Skip() int {
	return (ValidPage(p.Page) - 1) * p.Limit
}

// TotalPages returns ceil(total/limit), or 1 when there is nothing to page through.
func TotalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 1
	}
	l := int64(limit)
	return int((total + l - 1) / l)
}

// NewMeta assembles the pagination block for the given total.
func NewMeta(p Params, total int64) Meta {
	return Meta{
		Total:      total,
		Page:       ValidPage(p.Page),
		Limit:      p.Limit,
		TotalPages: TotalPages(total, p.Limit),
	}
}

// Window slices an in-memory result set to [skip, skip+limit).
func Window[T any](rows []T, p Params) []T {
	skip := p.Skip()
	if skip >= len(rows) {
		return []T{}
	}
	end := skip + p.Limit
	if p.Limit <= 0 || end > len(rows) {
		end = len(rows)
	}
	return rows[skip:end]
}

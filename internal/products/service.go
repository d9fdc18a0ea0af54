package product

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hivehoney/aisla-sub000/pkg/clock"
	"github.com/hivehoney/aisla-sub000/pkg/config"
	pkgerrors "github.com/hivehoney/aisla-sub000/pkg/errors"
	"github.com/hivehoney/aisla-sub000/pkg/logger"
	"github.com/hivehoney/aisla-sub000/pkg/metrics"
	"github.com/hivehoney/aisla-sub000/pkg/pagination"
)

// Service exposes the product search operation.
type Service interface {
	Search(ctx context.Context, params Params) (*SearchResult, error)
}

// Config tunes limits, the interactive threshold, the expiry window and caching.
type Config struct {
	DefaultLimit        int
	MaxLimit            int
	InteractiveMaxLimit int
	ExpiringSoonDays    int
	CacheTTL            time.Duration
}

// ConfigFromSearch maps the environment config onto the service config.
func ConfigFromSearch(cfg config.SearchConfig) Config {
	return Config{
		DefaultLimit:        cfg.DefaultLimit,
		MaxLimit:            cfg.MaxLimit,
		InteractiveMaxLimit: cfg.InteractiveMaxLimit,
		ExpiringSoonDays:    cfg.ExpiringSoonDays,
		CacheTTL:            cfg.CacheTTL,
	}
}

func (c Config) withDefaults() Config {
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = pagination.DefaultLimit
	}
	if c.MaxLimit <= 0 {
		c.MaxLimit = pagination.MaxLimit
	}
	if c.InteractiveMaxLimit <= 0 {
		c.InteractiveMaxLimit = 20
	}
	if c.ExpiringSoonDays <= 0 {
		c.ExpiringSoonDays = 7
	}
	return c
}

// ServiceDeps are the collaborators of the search service. Cache, Clock and Metrics are optional.
type ServiceDeps struct {
	Store   Store
	Logger  *logger.Logger
	Clock   clock.Clock
	Metrics *metrics.SearchMetrics
	Cache   Cache
}

type service struct {
	store    Store
	enricher *Enricher
	clock    clock.Clock
	logg     *logger.Logger
	metrics  *metrics.SearchMetrics
	cache    *resultCache
	cfg      Config
}

// NewService constructs the product search service.
func NewService(deps ServiceDeps, cfg Config) (Service, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("product store required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	cfg = cfg.withDefaults()

	return &service{
		store:    deps.Store,
		enricher: NewEnricher(deps.Store, deps.Clock, cfg.ExpiringSoonDays),
		clock:    deps.Clock,
		logg:     deps.Logger,
		metrics:  deps.Metrics,
		cache: &resultCache{
			backend: deps.Cache,
			ttl:     cfg.CacheTTL,
			logg:    deps.Logger,
			metrics: deps.Metrics,
		},
		cfg: cfg,
	}, nil
}

// SelectPath picks the interactive path for POS lookups, barcode scans and short text
// queries; everything else is paged and ranked.
func SelectPath(p Params, interactiveMaxLimit int) Path {
	if p.IsPOS || strings.TrimSpace(p.Barcode) != "" {
		return PathSimple
	}
	if strings.TrimSpace(p.Query) != "" && p.Limit <= interactiveMaxLimit {
		return PathSimple
	}
	return PathPaged
}

func (s *service) Search(ctx context.Context, params Params) (*SearchResult, error) {
	started := time.Now()
	params.Limit = pagination.NormalizeLimit(params.Limit, s.cfg.DefaultLimit, s.cfg.MaxLimit)
	params.Page = pagination.ValidPage(params.Page)
	if params.HasStore() {
		ctx = s.logg.WithStoreID(ctx, params.StoreID.String())
	}

	now := s.clock.Now()
	filter := ComposeFilter(params, now, s.cfg.ExpiringSoonDays)

	if SelectPath(params, s.cfg.InteractiveMaxLimit) == PathSimple {
		result, err := s.searchSimple(ctx, params, filter)
		s.metrics.ObserveDuration(string(PathSimple), "code-desc", time.Since(started))
		return result, err
	}

	plan := ResolveSort(params.SortBy, params.StoreID, params.InventoryFilter)
	result, err := s.searchPaged(ctx, params, filter, plan, now)
	s.metrics.ObserveDuration(string(PathPaged), plan.Name, time.Since(started))
	return result, err
}

func (s *service) searchSimple(ctx context.Context, params Params, filter Filter) (*SearchResult, error) {
	rows, err := s.store.FindSimple(ctx, filter, params.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, fmt.Errorf("%w: %w", ErrStoreUnavailable, err), "lookup products")
	}

	totals := map[uuid.UUID]int64{}
	if params.HasStore() && len(rows) > 0 {
		ids := make([]uuid.UUID, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, row.ID)
		}
		totals, err = s.store.InventoryTotals(ctx, ids, *params.StoreID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, fmt.Errorf("%w: %w", ErrEnrichment, err), "sum inventory")
		}
	}

	out := make([]SimpleRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, newSimpleRow(row, totals[row.ID]))
	}
	return &SearchResult{
		Path:     PathSimple,
		Strategy: "code-desc",
		Simple:   &SimpleEnvelope{Products: out},
	}, nil
}

func (s *service) searchPaged(ctx context.Context, params Params, filter Filter, plan SortPlan, now time.Time) (*SearchResult, error) {
	var cacheKey string
	if s.cache.enabled() {
		cacheKey = s.cache.key(params, plan.Name, now)
		if env, ok := s.cache.load(ctx, cacheKey); ok {
			return &SearchResult{Path: PathPaged, Strategy: plan.Name, Paged: env}, nil
		}
	}

	q := rankQuery{
		filter: filter,
		page:   pagination.Params{Page: params.Page, Limit: params.Limit},
	}
	if params.HasStore() {
		q.storeID = params.StoreID
	}

	page, err := s.runWithFallback(ctx, s.strategyFor(plan), q)
	if err != nil {
		s.logg.Error(s.logg.WithField(ctx, "strategy", plan.Name), "products.search.failed", err)
		return nil, err
	}

	rows, err := s.enricher.Enrich(ctx, page.products, q.storeID, page.inventoriesLoaded)
	if err != nil {
		s.metrics.IncFailure(plan.Name)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "enrich products")
	}

	env := &PagedEnvelope{
		Products:   rows,
		Pagination: pagination.NewMeta(q.page, page.total),
	}
	if cacheKey != "" {
		s.cache.store(ctx, cacheKey, env)
	}
	return &SearchResult{Path: PathPaged, Strategy: plan.Name, Paged: env}, nil
}

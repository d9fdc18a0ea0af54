package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hivehoney/aisla-sub000/internal/repo"
	"github.com/hivehoney/aisla-sub000/pkg/db/models"
	"github.com/hivehoney/aisla-sub000/pkg/numeric"
)

// Store is the read/aggregate surface the search engine runs on.
type Store interface {
	Count(ctx context.Context, f Filter) (int64, error)
	FindPage(ctx context.Context, f Filter, orders []string, offset, limit int) ([]models.Product, error)
	FindSimple(ctx context.Context, f Filter, limit int) ([]models.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	FindAllWithInventories(ctx context.Context, f Filter, storeID *uuid.UUID) ([]models.Product, error)

	RankByInventory(ctx context.Context, f Filter, storeID uuid.UUID, desc bool, offset, limit int) ([]map[string]any, error)
	CountInventoryRanked(ctx context.Context, f Filter, storeID uuid.UUID) (int64, error)
	RankByDiscount(ctx context.Context, f Filter, offset, limit int) ([]map[string]any, error)

	InventoriesFor(ctx context.Context, productIDs []uuid.UUID, storeID uuid.UUID) ([]models.Inventory, error)
	InventoryTotals(ctx context.Context, productIDs []uuid.UUID, storeID uuid.UUID) (map[uuid.UUID]int64, error)
}

// discountRateExpr is round((1 - price/price_original) * 100) with half-up rounding in integer math.
const discountRateExpr = "CASE WHEN p.price_original IS NOT NULL AND p.price_original > p.price AND p.price > 0 " +
	"THEN (200 * (p.price_original - p.price) + p.price_original) / (2 * p.price_original) ELSE 0 END"

var simpleColumns = []string{
	"p.id",
	"p.code",
	"p.name",
	"p.price",
	"p.price_original",
	"p.image_url",
	"p.image_tag",
	"p.event_type",
	"p.category_id",
	"p.tags",
}

// Repository implements Store on gorm.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) products(ctx context.Context, f Filter) *gorm.DB {
	return f.Apply(r.DB(ctx).Table("products p"))
}

// Count returns how many products match the filter.
func (r *Repository) Count(ctx context.Context, f Filter) (int64, error) {
	var total int64
	if err := r.products(ctx, f).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// FindPage returns one ordered window of matching products with their category.
func (r *Repository) FindPage(ctx context.Context, f Filter, orders []string, offset, limit int) ([]models.Product, error) {
	qb := r.products(ctx, f).Select("p.*").Preload("Category")
	for _, order := range orders {
		qb = qb.Order(order)
	}
	var rows []models.Product
	err := qb.Offset(offset).Limit(limit).Find(&rows).Error
	return rows, err
}

// FindSimple returns the minimal projection used by the interactive path.
func (r *Repository) FindSimple(ctx context.Context, f Filter, limit int) ([]models.Product, error) {
	var rows []models.Product
	err := r.products(ctx, f).
		Select(strings.Join(simpleColumns, ", ")).
		Preload("Category").
		Order("p.code DESC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

// FindByIDs loads products with their category in the order of ids.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var rows []models.Product
	if err := r.DB(ctx).Preload("Category").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.Product, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	ordered := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if row, ok := byID[id]; ok {
			ordered = append(ordered, row)
		}
	}
	return ordered, nil
}

// FindAllWithInventories loads every matching product. With a store, the store's
// inventory lots are preloaded; other stores' lots are never attached.
func (r *Repository) FindAllWithInventories(ctx context.Context, f Filter, storeID *uuid.UUID) ([]models.Product, error) {
	qb := r.products(ctx, f).Select("p.*").Preload("Category")
	if storeID != nil {
		qb = qb.Preload("Inventories", func(db *gorm.DB) *gorm.DB {
			return db.Where("store_id = ?", *storeID).Order("received_date ASC").Order("id ASC")
		})
	}
	var rows []models.Product
	err := qb.Find(&rows).Error
	return rows, err
}

func (r *Repository) inventoryRanked(ctx context.Context, f Filter, storeID uuid.UUID) *gorm.DB {
	return r.products(ctx, f).
		Joins("JOIN inventories i ON i.product_id = p.id AND i.store_id = ?", storeID).
		Group("p.id").
		Having("SUM(i.quantity) > ?", 0)
}

// RankByInventory returns id and total_quantity rows ordered by the store's summed quantity.
func (r *Repository) RankByInventory(ctx context.Context, f Filter, storeID uuid.UUID, desc bool, offset, limit int) ([]map[string]any, error) {
	direction := "ASC"
	if desc {
		direction = "DESC"
	}
	return r.ScanRows(r.inventoryRanked(ctx, f, storeID).
		Select("CAST(p.id AS TEXT) AS id, SUM(i.quantity) AS total_quantity").
		Order(fmt.Sprintf("total_quantity %s", direction)).
		Order("p.id ASC").
		Offset(offset).
		Limit(limit))
}

// CountInventoryRanked counts the products RankByInventory can return.
func (r *Repository) CountInventoryRanked(ctx context.Context, f Filter, storeID uuid.UUID) (int64, error) {
	return r.CountRows(ctx, r.inventoryRanked(ctx, f, storeID).Select("p.id"))
}

// RankByDiscount returns id and discount_rate rows, highest rate first.
func (r *Repository) RankByDiscount(ctx context.Context, f Filter, offset, limit int) ([]map[string]any, error) {
	return r.ScanRows(r.products(ctx, f).
		Select("CAST(p.id AS TEXT) AS id, " + discountRateExpr + " AS discount_rate").
		Order("discount_rate DESC").
		Order("p.id ASC").
		Offset(offset).
		Limit(limit))
}

// InventoriesFor batch-loads the store's lots for the given products.
func (r *Repository) InventoriesFor(ctx context.Context, productIDs []uuid.UUID, storeID uuid.UUID) ([]models.Inventory, error) {
	if len(productIDs) == 0 {
		return []models.Inventory{}, nil
	}
	var rows []models.Inventory
	err := r.DB(ctx).
		Where("product_id IN ? AND store_id = ?", productIDs, storeID).
		Order("received_date ASC").
		Order("id ASC").
		Find(&rows).
		Error
	return rows, err
}

// InventoryTotals sums the store's lot quantities per product in one grouped read.
func (r *Repository) InventoryTotals(ctx context.Context, productIDs []uuid.UUID, storeID uuid.UUID) (map[uuid.UUID]int64, error) {
	totals := make(map[uuid.UUID]int64, len(productIDs))
	if len(productIDs) == 0 {
		return totals, nil
	}
	rows, err := r.ScanRows(r.DB(ctx).
		Table("inventories").
		Select("CAST(product_id AS TEXT) AS product_id, SUM(quantity) AS total_quantity").
		Where("product_id IN ? AND store_id = ?", productIDs, storeID).
		Group("product_id"))
	if err != nil {
		return nil, err
	}
	for _, row := range numeric.SanitizeRows(rows) {
		id, err := idFromValue(row["product_id"])
		if err != nil {
			return nil, err
		}
		qty, _ := numeric.Int64(row["total_quantity"])
		totals[id] = qty
	}
	return totals, nil
}

// idFromValue reads an id column from a raw aggregate row.
func idFromValue(v any) (uuid.UUID, error) {
	switch id := v.(type) {
	case uuid.UUID:
		return id, nil
	case [16]byte:
		return uuid.UUID(id), nil
	case string:
		return uuid.Parse(id)
	case *any:
		if id == nil {
			return uuid.Nil, fmt.Errorf("missing id in aggregate row")
		}
		return idFromValue(*id)
	case *string:
		if id == nil {
			return uuid.Nil, fmt.Errorf("missing id in aggregate row")
		}
		return uuid.Parse(*id)
	case []byte:
		if len(id) == 16 {
			return uuid.FromBytes(id)
		}
		return uuid.ParseBytes(id)
	case nil:
		return uuid.Nil, fmt.Errorf("missing id in aggregate row")
	}
	return uuid.Nil, fmt.Errorf("unsupported id type %T in aggregate row", v)
}

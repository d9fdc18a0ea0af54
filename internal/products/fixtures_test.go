package product

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hivehoney/aisla-sub000/pkg/clock"
	"github.com/hivehoney/aisla-sub000/pkg/config"
	"github.com/hivehoney/aisla-sub000/pkg/db/models"
	"github.com/hivehoney/aisla-sub000/pkg/logger"
	"github.com/hivehoney/aisla-sub000/pkg/migrate"
)

var fixtureNow = time.Date(2026, time.October, 18, 10, 0, 0, 0, time.UTC)

type searchFixture struct {
	db       *gorm.DB
	repo     *Repository
	clock    *clock.MockClock
	store1   uuid.UUID
	store2   uuid.UUID
	category models.Category
	products map[string]models.Product
}

func openSearchDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:                 gormlogger.New(log.New(io.Discard, "", 0), gormlogger.Config{LogLevel: gormlogger.Silent}),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	_, err = migrate.Up(context.Background(), sqlDB, config.DriverSQLite)
	require.NoError(t, err)
	return conn
}

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }
func timePtr(v time.Time) *time.Time {
	return &v
}

// newSearchFixture seeds six products. Store 1 lot sums: 001=7, 002=10, 003=0, 004=1,
// 00123=7, 005 has none. Only 001 has a store 1 lot expiring within the week.
func newSearchFixture(t *testing.T) *searchFixture {
	t.Helper()
	conn := openSearchDB(t)
	fx := &searchFixture{
		db:       conn,
		repo:     NewRepository(conn),
		clock:    clock.NewMock(fixtureNow),
		store1:   uuid.New(),
		store2:   uuid.New(),
		category: models.Category{Name: "drinks"},
		products: map[string]models.Product{},
	}
	require.NoError(t, conn.Create(&fx.category).Error)

	drinks := fx.category.ID
	fx.addProduct(t, models.Product{Code: "001", Name: "cola", Price: 1000, PriceOriginal: int64Ptr(2000), Quantity: intPtr(5), CategoryID: &drinks, Tags: pq.StringArray{"soda", "best"}})
	fx.addProduct(t, models.Product{Code: "002", Name: "cola zero", Price: 1500, PriceOriginal: int64Ptr(2000), Quantity: intPtr(10), CategoryID: &drinks})
	fx.addProduct(t, models.Product{Code: "003", Name: "cider", Price: 3000, Quantity: intPtr(1)})
	fx.addProduct(t, models.Product{Code: "004", Name: "juice", Price: 5000, PriceOriginal: int64Ptr(6000)})
	fx.addProduct(t, models.Product{Code: "005", Name: "water", Price: 800, PriceOriginal: int64Ptr(900), Quantity: intPtr(20)})
	fx.addProduct(t, models.Product{Code: "00123", Name: "milk", Price: 2500, PriceOriginal: int64Ptr(2500), Quantity: intPtr(3)})

	fx.addLot(t, "001", fx.store1, 3, timePtr(fixtureNow.Add(48*time.Hour)))
	fx.addLot(t, "001", fx.store1, 4, nil)
	fx.addLot(t, "001", fx.store2, 100, timePtr(fixtureNow.Add(24*time.Hour)))
	fx.addLot(t, "002", fx.store1, 10, timePtr(fixtureNow.Add(10*24*time.Hour)))
	fx.addLot(t, "003", fx.store1, 0, timePtr(fixtureNow.Add(24*time.Hour)))
	fx.addLot(t, "004", fx.store1, 1, timePtr(fixtureNow.Add(-24*time.Hour)))
	fx.addLot(t, "005", fx.store2, 5, nil)
	fx.addLot(t, "00123", fx.store1, 7, nil)
	return fx
}

func (fx *searchFixture) addProduct(t *testing.T, p models.Product) {
	t.Helper()
	require.NoError(t, fx.db.Create(&p).Error)
	fx.products[p.Code] = p
}

func (fx *searchFixture) addLot(t *testing.T, code string, storeID uuid.UUID, qty int, exp *time.Time) {
	t.Helper()
	lot := models.Inventory{
		ProductID:      fx.products[code].ID,
		StoreID:        storeID,
		Quantity:       qty,
		ReceivedDate:   fixtureNow.Add(-72 * time.Hour),
		ExpirationDate: exp,
	}
	require.NoError(t, fx.db.Create(&lot).Error)
}

func (fx *searchFixture) service(t *testing.T, store Store) Service {
	t.Helper()
	if store == nil {
		store = fx.repo
	}
	svc, err := NewService(ServiceDeps{Store: store, Logger: logger.Nop(), Clock: fx.clock}, Config{})
	require.NoError(t, err)
	return svc
}

func codesOf(rows []ResultRow) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Code)
	}
	return out
}

var errInjected = errors.New("injected store failure")

// failingStore wraps the real repository and fails selected reads.
type failingStore struct {
	*Repository
	failInventoryRank bool
	failDiscountRank  bool
	failFindAll       bool
	failInventories   bool
	failCount         bool
}

func (f *failingStore) RankByInventory(ctx context.Context, flt Filter, storeID uuid.UUID, desc bool, offset, limit int) ([]map[string]any, error) {
	if f.failInventoryRank {
		return nil, errInjected
	}
	return f.Repository.RankByInventory(ctx, flt, storeID, desc, offset, limit)
}

func (f *failingStore) RankByDiscount(ctx context.Context, flt Filter, offset, limit int) ([]map[string]any, error) {
	if f.failDiscountRank {
		return nil, errInjected
	}
	return f.Repository.RankByDiscount(ctx, flt, offset, limit)
}

func (f *failingStore) FindAllWithInventories(ctx context.Context, flt Filter, storeID *uuid.UUID) ([]models.Product, error) {
	if f.failFindAll {
		return nil, errInjected
	}
	return f.Repository.FindAllWithInventories(ctx, flt, storeID)
}

func (f *failingStore) InventoriesFor(ctx context.Context, ids []uuid.UUID, storeID uuid.UUID) ([]models.Inventory, error) {
	if f.failInventories {
		return nil, errInjected
	}
	return f.Repository.InventoriesFor(ctx, ids, storeID)
}

func (f *failingStore) Count(ctx context.Context, flt Filter) (int64, error) {
	if f.failCount {
		return 0, errInjected
	}
	return f.Repository.Count(ctx, flt)
}

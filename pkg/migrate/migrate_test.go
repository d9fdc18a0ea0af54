package migrate

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hivehoney/aisla-sub000/pkg/config"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return sqlDB
}

func TestBundledMigrationsAreValid(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestUpCreatesSearchSchema(t *testing.T) {
	sqlDB := openSQLite(t)

	results, err := Up(context.Background(), sqlDB, config.DriverSQLite)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for _, table := range []string{"categories", "products", "inventories"} {
		var name string
		err := sqlDB.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, "table %s", table)
	}

	_, err = sqlDB.Exec(`INSERT INTO products (id, code, name, price) VALUES ('p1', '001', 'cola', 1000)`)
	require.NoError(t, err)
	_, err = sqlDB.Exec(`INSERT INTO products (id, code, name, price) VALUES ('p2', '001', 'cider', 1000)`)
	require.Error(t, err, "product code must be unique")

	_, err = sqlDB.Exec(`INSERT INTO inventories (id, product_id, store_id, quantity) VALUES ('i1', 'p1', 's1', -1)`)
	require.Error(t, err, "negative inventory must be rejected")

	again, err := Up(context.Background(), sqlDB, config.DriverSQLite)
	require.NoError(t, err)
	require.Empty(t, again)
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "create_things.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	require.Error(t, ValidateDir(dir))
}

func TestValidateDirRequiresGooseHeaders(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260301090000_things.sql"), []byte("-- +goose Up\nSELECT 1;\n"), 0o644))
	err := ValidateDir(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "goose Down")
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Inventory Lots!", CreateOptions{})
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, "_add_inventory_lots.sql"), path)
	require.NoError(t, ValidateDir(dir))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(body), "NO TRANSACTION")

	_, err = CreateSQLMigration(dir, "!!!", CreateOptions{})
	require.Error(t, err)
}

func TestCreateSQLMigrationWithoutTransaction(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "products name index", CreateOptions{NoTransaction: true})
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, "_products_name_index.sql"), path)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(body), "-- +goose NO TRANSACTION\n"), string(body))
	require.NoError(t, ValidateDir(dir))
}

func TestDialect(t *testing.T) {
	require.Equal(t, "sqlite3", string(Dialect(config.DriverSQLite)))
	require.Equal(t, "postgres", string(Dialect(config.DriverPostgres)))
}

package migrate

import (
	"context"
	"fmt"

	"github.com/hivehoney/aisla-sub000/pkg/config"
	"github.com/hivehoney/aisla-sub000/pkg/db"
	"github.com/hivehoney/aisla-sub000/pkg/logger"
)

// MaybeAutoRun applies the bundled migrations when the feature flag is enabled. Postgres
// deployments only auto-migrate in dev; the sqlite driver always may.
func MaybeAutoRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	if !cfg.App.IsDev() && !cfg.DB.IsSQLite() {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": client.Driver()})
	logg.Info(ctx, "running goose migrations (auto-run)")

	results, err := Up(ctx, sqlDB, client.Driver())
	if err != nil {
		return err
	}

	ctx = logg.WithField(ctx, "applied", len(results))
	logg.Info(ctx, "goose migrations completed")
	return nil
}

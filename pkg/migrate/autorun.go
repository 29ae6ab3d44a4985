package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/urgency-engine/pkg/config"
	"github.com/angelmondragon/urgency-engine/pkg/db"
	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every relational table owned by the service, in dependency order.
func Models() []any {
	return []any{
		&models.Product{},
		&models.ProductView{},
		&models.Order{},
		&models.TrendSignal{},
		&models.TrendSuggestion{},
		&models.TrendProduct{},
		&models.Supplier{},
		&models.ProductSupplier{},
		&models.FulfillmentRule{},
		&models.Integration{},
		&models.StoreSettings{},
	}
}

// AutoMigrate creates the schema straight from the GORM models. The postgres
// SQL migrations use partial indexes that sqlite cannot express, so the sqlite
// driver goes through here instead of goose.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(Models()...)
}

// MaybeRunDev executes migrations automatically when the app is running in dev mode and
// the feature flag is enabled.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	meta := map[string]any{"env": cfg.App.Env, "driver": cfg.DB.Driver}
	ctx = logg.WithFields(ctx, meta)

	if cfg.DB.IsSQLite() {
		logg.Info(ctx, "running gorm auto-migrate (sqlite dev)")
		if err := AutoMigrate(client.DB().WithContext(ctx)); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
		logg.Info(ctx, "auto-migrate completed")
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}
	source, err := Source("")
	if err != nil {
		return err
	}
	runner, err := NewRunner(sqlDB, cfg.DB.Driver, source, logg)
	if err != nil {
		return err
	}

	logg.Info(ctx, "applying embedded goose migrations (dev auto-run)")
	return runner.Up(ctx)
}

package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"citycompass/repository"
	"citycompass/repository/mongostore"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenGorm opens the relational database named by cfg.
func OpenGorm(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case DriverSQLite:
		// Foreign keys are off by default in sqlite. Transactions take the
		// write lock when they begin so concurrent transitions queue up.
		dialector = sqlite.Open(cfg.DBSource + "?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate")
	case DriverPostgres:
		dialector = postgres.Open(cfg.DBSource)
	default:
		return nil, fmt.Errorf("unsupported relational driver %q", cfg.DBDriver)
	}
	return gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
}

// OpenStore connects the backend selected by DB_DRIVER and prepares its
// schema (tables or indexes).
func OpenStore(ctx context.Context, cfg *Config) (repository.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if cfg.DBDriver == DriverMongo {
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGODB_URI is required when DB_DRIVER=mongo")
		}
		store, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		slog.Info("Connected to MongoDB", "database", cfg.MongoDatabase)
		return store, nil
	}

	db, err := OpenGorm(cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}
	store := repository.NewGormStore(db.WithContext(ctx))
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	slog.Info("Connected to database", "driver", cfg.DBDriver)
	return repository.NewGormStore(db), nil
}

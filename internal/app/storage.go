package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"storefront/internal/config"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// Store bundles the repositories of one storage backend.
type Store struct {
	Products repositories.ProductRepository
	Options  repositories.OptionRepository
	Admins   repositories.AdminRepository
	Carts    repositories.CartRepository

	db    *gorm.DB
	mongo *repositories.MongoStore
}

// OpenStore connects to the backend named by cfg.StorageDriver.
func OpenStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Store, error) {
	s := &Store{Carts: repositories.NewMockCartRepository()}

	switch cfg.StorageDriver {
	case config.DriverMemory:
		s.Products = repositories.NewMockProductRepository()
		s.Options = repositories.NewMockOptionRepository()
		s.Admins = repositories.NewMockAdminRepository()

	case config.DriverSQLite, config.DriverPostgres:
		dialector := sqlite.Open(cfg.DatabaseDSN)
		if cfg.StorageDriver == config.DriverPostgres {
			dialector = postgres.Open(cfg.DatabaseDSN)
		}
		db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to %s: %w", cfg.StorageDriver, err)
		}
		s.db = db
		s.Products = repositories.NewGORMProductRepository(db)
		s.Options = repositories.NewGORMOptionRepository(db)
		s.Admins = repositories.NewGORMAdminRepository(db)

	case config.DriverMongo:
		ms, err := repositories.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		s.mongo = ms
		s.Products = ms.Products()
		s.Options = ms.Options()
		s.Admins = ms.Admins()

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	log.Info("storage ready", zap.String("driver", cfg.StorageDriver))
	return s, nil
}

// NewStoreFromDB wraps an open GORM connection.
func NewStoreFromDB(db *gorm.DB) *Store {
	return &Store{
		Products: repositories.NewGORMProductRepository(db),
		Options:  repositories.NewGORMOptionRepository(db),
		Admins:   repositories.NewGORMAdminRepository(db),
		Carts:    repositories.NewMockCartRepository(),
		db:       db,
	}
}

// Migrate creates tables or indexes. The memory backend needs nothing.
func (s *Store) Migrate(ctx context.Context) error {
	switch {
	case s.db != nil:
		if err := s.db.WithContext(ctx).AutoMigrate(&models.Option{}, &models.Product{}, &models.Admin{}); err != nil {
			return fmt.Errorf("failed to auto-migrate database: %w", err)
		}
	case s.mongo != nil:
		return s.mongo.EnsureIndexes(ctx)
	}
	return nil
}

// Close releases the underlying connections.
func (s *Store) Close(ctx context.Context) error {
	switch {
	case s.db != nil:
		sqlDB, err := s.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	case s.mongo != nil:
		return s.mongo.Close(ctx)
	}
	return nil
}

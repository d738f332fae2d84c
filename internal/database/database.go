package database

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"productsapi/internal/config"
	"productsapi/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ConnectionErrorMessage is logged when the startup connection fails.
const ConnectionErrorMessage = "Hubo un error al conectar la BD"

// Handle wraps the application's single GORM connection pool and tracks
// whether the last bootstrap succeeded.
type Handle struct {
	db     *gorm.DB
	logger *zap.Logger
	ready  atomic.Bool
}

// Open builds a handle for the given driver and DSN. No connection is made:
// an unreachable database surfaces in Authenticate, not here.
func Open(driver, dsn string, logger *zap.Logger) (*Handle, error) {
	var dialector gorm.Dialector
	switch driver {
	case config.DriverPostgres:
		dialector = postgres.Open(dsn)
	case config.DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		DisableAutomaticPing: true,
		Logger: gormlogger.New(zap.NewStdLog(logger.Named("gorm")), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return New(db, logger), nil
}

// New wraps an existing GORM connection.
func New(db *gorm.DB, logger *zap.Logger) *Handle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handle{db: db, logger: logger}
}

// DB returns the underlying GORM connection.
func (h *Handle) DB() *gorm.DB {
	return h.db
}

// Authenticate verifies that the database is reachable.
func (h *Handle) Authenticate(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// Sync reconciles the schema with the declared models without dropping data.
func (h *Handle) Sync() error {
	if err := h.db.AutoMigrate(&models.Product{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Connect runs Authenticate and Sync. Failures are logged and swallowed so the
// HTTP server keeps running; Ready reports the outcome.
func (h *Handle) Connect(ctx context.Context) bool {
	if err := h.Authenticate(ctx); err != nil {
		h.ready.Store(false)
		h.logger.Error(ConnectionErrorMessage, zap.Error(err))
		return false
	}
	if err := h.Sync(); err != nil {
		h.ready.Store(false)
		h.logger.Error(ConnectionErrorMessage, zap.Error(err))
		return false
	}

	h.ready.Store(true)
	h.logger.Info("database connected")
	return true
}

// Ready reports whether the last Connect succeeded.
func (h *Handle) Ready() bool {
	return h.ready.Load()
}

// Reset drops the products table and recreates it empty.
func (h *Handle) Reset() error {
	if err := h.db.Migrator().DropTable(&models.Product{}); err != nil {
		return fmt.Errorf("failed to drop products table: %w", err)
	}
	return h.Sync()
}

// Close releases the connection pool.
func (h *Handle) Close() error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

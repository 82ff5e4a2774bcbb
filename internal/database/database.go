package database

import (
	"fmt"
	"time"

	"github.com/Hicham-Azeroual/chatApplication/internal/logger"
	"github.com/Hicham-Azeroual/chatApplication/internal/models"
	"github.com/Hicham-Azeroual/chatApplication/internal/telemetry"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB holds the database connection
var DB *gorm.DB

// Supported drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Options configures the connection
type Options struct {
	Driver string
	// DSN is a postgres connection string or a sqlite file path
	DSN     string
	Verbose bool
	// Tracing opens a span per statement under the request span
	Tracing bool
}

// Initialize creates and configures the database connection
func Initialize(opts Options) error {
	db, err := Open(opts)
	if err != nil {
		return err
	}
	DB = db
	logger.Log.Info("Database connected", zap.String("driver", opts.Driver))
	return nil
}

// Open opens a connection without touching the package-level DB
func Open(opts Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case DriverPostgres, "":
		dialector = postgres.Open(opts.DSN)
	case DriverSQLite:
		dialector = sqlite.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	// Configure GORM logger
	gormLogger := gormlogger.Default.LogMode(gormlogger.Warn)
	if opts.Verbose {
		gormLogger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if opts.Tracing {
		if err := db.Use(telemetry.GORMTracingPlugin()); err != nil {
			return nil, fmt.Errorf("failed to install tracing plugin: %w", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if opts.Driver == DriverSQLite {
		// sqlite serializes writers; one connection avoids "database is locked"
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return db, nil
}

// OpenInMemory opens a migrated in-memory sqlite database and installs it as DB.
// Used by tests and by local runs without postgres.
func OpenInMemory() (*gorm.DB, error) {
	db, err := Open(Options{Driver: DriverSQLite, DSN: ":memory:"})
	if err != nil {
		return nil, err
	}
	DB = db
	if err := Migrate(); err != nil {
		return nil, err
	}
	return db, nil
}

// AllModels lists every persisted model in migration order
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.PasswordReset{},
		&models.Group{},
		&models.Message{},
		&models.MessageReaction{},
		&models.Status{},
		&models.Notification{},
	}
}

// Migrate runs auto-migration for all models
func Migrate() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := DB.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	logger.Log.Info("Database migrations completed")
	return nil
}

// createIndexes creates the composite indexes the chat queries rely on
func createIndexes() error {
	stmts := []string{
		// Conversation history in both directions
		"CREATE INDEX IF NOT EXISTS idx_messages_pair_created ON messages (sender_id, receiver_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_messages_group_created ON messages (group_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications (user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_statuses_created ON statuses (created_at DESC)",
	}
	if DB.Dialector.Name() == DriverPostgres {
		stmts = append(stmts, "CREATE INDEX IF NOT EXISTS idx_users_email_lower ON users (LOWER(email))")
	}

	for _, stmt := range stmts {
		if err := DB.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// Health checks database connectivity
func Health() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Ping()
}

package db

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported values for Config.Driver.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config captures the connection parameters for the CRM store.
type Config struct {
	Driver   string
	User     string
	Password string
	Host     string
	Port     string
	Database string
	Params   string
	// SQLitePath is only used by the sqlite driver; ":memory:" is accepted.
	SQLitePath string
	LogSQL     bool
}

// FromEnv populates a Config using sensible defaults that can be overridden via environment variables.
func FromEnv() Config {
	driver := strings.ToLower(getEnv("CRM_DB_DRIVER", DriverMySQL))
	cfg := Config{
		Driver:     driver,
		SQLitePath: getEnv("SQLITE_PATH", "crm.db"),
		LogSQL:     getEnv("CRM_LOG_SQL", "false") == "true",
	}

	switch driver {
	case DriverPostgres:
		cfg.User = getEnv("POSTGRES_USER", "crm")
		cfg.Password = getEnv("POSTGRES_PASSWORD", "crm")
		cfg.Host = getEnv("POSTGRES_HOST", "127.0.0.1")
		cfg.Port = getEnv("POSTGRES_PORT", "5432")
		cfg.Database = getEnv("POSTGRES_DB", "crm")
		cfg.Params = getEnv("POSTGRES_SSLMODE", "disable")
	default:
		cfg.User = getEnv("MYSQL_USER", "crm")
		cfg.Password = getEnv("MYSQL_PASSWORD", "crm")
		cfg.Host = getEnv("MYSQL_HOST", "127.0.0.1")
		cfg.Port = getEnv("MYSQL_PORT", "3306")
		cfg.Database = getEnv("MYSQL_DATABASE", "crm")
		cfg.Params = getEnv("MYSQL_PARAMS", "charset=utf8mb4&parseTime=True&loc=Local")
	}
	return cfg
}

// DSN renders the driver specific connection string.
func (cfg Config) DSN() string {
	switch cfg.Driver {
	case DriverPostgres:
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.Database,
			cfg.Params,
		)
	case DriverSQLite:
		return cfg.SQLitePath
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.Database,
			cfg.Params,
		)
	}
}

// Open returns a gorm DB using the provided configuration.
func Open(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverMySQL, "":
		dialector = mysql.Open(cfg.DSN())
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN())
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}

	level := logger.Warn
	if cfg.LogSQL {
		level = logger.Info
	}
	gormCfg := &gorm.Config{
		Logger: logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
			SlowThreshold: 200 * time.Millisecond,
			LogLevel:      level,
			// Lookups of unknown IDs are an expected outcome, not a fault.
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
	}

	gdb, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	if cfg.Driver == DriverSQLite {
		// sqlite serialises writers; a single connection keeps transactions from locking each other out.
		sqlDB.SetMaxOpenConns(1)
		return gdb, nil
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return gdb, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

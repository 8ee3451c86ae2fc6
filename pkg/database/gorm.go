package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSqlite   = "sqlite"
)

type options struct {
	logLevel logger.LogLevel
}

type Option func(*options)

// WithLogLevel overrides the SQL log level (default Warn).
func WithLogLevel(level logger.LogLevel) Option {
	return func(o *options) {
		o.logLevel = level
	}
}

func getLogger(level logger.LogLevel) logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             time.Second, // Slow SQL threshold
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true, // Ignore ErrRecordNotFound error for logger
			ParameterizedQueries:      true, // Don't include params in the SQL log
			Colorful:                  true,
		},
	)
}

func configureConnectionPool(db *gorm.DB, maxOpen int) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return nil
}

// Open connects with the named driver. dsn is a postgres connection string or
// a sqlite file/URI.
func Open(driver, dsn string, opts ...Option) (*gorm.DB, error) {
	switch driver {
	case DriverPostgres:
		return NewGormDBFromDSN(dsn, opts...)
	case DriverSqlite:
		return NewSqliteDB(dsn, opts...)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func NewGormDBFromDSN(dsn string, opts ...Option) (*gorm.DB, error) {
	o := buildOptions(opts)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         getLogger(o.logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := configureConnectionPool(db, 100); err != nil {
		return nil, err
	}

	return db, nil
}

// NewSqliteDB opens a pure-Go sqlite database with foreign keys enforced.
// SQLite allows one writer, so the pool is capped at a single connection.
func NewSqliteDB(dsn string, opts ...Option) (*gorm.DB, error) {
	o := buildOptions(opts)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         getLogger(o.logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, err
	}

	if err := configureConnectionPool(db, 1); err != nil {
		return nil, err
	}

	return db, nil
}

func buildOptions(opts []Option) options {
	o := options{logLevel: logger.Warn}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

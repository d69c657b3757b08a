package database

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options tunes the connection pool and SQL logging of one connection.
type Options struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	SlowThreshold   time.Duration
	LogLevel        logger.LogLevel
	Colorful        bool
}

func DefaultOptions() Options {
	return Options{
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: time.Hour,
		SlowThreshold:   time.Second,
		LogLevel:        logger.Info,
		Colorful:        true,
	}
}

// ForEnvironment keeps SQL logging to slow queries and errors in production.
func ForEnvironment(production bool) Options {
	opts := DefaultOptions()
	if production {
		opts.LogLevel = logger.Warn
		opts.SlowThreshold = 500 * time.Millisecond
		opts.Colorful = false
	}
	return opts
}

func newLogger(opts Options) logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             opts.SlowThreshold,
			LogLevel:                  opts.LogLevel,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  opts.Colorful,
		},
	)
}

// Open connects to Postgres. TranslateError makes unique violations surface
// as gorm.ErrDuplicatedKey, which the repositories rely on.
func Open(dsn string, opts Options) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         newLogger(opts),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)

	return db, nil
}

// NewGormDBFromDSN opens a connection with the default options.
func NewGormDBFromDSN(dsn string) (*gorm.DB, error) {
	return Open(dsn, DefaultOptions())
}

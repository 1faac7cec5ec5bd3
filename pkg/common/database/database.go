package database

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"resetd/pkg/common/config"
	"resetd/pkg/common/logger"
)

const maxOpenConns = 4

// DSN returns the postgres connection URL for cfg with the credentials
// percent-encoded.
func DSN(cfg config.Database) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Pass),
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   "/" + cfg.DB,
	}
	return u.String()
}

// Dialector returns the gorm dialector for the configured driver.
func Dialector(cfg config.Database) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverPostgres, "":
		return postgres.Open(DSN(cfg)), nil
	case config.DriverSQLite:
		return sqlite.Open(cfg.DB + "?_foreign_keys=on"), nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
}

// Open connects to the database described by cfg. When quiet is set the
// SQL trace is discarded.
func Open(cfg config.Database, quiet bool) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: newGormLogger(quiet)})
	if err != nil {
		return nil, fmt.Errorf("open db failed: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if cfg.Driver == config.DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(maxOpenConns)
	}
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	logger.WithComponent("database").Info().
		Str("driver", dialector.Name()).Str("host", cfg.Host).Int("port", cfg.Port).Str("db", cfg.DB).
		Msg("database connected")
	return db, nil
}

// Pool opens the database on first use and hands out the shared handle.
// A failed open is retried by the next caller.
type Pool struct {
	cfg   config.Database
	quiet bool

	mu     sync.Mutex
	db     *gorm.DB
	closed bool
}

// Option configures a Pool.
type Option func(*Pool)

// WithQuietSQL discards gorm's SQL trace.
func WithQuietSQL(quiet bool) Option { return func(p *Pool) { p.quiet = quiet } }

// NewPool returns an unopened Pool for cfg.
func NewPool(cfg config.Database, opts ...Option) *Pool {
	p := &Pool{cfg: cfg}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DB returns the shared handle, connecting if needed.
func (p *Pool) DB(ctx context.Context) (*gorm.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, errors.New("database pool closed")
	}
	if p.db != nil {
		return p.db.WithContext(ctx), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	db, err := Open(p.cfg, p.quiet)
	if err != nil {
		return nil, err
	}
	p.db = db
	return db.WithContext(ctx), nil
}

// Close releases the underlying connections.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	if p.db == nil {
		return nil
	}
	sqlDB, err := p.db.DB()
	p.db = nil
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func newGormLogger(quiet bool) gormlogger.Interface {
	if quiet {
		return gormlogger.Discard
	}
	return gormlogger.New(zerologWriter{}, gormlogger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// zerologWriter routes gorm's trace output to zerolog.
type zerologWriter struct{}

func (zerologWriter) Printf(format string, args ...interface{}) {
	logger.WithComponent("gorm").Warn().Msgf(format, args...)
}

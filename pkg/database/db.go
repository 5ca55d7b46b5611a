package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"anoa.com/unibot/pkg/apperror"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// Connect opens the store described by dsn. Postgres URLs and key=value DSNs use the
// postgres driver; sqlite:// URLs, file: URIs and *.db paths use sqlite.
func Connect(dsn string, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := Dialector(dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger:  newGormLogger(log),
	})
	if err != nil {
		return nil, apperror.Infrastructure(fmt.Errorf("failed to connect database: %w", err))
	}

	return db, nil
}

func Dialector(dsn string) (gorm.Dialector, error) {
	dsn = strings.TrimSpace(dsn)

	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"), strings.Contains(dsn, "host="):
		return postgres.Open(dsn), nil
	case strings.HasPrefix(dsn, "sqlite:///"):
		return sqliteDialector(strings.TrimPrefix(dsn, "sqlite:///"))
	case strings.HasPrefix(dsn, "sqlite://"):
		return sqliteDialector(strings.TrimPrefix(dsn, "sqlite://"))
	case strings.HasPrefix(dsn, "file:"), strings.HasSuffix(dsn, ".db"), strings.HasSuffix(dsn, ".sqlite"):
		return sqliteDialector(dsn)
	default:
		return nil, apperror.Infrastructure(fmt.Errorf("unsupported DATABASE_URL %q", dsn))
	}
}

func sqliteDialector(path string) (gorm.Dialector, error) {
	if path == "" {
		return nil, apperror.Infrastructure(fmt.Errorf("sqlite DATABASE_URL has no path"))
	}
	if !strings.Contains(path, "_pragma=") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		path += sep + sqlitePragmas
	}
	return sqlite.Open(path), nil
}

// WithSession runs work inside one transaction. It commits when work returns nil and
// rolls back on error or panic; the connection is always returned to the pool.
func WithSession(ctx context.Context, db *gorm.DB, work func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(work)
}

// IsPostgres reports whether db talks to postgres. Table and row locks are only issued there.
func IsPostgres(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the store is reachable.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return apperror.Infrastructure(err)
	}
	return apperror.Infrastructure(sqlDB.PingContext(ctx))
}

type zapWriter struct {
	sugar *zap.SugaredLogger
}

func (w zapWriter) Printf(format string, args ...interface{}) {
	w.sugar.Warnf(format, args...)
}

// GORM's default logger prints to stdout, which would corrupt command output.
func newGormLogger(log *zap.Logger) gormlogger.Interface {
	if log == nil {
		return gormlogger.Discard
	}
	return gormlogger.New(zapWriter{sugar: log.Named("gorm").Sugar()}, gormlogger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

package catalog

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"estimator/internal/domain"
)

// Config configures the SQLite-backed catalog.
type Config struct {
	Path         string
	BusyTimeout  time.Duration
	CacheSizeKB  int
	MaxOpenConns int
	// SlowQuery is the threshold above which queries are logged as warnings.
	SlowQuery time.Duration
	Debug     bool
}

// Store is the catalog of rates, resources and the full-text index over rates.
// Reads are safe for concurrent use; the database runs in WAL mode so readers
// never block each other or a loader.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

var (
	_ domain.CatalogReader = (*Store)(nil)
	_ domain.CatalogWriter = (*Store)(nil)
)

// Open opens (creating if needed) the catalog database and migrates the schema.
func Open(cfg Config, log *zap.Logger) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("catalog path is empty")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create catalog dir: %w", err)
		}
	}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("component", "catalog"))

	db, err := gorm.Open(sqlite.Open(dsn(cfg)), &gorm.Config{
		Logger:                 newGormLogger(log, cfg.SlowQuery, cfg.Debug),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", cfg.Path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxOpenConns)
	}

	if err := db.AutoMigrate(&rateModel{}, &resourceModel{}, &indexDocument{}, &posting{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate catalog: %w", err)
	}
	log.Debug("catalog opened", zap.String("path", cfg.Path))
	return &Store{db: db, log: log}, nil
}

// dsn applies the pragmas every pooled connection needs.
func dsn(cfg Config) string {
	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	cache := cfg.CacheSizeKB
	if cache <= 0 {
		cache = 64000
	}
	q := url.Values{}
	q.Set("_journal_mode", "WAL")
	q.Set("_synchronous", "NORMAL")
	q.Set("_foreign_keys", "on")
	q.Set("_busy_timeout", strconv.FormatInt(busy.Milliseconds(), 10))
	q.Set("_cache_size", strconv.Itoa(-cache))
	return "file:" + cfg.Path + "?" + q.Encode()
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// JournalMode reports the journal mode the connection actually runs in.
func (s *Store) JournalMode() (string, error) {
	var mode string
	err := s.db.Raw("PRAGMA journal_mode").Scan(&mode).Error
	return mode, err
}

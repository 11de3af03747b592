package sqlite

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"notekeeper/cmd/internal/domain/entity"

	"github.com/glebarez/sqlite"
	"github.com/labstack/gommon/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrClosed = errors.New("database manager is closed")

// Manager owns the process-wide database handle. The handle is opened and
// migrated on first use; concurrent first callers share a single open.
type Manager struct {
	dsn string

	mu     sync.Mutex
	db     *gorm.DB
	closed bool
}

func NewManager(dsn string) *Manager {
	return &Manager{dsn: dsn}
}

// DB returns the shared handle, opening it if needed.
func (m *Manager) DB() (*gorm.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}

	if m.db != nil {
		return m.db, nil
	}

	db, err := open(m.dsn)
	if err != nil {
		return nil, err
	}

	m.db = db
	log.Infof("database connected (%s)", m.dsn)
	return m.db, nil
}

// Open eagerly initializes the handle, so startup fails fast on a bad DSN.
func (m *Manager) Open() error {
	_, err := m.DB()
	return err
}

func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.db != nil
}

// Ping checks that the database answers, opening it if needed.
func (m *Manager) Ping(ctx context.Context) error {
	db, err := m.DB()
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the pool. The manager cannot be reopened afterwards.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	if m.db == nil {
		return nil
	}

	sqlDB, err := m.db.DB()
	m.db = nil
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}

	err = db.AutoMigrate(&entity.User{}, &entity.Note{})
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"easyselenium/internal/core"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// SQLiteRepository implements RegistryPort using SQLite via GORM
type SQLiteRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSQLiteRepository opens (creating if needed) the registry at dbPath
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath), config)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry %s: %w", dbPath, err)
	}

	repo := &SQLiteRepository{db: db, now: time.Now}

	if err := repo.Migrate(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to migrate registry: %w", err)
	}

	return repo, nil
}

// Migrate runs database migrations
func (r *SQLiteRepository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&core.SessionRecord{})
}

// RegisterSession stores a session record. Re-registering an id reopens it.
func (r *SQLiteRepository) RegisterSession(ctx context.Context, record *core.SessionRecord) error {
	if record.SessionID == "" {
		return errors.New("session id is required")
	}
	now := r.now()
	if record.LastPing.IsZero() {
		record.LastPing = now
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"owner", "host", "last_ping", "closed_at", "updated_at"}),
	}).Create(record).Error
}

// TouchSession refreshes the last ping of an open session
func (r *SQLiteRepository) TouchSession(ctx context.Context, sessionID string) error {
	now := r.now()
	return r.db.WithContext(ctx).
		Model(&core.SessionRecord{}).
		Where("session_id = ? AND closed_at IS NULL", sessionID).
		Updates(map[string]interface{}{
			"last_ping":  now,
			"updated_at": now,
		}).Error
}

// CloseSession marks a session as closed by its owner
func (r *SQLiteRepository) CloseSession(ctx context.Context, sessionID string) error {
	now := r.now()
	return r.db.WithContext(ctx).
		Model(&core.SessionRecord{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]interface{}{
			"closed_at":  &now,
			"updated_at": now,
		}).Error
}

// StaleSessions lists open sessions whose last ping is before cutoff
func (r *SQLiteRepository) StaleSessions(ctx context.Context, cutoff time.Time) ([]*core.SessionRecord, error) {
	var records []*core.SessionRecord
	result := r.db.WithContext(ctx).
		Where("closed_at IS NULL AND last_ping < ?", cutoff).
		Order("last_ping ASC").
		Find(&records)
	if result.Error != nil {
		return nil, result.Error
	}

	return records, nil
}

// GetSession retrieves a session by id, nil if unknown
func (r *SQLiteRepository) GetSession(ctx context.Context, sessionID string) (*core.SessionRecord, error) {
	var record core.SessionRecord
	result := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return &record, nil
}

// RemoveSession deletes a session record
func (r *SQLiteRepository) RemoveSession(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&core.SessionRecord{}).Error
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

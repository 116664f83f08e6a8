package blob

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Record is the row holding one named value.
type Record struct {
	Name      string `gorm:"primaryKey"`
	Data      []byte
	UpdatedAt time.Time
}

func (Record) TableName() string { return "blobs" }

type SQLite struct {
	DB *gorm.DB
}

func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("blob: sqlite: open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("blob: sqlite: migrate: %w", err)
	}
	return &SQLite{DB: db}, nil
}

func (s *SQLite) Get(ctx context.Context, name string) ([]byte, error) {
	var rec Record
	err := s.DB.WithContext(ctx).Where("name = ?", name).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("blob: sqlite: get %s: %w", name, err)
	}
	if rec.Data == nil {
		return []byte{}, nil
	}
	return rec.Data, nil
}

func (s *SQLite) Put(ctx context.Context, name string, data []byte) error {
	rec := Record{Name: name, Data: data, UpdatedAt: time.Now().UTC()}
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("blob: sqlite: put %s: %w", name, err)
	}
	return nil
}

func (s *SQLite) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

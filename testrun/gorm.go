package testrun

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hairizuanbinnoorazman/agent-backend/logger"
	"gorm.io/gorm"
)

// GormStore implements Store on top of GORM. It works with both the MySQL
// and SQLite dialects.
type GormStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewGormStore creates a GORM-backed run store.
func NewGormStore(db *gorm.DB, log logger.Logger) *GormStore {
	return &GormStore{
		db:     db,
		logger: log,
	}
}

func (s *GormStore) Create(ctx context.Context, run *Run) error {
	if err := run.Validate(); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(run).Error
	})
	if err != nil {
		s.logger.Error(ctx, "failed to create test run", map[string]interface{}{
			"error":   err.Error(),
			"results": len(run.Results),
		})
		return err
	}

	s.logger.Info(ctx, "test run stored", map[string]interface{}{
		"run_id": run.ID.String(),
		"status": string(run.Status),
	})
	return nil
}

func (s *GormStore) GetByID(ctx context.Context, id uuid.UUID) (*Run, error) {
	var run Run
	err := s.db.WithContext(ctx).
		Preload("Results", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		s.logger.Error(ctx, "failed to get test run", map[string]interface{}{
			"error":  err.Error(),
			"run_id": id.String(),
		})
		return nil, err
	}
	return &run, nil
}

func (s *GormStore) List(ctx context.Context, limit, offset int) ([]*Run, error) {
	var runs []*Run
	err := s.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&runs).Error
	if err != nil {
		s.logger.Error(ctx, "failed to list test runs", map[string]interface{}{
			"error":  err.Error(),
			"limit":  limit,
			"offset": offset,
		})
		return nil, err
	}
	return runs, nil
}

func (s *GormStore) Count(ctx context.Context) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Run{}).Count(&count).Error; err != nil {
		s.logger.Error(ctx, "failed to count test runs", map[string]interface{}{
			"error": err.Error(),
		})
		return 0, err
	}
	return int(count), nil
}

package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"articles-service/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IdempotencyRepository tracks Idempotency-Key reservations and their stored responses.
type IdempotencyRepository interface {
	// Reserve inserts rec as pending unless its key exists. It returns the stored record and
	// whether this call created it.
	Reserve(ctx context.Context, rec models.IdempotencyKey) (models.IdempotencyKey, bool, error)
	Complete(ctx context.Context, key string, status int, location string, body []byte) error
	// Release drops a pending reservation so the key can be retried.
	Release(ctx context.Context, key string) error
}

type GormIdempotencyRepository struct {
	db *gorm.DB
}

func NewGormIdempotencyRepository(db *gorm.DB) *GormIdempotencyRepository {
	return &GormIdempotencyRepository{db: db}
}

func (r *GormIdempotencyRepository) Reserve(ctx context.Context, rec models.IdempotencyKey) (models.IdempotencyKey, bool, error) {
	db := r.db.WithContext(ctx)

	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rec)
	if res.Error != nil {
		return models.IdempotencyKey{}, false, fmt.Errorf("reserving idempotency key: %w", res.Error)
	}
	if res.RowsAffected == 1 {
		return rec, true, nil
	}

	var existing models.IdempotencyKey
	if err := db.Where(&models.IdempotencyKey{Key: rec.Key}).First(&existing).Error; err != nil {
		return models.IdempotencyKey{}, false, fmt.Errorf("loading idempotency key: %w", err)
	}
	return existing, false, nil
}

func (r *GormIdempotencyRepository) Complete(ctx context.Context, key string, status int, location string, body []byte) error {
	now := time.Now().UTC()
	err := r.db.WithContext(ctx).
		Model(&models.IdempotencyKey{}).
		Where(&models.IdempotencyKey{Key: key}).
		Updates(map[string]any{
			"response_status":   status,
			"response_location": location,
			"response_body":     datatypes.JSON(body),
			"completed_at":      &now,
		}).Error
	if err != nil {
		return fmt.Errorf("completing idempotency key: %w", err)
	}
	return nil
}

func (r *GormIdempotencyRepository) Release(ctx context.Context, key string) error {
	err := r.db.WithContext(ctx).
		Where(&models.IdempotencyKey{Key: key}).
		Where("response_status = ?", 0).
		Delete(&models.IdempotencyKey{}).Error
	if err != nil {
		return fmt.Errorf("releasing idempotency key: %w", err)
	}
	return nil
}

type MemoryIdempotencyRepository struct {
	mu   sync.Mutex
	keys map[string]models.IdempotencyKey
}

func NewMemoryIdempotencyRepository() *MemoryIdempotencyRepository {
	return &MemoryIdempotencyRepository{keys: make(map[string]models.IdempotencyKey)}
}

func (r *MemoryIdempotencyRepository) Reserve(_ context.Context, rec models.IdempotencyKey) (models.IdempotencyKey, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.keys[rec.Key]; ok {
		return existing, false, nil
	}
	rec.CreatedAt = time.Now().UTC()
	r.keys[rec.Key] = rec
	return rec, true, nil
}

func (r *MemoryIdempotencyRepository) Complete(_ context.Context, key string, status int, location string, body []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.keys[key]
	if !ok {
		return fmt.Errorf("completing idempotency key: %q not reserved", key)
	}
	now := time.Now().UTC()
	rec.ResponseStatus = status
	rec.ResponseLocation = location
	rec.ResponseBody = datatypes.JSON(append([]byte(nil), body...))
	rec.CompletedAt = &now
	r.keys[key] = rec
	return nil
}

func (r *MemoryIdempotencyRepository) Release(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.keys[key]; ok && rec.Pending() {
		delete(r.keys, key)
	}
	return nil
}

package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/grocer/backoffice/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSequenceAllocator hands out public ids from the public_id_sequences table.
// Build it on the caller's transaction: the counter row stays locked until that
// transaction ends, and a rollback returns the number.
type GormSequenceAllocator struct {
	db *gorm.DB
}

// NewGormSequenceAllocator creates a new GormSequenceAllocator
func NewGormSequenceAllocator(db *gorm.DB) *GormSequenceAllocator {
	return &GormSequenceAllocator{db: db}
}

// NextID locks the counter row of entityType, returns its current number
// formatted as prefix-%04d and stores the number plus one
func (a *GormSequenceAllocator) NextID(ctx context.Context, entityType shared.EntityType) (string, error) {
	if !entityType.IsValid() {
		return "", shared.NewValidationError(fmt.Sprintf("Unknown entity type %q", entityType))
	}
	db := a.db.WithContext(ctx)

	seq, err := a.lockCounter(db, entityType)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Concurrent first callers race on the insert; the loser re-reads under the lock.
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.PublicIDSequenceModel{
				EntityType: string(entityType),
				NextNumber: 1,
				UpdatedAt:  time.Now(),
			}).Error; err != nil {
			return "", fmt.Errorf("seed %s sequence: %w", entityType, err)
		}
		seq, err = a.lockCounter(db, entityType)
	}
	if err != nil {
		return "", fmt.Errorf("lock %s sequence: %w", entityType, err)
	}

	number := seq.NextNumber
	if err := db.Model(&models.PublicIDSequenceModel{}).
		Where("entity_type = ?", string(entityType)).
		Updates(map[string]any{
			"next_number": number + 1,
			"updated_at":  time.Now(),
		}).Error; err != nil {
		return "", fmt.Errorf("advance %s sequence: %w", entityType, err)
	}

	return entityType.FormatPublicID(number), nil
}

// Peek returns the next number without allocating it
func (a *GormSequenceAllocator) Peek(ctx context.Context, entityType shared.EntityType) (int64, error) {
	var seq models.PublicIDSequenceModel
	err := a.db.WithContext(ctx).First(&seq, "entity_type = ?", string(entityType)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return seq.NextNumber, nil
}

func (a *GormSequenceAllocator) lockCounter(db *gorm.DB, entityType shared.EntityType) (*models.PublicIDSequenceModel, error) {
	var seq models.PublicIDSequenceModel
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&seq, "entity_type = ?", string(entityType)).Error; err != nil {
		return nil, err
	}
	return &seq, nil
}

// Ensure GormSequenceAllocator implements SequenceAllocator
var _ shared.SequenceAllocator = (*GormSequenceAllocator)(nil)

package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/domain/archive"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/grocer/backoffice/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSnapshotRepository implements archive.SnapshotRepository using GORM
type GormSnapshotRepository struct {
	db *gorm.DB
}

// NewGormSnapshotRepository creates a new GormSnapshotRepository
func NewGormSnapshotRepository(db *gorm.DB) *GormSnapshotRepository {
	return &GormSnapshotRepository{db: db}
}

// Create inserts a new snapshot
func (r *GormSnapshotRepository) Create(ctx context.Context, snapshot *archive.Snapshot) error {
	return translateError(r.db.WithContext(ctx).Create(models.ArchiveSnapshotModelFromDomain(snapshot)).Error)
}

// FindByID finds a snapshot by its deleted id
func (r *GormSnapshotRepository) FindByID(ctx context.Context, deletedID uuid.UUID) (*archive.Snapshot, error) {
	var model models.ArchiveSnapshotModel
	if err := r.db.WithContext(ctx).First(&model, "deleted_id = ?", deletedID).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a snapshot and locks its row
func (r *GormSnapshotRepository) FindByIDForUpdate(ctx context.Context, deletedID uuid.UUID) (*archive.Snapshot, error) {
	var model models.ArchiveSnapshotModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "deleted_id = ?", deletedID).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindPendingByOriginalIDForUpdate locks the newest unrestored snapshot of one aggregate
func (r *GormSnapshotRepository) FindPendingByOriginalIDForUpdate(ctx context.Context, entityType shared.EntityType, originalID uuid.UUID) (*archive.Snapshot, error) {
	var model models.ArchiveSnapshotModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("entity_type = ? AND original_id = ? AND restored = ?", string(entityType), originalID, false).
		Order("deleted_at DESC").
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// ListPending lists the unrestored snapshots of one entity type.
// The payload column is not selected.
func (r *GormSnapshotRepository) ListPending(ctx context.Context, entityType shared.EntityType, filter shared.Filter) ([]archive.Snapshot, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ArchiveSnapshotModel{}).
		Where("entity_type = ? AND restored = ?", string(entityType), false)
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(public_id) LIKE ? OR LOWER(display_name) LIKE ? OR LOWER(reason) LIKE ?",
			pattern, pattern, pattern)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ArchiveSnapshotModel
	if err := applyPageAndOrder(query, filter, ArchiveSnapshotSortFields, "deleted_at").
		Omit("snapshot_json").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	snapshots := make([]archive.Snapshot, len(rows))
	for i := range rows {
		snapshots[i] = *rows[i].ToDomain()
	}
	return snapshots, total, nil
}

// MarkRestored persists the restore flag, timestamp and counter
func (r *GormSnapshotRepository) MarkRestored(ctx context.Context, snapshot *archive.Snapshot) error {
	result := r.db.WithContext(ctx).Model(&models.ArchiveSnapshotModel{}).
		Where("deleted_id = ?", snapshot.DeletedID).
		Updates(map[string]any{
			"restored":      snapshot.Restored,
			"restored_at":   snapshot.RestoredAt,
			"restore_count": snapshot.RestoreCount,
		})
	return requireAffected(result)
}

// Delete removes a snapshot permanently
func (r *GormSnapshotRepository) Delete(ctx context.Context, deletedID uuid.UUID) error {
	return requireAffected(r.db.WithContext(ctx).Delete(&models.ArchiveSnapshotModel{}, "deleted_id = ?", deletedID))
}

// Ensure GormSnapshotRepository implements SnapshotRepository
var _ archive.SnapshotRepository = (*GormSnapshotRepository)(nil)

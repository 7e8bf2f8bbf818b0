package archive

import (
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/domain/archive"
	"github.com/grocer/backoffice/internal/domain/shared"
)

// TrashItem represents a snapshot in trash listings
type TrashItem struct {
	DeletedID       uuid.UUID         `json:"deleted_id"`
	EntityType      shared.EntityType `json:"entity_type"`
	OriginalID      uuid.UUID         `json:"original_id"`
	PublicID        string            `json:"public_id"`
	DisplayName     string            `json:"display_name"`
	DeletedAt       time.Time         `json:"deleted_at"`
	Reason          string            `json:"reason"`
	DeletedByUserID *uuid.UUID        `json:"deleted_by_user_id,omitempty"`
	RestoreCount    int               `json:"restore_count"`
}

// ToTrashItem converts a snapshot to a TrashItem
func ToTrashItem(s *archive.Snapshot) TrashItem {
	return TrashItem{
		DeletedID:       s.DeletedID,
		EntityType:      s.EntityType,
		OriginalID:      s.OriginalID,
		PublicID:        s.PublicID,
		DisplayName:     s.Label(),
		DeletedAt:       s.DeletedAt,
		Reason:          s.Reason,
		DeletedByUserID: s.DeletedByUserID,
		RestoreCount:    s.RestoreCount,
	}
}

// RestoreResult reports a successful restore
type RestoreResult struct {
	DeletedID    uuid.UUID         `json:"deleted_id"`
	EntityType   shared.EntityType `json:"entity_type"`
	RestoredID   uuid.UUID         `json:"restored_id"`
	PublicID     string            `json:"public_id"`
	RestoredAt   time.Time         `json:"restored_at"`
	RestoreCount int               `json:"restore_count"`
}

func newRestoreResult(s *archive.Snapshot) *RestoreResult {
	result := &RestoreResult{
		DeletedID:    s.DeletedID,
		EntityType:   s.EntityType,
		RestoredID:   s.OriginalID,
		PublicID:     s.PublicID,
		RestoreCount: s.RestoreCount,
	}
	if s.RestoredAt != nil {
		result.RestoredAt = *s.RestoredAt
	}
	return result
}

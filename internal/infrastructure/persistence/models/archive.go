package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/domain/archive"
	"github.com/grocer/backoffice/internal/domain/shared"
	"gorm.io/datatypes"
)

// ArchiveSnapshotModel is one row of the trash holding the archived graph of a deleted aggregate
type ArchiveSnapshotModel struct {
	DeletedID       uuid.UUID      `gorm:"column:deleted_id;type:uuid;primary_key"`
	EntityType      string         `gorm:"type:varchar(30);not null;index:idx_archive_snapshots_type_restored"`
	OriginalID      uuid.UUID      `gorm:"type:uuid;not null;index"`
	PublicID        string         `gorm:"type:varchar(20);not null"`
	DisplayName     string         `gorm:"type:varchar(255)"`
	DeletedAt       time.Time      `gorm:"not null;index"`
	Reason          string         `gorm:"type:varchar(500)"`
	DeletedByUserID *uuid.UUID     `gorm:"type:uuid"`
	Payload         datatypes.JSON `gorm:"column:snapshot_json;type:jsonb;not null"`
	Restored        bool           `gorm:"not null;default:false;index:idx_archive_snapshots_type_restored"`
	RestoredAt      *time.Time
	RestoreCount    int `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ArchiveSnapshotModel) TableName() string {
	return "archive_snapshots"
}

// ToDomain converts the persistence model to a domain Snapshot
func (m *ArchiveSnapshotModel) ToDomain() *archive.Snapshot {
	return &archive.Snapshot{
		DeletedID:       m.DeletedID,
		EntityType:      shared.EntityType(m.EntityType),
		OriginalID:      m.OriginalID,
		PublicID:        m.PublicID,
		DisplayName:     m.DisplayName,
		DeletedAt:       m.DeletedAt,
		Reason:          m.Reason,
		DeletedByUserID: m.DeletedByUserID,
		Payload:         json.RawMessage(m.Payload),
		Restored:        m.Restored,
		RestoredAt:      m.RestoredAt,
		RestoreCount:    m.RestoreCount,
	}
}

// ArchiveSnapshotModelFromDomain creates a new persistence model from a domain Snapshot
func ArchiveSnapshotModelFromDomain(s *archive.Snapshot) *ArchiveSnapshotModel {
	return &ArchiveSnapshotModel{
		DeletedID:       s.DeletedID,
		EntityType:      string(s.EntityType),
		OriginalID:      s.OriginalID,
		PublicID:        s.PublicID,
		DisplayName:     s.DisplayName,
		DeletedAt:       s.DeletedAt,
		Reason:          s.Reason,
		DeletedByUserID: s.DeletedByUserID,
		Payload:         datatypes.JSON(s.Payload),
		Restored:        s.Restored,
		RestoredAt:      s.RestoredAt,
		RestoreCount:    s.RestoreCount,
	}
}

// PublicIDSequenceModel holds the next number handed out for one entity type
type PublicIDSequenceModel struct {
	EntityType string `gorm:"type:varchar(30);primary_key"`
	NextNumber int64  `gorm:"not null;default:1"`
	UpdatedAt  time.Time
}

// TableName returns the table name for GORM
func (PublicIDSequenceModel) TableName() string {
	return "public_id_sequences"
}

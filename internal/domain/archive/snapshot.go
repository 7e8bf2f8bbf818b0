// Package archive models the trash: point-in-time copies of deleted
// aggregates that can be restored or purged.
package archive

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/domain/shared"
)

// Snapshot is the archived copy of one deleted aggregate with its owned
// line items. Payload holds the whole graph as JSON.
type Snapshot struct {
	DeletedID       uuid.UUID         `json:"deleted_id"`
	EntityType      shared.EntityType `json:"entity_type"`
	OriginalID      uuid.UUID         `json:"original_id"`
	PublicID        string            `json:"public_id"`
	DisplayName     string            `json:"display_name"`
	DeletedAt       time.Time         `json:"deleted_at"`
	Reason          string            `json:"reason"`
	DeletedByUserID *uuid.UUID        `json:"deleted_by_user_id,omitempty"`
	Payload         json.RawMessage   `json:"payload"`
	Restored        bool              `json:"restored"`
	RestoredAt      *time.Time        `json:"restored_at,omitempty"`
	RestoreCount    int               `json:"restore_count"`
}

// NewSnapshot serializes aggregate into a new, unrestored snapshot
func NewSnapshot(entityType shared.EntityType, root shared.AggregateRoot, displayName, reason string, actorID *uuid.UUID) (*Snapshot, error) {
	if !entityType.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Unknown entity type %q", entityType))
	}
	payload, err := json.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("serialize %s %s: %w", entityType, root.GetID(), err)
	}
	return &Snapshot{
		DeletedID:       uuid.New(),
		EntityType:      entityType,
		OriginalID:      root.GetID(),
		PublicID:        root.GetPublicID(),
		DisplayName:     displayName,
		DeletedAt:       time.Now(),
		Reason:          reason,
		DeletedByUserID: actorID,
		Payload:         payload,
	}, nil
}

// Decode unmarshals the payload into target
func (s *Snapshot) Decode(target any) error {
	if err := json.Unmarshal(s.Payload, target); err != nil {
		return fmt.Errorf("decode %s snapshot %s: %w", s.EntityType, s.DeletedID, err)
	}
	return nil
}

// MarkRestored flags the snapshot as restored. It fails if already restored.
func (s *Snapshot) MarkRestored(at time.Time) error {
	if s.Restored {
		return shared.ErrAlreadyRestored
	}
	s.Restored = true
	s.RestoredAt = &at
	s.RestoreCount++
	return nil
}

// Label is the trash display name, falling back to "<Type> <public id>"
func (s *Snapshot) Label() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return fmt.Sprintf("%s %s", s.EntityType.Label(), s.PublicID)
}

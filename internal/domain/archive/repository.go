package archive

import (
	"context"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/domain/shared"
)

// SnapshotRepository persists archive snapshots
type SnapshotRepository interface {
	Create(ctx context.Context, snapshot *Snapshot) error

	// FindByIDForUpdate loads a snapshot under a row lock so two restores of
	// the same snapshot serialize
	FindByIDForUpdate(ctx context.Context, deletedID uuid.UUID) (*Snapshot, error)

	FindByID(ctx context.Context, deletedID uuid.UUID) (*Snapshot, error)

	// FindPendingByOriginalIDForUpdate locks the newest unrestored snapshot
	// of the aggregate that lived at originalID
	FindPendingByOriginalIDForUpdate(ctx context.Context, entityType shared.EntityType, originalID uuid.UUID) (*Snapshot, error)

	// ListPending lists unrestored snapshots of a type, newest first
	ListPending(ctx context.Context, entityType shared.EntityType, filter shared.Filter) ([]Snapshot, int64, error)

	// MarkRestored persists the restored flag, timestamp and counter
	MarkRestored(ctx context.Context, snapshot *Snapshot) error

	Delete(ctx context.Context, deletedID uuid.UUID) error
}

// Exporter copies a snapshot to long-term storage before it is purged
type Exporter interface {
	Export(ctx context.Context, snapshot *Snapshot) (location string, err error)
}

// Archiver moves a live aggregate and its line items to the trash
type Archiver interface {
	ArchiveAndDelete(ctx context.Context, entityType shared.EntityType, id uuid.UUID, reason string, actorID *uuid.UUID) (*Snapshot, error)
}

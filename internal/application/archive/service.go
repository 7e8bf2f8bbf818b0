// Package archive implements the trash: deleting an aggregate moves a full
// copy of it into archive_snapshots, and restoring re-inserts that copy at its
// original id.
package archive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/application/ledger"
	"github.com/grocer/backoffice/internal/application/scope"
	"github.com/grocer/backoffice/internal/domain/archive"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/grocer/backoffice/internal/infrastructure/logger"
	"github.com/grocer/backoffice/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Service archives, lists, restores and purges deleted aggregates
type Service struct {
	txScope  scope.TransactionScope
	ledger   *ledger.Ledger
	exporter archive.Exporter
	metrics  *telemetry.LedgerMetrics
	handlers map[shared.EntityType]*handler
	now      func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithExporter copies snapshots to long-term storage before they are purged
func WithExporter(exporter archive.Exporter) Option {
	return func(s *Service) {
		s.exporter = exporter
	}
}

// WithMetrics records archive, restore and purge counts
func WithMetrics(metrics *telemetry.LedgerMetrics) Option {
	return func(s *Service) {
		s.metrics = metrics
	}
}

// NewService creates a new archive Service
func NewService(txScope scope.TransactionScope, ledger *ledger.Ledger, opts ...Option) *Service {
	s := &Service{
		txScope: txScope,
		ledger:  ledger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.handlers = newHandlers(s)
	return s
}

// ArchiveAndDelete snapshots the aggregate with its line items and deletes
// the live rows, all in one transaction. Side effects such as reversing the
// outstanding charge of a credit sale run in the same transaction.
func (s *Service) ArchiveAndDelete(ctx context.Context, entityType shared.EntityType, id uuid.UUID, reason string, actorID *uuid.UUID) (*archive.Snapshot, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "archive", "archive_and_delete",
		telemetry.WithAttribute(telemetry.SpanAttrEntityType, entityType.String()),
		telemetry.WithAttribute(telemetry.SpanAttrEntityID, id.String()),
	)
	defer span.End()

	h, err := s.handlerFor(entityType)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var snapshot *archive.Snapshot
	var cascaded []*archive.Snapshot
	err = s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		d := &deletion{repos: repos, reason: reason, actorID: actorID}
		root, err := h.load(ctx, repos, id)
		if err != nil {
			return err
		}
		if h.beforeDelete != nil {
			if err := h.beforeDelete(ctx, d, root); err != nil {
				return err
			}
		}
		snapshot, err = s.snapshotAndDelete(ctx, d, h, root)
		cascaded = d.cascaded
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	for _, snap := range append([]*archive.Snapshot{snapshot}, cascaded...) {
		s.metrics.RecordArchive(ctx, snap.EntityType.String())
		logger.L(ctx).Info("moved to trash",
			zap.String("entity_type", snap.EntityType.String()),
			zap.String("public_id", snap.PublicID),
			zap.String("deleted_id", snap.DeletedID.String()),
			zap.String("reason", snap.Reason),
		)
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrDeletedID, snapshot.DeletedID.String())
	return snapshot, nil
}

// deletion carries one ArchiveAndDelete transaction through the handlers
type deletion struct {
	repos    scope.Repositories
	reason   string
	actorID  *uuid.UUID
	cascaded []*archive.Snapshot
}

func (s *Service) snapshotAndDelete(ctx context.Context, d *deletion, h *handler, root shared.AggregateRoot) (*archive.Snapshot, error) {
	displayName := ""
	if h.displayName != nil {
		displayName = h.displayName(root)
	}
	snapshot, err := archive.NewSnapshot(h.entityType, root, displayName, d.reason, d.actorID)
	if err != nil {
		return nil, err
	}
	snapshot.DeletedAt = s.now()

	if err := d.repos.Snapshots().Create(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to store %s snapshot: %w", h.entityType, err)
	}
	if err := h.remove(ctx, d.repos, root.GetID()); err != nil {
		return nil, fmt.Errorf("failed to delete %s %s: %w", h.entityType, root.GetPublicID(), err)
	}
	return snapshot, nil
}

// cascade archives a dependent aggregate in the same transaction without
// running its own delete side effects
func (s *Service) cascade(ctx context.Context, d *deletion, entityType shared.EntityType, root shared.AggregateRoot) error {
	h, err := s.handlerFor(entityType)
	if err != nil {
		return err
	}
	snapshot, err := s.snapshotAndDelete(ctx, d, h, root)
	if err != nil {
		return err
	}
	d.cascaded = append(d.cascaded, snapshot)
	return nil
}

// List returns unrestored snapshots of entityType, newest first
func (s *Service) List(ctx context.Context, entityType shared.EntityType, filter shared.Filter) (*shared.Paginated[TrashItem], error) {
	if !entityType.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Unknown entity type %q", entityType))
	}

	var snapshots []archive.Snapshot
	var total int64
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		var err error
		snapshots, total, err = repos.Snapshots().ListPending(ctx, entityType, filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	items := make([]TrashItem, 0, len(snapshots))
	for i := range snapshots {
		items = append(items, ToTrashItem(&snapshots[i]))
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Get returns one snapshot including its payload
func (s *Service) Get(ctx context.Context, deletedID uuid.UUID) (*archive.Snapshot, error) {
	var snapshot *archive.Snapshot
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		var err error
		snapshot, err = repos.Snapshots().FindByID(ctx, deletedID)
		return err
	})
	return snapshot, err
}

// Restore re-inserts the archived aggregate with its line items at its
// original id. It fails with ALREADY_RESTORED when the snapshot was restored
// before and with ID_CONFLICT when a live row holds the original id; in both
// cases nothing changes. An empty entityType accepts any snapshot; otherwise
// a snapshot of a different type is reported as not found.
func (s *Service) Restore(ctx context.Context, entityType shared.EntityType, deletedID uuid.UUID) (*RestoreResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "archive", "restore",
		telemetry.WithAttribute(telemetry.SpanAttrDeletedID, deletedID.String()),
	)
	defer span.End()

	var result *RestoreResult
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		snapshot, err := repos.Snapshots().FindByIDForUpdate(ctx, deletedID)
		if err != nil {
			return err
		}
		if entityType != "" && snapshot.EntityType != entityType {
			return shared.NewNotFoundError(fmt.Sprintf("%s snapshot", entityType.Label()))
		}
		if snapshot.Restored {
			return shared.ErrAlreadyRestored
		}

		h, err := s.handlerFor(snapshot.EntityType)
		if err != nil {
			return err
		}
		live, err := h.exists(ctx, repos, snapshot.OriginalID)
		if err != nil {
			return err
		}
		if live {
			return shared.NewIDConflictError(snapshot.EntityType.Label(), snapshot.OriginalID)
		}

		if err := h.restore(ctx, repos, snapshot); err != nil {
			return err
		}
		if err := snapshot.MarkRestored(s.now()); err != nil {
			return err
		}
		if err := repos.Snapshots().MarkRestored(ctx, snapshot); err != nil {
			return fmt.Errorf("failed to mark snapshot restored: %w", err)
		}
		result = newRestoreResult(snapshot)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.metrics.RecordRestore(ctx, entityType.String(), restoreOutcome(err))
		logger.L(ctx).Warn("restore rejected",
			zap.String("deleted_id", deletedID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrEntityType, result.EntityType.String(),
		telemetry.SpanAttrPublicID, result.PublicID,
	)
	s.metrics.RecordRestore(ctx, result.EntityType.String(), telemetry.OutcomeSuccess)
	logger.L(ctx).Info("restored from trash",
		zap.String("entity_type", result.EntityType.String()),
		zap.String("public_id", result.PublicID),
		zap.String("deleted_id", deletedID.String()),
		zap.Int("restore_count", result.RestoreCount),
	)
	return result, nil
}

func restoreOutcome(err error) string {
	var conflict *shared.IDConflictError
	if errors.As(err, &conflict) || errors.Is(err, shared.ErrAlreadyRestored) {
		return telemetry.OutcomeConflict
	}
	return telemetry.OutcomeRejected
}

// PermanentDelete removes a snapshot for good. When an exporter is
// configured the snapshot is copied out first and a failed export keeps it.
func (s *Service) PermanentDelete(ctx context.Context, entityType shared.EntityType, deletedID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "archive", "permanent_delete",
		telemetry.WithAttribute(telemetry.SpanAttrDeletedID, deletedID.String()),
	)
	defer span.End()

	var purged *archive.Snapshot
	var location string
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		snapshot, err := repos.Snapshots().FindByIDForUpdate(ctx, deletedID)
		if err != nil {
			return err
		}
		if entityType != "" && snapshot.EntityType != entityType {
			return shared.NewNotFoundError(fmt.Sprintf("%s snapshot", entityType.Label()))
		}
		if s.exporter != nil {
			location, err = s.exporter.Export(ctx, snapshot)
			if err != nil {
				return fmt.Errorf("failed to export snapshot %s: %w", snapshot.DeletedID, err)
			}
		}
		if err := repos.Snapshots().Delete(ctx, deletedID); err != nil {
			return err
		}
		purged = snapshot
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	s.metrics.RecordPurge(ctx, purged.EntityType.String())
	logger.L(ctx).Info("snapshot purged",
		zap.String("entity_type", purged.EntityType.String()),
		zap.String("public_id", purged.PublicID),
		zap.String("deleted_id", deletedID.String()),
		zap.String("export_location", location),
	)
	return nil
}

func (s *Service) handlerFor(entityType shared.EntityType) (*handler, error) {
	h, ok := s.handlers[entityType]
	if !ok {
		return nil, shared.NewValidationError(fmt.Sprintf("Unknown entity type %q", entityType))
	}
	return h, nil
}

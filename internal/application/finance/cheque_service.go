package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backoffice/internal/application/ledger"
	"github.com/grocer/backoffice/internal/application/scope"
	"github.com/grocer/backoffice/internal/domain/archive"
	"github.com/grocer/backoffice/internal/domain/finance"
	"github.com/grocer/backoffice/internal/domain/partner"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/grocer/backoffice/internal/infrastructure/logger"
	"github.com/grocer/backoffice/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ChequeService manages post-dated cheques. A bounce is charged back to the
// drawing customer exactly once.
type ChequeService struct {
	txScope  scope.TransactionScope
	ledger   *ledger.Ledger
	archiver archive.Archiver
	metrics  *telemetry.LedgerMetrics
	now      func() time.Time
}

// NewChequeService creates a new ChequeService. metrics may be nil.
func NewChequeService(txScope scope.TransactionScope, ledger *ledger.Ledger, archiver archive.Archiver, metrics *telemetry.LedgerMetrics) *ChequeService {
	return &ChequeService{
		txScope:  txScope,
		ledger:   ledger,
		archiver: archiver,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Create registers a received cheque in PENDING
func (s *ChequeService) Create(ctx context.Context, req CreateChequeRequest) (*ChequeResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cheque", "create",
		telemetry.WithAttribute(telemetry.SpanAttrAmount, req.Amount.String()),
	)
	defer span.End()

	var cheque *finance.Cheque
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		if req.CustomerID != nil {
			ok, err := repos.Customers().ExistsByID(ctx, *req.CustomerID)
			if err != nil {
				return err
			}
			if !ok {
				return shared.NewNotFoundError("Credit customer")
			}
		}
		if req.InvoiceID != nil {
			ok, err := repos.Sales().ExistsByID(ctx, *req.InvoiceID)
			if err != nil {
				return err
			}
			if !ok {
				return shared.NewNotFoundError("Invoice")
			}
		}

		publicID, err := repos.Sequences().NextID(ctx, shared.EntityTypeCheque)
		if err != nil {
			return err
		}
		cheque, err = finance.NewCheque(publicID, req.ChequeNumber, req.BankName, req.CustomerID, req.Amount, req.IssueDate, req.DueDate)
		if err != nil {
			return err
		}
		cheque.InvoiceID = req.InvoiceID
		cheque.Note = req.Note
		return repos.Cheques().Save(ctx, cheque)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrPublicID, cheque.PublicID)
	response := ToChequeResponse(cheque)
	return &response, nil
}

// ChangeStatus moves a cheque through PENDING, DEPOSITED, CLEARED and
// BOUNCED. The first bounce charges the amount to the customer with cause
// CHEQUE_BOUNCE, bypassing the credit limit. Repeating BOUNCED changes nothing.
func (s *ChequeService) ChangeStatus(ctx context.Context, id uuid.UUID, req ChangeChequeStatusRequest) (*ChequeResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cheque", "change_status",
		telemetry.WithAttribute(telemetry.SpanAttrEntityID, id.String()),
		telemetry.WithAttribute(telemetry.SpanAttrChequeState, req.Status),
	)
	defer span.End()

	var cheque *finance.Cheque
	var charged *ledger.Result
	var bounced bool
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		var err error
		cheque, err = repos.Cheques().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		bounced, err = cheque.ChangeStatus(finance.ChequeStatus(req.Status), req.Reason, s.now())
		if err != nil {
			return err
		}
		if !bounced {
			if cheque.Status == finance.ChequeStatusBounced {
				return nil
			}
			return repos.Cheques().Save(ctx, cheque)
		}

		if cheque.CustomerID != nil {
			charged, err = s.ledger.Charge(ctx, repos, *cheque.CustomerID, cheque.Amount, partner.ChargeCauseChequeBounce, ledger.Source{
				Type:      shared.EntityTypeCheque,
				ID:        cheque.ID,
				Reference: cheque.PublicID,
			})
			if err != nil {
				return err
			}
			cheque.MarkMigratedToDebt()
		}
		if err := repos.Cheques().Save(ctx, cheque); err != nil {
			return fmt.Errorf("failed to save cheque %s: %w", cheque.PublicID, err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if bounced {
		switch {
		case charged != nil:
			s.metrics.RecordBounce(ctx, charged.Event.OverLimit)
			logger.L(ctx).Info("bounced cheque charged to customer",
				zap.String("cheque_id", cheque.ID.String()),
				zap.String("public_id", cheque.PublicID),
				zap.String("customer_id", cheque.CustomerID.String()),
				zap.String("amount", cheque.Amount.StringFixed(2)),
				zap.Bool("over_limit", charged.Event.OverLimit),
			)
		case cheque.CustomerID == nil:
			logger.L(ctx).Warn("bounced cheque has no customer to charge",
				zap.String("cheque_id", cheque.ID.String()),
				zap.String("public_id", cheque.PublicID),
			)
		}
	}

	response := ToChequeResponse(cheque)
	return &response, nil
}

// GetByID retrieves a cheque by ID
func (s *ChequeService) GetByID(ctx context.Context, id uuid.UUID) (*ChequeResponse, error) {
	var cheque *finance.Cheque
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		var err error
		cheque, err = repos.Cheques().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToChequeResponse(cheque)
	return &response, nil
}

// List retrieves a page of cheques
func (s *ChequeService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[ChequeResponse], error) {
	var cheques []finance.Cheque
	var total int64
	err := s.txScope.Execute(ctx, func(repos scope.Repositories) error {
		var err error
		cheques, total, err = repos.Cheques().FindAll(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	items := make([]ChequeResponse, 0, len(cheques))
	for i := range cheques {
		items = append(items, ToChequeResponse(&cheques[i]))
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Delete moves a pending cheque to the trash
func (s *ChequeService) Delete(ctx context.Context, id uuid.UUID, reason string, actorID *uuid.UUID) (*archive.Snapshot, error) {
	return s.archiver.ArchiveAndDelete(ctx, shared.EntityTypeCheque, id, reason, actorID)
}

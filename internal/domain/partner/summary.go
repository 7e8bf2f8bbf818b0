package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditSummary is the per-customer ledger view
type CreditSummary struct {
	CustomerID         uuid.UUID            `json:"customer_id"`
	PublicID           string               `json:"public_id"`
	Name               string               `json:"name"`
	CreditLimit        decimal.Decimal      `json:"credit_limit"`
	OutstandingBalance decimal.Decimal      `json:"outstanding_balance"`
	AvailableCredit    decimal.Decimal      `json:"available_credit"`
	TotalPurchases     decimal.Decimal      `json:"total_purchases"`
	TotalPaid          decimal.Decimal      `json:"total_paid"`
	LastPaymentDate    *time.Time           `json:"last_payment_date,omitempty"`
	PaymentTermsDays   int                  `json:"payment_terms_days"`
	Status             CreditCustomerStatus `json:"status"`
}

// PortfolioSummary aggregates the ledger across all credit customers
type PortfolioSummary struct {
	CustomerCount    int64           `json:"customer_count"`
	TotalLimit       decimal.Decimal `json:"total_limit"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	TotalAvailable   decimal.Decimal `json:"total_available"`
	OverLimitCount   int64           `json:"over_limit_count"`
}

// NewPortfolioSummary derives TotalAvailable from the two totals
func NewPortfolioSummary(count int64, totalLimit, totalOutstanding decimal.Decimal, overLimit int64) PortfolioSummary {
	return PortfolioSummary{
		CustomerCount:    count,
		TotalLimit:       totalLimit,
		TotalOutstanding: totalOutstanding,
		TotalAvailable:   decimal.Max(decimal.Zero, totalLimit.Sub(totalOutstanding)),
		OverLimitCount:   overLimit,
	}
}

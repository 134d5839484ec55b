package payment

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	gatewaytypes "github.com/frahmantamala/tbcpay/internal/core/datamodel/gateway"
	"github.com/frahmantamala/tbcpay/internal/core/datamodel/transaction"
)

// TransactionRepository is the ledger's write path. GetByTransID must return
// internal.ErrTransactionNotFound for unknown gateway ids, and UpdateResult
// must be a single row-scoped update keyed on the unique trans_id so that
// concurrent reconciliations cannot lose writes.
type TransactionRepository interface {
	Create(t *transaction.Transaction) error
	GetByTransID(transID string) (*transaction.Transaction, error)
	UpdateResult(transID string, isPaid bool, resultCode, cardNumber *string, completedAt time.Time) error
}

// Ledger owns the transaction record lifecycle: one create when the gateway
// acknowledges a start, one idempotent overwrite per reconciliation.
type Ledger struct {
	repo   TransactionRepository
	logger *slog.Logger
}

func NewLedger(repo TransactionRepository, logger *slog.Logger) *Ledger {
	return &Ledger{repo: repo, logger: logger}
}

type CreateStartedParams struct {
	Locale      string
	Subject     Subject
	AmountMajor decimal.Decimal
	Currency    int
	Type        transaction.Type
	TransID     string
}

// CreateStarted persists the attempt the instant the gateway assigns an id.
// The record must be durable before the payer is redirected, so a later
// process can always find it by trans_id.
func (l *Ledger) CreateStarted(p CreateStartedParams) (*transaction.Transaction, error) {
	t := &transaction.Transaction{
		Locale:      p.Locale,
		SubjectID:   p.Subject.SubjectID(),
		SubjectType: p.Subject.SubjectType(),
		Amount:      p.AmountMajor,
		Currency:    p.Currency,
		Type:        p.Type,
		TransID:     p.TransID,
	}

	if err := l.repo.Create(t); err != nil {
		l.logger.Error("failed to create transaction record",
			"error", err,
			"trans_id", p.TransID,
			"subject_type", p.Subject.SubjectType(),
			"subject_id", p.Subject.SubjectID())
		return nil, fmt.Errorf("create transaction record: %w", err)
	}

	l.logger.Info("transaction record created",
		"transaction_id", t.ID,
		"trans_id", t.TransID,
		"type", t.Type,
		"amount", t.Amount.String())

	return t, nil
}

// Reconcile looks up the transaction by its gateway id and overwrites the
// outcome columns with the gateway's latest truth. The update happens even
// when the charge was declined: completed_at set with is_paid false means
// "we checked and it failed", which is distinct from "never checked".
func (l *Ledger) Reconcile(transID string, result gatewaytypes.Response) (*transaction.Transaction, error) {
	t, err := l.repo.GetByTransID(transID)
	if err != nil {
		return nil, err
	}

	isPaid := result.Result() == gatewaytypes.ResultOK
	now := time.Now().UTC()

	var resultCode, cardNumber *string
	if v := result.ResultCode(); v != "" {
		resultCode = &v
	}
	if v := result.CardNumber(); v != "" {
		cardNumber = &v
	}

	if err := l.repo.UpdateResult(transID, isPaid, resultCode, cardNumber, now); err != nil {
		l.logger.Error("failed to update transaction result",
			"error", err,
			"trans_id", transID)
		return nil, fmt.Errorf("update transaction result: %w", err)
	}

	t.IsPaid = &isPaid
	t.ResultCode = resultCode
	t.CardNumber = cardNumber
	t.CompletedAt = &now

	return t, nil
}

// GetByTransID exposes the read side for the integrating application.
func (l *Ledger) GetByTransID(transID string) (*transaction.Transaction, error) {
	return l.repo.GetByTransID(transID)
}

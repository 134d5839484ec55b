package payment

import (
	"time"

	"github.com/shopspring/decimal"

	errors "github.com/frahmantamala/tbcpay/internal"
	"github.com/frahmantamala/tbcpay/internal/core/common/validation"
	gatewaytypes "github.com/frahmantamala/tbcpay/internal/core/datamodel/gateway"
	"github.com/frahmantamala/tbcpay/internal/core/datamodel/transaction"
)

// Subject is the business entity being paid for. The core only ever sees the
// type/id pair; resolving it back to an order or invoice is the integrating
// application's job.
type Subject interface {
	SubjectID() int64
	SubjectType() string
}

// SubjectRef is the plain value implementation of Subject.
type SubjectRef struct {
	ID   int64
	Type string
}

func (s SubjectRef) SubjectID() int64    { return s.ID }
func (s SubjectRef) SubjectType() string { return s.Type }

// InitParams configures one payment attempt. Zero values fall back to the
// service defaults: currency, description and locale from configuration.
type InitParams struct {
	Amount   decimal.Decimal
	Currency int
	Message  string
	Locale   string
	ClientIP string
}

type StartStatus string

const (
	// StartStarted: the gateway assigned a transaction id and the ledger
	// record is durable.
	StartStarted StartStatus = "started"
	// StartDeclined: the gateway answered with an explicit error field. No
	// record is created.
	StartDeclined StartStatus = "declined"
	// StartAmbiguous: the reply carried neither an error nor an id. No
	// record is created and no error is raised; the caller may retry.
	StartAmbiguous StartStatus = "ambiguous"
)

type StartOutcome struct {
	Status       StartStatus
	GatewayError string
	Transaction  *transaction.Transaction
	Payload      gatewaytypes.Response
}

// ReconcileResult is the outcome of a result query: the authoritative paid
// flag, the updated ledger record and the raw gateway reply for callers that
// asked for it.
type ReconcileResult struct {
	IsPaid      bool
	Transaction *transaction.Transaction
	Raw         gatewaytypes.Response
}

// StartPaymentRequest is the HTTP payload that opens a payment attempt.
type StartPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Currency    int             `json:"currency,omitempty"`
	Type        string          `json:"type,omitempty"`
	Description string          `json:"description,omitempty"`
	Locale      string          `json:"locale,omitempty"`
	SubjectID   int64           `json:"subject_id"`
	SubjectType string          `json:"subject_type"`
}

func (r *StartPaymentRequest) Validate() error {
	validator := validation.NewValidator()

	validator.Field("amount", r.Amount).
		PositiveDecimal(errors.ErrCodeInvalidAmount).
		MaxDecimalPlaces(2, errors.ErrCodeInvalidAmount)
	validator.Field("type", r.Type).OneOf(errors.ErrCodeInvalidTransactionType, "", "SMS", "DMS", "sms", "dms")
	validator.Field("subject_id", r.SubjectID).Required()
	validator.Field("subject_type", r.SubjectType).Required().MaxLength(255)
	validator.Field("description", r.Description).MaxLength(125)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// TransactionView is the read-side JSON shape of a ledger record.
type TransactionView struct {
	ID          int64           `json:"id"`
	TransID     string          `json:"trans_id"`
	SubjectID   int64           `json:"subject_id"`
	SubjectType string          `json:"subject_type"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    int             `json:"currency"`
	Type        string          `json:"type"`
	Locale      string          `json:"locale,omitempty"`
	IsPaid      *bool           `json:"is_paid"`
	ResultCode  *string         `json:"result_code,omitempty"`
	CardNumber  *string         `json:"card_number,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func NewTransactionView(t *transaction.Transaction) TransactionView {
	return TransactionView{
		ID:          t.ID,
		TransID:     t.TransID,
		SubjectID:   t.SubjectID,
		SubjectType: t.SubjectType,
		Amount:      t.Amount,
		Currency:    t.Currency,
		Type:        string(t.Type),
		Locale:      t.Locale,
		IsPaid:      t.IsPaid,
		ResultCode:  t.ResultCode,
		CardNumber:  t.CardNumber,
		CompletedAt: t.CompletedAt,
		CreatedAt:   t.CreatedAt,
	}
}

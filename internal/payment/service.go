package payment

import (
	"context"
	"fmt"
	"log/slog"

	errors "github.com/frahmantamala/tbcpay/internal"
	"github.com/frahmantamala/tbcpay/internal/core/datamodel/gateway"
	"github.com/frahmantamala/tbcpay/internal/core/datamodel/transaction"
	"github.com/frahmantamala/tbcpay/internal/core/events"
)

// GatewayAPI is the enumerated gateway capability. Exactly these five
// operations exist; nothing is forwarded dynamically.
type GatewayAPI interface {
	StartSMS(ctx context.Context, p gateway.StartParams) (gateway.Response, error)
	StartDMS(ctx context.Context, p gateway.StartParams) (gateway.Response, error)
	CaptureDMS(ctx context.Context, p gateway.CaptureParams) (gateway.Response, error)
	QueryResult(ctx context.Context, p gateway.QueryParams) (gateway.Response, error)
	CloseBusinessDay(ctx context.Context, p gateway.CloseParams) (gateway.Response, error)
}

// Config holds the orchestration defaults resolved during Init.
type Config struct {
	AmountUnit      int64
	DefaultCurrency int
	DefaultMessage  string
	DefaultLanguage string
}

// Service drives the transaction lifecycle: Init configures an attempt,
// Start opens it at the gateway and records it, IsOk reconciles the outcome,
// CaptureDMS charges a blocked amount, Close settles the business day.
type Service struct {
	gateway GatewayAPI
	ledger  *Ledger
	audit   *AuditTrail
	bus     *events.EventBus
	cfg     Config
	logger  *slog.Logger
}

func NewService(gw GatewayAPI, ledger *Ledger, audit *AuditTrail, bus *events.EventBus, cfg Config, logger *slog.Logger) *Service {
	if cfg.AmountUnit <= 0 {
		cfg.AmountUnit = 1
	}
	if cfg.DefaultCurrency == 0 {
		cfg.DefaultCurrency = errors.DefaultCurrencyCode
	}
	return &Service{
		gateway: gw,
		ledger:  ledger,
		audit:   audit,
		bus:     bus,
		cfg:     cfg,
		logger:  logger,
	}
}

// Attempt is one configured payment attempt. It never touches the network or
// the store until Start.
type Attempt struct {
	svc         *Service
	amountMinor int64
	currency    int
	description string
	language    string
	locale      string
	clientIP    string
	txType      transaction.Type
	payload     gateway.Response
	transID     string
}

// Init is the pure configuration step: minor-unit conversion, currency and
// description defaults, locale resolution with the KA->GE override.
func (s *Service) Init(p InitParams) *Attempt {
	locale := p.Locale
	if locale == "" {
		locale = s.cfg.DefaultLanguage
	}

	currency := p.Currency
	if currency == 0 {
		currency = s.cfg.DefaultCurrency
	}

	description := p.Message
	if description == "" {
		description = s.cfg.DefaultMessage
	}

	return &Attempt{
		svc:         s,
		amountMinor: ToMinorUnits(p.Amount, s.cfg.AmountUnit),
		currency:    currency,
		description: description,
		language:    ResolveLanguage(locale),
		locale:      locale,
		clientIP:    p.ClientIP,
		txType:      transaction.TypeSMS,
	}
}

// SMS selects the single-step charge flow (the default).
func (a *Attempt) SMS() *Attempt {
	a.txType = transaction.TypeSMS
	return a
}

// DMS selects the block-then-capture flow.
func (a *Attempt) DMS() *Attempt {
	a.txType = transaction.TypeDMS
	return a
}

// Start opens the transaction at the gateway. A reply with an error field is
// reported as declined with no record created; a reply with a transaction id
// creates the ledger record before returning; a reply with neither is
// reported as ambiguous with no record and no error.
func (a *Attempt) Start(ctx context.Context, subject Subject) (*StartOutcome, error) {
	s := a.svc
	label := string(a.txType)

	s.audit.Record(nil, nil,
		fmt.Sprintf("starting %s transaction for %s #%d", label, subject.SubjectType(), subject.SubjectID()), nil)

	params := gateway.StartParams{
		AmountMinor: a.amountMinor,
		Currency:    a.currency,
		ClientIP:    a.clientIP,
		Description: a.description,
		Language:    a.language,
	}

	var res gateway.Response
	var err error
	if a.txType == transaction.TypeDMS {
		res, err = s.gateway.StartDMS(ctx, params)
	} else {
		res, err = s.gateway.StartSMS(ctx, params)
	}
	if err != nil {
		s.logger.Error("gateway start failed", "error", err, "type", label)
		return nil, err
	}

	switch {
	case res.IsError():
		s.audit.Record(nil, boolPtr(false),
			fmt.Sprintf("starting %s transaction failed: %s", label, res.ErrorMessage()), res)
		s.logger.Warn("gateway declined transaction start",
			"type", label,
			"gateway_error", res.ErrorMessage())
		return &StartOutcome{
			Status:       StartDeclined,
			GatewayError: res.ErrorMessage(),
			Payload:      res,
		}, nil

	case res.IsStarted():
		a.payload = res
		a.transID = res.TransactionID()

		t, err := s.ledger.CreateStarted(CreateStartedParams{
			Locale:      a.locale,
			Subject:     subject,
			AmountMajor: ToMajorUnits(a.amountMinor, s.cfg.AmountUnit),
			Currency:    a.currency,
			Type:        a.txType,
			TransID:     a.transID,
		})
		if err != nil {
			return nil, err
		}

		s.audit.Record(&t.ID, nil,
			fmt.Sprintf("%s transaction started: %s", label, a.transID), res)

		return &StartOutcome{
			Status:      StartStarted,
			Transaction: t,
			Payload:     res,
		}, nil

	default:
		// Neither error nor TRANSACTION_ID. The original integration
		// silently dropped this case; keep the contract (no record, no
		// error) but make the outcome visible to the caller.
		s.logger.Warn("gateway start reply carried neither error nor transaction id",
			"type", label,
			"keys", len(res))
		return &StartOutcome{
			Status:  StartAmbiguous,
			Payload: res,
		}, nil
	}
}

// RedirectPayload returns the stored start reply for the hosted payment
// page. Only valid after a successful Start.
func (a *Attempt) RedirectPayload() (gateway.Response, error) {
	if a.payload == nil {
		return nil, errors.ErrNotStarted
	}
	return a.payload, nil
}

// IsOk reconciles the attempt started by this instance.
func (a *Attempt) IsOk(ctx context.Context) (*ReconcileResult, error) {
	if a.transID == "" {
		return nil, errors.ErrNotStarted
	}
	return a.svc.IsOk(ctx, a.transID, a.clientIP)
}

// IsOk queries the gateway for the final outcome of a started transaction
// and records it. It updates, never creates: an unknown trans_id fails with
// not-found. Re-running it overwrites the previous outcome with the
// gateway's latest truth.
func (s *Service) IsOk(ctx context.Context, transID, clientIP string) (*ReconcileResult, error) {
	s.audit.Record(nil, nil, "checking status of transaction: "+transID, nil)

	res, err := s.gateway.QueryResult(ctx, gateway.QueryParams{
		TransID:  transID,
		ClientIP: clientIP,
	})
	if err != nil {
		s.logger.Error("gateway result query failed", "error", err, "trans_id", transID)
		return nil, err
	}

	t, err := s.ledger.Reconcile(transID, res)
	if err != nil {
		return nil, err
	}

	isPaid := t.IsPaid != nil && *t.IsPaid

	message := "transaction unsuccessful: " + transID
	if isPaid {
		message = "transaction marked as paid: " + transID
	}
	s.audit.Record(&t.ID, &isPaid, message, res)

	s.logger.Info("transaction reconciled",
		"trans_id", transID,
		"is_paid", isPaid,
		"result_code", res.ResultCode())

	if s.bus != nil {
		s.bus.Publish(ctx, events.NewPaymentReconciledEvent(t.ID, transID, isPaid, res.ResultCode()))
	}

	return &ReconcileResult{IsPaid: isPaid, Transaction: t, Raw: res}, nil
}

// CaptureDMS charges a previously blocked DMS amount, then reconciles
// through the same path as IsOk.
func (s *Service) CaptureDMS(ctx context.Context, transID, clientIP string) (*ReconcileResult, error) {
	t, err := s.ledger.GetByTransID(transID)
	if err != nil {
		return nil, err
	}
	if t.Type != transaction.TypeDMS {
		return nil, errors.NewValidationError("capture is only valid for DMS transactions", errors.ErrCodeInvalidTransactionType)
	}

	_, err = s.gateway.CaptureDMS(ctx, gateway.CaptureParams{
		TransID:     transID,
		AmountMinor: ToMinorUnits(t.Amount, s.cfg.AmountUnit),
		Currency:    t.Currency,
		ClientIP:    clientIP,
		Description: s.cfg.DefaultMessage,
	})
	if err != nil {
		s.logger.Error("gateway capture failed", "error", err, "trans_id", transID)
		return nil, err
	}

	return s.IsOk(ctx, transID, clientIP)
}

// Close settles the business day with the acquiring bank. It touches no
// transaction record.
func (s *Service) Close(ctx context.Context, clientIP string) (gateway.Response, error) {
	res, err := s.gateway.CloseBusinessDay(ctx, gateway.CloseParams{ClientIP: clientIP})
	if err != nil {
		s.logger.Error("gateway close day failed", "error", err)
		return nil, err
	}

	s.audit.Record(nil, nil, "business day closed", res)

	return res, nil
}

// Fail records a caller-driven abort, for flows that never reached or never
// returned from the gateway (payer abandoned the redirect). No transaction
// is mutated.
func (s *Service) Fail() {
	s.audit.Record(nil, boolPtr(false), "transaction failed", nil)
}

// GetByTransID exposes the ledger read side.
func (s *Service) GetByTransID(transID string) (*transaction.Transaction, error) {
	return s.ledger.GetByTransID(transID)
}

func boolPtr(b bool) *bool {
	return &b
}

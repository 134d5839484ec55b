package payment

import (
	"encoding/json"
	"log/slog"

	"github.com/frahmantamala/tbcpay/internal/core/datamodel/auditlog"
	gatewaytypes "github.com/frahmantamala/tbcpay/internal/core/datamodel/gateway"
)

type AuditLogRepository interface {
	Create(e *auditlog.Entry) error
}

// AuditTrail appends one entry per lifecycle checkpoint when debug mode is
// on. The flag is a constructor parameter, not ambient state, so tests can
// toggle it per instance. A failed audit write is logged and swallowed: it
// must never undo or block a gateway transition already committed to the
// ledger.
type AuditTrail struct {
	repo    AuditLogRepository
	enabled bool
	logger  *slog.Logger
}

func NewAuditTrail(repo AuditLogRepository, enabled bool, logger *slog.Logger) *AuditTrail {
	return &AuditTrail{repo: repo, enabled: enabled, logger: logger}
}

func (a *AuditTrail) Enabled() bool {
	return a.enabled
}

// Record appends one entry synchronously. transactionID and status may be
// nil: failed starts have no transaction yet, and informational checkpoints
// carry no success flag.
func (a *AuditTrail) Record(transactionID *int64, status *bool, message string, payload gatewaytypes.Response) {
	if !a.enabled {
		return
	}

	entry := &auditlog.Entry{
		TransactionID: transactionID,
		Status:        status,
		Message:       message,
	}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			a.logger.Error("audit payload marshal failed", "error", err, "message", message)
		} else {
			entry.Payload = raw
		}
	}

	if err := a.repo.Create(entry); err != nil {
		a.logger.Error("audit write failed",
			"error", err,
			"message", message,
			"transaction_id", transactionID)
	}
}

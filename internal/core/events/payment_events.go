package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePaymentReconciled = "payment.reconciled"
	EventTypePaymentDeclined   = "payment.declined"
)

// PaymentReconciledEvent fires after a result query updates the ledger,
// whether the gateway reported the charge as paid or declined.
type PaymentReconciledEvent struct {
	BaseEvent
	TransactionID int64  `json:"transaction_id"`
	TransID       string `json:"trans_id"`
	IsPaid        bool   `json:"is_paid"`
	ResultCode    string `json:"result_code"`
}

func NewPaymentReconciledEvent(transactionID int64, transID string, isPaid bool, resultCode string) *PaymentReconciledEvent {
	eventType := EventTypePaymentDeclined
	if isPaid {
		eventType = EventTypePaymentReconciled
	}

	return &PaymentReconciledEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"transaction_id": transactionID,
				"trans_id":       transID,
				"is_paid":        isPaid,
				"result_code":    resultCode,
			},
		},
		TransactionID: transactionID,
		TransID:       transID,
		IsPaid:        isPaid,
		ResultCode:    resultCode,
	}
}

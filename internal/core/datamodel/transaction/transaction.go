package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	// TypeSMS is a single-step "charge now" transaction.
	TypeSMS Type = "SMS"
	// TypeDMS blocks the amount first and charges on capture.
	TypeDMS Type = "DMS"
)

// Transaction is one payment attempt acknowledged by the gateway. The result
// columns stay NULL until the first successful reconciliation; every later
// reconciliation overwrites them with the gateway's latest truth.
type Transaction struct {
	ID          int64           `gorm:"primaryKey"`
	Locale      string          `gorm:"column:locale"`
	SubjectID   int64           `gorm:"column:subject_id;not null"`
	SubjectType string          `gorm:"column:subject_type;not null"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency    int             `gorm:"column:currency;not null"`
	Type        Type            `gorm:"column:type;not null"`
	TransID     string          `gorm:"column:trans_id;not null;uniqueIndex"`
	IsPaid      *bool           `gorm:"column:is_paid"`
	ResultCode  *string         `gorm:"column:result_code"`
	CardNumber  *string         `gorm:"column:card_number"`
	CompletedAt *time.Time      `gorm:"column:completed_at"`
	CreatedAt   time.Time       `gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;default:now()"`
}

var tableName = "tbc_transactions"

// SetTableName overrides the table from configuration. Call once at startup
// before any store is constructed.
func SetTableName(name string) {
	if name != "" {
		tableName = name
	}
}

func (Transaction) TableName() string {
	return tableName
}

// Reconciled reports whether a reconciliation call has recorded an outcome,
// successful or declined.
func (t *Transaction) Reconciled() bool {
	return t.CompletedAt != nil
}

package auditlog

import (
	"encoding/json"
	"time"
)

// Entry is one append-only debug audit record. TransactionID is a soft
// reference: entries for failed or aborted starts exist before any
// transaction row does.
type Entry struct {
	ID            int64           `gorm:"primaryKey"`
	TransactionID *int64          `gorm:"column:transaction_id"`
	Status        *bool           `gorm:"column:status"`
	Message       string          `gorm:"column:message;not null"`
	Payload       json.RawMessage `gorm:"column:payload;type:jsonb"`
	CreatedAt     time.Time       `gorm:"column:created_at;default:now()"`
}

var tableName = "tbc_logs"

// SetTableName overrides the table from configuration. Call once at startup
// before any store is constructed.
func SetTableName(name string) {
	if name != "" {
		tableName = name
	}
}

func (Entry) TableName() string {
	return tableName
}

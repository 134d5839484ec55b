package postgres

import (
	"gorm.io/gorm"

	"github.com/frahmantamala/tbcpay/internal/core/datamodel/auditlog"
	paymentpkg "github.com/frahmantamala/tbcpay/internal/payment"
)

type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) paymentpkg.AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Create appends one entry. The log is append-only; nothing in this
// subsystem updates or deletes entries.
func (r *AuditLogRepository) Create(e *auditlog.Entry) error {
	return r.db.Create(e).Error
}

package postgres

import (
	"encoding/json"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/frahmantamala/tbcpay/internal/core/datamodel/auditlog"
	paymentpkg "github.com/frahmantamala/tbcpay/internal/payment"
)

// EntrySQLite is a test-specific version with text instead of jsonb for SQLite compatibility
type EntrySQLite struct {
	ID            int64     `gorm:"primaryKey"`
	TransactionID *int64    `gorm:"column:transaction_id"`
	Status        *bool     `gorm:"column:status"`
	Message       string    `gorm:"column:message;not null"`
	Payload       string    `gorm:"column:payload;type:text"` // Use text for SQLite
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (EntrySQLite) TableName() string {
	return "tbc_logs"
}

var _ = ginkgo.Describe("AuditLogRepository", func() {
	var (
		db   *gorm.DB
		repo paymentpkg.AuditLogRepository
	)

	ginkgo.BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			NowFunc: func() time.Time {
				return time.Now().UTC()
			},
		})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		err = db.AutoMigrate(&EntrySQLite{})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		repo = NewAuditLogRepository(db)
	})

	ginkgo.Describe("Create", func() {
		ginkgo.It("appends an entry with no transaction reference", func() {
			entry := &auditlog.Entry{
				Message: "starting SMS transaction for order #42",
			}

			err := repo.Create(entry)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(entry.ID).To(gomega.BeNumerically(">", 0))
		})

		ginkgo.It("stores the status flag and gateway payload", func() {
			txID := int64(7)
			status := true
			entry := &auditlog.Entry{
				TransactionID: &txID,
				Status:        &status,
				Message:       "transaction marked as paid: abc+123=",
				Payload:       json.RawMessage(`{"RESULT":"OK","RESULT_CODE":"000"}`),
			}

			err := repo.Create(entry)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			var stored EntrySQLite
			gomega.Expect(db.First(&stored, entry.ID).Error).ToNot(gomega.HaveOccurred())
			gomega.Expect(*stored.TransactionID).To(gomega.Equal(int64(7)))
			gomega.Expect(*stored.Status).To(gomega.BeTrue())
			gomega.Expect(stored.Payload).To(gomega.ContainSubstring(`"RESULT":"OK"`))
		})

		ginkgo.It("keeps every entry; nothing updates or deletes", func() {
			for i := 0; i < 3; i++ {
				gomega.Expect(repo.Create(&auditlog.Entry{Message: "checkpoint"})).ToNot(gomega.HaveOccurred())
			}

			var count int64
			gomega.Expect(db.Model(&EntrySQLite{}).Count(&count).Error).ToNot(gomega.HaveOccurred())
			gomega.Expect(count).To(gomega.Equal(int64(3)))
		})
	})
})

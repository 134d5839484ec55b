package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/frahmantamala/tbcpay/internal"
	"github.com/frahmantamala/tbcpay/internal/core/datamodel/transaction"
	paymentpkg "github.com/frahmantamala/tbcpay/internal/payment"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) paymentpkg.TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(t *transaction.Transaction) error {
	return r.db.Create(t).Error
}

func (r *TransactionRepository) GetByTransID(transID string) (*transaction.Transaction, error) {
	var t transaction.Transaction
	err := r.db.Where("trans_id = ?", transID).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, err
	}
	return &t, nil
}

// UpdateResult overwrites the reconciliation columns in one statement keyed
// on the unique gateway id, so concurrent reconciliations of the same
// transaction serialize at the row and the last one wins.
func (r *TransactionRepository) UpdateResult(transID string, isPaid bool, resultCode, cardNumber *string, completedAt time.Time) error {
	updates := map[string]interface{}{
		"is_paid":      isPaid,
		"result_code":  resultCode,
		"card_number":  cardNumber,
		"completed_at": completedAt,
		"updated_at":   time.Now().UTC(),
	}

	return r.db.Model(&transaction.Transaction{}).
		Where("trans_id = ?", transID).
		Updates(updates).Error
}

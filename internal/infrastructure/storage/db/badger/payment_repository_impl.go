package dbbadger

import (
	"context"

	"github.com/timshannon/badgerhold/v4"

	"github.com/promptpage/promptpay-daemon/internal/core/domain"
)

type paymentRepositoryImpl struct {
	db *DbManager
}

// NewPaymentRepositoryImpl returns a badger backed PaymentRepository. Records
// are keyed by transaction id.
func NewPaymentRepositoryImpl(db *DbManager) domain.PaymentRepository {
	return paymentRepositoryImpl{
		db: db,
	}
}

func (r paymentRepositoryImpl) UpsertPayment(
	ctx context.Context, payment *domain.Payment,
) (*domain.Payment, error) {
	if err := r.db.PaymentStore.Insert(payment.TxID, *payment); err != nil {
		if err == badgerhold.ErrKeyExists {
			return r.GetPaymentByTxID(ctx, payment.TxID)
		}
		return nil, err
	}
	return payment, nil
}

func (r paymentRepositoryImpl) GetPaymentByTxID(
	ctx context.Context, txid string,
) (*domain.Payment, error) {
	var payment domain.Payment
	if err := r.db.PaymentStore.Get(txid, &payment); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r paymentRepositoryImpl) GetPaymentsForComposition(
	ctx context.Context, compositionID int64,
) ([]*domain.Payment, error) {
	query := badgerhold.Where("CompositionID").Eq(compositionID)

	var found []domain.Payment
	if err := r.db.PaymentStore.Find(&found, query); err != nil {
		return nil, err
	}

	payments := make([]*domain.Payment, 0, len(found))
	for i := range found {
		payments = append(payments, &found[i])
	}
	return payments, nil
}

func (r paymentRepositoryImpl) UpdatePayment(
	ctx context.Context,
	txid string,
	updateFn func(p *domain.Payment) (*domain.Payment, error),
) error {
	currentPayment, err := r.GetPaymentByTxID(ctx, txid)
	if err != nil {
		return err
	}

	updatedPayment, err := updateFn(currentPayment)
	if err != nil {
		return err
	}

	return r.db.PaymentStore.Update(txid, *updatedPayment)
}

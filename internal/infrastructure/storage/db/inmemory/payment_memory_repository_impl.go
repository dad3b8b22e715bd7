package inmemory

import (
	"context"
	"sync"

	"github.com/promptpage/promptpay-daemon/internal/core/domain"
)

// PaymentRepositoryImpl represents an in memory storage for payment records,
// keyed by transaction id.
type PaymentRepositoryImpl struct {
	payments map[string]*domain.Payment
	lock     *sync.RWMutex
}

// NewPaymentRepositoryImpl returns a new empty PaymentRepositoryImpl.
func NewPaymentRepositoryImpl() *PaymentRepositoryImpl {
	return &PaymentRepositoryImpl{
		payments: map[string]*domain.Payment{},
		lock:     &sync.RWMutex{},
	}
}

func (r *PaymentRepositoryImpl) UpsertPayment(
	_ context.Context, payment *domain.Payment,
) (*domain.Payment, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if existing, ok := r.payments[payment.TxID]; ok {
		clone := *existing
		return &clone, nil
	}

	clone := *payment
	r.payments[payment.TxID] = &clone
	return payment, nil
}

func (r *PaymentRepositoryImpl) GetPaymentByTxID(
	_ context.Context, txid string,
) (*domain.Payment, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.getPayment(txid)
}

func (r *PaymentRepositoryImpl) GetPaymentsForComposition(
	_ context.Context, compositionID int64,
) ([]*domain.Payment, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	payments := make([]*domain.Payment, 0)
	for _, p := range r.payments {
		if p.CompositionID == compositionID {
			clone := *p
			payments = append(payments, &clone)
		}
	}
	return payments, nil
}

func (r *PaymentRepositoryImpl) UpdatePayment(
	_ context.Context,
	txid string,
	updateFn func(p *domain.Payment) (*domain.Payment, error),
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	currentPayment, err := r.getPayment(txid)
	if err != nil {
		return err
	}

	updatedPayment, err := updateFn(currentPayment)
	if err != nil {
		return err
	}

	r.payments[txid] = updatedPayment
	return nil
}

func (r *PaymentRepositoryImpl) getPayment(
	txid string,
) (*domain.Payment, error) {
	payment, ok := r.payments[txid]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	clone := *payment
	return &clone, nil
}

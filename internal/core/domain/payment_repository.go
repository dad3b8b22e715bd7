package domain

import "context"

// PaymentRepository is the abstraction for any kind of database intended to
// persist Payments.
type PaymentRepository interface {
	// UpsertPayment inserts the payment if no record exists for its txid, or
	// leaves the existing record untouched otherwise. Retried submissions must
	// not create duplicate rows nor fail on conflicts.
	UpsertPayment(ctx context.Context, payment *Payment) (*Payment, error)
	// GetPaymentByTxID returns the payment record matching the given
	// transaction id.
	GetPaymentByTxID(ctx context.Context, txid string) (*Payment, error)
	// GetPaymentsForComposition returns all the payment records accumulated
	// by the given composition.
	GetPaymentsForComposition(ctx context.Context, compositionID int64) ([]*Payment, error)
	// UpdatePayment allows to commit multiple changes to the same payment in
	// a transactional way.
	UpdatePayment(
		ctx context.Context,
		txid string,
		updateFn func(p *Payment) (*Payment, error),
	) error
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus represents the different statuses that a payment record can
// assume.
type PaymentStatus struct {
	Code int
}

func (s PaymentStatus) String() string {
	return paymentStatusStrings[s.Code]
}

// Payment is the record of one submitted transaction against a composition.
// A composition may accumulate several payments over retried submissions but
// only one is ever marked Confirmed, the others stay Submitted or become
// Rejected. The transaction id is the natural key of the record.
type Payment struct {
	ID               string
	CompositionID    int64
	TxID             string
	Status           PaymentStatus
	CreationTime     int64
	ConfirmationTime int64
}

// NewPayment returns a payment record in Submitted status for the given
// composition and transaction id.
func NewPayment(compositionID int64, txid string) (*Payment, error) {
	if txid == "" {
		return nil, ErrNullTxID
	}
	return &Payment{
		ID:            uuid.New().String(),
		CompositionID: compositionID,
		TxID:          txid,
		Status:        PaymentStatus{Code: PaymentStatusCodeSubmitted},
		CreationTime:  time.Now().Unix(),
	}, nil
}

// Confirm brings the payment to the Confirmed status. Confirming an already
// confirmed payment is a no-op.
func (p *Payment) Confirm() bool {
	if p.Status.Code == PaymentStatusCodeConfirmed {
		return true
	}
	if p.Status.Code == PaymentStatusCodeRejected {
		return false
	}
	p.Status.Code = PaymentStatusCodeConfirmed
	p.ConfirmationTime = time.Now().Unix()
	return true
}

// Reject marks the payment as Rejected after a definitive verification
// failure. A confirmed payment cannot be rejected anymore.
func (p *Payment) Reject() bool {
	if p.Status.Code == PaymentStatusCodeConfirmed {
		return false
	}
	p.Status.Code = PaymentStatusCodeRejected
	return true
}

// IsSubmitted returns whether the payment is in Submitted status.
func (p *Payment) IsSubmitted() bool {
	return p.Status.Code == PaymentStatusCodeSubmitted
}

// IsConfirmed returns whether the payment is in Confirmed status.
func (p *Payment) IsConfirmed() bool {
	return p.Status.Code == PaymentStatusCodeConfirmed
}

// IsRejected returns whether the payment is in Rejected status.
func (p *Payment) IsRejected() bool {
	return p.Status.Code == PaymentStatusCodeRejected
}

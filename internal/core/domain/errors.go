package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCompositionIsEmpty is thrown when trying to build a payment intent
	// for a composition without line items.
	ErrCompositionIsEmpty = errors.New("composition must contain at least one item")
	// ErrCompositionMustBeProposed is thrown when trying to lock a
	// composition that already left the proposed status.
	ErrCompositionMustBeProposed = errors.New("composition must be in proposed status to be locked")
	// ErrCompositionMustBeLocked is thrown when trying to confirm a payment
	// for a composition that was never locked.
	ErrCompositionMustBeLocked = errors.New("composition must be in awaiting_payment status to confirm a payment")
	// ErrCompositionAlreadyPaid is thrown when trying to confirm a
	// composition with a txid different from the one it was paid with.
	ErrCompositionAlreadyPaid = errors.New("composition already paid with a different transaction")
	// ErrCompositionNotFound ...
	ErrCompositionNotFound = errors.New("composition not found")
	// ErrCompositionItemsLocked is thrown when mutating line items of a
	// composition that already left the proposed status.
	ErrCompositionItemsLocked = errors.New("composition items are immutable once the composition is locked")
	// ErrIntentInconsistent is thrown whenever the declared total of a
	// payment intent does not equal platform fee plus creator amounts.
	ErrIntentInconsistent = errors.New("payment intent total does not match sum of outputs")
	// ErrDuplicateCreatorAddress is thrown when a payment intent contains two
	// creator outputs with the same payout address.
	ErrDuplicateCreatorAddress = errors.New("creator outputs must be aggregated per payout address")
	// ErrInvalidAddress ...
	ErrInvalidAddress = errors.New("address is not valid")
	// ErrAmountNotPositive ...
	ErrAmountNotPositive = errors.New("amount must be a positive number of nanoERGs")
	// ErrPaymentNotFound ...
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrNullTxID is thrown when confirming or recording a payment without a
	// transaction id.
	ErrNullTxID = errors.New("transaction id must not be null")
)

// DustOutputError reports an output below the minimum box value the ledger
// accepts, naming the offending destination.
type DustOutputError struct {
	Address  string
	Amount   uint64
	MinValue uint64
}

func (e *DustOutputError) Error() string {
	return fmt.Sprintf(
		"output to %s (%d) below minimum box value (%d)",
		e.Address, e.Amount, e.MinValue,
	)
}

// InsufficientFundsError reports the required versus available amounts so
// that the caller can decide whether to top-up and retry.
type InsufficientFundsError struct {
	Required  uint64
	Available uint64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf(
		"insufficient funds: need %d, have %d",
		e.Required, e.Available,
	)
}

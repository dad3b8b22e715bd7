package domain

import (
	"strings"
	"time"
)

// CompositionStatus represents the different statuses that a composition can
// assume.
type CompositionStatus struct {
	Code   int
	Failed bool
}

func (s CompositionStatus) String() string {
	return compositionStatusStrings[s.Code]
}

// CompositionItem is a single priced line item of a composition. It is the
// typed structure the storage layer must map its rows into before the
// protocol ever sees them.
type CompositionItem struct {
	SnippetVersionID     int64
	CreatorPayoutAddress string
	PriceNanoErg         uint64
	Position             int
}

// Composition is the aggregate root owning the ordered list of priced line
// items a buyer selected and the lifecycle of their payment. The composition
// and its items are the durable source of truth: payment intents and
// commitments are always re-derived from them, never trusted from a cache.
type Composition struct {
	ID                   int64
	UserAddress          string
	Status               CompositionStatus
	TxID                 string
	PlatformFeeNanoErg   uint64
	TotalRequiredNanoErg uint64
	Items                []CompositionItem
	ProposalTime         int64
	SettlementTime       int64
}

// NewComposition returns a composition in Proposed status with its total
// frozen to platform fee plus the sum of the item prices. The total must not
// drift afterwards, every consumer of the composition re-checks it.
func NewComposition(
	id int64, userAddress string, platformFee uint64, items []CompositionItem,
) (*Composition, error) {
	if len(items) <= 0 {
		return nil, ErrCompositionIsEmpty
	}
	if !isValidAddress(userAddress) {
		return nil, ErrInvalidAddress
	}

	total := platformFee
	for i, item := range items {
		if !isValidAddress(item.CreatorPayoutAddress) {
			return nil, ErrInvalidAddress
		}
		if item.PriceNanoErg <= 0 {
			return nil, ErrAmountNotPositive
		}
		items[i].Position = i
		total += item.PriceNanoErg
	}

	return &Composition{
		ID:                   id,
		UserAddress:          userAddress,
		Status:               CompositionStatus{Code: CompositionStatusCodeProposed},
		PlatformFeeNanoErg:   platformFee,
		TotalRequiredNanoErg: total,
		Items:                items,
		ProposalTime:         time.Now().Unix(),
	}, nil
}

// Lock brings the composition from the Proposed to the AwaitingPayment
// status. Locking an already locked composition is a no-op.
func (c *Composition) Lock() (bool, error) {
	if c.Status.Code == CompositionStatusCodeAwaitingPayment {
		return true, nil
	}

	if c.Status.Code != CompositionStatusCodeProposed {
		return false, ErrCompositionMustBeProposed
	}

	c.Status.Code = CompositionStatusCodeAwaitingPayment
	return true, nil
}

// ConfirmPayment brings the composition from the AwaitingPayment to the Paid
// status, recording the winning transaction id and the settlement time.
// Confirming an already paid composition with the same txid short-circuits,
// while a different txid is rejected since a composition must not be payable
// twice.
func (c *Composition) ConfirmPayment(txid string) (bool, error) {
	if txid == "" {
		return false, ErrNullTxID
	}

	if c.Status.Code == CompositionStatusCodePaid {
		if c.TxID != txid {
			return false, ErrCompositionAlreadyPaid
		}
		return true, nil
	}

	if c.Status.Code != CompositionStatusCodeAwaitingPayment {
		return false, ErrCompositionMustBeLocked
	}

	c.Status.Code = CompositionStatusCodePaid
	c.Status.Failed = false
	c.TxID = txid
	c.SettlementTime = time.Now().Unix()
	return true, nil
}

// Fail marks the composition as Failed after a definitive verification
// failure of the given transaction.
func (c *Composition) Fail(txid string) {
	if c.Status.Code == CompositionStatusCodePaid {
		return
	}

	c.Status.Code = CompositionStatusCodeFailed
	c.Status.Failed = true
	c.TxID = txid
}

// IsProposed returns whether the composition is in Proposed status.
func (c *Composition) IsProposed() bool {
	return c.Status.Code == CompositionStatusCodeProposed
}

// IsLocked returns whether the composition is in AwaitingPayment status.
func (c *Composition) IsLocked() bool {
	return c.Status.Code == CompositionStatusCodeAwaitingPayment
}

// IsPaid returns whether the composition is in Paid status.
func (c *Composition) IsPaid() bool {
	return c.Status.Code == CompositionStatusCodePaid
}

// HasFailed returns whether the composition is in Failed status.
func (c *Composition) HasFailed() bool {
	return c.Status.Failed
}

// IsOwnedBy compares the given address against the composition owner's one.
// Addresses coming from different API paths are not guaranteed byte-identical
// in casing, therefore the comparison is case-insensitive.
func (c *Composition) IsOwnedBy(address string) bool {
	return strings.EqualFold(c.UserAddress, address)
}

// PaymentIntent derives the canonical payment intent for the composition
// given the platform fee destination. The intent is recomputed from the
// persisted line items every time it is needed.
func (c *Composition) PaymentIntent(
	platformAddress string, estimatedFee uint64,
) (*PaymentIntent, error) {
	intent, err := NewPaymentIntent(
		c.ID, platformAddress, c.PlatformFeeNanoErg, c.Items, estimatedFee,
	)
	if err != nil {
		return nil, err
	}
	if intent.TotalRequired != c.TotalRequiredNanoErg {
		return nil, ErrIntentInconsistent
	}
	return intent, nil
}

func isValidAddress(addr string) bool {
	return len(strings.TrimSpace(addr)) >= minAddressLength
}

// Base58 P2PK addresses are longer, but every API path of the platform only
// guarantees opaque strings. The floor mirrors the one applied at the edges.
const minAddressLength = 10

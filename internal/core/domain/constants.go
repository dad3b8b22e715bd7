package domain

// Status codes a composition can assume during its lifecycle.
const (
	CompositionStatusCodeUndefined = iota
	CompositionStatusCodeProposed
	CompositionStatusCodeAwaitingPayment
	CompositionStatusCodePaid
	CompositionStatusCodeFailed
)

// Status codes of a payment record.
const (
	PaymentStatusCodeUndefined = iota
	PaymentStatusCodeSubmitted
	PaymentStatusCodeConfirmed
	PaymentStatusCodeRejected
)

// ProtocolVersion tags the canonicalization scheme of payment intents so
// that the commitment format can evolve without breaking verification of
// already settled compositions.
const ProtocolVersion = 1

// CommitmentSize is the byte length of the commitment digest.
const CommitmentSize = 32

var compositionStatusStrings = map[int]string{
	CompositionStatusCodeUndefined:       "undefined",
	CompositionStatusCodeProposed:        "proposed",
	CompositionStatusCodeAwaitingPayment: "awaiting_payment",
	CompositionStatusCodePaid:            "paid",
	CompositionStatusCodeFailed:          "failed",
}

var paymentStatusStrings = map[int]string{
	PaymentStatusCodeUndefined: "undefined",
	PaymentStatusCodeSubmitted: "submitted",
	PaymentStatusCodeConfirmed: "confirmed",
	PaymentStatusCodeRejected:  "rejected",
}

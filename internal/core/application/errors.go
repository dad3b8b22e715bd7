package application

import "errors"

var (
	// ErrNotAllowed is thrown when a caller operates on a composition owned
	// by somebody else.
	ErrNotAllowed = errors.New("composition does not belong to the given address")
	// ErrSignerUnavailable is thrown when the custodial signer is locked or
	// unreachable. The caller decides whether and when to retry, the service
	// never retries silently.
	ErrSignerUnavailable = errors.New("signing service is locked or unreachable")
	// ErrInvalidTxID ...
	ErrInvalidTxID = errors.New("a valid transaction id is required")
)

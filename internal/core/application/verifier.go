package application

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/promptpage/promptpay-daemon/internal/core/domain"
	"github.com/promptpage/promptpay-daemon/pkg/explorer"
	"github.com/promptpage/promptpay-daemon/pkg/registers"
)

// VerifyOptions tweak how a ledger transaction is checked against a payment
// intent.
type VerifyOptions struct {
	// Strict requires the commitment metadata to be present on the platform
	// output and to match the recomputed commitment. Non-strict mode exists
	// only for transactions settled before the commitment scheme was
	// introduced and must be opted into explicitly.
	Strict bool
	// CommitmentRegister and MetadataRegister name the auxiliary fields
	// carrying the commitment and the composition id.
	CommitmentRegister string
	MetadataRegister   string
}

// VerificationResult is the verdict of checking a ledger transaction against
// a payment intent. Every failure is reported with enough structured detail
// to be independently audited against the ledger.
type VerificationResult struct {
	Valid               bool
	PlatformOutputValid bool
	CreatorOutputsValid map[string]bool
	RegistersChecked    bool
	Errors              []string
}

// VerifyTx checks that the given confirmed transaction satisfies the payment
// intent: per destination address the summed ledger outputs must reach the
// expected amount (overpayment is accepted, underpayment rejected), and in
// strict mode the platform output must carry the freshly recomputed
// commitment and composition id in its auxiliary registers.
//
// The function is pure over its inputs: confirmation depth gating and state
// transitions belong to the caller.
func VerifyTx(
	tx explorer.Transaction,
	intent *domain.PaymentIntent,
	opts VerifyOptions,
) (*VerificationResult, error) {
	// A tampered intent must never produce a positive verdict.
	if err := intent.Validate(); err != nil {
		return nil, err
	}

	result := &VerificationResult{
		CreatorOutputsValid: make(map[string]bool, len(intent.CreatorOutputs)),
	}

	// An address may receive several outputs in the same transaction, so the
	// comparison always runs against the per-address sum.
	sums := make(map[string]uint64)
	for _, out := range tx.Outputs() {
		sums[strings.ToLower(out.Address)] += out.Value
	}

	platformSum := sums[strings.ToLower(intent.PlatformOutput.Address)]
	if platformSum >= intent.PlatformOutput.Amount {
		result.PlatformOutputValid = true
	} else {
		result.Errors = append(result.Errors, fmt.Sprintf(
			"platform output insufficient: expected %d, got %d",
			intent.PlatformOutput.Amount, platformSum,
		))
	}

	for _, expected := range intent.CreatorOutputs {
		sum := sums[strings.ToLower(expected.Address)]
		if sum >= expected.Amount {
			result.CreatorOutputsValid[expected.Address] = true
			continue
		}
		result.CreatorOutputsValid[expected.Address] = false
		result.Errors = append(result.Errors, fmt.Sprintf(
			"creator output insufficient for %s: expected %d, got %d",
			expected.Address, expected.Amount, sum,
		))
	}

	registersOk, registersFound := checkRegisters(tx, intent, opts)
	result.RegistersChecked = registersOk
	if !registersOk && opts.Strict {
		if registersFound {
			result.Errors = append(
				result.Errors, "commitment register does not match payment intent",
			)
		} else {
			result.Errors = append(
				result.Errors, "commitment register missing on platform output",
			)
		}
	}

	valid := result.PlatformOutputValid
	for _, ok := range result.CreatorOutputsValid {
		valid = valid && ok
	}
	if opts.Strict {
		valid = valid && result.RegistersChecked
	}
	result.Valid = valid

	return result, nil
}

// checkRegisters looks for a platform output whose auxiliary registers carry
// the recomputed commitment and the composition id. It reports whether a
// matching output exists and whether any platform output carried commitment
// metadata at all.
func checkRegisters(
	tx explorer.Transaction,
	intent *domain.PaymentIntent,
	opts VerifyOptions,
) (ok, found bool) {
	expectedCommitment := intent.CommitmentBytes()
	platformAddr := strings.ToLower(intent.PlatformOutput.Address)

	for _, out := range tx.Outputs() {
		if strings.ToLower(out.Address) != platformAddr {
			continue
		}
		raw, exists := out.AdditionalRegisters[opts.CommitmentRegister]
		if !exists {
			continue
		}
		found = true

		commitment, err := registers.Decode(raw)
		if err != nil || !bytes.Equal(commitment, expectedCommitment) {
			continue
		}

		if rawID, exists := out.AdditionalRegisters[opts.MetadataRegister]; exists {
			id, err := registers.DecodeUTF8(rawID)
			if err != nil || id != intent.Memo {
				continue
			}
		}

		return true, true
	}

	return false, found
}

package txbuilder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/promptpage/promptpay-daemon/internal/core/domain"
	"github.com/promptpage/promptpay-daemon/pkg/explorer"
	"github.com/promptpage/promptpay-daemon/pkg/registers"
)

// UnsignedOutput is a computed output of an unsigned transaction: value,
// destination and the auxiliary registers binding it to the payment intent.
type UnsignedOutput struct {
	Address             string            `json:"address"`
	Value               uint64            `json:"value"`
	CreationHeight      uint32            `json:"creationHeight"`
	Assets              []explorer.Asset  `json:"assets"`
	AdditionalRegisters map[string]string `json:"additionalRegisters"`
}

// UnsignedTransaction is the structure handed over to the signing
// collaborator: the selected inputs, the computed outputs in protocol order
// and the payer change destination. The network fee is not materialized as an
// output, the signer adds the fee box.
type UnsignedTransaction struct {
	Inputs         []explorer.Utxo  `json:"inputs"`
	Outputs        []UnsignedOutput `json:"outputs"`
	Fee            uint64           `json:"fee"`
	ChangeAddress  string           `json:"changeAddress"`
	CreationHeight uint32           `json:"creationHeight"`
}

// BuildParams collects everything needed to build a payment transaction for
// an intent.
type BuildParams struct {
	Intent        *domain.PaymentIntent
	PayerAddress  string
	Utxos         []explorer.Utxo
	CurrentHeight uint32
	// NetworkFee is the protocol-wide fee floor, paid by the payer on top of
	// the intent total.
	NetworkFee uint64
	// MinBoxValue is the ledger-imposed floor below which an output cannot
	// safely exist.
	MinBoxValue uint64
	// CommitmentRegister and MetadataRegister name the auxiliary fields
	// carrying the commitment and the item-id lists.
	CommitmentRegister string
	MetadataRegister   string
}

// BuildResult is the outcome of a successful build.
type BuildResult struct {
	Tx       *UnsignedTransaction
	TotalIn  uint64
	TotalOut uint64
	Fee      uint64
	Change   uint64
}

// Build constructs the unsigned multi-output payment transaction for the
// given intent: one platform-fee output carrying the commitment and the
// composition id, one output per creator carrying the commitment and its own
// item-id list, and a change output back to the payer for any surplus.
// Given the same intent, payer address and utxo pool the produced transaction
// is byte-identical across calls. No partial transaction is ever returned: the
// first validation failure aborts the build.
func Build(params BuildParams) (*BuildResult, error) {
	intent := params.Intent
	if intent == nil {
		return nil, fmt.Errorf("missing payment intent")
	}
	// Guards against a caller passing a tampered or stale intent to signing.
	if err := intent.Validate(); err != nil {
		return nil, err
	}
	if params.PayerAddress == "" {
		return nil, domain.ErrInvalidAddress
	}

	if intent.PlatformOutput.Amount < params.MinBoxValue {
		return nil, &domain.DustOutputError{
			Address:  intent.PlatformOutput.Address,
			Amount:   intent.PlatformOutput.Amount,
			MinValue: params.MinBoxValue,
		}
	}
	for _, out := range intent.CreatorOutputs {
		if out.Amount < params.MinBoxValue {
			return nil, &domain.DustOutputError{
				Address:  out.Address,
				Amount:   out.Amount,
				MinValue: params.MinBoxValue,
			}
		}
	}

	required := intent.TotalRequired + params.NetworkFee
	coins, change, err := explorer.SelectUnspents(params.Utxos, required)
	if err != nil {
		if err == explorer.ErrTargetAmountNotCovered {
			return nil, &domain.InsufficientFundsError{
				Required:  required,
				Available: explorer.TotalValue(params.Utxos),
			}
		}
		return nil, err
	}

	totalIn := uint64(0)
	for _, coin := range coins {
		totalIn += coin.Value()
	}

	commitment, err := registers.EncodeBytes(intent.CommitmentBytes())
	if err != nil {
		return nil, err
	}
	compositionID, err := registers.EncodeUTF8(intent.Memo)
	if err != nil {
		return nil, err
	}

	outputs := make([]UnsignedOutput, 0, len(intent.CreatorOutputs)+2)
	outputs = append(outputs, UnsignedOutput{
		Address:        intent.PlatformOutput.Address,
		Value:          intent.PlatformOutput.Amount,
		CreationHeight: params.CurrentHeight,
		AdditionalRegisters: map[string]string{
			params.CommitmentRegister: commitment,
			params.MetadataRegister:   compositionID,
		},
	})

	for _, out := range intent.CreatorOutputs {
		itemIDs, err := registers.EncodeUTF8(joinItemIDs(out.ItemIDs))
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, UnsignedOutput{
			Address:        out.Address,
			Value:          out.Amount,
			CreationHeight: params.CurrentHeight,
			AdditionalRegisters: map[string]string{
				params.CommitmentRegister: commitment,
				params.MetadataRegister:   itemIDs,
			},
		})
	}

	fee := params.NetworkFee
	// A change amount below the box value floor cannot exist as an output,
	// it is surrendered to the network fee instead.
	if change > 0 && change < params.MinBoxValue {
		fee += change
		change = 0
	}
	if change > 0 {
		outputs = append(outputs, UnsignedOutput{
			Address:        params.PayerAddress,
			Value:          change,
			CreationHeight: params.CurrentHeight,
		})
	}

	return &BuildResult{
		Tx: &UnsignedTransaction{
			Inputs:         coins,
			Outputs:        outputs,
			Fee:            fee,
			ChangeAddress:  params.PayerAddress,
			CreationHeight: params.CurrentHeight,
		},
		TotalIn:  totalIn,
		TotalOut: intent.TotalRequired,
		Fee:      fee,
		Change:   change,
	}, nil
}

func joinItemIDs(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ",")
}

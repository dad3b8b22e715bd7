package ergo

import (
	"encoding/json"

	"github.com/promptpage/promptpay-daemon/pkg/explorer"
)

type txPayload struct {
	ID               string          `json:"id"`
	InclusionHeight  int64           `json:"inclusionHeight"`
	NumConfirmations int64           `json:"numConfirmations"`
	Outputs          []outputPayload `json:"outputs"`
}

type outputPayload struct {
	BoxID               string                     `json:"boxId"`
	TransactionID       string                     `json:"transactionId"`
	Address             string                     `json:"address"`
	Value               uint64                     `json:"value"`
	Index               uint32                     `json:"index"`
	ErgoTree            string                     `json:"ergoTree"`
	CreationHeight      uint32                     `json:"creationHeight"`
	Assets              []explorer.Asset           `json:"assets"`
	AdditionalRegisters map[string]json.RawMessage `json:"additionalRegisters"`
}

type itemsPayload struct {
	Items []json.RawMessage `json:"items"`
	Total int               `json:"total"`
}

type blockPayload struct {
	Height uint32 `json:"height"`
}

// registerValue covers both shapes the explorer returns for a register: the
// v1 API wraps values into an object carrying the serialized form, older
// paths return the plain hex string.
type registerValue struct {
	SerializedValue string `json:"serializedValue"`
}

func decodeRegisters(raw map[string]json.RawMessage) map[string]string {
	if len(raw) <= 0 {
		return nil
	}

	registers := make(map[string]string, len(raw))
	for name, value := range raw {
		var plain string
		if err := json.Unmarshal(value, &plain); err == nil {
			registers[name] = plain
			continue
		}
		var wrapped registerValue
		if err := json.Unmarshal(value, &wrapped); err == nil {
			registers[name] = wrapped.SerializedValue
		}
	}
	return registers
}

func (p txPayload) toTransaction() explorer.Transaction {
	outputs := make([]explorer.TxOutput, 0, len(p.Outputs))
	for _, out := range p.Outputs {
		outputs = append(outputs, explorer.TxOutput{
			BoxID:               out.BoxID,
			Address:             out.Address,
			Value:               out.Value,
			Index:               out.Index,
			AdditionalRegisters: decodeRegisters(out.AdditionalRegisters),
		})
	}
	return explorer.NewTransaction(
		p.ID, outputs, p.InclusionHeight, p.NumConfirmations,
	)
}

func (p outputPayload) toUtxo() explorer.Utxo {
	return explorer.NewUtxo(
		p.BoxID, p.TransactionID, p.Index,
		p.Value,
		p.ErgoTree, p.Address,
		p.CreationHeight,
		p.Assets,
		decodeRegisters(p.AdditionalRegisters),
	)
}

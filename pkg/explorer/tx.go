package explorer

// NewTransaction returns a Transaction for the given fields.
func NewTransaction(
	hash string,
	outputs []TxOutput,
	inclusionHeight, confirmations int64,
) Transaction {
	return tx{
		THash:            hash,
		TOutputs:         outputs,
		TInclusionHeight: inclusionHeight,
		TConfirmations:   confirmations,
	}
}

type tx struct {
	THash            string     `json:"id"`
	TOutputs         []TxOutput `json:"outputs"`
	TInclusionHeight int64      `json:"inclusionHeight"`
	TConfirmations   int64      `json:"numConfirmations"`
}

func (t tx) Hash() string {
	return t.THash
}

func (t tx) Outputs() []TxOutput {
	return t.TOutputs
}

func (t tx) InclusionHeight() int64 {
	return t.TInclusionHeight
}

func (t tx) Confirmations() int64 {
	return t.TConfirmations
}

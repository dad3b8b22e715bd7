package explorer

// NewUtxo returns an Utxo for the given box fields.
func NewUtxo(
	boxID, txID string, index uint32,
	value uint64,
	ergoTree, address string,
	creationHeight uint32,
	assets []Asset,
	additionalRegisters map[string]string,
) Utxo {
	return ergoBox{
		UBoxID:               boxID,
		UTransactionID:       txID,
		UIndex:               index,
		UValue:               value,
		UErgoTree:            ergoTree,
		UAddress:             address,
		UCreationHeight:      creationHeight,
		UAssets:              assets,
		UAdditionalRegisters: additionalRegisters,
	}
}

type ergoBox struct {
	UBoxID               string            `json:"boxId"`
	UTransactionID       string            `json:"transactionId"`
	UIndex               uint32            `json:"index"`
	UValue               uint64            `json:"value"`
	UErgoTree            string            `json:"ergoTree"`
	UAddress             string            `json:"address"`
	UCreationHeight      uint32            `json:"creationHeight"`
	UAssets              []Asset           `json:"assets"`
	UAdditionalRegisters map[string]string `json:"additionalRegisters"`
}

func (b ergoBox) BoxID() string {
	return b.UBoxID
}

func (b ergoBox) TransactionID() string {
	return b.UTransactionID
}

func (b ergoBox) Index() uint32 {
	return b.UIndex
}

func (b ergoBox) Value() uint64 {
	return b.UValue
}

func (b ergoBox) ErgoTree() string {
	return b.UErgoTree
}

func (b ergoBox) Address() string {
	return b.UAddress
}

func (b ergoBox) CreationHeight() uint32 {
	return b.UCreationHeight
}

func (b ergoBox) Assets() []Asset {
	return b.UAssets
}

func (b ergoBox) AdditionalRegisters() map[string]string {
	return b.UAdditionalRegisters
}

func (b ergoBox) IsAssetFree() bool {
	return len(b.UAssets) == 0
}

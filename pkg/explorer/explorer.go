package explorer

import "errors"

var (
	// ErrTransactionNotFound is returned when the queried transaction is not
	// yet visible to the explorer. This is an expected transient state during
	// mempool propagation, not a failure.
	ErrTransactionNotFound = errors.New("transaction not found on explorer")
)

// Asset is a token carried by an Ergo box besides its nanoERG value.
type Asset struct {
	TokenID string `json:"tokenId"`
	Amount  uint64 `json:"amount"`
}

// Balance is the total confirmed balance of an address.
type Balance struct {
	NanoErgs uint64  `json:"nanoErgs"`
	Assets   []Asset `json:"tokens"`
}

// Utxo represents an unspent transaction output in the Ergo chain. The
// builder treats utxos as a read-only input pool and never mutates them.
type Utxo interface {
	BoxID() string
	TransactionID() string
	Index() uint32
	Value() uint64
	ErgoTree() string
	Address() string
	CreationHeight() uint32
	Assets() []Asset
	AdditionalRegisters() map[string]string
	// IsAssetFree returns whether the box carries nothing but nanoERG value.
	// Only asset-free boxes are eligible for automatic coin selection, so
	// that tokens the payer did not intend to spend are never burnt.
	IsAssetFree() bool
}

// Transaction represents a transaction in the Ergo chain as reported by the
// explorer, along with its confirmation depth.
type Transaction interface {
	Hash() string
	Outputs() []TxOutput
	InclusionHeight() int64
	Confirmations() int64
}

// TxOutput is a single output of a ledger transaction. An address may
// legitimately receive more than one output in the same transaction, which is
// why verification always sums per address instead of picking one.
type TxOutput struct {
	BoxID               string            `json:"boxId"`
	Address             string            `json:"address"`
	Value               uint64            `json:"value"`
	Index               uint32            `json:"index"`
	AdditionalRegisters map[string]string `json:"additionalRegisters"`
}

// Service is the representation of an explorer that allows to fetch data
// from the blockchain and to broadcast transactions.
type Service interface {
	// GetTransaction fetches a transaction by its id, returning
	// ErrTransactionNotFound while it has not propagated yet.
	GetTransaction(txid string) (Transaction, error)
	// GetBlockHeight returns the current number of blocks of the blockchain.
	GetBlockHeight() (uint32, error)
	// GetUnspents fetches the utxos locked by the given address.
	GetUnspents(addr string) ([]Utxo, error)
	// GetUnspentsForAddresses fetches the utxos of all the given addresses.
	GetUnspentsForAddresses(addresses []string) ([]Utxo, error)
	// GetTransactionsForAddress returns the list of all txs relative to the
	// given address.
	GetTransactionsForAddress(addr string) ([]Transaction, error)
	// GetBalance returns the total confirmed balance of the given address.
	GetBalance(addr string) (*Balance, error)
	// BroadcastTransaction attempts to add the given signed transaction,
	// serialized in the node JSON format, to the mempool and returns its id.
	BroadcastTransaction(txJSON string) (string, error)
}

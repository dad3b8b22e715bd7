package explorer

import (
	"errors"
	"sort"
)

var (
	// ErrNoAssetFreeUtxos is thrown when the input pool contains no box free
	// of tokens. Boxes bundling foreign tokens are excluded from automatic
	// selection to avoid silently burning them.
	ErrNoAssetFreeUtxos = errors.New("no asset-free utxos available for selection")
	// ErrTargetAmountNotCovered is thrown when even the whole eligible pool
	// cannot reach the target amount.
	ErrTargetAmountNotCovered = errors.New("total utxo amount does not cover target amount")
)

// SelectUnspents performs a coin selection over the given list of Utxos and
// returns the subset covering the targetAmount along with the change left
// over. Only asset-free boxes are eligible; they are consumed smallest-first
// so that dust accumulates into payments instead of piling up in the wallet.
// Selection is fully deterministic given the same pool: ties on value are
// broken by box id.
func SelectUnspents(
	utxos []Utxo, targetAmount uint64,
) (coins []Utxo, change uint64, err error) {
	eligible := make([]Utxo, 0, len(utxos))
	for i := range utxos {
		if utxos[i].IsAssetFree() {
			eligible = append(eligible, utxos[i])
		}
	}
	if len(eligible) <= 0 {
		err = ErrNoAssetFreeUtxos
		return
	}

	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].Value() != eligible[j].Value() {
			return eligible[i].Value() < eligible[j].Value()
		}
		return eligible[i].BoxID() < eligible[j].BoxID()
	})

	selected := make([]Utxo, 0, len(eligible))
	total := uint64(0)
	for _, utxo := range eligible {
		selected = append(selected, utxo)
		total += utxo.Value()
		if total >= targetAmount {
			break
		}
	}

	if total < targetAmount {
		err = ErrTargetAmountNotCovered
		return
	}

	coins = selected
	change = total - targetAmount
	return
}

// TotalValue sums the value of the asset-free subset of the given pool. It is
// the amount automatic selection can actually reach.
func TotalValue(utxos []Utxo) uint64 {
	total := uint64(0)
	for i := range utxos {
		if utxos[i].IsAssetFree() {
			total += utxos[i].Value()
		}
	}
	return total
}

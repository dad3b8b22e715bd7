package explorer_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thanhpk/randstr"

	"github.com/promptpage/promptpay-daemon/pkg/explorer"
)

func TestSelectUnspents(t *testing.T) {
	pool := []explorer.Utxo{
		newTestUtxo("c", 3000000, nil),
		newTestUtxo("a", 1000000, nil),
		newTestUtxo("b", 2000000, nil),
	}

	tests := []struct {
		name           string
		targetAmount   uint64
		expectedBoxIDs []string
		expectedChange uint64
	}{
		{
			name:           "single_smallest_box",
			targetAmount:   1000000,
			expectedBoxIDs: []string{"a"},
			expectedChange: 0,
		},
		{
			name:           "accumulates_smallest_first",
			targetAmount:   2500000,
			expectedBoxIDs: []string{"a", "b"},
			expectedChange: 500000,
		},
		{
			name:           "whole_pool",
			targetAmount:   6000000,
			expectedBoxIDs: []string{"a", "b", "c"},
			expectedChange: 0,
		},
	}

	for i := range tests {
		tt := tests[i]

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			coins, change, err := explorer.SelectUnspents(pool, tt.targetAmount)
			require.NoError(t, err)
			require.Equal(t, tt.expectedChange, change)

			boxIDs := make([]string, 0, len(coins))
			for _, coin := range coins {
				boxIDs = append(boxIDs, coin.BoxID())
			}
			require.Equal(t, tt.expectedBoxIDs, boxIDs)
		})
	}
}

func TestSelectUnspentsSkipsBoxesWithAssets(t *testing.T) {
	assets := []explorer.Asset{{TokenID: randstr.Hex(32), Amount: 10}}
	pool := []explorer.Utxo{
		newTestUtxo("a", 10000000, assets),
		newTestUtxo("b", 2000000, nil),
	}

	coins, change, err := explorer.SelectUnspents(pool, 1500000)
	require.NoError(t, err)
	require.Len(t, coins, 1)
	require.Equal(t, "b", coins[0].BoxID())
	require.Equal(t, uint64(500000), change)
}

func TestSelectUnspentsIsDeterministic(t *testing.T) {
	// same value on every box, ties broken by box id
	pool := []explorer.Utxo{
		newTestUtxo("z", 1000000, nil),
		newTestUtxo("m", 1000000, nil),
		newTestUtxo("a", 1000000, nil),
	}

	for i := 0; i < 5; i++ {
		coins, _, err := explorer.SelectUnspents(pool, 2000000)
		require.NoError(t, err)
		require.Len(t, coins, 2)
		require.Equal(t, "a", coins[0].BoxID())
		require.Equal(t, "m", coins[1].BoxID())
	}
}

func TestFailingSelectUnspents(t *testing.T) {
	t.Run("no_asset_free_utxos", func(t *testing.T) {
		assets := []explorer.Asset{{TokenID: randstr.Hex(32), Amount: 1}}
		pool := []explorer.Utxo{newTestUtxo("a", 10000000, assets)}

		_, _, err := explorer.SelectUnspents(pool, 1000000)
		require.EqualError(t, err, explorer.ErrNoAssetFreeUtxos.Error())
	})

	t.Run("target_not_covered", func(t *testing.T) {
		pool := []explorer.Utxo{newTestUtxo("a", 1000000, nil)}

		_, _, err := explorer.SelectUnspents(pool, 2000000)
		require.EqualError(t, err, explorer.ErrTargetAmountNotCovered.Error())
	})
}

func TestTotalValue(t *testing.T) {
	assets := []explorer.Asset{{TokenID: randstr.Hex(32), Amount: 1}}
	pool := []explorer.Utxo{
		newTestUtxo("a", 1000000, nil),
		newTestUtxo("b", 2000000, nil),
		newTestUtxo("c", 4000000, assets),
	}

	require.Equal(t, uint64(3000000), explorer.TotalValue(pool))
}

func newTestUtxo(boxID string, value uint64, assets []explorer.Asset) explorer.Utxo {
	return explorer.NewUtxo(
		boxID, randstr.Hex(32), 0, value, randstr.Hex(20),
		"9"+randstr.String(50), 100, assets, nil,
	)
}

package domain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thanhpk/randstr"

	"github.com/promptpage/promptpay-daemon/internal/core/domain"
)

const (
	platformFee  = uint64(5000000)
	estimatedFee = uint64(1000000)
)

func TestNewPaymentIntent(t *testing.T) {
	platformAddr := randomAddress()
	creatorA := randomAddress()
	creatorB := randomAddress()

	items := []domain.CompositionItem{
		{SnippetVersionID: 7, CreatorPayoutAddress: creatorB, PriceNanoErg: 20000000},
		{SnippetVersionID: 3, CreatorPayoutAddress: creatorA, PriceNanoErg: 10000000},
		{SnippetVersionID: 5, CreatorPayoutAddress: creatorB, PriceNanoErg: 15000000},
	}

	intent, err := domain.NewPaymentIntent(
		42, platformAddr, platformFee, items, estimatedFee,
	)
	require.NoError(t, err)
	require.Len(t, intent.CreatorOutputs, 2)
	require.Equal(t, platformFee+45000000, intent.TotalRequired)
	require.Equal(t, "42", intent.Memo)
	require.Len(t, intent.CommitmentHex, 64)
	require.NoError(t, intent.Validate())

	for _, out := range intent.CreatorOutputs {
		if strings.EqualFold(out.Address, creatorB) {
			require.Equal(t, uint64(35000000), out.Amount)
			require.Equal(t, 2, out.ItemCount)
			require.Equal(t, []int64{5, 7}, out.ItemIDs)
		} else {
			require.Equal(t, uint64(10000000), out.Amount)
			require.Equal(t, []int64{3}, out.ItemIDs)
		}
	}
}

func TestPaymentIntentAggregatesCaseInsensitively(t *testing.T) {
	platformAddr := randomAddress()
	creator := "9f" + randstr.String(40, "abcdefghjkmnpqrstuvwxyz123456789")

	items := []domain.CompositionItem{
		{SnippetVersionID: 1, CreatorPayoutAddress: creator, PriceNanoErg: 10000000},
		{SnippetVersionID: 2, CreatorPayoutAddress: strings.ToUpper(creator), PriceNanoErg: 5000000},
	}

	intent, err := domain.NewPaymentIntent(
		1, platformAddr, platformFee, items, estimatedFee,
	)
	require.NoError(t, err)
	require.Len(t, intent.CreatorOutputs, 1)
	require.Equal(t, uint64(15000000), intent.CreatorOutputs[0].Amount)
	require.Equal(t, 2, intent.CreatorOutputs[0].ItemCount)
}

func TestCommitmentDeterminism(t *testing.T) {
	platformAddr := randomAddress()
	items := randomItems(5)

	first, err := domain.NewPaymentIntent(
		9, platformAddr, platformFee, items, estimatedFee,
	)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		next, err := domain.NewPaymentIntent(
			9, platformAddr, platformFee, items, estimatedFee,
		)
		require.NoError(t, err)
		require.Equal(t, first.CommitmentHex, next.CommitmentHex)
		require.Equal(t, first.CanonicalString(), next.CanonicalString())
	}
}

func TestCommitmentOrderInvariance(t *testing.T) {
	platformAddr := randomAddress()
	items := randomItems(4)

	reversed := make([]domain.CompositionItem, len(items))
	for i := range items {
		reversed[len(items)-1-i] = items[i]
	}

	straight, err := domain.NewPaymentIntent(
		3, platformAddr, platformFee, items, estimatedFee,
	)
	require.NoError(t, err)
	shuffled, err := domain.NewPaymentIntent(
		3, platformAddr, platformFee, reversed, estimatedFee,
	)
	require.NoError(t, err)

	require.Equal(t, straight.CommitmentHex, shuffled.CommitmentHex)
}

func TestCommitmentChangesWithContent(t *testing.T) {
	platformAddr := randomAddress()
	items := randomItems(3)

	base, err := domain.NewPaymentIntent(
		1, platformAddr, platformFee, items, estimatedFee,
	)
	require.NoError(t, err)

	tests := []struct {
		name   string
		intent func() (*domain.PaymentIntent, error)
	}{
		{
			name: "different_composition_id",
			intent: func() (*domain.PaymentIntent, error) {
				return domain.NewPaymentIntent(
					2, platformAddr, platformFee, items, estimatedFee,
				)
			},
		},
		{
			name: "different_platform_fee",
			intent: func() (*domain.PaymentIntent, error) {
				return domain.NewPaymentIntent(
					1, platformAddr, platformFee+1, items, estimatedFee,
				)
			},
		},
		{
			name: "different_price",
			intent: func() (*domain.PaymentIntent, error) {
				changed := make([]domain.CompositionItem, len(items))
				copy(changed, items)
				changed[0].PriceNanoErg++
				return domain.NewPaymentIntent(
					1, platformAddr, platformFee, changed, estimatedFee,
				)
			},
		},
	}

	for i := range tests {
		tt := tests[i]

		t.Run(tt.name, func(t *testing.T) {
			other, err := tt.intent()
			require.NoError(t, err)
			require.NotEqual(t, base.CommitmentHex, other.CommitmentHex)
		})
	}
}

func TestFailingNewPaymentIntent(t *testing.T) {
	platformAddr := randomAddress()

	tests := []struct {
		name          string
		platformAddr  string
		platformFee   uint64
		items         []domain.CompositionItem
		expectedError error
	}{
		{
			name:          "empty_items",
			platformAddr:  platformAddr,
			platformFee:   platformFee,
			items:         nil,
			expectedError: domain.ErrCompositionIsEmpty,
		},
		{
			name:          "invalid_platform_address",
			platformAddr:  "short",
			platformFee:   platformFee,
			items:         randomItems(1),
			expectedError: domain.ErrInvalidAddress,
		},
		{
			name:          "zero_platform_fee",
			platformAddr:  platformAddr,
			platformFee:   0,
			items:         randomItems(1),
			expectedError: domain.ErrAmountNotPositive,
		},
		{
			name:         "zero_price_item",
			platformAddr: platformAddr,
			platformFee:  platformFee,
			items: []domain.CompositionItem{
				{SnippetVersionID: 1, CreatorPayoutAddress: randomAddress()},
			},
			expectedError: domain.ErrAmountNotPositive,
		},
	}

	for i := range tests {
		tt := tests[i]

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := domain.NewPaymentIntent(
				1, tt.platformAddr, tt.platformFee, tt.items, estimatedFee,
			)
			require.EqualError(t, err, tt.expectedError.Error())
		})
	}
}

func TestFailingIntentValidate(t *testing.T) {
	platformAddr := randomAddress()

	tests := []struct {
		name          string
		tamper        func(i *domain.PaymentIntent)
		expectedError error
	}{
		{
			name: "tampered_total",
			tamper: func(i *domain.PaymentIntent) {
				i.TotalRequired++
			},
			expectedError: domain.ErrIntentInconsistent,
		},
		{
			name: "tampered_commitment",
			tamper: func(i *domain.PaymentIntent) {
				i.CreatorOutputs[0].Amount += 1000
				i.TotalRequired += 1000
			},
			expectedError: domain.ErrIntentInconsistent,
		},
		{
			name: "duplicated_creator_address",
			tamper: func(i *domain.PaymentIntent) {
				dup := i.CreatorOutputs[0]
				dup.Address = strings.ToUpper(dup.Address)
				i.CreatorOutputs = append(i.CreatorOutputs, dup)
				i.TotalRequired += dup.Amount
				i.CommitmentHex = ""
			},
			expectedError: domain.ErrDuplicateCreatorAddress,
		},
	}

	for i := range tests {
		tt := tests[i]

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			intent, err := domain.NewPaymentIntent(
				1, platformAddr, platformFee, randomItems(2), estimatedFee,
			)
			require.NoError(t, err)
			require.NoError(t, intent.Validate())

			tt.tamper(intent)
			require.EqualError(t, intent.Validate(), tt.expectedError.Error())
		})
	}
}

func TestCanonicalStringFormat(t *testing.T) {
	intent, err := domain.NewPaymentIntent(
		7, "9platformAddr000000", 1000000,
		[]domain.CompositionItem{
			{SnippetVersionID: 12, CreatorPayoutAddress: "9creatorAddr0000000", PriceNanoErg: 2000000},
			{SnippetVersionID: 4, CreatorPayoutAddress: "9creatorAddr0000000", PriceNanoErg: 3000000},
		},
		estimatedFee,
	)
	require.NoError(t, err)

	expected := "v1|7|9platformAddr000000:1000000|9creatorAddr0000000:5000000:4,12"
	require.Equal(t, expected, intent.CanonicalString())
}

func randomAddress() string {
	return "9" + randstr.String(50, "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ123456789")
}

func randomItems(howMany int) []domain.CompositionItem {
	items := make([]domain.CompositionItem, 0, howMany)
	for i := 0; i < howMany; i++ {
		items = append(items, domain.CompositionItem{
			SnippetVersionID:     int64(i + 1),
			CreatorPayoutAddress: randomAddress(),
			PriceNanoErg:         uint64((i + 1)) * 10000000,
		})
	}
	return items
}

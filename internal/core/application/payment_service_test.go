package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thanhpk/randstr"

	"github.com/promptpage/promptpay-daemon/internal/core/application"
	"github.com/promptpage/promptpay-daemon/internal/core/domain"
	"github.com/promptpage/promptpay-daemon/internal/infrastructure/storage/db/inmemory"
	"github.com/promptpage/promptpay-daemon/pkg/explorer"
	"github.com/promptpage/promptpay-daemon/pkg/nodewallet"
)

const minBoxValue = uint64(1000000)

var ctx = context.Background()

type serviceFixture struct {
	svc          *application.PaymentService
	explorer     *stubExplorer
	wallet       *stubWallet
	platformAddr string
	userAddr     string
}

func newServiceFixture(t *testing.T, strict bool) *serviceFixture {
	t.Helper()

	stubExp := &stubExplorer{
		transactions: map[string]explorer.Transaction{},
		unspents:     map[string][]explorer.Utxo{},
		height:       1000,
	}
	stubWlt := &stubWallet{
		status:  nodewallet.Status{IsInitialized: true, IsUnlocked: true},
		balance: nodewallet.Balance{Balance: 1000000000},
		txid:    randstr.Hex(32),
	}
	platformAddr := randomAddress()

	svc, err := application.NewPaymentService(
		inmemory.NewCompositionRepositoryImpl(),
		inmemory.NewPaymentRepositoryImpl(),
		stubExp,
		stubWlt,
		platformAddr,
		platformFee, minBoxValue, networkFee,
		2, strict, "R4", "R5",
	)
	require.NoError(t, err)

	return &serviceFixture{
		svc:          svc,
		explorer:     stubExp,
		wallet:       stubWlt,
		platformAddr: platformAddr,
		userAddr:     randomAddress(),
	}
}

func (f *serviceFixture) lockedComposition(
	t *testing.T,
) (*domain.Composition, *domain.PaymentIntent) {
	t.Helper()

	composition, err := f.svc.ProposeComposition(ctx, f.userAddr,
		[]domain.CompositionItem{
			{SnippetVersionID: 1, CreatorPayoutAddress: randomAddress(), PriceNanoErg: 10000000},
			{SnippetVersionID: 2, CreatorPayoutAddress: randomAddress(), PriceNanoErg: 20000000},
		},
	)
	require.NoError(t, err)

	intent, err := f.svc.LockComposition(ctx, composition.ID, f.userAddr)
	require.NoError(t, err)
	return composition, intent
}

func TestProposeAndLockComposition(t *testing.T) {
	f := newServiceFixture(t, true)

	composition, intent := f.lockedComposition(t)
	require.Equal(t, platformFee+30000000, composition.TotalRequiredNanoErg)
	require.Equal(t, composition.TotalRequiredNanoErg, intent.TotalRequired)
	require.Len(t, intent.CommitmentHex, 64)

	// locking again returns the same intent
	again, err := f.svc.LockComposition(ctx, composition.ID, f.userAddr)
	require.NoError(t, err)
	require.Equal(t, intent.CommitmentHex, again.CommitmentHex)

	stored, err := f.svc.GetComposition(ctx, composition.ID, f.userAddr)
	require.NoError(t, err)
	require.True(t, stored.IsLocked())
}

func TestFailingLockComposition(t *testing.T) {
	f := newServiceFixture(t, true)
	composition, _ := f.lockedComposition(t)

	t.Run("foreign_address", func(t *testing.T) {
		_, err := f.svc.LockComposition(ctx, composition.ID, randomAddress())
		require.EqualError(t, err, application.ErrNotAllowed.Error())
	})

	t.Run("unknown_composition", func(t *testing.T) {
		_, err := f.svc.LockComposition(ctx, 9999, f.userAddr)
		require.EqualError(t, err, domain.ErrCompositionNotFound.Error())
	})
}

func TestBuildTransaction(t *testing.T) {
	f := newServiceFixture(t, true)
	composition, intent := f.lockedComposition(t)

	f.explorer.unspents[f.userAddr] = []explorer.Utxo{
		newTestUtxo(f.userAddr, 100000000),
	}

	result, err := f.svc.BuildTransaction(ctx, composition.ID, f.userAddr)
	require.NoError(t, err)
	require.Equal(t, intent.TotalRequired, result.TotalOut)
	require.Len(t, result.Tx.Outputs, len(intent.CreatorOutputs)+2)
}

func TestPayWithNodeWallet(t *testing.T) {
	f := newServiceFixture(t, true)
	composition, intent := f.lockedComposition(t)

	txid, err := f.svc.PayWithNodeWallet(ctx, composition.ID, f.userAddr)
	require.NoError(t, err)
	require.Equal(t, f.wallet.txid, txid)

	// platform output first, then one recipient per creator
	require.Len(t, f.wallet.sentRecipients, len(intent.CreatorOutputs)+1)
	require.Equal(t, f.platformAddr, f.wallet.sentRecipients[0].Address)
	require.Equal(t, platformFee, f.wallet.sentRecipients[0].Value)
}

func TestFailingPayWithNodeWallet(t *testing.T) {
	t.Run("wallet_locked", func(t *testing.T) {
		f := newServiceFixture(t, true)
		composition, _ := f.lockedComposition(t)
		f.wallet.status.IsUnlocked = false

		_, err := f.svc.PayWithNodeWallet(ctx, composition.ID, f.userAddr)
		require.EqualError(t, err, application.ErrSignerUnavailable.Error())
	})

	t.Run("insufficient_balance", func(t *testing.T) {
		f := newServiceFixture(t, true)
		composition, intent := f.lockedComposition(t)
		f.wallet.balance.Balance = intent.TotalRequired

		_, err := f.svc.PayWithNodeWallet(ctx, composition.ID, f.userAddr)

		var fundsErr *domain.InsufficientFundsError
		require.ErrorAs(t, err, &fundsErr)
		require.Equal(t, intent.TotalRequired+networkFee, fundsErr.Required)
	})

	t.Run("not_locked", func(t *testing.T) {
		f := newServiceFixture(t, true)
		composition, err := f.svc.ProposeComposition(ctx, f.userAddr,
			[]domain.CompositionItem{
				{SnippetVersionID: 1, CreatorPayoutAddress: randomAddress(), PriceNanoErg: 10000000},
			},
		)
		require.NoError(t, err)

		_, err = f.svc.PayWithNodeWallet(ctx, composition.ID, f.userAddr)
		require.EqualError(t, err, domain.ErrCompositionMustBeLocked.Error())
	})
}

func TestConfirmPayment(t *testing.T) {
	f := newServiceFixture(t, true)
	composition, intent := f.lockedComposition(t)
	txid := randstr.Hex(32)

	t.Run("tx_not_found", func(t *testing.T) {
		result, err := f.svc.ConfirmPayment(ctx, composition.ID, f.userAddr, txid)
		require.NoError(t, err)
		require.Equal(t, application.ConfirmStatusTxNotFound, result.Status)
	})

	t.Run("pending_below_confirmation_depth", func(t *testing.T) {
		f.explorer.transactions[txid] = explorer.NewTransaction(
			txid, matchingOutputs(t, intent), 100, 1,
		)

		result, err := f.svc.ConfirmPayment(ctx, composition.ID, f.userAddr, txid)
		require.NoError(t, err)
		require.Equal(t, application.ConfirmStatusPending, result.Status)
		require.Equal(t, int64(1), result.Confirmations)
		require.Equal(t, int64(2), result.RequiredConfirmations)
	})

	t.Run("paid_once_depth_reached", func(t *testing.T) {
		f.explorer.transactions[txid] = explorer.NewTransaction(
			txid, matchingOutputs(t, intent), 100, 2,
		)

		result, err := f.svc.ConfirmPayment(ctx, composition.ID, f.userAddr, txid)
		require.NoError(t, err)
		require.Equal(t, application.ConfirmStatusPaid, result.Status)
		require.True(t, result.Verification.Valid)

		stored, err := f.svc.GetComposition(ctx, composition.ID, f.userAddr)
		require.NoError(t, err)
		require.True(t, stored.IsPaid())
		require.Equal(t, txid, stored.TxID)
	})

	t.Run("reconfirming_same_txid_short_circuits", func(t *testing.T) {
		result, err := f.svc.ConfirmPayment(ctx, composition.ID, f.userAddr, txid)
		require.NoError(t, err)
		require.Equal(t, application.ConfirmStatusPaid, result.Status)
	})

	t.Run("different_txid_on_paid_conflicts", func(t *testing.T) {
		_, err := f.svc.ConfirmPayment(
			ctx, composition.ID, f.userAddr, randstr.Hex(32),
		)
		require.EqualError(t, err, domain.ErrCompositionAlreadyPaid.Error())
	})
}

func TestConfirmPaymentVerificationFailure(t *testing.T) {
	f := newServiceFixture(t, true)
	composition, intent := f.lockedComposition(t)
	txid := randstr.Hex(32)

	outputs := matchingOutputs(t, intent)
	outputs[1].Value--
	f.explorer.transactions[txid] = explorer.NewTransaction(txid, outputs, 100, 5)

	result, err := f.svc.ConfirmPayment(ctx, composition.ID, f.userAddr, txid)
	require.NoError(t, err)
	require.Equal(t, application.ConfirmStatusFailed, result.Status)
	require.False(t, result.Verification.Valid)

	stored, err := f.svc.GetComposition(ctx, composition.ID, f.userAddr)
	require.NoError(t, err)
	require.True(t, stored.HasFailed())
}

func TestConfirmPaymentStrictness(t *testing.T) {
	// same transaction, no registers at all: rejected under strict
	// verification, accepted without
	for _, strict := range []bool{true, false} {
		f := newServiceFixture(t, strict)
		composition, intent := f.lockedComposition(t)
		txid := randstr.Hex(32)

		outputs := matchingOutputs(t, intent)
		outputs[0].AdditionalRegisters = nil
		f.explorer.transactions[txid] = explorer.NewTransaction(txid, outputs, 100, 5)

		result, err := f.svc.ConfirmPayment(ctx, composition.ID, f.userAddr, txid)
		require.NoError(t, err)
		if strict {
			require.Equal(t, application.ConfirmStatusFailed, result.Status)
		} else {
			require.Equal(t, application.ConfirmStatusPaid, result.Status)
			require.False(t, result.Verification.RegistersChecked)
		}
	}
}

func TestFailingConfirmPayment(t *testing.T) {
	f := newServiceFixture(t, true)
	composition, _ := f.lockedComposition(t)

	_, err := f.svc.ConfirmPayment(ctx, composition.ID, f.userAddr, "short")
	require.EqualError(t, err, application.ErrInvalidTxID.Error())
}

type stubExplorer struct {
	transactions map[string]explorer.Transaction
	unspents     map[string][]explorer.Utxo
	height       uint32
}

func (s *stubExplorer) GetTransaction(txid string) (explorer.Transaction, error) {
	tx, ok := s.transactions[txid]
	if !ok {
		return nil, explorer.ErrTransactionNotFound
	}
	return tx, nil
}

func (s *stubExplorer) GetBlockHeight() (uint32, error) {
	return s.height, nil
}

func (s *stubExplorer) GetUnspents(addr string) ([]explorer.Utxo, error) {
	return s.unspents[addr], nil
}

func (s *stubExplorer) GetUnspentsForAddresses(
	addresses []string,
) ([]explorer.Utxo, error) {
	unspents := make([]explorer.Utxo, 0)
	for _, addr := range addresses {
		unspents = append(unspents, s.unspents[addr]...)
	}
	return unspents, nil
}

func (s *stubExplorer) GetTransactionsForAddress(
	addr string,
) ([]explorer.Transaction, error) {
	return nil, nil
}

func (s *stubExplorer) GetBalance(addr string) (*explorer.Balance, error) {
	return &explorer.Balance{}, nil
}

func (s *stubExplorer) BroadcastTransaction(txJSON string) (string, error) {
	return randstr.Hex(32), nil
}

type stubWallet struct {
	status         nodewallet.Status
	balance        nodewallet.Balance
	txid           string
	sentRecipients []nodewallet.Recipient
}

func (s *stubWallet) GetStatus() (*nodewallet.Status, error) {
	status := s.status
	return &status, nil
}

func (s *stubWallet) GetBalance() (*nodewallet.Balance, error) {
	balance := s.balance
	return &balance, nil
}

func (s *stubWallet) SendTransaction(
	recipients []nodewallet.Recipient, fee uint64,
) (string, error) {
	if !s.status.IsUnlocked {
		return "", nodewallet.ErrWalletLocked
	}
	s.sentRecipients = recipients
	return s.txid, nil
}

func newTestUtxo(address string, value uint64) explorer.Utxo {
	return explorer.NewUtxo(
		randstr.Hex(32), randstr.Hex(32), 0, value, randstr.Hex(20),
		address, 100, nil, nil,
	)
}

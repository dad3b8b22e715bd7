package application

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/promptpage/promptpay-daemon/internal/core/domain"
	"github.com/promptpage/promptpay-daemon/pkg/explorer"
	"github.com/promptpage/promptpay-daemon/pkg/nodewallet"
	"github.com/promptpage/promptpay-daemon/pkg/txbuilder"
)

// NodeWallet is the custodial signing collaborator: a wallet that builds,
// signs and broadcasts payments on behalf of the platform.
type NodeWallet interface {
	GetStatus() (*nodewallet.Status, error)
	GetBalance() (*nodewallet.Balance, error)
	SendTransaction(recipients []nodewallet.Recipient, fee uint64) (string, error)
}

// ConfirmStatus is the tri-state outcome of a confirmation attempt: the
// transaction may not be visible yet, may still be maturing, or may have
// reached a terminal verdict.
type ConfirmStatus int

const (
	// ConfirmStatusTxNotFound means the transaction has not propagated to
	// the explorer yet. The caller should retry later.
	ConfirmStatusTxNotFound ConfirmStatus = iota
	// ConfirmStatusPending means the transaction is on chain but below the
	// required confirmation depth.
	ConfirmStatusPending
	// ConfirmStatusPaid is the terminal success verdict.
	ConfirmStatusPaid
	// ConfirmStatusFailed is the terminal failure verdict.
	ConfirmStatusFailed
)

// ConfirmResult carries the outcome of a confirmation attempt along with the
// current and required confirmation depths, so that callers can distinguish
// "still waiting" from "rejected".
type ConfirmResult struct {
	Status                ConfirmStatus
	TxID                  string
	Confirmations         int64
	RequiredConfirmations int64
	Verification          *VerificationResult
}

// PaymentService implements the payment-intent protocol: locking a
// composition behind a payment intent, building and submitting the matching
// multi-output transaction and verifying it against the ledger. All
// collaborators are injected, the service holds no shared mutable state and
// every operation is safe to invoke from independent request handlers.
type PaymentService struct {
	compositionRepo domain.CompositionRepository
	paymentRepo     domain.PaymentRepository
	explorerSvc     explorer.Service
	wallet          NodeWallet

	platformAddress    string
	platformFee        uint64
	minBoxValue        uint64
	networkFee         uint64
	minConfirmations   int64
	strict             bool
	commitmentRegister string
	metadataRegister   string
}

// NewPaymentService returns a payment service with the given collaborators
// and protocol constants. The node wallet is optional: without it the
// custodial payment path is disabled.
func NewPaymentService(
	compositionRepo domain.CompositionRepository,
	paymentRepo domain.PaymentRepository,
	explorerSvc explorer.Service,
	wallet NodeWallet,
	platformAddress string,
	platformFee, minBoxValue, networkFee uint64,
	minConfirmations int64,
	strict bool,
	commitmentRegister, metadataRegister string,
) (*PaymentService, error) {
	if compositionRepo == nil {
		return nil, fmt.Errorf("missing composition repository")
	}
	if paymentRepo == nil {
		return nil, fmt.Errorf("missing payment repository")
	}
	if explorerSvc == nil {
		return nil, fmt.Errorf("missing explorer service")
	}
	if platformAddress == "" {
		return nil, fmt.Errorf("missing platform address")
	}
	if platformFee < minBoxValue {
		return nil, fmt.Errorf(
			"platform fee (%d) must not be below the minimum box value (%d)",
			platformFee, minBoxValue,
		)
	}
	if minConfirmations <= 0 {
		return nil, fmt.Errorf("minimum confirmations must be positive")
	}

	return &PaymentService{
		compositionRepo:    compositionRepo,
		paymentRepo:        paymentRepo,
		explorerSvc:        explorerSvc,
		wallet:             wallet,
		platformAddress:    platformAddress,
		platformFee:        platformFee,
		minBoxValue:        minBoxValue,
		networkFee:         networkFee,
		minConfirmations:   minConfirmations,
		strict:             strict,
		commitmentRegister: commitmentRegister,
		metadataRegister:   metadataRegister,
	}, nil
}

// ProposeComposition persists a new composition in Proposed status with its
// total frozen to the platform fee plus the summed item prices.
func (s *PaymentService) ProposeComposition(
	ctx context.Context, userAddress string, items []domain.CompositionItem,
) (*domain.Composition, error) {
	composition, err := domain.NewComposition(0, userAddress, s.platformFee, items)
	if err != nil {
		return nil, err
	}

	id, err := s.compositionRepo.AddComposition(ctx, composition)
	if err != nil {
		return nil, err
	}
	composition.ID = id

	log.WithFields(log.Fields{
		"composition": id,
		"total":       composition.TotalRequiredNanoErg,
		"items":       len(items),
	}).Debug("composition proposed")

	return composition, nil
}

// GetComposition returns the composition with the given id if it is owned by
// the given address.
func (s *PaymentService) GetComposition(
	ctx context.Context, id int64, userAddress string,
) (*domain.Composition, error) {
	composition, err := s.compositionRepo.GetCompositionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !composition.IsOwnedBy(userAddress) {
		return nil, ErrNotAllowed
	}
	return composition, nil
}

// ListCompositions returns every composition owned by the given address.
func (s *PaymentService) ListCompositions(
	ctx context.Context, userAddress string,
) ([]*domain.Composition, error) {
	return s.compositionRepo.GetCompositionsForUser(ctx, userAddress)
}

// LockComposition brings the composition to AwaitingPayment and returns the
// payment intent freshly derived from its line items, commitment included.
// Concurrent locks on the same composition are serialized by the repository,
// and locking anything but a proposed composition fails.
func (s *PaymentService) LockComposition(
	ctx context.Context, id int64, userAddress string,
) (*domain.PaymentIntent, error) {
	var intent *domain.PaymentIntent
	if err := s.compositionRepo.UpdateComposition(
		ctx, id,
		func(c *domain.Composition) (*domain.Composition, error) {
			if !c.IsOwnedBy(userAddress) {
				return nil, ErrNotAllowed
			}
			if _, err := c.Lock(); err != nil {
				return nil, err
			}
			derived, err := c.PaymentIntent(s.platformAddress, s.networkFee)
			if err != nil {
				return nil, err
			}
			intent = derived
			return c, nil
		},
	); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"composition": id,
		"commitment":  intent.CommitmentHex,
		"total":       intent.TotalRequired,
	}).Debug("composition locked")

	return intent, nil
}

// BuildTransaction is the external-signer path: it derives the payment
// intent, fetches the payer's spendable outputs and constructs the unsigned
// multi-output transaction to hand over to the wallet for signing.
func (s *PaymentService) BuildTransaction(
	ctx context.Context, id int64, payerAddress string,
) (*txbuilder.BuildResult, error) {
	composition, err := s.GetComposition(ctx, id, payerAddress)
	if err != nil {
		return nil, err
	}
	if !composition.IsLocked() {
		return nil, domain.ErrCompositionMustBeLocked
	}

	intent, err := composition.PaymentIntent(s.platformAddress, s.networkFee)
	if err != nil {
		return nil, err
	}

	utxos, err := s.explorerSvc.GetUnspents(payerAddress)
	if err != nil {
		return nil, fmt.Errorf("fetching unspents: %w", err)
	}
	height, err := s.explorerSvc.GetBlockHeight()
	if err != nil {
		return nil, fmt.Errorf("fetching chain height: %w", err)
	}

	return txbuilder.Build(txbuilder.BuildParams{
		Intent:             intent,
		PayerAddress:       payerAddress,
		Utxos:              utxos,
		CurrentHeight:      height,
		NetworkFee:         s.networkFee,
		MinBoxValue:        s.minBoxValue,
		CommitmentRegister: s.commitmentRegister,
		MetadataRegister:   s.metadataRegister,
	})
}

// SubmitTransaction broadcasts an externally signed transaction and records
// a provisional payment keyed by the resulting transaction id. The record is
// an idempotent upsert: retried submissions never create duplicates.
func (s *PaymentService) SubmitTransaction(
	ctx context.Context, id int64, userAddress, signedTxJSON string,
) (string, error) {
	composition, err := s.GetComposition(ctx, id, userAddress)
	if err != nil {
		return "", err
	}
	if !composition.IsLocked() {
		return "", domain.ErrCompositionMustBeLocked
	}

	txid, err := s.explorerSvc.BroadcastTransaction(signedTxJSON)
	if err != nil {
		return "", fmt.Errorf("broadcasting transaction: %w", err)
	}

	if err := s.recordSubmission(ctx, id, txid); err != nil {
		return "", err
	}

	log.WithFields(log.Fields{
		"composition": id,
		"tx":          txid,
	}).Info("payment transaction submitted")

	return txid, nil
}

// PayWithNodeWallet is the custodial path: the platform's node wallet signs
// and broadcasts the payment itself. The wallet must be unlocked and funded
// with the intent total plus the network fee before anything is broadcast.
func (s *PaymentService) PayWithNodeWallet(
	ctx context.Context, id int64, userAddress string,
) (string, error) {
	if s.wallet == nil {
		return "", ErrSignerUnavailable
	}

	composition, err := s.GetComposition(ctx, id, userAddress)
	if err != nil {
		return "", err
	}
	if !composition.IsLocked() {
		return "", domain.ErrCompositionMustBeLocked
	}

	intent, err := composition.PaymentIntent(s.platformAddress, s.networkFee)
	if err != nil {
		return "", err
	}

	status, err := s.wallet.GetStatus()
	if err != nil {
		log.WithError(err).Warn("node wallet unreachable")
		return "", ErrSignerUnavailable
	}
	if !status.IsUnlocked {
		return "", ErrSignerUnavailable
	}

	balance, err := s.wallet.GetBalance()
	if err != nil {
		log.WithError(err).Warn("node wallet unreachable")
		return "", ErrSignerUnavailable
	}
	required := intent.TotalRequired + s.networkFee
	if balance.Balance < required {
		return "", &domain.InsufficientFundsError{
			Required:  required,
			Available: balance.Balance,
		}
	}

	recipients := make([]nodewallet.Recipient, 0, len(intent.CreatorOutputs)+1)
	recipients = append(recipients, nodewallet.Recipient{
		Address: intent.PlatformOutput.Address,
		Value:   intent.PlatformOutput.Amount,
	})
	for _, out := range intent.CreatorOutputs {
		recipients = append(recipients, nodewallet.Recipient{
			Address: out.Address,
			Value:   out.Amount,
		})
	}

	txid, err := s.wallet.SendTransaction(recipients, s.networkFee)
	if err != nil {
		if err == nodewallet.ErrWalletLocked {
			return "", ErrSignerUnavailable
		}
		return "", fmt.Errorf("sending transaction: %w", err)
	}

	if err := s.recordSubmission(ctx, id, txid); err != nil {
		return "", err
	}

	log.WithFields(log.Fields{
		"composition": id,
		"tx":          txid,
	}).Info("payment sent via node wallet")

	return txid, nil
}

// ConfirmPayment reconciles a submitted transaction against the composition
// it is supposed to pay for and drives the verification state machine to a
// verdict. Transient ledger states (transaction not visible yet, confirmation
// depth not reached) are reported as retryable results, never as errors.
func (s *PaymentService) ConfirmPayment(
	ctx context.Context, id int64, userAddress, txid string,
) (*ConfirmResult, error) {
	if len(txid) < minTxIDLength {
		return nil, ErrInvalidTxID
	}

	composition, err := s.GetComposition(ctx, id, userAddress)
	if err != nil {
		return nil, err
	}
	if composition.IsPaid() && composition.TxID != txid {
		return nil, domain.ErrCompositionAlreadyPaid
	}
	if !composition.IsLocked() && !composition.IsPaid() {
		return nil, domain.ErrCompositionMustBeLocked
	}

	tx, err := s.explorerSvc.GetTransaction(txid)
	if err != nil {
		if err == explorer.ErrTransactionNotFound {
			return &ConfirmResult{
				Status:                ConfirmStatusTxNotFound,
				TxID:                  txid,
				RequiredConfirmations: s.minConfirmations,
			}, nil
		}
		return nil, fmt.Errorf("fetching transaction: %w", err)
	}

	if tx.Confirmations() < s.minConfirmations {
		if err := s.recordSubmission(ctx, id, txid); err != nil {
			return nil, err
		}
		return &ConfirmResult{
			Status:                ConfirmStatusPending,
			TxID:                  txid,
			Confirmations:         tx.Confirmations(),
			RequiredConfirmations: s.minConfirmations,
		}, nil
	}

	// Re-verifying an already settled payment short-circuits to the same
	// verdict without mutating anything.
	if payment, _ := s.paymentRepo.GetPaymentByTxID(ctx, txid); payment != nil &&
		payment.IsConfirmed() && composition.IsPaid() {
		return &ConfirmResult{
			Status:                ConfirmStatusPaid,
			TxID:                  txid,
			Confirmations:         tx.Confirmations(),
			RequiredConfirmations: s.minConfirmations,
		}, nil
	}

	if err := s.recordSubmission(ctx, id, txid); err != nil {
		return nil, err
	}

	// The intent is rebuilt from the persisted line items only: a
	// client-supplied commitment is never trusted.
	intent, err := composition.PaymentIntent(s.platformAddress, s.networkFee)
	if err != nil {
		return nil, err
	}

	verification, err := VerifyTx(tx, intent, VerifyOptions{
		Strict:             s.strict,
		CommitmentRegister: s.commitmentRegister,
		MetadataRegister:   s.metadataRegister,
	})
	if err != nil {
		return nil, err
	}

	result := &ConfirmResult{
		TxID:                  txid,
		Confirmations:         tx.Confirmations(),
		RequiredConfirmations: s.minConfirmations,
		Verification:          verification,
	}

	if verification.Valid {
		if err := s.paymentRepo.UpdatePayment(
			ctx, txid,
			func(p *domain.Payment) (*domain.Payment, error) {
				p.Confirm()
				return p, nil
			},
		); err != nil {
			return nil, err
		}
		if err := s.compositionRepo.UpdateComposition(
			ctx, id,
			func(c *domain.Composition) (*domain.Composition, error) {
				if _, err := c.ConfirmPayment(txid); err != nil {
					return nil, err
				}
				return c, nil
			},
		); err != nil {
			return nil, err
		}

		result.Status = ConfirmStatusPaid
		log.WithFields(log.Fields{
			"composition": id,
			"tx":          txid,
		}).Info("payment confirmed")
		return result, nil
	}

	if err := s.paymentRepo.UpdatePayment(
		ctx, txid,
		func(p *domain.Payment) (*domain.Payment, error) {
			p.Reject()
			return p, nil
		},
	); err != nil {
		return nil, err
	}
	if err := s.compositionRepo.UpdateComposition(
		ctx, id,
		func(c *domain.Composition) (*domain.Composition, error) {
			c.Fail(txid)
			return c, nil
		},
	); err != nil {
		return nil, err
	}

	result.Status = ConfirmStatusFailed
	log.WithFields(log.Fields{
		"composition": id,
		"tx":          txid,
		"errors":      verification.Errors,
	}).Warn("payment verification failed")
	return result, nil
}

func (s *PaymentService) recordSubmission(
	ctx context.Context, compositionID int64, txid string,
) error {
	payment, err := domain.NewPayment(compositionID, txid)
	if err != nil {
		return err
	}
	if _, err := s.paymentRepo.UpsertPayment(ctx, payment); err != nil {
		return fmt.Errorf("recording payment: %w", err)
	}
	return nil
}

const minTxIDLength = 32

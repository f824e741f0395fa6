package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"prizedraw/domain/apperrors"
	"prizedraw/domain/entities"
	"prizedraw/domain/events"
	"prizedraw/domain/interfaces"
	"prizedraw/domain/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// DepositConfig carries the reconciliation parameters
type DepositConfig struct {
	MinimumDeposit decimal.Decimal
	ReferralBonus  decimal.Decimal
	CallbackURL    string
	PayCurrency    string
	PriceCurrency  string
}

// depositService implements deposit intent creation and callback reconciliation
type depositService struct {
	cfg        DepositConfig
	provider   interfaces.PaymentProvider
	uowFactory interfaces.UnitOfWorkFactory
}

// NewDepositService creates a new deposit service
func NewDepositService(
	cfg DepositConfig,
	provider interfaces.PaymentProvider,
	uowFactory interfaces.UnitOfWorkFactory,
) interfaces.DepositService {
	return &depositService{
		cfg:        cfg,
		provider:   provider,
		uowFactory: uowFactory,
	}
}

// CreateIntent registers a payment with the provider and records a pending
// deposit transaction keyed by the provider payment id. The provider call
// happens before the store transaction opens so the transaction stays short.
func (s *depositService) CreateIntent(ctx context.Context, userID int64, amount decimal.Decimal) (*interfaces.DepositIntentResult, error) {
	if amount.LessThan(s.cfg.MinimumDeposit) {
		return nil, apperrors.Validation("deposit_below_minimum",
			"minimum deposit is %s", s.cfg.MinimumDeposit.String())
	}

	orderID := fmt.Sprintf("%d:%s", userID, uuid.NewString()[:8])
	payment, err := s.provider.CreatePayment(ctx, interfaces.CreatePaymentRequest{
		Amount:        amount,
		OrderID:       orderID,
		CallbackURL:   s.cfg.CallbackURL,
		Description:   fmt.Sprintf("Wallet deposit for user %d", userID),
		PayCurrency:   s.cfg.PayCurrency,
		PriceCurrency: s.cfg.PriceCurrency,
	})
	if err != nil {
		return nil, apperrors.Upstream("payment provider rejected the deposit intent", err)
	}
	if payment.PaymentID == "" || payment.PayAddress == "" {
		return nil, apperrors.Upstream("payment provider did not return a payment address", nil)
	}

	payAmount := payment.PayAmount
	if payAmount.IsZero() {
		payAmount = amount
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	wallet, err := uow.WalletRepository().GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return nil, apperrors.NotFound("wallet_not_found", "wallet not found for user %d", userID)
	}

	paymentID := payment.PaymentID
	tx := &entities.Transaction{
		UserID:      userID,
		Type:        entities.TransactionTypeDeposit,
		Status:      entities.TransactionStatusPending,
		Amount:      payAmount,
		PaymentID:   &paymentID,
		Description: fmt.Sprintf("Crypto deposit (%s)", orderID),
	}
	if err := uow.TransactionRepository().Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to record deposit intent: %w", err)
	}

	if err := uow.WalletRepository().SetDepositAddress(ctx, userID, payment.PayAddress); err != nil {
		return nil, fmt.Errorf("failed to store deposit address: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit deposit intent: %w", err)
	}

	return &interfaces.DepositIntentResult{
		PaymentID:   payment.PaymentID,
		PayAddress:  payment.PayAddress,
		PayAmount:   payAmount,
		PayCurrency: payment.PayCurrency,
	}, nil
}

// callbackPayload is the provider's signed callback body. Amount fields are
// pointers so absence is distinguishable from zero.
type callbackPayload struct {
	PaymentID     json.Number      `json:"payment_id"`
	PaymentStatus string           `json:"payment_status"`
	PayAddress    string           `json:"pay_address"`
	PayCurrency   string           `json:"pay_currency"`
	OrderID       string           `json:"order_id"`
	PriceAmount   *decimal.Decimal `json:"price_amount"`
	PayAmount     *decimal.Decimal `json:"pay_amount"`
	ActuallyPaid  *decimal.Decimal `json:"actually_paid"`
	OutcomeAmount *decimal.Decimal `json:"outcome_amount"`
}

// resolveAmount picks the most authoritative amount the provider reported:
// realized outcome first, then actually paid, then requested pay amount,
// then price amount.
func (p *callbackPayload) resolveAmount() (decimal.Decimal, bool) {
	for _, candidate := range []*decimal.Decimal{p.OutcomeAmount, p.ActuallyPaid, p.PayAmount, p.PriceAmount} {
		if candidate != nil {
			return *candidate, true
		}
	}
	return decimal.Zero, false
}

type statusClass int

const (
	statusClassUnknown statusClass = iota
	statusClassCompleted
	statusClassPartial
	statusClassFailed
)

func classifyStatus(status string) statusClass {
	switch strings.ToLower(status) {
	case "confirmed", "finished":
		return statusClassCompleted
	case "partially_paid":
		return statusClassPartial
	case "failed", "refunded", "expired":
		return statusClassFailed
	}
	return statusClassUnknown
}

// ProcessCallback reconciles one signed provider callback into ledger and
// balance. The whole reconciliation, including the referral first-deposit
// check, runs in a single serializable transaction, so the operation is
// correct under arbitrary duplication and reordering of deliveries.
func (s *depositService) ProcessCallback(ctx context.Context, rawBody []byte, signature string) error {
	if signature == "" {
		return apperrors.Signature("missing signature header")
	}
	if !s.provider.VerifySignature(rawBody, signature) {
		return apperrors.Signature("signature mismatch")
	}

	var payload callbackPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return apperrors.Wrap(apperrors.KindValidation, "malformed_payload", "cannot parse callback body", err)
	}
	paymentID := payload.PaymentID.String()
	if paymentID == "" {
		return apperrors.Validation("malformed_payload", "callback payload has no payment_id")
	}

	class := classifyStatus(payload.PaymentStatus)
	if class == statusClassUnknown {
		log.WithFields(log.Fields{
			"paymentID": paymentID,
			"status":    payload.PaymentStatus,
		}).Info("Ignoring callback with unhandled payment status")
		return nil
	}

	amount, hasAmount := payload.resolveAmount()
	if !hasAmount && class != statusClassFailed {
		return apperrors.Validation("malformed_payload", "callback payload carries no amount")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	txRepo := uow.TransactionRepository()
	tx, err := txRepo.GetByPaymentIDForUpdate(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("failed to look up payment %s: %w", paymentID, err)
	}

	// Replays of an already-finalized payment are pure no-ops.
	if tx != nil && tx.Status.IsTerminal() {
		return uow.Commit()
	}

	userID, wallet, err := s.resolveWallet(ctx, uow, tx, &payload)
	if err != nil {
		return err
	}

	if tx == nil {
		tx = &entities.Transaction{
			UserID:      userID,
			Type:        entities.TransactionTypeDeposit,
			Status:      entities.TransactionStatusPending,
			Amount:      amount,
			PaymentID:   &paymentID,
			Description: "Crypto deposit",
		}
		if err := txRepo.Create(ctx, tx); err != nil {
			return fmt.Errorf("failed to record deposit transaction: %w", err)
		}
	}

	switch class {
	case statusClassFailed:
		if err := txRepo.UpdateStatus(ctx, tx.ID, entities.TransactionStatusFailed); err != nil {
			return fmt.Errorf("failed to mark deposit failed: %w", err)
		}

	case statusClassPartial:
		// Credit only the delta over what this payment already credited;
		// a larger re-report never double-counts the earlier portion.
		delta := amount.Sub(tx.CreditedAmount)
		if delta.IsPositive() {
			if err := uow.WalletRepository().Credit(ctx, wallet.ID, delta); err != nil {
				return fmt.Errorf("failed to credit partial deposit: %w", err)
			}
		} else {
			delta = decimal.Zero
		}
		credited := tx.CreditedAmount.Add(delta)
		if err := txRepo.UpdateDepositProgress(ctx, tx.ID, amount, credited, entities.TransactionStatusPending); err != nil {
			return fmt.Errorf("failed to update partial deposit: %w", err)
		}

	case statusClassCompleted:
		if amount.LessThan(s.cfg.MinimumDeposit) {
			// Below the deposit floor the payment fails even when the
			// provider reports success.
			if err := txRepo.UpdateDepositProgress(ctx, tx.ID, amount, tx.CreditedAmount, entities.TransactionStatusFailed); err != nil {
				return fmt.Errorf("failed to mark underfunded deposit failed: %w", err)
			}
			break
		}

		// The first-deposit count must be read before this deposit
		// completes, inside the same transaction as the credit.
		priorCompleted, err := txRepo.CountCompletedDeposits(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to count completed deposits: %w", err)
		}

		delta := amount.Sub(tx.CreditedAmount)
		if delta.IsPositive() {
			if err := uow.WalletRepository().Credit(ctx, wallet.ID, delta); err != nil {
				return fmt.Errorf("failed to credit deposit: %w", err)
			}
		}
		if err := txRepo.UpdateDepositProgress(ctx, tx.ID, amount, amount, entities.TransactionStatusCompleted); err != nil {
			return fmt.Errorf("failed to finalize deposit: %w", err)
		}

		seenEvent := events.DepositCompletedEvent{
			UserID:    userID,
			PaymentID: paymentID,
			Amount:    amount.String(),
		}
		if err := uow.EventBus().Publish(seenEvent); err != nil {
			log.WithError(err).Error("Failed to publish deposit completed event")
		}

		if priorCompleted == 0 {
			if err := s.creditReferralBonus(ctx, uow, userID); err != nil {
				return err
			}
		}
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit deposit reconciliation: %w", err)
	}
	return nil
}

// resolveWallet finds the depositing user's wallet: the owner of an existing
// transaction first, then the user id prefix of the order identifier, then
// the wallet holding the callback's pay address.
func (s *depositService) resolveWallet(
	ctx context.Context,
	uow interfaces.UnitOfWork,
	tx *entities.Transaction,
	payload *callbackPayload,
) (int64, *entities.Wallet, error) {
	walletRepo := uow.WalletRepository()

	if tx != nil {
		wallet, err := walletRepo.GetByUserIDForUpdate(ctx, tx.UserID)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to get wallet for user %d: %w", tx.UserID, err)
		}
		if wallet == nil {
			return 0, nil, apperrors.NotFound("wallet_not_found", "no wallet for user %d", tx.UserID)
		}
		return tx.UserID, wallet, nil
	}

	if prefix, _, found := strings.Cut(payload.OrderID, ":"); found {
		if userID, err := strconv.ParseInt(prefix, 10, 64); err == nil {
			wallet, err := walletRepo.GetByUserIDForUpdate(ctx, userID)
			if err != nil {
				return 0, nil, fmt.Errorf("failed to get wallet for user %d: %w", userID, err)
			}
			if wallet != nil {
				return userID, wallet, nil
			}
		}
	}

	if payload.PayAddress != "" {
		wallet, err := walletRepo.GetByDepositAddress(ctx, payload.PayAddress)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to get wallet by deposit address: %w", err)
		}
		if wallet != nil {
			return wallet.UserID, wallet, nil
		}
	}

	return 0, nil, apperrors.NotFound("wallet_not_found", "no wallet matches payment %s", payload.PaymentID.String())
}

// creditReferralBonus pays the one-time referrer bonus for a referee's first
// completed deposit. The existence check on the bonus transaction makes the
// credit safe under callback retries.
func (s *depositService) creditReferralBonus(ctx context.Context, uow interfaces.UnitOfWork, depositorID int64) error {
	user, err := uow.UserRepository().GetByID(ctx, depositorID)
	if err != nil {
		return fmt.Errorf("failed to get depositor %d: %w", depositorID, err)
	}
	if user == nil || !user.HasReferrer() {
		return nil
	}

	if s.cfg.ReferralBonus.IsZero() || s.cfg.ReferralBonus.IsNegative() {
		return nil
	}

	referrerID := *user.ReferredBy
	already, err := uow.TransactionRepository().HasReferralBonusFor(ctx, referrerID, depositorID)
	if err != nil {
		return fmt.Errorf("failed to check referral bonus: %w", err)
	}
	if already {
		return nil
	}

	referrerWallet, err := uow.WalletRepository().GetByUserIDForUpdate(ctx, referrerID)
	if err != nil {
		return fmt.Errorf("failed to get referrer wallet: %w", err)
	}
	if referrerWallet == nil {
		log.WithField("referrerID", referrerID).Warn("Referrer has no wallet, skipping bonus")
		return nil
	}

	bonusTx := &entities.Transaction{
		UserID:        referrerID,
		Type:          entities.TransactionTypeReferralBonus,
		Status:        entities.TransactionStatusCompleted,
		Amount:        s.cfg.ReferralBonus,
		RelatedUserID: &depositorID,
		Description:   fmt.Sprintf("Referral bonus for user %d", depositorID),
	}
	if err := utils.ApplyCredit(ctx, uow.WalletRepository(), uow.TransactionRepository(),
		uow.EventBus(), referrerWallet, s.cfg.ReferralBonus, bonusTx); err != nil {
		return fmt.Errorf("failed to credit referral bonus: %w", err)
	}

	log.WithFields(log.Fields{
		"referrerID":  referrerID,
		"depositorID": depositorID,
		"bonus":       s.cfg.ReferralBonus.String(),
	}).Info("Credited one-time referral bonus")
	return nil
}

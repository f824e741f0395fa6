package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"prizedraw/domain/apperrors"
	"prizedraw/domain/entities"
	"prizedraw/domain/events"
	"prizedraw/domain/interfaces"
	"prizedraw/domain/utils"
)

// WithdrawalConfig carries withdrawal policy parameters
type WithdrawalConfig struct {
	MinimumWithdrawal decimal.Decimal
	FeePercent        decimal.Decimal
}

// withdrawalService manages the withdrawal request state machine. The full
// amount is held at creation; rejection refunds it, completion retains the fee.
type withdrawalService struct {
	cfg        WithdrawalConfig
	uowFactory interfaces.UnitOfWorkFactory
	now        func() time.Time
}

// NewWithdrawalService creates a new withdrawal service
func NewWithdrawalService(cfg WithdrawalConfig, uowFactory interfaces.UnitOfWorkFactory) interfaces.WithdrawalService {
	return &withdrawalService{
		cfg:        cfg,
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

// Create opens a pending withdrawal request, debiting and holding the full
// amount in the same transaction the request row is written in.
func (s *withdrawalService) Create(ctx context.Context, userID int64, amount decimal.Decimal, address string) (*entities.WithdrawalRequest, error) {
	now := s.now()
	if wd := now.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return nil, apperrors.Validation("withdrawals_closed",
			"withdrawals are processed Monday through Friday only")
	}
	if amount.LessThan(s.cfg.MinimumWithdrawal) {
		return nil, apperrors.Validation("amount_below_minimum",
			"minimum withdrawal is %s", s.cfg.MinimumWithdrawal.String())
	}
	if !validCryptoAddress(address) {
		return nil, apperrors.Validation("invalid_address", "invalid withdrawal address")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	wallet, err := uow.WalletRepository().GetByUserIDForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return nil, apperrors.NotFound("wallet_not_found", "wallet not found for user %d", userID)
	}
	if !wallet.CanAfford(amount) {
		return nil, apperrors.InsufficientFunds(
			"insufficient balance: have %s, need %s", wallet.Balance.String(), amount.String())
	}

	fee, net := entities.ComputeWithdrawalFee(amount, s.cfg.FeePercent)

	holdTx := &entities.Transaction{
		UserID:      userID,
		Type:        entities.TransactionTypeWithdrawal,
		Status:      entities.TransactionStatusPending,
		Amount:      amount,
		Description: fmt.Sprintf("Withdrawal of %s to %s", amount.String(), address),
	}
	if err := utils.ApplyDebit(ctx, uow.WalletRepository(), uow.TransactionRepository(),
		uow.EventBus(), wallet, amount, holdTx); err != nil {
		return nil, err
	}

	request := &entities.WithdrawalRequest{
		UserID:        userID,
		Amount:        amount,
		Fee:           fee,
		NetAmount:     net,
		CryptoAddress: address,
		Status:        entities.WithdrawalStatusPending,
		TransactionID: holdTx.ID,
		RequestedAt:   now,
	}
	if err := uow.WithdrawalRepository().Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create withdrawal request: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit withdrawal request: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":       userID,
		"withdrawalID": request.ID,
		"amount":       amount.String(),
		"fee":          fee.String(),
	}).Info("Withdrawal request created")

	return request, nil
}

// Review applies an admin decision. Re-applying the status a request already
// holds is a no-op; any other transition out of a terminal state is refused.
func (s *withdrawalService) Review(ctx context.Context, reviewerID, withdrawalID int64, status entities.WithdrawalStatus, notes string) (*entities.WithdrawalRequest, error) {
	if !status.IsValid() || status == entities.WithdrawalStatusPending {
		return nil, apperrors.Validation("invalid_status", "invalid review status %q", status)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	request, err := uow.WithdrawalRepository().GetByIDForUpdate(ctx, withdrawalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get withdrawal request %d: %w", withdrawalID, err)
	}
	if request == nil {
		return nil, apperrors.NotFound("withdrawal_not_found", "withdrawal request %d not found", withdrawalID)
	}

	if request.Status == status {
		if err := uow.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit: %w", err)
		}
		return request, nil
	}
	if !request.CanTransitionTo(status) {
		return nil, apperrors.State("invalid_transition",
			"cannot move withdrawal from %s to %s", request.Status, status)
	}

	switch status {
	case entities.WithdrawalStatusCompleted:
		if err := uow.TransactionRepository().UpdateStatus(ctx, request.TransactionID, entities.TransactionStatusCompleted); err != nil {
			return nil, fmt.Errorf("failed to complete withdrawal transaction: %w", err)
		}
	case entities.WithdrawalStatusRejected:
		if err := s.refund(ctx, uow, request); err != nil {
			return nil, err
		}
	}

	now := s.now()
	request.Status = status
	request.ReviewedAt = &now
	request.ReviewedBy = &reviewerID
	if notes != "" {
		request.AdminNotes = &notes
	}
	if err := uow.WithdrawalRepository().Update(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to update withdrawal request: %w", err)
	}

	if status.IsTerminal() {
		if err := uow.EventBus().Publish(events.WithdrawalDecidedEvent{
			WithdrawalID: request.ID,
			UserID:       request.UserID,
			Status:       status,
		}); err != nil {
			log.WithError(err).WithField("withdrawalID", request.ID).
				Error("Failed to publish withdrawal decided event")
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit withdrawal review: %w", err)
	}
	return request, nil
}

// refund restores the full held amount, not the net, and cancels the hold
func (s *withdrawalService) refund(ctx context.Context, uow interfaces.UnitOfWork, request *entities.WithdrawalRequest) error {
	if err := uow.TransactionRepository().UpdateStatus(ctx, request.TransactionID, entities.TransactionStatusCancelled); err != nil {
		return fmt.Errorf("failed to cancel withdrawal transaction: %w", err)
	}

	wallet, err := uow.WalletRepository().GetByUserIDForUpdate(ctx, request.UserID)
	if err != nil {
		return fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return fmt.Errorf("no wallet for user %d", request.UserID)
	}

	refundTx := &entities.Transaction{
		UserID:              request.UserID,
		Type:                entities.TransactionTypeDeposit,
		Status:              entities.TransactionStatusCompleted,
		Amount:              request.Amount,
		WithdrawalRequestID: &request.ID,
		Description:         fmt.Sprintf("Refund for rejected withdrawal #%d", request.ID),
	}
	if err := utils.ApplyCredit(ctx, uow.WalletRepository(), uow.TransactionRepository(),
		uow.EventBus(), wallet, request.Amount, refundTx); err != nil {
		return fmt.Errorf("failed to refund withdrawal: %w", err)
	}
	return nil
}

// ListByUser returns the user's withdrawal requests, newest first
func (s *withdrawalService) ListByUser(ctx context.Context, userID int64) ([]*entities.WithdrawalRequest, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	requests, err := uow.WithdrawalRepository().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawal requests: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return requests, nil
}

// validCryptoAddress applies a minimal shape check. Real validation happens at
// the payment provider when the payout is executed.
func validCryptoAddress(address string) bool {
	if len(address) < 20 || len(address) > 128 {
		return false
	}
	for _, r := range address {
		isAlnum := (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !isAlnum {
			return false
		}
	}
	return true
}

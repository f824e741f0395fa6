package services

import (
	"context"
	"fmt"
	"time"

	"prizedraw/domain/apperrors"
	"prizedraw/domain/entities"
	"prizedraw/domain/interfaces"
	"prizedraw/domain/utils"
)

const ticketNumberLength = 10

// EntryConfig carries the ticket-cap parameters
type EntryConfig struct {
	BaseTicketCap int
	ReferralTiers []entities.ReferralTier
}

// entryService implements validated, atomic ticket sales
type entryService struct {
	cfg        EntryConfig
	uowFactory interfaces.UnitOfWorkFactory
	now        func() time.Time
}

// NewEntryService creates a new entry service
func NewEntryService(cfg EntryConfig, uowFactory interfaces.UnitOfWorkFactory) interfaces.EntryService {
	return &entryService{
		cfg:        cfg,
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

// PurchaseEntries buys quantity tickets in a draw. The balance debit, the
// ledger write, the entry rows, and the draw counter bump commit together
// or not at all.
func (s *entryService) PurchaseEntries(ctx context.Context, userID, drawID int64, quantity int) (*interfaces.EntryPurchaseResult, error) {
	if quantity < 1 {
		return nil, apperrors.Validation("invalid_quantity", "quantity must be at least 1")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	draw, err := uow.DrawRepository().GetByIDForUpdate(ctx, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draw %d: %w", drawID, err)
	}
	if draw == nil {
		return nil, apperrors.NotFound("draw_not_found", "draw %d not found", drawID)
	}

	now := s.now()
	if draw.IsSettledOrSettling() {
		return nil, apperrors.State("draw_not_accepting_entries", "draw is not accepting entries")
	}
	if !now.Before(draw.DrawTime) {
		return nil, apperrors.Validation("entry_window_closed", "draw entry window has closed")
	}
	if !draw.HasCapacityFor(quantity) {
		return nil, apperrors.Validation("draw_sold_out", "not enough entries available")
	}

	if err := s.checkTicketCap(ctx, uow, userID, drawID, quantity); err != nil {
		return nil, err
	}

	wallet, err := uow.WalletRepository().GetByUserIDForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return nil, apperrors.NotFound("wallet_not_found", "wallet not found for user %d", userID)
	}

	totalCost := draw.TotalCost(quantity)
	if !wallet.CanAfford(totalCost) {
		return nil, apperrors.InsufficientFunds(
			"insufficient balance: have %s, need %s", wallet.Balance.String(), totalCost.String())
	}

	purchaseTx := &entities.Transaction{
		UserID:      userID,
		Type:        entities.TransactionTypeEntryPurchase,
		Status:      entities.TransactionStatusCompleted,
		Amount:      totalCost,
		Description: fmt.Sprintf("Purchased %d entry(s) for %s", quantity, draw.Title),
	}
	if err := utils.ApplyDebit(ctx, uow.WalletRepository(), uow.TransactionRepository(),
		uow.EventBus(), wallet, totalCost, purchaseTx); err != nil {
		return nil, err
	}

	entries := make([]*entities.Entry, 0, quantity)
	for i := 0; i < quantity; i++ {
		number, err := utils.GenerateTicketNumber(ticketNumberLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate ticket number: %w", err)
		}
		entries = append(entries, &entities.Entry{
			DrawID:       drawID,
			UserID:       userID,
			TicketNumber: number,
		})
	}
	if err := uow.EntryRepository().CreateBatch(ctx, entries); err != nil {
		return nil, fmt.Errorf("failed to create entries: %w", err)
	}

	if err := uow.DrawRepository().IncrementEntries(ctx, drawID, quantity); err != nil {
		return nil, fmt.Errorf("failed to update draw entry count: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit entry purchase: %w", err)
	}

	return &interfaces.EntryPurchaseResult{
		Entries:    entries,
		TotalCost:  totalCost,
		NewBalance: wallet.Balance,
	}, nil
}

// checkTicketCap enforces the buyer's referral-tier ticket cap for the draw.
// The violation carries the buyer's current standing and the next unmet tier
// so the caller can prompt for more referrals.
func (s *entryService) checkTicketCap(ctx context.Context, uow interfaces.UnitOfWork, userID, drawID int64, quantity int) error {
	referralCount, err := uow.UserRepository().CountReferrals(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to count referrals: %w", err)
	}

	maxTickets := entities.ResolveTicketCap(s.cfg.BaseTicketCap, s.cfg.ReferralTiers, referralCount)

	alreadyBought, err := uow.EntryRepository().CountByUserAndDraw(ctx, userID, drawID)
	if err != nil {
		return fmt.Errorf("failed to count user entries: %w", err)
	}

	if alreadyBought+quantity <= maxTickets {
		return nil
	}

	details := map[string]any{
		"maxTickets":        maxTickets,
		"userTicketsInDraw": alreadyBought,
		"userReferrals":     referralCount,
	}
	if next := entities.NextTier(s.cfg.ReferralTiers, referralCount); next != nil {
		details["nextTier"] = map[string]any{
			"referralsNeeded": next.ReferralThreshold - referralCount,
			"maxTickets":      next.MaxTickets,
		}
	}
	return apperrors.Validation("ticket_cap_exceeded",
		"you can only purchase up to %d tickets per draw", maxTickets).WithDetails(details)
}

// TicketLimits returns the user's current tier standing
func (s *entryService) TicketLimits(ctx context.Context, userID int64) (*interfaces.TicketLimitInfo, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	referralCount, err := uow.UserRepository().CountReferrals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count referrals: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	return &interfaces.TicketLimitInfo{
		ReferralCount: referralCount,
		MaxTickets:    entities.ResolveTicketCap(s.cfg.BaseTicketCap, s.cfg.ReferralTiers, referralCount),
		BaseCap:       s.cfg.BaseTicketCap,
		Tiers:         entities.SortTiers(s.cfg.ReferralTiers),
		NextTier:      entities.NextTier(s.cfg.ReferralTiers, referralCount),
	}, nil
}

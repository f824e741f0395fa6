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

// settlementService settles due draws: it selects distinct winning users via
// a crypto-rand shuffle of the entry pool, pairs them with the draw's ordered
// prizes, and credits payouts.
type settlementService struct {
	uowFactory interfaces.UnitOfWorkFactory
	now        func() time.Time
}

// NewSettlementService creates a new settlement service
func NewSettlementService(uowFactory interfaces.UnitOfWorkFactory) interfaces.SettlementService {
	return &settlementService{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

// ExecuteDraw settles the draw. Winner rows, prize credits, ledger writes and
// the COMPLETED status commit in one transaction; a failure anywhere leaves
// the draw untouched and settleable again.
func (s *settlementService) ExecuteDraw(ctx context.Context, drawID int64, winnerCount int) (*interfaces.SettlementResult, error) {
	if winnerCount < 1 {
		return nil, apperrors.Validation("invalid_winner_count", "winner count must be at least 1")
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
	if draw.IsSettledOrSettling() {
		return nil, apperrors.State("draw_already_settled", "draw %d has already been settled", drawID)
	}
	if !draw.IsDue(s.now()) {
		return nil, apperrors.State("draw_not_due", "draw %d is not due until %s", drawID, draw.DrawTime.Format(time.RFC3339))
	}

	entries, err := uow.EntryRepository().ListByDraw(ctx, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for draw %d: %w", drawID, err)
	}
	if len(entries) == 0 {
		return nil, apperrors.State("draw_has_no_entries", "draw %d has no entries to settle", drawID)
	}
	if len(entries) < winnerCount {
		return nil, apperrors.State("insufficient_entries",
			"draw %d has %d entries, which cannot cover %d winners", drawID, len(entries), winnerCount)
	}

	prizes, err := uow.DrawRepository().GetPrizes(ctx, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to get prizes for draw %d: %w", drawID, err)
	}
	if len(prizes) == 0 {
		return nil, apperrors.State("no_prizes_configured", "draw %d has no prizes configured", drawID)
	}

	if err := uow.DrawRepository().UpdateStatus(ctx, drawID, entities.DrawStatusDrawing); err != nil {
		return nil, fmt.Errorf("failed to mark draw as drawing: %w", err)
	}

	winningEntries, err := selectWinningEntries(entries, winnerCount)
	if err != nil {
		return nil, err
	}

	prizeByPosition := make(map[int]decimal.Decimal, len(prizes))
	for _, p := range prizes {
		prizeByPosition[p.Position] = p.Amount
	}

	winners := make([]*entities.Winner, 0, len(winningEntries))
	totalPayout := decimal.Zero
	for i, entry := range winningEntries {
		position := i + 1
		winner := &entities.Winner{
			DrawID:       drawID,
			UserID:       entry.UserID,
			Position:     position,
			TicketNumber: entry.TicketNumber,
		}
		if amount, ok := prizeByPosition[position]; ok && amount.IsPositive() {
			winner.PrizeAmount = &amount
			if err := s.creditPrize(ctx, uow, draw, winner, amount); err != nil {
				return nil, err
			}
			totalPayout = totalPayout.Add(amount)
		}
		if err := uow.WinnerRepository().Create(ctx, winner); err != nil {
			return nil, fmt.Errorf("failed to record winner at position %d: %w", position, err)
		}
		winners = append(winners, winner)
	}

	if err := uow.DrawRepository().UpdateStatus(ctx, drawID, entities.DrawStatusCompleted); err != nil {
		return nil, fmt.Errorf("failed to mark draw as completed: %w", err)
	}

	if err := uow.EventBus().Publish(events.DrawSettledEvent{
		DrawID:      drawID,
		WinnerCount: len(winners),
	}); err != nil {
		log.WithError(err).WithField("drawID", drawID).Error("Failed to publish draw settled event")
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit settlement: %w", err)
	}

	log.WithFields(log.Fields{
		"drawID":      drawID,
		"winners":     len(winners),
		"totalPayout": totalPayout.String(),
	}).Info("Draw settled")

	return &interfaces.SettlementResult{
		Winners:      winners,
		TotalWinners: len(winners),
		TotalPayout:  totalPayout,
	}, nil
}

// selectWinningEntries shuffles the full entry pool and walks it keeping the
// first entry seen per user, so a user holding many tickets can win at most
// one position while still being weighted by ticket count. Returns fewer than
// winnerCount entries when the pool has fewer distinct users.
func selectWinningEntries(entries []*entities.Entry, winnerCount int) ([]*entities.Entry, error) {
	shuffled := make([]*entities.Entry, len(entries))
	copy(shuffled, entries)
	if err := utils.SecureShuffle(shuffled); err != nil {
		return nil, fmt.Errorf("failed to shuffle entries: %w", err)
	}

	seen := make(map[int64]bool, winnerCount)
	winners := make([]*entities.Entry, 0, winnerCount)
	for _, entry := range shuffled {
		if seen[entry.UserID] {
			continue
		}
		seen[entry.UserID] = true
		winners = append(winners, entry)
		if len(winners) == winnerCount {
			break
		}
	}
	return winners, nil
}

func (s *settlementService) creditPrize(ctx context.Context, uow interfaces.UnitOfWork, draw *entities.Draw, winner *entities.Winner, amount decimal.Decimal) error {
	wallet, err := uow.WalletRepository().GetByUserIDForUpdate(ctx, winner.UserID)
	if err != nil {
		return fmt.Errorf("failed to get winner wallet: %w", err)
	}
	if wallet == nil {
		return fmt.Errorf("no wallet for winning user %d", winner.UserID)
	}

	prizeTx := &entities.Transaction{
		UserID:      winner.UserID,
		Type:        entities.TransactionTypePrizeWin,
		Status:      entities.TransactionStatusCompleted,
		Amount:      amount,
		Description: fmt.Sprintf("Prize for position %d in %s", winner.Position, draw.Title),
	}
	if err := utils.ApplyCredit(ctx, uow.WalletRepository(), uow.TransactionRepository(),
		uow.EventBus(), wallet, amount, prizeTx); err != nil {
		return fmt.Errorf("failed to credit prize to user %d: %w", winner.UserID, err)
	}
	return nil
}

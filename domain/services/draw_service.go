package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"prizedraw/domain/apperrors"
	"prizedraw/domain/entities"
	"prizedraw/domain/interfaces"
)

// drawService provisions draws for entry sale and later settlement
type drawService struct {
	uowFactory interfaces.UnitOfWorkFactory
	now        func() time.Time
}

// NewDrawService creates a new draw service
func NewDrawService(uowFactory interfaces.UnitOfWorkFactory) interfaces.DrawService {
	return &drawService{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

// Create opens a new ACTIVE draw with prize positions assigned in the order
// the amounts were given. Settlement refuses draws without prizes, so at
// least one prize amount is required here.
func (s *drawService) Create(ctx context.Context, input interfaces.CreateDrawInput) (*entities.Draw, []*entities.Prize, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, nil, apperrors.Validation("missing_title", "title is required")
	}
	if !input.EntryPrice.IsPositive() {
		return nil, nil, apperrors.Validation("invalid_entry_price", "entry price must be positive")
	}
	if input.MaxEntries != nil && *input.MaxEntries < 1 {
		return nil, nil, apperrors.Validation("invalid_max_entries", "max entries must be at least 1")
	}
	if !input.DrawTime.After(s.now()) {
		return nil, nil, apperrors.Validation("invalid_draw_time", "draw time must be in the future")
	}
	if len(input.PrizeAmounts) == 0 {
		return nil, nil, apperrors.Validation("missing_prizes", "at least one prize is required")
	}
	for i, amount := range input.PrizeAmounts {
		if amount.IsNegative() {
			return nil, nil, apperrors.Validation("invalid_prize_amount",
				"prize at position %d must not be negative", i+1)
		}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	draw := &entities.Draw{
		Title:      title,
		Status:     entities.DrawStatusActive,
		EntryPrice: input.EntryPrice,
		MaxEntries: input.MaxEntries,
		DrawTime:   input.DrawTime,
	}
	prizes := make([]*entities.Prize, 0, len(input.PrizeAmounts))
	for i, amount := range input.PrizeAmounts {
		prizes = append(prizes, &entities.Prize{Position: i + 1, Amount: amount})
	}

	if err := uow.DrawRepository().Create(ctx, draw, prizes); err != nil {
		return nil, nil, fmt.Errorf("failed to create draw: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit: %w", err)
	}

	log.WithFields(log.Fields{
		"drawID":   draw.ID,
		"title":    draw.Title,
		"drawTime": draw.DrawTime,
		"prizes":   len(prizes),
	}).Info("Draw created")

	return draw, prizes, nil
}

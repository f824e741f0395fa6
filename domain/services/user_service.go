package services

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"prizedraw/domain/apperrors"
	"prizedraw/domain/entities"
	"prizedraw/domain/interfaces"
	"prizedraw/domain/utils"
)

const referralCodeLength = 8

// userService provisions accounts with their wallets
type userService struct {
	uowFactory interfaces.UnitOfWorkFactory
}

// NewUserService creates a new user service
func NewUserService(uowFactory interfaces.UnitOfWorkFactory) interfaces.UserService {
	return &userService{uowFactory: uowFactory}
}

// Register creates the user and their wallet together. A matching referral
// code links the new user to the referrer; an unknown code is ignored rather
// than failing registration.
func (s *userService) Register(ctx context.Context, username string, referralCode string) (*entities.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperrors.Validation("invalid_username", "username must not be empty")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	var referredBy *int64
	if code := strings.TrimSpace(referralCode); code != "" {
		referrer, err := uow.UserRepository().GetByReferralCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to look up referral code: %w", err)
		}
		if referrer != nil {
			referredBy = &referrer.ID
		} else {
			log.WithField("referralCode", code).Debug("Unknown referral code at registration")
		}
	}

	ownCode, err := utils.GenerateTicketNumber(referralCodeLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate referral code: %w", err)
	}

	user := &entities.User{
		Username:     username,
		Role:         entities.RoleUser,
		ReferralCode: ownCode,
		ReferredBy:   referredBy,
	}
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	wallet := &entities.Wallet{UserID: user.ID}
	if err := uow.WalletRepository().Create(ctx, wallet); err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit registration: %w", err)
	}
	return user, nil
}

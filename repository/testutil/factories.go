package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"prizedraw/domain/entities"
)

var referralCodeSeq atomic.Int64

// CreateTestUser creates a user entity with a unique referral code
func CreateTestUser(username string) *entities.User {
	return &entities.User{
		Username:     username,
		Role:         entities.RoleUser,
		ReferralCode: fmt.Sprintf("REF%05d", referralCodeSeq.Add(1)),
	}
}

// CreateTestUserReferredBy creates a user attributed to the given referrer
func CreateTestUserReferredBy(username string, referrerID int64) *entities.User {
	user := CreateTestUser(username)
	user.ReferredBy = &referrerID
	return user
}

// CreateTestWallet creates a wallet entity for the given user
func CreateTestWallet(userID int64) *entities.Wallet {
	return &entities.Wallet{UserID: userID}
}

// CreateTestDraw creates an active draw settling in 24 hours
func CreateTestDraw(title string) *entities.Draw {
	return &entities.Draw{
		Title:      title,
		Status:     entities.DrawStatusActive,
		EntryPrice: decimal.NewFromInt(2),
		DrawTime:   time.Now().Add(24 * time.Hour).UTC().Truncate(time.Microsecond),
	}
}

// CreateTestDrawWithPrizes pairs a draw with a descending prize ladder
func CreateTestDrawWithPrizes(title string, amounts ...int64) (*entities.Draw, []*entities.Prize) {
	draw := CreateTestDraw(title)
	prizes := make([]*entities.Prize, 0, len(amounts))
	for i, amount := range amounts {
		prizes = append(prizes, &entities.Prize{
			Position: i + 1,
			Amount:   decimal.NewFromInt(amount),
		})
	}
	return draw, prizes
}

// CreateTestDeposit creates a pending deposit transaction keyed by paymentID
func CreateTestDeposit(userID int64, paymentID string, amount int64) *entities.Transaction {
	return &entities.Transaction{
		UserID:      userID,
		Type:        entities.TransactionTypeDeposit,
		Status:      entities.TransactionStatusPending,
		Amount:      decimal.NewFromInt(amount),
		PaymentID:   &paymentID,
		Description: "test deposit",
	}
}

// CreateTestEntry creates an entry with the given ticket number
func CreateTestEntry(drawID, userID int64, ticketNumber string) *entities.Entry {
	return &entities.Entry{
		DrawID:       drawID,
		UserID:       userID,
		TicketNumber: ticketNumber,
	}
}

// CreateTestWithdrawal creates a pending withdrawal request holding txID
func CreateTestWithdrawal(userID, txID int64, amount int64) *entities.WithdrawalRequest {
	amt := decimal.NewFromInt(amount)
	fee, net := entities.ComputeWithdrawalFee(amt, decimal.NewFromInt(18))
	return &entities.WithdrawalRequest{
		UserID:        userID,
		Amount:        amt,
		Fee:           fee,
		NetAmount:     net,
		CryptoAddress: "TXYZa1b2c3d4e5f6g7h8i9j0KLMNopqr",
		Status:        entities.WithdrawalStatusPending,
		TransactionID: txID,
		RequestedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
}

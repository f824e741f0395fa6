// Package utils holds the single entry point for wallet balance mutation.
// No component reads, modifies, and writes a balance on its own: credits and
// debits go through ApplyCredit/ApplyDebit so the bounds-checked wallet
// update and the ledger write always share one transaction scope.
package utils

import (
	"context"
	"fmt"

	"prizedraw/domain/entities"
	"prizedraw/domain/interfaces"
	"prizedraw/domain/events"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// ApplyCredit increases the wallet balance and records the ledger transaction
// in the same scope. The transaction's ID is filled on return.
func ApplyCredit(
	ctx context.Context,
	walletRepo interfaces.WalletRepository,
	txRepo interfaces.TransactionRepository,
	publisher interfaces.EventPublisher,
	wallet *entities.Wallet,
	amount decimal.Decimal,
	tx *entities.Transaction,
) error {
	if err := walletRepo.Credit(ctx, wallet.ID, amount); err != nil {
		return fmt.Errorf("failed to credit wallet %d: %w", wallet.ID, err)
	}
	if err := txRepo.Create(ctx, tx); err != nil {
		return fmt.Errorf("failed to record credit transaction: %w", err)
	}

	oldBalance := wallet.Balance
	wallet.Balance = wallet.Balance.Add(amount)
	publishBalanceChange(publisher, wallet.UserID, oldBalance, wallet.Balance, amount, tx.Type)
	return nil
}

// ApplyDebit decreases the wallet balance and records the ledger transaction
// in the same scope. Fails without side effects if the balance cannot cover
// the amount.
func ApplyDebit(
	ctx context.Context,
	walletRepo interfaces.WalletRepository,
	txRepo interfaces.TransactionRepository,
	publisher interfaces.EventPublisher,
	wallet *entities.Wallet,
	amount decimal.Decimal,
	tx *entities.Transaction,
) error {
	if err := walletRepo.Debit(ctx, wallet.ID, amount); err != nil {
		return err
	}
	if err := txRepo.Create(ctx, tx); err != nil {
		return fmt.Errorf("failed to record debit transaction: %w", err)
	}

	oldBalance := wallet.Balance
	wallet.Balance = wallet.Balance.Sub(amount)
	publishBalanceChange(publisher, wallet.UserID, oldBalance, wallet.Balance, amount.Neg(), tx.Type)
	return nil
}

func publishBalanceChange(
	publisher interfaces.EventPublisher,
	userID int64,
	oldBalance, newBalance, change decimal.Decimal,
	txType entities.TransactionType,
) {
	if publisher == nil {
		return
	}
	event := events.BalanceChangeEvent{
		UserID:          userID,
		OldBalance:      oldBalance.String(),
		NewBalance:      newBalance.String(),
		TransactionType: txType,
		ChangeAmount:    change.String(),
	}
	if err := publisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish balance change event")
	}
}

package testhelpers

import (
	"context"

	"prizedraw/domain/events"
	"prizedraw/domain/interfaces"
)

// RecordingPublisher collects published events for assertions
type RecordingPublisher struct {
	Events []events.Event
}

func (p *RecordingPublisher) Publish(event events.Event) error {
	p.Events = append(p.Events, event)
	return nil
}

// FakeUnitOfWork hands out mock repositories and records lifecycle calls.
// Tests set expectations on the mocks and assert on Committed/RolledBack.
type FakeUnitOfWork struct {
	Users        *MockUserRepository
	Wallets      *MockWalletRepository
	Transactions *MockTransactionRepository
	Draws        *MockDrawRepository
	Entries      *MockEntryRepository
	Winners      *MockWinnerRepository
	Withdrawals  *MockWithdrawalRepository
	Publisher    *RecordingPublisher

	Began      bool
	Committed  bool
	RolledBack bool
}

// NewFakeUnitOfWork creates a fake unit of work with fresh mocks
func NewFakeUnitOfWork() *FakeUnitOfWork {
	return &FakeUnitOfWork{
		Users:        &MockUserRepository{},
		Wallets:      &MockWalletRepository{},
		Transactions: &MockTransactionRepository{},
		Draws:        &MockDrawRepository{},
		Entries:      &MockEntryRepository{},
		Winners:      &MockWinnerRepository{},
		Withdrawals:  &MockWithdrawalRepository{},
		Publisher:    &RecordingPublisher{},
	}
}

func (u *FakeUnitOfWork) Begin(ctx context.Context) error {
	u.Began = true
	return nil
}

func (u *FakeUnitOfWork) Commit() error {
	u.Committed = true
	return nil
}

func (u *FakeUnitOfWork) Rollback() error {
	if !u.Committed {
		u.RolledBack = true
	}
	return nil
}

func (u *FakeUnitOfWork) UserRepository() interfaces.UserRepository               { return u.Users }
func (u *FakeUnitOfWork) WalletRepository() interfaces.WalletRepository           { return u.Wallets }
func (u *FakeUnitOfWork) TransactionRepository() interfaces.TransactionRepository { return u.Transactions }
func (u *FakeUnitOfWork) DrawRepository() interfaces.DrawRepository               { return u.Draws }
func (u *FakeUnitOfWork) EntryRepository() interfaces.EntryRepository             { return u.Entries }
func (u *FakeUnitOfWork) WinnerRepository() interfaces.WinnerRepository           { return u.Winners }
func (u *FakeUnitOfWork) WithdrawalRepository() interfaces.WithdrawalRepository   { return u.Withdrawals }
func (u *FakeUnitOfWork) EventBus() interfaces.EventPublisher                     { return u.Publisher }

// FakeUowFactory returns the same unit of work from every Create call
type FakeUowFactory struct {
	Uow *FakeUnitOfWork
}

func (f *FakeUowFactory) Create() interfaces.UnitOfWork {
	return f.Uow
}

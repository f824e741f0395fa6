package entities

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeWithdrawalFee(t *testing.T) {
	tests := []struct {
		amount  string
		percent string
		fee     string
		net     string
	}{
		{"100", "18", "18", "82"},
		{"50", "18", "9", "41"},
		{"33.33", "18", "6", "27.33"},
		{"0.01", "18", "0", "0.01"},
		{"200", "0", "0", "200"},
	}
	for _, tt := range tests {
		fee, net := ComputeWithdrawalFee(
			decimal.RequireFromString(tt.amount), decimal.RequireFromString(tt.percent))
		assert.True(t, fee.Equal(decimal.RequireFromString(tt.fee)),
			"amount %s: fee = %s, want %s", tt.amount, fee, tt.fee)
		assert.True(t, net.Equal(decimal.RequireFromString(tt.net)),
			"amount %s: net = %s, want %s", tt.amount, net, tt.net)
	}
}

func TestWithdrawalStatusTransitions(t *testing.T) {
	tests := []struct {
		from    WithdrawalStatus
		to      WithdrawalStatus
		allowed bool
	}{
		{WithdrawalStatusPending, WithdrawalStatusUnderReview, true},
		{WithdrawalStatusPending, WithdrawalStatusCompleted, true},
		{WithdrawalStatusPending, WithdrawalStatusRejected, true},
		{WithdrawalStatusUnderReview, WithdrawalStatusCompleted, true},
		{WithdrawalStatusUnderReview, WithdrawalStatusRejected, true},
		{WithdrawalStatusUnderReview, WithdrawalStatusPending, false},
		{WithdrawalStatusCompleted, WithdrawalStatusRejected, false},
		{WithdrawalStatusCompleted, WithdrawalStatusPending, false},
		{WithdrawalStatusRejected, WithdrawalStatusCompleted, false},
	}
	for _, tt := range tests {
		r := &WithdrawalRequest{Status: tt.from}
		assert.Equal(t, tt.allowed, r.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestWithdrawalStatusPredicates(t *testing.T) {
	assert.True(t, WithdrawalStatusCompleted.IsTerminal())
	assert.True(t, WithdrawalStatusRejected.IsTerminal())
	assert.False(t, WithdrawalStatusPending.IsTerminal())
	assert.False(t, WithdrawalStatusUnderReview.IsTerminal())

	assert.True(t, WithdrawalStatusUnderReview.IsValid())
	assert.False(t, WithdrawalStatus("BOGUS").IsValid())
}

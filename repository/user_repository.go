package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"prizedraw/domain/entities"
)

// UserRepository implements user data access
type UserRepository struct {
	q Queryable
}

func newUserRepository(tx Queryable) *UserRepository {
	return &UserRepository{q: tx}
}

// NewUserRepository creates a user repository over the given queryable
func NewUserRepository(q Queryable) *UserRepository {
	return &UserRepository{q: q}
}

// GetByID retrieves a user by ID, returning nil if not found
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entities.User, error) {
	query := `
		SELECT id, username, role, referral_code, referred_by, created_at
		FROM users
		WHERE id = $1
	`

	var user entities.User
	err := r.q.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Role,
		&user.ReferralCode,
		&user.ReferredBy,
		&user.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}

	return &user, nil
}

// GetByReferralCode retrieves a user by referral code, returning nil if not found
func (r *UserRepository) GetByReferralCode(ctx context.Context, code string) (*entities.User, error) {
	query := `
		SELECT id, username, role, referral_code, referred_by, created_at
		FROM users
		WHERE referral_code = $1
	`

	var user entities.User
	err := r.q.QueryRow(ctx, query, code).Scan(
		&user.ID,
		&user.Username,
		&user.Role,
		&user.ReferralCode,
		&user.ReferredBy,
		&user.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by referral code: %w", err)
	}

	return &user, nil
}

// Create inserts a new user, filling ID and CreatedAt
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	query := `
		INSERT INTO users (username, role, referral_code, referred_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		user.Username, user.Role, user.ReferralCode, user.ReferredBy,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// CountReferrals returns the number of users referred by the given user
func (r *UserRepository) CountReferrals(ctx context.Context, userID int64) (int, error) {
	query := `SELECT COUNT(*) FROM users WHERE referred_by = $1`

	var count int
	if err := r.q.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count referrals for user %d: %w", userID, err)
	}

	return count, nil
}

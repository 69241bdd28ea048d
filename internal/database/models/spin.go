package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sweatloop/treatwheel/internal/database/dbretry"
	"github.com/sweatloop/treatwheel/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// SpinModel handles database operations for spin records.
type SpinModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewSpin creates a new spin model.
func NewSpin(db *bun.DB, logger *zap.Logger) *SpinModel {
	return &SpinModel{
		db:     db,
		logger: logger.Named("db_spin"),
	}
}

// Latest retrieves a user's most recent spin.
// Returns nil without error when the user has never spun.
func (r *SpinModel) Latest(ctx context.Context, userID int64) (*types.SpinRecord, error) {
	spin, err := dbretry.Operation(ctx, func(ctx context.Context) (*types.SpinRecord, error) {
		var spin types.SpinRecord

		err := r.db.NewSelect().
			Model(&spin).
			Where("user_id = ?", userID).
			Order("spun_at DESC").
			Limit(1).
			Scan(ctx)
		if err != nil {
			return nil, err
		}

		return &spin, nil
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to get latest spin for user %d: %w", userID, err)
	}

	return spin, nil
}

// CountSince counts a user's spins at or after the given time.
func (r *SpinModel) CountSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	count, err := dbretry.Operation(ctx, func(ctx context.Context) (int, error) {
		return r.db.NewSelect().
			Model((*types.SpinRecord)(nil)).
			Where("user_id = ?", userID).
			Where("spun_at >= ?", since).
			Count(ctx)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count spins for user %d: %w", userID, err)
	}

	return count, nil
}

// OldestSince retrieves a user's oldest spin at or after the given time.
// Returns nil without error when no spin falls in the window.
func (r *SpinModel) OldestSince(ctx context.Context, userID int64, since time.Time) (*types.SpinRecord, error) {
	spin, err := dbretry.Operation(ctx, func(ctx context.Context) (*types.SpinRecord, error) {
		var spin types.SpinRecord

		err := r.db.NewSelect().
			Model(&spin).
			Where("user_id = ?", userID).
			Where("spun_at >= ?", since).
			Order("spun_at ASC").
			Limit(1).
			Scan(ctx)
		if err != nil {
			return nil, err
		}

		return &spin, nil
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to get oldest spin for user %d: %w", userID, err)
	}

	return spin, nil
}

// Create persists a new spin record.
func (r *SpinModel) Create(ctx context.Context, spin *types.SpinRecord) error {
	err := dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := r.db.NewInsert().
			Model(spin).
			Exec(ctx)

		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create spin for user %d: %w", spin.UserID, err)
	}

	r.logger.Debug("Created spin record",
		zap.Int64("userID", spin.UserID),
		zap.Int64("rewardItemID", spin.RewardItemID),
		zap.String("portion", string(spin.Portion)),
		zap.Int("bonusMinutes", spin.BonusMinutes))

	return nil
}

// SetBonusCompleted marks a spin's bonus exercise as completed.
func (r *SpinModel) SetBonusCompleted(ctx context.Context, userID, spinID int64, completed bool) error {
	err := dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := r.db.NewUpdate().
			Model((*types.SpinRecord)(nil)).
			Set("bonus_completed = ?", completed).
			Where("id = ?", spinID).
			Where("user_id = ?", userID).
			Exec(ctx)

		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update bonus completion for spin %d: %w", spinID, err)
	}

	return nil
}

package models

import (
	"context"
	"fmt"

	"github.com/sweatloop/treatwheel/internal/database/dbretry"
	"github.com/sweatloop/treatwheel/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// RewardModel handles database operations for reward items.
type RewardModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewReward creates a new reward model.
func NewReward(db *bun.DB, logger *zap.Logger) *RewardModel {
	return &RewardModel{
		db:     db,
		logger: logger.Named("db_reward"),
	}
}

// ListForUser retrieves a user's enabled reward items in creation order.
func (r *RewardModel) ListForUser(ctx context.Context, userID int64) ([]*types.RewardItem, error) {
	items, err := dbretry.Operation(ctx, func(ctx context.Context) ([]*types.RewardItem, error) {
		var items []*types.RewardItem

		err := r.db.NewSelect().
			Model(&items).
			Where("user_id = ?", userID).
			Where("enabled").
			Order("created_at ASC").
			Scan(ctx)
		if err != nil {
			return nil, err
		}

		return items, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list rewards for user %d: %w", userID, err)
	}

	return items, nil
}

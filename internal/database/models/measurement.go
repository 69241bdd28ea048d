package models

import (
	"context"
	"fmt"
	"time"

	"github.com/sweatloop/treatwheel/internal/database/dbretry"
	"github.com/sweatloop/treatwheel/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// MeasurementModel handles database operations for measurement points.
type MeasurementModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewMeasurement creates a new measurement model.
func NewMeasurement(db *bun.DB, logger *zap.Logger) *MeasurementModel {
	return &MeasurementModel{
		db:     db,
		logger: logger.Named("db_measurement"),
	}
}

// ListRecent retrieves up to limit measurement points for a user, newest first.
// When sinceDays is positive, only points within that trailing window are returned.
func (r *MeasurementModel) ListRecent(
	ctx context.Context, userID int64, sinceDays, limit int,
) ([]*types.MeasurementPoint, error) {
	points, err := dbretry.Operation(ctx, func(ctx context.Context) ([]*types.MeasurementPoint, error) {
		var points []*types.MeasurementPoint

		q := r.db.NewSelect().
			Model(&points).
			Where("user_id = ?", userID).
			Order("occurred_at DESC").
			Limit(limit)

		if sinceDays > 0 {
			q = q.Where("occurred_at > ?", time.Now().AddDate(0, 0, -sinceDays))
		}

		if err := q.Scan(ctx); err != nil {
			return nil, err
		}

		return points, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list measurements for user %d: %w", userID, err)
	}

	r.logger.Debug("Listed recent measurements",
		zap.Int64("userID", userID),
		zap.Int("count", len(points)))

	return points, nil
}

// Create records a new measurement point.
func (r *MeasurementModel) Create(ctx context.Context, point *types.MeasurementPoint) error {
	err := dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := r.db.NewInsert().
			Model(point).
			Exec(ctx)

		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create measurement for user %d: %w", point.UserID, err)
	}

	return nil
}

package models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sweatloop/treatwheel/internal/database/dbretry"
	"github.com/sweatloop/treatwheel/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// NotificationModel handles database operations for notification rows.
type NotificationModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewNotification creates a new notification model.
func NewNotification(db *bun.DB, logger *zap.Logger) *NotificationModel {
	return &NotificationModel{
		db:     db,
		logger: logger.Named("db_notification"),
	}
}

// Insert persists a batch of notification rows, assigning IDs and timestamps
// to rows that lack them. Returns the number of rows created.
func (r *NotificationModel) Insert(ctx context.Context, rows []*types.Notification) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	now := time.Now()

	for _, row := range rows {
		if row.ID == "" {
			row.ID = uuid.NewString()
		}

		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
	}

	err := dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := r.db.NewInsert().
			Model(&rows).
			Exec(ctx)

		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to insert notifications: %w", err)
	}

	r.logger.Debug("Inserted notifications", zap.Int("count", len(rows)))

	return len(rows), nil
}

// CountUnread counts a recipient's unread notifications.
func (r *NotificationModel) CountUnread(ctx context.Context, userID int64) (int64, error) {
	count, err := dbretry.Operation(ctx, func(ctx context.Context) (int, error) {
		return r.db.NewSelect().
			Model((*types.Notification)(nil)).
			Where("recipient_id = ?", userID).
			Where("read_at IS NULL").
			Count(ctx)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications for user %d: %w", userID, err)
	}

	return int64(count), nil
}

// MarkRead acknowledges the given notifications for a recipient.
// Rows belonging to other recipients are untouched.
func (r *NotificationModel) MarkRead(ctx context.Context, userID int64, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	err := dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := r.db.NewUpdate().
			Model((*types.Notification)(nil)).
			Set("read_at = ?", time.Now()).
			Where("recipient_id = ?", userID).
			Where("id IN (?)", bun.In(ids)).
			Where("read_at IS NULL").
			Exec(ctx)

		return err
	})
	if err != nil {
		return fmt.Errorf("failed to mark notifications read for user %d: %w", userID, err)
	}

	return nil
}

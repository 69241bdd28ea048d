package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		indexes := []string{
			`CREATE INDEX IF NOT EXISTS idx_measurement_points_user_occurred
				ON measurement_points (user_id, occurred_at DESC)`,
			`CREATE INDEX IF NOT EXISTS idx_spin_records_user_spun
				ON spin_records (user_id, spun_at DESC)`,
			`CREATE INDEX IF NOT EXISTS idx_reward_items_user_enabled
				ON reward_items (user_id) WHERE enabled`,
			`CREATE INDEX IF NOT EXISTS idx_notifications_recipient_unread
				ON notifications (recipient_id) WHERE read_at IS NULL`,
			`CREATE INDEX IF NOT EXISTS idx_notifications_recipient_created
				ON notifications (recipient_id, created_at DESC)`,
		}

		for _, index := range indexes {
			if _, err := db.ExecContext(ctx, index); err != nil {
				return fmt.Errorf("failed to create index: %w", err)
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		indexes := []string{
			"DROP INDEX IF EXISTS idx_measurement_points_user_occurred",
			"DROP INDEX IF EXISTS idx_spin_records_user_spun",
			"DROP INDEX IF EXISTS idx_reward_items_user_enabled",
			"DROP INDEX IF EXISTS idx_notifications_recipient_unread",
			"DROP INDEX IF EXISTS idx_notifications_recipient_created",
		}

		for _, index := range indexes {
			if _, err := db.ExecContext(ctx, index); err != nil {
				return fmt.Errorf("failed to drop index: %w", err)
			}
		}

		return nil
	})
}

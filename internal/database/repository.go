package database

import (
	"github.com/sweatloop/treatwheel/internal/database/models"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Repository provides access to all database models.
type Repository struct {
	measurement  *models.MeasurementModel
	spin         *models.SpinModel
	reward       *models.RewardModel
	notification *models.NotificationModel
	social       *models.SocialModel
}

// NewRepository creates a new repository instance with all models.
func NewRepository(db *bun.DB, logger *zap.Logger) *Repository {
	return &Repository{
		measurement:  models.NewMeasurement(db, logger),
		spin:         models.NewSpin(db, logger),
		reward:       models.NewReward(db, logger),
		notification: models.NewNotification(db, logger),
		social:       models.NewSocial(db, logger),
	}
}

// Measurement returns the measurement model repository.
func (r *Repository) Measurement() *models.MeasurementModel {
	return r.measurement
}

// Spin returns the spin model repository.
func (r *Repository) Spin() *models.SpinModel {
	return r.spin
}

// Reward returns the reward model repository.
func (r *Repository) Reward() *models.RewardModel {
	return r.reward
}

// Notification returns the notification model repository.
func (r *Repository) Notification() *models.NotificationModel {
	return r.notification
}

// Social returns the social model repository.
func (r *Repository) Social() *models.SocialModel {
	return r.social
}

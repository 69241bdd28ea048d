// Package engine ties the treat wheel together: rate limiting, eligibility,
// the seeded draw, spin persistence and notification fan-out.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/sweatloop/treatwheel/internal/database/service"
	"github.com/sweatloop/treatwheel/internal/database/types"
	"github.com/sweatloop/treatwheel/internal/ratelimit"
	"github.com/sweatloop/treatwheel/internal/setup/config"
	"github.com/sweatloop/treatwheel/internal/wheel"
	"github.com/sweatloop/treatwheel/pkg/utils"
	"go.uber.org/zap"
)

// ErrNoRewards indicates the user has no enabled reward items to draw from.
var ErrNoRewards = errors.New("no enabled reward items")

// RewardReader is the reward-catalog read interface the engine consumes.
type RewardReader interface {
	ListForUser(ctx context.Context, userID int64) ([]*types.RewardItem, error)
}

// SpinWriter persists successful draws.
type SpinWriter interface {
	Create(ctx context.Context, spin *types.SpinRecord) error
}

// Notifier queues notification events. Failures here never fail a spin.
type Notifier interface {
	Queue(ctx context.Context, events ...types.Event) (int, error)
}

// Engine exposes the spin request surface consumed by request handlers.
type Engine struct {
	eligibility   *service.EligibilityService
	notifications Notifier
	rewards       RewardReader
	spins         SpinWriter
	limiter       *ratelimit.Limiter
	cfg           *config.Config
	logger        *zap.Logger
}

// New creates a new engine.
func New(
	eligibility *service.EligibilityService,
	notifications Notifier,
	rewards RewardReader,
	spins SpinWriter,
	limiter *ratelimit.Limiter,
	cfg *config.Config,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		eligibility:   eligibility,
		notifications: notifications,
		rewards:       rewards,
		spins:         spins,
		limiter:       limiter,
		cfg:           cfg,
		logger:        logger.Named("engine"),
	}
}

// EvaluateEligibility runs the eligibility checks without consuming quota.
func (e *Engine) EvaluateEligibility(
	ctx context.Context, userID int64, now time.Time,
) (*types.EligibilityVerdict, error) {
	return e.eligibility.Evaluate(ctx, userID, now)
}

// DrawSpin attempts a spin for the user. An ineligible user gets a verdict
// and no spin; an eligible one gets a persisted SpinRecord. The returned
// verdict is nil exactly when the spin is non-nil.
func (e *Engine) DrawSpin(
	ctx context.Context, userID int64, clientSeed string, now time.Time,
) (*types.SpinRecord, *types.EligibilityVerdict, error) {
	// The daily cap is consumed before anything else: an attempt counts
	// against quota even when it is ultimately rejected.
	res := e.limiter.Consume(ctx, ratelimit.SpinKey(userID),
		e.cfg.RateLimit.SpinsPerDay, 24*time.Hour, now)
	if res != nil && !res.OK {
		return nil, &types.EligibilityVerdict{
			Reason: types.ReasonLimitReached,
			Params: &types.ReasonParams{
				Limit:   int(res.Limit),
				EtaDays: utils.CeilDays(time.Duration(res.ResetAtMs-now.UnixMilli()) * time.Millisecond),
			},
		}, nil
	}

	verdict, err := e.eligibility.Evaluate(ctx, userID, now)
	if err != nil {
		return nil, nil, err
	}

	if !verdict.Eligible {
		return nil, verdict, nil
	}

	items, err := e.rewards.ListForUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	if len(items) == 0 {
		return nil, nil, ErrNoRewards
	}

	seed, err := wheel.BuildSeed(clientSeed)
	if err != nil {
		return nil, nil, err
	}

	item := items[wheel.PickIndex(len(items), seed, wheel.PurposeTreat)]
	portions := item.OfferedPortions()
	portion := portions[wheel.PickIndex(len(portions), seed, wheel.PurposePortion)]
	bonus := wheel.PickWeighted(
		e.cfg.Wheel.BonusMinuteValues, e.cfg.Wheel.BonusMinuteWeights, seed, wheel.PurposeBonus)

	spin := &types.SpinRecord{
		UserID:            userID,
		RewardItemID:      item.ID,
		RewardName:        item.Name,
		RewardDescription: item.Description,
		Portion:           types.Portion(portion),
		BonusMinutes:      bonus,
		Seed:              string(seed),
		SpunAt:            now,
	}

	if err := e.spins.Create(ctx, spin); err != nil {
		return nil, nil, err
	}

	e.logger.Info("Spin drawn",
		zap.Int64("userID", userID),
		zap.Int64("rewardItemID", item.ID),
		zap.String("portion", portion),
		zap.Int("bonusMinutes", bonus))

	if bonus > 0 {
		// Fan-out failures are isolated: the spin already succeeded.
		_, err := e.notifications.Queue(ctx, types.TreatBonusEvent{
			UserID:       userID,
			SpinID:       spin.ID,
			BonusMinutes: bonus,
		})
		if err != nil {
			e.logger.Error("Failed to queue treat bonus notification",
				zap.Int64("userID", userID),
				zap.Error(err))
		}
	}

	return spin, nil, nil
}

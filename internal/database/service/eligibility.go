package service

import (
	"context"
	"math"
	"time"

	"github.com/sweatloop/treatwheel/internal/database/types"
	"github.com/sweatloop/treatwheel/internal/setup/config"
	"github.com/sweatloop/treatwheel/pkg/utils"
	"go.uber.org/zap"
)

// minMeasurementLoad is the floor on how many recent points are loaded
// so short EMA windows still see enough history for a baseline.
const minMeasurementLoad = 28

// MeasurementReader is the read interface the eligibility engine consumes.
type MeasurementReader interface {
	ListRecent(ctx context.Context, userID int64, sinceDays, limit int) ([]*types.MeasurementPoint, error)
}

// SpinReader is the spin-history read interface the eligibility engine consumes.
type SpinReader interface {
	Latest(ctx context.Context, userID int64) (*types.SpinRecord, error)
	CountSince(ctx context.Context, userID int64, since time.Time) (int, error)
	OldestSince(ctx context.Context, userID int64, since time.Time) (*types.SpinRecord, error)
}

// EligibilityService decides whether a user may spin the treat wheel.
// Evaluation is read-only and deterministic for a fixed store state and now.
type EligibilityService struct {
	measurements MeasurementReader
	spins        SpinReader
	cfg          *config.Wheel
	logger       *zap.Logger
}

// NewEligibility creates a new eligibility service.
func NewEligibility(
	measurements MeasurementReader, spins SpinReader, cfg *config.Wheel, logger *zap.Logger,
) *EligibilityService {
	return &EligibilityService{
		measurements: measurements,
		spins:        spins,
		cfg:          cfg,
		logger:       logger.Named("eligibility"),
	}
}

// Evaluate runs the ordered eligibility checks for a user. The first failing
// check wins; there is no partial credit. Store errors propagate as
// infrastructure errors, never as verdicts.
func (s *EligibilityService) Evaluate(
	ctx context.Context, userID int64, now time.Time,
) (*types.EligibilityVerdict, error) {
	// Check 1: enough measurement history to judge consistency.
	loadLimit := 4 * s.cfg.EMAWindowDays
	if loadLimit < minMeasurementLoad {
		loadLimit = minMeasurementLoad
	}

	points, err := s.measurements.ListRecent(ctx, userID, 0, loadLimit)
	if err != nil {
		return nil, err
	}

	if len(points) == 0 {
		return insufficientVerdict(s.cfg.MinMeasurementDays), nil
	}

	if days := distinctDays(points, now, s.cfg.EMAWindowDays); days < s.cfg.MinMeasurementDays {
		s.logger.Debug("Not enough distinct measurement days",
			zap.Int64("userID", userID),
			zap.Int("days", days),
			zap.Int("required", s.cfg.MinMeasurementDays))

		return insufficientVerdict(s.cfg.MinMeasurementDays), nil
	}

	// Check 2: weekly cap.
	weekAgo := now.AddDate(0, 0, -7)

	if s.cfg.WeeklyLimit > 0 {
		count, err := s.spins.CountSince(ctx, userID, weekAgo)
		if err != nil {
			return nil, err
		}

		if count >= s.cfg.WeeklyLimit {
			etaDays := 1

			if oldest, err := s.spins.OldestSince(ctx, userID, weekAgo); err != nil {
				return nil, err
			} else if oldest != nil {
				etaDays = utils.CeilDays(oldest.SpunAt.AddDate(0, 0, 7).Sub(now))
			}

			return &types.EligibilityVerdict{
				Reason: types.ReasonLimitReached,
				Params: &types.ReasonParams{Limit: s.cfg.WeeklyLimit, EtaDays: etaDays},
			}, nil
		}
	}

	// Check 3: cooldown since the last spin.
	lastSpin, err := s.spins.Latest(ctx, userID)
	if err != nil {
		return nil, err
	}

	cooldown := time.Duration(s.cfg.CooldownDays) * 24 * time.Hour
	if lastSpin != nil && now.Sub(lastSpin.SpunAt) < cooldown {
		return &types.EligibilityVerdict{
			Reason: types.ReasonCooldown,
			Params: &types.ReasonParams{
				EtaDays: utils.CeilDays(lastSpin.SpunAt.Add(cooldown).Sub(now)),
			},
			LastSpinAt: &lastSpin.SpunAt,
		}, nil
	}

	// Checks 4-5: baseline resolution and progress delta.
	baseline := resolveBaseline(points, lastSpin)
	latest := latestWeighted(points)

	if baseline == nil || latest == nil {
		return &types.EligibilityVerdict{Reason: types.ReasonAnomaly}, nil
	}

	baselineWeight, baselineOK := baseline.Weight()

	latestWeight, latestOK := latest.Weight()
	if !baselineOK || !latestOK {
		return &types.EligibilityVerdict{Reason: types.ReasonAnomaly}, nil
	}

	// Check 6: progress threshold. Positive delta means loss.
	delta := baselineWeight - latestWeight

	percent := math.Inf(-1) // invalid baseline never satisfies the percent threshold
	if baselineWeight > 0 {
		percent = delta / baselineWeight * 100
	}

	if delta < s.cfg.MinWeightLossKg && percent < s.cfg.MinWeightLossPercent {
		kgNeeded := s.cfg.MinWeightLossKg - delta
		if kgNeeded < 0 {
			kgNeeded = 0
		}

		return &types.EligibilityVerdict{
			Reason: types.ReasonNeedMoreLoss,
			Params: &types.ReasonParams{KgNeeded: utils.Round2(kgNeeded)},
		}, nil
	}

	verdict := &types.EligibilityVerdict{
		Eligible:        true,
		ProgressDeltaKg: utils.Round2(delta),
	}
	if lastSpin != nil {
		verdict.LastSpinAt = &lastSpin.SpunAt
	}

	s.logger.Debug("User eligible for spin",
		zap.Int64("userID", userID),
		zap.Float64("progressDeltaKg", verdict.ProgressDeltaKg))

	return verdict, nil
}

func insufficientVerdict(minDays int) *types.EligibilityVerdict {
	return &types.EligibilityVerdict{
		Reason: types.ReasonInsufficientMeasurements,
		Params: &types.ReasonParams{Days: minDays},
	}
}

// distinctDays counts distinct calendar days with at least one point within
// the trailing window.
func distinctDays(points []*types.MeasurementPoint, now time.Time, windowDays int) int {
	cutoff := now.AddDate(0, 0, -windowDays)
	days := make(map[string]struct{})

	for _, p := range points {
		if p.OccurredAt.Before(cutoff) || p.OccurredAt.After(now) {
			continue
		}

		days[p.OccurredAt.Format("2006-01-02")] = struct{}{}
	}

	return len(days)
}

// resolveBaseline picks the reference measurement progress is judged against:
// the latest point at or before the last spin when one exists, otherwise the
// earliest point in the loaded window. Points are ordered newest first.
func resolveBaseline(points []*types.MeasurementPoint, lastSpin *types.SpinRecord) *types.MeasurementPoint {
	if lastSpin != nil {
		for _, p := range points {
			if !p.OccurredAt.After(lastSpin.SpunAt) {
				return p
			}
		}
	}

	if len(points) == 0 {
		return nil
	}

	return points[len(points)-1]
}

// latestWeighted finds the most recent point with a usable weight.
func latestWeighted(points []*types.MeasurementPoint) *types.MeasurementPoint {
	for _, p := range points {
		if _, ok := p.Weight(); ok {
			return p
		}
	}

	return nil
}

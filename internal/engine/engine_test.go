package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sweatloop/treatwheel/internal/database/service"
	"github.com/sweatloop/treatwheel/internal/database/types"
	"github.com/sweatloop/treatwheel/internal/engine"
	"github.com/sweatloop/treatwheel/internal/ratelimit"
	"github.com/sweatloop/treatwheel/internal/setup/config"
	"github.com/sweatloop/treatwheel/internal/wheel"
	"go.uber.org/zap"
)

type fakeMeasurements struct {
	points []*types.MeasurementPoint
	err    error
}

func (f *fakeMeasurements) ListRecent(
	_ context.Context, _ int64, _, _ int,
) ([]*types.MeasurementPoint, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.points, nil
}

type fakeSpins struct {
	latest  *types.SpinRecord
	count   int
	created []*types.SpinRecord
}

func (f *fakeSpins) Latest(_ context.Context, _ int64) (*types.SpinRecord, error) {
	return f.latest, nil
}

func (f *fakeSpins) CountSince(_ context.Context, _ int64, _ time.Time) (int, error) {
	return f.count, nil
}

func (f *fakeSpins) OldestSince(_ context.Context, _ int64, _ time.Time) (*types.SpinRecord, error) {
	return f.latest, nil
}

func (f *fakeSpins) Create(_ context.Context, spin *types.SpinRecord) error {
	spin.ID = int64(len(f.created) + 1)
	f.created = append(f.created, spin)

	return nil
}

type fakeRewards struct {
	items []*types.RewardItem
	err   error
}

func (f *fakeRewards) ListForUser(_ context.Context, _ int64) ([]*types.RewardItem, error) {
	return f.items, f.err
}

type fakeNotifier struct {
	events []types.Event
	err    error
}

func (f *fakeNotifier) Queue(_ context.Context, events ...types.Event) (int, error) {
	if f.err != nil {
		return 0, f.err
	}

	f.events = append(f.events, events...)

	return len(events), nil
}

func testConfig() *config.Config {
	return &config.Config{
		Wheel: config.Wheel{
			CooldownDays:         4,
			WeeklyLimit:          2,
			EMAWindowDays:        7,
			MinMeasurementDays:   4,
			MinWeightLossKg:      0.8,
			MinWeightLossPercent: 1.0,
			BonusMinuteValues:    []int{0, 10, 20, 30},
			BonusMinuteWeights:   []int{50, 30, 15, 5},
		},
		RateLimit: config.RateLimit{SpinsPerDay: 3},
	}
}

func weight(kg float64) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.NewFromFloat(kg), Valid: true}
}

// losingStreak builds a week of daily points trending down enough to pass
// every eligibility check.
func losingStreak(now time.Time) []*types.MeasurementPoint {
	points := make([]*types.MeasurementPoint, 0, 7)
	for i := range 7 {
		points = append(points, &types.MeasurementPoint{
			UserID:     1,
			WeightKg:   weight(82.0 - 0.3*float64(6-i)),
			OccurredAt: now.Add(-time.Duration(i) * 24 * time.Hour),
		})
	}

	return points
}

func setupEngine(
	t *testing.T, measurements *fakeMeasurements, spins *fakeSpins,
	rewards *fakeRewards, notifier *fakeNotifier,
) *engine.Engine {
	t.Helper()

	cfg := testConfig()
	logger := zap.NewNop()
	eligibility := service.NewEligibility(measurements, spins, &cfg.Wheel, logger)
	limiter := ratelimit.New(nil, logger)

	return engine.New(eligibility, notifier, rewards, spins, limiter, cfg, logger)
}

func TestDrawSpinSuccess(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	spins := &fakeSpins{}
	notifier := &fakeNotifier{}
	rewards := &fakeRewards{items: []*types.RewardItem{
		{ID: 10, UserID: 1, Name: "Pizza night", Description: "One slice", Enabled: true},
		{ID: 11, UserID: 1, Name: "Ice cream", Enabled: true},
	}}
	eng := setupEngine(t, &fakeMeasurements{points: losingStreak(now)}, spins, rewards, notifier)

	spin, verdict, err := eng.DrawSpin(context.Background(), 1, "client-seed", now)
	require.NoError(t, err)
	require.Nil(t, verdict)
	require.NotNil(t, spin)

	assert.Len(t, spins.created, 1)
	assert.Equal(t, int64(1), spin.UserID)
	assert.Contains(t, []int64{10, 11}, spin.RewardItemID)
	assert.NotEmpty(t, spin.RewardName)
	assert.NotEmpty(t, spin.Seed)
	assert.Contains(t, types.AllPortions, string(spin.Portion))
	assert.Contains(t, []int{0, 10, 20, 30}, spin.BonusMinutes)
	assert.Equal(t, now, spin.SpunAt)
}

func TestDrawSpinSnapshotsReward(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	spins := &fakeSpins{}
	rewards := &fakeRewards{items: []*types.RewardItem{
		{ID: 10, UserID: 1, Name: "Pizza night", Description: "One slice", Enabled: true},
	}}
	eng := setupEngine(t, &fakeMeasurements{points: losingStreak(now)}, spins, rewards, &fakeNotifier{})

	spin, _, err := eng.DrawSpin(context.Background(), 1, "s", now)
	require.NoError(t, err)
	assert.Equal(t, "Pizza night", spin.RewardName)
	assert.Equal(t, "One slice", spin.RewardDescription)
}

func TestDrawSpinIneligible(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	spins := &fakeSpins{}
	eng := setupEngine(t, &fakeMeasurements{}, spins, &fakeRewards{}, &fakeNotifier{})

	spin, verdict, err := eng.DrawSpin(context.Background(), 1, "s", now)
	require.NoError(t, err)
	assert.Nil(t, spin)
	require.NotNil(t, verdict)
	assert.False(t, verdict.Eligible)
	assert.Equal(t, types.ReasonInsufficientMeasurements, verdict.Reason)
	assert.Empty(t, spins.created)
}

func TestDrawSpinNoRewards(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	eng := setupEngine(t, &fakeMeasurements{points: losingStreak(now)},
		&fakeSpins{}, &fakeRewards{}, &fakeNotifier{})

	_, _, err := eng.DrawSpin(context.Background(), 1, "s", now)
	assert.ErrorIs(t, err, engine.ErrNoRewards)
}

func TestDrawSpinDailyCap(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	spins := &fakeSpins{}
	rewards := &fakeRewards{items: []*types.RewardItem{
		{ID: 10, UserID: 1, Name: "Pizza night", Enabled: true},
	}}
	measurements := &fakeMeasurements{points: losingStreak(now)}
	eng := setupEngine(t, measurements, spins, rewards, &fakeNotifier{})

	ctx := context.Background()

	// Exhaust the daily attempts.
	for range 3 {
		_, _, err := eng.DrawSpin(ctx, 1, "s", now)
		require.NoError(t, err)
	}

	spin, verdict, err := eng.DrawSpin(ctx, 1, "s", now)
	require.NoError(t, err)
	assert.Nil(t, spin)
	require.NotNil(t, verdict)
	assert.Equal(t, types.ReasonLimitReached, verdict.Reason)
	require.NotNil(t, verdict.Params)
	assert.Equal(t, 3, verdict.Params.Limit)
	assert.Equal(t, 1, verdict.Params.EtaDays)
}

func TestDrawSpinDeterministicPerSeed(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	rewards := &fakeRewards{items: []*types.RewardItem{
		{ID: 10, Name: "A", Enabled: true},
		{ID: 11, Name: "B", Enabled: true},
		{ID: 12, Name: "C", Enabled: true},
	}}

	spins := &fakeSpins{}
	eng := setupEngine(t, &fakeMeasurements{points: losingStreak(now)}, spins, rewards, &fakeNotifier{})

	spin, _, err := eng.DrawSpin(context.Background(), 1, "s", now)
	require.NoError(t, err)

	// Replaying the persisted seed reproduces the stored outcome.
	idx := wheel.PickIndex(len(rewards.items), wheel.Seed(spin.Seed), wheel.PurposeTreat)
	assert.Equal(t, spin.RewardItemID, rewards.items[idx].ID)
	portion := types.AllPortions[wheel.PickIndex(
		len(types.AllPortions), wheel.Seed(spin.Seed), wheel.PurposePortion)]
	assert.Equal(t, portion, string(spin.Portion))
}

func TestDrawSpinQueuesBonusNotification(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	rewards := &fakeRewards{items: []*types.RewardItem{{ID: 10, Name: "A", Enabled: true}}}

	// Hunt for a client seed whose bonus draw is non-zero, then check the
	// notifier saw exactly one treat bonus event for it.
	for i := range 64 {
		spins := &fakeSpins{}
		notifier := &fakeNotifier{}
		eng := setupEngine(t, &fakeMeasurements{points: losingStreak(now)}, spins, rewards, notifier)

		spin, _, err := eng.DrawSpin(context.Background(), 1, string(rune('a'+i)), now)
		require.NoError(t, err)

		if spin.BonusMinutes == 0 {
			assert.Empty(t, notifier.events)

			continue
		}

		require.Len(t, notifier.events, 1)
		event, ok := notifier.events[0].(types.TreatBonusEvent)
		require.True(t, ok)
		assert.Equal(t, spin.ID, event.SpinID)
		assert.Equal(t, spin.BonusMinutes, event.BonusMinutes)

		return
	}

	t.Fatal("no seed produced a bonus draw")
}

func TestDrawSpinNotifierFailureDoesNotFailSpin(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	spins := &fakeSpins{}
	notifier := &fakeNotifier{err: errors.New("queue down")}
	rewards := &fakeRewards{items: []*types.RewardItem{{ID: 10, Name: "A", Enabled: true}}}
	eng := setupEngine(t, &fakeMeasurements{points: losingStreak(now)}, spins, rewards, notifier)

	spin, verdict, err := eng.DrawSpin(context.Background(), 1, "s", now)
	require.NoError(t, err)
	assert.Nil(t, verdict)
	require.NotNil(t, spin)
	assert.Len(t, spins.created, 1)
}

func TestDrawSpinPropagatesStoreError(t *testing.T) {
	t.Parallel()

	storeErr := errors.New("connection refused")
	spins := &fakeSpins{}
	rewards := &fakeRewards{items: []*types.RewardItem{{ID: 10, Name: "A", Enabled: true}}}
	eng := setupEngine(t, &fakeMeasurements{err: storeErr}, spins, rewards, &fakeNotifier{})

	spin, verdict, err := eng.DrawSpin(context.Background(), 1, "s", time.Now().UTC())
	require.ErrorIs(t, err, storeErr)
	assert.Nil(t, spin)
	assert.Nil(t, verdict)
	assert.Empty(t, spins.created)
}

func TestEvaluateEligibilityDoesNotBurnQuota(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	rewards := &fakeRewards{items: []*types.RewardItem{{ID: 10, Name: "A", Enabled: true}}}
	eng := setupEngine(t, &fakeMeasurements{points: losingStreak(now)}, &fakeSpins{}, rewards, &fakeNotifier{})

	ctx := context.Background()
	for range 10 {
		verdict, err := eng.EvaluateEligibility(ctx, 1, now)
		require.NoError(t, err)
		assert.True(t, verdict.Eligible)
	}

	spin, verdict, err := eng.DrawSpin(ctx, 1, "s", now)
	require.NoError(t, err)
	assert.Nil(t, verdict)
	assert.NotNil(t, spin)
}

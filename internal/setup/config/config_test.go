package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sweatloop/treatwheel/internal/setup/config"
)

func TestWheelValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		values  []int
		weights []int
		wantErr error
	}{
		{
			name:    "well formed distribution",
			values:  []int{0, 10, 20, 30},
			weights: []int{50, 30, 15, 5},
		},
		{
			name:    "mismatched lengths",
			values:  []int{0, 10},
			weights: []int{50},
			wantErr: config.ErrBonusDistribution,
		},
		{
			name:    "empty distribution",
			values:  []int{},
			weights: []int{},
			wantErr: config.ErrBonusDistributionEmpty,
		},
		{
			name:    "nil distribution",
			wantErr: config.ErrBonusDistributionEmpty,
		},
		{
			name:    "negative weight",
			values:  []int{0, 10},
			weights: []int{5, -1},
			wantErr: config.ErrBonusWeightNegative,
		},
		{
			name:    "all zero weights",
			values:  []int{0, 10},
			weights: []int{0, 0},
			wantErr: config.ErrBonusWeightsZero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			wheel := config.Wheel{
				BonusMinuteValues:  tt.values,
				BonusMinuteWeights: tt.weights,
			}

			err := wheel.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

package utils_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/sweatloop/treatwheel/pkg/utils"
)

func TestRound2(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1.23, utils.Round2(1.2345), 0.0001)
	assert.InDelta(t, 1.24, utils.Round2(1.235), 0.0001)
	assert.InDelta(t, -0.5, utils.Round2(-0.499999), 0.0001)
	assert.InDelta(t, 0.0, utils.Round2(0.0001), 0.0001)
}

func TestCeilDays(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, utils.CeilDays(30*time.Minute))
	assert.Equal(t, 1, utils.CeilDays(24*time.Hour))
	assert.Equal(t, 2, utils.CeilDays(25*time.Hour))
	assert.Equal(t, 1, utils.CeilDays(-time.Hour))
	assert.Equal(t, 7, utils.CeilDays(7*24*time.Hour))
}

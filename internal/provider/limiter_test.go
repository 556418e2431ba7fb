package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestNewLimiter(t *testing.T) {
	t.Parallel()

	unlimited := NewLimiter(0)
	assert.Equal(t, rate.Inf, unlimited.Limit())

	limited := NewLimiter(60)
	assert.InDelta(t, 1.0, float64(limited.Limit()), 1e-9)
	assert.Equal(t, 1, limited.Burst())
	assert.True(t, limited.Allow())
	assert.False(t, limited.Allow())
}

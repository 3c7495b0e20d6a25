package monitor

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThresholdRegistry_Defaults(t *testing.T) {
	r := NewThresholdRegistry(DefaultThreshold, nil)

	assert.Equal(t, 500000.0, r.Get("BTC"))
	assert.Equal(t, 50000.0, r.Get("eth"))
	assert.Equal(t, 10000.0, r.Get(" sol "))
	assert.Equal(t, DefaultThreshold, r.Get("DOGE"))
}

func TestThresholdRegistry_Set(t *testing.T) {
	r := NewThresholdRegistry(DefaultThreshold, map[string]float64{})

	require.NoError(t, r.Set("doge", 1000))
	assert.Equal(t, 1000.0, r.Get("DOGE"))

	require.NoError(t, r.Set("DOGE", 0))
	assert.Equal(t, 0.0, r.Get("doge"))

	require.NoError(t, r.Set("doge", -5))
	assert.Equal(t, -5.0, r.Get("doge"))
}

func TestThresholdRegistry_RejectsNonFinite(t *testing.T) {
	r := NewThresholdRegistry(DefaultThreshold, nil)

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		err := r.Set("ETH", v)
		assert.ErrorIs(t, err, ErrInvalidThreshold)
	}
	assert.Equal(t, 50000.0, r.Get("ETH"))

	assert.ErrorIs(t, r.Set("  ", 10), ErrInvalidThreshold)
}

func TestThresholdRegistry_Concurrent(t *testing.T) {
	r := NewThresholdRegistry(DefaultThreshold, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(v float64) {
			defer wg.Done()
			_ = r.Set("eth", v)
		}(float64(i))
		go func() {
			defer wg.Done()
			_ = r.Get("ETH")
		}()
	}
	wg.Wait()

	v := r.Get("ETH")
	assert.True(t, v >= 0 && v < 20)
}

package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryNormalize(t *testing.T) {
	r := DefaultRegistry()

	t.Run("dispatches by provider", func(t *testing.T) {
		payload := []byte(`{"event":"charge.success","data":{"reference":"ps-1","amount":500000,"currency":"NGN"}}`)
		evt, ok := r.Normalize(ProviderPaystack, payload)
		require.True(t, ok)
		assert.Equal(t, KindInwardFundsReceived, evt.Kind)
	})

	t.Run("unknown provider is not actionable", func(t *testing.T) {
		_, ok := r.Normalize("stripe", []byte(`{}`))
		assert.False(t, ok)
	})

	t.Run("garbage is not actionable for any provider", func(t *testing.T) {
		for _, provider := range Providers() {
			_, ok := r.Normalize(provider, []byte(`not json at all`))
			assert.False(t, ok, provider)
			_, ok = r.Normalize(provider, []byte(`{}`))
			assert.False(t, ok, provider)
		}
	})
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(500050), minorUnits(5000.50))
	assert.Equal(t, int64(10), minorUnits(0.1))
	assert.Equal(t, int64(2999), minorUnits(29.99))
	assert.Equal(t, int64(0), minorUnits(0))
}

package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlutterwaveNormalize(t *testing.T) {
	n := NewFlutterwave()
	assert.Equal(t, ProviderFlutterwave, n.Provider())

	t.Run("transfer completed successful", func(t *testing.T) {
		payload := []byte(`{
			"event": "transfer.completed",
			"data": {
				"reference": "fw-ref-1",
				"amount": 5000.00,
				"fee": 26.88,
				"currency": "NGN",
				"status": "SUCCESSFUL",
				"fullname": "Ngozi Ade",
				"account_number": "0690000040"
			}
		}`)
		evt, ok := n.Normalize(payload)
		require.True(t, ok)
		assert.Equal(t, KindOutwardTransferSucceeded, evt.Kind)
		assert.Equal(t, "fw-ref-1", evt.ExternalReference)
		assert.Equal(t, int64(500000), evt.Amount)
		assert.Equal(t, int64(2688), evt.Fee)
		assert.Equal(t, "Ngozi Ade", evt.CounterpartyName)
	})

	t.Run("transfer completed failed", func(t *testing.T) {
		payload := []byte(`{
			"event": "transfer.completed",
			"data": {"reference": "fw-ref-2", "amount": 5000, "status": "FAILED"}
		}`)
		evt, ok := n.Normalize(payload)
		require.True(t, ok)
		assert.Equal(t, KindOutwardTransferFailed, evt.Kind)
	})

	t.Run("charge completed uses tx_ref fallback", func(t *testing.T) {
		payload := []byte(`{
			"event": "charge.completed",
			"data": {
				"tx_ref": "fw-ref-3",
				"amount": 100.50,
				"app_fee": 1.40,
				"currency": "NGN",
				"status": "successful",
				"customer": {"name": "Bola Tinubu"}
			}
		}`)
		evt, ok := n.Normalize(payload)
		require.True(t, ok)
		assert.Equal(t, KindInwardFundsReceived, evt.Kind)
		assert.Equal(t, "fw-ref-3", evt.ExternalReference)
		assert.Equal(t, int64(10050), evt.Amount)
		assert.Equal(t, int64(140), evt.Fee)
	})

	t.Run("not actionable", func(t *testing.T) {
		cases := map[string][]byte{
			"failed charge":     []byte(`{"event":"charge.completed","data":{"tx_ref":"x","amount":10,"status":"failed"}}`),
			"pending transfer":  []byte(`{"event":"transfer.completed","data":{"reference":"x","amount":10,"status":"PENDING"}}`),
			"missing reference": []byte(`{"event":"transfer.completed","data":{"amount":10,"status":"SUCCESSFUL"}}`),
			"zero amount":       []byte(`{"event":"charge.completed","data":{"tx_ref":"x","status":"successful"}}`),
			"unknown event":     []byte(`{"event":"subscription.cancelled","data":{"reference":"x","amount":10}}`),
		}
		for name, payload := range cases {
			_, ok := n.Normalize(payload)
			assert.False(t, ok, name)
		}
	})
}

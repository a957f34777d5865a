package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVTPassNormalize(t *testing.T) {
	n := NewVTPass()
	assert.Equal(t, ProviderVTPass, n.Provider())

	t.Run("delivered", func(t *testing.T) {
		payload := []byte(`{
			"type": "transaction-update",
			"data": {
				"requestId": "vt-req-1",
				"content": {
					"transactions": {
						"status": "delivered",
						"product_name": "MTN Airtime VTU",
						"unique_element": "08030000000",
						"amount": 500.00,
						"commission": 15.00
					}
				}
			}
		}`)
		evt, ok := n.Normalize(payload)
		require.True(t, ok)
		assert.Equal(t, KindSubscriptionSucceeded, evt.Kind)
		assert.Equal(t, "vt-req-1", evt.ExternalReference)
		assert.Equal(t, int64(50000), evt.Amount)
		assert.Equal(t, int64(1500), evt.Fee)
		assert.Equal(t, "MTN Airtime VTU", evt.CounterpartyName)
	})

	t.Run("failure statuses", func(t *testing.T) {
		for _, status := range []string{"failed", "reversed", "unsuccessful"} {
			payload := []byte(`{
				"type": "transaction-update",
				"data": {"requestId": "vt-req-2", "content": {"transactions": {"status": "` + status + `", "amount": 500}}}
			}`)
			evt, ok := n.Normalize(payload)
			require.True(t, ok, status)
			assert.Equal(t, KindSubscriptionFailed, evt.Kind, status)
		}
	})

	t.Run("status is case and whitespace insensitive", func(t *testing.T) {
		payload := []byte(`{
			"type": "transaction-update",
			"data": {"requestId": "vt-req-3", "content": {"transactions": {"status": " Delivered ", "amount": 500}}}
		}`)
		evt, ok := n.Normalize(payload)
		require.True(t, ok)
		assert.Equal(t, KindSubscriptionSucceeded, evt.Kind)
	})

	t.Run("not actionable", func(t *testing.T) {
		cases := map[string][]byte{
			"wrong type":        []byte(`{"type":"variations-update","data":{"requestId":"x"}}`),
			"missing requestId": []byte(`{"type":"transaction-update","data":{"content":{"transactions":{"status":"delivered"}}}}`),
			"pending status":    []byte(`{"type":"transaction-update","data":{"requestId":"x","content":{"transactions":{"status":"pending"}}}}`),
		}
		for name, payload := range cases {
			_, ok := n.Normalize(payload)
			assert.False(t, ok, name)
		}
	})
}

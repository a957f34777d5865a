package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaystackNormalize(t *testing.T) {
	n := NewPaystack()
	assert.Equal(t, ProviderPaystack, n.Provider())

	t.Run("charge success", func(t *testing.T) {
		payload := []byte(`{
			"event": "charge.success",
			"data": {
				"reference": "ps-ref-1",
				"amount": 500000,
				"fees": 5000,
				"currency": "NGN",
				"account_details": {"account_number": "0123456789", "account_name": "Ada Obi"}
			}
		}`)
		evt, ok := n.Normalize(payload)
		require.True(t, ok)
		assert.Equal(t, KindInwardFundsReceived, evt.Kind)
		assert.Equal(t, "ps-ref-1", evt.ExternalReference)
		assert.Equal(t, int64(500000), evt.Amount)
		assert.Equal(t, int64(5000), evt.Fee)
		assert.Equal(t, "0123456789", evt.AccountNumber)
		assert.Equal(t, "Ada Obi", evt.CounterpartyName)
	})

	t.Run("transfer success", func(t *testing.T) {
		payload := []byte(`{
			"event": "transfer.success",
			"data": {
				"reference": "ps-ref-2",
				"amount": 200000,
				"currency": "NGN",
				"recipient": {"name": "Chidi Eze", "details": {"account_number": "9876543210"}}
			}
		}`)
		evt, ok := n.Normalize(payload)
		require.True(t, ok)
		assert.Equal(t, KindOutwardTransferSucceeded, evt.Kind)
		assert.Equal(t, "ps-ref-2", evt.ExternalReference)
		assert.Equal(t, "9876543210", evt.AccountNumber)
	})

	t.Run("transfer failed and reversed", func(t *testing.T) {
		for _, event := range []string{"transfer.failed", "transfer.reversed"} {
			payload := []byte(`{"event":"` + event + `","data":{"reference":"ps-ref-3","amount":200000}}`)
			evt, ok := n.Normalize(payload)
			require.True(t, ok, event)
			assert.Equal(t, KindOutwardTransferFailed, evt.Kind)
		}
	})

	t.Run("dedicated account assigned", func(t *testing.T) {
		payload := []byte(`{
			"event": "dedicatedaccount.assign.success",
			"data": {"account_details": {"account_number": "5550001111"}}
		}`)
		evt, ok := n.Normalize(payload)
		require.True(t, ok)
		assert.Equal(t, KindBankAccountLinkUpdated, evt.Kind)
		assert.Equal(t, "5550001111", evt.AccountNumber)
	})

	t.Run("not actionable", func(t *testing.T) {
		cases := map[string][]byte{
			"unknown event":       []byte(`{"event":"subscription.create","data":{"reference":"x","amount":100}}`),
			"missing reference":   []byte(`{"event":"charge.success","data":{"amount":100}}`),
			"zero amount charge":  []byte(`{"event":"charge.success","data":{"reference":"x"}}`),
			"assign without acct": []byte(`{"event":"dedicatedaccount.assign.success","data":{}}`),
			"invalid json":        []byte(`{"event":`),
		}
		for name, payload := range cases {
			_, ok := n.Normalize(payload)
			assert.False(t, ok, name)
		}
	})
}

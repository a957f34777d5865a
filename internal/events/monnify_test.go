package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonnifyNormalize(t *testing.T) {
	n := NewMonnify()
	assert.Equal(t, ProviderMonnify, n.Provider())

	t.Run("successful transaction", func(t *testing.T) {
		payload := []byte(`{
			"eventType": "SUCCESSFUL_TRANSACTION",
			"eventData": {
				"transactionReference": "mn-ref-1",
				"amountPaid": 5000.00,
				"settlementAmount": 4990.00,
				"currency": "NGN",
				"destinationAccountInformation": {
					"accountNumber": "3000123456",
					"accountName": "Emeka Ojo"
				}
			}
		}`)
		evt, ok := n.Normalize(payload)
		require.True(t, ok)
		assert.Equal(t, KindInwardFundsReceived, evt.Kind)
		assert.Equal(t, "mn-ref-1", evt.ExternalReference)
		assert.Equal(t, int64(500000), evt.Amount)
		assert.Equal(t, int64(1000), evt.Fee, "fee is the paid/settlement spread")
		assert.Equal(t, "3000123456", evt.AccountNumber)
	})

	t.Run("settlement above paid amount clamps fee to zero", func(t *testing.T) {
		payload := []byte(`{
			"eventType": "SUCCESSFUL_TRANSACTION",
			"eventData": {"transactionReference": "mn-ref-4", "amountPaid": 1000, "settlementAmount": 1010}
		}`)
		evt, ok := n.Normalize(payload)
		require.True(t, ok)
		assert.Equal(t, int64(100000), evt.Amount)
		assert.Equal(t, int64(0), evt.Fee, "a negative spread must never inflate the credit")
	})

	t.Run("missing settlement amount yields zero fee", func(t *testing.T) {
		payload := []byte(`{
			"eventType": "SUCCESSFUL_TRANSACTION",
			"eventData": {"transactionReference": "mn-ref-2", "amountPaid": 1000}
		}`)
		evt, ok := n.Normalize(payload)
		require.True(t, ok)
		assert.Equal(t, int64(0), evt.Fee)
	})

	t.Run("disbursements", func(t *testing.T) {
		tests := []struct {
			eventType string
			want      Kind
		}{
			{"SUCCESSFUL_DISBURSEMENT", KindOutwardTransferSucceeded},
			{"FAILED_DISBURSEMENT", KindOutwardTransferFailed},
			{"REVERSED_DISBURSEMENT", KindOutwardTransferFailed},
		}
		for _, tt := range tests {
			payload := []byte(`{
				"eventType": "` + tt.eventType + `",
				"eventData": {
					"reference": "mn-ref-3",
					"amount": 2500.00,
					"fee": 35.00,
					"currency": "NGN",
					"destinationAccountNumber": "0011223344",
					"destinationAccountName": "Tunde Bello"
				}
			}`)
			evt, ok := n.Normalize(payload)
			require.True(t, ok, tt.eventType)
			assert.Equal(t, tt.want, evt.Kind, tt.eventType)
			assert.Equal(t, int64(250000), evt.Amount)
			assert.Equal(t, int64(3500), evt.Fee)
		}
	})

	t.Run("not actionable", func(t *testing.T) {
		cases := map[string][]byte{
			"unknown event type": []byte(`{"eventType":"SETTLEMENT_COMPLETED","eventData":{"reference":"x","amount":10}}`),
			"missing reference":  []byte(`{"eventType":"SUCCESSFUL_TRANSACTION","eventData":{"amountPaid":10}}`),
			"zero amount":        []byte(`{"eventType":"SUCCESSFUL_DISBURSEMENT","eventData":{"reference":"x"}}`),
		}
		for name, payload := range cases {
			_, ok := n.Normalize(payload)
			assert.False(t, ok, name)
		}
	})
}

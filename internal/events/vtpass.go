package events

import (
	"encoding/json"
	"strings"
)

// VTPass delivers airtime/data/TV/utility outcomes. Only transaction-update
// callbacks are actionable; everything else is dropped.
type vtpassNormalizer struct{}

// NewVTPass creates the vtpass normalizer.
func NewVTPass() Normalizer { return vtpassNormalizer{} }

func (vtpassNormalizer) Provider() string { return ProviderVTPass }

type vtpassPayload struct {
	Type string `json:"type"`
	Data struct {
		RequestID string `json:"requestId"`
		Content   struct {
			Transactions struct {
				Status      string  `json:"status"`
				ProductName string  `json:"product_name"`
				UniqueElem  string  `json:"unique_element"`
				Amount      float64 `json:"amount"`
				Commission  float64 `json:"commission"`
			} `json:"transactions"`
		} `json:"content"`
	} `json:"data"`
}

func (vtpassNormalizer) Normalize(raw []byte) (*CanonicalEvent, bool) {
	var p vtpassPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false
	}
	if p.Type != "transaction-update" || p.Data.RequestID == "" {
		return nil, false
	}

	t := p.Data.Content.Transactions
	evt := &CanonicalEvent{
		ExternalReference: p.Data.RequestID,
		AccountNumber:     t.UniqueElem,
		Amount:            minorUnits(t.Amount),
		Fee:               minorUnits(t.Commission),
		Currency:          "NGN",
		CounterpartyName:  t.ProductName,
		Raw:               json.RawMessage(raw),
	}

	switch strings.ToLower(strings.TrimSpace(t.Status)) {
	case "delivered", "successful":
		evt.Kind = KindSubscriptionSucceeded
	case "failed", "reversed", "unsuccessful":
		evt.Kind = KindSubscriptionFailed
	default:
		return nil, false
	}
	return evt, true
}

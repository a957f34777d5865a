package events

import (
	"encoding/json"
	"strings"
)

// Flutterwave reports amounts as major-unit floats; they are converted to
// minor units here.
type flutterwaveNormalizer struct{}

// NewFlutterwave creates the flutterwave normalizer.
func NewFlutterwave() Normalizer { return flutterwaveNormalizer{} }

func (flutterwaveNormalizer) Provider() string { return ProviderFlutterwave }

type flutterwavePayload struct {
	Event string `json:"event"`
	Data  struct {
		Reference     string  `json:"reference"`
		TxRef         string  `json:"tx_ref"`
		Amount        float64 `json:"amount"`
		Fee           float64 `json:"fee"`
		AppFee        float64 `json:"app_fee"`
		Currency      string  `json:"currency"`
		Status        string  `json:"status"`
		FullName      string  `json:"fullname"`
		AccountNumber string  `json:"account_number"`
		Customer      struct {
			Name string `json:"name"`
		} `json:"customer"`
	} `json:"data"`
}

func (flutterwaveNormalizer) Normalize(raw []byte) (*CanonicalEvent, bool) {
	var p flutterwavePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false
	}

	ref := p.Data.Reference
	if ref == "" {
		ref = p.Data.TxRef
	}
	if ref == "" || p.Data.Amount <= 0 {
		return nil, false
	}

	evt := &CanonicalEvent{
		ExternalReference: ref,
		AccountNumber:     p.Data.AccountNumber,
		Amount:            minorUnits(p.Data.Amount),
		Currency:          p.Data.Currency,
		Raw:               json.RawMessage(raw),
	}

	status := strings.ToUpper(strings.TrimSpace(p.Data.Status))
	switch p.Event {
	case "transfer.completed":
		evt.Fee = minorUnits(p.Data.Fee)
		evt.CounterpartyName = p.Data.FullName
		switch status {
		case "SUCCESSFUL", "SUCCESS":
			evt.Kind = KindOutwardTransferSucceeded
		case "FAILED", "FAILURE", "REVERSED":
			evt.Kind = KindOutwardTransferFailed
		default:
			return nil, false
		}
	case "charge.completed":
		if status != "SUCCESSFUL" && status != "SUCCESS" {
			return nil, false
		}
		evt.Kind = KindInwardFundsReceived
		evt.Fee = minorUnits(p.Data.AppFee)
		evt.CounterpartyName = p.Data.Customer.Name
	default:
		return nil, false
	}
	return evt, true
}

package events

import "encoding/json"

// Paystack reports amounts in kobo already; no unit conversion is needed.
type paystackNormalizer struct{}

// NewPaystack creates the paystack normalizer.
func NewPaystack() Normalizer { return paystackNormalizer{} }

func (paystackNormalizer) Provider() string { return ProviderPaystack }

type paystackPayload struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
		Fees      int64  `json:"fees"`
		Currency  string `json:"currency"`
		Customer  struct {
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
		} `json:"customer"`
		AccountDetails struct {
			AccountNumber string `json:"account_number"`
			AccountName   string `json:"account_name"`
		} `json:"account_details"`
		Recipient struct {
			Name    string `json:"name"`
			Details struct {
				AccountNumber string `json:"account_number"`
			} `json:"details"`
		} `json:"recipient"`
	} `json:"data"`
}

func (paystackNormalizer) Normalize(raw []byte) (*CanonicalEvent, bool) {
	var p paystackPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false
	}
	evt := &CanonicalEvent{
		ExternalReference: p.Data.Reference,
		Amount:            p.Data.Amount,
		Fee:               p.Data.Fees,
		Currency:          p.Data.Currency,
		Raw:               json.RawMessage(raw),
	}

	switch p.Event {
	case "charge.success":
		if p.Data.Reference == "" || p.Data.Amount <= 0 {
			return nil, false
		}
		evt.Kind = KindInwardFundsReceived
		evt.AccountNumber = p.Data.AccountDetails.AccountNumber
		evt.CounterpartyName = p.Data.AccountDetails.AccountName
	case "transfer.success":
		if p.Data.Reference == "" {
			return nil, false
		}
		evt.Kind = KindOutwardTransferSucceeded
		evt.AccountNumber = p.Data.Recipient.Details.AccountNumber
		evt.CounterpartyName = p.Data.Recipient.Name
	case "transfer.failed", "transfer.reversed":
		if p.Data.Reference == "" {
			return nil, false
		}
		evt.Kind = KindOutwardTransferFailed
		evt.AccountNumber = p.Data.Recipient.Details.AccountNumber
		evt.CounterpartyName = p.Data.Recipient.Name
	case "dedicatedaccount.assign.success":
		if p.Data.AccountDetails.AccountNumber == "" {
			return nil, false
		}
		evt.Kind = KindBankAccountLinkUpdated
		evt.AccountNumber = p.Data.AccountDetails.AccountNumber
	default:
		return nil, false
	}
	return evt, true
}

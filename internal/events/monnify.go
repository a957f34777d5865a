package events

import "encoding/json"

// Monnify reports amounts as major-unit floats. The inward fee is the spread
// between the amount paid and the settlement amount.
type monnifyNormalizer struct{}

// NewMonnify creates the monnify normalizer.
func NewMonnify() Normalizer { return monnifyNormalizer{} }

func (monnifyNormalizer) Provider() string { return ProviderMonnify }

type monnifyPayload struct {
	EventType string `json:"eventType"`
	EventData struct {
		TransactionReference string  `json:"transactionReference"`
		Reference            string  `json:"reference"`
		AmountPaid           float64 `json:"amountPaid"`
		SettlementAmount     float64 `json:"settlementAmount"`
		Amount               float64 `json:"amount"`
		Fee                  float64 `json:"fee"`
		Currency             string  `json:"currency"`
		DestinationAccountInformation struct {
			AccountNumber string `json:"accountNumber"`
			AccountName   string `json:"accountName"`
		} `json:"destinationAccountInformation"`
		DestinationAccountNumber string `json:"destinationAccountNumber"`
		DestinationAccountName   string `json:"destinationAccountName"`
	} `json:"eventData"`
}

func (monnifyNormalizer) Normalize(raw []byte) (*CanonicalEvent, bool) {
	var p monnifyPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false
	}
	d := p.EventData

	switch p.EventType {
	case "SUCCESSFUL_TRANSACTION":
		if d.TransactionReference == "" || d.AmountPaid <= 0 {
			return nil, false
		}
		// Clamped at zero: a settlement above the paid amount must never turn
		// into a negative fee that inflates the credit.
		fee := minorUnits(d.AmountPaid) - minorUnits(d.SettlementAmount)
		if d.SettlementAmount <= 0 || fee < 0 {
			fee = 0
		}
		return &CanonicalEvent{
			Kind:              KindInwardFundsReceived,
			ExternalReference: d.TransactionReference,
			AccountNumber:     d.DestinationAccountInformation.AccountNumber,
			Amount:            minorUnits(d.AmountPaid),
			Fee:               fee,
			Currency:          d.Currency,
			CounterpartyName:  d.DestinationAccountInformation.AccountName,
			Raw:               json.RawMessage(raw),
		}, true
	case "SUCCESSFUL_DISBURSEMENT", "FAILED_DISBURSEMENT", "REVERSED_DISBURSEMENT":
		if d.Reference == "" || d.Amount <= 0 {
			return nil, false
		}
		kind := KindOutwardTransferSucceeded
		if p.EventType != "SUCCESSFUL_DISBURSEMENT" {
			kind = KindOutwardTransferFailed
		}
		return &CanonicalEvent{
			Kind:              kind,
			ExternalReference: d.Reference,
			AccountNumber:     d.DestinationAccountNumber,
			Amount:            minorUnits(d.Amount),
			Fee:               minorUnits(d.Fee),
			Currency:          d.Currency,
			CounterpartyName:  d.DestinationAccountName,
			Raw:               json.RawMessage(raw),
		}, true
	}
	return nil, false
}

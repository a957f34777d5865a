// Package events maps each payment provider's raw webhook payload into a
// small closed set of canonical domain events the reconciliation engine
// understands. Normalizers fail closed: a malformed or unrecognized payload is
// "not actionable", never an error, so permanently bad input cannot feed the
// retry loop.
package events

import "encoding/json"

// Supported payment providers. One webhook endpoint and one normalizer exist
// per provider.
const (
	ProviderPaystack    = "paystack"
	ProviderFlutterwave = "flutterwave"
	ProviderMonnify     = "monnify"
	ProviderVTPass      = "vtpass"
)

// Providers lists every supported provider tag.
func Providers() []string {
	return []string{ProviderPaystack, ProviderFlutterwave, ProviderMonnify, ProviderVTPass}
}

// Kind is the canonical meaning of a provider webhook.
type Kind string

const (
	KindInwardFundsReceived      Kind = "inward_funds_received"
	KindOutwardTransferSucceeded Kind = "outward_transfer_succeeded"
	KindOutwardTransferFailed    Kind = "outward_transfer_failed"
	KindSubscriptionSucceeded    Kind = "subscription_succeeded"
	KindSubscriptionFailed       Kind = "subscription_failed"
	KindBankAccountLinkUpdated   Kind = "bank_account_link_updated"
)

// CanonicalEvent is the provider-agnostic representation of a webhook. It is
// transient: built by a normalizer, consumed by the reconciliation engine,
// never persisted. Amount and Fee are minor units.
type CanonicalEvent struct {
	Kind              Kind
	ExternalReference string
	AccountNumber     string
	Amount            int64
	Fee               int64
	Currency          string
	CounterpartyName  string
	Raw               json.RawMessage
}

// Normalizer translates one provider's webhook vocabulary into canonical
// events. Normalize returns (nil, false) for anything it does not recognize.
type Normalizer interface {
	Provider() string
	Normalize(raw []byte) (*CanonicalEvent, bool)
}

// Registry selects the normalizer for a provider tag.
type Registry struct {
	byProvider map[string]Normalizer
}

// NewRegistry builds a registry from the given normalizers.
func NewRegistry(normalizers ...Normalizer) *Registry {
	r := &Registry{byProvider: make(map[string]Normalizer, len(normalizers))}
	for _, n := range normalizers {
		r.byProvider[n.Provider()] = n
	}
	return r
}

// DefaultRegistry wires every supported provider.
func DefaultRegistry() *Registry {
	return NewRegistry(NewPaystack(), NewFlutterwave(), NewMonnify(), NewVTPass())
}

// Normalize dispatches to the provider's normalizer. Unknown providers are
// not actionable.
func (r *Registry) Normalize(provider string, raw []byte) (*CanonicalEvent, bool) {
	n, ok := r.byProvider[provider]
	if !ok {
		return nil, false
	}
	return n.Normalize(raw)
}

// minorUnits converts a provider-reported major-unit float (e.g. naira) into
// minor units, rounding to the nearest unit to absorb float noise.
func minorUnits(major float64) int64 {
	if major < 0 {
		return int64(major*100 - 0.5)
	}
	return int64(major*100 + 0.5)
}

// Package fees computes platform fees for business transactions.
//
// Policy: a provider-reported fee always wins when the event carries one; the
// schedule here only fills the gap. Rates are percentages in basis points
// with an absolute cap in minor units, both defaulting to zero for types
// without an entry.
package fees

// Rate is a percentage in basis points plus an optional cap in minor units.
type Rate struct {
	Bps int64
	Cap int64
}

// Schedule maps transaction types to their fee rates.
type Schedule struct {
	rates map[string]Rate
}

// NewSchedule builds a schedule. A nil map yields zero fees everywhere.
func NewSchedule(rates map[string]Rate) *Schedule {
	if rates == nil {
		rates = make(map[string]Rate)
	}
	return &Schedule{rates: rates}
}

// For returns the fee in minor units for amount of the given transaction type.
func (s *Schedule) For(txType string, amount int64) int64 {
	r, ok := s.rates[txType]
	if !ok || amount <= 0 {
		return 0
	}
	fee := amount * r.Bps / 10000
	if r.Cap > 0 && fee > r.Cap {
		fee = r.Cap
	}
	return fee
}

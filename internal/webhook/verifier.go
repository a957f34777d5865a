package webhook

import (
	"crypto/hmac"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"kolo/internal/config"
	"kolo/internal/events"
)

// HeaderFunc returns the value of a request header, empty when absent.
type HeaderFunc func(name string) string

// Verifier authenticates an inbound provider callback before any business
// effect happens.
type Verifier interface {
	Verify(method string, header HeaderFunc, body []byte) error
}

// HMACVerifier checks an HMAC-SHA512 hex digest of the raw body against a
// header-supplied value. Comparison is constant-time.
type HMACVerifier struct {
	Header string
	Secret string
}

func (v HMACVerifier) Verify(method string, header HeaderFunc, body []byte) error {
	if method != http.MethodPost {
		return fmt.Errorf("%w: method %s not allowed", ErrAuthentication, method)
	}
	if v.Secret == "" {
		return fmt.Errorf("%w: secret not configured", ErrAuthentication)
	}
	got := strings.TrimSpace(header(v.Header))
	if got == "" {
		return fmt.Errorf("%w: missing %s header", ErrAuthentication, v.Header)
	}

	mac := hmac.New(sha512.New, []byte(v.Secret))
	mac.Write(body)
	want := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(want), []byte(strings.ToLower(got))) {
		return fmt.Errorf("%w: signature mismatch", ErrAuthentication)
	}
	return nil
}

// SharedSecretVerifier checks a header against a configured secret. The
// secret is environment-specific (sandbox vs live), resolved at construction.
type SharedSecretVerifier struct {
	Header string
	Secret string
}

func (v SharedSecretVerifier) Verify(method string, header HeaderFunc, body []byte) error {
	if method != http.MethodPost {
		return fmt.Errorf("%w: method %s not allowed", ErrAuthentication, method)
	}
	if v.Secret == "" {
		return fmt.Errorf("%w: secret not configured", ErrAuthentication)
	}
	got := strings.TrimSpace(header(v.Header))
	if got == "" {
		return fmt.Errorf("%w: missing %s header", ErrAuthentication, v.Header)
	}
	if subtle.ConstantTimeCompare([]byte(got), []byte(v.Secret)) != 1 {
		return fmt.Errorf("%w: secret mismatch", ErrAuthentication)
	}
	return nil
}

// DefaultVerifiers builds the verifier set for every provider from configured
// secrets. All providers are verified; there is no bypass.
func DefaultVerifiers() map[string]Verifier {
	return map[string]Verifier{
		events.ProviderPaystack: HMACVerifier{
			Header: "x-paystack-signature",
			Secret: config.WebhookSecret(events.ProviderPaystack),
		},
		events.ProviderMonnify: HMACVerifier{
			Header: "monnify-signature",
			Secret: config.WebhookSecret(events.ProviderMonnify),
		},
		events.ProviderFlutterwave: SharedSecretVerifier{
			Header: "verif-hash",
			Secret: config.WebhookSecret(events.ProviderFlutterwave),
		},
		events.ProviderVTPass: SharedSecretVerifier{
			Header: "x-vtpass-hash",
			Secret: config.WebhookSecret(events.ProviderVTPass),
		},
	}
}

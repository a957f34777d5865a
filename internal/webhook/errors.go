package webhook

import "errors"

// ErrAuthentication indicates the delivery failed the provider's method or
// signature check. It never mutates state: the delivery is audited and
// dropped.
var ErrAuthentication = errors.New("webhook authentication failed")

// internal/submission/policy.go
package submission

import (
	"fmt"
	"strings"

	"github.com/xkilldash9x/feedback-cli/api/schemas"
)

// UnconfirmedPolicy decides how a submit without a clear confirmation counts.
type UnconfirmedPolicy string

const (
	// PolicyOptimistic counts Timeout and Unknown as submitted.
	PolicyOptimistic UnconfirmedPolicy = "optimistic"
	// PolicyStrict counts Timeout and Unknown as failed.
	PolicyStrict UnconfirmedPolicy = "strict"
)

// ParseUnconfirmedPolicy accepts a policy name; empty means optimistic.
func ParseUnconfirmedPolicy(s string) (UnconfirmedPolicy, error) {
	switch p := UnconfirmedPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyOptimistic, nil
	case PolicyOptimistic, PolicyStrict:
		return p, nil
	default:
		return "", fmt.Errorf("unknown unconfirmed policy %q", s)
	}
}

// Unconfirmed reports whether sig leaves the outcome to the policy.
func Unconfirmed(sig schemas.ConfirmationSignal) bool {
	return sig == schemas.SignalTimeout || sig == schemas.SignalUnknown
}

// Resolve maps a confirmation signal to the attempt result.
func (p UnconfirmedPolicy) Resolve(sig schemas.ConfirmationSignal) schemas.AttemptResult {
	switch sig {
	case schemas.SignalSuccess:
		return schemas.ResultSubmitted
	case schemas.SignalDuplicate:
		return schemas.ResultDuplicate
	case schemas.SignalError:
		return schemas.ResultFailed
	}
	if p == PolicyStrict {
		return schemas.ResultFailed
	}
	return schemas.ResultSubmitted
}

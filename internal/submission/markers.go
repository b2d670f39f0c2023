// internal/submission/markers.go
package submission

import (
	"strings"

	"github.com/xkilldash9x/feedback-cli/api/schemas"
	"github.com/xkilldash9x/feedback-cli/internal/config"
)

// MarkerSet holds the lower-cased phrases that classify dialog messages.
// Duplicate phrases are checked first because portal duplicate notices also
// contain the word "submitted".
type MarkerSet struct {
	Duplicate []string
	Success   []string
	Error     []string
}

// NewMarkerSet normalizes configured phrases.
func NewMarkerSet(cfg config.MarkerConfig) MarkerSet {
	return MarkerSet{
		Duplicate: normalizePhrases(cfg.Duplicate),
		Success:   normalizePhrases(cfg.Success),
		Error:     normalizePhrases(cfg.Error),
	}
}

// DefaultMarkers returns the phrases the portal is known to use.
func DefaultMarkers() MarkerSet {
	return NewMarkerSet(config.NewDefaultConfig().Markers())
}

func normalizePhrases(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func containsAny(message string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(message, p) {
			return true
		}
	}
	return false
}

// IsDuplicate reports whether message is an already-submitted notice.
func (m MarkerSet) IsDuplicate(message string) bool {
	return containsAny(strings.ToLower(message), m.Duplicate)
}

// Classify maps a dialog message to a confirmation signal. It never returns
// SignalTimeout.
func (m MarkerSet) Classify(message string) schemas.ConfirmationSignal {
	msg := strings.ToLower(message)
	switch {
	case containsAny(msg, m.Duplicate):
		return schemas.SignalDuplicate
	case containsAny(msg, m.Success):
		return schemas.SignalSuccess
	case containsAny(msg, m.Error):
		return schemas.SignalError
	default:
		return schemas.SignalUnknown
	}
}

// Acknowledge closes d the way its signal requires: duplicate and error
// notices are dismissed, everything else is accepted.
func Acknowledge(d schemas.Dialog, signal schemas.ConfirmationSignal) error {
	switch signal {
	case schemas.SignalDuplicate, schemas.SignalError:
		return d.Dismiss()
	default:
		return d.Accept()
	}
}

package log

import (
	"sync"
	"sync/atomic"
)

// Redacted replaces sensitive values in diagnostic output.
const Redacted = "[REDACTED]"

var (
	redact     atomic.Bool
	redactOnce sync.Once
)

// SetRedact fixes the redaction mode for the process. Only the first call has
// an effect.
func SetRedact(on bool) {
	redactOnce.Do(func() {
		redact.Store(on)
	})
}

// Sensitive returns s, or Redacted when redaction is on.
func Sensitive(s string) string {
	if redact.Load() {
		return Redacted
	}
	return s
}

// SensitiveErr is Sensitive for error messages, which often carry addresses.
func SensitiveErr(err error) string {
	if err == nil {
		return ""
	}
	return Sensitive(err.Error())
}

package config

import "fmt"

// InvalidError reports a configuration key with an unusable value.
type InvalidError struct {
	Key    string
	Reason string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Key, e.Reason)
}

func errInvalid(key, reason string) error {
	return &InvalidError{Key: key, Reason: reason}
}

package core

import "errors"

// ErrHubStopped is returned once the hub loop has exited.
var ErrHubStopped = errors.New("hub stopped")

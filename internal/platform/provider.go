package platform

import (
	"errors"
)

// Provider bundles all device backends.
type Provider struct {
	Snapshotter   Snapshotter
	Inputter      Inputter
	Screenshotter Screenshotter
	Device        Device
	Forwarder     Forwarder
}

// ErrNoBackend is returned when no device backend has been registered.
var ErrNoBackend = errors.New("android-cli: no device backend registered")

// ErrNoSnapshot is returned by operations that need a hierarchy snapshot
// when every capture attempt failed.
var ErrNoSnapshot = errors.New("failed to dump UI tree after retries")

// NewProviderFunc is set by backend packages via init().
// See internal/platform/adb/init.go for the adb registration.
var NewProviderFunc func(opts Options) (*Provider, error)

// NewProvider returns a Provider for the registered backend.
func NewProvider(opts Options) (*Provider, error) {
	if NewProviderFunc == nil {
		return nil, ErrNoBackend
	}
	return NewProviderFunc(opts)
}

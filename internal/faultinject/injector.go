// Package faultinject provides a single-slot fault injector for forcing
// upstream API calls to fail with a chosen error kind during manual QA.
package faultinject

import (
	"sync"

	"github.com/skycast/skycast/internal/apierr"
)

// Injector holds at most one forced error kind. While set, every provider
// call checked against it fails before any network request is built. The
// slot is not cleared on use; it persists until Clear is called, so
// repeated calls keep failing the same way.
//
// An Injector is handed to provider clients as an explicit dependency so
// tests can use independent instances. A nil Injector is inert.
type Injector struct {
	mu   sync.Mutex
	kind *apierr.Kind
}

// New returns an empty injector.
func New() *Injector {
	return &Injector{}
}

// Set forces subsequent checked calls to fail with the given kind.
func (i *Injector) Set(kind apierr.Kind) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.kind = &kind
}

// Clear removes the forced error.
func (i *Injector) Clear() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.kind = nil
}

// Current returns the forced kind, or false when the slot is empty.
func (i *Injector) Current() (apierr.Kind, bool) {
	if i == nil {
		return "", false
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.kind == nil {
		return "", false
	}
	return *i.kind, true
}

// Check returns the forced error, or nil when the slot is empty. Provider
// fetch methods call this first, before constructing the request.
func (i *Injector) Check() error {
	if i == nil {
		return nil
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.kind == nil {
		return nil
	}
	return apierr.Newf(*i.kind, "simulated %s error", *i.kind)
}

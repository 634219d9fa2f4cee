// Package filesystem routes every disk access in vsel through a swappable
// afero backend, so the site registry, caches, and log files can run against
// an in-memory filesystem under test.
package filesystem

import "github.com/spf13/afero"

var backend = afero.Afero{Fs: afero.NewOsFs()}

// API returns the active backend. Callers never hold onto it across a
// backend swap; they call API() at the point of use.
func API() afero.Afero {
	return backend
}

// SetOsFs points the backend at the real operating system filesystem.
func SetOsFs() {
	backend = afero.Afero{Fs: afero.NewOsFs()}
}

// SetMemMapFs swaps in a volatile in-memory backend. Tests call this in
// setup so registry and cache writes never touch the host.
func SetMemMapFs() {
	backend = afero.Afero{Fs: afero.NewMemMapFs()}
}

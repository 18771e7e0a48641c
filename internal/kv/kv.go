// Package kv provides the key-value persistence backends the task store
// writes to.
//
// Every backend stores opaque string values under string keys. All calls may
// fail; callers are expected to recover rather than abort.
package kv

import "errors"

var (
	// ErrUnavailable is returned by every call on an Unavailable backend.
	ErrUnavailable = errors.New("storage unavailable")
	// ErrUnknownBackend is returned by Open for an unrecognized backend name.
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// Backend is a key-value store. Get reports absent keys with ok == false and
// a nil error.
type Backend interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
}

// Unavailable models storage that is disabled or unsupported.
type Unavailable struct{}

func (Unavailable) Get(string) (string, bool, error) { return "", false, ErrUnavailable }
func (Unavailable) Set(string, string) error         { return ErrUnavailable }
func (Unavailable) Delete(string) error              { return ErrUnavailable }

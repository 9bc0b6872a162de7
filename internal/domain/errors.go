package domain

import "errors"

var (
	// ErrUpstreamUnavailable marks a fetch that never produced a usable
	// response: transport failure, timeout or a non-200 status.
	ErrUpstreamUnavailable = errors.New("upstream feed unavailable")

	// ErrMalformedFeed marks a response whose top-level shape does not
	// match the expected data envelope. No partial parsing is attempted.
	ErrMalformedFeed = errors.New("malformed upstream response")

	// ErrNotFound is returned by stores when a requested row does not exist.
	ErrNotFound = errors.New("not found")
)

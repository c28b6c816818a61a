package portal

import "errors"

var (
	// ErrTransport indicates the request did not complete: connection,
	// DNS, timeout or a body that could not be read.
	ErrTransport = errors.New("portal: transport failure")

	// ErrBusy indicates the control already has a request in flight.
	ErrBusy = errors.New("portal: request already in flight")

	// ErrNavigationRefused indicates a navigation probe answered non-2xx.
	ErrNavigationRefused = errors.New("portal: navigation refused")

	// ErrLocked indicates the stream gate did not answer 200.
	ErrLocked = errors.New("portal: stream locked")

	// ErrUnlocked indicates the stream gate has already been passed.
	ErrUnlocked = errors.New("portal: stream already unlocked")

	// ErrMissingDependency indicates a controller was built without a
	// required collaborator.
	ErrMissingDependency = errors.New("portal: missing dependency")
)

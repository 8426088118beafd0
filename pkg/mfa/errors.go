package mfa

import "errors"

var (
	// ErrInvalidMethod is returned for method tags the orchestrator or the
	// preference service cannot route.
	ErrInvalidMethod = errors.New("invalid authentication method")

	// ErrPreferenceNotSet is the storage-level sentinel for identities that
	// never chose a default method; the preference service translates it to
	// the totp default and it never escapes this package's API.
	ErrPreferenceNotSet = errors.New("method preference not set")

	// ErrMissingPayload is returned when a request lacks the field its method
	// requires (e.g. a face verification without a sample vector).
	ErrMissingPayload = errors.New("missing payload for method")
)

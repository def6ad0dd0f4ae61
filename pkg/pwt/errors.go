package pwt

import "errors"

var (
	// ErrMissingHeader is returned by Encode when no header is attached.
	ErrMissingHeader = errors.New("pwt: header is missing")
	// ErrMissingPayload is returned by Encode when no payload is attached.
	ErrMissingPayload = errors.New("pwt: payload is missing")
	// ErrMissingSigner is returned by Encode when no signer is attached.
	ErrMissingSigner = errors.New("pwt: signer is missing")
	// ErrSerialization is returned when a section cannot be serialized.
	ErrSerialization = errors.New("pwt: serialization failed")
	// ErrInvalidTimeWindow is returned by NewPayload when the configured
	// timestamps describe an impossible window (exp before iat, or nbf
	// after exp).
	ErrInvalidTimeWindow = errors.New("pwt: invalid exp/nbf/iat window")
	// ErrInvalidMaxSize is returned by NewPool for a non-positive max size.
	ErrInvalidMaxSize = errors.New("pwt: pool max size must be positive")
)

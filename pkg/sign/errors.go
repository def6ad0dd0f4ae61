package sign

import "errors"

var (
	// ErrEmptyKey is returned by Sign when the signer has no key material.
	ErrEmptyKey = errors.New("sign: key is empty")
	// ErrEmptyData is returned by Sign when there is nothing to sign.
	ErrEmptyData = errors.New("sign: data is empty")
	// ErrInvalidSize is returned when a requested random size is not positive.
	ErrInvalidSize = errors.New("sign: size must be positive")
	// ErrKeyDerivationFailed is returned when the AES key cannot be derived.
	ErrKeyDerivationFailed = errors.New("sign: key derivation failed")
)

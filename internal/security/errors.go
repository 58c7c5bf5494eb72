package security

import "errors"

var (
	// ErrGeneration is returned when the entropy source fails while generating a secret.
	ErrGeneration = errors.New("secret generation failed")
	// ErrHash is returned on catastrophic hasher failure. Never returned for mismatches.
	ErrHash = errors.New("secret hashing failed")
	// ErrTokenExpired is returned when a token's expiry has elapsed at decode time.
	ErrTokenExpired = errors.New("token has expired")
	// ErrInvalidSignature is returned when a token's signature does not verify.
	ErrInvalidSignature = errors.New("token signature is invalid")
	// ErrMalformedToken is returned when a token cannot be decoded or its claims
	// do not match the expected issuer/audience.
	ErrMalformedToken = errors.New("token is malformed")
	// ErrInvalidKey is returned when PEM or key type is invalid.
	ErrInvalidKey = errors.New("invalid key")
)

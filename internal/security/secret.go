package security

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
)

// sessionTokenSeparator joins the session id and the secret in the opaque
// session token. Neither UUIDs nor base64url output contain it.
const sessionTokenSeparator = "."

// SecretSource produces cryptographically random secrets of the requested
// bit length, encoded base64url without padding.
type SecretSource interface {
	Generate(bits int) (string, error)
}

type cryptoSource struct{}

// NewSecretSource returns a SecretSource backed by crypto/rand.
func NewSecretSource() SecretSource { return cryptoSource{} }

// Generate returns ceil(bits/8) random bytes as a base64url string.
func (cryptoSource) Generate(bits int) (string, error) {
	if bits <= 0 {
		return "", ErrGeneration
	}
	b := make([]byte, (bits+7)/8)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// EncodeSessionToken binds a session id and its raw secret into one opaque
// bearer string. The token itself carries no authority; a verifier must
// re-hash the secret and compare it to the stored hash.
func EncodeSessionToken(sessionID, rawSecret string) string {
	return sessionID + sessionTokenSeparator + rawSecret
}

// DecodeSessionToken recovers the session id and raw secret from a session
// token. Returns ErrMalformedToken if the token does not have the expected
// shape or the secret is not valid base64url.
func DecodeSessionToken(token string) (sessionID, rawSecret string, err error) {
	id, secret, ok := strings.Cut(token, sessionTokenSeparator)
	if !ok || id == "" || secret == "" {
		return "", "", ErrMalformedToken
	}
	if _, err := base64.RawURLEncoding.DecodeString(secret); err != nil {
		return "", "", ErrMalformedToken
	}
	return id, secret, nil
}

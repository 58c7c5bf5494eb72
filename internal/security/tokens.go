package security

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"sessiond/internal/clock"
)

// AccessClaims holds the JWT claims carried by an access token: the subject
// user, the issuing session, and the permission set resolved at issue time.
type AccessClaims struct {
	jwt.RegisteredClaims
	SessionID   string   `json:"session_id"`
	Permissions []string `json:"permissions"`
}

// TokenProvider issues and parses signed access tokens using RS256 or ES256.
// Expiry is evaluated against the injected clock, not the wall clock.
type TokenProvider struct {
	privateKey crypto.Signer
	publicKey  crypto.PublicKey
	issuer     string
	audience   string
	accessTTL  time.Duration
	clock      clock.Clock
}

// NewTokenProvider returns a TokenProvider that signs with the given private
// key (RSA or ECDSA). issuer and audience are set on claims and enforced on
// parse.
func NewTokenProvider(privateKey crypto.Signer, publicKey crypto.PublicKey, issuer, audience string, accessTTL time.Duration, clk clock.Clock) *TokenProvider {
	if clk == nil {
		clk = clock.System()
	}
	return &TokenProvider{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		clock:      clk,
	}
}

// AccessTTL returns the lifetime applied to issued access tokens.
func (p *TokenProvider) AccessTTL() time.Duration { return p.accessTTL }

// IssueAccess issues a short-lived access JWT for the given session and user
// carrying the permission set. Returns the token string, its jti, and the
// expiry instant.
func (p *TokenProvider) IssueAccess(sessionID, userID string, permissions []string) (token, jti string, expiresAt time.Time, err error) {
	jti, err = generateJTI()
	if err != nil {
		return "", "", time.Time{}, err
	}
	if permissions == nil {
		permissions = []string{}
	}
	now := p.clock.Now()
	expiresAt = now.Add(p.accessTTL)
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		SessionID:   sessionID,
		Permissions: permissions,
	}
	token, err = p.sign(claims)
	return token, jti, expiresAt, err
}

func (p *TokenProvider) sign(claims jwt.Claims) (string, error) {
	var method jwt.SigningMethod
	switch p.privateKey.Public().(type) {
	case *rsa.PublicKey:
		method = jwt.SigningMethodRS256
	case *ecdsa.PublicKey:
		method = jwt.SigningMethodES256
	default:
		return "", ErrInvalidKey
	}
	t := jwt.NewWithClaims(method, claims)
	return t.SignedString(p.privateKey)
}

// ParseAccess parses and validates an access token. Expired tokens fail with
// ErrTokenExpired, bad signatures with ErrInvalidSignature, and anything else
// (structure, algorithm, issuer, audience) with ErrMalformedToken, so callers
// can prompt re-authentication only where it helps.
func (p *TokenProvider) ParseAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		switch token.Method.(type) {
		case *jwt.SigningMethodRSA, *jwt.SigningMethodECDSA:
			return p.publicKey, nil
		default:
			return nil, ErrMalformedToken
		}
	},
		jwt.WithTimeFunc(p.clock.Now),
		jwt.WithIssuer(p.issuer),
		jwt.WithAudience(p.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, ErrMalformedToken
		}
	}
	return claims, nil
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrGeneration, err)
	}
	return hex.EncodeToString(b), nil
}

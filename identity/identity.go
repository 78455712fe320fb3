// Package identity verifies the identity tokens issued by Sign in with Apple.
package identity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer is the iss claim of every Apple identity token.
const Issuer = "https://appleid.apple.com"

var (
	// ErrNoToken is returned when a request carries no identity token.
	ErrNoToken = errors.New("no identity token present")

	// ErrInvalidToken is returned when an identity token fails verification.
	ErrInvalidToken = errors.New("invalid identity token")
)

// Identity is who an identity token says the user is.
type Identity struct {
	// UserID is the stable id the provider assigns to the user for this app.
	UserID string `json:"userId"`

	// Email is only present when the user shared it.
	Email string `json:"email,omitempty"`
}

// Verifier checks identity tokens. Use NewVerifier to create one.
type Verifier struct {
	key      interface{}
	audience string
	issuer   string
}

// NewVerifier returns a Verifier that accepts RS256 tokens signed with the
// PEM-encoded RSA public key and issued for audience.
func NewVerifier(publicKeyPEM []byte, audience string) (*Verifier, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse identity public key: %w", err)
	}
	return &Verifier{key: key, audience: audience, issuer: Issuer}, nil
}

// Verify checks the signature and claims of tok and returns the identity it
// carries.
func (v *Verifier) Verify(tok string) (Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithLeeway(time.Minute),
		jwt.WithExpirationRequired(),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return v.key, nil
	}, opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	subj, err := claims.GetSubject()
	if err != nil || subj == "" {
		return Identity{}, fmt.Errorf("%w: no subject", ErrInvalidToken)
	}

	id := Identity{UserID: subj}
	if email, ok := claims["email"].(string); ok {
		id.Email = email
	}
	return id, nil
}

// BearerToken gets the token from the Authorization header of req.
func BearerToken(req *http.Request) (string, error) {
	authHeader := strings.TrimSpace(req.Header.Get("Authorization"))
	if authHeader == "" {
		return "", ErrNoToken
	}

	authParts := strings.SplitN(authHeader, " ", 2)
	if len(authParts) != 2 || strings.ToLower(strings.TrimSpace(authParts[0])) != "bearer" {
		return "", fmt.Errorf("%w: authorization header not in Bearer format", ErrInvalidToken)
	}
	return strings.TrimSpace(authParts[1]), nil
}

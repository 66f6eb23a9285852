package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var errTokenInvalid = errors.New("auth: token invalid")

// Claims are the JWT claims issued for an authenticated user.
type Claims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and parses HS256 access tokens.
type TokenIssuer struct {
	key         []byte
	issuer      string
	validFor    time.Duration
	refreshable time.Duration
	now         func() time.Time
}

// NewTokenIssuer builds a TokenIssuer. refreshable is measured from the issue time.
func NewTokenIssuer(key []byte, issuer string, validFor, refreshable time.Duration) *TokenIssuer {
	return &TokenIssuer{key: key, issuer: issuer, validFor: validFor, refreshable: refreshable, now: time.Now}
}

// Issue signs a token for subject carrying scope.
func (t *TokenIssuer) Issue(subject, scope string) (string, Claims, error) {
	now := t.now().Truncate(time.Second)
	claims := Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.validFor)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", Claims{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, claims, nil
}

// Parse checks the signature and time claims of raw. With refresh set, an
// expired token is still accepted while its refresh window is open.
func (t *TokenIssuer) Parse(raw string, refresh bool) (Claims, error) {
	var claims Claims
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}
	if refresh {
		opts = append(opts, jwt.WithoutClaimsValidation())
	} else {
		opts = append(opts, jwt.WithExpirationRequired())
	}
	token, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return t.key, nil
	}, opts...)
	if err != nil || !token.Valid {
		return Claims{}, errTokenInvalid
	}
	if claims.ID == "" || claims.Subject == "" || claims.IssuedAt == nil {
		return Claims{}, errTokenInvalid
	}
	if refresh {
		if t.issuer != "" && claims.Issuer != t.issuer {
			return Claims{}, errTokenInvalid
		}
		if !t.now().Before(t.RefreshDeadline(claims)) {
			return Claims{}, errTokenInvalid
		}
	}
	return claims, nil
}

// RefreshDeadline is the instant after which claims can no longer be refreshed.
func (t *TokenIssuer) RefreshDeadline(claims Claims) time.Time {
	return claims.IssuedAt.Add(t.refreshable)
}

// UselessAfter is the later of the expiry and the refresh deadline. A revoked
// id only needs to be remembered until then.
func (t *TokenIssuer) UselessAfter(claims Claims) time.Time {
	deadline := t.RefreshDeadline(claims)
	if claims.ExpiresAt != nil && claims.ExpiresAt.After(deadline) {
		return claims.ExpiresAt.Time
	}
	return deadline
}

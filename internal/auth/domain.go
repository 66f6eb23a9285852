package auth

import "time"

// AuthenticationRequest is the body of POST /auth/token.
type AuthenticationRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthenticationResponse carries a freshly issued token.
type AuthenticationResponse struct {
	Token         string `json:"token"`
	Authenticated bool   `json:"authenticated"`
}

// TokenRequest is the body of the introspect, logout and refresh endpoints.
type TokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// IntrospectResponse reports whether a token is currently accepted.
type IntrospectResponse struct {
	Valid     bool       `json:"valid"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// InvalidatedToken records a revoked token id until the token is useless anyway.
type InvalidatedToken struct {
	ID        string
	ExpiresAt time.Time
}

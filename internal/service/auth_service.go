package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/invoicedesk/invoicedesk/internal/domain"
)

// Claims are the contents of a browser session token: the upstream identity
// plus the upstream bearer token the session acts with.
type Claims struct {
	Username      string `json:"username"`
	IsAdmin       bool   `json:"is_admin"`
	UpstreamToken string `json:"upstream_token"`
}

// SessionTokenResponse is returned to the browser after login.
type SessionTokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int         `json:"expires_in"`
	User        domain.User `json:"user"`
}

// AuthService delegates credential checks to the upstream API and wraps the
// resulting identity in a signed session token. No credentials are stored
// locally.
type AuthService struct {
	upstream  UpstreamFactory
	schemas   SchemaProvider
	jwtSecret []byte
}

// NewAuthService creates a new auth service.
func NewAuthService(upstream UpstreamFactory, schemas SchemaProvider, jwtSecret string) *AuthService {
	return &AuthService{
		upstream:  upstream,
		schemas:   schemas,
		jwtSecret: []byte(jwtSecret),
	}
}

// Login forwards the credentials to the upstream token endpoint, resolves
// the user identity, warms the frontend-defines cache, and returns a signed
// session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*SessionTokenResponse, error) {
	up := s.upstream("")
	tok, err := up.Login(ctx, username, password)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	authed := s.upstream(tok.AccessToken)
	user, err := authed.Me(ctx)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	// Schema cache is loaded at login; a failure here is not fatal because
	// the resolver degrades to passthrough without defines.
	if s.schemas != nil {
		_, _ = s.schemas.Defines(ctx, authed)
	}

	expiresIn := 12 * 3600
	claims := jwt.MapClaims{
		"username":       user.Username,
		"is_admin":       user.IsAdmin,
		"upstream_token": tok.AccessToken,
		"exp":            time.Now().Add(time.Duration(expiresIn) * time.Second).Unix(),
		"iat":            time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &SessionTokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
		User:        *user,
	}, nil
}

// Logout invalidates the cached frontend defines. Session tokens are
// stateless and simply expire.
func (s *AuthService) Logout(ctx context.Context) error {
	if s.schemas == nil {
		return nil
	}
	return s.schemas.Invalidate(ctx)
}

// ValidateToken verifies a session token and returns its claims.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidCredentials
		}
		return s.jwtSecret, nil
	})

	if err != nil || !token.Valid {
		return nil, ErrInvalidCredentials
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidCredentials
	}

	username, ok := mapClaims["username"].(string)
	if !ok || username == "" {
		return nil, ErrInvalidCredentials
	}
	upstreamToken, ok := mapClaims["upstream_token"].(string)
	if !ok || upstreamToken == "" {
		return nil, ErrInvalidCredentials
	}
	isAdmin, _ := mapClaims["is_admin"].(bool)

	return &Claims{
		Username:      username,
		IsAdmin:       isAdmin,
		UpstreamToken: upstreamToken,
	}, nil
}

package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mcoot/ranktracker/internal/dependencies/clock"
	"github.com/mcoot/ranktracker/internal/model"
)

// Errors
var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrMissingSecret = errors.New("auth secret is not configured")
)

// Claims are the JWT claims issued to and accepted from callers
type Claims struct {
	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Identity is what a verified bearer token vouches for
type Identity struct {
	Principal   model.Principal
	DisplayName string
	TokenID     string
}

// Config holds configuration for the auth service
type Config struct {
	Secret   string
	Issuer   string
	TokenTTL time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		Issuer:   "ranktracker",
		TokenTTL: 24 * time.Hour,
	}
}

// Service verifies HS256 bearer tokens and mints them for development use
type Service struct {
	secret []byte
	issuer string
	ttl    time.Duration
	clock  clock.Clock
}

// New creates a new auth service
func New(cfg Config, clock clock.Clock) (*Service, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, ErrMissingSecret
	}
	defaults := DefaultConfig()
	if cfg.Issuer == "" {
		cfg.Issuer = defaults.Issuer
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaults.TokenTTL
	}
	return &Service{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TokenTTL,
		clock:  clock,
	}, nil
}

// Issue signs a token for the user. A zero ttl uses the configured default.
func (s *Service) Issue(userID model.UserID, displayName string, roles []model.Role, ttl time.Duration) (string, error) {
	if strings.TrimSpace(string(userID)) == "" {
		return "", errors.New("user id is required")
	}
	if ttl <= 0 {
		ttl = s.ttl
	}

	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}

	now := s.clock.Now().UTC()
	claims := Claims{
		Name:  displayName,
		Roles: names,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   string(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the token signature, issuer and lifetime and returns the
// identity it carries. Unknown role names are dropped; a token with no
// recognised role yields a plain User principal.
func (s *Service) Verify(token string) (*Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return nil, fmt.Errorf("%w: subject missing", ErrInvalidToken)
	}

	roles := make([]model.Role, 0, len(claims.Roles))
	for _, name := range claims.Roles {
		if r, ok := model.ParseRole(name); ok {
			roles = append(roles, r)
		}
	}

	return &Identity{
		Principal:   model.NewPrincipal(model.UserID(subject), roles...),
		DisplayName: claims.Name,
		TokenID:     claims.ID,
	}, nil
}

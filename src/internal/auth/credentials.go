package auth

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Mode selects how the agent authenticates with the collector.
type Mode string

const (
	ModeNone   Mode = "none"
	ModeBearer Mode = "bearer"
	ModeJWT    Mode = "jwt"
)

// DefaultTokenTTL bounds minted JWT lifetime when none is configured.
const DefaultTokenTTL = 5 * time.Minute

// Credentials produces Authorization header values for outbound
// requests. JWT mode mints short-lived HS256 tokens signed with a
// shared secret and caches them until shortly before expiry.
type Credentials struct {
	mode    Mode
	token   string
	secret  []byte
	subject string
	ttl     time.Duration

	mu        sync.Mutex
	cached    string
	cachedExp time.Time
}

// NewBearerCredentials returns credentials that attach a static token.
func NewBearerCredentials(token string) *Credentials {
	return &Credentials{
		mode:  ModeBearer,
		token: token,
	}
}

// NewJWTCredentials returns credentials that mint HS256 tokens.
// Subject identifies the sending application.
func NewJWTCredentials(secret, subject string, ttl time.Duration) *Credentials {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Credentials{
		mode:    ModeJWT,
		secret:  []byte(secret),
		subject: subject,
		ttl:     ttl,
	}
}

// Mode returns the configured authentication mode. A nil receiver
// reports ModeNone.
func (c *Credentials) Mode() Mode {
	if c == nil {
		return ModeNone
	}
	return c.mode
}

// Header returns the Authorization value for the next request, or ""
// when authentication is disabled.
func (c *Credentials) Header(now time.Time) (string, error) {
	switch c.Mode() {
	case ModeNone:
		return "", nil
	case ModeBearer:
		return "Bearer " + c.token, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != "" && now.Before(c.cachedExp) {
		return "Bearer " + c.cached, nil
	}

	claims := jwt.RegisteredClaims{
		Subject:   c.subject,
		Issuer:    "loggy-agent",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	c.cached = signed
	// Renew ahead of expiry
	c.cachedExp = now.Add(c.ttl - c.ttl/10)

	return "Bearer " + signed, nil
}

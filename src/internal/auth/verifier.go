package auth

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lixenwraith/log"
)

// VerifierConfig selects inbound authentication for the receiver.
type VerifierConfig struct {
	Tokens      []string // plaintext bearer tokens
	TokenHashes []string // Argon2id PHC entries
	JWTSecret   string   // HS256 secret for agent-minted tokens
}

// Verifier authenticates inbound collector requests. With no
// configured credentials every request is admitted.
type Verifier struct {
	tokens map[string]struct{}
	hashes []string
	secret []byte
	parser *jwt.Parser
	logger *log.Logger

	successes atomic.Uint64
	failures  atomic.Uint64
}

// NewVerifier builds a verifier from cfg.
func NewVerifier(cfg VerifierConfig, logger *log.Logger) *Verifier {
	if logger == nil {
		logger = log.NewLogger()
	}

	v := &Verifier{
		tokens: make(map[string]struct{}, len(cfg.Tokens)),
		hashes: cfg.TokenHashes,
		logger: logger,
	}
	for _, t := range cfg.Tokens {
		if t != "" {
			v.tokens[t] = struct{}{}
		}
	}

	if cfg.JWTSecret != "" {
		v.secret = []byte(cfg.JWTSecret)
		v.parser = jwt.NewParser(
			jwt.WithValidMethods([]string{"HS256"}),
			jwt.WithExpirationRequired(),
		)
	}

	return v
}

// Open reports whether the verifier admits unauthenticated requests.
func (v *Verifier) Open() bool {
	return len(v.tokens) == 0 && len(v.hashes) == 0 && v.secret == nil
}

// Authorize checks an Authorization header value against the
// configured credentials: plaintext tokens first, then hashed tokens,
// then JWT verification.
func (v *Verifier) Authorize(header string) error {
	if v.Open() {
		return nil
	}

	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		v.failures.Add(1)
		return fmt.Errorf("missing bearer token")
	}

	if _, ok := v.tokens[raw]; ok {
		v.successes.Add(1)
		return nil
	}

	for _, phc := range v.hashes {
		match, err := VerifyToken(raw, phc)
		if err != nil {
			v.logger.Warn("msg", "Unusable token hash entry",
				"component", "auth",
				"error", err)
			continue
		}
		if match {
			v.successes.Add(1)
			return nil
		}
	}

	if v.parser != nil {
		claims := &jwt.RegisteredClaims{}
		_, err := v.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
			return v.secret, nil
		})
		if err == nil {
			v.successes.Add(1)
			return nil
		}
		v.failures.Add(1)
		return fmt.Errorf("invalid token: %w", err)
	}

	v.failures.Add(1)
	return fmt.Errorf("invalid token")
}

// Stats returns the verification counters.
func (v *Verifier) Stats() (successes, failures uint64) {
	return v.successes.Load(), v.failures.Load()
}

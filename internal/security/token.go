package security

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/heimgewebe/lenskit/internal/pathutil"
)

const tokenIssuer = "lenskit-fs"

// devSecret signs tokens when dev mode is explicitly enabled and no real
// secret is configured. Never valid outside dev mode.
var devSecret = []byte("lenskit-dev-insecure")

// TrustedPath is a path that has passed token verification. It is the only
// form filesystem operations accept; nothing outside this package can
// construct one from a raw string.
type TrustedPath struct {
	path string
}

// Path returns the canonical path the token was issued for.
func (p TrustedPath) Path() string {
	return p.path
}

type pathClaims struct {
	jwt.RegisteredClaims
	Path string `json:"path"`
}

// Issuer mints and verifies capability tokens for filesystem paths.
// Stateless: token validity is fully determined by the signature, the TTL,
// and the allowlist at verification time. No issued token is ever stored.
type Issuer struct {
	cfg *Config
	ttl time.Duration
	now func() time.Time
}

// NewIssuer creates a token issuer over an immutable security config.
func NewIssuer(cfg *Config, ttl time.Duration) *Issuer {
	if cfg.devMode && !cfg.HasSecret() {
		log.Printf("lenskit: dev mode active without RLENS_FS_TOKEN_SECRET, tokens signed with an insecure built-in secret")
	}
	return &Issuer{cfg: cfg, ttl: ttl, now: time.Now}
}

func (i *Issuer) signingSecret() ([]byte, error) {
	if i.cfg.HasSecret() {
		return i.cfg.secret, nil
	}
	if i.cfg.devMode {
		return devSecret, nil
	}
	return nil, ErrConfiguration
}

// Issue normalizes the path, checks it against the allowlist (including the
// loopback+secret gate for "/"), and returns a signed token. Fails closed:
// no secret means no token, never an unsigned one.
func (i *Issuer) Issue(path string) (string, error) {
	canonical, ok := pathutil.Normalize(path)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrValidation, path)
	}
	if !i.cfg.Covers(canonical) {
		return "", fmt.Errorf("%w: %s", ErrAuthorization, canonical)
	}

	secret, err := i.signingSecret()
	if err != nil {
		return "", err
	}

	issuedAt := i.now()
	claims := pathClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(i.ttl)),
		},
		Path: canonical,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Verify checks signature and expiry, then re-checks the payload path
// against the current allowlist. The allowlist re-check is mandatory even
// though the path was covered at issuance: a token must not outlive a
// policy it was minted under.
func (i *Issuer) Verify(tokenStr string) (TrustedPath, error) {
	secret, err := i.signingSecret()
	if err != nil {
		return TrustedPath{}, err
	}

	claims := &pathClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(func() time.Time { return i.now() }))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return TrustedPath{}, ErrExpiredToken
		}
		return TrustedPath{}, ErrAuthentication
	}
	if !token.Valid {
		return TrustedPath{}, ErrAuthentication
	}

	if !i.cfg.Covers(claims.Path) {
		return TrustedPath{}, fmt.Errorf("%w: %s", ErrAuthorization, claims.Path)
	}
	return TrustedPath{path: claims.Path}, nil
}

// ValidateSelection enforces selection lineage against a verified base
// token: every entry that normalizes must be the base path, beneath it, or
// an allowlisted ancestor of it. Child tokens are only ever minted for
// entries beneath a listed directory, and the base could only be reached
// through its ancestors, so these are exactly the paths a client holding
// the base token could have been issued tokens for. Entries that cannot
// normalize are dropped silently, matching the materializer's permissive
// contract.
func (i *Issuer) ValidateSelection(base TrustedPath, selection []string) error {
	for _, raw := range selection {
		entry, ok := pathutil.Normalize(raw)
		if !ok {
			continue
		}
		onLineage := entry == base.path ||
			pathutil.IsDescendant(base.path, entry) ||
			pathutil.IsDescendant(entry, base.path)
		if !onLineage {
			return fmt.Errorf("%w: selection entry %s outside token scope", ErrAuthorization, entry)
		}
		if !i.cfg.Covers(entry) {
			return fmt.Errorf("%w: selection entry %s", ErrAuthorization, entry)
		}
	}
	return nil
}

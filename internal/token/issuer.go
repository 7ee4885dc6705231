// Package token mints and verifies the signed session credentials handed out
// at login. Signature validity proves integrity only; whether a session is
// still live is decided by the session store.
package token

import (
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// DefaultTTL applies when Issue is called without a positive ttl.
const DefaultTTL = 15 * time.Minute

var (
	ErrEmptySecret          = errors.New("token: signing secret is empty")
	ErrUnsupportedAlgorithm = errors.New("token: unsupported signing algorithm")
)

// Config is the issuer configuration. Secret must be provided by the caller;
// there is no built-in key.
type Config struct {
	Secret     []byte
	Algorithm  string // HS256 (default), HS384 or HS512
	DefaultTTL time.Duration
	Issuer     string
}

// Issued is a freshly signed token together with the times embedded in it.
type Issued struct {
	Token     string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type Issuer struct {
	secret     []byte
	method     jwt.SigningMethod
	defaultTTL time.Duration
	issuer     string
	clock      clockwork.Clock
}

// NewIssuer validates cfg and returns an Issuer. A nil clock means wall time.
func NewIssuer(cfg Config, clock clockwork.Clock) (*Issuer, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrEmptySecret
	}
	alg := cfg.Algorithm
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	var method jwt.SigningMethod
	switch alg {
	case jwt.SigningMethodHS256.Alg():
		method = jwt.SigningMethodHS256
	case jwt.SigningMethodHS384.Alg():
		method = jwt.SigningMethodHS384
	case jwt.SigningMethodHS512.Alg():
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, alg)
	}
	ttl := cfg.DefaultTTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)
	return &Issuer{secret: secret, method: method, defaultTTL: ttl, issuer: cfg.Issuer, clock: clock}, nil
}

// Algorithm returns the JWT alg header value used for signing.
func (i *Issuer) Algorithm() string { return i.method.Alg() }

// Issue signs claims with exp = now + ttl. The caller's map is not modified;
// iat, exp and jti are always set by the issuer.
func (i *Issuer) Issue(claims map[string]any, ttl time.Duration) (*Issued, error) {
	if ttl <= 0 {
		ttl = i.defaultTTL
	}
	// JWT times have second resolution; truncate so the returned times match the claims.
	now := i.clock.Now().UTC().Truncate(time.Second)
	exp := now.Add(ttl)
	jti := uuid.NewString()

	mc := jwt.MapClaims{}
	maps.Copy(mc, claims)
	mc["iat"] = now.Unix()
	mc["exp"] = exp.Unix()
	mc["jti"] = jti
	if i.issuer != "" {
		if _, ok := mc["iss"]; !ok {
			mc["iss"] = i.issuer
		}
	}

	signed, err := jwt.NewWithClaims(i.method, mc).SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Issued{Token: signed, ID: jti, IssuedAt: now, ExpiresAt: exp}, nil
}

// Parse verifies signature, algorithm and expiry and returns the claims.
func (i *Issuer) Parse(tokenString string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{i.method.Alg()}),
		jwt.WithTimeFunc(i.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

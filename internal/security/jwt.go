package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the token payload. SessionVersion snapshots the user's
// session-version counter at issuance time; the authentication pipeline
// rejects the token the moment the stored counter moves past it.
type Claims struct {
	SessionVersion int64 `json:"session_version"`
	jwt.RegisteredClaims
}

// JWTManager signs and parses access tokens with a single process-wide
// secret. It has no storage dependencies: issuance is a pure function of
// its inputs and the wall clock.
type JWTManager struct {
	issuer   string
	secret   []byte
	tokenTTL time.Duration
}

func NewJWTManager(issuer, secret string, tokenTTL time.Duration) *JWTManager {
	return &JWTManager{
		issuer:   issuer,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

// TokenTTL reports the configured lifetime of newly issued tokens.
func (m *JWTManager) TokenTTL() time.Duration { return m.tokenTTL }

// Issue mints a signed token for the user. The caller supplies the user's
// current session version; the manager never looks it up itself.
func (m *JWTManager) Issue(userID string, sessionVersion int64) (string, error) {
	now := time.Now()
	claims := Claims{
		SessionVersion: sessionVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify checks signature and expiry and returns the claims. It consults
// no external store; revocation and version freshness are the pipeline's
// job.
func (m *JWTManager) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing algorithm")
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

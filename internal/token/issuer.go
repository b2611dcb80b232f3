package token

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/andrzej-wegierski/identiverse-backend/internal/config"
)

// Leeway is the clock-skew allowance applied when validating tokens.
const Leeway = 30 * time.Second

// Claims are the identity claims embedded in a session token.
type Claims struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	PersonID string `json:"personId,omitempty"`
	jwt.RegisteredClaims
}

// Issuer builds and verifies signed, time-bounded session tokens.
type Issuer struct {
	key      []byte
	issuer   string
	audience string
	expiry   time.Duration
	log      *zap.Logger
}

// NewIssuer parses the configured signing secret and returns an Issuer.
// An empty secret is a fatal configuration error; a short effective key is
// allowed but logged.
func NewIssuer(cfg *config.JWTConfig, log *zap.Logger) (*Issuer, error) {
	key, err := ParseSigningKey(cfg.SigningKey)
	if err != nil {
		return nil, err
	}
	if len(key) < MinKeyBytes {
		log.Warn("jwt signing key is shorter than recommended for HMAC-SHA256",
			zap.Int("key_bytes", len(key)),
			zap.Int("recommended_bytes", MinKeyBytes))
	}

	expiry := cfg.Expiry
	if expiry <= 0 {
		expiry = time.Hour
	}

	return &Issuer{
		key:      key,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		expiry:   expiry,
		log:      log,
	}, nil
}

// Issue signs a session token for the given identity. The subject carries
// the user id; a linked person id is added only when present.
func (i *Issuer) Issue(userID int, username, role string, personID *int, now time.Time) (string, time.Time, error) {
	expires := now.Add(i.expiry)

	claims := &Claims{
		Name: username,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(userID),
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	if personID != nil {
		claims.PersonID = strconv.Itoa(*personID)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// Parse validates signature, issuer, audience and time bounds with a small
// clock-skew allowance and returns the embedded claims.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return i.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
		jwt.WithLeeway(Leeway),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

// UserID returns the numeric subject of the claims.
func (c *Claims) UserID() (int, error) {
	return strconv.Atoi(c.Subject)
}

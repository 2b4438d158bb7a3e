package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpLayout is the application-level expiry format embedded in claims.
// Fractional seconds are optional on parse, matching tokens issued by the
// previous deployment.
const ExpLayout = "2006-01-02 15:04:05.999999"

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrMalformedToken = errors.New("malformed token payload")
)

// tokenPayload is the wire shape: the claim bundle wrapped in a single-item
// "data" list. RegisteredClaims stays empty on purpose: expiry is enforced
// by the validator from Claims.Exp, so decoding never fails on an expired
// token and rejection reasons stay reportable.
type tokenPayload struct {
	Data []Claims `json:"data"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies bearer tokens with HMAC-SHA-256.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Encode stamps the application-level expiry on the claims and signs them.
func (c *TokenCodec) Encode(claims *Claims) (string, error) {
	claims.Exp = c.now().UTC().Add(c.ttl).Format(ExpLayout)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &tokenPayload{Data: []Claims{*claims}})
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and returns the embedded claims. It does NOT
// check expiry; that is the validator's job.
func (c *TokenCodec) Decode(bearer string) (*Claims, error) {
	payload := &tokenPayload{}
	token, err := jwt.ParseWithClaims(bearer, payload, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if len(payload.Data) == 0 {
		return nil, ErrMalformedToken
	}

	claims := payload.Data[0]
	return &claims, nil
}

// ParseExpiry parses the application-level expiry string out of a claim set.
func ParseExpiry(claims *Claims) (time.Time, error) {
	if claims.Exp == "" {
		return time.Time{}, ErrMalformedToken
	}
	return time.Parse(ExpLayout, claims.Exp)
}

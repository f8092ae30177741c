package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/currentspace/mychat-api/internal/models"
)

// SessionTTL is how long an issued session token stays valid.
const SessionTTL = 7 * 24 * time.Hour

// ErrInvalidToken covers every parse failure: wrong segment count, undecodable
// segments, signature mismatch and expiry. Callers must not distinguish them.
var ErrInvalidToken = errors.New("invalid session token")

// sessionClaims is the signed payload: the user identity plus issued-at/expiry.
type sessionClaims struct {
	models.User
	IssuedAt  int64 `json:"iat"`
	ExpiresAt int64 `json:"exp"`
}

// IssueToken serializes the identity with iat/exp, signs it with
// HMAC-SHA256 and returns "base64(payload).base64(signature)".
// The payload is authenticated, not encrypted: anyone holding the token can
// read the identity inside it.
func IssueToken(user *models.User, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	payload, err := json.Marshal(sessionClaims{
		User:      *user,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	})
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(payload) + "." +
		base64.StdEncoding.EncodeToString(sign(payload, secret)), nil
}

// ParseToken verifies the signature and expiry and returns the embedded
// identity. Any failure yields ErrInvalidToken; there is no clock-skew
// tolerance on exp.
func ParseToken(token, secret string) (*models.User, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return nil, ErrInvalidToken
	}

	payload, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrInvalidToken
	}
	sig, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrInvalidToken
	}

	if !hmac.Equal(sig, sign(payload, secret)) {
		return nil, ErrInvalidToken
	}

	var claims sessionClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt < time.Now().Unix() {
		return nil, ErrInvalidToken
	}

	user := claims.User
	return &user, nil
}

func sign(payload []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return mac.Sum(nil)
}

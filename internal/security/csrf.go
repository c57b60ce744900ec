package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// CSRFHeader carries the token on state-changing API requests
const CSRFHeader = "X-CSRF-Token"

// CSRF derives per-session tokens with HMAC-SHA256. Tokens need no server
// side storage and survive restarts as long as the secret is unchanged.
type CSRF struct {
	secret []byte
}

// NewCSRF creates a token generator keyed by secret
func NewCSRF(secret string) *CSRF {
	return &CSRF{secret: []byte(secret)}
}

// Token returns the token for sessionID, or "" when there is no session
func (c *CSRF) Token(sessionID string) string {
	if sessionID == "" {
		return ""
	}
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(sessionID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Valid reports whether token belongs to sessionID
func (c *CSRF) Valid(sessionID, token string) bool {
	if sessionID == "" || token == "" {
		return false
	}
	return hmac.Equal([]byte(c.Token(sessionID)), []byte(token))
}

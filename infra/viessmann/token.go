package viessmann

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"strings"
	"time"
)

// expiryLeeway rejects tokens that expire within the next minute, so a token
// cannot run out mid-cycle.
const expiryLeeway = 60 * time.Second

type cachedToken struct {
	Token string `json:"token"`
}

// loadCachedToken reads the cache file; a missing or corrupted file yields an
// empty token.
func loadCachedToken(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var c cachedToken
	if err := json.Unmarshal(b, &c); err != nil {
		return ""
	}
	return c.Token
}

func saveToken(path, token string) error {
	b, err := json.Marshal(cachedToken{Token: token})
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

// tokenValid peeks at the unverified exp claim of the JWT. Signature
// verification is the API's job; we only need to know whether a refresh is due.
func tokenValid(token string, now time.Time) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}
	var claims struct {
		Exp int64 `json:"exp"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil || claims.Exp == 0 {
		return false
	}
	return time.Unix(claims.Exp, 0).After(now.Add(expiryLeeway))
}

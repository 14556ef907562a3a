package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
)

// APIKeyMiddleware authenticates requests carrying a static API key in a
// configurable header. Keys are compared by hash in constant time.
type APIKeyMiddleware struct {
	headerName string
	keyHashes  []string
}

func NewAPIKeyMiddleware(headerName string, keys []string) *APIKeyMiddleware {
	hashes := make([]string, len(keys))
	for i, k := range keys {
		hashes[i] = HashAPIKey(k)
	}
	return &APIKeyMiddleware{headerName: headerName, keyHashes: hashes}
}

// Authenticate accepts the request when its API key matches. Requests
// without a key pass through so the JWT middleware can authenticate them.
func (m *APIKeyMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(m.headerName)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		hash := HashAPIKey(key)
		for _, known := range m.keyHashes {
			if subtle.ConstantTimeCompare([]byte(known), []byte(hash)) == 1 {
				next.ServeHTTP(w, r.WithContext(withAuthenticated(r.Context())))
				return
			}
		}
		writeError(w, http.StatusUnauthorized, "invalid API key")
	})
}

func HashAPIKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}

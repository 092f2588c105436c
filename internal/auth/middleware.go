package auth

import (
	"crypto/subtle"
	"net/http"
)

// SecretEqual compares a submitted API key against the configured shared
// secret without leaking timing information.
func SecretEqual(provided, secret string) bool {
	if secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) == 1
}

// BodyLimit caps request bodies at n bytes. Oversized reads fail inside the
// handler with http.MaxBytesError.
func BodyLimit(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}

package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/emanuelcastillo/APP-DEPORTES/internal/domain/auth"
)

// APIKeyHeader carries the client's API key.
const APIKeyHeader = "api_key"

type userIDKey struct{}

// UserID extracts the authenticated user from the context. The bool is false
// for unauthenticated requests, which the security middleware never lets
// through to the API handlers.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey{}).(int64)
	return id, ok
}

// Security authenticates requests via HMAC-SHA256 hashed API keys and puts
// the resolved user id into the request context, making the "current user"
// an explicit value instead of ambient state.
type Security struct {
	apikeys auth.Repository
	pepper  []byte
}

// NewSecurity creates a Security middleware with the given API key
// repository and HMAC pepper.
func NewSecurity(apikeys auth.Repository, pepper []byte) *Security {
	return &Security{
		apikeys: apikeys,
		pepper:  pepper,
	}
}

// Middleware rejects requests without a valid API key with 401.
func (s *Security) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(APIKeyHeader)
		if key == "" {
			s.unauthorized(w)
			return
		}

		// The HMAC keeps raw keys out of the database and makes the lookup
		// itself the equality check.
		mac := hmac.New(sha256.New, s.pepper)
		mac.Write([]byte(key))

		info, err := s.apikeys.FindByHash(r.Context(), hex.EncodeToString(mac.Sum(nil)))
		if err != nil {
			s.unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey{}, info.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Security) unauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, errorResponse{
		Code:    http.StatusUnauthorized,
		Kind:    kindValidation,
		Message: "invalid or missing API key",
	})
}

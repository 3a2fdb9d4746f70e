package auth

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound indicates no API key matches the presented hash.
var ErrNotFound = errors.New("api key not found")

// APIKeyInfo holds the identity data for a validated API key. UserID is the
// account every authenticated cart/order operation is scoped to.
type APIKeyInfo struct {
	ID      int64
	KeyHash string
	UserID  int64
	Name    string
}

// Repository provides lookup of API keys by their HMAC hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*APIKeyInfo, error)
}

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"learnhub/internal/cache"
)

const refreshTokenKeyPrefix = "refresh_token:"

// ErrRefreshTokenNotFound is returned when a refresh token is unknown or expired.
var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// TokenStoreInterface defines the interface for token storage operations.
type TokenStoreInterface interface {
	StoreRefreshToken(ctx context.Context, tokenID string, userID uuid.UUID, ttl time.Duration) error
	GetRefreshToken(ctx context.Context, tokenID string) (uuid.UUID, error)
	DeleteRefreshToken(ctx context.Context, tokenID string) error
}

// TokenStore handles storage and retrieval of refresh tokens in Redis.
type TokenStore struct {
	cache *cache.Client
}

var _ TokenStoreInterface = (*TokenStore)(nil)

type refreshTokenRecord struct {
	UserID uuid.UUID `json:"user_id"`
}

// NewTokenStore creates a new token store.
func NewTokenStore(cache *cache.Client) *TokenStore {
	return &TokenStore{cache: cache}
}

// StoreRefreshToken stores a refresh token in Redis with TTL.
func (s *TokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uuid.UUID, ttl time.Duration) error {
	payload, err := json.Marshal(refreshTokenRecord{UserID: userID})
	if err != nil {
		return fmt.Errorf("marshal token data: %w", err)
	}
	return s.cache.Set(ctx, refreshTokenKeyPrefix+tokenID, payload, ttl)
}

// GetRefreshToken returns the user a refresh token was issued to.
func (s *TokenStore) GetRefreshToken(ctx context.Context, tokenID string) (uuid.UUID, error) {
	var rec refreshTokenRecord
	if !s.cache.GetJSON(ctx, refreshTokenKeyPrefix+tokenID, &rec) {
		return uuid.Nil, ErrRefreshTokenNotFound
	}
	return rec.UserID, nil
}

// DeleteRefreshToken removes a refresh token from Redis.
func (s *TokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	return s.cache.Delete(ctx, refreshTokenKeyPrefix+tokenID)
}

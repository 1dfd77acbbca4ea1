package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	// TokenPrefix identifies tokens issued by this service.
	TokenPrefix = "fres_"
	// TokenLength is the number of random bytes encoded into a token (256 bits).
	TokenLength = 32
)

// TokenGenerator creates and validates the token string format.
type TokenGenerator struct{}

// NewTokenGenerator creates a new token generator.
func NewTokenGenerator() *TokenGenerator {
	return &TokenGenerator{}
}

// GenerateToken creates a new API token.
// Format: fres_<base64url(32 random bytes)>
func (tg *TokenGenerator) GenerateToken() (token string, tokenHash string, tokenPrefix string, err error) {
	randomBytes := make([]byte, TokenLength)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	encodedToken := base64.RawURLEncoding.EncodeToString(randomBytes)
	fullToken := TokenPrefix + encodedToken

	hash := sha256.Sum256([]byte(fullToken))
	hashStr := hex.EncodeToString(hash[:])

	prefix := TokenPrefix
	if len(encodedToken) >= 8 {
		prefix = TokenPrefix + encodedToken[:8]
	}

	return fullToken, hashStr, prefix, nil
}

// HashToken computes the SHA256 hash of a token for lookup.
func (tg *TokenGenerator) HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// ValidateTokenFormat checks if a token has the correct format.
func (tg *TokenGenerator) ValidateTokenFormat(token string) error {
	if !strings.HasPrefix(token, TokenPrefix) {
		return fmt.Errorf("token must start with %q", TokenPrefix)
	}

	encodedPart := strings.TrimPrefix(token, TokenPrefix)
	if len(encodedPart) == 0 {
		return fmt.Errorf("token is too short")
	}

	if _, err := base64.RawURLEncoding.DecodeString(encodedPart); err != nil {
		return fmt.Errorf("invalid token encoding: %w", err)
	}

	return nil
}

// ExtractPrefix extracts the display prefix from a token.
func (tg *TokenGenerator) ExtractPrefix(token string) string {
	if !strings.HasPrefix(token, TokenPrefix) {
		return ""
	}

	encodedPart := strings.TrimPrefix(token, TokenPrefix)
	if len(encodedPart) >= 8 {
		return TokenPrefix + encodedPart[:8]
	}

	return token
}

// TokenManager manages API token lifecycle against an in-process store.
// It is intentionally not backed by a database: tokens for this service
// are provisioned out of band (CLI flag or config file) and reloaded on
// restart rather than persisted, matching the resolver's stateless scope.
type TokenManager struct {
	generator *TokenGenerator
	mu        sync.RWMutex
	byHash    map[string]*APIToken
}

// NewTokenManager creates a new, empty token manager.
func NewTokenManager() *TokenManager {
	return &TokenManager{
		generator: NewTokenGenerator(),
		byHash:    make(map[string]*APIToken),
	}
}

// CreateToken mints a new API token and returns the plaintext once.
func (tm *TokenManager) CreateToken(name, description string, scopes []Scope, expiresAt *time.Time) (*APIToken, string, error) {
	token, tokenHash, tokenPrefix, err := tm.generator.GenerateToken()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	apiToken := &APIToken{
		TokenHash:   tokenHash,
		TokenPrefix: tokenPrefix,
		Name:        name,
		Description: description,
		Scopes:      scopes,
		ExpiresAt:   expiresAt,
		CreatedAt:   time.Now(),
	}

	tm.mu.Lock()
	tm.byHash[tokenHash] = apiToken
	tm.mu.Unlock()

	return apiToken, token, nil
}

// ValidateToken validates a token string and returns the associated record.
func (tm *TokenManager) ValidateToken(token string) (*APIToken, error) {
	if err := tm.generator.ValidateTokenFormat(token); err != nil {
		return nil, fmt.Errorf("invalid token format: %w", err)
	}

	tokenHash := tm.generator.HashToken(token)

	tm.mu.Lock()
	defer tm.mu.Unlock()

	apiToken, ok := tm.byHash[tokenHash]
	if !ok {
		return nil, fmt.Errorf("token not found")
	}
	if apiToken.RevokedAt != nil {
		return nil, fmt.Errorf("token revoked")
	}
	if apiToken.ExpiresAt != nil && apiToken.ExpiresAt.Before(time.Now()) {
		return nil, fmt.Errorf("token expired")
	}

	now := time.Now()
	apiToken.LastUsedAt = &now

	return apiToken, nil
}

// RevokeToken revokes a token by its display prefix.
func (tm *TokenManager) RevokeToken(tokenPrefix, reason string) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	for _, t := range tm.byHash {
		if t.TokenPrefix == tokenPrefix {
			now := time.Now()
			t.RevokedAt = &now
			t.RevokeReason = reason
			return nil
		}
	}
	return fmt.Errorf("token not found: %s", tokenPrefix)
}

// ListTokens lists all known tokens, including revoked ones.
func (tm *TokenManager) ListTokens() []*APIToken {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	tokens := make([]*APIToken, 0, len(tm.byHash))
	for _, t := range tm.byHash {
		tokens = append(tokens, t)
	}
	return tokens
}

// CleanupExpiredTokens removes tokens past their expiry and returns the count removed.
func (tm *TokenManager) CleanupExpiredTokens() int {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	now := time.Now()
	removed := 0
	for hash, t := range tm.byHash {
		if t.ExpiresAt != nil && t.ExpiresAt.Before(now) {
			delete(tm.byHash, hash)
			removed++
		}
	}
	return removed
}

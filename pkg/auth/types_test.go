package auth

import (
	"testing"
	"time"
)

func TestAPIToken_StructFields(t *testing.T) {
	now := time.Now()
	expiresAt := time.Now().Add(24 * time.Hour)
	lastUsedAt := time.Now().Add(-1 * time.Hour)
	revokedAt := time.Now().Add(-30 * time.Minute)

	token := APIToken{
		TokenHash:    "hash123",
		TokenPrefix:  "fres_abc123",
		Name:         "Test Token",
		Description:  "A test token",
		Scopes:       []Scope{ScopeSchemasRead, ScopeSchemasWrite},
		ExpiresAt:    &expiresAt,
		LastUsedAt:   &lastUsedAt,
		CreatedAt:    now,
		RevokedAt:    &revokedAt,
		RevokeReason: "test revocation",
	}

	if token.TokenHash != "hash123" {
		t.Errorf("APIToken.TokenHash = %s, want hash123", token.TokenHash)
	}
	if token.TokenPrefix != "fres_abc123" {
		t.Errorf("APIToken.TokenPrefix = %s, want fres_abc123", token.TokenPrefix)
	}
	if token.Name != "Test Token" {
		t.Errorf("APIToken.Name = %s, want Test Token", token.Name)
	}
	if len(token.Scopes) != 2 {
		t.Errorf("APIToken.Scopes length = %d, want 2", len(token.Scopes))
	}
	if token.ExpiresAt == nil {
		t.Error("APIToken.ExpiresAt should not be nil")
	}
	if token.LastUsedAt == nil {
		t.Error("APIToken.LastUsedAt should not be nil")
	}
	if token.RevokedAt == nil {
		t.Error("APIToken.RevokedAt should not be nil")
	}
	if token.RevokeReason != "test revocation" {
		t.Errorf("APIToken.RevokeReason = %s, want test revocation", token.RevokeReason)
	}
}

func TestAuthContext_StructFields(t *testing.T) {
	token := &APIToken{TokenPrefix: "fres_abc123", Name: "test-token"}
	scopes := []Scope{ScopeSchemasRead, ScopeSchemasWrite}

	ctx := AuthContext{
		Token:  token,
		Scopes: scopes,
	}

	if ctx.Token == nil || ctx.Token.TokenPrefix != "fres_abc123" {
		t.Errorf("AuthContext.Token = %v, want prefix fres_abc123", ctx.Token)
	}
	if len(ctx.Scopes) != 2 {
		t.Errorf("AuthContext.Scopes length = %d, want 2", len(ctx.Scopes))
	}
}

func TestScope_Values(t *testing.T) {
	tests := []struct {
		scope Scope
		want  string
	}{
		{ScopeSchemasRead, "schemas:read"},
		{ScopeSchemasWrite, "schemas:write"},
		{ScopeFeaturesCompile, "features:compile"},
		{ScopeFeaturesResolve, "features:resolve"},
		{ScopeAuditRead, "audit:read"},
		{ScopeAll, "*"},
	}

	for _, tt := range tests {
		t.Run(string(tt.scope), func(t *testing.T) {
			if string(tt.scope) != tt.want {
				t.Errorf("Scope value = %s, want %s", tt.scope, tt.want)
			}
		})
	}
}

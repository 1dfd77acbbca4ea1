// Package auth provides API token authentication and scope checks for the
// feature resolver service. There is no user or organization model: every
// caller is a bearer token with a set of scopes, issued out of band by an
// operator.
//
// # Key Components
//
// API Tokens: secure token generation with prefix display, scopes, and expiration.
//
//	manager := auth.NewTokenManager()
//	token, plaintext, err := manager.CreateToken("ci-pipeline", "", []auth.Scope{
//		auth.ScopeFeaturesResolve,
//	}, nil)
//	// Token format: fres_[base64url(32 random bytes)]
//	// Stored as a SHA256 hash; plaintext is returned once and never logged.
//
// Scopes: fine-grained API permissions.
//
//	ScopeSchemasRead     - read registered schemas
//	ScopeSchemasWrite    - register or replace schemas
//	ScopeFeaturesCompile - compile a FeatureSetDefaults table
//	ScopeFeaturesResolve - resolve and merge feature sets
//	ScopeAuditRead       - read audit log entries
//	ScopeAll             - every scope, for admin tokens
//
// # Authentication Flow
//
//	token, err := manager.ValidateToken(tokenString)
//	if err != nil {
//		return errors.New("invalid token")
//	}
//	authCtx := &auth.AuthContext{Token: token, Scopes: token.Scopes}
//	if !authCtx.HasScope(auth.ScopeFeaturesResolve) {
//		return errors.New("insufficient permissions")
//	}
//
// # Authorization Context
//
// AuthContext carries the authenticated token for the lifetime of a
// request. pkg/middleware.AuthMiddleware builds one per request and stores
// it under contextkeys.AuthKey.
//
// # Security Audit Logging
//
// AuditLogger records authentication and resolver actions in a bounded
// in-memory ring buffer; pkg/middleware.AuthMiddleware logs auth
// success/failure and resolver handlers log schema/compile/resolve/merge
// actions against it.
//
//	al := auth.NewAuditLogger(1000)
//	al.LogFromRequest(r, auth.ActionFeaturesResolve, "schema", schemaName, auth.StatusSuccess, nil)
//
// # Token Lifecycle
//
//	token, plaintext, err := manager.CreateToken(name, description, scopes, expiresAt)
//	err = manager.RevokeToken(token.TokenPrefix, "rotated")
//	removed := manager.CleanupExpiredTokens()
//
// # Related Packages
//
//   - pkg/middleware: HTTP authentication and scope-enforcement middleware
//   - pkg/contextkeys: the context key AuthContext is stored under
package auth

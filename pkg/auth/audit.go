package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/platinummonkey/featureresolver/pkg/contextkeys"
)

// AuditLog represents a single audited request against the resolver API.
type AuditLog struct {
	TokenPrefix  string    `json:"token_prefix,omitempty"`
	Action       string    `json:"action"`
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id,omitempty"`
	IPAddress    string    `json:"ip_address,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuditLogFilters filters AuditLogger.Query results.
type AuditLogFilters struct {
	TokenPrefix string
	Action      string
	Status      string
	StartTime   *time.Time
	EndTime     *time.Time
	Limit       int
}

// AuditLogger records audit events in memory, bounded to a fixed capacity.
// It is deliberately not database-backed: the resolver runs stateless and
// audit history is expected to flow to the structured request logs
// (pkg/observability) for durable retention.
type AuditLogger struct {
	mu       sync.Mutex
	capacity int
	entries  []*AuditLog
}

// NewAuditLogger creates an audit logger retaining up to capacity entries.
func NewAuditLogger(capacity int) *AuditLogger {
	if capacity <= 0 {
		capacity = 1000
	}
	return &AuditLogger{capacity: capacity}
}

// LogAction records an audit event.
func (al *AuditLogger) LogAction(ctx context.Context, log *AuditLog) error {
	if log.Action == "" {
		return fmt.Errorf("action is required")
	}
	if log.ResourceType == "" {
		return fmt.Errorf("resource_type is required")
	}
	if log.Status == "" {
		return fmt.Errorf("status is required")
	}

	log.CreatedAt = time.Now()

	al.mu.Lock()
	defer al.mu.Unlock()
	al.entries = append(al.entries, log)
	if len(al.entries) > al.capacity {
		al.entries = al.entries[len(al.entries)-al.capacity:]
	}
	return nil
}

// LogFromRequest builds and records an audit log from an HTTP request.
func (al *AuditLogger) LogFromRequest(r *http.Request, action, resourceType, resourceID, status string, err error) error {
	log := &AuditLog{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    getClientIP(r),
		UserAgent:    r.UserAgent(),
		Status:       status,
	}

	if err != nil {
		log.ErrorMessage = err.Error()
	}

	if authCtx, ok := r.Context().Value(contextkeys.AuthKey).(*AuthContext); ok && authCtx.Token != nil {
		log.TokenPrefix = authCtx.Token.TokenPrefix
	}

	return al.LogAction(r.Context(), log)
}

// Query returns audit logs matching filters, most recent first.
func (al *AuditLogger) Query(filters *AuditLogFilters) []*AuditLog {
	al.mu.Lock()
	defer al.mu.Unlock()

	var matched []*AuditLog
	for i := len(al.entries) - 1; i >= 0; i-- {
		entry := al.entries[i]
		if filters != nil {
			if filters.TokenPrefix != "" && entry.TokenPrefix != filters.TokenPrefix {
				continue
			}
			if filters.Action != "" && entry.Action != filters.Action {
				continue
			}
			if filters.Status != "" && entry.Status != filters.Status {
				continue
			}
			if filters.StartTime != nil && entry.CreatedAt.Before(*filters.StartTime) {
				continue
			}
			if filters.EndTime != nil && entry.CreatedAt.After(*filters.EndTime) {
				continue
			}
		}
		matched = append(matched, entry)
		if filters != nil && filters.Limit > 0 && len(matched) >= filters.Limit {
			break
		}
	}
	return matched
}

func getClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}

// Audit action constants.
const (
	ActionSchemaRegister  = "schema.register"
	ActionFeaturesCompile = "features.compile"
	ActionFeaturesResolve = "features.resolve"
	ActionFeaturesMerge   = "features.merge"
	ActionTokenCreate     = "token.create"
	ActionTokenRevoke     = "token.revoke"
	ActionAuthSuccess     = "auth.success"
	ActionAuthFailure     = "auth.failure"
	ActionRateLimitExceeded = "ratelimit.exceeded"
)

// Audit status constants.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusDenied  = "denied"
)

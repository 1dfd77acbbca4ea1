package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewAuditLogger(t *testing.T) {
	al := NewAuditLogger(0)
	if al == nil {
		t.Fatal("NewAuditLogger() returned nil")
	}
}

func TestAuditLogger_LogAction(t *testing.T) {
	al := NewAuditLogger(100)
	ctx := context.Background()

	tests := []struct {
		name    string
		log     *AuditLog
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid audit log",
			log: &AuditLog{
				Action:       ActionSchemaRegister,
				ResourceType: "schema",
				ResourceID:   "acme.features",
				Status:       StatusSuccess,
			},
			wantErr: false,
		},
		{
			name: "missing action",
			log: &AuditLog{
				ResourceType: "schema",
				Status:       StatusSuccess,
			},
			wantErr: true,
			errMsg:  "action is required",
		},
		{
			name: "missing resource type",
			log: &AuditLog{
				Action: ActionSchemaRegister,
				Status: StatusSuccess,
			},
			wantErr: true,
			errMsg:  "resource_type is required",
		},
		{
			name: "missing status",
			log: &AuditLog{
				Action:       ActionSchemaRegister,
				ResourceType: "schema",
			},
			wantErr: true,
			errMsg:  "status is required",
		},
		{
			name: "complete audit log with all fields",
			log: &AuditLog{
				TokenPrefix:  "fres_abc123",
				Action:       ActionFeaturesResolve,
				ResourceType: "schema",
				ResourceID:   "acme.features",
				IPAddress:    "192.168.1.1",
				UserAgent:    "featurectl/1.0",
				Status:       StatusSuccess,
			},
			wantErr: false,
		},
		{
			name: "audit log with error message",
			log: &AuditLog{
				Action:       ActionAuthFailure,
				ResourceType: "auth",
				Status:       StatusFailure,
				ErrorMessage: "invalid credentials",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			beforeTime := time.Now()
			err := al.LogAction(ctx, tt.log)
			afterTime := time.Now()

			if (err != nil) != tt.wantErr {
				t.Errorf("LogAction() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if tt.wantErr && err != nil && err.Error() != tt.errMsg {
				t.Errorf("LogAction() error message = %v, want %v", err.Error(), tt.errMsg)
			}

			if !tt.wantErr {
				if tt.log.CreatedAt.IsZero() {
					t.Error("LogAction() did not set CreatedAt")
				}
				if tt.log.CreatedAt.Before(beforeTime) || tt.log.CreatedAt.After(afterTime) {
					t.Errorf("LogAction() CreatedAt = %v, should be between %v and %v",
						tt.log.CreatedAt, beforeTime, afterTime)
				}
			}
		})
	}
}

func TestAuditLogger_LogFromRequest(t *testing.T) {
	al := NewAuditLogger(100)

	tests := []struct {
		name         string
		setupRequest func() *http.Request
		action       string
		resourceType string
		resourceID   string
		status       string
		err          error
		wantErr      bool
	}{
		{
			name: "basic request with no error",
			setupRequest: func() *http.Request {
				req := httptest.NewRequest("POST", "/v1/schemas", nil)
				req.RemoteAddr = "192.168.1.100:12345"
				req.Header.Set("User-Agent", "featurectl/1.5")
				return req
			},
			action:       ActionSchemaRegister,
			resourceType: "schema",
			resourceID:   "acme.features",
			status:       StatusSuccess,
			err:          nil,
			wantErr:      false,
		},
		{
			name: "request with error",
			setupRequest: func() *http.Request {
				req := httptest.NewRequest("POST", "/v1/compile", nil)
				req.RemoteAddr = "10.0.0.1:54321"
				return req
			},
			action:       ActionFeaturesCompile,
			resourceType: "schema",
			resourceID:   "acme.features",
			status:       StatusFailure,
			err:          errors.New("compile failed"),
			wantErr:      false,
		},
		{
			name: "request with X-Forwarded-For header",
			setupRequest: func() *http.Request {
				req := httptest.NewRequest("POST", "/v1/resolve", nil)
				req.Header.Set("X-Forwarded-For", "203.0.113.1")
				req.Header.Set("User-Agent", "curl/7.68.0")
				req.RemoteAddr = "10.0.0.1:12345"
				return req
			},
			action:       ActionFeaturesResolve,
			resourceType: "schema",
			resourceID:   "acme.features",
			status:       StatusSuccess,
			err:          nil,
			wantErr:      false,
		},
		{
			name: "missing action returns validation error",
			setupRequest: func() *http.Request {
				return httptest.NewRequest("GET", "/", nil)
			},
			action:       "",
			resourceType: "schema",
			resourceID:   "",
			status:       StatusSuccess,
			err:          nil,
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.setupRequest()
			err := al.LogFromRequest(req, tt.action, tt.resourceType, tt.resourceID, tt.status, tt.err)

			if (err != nil) != tt.wantErr {
				t.Errorf("LogFromRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuditLogger_Query(t *testing.T) {
	al := NewAuditLogger(100)
	ctx := context.Background()

	must := func(log *AuditLog) {
		if err := al.LogAction(ctx, log); err != nil {
			t.Fatalf("LogAction() error = %v", err)
		}
	}
	must(&AuditLog{TokenPrefix: "fres_aaa", Action: ActionSchemaRegister, ResourceType: "schema", Status: StatusSuccess})
	must(&AuditLog{TokenPrefix: "fres_bbb", Action: ActionFeaturesResolve, ResourceType: "schema", Status: StatusSuccess})
	must(&AuditLog{TokenPrefix: "fres_aaa", Action: ActionFeaturesResolve, ResourceType: "schema", Status: StatusFailure})

	all := al.Query(nil)
	if len(all) != 3 {
		t.Fatalf("Query(nil) len = %d, want 3", len(all))
	}
	// most recent first
	if all[0].Status != StatusFailure {
		t.Errorf("Query(nil)[0].Status = %s, want most recent entry first", all[0].Status)
	}

	byToken := al.Query(&AuditLogFilters{TokenPrefix: "fres_aaa"})
	if len(byToken) != 2 {
		t.Errorf("Query(TokenPrefix) len = %d, want 2", len(byToken))
	}

	byStatus := al.Query(&AuditLogFilters{Status: StatusFailure})
	if len(byStatus) != 1 {
		t.Errorf("Query(Status) len = %d, want 1", len(byStatus))
	}

	limited := al.Query(&AuditLogFilters{Limit: 1})
	if len(limited) != 1 {
		t.Errorf("Query(Limit) len = %d, want 1", len(limited))
	}
}

func TestAuditLogger_CapacityEviction(t *testing.T) {
	al := NewAuditLogger(2)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := al.LogAction(ctx, &AuditLog{Action: ActionFeaturesResolve, ResourceType: "schema", Status: StatusSuccess}); err != nil {
			t.Fatalf("LogAction() error = %v", err)
		}
	}

	if got := len(al.Query(nil)); got != 2 {
		t.Errorf("entries retained = %d, want 2 (bounded by capacity)", got)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name   string
		setup  func() *http.Request
		wantIP string
	}{
		{
			name: "X-Forwarded-For header present",
			setup: func() *http.Request {
				req := httptest.NewRequest("GET", "/", nil)
				req.Header.Set("X-Forwarded-For", "203.0.113.195")
				req.Header.Set("X-Real-IP", "198.51.100.1")
				req.RemoteAddr = "10.0.0.1:12345"
				return req
			},
			wantIP: "203.0.113.195",
		},
		{
			name: "X-Real-IP header present (no X-Forwarded-For)",
			setup: func() *http.Request {
				req := httptest.NewRequest("GET", "/", nil)
				req.Header.Set("X-Real-IP", "198.51.100.42")
				req.RemoteAddr = "10.0.0.1:12345"
				return req
			},
			wantIP: "198.51.100.42",
		},
		{
			name: "no proxy headers, use RemoteAddr",
			setup: func() *http.Request {
				req := httptest.NewRequest("GET", "/", nil)
				req.RemoteAddr = "192.168.1.100:54321"
				return req
			},
			wantIP: "192.168.1.100:54321",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.setup()
			gotIP := getClientIP(req)
			if gotIP != tt.wantIP {
				t.Errorf("getClientIP() = %v, want %v", gotIP, tt.wantIP)
			}
		})
	}
}

func TestAuditActionConstants(t *testing.T) {
	tests := []struct {
		name     string
		constant string
		expected string
	}{
		{"schema register", ActionSchemaRegister, "schema.register"},
		{"features compile", ActionFeaturesCompile, "features.compile"},
		{"features resolve", ActionFeaturesResolve, "features.resolve"},
		{"features merge", ActionFeaturesMerge, "features.merge"},
		{"token create", ActionTokenCreate, "token.create"},
		{"token revoke", ActionTokenRevoke, "token.revoke"},
		{"auth success", ActionAuthSuccess, "auth.success"},
		{"auth failure", ActionAuthFailure, "auth.failure"},
		{"rate limit exceeded", ActionRateLimitExceeded, "ratelimit.exceeded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.constant != tt.expected {
				t.Errorf("Constant %s = %q, want %q", tt.name, tt.constant, tt.expected)
			}
		})
	}
}

func TestAuditStatusConstants(t *testing.T) {
	tests := []struct {
		name     string
		constant string
		expected string
	}{
		{"success", StatusSuccess, "success"},
		{"failure", StatusFailure, "failure"},
		{"denied", StatusDenied, "denied"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.constant != tt.expected {
				t.Errorf("Constant %s = %q, want %q", tt.name, tt.constant, tt.expected)
			}
		})
	}
}

package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/barkbase/opsdash/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	admin *domain.AdminUser
	err   error
}

func (s *stubVerifier) VerifyToken(_ context.Context, _ string) (*domain.AdminUser, error) {
	return s.admin, s.err
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	handler := AuthMiddleware(&stubVerifier{})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"message": "missing or malformed authorization header"}`, rec.Body.String())
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	verifier := &stubVerifier{err: errors.New("signature mismatch")}
	handler := AuthMiddleware(verifier)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// Authn and authz failures both answer 403, never 401.
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"message": "invalid or expired token"}`, rec.Body.String())
}

func TestAuthMiddleware_InjectsAdmin(t *testing.T) {
	admin := &domain.AdminUser{ID: "id-1", Email: "a@barkbase.io", Role: domain.RoleEngineer}
	verifier := &stubVerifier{admin: admin}

	var seen *domain.AdminUser
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetAdmin(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	AuthMiddleware(verifier)(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, admin.ID, seen.ID)
}

func TestRequireIncidentWrite(t *testing.T) {
	tests := []struct {
		name  string
		admin *domain.AdminUser
		want  int
	}{
		{"no identity", nil, http.StatusForbidden},
		{"support", &domain.AdminUser{Role: domain.RoleSupport}, http.StatusForbidden},
		{"support lead", &domain.AdminUser{Role: domain.RoleSupportLead}, http.StatusOK},
		{"engineer", &domain.AdminUser{Role: domain.RoleEngineer}, http.StatusOK},
		{"super admin", &domain.AdminUser{Role: domain.RoleSuperAdmin}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.admin != nil {
				ctx := context.WithValue(req.Context(), AdminKey, tt.admin)
				req = req.WithContext(ctx)
			}

			rec := httptest.NewRecorder()
			RequireIncidentWrite(okHandler()).ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRateLimitMiddleware_Rejects(t *testing.T) {
	handler := RateLimitMiddleware(1, 2)(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/status", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Equal(t, http.StatusTooManyRequests, codes[2])
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := BearerToken(req)
	assert.False(t, ok)

	req.Header.Set("Authorization", "Basic dXNlcg==")
	_, ok = BearerToken(req)
	assert.False(t, ok)

	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	token, ok := BearerToken(req)
	require.True(t, ok)
	assert.Equal(t, "abc.def.ghi", token)
}

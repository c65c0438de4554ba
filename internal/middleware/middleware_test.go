package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/supportly/backend/internal/models"
	"github.com/supportly/backend/internal/services"
)

const testUserID = "6f1c2a8e-2b1d-4a57-9d1f-0c1b2a3d4e5f"

type MockTokens struct {
	mock.Mock
}

func (m *MockTokens) ParseToken(token string) (*services.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Claims), args.Error(1)
}

func (m *MockTokens) IsRevoked(ctx context.Context, token string) bool {
	return m.Called(token).Bool(0)
}

type MockAccounts struct {
	mock.Mock
}

func (m *MockAccounts) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func withUser(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, roleKey, role)
}

func protected() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-User", UserIDFromContext(r.Context()))
		w.Header().Set("X-Role", RoleFromContext(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		setup      func(tokens *MockTokens, accounts *MockAccounts)
		wantStatus int
	}{
		{
			name:       "missing header",
			header:     "",
			setup:      func(*MockTokens, *MockAccounts) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			header:     "Basic abc",
			setup:      func(*MockTokens, *MockAccounts) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "invalid token",
			header: "Bearer bad",
			setup: func(tokens *MockTokens, _ *MockAccounts) {
				tokens.On("ParseToken", "bad").Return(nil, services.ErrUnauthorized)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "malformed subject",
			header: "Bearer odd",
			setup: func(tokens *MockTokens, _ *MockAccounts) {
				tokens.On("ParseToken", "odd").Return(&services.Claims{UserID: "64b7f0c2e4b0a1a2b3c4d5e6"}, nil)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "revoked token",
			header: "Bearer old",
			setup: func(tokens *MockTokens, _ *MockAccounts) {
				tokens.On("ParseToken", "old").Return(&services.Claims{UserID: testUserID}, nil)
				tokens.On("IsRevoked", "old").Return(true)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "deactivated account",
			header: "Bearer ok",
			setup: func(tokens *MockTokens, accounts *MockAccounts) {
				tokens.On("ParseToken", "ok").Return(&services.Claims{UserID: testUserID}, nil)
				tokens.On("IsRevoked", "ok").Return(false)
				accounts.On("FindByID", testUserID).Return(&models.User{ID: testUserID, IsActive: false}, nil)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "deleted account",
			header: "Bearer ok",
			setup: func(tokens *MockTokens, accounts *MockAccounts) {
				tokens.On("ParseToken", "ok").Return(&services.Claims{UserID: testUserID}, nil)
				tokens.On("IsRevoked", "ok").Return(false)
				accounts.On("FindByID", testUserID).Return(nil, services.ErrNotFound)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "storage failure",
			header: "Bearer ok",
			setup: func(tokens *MockTokens, accounts *MockAccounts) {
				tokens.On("ParseToken", "ok").Return(&services.Claims{UserID: testUserID}, nil)
				tokens.On("IsRevoked", "ok").Return(false)
				accounts.On("FindByID", testUserID).Return(nil, errors.New("connection refused"))
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:   "active account",
			header: "Bearer ok",
			setup: func(tokens *MockTokens, accounts *MockAccounts) {
				tokens.On("ParseToken", "ok").Return(&services.Claims{UserID: testUserID, Role: models.RoleFan}, nil)
				tokens.On("IsRevoked", "ok").Return(false)
				accounts.On("FindByID", testUserID).Return(&models.User{ID: testUserID, Role: models.RoleCreator, IsActive: true}, nil)
			},
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := new(MockTokens)
			accounts := new(MockAccounts)
			tt.setup(tokens, accounts)

			h := Auth(tokens, accounts, zerolog.Nop())(protected())
			r := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			h.ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusNoContent {
				assert.Equal(t, testUserID, w.Header().Get("X-User"))
				assert.Equal(t, models.RoleCreator, w.Header().Get("X-Role"))
			}
			tokens.AssertExpectations(t)
			accounts.AssertExpectations(t)
		})
	}
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(models.RoleAdmin)(protected())

	r := httptest.NewRequest(http.MethodPatch, "/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r.WithContext(withUser(r.Context(), testUserID, models.RoleFan)))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, r.WithContext(withUser(r.Context(), testUserID, models.RoleAdmin)))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))
}

func TestStaticFileServer(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), []byte("png"), 0o600))
	h := StaticFileServer(dir)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/a.png", nil))
	assert.Equal(t, "png", w.Body.String())

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/../../etc/passwd", nil))
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-referrer", w.Header().Get("Referrer-Policy"))
	assert.Equal(t, "same-site", w.Header().Get("Cross-Origin-Resource-Policy"))
	assert.Equal(t, "max-age=15552000; includeSubDomains", w.Header().Get("Strict-Transport-Security"))
}

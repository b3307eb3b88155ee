package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloomkart/bloomkart/pkg/auth"
	"github.com/bloomkart/bloomkart/pkg/middleware"
)

func okHandler(t *testing.T, wantUserID, wantRole string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := middleware.IdentityFromCtx(r.Context())
		require.True(t, ok, "identity missing from context")
		assert.Equal(t, wantUserID, id.UserID)
		assert.Equal(t, wantRole, id.Role)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateRejectsMissingToken(t *testing.T) {
	h := middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateRejectsMalformedHeader(t *testing.T) {
	h := middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Token abcdef") // not a Bearer scheme
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateInjectsIdentity(t *testing.T) {
	token, err := auth.GenerateToken("64f0c2a9e13b4c0012345678", auth.RoleUser)
	require.NoError(t, err)

	h := middleware.Authenticate(okHandler(t, "64f0c2a9e13b4c0012345678", auth.RoleUser))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthorizeBlocksWrongRole(t *testing.T) {
	token, err := auth.GenerateToken("64f0c2a9e13b4c0012345678", auth.RoleUser)
	require.NoError(t, err)

	h := middleware.Authenticate(
		middleware.Authorize(auth.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		})),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthorizeAllowsAdmin(t *testing.T) {
	token, err := auth.GenerateToken("64f0c2a9e13b4c0087654321", auth.RoleAdmin)
	require.NoError(t, err)

	h := middleware.Authenticate(
		middleware.Authorize(auth.RoleAdmin)(okHandler(t, "64f0c2a9e13b4c0087654321", auth.RoleAdmin)),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOptionalAuthPassesAnonymous(t *testing.T) {
	h := middleware.OptionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := middleware.IdentityFromCtx(r.Context())
		assert.False(t, ok, "anonymous request must carry no identity")
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cart/sync", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

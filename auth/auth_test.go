package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightwatch/nursepay/auth"
)

const secret = "test-secret"

func TestIssueAndParseToken(t *testing.T) {
	token, err := auth.IssueToken(secret, auth.RoleNurse, "nurse-1", time.Hour)
	require.NoError(t, err)

	claims, err := auth.ParseToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleNurse, claims.Role)
	assert.Equal(t, "nurse-1", claims.Subject)
}

func TestParseToken_Rejects(t *testing.T) {
	expired, err := auth.IssueToken(secret, auth.RoleAdmin, "admin", -time.Minute)
	require.NoError(t, err)
	_, err = auth.ParseToken(secret, expired)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	other, err := auth.IssueToken("other-secret", auth.RoleAdmin, "admin", time.Hour)
	require.NoError(t, err)
	_, err = auth.ParseToken(secret, other)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = auth.ParseToken(secret, "not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestIssueToken_Validates(t *testing.T) {
	_, err := auth.IssueToken("", auth.RoleAdmin, "admin", time.Hour)
	assert.Error(t, err)

	_, err = auth.IssueToken(secret, auth.Role("owner"), "x", time.Hour)
	assert.ErrorIs(t, err, auth.ErrInvalidRole)
}

func TestParseRole(t *testing.T) {
	r, err := auth.ParseRole(" Family ")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleFamily, r)

	_, err = auth.ParseRole("root")
	assert.ErrorIs(t, err, auth.ErrInvalidRole)
}

// =============================================================================
// MIDDLEWARE TESTS
// =============================================================================

func whoAmI() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.FromContext(r.Context())
		w.Write([]byte(string(p.Role) + ":" + p.Subject))
	})
}

func TestAuthenticate_NoSecretActsAsAdmin(t *testing.T) {
	h := auth.Authenticate("")(whoAmI())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin:admin", rec.Body.String())
}

func TestAuthenticate_RequiresToken(t *testing.T) {
	h := auth.Authenticate(secret)(whoAmI())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := auth.IssueToken(secret, auth.RoleFamily, "fam-1", time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "family:fam-1", rec.Body.String())
}

func TestRequireRole(t *testing.T) {
	h := auth.Authenticate(secret)(auth.RequireRole(auth.RoleAdmin)(whoAmI()))

	token, err := auth.IssueToken(secret, auth.RoleNurse, "nurse-1", time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "nurse")
}

func TestPrincipal_Is(t *testing.T) {
	p := auth.Principal{Subject: "nurse-1", Role: auth.RoleNurse}
	assert.True(t, p.Is(auth.RoleNurse, "nurse-1"))
	assert.False(t, p.Is(auth.RoleNurse, "nurse-2"))
	assert.False(t, p.Is(auth.RoleFamily, "nurse-1"))
	assert.False(t, p.IsAdmin())
	assert.True(t, auth.Admin.IsAdmin())
}

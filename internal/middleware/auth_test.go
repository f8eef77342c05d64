package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelth-com/tradetrack/internal/models"
	"github.com/xelth-com/tradetrack/internal/utils"
)

const secret = "mw-test-secret"

func whoami(w http.ResponseWriter, r *http.Request) {
	a, _ := ActorFrom(r.Context())
	w.Write([]byte(string(a.Role)))
}

func tokenFor(t *testing.T, role models.Role) string {
	tok, err := utils.GenerateToken(&models.User{ID: "u-1", Email: "a@magnova.in", Organization: models.OrgMagnova, Role: role}, secret, time.Hour)
	require.NoError(t, err)
	return tok
}

func TestAuthRejectsMissingAndBadTokens(t *testing.T) {
	h := Auth(secret)(http.HandlerFunc(whoami))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/purchase-orders", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"detail"`)

	req := httptest.NewRequest(http.MethodGet, "/api/purchase-orders", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthStoresActor(t *testing.T) {
	h := Auth(secret)(http.HandlerFunc(whoami))
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, models.RoleApprover))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Approver", rec.Body.String())
}

func TestAuthAcceptsQueryTokenForWebsocket(t *testing.T) {
	h := Auth(secret)(http.HandlerFunc(whoami))
	req := httptest.NewRequest(http.MethodGet, "/api/ws?token="+tokenFor(t, models.RoleUser), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole(t *testing.T) {
	h := Auth(secret)(RequireRole(models.RoleAdmin)(http.HandlerFunc(whoami)))

	req := httptest.NewRequest(http.MethodDelete, "/api/invoices/x", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, models.RoleUser))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req.Header.Set("Authorization", "Bearer "+tokenFor(t, models.RoleAdmin))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := CORS([]string{"https://app.magnova.in"})(http.HandlerFunc(whoami))

	req := httptest.NewRequest(http.MethodOptions, "/api/payments", nil)
	req.Header.Set("Origin", "https://app.magnova.in")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.magnova.in", rec.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"memberhub/internal/database"
	"memberhub/internal/domain"
	"memberhub/internal/middleware"
	"memberhub/internal/modules/auth"
	jwtsvc "memberhub/internal/pkg/jwt"
	"memberhub/internal/pkg/password"
	"memberhub/internal/repository"
)

const redirectURL = "http://localhost:3000/oauth2/redirect"

type testResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *errorDetail           `json:"error,omitempty"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// stubVerifier stands in for the third-party handshake collaborator.
type stubVerifier struct {
	attrs map[string]any
}

func (s *stubVerifier) VerifyCallback(_ context.Context, _ string, _ url.Values) (map[string]any, error) {
	return s.attrs, nil
}

type testSuite struct {
	router *gin.Engine
	db     *gorm.DB
}

func setupSuite(t *testing.T) *testSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect("file:e2e_" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	hash, err := password.Hash("secret")
	require.NoError(t, err)
	require.NoError(t, db.Create(&domain.Member{
		Name: "Alice", Email: "a@x.com", PasswordHash: hash,
	}).Error)

	memberRepo := repository.NewMemberRepository(db)
	refreshRepo := repository.NewRefreshTokenRepository(db)
	tokens := jwtsvc.New("e2e-secret", time.Hour, 168*time.Hour)
	exchange := auth.NewCodeExchange(auth.DefaultCodeTTL)

	service := auth.NewService(memberRepo, refreshRepo, tokens, password.NewBcryptComparer(), exchange)
	verifier := &stubVerifier{attrs: map[string]any{
		"sub":   "google-sub-1",
		"email": "ext@x.com",
		"name":  "Ext Member",
	}}
	handler := auth.NewHandler(service, auth.NewExtractorRegistry(), verifier, redirectURL)

	r := gin.New()
	v1 := r.Group("/api/v1")
	{
		handler.RegisterPublicRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.AuthRequired(tokens))
		{
			handler.RegisterProtectedRoutes(protected)
		}
	}

	return &testSuite{router: r, db: db}
}

func (s *testSuite) postJSON(t *testing.T, path string, body any) (*httptest.ResponseRecorder, testResponse) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	var parsed testResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	return w, parsed
}

func (s *testSuite) get(t *testing.T, path string, bearer string) (*httptest.ResponseRecorder, testResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	s.router.ServeHTTP(w, req)

	var parsed testResponse
	if w.Code != http.StatusFound {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	}
	return w, parsed
}

func TestLoginRefreshLogoutFlow(t *testing.T) {
	s := setupSuite(t)

	// login
	w, resp := s.postJSON(t, "/api/v1/auth/login", gin.H{"email": "a@x.com", "password": "secret"})
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)
	assert.Equal(t, "Bearer", resp.Data["tokenType"])
	assert.Equal(t, float64(3600), resp.Data["expiresIn"])
	accessToken := resp.Data["accessToken"].(string)
	refreshToken := resp.Data["refreshToken"].(string)
	require.NotEmpty(t, accessToken)
	require.NotEmpty(t, refreshToken)

	// the access token opens protected routes
	w, resp = s.get(t, "/api/v1/members/me", accessToken)
	require.Equal(t, http.StatusOK, w.Code)
	member := resp.Data["member"].(map[string]interface{})
	assert.Equal(t, "a@x.com", member["email"])

	// refresh rotates the pair
	w, resp = s.postJSON(t, "/api/v1/auth/refresh", gin.H{"refreshToken": refreshToken})
	require.Equal(t, http.StatusOK, w.Code)
	rotated := resp.Data["refreshToken"].(string)
	require.NotEmpty(t, rotated)
	assert.NotEqual(t, refreshToken, rotated)

	// the consumed row is blacklisted, not deleted
	var oldRow domain.RefreshToken
	require.NoError(t, s.db.Where("token = ?", refreshToken).First(&oldRow).Error)
	assert.True(t, oldRow.Blacklisted)

	// replaying the consumed token reports the revocation
	w, resp = s.postJSON(t, "/api/v1/auth/refresh", gin.H{"refreshToken": refreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "TOKEN_BLACKLISTED", resp.Error.Code)

	// logout, then the rotated token is revoked too
	w, _ = s.postJSON(t, "/api/v1/auth/logout", gin.H{"refreshToken": rotated})
	assert.Equal(t, http.StatusOK, w.Code)

	// logout is idempotent for blacklisted tokens
	w, _ = s.postJSON(t, "/api/v1/auth/logout", gin.H{"refreshToken": rotated})
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp = s.postJSON(t, "/api/v1/auth/refresh", gin.H{"refreshToken": rotated})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "TOKEN_BLACKLISTED", resp.Error.Code)
}

func TestRefreshErrorCodes(t *testing.T) {
	s := setupSuite(t)

	// malformed
	w, resp := s.postJSON(t, "/api/v1/auth/refresh", gin.H{"refreshToken": "not-a-token"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "TOKEN_INVALID", resp.Error.Code)

	// wrongly signed
	forger := jwtsvc.New("wrong-secret", time.Hour, 168*time.Hour)
	forged, err := forger.GenerateRefreshToken(1)
	require.NoError(t, err)
	w, resp = s.postJSON(t, "/api/v1/auth/refresh", gin.H{"refreshToken": forged})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "TOKEN_INVALID", resp.Error.Code)

	// expired but well signed
	expiredIssuer := jwtsvc.New("e2e-secret", -time.Minute, -time.Minute)
	expired, err := expiredIssuer.GenerateRefreshToken(1)
	require.NoError(t, err)
	w, resp = s.postJSON(t, "/api/v1/auth/refresh", gin.H{"refreshToken": expired})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "TOKEN_EXPIRED", resp.Error.Code)

	// well signed but never persisted
	issuer := jwtsvc.New("e2e-secret", time.Hour, 168*time.Hour)
	unknown, err := issuer.GenerateRefreshToken(1)
	require.NoError(t, err)
	w, resp = s.postJSON(t, "/api/v1/auth/refresh", gin.H{"refreshToken": unknown})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "REFRESH_TOKEN_NOT_FOUND", resp.Error.Code)

	// logout of an unknown token is the only 404 logout
	w, resp = s.postJSON(t, "/api/v1/auth/logout", gin.H{"refreshToken": unknown})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "REFRESH_TOKEN_NOT_FOUND", resp.Error.Code)
}

func TestExternalLoginHandOff(t *testing.T) {
	s := setupSuite(t)

	// callback redirects with an opaque code only
	w, _ := s.get(t, "/api/v1/auth/oauth2/callback/google?token=provider-token", "")
	require.Equal(t, http.StatusFound, w.Code)

	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	code := location.Query().Get("code")
	require.NotEmpty(t, code)
	assert.NotEmpty(t, location.Query().Get("expiresIn"))
	assert.Empty(t, location.Query().Get("accessToken"), "tokens must never ride the redirect URL")
	assert.Empty(t, location.Query().Get("refreshToken"))

	// the code redeems exactly once
	w, resp := s.get(t, "/api/v1/auth/oauth2/token?code="+url.QueryEscape(code), "")
	require.Equal(t, http.StatusOK, w.Code)
	accessToken := resp.Data["accessToken"].(string)
	refreshToken := resp.Data["refreshToken"].(string)
	require.NotEmpty(t, accessToken)
	require.NotEmpty(t, refreshToken)

	w, resp = s.get(t, "/api/v1/auth/oauth2/token?code="+url.QueryEscape(code), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "TOKEN_INVALID", resp.Error.Code)

	// the pair is live: the external member was created and can refresh
	w, resp = s.postJSON(t, "/api/v1/auth/refresh", gin.H{"refreshToken": refreshToken})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, refreshToken, resp.Data["refreshToken"])

	var member domain.Member
	require.NoError(t, s.db.Where("email = ?", "ext@x.com").First(&member).Error)
	assert.Equal(t, "google", member.Provider)
}

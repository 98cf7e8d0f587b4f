package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"memberhub/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// ProfileVerifier is the third-party handshake collaborator: given a provider
// callback it yields the provider's raw user attributes, already verified.
type ProfileVerifier interface {
	VerifyCallback(ctx context.Context, provider string, query url.Values) (map[string]any, error)
}

// Handler exposes the token lifecycle over HTTP.
type Handler struct {
	service     *Service
	extractors  *ExtractorRegistry
	verifier    ProfileVerifier
	redirectURL string
}

func NewHandler(service *Service, extractors *ExtractorRegistry, verifier ProfileVerifier, redirectURL string) *Handler {
	return &Handler{
		service:     service,
		extractors:  extractors,
		verifier:    verifier,
		redirectURL: redirectURL,
	}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/oauth2/token", h.ExchangeOAuth2Code)
		authGroup.GET("/oauth2/callback/:provider", h.OAuth2Callback)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	memberGroup := protected.Group("/members")
	{
		memberGroup.GET("/me", h.GetMe)
	}
}

// Login issues an access/refresh pair for valid credentials and retires any
// credential the member already held.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	tokens, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Email or password is incorrect")
			return
		}
		h.respondTokenError(c, err, "LOGIN_FAILED", "Failed to login")
		return
	}

	response.Success(c, http.StatusOK, tokens)
}

// Refresh rotates the refresh token. The error payload carries a
// machine-readable code so clients can tell a bad token from a revoked one.
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	tokens, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.respondTokenError(c, err, "REFRESH_FAILED", "Failed to refresh tokens")
		return
	}

	response.Success(c, http.StatusOK, tokens)
}

// Logout blacklists the refresh token. Repeating it for an already
// blacklisted token still succeeds; only a token the ledger has never seen is
// an error.
func (h *Handler) Logout(c *gin.Context) {
	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if err := h.service.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		h.respondTokenError(c, err, "LOGOUT_FAILED", "Failed to logout")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Logged out"})
}

// ExchangeOAuth2Code swaps a one-time hand-off code for the token pair it
// stands in for.
func (h *Handler) ExchangeOAuth2Code(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "code is required")
		return
	}

	tokens, err := h.service.ExchangeExternalLoginCode(code)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "TOKEN_INVALID", "Code is unknown, expired or already used")
		return
	}

	response.Success(c, http.StatusOK, tokens)
}

// OAuth2Callback completes an external login. The redirect back to the client
// carries only the opaque exchange code and non-secret metadata, never the
// tokens.
func (h *Handler) OAuth2Callback(c *gin.Context) {
	provider := c.Param("provider")

	attrs, err := h.verifier.VerifyCallback(c.Request.Context(), provider, c.Request.URL.Query())
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "OAUTH2_FAILED", "External login failed")
		return
	}

	profile, err := h.extractors.Extract(provider, attrs)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "OAUTH2_FAILED", "Unsupported provider or malformed profile")
		return
	}

	code, err := h.service.CompleteExternalLogin(c.Request.Context(), profile)
	if err != nil {
		h.respondTokenError(c, err, "OAUTH2_FAILED", "External login failed")
		return
	}

	target := fmt.Sprintf("%s?code=%s&expiresIn=%d",
		h.redirectURL, url.QueryEscape(code), h.service.AccessTTLSeconds())
	c.Redirect(http.StatusFound, target)
}

// GetMe returns the authenticated member's profile; it exists so the access
// token has a protected consumer.
func (h *Handler) GetMe(c *gin.Context) {
	memberIDAny, exists := c.Get("member_id")
	if !exists {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	member, err := h.service.GetCurrentMember(c.Request.Context(), memberIDAny.(int64))
	if err != nil {
		response.Error(c, http.StatusNotFound, "MEMBER_NOT_FOUND", "Member not found")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"member": MemberProfile{
		ID:       member.ID,
		Name:     member.Name,
		Email:    member.Email,
		Provider: member.Provider,
	}})
}

func (h *Handler) respondTokenError(c *gin.Context, err error, fallbackCode, fallbackMsg string) {
	switch {
	case errors.Is(err, ErrTokenExpired):
		response.Error(c, http.StatusUnauthorized, "TOKEN_EXPIRED", "Refresh token has expired")
	case errors.Is(err, ErrTokenInvalid):
		response.Error(c, http.StatusUnauthorized, "TOKEN_INVALID", "Token is malformed or badly signed")
	case errors.Is(err, ErrTokenBlacklisted):
		response.Error(c, http.StatusUnauthorized, "TOKEN_BLACKLISTED", "Refresh token has been revoked")
	case errors.Is(err, ErrRefreshTokenNotFound):
		response.Error(c, http.StatusNotFound, "REFRESH_TOKEN_NOT_FOUND", "Refresh token is unknown")
	case errors.Is(err, ErrMemberNotFound):
		response.Error(c, http.StatusNotFound, "MEMBER_NOT_FOUND", "Member not found")
	case errors.Is(err, ErrTokenConflict):
		response.Error(c, http.StatusServiceUnavailable, "TOKEN_CONFLICT", "Token collision, please retry")
	default:
		response.Error(c, http.StatusInternalServerError, fallbackCode, fallbackMsg)
	}
}

package middleware

import (
	"errors"
	"net/http"
	"strings"

	jwtsvc "memberhub/internal/pkg/jwt"
	"memberhub/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthRequired guards routes behind a Bearer access token. The lenient
// expiry check runs before the full verify so an expired token gets a
// distinct error code for client-side messaging.
func AuthRequired(tokens *jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.AbortError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing Authorization header")
			return
		}

		if !strings.HasPrefix(header, "Bearer ") {
			response.AbortError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid Authorization header")
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if tokenStr == "" {
			response.AbortError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Empty token")
			return
		}

		if tokens.IsExpired(tokenStr) {
			// The lenient check counts undecodable strings as expired; a full
			// verify keeps those in the invalid bucket.
			if _, err := tokens.Verify(tokenStr); !errors.Is(err, jwtsvc.ErrTokenExpired) {
				response.AbortError(c, http.StatusUnauthorized, "TOKEN_INVALID", "Invalid access token")
				return
			}
			response.AbortError(c, http.StatusUnauthorized, "TOKEN_EXPIRED", "Access token has expired")
			return
		}

		memberID, err := tokens.Verify(tokenStr)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "TOKEN_INVALID", "Invalid access token")
			return
		}

		c.Set("member_id", memberID)

		c.Next()
	}
}

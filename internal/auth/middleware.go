package auth

import (
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
)

// RequireAuth validates Firebase ID tokens and extracts user info. Requests
// without a valid token are rejected.
func RequireAuth(authClient *auth.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing authorization token"})
			c.Abort()
			return
		}

		decodedToken, err := authClient.VerifyIDToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid token"})
			c.Abort()
			return
		}

		setSession(c, decodedToken)
		c.Next()
	}
}

// OptionalAuth extracts user info when a valid token is present but lets
// anonymous requests through. Read endpoints and the live stream use this:
// browsing never requires a session, only writing does.
func OptionalAuth(authClient *auth.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.Next()
			return
		}

		decodedToken, err := authClient.VerifyIDToken(c.Request.Context(), token)
		if err != nil {
			// A bad token on an optional route degrades to anonymous.
			c.Next()
			return
		}

		setSession(c, decodedToken)
		c.Next()
	}
}

func setSession(c *gin.Context, token *auth.Token) {
	c.Set(CtxFirebaseUID, token.UID)

	if name, ok := token.Claims["name"].(string); ok {
		c.Set(CtxDisplayName, name)
	}
	if email, ok := token.Claims["email"].(string); ok {
		c.Set(CtxEmail, email)
	}
	if picture, ok := token.Claims["picture"].(string); ok {
		c.Set(CtxPhotoURL, picture)
	}
}

// extractToken extracts the Bearer token from the Authorization header. The
// websocket endpoint cannot set headers from the browser, so a token query
// parameter is accepted there as a fallback.
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return bearerToken[7:]
	}
	return strings.TrimSpace(c.Query("token"))
}

package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxFirebaseUID = "firebase_uid"
	CtxDisplayName = "display_name"
	CtxEmail       = "email"
	CtxPhotoURL    = "photo_url"
)

// UserFirebaseUID extracts the Firebase UID from the Gin context. Empty when
// the request is anonymous.
func UserFirebaseUID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxFirebaseUID))
}

// UserDisplayName extracts the display name claim, if any.
func UserDisplayName(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxDisplayName))
}

// UserEmail extracts the email claim, if any.
func UserEmail(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxEmail))
}

// UserPhotoURL extracts the picture claim, if any.
func UserPhotoURL(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxPhotoURL))
}

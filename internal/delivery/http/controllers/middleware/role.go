package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/mahmoodhamdi/sounds-api/internal/app_errors"
	"github.com/mahmoodhamdi/sounds-api/internal/delivery/http/i18n"
)

// RequireRoles lets the request through when the authenticated actor holds
// one of allowedRoles. It must run after AuthMiddleware.
func RequireRoles(allowedRoles ...string) gin.HandlerFunc {
	roleSet := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		roleSet[r] = struct{}{}
	}
	return func(c *gin.Context) {
		actor := Actor(c)
		if actor.UserID == uuid.Nil {
			abortWith(c, http.StatusUnauthorized, app_errors.ErrInvalidToken)
			return
		}
		if _, allowed := roleSet[actor.Role]; !allowed {
			abortWith(c, http.StatusForbidden, app_errors.ErrAdminAccessRequired)
			return
		}
		c.Next()
	}
}

// abortWith stops the chain with err localized to the negotiated language.
func abortWith(c *gin.Context, status int, err *app_errors.Error) {
	tag := language.English
	if v, ok := c.Get(i18n.LanguageCtx); ok {
		if t, ok := v.(language.Tag); ok {
			tag = t
		}
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error": i18n.Message(tag, err.Code, err.Message),
		"code":  err.Code,
	})
}

package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/mahmoodhamdi/sounds-api/internal/delivery/http/i18n"
)

// Language stores the negotiated response language on the context.
func Language() gin.HandlerFunc {
	return func(c *gin.Context) {
		tag := i18n.Negotiate(c.Query("lang"), c.GetHeader("Accept-Language"))
		c.Set(i18n.LanguageCtx, tag)
		c.Header("Content-Language", tag.String())
		c.Next()
	}
}

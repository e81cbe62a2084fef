package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/mahmoodhamdi/sounds-api/internal/app_errors"
	"github.com/mahmoodhamdi/sounds-api/internal/delivery/http/i18n"
	"github.com/mahmoodhamdi/sounds-api/pkg/logger"
)

// Status maps an error kind onto the HTTP status returned to clients.
func Status(err error) int {
	switch app_errors.KindOf(err) {
	case app_errors.KindNotFound:
		return http.StatusNotFound
	case app_errors.KindPermissionDenied:
		return http.StatusForbidden
	case app_errors.KindAlreadyExists, app_errors.KindConflict,
		app_errors.KindValidation, app_errors.KindPreconditionFailed:
		return http.StatusBadRequest
	case app_errors.KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as {"error", "code"} in the negotiated language. Server
// errors are logged and their cause is never exposed.
func Error(c *gin.Context, log logger.Log, err error) {
	status := Status(err)
	var appErr *app_errors.Error
	if !errors.As(err, &appErr) {
		appErr = app_errors.ErrStorage
	}

	if status >= http.StatusInternalServerError {
		log.ErrorErr("request failed", err, "method", c.Request.Method, "path", c.FullPath())
		_ = c.Error(err)
	}

	msg := appErr.Message
	if status < http.StatusInternalServerError && appErr.Kind == app_errors.KindValidation {
		msg = err.Error()
	}
	c.JSON(status, gin.H{
		"error": i18n.Message(tag(c), appErr.Code, msg),
		"code":  appErr.Code,
	})
}

// BadRequest reports a malformed request body or parameter.
func BadRequest(c *gin.Context, detail string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": i18n.Message(tag(c), app_errors.ErrInvalidInput.Code, detail),
		"code":  app_errors.ErrInvalidInput.Code,
	})
}

// ParamUUID parses a path parameter, writing a 400 on failure.
func ParamUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		BadRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func tag(c *gin.Context) language.Tag {
	if v, ok := c.Get(i18n.LanguageCtx); ok {
		if t, ok := v.(language.Tag); ok {
			return t
		}
	}
	return language.English
}

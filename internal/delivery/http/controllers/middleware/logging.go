package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mahmoodhamdi/sounds-api/pkg/logger"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDCtx    = "request_id"
)

// LoggingMiddleware tags each request with an id, taken from X-Request-ID
// when the caller sent one, and logs it once it has been served. Server
// errors log at error level and client errors at warn.
func LoggingMiddleware(log logger.Log) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDCtx, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		method := c.Request.Method
		path := c.Request.URL.Path
		if rawQuery := c.Request.URL.RawQuery; rawQuery != "" {
			path = fmt.Sprintf("%s?%s", path, rawQuery)
		}
		status := c.Writer.Status()

		reqLog := log.With("request_id", requestID)
		if actor := Actor(c); actor.UserID != uuid.Nil {
			reqLog = reqLog.With("user_id", actor.UserID.String())
		}

		msg := fmt.Sprintf("%s %s", method, path)
		args := []interface{}{
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		switch {
		case status >= http.StatusInternalServerError:
			reqLog.Error(msg, args...)
		case status >= http.StatusBadRequest:
			reqLog.Warn(msg, args...)
		default:
			reqLog.Info(msg, args...)
		}

		for _, ginErr := range c.Errors {
			reqLog.ErrorErr("HTTP request error", ginErr.Err, "status", status, "method", method, "path", path)
		}
	}
}

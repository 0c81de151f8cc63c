package liveserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const headerRequestID = "X-Request-ID"

// requestLogger returns a Gin middleware that:
//  1. Reads a request ID from X-Request-ID or generates one.
//  2. Echoes it in the response header.
//  3. Logs the completed request with status and latency.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(headerRequestID)
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Header(headerRequestID, reqID)

		c.Next()

		logger.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("client_ip", c.ClientIP()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}

// crossOriginGuard rejects state-changing browser requests from another
// origin, judged by Sec-Fetch-Site and then Origin. Safe methods and requests
// carrying neither header (curl, scripts) pass.
func crossOriginGuard(trusted []string, logger *slog.Logger, reject gin.HandlerFunc) gin.HandlerFunc {
	cop := http.NewCrossOriginProtection()
	for _, origin := range trusted {
		if err := cop.AddTrustedOrigin(origin); err != nil {
			logger.Warn("ignoring trusted origin", slog.String("origin", origin), slog.Any("error", err))
		}
	}
	return func(c *gin.Context) {
		if err := cop.Check(c.Request); err != nil {
			logger.Warn("cross-origin request rejected",
				slog.String("request_id", c.Writer.Header().Get(headerRequestID)),
				slog.String("method", c.Request.Method),
				slog.String("path", c.Request.URL.Path),
				slog.String("origin", c.GetHeader("Origin")),
				slog.String("sec_fetch_site", c.GetHeader("Sec-Fetch-Site")),
			)
			reject(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

package controller

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"log-query-translator/internal/util"
)

// RequestContext tags each request with an id and a request-scoped logger
// reachable through zerolog.Ctx.
func RequestContext() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		requestID := util.NewRequestID(ctx.GetHeader(util.RequestIDHeader))
		ctx.Header(util.RequestIDHeader, requestID)

		logger := log.With().Str("request_id", requestID).Logger()
		reqCtx := util.WithRequestID(ctx.Request.Context(), requestID)
		ctx.Request = ctx.Request.WithContext(logger.WithContext(reqCtx))

		ctx.Next()

		logger.Info().
			Str("method", ctx.Request.Method).
			Str("path", ctx.FullPath()).
			Int("status", ctx.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("Request handled")
	}
}

// pkg/middleware/logger.go

package middleware

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"rep-admin/pkg/contextkeys"
)

const HeaderRequestID = "X-Request-ID"

// RequestID берёт X-Request-ID из запроса или выпускает новый. Он же уходит на бэкенд.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(HeaderRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			c.Response().Header().Set(HeaderRequestID, id)
			ctx := context.WithValue(c.Request().Context(), contextkeys.RequestIDKey, id)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// RequestLogger пишет одну строку на запрос.
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("uri", req.RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("requestID", c.Response().Header().Get(HeaderRequestID)),
			}
			if c.Response().Status >= 500 {
				logger.Error("Запрос завершился ошибкой", fields...)
			} else {
				logger.Info("Запрос", fields...)
			}
			return nil
		}
	}
}

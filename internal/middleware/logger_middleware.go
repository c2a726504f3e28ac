// Package middleware 提供HTTP中间件
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/weiwangfds/pdftoolkit/internal/errors"
	"github.com/weiwangfds/pdftoolkit/internal/logger"
	"github.com/weiwangfds/pdftoolkit/internal/response"
)

// LoggerMiddleware 访问日志中间件
type LoggerMiddleware struct {
	logger *logrus.Logger
}

// NewLoggerMiddleware 创建访问日志中间件，使用全局日志实例
func NewLoggerMiddleware() *LoggerMiddleware {
	return &LoggerMiddleware{
		logger: logger.GetLogger(),
	}
}

// Logger 每个请求结束后记录一条访问日志
// 5xx 记为错误，4xx 记为警告
func (m *LoggerMiddleware) Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		entry := m.logger.WithFields(logrus.Fields{
			"status":     status,
			"latency":    time.Since(start),
			"client_ip":  c.ClientIP(),
			"method":     c.Request.Method,
			"path":       path,
			"raw_query":  raw,
			"size":       c.Writer.Size(),
			"request_id": c.GetString(response.RequestIDKey),
			"principal":  Principal(c),
		})
		if len(c.Errors) > 0 {
			entry = entry.WithField("error", c.Errors.String())
		}

		switch {
		case status >= 500:
			entry.Error("HTTP Request")
		case status >= 400:
			entry.Warn("HTTP Request")
		default:
			entry.Info("HTTP Request")
		}
	}
}

// Recovery 捕获处理器中的panic，返回统一的500响应
func (m *LoggerMiddleware) Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		m.logger.WithFields(logrus.Fields{
			"request_id": c.GetString(response.RequestIDKey),
			"path":       c.Request.URL.Path,
		}).Errorf("panic recovered: %v", recovered)
		response.AppError(c, errors.ErrInternalServerError)
	})
}

package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/weiwangfds/pdftoolkit/internal/auth"
	"github.com/weiwangfds/pdftoolkit/internal/errors"
	"github.com/weiwangfds/pdftoolkit/internal/logger"
	"github.com/weiwangfds/pdftoolkit/internal/response"
)

// PrincipalKey 上下文中保存用户身份的键
const PrincipalKey = "principal"

// AdminChecker 判断身份是否为管理员
type AdminChecker interface {
	IsAdmin(ctx context.Context, principal string) (bool, error)
}

// Auth 解析可选的 Bearer 令牌
// 没有令牌时按匿名请求继续，令牌无效时返回401
func Auth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			response.AppError(c, errors.ErrInvalidTokenError)
			return
		}

		principal, err := auth.ParseToken(strings.TrimSpace(token), secret)
		if err != nil {
			logger.WithFields(logger.Fields{
				"request_id": c.GetString(response.RequestIDKey),
				"error":      err.Error(),
			}).Debug("令牌校验失败")
			response.AppError(c, errors.ErrInvalidTokenError)
			return
		}
		c.Set(PrincipalKey, principal)
		c.Next()
	}
}

// Principal 返回当前请求的身份，匿名时为空
func Principal(c *gin.Context) string {
	return c.GetString(PrincipalKey)
}

// RequireAuth 要求已登录
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if Principal(c) == "" {
			response.AppError(c, errors.ErrAuthRequiredError)
			return
		}
		c.Next()
	}
}

// RequireAdmin 要求管理员身份
func RequireAdmin(checker AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := Principal(c)
		if principal == "" {
			response.AppError(c, errors.ErrAuthRequiredError)
			return
		}
		ok, err := checker.IsAdmin(c.Request.Context(), principal)
		if err != nil {
			response.AppError(c, err)
			return
		}
		if !ok {
			response.AppError(c, errors.ErrAdminRequiredError)
			return
		}
		c.Next()
	}
}

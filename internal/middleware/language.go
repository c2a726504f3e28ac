package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/weiwangfds/pdftoolkit/internal/i18n"
	"github.com/weiwangfds/pdftoolkit/internal/response"
)

// Language 确定响应语言
// 优先使用 lang 查询参数，其次是 Accept-Language 头
func Language() gin.HandlerFunc {
	return func(c *gin.Context) {
		tr := i18n.GetInstance()
		lang := tr.GetDefaultLanguage()
		if q := c.Query("lang"); q != "" {
			lang = tr.Normalize(q)
		} else if h := c.GetHeader("Accept-Language"); h != "" {
			lang = tr.ParseAcceptLanguage(h)
		}
		c.Set(response.LanguageKey, lang)
		c.Header("Content-Language", lang)
		c.Next()
	}
}

package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/weiwangfds/pdftoolkit/internal/errors"
	"github.com/weiwangfds/pdftoolkit/internal/i18n"
)

// 上下文键，由中间件写入
const (
	RequestIDKey = "request_id"
	LanguageKey  = "lang"
)

// Response 统一返回值结构体
// @Description API统一响应格式
type Response struct {
	// 状态码，0表示成功，非0表示失败
	Code int `json:"code" example:"0"`
	// 响应消息
	Message string `json:"message" example:"success"`
	// 稳定的错误键，仅失败时返回
	ErrorKey string `json:"error_key,omitempty" example:"INVALID_PAGE_RANGE"`
	// 响应数据
	Data interface{} `json:"data,omitempty"`
	// 请求ID，用于链路追踪
	RequestID string `json:"request_id,omitempty" example:"5b7c1f0e-2f1a-4d0c-9b7a-2b1f0f6c9e11"`
	// 时间戳
	Timestamp int64 `json:"timestamp" example:"1760832000"`
}

// PageData 分页数据结构体
// @Description 分页响应数据格式
type PageData struct {
	List       interface{} `json:"list"`
	Total      int64       `json:"total" example:"100"`
	Page       int         `json:"page" example:"1"`
	PageSize   int         `json:"page_size" example:"10"`
	TotalPages int         `json:"total_pages" example:"10"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	SuccessWithMessage(c, Translate(c, "success"), data)
}

// SuccessWithMessage 带消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:      0,
		Message:   message,
		Data:      data,
		RequestID: getRequestID(c),
		Timestamp: now().Unix(),
	})
}

// Created 201成功响应
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:      0,
		Message:   message,
		Data:      data,
		RequestID: getRequestID(c),
		Timestamp: now().Unix(),
	})
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, list interface{}, total int64, page, pageSize int) {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int(total) / pageSize
		if int(total)%pageSize > 0 {
			totalPages++
		}
	}

	Success(c, PageData{
		List:       list,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

// Error 错误响应，HTTP状态码由错误码推导
func Error(c *gin.Context, code int, message string) {
	abort(c, errors.HTTPStatus(errors.ErrorCode(code)), code, message, "")
}

// AppError 将错误转换为响应
// 应用错误按错误码和请求语言输出，其他错误视为内部错误
func AppError(c *gin.Context, err error) {
	if appErr, ok := errors.GetAppError(err); ok {
		if appErr.Internal() {
			// 原始错误交给访问日志记录
			_ = c.Error(err)
		}
		abort(c, errors.HTTPStatus(appErr.Code), int(appErr.Code), appErr.LocalizedMessage(Language(c)), appErr.Key())
		return
	}
	_ = c.Error(err)
	abort(c, http.StatusInternalServerError, int(errors.ErrInternalServer),
		errors.GetErrorMessageWithLang(errors.ErrInternalServer, Language(c)), errors.Key(errors.ErrInternalServer))
}

// BadRequest 400错误响应
func BadRequest(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, int(errors.ErrInvalidParams), message, errors.Key(errors.ErrInvalidParams))
}

// Unauthorized 401错误响应
func Unauthorized(c *gin.Context, message string) {
	abort(c, http.StatusUnauthorized, int(errors.ErrUnauthorized), message, errors.Key(errors.ErrUnauthorized))
}

// Forbidden 403错误响应
func Forbidden(c *gin.Context, message string) {
	abort(c, http.StatusForbidden, int(errors.ErrForbidden), message, errors.Key(errors.ErrForbidden))
}

// NotFound 404错误响应
func NotFound(c *gin.Context, message string) {
	abort(c, http.StatusNotFound, int(errors.ErrNotFound), message, errors.Key(errors.ErrNotFound))
}

// InternalServerError 500错误响应
func InternalServerError(c *gin.Context, message string) {
	abort(c, http.StatusInternalServerError, int(errors.ErrInternalServer), message, errors.Key(errors.ErrInternalServer))
}

func abort(c *gin.Context, status, code int, message, key string) {
	c.AbortWithStatusJSON(status, Response{
		Code:      code,
		Message:   message,
		ErrorKey:  key,
		RequestID: getRequestID(c),
		Timestamp: now().Unix(),
	})
}

// Language 获取当前请求语言
func Language(c *gin.Context) string {
	if v, ok := c.Get(LanguageKey); ok {
		if lang, ok := v.(string); ok && lang != "" {
			return lang
		}
	}
	return i18n.GetInstance().GetDefaultLanguage()
}

// Translate 按请求语言翻译提示语
func Translate(c *gin.Context, key string) string {
	return i18n.GetInstance().Translate(key, Language(c))
}

// getRequestID 获取请求ID
func getRequestID(c *gin.Context) string {
	if requestID, exists := c.Get(RequestIDKey); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}

// now 便于测试时替换
var now = time.Now

package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/weiwangfds/pdftoolkit/internal/i18n"
)

// ErrorCode 错误码类型
type ErrorCode int

// 定义错误码常量
const (
	// 通用错误码 (1000-1999)
	ErrSuccess            ErrorCode = 0    // 成功
	ErrInternalServer     ErrorCode = 1000 // 服务器内部错误
	ErrInvalidParams      ErrorCode = 1001 // 参数错误
	ErrUnauthorized       ErrorCode = 1002 // 未授权
	ErrForbidden          ErrorCode = 1003 // 禁止访问
	ErrNotFound           ErrorCode = 1004 // 资源未找到
	ErrTooManyRequests    ErrorCode = 1006 // 请求过于频繁
	ErrServiceUnavailable ErrorCode = 1007 // 服务不可用

	// 文件相关错误码 (2000-2999)
	ErrFileNotFound       ErrorCode = 2000 // 文件未找到
	ErrFileUploadFailed   ErrorCode = 2002 // 文件上传失败
	ErrFileDeleteFailed   ErrorCode = 2003 // 文件删除失败
	ErrFileReadFailed     ErrorCode = 2004 // 文件读取失败
	ErrFileSizeTooLarge   ErrorCode = 2006 // 文件大小超限
	ErrFileTypeNotAllowed ErrorCode = 2007 // 文件类型不允许
	ErrFileNameInvalid    ErrorCode = 2010 // 文件名无效

	// 存储相关错误码 (3000-3999)
	ErrStorageConfigNotFound       ErrorCode = 3000 // 存储配置未找到
	ErrStorageConfigInvalid        ErrorCode = 3001 // 存储配置无效
	ErrStorageConnectionFailed     ErrorCode = 3002 // 存储连接失败
	ErrStorageUploadFailed         ErrorCode = 3003 // 对象上传失败
	ErrStorageDownloadFailed       ErrorCode = 3004 // 对象下载失败
	ErrStorageDeleteFailed         ErrorCode = 3005 // 对象删除失败
	ErrStorageListFailed           ErrorCode = 3006 // 对象列表获取失败
	ErrStorageConfigInUse          ErrorCode = 3007 // 激活中的配置不可删除或禁用
	ErrStorageProviderNotSupported ErrorCode = 3008 // 存储提供商不支持

	// 数据库相关错误码 (4000-4999)
	ErrDatabaseConnection  ErrorCode = 4000 // 数据库连接错误
	ErrDatabaseQuery       ErrorCode = 4001 // 数据库查询错误
	ErrDatabaseInsert      ErrorCode = 4002 // 数据库插入错误
	ErrDatabaseUpdate      ErrorCode = 4003 // 数据库更新错误
	ErrDatabaseDelete      ErrorCode = 4004 // 数据库删除错误
	ErrDatabaseTransaction ErrorCode = 4005 // 数据库事务错误
	ErrRecordNotFound      ErrorCode = 4006 // 记录未找到
	ErrRecordAlreadyExists ErrorCode = 4007 // 记录已存在

	// 身份与权限错误码 (5000-5999)
	ErrAuthRequired   ErrorCode = 5000 // 需要登录
	ErrInvalidToken   ErrorCode = 5001 // 令牌无效或已过期
	ErrAdminRequired  ErrorCode = 5002 // 需要管理员权限
	ErrInvalidRole    ErrorCode = 5003 // 角色无效
	ErrProfileInvalid ErrorCode = 5004 // 用户资料无效

	// PDF工具错误码 (6000-6999)
	ErrNoFiles                  ErrorCode = 6000 // 未提供文件
	ErrMergeNeedsTwo            ErrorCode = 6001 // 合并至少需要两个文件
	ErrInvalidFileType          ErrorCode = 6002 // 文件类型不符合工具要求
	ErrInvalidPageRange         ErrorCode = 6003 // 页码范围无效
	ErrInvalidRotation          ErrorCode = 6004 // 旋转角度无效
	ErrPasswordRequired         ErrorCode = 6005 // 缺少密码
	ErrCurrentPasswordRequired  ErrorCode = 6006 // 缺少当前密码
	ErrIncorrectPassword        ErrorCode = 6007 // 密码错误
	ErrNotPasswordProtected     ErrorCode = 6008 // 文档未加密
	ErrAlreadyPasswordProtected ErrorCode = 6009 // 文档已加密
	ErrInvalidProtectMode       ErrorCode = 6010 // 保护模式无效
	ErrInvalidMarginNegative    ErrorCode = 6011 // 页边距为负
	ErrInvalidMarginTooLarge    ErrorCode = 6012 // 页边距超过页面
	ErrInvalidLayoutOption      ErrorCode = 6013 // 版式选项无效
	ErrNoWorksheets             ErrorCode = 6014 // 工作簿没有工作表
	ErrNoSheetsSelected         ErrorCode = 6015 // 未选择工作表
	ErrWorksheetNotFound        ErrorCode = 6016 // 工作表不存在
	ErrConversionUnavailable    ErrorCode = 6017 // 转换暂不可用
	ErrPDFProcessingFailed      ErrorCode = 6018 // PDF处理失败
	ErrImageProcessingFailed    ErrorCode = 6019 // 图片处理失败
	ErrSplitModeInvalid         ErrorCode = 6020 // 拆分模式无效

	// 广告与统计错误码 (7000-7999)
	ErrAdSenseConfigInvalid ErrorCode = 7000 // 广告配置无效
	ErrMetricsInvalid       ErrorCode = 7001 // 广告收益数据无效
	ErrDateRangeInvalid     ErrorCode = 7002 // 日期范围无效
)

// AppError 应用错误结构体
// @Description 应用程序统一错误格式
type AppError struct {
	// 错误码
	Code ErrorCode `json:"code"`
	// 错误消息
	Message string `json:"message"`
	// 详细错误信息
	Details string `json:"details,omitempty"`
	// 原始错误
	OriginalError error `json:"-"`
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%d] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 返回原始错误
func (e *AppError) Unwrap() error {
	return e.OriginalError
}

// Is 错误码相同即视为同一错误，支持 errors.Is(err, ErrIncorrectPasswordError)
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Key 返回稳定的字符串错误键，例如 INVALID_MARGIN_NEGATIVE
func (e *AppError) Key() string {
	return Key(e.Code)
}

// WithDetails 返回带详细信息的副本，预定义错误不会被修改
func (e *AppError) WithDetails(details string) *AppError {
	c := *e
	c.Details = details
	return &c
}

// WithDetailsf 格式化详细信息
func (e *AppError) WithDetailsf(format string, args ...interface{}) *AppError {
	return e.WithDetails(fmt.Sprintf(format, args...))
}

// WithOriginalError 返回带原始错误的副本
func (e *AppError) WithOriginalError(err error) *AppError {
	c := *e
	c.OriginalError = err
	if c.Details == "" && err != nil {
		c.Details = err.Error()
	}
	return &c
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewWithDetails 创建带详细信息的应用错误
func NewWithDetails(code ErrorCode, message string, details string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Wrap 包装原始错误
func Wrap(code ErrorCode, message string, err error) *AppError {
	appErr := &AppError{
		Code:          code,
		Message:       message,
		OriginalError: err,
	}
	if err != nil {
		appErr.Details = err.Error()
	}
	return appErr
}

// Is 透传标准库 errors.Is，避免调用方同时导入两个 errors 包
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// IsAppError 判断是否为应用错误
func IsAppError(err error) bool {
	_, ok := GetAppError(err)
	return ok
}

// GetAppError 从错误链中提取应用错误
func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HTTPStatus 错误码对应的HTTP状态码
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrSuccess:
		return http.StatusOK
	case ErrUnauthorized, ErrAuthRequired, ErrInvalidToken:
		return http.StatusUnauthorized
	case ErrForbidden, ErrAdminRequired:
		return http.StatusForbidden
	case ErrNotFound, ErrFileNotFound, ErrRecordNotFound, ErrStorageConfigNotFound:
		return http.StatusNotFound
	case ErrRecordAlreadyExists:
		return http.StatusConflict
	case ErrFileSizeTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrTooManyRequests:
		return http.StatusTooManyRequests
	case ErrConversionUnavailable:
		return http.StatusNotImplemented
	case ErrServiceUnavailable:
		return http.StatusServiceUnavailable
	}
	switch {
	case code >= 6000 && code < 8000 && code != ErrPDFProcessingFailed && code != ErrImageProcessingFailed:
		return http.StatusBadRequest
	case code == ErrInvalidParams || code == ErrInvalidRole || code == ErrProfileInvalid ||
		code == ErrFileTypeNotAllowed || code == ErrFileNameInvalid ||
		code == ErrStorageConfigInvalid || code == ErrStorageConfigInUse || code == ErrStorageProviderNotSupported:
		return http.StatusBadRequest
	case code == ErrPDFProcessingFailed || code == ErrImageProcessingFailed:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// 预定义的常用错误
var (
	// 通用错误
	ErrInternalServerError = New(ErrInternalServer, GetErrorMessage(ErrInternalServer))
	ErrInvalidParameters   = New(ErrInvalidParams, GetErrorMessage(ErrInvalidParams))
	ErrUnauthorizedAccess  = New(ErrUnauthorized, GetErrorMessage(ErrUnauthorized))
	ErrForbiddenAccess     = New(ErrForbidden, GetErrorMessage(ErrForbidden))
	ErrResourceNotFound    = New(ErrNotFound, GetErrorMessage(ErrNotFound))

	// 文件相关错误
	ErrFileNotFoundError       = New(ErrFileNotFound, GetErrorMessage(ErrFileNotFound))
	ErrFileUploadFailedError   = New(ErrFileUploadFailed, GetErrorMessage(ErrFileUploadFailed))
	ErrFileDeleteFailedError   = New(ErrFileDeleteFailed, GetErrorMessage(ErrFileDeleteFailed))
	ErrFileReadFailedError     = New(ErrFileReadFailed, GetErrorMessage(ErrFileReadFailed))
	ErrFileSizeTooLargeError   = New(ErrFileSizeTooLarge, GetErrorMessage(ErrFileSizeTooLarge))
	ErrFileTypeNotAllowedError = New(ErrFileTypeNotAllowed, GetErrorMessage(ErrFileTypeNotAllowed))
	ErrFileNameInvalidError    = New(ErrFileNameInvalid, GetErrorMessage(ErrFileNameInvalid))

	// 存储相关错误
	ErrStorageConfigNotFoundError       = New(ErrStorageConfigNotFound, GetErrorMessage(ErrStorageConfigNotFound))
	ErrStorageConfigInvalidError        = New(ErrStorageConfigInvalid, GetErrorMessage(ErrStorageConfigInvalid))
	ErrStorageConnectionFailedError     = New(ErrStorageConnectionFailed, GetErrorMessage(ErrStorageConnectionFailed))
	ErrStorageUploadFailedError         = New(ErrStorageUploadFailed, GetErrorMessage(ErrStorageUploadFailed))
	ErrStorageDownloadFailedError       = New(ErrStorageDownloadFailed, GetErrorMessage(ErrStorageDownloadFailed))
	ErrStorageDeleteFailedError         = New(ErrStorageDeleteFailed, GetErrorMessage(ErrStorageDeleteFailed))
	ErrStorageListFailedError           = New(ErrStorageListFailed, GetErrorMessage(ErrStorageListFailed))
	ErrStorageConfigInUseError          = New(ErrStorageConfigInUse, GetErrorMessage(ErrStorageConfigInUse))
	ErrStorageProviderNotSupportedError = New(ErrStorageProviderNotSupported, GetErrorMessage(ErrStorageProviderNotSupported))

	// 数据库相关错误
	ErrDatabaseQueryError       = New(ErrDatabaseQuery, GetErrorMessage(ErrDatabaseQuery))
	ErrDatabaseInsertError      = New(ErrDatabaseInsert, GetErrorMessage(ErrDatabaseInsert))
	ErrDatabaseUpdateError      = New(ErrDatabaseUpdate, GetErrorMessage(ErrDatabaseUpdate))
	ErrDatabaseDeleteError      = New(ErrDatabaseDelete, GetErrorMessage(ErrDatabaseDelete))
	ErrRecordNotFoundError      = New(ErrRecordNotFound, GetErrorMessage(ErrRecordNotFound))
	ErrRecordAlreadyExistsError = New(ErrRecordAlreadyExists, GetErrorMessage(ErrRecordAlreadyExists))

	// 身份与权限错误
	ErrAuthRequiredError   = New(ErrAuthRequired, GetErrorMessage(ErrAuthRequired))
	ErrInvalidTokenError   = New(ErrInvalidToken, GetErrorMessage(ErrInvalidToken))
	ErrAdminRequiredError  = New(ErrAdminRequired, GetErrorMessage(ErrAdminRequired))
	ErrInvalidRoleError    = New(ErrInvalidRole, GetErrorMessage(ErrInvalidRole))
	ErrProfileInvalidError = New(ErrProfileInvalid, GetErrorMessage(ErrProfileInvalid))

	// PDF工具错误
	ErrNoFilesError                  = New(ErrNoFiles, GetErrorMessage(ErrNoFiles))
	ErrMergeNeedsTwoError            = New(ErrMergeNeedsTwo, GetErrorMessage(ErrMergeNeedsTwo))
	ErrInvalidFileTypeError          = New(ErrInvalidFileType, GetErrorMessage(ErrInvalidFileType))
	ErrInvalidPageRangeError         = New(ErrInvalidPageRange, GetErrorMessage(ErrInvalidPageRange))
	ErrInvalidRotationError          = New(ErrInvalidRotation, GetErrorMessage(ErrInvalidRotation))
	ErrPasswordRequiredError         = New(ErrPasswordRequired, GetErrorMessage(ErrPasswordRequired))
	ErrCurrentPasswordRequiredError  = New(ErrCurrentPasswordRequired, GetErrorMessage(ErrCurrentPasswordRequired))
	ErrIncorrectPasswordError        = New(ErrIncorrectPassword, GetErrorMessage(ErrIncorrectPassword))
	ErrNotPasswordProtectedError     = New(ErrNotPasswordProtected, GetErrorMessage(ErrNotPasswordProtected))
	ErrAlreadyPasswordProtectedError = New(ErrAlreadyPasswordProtected, GetErrorMessage(ErrAlreadyPasswordProtected))
	ErrInvalidProtectModeError       = New(ErrInvalidProtectMode, GetErrorMessage(ErrInvalidProtectMode))
	ErrInvalidMarginNegativeError    = New(ErrInvalidMarginNegative, GetErrorMessage(ErrInvalidMarginNegative))
	ErrInvalidMarginTooLargeError    = New(ErrInvalidMarginTooLarge, GetErrorMessage(ErrInvalidMarginTooLarge))
	ErrInvalidLayoutOptionError      = New(ErrInvalidLayoutOption, GetErrorMessage(ErrInvalidLayoutOption))
	ErrNoWorksheetsError             = New(ErrNoWorksheets, GetErrorMessage(ErrNoWorksheets))
	ErrNoSheetsSelectedError         = New(ErrNoSheetsSelected, GetErrorMessage(ErrNoSheetsSelected))
	ErrWorksheetNotFoundError        = New(ErrWorksheetNotFound, GetErrorMessage(ErrWorksheetNotFound))
	ErrConversionUnavailableError    = New(ErrConversionUnavailable, GetErrorMessage(ErrConversionUnavailable))
	ErrPDFProcessingFailedError      = New(ErrPDFProcessingFailed, GetErrorMessage(ErrPDFProcessingFailed))
	ErrImageProcessingFailedError    = New(ErrImageProcessingFailed, GetErrorMessage(ErrImageProcessingFailed))
	ErrSplitModeInvalidError         = New(ErrSplitModeInvalid, GetErrorMessage(ErrSplitModeInvalid))

	// 广告与统计错误
	ErrAdSenseConfigInvalidError = New(ErrAdSenseConfigInvalid, GetErrorMessage(ErrAdSenseConfigInvalid))
	ErrMetricsInvalidError       = New(ErrMetricsInvalid, GetErrorMessage(ErrMetricsInvalid))
	ErrDateRangeInvalidError     = New(ErrDateRangeInvalid, GetErrorMessage(ErrDateRangeInvalid))
)

// 错误码到i18n键的映射
var errorCodeToKeyMap = map[ErrorCode]string{
	ErrSuccess:            "success",
	ErrInternalServer:     "internal_server_error",
	ErrInvalidParams:      "invalid_params",
	ErrUnauthorized:       "unauthorized",
	ErrForbidden:          "forbidden",
	ErrNotFound:           "not_found",
	ErrTooManyRequests:    "too_many_requests",
	ErrServiceUnavailable: "service_unavailable",

	ErrFileNotFound:       "file_not_found",
	ErrFileUploadFailed:   "file_upload_failed",
	ErrFileDeleteFailed:   "file_delete_failed",
	ErrFileReadFailed:     "file_read_failed",
	ErrFileSizeTooLarge:   "file_size_too_large",
	ErrFileTypeNotAllowed: "file_type_not_allowed",
	ErrFileNameInvalid:    "file_name_invalid",

	ErrStorageConfigNotFound:       "storage_config_not_found",
	ErrStorageConfigInvalid:        "storage_config_invalid",
	ErrStorageConnectionFailed:     "storage_connection_failed",
	ErrStorageUploadFailed:         "storage_upload_failed",
	ErrStorageDownloadFailed:       "storage_download_failed",
	ErrStorageDeleteFailed:         "storage_delete_failed",
	ErrStorageListFailed:           "storage_list_failed",
	ErrStorageConfigInUse:          "storage_config_in_use",
	ErrStorageProviderNotSupported: "storage_provider_not_supported",

	ErrDatabaseConnection:  "database_connection",
	ErrDatabaseQuery:       "database_query",
	ErrDatabaseInsert:      "database_insert",
	ErrDatabaseUpdate:      "database_update",
	ErrDatabaseDelete:      "database_delete",
	ErrDatabaseTransaction: "database_transaction",
	ErrRecordNotFound:      "record_not_found",
	ErrRecordAlreadyExists: "record_already_exists",

	ErrAuthRequired:   "auth_required",
	ErrInvalidToken:   "invalid_token",
	ErrAdminRequired:  "admin_required",
	ErrInvalidRole:    "invalid_role",
	ErrProfileInvalid: "profile_invalid",

	ErrNoFiles:                  "no_files",
	ErrMergeNeedsTwo:            "merge_needs_two",
	ErrInvalidFileType:          "invalid_file_type",
	ErrInvalidPageRange:         "invalid_page_range",
	ErrInvalidRotation:          "invalid_rotation",
	ErrPasswordRequired:         "password_required",
	ErrCurrentPasswordRequired:  "current_password_required",
	ErrIncorrectPassword:        "incorrect_password",
	ErrNotPasswordProtected:     "not_password_protected",
	ErrAlreadyPasswordProtected: "already_password_protected",
	ErrInvalidProtectMode:       "invalid_protect_mode",
	ErrInvalidMarginNegative:    "invalid_margin_negative",
	ErrInvalidMarginTooLarge:    "invalid_margin_too_large",
	ErrInvalidLayoutOption:      "invalid_layout_option",
	ErrNoWorksheets:             "no_worksheets",
	ErrNoSheetsSelected:         "no_sheets_selected",
	ErrWorksheetNotFound:        "worksheet_not_found",
	ErrConversionUnavailable:    "conversion_unavailable",
	ErrPDFProcessingFailed:      "pdf_processing_failed",
	ErrImageProcessingFailed:    "image_processing_failed",
	ErrSplitModeInvalid:         "split_mode_invalid",

	ErrAdSenseConfigInvalid: "adsense_config_invalid",
	ErrMetricsInvalid:       "metrics_invalid",
	ErrDateRangeInvalid:     "date_range_invalid",
}

// Key 返回错误码对应的大写错误键
func Key(code ErrorCode) string {
	key, ok := errorCodeToKeyMap[code]
	if !ok {
		key = "unknown_error"
	}
	return strings.ToUpper(key)
}

// GetErrorMessage 根据错误码获取错误消息（使用默认语言）
func GetErrorMessage(code ErrorCode) string {
	return GetErrorMessageWithLang(code, i18n.GetInstance().GetDefaultLanguage())
}

// GetErrorMessageWithLang 根据错误码和语言获取错误消息
// @Param lang query string true "语言代码，如zh-CN、en-US、es-ES"
func GetErrorMessageWithLang(code ErrorCode, lang string) string {
	key, exists := errorCodeToKeyMap[code]
	if !exists {
		key = "unknown_error"
	}
	return i18n.GetInstance().Translate(key, lang)
}

// Internal 服务端内部错误（数据库、存储等），详细信息只写日志
func (e *AppError) Internal() bool {
	return HTTPStatus(e.Code) == http.StatusInternalServerError
}

// LocalizedMessage 返回错误在指定语言下的消息
// 内部错误不附带详细信息，避免驱动和SDK的错误文本返回给客户端
func (e *AppError) LocalizedMessage(lang string) string {
	msg := GetErrorMessageWithLang(e.Code, lang)
	if e.Details != "" && !e.Internal() {
		return msg + ": " + e.Details
	}
	return msg
}

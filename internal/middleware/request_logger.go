package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/weiwangfds/pdftoolkit/internal/logger"
	"github.com/weiwangfds/pdftoolkit/internal/response"
)

// RequestLogEntry 详细请求日志条目
// 包含请求头、JSON请求体和JSON响应体，文件内容不记录
type RequestLogEntry struct {
	RequestID string `json:"request_id"`
	Principal string `json:"principal,omitempty"`

	Method    string            `json:"method"`
	Path      string            `json:"path"`
	Query     map[string]string `json:"query,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
	Body      interface{}       `json:"body,omitempty"`
	ClientIP  string            `json:"client_ip"`
	UserAgent string            `json:"user_agent"`

	StatusCode   int         `json:"status_code"`
	ResponseBody interface{} `json:"response_body,omitempty"`
	ResponseSize int         `json:"response_size"`

	StartTime  string `json:"start_time"`
	DurationMs int64  `json:"duration_ms"`

	Error string `json:"error,omitempty"`
}

// responseWriter 捕获JSON响应体
type responseWriter struct {
	gin.ResponseWriter
	body    *bytes.Buffer
	maxSize int
}

// Write 只缓存不超过上限的文本响应，PDF和压缩包直接透传
func (w *responseWriter) Write(b []byte) (int, error) {
	if isJSON(w.Header().Get("Content-Type")) && w.body.Len()+len(b) <= w.maxSize {
		w.body.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

// RequestLoggerConfig 详细请求日志配置
type RequestLoggerConfig struct {
	Enabled         bool     // 是否启用
	SkipPaths       []string // 跳过记录的路径
	MaxBodySize     int      // 请求体和响应体最多记录的字节数
	IncludeHeaders  bool     // 是否包含请求头
	IncludeBody     bool     // 是否包含请求体
	IncludeResponse bool     // 是否包含响应体
}

// DefaultRequestLoggerConfig 默认只在 gin debug 模式下启用
func DefaultRequestLoggerConfig() *RequestLoggerConfig {
	return &RequestLoggerConfig{
		Enabled:         gin.Mode() == gin.DebugMode,
		SkipPaths:       []string{"/health", "/favicon.ico"},
		MaxBodySize:     64 * 1024,
		IncludeHeaders:  true,
		IncludeBody:     true,
		IncludeResponse: true,
	}
}

// 记录日志前需要隐藏的请求头和字段
var (
	sensitiveHeaders = map[string]bool{"Authorization": true, "Cookie": true}
	sensitiveFields  = map[string]bool{"password": true, "current_password": true, "secret_key": true}
)

// RequestLogger 详细请求日志中间件，用于开发调试
func RequestLogger(config ...*RequestLoggerConfig) gin.HandlerFunc {
	cfg := DefaultRequestLoggerConfig()
	if len(config) > 0 && config[0] != nil {
		cfg = config[0]
	}

	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
			maxSize:        cfg.MaxBodySize,
		}
		c.Writer = writer

		var body interface{}
		if cfg.IncludeBody && isJSON(c.GetHeader("Content-Type")) {
			body = readRequestBody(c, cfg.MaxBodySize)
		}

		c.Next()

		entry := &RequestLogEntry{
			RequestID:    c.GetString(response.RequestIDKey),
			Principal:    Principal(c),
			Method:       c.Request.Method,
			Path:         c.Request.URL.Path,
			Query:        flattenQuery(c),
			Body:         body,
			ClientIP:     c.ClientIP(),
			UserAgent:    c.Request.UserAgent(),
			StatusCode:   writer.Status(),
			ResponseSize: writer.Size(),
			StartTime:    start.Format(time.RFC3339),
			DurationMs:   time.Since(start).Milliseconds(),
		}
		if cfg.IncludeHeaders {
			entry.Headers = extractHeaders(c)
		}
		if cfg.IncludeResponse && writer.body.Len() > 0 {
			entry.ResponseBody = parseJSON(writer.body.Bytes())
		}
		if len(c.Errors) > 0 {
			entry.Error = c.Errors.String()
		}
		logRequestEntry(entry)
	}
}

func isJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "json")
}

// readRequestBody 读取不超过 maxSize 的请求体并还原，超出部分原样保留给后续处理器
func readRequestBody(c *gin.Context, maxSize int) interface{} {
	if c.Request.Body == nil {
		return nil
	}
	head, err := io.ReadAll(io.LimitReader(c.Request.Body, int64(maxSize)))
	if err != nil {
		return nil
	}
	c.Request.Body = readCloser{
		Reader: io.MultiReader(bytes.NewReader(head), c.Request.Body),
		Closer: c.Request.Body,
	}
	return redact(parseJSON(head))
}

type readCloser struct {
	io.Reader
	io.Closer
}

func parseJSON(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(b, &v); err == nil {
		return v
	}
	return string(b)
}

// redact 隐藏顶层的敏感字段
func redact(v interface{}) interface{} {
	m, ok := v.(map[string]interface{})
	if !ok {
		return v
	}
	for k := range m {
		if sensitiveFields[strings.ToLower(k)] {
			m[k] = "***"
		}
	}
	return m
}

func flattenQuery(c *gin.Context) map[string]string {
	values := c.Request.URL.Query()
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

func extractHeaders(c *gin.Context) map[string]string {
	out := make(map[string]string, len(c.Request.Header))
	for k, v := range c.Request.Header {
		if len(v) == 0 {
			continue
		}
		if sensitiveHeaders[k] {
			out[k] = "***"
			continue
		}
		out[k] = v[0]
	}
	return out
}

// logRequestEntry 按状态码选择日志级别
func logRequestEntry(entry *RequestLogEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		logger.Errorf("序列化请求日志失败: %v", err)
		return
	}
	l := logger.WithFields(logger.Fields{"type": "request_log", "request_id": entry.RequestID})
	switch {
	case entry.StatusCode >= 500:
		l.Errorf("%s %s - %d (%dms) | %s", entry.Method, entry.Path, entry.StatusCode, entry.DurationMs, data)
	case entry.StatusCode >= 400:
		l.Warnf("%s %s - %d (%dms) | %s", entry.Method, entry.Path, entry.StatusCode, entry.DurationMs, data)
	default:
		l.Debugf("%s %s - %d (%dms) | %s", entry.Method, entry.Path, entry.StatusCode, entry.DurationMs, data)
	}
}

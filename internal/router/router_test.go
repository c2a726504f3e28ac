package router

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwangfds/pdftoolkit/config"
	"github.com/weiwangfds/pdftoolkit/internal/auth"
	"github.com/weiwangfds/pdftoolkit/internal/database"
	"github.com/weiwangfds/pdftoolkit/internal/handler"
	"github.com/weiwangfds/pdftoolkit/internal/pdftool"
	"github.com/weiwangfds/pdftoolkit/internal/response"
)

const testSecret = "router-test-secret"

type testServer struct {
	t      *testing.T
	engine http.Handler
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{
		Server:   config.ServerConfig{Mode: "test"},
		Database: config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"},
		File: config.FileConfig{
			StoragePath:       t.TempDir(),
			MaxFileSize:       10 << 20,
			AllowedExtensions: []string{"*"},
		},
		Auth: config.AuthConfig{
			JWTSecret:       testSecret,
			TokenTTL:        time.Hour,
			AdminPrincipals: []string{"root"},
		},
		Tools: config.ToolsConfig{
			MaxUploadSize:           20 << 20,
			MaxFiles:                10,
			DefaultExcelOrientation: "landscape",
			DefaultImageMarginMM:    10,
		},
	}
	db, err := database.Init(cfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	r, err := NewRouter(db, cfg)
	require.NoError(t, err)
	return &testServer{t: t, engine: r.GetEngine()}
}

func token(t *testing.T, principal string) string {
	t.Helper()
	tok, err := auth.GenerateToken(principal, []byte(testSecret), time.Hour)
	require.NoError(t, err)
	return tok
}

type upload struct {
	field, name, contentType string
	data                     []byte
}

type request struct {
	method, path string
	principal    string
	json         interface{}
	files        []upload
	fields       map[string][]string
	header       map[string]string
}

func (s *testServer) do(req request) *httptest.ResponseRecorder {
	s.t.Helper()
	var body bytes.Buffer
	contentType := ""
	switch {
	case req.files != nil || req.fields != nil:
		mw := multipart.NewWriter(&body)
		for _, f := range req.files {
			h := make(map[string][]string)
			h["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.name)}
			if f.contentType != "" {
				h["Content-Type"] = []string{f.contentType}
			}
			part, err := mw.CreatePart(h)
			require.NoError(s.t, err)
			_, err = part.Write(f.data)
			require.NoError(s.t, err)
		}
		for k, values := range req.fields {
			for _, v := range values {
				require.NoError(s.t, mw.WriteField(k, v))
			}
		}
		require.NoError(s.t, mw.Close())
		contentType = mw.FormDataContentType()
	case req.json != nil:
		require.NoError(s.t, json.NewEncoder(&body).Encode(req.json))
		contentType = "application/json"
	}

	r := httptest.NewRequest(req.method, req.path, &body)
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	if req.principal != "" {
		r.Header.Set("Authorization", "Bearer "+token(s.t, req.principal))
	}
	for k, v := range req.header {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) response.Response {
	t.Helper()
	var resp response.Response
	if data != nil {
		resp.Data = data
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func samplePDF(t *testing.T, pages int) []byte {
	t.Helper()
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	for i := 1; i <= pages; i++ {
		pdf.AddPage()
		pdf.Text(20, 20, fmt.Sprintf("page %d", i))
	}
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

func pageCount(t *testing.T, data []byte) int {
	t.Helper()
	n, err := pdftool.PageCount(context.Background(), pdftool.Input{Name: "x.pdf", Data: data})
	require.NoError(t, err)
	return n
}

func TestSystemEndpoints(t *testing.T) {
	s := setupServer(t)

	w := s.do(request{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = s.do(request{method: http.MethodGet, path: "/api/v1/info"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(request{method: http.MethodGet, path: "/api/v1/db/status"})
	require.Equal(t, http.StatusOK, w.Code)
	var status map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, float64(2), status["migration_version"])
}

func TestToolEndpoints(t *testing.T) {
	s := setupServer(t)

	t.Run("匿名合并", func(t *testing.T) {
		w := s.do(request{method: http.MethodPost, path: "/api/v1/tools/merge", files: []upload{
			{"files", "a.pdf", "application/pdf", samplePDF(t, 2)},
			{"files", "b.pdf", "application/pdf", samplePDF(t, 3)},
		}})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "merged.pdf")
		assert.Equal(t, 5, pageCount(t, w.Body.Bytes()))
	})

	t.Run("合并只有一个文件", func(t *testing.T) {
		w := s.do(request{method: http.MethodPost, path: "/api/v1/tools/merge", files: []upload{
			{"files", "a.pdf", "application/pdf", samplePDF(t, 1)},
		}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "MERGE_NEEDS_TWO", decode(t, w, nil).ErrorKey)
	})

	t.Run("逐页拆分返回zip", func(t *testing.T) {
		w := s.do(request{method: http.MethodPost, path: "/api/v1/tools/split",
			files:  []upload{{"file", "doc.pdf", "application/pdf", samplePDF(t, 3)}},
			fields: map[string][]string{"mode": {"per-page"}},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))

		zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
		require.NoError(t, err)
		require.Len(t, zr.File, 3)
		assert.Equal(t, "doc_page_1.pdf", zr.File[0].Name)
	})

	t.Run("范围无效时按语言返回错误", func(t *testing.T) {
		w := s.do(request{method: http.MethodPost, path: "/api/v1/tools/split",
			files:  []upload{{"file", "doc.pdf", "application/pdf", samplePDF(t, 3)}},
			fields: map[string][]string{"mode": {"range"}, "start_page": {"5"}},
			header: map[string]string{"Accept-Language": "zh-CN"},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode(t, w, nil)
		assert.Equal(t, "INVALID_PAGE_RANGE", resp.ErrorKey)
		assert.True(t, strings.HasPrefix(resp.Message, "页码范围无效"), resp.Message)
	})

	t.Run("旋转角度无效", func(t *testing.T) {
		w := s.do(request{method: http.MethodPost, path: "/api/v1/tools/rotate",
			files:  []upload{{"file", "doc.pdf", "application/pdf", samplePDF(t, 1)}},
			fields: map[string][]string{"angle": {"45"}},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_ROTATION", decode(t, w, nil).ErrorKey)
	})

	t.Run("页边距为负", func(t *testing.T) {
		w := s.do(request{method: http.MethodPost, path: "/api/v1/tools/image-to-pdf",
			files:  []upload{{"files", "a.png", "image/png", []byte("x")}},
			fields: map[string][]string{"margin_mm": {"-5"}},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_MARGIN_NEGATIVE", decode(t, w, nil).ErrorKey)
	})

	t.Run("Word转换不可用", func(t *testing.T) {
		w := s.do(request{method: http.MethodPost, path: "/api/v1/tools/word-to-pdf",
			files: []upload{{"file", "a.docx", "", []byte("PK")}},
		})
		assert.Equal(t, http.StatusNotImplemented, w.Code)
		assert.Equal(t, "CONVERSION_UNAVAILABLE", decode(t, w, nil).ErrorKey)
	})

	t.Run("没有文件", func(t *testing.T) {
		w := s.do(request{method: http.MethodPost, path: "/api/v1/tools/compress", fields: map[string][]string{"x": {"1"}}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "NO_FILES", decode(t, w, nil).ErrorKey)
	})
}

func TestSaveToolResult(t *testing.T) {
	s := setupServer(t)
	files := []upload{{"file", "doc.pdf", "application/pdf", samplePDF(t, 2)}}

	t.Run("匿名保存需要登录", func(t *testing.T) {
		w := s.do(request{method: http.MethodPost, path: "/api/v1/tools/compress?save=true", files: files})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("保存后可在文件列表中找到", func(t *testing.T) {
		w := s.do(request{method: http.MethodPost, path: "/api/v1/tools/compress?save=true", files: files, principal: "alice"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		fileID := w.Header().Get(handler.FileIDHeader)
		require.NotEmpty(t, fileID)
		result := w.Body.Bytes()

		w = s.do(request{method: http.MethodGet, path: "/api/v1/files/" + fileID, principal: "alice"})
		require.Equal(t, http.StatusOK, w.Code)
		var meta database.FileMetadata
		decode(t, w, &meta)
		assert.Equal(t, "doc_compressed.pdf", meta.FileName)
		assert.Equal(t, int64(len(result)), meta.FileSize)

		w = s.do(request{method: http.MethodGet, path: "/api/v1/files/" + fileID + "/download", principal: "alice"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, result, w.Body.Bytes())

		// 其他用户看不到
		w = s.do(request{method: http.MethodGet, path: "/api/v1/files/" + fileID, principal: "bob"})
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = s.do(request{method: http.MethodDelete, path: "/api/v1/files/" + fileID, principal: "alice"})
		assert.Equal(t, http.StatusOK, w.Code)
		w = s.do(request{method: http.MethodGet, path: "/api/v1/files/" + fileID, principal: "alice"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestFileEndpoints(t *testing.T) {
	s := setupServer(t)

	w := s.do(request{method: http.MethodGet, path: "/api/v1/files"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	for i := 0; i < 3; i++ {
		w = s.do(request{method: http.MethodPost, path: "/api/v1/files", principal: "alice",
			files: []upload{{"file", fmt.Sprintf("n%d.txt", i), "text/plain", []byte(strings.Repeat("x", i+1))}}})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = s.do(request{method: http.MethodGet, path: "/api/v1/files?page=1&page_size=2", principal: "alice"})
	require.Equal(t, http.StatusOK, w.Code)
	var page response.PageData
	decode(t, w, &page)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)

	w = s.do(request{method: http.MethodGet, path: "/api/v1/files/stats", principal: "alice"})
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		TotalFiles int64 `json:"total_files"`
		TotalSize  int64 `json:"total_size"`
	}
	decode(t, w, &stats)
	assert.Equal(t, int64(3), stats.TotalFiles)
	assert.Equal(t, int64(6), stats.TotalSize)
}

func TestUserEndpoints(t *testing.T) {
	s := setupServer(t)

	var role map[string]string
	w := s.do(request{method: http.MethodGet, path: "/api/v1/users/me/role"})
	decode(t, w, &role)
	assert.Equal(t, "guest", role["role"])

	w = s.do(request{method: http.MethodPut, path: "/api/v1/users/me/profile", principal: "alice", json: map[string]string{"name": "  Alice  "}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(request{method: http.MethodGet, path: "/api/v1/users/alice/profile", principal: "root"})
	require.Equal(t, http.StatusOK, w.Code)
	var profile database.UserProfile
	decode(t, w, &profile)
	assert.Equal(t, "Alice", profile.Name)

	w = s.do(request{method: http.MethodGet, path: "/api/v1/users/alice/profile", principal: "bob"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(request{method: http.MethodPut, path: "/api/v1/admin/users/bob/role", principal: "alice", json: map[string]string{"role": "admin"}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(request{method: http.MethodPut, path: "/api/v1/admin/users/bob/role", principal: "root", json: map[string]string{"role": "superuser"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w, nil).Message, "role: oneof=admin user guest")

	w = s.do(request{method: http.MethodPut, path: "/api/v1/admin/users/bob/role", principal: "root", json: map[string]string{"role": "admin"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var isAdmin map[string]bool
	w = s.do(request{method: http.MethodGet, path: "/api/v1/users/me/is-admin", principal: "bob"})
	decode(t, w, &isAdmin)
	assert.True(t, isAdmin["is_admin"])
}

func TestAdSenseAndTraffic(t *testing.T) {
	s := setupServer(t)

	cfg := map[string]interface{}{
		"publisher_id":         "ca-pub-123",
		"header_ad_unit_id":    "111",
		"enable_header_banner": true,
	}
	w := s.do(request{method: http.MethodPut, path: "/api/v1/adsense/config", principal: "alice", json: cfg})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(request{method: http.MethodPut, path: "/api/v1/adsense/config", principal: "root", json: cfg})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got database.AdSenseConfig
	w = s.do(request{method: http.MethodGet, path: "/api/v1/adsense/config"})
	decode(t, w, &got)
	assert.Equal(t, "ca-pub-123", got.PublisherID)
	assert.True(t, got.EnableHeaderBanner)

	for _, m := range []map[string]interface{}{
		{"date": "2026-10-01", "impressions": 100, "clicks": 4, "revenue": 1.5},
		{"date": "2026-10-02", "impressions": 50, "clicks": 1, "revenue": 0.5},
	} {
		w = s.do(request{method: http.MethodPost, path: "/api/v1/adsense/metrics", principal: "root", json: m})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	var sum database.AdRevenueMetric
	w = s.do(request{method: http.MethodGet, path: "/api/v1/adsense/metrics/aggregate?start=2026-10-01&end=2026-10-31"})
	decode(t, w, &sum)
	assert.Equal(t, int64(150), sum.Impressions)
	assert.InDelta(t, 2.0, sum.Revenue, 1e-9)
	assert.Equal(t, "2026-10-01..2026-10-31", sum.Date)

	var one database.AdRevenueMetric
	w = s.do(request{method: http.MethodGet, path: "/api/v1/adsense/metrics/2026-10-02"})
	decode(t, w, &one)
	assert.Equal(t, int64(1), one.Clicks)

	var count map[string]int64
	s.do(request{method: http.MethodPost, path: "/api/v1/traffic/increment"})
	w = s.do(request{method: http.MethodPost, path: "/api/v1/traffic/increment"})
	decode(t, w, &count)
	assert.Equal(t, int64(2), count["count"])
}

func TestStorageAdmin(t *testing.T) {
	s := setupServer(t)
	body := map[string]interface{}{
		"name":       "primary",
		"provider":   "s3",
		"region":     "us-east-1",
		"bucket":     "docs",
		"access_key": "AKIA",
		"secret_key": "very-secret",
	}

	w := s.do(request{method: http.MethodPost, path: "/api/v1/admin/storage/configs", principal: "alice", json: body})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(request{method: http.MethodPost, path: "/api/v1/admin/storage/configs", principal: "root", json: body})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "very-secret")

	var created database.StorageConfig
	decode(t, w, &created)
	assert.True(t, created.IsActive)

	w = s.do(request{method: http.MethodGet, path: "/api/v1/admin/storage/configs/active", principal: "root"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "very-secret")

	w = s.do(request{method: http.MethodDelete, path: fmt.Sprintf("/api/v1/admin/storage/configs/%d", created.ID), principal: "root"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "STORAGE_CONFIG_IN_USE", decode(t, w, nil).ErrorKey)

	w = s.do(request{method: http.MethodPost, path: fmt.Sprintf("/api/v1/admin/storage/configs/%d/toggle", created.ID), principal: "root", json: map[string]bool{"enabled": false}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(request{method: http.MethodGet, path: "/api/v1/admin/storage/configs/abc", principal: "root"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

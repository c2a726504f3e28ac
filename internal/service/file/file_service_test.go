package service

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwangfds/pdftoolkit/config"
	"github.com/weiwangfds/pdftoolkit/internal/database"
	"github.com/weiwangfds/pdftoolkit/internal/errors"
	storageservice "github.com/weiwangfds/pdftoolkit/internal/service/storage"
	"gorm.io/gorm"
)

// setupServices 设置测试服务，文件写入临时目录的本地存储
func setupServices(t *testing.T) (FileService, *storageservice.LocalProvider, *gorm.DB) {
	db, err := database.Init(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	local, err := storageservice.NewLocalProvider(t.TempDir())
	require.NoError(t, err)

	fileConfig := config.FileConfig{
		StoragePath:       t.TempDir(),
		MaxFileSize:       1024,
		AllowedExtensions: []string{".pdf", ".png", ".txt"},
	}
	return NewFileService(db, fileConfig, storageservice.NewConfigService(db, local)), local, db
}

const samplePDF = "%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n"

func TestUpload(t *testing.T) {
	ctx := context.Background()
	svc, local, _ := setupServices(t)

	t.Run("上传成功", func(t *testing.T) {
		meta, err := svc.Upload(ctx, "alice", "Report.PDF", strings.NewReader(samplePDF))
		require.NoError(t, err)
		assert.Equal(t, "alice", meta.OwnerID)
		assert.Equal(t, "Report.PDF", meta.FileName)
		assert.Equal(t, ".pdf", meta.FileFormat)
		assert.Equal(t, "application/pdf", meta.ContentType)
		assert.Equal(t, database.ProviderLocal, meta.Provider)
		assert.Equal(t, int64(len(samplePDF)), meta.FileSize)
		assert.Len(t, meta.FileHash, 64)
		assert.Equal(t, "users/alice/"+meta.FileID+".pdf", meta.ObjectKey)

		exists, err := local.Exists(ctx, meta.ObjectKey)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("相同内容不去重", func(t *testing.T) {
		a, err := svc.Upload(ctx, "alice", "same.txt", strings.NewReader("hello"))
		require.NoError(t, err)
		b, err := svc.Upload(ctx, "alice", "same.txt", strings.NewReader("hello"))
		require.NoError(t, err)
		assert.NotEqual(t, a.FileID, b.FileID)
		assert.Equal(t, a.FileHash, b.FileHash)
	})

	t.Run("扩展名不允许", func(t *testing.T) {
		_, err := svc.Upload(ctx, "alice", "run.exe", strings.NewReader("MZ"))
		assert.True(t, errors.Is(err, errors.ErrFileTypeNotAllowedError))
	})

	t.Run("文件过大", func(t *testing.T) {
		_, err := svc.Upload(ctx, "alice", "big.txt", bytes.NewReader(make([]byte, 2048)))
		assert.True(t, errors.Is(err, errors.ErrFileSizeTooLargeError))
	})

	t.Run("文件名为空", func(t *testing.T) {
		_, err := svc.Upload(ctx, "alice", "  ", strings.NewReader("x"))
		assert.True(t, errors.Is(err, errors.ErrFileNameInvalidError))
	})
}

func TestOwnerIsolation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupServices(t)

	meta, err := svc.Upload(ctx, "alice", "a.txt", strings.NewReader("alice data"))
	require.NoError(t, err)
	_, err = svc.Upload(ctx, "bob", "b.txt", strings.NewReader("bob data"))
	require.NoError(t, err)

	t.Run("他人文件视为不存在", func(t *testing.T) {
		_, err := svc.Get(ctx, "bob", meta.FileID)
		assert.True(t, errors.Is(err, errors.ErrFileNotFoundError))
		err = svc.Delete(ctx, "bob", meta.FileID)
		assert.True(t, errors.Is(err, errors.ErrFileNotFoundError))
	})

	t.Run("列表只包含自己的文件", func(t *testing.T) {
		files, err := svc.List(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, meta.FileID, files[0].FileID)
	})

	t.Run("读取内容", func(t *testing.T) {
		rc, got, err := svc.Open(ctx, "alice", meta.FileID)
		require.NoError(t, err)
		defer rc.Close()
		data, _ := io.ReadAll(rc)
		assert.Equal(t, "alice data", string(data))
		assert.Equal(t, meta.FileID, got.FileID)
	})
}

func TestListPageAndStats(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupServices(t)

	for i := 0; i < 3; i++ {
		_, err := svc.Upload(ctx, "carol", "n.txt", strings.NewReader("12345"))
		require.NoError(t, err)
	}
	_, err := svc.Upload(ctx, "carol", "doc.pdf", strings.NewReader(samplePDF))
	require.NoError(t, err)

	files, total, err := svc.ListPage(ctx, "carol", 2, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, files, 1)

	stats, err := svc.Stats(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalFiles)
	assert.Equal(t, int64(15+len(samplePDF)), stats.TotalSize)
	require.Len(t, stats.FormatStats, 2)
	assert.Equal(t, ".txt", stats.FormatStats[0].FileFormat)
	assert.Equal(t, int64(3), stats.FormatStats[0].Count)
}

func TestDeleteRemovesObject(t *testing.T) {
	ctx := context.Background()
	svc, local, db := setupServices(t)

	meta, err := svc.Upload(ctx, "dave", "x.txt", strings.NewReader("bye"))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "dave", meta.FileID))

	exists, err := local.Exists(ctx, meta.ObjectKey)
	require.NoError(t, err)
	assert.False(t, exists)

	var count int64
	db.Model(&database.FileMetadata{}).Where("file_id = ?", meta.FileID).Count(&count)
	assert.Zero(t, count)

	_, _, err = svc.Open(ctx, "dave", meta.FileID)
	assert.True(t, errors.Is(err, errors.ErrFileNotFoundError))
}

// Package service 提供文件内容的存储后端
// 包含本地磁盘、阿里云OSS、腾讯云COS、七牛云Kodo和S3兼容存储的实现
package service

import (
	"context"
	stderrors "errors"
	"io"

	"github.com/weiwangfds/pdftoolkit/internal/database"
)

var (
	// ErrProviderNotSupported 不支持的存储提供商
	ErrProviderNotSupported = stderrors.New("unsupported storage provider")
	// ErrObjectNotFound 对象不存在
	ErrObjectNotFound = stderrors.New("object not found")
)

// Provider 存储提供商接口
type Provider interface {
	// 上传对象
	Upload(ctx context.Context, objectKey string, reader io.Reader, contentType string) error

	// 下载对象，调用方负责关闭
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// 删除对象
	Delete(ctx context.Context, objectKey string) error

	// 检查对象是否存在
	Exists(ctx context.Context, objectKey string) (bool, error)

	// 获取对象信息
	Stat(ctx context.Context, objectKey string) (*ObjectInfo, error)

	// 列出对象
	List(ctx context.Context, prefix string, maxKeys int) ([]ObjectInfo, error)

	// 测试连接
	TestConnection(ctx context.Context) error

	// 提供商名称
	Name() string
}

// ObjectInfo 对象信息
type ObjectInfo struct {
	Key          string `json:"key"`           // 对象键
	Size         int64  `json:"size"`          // 大小
	LastModified string `json:"last_modified"` // 最后修改时间
	ETag         string `json:"etag"`          // ETag
	ContentType  string `json:"content_type"`  // 内容类型
}

// Factory 存储提供商工厂
type Factory struct{}

// Create 根据配置创建存储提供商实例
func (f *Factory) Create(ctx context.Context, cfg *database.StorageConfig) (Provider, error) {
	switch cfg.Provider {
	case database.ProviderAliyun:
		return NewAliyunOSSProvider(cfg)
	case database.ProviderTencent:
		return NewTencentCOSProvider(cfg)
	case database.ProviderQiniu:
		return NewQiniuKodoProvider(cfg)
	case database.ProviderS3:
		return NewS3Provider(ctx, cfg)
	default:
		return nil, ErrProviderNotSupported
	}
}

// prefixed 拼接配置中的对象键前缀
func prefixed(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "/" + key
}

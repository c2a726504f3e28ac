package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/weiwangfds/pdftoolkit/internal/database"
)

// AliyunOSSProvider 阿里云OSS提供商实现
type AliyunOSSProvider struct {
	client *oss.Client
	bucket *oss.Bucket
	config *database.StorageConfig
}

// NewAliyunOSSProvider 创建阿里云OSS提供商实例
func NewAliyunOSSProvider(config *database.StorageConfig) (*AliyunOSSProvider, error) {
	// 构建endpoint
	endpoint := config.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://oss-%s.aliyuncs.com", config.Region)
	}

	client, err := oss.New(endpoint, config.AccessKey, config.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create aliyun oss client: %w", err)
	}

	bucket, err := client.Bucket(config.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket %s: %w", config.Bucket, err)
	}

	return &AliyunOSSProvider{
		client: client,
		bucket: bucket,
		config: config,
	}, nil
}

// Name 提供商名称
func (p *AliyunOSSProvider) Name() string {
	return database.ProviderAliyun
}

func (p *AliyunOSSProvider) key(objectKey string) string {
	return prefixed(p.config.PathPrefix, objectKey)
}

func isAliyunNotFound(err error) bool {
	var se oss.ServiceError
	return stderrors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// Upload 上传对象到阿里云OSS
func (p *AliyunOSSProvider) Upload(ctx context.Context, objectKey string, reader io.Reader, contentType string) error {
	options := []oss.Option{oss.WithContext(ctx)}
	if contentType != "" {
		options = append(options, oss.ContentType(contentType))
	}

	if err := p.bucket.PutObject(p.key(objectKey), reader, options...); err != nil {
		return fmt.Errorf("failed to upload file to aliyun oss: %w", err)
	}
	return nil
}

// Download 从阿里云OSS下载对象
func (p *AliyunOSSProvider) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	body, err := p.bucket.GetObject(p.key(objectKey), oss.WithContext(ctx))
	if err != nil {
		if isAliyunNotFound(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to download file from aliyun oss: %w", err)
	}
	return body, nil
}

// Delete 删除阿里云OSS对象
func (p *AliyunOSSProvider) Delete(ctx context.Context, objectKey string) error {
	if err := p.bucket.DeleteObject(p.key(objectKey), oss.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to delete file from aliyun oss: %w", err)
	}
	return nil
}

// Exists 检查对象是否存在
func (p *AliyunOSSProvider) Exists(ctx context.Context, objectKey string) (bool, error) {
	exists, err := p.bucket.IsObjectExist(p.key(objectKey), oss.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("failed to check file existence in aliyun oss: %w", err)
	}
	return exists, nil
}

// Stat 获取对象信息
func (p *AliyunOSSProvider) Stat(ctx context.Context, objectKey string) (*ObjectInfo, error) {
	meta, err := p.bucket.GetObjectMeta(p.key(objectKey), oss.WithContext(ctx))
	if err != nil {
		if isAliyunNotFound(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to get file info from aliyun oss: %w", err)
	}

	size, _ := strconv.ParseInt(meta.Get("Content-Length"), 10, 64)
	return &ObjectInfo{
		Key:          objectKey,
		Size:         size,
		LastModified: meta.Get("Last-Modified"),
		ETag:         strings.Trim(meta.Get("Etag"), "\""),
		ContentType:  meta.Get("Content-Type"),
	}, nil
}

// List 列出对象
func (p *AliyunOSSProvider) List(ctx context.Context, prefix string, maxKeys int) ([]ObjectInfo, error) {
	lsRes, err := p.bucket.ListObjects(
		oss.Prefix(p.key(prefix)),
		oss.MaxKeys(maxKeys),
		oss.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list files from aliyun oss: %w", err)
	}

	var files []ObjectInfo
	for _, object := range lsRes.Objects {
		files = append(files, ObjectInfo{
			Key:          strings.TrimPrefix(object.Key, p.key("")),
			Size:         object.Size,
			LastModified: object.LastModified.Format(time.RFC3339),
			ETag:         strings.Trim(object.ETag, "\""),
			ContentType:  object.Type,
		})
	}
	return files, nil
}

// TestConnection 测试连接
func (p *AliyunOSSProvider) TestConnection(ctx context.Context) error {
	if _, err := p.client.GetBucketInfo(p.config.Bucket, oss.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to test aliyun oss connection: %w", err)
	}
	return nil
}

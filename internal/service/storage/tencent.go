package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tencentyun/cos-go-sdk-v5"
	"github.com/weiwangfds/pdftoolkit/internal/database"
)

// TencentCOSProvider 腾讯云COS提供商实现
type TencentCOSProvider struct {
	client *cos.Client
	config *database.StorageConfig
}

// NewTencentCOSProvider 创建腾讯云COS提供商实例
func NewTencentCOSProvider(config *database.StorageConfig) (*TencentCOSProvider, error) {
	bucketURL := fmt.Sprintf("https://%s.cos.%s.myqcloud.com", config.Bucket, config.Region)
	if config.Endpoint != "" {
		bucketURL = config.Endpoint
	}

	u, err := url.Parse(bucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bucket URL: %w", err)
	}

	client := cos.NewClient(&cos.BaseURL{BucketURL: u}, &http.Client{
		Transport: &cos.AuthorizationTransport{
			SecretID:  config.AccessKey,
			SecretKey: config.SecretKey,
		},
	})

	return &TencentCOSProvider{
		client: client,
		config: config,
	}, nil
}

// Name 提供商名称
func (p *TencentCOSProvider) Name() string {
	return database.ProviderTencent
}

func (p *TencentCOSProvider) key(objectKey string) string {
	return prefixed(p.config.PathPrefix, objectKey)
}

// Upload 上传对象到腾讯云COS
func (p *TencentCOSProvider) Upload(ctx context.Context, objectKey string, reader io.Reader, contentType string) error {
	options := &cos.ObjectPutOptions{}
	if contentType != "" {
		options.ObjectPutHeaderOptions = &cos.ObjectPutHeaderOptions{
			ContentType: contentType,
		}
	}

	if _, err := p.client.Object.Put(ctx, p.key(objectKey), reader, options); err != nil {
		return fmt.Errorf("failed to upload file to tencent cos: %w", err)
	}
	return nil
}

// Download 从腾讯云COS下载对象
func (p *TencentCOSProvider) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	resp, err := p.client.Object.Get(ctx, p.key(objectKey), nil)
	if err != nil {
		if cos.IsNotFoundError(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to download file from tencent cos: %w", err)
	}
	return resp.Body, nil
}

// Delete 删除腾讯云COS对象
func (p *TencentCOSProvider) Delete(ctx context.Context, objectKey string) error {
	if _, err := p.client.Object.Delete(ctx, p.key(objectKey)); err != nil {
		return fmt.Errorf("failed to delete file from tencent cos: %w", err)
	}
	return nil
}

// Exists 检查对象是否存在
func (p *TencentCOSProvider) Exists(ctx context.Context, objectKey string) (bool, error) {
	_, err := p.client.Object.Head(ctx, p.key(objectKey), nil)
	if err != nil {
		if cos.IsNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check file existence in tencent cos: %w", err)
	}
	return true, nil
}

// Stat 获取对象信息
func (p *TencentCOSProvider) Stat(ctx context.Context, objectKey string) (*ObjectInfo, error) {
	resp, err := p.client.Object.Head(ctx, p.key(objectKey), nil)
	if err != nil {
		if cos.IsNotFoundError(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to get file info from tencent cos: %w", err)
	}

	return &ObjectInfo{
		Key:          objectKey,
		Size:         resp.ContentLength,
		LastModified: resp.Header.Get("Last-Modified"),
		ETag:         strings.Trim(resp.Header.Get("Etag"), "\""),
		ContentType:  resp.Header.Get("Content-Type"),
	}, nil
}

// List 列出对象
func (p *TencentCOSProvider) List(ctx context.Context, prefix string, maxKeys int) ([]ObjectInfo, error) {
	result, _, err := p.client.Bucket.Get(ctx, &cos.BucketGetOptions{
		Prefix:  p.key(prefix),
		MaxKeys: maxKeys,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files from tencent cos: %w", err)
	}

	var files []ObjectInfo
	for _, object := range result.Contents {
		files = append(files, ObjectInfo{
			Key:          strings.TrimPrefix(object.Key, p.key("")),
			Size:         int64(object.Size),
			LastModified: object.LastModified,
			ETag:         strings.Trim(object.ETag, "\""),
		})
	}
	return files, nil
}

// TestConnection 测试连接
func (p *TencentCOSProvider) TestConnection(ctx context.Context) error {
	if _, err := p.client.Bucket.Head(ctx); err != nil {
		return fmt.Errorf("failed to test tencent cos connection: %w", err)
	}
	return nil
}

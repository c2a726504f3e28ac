package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/qiniu/go-sdk/v7/auth/qbox"
	"github.com/qiniu/go-sdk/v7/storage"
	"github.com/weiwangfds/pdftoolkit/internal/database"
)

// QiniuKodoProvider 七牛云Kodo提供商实现
type QiniuKodoProvider struct {
	mac          *qbox.Mac
	bucketName   string
	bucketDomain string
	region       *storage.Region
	config       *database.StorageConfig
	httpClient   *http.Client
}

// NewQiniuKodoProvider 创建七牛云Kodo提供商实例
// Endpoint 填写存储桶绑定的下载域名，为空时使用区域默认域名
func NewQiniuKodoProvider(config *database.StorageConfig) (*QiniuKodoProvider, error) {
	mac := qbox.NewMac(config.AccessKey, config.SecretKey)

	region, err := storage.GetRegion(config.AccessKey, config.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to get qiniu region: %w", err)
	}

	bucketDomain := config.Endpoint
	if bucketDomain == "" {
		bucketDomain = fmt.Sprintf("%s.%s", config.Bucket, region.RsHost)
	}
	if !strings.Contains(bucketDomain, "://") {
		bucketDomain = "https://" + bucketDomain
	}

	return &QiniuKodoProvider{
		mac:          mac,
		bucketName:   config.Bucket,
		bucketDomain: bucketDomain,
		region:       region,
		config:       config,
		httpClient:   &http.Client{Timeout: 5 * time.Minute},
	}, nil
}

// Name 提供商名称
func (p *QiniuKodoProvider) Name() string {
	return database.ProviderQiniu
}

func (p *QiniuKodoProvider) key(objectKey string) string {
	return prefixed(p.config.PathPrefix, objectKey)
}

func (p *QiniuKodoProvider) bucketManager() *storage.BucketManager {
	return storage.NewBucketManager(p.mac, &storage.Config{
		Region:   p.region,
		UseHTTPS: true,
	})
}

func isQiniuNotFound(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
}

// Upload 上传对象到七牛云Kodo
func (p *QiniuKodoProvider) Upload(ctx context.Context, objectKey string, reader io.Reader, contentType string) error {
	key := p.key(objectKey)
	putPolicy := storage.PutPolicy{
		Scope: fmt.Sprintf("%s:%s", p.bucketName, key),
	}
	upToken := putPolicy.UploadToken(p.mac)

	formUploader := storage.NewFormUploader(&storage.Config{
		Region:        p.region,
		UseHTTPS:      true,
		UseCdnDomains: false,
	})

	putExtra := storage.PutExtra{}
	if contentType != "" {
		putExtra.MimeType = contentType
	}

	ret := storage.PutRet{}
	if err := formUploader.Put(ctx, &ret, upToken, key, reader, -1, &putExtra); err != nil {
		return fmt.Errorf("failed to upload file to qiniu kodo: %w", err)
	}
	return nil
}

// Download 通过私有下载链接获取对象
func (p *QiniuKodoProvider) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	deadline := time.Now().Add(time.Hour).Unix()
	privateURL := storage.MakePrivateURL(p.mac, p.bucketDomain, p.key(objectKey), deadline)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, privateURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file from qiniu kodo: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return resp.Body, nil
	case http.StatusNotFound:
		resp.Body.Close()
		return nil, ErrObjectNotFound
	default:
		resp.Body.Close()
		return nil, fmt.Errorf("failed to download file, status: %s", resp.Status)
	}
}

// Delete 删除七牛云Kodo对象
func (p *QiniuKodoProvider) Delete(ctx context.Context, objectKey string) error {
	if err := p.bucketManager().Delete(p.bucketName, p.key(objectKey)); err != nil {
		if isQiniuNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to delete file from qiniu kodo: %w", err)
	}
	return nil
}

// Exists 检查对象是否存在
func (p *QiniuKodoProvider) Exists(ctx context.Context, objectKey string) (bool, error) {
	if _, err := p.bucketManager().Stat(p.bucketName, p.key(objectKey)); err != nil {
		if isQiniuNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check file existence in qiniu kodo: %w", err)
	}
	return true, nil
}

// Stat 获取对象信息
func (p *QiniuKodoProvider) Stat(ctx context.Context, objectKey string) (*ObjectInfo, error) {
	fileInfo, err := p.bucketManager().Stat(p.bucketName, p.key(objectKey))
	if err != nil {
		if isQiniuNotFound(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to get file info from qiniu kodo: %w", err)
	}

	return &ObjectInfo{
		Key:          objectKey,
		Size:         fileInfo.Fsize,
		LastModified: putTime(fileInfo.PutTime),
		ETag:         fileInfo.Hash,
		ContentType:  fileInfo.MimeType,
	}, nil
}

// List 列出对象
func (p *QiniuKodoProvider) List(ctx context.Context, prefix string, maxKeys int) ([]ObjectInfo, error) {
	entries, _, _, _, err := p.bucketManager().ListFiles(p.bucketName, p.key(prefix), "", "", maxKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to list files from qiniu kodo: %w", err)
	}

	var files []ObjectInfo
	for _, entry := range entries {
		files = append(files, ObjectInfo{
			Key:          strings.TrimPrefix(entry.Key, p.key("")),
			Size:         entry.Fsize,
			LastModified: putTime(entry.PutTime),
			ETag:         entry.Hash,
			ContentType:  entry.MimeType,
		})
	}
	return files, nil
}

// TestConnection 测试连接
func (p *QiniuKodoProvider) TestConnection(ctx context.Context) error {
	if _, _, _, _, err := p.bucketManager().ListFiles(p.bucketName, "", "", "", 1); err != nil {
		return fmt.Errorf("failed to test qiniu kodo connection: %w", err)
	}
	return nil
}

// putTime 七牛的时间戳单位为100纳秒
func putTime(t int64) string {
	return time.Unix(0, t*100).UTC().Format(time.RFC3339)
}

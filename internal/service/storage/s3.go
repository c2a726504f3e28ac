package service

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/weiwangfds/pdftoolkit/internal/database"
)

// S3Provider AWS S3及兼容存储（MinIO等）提供商实现
type S3Provider struct {
	client *s3.Client
	config *database.StorageConfig
}

// NewS3Provider 创建S3提供商实例
func NewS3Provider(ctx context.Context, config *database.StorageConfig) (*S3Provider, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(config.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKey, config.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if config.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.Endpoint)
		}
		o.UsePathStyle = config.UsePathStyle
	})

	return &S3Provider{client: client, config: config}, nil
}

// Name 提供商名称
func (p *S3Provider) Name() string {
	return database.ProviderS3
}

func (p *S3Provider) key(objectKey string) string {
	return prefixed(p.config.PathPrefix, objectKey)
}

func isS3NotFound(err error) bool {
	var nsk *types.NoSuchKey
	if stderrors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	return stderrors.As(err, &nf)
}

// Upload 上传对象
// 签名需要可回读的请求体，不可Seek的reader先读入内存
func (p *S3Provider) Upload(ctx context.Context, objectKey string, reader io.Reader, contentType string) error {
	body, ok := reader.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(reader)
		if err != nil {
			return fmt.Errorf("failed to read upload body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(p.config.Bucket),
		Key:    aws.String(p.key(objectKey)),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := p.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to upload file to s3: %w", err)
	}
	return nil
}

// Download 下载对象
func (p *S3Provider) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	out, err := p.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.config.Bucket),
		Key:    aws.String(p.key(objectKey)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to download file from s3: %w", err)
	}
	return out.Body, nil
}

// Delete 删除对象
func (p *S3Provider) Delete(ctx context.Context, objectKey string) error {
	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.config.Bucket),
		Key:    aws.String(p.key(objectKey)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from s3: %w", err)
	}
	return nil
}

// Exists 检查对象是否存在
func (p *S3Provider) Exists(ctx context.Context, objectKey string) (bool, error) {
	if _, err := p.head(ctx, objectKey); err != nil {
		if isS3NotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check file existence in s3: %w", err)
	}
	return true, nil
}

func (p *S3Provider) head(ctx context.Context, objectKey string) (*s3.HeadObjectOutput, error) {
	return p.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(p.config.Bucket),
		Key:    aws.String(p.key(objectKey)),
	})
}

// Stat 获取对象信息
func (p *S3Provider) Stat(ctx context.Context, objectKey string) (*ObjectInfo, error) {
	out, err := p.head(ctx, objectKey)
	if err != nil {
		if isS3NotFound(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to get file info from s3: %w", err)
	}

	info := &ObjectInfo{
		Key:         objectKey,
		Size:        aws.ToInt64(out.ContentLength),
		ETag:        strings.Trim(aws.ToString(out.ETag), "\""),
		ContentType: aws.ToString(out.ContentType),
	}
	if out.LastModified != nil {
		info.LastModified = out.LastModified.Format(time.RFC3339)
	}
	return info, nil
}

// List 列出对象
func (p *S3Provider) List(ctx context.Context, prefix string, maxKeys int) ([]ObjectInfo, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(p.config.Bucket),
		Prefix: aws.String(p.key(prefix)),
	}
	if maxKeys > 0 {
		input.MaxKeys = aws.Int32(int32(maxKeys))
	}

	out, err := p.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to list files from s3: %w", err)
	}

	var files []ObjectInfo
	for _, object := range out.Contents {
		info := ObjectInfo{
			Key:  strings.TrimPrefix(aws.ToString(object.Key), p.key("")),
			Size: aws.ToInt64(object.Size),
			ETag: strings.Trim(aws.ToString(object.ETag), "\""),
		}
		if object.LastModified != nil {
			info.LastModified = object.LastModified.Format(time.RFC3339)
		}
		files = append(files, info)
	}
	return files, nil
}

// TestConnection 测试连接
func (p *S3Provider) TestConnection(ctx context.Context) error {
	if _, err := p.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(p.config.Bucket)}); err != nil {
		return fmt.Errorf("failed to test s3 connection: %w", err)
	}
	return nil
}

package service

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/weiwangfds/pdftoolkit/internal/database"
)

// LocalProvider 本地磁盘存储
type LocalProvider struct {
	root string
}

// NewLocalProvider 创建本地存储实例，根目录不存在时自动创建
func NewLocalProvider(root string) (*LocalProvider, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalProvider{root: root}, nil
}

// Name 提供商名称
func (p *LocalProvider) Name() string {
	return database.ProviderLocal
}

// path 将对象键映射到根目录下的路径，拒绝越出根目录的键
func (p *LocalProvider) path(objectKey string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(objectKey))
	if clean == string(filepath.Separator) {
		return "", fmt.Errorf("invalid object key: %q", objectKey)
	}
	return filepath.Join(p.root, clean), nil
}

// Upload 写入临时文件后重命名，避免读到写了一半的对象
func (p *LocalProvider) Upload(ctx context.Context, objectKey string, reader io.Reader, contentType string) error {
	path, err := p.path(objectKey)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: reader}); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

// Download 打开本地文件
func (p *LocalProvider) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	path, err := p.path(objectKey)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// Delete 删除本地文件，文件不存在时视为成功
func (p *LocalProvider) Delete(ctx context.Context, objectKey string) error {
	path, err := p.path(objectKey)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Exists 检查文件是否存在
func (p *LocalProvider) Exists(ctx context.Context, objectKey string) (bool, error) {
	path, err := p.path(objectKey)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Stat 获取文件信息
func (p *LocalProvider) Stat(ctx context.Context, objectKey string) (*ObjectInfo, error) {
	path, err := p.path(objectKey)
	if err != nil {
		return nil, err
	}
	st, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}

	contentType := ""
	if mt, err := mimetype.DetectFile(path); err == nil {
		contentType = mt.String()
	}

	return &ObjectInfo{
		Key:          objectKey,
		Size:         st.Size(),
		LastModified: st.ModTime().Format(time.RFC3339),
		ContentType:  contentType,
	}, nil
}

// List 列出前缀下的文件
func (p *LocalProvider) List(ctx context.Context, prefix string, maxKeys int) ([]ObjectInfo, error) {
	var files []ObjectInfo
	errStop := fmt.Errorf("stop")

	err := filepath.WalkDir(p.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".upload-") {
			return nil
		}
		rel, err := filepath.Rel(p.root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, ObjectInfo{
			Key:          key,
			Size:         info.Size(),
			LastModified: info.ModTime().Format(time.RFC3339),
		})
		if maxKeys > 0 && len(files) >= maxKeys {
			return errStop
		}
		return nil
	})
	if err != nil && err != errStop {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return files, nil
}

// TestConnection 检查根目录可写
func (p *LocalProvider) TestConnection(ctx context.Context) error {
	f, err := os.CreateTemp(p.root, ".probe-*")
	if err != nil {
		return fmt.Errorf("storage directory not writable: %w", err)
	}
	f.Close()
	return os.Remove(f.Name())
}

// ctxReader 在每次读取前检查上下文是否已取消
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

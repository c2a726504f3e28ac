// Package service 提供用户文件管理相关的业务逻辑服务
// 包含文件上传、下载、删除、列表和统计功能，文件内容写入当前激活的存储后端
package service

import (
	"context"
	"crypto/sha256"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/weiwangfds/pdftoolkit/config"
	"github.com/weiwangfds/pdftoolkit/internal/database"
	"github.com/weiwangfds/pdftoolkit/internal/errors"
	"github.com/weiwangfds/pdftoolkit/internal/logger"
	storageservice "github.com/weiwangfds/pdftoolkit/internal/service/storage"
	"gorm.io/gorm"
)

// FileService 文件服务接口
// 所有操作都限定在调用者自己的文件范围内，访问他人文件等同于文件不存在
type FileService interface {
	// Upload 上传文件
	// 校验扩展名和大小，计算SHA256，写入激活的存储后端后保存元数据
	Upload(ctx context.Context, owner, fileName string, data io.Reader) (*database.FileMetadata, error)

	// List 获取调用者的全部文件，按上传时间倒序
	List(ctx context.Context, owner string) ([]database.FileMetadata, error)

	// ListPage 分页获取调用者的文件
	ListPage(ctx context.Context, owner string, page, pageSize int) ([]database.FileMetadata, int64, error)

	// Get 获取文件元数据
	Get(ctx context.Context, owner, fileID string) (*database.FileMetadata, error)

	// Open 打开文件内容流，调用者负责关闭
	Open(ctx context.Context, owner, fileID string) (io.ReadCloser, *database.FileMetadata, error)

	// Delete 删除文件元数据和存储中的对象
	Delete(ctx context.Context, owner, fileID string) error

	// Stats 获取调用者的文件统计
	Stats(ctx context.Context, owner string) (*FileStats, error)
}

// ProviderSource 提供存储后端，由存储配置服务实现
type ProviderSource interface {
	Active(ctx context.Context) (storageservice.Provider, uint, error)
	ProviderFor(ctx context.Context, provider string, configID uint) (storageservice.Provider, error)
}

// FileStats 文件统计信息
type FileStats struct {
	TotalFiles  int64         `json:"total_files"`
	TotalSize   int64         `json:"total_size"`
	FormatStats []FormatCount `json:"format_stats"`
}

// FormatCount 各格式文件数量
type FormatCount struct {
	FileFormat string `json:"file_format"`
	Count      int64  `json:"count"`
}

// fileService 文件服务实现
type fileService struct {
	db        *gorm.DB
	config    config.FileConfig
	providers ProviderSource
}

// NewFileService 创建文件服务实例
func NewFileService(db *gorm.DB, cfg config.FileConfig, providers ProviderSource) FileService {
	logger.Infof("文件服务初始化完成，单文件上限: %d 字节，允许扩展名: %v", cfg.MaxFileSize, cfg.AllowedExtensions)
	return &fileService{
		db:        db,
		config:    cfg,
		providers: providers,
	}
}

// ObjectKey 文件在存储后端中的对象键
func ObjectKey(owner, fileID, ext string) string {
	return fmt.Sprintf("users/%s/%s%s", owner, fileID, ext)
}

// Upload 上传文件
func (s *fileService) Upload(ctx context.Context, owner, fileName string, data io.Reader) (*database.FileMetadata, error) {
	fileName = strings.TrimSpace(filepath.Base(filepath.ToSlash(fileName)))
	if fileName == "" || fileName == "." || fileName == "/" || len(fileName) > 255 {
		return nil, errors.ErrFileNameInvalidError.WithDetails(fileName)
	}

	log := logger.WithFields(logger.Fields{"owner": owner, "file_name": fileName})
	log.Info("开始上传文件")

	fileExt := strings.ToLower(filepath.Ext(fileName))
	if fileExt == "" {
		fileExt = ".bin"
	}
	if !s.isAllowedExtension(fileExt) {
		log.Warnf("扩展名不允许: %s", fileExt)
		return nil, errors.ErrFileTypeNotAllowedError.WithDetails(fileExt)
	}

	// 先写入临时文件，计算哈希和大小
	tempFile, err := os.CreateTemp("", "upload_*")
	if err != nil {
		return nil, errors.ErrFileUploadFailedError.WithOriginalError(err)
	}
	defer os.Remove(tempFile.Name())
	defer tempFile.Close()

	hasher := sha256.New()
	// 多读一个字节即可判断是否超限，不必读完整个请求体
	limited := io.LimitReader(data, s.config.MaxFileSize+1)
	fileSize, err := io.Copy(io.MultiWriter(tempFile, hasher), limited)
	if err != nil {
		return nil, errors.ErrFileUploadFailedError.WithOriginalError(err)
	}
	if fileSize > s.config.MaxFileSize {
		log.Warnf("文件大小超出限制: %d", s.config.MaxFileSize)
		return nil, errors.ErrFileSizeTooLargeError.WithDetailsf("max %d bytes", s.config.MaxFileSize)
	}
	fileHash := fmt.Sprintf("%x", hasher.Sum(nil))

	if _, err := tempFile.Seek(0, io.SeekStart); err != nil {
		return nil, errors.ErrFileUploadFailedError.WithOriginalError(err)
	}
	contentType := "application/octet-stream"
	if mt, err := mimetype.DetectReader(tempFile); err == nil {
		contentType = mt.String()
	}
	if _, err := tempFile.Seek(0, io.SeekStart); err != nil {
		return nil, errors.ErrFileUploadFailedError.WithOriginalError(err)
	}

	provider, configID, err := s.providers.Active(ctx)
	if err != nil {
		return nil, err
	}

	fileID := uuid.New().String()
	objectKey := ObjectKey(owner, fileID, fileExt)
	if err := provider.Upload(ctx, objectKey, tempFile, contentType); err != nil {
		log.Errorf("写入存储失败: %v", err)
		return nil, errors.ErrStorageUploadFailedError.WithOriginalError(err)
	}

	metadata := &database.FileMetadata{
		FileID:          fileID,
		OwnerID:         owner,
		FileName:        fileName,
		ObjectKey:       objectKey,
		Provider:        provider.Name(),
		StorageConfigID: configID,
		FileSize:        fileSize,
		FileHash:        fileHash,
		FileFormat:      fileExt,
		ContentType:     contentType,
	}
	if err := s.db.WithContext(ctx).Create(metadata).Error; err != nil {
		// 数据库写入失败时删除已上传的对象
		log.Errorf("保存文件元数据失败，清理对象: %v", err)
		if delErr := provider.Delete(context.WithoutCancel(ctx), objectKey); delErr != nil {
			log.Warnf("清理对象失败: %v", delErr)
		}
		return nil, errors.ErrDatabaseInsertError.WithOriginalError(err)
	}

	log.WithFields(logger.Fields{"file_id": fileID, "size": fileSize, "provider": metadata.Provider}).Info("文件上传成功")
	return metadata, nil
}

// List 获取调用者的全部文件
func (s *fileService) List(ctx context.Context, owner string) ([]database.FileMetadata, error) {
	var files []database.FileMetadata
	if err := s.db.WithContext(ctx).
		Where("owner_id = ?", owner).
		Order("created_at DESC, id DESC").
		Find(&files).Error; err != nil {
		return nil, errors.ErrDatabaseQueryError.WithOriginalError(err)
	}
	return files, nil
}

// ListPage 分页获取调用者的文件
func (s *fileService) ListPage(ctx context.Context, owner string, page, pageSize int) ([]database.FileMetadata, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := s.db.WithContext(ctx).Model(&database.FileMetadata{}).Where("owner_id = ?", owner)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.ErrDatabaseQueryError.WithOriginalError(err)
	}

	var files []database.FileMetadata
	if err := query.Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&files).Error; err != nil {
		return nil, 0, errors.ErrDatabaseQueryError.WithOriginalError(err)
	}
	return files, total, nil
}

// Get 获取文件元数据
func (s *fileService) Get(ctx context.Context, owner, fileID string) (*database.FileMetadata, error) {
	var file database.FileMetadata
	err := s.db.WithContext(ctx).
		Where("file_id = ? AND owner_id = ?", fileID, owner).
		First(&file).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrFileNotFoundError.WithDetails(fileID)
		}
		return nil, errors.ErrDatabaseQueryError.WithOriginalError(err)
	}
	return &file, nil
}

// Open 打开文件内容流
func (s *fileService) Open(ctx context.Context, owner, fileID string) (io.ReadCloser, *database.FileMetadata, error) {
	file, err := s.Get(ctx, owner, fileID)
	if err != nil {
		return nil, nil, err
	}

	provider, err := s.providers.ProviderFor(ctx, file.Provider, file.StorageConfigID)
	if err != nil {
		return nil, nil, err
	}

	rc, err := provider.Download(ctx, file.ObjectKey)
	if err != nil {
		if stderrors.Is(err, storageservice.ErrObjectNotFound) {
			logger.Warnf("文件元数据存在但对象缺失: %s (%s)", fileID, file.ObjectKey)
			return nil, nil, errors.ErrFileNotFoundError.WithDetails(fileID)
		}
		return nil, nil, errors.ErrStorageDownloadFailedError.WithOriginalError(err)
	}
	return rc, file, nil
}

// Delete 删除文件
func (s *fileService) Delete(ctx context.Context, owner, fileID string) error {
	file, err := s.Get(ctx, owner, fileID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(file).Error; err != nil {
		return errors.ErrDatabaseDeleteError.WithOriginalError(err)
	}

	// 元数据已删除，对象删除失败只记录日志
	provider, err := s.providers.ProviderFor(ctx, file.Provider, file.StorageConfigID)
	if err != nil {
		logger.Warnf("获取存储后端失败，对象未删除: %s, 错误: %v", file.ObjectKey, err)
		return nil
	}
	if err := provider.Delete(ctx, file.ObjectKey); err != nil {
		logger.Warnf("删除对象失败: %s, 错误: %v", file.ObjectKey, err)
	}

	logger.WithFields(logger.Fields{"owner": owner, "file_id": fileID}).Info("文件已删除")
	return nil
}

// Stats 获取调用者的文件统计
func (s *fileService) Stats(ctx context.Context, owner string) (*FileStats, error) {
	var totals struct {
		TotalFiles int64
		TotalSize  int64
	}

	db := s.db.WithContext(ctx)
	if err := db.Model(&database.FileMetadata{}).
		Where("owner_id = ?", owner).
		Select("COUNT(*) as total_files, COALESCE(SUM(file_size), 0) as total_size").
		Scan(&totals).Error; err != nil {
		return nil, errors.ErrDatabaseQueryError.WithOriginalError(err)
	}
	stats := &FileStats{
		TotalFiles:  totals.TotalFiles,
		TotalSize:   totals.TotalSize,
		FormatStats: []FormatCount{},
	}

	if err := db.Model(&database.FileMetadata{}).
		Where("owner_id = ?", owner).
		Select("file_format, COUNT(*) as count").
		Group("file_format").
		Order("count DESC").
		Scan(&stats.FormatStats).Error; err != nil {
		return nil, errors.ErrDatabaseQueryError.WithOriginalError(err)
	}
	return stats, nil
}

// isAllowedExtension 检查文件扩展名是否允许
func (s *fileService) isAllowedExtension(ext string) bool {
	for _, allowed := range s.config.AllowedExtensions {
		if allowed == "*" || strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}

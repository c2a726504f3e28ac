package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/weiwangfds/pdftoolkit/internal/database"
	"github.com/weiwangfds/pdftoolkit/internal/errors"
	"github.com/weiwangfds/pdftoolkit/internal/logger"
	"gorm.io/gorm"
)

// ConfigService 存储配置服务接口
// 管理对象存储配置的增删改查、激活状态和连接测试，并为文件服务选择存储后端
type ConfigService interface {
	// CreateConfig 创建存储配置，第一个配置会自动激活
	CreateConfig(ctx context.Context, cfg *database.StorageConfig) error

	// GetConfig 根据ID获取存储配置
	GetConfig(ctx context.Context, id uint) (*database.StorageConfig, error)

	// ListConfigs 获取所有存储配置，按创建时间倒序
	ListConfigs(ctx context.Context) ([]database.StorageConfig, error)

	// UpdateConfig 更新连接参数，SecretKey 为空时保留原值
	UpdateConfig(ctx context.Context, cfg *database.StorageConfig) error

	// DeleteConfig 删除存储配置，激活中的配置不可删除
	DeleteConfig(ctx context.Context, id uint) error

	// ActivateConfig 激活指定配置并取消其他配置的激活状态
	ActivateConfig(ctx context.Context, id uint) error

	// TestConfig 使用指定配置测试连接
	TestConfig(ctx context.Context, id uint) error

	// GetActiveConfig 获取当前激活且启用的配置，没有时返回 nil
	GetActiveConfig(ctx context.Context) (*database.StorageConfig, error)

	// ToggleConfig 启用或禁用配置，激活中的配置不可禁用
	ToggleConfig(ctx context.Context, id uint, enabled bool) error

	// Active 返回新上传文件应写入的存储后端及其配置ID
	// 没有激活配置时返回本地存储，配置ID为0
	Active(ctx context.Context) (Provider, uint, error)

	// ProviderFor 返回读取已有对象所用的存储后端
	ProviderFor(ctx context.Context, provider string, configID uint) (Provider, error)
}

// configService 存储配置服务实现
type configService struct {
	db          *gorm.DB
	local       Provider
	newProvider func(ctx context.Context, cfg *database.StorageConfig) (Provider, error)
}

// NewConfigService 创建存储配置服务实例
func NewConfigService(db *gorm.DB, local Provider) ConfigService {
	factory := &Factory{}
	return &configService{
		db:          db,
		local:       local,
		newProvider: factory.Create,
	}
}

// CreateConfig 创建存储配置
func (s *configService) CreateConfig(ctx context.Context, cfg *database.StorageConfig) error {
	logger.Infof("[存储配置服务] 创建存储配置: %s (提供商: %s, 区域: %s, 存储桶: %s)",
		cfg.Name, cfg.Provider, cfg.Region, cfg.Bucket)

	if err := validateConfig(cfg, true); err != nil {
		return err
	}
	cfg.ID = 0

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&database.StorageConfig{}).Count(&count).Error; err != nil {
			return errors.ErrDatabaseQueryError.WithOriginalError(err)
		}
		// 第一个配置自动激活
		if count == 0 {
			cfg.IsActive = true
			cfg.IsEnabled = true
		}
		if cfg.IsActive {
			if err := deactivateAll(tx); err != nil {
				return err
			}
		}
		if err := tx.Create(cfg).Error; err != nil {
			logger.Errorf("[存储配置服务] 保存存储配置失败: %s, 错误: %v", cfg.Name, err)
			return errors.ErrDatabaseInsertError.WithOriginalError(err)
		}
		logger.Infof("[存储配置服务] 创建成功: %s (ID: %d, 激活: %v)", cfg.Name, cfg.ID, cfg.IsActive)
		return nil
	})
}

// GetConfig 根据ID获取存储配置
func (s *configService) GetConfig(ctx context.Context, id uint) (*database.StorageConfig, error) {
	return findConfig(s.db.WithContext(ctx), id)
}

func findConfig(db *gorm.DB, id uint) (*database.StorageConfig, error) {
	var cfg database.StorageConfig
	if err := db.First(&cfg, id).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrStorageConfigNotFoundError.WithDetailsf("id=%d", id)
		}
		return nil, errors.ErrDatabaseQueryError.WithOriginalError(err)
	}
	return &cfg, nil
}

// ListConfigs 获取所有存储配置
func (s *configService) ListConfigs(ctx context.Context) ([]database.StorageConfig, error) {
	var configs []database.StorageConfig
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&configs).Error; err != nil {
		logger.Errorf("[存储配置服务] 获取存储配置列表失败: %v", err)
		return nil, errors.ErrDatabaseQueryError.WithOriginalError(err)
	}
	return configs, nil
}

// UpdateConfig 更新存储配置
func (s *configService) UpdateConfig(ctx context.Context, cfg *database.StorageConfig) error {
	logger.Infof("[存储配置服务] 更新存储配置 ID: %d 名称: %s", cfg.ID, cfg.Name)

	if err := validateConfig(cfg, false); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findConfig(tx, cfg.ID)
		if err != nil {
			return err
		}

		if cfg.SecretKey == "" {
			cfg.SecretKey = existing.SecretKey
		}
		// 激活和启用状态只通过专门的接口修改
		cfg.IsActive = existing.IsActive
		cfg.IsEnabled = existing.IsEnabled
		cfg.CreatedAt = existing.CreatedAt

		if err := tx.Save(cfg).Error; err != nil {
			logger.Errorf("[存储配置服务] 更新存储配置失败 (ID: %d): %v", cfg.ID, err)
			return errors.ErrDatabaseUpdateError.WithOriginalError(err)
		}
		return nil
	})
}

// DeleteConfig 删除存储配置
func (s *configService) DeleteConfig(ctx context.Context, id uint) error {
	logger.Infof("[存储配置服务] 删除存储配置 ID: %d", id)

	cfg, err := s.GetConfig(ctx, id)
	if err != nil {
		return err
	}
	if cfg.IsActive {
		logger.Warnf("[存储配置服务] 不能删除激活中的存储配置: %s (ID: %d)", cfg.Name, id)
		return errors.ErrStorageConfigInUseError
	}

	if err := s.db.WithContext(ctx).Delete(&database.StorageConfig{}, id).Error; err != nil {
		return errors.ErrDatabaseDeleteError.WithOriginalError(err)
	}
	logger.Infof("[存储配置服务] 删除成功: %s (ID: %d)", cfg.Name, id)
	return nil
}

// ActivateConfig 激活存储配置
func (s *configService) ActivateConfig(ctx context.Context, id uint) error {
	logger.Infof("[存储配置服务] 激活存储配置 ID: %d", id)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cfg, err := findConfig(tx, id)
		if err != nil {
			return err
		}
		if !cfg.IsEnabled {
			return errors.ErrStorageConfigInvalidError.WithDetails("disabled config cannot be activated")
		}
		if err := deactivateAll(tx); err != nil {
			return err
		}
		if err := tx.Model(&database.StorageConfig{}).Where("id = ?", id).
			Update("is_active", true).Error; err != nil {
			return errors.ErrDatabaseUpdateError.WithOriginalError(err)
		}
		return nil
	})
}

// TestConfig 测试存储配置连接
func (s *configService) TestConfig(ctx context.Context, id uint) error {
	cfg, err := s.GetConfig(ctx, id)
	if err != nil {
		return err
	}

	provider, err := s.newProvider(ctx, cfg)
	if err != nil {
		return providerError(err)
	}
	if err := provider.TestConnection(ctx); err != nil {
		logger.Errorf("[存储配置服务] 连接测试失败: %s, 错误: %v", cfg.Name, err)
		return errors.ErrStorageConnectionFailedError.WithOriginalError(err)
	}

	logger.Infof("[存储配置服务] 连接测试成功: %s", cfg.Name)
	return nil
}

// GetActiveConfig 获取当前激活的存储配置
func (s *configService) GetActiveConfig(ctx context.Context) (*database.StorageConfig, error) {
	var cfg database.StorageConfig
	err := s.db.WithContext(ctx).Where("is_active = ? AND is_enabled = ?", true, true).First(&cfg).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.ErrDatabaseQueryError.WithOriginalError(err)
	}
	return &cfg, nil
}

// ToggleConfig 启用或禁用存储配置
func (s *configService) ToggleConfig(ctx context.Context, id uint, enabled bool) error {
	cfg, err := s.GetConfig(ctx, id)
	if err != nil {
		return err
	}
	if cfg.IsActive && !enabled {
		return errors.ErrStorageConfigInUseError
	}

	if err := s.db.WithContext(ctx).Model(&database.StorageConfig{}).Where("id = ?", id).
		Update("is_enabled", enabled).Error; err != nil {
		return errors.ErrDatabaseUpdateError.WithOriginalError(err)
	}
	logger.Infof("[存储配置服务] 配置 %s (ID: %d) 启用状态: %v", cfg.Name, id, enabled)
	return nil
}

// Active 返回写入新文件的存储后端
func (s *configService) Active(ctx context.Context) (Provider, uint, error) {
	cfg, err := s.GetActiveConfig(ctx)
	if err != nil {
		return nil, 0, err
	}
	if cfg == nil {
		return s.local, 0, nil
	}

	provider, err := s.newProvider(ctx, cfg)
	if err != nil {
		return nil, 0, providerError(err)
	}
	return provider, cfg.ID, nil
}

// ProviderFor 返回读取已有对象的存储后端
// 已禁用或已删除的配置仍可读取，保证旧文件可下载
func (s *configService) ProviderFor(ctx context.Context, provider string, configID uint) (Provider, error) {
	if provider == database.ProviderLocal || configID == 0 {
		return s.local, nil
	}

	var cfg database.StorageConfig
	if err := s.db.WithContext(ctx).Unscoped().First(&cfg, configID).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrStorageConfigNotFoundError.WithDetailsf("id=%d", configID)
		}
		return nil, errors.ErrDatabaseQueryError.WithOriginalError(err)
	}
	if cfg.Provider != provider {
		return nil, errors.ErrStorageConfigInvalidError.WithDetailsf("config %d is %s, not %s", configID, cfg.Provider, provider)
	}

	p, err := s.newProvider(ctx, &cfg)
	if err != nil {
		return nil, providerError(err)
	}
	return p, nil
}

func providerError(err error) error {
	if stderrors.Is(err, ErrProviderNotSupported) {
		return errors.ErrStorageProviderNotSupportedError
	}
	return errors.ErrStorageConnectionFailedError.WithOriginalError(err)
}

func deactivateAll(tx *gorm.DB) error {
	if err := tx.Model(&database.StorageConfig{}).Where("is_active = ?", true).
		Update("is_active", false).Error; err != nil {
		return errors.ErrDatabaseUpdateError.WithOriginalError(fmt.Errorf("deactivate configs: %w", err))
	}
	return nil
}

// validateConfig 校验配置字段，更新时允许不传 SecretKey
func validateConfig(cfg *database.StorageConfig, requireSecret bool) error {
	var missing []string
	if strings.TrimSpace(cfg.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(cfg.Region) == "" {
		missing = append(missing, "region")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		missing = append(missing, "bucket")
	}
	if strings.TrimSpace(cfg.AccessKey) == "" {
		missing = append(missing, "access_key")
	}
	if requireSecret && strings.TrimSpace(cfg.SecretKey) == "" {
		missing = append(missing, "secret_key")
	}
	if len(missing) > 0 {
		return errors.ErrStorageConfigInvalidError.WithDetails("missing " + strings.Join(missing, ", "))
	}

	switch cfg.Provider {
	case database.ProviderAliyun, database.ProviderTencent, database.ProviderQiniu, database.ProviderS3:
	default:
		return errors.ErrStorageProviderNotSupportedError.WithDetails(cfg.Provider)
	}

	cfg.PathPrefix = strings.Trim(cfg.PathPrefix, "/")
	return nil
}

package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/weiwangfds/pdftoolkit/internal/database"
	"github.com/weiwangfds/pdftoolkit/internal/response"
	storageservice "github.com/weiwangfds/pdftoolkit/internal/service/storage"
)

// StorageHandler 对象存储配置管理处理器，仅管理员可用
type StorageHandler struct {
	configService storageservice.ConfigService
}

// NewStorageHandler 创建存储配置处理器实例
func NewStorageHandler(configService storageservice.ConfigService) *StorageHandler {
	return &StorageHandler{configService: configService}
}

// StorageConfigRequest 创建或更新存储配置的请求体
// 更新时 secret_key 留空表示保留原值
type StorageConfigRequest struct {
	Name         string `json:"name" binding:"required,max=100"`
	Provider     string `json:"provider" binding:"required,oneof=aliyun tencent qiniu s3"`
	Region       string `json:"region" binding:"required"`
	Bucket       string `json:"bucket" binding:"required"`
	AccessKey    string `json:"access_key" binding:"required"`
	SecretKey    string `json:"secret_key"`
	Endpoint     string `json:"endpoint"`
	PathPrefix   string `json:"path_prefix"`
	UsePathStyle bool   `json:"use_path_style"`
}

func (r *StorageConfigRequest) model() *database.StorageConfig {
	return &database.StorageConfig{
		Name:         r.Name,
		Provider:     r.Provider,
		Region:       r.Region,
		Bucket:       r.Bucket,
		AccessKey:    r.AccessKey,
		SecretKey:    r.SecretKey,
		Endpoint:     r.Endpoint,
		PathPrefix:   r.PathPrefix,
		UsePathStyle: r.UsePathStyle,
	}
}

// CreateConfig 创建存储配置
// @Summary 创建存储配置
// @Description 第一个配置会自动激活
// @Tags 存储配置管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param config body StorageConfigRequest true "存储配置"
// @Success 201 {object} response.Response{data=database.StorageConfig}
// @Failure 400 {object} response.Response "请求参数错误"
// @Router /admin/storage/configs [post]
func (h *StorageHandler) CreateConfig(c *gin.Context) {
	var req StorageConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.AppError(c, bindError(err))
		return
	}
	cfg := req.model()
	if err := h.configService.CreateConfig(c.Request.Context(), cfg); err != nil {
		response.AppError(c, err)
		return
	}
	response.Created(c, response.Translate(c, "storage_config_created"), cfg.Redacted())
}

// GetConfig 获取存储配置
// @Summary 获取存储配置
// @Tags 存储配置管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "配置ID"
// @Success 200 {object} response.Response{data=database.StorageConfig}
// @Failure 404 {object} response.Response "配置不存在"
// @Router /admin/storage/configs/{id} [get]
func (h *StorageHandler) GetConfig(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.AppError(c, err)
		return
	}
	cfg, err := h.configService.GetConfig(c.Request.Context(), id)
	if err != nil {
		response.AppError(c, err)
		return
	}
	response.Success(c, cfg.Redacted())
}

// ListConfigs 获取存储配置列表
// @Summary 获取存储配置列表
// @Tags 存储配置管理
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]database.StorageConfig}
// @Router /admin/storage/configs [get]
func (h *StorageHandler) ListConfigs(c *gin.Context) {
	configs, err := h.configService.ListConfigs(c.Request.Context())
	if err != nil {
		response.AppError(c, err)
		return
	}
	for i := range configs {
		configs[i] = configs[i].Redacted()
	}
	response.Success(c, configs)
}

// UpdateConfig 更新存储配置
// @Summary 更新存储配置
// @Tags 存储配置管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "配置ID"
// @Param config body StorageConfigRequest true "存储配置"
// @Success 200 {object} response.Response{data=database.StorageConfig}
// @Router /admin/storage/configs/{id} [put]
func (h *StorageHandler) UpdateConfig(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.AppError(c, err)
		return
	}
	var req StorageConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.AppError(c, bindError(err))
		return
	}
	cfg := req.model()
	cfg.ID = id
	if err := h.configService.UpdateConfig(c.Request.Context(), cfg); err != nil {
		response.AppError(c, err)
		return
	}
	updated, err := h.configService.GetConfig(c.Request.Context(), id)
	if err != nil {
		response.AppError(c, err)
		return
	}
	response.SuccessWithMessage(c, response.Translate(c, "storage_config_updated"), updated.Redacted())
}

// DeleteConfig 删除存储配置
// @Summary 删除存储配置
// @Description 激活中的配置不能删除
// @Tags 存储配置管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "配置ID"
// @Success 200 {object} response.Response
// @Router /admin/storage/configs/{id} [delete]
func (h *StorageHandler) DeleteConfig(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.AppError(c, err)
		return
	}
	if err := h.configService.DeleteConfig(c.Request.Context(), id); err != nil {
		response.AppError(c, err)
		return
	}
	response.SuccessWithMessage(c, response.Translate(c, "storage_config_deleted"), nil)
}

// ActivateConfig 激活存储配置
// @Summary 激活存储配置
// @Tags 存储配置管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "配置ID"
// @Success 200 {object} response.Response
// @Router /admin/storage/configs/{id}/activate [post]
func (h *StorageHandler) ActivateConfig(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.AppError(c, err)
		return
	}
	if err := h.configService.ActivateConfig(c.Request.Context(), id); err != nil {
		response.AppError(c, err)
		return
	}
	response.SuccessWithMessage(c, response.Translate(c, "storage_config_activated"), nil)
}

// TestConfig 测试存储连接
// @Summary 测试存储连接
// @Tags 存储配置管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "配置ID"
// @Success 200 {object} response.Response
// @Failure 500 {object} response.Response "连接失败"
// @Router /admin/storage/configs/{id}/test [post]
func (h *StorageHandler) TestConfig(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.AppError(c, err)
		return
	}
	if err := h.configService.TestConfig(c.Request.Context(), id); err != nil {
		response.AppError(c, err)
		return
	}
	response.SuccessWithMessage(c, response.Translate(c, "storage_config_tested"), nil)
}

// ToggleConfigRequest 启用或禁用请求
type ToggleConfigRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// ToggleConfig 启用或禁用存储配置
// @Summary 启用或禁用存储配置
// @Description 激活中的配置不能禁用
// @Tags 存储配置管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "配置ID"
// @Param request body ToggleConfigRequest true "启用状态"
// @Success 200 {object} response.Response
// @Router /admin/storage/configs/{id}/toggle [post]
func (h *StorageHandler) ToggleConfig(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.AppError(c, err)
		return
	}
	var req ToggleConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.AppError(c, bindError(err))
		return
	}
	if err := h.configService.ToggleConfig(c.Request.Context(), id, *req.Enabled); err != nil {
		response.AppError(c, err)
		return
	}
	response.SuccessWithMessage(c, response.Translate(c, "storage_config_toggled"), gin.H{"enabled": *req.Enabled})
}

// GetActiveConfig 获取当前激活的存储配置
// @Summary 获取当前激活的存储配置
// @Description 没有激活配置时 data 为 null，表示写入本地存储
// @Tags 存储配置管理
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=database.StorageConfig}
// @Router /admin/storage/configs/active [get]
func (h *StorageHandler) GetActiveConfig(c *gin.Context) {
	cfg, err := h.configService.GetActiveConfig(c.Request.Context())
	if err != nil {
		response.AppError(c, err)
		return
	}
	if cfg == nil {
		response.Success(c, nil)
		return
	}
	response.Success(c, cfg.Redacted())
}

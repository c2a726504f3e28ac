package database

import (
	"time"

	"gorm.io/gorm"
)

// 存储提供商名称
const (
	ProviderLocal   = "local"
	ProviderAliyun  = "aliyun"
	ProviderTencent = "tencent"
	ProviderQiniu   = "qiniu"
	ProviderS3      = "s3"
)

// StorageConfig 对象存储配置模型
// 支持阿里云OSS、腾讯云COS、七牛云Kodo和S3兼容存储
// 系统中最多一个激活配置，没有激活配置时新文件写入本地磁盘
type StorageConfig struct {
	ID           uint           `gorm:"primarykey" json:"id"`                                     // 主键ID，自增
	Name         string         `gorm:"not null;size:100" json:"name" binding:"required,max=100"` // 配置名称
	Provider     string         `gorm:"not null;size:20" json:"provider" binding:"required,oneof=aliyun tencent qiniu s3"`
	Region       string         `gorm:"not null;size:50" json:"region" binding:"required"`              // 服务区域，如 cn-hangzhou、ap-beijing、us-east-1
	Bucket       string         `gorm:"not null;size:100" json:"bucket" binding:"required"`             // 存储桶名称
	AccessKey    string         `gorm:"not null;size:100" json:"access_key" binding:"required"`         // 访问密钥ID
	SecretKey    string         `gorm:"not null;size:200" json:"secret_key,omitempty" binding:"required"` // 访问密钥Secret，响应时清空
	Endpoint     string         `gorm:"size:200" json:"endpoint"`                                       // 自定义服务端点，可选
	PathPrefix   string         `gorm:"size:200;default:'files'" json:"path_prefix"`                    // 对象键前缀
	UsePathStyle bool           `gorm:"default:false" json:"use_path_style"`                            // S3兼容存储使用路径风格寻址
	IsActive     bool           `gorm:"default:false" json:"is_active"`                                 // 是否为当前激活配置
	IsEnabled    bool           `gorm:"default:true" json:"is_enabled"`                                 // 是否启用
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (StorageConfig) TableName() string {
	return "storage_configs"
}

// Redacted 返回去掉密钥的副本，用于接口响应
func (c StorageConfig) Redacted() StorageConfig {
	c.SecretKey = ""
	return c
}

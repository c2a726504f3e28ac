// Package database 定义了持久化模型、连接初始化和迁移
package database

import (
	"time"

	"gorm.io/gorm"
)

// FileMetadata 用户文件元数据模型
// 每个文件归属于一个用户身份，内容保存在本地磁盘或对象存储中
// 上传时创建，显式删除时移除，不做版本管理
type FileMetadata struct {
	ID              uint           `gorm:"primarykey" json:"-"`                                  // 主键ID，自增
	FileID          string         `gorm:"uniqueIndex;not null;size:36" json:"id"`               // 文件唯一标识符（UUID格式）
	OwnerID         string         `gorm:"index;not null;size:128" json:"owner_id"`              // 所属用户身份
	FileName        string         `gorm:"not null;size:255" json:"file_name"`                   // 原始文件名称
	ObjectKey       string         `gorm:"not null;size:500" json:"-"`                           // 存储后端中的对象键
	Provider        string         `gorm:"not null;size:20;default:local" json:"provider"`       // 存储后端：local、aliyun、tencent、qiniu、s3
	StorageConfigID uint           `gorm:"not null;default:0" json:"-"`                          // 对象存储配置ID，本地存储为0
	FileSize        int64          `gorm:"not null" json:"file_size"`                            // 文件大小，单位为字节
	FileHash        string         `gorm:"not null;size:64" json:"file_hash"`                    // 内容SHA256，用于完整性校验
	FileFormat      string         `gorm:"not null;size:50" json:"file_format"`                  // 扩展名（如 .pdf、.png）
	ContentType     string         `gorm:"size:100" json:"content_type"`                         // 探测到的MIME类型
	CreatedAt       time.Time      `json:"upload_time"`                                          // 上传时间
	UpdatedAt       time.Time      `json:"-"`                                                    // 记录最后更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                       // 软删除时间戳
}

// TableName 指定FileMetadata模型对应的数据库表名
func (FileMetadata) TableName() string {
	return "file_metadata"
}

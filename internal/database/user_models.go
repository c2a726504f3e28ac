package database

import "time"

// Role 用户角色
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

// Valid 判断角色是否为已知取值
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleGuest:
		return true
	}
	return false
}

// UserProfile 用户资料，每个身份一条
type UserProfile struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	Principal string    `gorm:"uniqueIndex;not null;size:128" json:"principal"` // 用户身份标识
	Name      string    `gorm:"not null;size:100" json:"name"`                  // 显示名称
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (UserProfile) TableName() string {
	return "user_profiles"
}

// UserRole 用户角色分配记录
// 没有记录的已登录用户按 user 处理
type UserRole struct {
	ID         uint      `gorm:"primarykey" json:"-"`
	Principal  string    `gorm:"uniqueIndex;not null;size:128" json:"principal"`
	Role       Role      `gorm:"not null;size:10" json:"role"`
	AssignedBy string    `gorm:"size:128" json:"assigned_by"` // 执行分配的管理员
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName 指定表名
func (UserRole) TableName() string {
	return "user_roles"
}

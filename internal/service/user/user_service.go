// Package user 提供用户资料和角色管理
package user

import (
	"context"
	stderrors "errors"
	"strings"
	"unicode/utf8"

	"github.com/weiwangfds/pdftoolkit/config"
	"github.com/weiwangfds/pdftoolkit/internal/database"
	"github.com/weiwangfds/pdftoolkit/internal/errors"
	"github.com/weiwangfds/pdftoolkit/internal/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxNameLength 显示名称的最大字符数
const MaxNameLength = 100

// UserService 用户服务接口
type UserService interface {
	// GetProfile 获取用户资料，不存在时返回 nil
	GetProfile(ctx context.Context, principal string) (*database.UserProfile, error)

	// GetProfileFor 读取他人资料，仅本人或管理员可读
	GetProfileFor(ctx context.Context, caller, principal string) (*database.UserProfile, error)

	// SaveProfile 保存调用者的资料
	SaveProfile(ctx context.Context, principal string, req *SaveProfileRequest) (*database.UserProfile, error)

	// GetRole 获取角色，匿名调用者为 guest，未分配角色的用户为 user
	GetRole(ctx context.Context, principal string) (database.Role, error)

	// IsAdmin 判断是否为管理员
	IsAdmin(ctx context.Context, principal string) (bool, error)

	// AssignRole 为目标用户分配角色，调用者必须是管理员
	AssignRole(ctx context.Context, caller, target string, role database.Role) error
}

// SaveProfileRequest 保存资料请求
type SaveProfileRequest struct {
	Name string `json:"name" binding:"required"` // 显示名称
}

// AssignRoleRequest 分配角色请求
type AssignRoleRequest struct {
	Role database.Role `json:"role" binding:"required,oneof=admin user guest"`
}

type userService struct {
	db   *gorm.DB
	auth config.AuthConfig
}

// NewUserService 创建用户服务实例
// auth.AdminPrincipals 中的身份始终视为管理员
func NewUserService(db *gorm.DB, auth config.AuthConfig) UserService {
	return &userService{db: db, auth: auth}
}

func (s *userService) GetProfile(ctx context.Context, principal string) (*database.UserProfile, error) {
	if principal == "" {
		return nil, errors.ErrAuthRequiredError
	}

	var profile database.UserProfile
	err := s.db.WithContext(ctx).Where("principal = ?", principal).First(&profile).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.ErrDatabaseQueryError.WithOriginalError(err)
	}
	return &profile, nil
}

func (s *userService) GetProfileFor(ctx context.Context, caller, principal string) (*database.UserProfile, error) {
	if caller == "" {
		return nil, errors.ErrAuthRequiredError
	}
	if caller != principal {
		admin, err := s.IsAdmin(ctx, caller)
		if err != nil {
			return nil, err
		}
		if !admin {
			return nil, errors.ErrAdminRequiredError
		}
	}
	return s.GetProfile(ctx, principal)
}

func (s *userService) SaveProfile(ctx context.Context, principal string, req *SaveProfileRequest) (*database.UserProfile, error) {
	if principal == "" {
		return nil, errors.ErrAuthRequiredError
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errors.ErrProfileInvalidError.WithDetails("name is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return nil, errors.ErrProfileInvalidError.WithDetailsf("name exceeds %d characters", MaxNameLength)
	}

	profile := &database.UserProfile{Principal: principal, Name: name}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "principal"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
	}).Create(profile).Error
	if err != nil {
		return nil, errors.ErrDatabaseInsertError.WithOriginalError(err)
	}

	logger.WithField("principal", principal).Info("用户资料已保存")
	return s.GetProfile(ctx, principal)
}

func (s *userService) GetRole(ctx context.Context, principal string) (database.Role, error) {
	if principal == "" {
		return database.RoleGuest, nil
	}
	if s.auth.IsAdminPrincipal(principal) {
		return database.RoleAdmin, nil
	}

	var role database.UserRole
	err := s.db.WithContext(ctx).Where("principal = ?", principal).First(&role).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return database.RoleUser, nil
		}
		return "", errors.ErrDatabaseQueryError.WithOriginalError(err)
	}
	return role.Role, nil
}

func (s *userService) IsAdmin(ctx context.Context, principal string) (bool, error) {
	role, err := s.GetRole(ctx, principal)
	if err != nil {
		return false, err
	}
	return role == database.RoleAdmin, nil
}

func (s *userService) AssignRole(ctx context.Context, caller, target string, role database.Role) error {
	if caller == "" {
		return errors.ErrAuthRequiredError
	}
	admin, err := s.IsAdmin(ctx, caller)
	if err != nil {
		return err
	}
	if !admin {
		return errors.ErrAdminRequiredError
	}
	if !role.Valid() {
		return errors.ErrInvalidRoleError.WithDetails(string(role))
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return errors.ErrInvalidParameters.WithDetails("target principal is required")
	}

	record := &database.UserRole{Principal: target, Role: role, AssignedBy: caller}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "principal"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "assigned_by", "updated_at"}),
	}).Create(record).Error
	if err != nil {
		return errors.ErrDatabaseInsertError.WithOriginalError(err)
	}

	logger.WithFields(logger.Fields{"caller": caller, "target": target, "role": role}).Info("角色已分配")
	return nil
}

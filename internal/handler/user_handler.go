package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/weiwangfds/pdftoolkit/internal/middleware"
	"github.com/weiwangfds/pdftoolkit/internal/response"
	"github.com/weiwangfds/pdftoolkit/internal/service/user"
)

// UserHandler 用户资料与角色处理器
type UserHandler struct {
	userService user.UserService
}

// NewUserHandler 创建用户处理器实例
func NewUserHandler(userService user.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetMyProfile 获取当前用户资料
// @Summary 获取当前用户资料
// @Description 尚未保存资料时 data 为 null
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=database.UserProfile}
// @Router /users/me/profile [get]
func (h *UserHandler) GetMyProfile(c *gin.Context) {
	profile, err := h.userService.GetProfile(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		response.AppError(c, err)
		return
	}
	response.Success(c, profile)
}

// SaveMyProfile 保存当前用户资料
// @Summary 保存当前用户资料
// @Tags 用户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body user.SaveProfileRequest true "用户资料"
// @Success 200 {object} response.Response{data=database.UserProfile}
// @Failure 400 {object} response.Response "资料无效"
// @Router /users/me/profile [put]
func (h *UserHandler) SaveMyProfile(c *gin.Context) {
	var req user.SaveProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.AppError(c, bindError(err))
		return
	}
	profile, err := h.userService.SaveProfile(c.Request.Context(), middleware.Principal(c), &req)
	if err != nil {
		response.AppError(c, err)
		return
	}
	response.SuccessWithMessage(c, response.Translate(c, "profile_saved"), profile)
}

// GetMyRole 获取当前调用者角色
// @Summary 获取当前调用者角色
// @Description 匿名调用者为 guest
// @Tags 用户
// @Produce json
// @Success 200 {object} response.Response{data=map[string]string}
// @Router /users/me/role [get]
func (h *UserHandler) GetMyRole(c *gin.Context) {
	role, err := h.userService.GetRole(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		response.AppError(c, err)
		return
	}
	response.Success(c, gin.H{"role": role})
}

// IsAdmin 判断当前调用者是否为管理员
// @Summary 判断当前调用者是否为管理员
// @Tags 用户
// @Produce json
// @Success 200 {object} response.Response{data=map[string]bool}
// @Router /users/me/is-admin [get]
func (h *UserHandler) IsAdmin(c *gin.Context) {
	ok, err := h.userService.IsAdmin(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		response.AppError(c, err)
		return
	}
	response.Success(c, gin.H{"is_admin": ok})
}

// GetProfile 获取指定用户资料，仅本人或管理员
// @Summary 获取指定用户资料
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Param principal path string true "用户身份"
// @Success 200 {object} response.Response{data=database.UserProfile}
// @Failure 403 {object} response.Response "无权查看"
// @Router /users/{principal}/profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	profile, err := h.userService.GetProfileFor(c.Request.Context(), middleware.Principal(c), c.Param("principal"))
	if err != nil {
		response.AppError(c, err)
		return
	}
	response.Success(c, profile)
}

// AssignRole 为用户分配角色
// @Summary 为用户分配角色
// @Tags 管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param principal path string true "用户身份"
// @Param role body user.AssignRoleRequest true "角色"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response "需要管理员权限"
// @Router /admin/users/{principal}/role [put]
func (h *UserHandler) AssignRole(c *gin.Context) {
	var req user.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.AppError(c, bindError(err))
		return
	}
	target := c.Param("principal")
	if err := h.userService.AssignRole(c.Request.Context(), middleware.Principal(c), target, req.Role); err != nil {
		response.AppError(c, err)
		return
	}
	response.SuccessWithMessage(c, response.Translate(c, "role_assigned"), gin.H{
		"principal": target,
		"role":      req.Role,
	})
}

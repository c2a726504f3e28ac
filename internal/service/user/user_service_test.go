package user

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwangfds/pdftoolkit/config"
	"github.com/weiwangfds/pdftoolkit/internal/database"
	"github.com/weiwangfds/pdftoolkit/internal/errors"
)

func setupService(t *testing.T) UserService {
	db, err := database.Init(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })
	return NewUserService(db, config.AuthConfig{AdminPrincipals: []string{"root"}})
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	t.Run("没有资料时返回nil", func(t *testing.T) {
		p, err := svc.GetProfile(ctx, "alice")
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("保存时去掉首尾空白", func(t *testing.T) {
		p, err := svc.SaveProfile(ctx, "alice", &SaveProfileRequest{Name: "  Alice  "})
		require.NoError(t, err)
		assert.Equal(t, "Alice", p.Name)

		p, err = svc.SaveProfile(ctx, "alice", &SaveProfileRequest{Name: "Alice B"})
		require.NoError(t, err)
		assert.Equal(t, "Alice B", p.Name)
	})

	t.Run("名称校验", func(t *testing.T) {
		_, err := svc.SaveProfile(ctx, "alice", &SaveProfileRequest{Name: "   "})
		assert.True(t, errors.Is(err, errors.ErrProfileInvalidError))

		_, err = svc.SaveProfile(ctx, "alice", &SaveProfileRequest{Name: strings.Repeat("名", 101)})
		assert.True(t, errors.Is(err, errors.ErrProfileInvalidError))

		_, err = svc.SaveProfile(ctx, "alice", &SaveProfileRequest{Name: strings.Repeat("名", 100)})
		assert.NoError(t, err)
	})

	t.Run("匿名调用者不能保存", func(t *testing.T) {
		_, err := svc.SaveProfile(ctx, "", &SaveProfileRequest{Name: "x"})
		assert.True(t, errors.Is(err, errors.ErrAuthRequiredError))
	})

	t.Run("他人资料仅管理员可读", func(t *testing.T) {
		_, err := svc.GetProfileFor(ctx, "bob", "alice")
		assert.True(t, errors.Is(err, errors.ErrAdminRequiredError))

		p, err := svc.GetProfileFor(ctx, "root", "alice")
		require.NoError(t, err)
		require.NotNil(t, p)
	})
}

func TestRoles(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	role, err := svc.GetRole(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, database.RoleGuest, role)

	role, err = svc.GetRole(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, database.RoleUser, role)

	admin, err := svc.IsAdmin(ctx, "root")
	require.NoError(t, err)
	assert.True(t, admin)

	t.Run("非管理员不能分配角色", func(t *testing.T) {
		err := svc.AssignRole(ctx, "alice", "bob", database.RoleAdmin)
		assert.True(t, errors.Is(err, errors.ErrAdminRequiredError))
	})

	t.Run("管理员分配角色", func(t *testing.T) {
		require.NoError(t, svc.AssignRole(ctx, "root", "alice", database.RoleAdmin))
		admin, err := svc.IsAdmin(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, admin)

		require.NoError(t, svc.AssignRole(ctx, "alice", "bob", database.RoleGuest))
		role, err := svc.GetRole(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, database.RoleGuest, role)
	})

	t.Run("无效角色", func(t *testing.T) {
		err := svc.AssignRole(ctx, "root", "bob", database.Role("owner"))
		assert.True(t, errors.Is(err, errors.ErrInvalidRoleError))
	})
}

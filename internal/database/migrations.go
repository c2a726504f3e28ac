package database

import (
	"context"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/weiwangfds/pdftoolkit/internal/logger"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate 执行数据库迁移
// 先用gorm同步表结构，再用goose执行嵌入的SQL迁移（索引和单例数据）
func Migrate(ctx context.Context, db *gorm.DB, driver string) error {
	logger.Info("开始执行数据库迁移...")

	if err := db.WithContext(ctx).AutoMigrate(
		&FileMetadata{},
		&UserProfile{},
		&UserRole{},
		&AdSenseConfig{},
		&AdRevenueMetric{},
		&Counter{},
		&StorageConfig{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if err := runSQLMigrations(ctx, db, driver); err != nil {
		return err
	}

	logger.Info("数据库迁移完成")
	return nil
}

// MigrationVersion 返回当前已应用的SQL迁移版本
func MigrationVersion(ctx context.Context, db *gorm.DB, driver string) (int64, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return 0, err
	}
	if err := setupGoose(driver); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, sqlDB)
}

func runSQLMigrations(ctx context.Context, db *gorm.DB, driver string) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := setupGoose(driver); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
		logger.Errorf("SQL迁移失败: %v", err)
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func setupGoose(driver string) error {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(logger.GetLogger())

	dialect := "sqlite3"
	if driver == "postgres" {
		dialect = "postgres"
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return nil
}

//go:build mage

// Package main 开发工具的 mage 构建目标
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir     = "bin"
	binName    = "pdftoolkit"
	cmdPkg     = "./cmd/pdftoolkit"
	versionPkg = "github.com/weiwangfds/pdftoolkit/internal/version"
)

// Default 默认目标
var Default = Build

// ldflags 注入版本、提交号和构建时间
func ldflags() (string, error) {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	commit, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil {
		commit = "none"
	}
	flags := []string{
		"-s", "-w",
		fmt.Sprintf("-X %s.Version=%s", versionPkg, version),
		fmt.Sprintf("-X %s.Commit=%s", versionPkg, strings.TrimSpace(commit)),
		fmt.Sprintf("-X %s.BuildDate=%s", versionPkg, time.Now().UTC().Format(time.RFC3339)),
	}
	return strings.Join(flags, " "), nil
}

// Build 编译命令行程序到 bin/
func Build() error {
	mg.Deps(Docs)
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	flags, err := ldflags()
	if err != nil {
		return err
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-ldflags", flags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test 运行全部测试
func Test() error {
	return sh.RunV("go", "test", "-race", "-count=1", "./...")
}

// Cover 运行测试并生成覆盖率报告
func Cover() error {
	if err := sh.RunV("go", "test", "-coverprofile=coverage.out", "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-func=coverage.out")
}

// Lint 运行 go vet 和 gofmt 检查
func Lint() error {
	if err := sh.RunV("go", "vet", "./..."); err != nil {
		return err
	}
	out, err := sh.Output("gofmt", "-l", "cmd", "config", "internal", "docs")
	if err != nil {
		return err
	}
	if out != "" {
		return fmt.Errorf("files need gofmt:\n%s", out)
	}
	return nil
}

// Docs 重新生成 swagger 文档
func Docs() error {
	if _, err := exec.LookPath("swag"); err != nil {
		if err := sh.RunV("go", "install", "github.com/swaggo/swag/cmd/swag@v1.16.6"); err != nil {
			return err
		}
	}
	return sh.RunV("swag", "init", "-g", "main.go", "-d", "cmd/pdftoolkit,internal/handler,internal/response", "-o", "docs", "--parseDependency")
}

// Migrate 对配置中的数据库执行迁移
func Migrate() error {
	return sh.RunV("go", "run", cmdPkg, "migrate")
}

// Run 启动开发服务
func Run() error {
	env := map[string]string{"PDFTOOLKIT_SERVER_MODE": "debug"}
	return sh.RunWithV(env, "go", "run", cmdPkg, "serve")
}

// Clean 删除构建产物
func Clean() error {
	for _, p := range []string{binDir, "coverage.out"} {
		if err := sh.Rm(p); err != nil {
			return err
		}
	}
	return nil
}

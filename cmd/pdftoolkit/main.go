// @title PDF Toolkit API
// @version 1.0
// @description PDF合并、拆分、压缩、旋转、加密以及图片和Excel转PDF服务

// @contact.name API Support
// @contact.url https://github.com/weiwangfds/pdftoolkit

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/weiwangfds/pdftoolkit/config"
	"github.com/weiwangfds/pdftoolkit/internal/i18n"
	"github.com/weiwangfds/pdftoolkit/internal/logger"
)

// rootOptions 所有子命令共享的全局参数
type rootOptions struct {
	configFile string
}

// loadConfig 加载配置并初始化日志和默认语言
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(o.configFile)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(&cfg.Log); err != nil {
		return nil, err
	}
	if cfg.I18n.DefaultLanguage != "" {
		i18n.GetInstance().SetDefaultLanguage(cfg.I18n.DefaultLanguage)
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "pdftoolkit",
		Short: "PDF工具箱服务与命令行",
		Long: `pdftoolkit 提供PDF合并、拆分、压缩、旋转、密码保护，以及图片和Excel转PDF。

serve 启动HTTP服务；merge、split 等子命令直接处理本地文件。`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "",
		"配置文件路径（默认查找 ./config.yaml、./config/config.yaml 或 ~/.config/pdftoolkit/config.yaml）")

	cmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newTokenCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	cmd.AddCommand(newToolCmds()...)
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// Package version 保存构建时注入的版本信息
package version

// 通过 -ldflags "-X github.com/weiwangfds/pdftoolkit/internal/version.Version=..." 注入
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// ServiceName 服务名称
const ServiceName = "PDF Toolkit"

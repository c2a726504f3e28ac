// Package pdftool 实现PDF工具箱的转换引擎
// 合并、拆分、压缩、旋转和加密基于 pdfcpu，图片和Excel转PDF基于 fpdf 与 excelize
// 所有操作都在内存中完成，不修改输入，成功时返回完整的结果
package pdftool

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// 不读写 pdfcpu 的用户配置目录
	api.DisableConfigDir()
}

// Input 待处理的文件
type Input struct {
	Name        string // 原始文件名
	ContentType string // 客户端声明的MIME类型，可为空
	Data        []byte
}

// ProgressFunc 进度回调，取值0到100
type ProgressFunc func(percent int)

func (p ProgressFunc) report(percent int) {
	if p != nil {
		p(percent)
	}
}

func (in Input) reader() *bytes.Reader {
	return bytes.NewReader(in.Data)
}

func (in Input) ext() string {
	return strings.ToLower(filepath.Ext(in.Name))
}

// sniff 根据内容探测MIME类型
func (in Input) sniff() string {
	if len(in.Data) == 0 {
		return ""
	}
	return mimetype.Detect(in.Data).String()
}

// IsPDF 声明类型包含pdf、扩展名为.pdf或内容探测为PDF时视为PDF
func IsPDF(in Input) bool {
	if strings.Contains(strings.ToLower(in.ContentType), "pdf") || in.ext() == ".pdf" {
		return true
	}
	return strings.HasPrefix(in.sniff(), "application/pdf")
}

// IsImage 声明类型或探测类型为 image/*
func IsImage(in Input) bool {
	if strings.HasPrefix(strings.ToLower(in.ContentType), "image/") {
		return true
	}
	return strings.HasPrefix(in.sniff(), "image/")
}

// IsExcel 按扩展名判断 .xlsx/.xls
func IsExcel(name string) bool {
	return hasExt(name, ".xlsx", ".xls")
}

// IsWord 按扩展名判断 .docx/.doc
func IsWord(name string) bool {
	return hasExt(name, ".docx", ".doc")
}

// IsPowerPoint 按扩展名判断 .pptx/.ppt
func IsPowerPoint(name string) bool {
	return hasExt(name, ".pptx", ".ppt")
}

func hasExt(name string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// baseName 去掉文件名末尾的 .pdf（不区分大小写）
func baseName(name string) string {
	if strings.EqualFold(filepath.Ext(name), ".pdf") {
		return name[:len(name)-len(".pdf")]
	}
	return name
}

// newConfig pdfcpu 配置，宽松校验以兼容常见的不规范文件
func newConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

package pdftool

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/weiwangfds/pdftoolkit/internal/errors"
)

// SplitMode 拆分方式
type SplitMode string

const (
	SplitModeRange   SplitMode = "range"    // 提取连续页码范围
	SplitModePerPage SplitMode = "per-page" // 每页一个文件
)

// SplitOptions 拆分参数，页码从1开始，0表示使用默认值
type SplitOptions struct {
	Mode      SplitMode
	StartPage int
	EndPage   int
}

// SplitResult 拆分产生的单个文件
type SplitResult struct {
	FileName string
	Data     []byte
}

// RotationAngle 旋转角度，顺时针
type RotationAngle int

// Valid 只允许90、180、270
func (a RotationAngle) Valid() bool {
	return a == 90 || a == 180 || a == 270
}

// ProtectMode 加密操作类型
type ProtectMode string

const (
	ProtectModeAdd    ProtectMode = "add"
	ProtectModeRemove ProtectMode = "remove"
)

// ProtectOptions 加密参数
type ProtectOptions struct {
	Mode            ProtectMode
	Password        string // 添加保护时使用的密码
	CurrentPassword string // 移除保护时提供的当前密码
}

func invalidPDF(name string) error {
	return errors.ErrInvalidFileTypeError.WithDetailsf("Invalid file type: %s. Only PDF files are supported.", name)
}

func processingFailed(name string, err error) error {
	return errors.ErrPDFProcessingFailedError.WithOriginalError(fmt.Errorf("%s: %w", name, err))
}

// PageCount 返回PDF页数
func PageCount(ctx context.Context, in Input) (int, error) {
	if !IsPDF(in) {
		return 0, invalidPDF(in.Name)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := api.PageCount(in.reader(), newConfig())
	if err != nil {
		return 0, processingFailed(in.Name, err)
	}
	return n, nil
}

// Merge 按输入顺序合并多个PDF
func Merge(ctx context.Context, inputs []Input, progress ProgressFunc) ([]byte, error) {
	if len(inputs) == 0 {
		return nil, errors.ErrNoFilesError
	}
	if len(inputs) == 1 {
		return nil, errors.ErrMergeNeedsTwoError
	}

	readers := make([]io.ReadSeeker, 0, len(inputs))
	n := len(inputs)
	for i, in := range inputs {
		if !IsPDF(in) {
			return nil, invalidPDF(in.Name)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// 先逐个解析，出错时能指出是哪个文件
		if _, err := api.PageCount(in.reader(), newConfig()); err != nil {
			return nil, processingFailed(in.Name, err)
		}
		readers = append(readers, in.reader())
		if i < n-1 {
			progress.report(percentOf(i+1, n))
		}
	}

	var out bytes.Buffer
	if err := api.MergeRaw(readers, &out, false, newConfig()); err != nil {
		return nil, errors.ErrPDFProcessingFailedError.WithOriginalError(err)
	}
	progress.report(100)
	return out.Bytes(), nil
}

// percentOf 返回 round(done/total*100)
func percentOf(done, total int) int {
	return int(math.Round(float64(done) / float64(total) * 100))
}

// Split 按页码范围或逐页拆分PDF
func Split(ctx context.Context, in Input, opts SplitOptions, progress ProgressFunc) ([]SplitResult, error) {
	if len(in.Data) == 0 {
		return nil, errors.ErrNoFilesError
	}
	if !IsPDF(in) {
		return nil, invalidPDF(in.Name)
	}
	if opts.Mode != SplitModeRange && opts.Mode != SplitModePerPage {
		return nil, errors.ErrSplitModeInvalidError.WithDetails(string(opts.Mode))
	}

	progress.report(10)
	progress.report(20)

	total, err := api.PageCount(in.reader(), newConfig())
	if err != nil {
		return nil, processingFailed(in.Name, err)
	}
	progress.report(30)

	base := baseName(in.Name)

	if opts.Mode == SplitModeRange {
		start, end := opts.StartPage, opts.EndPage
		if start == 0 {
			start = 1
		}
		if end == 0 {
			end = total
		}
		if start < 1 || start > total {
			return nil, errors.ErrInvalidPageRangeError.WithDetailsf("Invalid start page: %d. Must be between 1 and %d.", start, total)
		}
		if end < 1 || end > total {
			return nil, errors.ErrInvalidPageRangeError.WithDetailsf("Invalid end page: %d. Must be between 1 and %d.", end, total)
		}
		if start > end {
			return nil, errors.ErrInvalidPageRangeError.WithDetailsf("Start page (%d) cannot be greater than end page (%d).", start, end)
		}

		data, err := trim(in, fmt.Sprintf("%d-%d", start, end))
		if err != nil {
			return nil, err
		}
		progress.report(80)
		result := []SplitResult{{
			FileName: fmt.Sprintf("%s_pages_%d-%d.pdf", base, start, end),
			Data:     data,
		}}
		progress.report(100)
		return result, nil
	}

	results := make([]SplitResult, 0, total)
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := trim(in, fmt.Sprintf("%d", i+1))
		if err != nil {
			return nil, err
		}
		results = append(results, SplitResult{
			FileName: fmt.Sprintf("%s_page_%d.pdf", base, i+1),
			Data:     data,
		})
		progress.report(30 + int(math.Floor(float64(i+1)/float64(total)*70)))
	}
	return results, nil
}

func trim(in Input, selection string) ([]byte, error) {
	var out bytes.Buffer
	if err := api.Trim(in.reader(), &out, []string{selection}, newConfig()); err != nil {
		return nil, processingFailed(in.Name, err)
	}
	return out.Bytes(), nil
}

// Compress 重新写出PDF，合并重复资源并使用对象流
func Compress(ctx context.Context, in Input, progress ProgressFunc) ([]byte, error) {
	if len(in.Data) == 0 {
		return nil, errors.ErrNoFilesError
	}
	if !IsPDF(in) {
		return nil, invalidPDF(in.Name)
	}

	progress.report(10)
	conf := newConfig()
	conf.WriteObjectStream = true
	conf.WriteXRefStream = true
	progress.report(30)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pdfCtx, err := api.ReadValidateAndOptimize(in.reader(), conf)
	if err != nil {
		return nil, processingFailed(in.Name, err)
	}
	progress.report(60)

	var out bytes.Buffer
	if err := api.WriteContext(pdfCtx, &out); err != nil {
		return nil, processingFailed(in.Name, err)
	}
	progress.report(90)
	progress.report(100)
	return out.Bytes(), nil
}

// Rotate 所有页面在当前角度基础上顺时针旋转
func Rotate(ctx context.Context, in Input, angle RotationAngle, progress ProgressFunc) ([]byte, error) {
	if len(in.Data) == 0 {
		return nil, errors.ErrNoFilesError
	}
	if !IsPDF(in) {
		return nil, errors.ErrInvalidFileTypeError.WithDetails("File must be a PDF")
	}
	if !angle.Valid() {
		return nil, errors.ErrInvalidRotationError
	}

	progress.report(10)
	progress.report(30)

	pdfCtx, err := api.ReadContext(in.reader(), newConfig())
	if err != nil {
		return nil, processingFailed(in.Name, err)
	}
	if err := api.ValidateContext(pdfCtx); err != nil {
		return nil, processingFailed(in.Name, err)
	}
	progress.report(50)

	total := pdfCtx.PageCount
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := rotatePage(pdfCtx, i, int(angle)); err != nil {
			return nil, processingFailed(in.Name, err)
		}
		progress.report(50 + int(math.Floor(float64(i)/float64(total)*40)))
	}
	progress.report(90)

	var out bytes.Buffer
	if err := api.WriteContext(pdfCtx, &out); err != nil {
		return nil, processingFailed(in.Name, err)
	}
	progress.report(95)
	progress.report(100)
	return out.Bytes(), nil
}

// rotatePage 页面的新角度为 (当前角度 + angle) % 360，当前角度包含从页面树继承的值
func rotatePage(pdfCtx *model.Context, pageNr, angle int) error {
	d, _, inh, err := pdfCtx.PageDict(pageNr, false)
	if err != nil {
		return err
	}
	if d == nil {
		return fmt.Errorf("page %d not found", pageNr)
	}

	current := 0
	if inh != nil {
		current = inh.Rotate
	}
	if r := d.IntEntry("Rotate"); r != nil {
		current = *r
	}
	rotation := ((current+angle)%360 + 360) % 360
	d.Update("Rotate", types.Integer(rotation))
	return nil
}

// Protect 添加或移除密码保护
// 添加时使用AES-256，用户密码和所有者密码相同，允许打印、修改、复制和填写表单
func Protect(ctx context.Context, in Input, opts ProtectOptions, progress ProgressFunc) ([]byte, error) {
	if len(in.Data) == 0 {
		return nil, errors.ErrNoFilesError
	}
	if !IsPDF(in) {
		return nil, errors.ErrInvalidFileTypeError.WithDetails("File must be a PDF")
	}
	// 两个密码都没给时统一报 PASSWORD_REQUIRED；移除模式只校验当前密码
	if opts.Password == "" && opts.CurrentPassword == "" {
		return nil, errors.ErrPasswordRequiredError
	}

	switch opts.Mode {
	case ProtectModeAdd:
		if opts.Password == "" {
			return nil, errors.ErrPasswordRequiredError
		}
		return addProtection(ctx, in, opts.Password, progress)
	case ProtectModeRemove:
		if opts.CurrentPassword == "" {
			return nil, errors.ErrCurrentPasswordRequiredError
		}
		return removeProtection(ctx, in, opts.CurrentPassword, progress)
	default:
		return nil, errors.ErrInvalidProtectModeError
	}
}

func addProtection(ctx context.Context, in Input, password string, progress ProgressFunc) ([]byte, error) {
	progress.report(10)
	progress.report(30)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// 已加密的文件在用新密码打开时失败，或者打开后报告已加密
	if _, err := api.PageCount(in.reader(), newConfig()); err != nil {
		if isPasswordError(err) {
			return nil, errors.ErrAlreadyPasswordProtectedError
		}
		return nil, processingFailed(in.Name, err)
	}
	progress.report(50)

	conf := model.NewAESConfiguration(password, password, 256)
	conf.ValidationMode = model.ValidationRelaxed
	conf.Permissions = model.PermissionsAll
	progress.report(70)

	var out bytes.Buffer
	if err := api.Encrypt(in.reader(), &out, conf); err != nil {
		if isPasswordError(err) {
			return nil, errors.ErrAlreadyPasswordProtectedError
		}
		return nil, processingFailed(in.Name, err)
	}
	progress.report(100)
	return out.Bytes(), nil
}

func removeProtection(ctx context.Context, in Input, password string, progress ProgressFunc) ([]byte, error) {
	progress.report(10)
	progress.report(30)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	conf := newConfig()
	conf.UserPW = password
	conf.OwnerPW = password
	progress.report(60)

	var out bytes.Buffer
	if err := api.Decrypt(in.reader(), &out, conf); err != nil {
		msg := strings.ToLower(err.Error())
		switch {
		case strings.Contains(msg, "not encrypted"):
			return nil, errors.ErrNotPasswordProtectedError
		case isPasswordError(err):
			return nil, errors.ErrIncorrectPasswordError
		}
		return nil, processingFailed(in.Name, err)
	}
	progress.report(80)
	progress.report(95)
	progress.report(100)
	return out.Bytes(), nil
}

// isPasswordError pdfcpu 没有导出密码错误类型，只能按错误信息判断
func isPasswordError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password") || strings.Contains(msg, "encrypted")
}

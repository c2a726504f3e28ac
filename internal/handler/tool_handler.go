package handler

import (
	"archive/zip"
	"bytes"
	stderrors "errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/weiwangfds/pdftoolkit/config"
	"github.com/weiwangfds/pdftoolkit/internal/errors"
	"github.com/weiwangfds/pdftoolkit/internal/logger"
	"github.com/weiwangfds/pdftoolkit/internal/middleware"
	"github.com/weiwangfds/pdftoolkit/internal/pdftool"
	"github.com/weiwangfds/pdftoolkit/internal/response"
	fileservice "github.com/weiwangfds/pdftoolkit/internal/service/file"
)

// FileIDHeader 结果保存到用户文件后返回文件ID的响应头
const FileIDHeader = "X-File-ID"

const (
	contentTypePDF = "application/pdf"
	contentTypeZip = "application/zip"
)

// ToolHandler PDF工具处理器
// 工具接口允许匿名调用，save=true 时结果同时保存到调用者的文件中，需要登录
type ToolHandler struct {
	fileService fileservice.FileService
	config      config.ToolsConfig
}

// NewToolHandler 创建工具处理器实例
func NewToolHandler(fileService fileservice.FileService, cfg config.ToolsConfig) *ToolHandler {
	return &ToolHandler{
		fileService: fileService,
		config:      cfg,
	}
}

// MergePDF 合并PDF
// @Summary 合并PDF
// @Description 按上传顺序合并多个PDF文件
// @Tags PDF工具
// @Accept multipart/form-data
// @Produce application/pdf
// @Param files formData file true "PDF文件，至少两个"
// @Param save query bool false "是否保存到我的文件"
// @Success 200 {file} file "合并后的PDF"
// @Failure 400 {object} response.Response "参数错误"
// @Router /tools/merge [post]
func (h *ToolHandler) MergePDF(c *gin.Context) {
	inputs, err := h.readFiles(c, "files")
	if err != nil {
		response.AppError(c, err)
		return
	}
	data, err := pdftool.Merge(c.Request.Context(), inputs, progressLogger(c, "merge"))
	if err != nil {
		response.AppError(c, err)
		return
	}
	h.sendResult(c, "merged.pdf", contentTypePDF, data)
}

// SplitPDF 拆分PDF
// @Summary 拆分PDF
// @Description range 模式提取页码范围，per-page 模式每页一个文件，多个文件打包为zip
// @Tags PDF工具
// @Accept multipart/form-data
// @Produce application/pdf,application/zip
// @Param file formData file true "PDF文件"
// @Param mode formData string false "拆分模式" Enums(range, per-page) default(range)
// @Param start_page formData int false "起始页，默认1"
// @Param end_page formData int false "结束页，默认最后一页"
// @Param save query bool false "是否保存到我的文件"
// @Success 200 {file} file "拆分结果"
// @Router /tools/split [post]
func (h *ToolHandler) SplitPDF(c *gin.Context) {
	in, err := h.readFile(c, "file")
	if err != nil {
		response.AppError(c, err)
		return
	}

	opts := pdftool.SplitOptions{Mode: pdftool.SplitMode(c.DefaultPostForm("mode", string(pdftool.SplitModeRange)))}
	if opts.StartPage, err = formInt(c, "start_page"); err != nil {
		response.AppError(c, errors.ErrInvalidPageRangeError.WithDetails(err.Error()))
		return
	}
	if opts.EndPage, err = formInt(c, "end_page"); err != nil {
		response.AppError(c, errors.ErrInvalidPageRangeError.WithDetails(err.Error()))
		return
	}

	results, err := pdftool.Split(c.Request.Context(), in, opts, progressLogger(c, "split"))
	if err != nil {
		response.AppError(c, err)
		return
	}
	if len(results) == 1 {
		h.sendResult(c, results[0].FileName, contentTypePDF, results[0].Data)
		return
	}

	archive, err := zipResults(results)
	if err != nil {
		response.AppError(c, errors.ErrPDFProcessingFailedError.WithOriginalError(err))
		return
	}
	h.sendResult(c, stem(in.Name)+"_split.zip", contentTypeZip, archive)
}

// CompressPDF 压缩PDF
// @Summary 压缩PDF
// @Tags PDF工具
// @Accept multipart/form-data
// @Produce application/pdf
// @Param file formData file true "PDF文件"
// @Param save query bool false "是否保存到我的文件"
// @Success 200 {file} file "压缩后的PDF"
// @Router /tools/compress [post]
func (h *ToolHandler) CompressPDF(c *gin.Context) {
	in, err := h.readFile(c, "file")
	if err != nil {
		response.AppError(c, err)
		return
	}
	data, err := pdftool.Compress(c.Request.Context(), in, progressLogger(c, "compress"))
	if err != nil {
		response.AppError(c, err)
		return
	}
	c.Header("X-Original-Size", strconv.Itoa(len(in.Data)))
	h.sendResult(c, stem(in.Name)+"_compressed.pdf", contentTypePDF, data)
}

// RotatePDF 旋转PDF
// @Summary 旋转PDF
// @Tags PDF工具
// @Accept multipart/form-data
// @Produce application/pdf
// @Param file formData file true "PDF文件"
// @Param angle formData int true "顺时针角度" Enums(90, 180, 270)
// @Param save query bool false "是否保存到我的文件"
// @Success 200 {file} file "旋转后的PDF"
// @Router /tools/rotate [post]
func (h *ToolHandler) RotatePDF(c *gin.Context) {
	in, err := h.readFile(c, "file")
	if err != nil {
		response.AppError(c, err)
		return
	}
	angle, err := strconv.Atoi(c.PostForm("angle"))
	if err != nil {
		response.AppError(c, errors.ErrInvalidRotationError)
		return
	}
	data, err := pdftool.Rotate(c.Request.Context(), in, pdftool.RotationAngle(angle), progressLogger(c, "rotate"))
	if err != nil {
		response.AppError(c, err)
		return
	}
	h.sendResult(c, stem(in.Name)+"_rotated.pdf", contentTypePDF, data)
}

// ProtectPDF 添加或移除PDF密码
// @Summary 添加或移除PDF密码
// @Tags PDF工具
// @Accept multipart/form-data
// @Produce application/pdf
// @Param file formData file true "PDF文件"
// @Param mode formData string true "操作" Enums(add, remove)
// @Param password formData string false "新密码，添加时必填"
// @Param current_password formData string false "当前密码，移除时必填"
// @Param save query bool false "是否保存到我的文件"
// @Success 200 {file} file "处理后的PDF"
// @Router /tools/protect [post]
func (h *ToolHandler) ProtectPDF(c *gin.Context) {
	in, err := h.readFile(c, "file")
	if err != nil {
		response.AppError(c, err)
		return
	}
	opts := pdftool.ProtectOptions{
		Mode:            pdftool.ProtectMode(c.PostForm("mode")),
		Password:        c.PostForm("password"),
		CurrentPassword: c.PostForm("current_password"),
	}
	data, err := pdftool.Protect(c.Request.Context(), in, opts, progressLogger(c, "protect"))
	if err != nil {
		response.AppError(c, err)
		return
	}
	suffix := "_protected.pdf"
	if opts.Mode == pdftool.ProtectModeRemove {
		suffix = "_unlocked.pdf"
	}
	h.sendResult(c, stem(in.Name)+suffix, contentTypePDF, data)
}

// ImageToPDF 图片转PDF
// @Summary 图片转PDF
// @Description 每张图片一页，支持JPEG、PNG、GIF、WebP、BMP、TIFF
// @Tags PDF工具
// @Accept multipart/form-data
// @Produce application/pdf
// @Param files formData file true "图片文件"
// @Param orientation formData string false "页面方向" Enums(portrait, landscape)
// @Param page_size formData string false "纸张" Enums(A4, Letter)
// @Param margin_mm formData number false "页边距（毫米）"
// @Param fit_mode formData string false "缩放方式" Enums(contain, cover)
// @Param alignment formData string false "对齐方式"
// @Param save query bool false "是否保存到我的文件"
// @Success 200 {file} file "生成的PDF"
// @Router /tools/image-to-pdf [post]
func (h *ToolHandler) ImageToPDF(c *gin.Context) {
	images, err := h.readFiles(c, "files")
	if err != nil {
		response.AppError(c, err)
		return
	}

	margin := h.config.DefaultImageMarginMM
	if raw := c.PostForm("margin_mm"); raw != "" {
		if margin, err = strconv.ParseFloat(raw, 64); err != nil {
			response.AppError(c, errors.ErrInvalidLayoutOptionError.WithDetailsf("margin_mm: %s", raw))
			return
		}
	}
	opts := pdftool.ImageToPDFOptions{
		Orientation: pdftool.Orientation(c.PostForm("orientation")),
		PageSize:    pdftool.PageSize(c.PostForm("page_size")),
		MarginMM:    &margin,
		FitMode:     pdftool.FitMode(c.PostForm("fit_mode")),
		Alignment:   pdftool.Alignment(c.PostForm("alignment")),
	}

	data, err := pdftool.ImagesToPDF(c.Request.Context(), images, opts, progressLogger(c, "image-to-pdf"))
	if err != nil {
		response.AppError(c, err)
		return
	}
	name := "images.pdf"
	if len(images) == 1 {
		name = stem(images[0].Name) + ".pdf"
	}
	h.sendResult(c, name, contentTypePDF, data)
}

// ExcelSheets 列出Excel工作表
// @Summary 列出Excel工作表
// @Tags PDF工具
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Excel文件"
// @Success 200 {object} response.Response{data=map[string][]string}
// @Router /tools/excel/sheets [post]
func (h *ToolHandler) ExcelSheets(c *gin.Context) {
	in, err := h.readFile(c, "file")
	if err != nil {
		response.AppError(c, err)
		return
	}
	sheets, err := pdftool.ListWorksheets(in)
	if err != nil {
		response.AppError(c, err)
		return
	}
	response.Success(c, gin.H{"sheets": sheets})
}

// ExcelToPDF Excel转PDF
// @Summary Excel转PDF
// @Description sheets 可以重复传递，也可以用逗号分隔
// @Tags PDF工具
// @Accept multipart/form-data
// @Produce application/pdf
// @Param file formData file true "Excel文件"
// @Param sheets formData []string true "工作表名称" collectionFormat(multi)
// @Param orientation formData string false "页面方向" Enums(portrait, landscape)
// @Param save query bool false "是否保存到我的文件"
// @Success 200 {file} file "生成的PDF"
// @Router /tools/excel-to-pdf [post]
func (h *ToolHandler) ExcelToPDF(c *gin.Context) {
	in, err := h.readFile(c, "file")
	if err != nil {
		response.AppError(c, err)
		return
	}
	var sheets []string
	for _, v := range c.PostFormArray("sheets") {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				sheets = append(sheets, name)
			}
		}
	}
	orientation := c.PostForm("orientation")
	if orientation == "" {
		orientation = h.config.DefaultExcelOrientation
	}

	data, err := pdftool.ExcelToPDF(c.Request.Context(), in, sheets, pdftool.Orientation(orientation), progressLogger(c, "excel-to-pdf"))
	if err != nil {
		response.AppError(c, err)
		return
	}
	h.sendResult(c, stem(in.Name)+".pdf", contentTypePDF, data)
}

// WordToPDF Word转PDF
// @Summary Word转PDF
// @Description 当前服务端不提供该转换，校验文件类型后返回 CONVERSION_UNAVAILABLE
// @Tags PDF工具
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Word文件"
// @Failure 501 {object} response.Response "转换不可用"
// @Router /tools/word-to-pdf [post]
func (h *ToolHandler) WordToPDF(c *gin.Context) {
	in, err := h.readFile(c, "file")
	if err != nil {
		response.AppError(c, err)
		return
	}
	data, err := pdftool.WordToPDF(in)
	if err != nil {
		response.AppError(c, err)
		return
	}
	h.sendResult(c, stem(in.Name)+".pdf", contentTypePDF, data)
}

// PowerPointToPDF PowerPoint转PDF
// @Summary PowerPoint转PDF
// @Description 当前服务端不提供该转换，校验文件类型后返回 CONVERSION_UNAVAILABLE
// @Tags PDF工具
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PowerPoint文件"
// @Failure 501 {object} response.Response "转换不可用"
// @Router /tools/powerpoint-to-pdf [post]
func (h *ToolHandler) PowerPointToPDF(c *gin.Context) {
	in, err := h.readFile(c, "file")
	if err != nil {
		response.AppError(c, err)
		return
	}
	data, err := pdftool.PowerPointToPDF(in)
	if err != nil {
		response.AppError(c, err)
		return
	}
	h.sendResult(c, stem(in.Name)+".pdf", contentTypePDF, data)
}

// parseForm 限制请求体大小后解析 multipart 表单
func (h *ToolHandler) parseForm(c *gin.Context) (*multipart.Form, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.config.MaxUploadSize)
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.ErrFileSizeTooLargeError.WithDetailsf("request exceeds %d bytes", h.config.MaxUploadSize)
		}
		return nil, errors.ErrNoFilesError.WithDetails(err.Error())
	}
	return form, nil
}

// readFiles 读取表单中同名的所有文件，保持上传顺序
func (h *ToolHandler) readFiles(c *gin.Context, field string) ([]pdftool.Input, error) {
	form, err := h.parseForm(c)
	if err != nil {
		return nil, err
	}
	headers := form.File[field]
	if len(headers) == 0 {
		return nil, errors.ErrNoFilesError
	}
	if len(headers) > h.config.MaxFiles {
		return nil, errors.ErrInvalidParameters.WithDetailsf("at most %d files per request", h.config.MaxFiles)
	}

	inputs := make([]pdftool.Input, 0, len(headers))
	for _, fh := range headers {
		in, err := readInput(fh)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// readFile 读取表单中的单个文件
func (h *ToolHandler) readFile(c *gin.Context, field string) (pdftool.Input, error) {
	form, err := h.parseForm(c)
	if err != nil {
		return pdftool.Input{}, err
	}
	headers := form.File[field]
	if len(headers) == 0 {
		return pdftool.Input{}, errors.ErrNoFilesError
	}
	return readInput(headers[0])
}

func readInput(fh *multipart.FileHeader) (pdftool.Input, error) {
	f, err := fh.Open()
	if err != nil {
		return pdftool.Input{}, errors.ErrFileReadFailedError.WithOriginalError(err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return pdftool.Input{}, errors.ErrFileReadFailedError.WithOriginalError(err)
	}
	return pdftool.Input{
		Name:        filepath.Base(fh.Filename),
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// sendResult 返回结果文件，需要时先保存到调用者的文件中
func (h *ToolHandler) sendResult(c *gin.Context, name, contentType string, data []byte) {
	if wantsSave(c) {
		principal := middleware.Principal(c)
		if principal == "" {
			response.AppError(c, errors.ErrAuthRequiredError)
			return
		}
		metadata, err := h.fileService.Upload(c.Request.Context(), principal, name, bytes.NewReader(data))
		if err != nil {
			response.AppError(c, err)
			return
		}
		c.Header(FileIDHeader, metadata.FileID)
	}

	c.Header("Content-Disposition", attachment(name))
	c.Data(http.StatusOK, contentType, data)
}

func wantsSave(c *gin.Context) bool {
	v := c.Query("save")
	if v == "" {
		v = c.PostForm("save")
	}
	ok, _ := strconv.ParseBool(v)
	return ok
}

func formInt(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.PostForm(key))
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

// stem 去掉扩展名的文件名
func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func zipResults(results []pdftool.SplitResult) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, r := range results {
		w, err := zw.Create(r.FileName)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(r.Data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// progressLogger 把转换进度写入调试日志
func progressLogger(c *gin.Context, tool string) pdftool.ProgressFunc {
	entry := logger.WithFields(logger.Fields{
		"request_id": c.GetString(response.RequestIDKey),
		"tool":       tool,
	})
	return func(percent int) {
		entry.Debugf("progress %d%%", percent)
	}
}

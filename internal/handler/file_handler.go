package handler

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/weiwangfds/pdftoolkit/internal/errors"
	"github.com/weiwangfds/pdftoolkit/internal/middleware"
	"github.com/weiwangfds/pdftoolkit/internal/response"
	fileservice "github.com/weiwangfds/pdftoolkit/internal/service/file"
)

// FileHandler 文件处理器
// @Description 用户文件管理相关的HTTP处理器，所有接口都需要登录
type FileHandler struct {
	fileService fileservice.FileService
}

// NewFileHandler 创建文件处理器实例
func NewFileHandler(fileService fileservice.FileService) *FileHandler {
	return &FileHandler{
		fileService: fileService,
	}
}

// UploadFile 上传文件
// @Summary 上传文件
// @Description 上传单个文件到当前激活的存储后端
// @Tags 文件管理
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "要上传的文件"
// @Success 201 {object} response.Response{data=database.FileMetadata} "上传成功"
// @Failure 400 {object} response.Response "请求参数错误"
// @Failure 413 {object} response.Response "文件过大"
// @Router /files [post]
func (h *FileHandler) UploadFile(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.AppError(c, errors.ErrNoFilesError.WithDetails(err.Error()))
		return
	}

	src, err := file.Open()
	if err != nil {
		response.AppError(c, errors.ErrFileReadFailedError.WithOriginalError(err))
		return
	}
	defer src.Close()

	metadata, err := h.fileService.Upload(c.Request.Context(), middleware.Principal(c), file.Filename, src)
	if err != nil {
		response.AppError(c, err)
		return
	}
	response.Created(c, response.Translate(c, "file_uploaded"), metadata)
}

// ListFiles 获取文件列表
// @Summary 获取文件列表
// @Description 分页获取当前用户的文件，按上传时间倒序
// @Tags 文件管理
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=response.PageData} "文件列表"
// @Router /files [get]
func (h *FileHandler) ListFiles(c *gin.Context) {
	page, pageSize := parsePage(c)
	files, total, err := h.fileService.ListPage(c.Request.Context(), middleware.Principal(c), page, pageSize)
	if err != nil {
		response.AppError(c, err)
		return
	}
	response.SuccessWithPage(c, files, total, page, pageSize)
}

// GetFileStats 获取文件统计
// @Summary 获取文件统计
// @Tags 文件管理
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=fileservice.FileStats} "统计信息"
// @Router /files/stats [get]
func (h *FileHandler) GetFileStats(c *gin.Context) {
	stats, err := h.fileService.Stats(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		response.AppError(c, err)
		return
	}
	response.Success(c, stats)
}

// GetFile 获取文件信息
// @Summary 获取文件信息
// @Tags 文件管理
// @Produce json
// @Security BearerAuth
// @Param id path string true "文件ID"
// @Success 200 {object} response.Response{data=database.FileMetadata} "文件信息"
// @Failure 404 {object} response.Response "文件不存在"
// @Router /files/{id} [get]
func (h *FileHandler) GetFile(c *gin.Context) {
	metadata, err := h.fileService.Get(c.Request.Context(), middleware.Principal(c), c.Param("id"))
	if err != nil {
		response.AppError(c, err)
		return
	}
	response.Success(c, metadata)
}

// DownloadFile 下载文件
// @Summary 下载文件
// @Tags 文件管理
// @Produce application/octet-stream
// @Security BearerAuth
// @Param id path string true "文件ID"
// @Success 200 {file} file "文件内容"
// @Failure 404 {object} response.Response "文件不存在"
// @Router /files/{id}/download [get]
func (h *FileHandler) DownloadFile(c *gin.Context) {
	content, metadata, err := h.fileService.Open(c.Request.Context(), middleware.Principal(c), c.Param("id"))
	if err != nil {
		response.AppError(c, err)
		return
	}
	defer content.Close()

	contentType := metadata.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, metadata.FileSize, contentType, content, map[string]string{
		"Content-Disposition": attachment(metadata.FileName),
	})
}

// DeleteFile 删除文件
// @Summary 删除文件
// @Tags 文件管理
// @Produce json
// @Security BearerAuth
// @Param id path string true "文件ID"
// @Success 200 {object} response.Response "删除成功"
// @Failure 404 {object} response.Response "文件不存在"
// @Router /files/{id} [delete]
func (h *FileHandler) DeleteFile(c *gin.Context) {
	if err := h.fileService.Delete(c.Request.Context(), middleware.Principal(c), c.Param("id")); err != nil {
		response.AppError(c, err)
		return
	}
	response.SuccessWithMessage(c, response.Translate(c, "file_deleted"), nil)
}

// attachment 生成支持非ASCII文件名的 Content-Disposition
func attachment(name string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": name})
}

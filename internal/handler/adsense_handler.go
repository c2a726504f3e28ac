package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/weiwangfds/pdftoolkit/internal/middleware"
	"github.com/weiwangfds/pdftoolkit/internal/response"
	"github.com/weiwangfds/pdftoolkit/internal/service/adsense"
)

// AdSenseHandler 广告配置与收益处理器
type AdSenseHandler struct {
	adsenseService adsense.AdSenseService
}

// NewAdSenseHandler 创建广告处理器实例
func NewAdSenseHandler(adsenseService adsense.AdSenseService) *AdSenseHandler {
	return &AdSenseHandler{adsenseService: adsenseService}
}

// GetConfig 获取广告配置
// @Summary 获取广告配置
// @Tags 广告
// @Produce json
// @Success 200 {object} response.Response{data=database.AdSenseConfig}
// @Router /adsense/config [get]
func (h *AdSenseHandler) GetConfig(c *gin.Context) {
	cfg, err := h.adsenseService.GetConfig(c.Request.Context())
	if err != nil {
		response.AppError(c, err)
		return
	}
	response.Success(c, cfg)
}

// UpdateConfig 更新广告配置
// @Summary 更新广告配置
// @Tags 广告
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param config body adsense.UpdateConfigRequest true "广告配置"
// @Success 200 {object} response.Response{data=database.AdSenseConfig}
// @Failure 400 {object} response.Response "配置无效"
// @Failure 403 {object} response.Response "需要管理员权限"
// @Router /adsense/config [put]
func (h *AdSenseHandler) UpdateConfig(c *gin.Context) {
	var req adsense.UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.AppError(c, bindError(err))
		return
	}
	cfg, err := h.adsenseService.UpdateConfig(c.Request.Context(), middleware.Principal(c), &req)
	if err != nil {
		response.AppError(c, err)
		return
	}
	response.SuccessWithMessage(c, response.Translate(c, "adsense_updated"), cfg)
}

// RecordMetrics 记录某天的收益数据
// @Summary 记录收益数据
// @Tags 广告
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param metrics body adsense.RecordMetricsRequest true "收益数据"
// @Success 200 {object} response.Response{data=database.AdRevenueMetric}
// @Router /adsense/metrics [post]
func (h *AdSenseHandler) RecordMetrics(c *gin.Context) {
	var req adsense.RecordMetricsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.AppError(c, bindError(err))
		return
	}
	metric, err := h.adsenseService.RecordMetrics(c.Request.Context(), middleware.Principal(c), &req)
	if err != nil {
		response.AppError(c, err)
		return
	}
	response.SuccessWithMessage(c, response.Translate(c, "metrics_recorded"), metric)
}

// GetAllMetrics 获取全部收益数据
// @Summary 获取全部收益数据
// @Tags 广告
// @Produce json
// @Success 200 {object} response.Response{data=[]database.AdRevenueMetric}
// @Router /adsense/metrics [get]
func (h *AdSenseHandler) GetAllMetrics(c *gin.Context) {
	metrics, err := h.adsenseService.GetAllMetrics(c.Request.Context())
	if err != nil {
		response.AppError(c, err)
		return
	}
	response.Success(c, metrics)
}

// GetMetrics 获取某天的收益数据
// @Summary 获取某天的收益数据
// @Tags 广告
// @Produce json
// @Param date path string true "日期 YYYY-MM-DD"
// @Success 200 {object} response.Response{data=database.AdRevenueMetric}
// @Router /adsense/metrics/{date} [get]
func (h *AdSenseHandler) GetMetrics(c *gin.Context) {
	metric, err := h.adsenseService.GetMetrics(c.Request.Context(), c.Param("date"))
	if err != nil {
		response.AppError(c, err)
		return
	}
	response.Success(c, metric)
}

// GetRange 获取日期区间内的收益数据
// @Summary 获取区间收益数据
// @Tags 广告
// @Produce json
// @Param start query string true "开始日期"
// @Param end query string true "结束日期"
// @Success 200 {object} response.Response{data=[]database.AdRevenueMetric}
// @Router /adsense/metrics/range [get]
func (h *AdSenseHandler) GetRange(c *gin.Context) {
	metrics, err := h.adsenseService.GetRange(c.Request.Context(), c.Query("start"), c.Query("end"))
	if err != nil {
		response.AppError(c, err)
		return
	}
	response.Success(c, metrics)
}

// Aggregate 汇总日期区间内的收益数据
// @Summary 汇总区间收益数据
// @Tags 广告
// @Produce json
// @Param start query string true "开始日期"
// @Param end query string true "结束日期"
// @Success 200 {object} response.Response{data=database.AdRevenueMetric}
// @Router /adsense/metrics/aggregate [get]
func (h *AdSenseHandler) Aggregate(c *gin.Context) {
	metric, err := h.adsenseService.Aggregate(c.Request.Context(), c.Query("start"), c.Query("end"))
	if err != nil {
		response.AppError(c, err)
		return
	}
	response.Success(c, metric)
}

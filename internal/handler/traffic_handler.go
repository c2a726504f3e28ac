package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/weiwangfds/pdftoolkit/internal/response"
	"github.com/weiwangfds/pdftoolkit/internal/service/traffic"
)

// TrafficHandler 访问量计数处理器
type TrafficHandler struct {
	trafficService traffic.TrafficService
}

// NewTrafficHandler 创建访问量处理器实例
func NewTrafficHandler(trafficService traffic.TrafficService) *TrafficHandler {
	return &TrafficHandler{trafficService: trafficService}
}

// GetTraffic 获取访问量
// @Summary 获取访问量
// @Tags 访问量
// @Produce json
// @Success 200 {object} response.Response{data=map[string]int64}
// @Router /traffic [get]
func (h *TrafficHandler) GetTraffic(c *gin.Context) {
	n, err := h.trafficService.Get(c.Request.Context())
	if err != nil {
		response.AppError(c, err)
		return
	}
	response.Success(c, gin.H{"count": n})
}

// Increment 访问量加一并返回新值
// @Summary 访问量加一
// @Tags 访问量
// @Produce json
// @Success 200 {object} response.Response{data=map[string]int64}
// @Router /traffic/increment [post]
func (h *TrafficHandler) Increment(c *gin.Context) {
	n, err := h.trafficService.IncrementAndGet(c.Request.Context())
	if err != nil {
		response.AppError(c, err)
		return
	}
	response.Success(c, gin.H{"count": n})
}

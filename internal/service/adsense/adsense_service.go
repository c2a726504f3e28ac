// Package adsense 提供广告位配置和每日收益数据管理
package adsense

import (
	"context"
	stderrors "errors"
	"math"
	"strings"
	"time"

	"github.com/weiwangfds/pdftoolkit/internal/database"
	"github.com/weiwangfds/pdftoolkit/internal/errors"
	"github.com/weiwangfds/pdftoolkit/internal/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DateLayout 收益数据的日期格式
const DateLayout = "2006-01-02"

// PublisherPrefix 发布商ID前缀
const PublisherPrefix = "ca-pub-"

// AdminChecker 判断调用者是否为管理员
type AdminChecker interface {
	IsAdmin(ctx context.Context, principal string) (bool, error)
}

// AdSenseService 广告服务接口
type AdSenseService interface {
	// GetConfig 获取广告配置，任何人可读
	GetConfig(ctx context.Context) (*database.AdSenseConfig, error)

	// UpdateConfig 整体替换广告配置，仅管理员
	UpdateConfig(ctx context.Context, caller string, req *UpdateConfigRequest) (*database.AdSenseConfig, error)

	// RecordMetrics 记录某天的收益数据，同一天重复记录会覆盖，仅管理员
	RecordMetrics(ctx context.Context, caller string, req *RecordMetricsRequest) (*database.AdRevenueMetric, error)

	// GetMetrics 获取某天的收益数据，没有记录时返回全零
	GetMetrics(ctx context.Context, date string) (*database.AdRevenueMetric, error)

	// GetAllMetrics 获取全部收益数据，按日期升序
	GetAllMetrics(ctx context.Context) ([]database.AdRevenueMetric, error)

	// GetRange 获取闭区间内的收益数据
	GetRange(ctx context.Context, startDate, endDate string) ([]database.AdRevenueMetric, error)

	// Aggregate 汇总闭区间内的收益数据，日期字段为 "start..end"
	Aggregate(ctx context.Context, startDate, endDate string) (*database.AdRevenueMetric, error)
}

// UpdateConfigRequest 更新广告配置请求
type UpdateConfigRequest struct {
	PublisherID        string `json:"publisher_id"`
	HeaderAdUnitID     string `json:"header_ad_unit_id"`
	SidebarAdUnitID    string `json:"sidebar_ad_unit_id"`
	FooterAdUnitID     string `json:"footer_ad_unit_id"`
	InContentAdUnitID  string `json:"in_content_ad_unit_id"`
	EnableHeaderBanner bool   `json:"enable_header_banner"`
	EnableSidebarAds   bool   `json:"enable_sidebar_ads"`
	EnableFooterBanner bool   `json:"enable_footer_banner"`
	EnableInContentAds bool   `json:"enable_in_content_ads"`
}

// RecordMetricsRequest 记录收益数据请求
type RecordMetricsRequest struct {
	Date        string  `json:"date" binding:"required"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Revenue     float64 `json:"revenue"`
}

type adsenseService struct {
	db     *gorm.DB
	admins AdminChecker
}

// NewAdSenseService 创建广告服务实例
func NewAdSenseService(db *gorm.DB, admins AdminChecker) AdSenseService {
	return &adsenseService{db: db, admins: admins}
}

func (s *adsenseService) requireAdmin(ctx context.Context, caller string) error {
	if caller == "" {
		return errors.ErrAuthRequiredError
	}
	ok, err := s.admins.IsAdmin(ctx, caller)
	if err != nil {
		return err
	}
	if !ok {
		return errors.ErrAdminRequiredError
	}
	return nil
}

func (s *adsenseService) GetConfig(ctx context.Context) (*database.AdSenseConfig, error) {
	var cfg database.AdSenseConfig
	err := s.db.WithContext(ctx).First(&cfg, database.AdSenseConfigID).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			// 迁移会写入默认行，这里兜底返回全关闭的配置
			return &database.AdSenseConfig{ID: database.AdSenseConfigID}, nil
		}
		return nil, errors.ErrDatabaseQueryError.WithOriginalError(err)
	}
	return &cfg, nil
}

func (s *adsenseService) UpdateConfig(ctx context.Context, caller string, req *UpdateConfigRequest) (*database.AdSenseConfig, error) {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return nil, err
	}
	if err := validateConfig(req); err != nil {
		return nil, err
	}

	cfg := &database.AdSenseConfig{
		ID:                 database.AdSenseConfigID,
		PublisherID:        strings.TrimSpace(req.PublisherID),
		HeaderAdUnitID:     strings.TrimSpace(req.HeaderAdUnitID),
		SidebarAdUnitID:    strings.TrimSpace(req.SidebarAdUnitID),
		FooterAdUnitID:     strings.TrimSpace(req.FooterAdUnitID),
		InContentAdUnitID:  strings.TrimSpace(req.InContentAdUnitID),
		EnableHeaderBanner: req.EnableHeaderBanner,
		EnableSidebarAds:   req.EnableSidebarAds,
		EnableFooterBanner: req.EnableFooterBanner,
		EnableInContentAds: req.EnableInContentAds,
		UpdatedBy:          caller,
	}
	if err := s.db.WithContext(ctx).Omit("created_at").Save(cfg).Error; err != nil {
		return nil, errors.ErrDatabaseUpdateError.WithOriginalError(err)
	}

	logger.WithField("caller", caller).Info("广告配置已更新")
	return s.GetConfig(ctx)
}

// validateConfig 发布商ID为空或以 ca-pub- 开头，启用的广告位必须有广告单元ID
func validateConfig(req *UpdateConfigRequest) error {
	publisher := strings.TrimSpace(req.PublisherID)
	if publisher != "" && !strings.HasPrefix(publisher, PublisherPrefix) {
		return errors.ErrAdSenseConfigInvalidError.WithDetailsf("publisher id must start with %q", PublisherPrefix)
	}

	slots := []struct {
		name    string
		enabled bool
		unit    string
	}{
		{"header_ad_unit_id", req.EnableHeaderBanner, req.HeaderAdUnitID},
		{"sidebar_ad_unit_id", req.EnableSidebarAds, req.SidebarAdUnitID},
		{"footer_ad_unit_id", req.EnableFooterBanner, req.FooterAdUnitID},
		{"in_content_ad_unit_id", req.EnableInContentAds, req.InContentAdUnitID},
	}
	anyEnabled := false
	for _, slot := range slots {
		if !slot.enabled {
			continue
		}
		anyEnabled = true
		if strings.TrimSpace(slot.unit) == "" {
			return errors.ErrAdSenseConfigInvalidError.WithDetailsf("%s is required when the placement is enabled", slot.name)
		}
	}
	if anyEnabled && publisher == "" {
		return errors.ErrAdSenseConfigInvalidError.WithDetails("publisher id is required when any placement is enabled")
	}
	return nil
}

func (s *adsenseService) RecordMetrics(ctx context.Context, caller string, req *RecordMetricsRequest) (*database.AdRevenueMetric, error) {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return nil, err
	}
	if err := validateDate(req.Date); err != nil {
		return nil, errors.ErrMetricsInvalidError.WithDetails(err.Error())
	}
	if req.Impressions < 0 || req.Clicks < 0 || req.Revenue < 0 || math.IsNaN(req.Revenue) || math.IsInf(req.Revenue, 0) {
		return nil, errors.ErrMetricsInvalidError.WithDetails("values must be non-negative")
	}

	metric := &database.AdRevenueMetric{
		Date:        req.Date,
		Impressions: req.Impressions,
		Clicks:      req.Clicks,
		Revenue:     req.Revenue,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"impressions", "clicks", "revenue", "updated_at"}),
	}).Create(metric).Error
	if err != nil {
		return nil, errors.ErrDatabaseInsertError.WithOriginalError(err)
	}

	logger.WithFields(logger.Fields{"caller": caller, "date": req.Date}).Info("广告收益数据已记录")
	return s.GetMetrics(ctx, req.Date)
}

func (s *adsenseService) GetMetrics(ctx context.Context, date string) (*database.AdRevenueMetric, error) {
	if err := validateDate(date); err != nil {
		return nil, errors.ErrMetricsInvalidError.WithDetails(err.Error())
	}

	var metric database.AdRevenueMetric
	err := s.db.WithContext(ctx).Where("date = ?", date).First(&metric).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return &database.AdRevenueMetric{Date: date}, nil
		}
		return nil, errors.ErrDatabaseQueryError.WithOriginalError(err)
	}
	return &metric, nil
}

func (s *adsenseService) GetAllMetrics(ctx context.Context) ([]database.AdRevenueMetric, error) {
	metrics := []database.AdRevenueMetric{}
	if err := s.db.WithContext(ctx).Order("date ASC").Find(&metrics).Error; err != nil {
		return nil, errors.ErrDatabaseQueryError.WithOriginalError(err)
	}
	return metrics, nil
}

func (s *adsenseService) GetRange(ctx context.Context, startDate, endDate string) ([]database.AdRevenueMetric, error) {
	if err := validateRange(startDate, endDate); err != nil {
		return nil, err
	}

	metrics := []database.AdRevenueMetric{}
	// YYYY-MM-DD 的字典序即日期顺序
	if err := s.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", startDate, endDate).
		Order("date ASC").
		Find(&metrics).Error; err != nil {
		return nil, errors.ErrDatabaseQueryError.WithOriginalError(err)
	}
	return metrics, nil
}

func (s *adsenseService) Aggregate(ctx context.Context, startDate, endDate string) (*database.AdRevenueMetric, error) {
	if err := validateRange(startDate, endDate); err != nil {
		return nil, err
	}

	var totals struct {
		Impressions int64
		Clicks      int64
		Revenue     float64
	}
	if err := s.db.WithContext(ctx).Model(&database.AdRevenueMetric{}).
		Where("date >= ? AND date <= ?", startDate, endDate).
		Select("COALESCE(SUM(impressions), 0) AS impressions, COALESCE(SUM(clicks), 0) AS clicks, COALESCE(SUM(revenue), 0) AS revenue").
		Scan(&totals).Error; err != nil {
		return nil, errors.ErrDatabaseQueryError.WithOriginalError(err)
	}

	return &database.AdRevenueMetric{
		Date:        startDate + ".." + endDate,
		Impressions: totals.Impressions,
		Clicks:      totals.Clicks,
		Revenue:     totals.Revenue,
	}, nil
}

func validateDate(date string) error {
	t, err := time.Parse(DateLayout, date)
	if err != nil || t.Format(DateLayout) != date {
		return stderrors.New("date must be YYYY-MM-DD: " + date)
	}
	return nil
}

func validateRange(startDate, endDate string) error {
	if err := validateDate(startDate); err != nil {
		return errors.ErrDateRangeInvalidError.WithDetails(err.Error())
	}
	if err := validateDate(endDate); err != nil {
		return errors.ErrDateRangeInvalidError.WithDetails(err.Error())
	}
	if startDate > endDate {
		return errors.ErrDateRangeInvalidError.WithDetailsf("%s is after %s", startDate, endDate)
	}
	return nil
}

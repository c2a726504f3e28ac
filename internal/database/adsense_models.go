package database

import "time"

// AdSenseConfigID 广告配置单例行的主键
const AdSenseConfigID = 1

// AdSenseConfig 广告位配置，全局只有一行
type AdSenseConfig struct {
	ID                 uint      `gorm:"primarykey" json:"-"`
	PublisherID        string    `gorm:"size:64;not null;default:''" json:"publisher_id"`          // 发布商ID，形如 ca-pub-xxxx
	HeaderAdUnitID     string    `gorm:"size:64;not null;default:''" json:"header_ad_unit_id"`     // 顶部横幅广告单元
	SidebarAdUnitID    string    `gorm:"size:64;not null;default:''" json:"sidebar_ad_unit_id"`    // 侧边栏广告单元
	FooterAdUnitID     string    `gorm:"size:64;not null;default:''" json:"footer_ad_unit_id"`     // 底部横幅广告单元
	InContentAdUnitID  string    `gorm:"size:64;not null;default:''" json:"in_content_ad_unit_id"` // 正文内广告单元
	EnableHeaderBanner bool      `gorm:"not null;default:false" json:"enable_header_banner"`
	EnableSidebarAds   bool      `gorm:"not null;default:false" json:"enable_sidebar_ads"`
	EnableFooterBanner bool      `gorm:"not null;default:false" json:"enable_footer_banner"`
	EnableInContentAds bool      `gorm:"not null;default:false" json:"enable_in_content_ads"`
	UpdatedBy          string    `gorm:"size:128" json:"updated_by,omitempty"`
	CreatedAt          time.Time `json:"-"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TableName 指定表名
func (AdSenseConfig) TableName() string {
	return "adsense_configs"
}

// AdRevenueMetric 每日广告收益数据
type AdRevenueMetric struct {
	ID          uint      `gorm:"primarykey" json:"-"`
	Date        string    `gorm:"uniqueIndex;not null;size:10" json:"date"` // YYYY-MM-DD
	Impressions int64     `gorm:"not null;default:0" json:"impressions"`
	Clicks      int64     `gorm:"not null;default:0" json:"clicks"`
	Revenue     float64   `gorm:"not null;default:0" json:"revenue"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// TableName 指定表名
func (AdRevenueMetric) TableName() string {
	return "ad_revenue_metrics"
}

// Counter 具名计数器
type Counter struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	Name      string    `gorm:"uniqueIndex;not null;size:64" json:"name"`
	Value     int64     `gorm:"not null;default:0" json:"value"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Counter) TableName() string {
	return "counters"
}

// TrafficCounterName 访问量计数器名称
const TrafficCounterName = "traffic"

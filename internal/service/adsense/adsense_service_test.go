package adsense

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwangfds/pdftoolkit/config"
	"github.com/weiwangfds/pdftoolkit/internal/database"
	"github.com/weiwangfds/pdftoolkit/internal/errors"
)

type staticAdmins map[string]bool

func (a staticAdmins) IsAdmin(ctx context.Context, principal string) (bool, error) {
	return a[principal], nil
}

func setupService(t *testing.T) AdSenseService {
	db, err := database.Init(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })
	return NewAdSenseService(db, staticAdmins{"root": true})
}

func TestConfig(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	t.Run("默认配置全部关闭", func(t *testing.T) {
		cfg, err := svc.GetConfig(ctx)
		require.NoError(t, err)
		assert.Empty(t, cfg.PublisherID)
		assert.False(t, cfg.EnableHeaderBanner || cfg.EnableSidebarAds || cfg.EnableFooterBanner || cfg.EnableInContentAds)
	})

	valid := &UpdateConfigRequest{
		PublisherID:        "ca-pub-1234567890",
		HeaderAdUnitID:     "111",
		EnableHeaderBanner: true,
	}

	t.Run("非管理员不能更新", func(t *testing.T) {
		_, err := svc.UpdateConfig(ctx, "alice", valid)
		assert.True(t, errors.Is(err, errors.ErrAdminRequiredError))
		_, err = svc.UpdateConfig(ctx, "", valid)
		assert.True(t, errors.Is(err, errors.ErrAuthRequiredError))
	})

	t.Run("管理员更新", func(t *testing.T) {
		cfg, err := svc.UpdateConfig(ctx, "root", valid)
		require.NoError(t, err)
		assert.Equal(t, "ca-pub-1234567890", cfg.PublisherID)
		assert.True(t, cfg.EnableHeaderBanner)
		assert.Equal(t, "root", cfg.UpdatedBy)
	})

	t.Run("配置校验", func(t *testing.T) {
		cases := []*UpdateConfigRequest{
			{PublisherID: "pub-123"},
			{PublisherID: "ca-pub-1", EnableFooterBanner: true},
			{EnableSidebarAds: true, SidebarAdUnitID: "9"},
		}
		for _, req := range cases {
			_, err := svc.UpdateConfig(ctx, "root", req)
			assert.True(t, errors.Is(err, errors.ErrAdSenseConfigInvalidError), "%+v", req)
		}
	})
}

func TestMetrics(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	record := func(date string, imp, clicks int64, revenue float64) {
		_, err := svc.RecordMetrics(ctx, "root", &RecordMetricsRequest{Date: date, Impressions: imp, Clicks: clicks, Revenue: revenue})
		require.NoError(t, err)
	}
	record("2026-10-01", 100, 5, 1.5)
	record("2026-10-02", 200, 10, 3.0)
	record("2026-10-03", 50, 1, 0.25)
	// 同一天重复记录覆盖旧值
	record("2026-10-02", 300, 12, 4.0)

	t.Run("没有记录的日期返回零", func(t *testing.T) {
		m, err := svc.GetMetrics(ctx, "2026-09-30")
		require.NoError(t, err)
		assert.Equal(t, "2026-09-30", m.Date)
		assert.Zero(t, m.Impressions)
	})

	t.Run("覆盖", func(t *testing.T) {
		m, err := svc.GetMetrics(ctx, "2026-10-02")
		require.NoError(t, err)
		assert.Equal(t, int64(300), m.Impressions)

		all, err := svc.GetAllMetrics(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("区间查询", func(t *testing.T) {
		ms, err := svc.GetRange(ctx, "2026-10-02", "2026-10-03")
		require.NoError(t, err)
		require.Len(t, ms, 2)
		assert.Equal(t, "2026-10-02", ms[0].Date)
	})

	t.Run("汇总", func(t *testing.T) {
		agg, err := svc.Aggregate(ctx, "2026-10-01", "2026-10-31")
		require.NoError(t, err)
		assert.Equal(t, "2026-10-01..2026-10-31", agg.Date)
		assert.Equal(t, int64(450), agg.Impressions)
		assert.Equal(t, int64(18), agg.Clicks)
		assert.InDelta(t, 5.75, agg.Revenue, 1e-9)
	})

	t.Run("日期和数值校验", func(t *testing.T) {
		_, err := svc.GetRange(ctx, "2026-10-05", "2026-10-01")
		assert.True(t, errors.Is(err, errors.ErrDateRangeInvalidError))

		_, err = svc.RecordMetrics(ctx, "root", &RecordMetricsRequest{Date: "2026-13-01"})
		assert.True(t, errors.Is(err, errors.ErrMetricsInvalidError))

		_, err = svc.RecordMetrics(ctx, "root", &RecordMetricsRequest{Date: "2026-10-01", Clicks: -1})
		assert.True(t, errors.Is(err, errors.ErrMetricsInvalidError))

		_, err = svc.RecordMetrics(ctx, "alice", &RecordMetricsRequest{Date: "2026-10-01"})
		assert.True(t, errors.Is(err, errors.ErrAdminRequiredError))
	})
}

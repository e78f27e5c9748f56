package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/biotap/biotap/app/dto"
	"github.com/biotap/biotap/app/services"
	"github.com/biotap/biotap/config"
	"github.com/biotap/biotap/models"
	"github.com/biotap/biotap/repository"
	"github.com/biotap/biotap/utils"
	"github.com/redis/go-redis/v9"
)

const topLinksLimit = 5
const topCountriesLimit = 10

// AnalyticsFlow computes windowed rollups over the click ledger for one
// user's link set. It never fails on missing optional click fields; it only
// propagates errors when the ledger itself is unreachable.
type AnalyticsFlow interface {
	GetAnalytics(ctx context.Context, userID uint, windowDays int) (*dto.AnalyticsSummary, error)
	GetGeographicAnalytics(ctx context.Context, userID uint, windowDays int) (*dto.GeographicSummary, error)
}

type AnalyticsFlowImpl struct {
	linkRepo  repository.LinkRepository
	clickRepo repository.ClickEventRepository
	rc        *redis.Client
	cacheCfg  *config.CacheConfig
}

func NewAnalyticsFlow(
	linkRepo repository.LinkRepository,
	clickRepo repository.ClickEventRepository,
	rc *redis.Client,
	cacheCfg *config.CacheConfig,
) AnalyticsFlow {
	return &AnalyticsFlowImpl{
		linkRepo:  linkRepo,
		clickRepo: clickRepo,
		rc:        rc,
		cacheCfg:  cacheCfg,
	}
}

func (f *AnalyticsFlowImpl) GetAnalytics(ctx context.Context, userID uint, windowDays int) (*dto.AnalyticsSummary, error) {
	if windowDays < utils.MinWindowDays || windowDays > utils.MaxWindowDays {
		return nil, ErrInvalidWindowDays
	}

	// Cache-aside; any cache failure falls through to a fresh computation
	cacheKey := fmt.Sprintf("%s:%d:%d", utils.AnalyticsCacheKeyPrefix, userID, windowDays)
	if f.cacheEnabled() {
		if bs, err := f.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
			var cached dto.AnalyticsSummary
			if err := json.Unmarshal(bs, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	end := utils.UTCNow()
	start := end.Add(-time.Duration(windowDays) * 24 * time.Hour)

	links, err := f.linkRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("ANALYTICS_LINKS_FAILED", "Failed to list user links", err)
	}
	if len(links) == 0 {
		return emptySummary(), nil
	}

	linkIDs := make([]uint, len(links))
	for i, link := range links {
		linkIDs[i] = link.ID
	}

	totalClicks, err := f.clickRepo.Count(ctx, models.ClickEventFilter{LinkIDs: linkIDs, ClickedAfter: &start})
	if err != nil {
		return nil, NewBusinessError("ANALYTICS_COUNT_FAILED", "Failed to count clicks", err)
	}

	uniqueVisitors, err := f.clickRepo.CountDistinctIPs(ctx, linkIDs, start)
	if err != nil {
		return nil, NewBusinessError("ANALYTICS_VISITORS_FAILED", "Failed to count unique visitors", err)
	}

	daily, err := f.clickRepo.DailyCounts(ctx, linkIDs, start, end, false)
	if err != nil {
		return nil, NewBusinessError("ANALYTICS_DAILY_FAILED", "Failed to compute daily series", err)
	}

	topLinks, err := f.topLinks(ctx, links, start)
	if err != nil {
		return nil, err
	}

	deviceStats, err := f.deviceStats(ctx, linkIDs, start)
	if err != nil {
		return nil, err
	}

	growth, err := f.growth(ctx, linkIDs, start, windowDays, totalClicks)
	if err != nil {
		return nil, err
	}

	summary := &dto.AnalyticsSummary{
		TotalClicks:      totalClicks,
		UniqueVisitors:   uniqueVisitors,
		DailyStats:       toDailyStats(daily),
		TopLinks:         topLinks,
		DeviceStats:      deviceStats,
		GrowthPercentage: growth,
	}

	if f.cacheEnabled() {
		if bs, err := json.Marshal(summary); err == nil {
			_ = f.rc.Set(ctx, cacheKey, bs, f.cacheCfg.AnalyticsTTL).Err()
		}
	}

	return summary, nil
}

func (f *AnalyticsFlowImpl) GetGeographicAnalytics(ctx context.Context, userID uint, windowDays int) (*dto.GeographicSummary, error) {
	if windowDays < utils.MinWindowDays || windowDays > utils.MaxWindowDays {
		return nil, ErrInvalidWindowDays
	}

	end := utils.UTCNow()
	start := end.Add(-time.Duration(windowDays) * 24 * time.Hour)

	links, err := f.linkRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("ANALYTICS_LINKS_FAILED", "Failed to list user links", err)
	}
	if len(links) == 0 {
		return emptyGeographicSummary(), nil
	}

	linkIDs := make([]uint, len(links))
	for i, link := range links {
		linkIDs[i] = link.ID
	}

	countries, err := f.clickRepo.CountryCounts(ctx, linkIDs, start)
	if err != nil {
		return nil, NewBusinessError("ANALYTICS_COUNTRY_FAILED", "Failed to compute country breakdown", err)
	}

	var countryTotal int64
	for _, row := range countries {
		countryTotal += row.Clicks
	}

	topCountries := make([]dto.CountryStat, 0, topCountriesLimit)
	for _, row := range countries {
		if len(topCountries) == topCountriesLimit {
			break
		}
		var pct float64
		if countryTotal > 0 {
			pct = utils.Round1(float64(row.Clicks) / float64(countryTotal) * 100)
		}
		topCountries = append(topCountries, dto.CountryStat{
			CountryCode:    row.Country,
			CountryName:    services.CountryName(row.Country),
			Clicks:         row.Clicks,
			Percentage:     pct,
			UniqueVisitors: row.UniqueVisitors,
		})
	}

	trends, err := f.clickRepo.DailyCounts(ctx, linkIDs, start, end, true)
	if err != nil {
		return nil, NewBusinessError("ANALYTICS_TRENDS_FAILED", "Failed to compute geographic trends", err)
	}

	return &dto.GeographicSummary{
		TotalCountries: len(topCountries),
		TopCountries:   topCountries,
		// City tracking is not recorded on click events yet
		CityBreakdown:    []dto.CityStat{},
		GeographicTrends: toDailyStats(trends),
	}, nil
}

// topLinks counts each link's in-window clicks individually; a per-link
// count failure aborts, since it signals an unreachable ledger rather
// than bad data
func (f *AnalyticsFlowImpl) topLinks(ctx context.Context, links []*models.Link, start time.Time) ([]dto.LinkStat, error) {
	type linkClicks struct {
		link   *models.Link
		clicks int64
	}

	performance := make([]linkClicks, 0, len(links))
	var total int64
	for _, link := range links {
		clicks, err := f.clickRepo.Count(ctx, models.ClickEventFilter{LinkID: &link.ID, ClickedAfter: &start})
		if err != nil {
			return nil, NewBusinessError("ANALYTICS_TOP_LINKS_FAILED", "Failed to count link clicks", err)
		}
		total += clicks
		performance = append(performance, linkClicks{link: link, clicks: clicks})
	}

	sort.SliceStable(performance, func(i, j int) bool {
		return performance[i].clicks > performance[j].clicks
	})

	limit := topLinksLimit
	if len(performance) < limit {
		limit = len(performance)
	}

	stats := make([]dto.LinkStat, 0, limit)
	for _, entry := range performance[:limit] {
		var pct float64
		if total > 0 {
			pct = utils.Round1(float64(entry.clicks) / float64(total) * 100)
		}
		stats = append(stats, dto.LinkStat{
			LinkID:     entry.link.ID,
			Title:      entry.link.Title,
			Clicks:     entry.clicks,
			Percentage: pct,
		})
	}
	return stats, nil
}

func (f *AnalyticsFlowImpl) deviceStats(ctx context.Context, linkIDs []uint, start time.Time) ([]dto.DeviceStat, error) {
	rows, err := f.clickRepo.DeviceCounts(ctx, linkIDs, start)
	if err != nil {
		return nil, NewBusinessError("ANALYTICS_DEVICES_FAILED", "Failed to compute device breakdown", err)
	}

	var total int64
	for _, row := range rows {
		total += row.Count
	}
	if total == 0 {
		return []dto.DeviceStat{}, nil
	}

	stats := make([]dto.DeviceStat, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, dto.DeviceStat{
			DeviceType: row.DeviceType,
			Count:      row.Count,
			Percentage: utils.Round1(float64(row.Count) / float64(total) * 100),
		})
	}
	return stats, nil
}

// growth compares the window against the immediately preceding equal-length
// window. A previous period with zero clicks reads as 100% growth when the
// current period has any, and 0% when it has none.
func (f *AnalyticsFlowImpl) growth(ctx context.Context, linkIDs []uint, start time.Time, windowDays int, currentClicks int64) (float64, error) {
	previousStart := start.Add(-time.Duration(windowDays) * 24 * time.Hour)

	previousClicks, err := f.clickRepo.Count(ctx, models.ClickEventFilter{
		LinkIDs:       linkIDs,
		ClickedAfter:  &previousStart,
		ClickedBefore: &start,
	})
	if err != nil {
		return 0, NewBusinessError("ANALYTICS_GROWTH_FAILED", "Failed to count previous period clicks", err)
	}

	if previousClicks == 0 {
		if currentClicks > 0 {
			return 100.0, nil
		}
		return 0.0, nil
	}

	growth := float64(currentClicks-previousClicks) / float64(previousClicks) * 100
	return utils.Round1(growth), nil
}

func (f *AnalyticsFlowImpl) cacheEnabled() bool {
	return f.rc != nil && f.cacheCfg != nil && f.cacheCfg.Enabled
}

func toDailyStats(rows []models.DailyCount) []dto.DailyStat {
	stats := make([]dto.DailyStat, len(rows))
	for i, row := range rows {
		stats[i] = dto.DailyStat{Date: row.Date, Clicks: row.Clicks}
	}
	return stats
}

func emptySummary() *dto.AnalyticsSummary {
	return &dto.AnalyticsSummary{
		DailyStats:  []dto.DailyStat{},
		TopLinks:    []dto.LinkStat{},
		DeviceStats: []dto.DeviceStat{},
	}
}

func emptyGeographicSummary() *dto.GeographicSummary {
	return &dto.GeographicSummary{
		TopCountries:     []dto.CountryStat{},
		CityBreakdown:    []dto.CityStat{},
		GeographicTrends: []dto.DailyStat{},
	}
}

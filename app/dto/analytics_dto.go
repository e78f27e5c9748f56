package dto

import "time"

// DailyStat is one point of the sparse per-date click series
type DailyStat struct {
	Date   string `json:"date"`
	Clicks int64  `json:"clicks"`
}

// LinkStat describes one link's share of the window's clicks
type LinkStat struct {
	LinkID     uint    `json:"link_id"`
	Title      string  `json:"title"`
	Clicks     int64   `json:"clicks"`
	Percentage float64 `json:"percentage"`
}

// DeviceStat describes one device type's share of device-tagged clicks
type DeviceStat struct {
	DeviceType string  `json:"device_type"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// AnalyticsSummary is the windowed rollup for one user's link set
type AnalyticsSummary struct {
	TotalClicks      int64        `json:"total_clicks"`
	UniqueVisitors   int64        `json:"unique_visitors"`
	DailyStats       []DailyStat  `json:"daily_stats"`
	TopLinks         []LinkStat   `json:"top_links"`
	DeviceStats      []DeviceStat `json:"device_stats"`
	GrowthPercentage float64      `json:"growth_percentage"`
}

// CountryStat describes one country's share of country-tagged clicks
type CountryStat struct {
	CountryCode    string  `json:"country_code"`
	CountryName    string  `json:"country_name"`
	Clicks         int64   `json:"clicks"`
	Percentage     float64 `json:"percentage"`
	UniqueVisitors int64   `json:"unique_visitors"`
}

// CityStat is reserved for city-level breakdowns, which are not tracked yet
type CityStat struct {
	City        string  `json:"city"`
	CountryCode string  `json:"country_code"`
	CountryName string  `json:"country_name"`
	Clicks      int64   `json:"clicks"`
	Percentage  float64 `json:"percentage"`
}

// GeographicSummary is the geographic variant of the windowed rollup
type GeographicSummary struct {
	TotalCountries   int           `json:"total_countries"`
	TopCountries     []CountryStat `json:"top_countries"`
	CityBreakdown    []CityStat    `json:"city_breakdown"`
	GeographicTrends []DailyStat   `json:"geographic_trends"`
}

// EmailStats summarizes analytics_summary delivery over a trailing window
type EmailStats struct {
	TotalSent   int64      `json:"total_sent"`
	TotalFailed int64      `json:"total_failed"`
	SuccessRate float64    `json:"success_rate"`
	LastSentAt  *time.Time `json:"last_sent_at,omitempty"`
}

// AnalyticsQuery carries the window parameter for analytics reads
type AnalyticsQuery struct {
	WindowDays int `query:"days" validate:"min=1,max=365"`
}

package businessflow

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/biotap/biotap/models"
	"github.com/biotap/biotap/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLinkRepo struct {
	links []*models.Link
}

func (r *fakeLinkRepo) ByID(ctx context.Context, id uint) (*models.Link, error) {
	for _, l := range r.links {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, nil
}

func (r *fakeLinkRepo) ByFilter(ctx context.Context, filter models.LinkFilter, orderBy string, limit, offset int) ([]*models.Link, error) {
	return r.links, nil
}

func (r *fakeLinkRepo) Save(ctx context.Context, link *models.Link) error {
	r.links = append(r.links, link)
	return nil
}

func (r *fakeLinkRepo) SaveBatch(ctx context.Context, links []*models.Link) error {
	r.links = append(r.links, links...)
	return nil
}

func (r *fakeLinkRepo) Count(ctx context.Context, filter models.LinkFilter) (int64, error) {
	return int64(len(r.links)), nil
}

func (r *fakeLinkRepo) Exists(ctx context.Context, filter models.LinkFilter) (bool, error) {
	return len(r.links) > 0, nil
}

func (r *fakeLinkRepo) ListByUser(ctx context.Context, userID uint) ([]*models.Link, error) {
	var out []*models.Link
	for _, l := range r.links {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeLinkRepo) ListActiveByUser(ctx context.Context, userID uint) ([]*models.Link, error) {
	var out []*models.Link
	for _, l := range r.links {
		if l.UserID == userID && utils.IsTrue(l.IsActive) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeLinkRepo) IncrementClickCount(ctx context.Context, linkID uint) error {
	for _, l := range r.links {
		if l.ID == linkID {
			l.ClickCount++
		}
	}
	return nil
}

func (r *fakeLinkRepo) Update(ctx context.Context, link *models.Link) error { return nil }
func (r *fakeLinkRepo) Delete(ctx context.Context, linkID uint) error       { return nil }

// fakeClickRepo applies the same filter and grouping semantics as the real
// repository, over an in-memory slice
type fakeClickRepo struct {
	events []models.ClickEvent
}

func (r *fakeClickRepo) matches(e models.ClickEvent, f models.ClickEventFilter) bool {
	if f.LinkID != nil && e.LinkID != *f.LinkID {
		return false
	}
	if len(f.LinkIDs) > 0 {
		found := false
		for _, id := range f.LinkIDs {
			if e.LinkID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.HasCountry && e.Country == nil {
		return false
	}
	if f.HasIP && e.IPAddress == nil {
		return false
	}
	if f.HasDevice && e.DeviceType == nil {
		return false
	}
	if f.ClickedAfter != nil && e.ClickedAt.Before(*f.ClickedAfter) {
		return false
	}
	if f.ClickedBefore != nil && !e.ClickedAt.Before(*f.ClickedBefore) {
		return false
	}
	return true
}

func (r *fakeClickRepo) ByID(ctx context.Context, id uint) (*models.ClickEvent, error) {
	return nil, nil
}

func (r *fakeClickRepo) ByFilter(ctx context.Context, filter models.ClickEventFilter, orderBy string, limit, offset int) ([]*models.ClickEvent, error) {
	return nil, nil
}

func (r *fakeClickRepo) Save(ctx context.Context, e *models.ClickEvent) error {
	r.events = append(r.events, *e)
	return nil
}

func (r *fakeClickRepo) SaveBatch(ctx context.Context, events []*models.ClickEvent) error {
	for _, e := range events {
		r.events = append(r.events, *e)
	}
	return nil
}

func (r *fakeClickRepo) Count(ctx context.Context, filter models.ClickEventFilter) (int64, error) {
	var n int64
	for _, e := range r.events {
		if r.matches(e, filter) {
			n++
		}
	}
	return n, nil
}

func (r *fakeClickRepo) Exists(ctx context.Context, filter models.ClickEventFilter) (bool, error) {
	n, _ := r.Count(ctx, filter)
	return n > 0, nil
}

func (r *fakeClickRepo) CountDistinctIPs(ctx context.Context, linkIDs []uint, from time.Time) (int64, error) {
	seen := map[string]struct{}{}
	for _, e := range r.events {
		if r.matches(e, models.ClickEventFilter{LinkIDs: linkIDs, ClickedAfter: &from}) && e.IPAddress != nil {
			seen[*e.IPAddress] = struct{}{}
		}
	}
	return int64(len(seen)), nil
}

func (r *fakeClickRepo) DailyCounts(ctx context.Context, linkIDs []uint, from, to time.Time, onlyGeoTagged bool) ([]models.DailyCount, error) {
	byDate := map[string]int64{}
	for _, e := range r.events {
		if !r.matches(e, models.ClickEventFilter{LinkIDs: linkIDs, ClickedAfter: &from}) || e.ClickedAt.After(to) {
			continue
		}
		if onlyGeoTagged && e.Country == nil {
			continue
		}
		byDate[utils.FormatUTCDate(e.ClickedAt)]++
	}
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	out := make([]models.DailyCount, 0, len(dates))
	for _, d := range dates {
		out = append(out, models.DailyCount{Date: d, Clicks: byDate[d]})
	}
	return out, nil
}

func (r *fakeClickRepo) DeviceCounts(ctx context.Context, linkIDs []uint, from time.Time) ([]models.DeviceCount, error) {
	byDevice := map[string]int64{}
	for _, e := range r.events {
		if r.matches(e, models.ClickEventFilter{LinkIDs: linkIDs, ClickedAfter: &from}) && e.DeviceType != nil {
			byDevice[*e.DeviceType]++
		}
	}
	out := make([]models.DeviceCount, 0, len(byDevice))
	for d, n := range byDevice {
		out = append(out, models.DeviceCount{DeviceType: d, Count: n})
	}
	return out, nil
}

func (r *fakeClickRepo) CountryCounts(ctx context.Context, linkIDs []uint, from time.Time) ([]models.CountryCount, error) {
	type agg struct {
		clicks int64
		ips    map[string]struct{}
	}
	byCountry := map[string]*agg{}
	for _, e := range r.events {
		if !r.matches(e, models.ClickEventFilter{LinkIDs: linkIDs, ClickedAfter: &from}) || e.Country == nil {
			continue
		}
		a := byCountry[*e.Country]
		if a == nil {
			a = &agg{ips: map[string]struct{}{}}
			byCountry[*e.Country] = a
		}
		a.clicks++
		if e.IPAddress != nil {
			a.ips[*e.IPAddress] = struct{}{}
		}
	}
	out := make([]models.CountryCount, 0, len(byCountry))
	for c, a := range byCountry {
		out = append(out, models.CountryCount{Country: c, Clicks: a.clicks, UniqueVisitors: int64(len(a.ips))})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Clicks > out[j].Clicks })
	return out, nil
}

func activeLink(id, userID uint, title string) *models.Link {
	return &models.Link{ID: id, UserID: userID, Title: title, URL: "https://example.com", IsActive: utils.ToPtr(true)}
}

func click(linkID uint, at time.Time, opts ...func(*models.ClickEvent)) models.ClickEvent {
	e := models.ClickEvent{LinkID: linkID, ClickedAt: at}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

func withIP(ip string) func(*models.ClickEvent) {
	return func(e *models.ClickEvent) { e.IPAddress = &ip }
}

func withCountry(code string) func(*models.ClickEvent) {
	return func(e *models.ClickEvent) { e.Country = &code }
}

func withDevice(device string) func(*models.ClickEvent) {
	return func(e *models.ClickEvent) { e.DeviceType = &device }
}

func TestGetAnalyticsRejectsBadWindow(t *testing.T) {
	flow := NewAnalyticsFlow(&fakeLinkRepo{}, &fakeClickRepo{}, nil, nil)

	_, err := flow.GetAnalytics(context.Background(), 1, 0)
	assert.ErrorIs(t, err, ErrInvalidWindowDays)

	_, err = flow.GetAnalytics(context.Background(), 1, 366)
	assert.ErrorIs(t, err, ErrInvalidWindowDays)
}

func TestGetAnalyticsNoLinks(t *testing.T) {
	flow := NewAnalyticsFlow(&fakeLinkRepo{}, &fakeClickRepo{}, nil, nil)

	summary, err := flow.GetAnalytics(context.Background(), 1, 30)
	require.NoError(t, err)

	assert.Zero(t, summary.TotalClicks)
	assert.Zero(t, summary.UniqueVisitors)
	assert.Empty(t, summary.DailyStats)
	assert.Empty(t, summary.TopLinks)
	assert.Empty(t, summary.DeviceStats)
	assert.Zero(t, summary.GrowthPercentage)
}

func TestGetAnalyticsDailySeriesIsSparse(t *testing.T) {
	now := utils.UTCNow()
	dayA := now.AddDate(0, 0, -5)
	dayB := now.AddDate(0, 0, -2)

	links := &fakeLinkRepo{links: []*models.Link{activeLink(1, 9, "Blog")}}
	clicks := &fakeClickRepo{events: []models.ClickEvent{
		click(1, dayA), click(1, dayA), click(1, dayA),
		click(1, dayB), click(1, dayB),
	}}
	flow := NewAnalyticsFlow(links, clicks, nil, nil)

	summary, err := flow.GetAnalytics(context.Background(), 9, 7)
	require.NoError(t, err)

	assert.Equal(t, int64(5), summary.TotalClicks)
	require.Len(t, summary.DailyStats, 2)
	assert.Equal(t, utils.FormatUTCDate(dayA), summary.DailyStats[0].Date)
	assert.Equal(t, int64(3), summary.DailyStats[0].Clicks)
	assert.Equal(t, utils.FormatUTCDate(dayB), summary.DailyStats[1].Date)
	assert.Equal(t, int64(2), summary.DailyStats[1].Clicks)
}

func TestGetAnalyticsDeviceBreakdown(t *testing.T) {
	now := utils.UTCNow()
	at := now.AddDate(0, 0, -1)

	links := &fakeLinkRepo{links: []*models.Link{activeLink(1, 9, "Blog")}}
	clicks := &fakeClickRepo{events: []models.ClickEvent{
		click(1, at, withDevice(models.DeviceTypeMobile)),
		click(1, at, withDevice(models.DeviceTypeMobile)),
		click(1, at), // untagged click is excluded from the breakdown
	}}
	flow := NewAnalyticsFlow(links, clicks, nil, nil)

	summary, err := flow.GetAnalytics(context.Background(), 9, 7)
	require.NoError(t, err)

	require.Len(t, summary.DeviceStats, 1)
	assert.Equal(t, models.DeviceTypeMobile, summary.DeviceStats[0].DeviceType)
	assert.Equal(t, int64(2), summary.DeviceStats[0].Count)
	assert.Equal(t, 100.0, summary.DeviceStats[0].Percentage)
}

func TestGetAnalyticsGrowth(t *testing.T) {
	now := utils.UTCNow()
	links := &fakeLinkRepo{links: []*models.Link{activeLink(1, 9, "Blog")}}

	t.Run("previous zero current positive reads as 100", func(t *testing.T) {
		clicks := &fakeClickRepo{events: []models.ClickEvent{
			click(1, now.AddDate(0, 0, -1)),
		}}
		flow := NewAnalyticsFlow(links, clicks, nil, nil)

		summary, err := flow.GetAnalytics(context.Background(), 9, 7)
		require.NoError(t, err)
		assert.Equal(t, 100.0, summary.GrowthPercentage)
	})

	t.Run("previous zero current zero reads as 0", func(t *testing.T) {
		flow := NewAnalyticsFlow(links, &fakeClickRepo{}, nil, nil)

		summary, err := flow.GetAnalytics(context.Background(), 9, 7)
		require.NoError(t, err)
		assert.Equal(t, 0.0, summary.GrowthPercentage)
	})

	t.Run("plain ratio otherwise", func(t *testing.T) {
		var events []models.ClickEvent
		for i := 0; i < 6; i++ {
			events = append(events, click(1, now.AddDate(0, 0, -1)))
		}
		for i := 0; i < 4; i++ {
			events = append(events, click(1, now.AddDate(0, 0, -10)))
		}
		flow := NewAnalyticsFlow(links, &fakeClickRepo{events: events}, nil, nil)

		summary, err := flow.GetAnalytics(context.Background(), 9, 7)
		require.NoError(t, err)
		assert.Equal(t, 50.0, summary.GrowthPercentage)
	})
}

func TestGetAnalyticsTopLinks(t *testing.T) {
	now := utils.UTCNow()
	at := now.AddDate(0, 0, -1)

	links := &fakeLinkRepo{}
	var events []models.ClickEvent
	// Six links: clicks 6,5,4,3,2,1 so the sixth must be cut
	for i := uint(1); i <= 6; i++ {
		links.links = append(links.links, activeLink(i, 9, "Link"))
		for j := uint(0); j < 7-i; j++ {
			events = append(events, click(i, at))
		}
	}
	flow := NewAnalyticsFlow(links, &fakeClickRepo{events: events}, nil, nil)

	summary, err := flow.GetAnalytics(context.Background(), 9, 7)
	require.NoError(t, err)

	require.Len(t, summary.TopLinks, 5)
	assert.Equal(t, uint(1), summary.TopLinks[0].LinkID)
	assert.Equal(t, int64(6), summary.TopLinks[0].Clicks)
	// 6 of 21 clicks
	assert.Equal(t, 28.6, summary.TopLinks[0].Percentage)
	assert.Equal(t, uint(5), summary.TopLinks[4].LinkID)
	assert.Equal(t, int64(2), summary.TopLinks[4].Clicks)
}

func TestGetGeographicAnalytics(t *testing.T) {
	now := utils.UTCNow()
	at := now.AddDate(0, 0, -1)

	links := &fakeLinkRepo{links: []*models.Link{activeLink(1, 9, "Blog")}}
	clicks := &fakeClickRepo{events: []models.ClickEvent{
		click(1, at, withCountry("US"), withIP("1.1.1.1")),
		click(1, at, withCountry("US"), withIP("1.1.1.2")),
		click(1, at, withCountry("US"), withIP("1.1.1.1")),
		click(1, at, withCountry("DE"), withIP("2.2.2.2")),
		click(1, at), // untagged click stays out of the breakdown and trends
	}}
	flow := NewAnalyticsFlow(links, clicks, nil, nil)

	summary, err := flow.GetGeographicAnalytics(context.Background(), 9, 7)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalCountries)
	require.Len(t, summary.TopCountries, 2)
	assert.Equal(t, "US", summary.TopCountries[0].CountryCode)
	assert.Equal(t, "United States", summary.TopCountries[0].CountryName)
	assert.Equal(t, int64(3), summary.TopCountries[0].Clicks)
	assert.Equal(t, 75.0, summary.TopCountries[0].Percentage)
	assert.Equal(t, int64(2), summary.TopCountries[0].UniqueVisitors)
	assert.Equal(t, "DE", summary.TopCountries[1].CountryCode)

	require.Len(t, summary.GeographicTrends, 1)
	assert.Equal(t, int64(4), summary.GeographicTrends[0].Clicks)

	assert.Empty(t, summary.CityBreakdown)
}

func TestGetGeographicAnalyticsNoLinks(t *testing.T) {
	flow := NewAnalyticsFlow(&fakeLinkRepo{}, &fakeClickRepo{}, nil, nil)

	summary, err := flow.GetGeographicAnalytics(context.Background(), 1, 30)
	require.NoError(t, err)

	assert.Zero(t, summary.TotalCountries)
	assert.Empty(t, summary.TopCountries)
	assert.Empty(t, summary.CityBreakdown)
	assert.Empty(t, summary.GeographicTrends)
}

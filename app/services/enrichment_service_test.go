package services

import (
	"context"
	"testing"

	"github.com/biotap/biotap/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUserAgent(t *testing.T) {
	tests := []struct {
		name    string
		ua      string
		mobile  bool
		tablet  bool
		desktop bool
		browser string
	}{
		{
			name:    "iphone safari",
			ua:      "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			mobile:  true,
			browser: "Safari",
		},
		{
			name:    "ipad classifies as tablet before mobile",
			ua:      "Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1",
			tablet:  true,
			browser: "Safari",
		},
		{
			name:    "android chrome",
			ua:      "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36",
			mobile:  true,
			browser: "Chrome",
		},
		{
			name:    "windows chrome",
			ua:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			desktop: true,
			browser: "Chrome",
		},
		{
			name:    "edge wins over chrome token",
			ua:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
			desktop: true,
			browser: "Edge",
		},
		{
			name:    "firefox on linux",
			ua:      "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
			desktop: true,
			browser: "Firefox",
		},
		{
			name:    "googlebot has no device class",
			ua:      "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			browser: models.BrowserUnknown,
		},
		{
			name:    "generic crawler has no device class",
			ua:      "some-crawler/1.0",
			browser: models.BrowserUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ParseUserAgent(tt.ua)
			assert.Equal(t, tt.mobile, info.IsMobile, "mobile")
			assert.Equal(t, tt.tablet, info.IsTablet, "tablet")
			assert.Equal(t, tt.desktop, info.IsDesktop, "desktop")
			assert.Equal(t, tt.browser, info.BrowserFamily, "browser")
		})
	}
}

func TestEnrichWithoutUserAgent(t *testing.T) {
	svc := NewEnrichmentService(NewNoopCountryLookup())

	meta := svc.Enrich(context.Background(), nil, nil)

	assert.Equal(t, models.DeviceTypeUnknown, meta.DeviceType)
	assert.Equal(t, models.BrowserUnknown, meta.Browser)
	assert.Nil(t, meta.Country)
}

func TestEnrichBotUserAgent(t *testing.T) {
	svc := NewEnrichmentService(NewNoopCountryLookup())
	ua := "Mozilla/5.0 (compatible; bingbot/2.0; +http://www.bing.com/bingbot.htm)"

	meta := svc.Enrich(context.Background(), &ua, nil)

	assert.Equal(t, models.DeviceTypeUnknown, meta.DeviceType)
	assert.Nil(t, meta.Country)
}

func TestEnrichResolvesCountry(t *testing.T) {
	geo := &StaticCountryLookup{Entries: map[string]string{"203.0.113.7": "DE"}}
	svc := NewEnrichmentService(geo)
	ua := "Mozilla/5.0 (Linux; Android 14) AppleWebKit/537.36 Chrome/120.0 Mobile Safari/537.36"
	ip := "203.0.113.7"

	meta := svc.Enrich(context.Background(), &ua, &ip)

	require.NotNil(t, meta.Country)
	assert.Equal(t, "DE", *meta.Country)
	assert.Equal(t, models.DeviceTypeMobile, meta.DeviceType)
}

func TestEnrichUnknownIPLeavesCountryAbsent(t *testing.T) {
	geo := &StaticCountryLookup{Entries: map[string]string{}}
	svc := NewEnrichmentService(geo)
	ip := "198.51.100.1"

	meta := svc.Enrich(context.Background(), nil, &ip)

	assert.Nil(t, meta.Country)
}

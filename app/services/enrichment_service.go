// Package services provides external service integrations and technical concerns like enrichment and email delivery
package services

import (
	"context"
	"strings"

	"github.com/biotap/biotap/models"
)

// UserAgentInfo is the parsed device-class and browser signal of a raw
// user-agent string
type UserAgentInfo struct {
	IsMobile      bool
	IsTablet      bool
	IsDesktop     bool
	BrowserFamily string
}

// ClickMetadata holds the enriched facts recorded with a click event
type ClickMetadata struct {
	DeviceType string
	Browser    string
	Country    *string
}

var botMarkers = []string{
	"bot", "crawler", "spider", "slurp", "googlebot", "bingbot",
	"yahoo", "baidu", "yandex", "preview", "proxy", "scanner",
}

// browserMarkers are checked in order; Edge and Opera ship Chrome tokens
// and Chrome ships a Safari token, so specificity decides the order
var browserMarkers = []struct {
	token  string
	family string
}{
	{"edg", "Edge"},
	{"opr", "Opera"},
	{"opera", "Opera"},
	{"samsungbrowser", "Samsung Internet"},
	{"firefox", "Firefox"},
	{"fxios", "Firefox"},
	{"crios", "Chrome"},
	{"chrome", "Chrome"},
	{"safari", "Safari"},
	{"msie", "Internet Explorer"},
	{"trident", "Internet Explorer"},
}

// ParseUserAgent classifies a raw user-agent string. Bots carry no usable
// device-class signal and classify as neither mobile, tablet nor desktop.
func ParseUserAgent(ua string) UserAgentInfo {
	lower := strings.ToLower(ua)

	info := UserAgentInfo{BrowserFamily: models.BrowserUnknown}
	for _, m := range browserMarkers {
		if strings.Contains(lower, m.token) {
			info.BrowserFamily = m.family
			break
		}
	}

	if isBot(lower) {
		return info
	}

	switch {
	case strings.Contains(lower, "ipad") || strings.Contains(lower, "tablet"):
		info.IsTablet = true
	case strings.Contains(lower, "mobile") || strings.Contains(lower, "android") || strings.Contains(lower, "iphone"):
		info.IsMobile = true
	default:
		info.IsDesktop = true
	}
	return info
}

func isBot(lowerUA string) bool {
	for _, marker := range botMarkers {
		if strings.Contains(lowerUA, marker) {
			return true
		}
	}
	return false
}

// EnrichmentService derives device/browser/country facts from raw request
// metadata. It never fails: unresolvable inputs degrade to unknown/absent.
type EnrichmentService interface {
	Enrich(ctx context.Context, userAgent, ip *string) ClickMetadata
}

type EnrichmentServiceImpl struct {
	geo CountryLookup
}

func NewEnrichmentService(geo CountryLookup) EnrichmentService {
	return &EnrichmentServiceImpl{geo: geo}
}

func (s *EnrichmentServiceImpl) Enrich(ctx context.Context, userAgent, ip *string) ClickMetadata {
	meta := ClickMetadata{
		DeviceType: models.DeviceTypeUnknown,
		Browser:    models.BrowserUnknown,
	}

	if userAgent != nil && *userAgent != "" {
		ua := ParseUserAgent(*userAgent)
		switch {
		case ua.IsMobile:
			meta.DeviceType = models.DeviceTypeMobile
		case ua.IsTablet:
			meta.DeviceType = models.DeviceTypeTablet
		case ua.IsDesktop:
			meta.DeviceType = models.DeviceTypeDesktop
		}
		meta.Browser = ua.BrowserFamily
	}

	if ip != nil && *ip != "" && s.geo != nil {
		// Lookup reports absence as ("", nil); it never fails the caller
		if code, err := s.geo.Lookup(ctx, *ip); err == nil && code != "" {
			meta.Country = &code
		}
	}

	return meta
}

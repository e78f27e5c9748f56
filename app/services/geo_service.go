package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CountryLookup resolves an IP address to a 2-letter ISO country code.
// Implementations must report not-found/unavailable as ("", nil) rather
// than an error: geo enrichment must never fail the surrounding operation.
type CountryLookup interface {
	Lookup(ctx context.Context, ip string) (string, error)
}

// HTTPCountryLookup queries an external IP geolocation endpoint.
// Any transport, decode, or non-2xx failure degrades to an empty result.
type HTTPCountryLookup struct {
	endpoint string
	client   *http.Client
}

func NewHTTPCountryLookup(endpoint string, timeout time.Duration) *HTTPCountryLookup {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HTTPCountryLookup{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
	}
}

type geoLookupResponse struct {
	CountryCode string `json:"countryCode"`
}

func (l *HTTPCountryLookup) Lookup(ctx context.Context, ip string) (string, error) {
	if l.endpoint == "" || ip == "" {
		return "", nil
	}

	u := fmt.Sprintf("%s/%s", l.endpoint, url.PathEscape(ip))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", nil
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return "", nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return "", nil
	}

	var body geoLookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", nil
	}
	if len(body.CountryCode) != 2 {
		return "", nil
	}
	return strings.ToUpper(body.CountryCode), nil
}

// NoopCountryLookup is used when geo lookup is disabled by configuration
type NoopCountryLookup struct{}

func NewNoopCountryLookup() CountryLookup {
	return &NoopCountryLookup{}
}

func (l *NoopCountryLookup) Lookup(ctx context.Context, ip string) (string, error) {
	return "", nil
}

// StaticCountryLookup resolves from a fixed table; intended for tests
type StaticCountryLookup struct {
	Entries map[string]string
}

func (l *StaticCountryLookup) Lookup(ctx context.Context, ip string) (string, error) {
	return l.Entries[ip], nil
}

// countryNames maps ISO country codes to display names. Many codes stay
// unmapped on purpose; callers fall back to the raw code.
var countryNames = map[string]string{
	"US": "United States",
	"GB": "United Kingdom",
	"CA": "Canada",
	"AU": "Australia",
	"DE": "Germany",
	"FR": "France",
	"IT": "Italy",
	"ES": "Spain",
	"NL": "Netherlands",
	"BR": "Brazil",
	"JP": "Japan",
	"CN": "China",
	"IN": "India",
	"MX": "Mexico",
	"AR": "Argentina",
	"CL": "Chile",
	"CO": "Colombia",
	"PE": "Peru",
	"RU": "Russia",
	"UA": "Ukraine",
	"PL": "Poland",
	"SE": "Sweden",
	"NO": "Norway",
	"DK": "Denmark",
	"FI": "Finland",
	"CH": "Switzerland",
	"AT": "Austria",
	"BE": "Belgium",
	"PT": "Portugal",
	"IE": "Ireland",
	"NZ": "New Zealand",
	"ZA": "South Africa",
	"EG": "Egypt",
	"NG": "Nigeria",
	"KE": "Kenya",
	"MA": "Morocco",
	"TH": "Thailand",
	"VN": "Vietnam",
	"SG": "Singapore",
	"MY": "Malaysia",
	"ID": "Indonesia",
	"PH": "Philippines",
	"KR": "South Korea",
	"TR": "Turkey",
	"SA": "Saudi Arabia",
	"AE": "UAE",
	"IL": "Israel",
	"QA": "Qatar",
}

// CountryName returns the display name for an ISO code, or the code itself
// when unmapped
func CountryName(code string) string {
	if name, ok := countryNames[code]; ok {
		return name
	}
	return code
}

package handlers

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/biotap/biotap/app/dto"
	"github.com/biotap/biotap/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalyticsFlow struct {
	gotDays []int
}

func (f *fakeAnalyticsFlow) GetAnalytics(ctx context.Context, userID uint, windowDays int) (*dto.AnalyticsSummary, error) {
	f.gotDays = append(f.gotDays, windowDays)
	return &dto.AnalyticsSummary{}, nil
}

func (f *fakeAnalyticsFlow) GetGeographicAnalytics(ctx context.Context, userID uint, windowDays int) (*dto.GeographicSummary, error) {
	f.gotDays = append(f.gotDays, windowDays)
	return &dto.GeographicSummary{}, nil
}

func newAnalyticsTestApp(flow *fakeAnalyticsFlow) *fiber.App {
	app := fiber.New()
	h := NewAnalyticsHandler(flow)
	app.Get("/api/v1/users/:id/analytics", h.GetAnalytics)
	app.Get("/api/v1/users/:id/analytics/geographic", h.GetGeographicAnalytics)
	return app
}

func TestGetAnalyticsDefaultsWindow(t *testing.T) {
	flow := &fakeAnalyticsFlow{}
	app := newAnalyticsTestApp(flow)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/users/9/analytics", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Len(t, flow.gotDays, 1)
	assert.Equal(t, utils.DefaultWindowDays, flow.gotDays[0])
}

func TestGetAnalyticsWindowFromQuery(t *testing.T) {
	flow := &fakeAnalyticsFlow{}
	app := newAnalyticsTestApp(flow)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/users/9/analytics?days=14", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Len(t, flow.gotDays, 1)
	assert.Equal(t, 14, flow.gotDays[0])
}

func TestGetAnalyticsRejectsBadWindowQuery(t *testing.T) {
	for _, query := range []string{"days=abc", "days=0", "days=400"} {
		flow := &fakeAnalyticsFlow{}
		app := newAnalyticsTestApp(flow)

		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/users/9/analytics?"+query, nil))
		require.NoError(t, err, query)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, query)
		assert.Empty(t, flow.gotDays, query)
	}
}

func TestGetGeographicAnalyticsWindowFromQuery(t *testing.T) {
	flow := &fakeAnalyticsFlow{}
	app := newAnalyticsTestApp(flow)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/users/9/analytics/geographic?days=7", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Len(t, flow.gotDays, 1)
	assert.Equal(t, 7, flow.gotDays[0])
}

package analytics

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/stockdesk/internal/apitest"
	"github.com/georgemunganga/stockdesk/internal/apperr"
)

func newTestService(t *testing.T, mount func(r chi.Router)) (Service, *apitest.Sessions) {
	t.Helper()
	r := apitest.NewRouter()
	mount(r)
	gw, sessions := apitest.Server(t, r)
	return NewService(NewRemoteRepository(gw), apitest.QuietLog()), sessions
}

var summaryBody = map[string]any{
	"totalProducts":  12,
	"totalOrders":    4,
	"totalRevenue":   310.5,
	"lowStockCount":  2,
	"categoryCounts": map[string]int{"Paper": 7, "Ink": 5},
	"monthlyRevenue": []map[string]any{{"month": "2024-02", "revenue": 100}, {"month": "2024-03", "revenue": 210.5}},
}

func TestDashboard_PrefersDailySeries(t *testing.T) {
	svc, _ := newTestService(t, func(r chi.Router) {
		r.Get("/analytics/summary", func(w http.ResponseWriter, r *http.Request) {
			apitest.Respond(w, http.StatusOK, summaryBody)
		})
		r.Get("/analytics/sales-daily", func(w http.ResponseWriter, r *http.Request) {
			apitest.Respond(w, http.StatusOK, []map[string]any{{"day": "2024-03-01", "revenue": 40}})
		})
	})

	d, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), d.Summary.TotalProducts)
	assert.Equal(t, int64(5), d.Summary.CategoryCounts["Ink"])
	assert.Equal(t, TrendDaily, d.TrendSource)
	assert.Equal(t, []Point{{Label: "2024-03-01", Value: 40}}, d.Trend)
	assert.NoError(t, d.DailyErr)
}

func TestDashboard_FallsBackToMonthly(t *testing.T) {
	for name, daily := range map[string]http.HandlerFunc{
		"empty": func(w http.ResponseWriter, r *http.Request) {
			apitest.Respond(w, http.StatusOK, []any{})
		},
		"failing": func(w http.ResponseWriter, r *http.Request) {
			apitest.Respond(w, http.StatusInternalServerError, map[string]string{"error": "boom"})
		},
	} {
		t.Run(name, func(t *testing.T) {
			svc, _ := newTestService(t, func(r chi.Router) {
				r.Get("/analytics/summary", func(w http.ResponseWriter, r *http.Request) {
					apitest.Respond(w, http.StatusOK, summaryBody)
				})
				r.Get("/analytics/sales-daily", daily)
			})

			d, err := svc.Dashboard(context.Background())
			require.NoError(t, err)
			assert.Equal(t, TrendMonthly, d.TrendSource)
			require.Len(t, d.Trend, 2)
			assert.Equal(t, "2024-03", d.Trend[1].Label)
			assert.Equal(t, name == "failing", d.DailyErr != nil)
		})
	}
}

func TestDashboard_SummaryIsRequired(t *testing.T) {
	svc, _ := newTestService(t, func(r chi.Router) {
		r.Get("/analytics/summary", func(w http.ResponseWriter, r *http.Request) {
			apitest.Respond(w, http.StatusServiceUnavailable, map[string]string{"message": "maintenance"})
		})
	})

	_, err := svc.Dashboard(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Remote))
	assert.Equal(t, "maintenance", apperr.PublicMessage(err, ""))
}

func TestDashboard_UnauthorizedDailyStillClearsSession(t *testing.T) {
	svc, sessions := newTestService(t, func(r chi.Router) {
		r.Get("/analytics/summary", func(w http.ResponseWriter, r *http.Request) {
			apitest.Respond(w, http.StatusOK, map[string]any{"totalProducts": 1})
		})
		r.Get("/analytics/sales-daily", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	})

	d, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TrendNone, d.TrendSource)
	assert.True(t, apperr.Is(d.DailyErr, apperr.Authority))
	assert.Equal(t, 1, sessions.Cleared())
}

func TestTrendRows_ScaleToPeak(t *testing.T) {
	rows := trendRows([]Point{{"a", 100}, {"b", 50}, {"c", 0}, {"d", 0.1}})
	assert.Len(t, rows[0][2], barWidth)
	assert.Len(t, rows[1][2], barWidth/2)
	assert.Empty(t, rows[2][2])
	assert.Equal(t, "#", rows[3][2])
}

func TestExportURL(t *testing.T) {
	svc, _ := newTestService(t, func(chi.Router) {})

	link, err := svc.ExportURL("excel")
	require.NoError(t, err)
	assert.Contains(t, link, "/api/analytics/export/excel")

	_, err = svc.ExportURL("xml")
	assert.True(t, apperr.Is(err, apperr.Validation))
}

// internal/collect/catalog_test.go
package collect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agroscore/internal/common/errors"
)

func TestCatalogImageryMonthlySeries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/ndvi/series", r.URL.Path)
		assert.Equal(t, "6", r.URL.Query().Get("months"))
		assert.NotEmpty(t, r.URL.Query().Get("lat"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"samples": [
				{"period": "Mar 2026", "ndvi": 0.45, "cloud_cover": 12.0, "observed_at": "2026-03-15T00:00:00Z"},
				{"period": "Apr 2026", "ndvi": 0.50, "cloud_cover": 80.0, "observed_at": "2026-04-15T00:00:00Z"},
				{"period": "May 2026", "ndvi": 0.55, "cloud_cover": 5.0, "observed_at": "2026-05-15T00:00:00Z"}
			]
		}`))
	}))
	defer server.Close()

	catalog := NewCatalogImagery(server.URL, 30.0, 5*time.Second)
	series, err := catalog.MonthlySeries(context.Background(), testRegion, 6)
	require.NoError(t, err)

	// The April sample exceeds the cloud cover ceiling and is dropped.
	require.Len(t, series.Samples, 2)
	assert.Equal(t, "Mar 2026", series.Samples[0].PeriodLabel)
	assert.Equal(t, "May 2026", series.Samples[1].PeriodLabel)
	assert.InDelta(t, 0.55, series.Samples[1].NDVI, 0.001)
}

func TestCatalogImageryChangePair(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/ndvi/change", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("years_back"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"historical": {"period": "Aug 2024", "ndvi": 0.65, "observed_at": "2024-08-15T00:00:00Z"},
			"recent": {"period": "Aug 2026", "ndvi": 0.35, "observed_at": "2026-08-15T00:00:00Z"}
		}`))
	}))
	defer server.Close()

	catalog := NewCatalogImagery(server.URL, 30.0, 5*time.Second)
	historical, recent, err := catalog.ChangePair(context.Background(), testRegion, 2)
	require.NoError(t, err)

	assert.InDelta(t, 0.65, historical.NDVI, 0.001)
	assert.InDelta(t, 0.35, recent.NDVI, 0.001)
}

func TestCatalogImageryRejectsOutOfRangeNDVI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"samples": [
				{"period": "Mar 2026", "ndvi": 0.45, "cloud_cover": 12.0, "observed_at": "2026-03-15T00:00:00Z"},
				{"period": "Apr 2026", "ndvi": 1.45, "cloud_cover": 5.0, "observed_at": "2026-04-15T00:00:00Z"}
			]
		}`))
	}))
	defer server.Close()

	catalog := NewCatalogImagery(server.URL, 30.0, 5*time.Second)
	_, err := catalog.MonthlySeries(context.Background(), testRegion, 6)
	require.Error(t, err)
	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodeImageryFetchFailed, stdErr.Code)
	assert.Contains(t, stdErr.Details, "out of range")
}

func TestCatalogImageryRejectsOutOfRangePair(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"historical": {"period": "Aug 2024", "ndvi": -0.20, "observed_at": "2024-08-15T00:00:00Z"},
			"recent": {"period": "Aug 2026", "ndvi": 0.35, "observed_at": "2026-08-15T00:00:00Z"}
		}`))
	}))
	defer server.Close()

	catalog := NewCatalogImagery(server.URL, 30.0, 5*time.Second)
	_, _, err := catalog.ChangePair(context.Background(), testRegion, 2)
	require.Error(t, err)
	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodeImageryFetchFailed, stdErr.Code)
	assert.Contains(t, stdErr.Details, "out of range")
}

func TestCatalogImageryServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	catalog := NewCatalogImagery(server.URL, 30.0, 5*time.Second)
	_, err := catalog.MonthlySeries(context.Background(), testRegion, 6)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IMAGERY_FETCH_FAILED")
}

func TestProviderWeatherClimate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/climate/risk", r.URL.Path)
		assert.Equal(t, "90", r.URL.Query().Get("days"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"summary": {
				"weather_risk_score": 0.35,
				"drought_risk_score": 0.42,
				"rainfall_total_mm": 180.5,
				"temperature_min_c": 12.0,
				"temperature_max_c": 29.5,
				"frost_days": 0
			}
		}`))
	}))
	defer server.Close()

	provider := NewProviderWeather(server.URL, 90, 5*time.Second)
	signal, err := provider.Climate(context.Background(), testRegion)
	require.NoError(t, err)

	assert.InDelta(t, 0.35, signal.WeatherRiskScore, 0.001)
	assert.InDelta(t, 0.42, signal.DroughtRiskScore, 0.001)
	assert.InDelta(t, 180.5, signal.RainfallTotalMM, 0.001)
}

func TestProviderWeatherRejectsOutOfRangeScores(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"summary": {
				"weather_risk_score": 1.2,
				"drought_risk_score": 0.42
			}
		}`))
	}))
	defer server.Close()

	provider := NewProviderWeather(server.URL, 90, 5*time.Second)
	_, err := provider.Climate(context.Background(), testRegion)
	require.Error(t, err)
	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodeWeatherFetchFailed, stdErr.Code)
	assert.Contains(t, stdErr.Details, "out of range")
}

func TestProviderWeatherServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	provider := NewProviderWeather(server.URL, 90, 5*time.Second)
	_, err := provider.Climate(context.Background(), testRegion)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WEATHER_FETCH_FAILED")
}

// internal/collect/provider.go
package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"agroscore/internal/common/errors"
	"agroscore/internal/models"
)

// ProviderWeather fetches the climate risk summary from a weather provider
// over HTTP.
type ProviderWeather struct {
	baseURL     string
	historyDays int
	client      *http.Client
}

func NewProviderWeather(baseURL string, historyDays int, timeout time.Duration) *ProviderWeather {
	return &ProviderWeather{
		baseURL:     baseURL,
		historyDays: historyDays,
		client:      &http.Client{Timeout: timeout},
	}
}

type providerResponse struct {
	Summary struct {
		WeatherRiskScore float64 `json:"weather_risk_score"`
		DroughtRiskScore float64 `json:"drought_risk_score"`
		RainfallTotalMM  float64 `json:"rainfall_total_mm"`
		TemperatureMinC  float64 `json:"temperature_min_c"`
		TemperatureMaxC  float64 `json:"temperature_max_c"`
		FrostDays        int     `json:"frost_days"`
	} `json:"summary"`
}

func (p *ProviderWeather) Climate(ctx context.Context, region models.Region) (*models.ClimateSignal, error) {
	params := url.Values{
		"lat":  {fmt.Sprintf("%f", region.Latitude)},
		"lon":  {fmt.Sprintf("%f", region.Longitude)},
		"days": {fmt.Sprintf("%d", p.historyDays)},
	}
	endpoint := p.baseURL + "/v1/climate/risk?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, errors.NewWeatherFetchFailedError(fmt.Errorf("build weather request: %w", err))
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.NewWeatherFetchFailedError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewWeatherFetchFailedError(fmt.Errorf("provider returned %d", resp.StatusCode))
	}

	var payload providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.NewWeatherFetchFailedError(fmt.Errorf("decode provider response: %w", err))
	}

	// Risk scores outside [0,1] are provider corruption, not a signal. Reject
	// here so the orchestrator falls back to the neutral climate estimate
	// instead of feeding bad values into the scorer.
	if !inUnitRange(payload.Summary.WeatherRiskScore) || !inUnitRange(payload.Summary.DroughtRiskScore) {
		return nil, errors.NewWeatherFetchFailedError(fmt.Errorf(
			"provider risk scores out of range: weather=%.3f drought=%.3f",
			payload.Summary.WeatherRiskScore, payload.Summary.DroughtRiskScore))
	}

	return &models.ClimateSignal{
		WeatherRiskScore: payload.Summary.WeatherRiskScore,
		DroughtRiskScore: payload.Summary.DroughtRiskScore,
		RainfallTotalMM:  payload.Summary.RainfallTotalMM,
		TemperatureMinC:  payload.Summary.TemperatureMinC,
		TemperatureMaxC:  payload.Summary.TemperatureMaxC,
		FrostDays:        payload.Summary.FrostDays,
	}, nil
}

// internal/collect/catalog.go
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

// CatalogImagery fetches NDVI observations from an imagery catalog service
// over HTTP. Observations above the cloud cover ceiling are dropped rather
// than smoothed over.
type CatalogImagery struct {
	baseURL       string
	maxCloudCover float64
	client        *http.Client
}

func NewCatalogImagery(baseURL string, maxCloudCover float64, timeout time.Duration) *CatalogImagery {
	return &CatalogImagery{
		baseURL:       baseURL,
		maxCloudCover: maxCloudCover,
		client:        &http.Client{Timeout: timeout},
	}
}

type catalogSample struct {
	Period     string    `json:"period"`
	NDVI       float64   `json:"ndvi"`
	CloudCover float64   `json:"cloud_cover"`
	ObservedAt time.Time `json:"observed_at"`
}

type catalogSeriesResponse struct {
	Samples []catalogSample `json:"samples"`
}

type catalogPairResponse struct {
	Historical *catalogSample `json:"historical"`
	Recent     *catalogSample `json:"recent"`
}

func (c *CatalogImagery) MonthlySeries(ctx context.Context, region models.Region, months int) (*models.TemporalSeries, error) {
	var resp catalogSeriesResponse
	params := url.Values{
		"lat":    {fmt.Sprintf("%f", region.Latitude)},
		"lon":    {fmt.Sprintf("%f", region.Longitude)},
		"months": {fmt.Sprintf("%d", months)},
	}
	if region.RadiusKm > 0 {
		params.Set("radius_km", fmt.Sprintf("%f", region.RadiusKm))
	}
	if err := c.get(ctx, "/v1/ndvi/series", params, &resp); err != nil {
		return nil, errors.NewImageryFetchFailedError(err)
	}

	series := &models.TemporalSeries{Region: region}
	for _, s := range resp.Samples {
		if s.CloudCover > c.maxCloudCover {
			continue
		}
		if !inUnitRange(s.NDVI) {
			return nil, errors.NewImageryFetchFailedError(fmt.Errorf("ndvi out of range: %.3f in period %q", s.NDVI, s.Period))
		}
		series.Samples = append(series.Samples, models.VegetationSample{
			PeriodLabel:   s.Period,
			NDVI:          s.NDVI,
			CloudCoverPct: s.CloudCover,
			SampledAt:     s.ObservedAt,
		})
	}
	return series, nil
}

func (c *CatalogImagery) ChangePair(ctx context.Context, region models.Region, yearsBack int) (*models.VegetationSample, *models.VegetationSample, error) {
	var resp catalogPairResponse
	params := url.Values{
		"lat":        {fmt.Sprintf("%f", region.Latitude)},
		"lon":        {fmt.Sprintf("%f", region.Longitude)},
		"years_back": {fmt.Sprintf("%d", yearsBack)},
	}
	if err := c.get(ctx, "/v1/ndvi/change", params, &resp); err != nil {
		return nil, nil, errors.NewImageryFetchFailedError(err)
	}
	for _, s := range []*catalogSample{resp.Historical, resp.Recent} {
		if s != nil && !inUnitRange(s.NDVI) {
			return nil, nil, errors.NewImageryFetchFailedError(fmt.Errorf("ndvi out of range: %.3f in period %q", s.NDVI, s.Period))
		}
	}
	return toSample(resp.Historical), toSample(resp.Recent), nil
}

// inUnitRange reports whether v is a usable [0,1] score or NDVI value.
func inUnitRange(v float64) bool {
	return v >= 0 && v <= 1
}

func toSample(s *catalogSample) *models.VegetationSample {
	if s == nil {
		return nil
	}
	return &models.VegetationSample{
		PeriodLabel:   s.Period,
		NDVI:          s.NDVI,
		CloudCoverPct: s.CloudCover,
		SampledAt:     s.ObservedAt,
	}
}

func (c *CatalogImagery) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	endpoint := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return fmt.Errorf("build catalog request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog returned %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode catalog response: %w", err)
	}
	return nil
}

// internal/collect/weather.go
package collect

import (
	"context"
	"math"
	"time"

	"agroscore/internal/models"
)

// SyntheticWeather generates a deterministic climate risk summary from a
// seed and the region coordinates.
type SyntheticWeather struct {
	seed int64
	now  func() time.Time
}

func NewSyntheticWeather(seed int64) *SyntheticWeather {
	return &SyntheticWeather{seed: seed, now: time.Now}
}

func (s *SyntheticWeather) Climate(ctx context.Context, region models.Region) (*models.ClimateSignal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rng := regionRand(s.seed, saltonWx, region)

	weatherRisk := 0.15 + rng.Float64()*0.50
	droughtRisk := 0.15 + rng.Float64()*0.55
	minTemp := 4 + rng.Float64()*12

	frostDays := 0
	if minTemp < 6 {
		frostDays = rng.Intn(5)
	}

	return &models.ClimateSignal{
		WeatherRiskScore: round3(weatherRisk),
		DroughtRiskScore: round3(droughtRisk),
		RainfallTotalMM:  20 + rng.Float64()*220,
		TemperatureMinC:  minTemp,
		TemperatureMaxC:  minTemp + 8 + rng.Float64()*14,
		FrostDays:        frostDays,
	}, nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

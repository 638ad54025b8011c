// cmd/tools/assessment-runner/main.go

// assessment-runner executes one loan assessment against synthetic
// collectors and prints the decision payload as JSON. Useful for trying out
// scoring changes without a broker or any backing services.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"agroscore/internal/collect"
	"agroscore/internal/common/logger"
	"agroscore/internal/models"
	"agroscore/internal/pipeline"

	"github.com/google/uuid"
)

func main() {
	var (
		lat      = flag.Float64("lat", -1.2921, "farm latitude")
		lon      = flag.Float64("lon", 36.8219, "farm longitude")
		radius   = flag.Float64("radius", 2.5, "farm radius in km")
		amount   = flag.Float64("amount", 1500, "requested loan amount")
		purpose  = flag.String("purpose", "drip irrigation upgrade", "stated loan purpose")
		months   = flag.Int("months", 6, "lookback window in months")
		years    = flag.Int("years", 2, "change detection baseline in years")
		seed     = flag.Int64("seed", 42, "synthetic data seed")
		logLevel = flag.String("log-level", "warn", "log level")
	)
	flag.Parse()

	zapLog := logger.New(*logLevel, "console")
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	orchestrator := pipeline.NewOrchestrator(
		collect.NewSyntheticImagery(*seed),
		collect.NewSyntheticWeather(*seed),
		log,
		pipeline.WithHistoryWindow(*months, *years),
	)

	payload, err := orchestrator.Run(context.Background(), &models.AssessmentRequest{
		RequestID:  uuid.New().String(),
		Latitude:   *lat,
		Longitude:  *lon,
		RadiusKm:   *radius,
		LoanAmount: *amount,
		Purpose:    *purpose,
	})
	if err != nil {
		zapLog.Fatal("assessment failed", zap.Error(err))
	}

	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		zapLog.Fatal("encode payload", zap.Error(err))
	}
	fmt.Fprintln(os.Stdout, string(out))
}

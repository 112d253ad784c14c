// Command airquality reports the closest AirNow monitor for each
// pollutant type (ozone, PM2.5, PM10) near a US postal code, printing a
// table to stdout and optionally writing the readings to InfluxDB.
//
// Usage:
//
//	airquality [flags] <postal_code> <distance_miles> <api_key>
//
// With -poll it keeps running, querying AirNow on the given interval and
// serving health and Prometheus metrics endpoints. Every setting also
// has an environment variable form (POSTAL_CODE, DISTANCE_MI, API_KEY,
// INFLUX_*, POLL_INTERVAL) for container deployments.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wgraba/airquality/internal/adapter/airnow"
	"github.com/wgraba/airquality/internal/adapter/console"
	httpadapter "github.com/wgraba/airquality/internal/adapter/http"
	"github.com/wgraba/airquality/internal/adapter/influx"
	"github.com/wgraba/airquality/internal/adapter/nominatim"
	"github.com/wgraba/airquality/internal/config"
	"github.com/wgraba/airquality/internal/observability"
	"github.com/wgraba/airquality/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		slog.Error("airquality failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	geocoder := nominatim.NewClient(cfg.RequestTimeout, logger)
	source := airnow.NewClient(cfg.APIKey, cfg.RequestTimeout, logger)

	sinks := []pipeline.Sink{console.NewWriter(os.Stdout)}
	if cfg.InfluxEnabled {
		writer := influx.NewWriter(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket, logger)
		defer writer.Close()
		sinks = append(sinks, writer)
		logger.Info("influxdb sink enabled", "url", cfg.InfluxURL, "org", cfg.InfluxOrg, "bucket", cfg.InfluxBucket)
	}

	runner := pipeline.New(geocoder, source, sinks, cfg.PostalCode, cfg.DistanceMi, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("searching for monitors",
		"postal_code", cfg.PostalCode,
		"radius_mi", cfg.DistanceMi,
		"poll_interval", cfg.PollInterval,
	)

	if cfg.PollInterval == 0 {
		return runner.RunOnce(ctx)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, runner, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	pollErr := runner.Poll(ctx, cfg.PollInterval)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	return pollErr
}

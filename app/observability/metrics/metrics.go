package metrics

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	LoginAttemptsTotal     metric.Int64Counter
	SignRequestsTotal      metric.Int64Counter
	FallbacksTotal         metric.Int64Counter
	DbQueryDurationSeconds metric.Float64Histogram
	DbQueryErrorsTotal     metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// Init sets up the global meter provider with a Prometheus exporter and
// creates the application's instruments. Safe to call more than once.
func Init() (*AppMetrics, error) {
	var initErr error
	once.Do(func() {
		exporter, err := prometheus.New()
		if err != nil {
			initErr = fmt.Errorf("failed to create prometheus exporter: %w", err)
			return
		}
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
		otel.SetMeterProvider(mp)

		meter := otel.GetMeterProvider().Meter("pixs-onboarding-platform")
		m := &AppMetrics{}

		m.LoginAttemptsTotal, err = meter.Int64Counter(
			"login_attempts_total",
			metric.WithDescription("Total number of login attempts"),
			metric.WithUnit("{attempt}"),
		)
		if err != nil {
			initErr = err
			return
		}

		m.SignRequestsTotal, err = meter.Int64Counter(
			"sign_requests_total",
			metric.WithDescription("Total number of completed sign operations"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			initErr = err
			return
		}

		m.FallbacksTotal, err = meter.Int64Counter(
			"repository_fallbacks_total",
			metric.WithDescription("Total number of repository operations answered from mock fallback"),
			metric.WithUnit("{operation}"),
		)
		if err != nil {
			initErr = err
			return
		}

		m.DbQueryDurationSeconds, err = meter.Float64Histogram(
			"db_query_duration_seconds",
			metric.WithDescription("Duration of database queries in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			initErr = err
			return
		}

		m.DbQueryErrorsTotal, err = meter.Int64Counter(
			"db_query_errors_total",
			metric.WithDescription("Total number of database query errors"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			initErr = err
			return
		}

		appMetrics = m
	})
	if initErr != nil {
		return nil, initErr
	}
	return appMetrics, nil
}

// Serve exposes the Prometheus scrape endpoint on its own port. Blocks.
func Serve(port string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Info("Starting metrics server", slog.String("port", port))
	return http.ListenAndServe(":"+port, mux)
}

package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/poofware/cinema-api/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

const meterName = "cinema-api"

type AppMetrics struct {
	authLoginCounter    metric.Int64Counter
	authRegisterCounter metric.Int64Counter
	authLogoutCounter   metric.Int64Counter
}

var (
	metricsMu  sync.RWMutex
	appMetrics *AppMetrics
)

func InitMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	if !cfg.OTELMetricsEnabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		logger.Info("otel metrics disabled")
		return mp, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
	if cfg.OTELExporterOTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", cfg.OTELServiceName),
			attribute.String("deployment.environment", cfg.OTELEnvironment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create metric resource: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.OTELMetricsExportInterval))
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(mp)

	meter := mp.Meter(meterName)
	loginCounter, err := meter.Int64Counter("auth.login.attempts")
	if err != nil {
		return nil, err
	}
	registerCounter, err := meter.Int64Counter("auth.register.attempts")
	if err != nil {
		return nil, err
	}
	logoutCounter, err := meter.Int64Counter("auth.logout.attempts")
	if err != nil {
		return nil, err
	}

	metricsMu.Lock()
	appMetrics = &AppMetrics{
		authLoginCounter:    loginCounter,
		authRegisterCounter: registerCounter,
		authLogoutCounter:   logoutCounter,
	}
	metricsMu.Unlock()

	logger.Info("otel metrics initialized", "endpoint", cfg.OTELExporterOTLPEndpoint)
	return mp, nil
}

func RecordAuthLogin(status string) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.authLoginCounter.Add(context.Background(), 1, metric.WithAttributes(attribute.String("status", status)))
}

func RecordAuthRegister(status string) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.authRegisterCounter.Add(context.Background(), 1, metric.WithAttributes(attribute.String("status", status)))
}

func RecordAuthLogout(status string) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.authLogoutCounter.Add(context.Background(), 1, metric.WithAttributes(attribute.String("status", status)))
}

var (
	tokenValidationOnce    sync.Once
	tokenValidationCounter metric.Int64Counter
)

// RecordAccessTokenValidation tracks the outcome of the authentication gate
// for each request carrying (or missing) a bearer token.
func RecordAccessTokenValidation(ctx context.Context, result, source string) {
	tokenValidationOnce.Do(func() {
		counter, err := otel.Meter(meterName).Int64Counter("auth.token.validations")
		if err == nil {
			tokenValidationCounter = counter
		}
	})
	if tokenValidationCounter == nil {
		return
	}
	tokenValidationCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("result", result),
		attribute.String("source", source),
	))
}

var (
	blacklistOnce    sync.Once
	blacklistCounter metric.Int64Counter
)

func RecordBlacklistEvent(ctx context.Context, event string) {
	blacklistOnce.Do(func() {
		counter, err := otel.Meter(meterName).Int64Counter("auth.blacklist.events")
		if err == nil {
			blacklistCounter = counter
		}
	})
	if blacklistCounter == nil {
		return
	}
	blacklistCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("event", event)))
}

var (
	repoOpOnce    sync.Once
	repoOpCounter metric.Int64Counter
)

func RecordRepositoryOperation(ctx context.Context, entity, operation, outcome string) {
	repoOpOnce.Do(func() {
		counter, err := otel.Meter(meterName).Int64Counter("repository.operations")
		if err == nil {
			repoOpCounter = counter
		}
	})
	if repoOpCounter == nil {
		return
	}
	repoOpCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go-session-auth-service/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

type AppMetrics struct {
	authRegisterCounter    metric.Int64Counter
	authLoginCounter       metric.Int64Counter
	authLogoutCounter      metric.Int64Counter
	tokenValidationCounter metric.Int64Counter
	adminGateCounter       metric.Int64Counter
	adminUserCounter       metric.Int64Counter
	repositoryOpCounter    metric.Int64Counter
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

	meter := mp.Meter("go-session-auth-service")
	m := &AppMetrics{}
	counters := []struct {
		name string
		dst  *metric.Int64Counter
	}{
		{"auth.register.attempts", &m.authRegisterCounter},
		{"auth.login.attempts", &m.authLoginCounter},
		{"auth.logout.attempts", &m.authLogoutCounter},
		{"auth.token.validations", &m.tokenValidationCounter},
		{"auth.admin_gate.decisions", &m.adminGateCounter},
		{"admin.user.mutations", &m.adminUserCounter},
		{"repository.operations", &m.repositoryOpCounter},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name)
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}

	metricsMu.Lock()
	appMetrics = m
	metricsMu.Unlock()

	logger.Info("otel metrics initialized", "endpoint", cfg.OTELExporterOTLPEndpoint)
	return mp, nil
}

func current() *AppMetrics {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return appMetrics
}

func RecordAuthRegister(status string) {
	if m := current(); m != nil {
		m.authRegisterCounter.Add(context.Background(), 1, metric.WithAttributes(attribute.String("status", status)))
	}
}

func RecordAuthLogin(status string) {
	if m := current(); m != nil {
		m.authLoginCounter.Add(context.Background(), 1, metric.WithAttributes(attribute.String("status", status)))
	}
}

func RecordAuthLogout(status string) {
	if m := current(); m != nil {
		m.authLogoutCounter.Add(context.Background(), 1, metric.WithAttributes(attribute.String("status", status)))
	}
}

// RecordTokenValidation labels every pipeline run with its internal
// outcome. The label is diagnostic detail that never reaches a client.
func RecordTokenValidation(ctx context.Context, outcome string) {
	if m := current(); m != nil {
		m.tokenValidationCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

func RecordAdminGate(ctx context.Context, decision string) {
	if m := current(); m != nil {
		m.adminGateCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("decision", decision)))
	}
}

func RecordAdminUserMutation(action string) {
	if m := current(); m != nil {
		m.adminUserCounter.Add(context.Background(), 1, metric.WithAttributes(attribute.String("action", action)))
	}
}

func RecordRepositoryOperation(ctx context.Context, entity, operation, outcome string) {
	if m := current(); m != nil {
		m.repositoryOpCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("entity", entity),
			attribute.String("operation", operation),
			attribute.String("outcome", outcome),
		))
	}
}

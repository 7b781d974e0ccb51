package observability

import (
	"context"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/logger"
)

type OtelConfig struct {
	ServiceName string
	Environment string
	Version     string
}

// traceSettings is the env-derived half of the tracing setup, read once.
type traceSettings struct {
	enabled  bool
	endpoint string
	insecure bool
	headers  map[string]string
	ratio    float64
}

func settingsFromEnv() traceSettings {
	s := traceSettings{
		enabled:  envFlag("OTEL_ENABLED"),
		endpoint: strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
		insecure: envFlag("OTEL_EXPORTER_OTLP_INSECURE"),
		ratio:    0.1,
	}
	if raw := strings.TrimSpace(os.Getenv("OTEL_SAMPLER_RATIO")); raw != "" {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			s.ratio = min(max(f, 0), 1)
		}
	}
	for _, pair := range strings.Split(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"), ",") {
		key, val, ok := strings.Cut(pair, "=")
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)
		if ok && key != "" && val != "" {
			if s.headers == nil {
				s.headers = map[string]string{}
			}
			s.headers[key] = val
		}
	}
	return s
}

func envFlag(key string) bool {
	switch strings.TrimSpace(strings.ToLower(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

var (
	initOnce sync.Once
	stopFn   func(context.Context) error
)

// InitOTel installs the global tracer provider when OTEL_ENABLED is set and
// returns its shutdown func, nil otherwise. Spans ship over OTLP/HTTP when
// an endpoint is configured; without one they pretty-print to stdout so
// unlock and access decisions can still be traced locally.
func InitOTel(ctx context.Context, log *logger.Logger, cfg OtelConfig) func(context.Context) error {
	initOnce.Do(func() {
		set := settingsFromEnv()
		if !set.enabled {
			return
		}
		name := strings.TrimSpace(cfg.ServiceName)
		if name == "" {
			name = "talent-market"
		}

		res, err := resource.New(ctx, resource.WithAttributes(
			semconv.ServiceNameKey.String(name),
			semconv.ServiceVersionKey.String(strings.TrimSpace(cfg.Version)),
			attribute.String("deployment.environment", strings.TrimSpace(cfg.Environment)),
		))
		if err != nil {
			log.Warn("Otel resource init failed, continuing without attributes", "error", err)
		}

		opts := []sdktrace.TracerProviderOption{
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(set.ratio))),
			sdktrace.WithResource(res),
		}
		if exporter, expErr := newExporter(ctx, set); expErr != nil {
			log.Warn("Otel exporter init failed, spans will not leave the process", "error", expErr)
		} else {
			opts = append(opts, sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)))
		}

		tp := sdktrace.NewTracerProvider(opts...)
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
		stopFn = tp.Shutdown
		log.Info("Tracing initialized", "service", name, "endpoint", set.endpoint, "sample_ratio", set.ratio)
	})
	return stopFn
}

func newExporter(ctx context.Context, set traceSettings) (sdktrace.SpanExporter, error) {
	if set.endpoint == "" {
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(set.endpoint)}
	if set.insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if set.headers != nil {
		opts = append(opts, otlptracehttp.WithHeaders(set.headers))
	}
	return otlptracehttp.New(ctx, opts...)
}

package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

type Observability struct {
	Tracer oteltrace.Tracer
	Meter  metric.Meter

	traceProvider      *sdktrace.TracerProvider
	VibeCounter        metric.Int64Counter
	GenerationDuration metric.Int64Histogram
	FallbackCounter    metric.Int64Counter
	RedactionCounter   metric.Int64Counter
	SecurityRejects    metric.Int64Counter
	RateLimitBlocked   metric.Int64Counter
}

func SetupObservability(ctx context.Context, cfg ObservabilityConfig) (*Observability, error) {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "brain-api"
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build otel resource: %w", err)
	}
	sampler := sdktrace.TraceIDRatioBased(cfg.SampleRatio)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)
	if cfg.OTLPEndpoint != "" {
		exporter, exportErr := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		if exportErr != nil {
			return nil, fmt.Errorf("create otlp trace exporter: %w", exportErr)
		}
		tp = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sampler),
		)
	} else {
		slog.Info("otel trace exporter not configured; using local tracer provider")
	}
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	meter := otel.Meter(serviceName)
	tracer := otel.Tracer(serviceName)
	vibeCounter, _ := meter.Int64Counter("brain_vibe_total")
	generationDuration, _ := meter.Int64Histogram("brain_generation_duration_ms")
	fallbackCounter, _ := meter.Int64Counter("brain_fallback_total")
	redactionCounter, _ := meter.Int64Counter("brain_redaction_total")
	securityRejects, _ := meter.Int64Counter("brain_security_reject_total")
	rateLimitBlocked, _ := meter.Int64Counter("brain_rate_limit_block_total")
	return &Observability{
		Tracer:             tracer,
		Meter:              meter,
		traceProvider:      tp,
		VibeCounter:        vibeCounter,
		GenerationDuration: generationDuration,
		FallbackCounter:    fallbackCounter,
		RedactionCounter:   redactionCounter,
		SecurityRejects:    securityRejects,
		RateLimitBlocked:   rateLimitBlocked,
	}, nil
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.traceProvider == nil {
		return nil
	}
	return o.traceProvider.Shutdown(ctx)
}

func (o *Observability) MarkVibe(ctx context.Context, status string) {
	if o == nil {
		return
	}
	o.VibeCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
}

func (o *Observability) MarkGeneration(ctx context.Context, model string, durationMS int64) {
	if o == nil {
		return
	}
	o.GenerationDuration.Record(ctx, durationMS, metric.WithAttributes(
		attribute.String("model", model),
	))
}

func (o *Observability) MarkFallback(ctx context.Context, reason string) {
	if o == nil {
		return
	}
	o.FallbackCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (o *Observability) MarkRedactions(ctx context.Context, count int) {
	if o == nil || count <= 0 {
		return
	}
	o.RedactionCounter.Add(ctx, int64(count))
}

func (o *Observability) MarkSecurityReject(ctx context.Context, rule string) {
	if o == nil {
		return
	}
	o.SecurityRejects.Add(ctx, 1, metric.WithAttributes(attribute.String("rule", rule)))
}

func (o *Observability) MarkRateLimited(ctx context.Context, bucket string) {
	if o == nil {
		return
	}
	o.RateLimitBlocked.Add(ctx, 1, metric.WithAttributes(
		attribute.String("bucket", bucket),
	))
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

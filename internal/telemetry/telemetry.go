// Package telemetry configures OpenTelemetry tracing for the service.
package telemetry

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentation = "github.com/anyulbade/pg-gateway-facade/internal/telemetry"

// Init installs a tracer provider and the W3C propagators. With an empty
// endpoint spans are still created but not exported. The returned function
// flushes and stops the provider.
func Init(ctx context.Context, serviceName, version, endpoint string) (func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	}
	if endpoint != "" {
		exporter, err := otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(endpoint),
			otlptracehttp.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("create otlp exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info().Str("service", serviceName).Bool("exporting", endpoint != "").Msg("tracing initialized")
	return tp.Shutdown, nil
}

// TracingMiddleware starts a server span per request and exposes the trace ID
// in the X-Trace-ID response header.
func TracingMiddleware() gin.HandlerFunc {
	tracer := otel.Tracer(instrumentation)
	return func(c *gin.Context) {
		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx, span := tracer.Start(ctx, c.Request.Method+" "+route, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		if sc := span.SpanContext(); sc.IsValid() {
			c.Header("X-Trace-ID", sc.TraceID().String())
		}

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(
			semconv.HTTPMethodKey.String(c.Request.Method),
			semconv.HTTPRouteKey.String(route),
			semconv.HTTPStatusCodeKey.Int(status),
			attribute.String("http.client_ip", c.ClientIP()),
		)
		if status >= 500 {
			span.SetStatus(codes.Error, "server error")
		}
	}
}

package middleware

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/strataframe/strata/pkg/render"
)

// Default tracer name for Strata applications.
const defaultTracerName = "strata"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "strata").
	TracerName string

	// IncludeParams includes extracted route params in span attributes.
	// Params may contain user-identifying values; disabled by default.
	IncludeParams bool

	// Filter determines which requests to trace. Return true to trace,
	// false to skip. If nil, all requests are traced.
	Filter func(ctx *render.Context) bool

	// AttributeExtractor extracts custom attributes from the context,
	// called once per traced request.
	AttributeExtractor func(ctx *render.Context) []attribute.KeyValue

	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithIncludeParams enables route params as span attributes.
func WithIncludeParams(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeParams = include
	}
}

// WithFilter sets a filter function for requests.
func WithFilter(filter func(ctx *render.Context) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(ctx *render.Context) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName: defaultTracerName,
	}
}

// OpenTelemetry creates middleware that traces every rendered request.
//
// A server span is opened per render, named after the declared route
// pattern, carrying the request pathname, route type, and response status.
// Errors are recorded on the span and set its status.
//
// The tracer comes from the global OpenTelemetry tracer provider.
// Configure it in main() before starting the server:
//
//	tp := sdktrace.NewTracerProvider(
//	    sdktrace.WithBatcher(exporter),
//	)
//	otel.SetTracerProvider(tp)
//	app.Use(middleware.OpenTelemetry())
func OpenTelemetry(opts ...OTelOption) render.Middleware {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}
	config.tracer = otel.Tracer(config.TracerName)

	return func(ctx *render.Context, next render.NextFunc) (*render.Response, error) {
		if config.Filter != nil && !config.Filter(ctx) {
			return next()
		}

		route := routeLabel(ctx)
		attrs := []attribute.KeyValue{
			attribute.String("strata.pathname", ctx.Pathname),
			attribute.String("strata.route", route),
		}
		if ctx.Route != nil {
			attrs = append(attrs, attribute.String("strata.route_type", string(ctx.Route.Type)))
		}
		if ctx.Request != nil {
			attrs = append(attrs, attribute.String("http.method", ctx.Request.Method))
		}
		if config.IncludeParams {
			for name, value := range ctx.Params {
				attrs = append(attrs, attribute.String("strata.param."+name, value))
			}
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(ctx)...)
		}

		parent := context.Background()
		if ctx.Request != nil {
			parent = ctx.Request.Context()
		}
		spanCtx, span := config.tracer.Start(
			parent,
			fmt.Sprintf("render %s", route),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attrs...),
			trace.WithTimestamp(time.Now()),
		)
		defer span.End()

		// Downstream calls made by the page pick up the span through the
		// request context.
		if ctx.Request != nil {
			ctx.Request = ctx.Request.WithContext(spanCtx)
		}

		resp, err := next()

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return resp, err
		}
		span.SetStatus(codes.Ok, "")
		if resp != nil {
			span.SetAttributes(attribute.Int("http.status_code", resp.Status()))
		}
		return resp, nil
	}
}

package instrument

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/depot/pkg/store"
)

const defaultTracerName = "depot"

// TracingConfig configures the OpenTelemetry tracing plugin.
type TracingConfig struct {
	// TracerName is the name of the tracer (default: "depot").
	TracerName string

	// Provider supplies the tracer.
	// Default: the global provider from otel.GetTracerProvider.
	Provider trace.TracerProvider

	// Filter determines which actions are traced. If nil, all are.
	Filter func(ctx *store.ActionContext) bool

	// AttributeExtractor adds custom attributes to each span.
	AttributeExtractor func(ctx *store.ActionContext) []attribute.KeyValue
}

// TracingOption configures the OpenTelemetry tracing plugin.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(provider trace.TracerProvider) TracingOption {
	return func(c *TracingConfig) {
		c.Provider = provider
	}
}

// WithActionFilter sets a filter function for actions.
func WithActionFilter(filter func(ctx *store.ActionContext) bool) TracingOption {
	return func(c *TracingConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(ctx *store.ActionContext) []attribute.KeyValue) TracingOption {
	return func(c *TracingConfig) {
		c.AttributeExtractor = extractor
	}
}

// Tracing creates a plugin that records one span per action call, named
// "depot.action <store>.<action>". Failed, panicking and rejected actions
// set the span status to error.
func Tracing(opts ...TracingOption) store.Plugin {
	config := TracingConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	provider := config.Provider
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	tracer := provider.Tracer(config.TracerName)

	return func(ctx store.PluginContext) store.Extension {
		ctx.Store.OnAction(func(actx *store.ActionContext) {
			if config.Filter != nil && !config.Filter(actx) {
				return
			}

			attrs := []attribute.KeyValue{
				attribute.String("depot.store", actx.Store.ID()),
				attribute.String("depot.action", actx.Name),
				attribute.String("depot.action_id", actx.ID.String()),
				attribute.Int("depot.args", len(actx.Args)),
			}
			if config.AttributeExtractor != nil {
				attrs = append(attrs, config.AttributeExtractor(actx)...)
			}

			_, span := tracer.Start(
				context.Background(),
				spanName(actx),
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(attrs...),
			)

			actx.After(func(any) {
				span.SetStatus(codes.Ok, "")
				span.End()
			})
			actx.OnError(func(err error) {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				span.End()
			})
		})
		return store.Extension{}
	}
}

func spanName(ctx *store.ActionContext) string {
	return fmt.Sprintf("depot.action %s.%s", ctx.Store.ID(), ctx.Name)
}

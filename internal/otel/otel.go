// Package otel exports generation pipeline events as OpenTelemetry traces.
package otel

import (
	"context"
	"sync"

	eventbus "github.com/gqlcompose/gqlcompose/internal/eventbus"
	events "github.com/gqlcompose/gqlcompose/internal/events"
	runid "github.com/gqlcompose/gqlcompose/internal/runid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
)

// Setup configures OpenTelemetry and attaches eventbus subscribers.
// If endpoint is empty, no telemetry is configured.
func Setup(endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithInsecure()))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	sub := &subscriber{tracer: otel.Tracer("gqlcompose")}
	sub.register()

	return tp.Shutdown, nil
}

type subscriber struct {
	tracer       trace.Tracer
	runSpans     sync.Map // run id -> trace.Span
	scanSpans    sync.Map // run id -> trace.Span
	composeSpans sync.Map // composite name -> trace.Span
	renderSpans  sync.Map // file name -> trace.Span
}

func (s *subscriber) runParent(ctx context.Context) context.Context {
	rid, _ := runid.FromContext(ctx)
	if v, ok := s.runSpans.Load(rid); ok {
		return trace.ContextWithSpan(ctx, v.(trace.Span))
	}
	return ctx
}

func (s *subscriber) register() {
	eventbus.Subscribe(func(ctx context.Context, e events.RunStart) {
		rid, _ := runid.FromContext(ctx)
		_, span := s.tracer.Start(ctx, "gqlcompose.run")
		span.SetAttributes(
			attribute.String("gqlcompose.command", e.Command),
			attribute.String("gqlcompose.root", e.Root),
		)
		s.runSpans.Store(rid, span)
	})

	eventbus.Subscribe(func(ctx context.Context, e events.RunFinish) {
		rid, _ := runid.FromContext(ctx)
		v, ok := s.runSpans.LoadAndDelete(rid)
		if !ok {
			return
		}
		span := v.(trace.Span)
		if e.Err != nil {
			span.RecordError(e.Err)
		}
		span.End()
	})

	eventbus.Subscribe(func(ctx context.Context, e events.ScanStart) {
		rid, _ := runid.FromContext(ctx)
		_, span := s.tracer.Start(s.runParent(ctx), "gqlcompose.scan")
		span.SetAttributes(attribute.String("gqlcompose.root", e.Root))
		s.scanSpans.Store(rid, span)
	})

	eventbus.Subscribe(func(ctx context.Context, e events.ScanFinish) {
		rid, _ := runid.FromContext(ctx)
		v, ok := s.scanSpans.LoadAndDelete(rid)
		if !ok {
			return
		}
		span := v.(trace.Span)
		span.SetAttributes(
			attribute.Int("gqlcompose.packages", e.Packages),
			attribute.Int("gqlcompose.parts", e.Parts),
		)
		if e.Err != nil {
			span.RecordError(e.Err)
		}
		span.End()
	})

	eventbus.Subscribe(func(ctx context.Context, e events.ComposeStart) {
		_, span := s.tracer.Start(s.runParent(ctx), "gqlcompose.compose")
		span.SetAttributes(
			attribute.String("gqlcompose.composite", e.Composite),
			attribute.StringSlice("gqlcompose.parts", e.Parts),
		)
		s.composeSpans.Store(e.Composite, span)
	})

	eventbus.Subscribe(func(ctx context.Context, e events.ComposeFinish) {
		v, ok := s.composeSpans.LoadAndDelete(e.Composite)
		if !ok {
			return
		}
		span := v.(trace.Span)
		span.SetAttributes(
			attribute.Int("gqlcompose.resolvers", e.Resolvers),
			attribute.Int("gqlcompose.violations", e.Violations),
		)
		span.End()
	})

	eventbus.Subscribe(func(ctx context.Context, e events.RenderStart) {
		_, span := s.tracer.Start(s.runParent(ctx), "gqlcompose.render")
		span.SetAttributes(
			attribute.String("gqlcompose.composite", e.Composite),
			attribute.String("gqlcompose.file", e.File),
		)
		s.renderSpans.Store(e.File, span)
	})

	eventbus.Subscribe(func(ctx context.Context, e events.RenderFinish) {
		v, ok := s.renderSpans.LoadAndDelete(e.File)
		if !ok {
			return
		}
		span := v.(trace.Span)
		span.SetAttributes(attribute.Int("gqlcompose.bytes", e.Bytes))
		if e.Err != nil {
			span.RecordError(e.Err)
		}
		span.End()
	})
}

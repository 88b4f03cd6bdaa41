package otel

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
)

// Grading counters are low volume, a coarse export interval is enough
const metricInterval = 30 * time.Second

// SetupOTelSDK bootstraps traces, metrics and logs for the named service.
//
// Without OTLP the exporters print to stderr so command output on stdout stays parseable.
// If it does not return an error, make sure to call shutdown for proper cleanup.
func SetupOTelSDK(
	ctx context.Context,
	serviceName string,
	useOTLP bool,
) (func(context.Context) error, error) {
	var shutdownFuncs []func(context.Context) error

	// Each registered cleanup runs once, errors are joined
	shutdown := func(ctx context.Context) error {
		var er error
		for _, fn := range shutdownFuncs {
			er = errors.Join(er, fn(ctx))
		}
		shutdownFuncs = nil
		return er
	}

	handleErr := func(inErr error) error {
		return errors.Join(inErr, shutdown(ctx))
	}

	res, err := newResource(serviceName)
	if err != nil {
		return shutdown, handleErr(err)
	}

	otel.SetTextMapPropagator(newPropagator())

	var w io.Writer = os.Stderr

	tracerProvider, err := newTracerProvider(ctx, res, useOTLP, w)
	if err != nil {
		return shutdown, handleErr(err)
	}
	shutdownFuncs = append(shutdownFuncs, tracerProvider.Shutdown)
	otel.SetTracerProvider(tracerProvider)

	meterProvider, err := newMeterProvider(ctx, res, useOTLP, w)
	if err != nil {
		return shutdown, handleErr(err)
	}
	shutdownFuncs = append(shutdownFuncs, meterProvider.Shutdown)
	otel.SetMeterProvider(meterProvider)

	loggerProvider, err := newLoggerProvider(ctx, res, useOTLP, w)
	if err != nil {
		return shutdown, handleErr(err)
	}
	shutdownFuncs = append(shutdownFuncs, loggerProvider.Shutdown)
	global.SetLoggerProvider(loggerProvider)

	return shutdown, nil
}

func newResource(serviceName string) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{attribute.String("service.name", serviceName)}
	if host, err := os.Hostname(); err == nil {
		attrs = append(attrs, attribute.String("host.name", host))
	}

	return resource.Merge(resource.Default(), resource.NewSchemaless(attrs...))
}

func newTracerProvider(
	ctx context.Context,
	res *resource.Resource,
	useOTLP bool,
	w io.Writer,
) (*trace.TracerProvider, error) {
	var err error
	var exporter trace.SpanExporter

	if useOTLP {
		exporter, err = otlptracegrpc.New(ctx)
	} else {
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(w))
	}
	if err != nil {
		return nil, err
	}

	return trace.NewTracerProvider(
		trace.WithResource(res),
		trace.WithSampler(trace.ParentBased(trace.AlwaysSample())),
		trace.WithBatcher(exporter),
	), nil
}

func newMeterProvider(
	ctx context.Context,
	res *resource.Resource,
	useOTLP bool,
	w io.Writer,
) (*metric.MeterProvider, error) {
	var err error
	var exporter metric.Exporter

	if useOTLP {
		exporter, err = otlpmetricgrpc.New(ctx)
	} else {
		exporter, err = stdoutmetric.New(stdoutmetric.WithWriter(w))
	}
	if err != nil {
		return nil, err
	}

	return metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(metricInterval))),
	), nil
}

func newLoggerProvider(
	ctx context.Context,
	res *resource.Resource,
	useOTLP bool,
	w io.Writer,
) (*log.LoggerProvider, error) {
	var err error
	var exporter log.Exporter

	if useOTLP {
		exporter, err = otlploggrpc.New(ctx)
	} else {
		exporter, err = stdoutlog.New(stdoutlog.WithWriter(w))
	}
	if err != nil {
		return nil, err
	}

	return log.NewLoggerProvider(
		log.WithResource(res),
		log.WithProcessor(log.NewBatchProcessor(exporter)),
	), nil
}

func newPropagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
}

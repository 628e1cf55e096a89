// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package trace

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-arcade/epcentra/pkg/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	ProtocolGRPC = "grpc"
	ProtocolHTTP = "http"
)

// Conf 链路追踪配置，未启用时只在进程内生成 span
type Conf struct {
	Enabled        bool
	Endpoint       string // localhost:4317 或 localhost:4318
	Protocol       string // grpc | http
	ServiceName    string
	ServiceVersion string
	Insecure       bool
	Headers        map[string]string
	SampleRatio    float64
	BatchTimeout   int // seconds
	ExportTimeout  int // seconds
}

func (c *Conf) SetDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "epcentra"
	}
	if c.Protocol == "" {
		c.Protocol = ProtocolGRPC
	}
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4317"
		if c.Protocol == ProtocolHTTP {
			c.Endpoint = "localhost:4318"
		}
	}
	if c.SampleRatio <= 0 || c.SampleRatio > 1 {
		c.SampleRatio = 1
	}
	if c.BatchTimeout <= 0 {
		c.BatchTimeout = 5
	}
	if c.ExportTimeout <= 0 {
		c.ExportTimeout = 30
	}
}

// InitTracerProvider 安装全局 TracerProvider 与 W3C 传播器，返回的清理函数负责刷新未导出的 span
func InitTracerProvider(ctx context.Context, conf Conf) (*sdktrace.TracerProvider, func(), error) {
	conf.SetDefaults()
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	sampler := sdktrace.ParentBased(sdktrace.TraceIDRatioBased(conf.SampleRatio))
	if !conf.Enabled {
		tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sampler))
		otel.SetTracerProvider(tp)
		return tp, func() { _ = tp.Shutdown(context.Background()) }, nil
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceNameKey.String(conf.ServiceName),
		semconv.ServiceVersionKey.String(conf.ServiceVersion),
	))
	if err != nil {
		return nil, nil, fmt.Errorf("create trace resource failed: %w", err)
	}
	exporter, err := newExporter(ctx, conf)
	if err != nil {
		return nil, nil, fmt.Errorf("create trace exporter failed: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(time.Duration(conf.BatchTimeout)*time.Second),
			sdktrace.WithExportTimeout(time.Duration(conf.ExportTimeout)*time.Second),
		),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)
	otel.SetTracerProvider(tp)
	log.Infow("tracer provider initialized", "endpoint", conf.Endpoint, "protocol", conf.Protocol)

	cleanup := func() {
		timeout := time.Duration(conf.ExportTimeout)*time.Second + 5*time.Second
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			log.Warnw("shutdown tracer provider failed", "error", err)
		}
	}
	return tp, cleanup, nil
}

func newExporter(ctx context.Context, conf Conf) (sdktrace.SpanExporter, error) {
	switch conf.Protocol {
	case ProtocolGRPC:
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(conf.Endpoint),
			otlptracegrpc.WithTimeout(time.Duration(conf.ExportTimeout) * time.Second),
		}
		if conf.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		if len(conf.Headers) > 0 {
			opts = append(opts, otlptracegrpc.WithHeaders(conf.Headers))
		}
		return otlptrace.New(ctx, otlptracegrpc.NewClient(opts...))
	case ProtocolHTTP:
		opts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(conf.Endpoint),
			otlptracehttp.WithTimeout(time.Duration(conf.ExportTimeout) * time.Second),
		}
		if conf.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		if len(conf.Headers) > 0 {
			opts = append(opts, otlptracehttp.WithHeaders(conf.Headers))
		}
		return otlptrace.New(ctx, otlptracehttp.NewClient(opts...))
	default:
		return nil, fmt.Errorf("unsupported trace protocol %q", conf.Protocol)
	}
}

// GetTracer 获取全局 Tracer
func GetTracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

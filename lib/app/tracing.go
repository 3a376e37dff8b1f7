package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gfx.cafe/util/go/gotel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type TracingConfig struct {
	ServiceName      string `json:"service_name,omitempty"`
	ServiceNamespace string `json:"service_namespace,omitempty"`
	Endpoint         string `json:"endpoint,omitempty"`
	// SampleRate is never, always, a ratio in [0, 1] or a percentage.
	SampleRate string `json:"sample_rate,omitempty"`
}

func (T *TracingConfig) init(ctx context.Context) (gotel.ShutdownFunc, error) {
	name := T.ServiceName
	if name == "" {
		name = "protocolcontrol"
	}
	options := []gotel.Option{
		gotel.WithServiceName(name),
	}
	if T.ServiceNamespace != "" {
		options = append(options, gotel.WithServiceNamespace(T.ServiceNamespace))
	}
	if T.Endpoint != "" {
		options = append(options, gotel.WithEndpoint(T.Endpoint))
	}
	if T.SampleRate != "" {
		sampler, err := samplerOf(T.SampleRate)
		if err != nil {
			return nil, err
		}
		options = append(options, gotel.WithSampler(sampler))
	}
	return gotel.InitTracing(ctx, options...)
}

func samplerOf(rate string) (sdktrace.Sampler, error) {
	switch strings.ToLower(rate) {
	case "never", "none", "off":
		return sdktrace.NeverSample(), nil
	case "always", "all", "on":
		return sdktrace.AlwaysSample(), nil
	}

	val, err := strconv.ParseFloat(rate, 64)
	if err != nil {
		return nil, fmt.Errorf("unknown sample rate %q: %w", rate, err)
	}
	// above one is a percentage
	if val > 1 {
		val /= 100
	}
	if val < 0 || val > 1 {
		return nil, fmt.Errorf("sample rate must be between 0 and 1 or 0 and 100: %q", rate)
	}
	return sdktrace.TraceIDRatioBased(val), nil
}

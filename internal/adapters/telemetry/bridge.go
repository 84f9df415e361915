package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/twig/internal/core/ports"
)

// LogBridge implements sdktrace.SpanProcessor by reporting finished spans to a Logger
// at debug level, so --verbose shows where an install spends its time.
type LogBridge struct {
	logger ports.Logger
}

// NewLogBridge returns a new LogBridge.
func NewLogBridge(logger ports.Logger) *LogBridge {
	return &LogBridge{logger: logger}
}

// OnStart does nothing.
func (b *LogBridge) OnStart(_ context.Context, _ sdktrace.ReadWriteSpan) {}

// OnEnd is called when a span ends.
func (b *LogBridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if b.logger == nil || !s.SpanContext().IsValid() {
		return
	}

	msg := fmt.Sprintf("%s finished in %s", s.Name(), s.EndTime().Sub(s.StartTime()).Round(time.Millisecond))
	for _, attr := range s.Attributes() {
		if attr.Key == RunIDKey {
			continue
		}
		msg += fmt.Sprintf(" %s=%s", attr.Key, attr.Value.Emit())
	}
	if s.Status().Code == codes.Error {
		msg += " status=error"
	}

	b.logger.Debug(msg)
}

// ForceFlush does nothing.
func (b *LogBridge) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *LogBridge) Shutdown(_ context.Context) error {
	return nil
}

// NewProvider returns a TracerProvider reporting every span through bridge.
func NewProvider(bridge *LogBridge) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(bridge),
	)
}

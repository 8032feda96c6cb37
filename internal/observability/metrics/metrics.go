package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	invitationsSent       metric.Int64Counter
	invitationsResponded  metric.Int64Counter
	notificationsEmitted  metric.Int64Counter
	notificationsFailed   metric.Int64Counter
	rateLimitDenied       metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "holidaytable"
	}
	meter := provider.Meter(name)

	invitationsSent, err := meter.Int64Counter("holidaytable_invitations_sent_total")
	if err != nil {
		return nil, err
	}
	invitationsResponded, err := meter.Int64Counter("holidaytable_invitations_responded_total")
	if err != nil {
		return nil, err
	}
	notificationsEmitted, err := meter.Int64Counter("holidaytable_notifications_emitted_total")
	if err != nil {
		return nil, err
	}
	notificationsFailed, err := meter.Int64Counter("holidaytable_notifications_failed_total")
	if err != nil {
		return nil, err
	}
	rateLimitDenied, err := meter.Int64Counter("holidaytable_rate_limit_denied_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		invitationsSent:      invitationsSent,
		invitationsResponded: invitationsResponded,
		notificationsEmitted: notificationsEmitted,
		notificationsFailed:  notificationsFailed,
		rateLimitDenied:      rateLimitDenied,
	}, nil
}

// RecordInvitationSent increments invitation send counts.
func (m *Metrics) RecordInvitationSent(ctx context.Context, date string) {
	if m == nil {
		return
	}
	m.invitationsSent.Add(ctx, 1, metric.WithAttributes(attribute.String("date", strings.TrimSpace(date))))
}

// RecordInvitationResponded increments respond counts keyed by outcome.
func (m *Metrics) RecordInvitationResponded(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.invitationsResponded.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", strings.TrimSpace(outcome))))
}

// RecordNotificationEmitted increments dispatched notification counts.
func (m *Metrics) RecordNotificationEmitted(ctx context.Context, eventType string) {
	if m == nil {
		return
	}
	m.notificationsEmitted.Add(ctx, 1, metric.WithAttributes(attribute.String("event_type", strings.TrimSpace(eventType))))
}

// RecordNotificationFailed increments failed dispatch counts.
func (m *Metrics) RecordNotificationFailed(ctx context.Context, eventType string) {
	if m == nil {
		return
	}
	m.notificationsFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("event_type", strings.TrimSpace(eventType))))
}

// RecordRateLimitDenied increments rate limit deny counts.
func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(attribute.String("endpoint", strings.TrimSpace(endpoint))))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

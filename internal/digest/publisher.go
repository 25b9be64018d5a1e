package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rajasatyajit/bousai/config"
	"github.com/rajasatyajit/bousai/internal/logger"
	"github.com/rajasatyajit/bousai/internal/messaging"
	"github.com/rajasatyajit/bousai/internal/metrics"
	"github.com/rajasatyajit/bousai/internal/models"
	"github.com/rajasatyajit/bousai/internal/reminder"
)

// WeatherSource returns current conditions; failures come back as the sentinel snapshot
type WeatherSource interface {
	Current(ctx context.Context, lat, lon float64) models.Snapshot
}

// AlertSource returns the region's alert report; failures come back as an unavailable report
type AlertSource interface {
	Fetch(ctx context.Context) models.AlertReport
}

// Publisher gathers the day's digest and posts it to one channel
type Publisher struct {
	weather WeatherSource
	alerts  AlertSource
	sender  messaging.ChannelSender

	city     string
	lat, lon float64
	mention  string
	loc      *time.Location
	now      func() time.Time
}

// NewPublisher creates a publisher for the configured city and channel
func NewPublisher(cfg config.DigestConfig, wx WeatherSource, alerts AlertSource, sender messaging.ChannelSender) (*Publisher, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	return &Publisher{
		weather: wx,
		alerts:  alerts,
		sender:  sender,
		city:    cfg.City,
		lat:     cfg.Latitude,
		lon:     cfg.Longitude,
		mention: cfg.Mention,
		loc:     loc,
		now:     time.Now,
	}, nil
}

// Build gathers weather and alerts concurrently and assembles the digest for today
func (p *Publisher) Build(ctx context.Context) Digest {
	today := p.now().In(p.loc)

	var snap models.Snapshot
	var report models.AlertReport

	// Neither source returns an error, so the group only joins them.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap = p.weather.Current(gctx, p.lat, p.lon)
		return nil
	})
	g.Go(func() error {
		report = p.alerts.Fetch(gctx)
		return nil
	})
	_ = g.Wait()

	return Digest{
		City:      p.city,
		Date:      today,
		Weather:   snap,
		Alerts:    report,
		Checklist: reminder.Checklist(today),
		Mention:   p.mention,
	}
}

// Run publishes one digest
func (p *Publisher) Run(ctx context.Context) error {
	start := time.Now()
	runID := uuid.NewString()
	log := logger.With("run_id", runID, "platform", p.sender.Platform())
	ctx = logger.NewContext(ctx, log)

	log.Info("Digest run started", "city", p.city)

	d := p.Build(ctx)
	msg := Compose(d)

	if err := p.sender.Send(ctx, msg); err != nil {
		metrics.RecordDigestRun(p.sender.Platform(), "error", time.Since(start))
		log.Error("Digest send failed", "error", err)
		return fmt.Errorf("send digest: %w", err)
	}

	metrics.RecordDigestRun(p.sender.Platform(), "success", time.Since(start))
	log.Info("Digest run completed",
		"weather_ok", d.Weather.OK,
		"alerts", d.Alerts.Status.String(),
		"checklist", d.Checklist != "",
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

package alertfeed

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rajasatyajit/bousai/config"
	apperrors "github.com/rajasatyajit/bousai/internal/errors"
	"github.com/rajasatyajit/bousai/internal/logger"
	"github.com/rajasatyajit/bousai/internal/metrics"
	"github.com/rajasatyajit/bousai/internal/models"
)

// maxBodySize caps every feed and bulletin read
const maxBodySize = 2 << 20

// Fetcher looks up the active warnings for one region
type Fetcher struct {
	client  *http.Client
	feedURL string
	region  string
}

// NewFetcher creates a new alert feed fetcher
func NewFetcher(cfg config.AlertsConfig, timeout time.Duration) *Fetcher {
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		feedURL: cfg.FeedURL,
		region:  cfg.Region,
	}
}

// Fetch returns the current report. Failures at either stage are reported as
// an unavailable report, never as an error.
func (f *Fetcher) Fetch(ctx context.Context) models.AlertReport {
	start := time.Now()
	log := logger.WithContext(ctx)

	report, err := f.lookup(ctx)
	if err != nil {
		metrics.RecordUpstreamCall("alertfeed", "error", time.Since(start))
		log.Warn("Alert feed lookup failed", "region", f.region, "error", err)
		return models.UnavailableReport(f.region)
	}

	metrics.RecordUpstreamCall("alertfeed", "success", time.Since(start))
	log.Debug("Alert feed lookup complete",
		"region", f.region,
		"status", report.Status.String(),
		"areas", len(report.Areas),
	)
	return report
}

func (f *Fetcher) lookup(ctx context.Context) (models.AlertReport, error) {
	data, err := f.get(ctx, f.feedURL)
	if err != nil {
		return models.AlertReport{}, apperrors.UpstreamError{Service: "alertfeed", Stage: "feed", Err: err}
	}

	var feed Feed
	if err := xml.Unmarshal(data, &feed); err != nil {
		return models.AlertReport{}, apperrors.UpstreamError{Service: "alertfeed", Stage: "feed", Err: fmt.Errorf("parse feed: %w", err)}
	}

	entry, ok := feed.Match(f.region)
	if !ok {
		return models.AlertReport{Status: models.AlertsNone, Region: f.region}, nil
	}

	data, err = f.get(ctx, entry.URL())
	if err != nil {
		return models.AlertReport{}, apperrors.UpstreamError{Service: "alertfeed", Stage: "bulletin", Err: err}
	}

	doc, err := ParseDocument(data)
	if err != nil {
		return models.AlertReport{}, apperrors.UpstreamError{Service: "alertfeed", Stage: "bulletin", Err: err}
	}

	if len(doc.Areas) == 0 {
		return models.AlertReport{Status: models.AlertsNone, Region: f.region}, nil
	}

	return models.AlertReport{
		Status: models.AlertsActive,
		Region: f.region,
		Areas:  doc.Areas,
		Issued: doc.Issued,
	}, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", "bousai-bot/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

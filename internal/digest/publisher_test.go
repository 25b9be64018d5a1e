package digest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rajasatyajit/bousai/config"
	"github.com/rajasatyajit/bousai/internal/models"
)

type fakeWeather struct {
	snap     models.Snapshot
	lat, lon float64
}

func (f *fakeWeather) Current(ctx context.Context, lat, lon float64) models.Snapshot {
	f.lat, f.lon = lat, lon
	return f.snap
}

type fakeAlerts struct{ report models.AlertReport }

func (f fakeAlerts) Fetch(ctx context.Context) models.AlertReport { return f.report }

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) Send(ctx context.Context, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeSender) Platform() string { return "fake" }

func testDigestConfig() config.DigestConfig {
	return config.DigestConfig{
		City:      "神戸市",
		Latitude:  34.6913,
		Longitude: 135.1830,
		Timezone:  "Asia/Tokyo",
		Mention:   "@everyone",
	}
}

func TestPublisher_Run(t *testing.T) {
	wx := &fakeWeather{snap: models.Snapshot{Condition: "Rain", Description: "小雨", Temp: 18, TempMax: 20, TempMin: 15, OK: true}}
	alerts := fakeAlerts{report: models.AlertReport{Status: models.AlertsNone, Region: "兵庫県"}}
	sender := &fakeSender{}

	p, err := NewPublisher(testDigestConfig(), wx, alerts, sender)
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	// 2025-03-31 16:00 UTC is already April 1st in Tokyo
	p.now = func() time.Time { return time.Date(2025, time.March, 31, 16, 0, 0, 0, time.UTC) }

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("Expected exactly one post, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if !strings.HasPrefix(msg, "📍 **神戸市の天気（04/01）**\n☀️ 天気：小雨\n") {
		t.Errorf("Unexpected header in %q", msg)
	}
	if strings.Contains(msg, "防災チェック") {
		t.Errorf("Did not expect checklist on April 1st: %q", msg)
	}
	if !strings.HasSuffix(msg, "\n@everyone") {
		t.Errorf("Expected mention at the end: %q", msg)
	}
	if wx.lat != 34.6913 || wx.lon != 135.1830 {
		t.Errorf("Expected fixed coordinates, got %v,%v", wx.lat, wx.lon)
	}
}

func TestPublisher_Build_MonthEndInZone(t *testing.T) {
	p, err := NewPublisher(testDigestConfig(), &fakeWeather{snap: models.UnknownSnapshot()}, fakeAlerts{report: models.UnavailableReport("兵庫県")}, &fakeSender{})
	if err != nil {
		t.Fatal(err)
	}
	// 2024-02-28 20:00 UTC is Feb 29th in Tokyo
	p.now = func() time.Time { return time.Date(2024, time.February, 28, 20, 0, 0, 0, time.UTC) }

	d := p.Build(context.Background())
	if d.Checklist == "" {
		t.Error("Expected checklist on the last day of February 2024")
	}
	if d.Date.Day() != 29 {
		t.Errorf("Expected zone-local day 29, got %d", d.Date.Day())
	}
	if d.Alerts.Status != models.AlertsUnavailable || d.Weather.OK {
		t.Errorf("Expected degraded inputs to pass through, got %+v %+v", d.Weather, d.Alerts)
	}
}

func TestPublisher_Run_SendError(t *testing.T) {
	sender := &fakeSender{err: errors.New("channel gone")}
	p, err := NewPublisher(testDigestConfig(), &fakeWeather{}, fakeAlerts{}, sender)
	if err != nil {
		t.Fatal(err)
	}

	if err := p.Run(context.Background()); err == nil {
		t.Error("Expected send error to be returned")
	}
}

func TestNewPublisher_BadTimezone(t *testing.T) {
	cfg := testDigestConfig()
	cfg.Timezone = "Nowhere/Special"
	if _, err := NewPublisher(cfg, &fakeWeather{}, fakeAlerts{}, &fakeSender{}); err == nil {
		t.Error("Expected error for unknown timezone")
	}
}

package alertfeed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rajasatyajit/bousai/config"
	"github.com/rajasatyajit/bousai/internal/models"
)

func atomFeed(entries ...string) string {
	body := `<?xml version="1.0" encoding="UTF-8"?><feed xmlns="http://www.w3.org/2005/Atom"><title>高頻度（随時）</title>`
	for _, e := range entries {
		body += e
	}
	return body + `</feed>`
}

func atomEntry(title, id string) string {
	return fmt.Sprintf(`<entry><title>%s</title><id>%s</id><link type="application/xml" href="%s"/></entry>`, title, id, id)
}

// newFeedServer serves the feed at /feed and the bulletin at /bulletin
func newFeedServer(t *testing.T, feed func(base string) string, bulletin string, bulletinStatus int) *httptest.Server {
	t.Helper()

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/feed":
			w.Header().Set("Content-Type", "application/atom+xml")
			_, _ = w.Write([]byte(feed(server.URL)))
		case "/bulletin":
			w.WriteHeader(bulletinStatus)
			_, _ = w.Write([]byte(bulletin))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestFetcher(feedURL string) *Fetcher {
	return NewFetcher(config.AlertsConfig{FeedURL: feedURL, Region: "兵庫県"}, time.Second)
}

func TestFetcher_Fetch(t *testing.T) {
	matching := func(base string) string {
		return atomFeed(
			atomEntry("気象特別警報・警報・注意報", base+"/other"),
			atomEntry("兵庫県の気象警報・注意報", base+"/bulletin"),
		)
	}

	tests := []struct {
		name     string
		feed     func(base string) string
		bulletin string
		status   int
		expected string
	}{
		{
			name:     "No matching entry",
			feed:     func(base string) string { return atomFeed(atomEntry("大阪府の気象警報・注意報", base+"/bulletin")) },
			status:   http.StatusOK,
			expected: "✅ 現在、兵庫県に警報・注意報はありません。",
		},
		{
			name:     "Matching entry with zero kinds",
			feed:     matching,
			bulletin: `<Report><Head><ReportDateTime>2025-01-01T12:00:00+09:00</ReportDateTime></Head><Body><WarningArea><Area><Name>神戸市</Name></Area></WarningArea></Body></Report>`,
			status:   http.StatusOK,
			expected: "✅ 現在、兵庫県に警報・注意報はありません。",
		},
		{
			name:     "One area with two kinds",
			feed:     matching,
			bulletin: warningAreaBulletin,
			status:   http.StatusOK,
			expected: "⚠️ **兵庫県 気象警報・注意報**\n【神戸市】大雨注意報・雷注意報\n警報・注意報 発表：2025/01/01 12:00",
		},
		{
			name:     "Bulletin HTTP error",
			feed:     matching,
			bulletin: "oops",
			status:   http.StatusInternalServerError,
			expected: "⚠️ 警報情報を取得できませんでした。",
		},
		{
			name:     "Bulletin not XML",
			feed:     matching,
			bulletin: "<Report><Body>",
			status:   http.StatusOK,
			expected: "⚠️ 警報情報を取得できませんでした。",
		},
		{
			name:     "Feed not XML",
			feed:     func(string) string { return "not xml at all" },
			status:   http.StatusOK,
			expected: "⚠️ 警報情報を取得できませんでした。",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newFeedServer(t, tt.feed, tt.bulletin, tt.status)

			report := newTestFetcher(server.URL + "/feed").Fetch(context.Background())
			if got := report.Format(); got != tt.expected {
				t.Errorf("Format() = %q, want %q", got, tt.expected)
			}
			if report.Region != "兵庫県" {
				t.Errorf("Expected region 兵庫県, got %s", report.Region)
			}
		})
	}
}

func TestFetcher_FeedUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	report := newTestFetcher(server.URL).Fetch(context.Background())
	if report.Status != models.AlertsUnavailable {
		t.Errorf("Expected unavailable, got %s", report.Status)
	}
}

func TestFetcher_Unreachable(t *testing.T) {
	report := newTestFetcher("http://127.0.0.1:1/feed").Fetch(context.Background())
	if report.Status != models.AlertsUnavailable {
		t.Errorf("Expected unavailable, got %s", report.Status)
	}
}

package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rajasatyajit/bousai/config"
	apperrors "github.com/rajasatyajit/bousai/internal/errors"
)

func TestLineClient_Push(t *testing.T) {
	var got linePush
	var auth, path string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode push body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := NewLineClient(config.LineConfig{AccessToken: "line-token", APIBase: server.URL, PushRate: 10}, time.Second)
	if err := c.Push(context.Background(), "U123", "こんにちは"); err != nil {
		t.Fatalf("Push: %v", err)
	}

	if path != "/v2/bot/message/push" {
		t.Errorf("Expected push path, got %s", path)
	}
	if auth != "Bearer line-token" {
		t.Errorf("Expected bearer token, got %q", auth)
	}
	if got.To != "U123" || len(got.Messages) != 1 || got.Messages[0].Type != "text" || got.Messages[0].Text != "こんにちは" {
		t.Errorf("Unexpected push body %+v", got)
	}
}

func TestLineClient_Push_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"The request body has 1 error(s)"}`))
	}))
	defer server.Close()

	c := NewLineClient(config.LineConfig{AccessToken: "t", APIBase: server.URL, PushRate: 10}, time.Second)
	err := c.Push(context.Background(), "U123", "hi")

	var upstream apperrors.UpstreamError
	if !errors.As(err, &upstream) || upstream.Service != "line" || upstream.Stage != "status" {
		t.Fatalf("Expected line status error, got %v", err)
	}
	if !errors.Is(err, apperrors.ErrUnavailable) {
		t.Errorf("Expected error to match ErrUnavailable")
	}
}

func TestLineClient_Push_RateLimited(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	// One token, refilled every 10s
	c := NewLineClient(config.LineConfig{AccessToken: "t", APIBase: server.URL, PushRate: 0.1}, time.Second)

	if err := c.Push(context.Background(), "U1", "first"); err != nil {
		t.Fatalf("first push: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := c.Push(ctx, "U1", "second"); err == nil {
		t.Error("Expected second push to be refused by the limiter")
	}
	if calls != 1 {
		t.Errorf("Expected 1 upstream call, got %d", calls)
	}
}

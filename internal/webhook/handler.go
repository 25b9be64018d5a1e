package webhook

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rajasatyajit/bousai/internal/logger"
	"github.com/rajasatyajit/bousai/internal/messaging"
	"github.com/rajasatyajit/bousai/internal/metrics"
	middlewares "github.com/rajasatyajit/bousai/internal/middleware"
	"github.com/rajasatyajit/bousai/internal/models"
	"github.com/rajasatyajit/bousai/internal/store"
	"github.com/rajasatyajit/bousai/internal/weather"
)

// Greeting is pushed to every user who adds the bot
const Greeting = "友だち追加ありがとうございます！📱\nあなたの地域の防災情報をお届けします。\nまず、位置情報を送信してください。"

// StatusText is served at the root path
const StatusText = "防災Bot稼働中"

// WeatherSource returns current conditions; failures come back as the sentinel snapshot
type WeatherSource interface {
	Current(ctx context.Context, lat, lon float64) models.Snapshot
}

// Handler handles the LINE webhook and the service endpoints
type Handler struct {
	store         store.Store
	pusher        messaging.Pusher
	weather       WeatherSource
	channelSecret string
	version       string
	buildTime     string
	gitCommit     string
	startTime     time.Time
}

// NewHandler creates a new webhook handler. An empty channelSecret disables
// signature verification.
func NewHandler(st store.Store, pusher messaging.Pusher, wx WeatherSource, channelSecret, version, buildTime, gitCommit string) *Handler {
	return &Handler{
		store:         st,
		pusher:        pusher,
		weather:       wx,
		channelSecret: channelSecret,
		version:       version,
		buildTime:     buildTime,
		gitCommit:     gitCommit,
		startTime:     time.Now(),
	}
}

// RegisterRoutes registers all routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.indexHandler)

	r.With(middlewares.LineSignature(h.channelSecret)).Post("/callback", h.callbackHandler)

	r.Get("/health", h.healthHandler)
	r.Get("/health/ready", h.readinessHandler)
	r.Get("/health/live", h.livenessHandler)
	r.Get("/version", h.versionHandler)
}

func (h *Handler) indexHandler(w http.ResponseWriter, r *http.Request) {
	h.writeText(w, http.StatusOK, StatusText)
}

// callbackHandler handles POST /callback
func (h *Handler) callbackHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.WithContext(ctx)

	events, err := DecodeEvents(r.Body)
	if err != nil {
		log.Warn("Rejected webhook payload", "error", err)
		metrics.RecordWebhookEvent("invalid", "rejected")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	for _, ev := range events {
		h.handleEvent(ctx, ev)
	}

	h.writeText(w, http.StatusOK, "OK")
}

// handleEvent applies one event. Registry and push failures are logged only.
func (h *Handler) handleEvent(ctx context.Context, ev Event) {
	log := logger.WithContext(ctx).With("event_type", ev.Type, "user_id", ev.UserID)

	switch {
	case ev.Type == EventFollow:
		if err := h.store.Put(ctx, ev.UserID, models.UserRecord{}); err != nil {
			log.Error("Failed to register user", "error", err)
		}
		h.push(ctx, log, ev, Greeting)

	case ev.IsLocation():
		if err := h.store.Put(ctx, ev.UserID, models.NewUserRecord(ev.Latitude, ev.Longitude)); err != nil {
			log.Error("Failed to store user location", "error", err)
		}
		snap := h.weather.Current(ctx, ev.Latitude, ev.Longitude)
		log.Info("Location received",
			"condition", snap.Condition,
			"advice", weather.Advise(snap).String(),
			"weather_ok", snap.OK,
		)
		h.push(ctx, log, ev, weather.LocationReply(snap))

	default:
		log.Info("Ignoring event", "message_type", ev.MessageType)
		metrics.RecordWebhookEvent(ev.Type, "ignored")
	}
}

func (h *Handler) push(ctx context.Context, log *slog.Logger, ev Event, text string) {
	if err := h.pusher.Push(ctx, ev.UserID, text); err != nil {
		log.Error("Failed to push message", "error", err)
		metrics.RecordWebhookEvent(ev.Type, "push_failed")
		return
	}
	metrics.RecordWebhookEvent(ev.Type, "handled")
}

// healthHandler provides basic health check
func (h *Handler) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"version":   h.version,
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// readinessHandler checks the user registry
func (h *Handler) readinessHandler(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"registry": "ok",
	}

	statusCode := http.StatusOK
	if err := h.store.Health(r.Context()); err != nil {
		checks["registry"] = "error: " + err.Error()
		statusCode = http.StatusServiceUnavailable
	}

	response := map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	}

	h.writeJSONResponse(w, statusCode, response)
}

// livenessHandler checks if the application is alive
func (h *Handler) livenessHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.startTime).String(),
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// versionHandler returns version information
func (h *Handler) versionHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"version":    h.version,
		"build_time": h.buildTime,
		"git_commit": h.gitCommit,
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

func (h *Handler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func (h *Handler) writeText(w http.ResponseWriter, statusCode int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(text))
}

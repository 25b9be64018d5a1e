package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rajasatyajit/bousai/config"
	apperrors "github.com/rajasatyajit/bousai/internal/errors"
	"github.com/rajasatyajit/bousai/internal/logger"
	"github.com/rajasatyajit/bousai/internal/metrics"
	"github.com/rajasatyajit/bousai/internal/models"
)

const currentPath = "/data/2.5/weather"

// Client fetches current conditions from OpenWeatherMap
type Client struct {
	rest   *resty.Client
	base   string
	apiKey string
	lang   string
	units  string
}

// NewClient creates a weather client with a per-request timeout
func NewClient(cfg config.WeatherConfig, timeout time.Duration) *Client {
	rest := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "bousai-bot/1.0")

	return &Client{
		rest:   rest,
		base:   cfg.APIBase,
		apiKey: cfg.APIKey,
		lang:   cfg.Lang,
		units:  cfg.Units,
	}
}

type currentResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main *struct {
		Temp    float64 `json:"temp"`
		TempMin float64 `json:"temp_min"`
		TempMax float64 `json:"temp_max"`
	} `json:"main"`
}

// Current returns the conditions at the given point. Any failure yields the
// sentinel snapshot instead of an error.
func (c *Client) Current(ctx context.Context, lat, lon float64) models.Snapshot {
	start := time.Now()

	snap, err := c.fetch(ctx, lat, lon)
	if err != nil {
		metrics.RecordUpstreamCall("weather", "error", time.Since(start))
		logger.WithContext(ctx).Warn("Weather fetch failed",
			"lat", lat,
			"lon", lon,
			"error", err,
		)
		return models.UnknownSnapshot()
	}

	metrics.RecordUpstreamCall("weather", "success", time.Since(start))
	return snap
}

func (c *Client) fetch(ctx context.Context, lat, lon float64) (models.Snapshot, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat":   strconv.FormatFloat(lat, 'f', -1, 64),
			"lon":   strconv.FormatFloat(lon, 'f', -1, 64),
			"appid": c.apiKey,
			"lang":  c.lang,
			"units": c.units,
		}).
		Get(c.base + currentPath)
	if err != nil {
		return models.Snapshot{}, apperrors.UpstreamError{Service: "weather", Stage: "request", Err: err}
	}

	if resp.IsError() {
		return models.Snapshot{}, apperrors.UpstreamError{
			Service: "weather",
			Stage:   "status",
			Err:     apperrors.StatusError{Code: resp.StatusCode(), Status: resp.Status()},
		}
	}

	var body currentResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return models.Snapshot{}, apperrors.UpstreamError{Service: "weather", Stage: "decode", Err: err}
	}

	if len(body.Weather) == 0 || body.Main == nil {
		return models.Snapshot{}, apperrors.UpstreamError{
			Service: "weather",
			Stage:   "decode",
			Err:     fmt.Errorf("%w: missing weather or main block", apperrors.ErrInvalidInput),
		}
	}

	return models.Snapshot{
		Condition:   body.Weather[0].Main,
		Description: body.Weather[0].Description,
		Temp:        body.Main.Temp,
		TempMax:     body.Main.TempMax,
		TempMin:     body.Main.TempMin,
		OK:          true,
	}, nil
}

package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/rajasatyajit/bousai/config"
	apperrors "github.com/rajasatyajit/bousai/internal/errors"
	"github.com/rajasatyajit/bousai/internal/metrics"
)

const linePushPath = "/v2/bot/message/push"

// LineClient pushes text messages through the LINE Messaging API
type LineClient struct {
	rest    *resty.Client
	base    string
	limiter *rate.Limiter
}

type lineText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type linePush struct {
	To       string     `json:"to"`
	Messages []lineText `json:"messages"`
}

// NewLineClient creates a LINE push client limited to cfg.PushRate pushes per second
func NewLineClient(cfg config.LineConfig, timeout time.Duration) *LineClient {
	burst := int(cfg.PushRate)
	if burst < 1 {
		burst = 1
	}

	rest := resty.New().
		SetTimeout(timeout).
		SetAuthToken(cfg.AccessToken).
		SetHeader("Content-Type", "application/json")

	return &LineClient{
		rest:    rest,
		base:    cfg.APIBase,
		limiter: rate.NewLimiter(rate.Limit(cfg.PushRate), burst),
	}
}

// Push sends text to the user
func (c *LineClient) Push(ctx context.Context, to, text string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return apperrors.UpstreamError{Service: "line", Stage: "rate", Err: err}
	}

	start := time.Now()
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(linePush{To: to, Messages: []lineText{{Type: "text", Text: text}}}).
		Post(c.base + linePushPath)
	if err != nil {
		metrics.RecordUpstreamCall("line", "error", time.Since(start))
		return apperrors.UpstreamError{Service: "line", Stage: "request", Err: err}
	}

	if resp.IsError() {
		metrics.RecordUpstreamCall("line", "error", time.Since(start))
		return apperrors.UpstreamError{
			Service: "line",
			Stage:   "status",
			Err:     fmt.Errorf("%w: %s", apperrors.StatusError{Code: resp.StatusCode(), Status: resp.Status()}, resp.String()),
		}
	}

	metrics.RecordUpstreamCall("line", "success", time.Since(start))
	return nil
}

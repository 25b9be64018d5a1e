package messaging

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/rajasatyajit/bousai/config"
	apperrors "github.com/rajasatyajit/bousai/internal/errors"
	"github.com/rajasatyajit/bousai/internal/logger"
	"github.com/rajasatyajit/bousai/internal/metrics"
)

// DiscordClient posts to one Discord channel as a bot
type DiscordClient struct {
	rest      *resty.Client
	base      string
	channelID string
}

// NewDiscordClient creates a client for cfg.DiscordChannelID
func NewDiscordClient(cfg config.DigestConfig, timeout time.Duration) *DiscordClient {
	rest := resty.New().
		SetTimeout(timeout).
		SetHeader("Authorization", "Bot "+cfg.DiscordToken).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "DiscordBot (https://github.com/rajasatyajit/bousai, 1.0)")

	return &DiscordClient{
		rest:      rest,
		base:      cfg.DiscordAPIBase,
		channelID: cfg.DiscordChannelID,
	}
}

func (c *DiscordClient) Platform() string { return config.PlatformDiscord }

// Send creates a message in the channel. Text over the content limit is
// clipped so the post still goes out.
func (c *DiscordClient) Send(ctx context.Context, text string) error {
	if clipped := Clip(text, DiscordMaxContent); clipped != text {
		logger.WithContext(ctx).Warn("Discord message clipped", "limit", DiscordMaxContent)
		text = clipped
	}

	start := time.Now()
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(map[string]string{"content": text}).
		Post(fmt.Sprintf("%s/channels/%s/messages", c.base, url.PathEscape(c.channelID)))
	if err != nil {
		metrics.RecordUpstreamCall("discord", "error", time.Since(start))
		return apperrors.UpstreamError{Service: "discord", Stage: "request", Err: err}
	}

	if resp.IsError() {
		metrics.RecordUpstreamCall("discord", "error", time.Since(start))
		return apperrors.UpstreamError{
			Service: "discord",
			Stage:   "status",
			Err:     fmt.Errorf("%w: %s", apperrors.StatusError{Code: resp.StatusCode(), Status: resp.Status()}, resp.String()),
		}
	}

	metrics.RecordUpstreamCall("discord", "success", time.Since(start))
	return nil
}

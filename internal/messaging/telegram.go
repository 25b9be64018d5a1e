package messaging

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/rajasatyajit/bousai/config"
	apperrors "github.com/rajasatyajit/bousai/internal/errors"
	"github.com/rajasatyajit/bousai/internal/logger"
	"github.com/rajasatyajit/bousai/internal/metrics"
)

// TelegramClient posts to one Telegram channel through the Bot API
type TelegramClient struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramClient authorizes the bot. cfg.TelegramAPIBase overrides the
// Bot API host.
func NewTelegramClient(cfg config.DigestConfig, timeout time.Duration) (*TelegramClient, error) {
	endpoint := tgbotapi.APIEndpoint
	if cfg.TelegramAPIBase != "" {
		endpoint = cfg.TelegramAPIBase + "/bot%s/%s"
	}

	api, err := tgbotapi.NewBotAPIWithClient(cfg.TelegramToken, endpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	logger.Debug("Telegram bot authorized", "username", api.Self.UserName)

	return &TelegramClient{api: api, chatID: cfg.TelegramChannelID}, nil
}

func (c *TelegramClient) Platform() string { return config.PlatformTelegram }

// Send posts text to the channel
func (c *TelegramClient) Send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if clipped := Clip(text, TelegramMaxText); clipped != text {
		logger.WithContext(ctx).Warn("Telegram message clipped", "limit", TelegramMaxText)
		text = clipped
	}

	start := time.Now()
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.DisableWebPagePreview = true

	if _, err := c.api.Send(msg); err != nil {
		metrics.RecordUpstreamCall("telegram", "error", time.Since(start))
		return apperrors.UpstreamError{Service: "telegram", Stage: "send", Err: err}
	}

	metrics.RecordUpstreamCall("telegram", "success", time.Since(start))
	return nil
}

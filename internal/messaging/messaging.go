// Package messaging delivers text to chat platforms: LINE pushes to users,
// and digest posts to a Discord or Telegram channel.
package messaging

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rajasatyajit/bousai/config"
)

// Per-message length limits, counted in characters
const (
	DiscordMaxContent = 2000
	TelegramMaxText   = 4096
)

const clipMarker = "…"

// Clip shortens text to at most max characters. A cut is marked with an
// ellipsis in the last position.
func Clip(text string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max-1]) + clipMarker
}

// Pusher sends a text message to a single platform user
type Pusher interface {
	Push(ctx context.Context, to, text string) error
}

// ChannelSender posts a text message to a fixed channel
type ChannelSender interface {
	Send(ctx context.Context, text string) error
	Platform() string
}

// NewChannelSender builds the sender for the configured digest platform
func NewChannelSender(cfg config.DigestConfig, timeout time.Duration) (ChannelSender, error) {
	switch cfg.Platform {
	case config.PlatformDiscord:
		return NewDiscordClient(cfg, timeout), nil
	case config.PlatformTelegram:
		return NewTelegramClient(cfg, timeout)
	default:
		return nil, fmt.Errorf("unknown digest platform: %q", cfg.Platform)
	}
}

// WriterSender prints messages instead of posting them
type WriterSender struct {
	W io.Writer
}

func (s WriterSender) Send(ctx context.Context, text string) error {
	_, err := fmt.Fprintln(s.W, text)
	return err
}

func (s WriterSender) Platform() string { return "stdout" }

package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"swingTraderBot/internal/ports"
)

const apiBase = "https://api.telegram.org"

// Notifier implements the ports.Notifier interface against the Telegram bot API.
type Notifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   ports.Logger
}

// Config holds configuration for the Telegram notifier.
type Config struct {
	BotToken string
	ChatID   string
	BaseURL  string // override for tests; defaults to the Telegram API
	Logger   ports.Logger
}

// New creates a Telegram notifier.
func New(cfg Config) (*Notifier, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Telegram notifier")
	}
	if cfg.BotToken == "" || cfg.ChatID == "" {
		return nil, fmt.Errorf("telegram bot token and chat ID are required: %w", ports.ErrConfigurationError)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = apiBase
	}
	return &Notifier{
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		baseURL:  baseURL,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   cfg.Logger,
	}, nil
}

// Send delivers one formatted alert message. Failures are wrapped and
// returned for the caller to log; they should never stop a scan cycle.
func (n *Notifier) Send(ctx context.Context, message string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)

	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", message)
	form.Set("parse_mode", "Markdown")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ports.ErrNotificationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: telegram API status %d: %s", ports.ErrNotificationFailed, resp.StatusCode, string(body))
	}

	n.logger.Debug(ctx, "Telegram message delivered", map[string]interface{}{"chatID": n.chatID})
	return nil
}

var _ ports.Notifier = (*Notifier)(nil)

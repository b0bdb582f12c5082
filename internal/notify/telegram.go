package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rickgao/bistwatch/internal/api"
)

// DefaultTelegramURL is the Bot API base URL.
const DefaultTelegramURL = "https://api.telegram.org"

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// TelegramSink sends messages through the Telegram Bot API.
type TelegramSink struct {
	client *api.Client
	token  string
	logger *slog.Logger
}

// NewTelegramSink creates a sink for the bot identified by token.
// An empty baseURL uses DefaultTelegramURL.
func NewTelegramSink(baseURL, token string, timeout time.Duration, logger *slog.Logger) *TelegramSink {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultTelegramURL
	}
	opts := []api.ClientOption{
		api.WithLogger(logger),
		api.WithRetries(0, 0),
	}
	if timeout > 0 {
		opts = append(opts, api.WithTimeout(timeout))
	}
	return &TelegramSink{
		client: api.NewClient(baseURL, opts...),
		token:  token,
		logger: logger,
	}
}

// Send posts msg to every recipient. A failure for one recipient does not
// stop delivery to the others.
func (s *TelegramSink) Send(ctx context.Context, msg Message) error {
	path := "/bot" + s.token + "/sendMessage"

	var errs []error
	for _, chatID := range msg.Recipients {
		req := sendMessageRequest{
			ChatID:    chatID,
			Text:      msg.Text,
			ParseMode: "HTML",
		}
		var resp sendMessageResponse
		if err := s.client.PostJSON(ctx, path, req, &resp); err != nil {
			errs = append(errs, fmt.Errorf("telegram send to %s: %w", chatID, redact(err, s.token)))
			continue
		}
		if !resp.OK {
			errs = append(errs, fmt.Errorf("telegram send to %s: %s", chatID, resp.Description))
		}
	}
	return errors.Join(errs...)
}

// redact keeps the bot token out of logged errors; url.Error embeds the full URL.
func redact(err error, token string) error {
	if token == "" {
		return err
	}
	return &redactedError{err: err, token: token}
}

type redactedError struct {
	err   error
	token string
}

func (e *redactedError) Error() string {
	return strings.ReplaceAll(e.err.Error(), e.token, "<token>")
}

func (e *redactedError) Unwrap() error { return e.err }

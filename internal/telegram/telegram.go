package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pfrederiksen/termin-watch/internal/logger"
	"github.com/pfrederiksen/termin-watch/internal/notifier"
)

var apiBaseURL = "https://api.telegram.org/bot"

const (
	timeout = 10 * time.Second

	// Telegram allows about one message per second to the same chat
	sendInterval = time.Second
	sendBurst    = 3
)

// ErrNotConfigured is returned when the bot token or chat IDs are missing
var ErrNotConfigured = errors.New("telegram bot token or chat IDs not configured")

// Client represents a Telegram Bot API client
type Client struct {
	botToken   string
	chatIDs    []string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new Telegram client for one or more chats.
// Blank chat IDs are ignored.
func NewClient(botToken string, chatIDs []string) (*Client, error) {
	if botToken == "" {
		return nil, fmt.Errorf("%w: bot token is required", ErrNotConfigured)
	}

	ids := make([]string, 0, len(chatIDs))
	for _, id := range chatIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: at least one chat ID is required", ErrNotConfigured)
	}

	return &Client{
		botToken: botToken,
		chatIDs:  ids,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Every(sendInterval), sendBurst),
	}, nil
}

// ChatIDs returns the recipients of the client
func (c *Client) ChatIDs() []string {
	return append([]string(nil), c.chatIDs...)
}

// Notify implements notifier.Notifier
func (c *Client) Notify(ctx context.Context, msg notifier.Message) error {
	return c.SendMessage(ctx, msg.Text)
}

// SendMessage sends a text message to every configured chat. A failure
// for one chat is logged and the remaining chats are still tried.
func (c *Client) SendMessage(ctx context.Context, text string) error {
	if text == "" {
		return fmt.Errorf("message text is required")
	}

	var errs []error
	for _, chatID := range c.chatIDs {
		if err := c.limiter.Wait(ctx); err != nil {
			return errors.Join(append(errs, fmt.Errorf("waiting to send: %w", err))...)
		}

		if err := c.sendTo(ctx, chatID, text); err != nil {
			logger.Error("Failed to send Telegram message", logger.Fields{"chat_id": chatID}, err)
			errs = append(errs, fmt.Errorf("chat %s: %w", chatID, err))
			continue
		}

		logger.Info("Telegram message sent", logger.Fields{"chat_id": chatID})
	}

	return errors.Join(errs...)
}

// sendTo sends a single message to a single chat
func (c *Client) sendTo(ctx context.Context, chatID, text string) error {
	url := fmt.Sprintf("%s%s/sendMessage", apiBaseURL, c.botToken)

	payload := map[string]interface{}{
		"chat_id":                  chatID,
		"text":                     text,
		"parse_mode":               "Markdown",
		"disable_web_page_preview": true,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}

	if !result.OK {
		return fmt.Errorf("telegram API error: %s", result.Description)
	}

	return nil
}

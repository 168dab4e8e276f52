/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/HamedShams/board-pulse/internal/config"
	"github.com/rs/zerolog"
)

type Client struct {
	token string
	http  *http.Client
	log   zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
	return &Client{token: cfg.TelegramToken, http: &http.Client{Timeout: 10 * time.Second}, log: log}
}

func (c *Client) send(ctx context.Context, body map[string]any) error {
	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", c.token)
	b, _ := json.Marshal(body)
	req, _ := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil { return err }
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram sendMessage status=%d body=%s", resp.StatusCode, string(bodyBytes))
	}
	return nil
}

// SendMessagePlain sends without parse_mode so report text with underscores
// or brackets never trips Markdown parsing.
func (c *Client) SendMessagePlain(ctx context.Context, chatID int64, text string) error {
	if c.token == "" || chatID == 0 { return fmt.Errorf("telegram: missing token or chat id") }
	return c.send(ctx, map[string]any{"chat_id": chatID, "text": text, "disable_web_page_preview": true})
}

func (c *Client) ResolveUsername(ctx context.Context, username string) (int64, error) {
	if c.token == "" || username == "" { return 0, fmt.Errorf("telegram: missing token or username") }
	url := fmt.Sprintf("https://api.telegram.org/bot%s/getChat", c.token)
	b, _ := json.Marshal(map[string]any{"chat_id": username})
	req, _ := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil { return 0, err }
	defer resp.Body.Close()
	if resp.StatusCode >= 300 { return 0, fmt.Errorf("telegram getChat status=%d", resp.StatusCode) }
	var r struct {
		OK     bool `json:"ok"`
		Result struct {
			ID int64 `json:"id"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil { return 0, err }
	if !r.OK || r.Result.ID == 0 { return 0, fmt.Errorf("telegram: invalid getChat response") }
	return r.Result.ID, nil
}

// SetWebhook registers the webhook URL and secret with Telegram
func (c *Client) SetWebhook(ctx context.Context, webhookURL string, secretToken string) error {
	if c.token == "" || webhookURL == "" || secretToken == "" { return fmt.Errorf("telegram: missing token, url or secret") }
	url := fmt.Sprintf("https://api.telegram.org/bot%s/setWebhook", c.token)
	body := map[string]any{
		"url":                  webhookURL,
		"secret_token":         secretToken,
		"drop_pending_updates": true,
		"allowed_updates":      []string{"message"},
	}
	b, _ := json.Marshal(body)
	req, _ := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil { return err }
	defer resp.Body.Close()
	if resp.StatusCode >= 300 { return fmt.Errorf("telegram setWebhook status=%d", resp.StatusCode) }
	return nil
}

/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
	"context"
	"net/http"

	"github.com/HamedShams/board-pulse/internal/config"
	"github.com/HamedShams/board-pulse/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type service interface {
	RunDriftAudit(ctx context.Context) (*services.AuditReport, error)
	LastAudit() *services.AuditReport
	SendHelp(ctx context.Context, chatID int64) error
}

type Handlers struct {
	cfg config.Config
	log zerolog.Logger
	svc service
}

func NewHandlers(cfg config.Config, log zerolog.Logger, svc service) *Handlers {
	return &Handlers{cfg: cfg, log: log, svc: svc}
}

func (h *Handlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) LastAudit(c *gin.Context) {
	rep := h.svc.LastAudit()
	if rep == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no audit has run yet"})
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (h *Handlers) RunAudit(c *gin.Context) {
	// Run in background detached from the HTTP request to avoid context cancellation
	go func() { _, _ = h.svc.RunDriftAudit(context.Background()) }()
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

func (h *Handlers) TelegramWebhook(c *gin.Context) {
	headerSecret := c.GetHeader("X-Telegram-Bot-Api-Secret-Token")
	pathSecret := c.Param("secret")
	// Accept either header secret (preferred) or path secret
	if headerSecret != h.cfg.TelegramWebhookSecret && pathSecret != h.cfg.TelegramWebhookSecret {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	h.log.Info().Str("ip", c.ClientIP()).Str("ua", c.GetHeader("User-Agent")).Msg("telegram webhook received")

	var upd struct {
		Message *struct {
			Chat struct {
				ID int64 `json:"id"`
			} `json:"chat"`
			Text string `json:"text"`
		} `json:"message"`
	}
	if err := c.ShouldBindJSON(&upd); err == nil && upd.Message != nil {
		chatID := upd.Message.Chat.ID
		text := upd.Message.Text
		// accept only configured chats if provided
		allowed := len(h.cfg.TelegramChatIDs) == 0
		if !allowed {
			for _, id := range h.cfg.TelegramChatIDs {
				if id == chatID { allowed = true; break }
			}
		}
		if allowed {
			switch text {
			case "/audit":
				go func() { _, _ = h.svc.RunDriftAudit(context.Background()) }()
			case "/start", "/help":
				go func() { _ = h.svc.SendHelp(context.Background(), chatID) }()
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

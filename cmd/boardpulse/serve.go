/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	apphttp "github.com/HamedShams/board-pulse/internal/http"
	"github.com/HamedShams/board-pulse/internal/jobs"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the audit scheduler and HTTP admin surface",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(true)
			if err != nil { return err }

			router := apphttp.NewRouter(a.cfg, a.log, a.svc)

			// Register Telegram webhook only if PUBLIC_BASE_URL is HTTPS
			if a.tg != nil && a.cfg.TelegramWebhookSecret != "" && strings.HasPrefix(strings.ToLower(a.cfg.PublicBaseURL), "https://") {
				go func() {
					ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
					defer cancel()
					base := strings.TrimRight(a.cfg.PublicBaseURL, "/")
					webhookURL := base + "/telegram/webhook/" + a.cfg.TelegramWebhookSecret
					if err := a.tg.SetWebhook(ctx, webhookURL, a.cfg.TelegramWebhookSecret); err != nil {
						a.log.Error().Err(err).Str("url", webhookURL).Msg("telegram setWebhook failed")
					} else {
						a.log.Info().Str("url", webhookURL).Msg("telegram setWebhook ok")
					}
				}()
			}

			cron := jobs.NewCron(a.cfg, a.log, a.svc)
			cron.Start()
			defer cron.Stop()

			errCh := make(chan error, 1)
			go func() { errCh <- router.Run(a.cfg.HTTPAddr) }()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			select {
			case <-sigCh:
				a.log.Info().Msg("shutting down...")
			case err := <-errCh:
				if err != nil { a.log.Error().Err(err).Msg("http server error"); return err }
			}
			time.Sleep(500 * time.Millisecond)
			return nil
		},
	}
}

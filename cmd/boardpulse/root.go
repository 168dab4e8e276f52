/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
	"errors"

	"github.com/HamedShams/board-pulse/internal/adapters/github"
	"github.com/HamedShams/board-pulse/internal/adapters/telegram"
	"github.com/HamedShams/board-pulse/internal/config"
	"github.com/HamedShams/board-pulse/internal/logger"
	"github.com/HamedShams/board-pulse/internal/services"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	flagOwner   string
	flagRepo    string
	flagProject string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "boardpulse",
		Short:         "Keep issue-tracker state and project-board Status consistent",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&flagOwner, "owner", "", "repository owner (default BOARD_OWNER)")
	root.PersistentFlags().StringVar(&flagRepo, "repo", "", "repository name (default BOARD_REPO)")
	root.PersistentFlags().StringVar(&flagProject, "project", "", "project title override (default: repository name)")
	root.AddCommand(newStatusCmd(), newSetCmd(), newDriftCmd(), newMetricsCmd(), newFixCmd(), newServeCmd())
	return root
}

type app struct {
	cfg config.Config
	log zerolog.Logger
	svc *services.Service
	tg  *telegram.Client
}

// buildApp wires config, logger, transport and service. One-shot commands run
// without a notifier; only serve mode sends Telegram messages.
func buildApp(withNotifier bool) (*app, error) {
	cfg := config.Load()
	if flagOwner != "" { cfg.Owner = flagOwner }
	if flagRepo != "" { cfg.Repo = flagRepo }
	if flagProject != "" { cfg.ProjectName = flagProject }
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, errors.New("owner and repo are required (flags or BOARD_OWNER/BOARD_REPO)")
	}
	if cfg.GitHubToken == "" {
		return nil, errors.New("GITHUB_TOKEN is required")
	}
	log := logger.New(cfg)
	gh := github.NewClient(cfg, log)
	a := &app{cfg: cfg, log: log}
	var tg services.Notifier
	if withNotifier && cfg.TelegramToken != "" {
		a.tg = telegram.NewClient(cfg, log)
		tg = a.tg
	}
	a.svc = services.New(cfg, log, gh, tg)
	return a, nil
}

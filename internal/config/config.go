/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/HamedShams/board-pulse/internal/domain"
)

type Config struct {
	AppEnv   string
	TZ       string
	HTTPAddr string

	PublicBaseURL string

	GitHubAPIURL  string
	GitHubToken   string
	Owner         string
	Repo          string
	ProjectName   string // optional override; default convention is project title == repo name

	TerminalStatuses []string
	PreWorkStatuses  []string
	DoneStatus       string

	MetricsFieldsFile string
	Metrics           domain.MetricsConfig

	TelegramToken         string
	TelegramWebhookSecret string
	TelegramChatIDs       []int64
	TelegramChatUsernames []string

	AuditCron   string
	HTTPTimeout time.Duration
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" { return def }
	return v
}

func atoi(key string, def int) int {
	v := os.Getenv(key)
	if v == "" { return def }
	i, err := strconv.Atoi(v)
	if err != nil { return def }
	return i
}

func dur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" { return def }
	d, err := time.ParseDuration(v)
	if err != nil { return def }
	return d
}

func parseInt64s(csv string) []int64 {
	if csv == "" { return nil }
	parts := strings.Split(csv, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" { continue }
		n, err := strconv.ParseInt(p, 10, 64)
		if err == nil { out = append(out, n) }
	}
	return out
}

func parseStrings(csv string) []string {
	if csv == "" { return nil }
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" { continue }
		out = append(out, p)
	}
	return out
}

func Load() Config {
	cfg := Config{
		AppEnv:   getenv("APP_ENV", "dev"),
		TZ:       getenv("APP_TZ", "UTC"),
		HTTPAddr: getenv("HTTP_ADDR", ":8080"),

		PublicBaseURL: getenv("PUBLIC_BASE_URL", "http://localhost:8080"),

		GitHubAPIURL: getenv("GITHUB_API_URL", "https://api.github.com/graphql"),
		GitHubToken:  getenv("GITHUB_TOKEN", ""),
		Owner:        getenv("BOARD_OWNER", ""),
		Repo:         getenv("BOARD_REPO", ""),
		ProjectName:  getenv("BOARD_PROJECT", ""),

		TerminalStatuses: parseStrings(getenv("TERMINAL_STATUSES", "Done,Released")),
		PreWorkStatuses:  parseStrings(getenv("PREWORK_STATUSES", "Backlog,Icebox,Planning,Spec Review,Ready")),
		DoneStatus:       getenv("DONE_STATUS", "Done"),

		MetricsFieldsFile: getenv("METRICS_FIELDS_FILE", "config/metrics_fields.json"),

		TelegramToken:         getenv("TELEGRAM_BOT_TOKEN", ""),
		TelegramWebhookSecret: getenv("TELEGRAM_WEBHOOK_SECRET", "change-me"),
		TelegramChatIDs:       parseInt64s(getenv("TELEGRAM_CHAT_IDS", "")),
		TelegramChatUsernames: parseStrings(getenv("TELEGRAM_CHAT_USERNAMES", "")),

		AuditCron:   getenv("CRON_SPEC", "0 9 * * MON-FRI"),
		HTTPTimeout: dur("HTTP_TIMEOUT", 15*time.Second),
	}
	cfg.Metrics = domain.MetricsConfig{
		DateFields: []domain.StatusDateMapping{
			{Status: "Done", Field: "Completed At"},
			{Status: "Released", Field: "Completed At"},
			{Status: "In Progress", Field: "In Progress At"},
		},
		StaleThresholdDays: atoi("STALE_THRESHOLD_DAYS", 14),
	}

	// Fallback: if TELEGRAM_CHAT_IDS provided but non-numeric, treat as usernames
	if len(cfg.TelegramChatIDs) == 0 {
		raw := strings.TrimSpace(getenv("TELEGRAM_CHAT_IDS", ""))
		if raw != "" {
			for _, r := range raw {
				if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '@' || r == '_' {
					cfg.TelegramChatUsernames = parseStrings(raw)
					break
				}
			}
		}
	}

	// set global timezone if available
	if loc, err := time.LoadLocation(cfg.TZ); err == nil {
		time.Local = loc
	} else {
		log.Printf("warning: cannot load TZ %s: %v", cfg.TZ, err)
	}

	// Optional: load status->date-field mapping from file, overriding defaults
	if data, err := os.ReadFile(cfg.MetricsFieldsFile); err == nil {
		var arr []domain.StatusDateMapping
		if err := json.Unmarshal(data, &arr); err == nil && len(arr) > 0 {
			cfg.Metrics.DateFields = arr
		}
	}
	return cfg
}

package jobs

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/HamedShams/board-pulse/internal/config"
	"github.com/HamedShams/board-pulse/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type service interface {
	RunDriftAudit(ctx context.Context) (*services.AuditReport, error)
}

type Cron struct {
	cfg     config.Config
	log     zerolog.Logger
	svc     service
	c       *cron.Cron
	running atomic.Bool
}

func NewCron(cfg config.Config, log zerolog.Logger, svc service) *Cron {
	loc, _ := time.LoadLocation(cfg.TZ)
	c := cron.New(cron.WithLocation(loc), cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow)))
	cr := &Cron{cfg: cfg, log: log, svc: svc, c: c}
	_, _ = c.AddFunc(cfg.AuditCron, cr.audit)
	return cr
}

func (cr *Cron) Start() { cr.c.Start() }
func (cr *Cron) Stop()  { cr.c.Stop() }

func (cr *Cron) audit() {
	if !cr.running.CompareAndSwap(false, true) {
		cr.log.Info().Msg("cron: audit already running")
		return
	}
	defer cr.running.Store(false)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	cr.log.Info().Msg("cron: drift audit")
	if _, err := cr.svc.RunDriftAudit(ctx); err != nil { cr.log.Error().Err(err).Msg("cron: audit failed") }
}

package api

import (
	"github.com/DigitalProductschool/sir-certificates-sub001/internal/batches"
	"github.com/DigitalProductschool/sir-certificates-sub001/internal/config"
	"github.com/DigitalProductschool/sir-certificates-sub001/internal/infrastructure"
	"github.com/DigitalProductschool/sir-certificates-sub001/internal/notify"
	"github.com/DigitalProductschool/sir-certificates-sub001/internal/render"
)

// Runtime extends Infrastructure with API-scoped configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Render  render.Config
	Batches batches.Config
	Notify  notify.Config
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
		},
		Render:  cfg.Render,
		Batches: cfg.Batches,
		Notify:  cfg.Notify,
	}
}

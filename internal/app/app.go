package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"jarvis/internal/config"
	"jarvis/internal/decision"
	"jarvis/internal/engine"
	"jarvis/internal/gateway/notifier"
	"jarvis/internal/logger"
	"jarvis/internal/transport/http/statushttp"
)

// App owns the decision engine and the read API for one process.
type App struct {
	cfg      *config.Config
	engine   *engine.Engine
	recorder *decision.Recorder
	alerter  *notifier.Alerter
	http     *statushttp.Server
	Summary  *StartupSummary
}

// NewApp builds every collaborator and initialises the engine. It does not
// start any loop.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(ctx, cfg)
}

// Run blocks until ctx is cancelled or a component fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.engine == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.Summary != nil {
		a.Summary.Print()
	}
	group, ctx := errgroup.WithContext(ctx)
	if a.http != nil {
		group.Go(func() error {
			if err := a.http.Start(ctx); err != nil {
				return fmt.Errorf("status http server error: %w", err)
			}
			return nil
		})
	}
	group.Go(func() error {
		return a.engine.Run(ctx)
	})
	err := group.Wait()
	if a.recorder != nil {
		a.recorder.Wait()
	}
	if a.alerter != nil {
		a.alerter.Wait()
	}
	logger.Infof("jarvis stopped")
	return err
}

func (a *App) Engine() *engine.Engine {
	if a == nil {
		return nil
	}
	return a.engine
}

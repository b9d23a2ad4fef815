//go:build ebiten

package main

import (
	"context"
	"errors"

	"github.com/gogpu/ggame"
	ebitenbackend "github.com/gogpu/ggame/backend/ebiten"
)

// runWindow opens an ebiten window. The host calls the engine frame from its
// draw callback; input is collected by its update callback.
func runWindow(ctx context.Context, cfg ggame.Config) error {
	dev := ebitenbackend.New(cfg.Width, cfg.Height)
	defer dev.Destroy()
	host := ebitenbackend.NewHost(dev, cfg.Width, cfg.Height)

	g := &demo{width: cfg.Width, height: cfg.Height}
	eng, err := ggame.New[world, controls](g, cfg,
		ggame.WithDevice(dev),
		ggame.WithWindow(host),
		ggame.WithLoadingScreen(ggame.NewProgressBar()),
	)
	if err != nil {
		return err
	}
	defer eng.Close()

	err = host.Run(cfg.Title, func() error {
		if eng.State() == ggame.StateLoading {
			return eng.Load(ctx)
		}
		return eng.Frame(ctx)
	})
	if errors.Is(err, ggame.ErrTerminated) {
		return nil
	}
	return err
}

// Command ggdemo runs a small ggame scene.
//
// By default it renders a fixed number of frames headless with the software
// backend and writes the last one as PNG. Built with -tags ebiten and run
// with -window it opens a real window instead.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/gogpu/ggame"
	"github.com/gogpu/ggame/backend/software"
	"github.com/gogpu/ggame/clock"
	"github.com/gogpu/ggame/load"

	_ "github.com/gogpu/ggame/backend/wgpu"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file")
		backendArg = flag.String("backend", "", "backend name (overrides the config)")
		frames     = flag.Int("frames", 120, "frames to render headless")
		output     = flag.String("output", "demo.png", "PNG written after a headless software run")
		window     = flag.Bool("window", false, "open a window (needs -tags ebiten)")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		ggame.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg := ggame.DefaultConfig()
	cfg.Title = "ggdemo"
	cfg.Width, cfg.Height = 640, 360
	if *configPath != "" {
		var err error
		if cfg, err = ggame.LoadConfig(*configPath); err != nil {
			log.Fatal(err)
		}
	}
	if *backendArg != "" {
		cfg.Backend = *backendArg
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	if *window {
		err = runWindow(ctx, cfg)
	} else {
		err = runHeadless(ctx, cfg, *frames, *output)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// runHeadless renders frames on a manual clock advancing one update step per
// frame, so the output does not depend on machine speed.
func runHeadless(ctx context.Context, cfg ggame.Config, frames int, output string) error {
	if frames <= 0 {
		return fmt.Errorf("ggdemo: frames must be positive, got %d", frames)
	}
	src := &clock.Manual{}
	opts := []ggame.Option{ggame.WithClockSource(src)}

	var dev *software.Device
	if cfg.Backend == "" || cfg.Backend == "software" {
		dev = software.New(software.WithSize(cfg.Width, cfg.Height))
		opts = append(opts, ggame.WithDevice(dev))
		defer dev.Destroy()
	}

	interactive := term.IsTerminal(int(os.Stderr.Fd()))
	var bar *progressbar.ProgressBar
	if interactive {
		opts = append(opts, ggame.WithProgress(func(p load.Progress) {
			if bar == nil {
				bar = progressbar.Default(int64(max(p.Total, 1)), "loading")
			}
			bar.Describe(p.Stage())
			_ = bar.Set(p.Completed)
		}))
	}

	g := &demo{width: cfg.Width, height: cfg.Height}
	eng, err := ggame.New[world, controls](g, cfg, opts...)
	if err != nil {
		return err
	}
	if err := eng.Load(ctx); err != nil {
		return err
	}
	if bar != nil {
		_ = bar.Finish()
	}
	if interactive {
		bar = progressbar.Default(int64(frames), "rendering")
	}

	g.afterDraw = func(uint64) error {
		src.Advance(cfg.Step())
		if bar != nil {
			_ = bar.Add(1)
		}
		// The frame being drawn is the last one: it is still presented.
		if eng.Frames()+1 >= uint64(frames) {
			eng.RequestClose()
		}
		return nil
	}

	start := time.Now()
	if err := eng.Run(ctx); err != nil {
		return err
	}
	log.Printf("rendered %d frames on %s in %v", frames, eng.Device().Name(), time.Since(start).Round(time.Millisecond))

	if dev == nil {
		return nil
	}
	return writePNG(output, dev)
}

func writePNG(path string, dev *software.Device) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := png.Encode(f, dev.Snapshot()); err != nil {
		return fmt.Errorf("ggdemo: encode %s: %w", path, err)
	}
	log.Printf("last frame written to %s", path)
	return nil
}

var errNoWindow = errors.New("ggdemo: built without window support, rebuild with -tags ebiten")

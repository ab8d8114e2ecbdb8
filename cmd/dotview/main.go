// Command dotview shows animated activity tracks in a window.
//
// Activities are read from an import stream file (-input, "-" for stdin)
// or generated around the map center. Drag to pan, scroll to zoom, Space
// pauses and R resets. DOTVIEW_SURFACE=texture routes the layer's pixels
// through texture uploads instead of reading its image buffers.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/text/language"

	"github.com/gogpu/dotlayer"
	"github.com/gogpu/dotlayer/importer"
	"github.com/gogpu/dotlayer/metrics"
)

var background = color.RGBA{R: 30, G: 30, B: 36, A: 255}

func main() {
	var (
		envFile     = flag.String("env", ".env", "environment file")
		input       = flag.String("input", "", "activity stream (NDJSON), - for stdin")
		metricsAddr = flag.String("metrics-addr", "", "serve Prometheus metrics on this address")
		debug       = flag.Bool("debug", false, "show frame statistics and draw boxes")
	)
	flag.Parse()

	cfg, params, err := loadConfig(*envFile)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *input != "" {
		cfg.Input = *input
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}
	cfg.Debug = cfg.Debug || *debug

	level, _ := parseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	dotlayer.SetLogger(logger)

	if err := run(cfg, params, logger); err != nil {
		log.Fatal(err)
	}
}

func run(cfg Config, params dotlayer.Params, logger *slog.Logger) error {
	ctx := context.Background()
	frames := dotlayer.NewSignalFrames()
	opts := []dotlayer.Option{
		dotlayer.WithFrameSource(frames),
		dotlayer.WithTargetFPS(cfg.FPS),
	}
	if cfg.Continuous {
		opts = append(opts, dotlayer.WithContinuousRedraws())
	}
	if cfg.Debug {
		opts = append(opts, dotlayer.WithDebugOverlay(language.English), dotlayer.WithDebugBorders())
	}
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		opts = append(opts, dotlayer.WithMetrics(metrics.New(reg)))
		go serveMetrics(cfg.MetricsAddr, reg, logger)
	}

	layer, err := dotlayer.New(params, opts...)
	if err != nil {
		return err
	}
	if err := load(ctx, cfg, layer, logger); err != nil {
		return err
	}

	host := newMapHost(cfg, frames)
	if err := layer.Attach(ctx, host); err != nil {
		return err
	}
	defer func() {
		if err := layer.Detach(); err != nil {
			logger.Warn("detach", "err", err)
		}
	}()

	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle("dotview")
	ebiten.SetWindowResizable(true)
	ebiten.SetVsyncEnabled(true)
	return ebiten.RunGame(&game{ctx: ctx, host: host, layer: layer, frames: frames, logger: logger})
}

// load fills layer from the configured input, or with demo tracks.
func load(ctx context.Context, cfg Config, layer *dotlayer.Layer, logger *slog.Logger) error {
	var r io.Reader
	switch cfg.Input {
	case "":
		specs, err := demoSpecs(cfg.Lat, cfg.Lng, cfg.DemoTracks, time.Now().UnixNano())
		if err != nil {
			return err
		}
		for _, s := range specs {
			if err := layer.Add(s); err != nil {
				return err
			}
		}
		logger.Info("generated demo tracks", "count", len(specs))
		return nil
	case "-":
		r = os.Stdin
	default:
		f, err := os.Open(cfg.Input)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	sum, err := importer.Run(ctx, r, layer, importer.WithProgress(func(p importer.Progress) {
		if f := p.Fraction(); f >= 0 {
			logger.Info("importing", "imported", p.Imported, "progress", fmt.Sprintf("%.0f%%", 100*f))
		} else {
			logger.Info("importing", "imported", p.Imported)
		}
	}))
	if err != nil {
		return fmt.Errorf("import %s: %w", cfg.Input, err)
	}
	logger.Info("import finished", "added", sum.Added, "failed", sum.Failed)
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	logger.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server", "err", err)
	}
}

// game adapts the map host and layer to ebiten's game loop.
type game struct {
	ctx    context.Context
	host   *mapHost
	layer  *dotlayer.Layer
	frames *dotlayer.SignalFrames
	logger *slog.Logger

	resized bool
	title   string
}

func (g *game) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if g.layer.Paused() {
			g.layer.Animate()
		} else {
			g.layer.Pause()
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := g.layer.Reset(g.ctx); err != nil {
			g.logger.Warn("reset", "err", err)
		}
	}
	if g.resized {
		g.resized = false
		if ev := g.host.subscribed(); ev != nil {
			ev.Resize()
		}
	}
	g.host.handleInput()
	if t := g.host.title(); t != g.title {
		ebiten.SetWindowTitle(t)
		g.title = t
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	g.host.present(screen)
	g.frames.Signal(time.Now())
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.host.layout(outsideWidth, outsideHeight) {
		g.resized = true
	}
	return outsideWidth, outsideHeight
}

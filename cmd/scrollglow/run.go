package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"sync"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/scrollglow/audio"
	"github.com/lixenwraith/scrollglow/choreo"
	"github.com/lixenwraith/scrollglow/progress"
	"github.com/lixenwraith/scrollglow/terminal"
)

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Play the animation in the terminal, scroll with the wheel or j/k",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInteractive(cmd.Context())
		},
	}
	cmd.Flags().Bool("autoplay", false, "sweep progress automatically")
	cmd.Flags().Int("particles", 300, "particle count")
	cmd.Flags().Bool("audio", false, "chime on stage change")
	a.bindFlag(cmd, "scroll.autoplay", "autoplay")
	a.bindFlag(cmd, "engine.particles", "particles")
	a.bindFlag(cmd, "audio.enabled", "audio")
	return cmd
}

func (a *app) runInteractive(parent context.Context) (err error) {
	cfg := a.cfg

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	host, err := terminal.NewHost(screen)
	if err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	closeHost := sync.OnceFunc(host.Close)
	defer closeHost()

	// Restore the terminal before printing, a crash inside tcell mode is unreadable
	defer func() {
		if r := recover(); r != nil {
			closeHost()
			fmt.Fprintf(os.Stderr, "\nscrollglow crashed: %v\nStack Trace:\n%s\n", r, debug.Stack())
			a.log.Error("run crashed", zap.Any("panic", r))
			err = fmt.Errorf("crashed: %v", r)
		}
	}()

	vp := host.Viewport()
	track := progress.NewScrollTrack(cfg.Scroll.Pages)
	track.Resize(int(vp.Height / 2))
	ctl := terminal.NewController(track, progress.NewSweep(cfg.Scroll.Period, nil), cfg.Scroll.Step)
	ctl.SetAutoplay(cfg.Scroll.Autoplay)

	opts, err := cfg.SessionOptions()
	if err != nil {
		return err
	}
	opts.Canvas = host
	opts.Viewports = host
	opts.Viewport = vp
	opts.Progress = ctl.Progress
	opts.Logger = a.log

	sess, err := choreo.New(opts)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	defer sess.Dispose()

	if cfg.Audio.Enabled {
		player := audio.NewPlayer(cfg.Audio.Volume)
		if err := player.Initialize(); err != nil {
			// Non-fatal, the animation runs silent
			a.log.Warn("audio initialization failed", zap.Error(err))
		} else {
			defer player.Cleanup()
			sess.OnStageChange(chimeOnStage(player))
		}
	}

	meter := &fpsMeter{}
	stats := sess.Stats()
	stageLabel := stats.Labels.Handle(choreo.MetricStage)
	edges := stats.Gauges.Handle(choreo.MetricEdges)
	host.SetStatus(func() string {
		mode := "scroll"
		if ctl.Autoplay() {
			mode = "autoplay"
		}
		return fmt.Sprintf(" %-7s %3.0f%%  %3.0f fps  %4.0f links  %-8s  j/k scroll  a autoplay  q quit ",
			stageLabel.Get(), ctl.Progress()*100, meter.tick(time.Now()), edges.Get(), mode)
	})

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sess.Start(); err != nil {
		return err
	}
	a.log.Info("interactive session started", zap.String("session", sess.ID()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer stop()
		return host.Run(gctx, func(c terminal.Command) {
			if c == terminal.CmdResize {
				ctl.Resize(int(host.Viewport().Height / 2))
				return
			}
			ctl.Apply(c)
		})
	})
	g.Go(func() error {
		<-gctx.Done()
		sess.Dispose()
		return nil
	})

	err = g.Wait()
	a.log.Info("interactive session ended",
		zap.Uint64("rendered", sess.RenderedFrames()),
		zap.Uint64("skipped", sess.SkippedFrames()),
	)
	if errors.Is(err, terminal.ErrQuit) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// stagePlayer is the part of audio.Player the stage hook drives
type stagePlayer interface {
	PlayStage(index int)
}

// chimeOnStage pitches the chime by sequence position, so repeated kinds still climb
func chimeOnStage(p stagePlayer) choreo.StageChangeFunc {
	return func(c choreo.StageChange) {
		p.PlayStage(c.To)
	}
}

// fpsMeter reports presented frames per second, refreshed once a second
type fpsMeter struct {
	start  time.Time
	frames int
	fps    float64
}

func (m *fpsMeter) tick(now time.Time) float64 {
	if m.start.IsZero() {
		m.start = now
	}
	m.frames++
	if el := now.Sub(m.start); el >= time.Second {
		m.fps = float64(m.frames) / el.Seconds()
		m.start = now
		m.frames = 0
	}
	return m.fps
}

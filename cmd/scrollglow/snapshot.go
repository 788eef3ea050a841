package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lixenwraith/scrollglow/choreo"
	"github.com/lixenwraith/scrollglow/render"
)

func newSnapshotCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Render a headless progress ramp from 0 to 1 into numbered PNG frames",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.runSnapshot()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d frames to %s\n", n, a.cfg.Snapshot.Out)
			return nil
		},
	}
	cmd.Flags().Int("width", 1000, "logical width in pixels")
	cmd.Flags().Int("height", 600, "logical height in pixels")
	cmd.Flags().Int("frames", 60, "number of frames to write")
	cmd.Flags().String("out", "frames", "output directory")
	cmd.Flags().Float64("pixel-ratio", 1, "device pixel ratio of the backing store")
	a.bindFlag(cmd, "snapshot.width", "width")
	a.bindFlag(cmd, "snapshot.height", "height")
	a.bindFlag(cmd, "snapshot.frames", "frames")
	a.bindFlag(cmd, "snapshot.out", "out")
	a.bindFlag(cmd, "engine.pixel_ratio", "pixel-ratio")
	return cmd
}

// runSnapshot steps a session over an even progress ramp, settling between captures
func (a *app) runSnapshot() (int, error) {
	sc := a.cfg.Snapshot
	if sc.Width <= 0 || sc.Height <= 0 {
		return 0, fmt.Errorf("snapshot size %dx%d: must be positive", sc.Width, sc.Height)
	}
	if sc.Frames <= 0 {
		return 0, fmt.Errorf("snapshot frames %d: must be positive", sc.Frames)
	}
	if err := os.MkdirAll(sc.Out, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	opts, err := a.cfg.SessionOptions()
	if err != nil {
		return 0, err
	}
	fb := render.NewFramebuffer(0, 0, 1)
	p := 0.0
	opts.Canvas = fb
	opts.Viewport = choreo.Viewport{
		Width:      float64(sc.Width),
		Height:     float64(sc.Height),
		PixelRatio: a.cfg.Engine.PixelRatio,
	}
	opts.Progress = func() float64 { return p }
	opts.Logger = a.log

	sess, err := choreo.New(opts)
	if err != nil {
		return 0, fmt.Errorf("failed to create session: %w", err)
	}
	defer sess.Dispose()

	settle := max(sc.Settle, 1)
	for i := range sc.Frames {
		if sc.Frames > 1 {
			p = float64(i) / float64(sc.Frames-1)
		}
		for range settle - 1 {
			sess.Update(choreo.NominalFrame)
		}
		sess.Frame(choreo.NominalFrame)

		path := filepath.Join(sc.Out, fmt.Sprintf("frame_%04d.png", i))
		if err := writePNG(path, fb); err != nil {
			return i, err
		}
		a.log.Debug("frame written",
			zap.String("path", path),
			zap.Float64("progress", p),
			zap.String("stage", sess.ActiveStage().String()),
		)
	}

	a.log.Info("snapshot complete",
		zap.Int("frames", sc.Frames),
		zap.String("out", sc.Out),
		zap.Any("stats", sess.Stats().Values()),
	)
	return sc.Frames, nil
}

func writePNG(path string, fb *render.Framebuffer) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	if err := render.EncodePNG(w, fb); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return w.Flush()
}

package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/scrollglow/choreo"
	"github.com/lixenwraith/scrollglow/progress"
	"github.com/lixenwraith/scrollglow/render"
	"github.com/lixenwraith/scrollglow/stage"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SCROLLGLOW_LOGGER_LOG_FILE", filepath.Join(t.TempDir(), "test.log"))
	t.Setenv("SCROLLGLOW_ENGINE_PARTICLES", "48")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSnapshotWritesFrames(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	out, err := execute(t, "snapshot", "--width", "80", "--height", "48", "--frames", "3", "--out", dir, "--pixel-ratio", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 3 frames")

	for _, name := range []string{"frame_0000.png", "frame_0001.png", "frame_0002.png"} {
		f, err := os.Open(filepath.Join(dir, name))
		require.NoError(t, err, name)
		img, err := png.Decode(f)
		f.Close()
		require.NoError(t, err, name)
		assert.Equal(t, 160, img.Bounds().Dx(), "backing store scales by pixel ratio")
		assert.Equal(t, 96, img.Bounds().Dy())
	}
	_, err = os.Stat(filepath.Join(dir, "frame_0003.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestSnapshotRejectsBadSize(t *testing.T) {
	_, err := execute(t, "snapshot", "--width", "0", "--out", t.TempDir())
	assert.Error(t, err)
}

func TestConfigFileErrors(t *testing.T) {
	_, err := execute(t, "snapshot", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("engine:\n  fps: 0\n"), 0o644))
	_, err = execute(t, "snapshot", "--config", bad, "--out", t.TempDir())
	assert.ErrorContains(t, err, "engine.fps")
}

func TestFPSMeter(t *testing.T) {
	m := &fpsMeter{}
	now := time.Unix(100, 0)
	assert.Zero(t, m.tick(now))
	for i := 1; i < 30; i++ {
		m.tick(now.Add(time.Duration(i) * 33 * time.Millisecond))
	}
	got := m.tick(now.Add(time.Second))
	assert.InDelta(t, 31, got, 0.5)
}

type recordingPlayer struct {
	played []int
}

func (p *recordingPlayer) PlayStage(index int) {
	p.played = append(p.played, index)
}

func TestChimeFollowsSequencePosition(t *testing.T) {
	p := 0.0
	opts := choreo.DefaultOptions()
	opts.Canvas = render.NewFramebuffer(100, 60, 1)
	opts.Progress = progress.Port(func() float64 { return p })
	opts.Stages = []stage.Kind{stage.Grid, stage.Grid, stage.RadialConvergence}
	opts.Particles.Count = 24
	sess, err := choreo.New(opts)
	require.NoError(t, err)
	defer sess.Dispose()

	player := &recordingPlayer{}
	sess.OnStageChange(chimeOnStage(player))
	for _, v := range []float64{0.5, 0.9, 0} {
		p = v
		sess.Update(choreo.NominalFrame)
	}

	assert.Equal(t, []int{1, 2, 0}, player.played)
}

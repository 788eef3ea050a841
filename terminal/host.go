// Package terminal hosts the animation in a tcell screen using half-block cells
package terminal

import (
	"context"
	"errors"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/scrollglow/choreo"
	"github.com/lixenwraith/scrollglow/render"
)

// halfBlock draws the top pixel as foreground and the bottom pixel as background
const halfBlock = '▀'

// ErrQuit is returned by Run when the user asks to leave
var ErrQuit = errors.New("quit requested")

// Host is a render.Canvas, render.Resizer and choreo.ViewportSource over a tcell screen
// Each cell carries two vertical pixels, so the logical surface is cols x rows*2
type Host struct {
	screen tcell.Screen
	fb     *render.Framebuffer

	mu     sync.Mutex
	subs   map[int]func(choreo.Viewport)
	nextID int
	status func() string
	hud    tcell.Style
}

// NewHost initializes the screen, enables mouse and hides the cursor
func NewHost(screen tcell.Screen) (*Host, error) {
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse()
	screen.HideCursor()
	screen.SetStyle(tcell.StyleDefault)
	screen.Clear()

	h := &Host{
		screen: screen,
		fb:     render.NewFramebuffer(0, 0, 1),
		subs:   make(map[int]func(choreo.Viewport)),
		hud:    tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack),
	}
	vp := h.Viewport()
	h.fb.Resize(int(vp.Width), int(vp.Height), 1)
	return h, nil
}

// Close restores the terminal
func (h *Host) Close() {
	h.screen.Fini()
}

// Screen returns the wrapped screen
func (h *Host) Screen() tcell.Screen {
	return h.screen
}

// Viewport returns the pixel surface of the current screen size
func (h *Host) Viewport() choreo.Viewport {
	cols, rows := h.screen.Size()
	return choreo.Viewport{Width: float64(cols), Height: float64(rows * 2), PixelRatio: 1}
}

// SetStatus installs the HUD text source, it is called from Present
func (h *Host) SetStatus(fn func() string) {
	h.mu.Lock()
	h.status = fn
	h.mu.Unlock()
}

// Subscribe implements choreo.ViewportSource
func (h *Host) Subscribe(fn func(choreo.Viewport)) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

func (h *Host) notify(vp choreo.Viewport) {
	h.mu.Lock()
	fns := make([]func(choreo.Viewport), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(vp)
	}
}

// Resize implements render.Resizer, the pixel ratio is fixed at 1 cell pixel
func (h *Host) Resize(width, height int, _ float64) {
	h.fb.Resize(width, height, 1)
}

// Context implements render.Canvas
// The surface is unavailable while the screen reports no cells
func (h *Host) Context() (render.Context, bool) {
	if _, ok := h.fb.Context(); !ok {
		return nil, false
	}
	return frame{Framebuffer: h.fb, host: h}, true
}

// frame presents the framebuffer through the host
type frame struct {
	*render.Framebuffer
	host *Host
}

func (f frame) Present() error {
	f.host.present(f.Framebuffer)
	return nil
}

func cellColor(c render.RGB) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func (h *Host) present(fb *render.Framebuffer) {
	sw, sh := h.screen.Size()
	bw, bh := fb.BackingSize()
	cols := min(sw, bw)
	rows := min(sh, bh/2)

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			top := fb.At(x, y*2)
			bottom := fb.At(x, y*2+1)
			style := tcell.StyleDefault.Foreground(cellColor(top)).Background(cellColor(bottom))
			h.screen.SetContent(x, y, halfBlock, nil, style)
		}
	}

	h.mu.Lock()
	status := h.status
	h.mu.Unlock()
	if status != nil && sh > 0 {
		h.drawText(0, sh-1, status(), sw)
	}

	h.screen.Show()
}

func (h *Host) drawText(x, y int, text string, limit int) {
	for _, r := range text {
		if x >= limit {
			return
		}
		h.screen.SetContent(x, y, r, nil, h.hud)
		x++
	}
}

// HandleEvent decodes one event; resizes resync the screen and reach subscribers
func (h *Host) HandleEvent(ev tcell.Event) Command {
	cmd := Translate(ev)
	if cmd == CmdResize {
		h.screen.Sync()
		h.notify(h.Viewport())
	}
	return cmd
}

// Run polls events until ctx ends, the screen is finalized or the user quits
// Commands other than CmdNone are passed to handle on the polling goroutine
func (h *Host) Run(ctx context.Context, handle func(Command)) error {
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			_ = h.screen.PostEvent(tcell.NewEventInterrupt(nil))
		case <-done:
		}
	}()

	for {
		ev := h.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		cmd := h.HandleEvent(ev)
		switch cmd {
		case CmdNone:
			continue
		case CmdQuit:
			return ErrQuit
		}
		if handle != nil {
			handle(cmd)
		}
	}
}

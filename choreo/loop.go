package choreo

import (
	"sync"
	"sync/atomic"
	"time"
)

// Loop invokes a frame callback on a fixed period from one goroutine
// Frames run to completion before the next is scheduled; late ticks are dropped, not queued
type Loop struct {
	interval time.Duration
	now      func() time.Time
	frame    func(dt time.Duration)

	frames atomic.Uint64

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Bool
	stopped  atomic.Bool
}

// NewLoop creates a stopped loop
func NewLoop(interval time.Duration, now func() time.Time, frame func(dt time.Duration)) *Loop {
	if interval <= 0 {
		interval = NominalFrame
	}
	if now == nil {
		now = time.Now
	}
	return &Loop{
		interval: interval,
		now:      now,
		frame:    frame,
		stopChan: make(chan struct{}),
	}
}

// Start begins scheduling, a stopped loop cannot be restarted
func (l *Loop) Start() bool {
	if l.stopped.Load() {
		return false
	}
	if l.running.CompareAndSwap(false, true) {
		l.wg.Add(1)
		go l.run()
	}
	return true
}

// Stop cancels scheduling and waits for an in-flight frame to return
// It must not be called from the frame callback, use Cancel there
func (l *Loop) Stop() {
	l.Cancel()
	l.wg.Wait()
}

// Cancel stops scheduling without waiting, safe from inside the frame callback
func (l *Loop) Cancel() {
	l.stopOnce.Do(func() {
		l.stopped.Store(true)
		close(l.stopChan)
	})
}

// Running reports whether the frame goroutine is live
func (l *Loop) Running() bool {
	return l.running.Load()
}

// Frames returns the number of completed frame callbacks
func (l *Loop) Frames() uint64 {
	return l.frames.Load()
}

func (l *Loop) run() {
	defer l.wg.Done()
	defer l.running.Store(false)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	last := l.now()
	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
		}

		// Stop wins over a tick that fired concurrently
		select {
		case <-l.stopChan:
			return
		default:
		}

		t := l.now()
		dt := t.Sub(last)
		last = t

		l.frame(dt)
		l.frames.Add(1)
	}
}

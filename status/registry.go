// Package status is a small lock-free metrics registry shared by the frame loop and its readers
package status

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// Float is an atomic float64 stored as bits, zero value reads 0
type Float struct {
	bits atomic.Uint64
}

func (f *Float) Set(v float64) { f.bits.Store(math.Float64bits(v)) }
func (f *Float) Get() float64  { return math.Float64frombits(f.bits.Load()) }

// Text is an atomic string, zero value reads ""
type Text struct {
	ptr atomic.Pointer[string]
}

func (t *Text) Set(v string) { t.ptr.Store(&v) }

func (t *Text) Get() string {
	if p := t.ptr.Load(); p != nil {
		return *p
	}
	return ""
}

// Table maps names to metric cells of one type
// Handles are created on first lookup and stay valid, writers keep them and skip the map
type Table[T any] struct {
	mu    sync.RWMutex
	cells map[string]*T
}

func newTable[T any]() *Table[T] {
	return &Table[T]{cells: make(map[string]*T)}
}

// Handle returns the cell for name, creating it if absent
func (t *Table[T]) Handle(name string) *T {
	t.mu.RLock()
	c, ok := t.cells[name]
	t.mu.RUnlock()
	if ok {
		return c
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if c, ok := t.cells[name]; ok {
		return c
	}
	c = new(T)
	t.cells[name] = c
	return c
}

// Lookup returns the cell for name without creating it
func (t *Table[T]) Lookup(name string) (*T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.cells[name]
	return c, ok
}

// Each visits cells in name order
func (t *Table[T]) Each(fn func(name string, cell *T)) {
	t.mu.RLock()
	names := make([]string, 0, len(t.cells))
	for k := range t.cells {
		names = append(names, k)
	}
	t.mu.RUnlock()
	sort.Strings(names)

	for _, n := range names {
		c, _ := t.Lookup(n)
		fn(n, c)
	}
}

// Len returns the number of cells
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.cells)
}

// Registry groups counters, gauges and labels
type Registry struct {
	Counters *Table[atomic.Int64]
	Gauges   *Table[Float]
	Labels   *Table[Text]
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		Counters: newTable[atomic.Int64](),
		Gauges:   newTable[Float](),
		Labels:   newTable[Text](),
	}
}

// Len returns the metric count across all tables
func (r *Registry) Len() int {
	return r.Counters.Len() + r.Gauges.Len() + r.Labels.Len()
}

// Values flattens the registry into name/value pairs, used for logs and summaries
func (r *Registry) Values() map[string]any {
	out := make(map[string]any, r.Len())
	r.Counters.Each(func(n string, c *atomic.Int64) { out[n] = c.Load() })
	r.Gauges.Each(func(n string, g *Float) { out[n] = g.Get() })
	r.Labels.Each(func(n string, l *Text) { out[n] = l.Get() })
	return out
}

// String renders "name=value" pairs sorted by name
func (r *Registry) String() string {
	vals := r.Values()
	names := make([]string, 0, len(vals))
	for n := range vals {
		names = append(names, n)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, n := range names {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(n)
		b.WriteByte('=')
		switch v := vals[n].(type) {
		case float64:
			b.WriteString(strconv.FormatFloat(v, 'f', 3, 64))
		default:
			fmt.Fprint(&b, v)
		}
	}
	return b.String()
}

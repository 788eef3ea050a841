package particle

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPoolIdentity(t *testing.T) {
	pool, err := NewPool(Options{Count: 300, SignalEvery: 6, Clusters: 5, Seed: 9})
	require.NoError(t, err)
	require.Equal(t, 300, pool.Len())

	for i := 0; i < pool.Len(); i++ {
		p := pool.At(i)
		assert.Equal(t, i, p.Index)
		assert.Equal(t, i%5, p.Cluster)
		assert.Equal(t, i%6 == 0, p.Signal)
		assert.GreaterOrEqual(t, p.Phase, 0.0)
		assert.Less(t, p.Phase, 2*math.Pi)
	}
	assert.Equal(t, 50, pool.SignalCount())
}

func TestNewPoolDeterministic(t *testing.T) {
	opts := DefaultOptions()
	a, err := NewPool(opts)
	require.NoError(t, err)
	b, err := NewPool(opts)
	require.NoError(t, err)

	for i := 0; i < a.Len(); i++ {
		assert.Equal(t, a.At(i).Seed, b.At(i).Seed)
		assert.Equal(t, a.At(i).Phase, b.At(i).Phase)
	}
}

func TestNewPoolRejectsBadOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"Zero count", Options{Count: 0, Clusters: 5}},
		{"Negative count", Options{Count: -3, Clusters: 5}},
		{"Zero clusters", Options{Count: 10, Clusters: 0}},
		{"Negative signal interval", Options{Count: 10, Clusters: 2, SignalEvery: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPool(tt.opts)
			assert.Error(t, err)
		})
	}
}

func TestSignalDisabled(t *testing.T) {
	pool, err := NewPool(Options{Count: 20, Clusters: 3})
	require.NoError(t, err)
	assert.Zero(t, pool.SignalCount())
}

func TestMeta(t *testing.T) {
	pool, err := NewPool(Options{Count: 12, SignalEvery: 4, Clusters: 3, Seed: 1})
	require.NoError(t, err)

	m := pool.Meta(8)
	assert.Equal(t, 8, m.Index)
	assert.Equal(t, 12, m.Count)
	assert.Equal(t, 3, m.Clusters)
	assert.Equal(t, 2, m.Cluster)
	assert.True(t, m.Signal)
	assert.Equal(t, pool.At(8).Seed, m.Seed)
}

func TestSnapBlendsTargets(t *testing.T) {
	pool, err := NewPool(Options{Count: 2, Clusters: 1})
	require.NoError(t, err)

	pool.Each(func(p *Particle) {
		p.Target = Attrs{X: 0, Y: 10, Brightness: 0, Size: 1}
		p.Next = Attrs{X: 100, Y: 20, Brightness: 1, Size: 3}
	})
	pool.Snap(0.25)

	got := pool.At(1).Current
	assert.InDelta(t, 25, got.X, 1e-9)
	assert.InDelta(t, 12.5, got.Y, 1e-9)
	assert.InDelta(t, 0.25, got.Brightness, 1e-9)
	assert.InDelta(t, 1.5, got.Size, 1e-9)
}

package engine

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/subtractesizer/internal/bridge"
	"github.com/tphakala/subtractesizer/internal/param"
	"github.com/tphakala/subtractesizer/internal/ringbuf"
	"github.com/tphakala/subtractesizer/internal/store"
	"github.com/tphakala/subtractesizer/internal/testutil"
)

func newTestEngine(t *testing.T, cfg Config) (*Engine, *store.Store) {
	t.Helper()
	set := param.Default()
	br := bridge.New(set)
	st := store.New(set, br)
	e, err := New(cfg, set, br)
	require.NoError(t, err)
	return e, st
}

// =============================================================================
// Configuration
// =============================================================================

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero sample rate", func(c *Config) { c.SampleRate = 0 }, true},
		{"sample rate too high", func(c *Config) { c.SampleRate = maxSampleRate + 1 }, true},
		{"zero buffer", func(c *Config) { c.BufferSize = 0 }, true},
		{"buffer too large", func(c *Config) { c.BufferSize = maxBufferSize + 1 }, true},
		{"negative ramp", func(c *Config) { c.MinRamp = -time.Millisecond }, true},
		{"zero ramp", func(c *Config) { c.MinRamp = 0 }, false},
		{"cutoff at nyquist", func(c *Config) { c.CutoffHz = 24000 }, true},
		{"zero cutoff", func(c *Config) { c.CutoffHz = 0 }, true},
		{"NaN cutoff", func(c *Config) { c.CutoffHz = math.NaN() }, true},
		{"negative tap", func(c *Config) { c.TapCapacity = -1 }, true},
		{"no tap", func(c *Config) { c.TapCapacity = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateAudioConfig(t *testing.T) {
	tests := []struct {
		bufferSize, sampleRate int
		wantBuffer, wantRate   int
	}{
		{512, 48000, 512, 48000},
		{256, 44100, 256, 44100},
		{1024, 96000, 1024, 96000},
		{1000, 48000, fallbackBufferSize, 48000},
		{0, 48000, fallbackBufferSize, 48000},
		{-64, 48000, fallbackBufferSize, 48000},
		{512, 22050, 512, rate44k1},
		{512, 192000, 512, rate44k1},
		{1 << 20, 12345, fallbackBufferSize, rate44k1},
	}

	for _, tt := range tests {
		bs, sr := ValidateAudioConfig(tt.bufferSize, tt.sampleRate)
		assert.Equal(t, tt.wantBuffer, bs, "buffer size for %d", tt.bufferSize)
		assert.Equal(t, tt.wantRate, sr, "sample rate for %d", tt.sampleRate)
	}
}

func TestConfig_Normalize(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.Normalize(), "defaults are already normal")

	cfg.BufferSize = 300
	cfg.SampleRate = 32000
	assert.True(t, cfg.Normalize())
	assert.Equal(t, fallbackBufferSize, cfg.BufferSize)
	assert.Equal(t, rate44k1, cfg.SampleRate)
	assert.NoError(t, cfg.Validate())
}

func TestNew_Errors(t *testing.T) {
	set := param.Default()
	br := bridge.New(set)

	_, err := New(DefaultConfig(), set, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	bad := DefaultConfig()
	bad.SampleRate = -1
	_, err = New(bad, set, br)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	volOnly, err := param.NewSet(set.MustLookup(param.Volume))
	require.NoError(t, err)
	_, err = New(DefaultConfig(), volOnly, bridge.New(volOnly))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, param.ErrUnknownParameter)
}

// =============================================================================
// Parameter pull and smoothing
// =============================================================================

// TestEngine_VolumeClampAndConverge covers the full path: an out-of-range
// control event is clamped by the store and the audio side reaches the
// clamped value exactly within one ramp length.
func TestEngine_VolumeClampAndConverge(t *testing.T) {
	e, st := newTestEngine(t, DefaultConfig())

	v, err := st.Set(param.Volume, 150)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, v, 0)

	got, err := st.Get(param.Volume)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, got, 0)

	// 10 ms at 48 kHz.
	buf := make([]float32, 480)
	e.Render(buf)
	assert.InDelta(t, 100.0, e.Pull(param.Volume), 0, "volume must land exactly on target")
}

func TestEngine_VolumeRampMonotonic(t *testing.T) {
	e, st := newTestEngine(t, DefaultConfig())
	_, err := st.Set(param.Volume, 80)
	require.NoError(t, err)

	var trace []float64
	buf := make([]float32, 16)
	for range 40 {
		e.Render(buf)
		trace = append(trace, e.Pull(param.Volume))
	}

	testutil.AssertMonotonic(t, trace)
	// Full range in 480 frames, so 16 frames move at most 16*100/480.
	testutil.AssertMaxStep(t, 0, trace, 16*100.0/480)
	assert.InDelta(t, 80.0, trace[len(trace)-1], 0)
}

func TestEngine_RetargetMidRamp(t *testing.T) {
	e, st := newTestEngine(t, DefaultConfig())
	_, err := st.Set(param.Volume, 100)
	require.NoError(t, err)

	buf := make([]float32, 240)
	e.Render(buf)
	mid := e.Pull(param.Volume)
	assert.InDelta(t, 50.0, mid, 1e-9)

	_, err = st.Set(param.Volume, 20)
	require.NoError(t, err)
	e.Render(buf)
	assert.InDelta(t, 20.0, e.Pull(param.Volume), 0)
}

func TestEngine_PullUnknown(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig())
	assert.Zero(t, e.Pull(param.Count))
	assert.Zero(t, e.Pull(-1))
}

func TestEngine_QFactorRetunes(t *testing.T) {
	e, st := newTestEngine(t, DefaultConfig())

	// The declared default is out of range and starts clamped at the top.
	assert.InDelta(t, 1000.0, e.Pull(param.QFactor), 0)
	assert.InDelta(t, 1000.0, e.TunedQ(), 0)

	_, err := st.Set(param.QFactor, 200)
	require.NoError(t, err)

	buf := make([]float32, 512)
	e.Render(buf)
	assert.InDelta(t, 200.0, e.Pull(param.QFactor), 0)
	assert.InDelta(t, 200.0, e.TunedQ(), 0)
}

// =============================================================================
// Rendering
// =============================================================================

func TestEngine_SilentAtZeroVolume(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig())

	buf := make([]float32, 1024)
	for i := range buf {
		buf[i] = 1
	}
	e.Render(buf)
	for i, s := range buf {
		require.InDelta(t, 0, s, 0, "sample %d", i)
	}
}

// TestEngine_VolumeOffsetRange checks that gain follows the position within
// the declared range, so a shifted range renders the same as the default.
func TestEngine_VolumeOffsetRange(t *testing.T) {
	decls := param.Declarations()
	decls[param.Volume].Min = 50
	decls[param.Volume].Max = 150
	decls[param.Volume].Default = 50
	set, err := param.NewSet(decls...)
	require.NoError(t, err)
	br := bridge.New(set)
	shifted := store.New(set, br)
	e, err := New(DefaultConfig(), set, br)
	require.NoError(t, err)

	buf := make([]float32, 512)
	e.Render(buf)
	for i, s := range buf {
		require.InDelta(t, 0, s, 0, "sample %d at range minimum", i)
	}

	ref, st := newTestEngine(t, DefaultConfig())
	refBuf := make([]float32, 512)
	ref.Render(refBuf)

	_, err = shifted.Set(param.Volume, 150)
	require.NoError(t, err)
	_, err = st.Set(param.Volume, 100)
	require.NoError(t, err)

	for range 4 {
		e.Render(buf)
		ref.Render(refBuf)
		require.InDeltaSlice(t, refBuf, buf, 1e-5)
		testutil.AssertAllInRange(t, buf, -1, 1)
	}
	assert.Greater(t, testutil.RMS(buf), 0.0)
}

func TestEngine_RejectedRetuneKeepsTuning(t *testing.T) {
	e, st := newTestEngine(t, DefaultConfig())
	_, err := st.Set(param.Volume, 100)
	require.NoError(t, err)
	buf := make([]float32, 512)
	e.Render(buf)

	tuned := e.Coefficients()
	e.SetCutoff(0)
	_, err = st.Set(param.QFactor, 300)
	require.NoError(t, err)
	e.Render(buf)

	assert.Positive(t, e.RetuneFailures())
	assert.Equal(t, tuned, e.Coefficients())
	assert.InDelta(t, 1000.0, e.TunedQ(), 0)
	testutil.AssertNoNaNOrInf(t, buf)
}

func TestEngine_OutputBounded(t *testing.T) {
	e, st := newTestEngine(t, DefaultConfig())
	_, err := st.Set(param.Volume, 100)
	require.NoError(t, err)
	_, err = st.Set(param.QFactor, 0)
	require.NoError(t, err)

	buf := make([]float32, 4096)
	for range 8 {
		e.Render(buf)
		testutil.AssertNoNaNOrInf(t, buf)
		testutil.AssertAllInRange(t, buf, -1, 1)
	}
	assert.Greater(t, testutil.RMS(buf), 0.0, "full volume must be audible")
}

func TestEngine_Deterministic(t *testing.T) {
	a, sa := newTestEngine(t, DefaultConfig())
	b, sb := newTestEngine(t, DefaultConfig())
	for _, st := range []*store.Store{sa, sb} {
		_, err := st.Set(param.Volume, 70)
		require.NoError(t, err)
	}

	bufA := make([]float32, 2000)
	bufB := make([]float32, 2000)
	a.Render(bufA)
	b.Render(bufB)
	assert.Equal(t, bufA, bufB)
}

func TestEngine_BlockSplitting(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BufferSize = 64
	e, st := newTestEngine(t, cfg)
	_, err := st.Set(param.Volume, 100)
	require.NoError(t, err)

	buf := make([]float32, 1000)
	e.Render(buf)
	assert.Equal(t, uint64(1000), e.Frames())
	assert.InDelta(t, 100.0, e.Pull(param.Volume), 0)
}

func TestEngine_RenderInterleaved(t *testing.T) {
	e, st := newTestEngine(t, DefaultConfig())
	_, err := st.Set(param.Volume, 100)
	require.NoError(t, err)

	const channels = 2
	buf := make([]float32, 1001) // one trailing sample that is not a full frame
	buf[1000] = 5
	e.RenderInterleaved(buf, channels)

	for i := 0; i < 1000; i += channels {
		assert.Equal(t, buf[i], buf[i+1], "frame %d channels differ", i/channels)
	}
	assert.Zero(t, buf[1000])
	assert.Equal(t, uint64(500), e.Frames())
}

func TestEngine_RenderBuffer(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig())

	ok := &audio.Float32Buffer{
		Format: &audio.Format{NumChannels: 2, SampleRate: 48000},
		Data:   make([]float32, 256),
	}
	require.NoError(t, e.RenderBuffer(ok))
	assert.Equal(t, uint64(128), e.Frames())

	tests := []struct {
		name string
		buf  *audio.Float32Buffer
	}{
		{"nil buffer", nil},
		{"nil format", &audio.Float32Buffer{Data: make([]float32, 8)}},
		{"rate mismatch", &audio.Float32Buffer{
			Format: &audio.Format{NumChannels: 1, SampleRate: 44100},
			Data:   make([]float32, 8),
		}},
		{"no channels", &audio.Float32Buffer{
			Format: &audio.Format{NumChannels: 0, SampleRate: 48000},
			Data:   make([]float32, 8),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.RenderBuffer(tt.buf)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}
}

func TestEngine_Tap(t *testing.T) {
	e, st := newTestEngine(t, DefaultConfig())
	_, err := st.Set(param.Volume, 100)
	require.NoError(t, err)

	buf := make([]float32, 300)
	e.Render(buf)

	tap := e.Tap()
	require.NotNil(t, tap)
	assert.Equal(t, 300, tap.Available())

	got := make([]float32, 300)
	assert.Equal(t, 300, tap.Read(got))
	assert.Equal(t, buf, got)
}

func TestEngine_TapOverflowDoesNotBlock(t *testing.T) {
	set := param.Default()
	br := bridge.New(set)
	ring := ringbuf.New(64)
	e, err := New(DefaultConfig(), set, br, WithTap(ring))
	require.NoError(t, err)

	buf := make([]float32, 512)
	e.Render(buf)
	assert.Same(t, ring, e.Tap())
	assert.Equal(t, 64, ring.Available())
	assert.Equal(t, uint64(512-64), ring.Dropped())
}

func TestEngine_NoTap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TapCapacity = 0
	e, _ := newTestEngine(t, cfg)
	assert.Nil(t, e.Tap())
	e.Render(make([]float32, 64))
}

func TestEngine_RenderAllocatesNothing(t *testing.T) {
	e, st := newTestEngine(t, DefaultConfig())
	buf := make([]float32, 512)
	raw := 0

	allocs := testing.AllocsPerRun(200, func() {
		raw = (raw + 37) % 101
		_, _ = st.Set(param.Volume, raw)
		_, _ = st.Set(param.QFactor, raw*10)
		e.Render(buf)
		_ = e.Tap().Discard(len(buf))
	})
	// Store.Set runs on the control side, but it does not allocate either.
	assert.Zero(t, allocs)
}

func BenchmarkEngine_Render(b *testing.B) {
	set := param.Default()
	br := bridge.New(set)
	cfg := DefaultConfig()
	cfg.TapCapacity = 0
	e, err := New(cfg, set, br)
	if err != nil {
		b.Fatal(err)
	}
	br.Publish(param.Volume, 75)

	buf := make([]float32, cfg.BufferSize)
	b.SetBytes(int64(len(buf) * 4))
	b.ResetTimer()
	for b.Loop() {
		e.Render(buf)
	}
}

func BenchmarkEngine_RenderRamping(b *testing.B) {
	set := param.Default()
	br := bridge.New(set)
	cfg := DefaultConfig()
	cfg.TapCapacity = 0
	e, err := New(cfg, set, br)
	if err != nil {
		b.Fatal(err)
	}

	buf := make([]float32, cfg.BufferSize)
	target := 0.0
	b.ResetTimer()
	for b.Loop() {
		target = 100 - target
		br.Publish(param.Volume, target)
		br.Publish(param.QFactor, target*10)
		e.Render(buf)
	}
}

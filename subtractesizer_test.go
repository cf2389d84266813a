package subtractesizer

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/subtractesizer/internal/control"
	"github.com/tphakala/subtractesizer/internal/param"
	"github.com/tphakala/subtractesizer/internal/store"
	"github.com/tphakala/subtractesizer/internal/testutil"
)

func newTestSynth(t *testing.T) *Synth {
	t.Helper()
	s, err := New(DefaultConfig())
	require.NoError(t, err)
	return s
}

func TestNew_Defaults(t *testing.T) {
	s := newTestSynth(t)

	assert.Equal(t, 2, s.Params().Len())

	vol, err := s.Store().Get(param.Volume)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, vol, 0)

	q, err := s.Store().Get(param.QFactor)
	require.NoError(t, err)
	assert.InDelta(t, 1000.0, q, 0, "out-of-range default is clamped at init")

	assert.InDelta(t, 1000.0, s.Engine().Pull(param.QFactor), 0)
}

func TestNew_LogsClampedDefault(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	_, err := New(DefaultConfig(), WithLogger(logger))
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "param=Q-Factor")
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.SampleRate = 0
	_, err := New(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNew_NormalizeAudio(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.BufferSize = 1000
	cfg.Engine.SampleRate = 22050
	cfg.Engine.CutoffHz = 1000
	cfg.NormalizeAudio = true

	s, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, 2048, s.Config().Engine.BufferSize)
	assert.Equal(t, 44100, s.Config().Engine.SampleRate)
}

func TestNew_InvalidDeclarations(t *testing.T) {
	decls := param.Declarations()

	tests := []struct {
		name    string
		decls   []param.Parameter
		wantErr error
	}{
		{
			name:    "empty range",
			decls:   []param.Parameter{{ID: param.Volume, Name: "Volume", Min: 5, Max: 5}, decls[1]},
			wantErr: param.ErrInvalidDeclaration,
		},
		{
			name:    "sparse ids",
			decls:   []param.Parameter{decls[0], {ID: 7, Name: "Other", Min: 0, Max: 1}},
			wantErr: param.ErrUnknownParameter,
		},
		{
			name:    "missing Q-Factor",
			decls:   decls[:1],
			wantErr: param.ErrUnknownParameter,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.MIDIMappings = nil
			_, err := New(cfg, WithParameters(tt.decls...))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNew_InvalidMapping(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MIDIMappings = []control.CCMapping{{Channel: 16, Controller: 7, ID: param.Volume}}
	_, err := New(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, control.ErrInvalidMapping)
}

// TestSynth_OutOfRangeVolume walks the documented scenario end to end: a raw
// volume of 150 is stored as 100, the label shows 100 and the audio side
// reaches exactly 100 within one ramp length.
func TestSynth_OutOfRangeVolume(t *testing.T) {
	s := newTestSynth(t)

	var mu sync.Mutex
	var got []float64
	s.OnParameterChanged(store.ListenerFunc(func(p param.Parameter, v float64) {
		mu.Lock()
		defer mu.Unlock()
		if p.ID == param.Volume {
			got = append(got, v)
		}
	}))

	s.Store().HandleEvent(control.RawEvent{ID: param.Volume, Raw: 150})

	v, err := s.Store().Get(param.Volume)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, v, 0)
	assert.Equal(t, uint64(1), s.Store().Clamped())
	assert.Equal(t, []float64{100}, got)

	label, err := s.FormatDisplay(param.Volume)
	require.NoError(t, err)
	assert.Equal(t, "Volume: 100 %", label)

	info := s.Info()
	require.Equal(t, 480, info.RampFrames)

	buf := make([]float32, info.RampFrames)
	s.Engine().Render(buf)
	assert.InDelta(t, 100.0, s.Engine().Pull(param.Volume), 0)
	testutil.AssertAllInRange(t, buf, -1, 1)
}

func TestSynth_FormatDisplay(t *testing.T) {
	s := newTestSynth(t)
	_, err := s.Store().Set(param.QFactor, 350)
	require.NoError(t, err)

	label, err := s.FormatDisplay(param.QFactor)
	require.NoError(t, err)
	assert.Equal(t, "Q-Factor: 350", label)

	_, err = s.FormatDisplay(param.Count)
	assert.ErrorIs(t, err, param.ErrUnknownParameter)
}

func TestSynth_MIDIMapping(t *testing.T) {
	s := newTestSynth(t)
	surface, err := s.NewMIDISurface(nil)
	require.NoError(t, err)

	// CC 7 at full scale on channel 3.
	ev, ok := surface.Decode([]byte{0xB3, 7, 127})
	require.True(t, ok)
	s.Store().HandleEvent(ev)

	v, err := s.Store().Get(param.Volume)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, v, 0)
}

func TestSynth_Info(t *testing.T) {
	s := newTestSynth(t)
	info := s.Info()
	assert.Equal(t, 48000, info.SampleRate)
	assert.Equal(t, 512, info.BufferSize)
	assert.InDelta(t, 512.0/48.0, info.LatencyMs, 1e-9)
	assert.Equal(t, 8192*4, info.TapBytes)
	assert.NotEmpty(t, info.SIMDType)
}

func TestSynth_Independent(t *testing.T) {
	a := newTestSynth(t)
	b := newTestSynth(t)
	_, err := a.Store().Set(param.Volume, 77)
	require.NoError(t, err)

	v, err := b.Store().Get(param.Volume)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, v, 0, "synths share no state")
}

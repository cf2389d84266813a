package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/tphakala/subtractesizer"
	"github.com/tphakala/subtractesizer/internal/control"
	"github.com/tphakala/subtractesizer/internal/output"
	"github.com/tphakala/subtractesizer/internal/param"
	"github.com/tphakala/subtractesizer/internal/simdops"
	"github.com/tphakala/subtractesizer/internal/store"
	"github.com/tphakala/subtractesizer/internal/tui"
)

// CLI defines the command-line interface
type CLI struct {
	SampleRate int           `short:"r" default:"${sample_rate}" help:"Output sample rate in Hz (44100, 48000 or 96000)"`
	BufferSize int           `short:"b" default:"${buffer_size}" help:"Frames per audio buffer (power of two)"`
	Ramp       time.Duration `default:"${ramp}" help:"Shortest time for a full-range parameter sweep"`
	Cutoff     float64       `default:"${cutoff}" help:"Resonator centre frequency in Hz"`

	MIDIPort    string `name:"midi-port" short:"m" help:"MIDI input port name (substring match); empty disables MIDI"`
	MIDIChannel int    `name:"midi-channel" default:"-1" help:"MIDI channel 0-15, or -1 for any"`
	VolumeCC    uint8  `name:"volume-cc" default:"${volume_cc}" help:"Controller number for Volume"`
	QCC         uint8  `name:"q-cc" default:"${q_cc}" help:"Controller number for Q-Factor"`

	Headless bool          `help:"Render on a timer instead of the audio device"`
	NoUI     bool          `name:"no-ui" help:"Run without the terminal UI"`
	Duration time.Duration `help:"Exit after this long (no-UI mode only; 0 runs until interrupted)"`

	LogLevel string `name:"log-level" enum:"debug,info,warn,error" default:"info" help:"Log level (${enum})"`
	LogFile  string `name:"log-file" type:"path" help:"Write logs to this file (defaults to stderr, or nowhere while the UI is shown)"`

	Version kong.VersionFlag `short:"v" help:"Show version information"`
}

func main() {
	cli := &CLI{}
	kong.Parse(cli,
		kong.Name("subtractesizer"),
		kong.Description("Noise resonator driven by a lock-free parameter bridge"),
		kong.UsageOnError(),
		kong.Vars{
			"version":     version,
			"sample_rate": fmt.Sprint(defaultSampleRate),
			"buffer_size": fmt.Sprint(defaultBufferSize),
			"ramp":        defaultRamp.String(),
			"cutoff":      fmt.Sprint(defaultCutoffHz),
			"volume_cc":   fmt.Sprint(defaultVolumeCC),
			"q_cc":        fmt.Sprint(defaultQCC),
		},
	)

	if err := run(cli); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cli *CLI) error {
	logger, closeLog, err := newLogger(cli)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	synth, err := subtractesizer.New(synthConfig(cli), subtractesizer.WithLogger(logger))
	if err != nil {
		return err
	}
	info := synth.Info()
	logger.Info("synth ready",
		"sample_rate", info.SampleRate,
		"buffer_size", info.BufferSize,
		"latency_ms", info.LatencyMs,
		"ramp_frames", info.RampFrames,
		"cutoff_hz", info.CutoffHz,
		"simd", info.SIMDType)

	var feed *tui.Feed
	if !cli.NoUI {
		feed = tui.NewFeed(synth.Params())
		synth.OnParameterChanged(feed)
	} else {
		synth.OnParameterChanged(store.ListenerFunc(func(p param.Parameter, v float64) {
			logger.Info("parameter changed", "label", param.FormatDisplay(p, v))
		}))
	}

	sink, err := newSink(cli, synth, logger)
	if err != nil {
		return err
	}
	if err := sink.Start(); err != nil {
		return fmt.Errorf("start audio output: %w", err)
	}
	defer func() {
		if err := sink.Close(); err != nil {
			logger.Warn("closing audio output", "error", err)
		}
	}()

	if cli.MIDIPort != "" {
		closeMIDI, err := startMIDI(ctx, cli.MIDIPort, synth, logger)
		if err != nil {
			return err
		}
		defer closeMIDI()
	}

	if cli.NoUI {
		return runHeadless(ctx, cli.Duration, synth, logger)
	}

	model := tui.NewModel(tui.Config{
		Title:   subtractesizer.Title,
		Set:     synth.Params(),
		Initial: synth.Store().Snapshot(),
		Emit:    synth.Store().HandleEvent,
		Feed:    feed,
		Tap:     synth.Engine().Tap(),
	})
	return tui.Run(ctx, model)
}

func synthConfig(cli *CLI) subtractesizer.Config {
	cfg := subtractesizer.DefaultConfig()
	cfg.Engine.SampleRate = cli.SampleRate
	cfg.Engine.BufferSize = cli.BufferSize
	cfg.Engine.MinRamp = cli.Ramp
	cfg.Engine.CutoffHz = cli.Cutoff
	cfg.NormalizeAudio = true
	cfg.MIDIMappings = []control.CCMapping{
		{Channel: cli.MIDIChannel, Controller: cli.VolumeCC, ID: param.Volume},
		{Channel: cli.MIDIChannel, Controller: cli.QCC, ID: param.QFactor},
	}
	return cfg
}

// newLogger configures the process-wide slog logger. While the terminal UI
// owns the screen, logs go to --log-file or are dropped.
func newLogger(cli *CLI) (*slog.Logger, func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cli.LogLevel)); err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	switch {
	case cli.LogFile != "":
		f, err := os.OpenFile(cli.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	case !cli.NoUI:
		w = io.Discard
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}))
	slog.SetDefault(logger)
	return logger, closeFn, nil
}

func newSink(cli *CLI, synth *subtractesizer.Synth, logger *slog.Logger) (output.Sink, error) {
	cfg := synth.Config().Engine
	if !cli.Headless {
		sink, err := output.NewOtoSink(synth.Engine(), cfg.SampleRate, logger)
		if err == nil {
			return sink, nil
		}
		if !errors.Is(err, output.ErrUnavailable) {
			return nil, fmt.Errorf("open audio device: %w", err)
		}
		logger.Warn("audio device support not built in, rendering on a timer")
	}
	return output.NewTickerSink(synth.Engine(), output.TickerConfig{
		SampleRate: cfg.SampleRate,
		Channels:   monoChannels,
		Frames:     cfg.BufferSize,
	}, logger)
}

// runHeadless waits for an interrupt (or the optional duration), logging the
// output level from the tap now and then.
func runHeadless(ctx context.Context, d time.Duration, synth *subtractesizer.Synth, logger *slog.Logger) error {
	if d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	tap := synth.Engine().Tap()
	ops := simdops.Float32Ops()
	scratch := make([]float32, tap.Capacity())

	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("stopping", "frames", synth.Engine().Frames(), "clamped_events", synth.Store().Clamped())
			return nil
		case <-ticker.C:
			n := tap.Read(scratch)
			logger.Info("status",
				"frames", synth.Engine().Frames(),
				"rms", ops.RMS(scratch[:n]),
				"dc", ops.Mean(scratch[:n]),
				"dropped", tap.Dropped())
			tap.Discard(tap.Available())
		}
	}
}

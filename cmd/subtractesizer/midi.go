//go:build !headless

package main

import (
	"context"
	"fmt"
	"log/slog"

	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // registers the rtmidi driver

	"github.com/tphakala/subtractesizer"
)

// startMIDI opens the first input port whose name contains name and feeds
// its control changes to the synth's store.
func startMIDI(ctx context.Context, name string, synth *subtractesizer.Synth, logger *slog.Logger) (func(), error) {
	in, err := midi.FindInPort(name)
	if err != nil {
		logger.Warn("MIDI input not found", "port", name, "available", midi.GetInPorts().String())
		return nil, fmt.Errorf("find MIDI port %q: %w", name, err)
	}

	surface, err := synth.NewMIDISurface(in)
	if err != nil {
		return nil, err
	}
	if err := surface.Start(ctx, synth.Store().HandleEvent); err != nil {
		return nil, err
	}
	return func() {
		surface.Stop()
		midi.CloseDriver()
	}, nil
}

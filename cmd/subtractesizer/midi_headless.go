//go:build headless

package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tphakala/subtractesizer"
)

func startMIDI(context.Context, string, *subtractesizer.Synth, *slog.Logger) (func(), error) {
	return nil, errors.New("MIDI input is not available in headless builds")
}

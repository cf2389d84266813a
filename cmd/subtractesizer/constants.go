package main

import "time"

var version = "0.1.0"

// Default command-line flag values
const (
	defaultSampleRate = 48000
	defaultBufferSize = 512
	defaultCutoffHz   = 1000.0
	defaultRamp       = 10 * time.Millisecond
	defaultVolumeCC   = 7
	defaultQCC        = 71
)

// statusInterval is how often the no-UI mode logs the output level.
const statusInterval = 2 * time.Second

// Channel counts for the headless ticker sink.
const monoChannels = 1

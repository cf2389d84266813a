package tui

import "time"

const (
	// Fine and coarse key steps as fractions of a parameter's range.
	fineStepDivisor   = 100
	coarseStepDivisor = 10

	meterInterval = 50 * time.Millisecond
	meterFloorDB  = -60.0
	meterWidth    = 40
	dialWidth     = 40

	// peakDecayDB is how far the peak marker falls per meter tick.
	peakDecayDB = 1.5

	// meterScratch bounds how many tap samples are read per call.
	meterScratch = 4096

	viewWidth = 66
)

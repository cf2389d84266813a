package tui

import "time"

// ParamsChangedMsg carries the latest target of every parameter, indexed
// by param.ID.
type ParamsChangedMsg struct {
	Values []float64
}

// meterTickMsg triggers a read of the output tap.
type meterTickMsg time.Time

// Package subtractesizer is the core of a small subtractive synthesizer:
// a real-time-safe bridge that carries control-surface parameter changes
// into an audio callback without locks, allocation or clicks.
//
// # Overview
//
// Two parameters are declared, Volume (0..100 %) and Q-Factor (0..1000).
// A control surface reports raw integer positions; the [Synth] clamps them
// into range, stores them as target values and publishes them through a
// lock-free last-value-wins cell per parameter. Once per audio buffer the
// engine loads the latest targets and ramps towards them linearly, so a
// full-range sweep never takes less than the configured minimum ramp time.
//
// # Quick Start
//
//	synth, err := subtractesizer.New(subtractesizer.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Labels follow every accepted change.
//	synth.OnParameterChanged(subtractesizer.ListenerFunc(func(p subtractesizer.Parameter, v float64) {
//	    fmt.Println(subtractesizer.FormatDisplay(p, v))
//	}))
//
//	// Control thread: surface events go through the store.
//	synth.Store().Set(subtractesizer.Volume, 80)
//
//	// Audio thread: render one buffer at a time.
//	buf := make([]float32, 512)
//	synth.Engine().Render(buf)
//
// # Threading
//
// Store methods may be called from any goroutine; the store serializes
// them and is the only writer of the bridge. Engine.Render, Engine.Pull and
// the tap ring's producer side belong to the single audio goroutine.
// Listeners registered with [Synth.OnParameterChanged] run synchronously on
// the goroutine that changed the value.
//
// # Voice
//
// The engine renders white noise through an RBJ band-pass resonator whose
// bandwidth follows the Q-Factor dial, followed by the Volume gain ramp.
// It exists so that both parameters have an audible target; it is not a
// synthesis library.
package subtractesizer

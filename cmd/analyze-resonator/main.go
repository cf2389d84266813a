// Command analyze-resonator prints the magnitude response of the resonator
// filter across the Q-Factor dial, measured from the impulse response with
// an FFT.
package main

import (
	"fmt"
	"math"
	"math/cmplx"
	"os"

	"github.com/alecthomas/kong"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"

	"github.com/tphakala/subtractesizer/internal/filter"
)

const (
	// dialMax is the Q-Factor dial's top position.
	dialMax = 1000.0

	halfPowerDB = -3.0103 // 20*log10(1/sqrt(2))
	minMagDB    = -200.0
)

// defaultDial is the sweep analysed when --dial is not given.
var defaultDial = []float64{0, 50, 100, 250, 500, 750, 1000}

// CLI defines the command-line interface
type CLI struct {
	SampleRate float64   `short:"r" default:"48000" help:"Sample rate in Hz"`
	Cutoff     float64   `short:"c" default:"1000" help:"Centre / corner frequency in Hz"`
	Kind       string    `short:"k" enum:"bandpass,lowpass,highpass" default:"bandpass" help:"Filter design (${enum})"`
	FFTSize    int       `name:"fft-size" default:"16384" help:"Impulse response length"`
	Dial       []float64 `help:"Q-Factor dial positions to analyse (default: a sweep 0-1000)"`
}

type result struct {
	dial, q     float64
	peakHz      float64
	peakDB      float64
	bandwidthHz float64
}

func main() {
	cli := &CLI{}
	kong.Parse(cli,
		kong.Name("analyze-resonator"),
		kong.Description("Measure the resonator's magnitude response"),
		kong.UsageOnError(),
	)

	if err := run(cli); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cli *CLI) error {
	kind, err := parseKind(cli.Kind)
	if err != nil {
		return err
	}
	if cli.FFTSize < 2 {
		return fmt.Errorf("fft size must be at least 2, got %d", cli.FFTSize)
	}
	dial := cli.Dial
	if len(dial) == 0 {
		dial = defaultDial
	}

	fmt.Printf("=== Resonator Response (%s, %.0f Hz @ %.0f Hz) ===\n\n", kind, cli.Cutoff, cli.SampleRate)
	fmt.Printf("%6s  %6s  %10s  %9s  %12s\n", "Dial", "Q", "Peak (Hz)", "Peak (dB)", "-3 dB BW (Hz)")

	fft := fourier.NewFFT(cli.FFTSize)
	for _, pos := range dial {
		q := filter.QFromDial(pos, dialMax)
		c, err := filter.Design(kind, cli.Cutoff, q, cli.SampleRate)
		if err != nil {
			return fmt.Errorf("dial %g: %w", pos, err)
		}
		r := analyze(fft, c, cli.FFTSize, cli.SampleRate)
		r.dial, r.q = pos, q

		bw := "-"
		if r.bandwidthHz > 0 {
			bw = fmt.Sprintf("%.1f", r.bandwidthHz)
		}
		fmt.Printf("%6.0f  %6.2f  %10.1f  %9.3f  %12s\n", r.dial, r.q, r.peakHz, r.peakDB, bw)
	}
	return nil
}

// analyze measures c from the FFT of its impulse response.
func analyze(fft *fourier.FFT, c filter.Coefficients, n int, sampleRate float64) result {
	ir := filter.NewSection(c).ImpulseResponse(n)

	bins := fft.Coefficients(nil, ir)
	mags := make([]float64, len(bins))
	for k, v := range bins {
		mags[k] = toDB(cmplx.Abs(v))
	}

	binHz := sampleRate / float64(n)
	peak := floats.MaxIdx(mags)
	r := result{
		peakHz: float64(peak) * binHz,
		peakDB: mags[peak],
	}

	// Walk outwards from the peak to the half-power points. Low- and
	// high-pass responses have only one edge and report no bandwidth.
	threshold := mags[peak] + halfPowerDB
	lo, hi := peak, peak
	for lo > 0 && mags[lo] > threshold {
		lo--
	}
	for hi < len(mags)-1 && mags[hi] > threshold {
		hi++
	}
	if lo > 0 && hi < len(mags)-1 {
		r.bandwidthHz = float64(hi-lo) * binHz
	}
	return r
}

func parseKind(s string) (filter.Kind, error) {
	for _, k := range []filter.Kind{filter.BandPassKind, filter.LowPassKind, filter.HighPassKind} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown filter kind %q", s)
}

func toDB(mag float64) float64 {
	if mag <= 0 {
		return minMagDB
	}
	return math.Max(20*math.Log10(mag), minMagDB)
}

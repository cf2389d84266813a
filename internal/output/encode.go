package output

import "unsafe"

// renderFloat32LE fills p with float32 LE samples from r, rendering at most
// len(scratch) samples per call. A trailing partial sample is left
// untouched. It returns the number of bytes written.
func renderFloat32LE(r Renderer, scratch []float32, p []byte) int {
	written := 0
	for len(p)-written >= bytesPerSample {
		n := min((len(p)-written)/bytesPerSample, len(scratch))
		samples := scratch[:n]
		r.Render(samples)

		raw := unsafe.Slice((*byte)(unsafe.Pointer(&samples[0])), n*bytesPerSample)
		written += copy(p[written:], raw)
	}
	return written
}

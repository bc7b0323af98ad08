package glance

import "math"

// Histogram holds one bucket-count table per channel. 8-bit samples use 256
// buckets, 16-bit samples 65536, and normalized float samples are binned
// into 256 buckets over [0, 1]. A histogram is transient: it is rebuilt on
// every request and never cached, since the buffer may have mutated.
type Histogram struct {
	bins   int
	counts [][]uint32
}

// Bins returns the number of buckets per channel.
func (h *Histogram) Bins() int { return h.bins }

// Channels returns the number of per-channel tables.
func (h *Histogram) Channels() int { return len(h.counts) }

// Counts returns the bucket table of channel c.
func (h *Histogram) Counts(c int) []uint32 { return h.counts[c] }

// histBins returns the bucket count used for the sample type.
func histBins[T Sample]() int {
	var t T
	if _, ok := any(t).(uint16); ok {
		return math.MaxUint16 + 1
	}
	return math.MaxUint8 + 1
}

// binOf maps a sample to its bucket index.
func binOf[T Sample](v T, bins int) int {
	if !isFloatSample[T]() {
		return int(v)
	}
	idx := int(math.Round(float64(v) / maxSample[T]() * float64(bins-1)))
	if idx < 0 {
		return 0
	}
	if idx >= bins {
		return bins - 1
	}
	return idx
}

// binValue maps a bucket index back to a sample value.
func binValue[T Sample](bin, bins int) T {
	return quantize[T](float64(bin) / float64(bins-1) * maxSample[T]())
}

// ComputeHistogram derives the per-channel histograms of a buffer in a
// single linear scan. Accumulation is a pure count, so the result is
// deterministic regardless of how the scan would be scheduled.
func ComputeHistogram[T Sample](b *Buffer[T]) *Histogram {
	bins := histBins[T]()
	h := &Histogram{
		bins:   bins,
		counts: make([][]uint32, b.channels),
	}
	for c := range h.counts {
		h.counts[c] = make([]uint32, bins)
	}
	for y := 0; y < b.height; y++ {
		off := y * b.stride
		for x := 0; x < b.width; x++ {
			for c := 0; c < b.channels; c++ {
				h.counts[c][binOf(b.data[off+x*b.channels+c], bins)]++
			}
		}
	}
	return h
}

// Equalize flattens the intensity distribution of every non-alpha channel
// through a cumulative-distribution lookup table:
//
//	lut[i] = round((cdf[i] - cdf_min) * (bins-1) / (n - cdf_min))
//
// where cdf_min is the first non-zero cumulative count. The lookup table is
// monotonic non-decreasing, and a channel holding a single distinct value
// maps onto itself rather than dividing by zero.
func Equalize[T Sample](src *Buffer[T], workers int) *Buffer[T] {
	hist := ComputeHistogram(src)
	bins := hist.bins
	total := uint32(src.width * src.height)

	luts := make([][]T, src.channels)
	for c := 0; c < src.channels; c++ {
		if src.channels == 4 && c == alphaChannel {
			continue
		}
		counts := hist.counts[c]

		cdf := make([]uint32, bins)
		var run uint32
		for i, n := range counts {
			run += n
			cdf[i] = run
		}

		var cdfMin uint32
		for _, v := range cdf {
			if v > 0 {
				cdfMin = v
				break
			}
		}

		lut := make([]T, bins)
		if total == cdfMin {
			// Single distinct value: identity mapping.
			for i := range lut {
				lut[i] = binValue[T](i, bins)
			}
		} else {
			scale := float64(bins-1) / float64(total-cdfMin)
			for i, v := range cdf {
				adjusted := (float64(v) - float64(cdfMin)) * scale
				lut[i] = binValue[T](int(math.Round(math.Max(adjusted, 0))), bins)
			}
		}
		luts[c] = lut
	}

	dst := src.Clone()
	parallelize(workers, 0, src.height, func(lo, hi int) {
		for y := lo; y < hi; y++ {
			for x := 0; x < src.width; x++ {
				off := dst.offset(x, y)
				for c := 0; c < src.channels; c++ {
					if src.channels == 4 && c == alphaChannel {
						continue
					}
					dst.data[off+c] = luts[c][binOf(dst.data[off+c], bins)]
				}
			}
		}
	})
	return dst
}

package glance

import (
	"io"
	"runtime"
	"time"

	"github.com/rs/zerolog"
)

// Processor bundles the options of a processing pipeline. The stages run in
// a fixed order over an 8-bit buffer: invert, brightness, contrast, gamma,
// histogram equalization, gaussian blur, median, erode, dilate, grayscale,
// sobel, threshold. A stage is skipped when its option holds the zero value.
type Processor struct {
	// Invert negates every color sample before any tonal adjustment.
	Invert bool
	// Brightness is added to every sample, in 8-bit sample units.
	Brightness float64
	// Contrast scales sample distance from the mid-gray point; 0 disables
	// the stage, 1 is a no-op scale.
	Contrast float64
	// Gamma applies the power-law transform; 0 disables the stage.
	Gamma float64
	// Equalize flattens the per-channel histograms.
	Equalize bool
	// BlurRadius r enables a gaussian blur with a (2r+1)-sized kernel.
	BlurRadius int
	// MedianWindow enables a square median filter of the given size.
	MedianWindow int
	// ErodeRadius enables a morphological erosion with a disk of the
	// given radius.
	ErodeRadius int
	// DilateRadius enables a morphological dilation with a disk of the
	// given radius.
	DilateRadius int
	// Grayscale reduces the image to a single luminance channel.
	Grayscale bool
	// SobelThreshold enables sobel edge magnitude on the grayscaled image,
	// zeroing magnitudes at or below the threshold. Negative disables.
	SobelThreshold int
	// ThresholdLevel enables a binary threshold at the given level.
	ThresholdLevel int

	// Border is the edge strategy handed to every windowed stage.
	Border Border
	// Workers caps the row-band parallelism; 0 uses all CPUs.
	Workers int
	// Log receives per-stage structured events.
	Log zerolog.Logger
}

// NewProcessor returns a Processor with the stages disabled, an extend-edge
// border strategy and logging discarded.
func NewProcessor() *Processor {
	return &Processor{
		SobelThreshold: -1,
		Border:         Border{Mode: BorderExtend},
		Workers:        runtime.NumCPU(),
		Log:            zerolog.Nop(),
	}
}

// Apply runs the enabled stages over the buffer and returns the result.
func (p *Processor) Apply(buf *Buffer[uint8]) (*Buffer[uint8], error) {
	var err error

	stage := func(name string, fn func() (*Buffer[uint8], error)) {
		if err != nil {
			return
		}
		start := time.Now()
		var out *Buffer[uint8]
		if out, err = fn(); err == nil {
			buf = out
			p.Log.Debug().Str("stage", name).Dur("took", time.Since(start)).Msg("stage done")
		}
	}

	if p.Invert {
		stage("invert", func() (*Buffer[uint8], error) {
			return Invert(buf, p.Workers), nil
		})
	}
	if p.Brightness != 0 {
		stage("brightness", func() (*Buffer[uint8], error) {
			return Brightness(buf, p.Brightness, p.Workers), nil
		})
	}
	if p.Contrast != 0 {
		stage("contrast", func() (*Buffer[uint8], error) {
			return Contrast(buf, p.Contrast, p.Workers), nil
		})
	}
	if p.Gamma != 0 {
		stage("gamma", func() (*Buffer[uint8], error) {
			return Gamma(buf, p.Gamma, p.Workers)
		})
	}
	if p.Equalize {
		stage("equalize", func() (*Buffer[uint8], error) {
			return Equalize(buf, p.Workers), nil
		})
	}
	if p.BlurRadius > 0 {
		stage("blur", func() (*Buffer[uint8], error) {
			size := 2*p.BlurRadius + 1
			return GaussianBlur(buf, size, float64(p.BlurRadius)/2+0.5, p.Border, p.Workers)
		})
	}
	if p.MedianWindow > 0 {
		stage("median", func() (*Buffer[uint8], error) {
			return Median(buf, p.MedianWindow, p.MedianWindow, p.Border, p.Workers)
		})
	}
	if p.ErodeRadius > 0 {
		stage("erode", func() (*Buffer[uint8], error) {
			se, err := DiskSE(p.ErodeRadius)
			if err != nil {
				return nil, err
			}
			return Erode(buf, se, p.Border, p.Workers)
		})
	}
	if p.DilateRadius > 0 {
		stage("dilate", func() (*Buffer[uint8], error) {
			se, err := DiskSE(p.DilateRadius)
			if err != nil {
				return nil, err
			}
			return Dilate(buf, se, p.Border, p.Workers)
		})
	}
	if p.Grayscale || p.SobelThreshold >= 0 {
		stage("grayscale", func() (*Buffer[uint8], error) {
			if buf.Channels() == 1 {
				return buf, nil
			}
			return Grayscale(buf, p.Workers)
		})
	}
	if p.SobelThreshold >= 0 {
		stage("sobel", func() (*Buffer[uint8], error) {
			return Sobel(buf, float64(p.SobelThreshold), p.Border, p.Workers)
		})
	}
	if p.ThresholdLevel > 0 {
		stage("threshold", func() (*Buffer[uint8], error) {
			return Threshold(buf, ThresholdBinary, uint8(p.ThresholdLevel), 255, 0, p.Workers), nil
		})
	}

	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Process is the main entry point: it decodes the source image from r, runs
// the pipeline and encodes the result into w.
func (p *Processor) Process(r io.Reader, w io.Writer) error {
	start := time.Now()

	buf, err := Decode(r)
	if err != nil {
		return err
	}

	res, err := p.Apply(buf)
	if err != nil {
		return err
	}

	if err := Encode(w, res); err != nil {
		return err
	}
	p.Log.Info().
		Int("width", res.Width()).
		Int("height", res.Height()).
		Int("channels", res.Channels()).
		Dur("took", time.Since(start)).
		Msg("image processed")
	return nil
}

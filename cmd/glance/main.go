package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/disintegration/imaging"
	"github.com/glancelib/glance"
	"github.com/glancelib/glance/utils"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

const HelpBanner = `
┌─┐┬  ┌─┐┌┐┌┌─┐┌─┐
│ ┬│  ├─┤││││  ├┤
└─┘┴─┘┴ ┴┘└┘└─┘└─┘

Pixel processing library.
    Version: %s

`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// maxWorkers sets the maximum number of concurrently processed files.
const maxWorkers = 20

// result holds the relevant information about a processed image.
type result struct {
	path string
	err  error
}

var (
	// spinner used to instantiate and call the progress indicator.
	spinner *utils.Spinner
	// logger receives the structured pipeline events.
	logger zerolog.Logger
)

// Version indicates the current build version.
var Version string

var (
	// Flags
	source       = flag.String("in", pipeName, "Source")
	destination  = flag.String("out", pipeName, "Destination")
	invert       = flag.Bool("invert", false, "Invert the image colors")
	brightness   = flag.Float64("brightness", 0, "Brightness delta, in 8-bit sample units")
	contrast     = flag.Float64("contrast", 0, "Contrast factor (1.0 leaves the image unchanged)")
	gamma        = flag.Float64("gamma", 0, "Gamma correction exponent")
	equalize     = flag.Bool("equalize", false, "Histogram equalization")
	blurRadius   = flag.Int("blur", 0, "Gaussian blur radius")
	medianWindow = flag.Int("median", 0, "Median filter window size")
	erodeRadius  = flag.Int("erode", 0, "Erosion disk radius")
	dilateRadius = flag.Int("dilate", 0, "Dilation disk radius")
	grayscale    = flag.Bool("gray", false, "Convert to grayscale")
	sobel        = flag.Int("sobel", -1, "Sobel edge magnitude threshold (negative disables)")
	threshold    = flag.Int("threshold", 0, "Binary threshold level")
	border       = flag.String("border", "extend", "Border policy: extend, mirror, wrap, constant")
	borderValue  = flag.Float64("bvalue", 0, "Fill value for the constant border policy")
	workers      = flag.Int("conc", runtime.NumCPU(), "Number of row-band workers per filter")
	verbose      = flag.Bool("verbose", false, "Log the processing stages")
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()

	bp, err := parseBorder(*border, *borderValue)
	if err != nil {
		log.Fatal(utils.DecorateText(err.Error(), utils.ErrorMessage))
	}

	proc := glance.NewProcessor()
	proc.Invert = *invert
	proc.Brightness = *brightness
	proc.Contrast = *contrast
	proc.Gamma = *gamma
	proc.Equalize = *equalize
	proc.BlurRadius = *blurRadius
	proc.MedianWindow = *medianWindow
	proc.ErodeRadius = *erodeRadius
	proc.DilateRadius = *dilateRadius
	proc.Grayscale = *grayscale
	proc.SobelThreshold = *sobel
	proc.ThresholdLevel = *threshold
	proc.Border = bp
	proc.Workers = *workers
	proc.Log = logger

	spinnerText := fmt.Sprintf("%s %s",
		utils.DecorateText("⚡ GLANCE", utils.StatusMessage),
		utils.DecorateText("is processing the image...", utils.DefaultMessage))
	spinner = utils.NewSpinner(spinnerText, time.Millisecond*200, true)

	// Supported files
	validExtensions := []string{".jpg", ".png", ".jpeg", ".bmp"}

	// Check if source path is a local image or URL.
	var fs os.FileInfo
	if utils.IsValidUrl(*source) {
		src, err := utils.DownloadImage(*source)
		if src != nil {
			defer src.Close()
			defer os.Remove(src.Name())
		}
		if err != nil {
			log.Fatalf(
				utils.DecorateText("Failed to load the source image: %v", utils.ErrorMessage),
				utils.DecorateText(err.Error(), utils.DefaultMessage),
			)
		}
		fs, err = src.Stat()
		if err != nil {
			log.Fatalf(
				utils.DecorateText("Failed to load the source image: %v", utils.ErrorMessage),
				utils.DecorateText(err.Error(), utils.DefaultMessage),
			)
		}
		*source = src.Name()
	} else {
		// Check if the source is a pipe name or a regular file.
		if *source == pipeName {
			fs, err = os.Stdin.Stat()
		} else {
			fs, err = os.Stat(*source)
		}
		if err != nil {
			log.Fatalf(
				utils.DecorateText("Failed to load the source image: %v", utils.ErrorMessage),
				utils.DecorateText(err.Error(), utils.DefaultMessage),
			)
		}
	}

	// Refuse dumping binary image data onto an interactive terminal.
	if *destination == pipeName && term.IsTerminal(int(os.Stdout.Fd())) {
		log.Fatal(utils.DecorateText("The standard output is a terminal, please redirect it or use -out!", utils.ErrorMessage))
	}

	now := time.Now()

	switch mode := fs.Mode(); {
	case mode.IsDir():
		var wg sync.WaitGroup
		// Read destination file or directory.
		if _, err := os.Stat(*destination); err != nil {
			if err := os.Mkdir(*destination, 0755); err != nil {
				log.Fatalf(
					utils.DecorateText("Unable to get dir stats: %v\n", utils.ErrorMessage),
					utils.DecorateText(err.Error(), utils.DefaultMessage),
				)
			}
		}

		// Limit the concurrently processed files to maxWorkers.
		conc := *workers
		if conc <= 0 || conc > maxWorkers {
			conc = runtime.NumCPU()
		}

		// Process the image files from the specified directory concurrently.
		ch := make(chan result)
		done := make(chan interface{})
		defer close(done)

		paths, errc := walkDir(done, *source, validExtensions)

		wg.Add(conc)
		for i := 0; i < conc; i++ {
			go func() {
				defer wg.Done()
				consumer(done, paths, *destination, proc, ch)
			}()
		}

		// Close the channel after the values are consumed.
		go func() {
			defer close(ch)
			wg.Wait()
		}()

		// Consume the channel values.
		for res := range ch {
			printStatus(res.path, res.err)
		}

		if err := <-errc; err != nil {
			fmt.Fprint(os.Stderr, utils.DecorateText(err.Error(), utils.ErrorMessage))
		}

	case mode.IsRegular() || mode&os.ModeNamedPipe != 0:
		ext := filepath.Ext(*destination)
		if !utils.Contains(validExtensions, ext) && *destination != pipeName {
			log.Fatal(utils.DecorateText(fmt.Sprintf("%v file type not supported", ext), utils.ErrorMessage))
		}

		err := processor(*source, *destination, proc)
		printStatus(*destination, err)
	}

	fmt.Fprintf(os.Stderr, "\nExecution time: %s\n",
		utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
}

// parseBorder translates the -border and -bvalue flags into a border policy.
func parseBorder(mode string, value float64) (glance.Border, error) {
	switch mode {
	case "extend":
		return glance.Border{Mode: glance.BorderExtend}, nil
	case "mirror":
		return glance.Border{Mode: glance.BorderMirror}, nil
	case "wrap":
		return glance.Border{Mode: glance.BorderWrap}, nil
	case "constant":
		return glance.ConstantBorder(value), nil
	default:
		return glance.Border{}, fmt.Errorf("unsupported border policy %q", mode)
	}
}

// walkDir starts a goroutine to walk the specified directory tree in a
// recursive manner and send the path of each regular file on the string
// channel. It sends the result of the walk on the error channel.
// It terminates in case done channel is closed.
func walkDir(
	done <-chan interface{},
	src string,
	srcExts []string,
) (<-chan string, <-chan error) {
	pathChan := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		// Close the paths channel after Walk returns.
		defer close(pathChan)

		errChan <- filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.Mode().IsRegular() {
				return nil
			}

			if !utils.Contains(srcExts, filepath.Ext(info.Name())) {
				return nil
			}

			select {
			case <-done:
				return errors.New("directory walk cancelled")
			case pathChan <- path:
			}
			return nil
		})
	}()
	return pathChan, errChan
}

// consumer reads the path names from the paths channel, runs the pipeline
// against each source image and sends the results on a new channel.
func consumer(
	done <-chan interface{},
	paths <-chan string,
	dest string,
	proc *glance.Processor,
	res chan<- result,
) {
	for src := range paths {
		dest := filepath.Join(dest, filepath.Base(src))
		err := processor(src, dest, proc)

		select {
		case <-done:
			return
		case res <- result{
			path: src,
			err:  err,
		}:
		}
	}
}

// processor runs the processing pipeline over the source image and writes
// the result to the destination, which may be a regular file or a pipe.
func processor(in, out string, proc *glance.Processor) error {
	// Capture CTRL-C signal and restore the cursor visibility back.
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalChan
		spinner.RestoreCursor()
		os.Exit(1)
	}()

	spinner.Start()
	defer spinner.Stop()

	if in == pipeName || out == pipeName {
		src, dst, err := pathToFile(in, out)
		if err != nil {
			return err
		}
		defer src.Close()
		defer dst.Close()
		return proc.Process(src, dst)
	}

	// Regular files go through the imaging open/save convenience path,
	// which picks the codecs by file extension.
	img, err := imaging.Open(in)
	if err != nil {
		return err
	}
	res, err := proc.Apply(glance.FromImage(img))
	if err != nil {
		return err
	}
	outImg, err := glance.ToImage(res)
	if err != nil {
		return err
	}
	return imaging.Save(outImg, out)
}

// printStatus reports the outcome of a single processed image.
func printStatus(fname string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr,
			utils.DecorateText("\nError processing the image: %s", utils.ErrorMessage),
			utils.DecorateText(fmt.Sprintf("\n\tReason: %v\n", err.Error()), utils.DefaultMessage),
		)
		os.Exit(1)
	}
	if fname != pipeName {
		fmt.Fprintf(os.Stderr, "\nThe processed image has been saved as: %s %s\n",
			utils.DecorateText(filepath.Base(fname), utils.SuccessMessage),
			utils.DefaultColor,
		)
	}
}

// pathToFile converts the source and destination paths to file descriptors,
// falling back to the standard input and output for pipe names.
func pathToFile(in, out string) (*os.File, *os.File, error) {
	src := os.Stdin
	dst := os.Stdout
	var err error

	if in != pipeName {
		if src, err = os.Open(in); err != nil {
			return nil, nil, fmt.Errorf("unable to open the source file: %w", err)
		}
	}
	if out != pipeName {
		if dst, err = os.Create(out); err != nil {
			return nil, nil, fmt.Errorf("unable to create the destination file: %w", err)
		}
	}
	return src, dst, nil
}

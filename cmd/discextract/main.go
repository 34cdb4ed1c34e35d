package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	disc "github.com/rstms/disc-kit"
	"github.com/rstms/disc-kit/pkg/config"
	"github.com/rstms/disc-kit/pkg/logging"
	"github.com/rstms/disc-kit/pkg/option"
	"github.com/theckman/yacspin"
	"golang.org/x/term"
)

var (
	version = "dev"
)

// truncateString truncates the input string to the specified max length.
// If truncation occurs, it prepends "..." to indicate the string has been shortened.
func truncateString(input string, maxLength int) string {
	if len(input) <= maxLength {
		return input
	}
	if maxLength <= 3 {
		return input[len(input)-maxLength:]
	}
	return "..." + input[len(input)-(maxLength-3):]
}

// CreateProgressCallback returns a ProgressCallback that updates the spinner's message.
func CreateProgressCallback(spinner *yacspin.Spinner) option.ExtractionProgressCallback {
	return func(
		currentFilename string,
		bytesTransferred int64,
		totalBytes int64,
		currentFileNumber int,
		totalFileCount int,
	) {
		if spinner == nil {
			return
		}
		width, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil {
			width = 80
		}

		percent := 100.0
		if totalBytes > 0 {
			percent = float64(bytesTransferred) / float64(totalBytes) * 100
		}
		fixedPart := fmt.Sprintf(" [%d/%d] ", currentFileNumber, totalFileCount)
		suffixPart := fmt.Sprintf(" - %.2f%%", percent)

		availableSpace := width - len(fixedPart) - len(suffixPart) - 6
		if availableSpace < 10 {
			availableSpace = 10
		}

		spinner.Message(fmt.Sprintf("%s%s%s", fixedPart, truncateString(currentFilename, availableSpace), suffixPart))
	}
}

// InitializeSpinner sets up and starts the yacspin spinner.
func InitializeSpinner() (*yacspin.Spinner, error) {
	settings := yacspin.Config{
		Frequency:         100 * time.Millisecond,
		ShowCursor:        false,
		SpinnerAtEnd:      false,
		CharSet:           yacspin.CharSets[14],
		Colors:            []string{"fgHiCyan"},
		StopColors:        []string{"fgHiGreen"},
		StopFailColors:    []string{"fgHiRed"},
		StopFailCharacter: "✗",
		StopCharacter:     "✓",
	}

	spinner, err := yacspin.New(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create spinner: %w", err)
	}
	if err := spinner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start spinner: %w", err)
	}
	return spinner, nil
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	debug := flag.Bool("v", false, "Enable verbose (debug) logging")
	trace := flag.Bool("vv", false, "Enable trace logging")
	stripVer := flag.Bool("strip", true, "Strip version info from filenames")
	tracks := flag.Bool("tracks", false, "Also write audio tracks as WAV files")
	outputDir := flag.String("o", cfg.OutputDir, "Output directory for extracted files")
	flag.Parse()

	if flag.NArg() < 1 || flag.NArg() > 2 {
		fmt.Println("discextract v" + version)
		fmt.Println("Usage: discextract [options] <image> [descriptor]")
		fmt.Println("  -v               Enable verbose (debug) logging")
		fmt.Println("  -vv              Enable trace logging")
		fmt.Println("  -strip           Strip version info from filenames (default: true)")
		fmt.Println("  -tracks          Also write audio tracks as WAV files")
		fmt.Println("  -o <directory>   Output directory (default '" + cfg.OutputDir + "')")
		os.Exit(1)
	}

	level := cfg.Level()
	if *debug {
		level = logging.LEVEL_DEBUG
	}
	if *trace {
		level = logging.LEVEL_TRACE
	}
	logger := logging.NewLogger(logging.NewSimpleLogger(os.Stderr, level, term.IsTerminal(int(os.Stderr.Fd()))))

	var spinner *yacspin.Spinner
	if level == logging.LEVEL_INFO {
		if spinner, err = InitializeSpinner(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize spinner: %v\n", err)
			fmt.Fprintf(os.Stderr, "Progress updates will be disabled.\n")
			spinner = nil
		}
	}

	opts := append(cfg.Options(),
		option.WithLogger(logger),
		option.WithStripVersionInfo(*stripVer),
		option.WithExtractionProgress(CreateProgressCallback(spinner)),
	)
	d, err := disc.Open(flag.Arg(0), flag.Arg(1), opts...)
	if err != nil {
		fail(spinner, fmt.Sprintf("Failed to open image: %v", err))
	}
	defer d.Close()

	if err := d.ExtractAll(*outputDir); err != nil {
		fail(spinner, fmt.Sprintf("Failed to extract image: %v", err))
	}

	written := 0
	if *tracks {
		paths, err := d.ExtractTracks(filepath.Join(*outputDir, "[TRACKS]"), 0)
		if err != nil {
			fail(spinner, fmt.Sprintf("Failed to extract tracks: %v", err))
		}
		written = len(paths)
	}

	message := fmt.Sprintf(" All files extracted successfully to %s!", *outputDir)
	if written > 0 {
		message = fmt.Sprintf(" All files and %d tracks extracted successfully to %s!", written, *outputDir)
	}
	if spinner != nil {
		spinner.StopMessage(message)
		_ = spinner.Stop()
	} else {
		fmt.Println(message)
	}
}

func fail(spinner *yacspin.Spinner, message string) {
	if spinner != nil {
		spinner.StopFailMessage(message)
		_ = spinner.StopFail()
	} else {
		fmt.Fprintln(os.Stderr, message)
	}
	os.Exit(1)
}

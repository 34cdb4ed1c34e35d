package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/bgrewell/usage"
	disc "github.com/rstms/disc-kit"
	"github.com/rstms/disc-kit/pkg/config"
	"github.com/rstms/disc-kit/pkg/loader"
	"github.com/rstms/disc-kit/pkg/logging"
	"github.com/rstms/disc-kit/pkg/option"
)

func main() {

	u := usage.NewUsage(
		usage.WithApplicationName("discview"),
		usage.WithApplicationDescription("discview lists the tracks and the ISO9660 directory tree of a disc image given as image+cue, mdf+mds or a single image."),
	)
	help := u.AddBooleanOption("h", "help", false, "Show this help message", "optional", nil)
	verbose := u.AddBooleanOption("v", "verbose", false, "Print verbose output", "", nil)
	asYAML := u.AddBooleanOption("y", "yaml", false, "Print the listing as YAML", "", nil)
	watch := u.AddBooleanOption("w", "watch", false, "Keep running and reload the image when it changes", "", nil)
	image := u.AddArgument(1, "image", "Path to the disc image (.img, .bin, .iso, .mdf)", "")
	descriptor := u.AddArgument(2, "descriptor", "Optional path to the descriptor (.cue, .mds)", "")
	parsed := u.Parse()

	if !parsed {
		u.PrintError(fmt.Errorf("failed to parse arguments"))
		os.Exit(1)
	}

	if *help {
		u.PrintUsage()
		os.Exit(0)
	}

	if image == nil || *image == "" {
		u.PrintError(fmt.Errorf("location of the disc image <image> must be provided"))
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		u.PrintError(err)
		os.Exit(1)
	}
	level := cfg.Level()
	if *verbose {
		level = logging.LEVEL_DEBUG
	}
	logger := logging.NewLogger(logging.NewSimpleLogger(os.Stderr, level, true))

	descriptorPath := ""
	if descriptor != nil {
		descriptorPath = *descriptor
	}
	d, err := disc.Open(*image, descriptorPath, append(cfg.Options(), option.WithLogger(logger))...)
	if err != nil {
		u.PrintError(err)
		os.Exit(1)
	}
	defer d.Close()

	m, err := d.Manifest()
	if err != nil {
		u.PrintError(err)
		os.Exit(1)
	}

	if *asYAML {
		out, err := m.YAML()
		if err != nil {
			u.PrintError(err)
			os.Exit(1)
		}
		os.Stdout.Write(out)
	} else {
		printManifest(m)
	}

	if *watch {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := d.Watch(ctx); err != nil {
			u.PrintError(err)
			os.Exit(1)
		}
	}
}

func printManifest(m *loader.Manifest) {
	fmt.Printf("Volume:  %s\n", m.Label)
	fmt.Printf("Format:  %s\n", m.Format)
	fmt.Printf("Tracks:  %d\n", m.MaxTrack)
	for _, t := range m.Tracks {
		detail := ""
		switch {
		case t.Start != "":
			detail = " @ " + t.Start
		case t.Sectors > 0:
			detail = fmt.Sprintf(" (%d sectors)", t.Sectors)
		}
		fmt.Printf("  %02d %-10s%s\n", t.Number, t.Type, detail)
	}
	fmt.Println()
	for _, e := range m.Entries {
		depth := strings.Count(e.Path, "/") - 1
		name := e.Path[strings.LastIndex(e.Path, "/")+1:]
		if e.Directory {
			name += "/"
		}
		fmt.Printf("%s%-*s %10d  @%d\n", strings.Repeat("  ", depth), 40-2*depth, name, e.Size, e.Sector)
	}
}

package main

import (
	"os"

	disc "github.com/rstms/disc-kit"
	"github.com/rstms/disc-kit/pkg/config"
	"github.com/rstms/disc-kit/pkg/loader"
	"github.com/rstms/disc-kit/pkg/logging"
	"github.com/rstms/disc-kit/pkg/option"
	"github.com/spf13/cobra"
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "cdrip",
	Short: "List and extract the audio tracks of mixed-mode disc images",
	Long: `cdrip reads the track table of a disc image described by a cue sheet or a
media descriptor and writes its audio tracks as WAV files.

Examples:
  cdrip tracks game.bin game.cue
  cdrip extract game.mdf game.mds -o ./music
  cdrip extract -t 2 game.bin game.cue`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(tracksCmd)
	rootCmd.AddCommand(extractCmd)
}

// openDisc loads the disc named by args using the environment configuration and the verbose flag.
func openDisc(cmd *cobra.Command, args []string) (*loader.Disc, *config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	level := cfg.Level()
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = logging.LEVEL_DEBUG
	}
	logger := logging.NewLogger(logging.NewSimpleLogger(cmd.ErrOrStderr(), level, false))

	descriptor := ""
	if len(args) > 1 {
		descriptor = args[1]
	}
	d, err := disc.Open(args[0], descriptor, append(cfg.Options(), option.WithLogger(logger))...)
	if err != nil {
		return nil, nil, err
	}
	return d, cfg, nil
}

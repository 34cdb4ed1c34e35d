package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// extractCmd writes audio tracks as WAV files.
var extractCmd = &cobra.Command{
	Use:   "extract [image] [descriptor]",
	Short: "Write audio tracks as WAV files",
	Long: `Write the audio tracks of a disc image as TrackNN.wav files.

Data tracks are skipped. With --track only that track is written; asking for a
track that is not audio writes nothing.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, cfg, err := openDisc(cmd, args)
		if err != nil {
			return err
		}
		defer d.Close()

		outputDir, err := cmd.Flags().GetString("output")
		if err != nil {
			return fmt.Errorf("error getting output flag: %w", err)
		}
		if outputDir == "" {
			outputDir = cfg.OutputDir
		}
		only, err := cmd.Flags().GetInt("track")
		if err != nil {
			return fmt.Errorf("error getting track flag: %w", err)
		}

		written, err := d.ExtractTracks(outputDir, only)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d audio tracks written to %s\n", len(written), outputDir)
		for _, name := range written {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", name)
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().StringP("output", "o", "", "Output directory (default from DISCKIT_OUTPUT_DIR)")
	extractCmd.Flags().IntP("track", "t", 0, "Only extract this track number")
}

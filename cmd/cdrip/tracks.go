package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// tracksCmd prints the track table.
var tracksCmd = &cobra.Command{
	Use:   "tracks [image] [descriptor]",
	Short: "List the tracks of a disc image",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, _, err := openDisc(cmd, args)
		if err != nil {
			return err
		}
		defer d.Close()

		m, err := d.Manifest()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%s), %d tracks\n", m.Label, m.Format, m.MaxTrack)
		for _, t := range m.Tracks {
			kind := "data"
			if t.Audio {
				kind = "audio"
			}
			fmt.Fprintf(out, "  %02d  %-5s  %-10s  %s\n", t.Number, kind, t.Type, t.Start)
		}
		return nil
	},
}

package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/coreman2200/funtimes-replay/internal/api"
	"github.com/coreman2200/funtimes-replay/internal/app"
	"github.com/coreman2200/funtimes-replay/internal/play"
)

func validateCmd(rf *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and validate a sequence, then print its roster and frames",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rf)
			if err != nil {
				return err
			}
			seq, err := app.LoadSequence(cfg)
			if err != nil {
				return err
			}
			printSequence(cmd.OutOrStdout(), seq)
			return nil
		},
	}
}

func openSpaceCmd(rf *rootFlags) *cobra.Command {
	var frame int
	cmd := &cobra.Command{
		Use:   "openspace",
		Short: "Print the open-space table per keyframe",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rf)
			if err != nil {
				return err
			}
			seq, err := app.LoadSequence(cfg)
			if err != nil {
				return err
			}
			if frame > seq.LastIndex() {
				return fmt.Errorf("frame %d out of range (0..%d)", frame, seq.LastIndex())
			}
			for i := range seq.Frames {
				if frame >= 0 && i != frame {
					continue
				}
				printOpenSpace(cmd.OutOrStdout(), api.OpenSpaceAt(seq, i))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&frame, "frame", -1, "keyframe index; -1 prints all")
	return cmd
}

func printSequence(w io.Writer, seq *play.Sequence) {
	fmt.Fprintf(w, "%d players, %d frames, %.2fs\n", len(seq.Players), len(seq.Frames), seq.Duration())
	if seq.Summary != "" {
		fmt.Fprintf(w, "%s\n", seq.Summary)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTEAM\tSIDE\tPOS\tNAME")
	for _, p := range seq.Players {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", p.ID, p.Team, seq.SideOf(p.ID), p.Position, p.Name)
	}
	tw.Flush()
	fmt.Fprintln(w)

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FRAME\tTIME\tTRACKED\tBALL\tDESCRIPTION")
	for i, f := range seq.Frames {
		fmt.Fprintf(tw, "%d\t%.2f\t%d\t(%.1f, %.1f)\t%s\n", i, f.Time, len(f.Positions), f.Ball.X, f.Ball.Z, seq.Description(i))
	}
	tw.Flush()
}

func printOpenSpace(w io.Writer, f api.OpenSpaceFrame) {
	fmt.Fprintf(w, "frame %d  t=%.2fs\n", f.Frame, f.Time)
	rows := append([]api.OpenSpaceRow(nil), f.Players...)
	sort.SliceStable(rows, func(a, b int) bool { return rows[a].Meters > rows[b].Meters })

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPOS\tNAME\tMETERS\tFEET\tBAND")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%s\t%s\n", r.PlayerID, r.Position, r.Name, r.Meters, r.Label, strings.ReplaceAll(string(r.Band), "_", " "))
	}
	tw.Flush()
	fmt.Fprintln(w)
}

package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/coreman2200/funtimes-replay/internal/app"
	"github.com/coreman2200/funtimes-replay/internal/sweep"
)

func simCmd(rf *rootFlags) *cobra.Command {
	var (
		so      app.SimOptions
		plan    string
		presets []string
	)
	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Play the sequence headless and log frame summaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rf)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("fps") {
				so.FPS = cfg.FPS
			}
			switch sweep.Kind(plan) {
			case sweep.None:
				if len(presets) > 0 {
					so.Plan = sweep.Plan{Kind: sweep.Presets, Presets: presets}
				}
			case sweep.Keyframes:
				so.Plan = sweep.Plan{Kind: sweep.Keyframes}
			case sweep.Presets:
				if len(presets) == 0 {
					for _, p := range cfg.Presets() {
						presets = append(presets, p.ID)
					}
				}
				so.Plan = sweep.Plan{Kind: sweep.Presets, Presets: presets}
			default:
				return fmt.Errorf("unknown plan %q (keyframes | presets)", plan)
			}

			seq, err := app.LoadSequence(cfg)
			if err != nil {
				return err
			}
			res, err := app.Simulate(cmd.Context(), seq, app.EngineOptions(cfg), so, log.Logger)
			if err != nil {
				return err
			}
			log.Info().
				Int("ticks", res.Ticks).
				Dur("simulated", res.Simulated).
				Int("events", len(res.Events)).
				Str("camera", res.Final.Camera.Current).
				Msg("done")
			return nil
		},
	}
	cmd.Flags().IntVar(&so.FPS, "fps", 60, "ticks per simulated second")
	cmd.Flags().IntVar(&so.Every, "every", 15, "log every Nth scene")
	cmd.Flags().StringVar(&plan, "plan", "", "keyframes | presets")
	cmd.Flags().StringSliceVar(&presets, "preset", nil, "camera presets to visit during the play")
	cmd.Flags().BoolVar(&so.Realtime, "realtime", false, "pace ticks with the wall clock")
	return cmd
}

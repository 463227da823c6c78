package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/coreman2200/funtimes-replay/internal/app"
)

func serveCmd(rf *rootFlags) *cobra.Command {
	var (
		addr   string
		fps    int
		dark   bool
		preset string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the replay engine with the HTTP API and websocket stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rf)
			if err != nil {
				return err
			}
			f := cmd.Flags()
			if f.Changed("addr") {
				cfg.Addr = addr
			}
			if f.Changed("fps") {
				cfg.FPS = fps
			}
			if f.Changed("dark") {
				cfg.Dark = dark
			}
			if f.Changed("preset") {
				cfg.Camera.DefaultPreset = preset
			}

			srv, err := app.New(cfg, log.Logger)
			if err != nil {
				return err
			}
			log.Info().
				Int("frames", len(srv.Seq.Frames)).
				Float64("duration", srv.Seq.Duration()).
				Int("players", len(srv.Seq.Players)).
				Msg("sequence loaded")
			return srv.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "HTTP listen address")
	cmd.Flags().IntVar(&fps, "fps", 60, "engine ticks per second")
	cmd.Flags().BoolVar(&dark, "dark", false, "dark theme")
	cmd.Flags().StringVar(&preset, "preset", "", "initial camera preset")
	return cmd
}

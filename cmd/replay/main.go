// Command replay serves and inspects football play replays.
//
// Usage:
//
//	replay serve --config config.yaml --addr :8080
//	replay sim --preset defense_pov --preset birds_eye
//	replay sim --plan keyframes
//	replay validate --sequence plays/dejean_int.yaml
//	replay openspace --frame 3
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/coreman2200/funtimes-replay/internal/config"
)

// rootFlags are shared by every subcommand and override config and env.
type rootFlags struct {
	configPath string
	logLevel   string
	sequence   string
	sample     string
}

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	var rf rootFlags
	root := &cobra.Command{
		Use:           "replay",
		Short:         "Football play replay engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&rf.configPath, "config", "", "path to config.yaml")
	root.PersistentFlags().StringVar(&rf.logLevel, "log-level", "", "trace | debug | info | warn | error")
	root.PersistentFlags().StringVar(&rf.sequence, "sequence", "", "play file (.json, .yaml)")
	root.PersistentFlags().StringVar(&rf.sample, "sample", "", "embedded sample name")

	root.AddCommand(serveCmd(&rf))
	root.AddCommand(simCmd(&rf))
	root.AddCommand(validateCmd(&rf))
	root.AddCommand(openSpaceCmd(&rf))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("replay")
		stop()
		os.Exit(1)
	}
}

// loadConfig resolves config.yaml, then .env and REPLAY_* variables, then
// the root flags.
func loadConfig(rf *rootFlags) (*config.Config, error) {
	cfg, err := config.Load(rf.configPath)
	if err != nil {
		return nil, err
	}
	cfg.LoadEnv(".env")
	if rf.logLevel != "" {
		cfg.LogLevel = rf.logLevel
	}
	if rf.sequence != "" {
		cfg.Sequence = rf.sequence
	}
	if rf.sample != "" {
		cfg.Sample = rf.sample
		cfg.Sequence = ""
	}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level; using info")
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	return cfg, nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amirphl/simple-indicators/internal/config"
	"github.com/amirphl/simple-indicators/internal/utils"
)

// app carries the resolved config between the root command and its
// subcommands.
type app struct {
	cfg    config.Config
	out    io.Writer
	closer io.Closer
}

func (a *app) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

func newRootCmd(a *app) *cobra.Command {
	var configFile string
	root := &cobra.Command{
		Use:           "indicators",
		Short:         "Compute technical indicator profiles over OHLCV candles",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			if err := overlayFlags(cmd.Flags(), &cfg); err != nil {
				return err
			}
			a.cfg = cfg

			closer, err := utils.Configure(utils.LogOptions{Level: cfg.LogLevel, File: cfg.LogFile})
			if err != nil {
				return err
			}
			a.closer = closer
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configFile, "config", "", "path to YAML config file")
	addDataFlags(root.PersistentFlags())

	root.AddCommand(
		newPrepareCmd(a),
		newSyncCmd(a),
		newProfilesCmd(a),
		newIndicatorsCmd(a),
	)
	return root
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a := &app{out: os.Stdout}
	err := newRootCmd(a).ExecuteContext(ctx)
	if cerr := a.Close(); cerr != nil {
		fmt.Fprintln(os.Stderr, "closing log file:", cerr)
	}
	if err != nil {
		utils.GetLogger().Error(err)
		os.Exit(1)
	}
}

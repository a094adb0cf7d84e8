package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/lixenwraith/simple-chat/config"
	"github.com/lixenwraith/simple-chat/logging"
	"github.com/lixenwraith/simple-chat/network"
)

var version = "dev"

type options struct {
	ConfigPath string
	Addr       string
	Debug      bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, newRootCmd(&options{}),
		fang.WithVersion(version),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, "chat-server:", err)
		}),
	); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat-server",
		Short: "Broadcast relay for simple-chat clients",
		Long: `chat-server accepts TCP connections and forwards every chunk a peer
sends to all other connected peers, unchanged.`,
		Example: `  # Listen on the default 0.0.0.0:6969
  chat-server

  # Listen on loopback only with verbose logs
  chat-server --addr 127.0.0.1:7000 --debug`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			netCfg, err := loadSettings(cmd, opts)
			if err != nil {
				return err
			}

			level := slog.LevelInfo
			if opts.Debug {
				level = slog.LevelDebug
			}
			logging.Use(cmd.ErrOrStderr(), level)

			return network.NewServer(netCfg).ListenAndServe(cmd.Context())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.ConfigPath, "config", config.DefaultPath(), "Path to the TOML config file")
	f.StringVar(&opts.Addr, "addr", network.DefaultConfig().Listen, "Listen address host:port")
	f.BoolVarP(&opts.Debug, "debug", "d", false, "Enable debug logging")

	return cmd
}

// loadSettings reads the [network] section and applies --addr when given
func loadSettings(cmd *cobra.Command, opts *options) (*network.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	netCfg := cfg.NetworkConfig()
	if cmd.Flags().Changed("addr") {
		netCfg.Listen = network.ResolveAddress(opts.Addr, netCfg.Port)
	}
	return netCfg, nil
}

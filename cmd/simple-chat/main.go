package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/lixenwraith/simple-chat/client"
	"github.com/lixenwraith/simple-chat/config"
	"github.com/lixenwraith/simple-chat/logging"
	"github.com/lixenwraith/simple-chat/network"
	"github.com/lixenwraith/simple-chat/notify"
	"github.com/lixenwraith/simple-chat/terminal"
)

var version = "dev"

// options holds command-line flags; unset flags defer to the config file
type options struct {
	ConfigPath string
	Color      string
	Backend    string
	Sound      bool
	Debug      bool
	LogFile    string
}

func main() {
	// Ensure terminal is reset even if the client crashes
	defer func() {
		if r := recover(); r != nil {
			terminal.EmergencyReset(os.Stdout)
			fmt.Fprintf(os.Stderr, "\r\n\x1b[31mSIMPLE-CHAT CRASHED: %v\x1b[0m\r\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	if err := fang.Execute(ctx, newRootCmd(&options{}),
		fang.WithVersion(version),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, "simple-chat:", err)
		}),
	); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simple-chat",
		Short: "Terminal chat client",
		Long: `simple-chat is a full-screen terminal chat client.
Type /help inside the client for the list of commands.`,
		Example: `  # Start with defaults
  simple-chat

  # Force 256-color output through the tcell backend
  simple-chat --color 256 --backend tcell

  # Write a debug log next to the binary
  simple-chat --debug`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadSettings(cmd, opts)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.ConfigPath, "config", config.DefaultPath(), "Path to the TOML config file")
	f.StringVar(&opts.Color, "color", "auto", "Color mode: auto, truecolor, 256")
	f.StringVar(&opts.Backend, "backend", terminal.BackendANSI, "Terminal backend: ansi, tcell")
	f.BoolVar(&opts.Sound, "sound", false, "Chime on incoming messages")
	f.BoolVarP(&opts.Debug, "debug", "d", false, "Enable debug logging")
	f.StringVar(&opts.LogFile, "log-file", logging.DefaultFile, "Debug log path")

	return cmd
}

// loadSettings reads the config file and lays explicitly set flags over it
func loadSettings(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("color") {
		cfg.Color = opts.Color
	}
	if flags.Changed("backend") {
		cfg.Backend = opts.Backend
	}
	if flags.Changed("sound") {
		cfg.Sound = opts.Sound
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid flags")
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config, opts *options) error {
	logCloser, err := logging.Setup(opts.Debug, opts.LogFile)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	term, err := terminal.Open(cfg.Backend, terminal.ParseColorMode(cfg.Color))
	if err != nil {
		return err
	}
	if err := term.Init(); err != nil {
		return errors.Wrap(err, "initialize terminal")
	}
	// Normal exit terminal cleanup
	defer term.Fini()

	netCfg := cfg.NetworkConfig()
	clientOpts := client.Options{
		Title:          cfg.Title,
		Tick:           cfg.Tick.Duration,
		DefaultPort:    netCfg.Port,
		ConnectTimeout: netCfg.ConnectTimeout,
		Dial: func(ctx context.Context, addr string) (client.Conn, error) {
			c, err := network.Dial(ctx, addr, netCfg)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
	}

	if cfg.Sound {
		chime := notify.NewChime()
		if err := chime.Init(); err != nil {
			logging.Warn("main", "sound disabled: %v", err)
		} else {
			defer chime.Close()
			clientOpts.Notifier = chime
		}
	}

	logging.Info("main", "starting %s backend=%s color=%s", version, cfg.Backend, cfg.Color)
	return client.New(term, clientOpts).Run(ctx)
}

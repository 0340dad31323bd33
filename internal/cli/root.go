package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/VladimirGitsarev/Tinytosh/internal/autostart"
	"github.com/VladimirGitsarev/Tinytosh/internal/bridge"
	"github.com/VladimirGitsarev/Tinytosh/internal/config"
	"github.com/VladimirGitsarev/Tinytosh/internal/link"
	"github.com/VladimirGitsarev/Tinytosh/internal/logger"
	"github.com/VladimirGitsarev/Tinytosh/internal/ports"
	"github.com/VladimirGitsarev/Tinytosh/internal/sampler"
	"github.com/VladimirGitsarev/Tinytosh/internal/ui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	cfgFile string
)

// SetVersionInfo is called from main with ldflags values.
func SetVersionInfo(v, c, d string) {
	version, commit, date = v, c, d
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tinytosh",
		Short: "Stream host stats to a Tinytosh ESP32 display over serial",
		Long: `tinytosh samples CPU, memory, disk and network counters once per second
and writes them as JSON lines to the display. It finds the board on its own
and reconnects after it is unplugged.`,
		SilenceUsage: true,
		RunE:         runBridge,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/tinytosh/config.yaml)")
	config.AddFlags(root.Flags())

	root.AddCommand(newStatsCmd(), newPortsCmd(), newAutostartCmd(), newVersionCmd())
	return root
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func runBridge(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	var console io.Writer
	logPath := cfg.LogFile
	if cfg.Minimized {
		console = cmd.ErrOrStderr()
	} else if logPath == "" {
		logPath = config.DefaultLogFile()
	}
	log, closer, err := logger.New(cfg.LogLevel, logPath, console)
	if err != nil {
		return err
	}
	defer closer.Close()

	b := bridge.New(sampler.New(nil), ports.System{}, link.Serial{}, log)
	if cfg.Port != "" {
		if err := b.Connect(cfg.Port); err != nil {
			log.Warn().Err(err).Str("port", cfg.Port).Msg("configured port unavailable, falling back to discovery")
		}
	}

	sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return b.Run(ctx) })
	if !cfg.Minimized {
		g.Go(func() error {
			defer cancel()
			return ui.Run(ctx, b, loginItem(log))
		})
	}
	return g.Wait()
}

// loginItem returns nil when the executable cannot be located.
func loginItem(log zerolog.Logger) ui.Autostart {
	m, err := autostart.New()
	if err != nil {
		log.Debug().Err(err).Msg("autostart unavailable")
		return nil
	}
	return m
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tinytosh %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/davidbalbert/lsr/api"
	"github.com/davidbalbert/lsr/config"
	"github.com/davidbalbert/lsr/router"
	"github.com/davidbalbert/lsr/transport"
	"github.com/encodeous/tint"
	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

var version = "dev"

var (
	configPath  string
	journalPath string
	socketPath  string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:     "lsrd <router-id> <nse-host> <nse-port> <router-port>",
	Short:   "Run one link-state router against the network emulator",
	Version: version,
	Args:    cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := config.Load(configPath)
		if err != nil {
			return err
		}

		if err := conf.ApplyArgs(args); err != nil {
			return err
		}

		if cmd.Flags().Changed("journal") {
			conf.Journal = journalPath
		}

		if cmd.Flags().Changed("socket") {
			conf.APISocket = socketPath
		}

		if err := conf.Validate(); err != nil {
			return err
		}

		// Past this point errors come from the router, not the command line.
		cmd.SilenceUsage = true

		return run(conf)
	},
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to lsr.yaml")
	rootCmd.Flags().StringVar(&journalPath, "journal", "", "protocol journal (default router<id>.log)")
	rootCmd.Flags().StringVar(&socketPath, "socket", "", "serve the API on this unix socket")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every packet")
}

func newLogger(conf *config.Config) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handlers := []slog.Handler{
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:        level,
			TimeFormat:   "15:04:05.000",
			NoColor:      !term.IsTerminal(int(os.Stderr.Fd())),
			CustomPrefix: conf.RouterID.String(),
		}),
	}

	closer := func() {}

	if conf.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(conf.LogFile), 0o755); err != nil {
			return nil, nil, err
		}

		f, err := os.OpenFile(conf.LogFile, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
		if err != nil {
			return nil, nil, err
		}

		handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
		closer = func() { f.Close() }
	}

	return slog.New(slogmulti.Fanout(handlers...)), closer, nil
}

func run(conf *config.Config) error {
	logger, closeLog, err := newLogger(conf)
	if err != nil {
		return fmt.Errorf("log file: %w", err)
	}
	defer closeLog()

	logger.Info("starting lsrd", "version", version, "routers", conf.Routers, "framing-errors", conf.FramingErrors.String())

	jf, err := os.Create(conf.JournalPath())
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	defer jf.Close()

	nse, err := transport.Resolve(conf.NSEHost, conf.NSEPort)
	if err != nil {
		return err
	}

	conn, err := transport.Listen(conf.RouterPort, nse, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	journal := router.NewJournal(conf.RouterID, jf)

	r, err := router.New(conf.RouterID, conn, router.Options{
		Routers:       conf.Routers,
		FramingPolicy: conf.FramingErrors,
		Logger:        logger,
		Journal:       journal,
	})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	bootCtx := ctx
	if conf.BootstrapTimeout > 0 {
		var bootCancel context.CancelFunc
		bootCtx, bootCancel = context.WithTimeout(ctx, conf.BootstrapTimeout)
		defer bootCancel()
	}

	if err := r.Bootstrap(bootCtx); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return r.Run(ctx)
	})

	if conf.APISocket != "" {
		server := api.NewServer(r.Snapshots(), conf.APISocket, version, logger)
		g.Go(func() error {
			return server.Run(ctx)
		})
	}

	err = g.Wait()

	if jerr := journal.Err(); jerr != nil {
		logger.Warn("journal incomplete", "path", conf.JournalPath(), "err", jerr)
	}

	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

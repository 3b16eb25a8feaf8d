package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/161chihuahuas/mascara"
	"github.com/161chihuahuas/mascara/internal/config"
	"github.com/161chihuahuas/mascara/internal/daemonutil"
	"github.com/161chihuahuas/mascara/internal/obslog"
	"github.com/161chihuahuas/mascara/transport"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the daemon, refusing to start if a live instance already owns this name",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&configPath, "config", "", "path to a YAML EngineConfig document (defaults if omitted)")
}

func stateDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	dir = dir + "/mascara-echo"
	return dir, os.MkdirAll(dir, 0755)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("mascara-echo: %w", err)
		}
		cfg = loaded
	}

	dir, err := stateDir()
	if err != nil {
		return fmt.Errorf("mascara-echo: state dir: %w", err)
	}

	if existing, err := daemonutil.ReadLockFile(dir, instance); err == nil && existing != nil {
		if !daemonutil.IsStale(existing) {
			return fmt.Errorf("mascara-echo: instance %q already running (pid %d)", instance, existing.PID)
		}
		daemonutil.CleanupSocket(existing.Addr)
	}

	addr := daemonutil.SocketPath(instance)
	daemonutil.CleanupSocket(addr)

	logPath := daemonutil.LogPath(dir, instance)
	daemonutil.TruncateLogFile(logPath, 10*1024*1024)
	logger, err := obslog.NewFileLogger(logPath, obslog.ParseLevel(cfg.LogLevel))
	if err != nil {
		return fmt.Errorf("mascara-echo: open log: %w", err)
	}
	defer logger.Close()

	if err := daemonutil.WriteLockFile(dir, instance, os.Getpid(), addr); err != nil {
		return fmt.Errorf("mascara-echo: write lock file: %w", err)
	}
	defer daemonutil.RemoveLockFile(dir, instance)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverOpts := []mascara.ServerOption{
		mascara.WithLogger(logger),
		mascara.WithScheme(cfg.Scheme),
		mascara.WithMaxConnections(cfg.MaxConnections),
	}
	if cfg.Strict {
		serverOpts = append(serverOpts, mascara.WithStrictFraming())
	}
	server := mascara.NewServer(serverOpts...)
	registerHandlers(server, logger, cancel)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sig:
			cancel()
		case <-ctx.Done():
		}
	}()

	logger.Info("mascara-echo: listening on %s", addr)
	err = server.Listen(ctx, transport.Unix(), addr)
	daemonutil.CleanupSocket(addr)
	return err
}

func registerHandlers(server *mascara.Server, logger obslog.Logger, shutdown context.CancelFunc) {
	server.Handle("echo", func(params []interface{}, done mascara.Complete) {
		if len(params) == 0 {
			done(nil, nil)
			return
		}
		done(nil, params[0])
	})

	server.Handle("stream", func(params []interface{}, done mascara.Complete) {
		count := 5
		if len(params) > 0 {
			if n, ok := params[0].(float64); ok {
				count = int(n)
			}
		}
		s := mascara.NewReadableStream()
		done(nil, s)
		go func() {
			for i := 0; i < count; i++ {
				s.Push(i)
				time.Sleep(50 * time.Millisecond)
			}
			s.Close()
		}()
	})

	server.Handle("status", func(params []interface{}, done mascara.Complete) {
		done(nil, "ok")
	})

	server.Handle("shutdown", func(params []interface{}, done mascara.Complete) {
		done(nil, "shutting down")
		go shutdown()
	})
}

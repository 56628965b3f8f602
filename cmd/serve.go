package cmd

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bioreason/bioreason/internal/dependency"
	"github.com/bioreason/bioreason/internal/server"
	"github.com/bioreason/bioreason/internal/shared/cmdutils"
)

var (
	servePort    int
	serveHost    string
	serveTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve queries over a WebSocket JSON API",
	Long: `Serve queries over a WebSocket JSON API at ws://host:port/ws.

Each text frame is a request {"id", "query", "mode", "classifier"}; each reply
is {"type": "result"|"error", "id", "sessionId", "mode", "answer", ...}.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Listen port (default from config)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Listen host (default from config)")
	serveCmd.Flags().DurationVar(&serveTimeout, "timeout", 5*time.Minute, "Deadline for one query")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}

	container, err := dependency.New(cfg, dependency.Options{})
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	srv := server.New(addr, container.Coordinator(), container.Classifier, serveTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("%s Serving queries on ws://%s/ws. Press Ctrl+C to stop.\n", cmdutils.Logo, addr)
	if err := srv.Run(ctx); err != nil {
		return err
	}
	fmt.Println("\nShutdown complete.")
	return nil
}

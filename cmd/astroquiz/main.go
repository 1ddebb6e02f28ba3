package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/astroquiz/astroquiz/internal/app/runtime"
	"github.com/astroquiz/astroquiz/internal/config"
	"github.com/astroquiz/astroquiz/pkg/logger"
)

func main() {
	envFile := flag.String("env", "", "Path to an env file (default: ./.env when present)")
	addr := flag.String("addr", "", "Listen address host:port (overrides ASTROQUIZ_HOST/ASTROQUIZ_PORT)")
	staticDir := flag.String("static", "", "Directory holding the built web client (overrides ASTROQUIZ_STATIC_DIR)")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "astroquiz: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		if err := applyAddr(&cfg.Server, *addr); err != nil {
			fmt.Fprintf(os.Stderr, "astroquiz: %v\n", err)
			os.Exit(2)
		}
	}
	if *staticDir != "" {
		cfg.Server.StaticDir = *staticDir
	}

	log := logger.New(cfg.Logging.Logger()).Component("astroquiz")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := runtime.NewApplication(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialise")
	}

	if err := rt.Run(ctx); err != nil {
		log.WithError(err).Error("server error")
	}

	log.Info("shutting down")
	if err := rt.Shutdown(context.Background()); err != nil {
		log.WithError(err).Fatal("shutdown failed")
	}
}

func applyAddr(srv *config.ServerConfig, addr string) error {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid -addr %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("invalid -addr port %q", portStr)
	}
	srv.Host = host
	srv.Port = port
	return nil
}

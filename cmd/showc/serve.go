package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/lightdance/showcompiler/internal/api"
	"github.com/lightdance/showcompiler/internal/channel"
	"github.com/lightdance/showcompiler/internal/config"
	"github.com/lightdance/showcompiler/internal/db"
	"github.com/lightdance/showcompiler/internal/show"
)

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cf := addConfigFlags(fs)
	listen := fs.String("listen", "", "Listen address (overrides config)")
	debug := fs.Bool("debug", false, "Mount the /debug/ admin routes")
	fs.Parse(args)

	cfg, err := cf.load()
	if err != nil {
		return err
	}
	if *listen != "" {
		cfg.SetListen(*listen)
	}
	if *debug {
		cfg.SetDebugRoutes(true)
	}

	store, err := db.NewDB(cfg.GetDBPath())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return serve(ctx, newHTTPServer(cfg, store))
}

// newHTTPServer wires the compiler and API onto an http.Server.
func newHTTPServer(cfg *config.ServerConfig, store *db.DB) *http.Server {
	compiler := show.NewCompiler(store, channel.Default(), show.Options{
		AlphaMax: cfg.GetAlphaMax(),
		Workers:  cfg.GetPartWorkers(),
	})
	return &http.Server{
		Addr:              cfg.GetListen(),
		Handler:           api.NewServer(compiler, store, cfg).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// serve runs server until ctx is cancelled, then shuts it down.
func serve(ctx context.Context, server *http.Server) error {
	errc := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}

	log.Printf("Graceful shutdown complete")
	return nil
}

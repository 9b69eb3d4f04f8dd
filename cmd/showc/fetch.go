package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lightdance/showcompiler/internal/api"
	"github.com/lightdance/showcompiler/internal/httputil"
	"github.com/lightdance/showcompiler/internal/security"
	"github.com/lightdance/showcompiler/internal/show"
)

// runFetch downloads both artifacts for the request in --request and
// writes them under --out. hc is nil outside tests.
func runFetch(args []string, hc httputil.HTTPClient) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	server := fs.String("server", "http://localhost:8080", "Show compiler base URL")
	requestPath := fs.String("request", "", "JSON compile request file")
	outDir := fs.String("out", ".", "Directory to write artifacts to")
	timeout := fs.Duration("timeout", 30*time.Second, "Overall request timeout")
	fs.Parse(args)

	if *requestPath == "" {
		return fmt.Errorf("--request is required")
	}
	raw, err := os.ReadFile(*requestPath)
	if err != nil {
		return fmt.Errorf("failed to read request: %w", err)
	}
	var req show.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return fmt.Errorf("invalid request %s: %w", *requestPath, err)
	}
	if req.Dancer == "" {
		return fmt.Errorf("request %s names no dancer", *requestPath)
	}

	if hc == nil {
		hc = httputil.NewStandardClient(&http.Client{Timeout: *timeout})
	}
	client := api.NewClient(hc, *server)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	artifacts := []string{api.ControlArtifact, api.FrameArtifact}
	bufs := make([][]byte, len(artifacts))
	g, gctx := errgroup.WithContext(ctx)
	for i, artifact := range artifacts {
		g.Go(func() error {
			buf, err := client.Fetch(gctx, artifact, &req)
			if err != nil {
				return err
			}
			bufs[i] = buf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}
	for i, artifact := range artifacts {
		path := filepath.Join(*outDir, security.ArtifactFilename(req.Dancer, artifact))
		if err := os.WriteFile(path, bufs[i], 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		log.Printf("wrote %s (%d bytes)", path, len(bufs[i]))
	}
	return nil
}

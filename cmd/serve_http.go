package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lockerstudio/itemshop-scrap/api"
	mcpserver "github.com/lockerstudio/itemshop-scrap/mcp"
	"github.com/lockerstudio/itemshop-scrap/internal/snapshot"
)

var serveHTTPCmd = &cobra.Command{
	Use:   "serve-http",
	Short: "Start the REST + MCP HTTP server with scheduled re-scrapes",
	RunE:  runServeHTTP,
}

func init() {
	serveHTTPCmd.Flags().String("port", "", "HTTP port (default from $PORT or 8080)")
	serveHTTPCmd.Flags().Bool("scrape-on-start", false, "Run a scrape before serving when no snapshot exists")
	rootCmd.AddCommand(serveHTTPCmd)
}

func runServeHTTP(cmd *cobra.Command, args []string) error {
	port := cfg.HTTPPort
	if p, _ := cmd.Flags().GetString("port"); p != "" {
		port = p
	}
	scrapeOnStart, _ := cmd.Flags().GetBool("scrape-on-start")

	scraper, err := buildScraper()
	if err != nil {
		return err
	}
	store := snapshot.New(cfg.SnapshotPath)
	if err := store.Load(); err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, ok := store.Catalog(); !ok && scrapeOnStart {
		log.Println("no snapshot found, scraping before serving...")
		if err := refreshSnapshot(ctx, scraper, store); err != nil {
			log.Printf("initial scrape failed, serving without data: %v", err)
		}
	}

	refresh := func(ctx context.Context) error {
		return refreshSnapshot(ctx, scraper, store)
	}

	mux := http.NewServeMux()
	mux.Handle("/", api.NewServer(store, refresh, cfg.APIKey).Handler())
	mux.Handle("/mcp", mcpserver.HTTPHandler(store, cfg.APIKey))

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Schedule, func() {
		log.Println("scheduled shop update starting...")
		if err := refresh(ctx); err != nil {
			log.Printf("scheduled update failed, keeping previous snapshot: %v", err)
			return
		}
		log.Println("scheduled shop update done")
	}); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", cfg.Schedule, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("item-shop server listening on :%s (schedule %q)", port, cfg.Schedule)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		scheduler.Start()
		<-ctx.Done()
		scheduler.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/steveyegge/projctl/internal/api"
)

var (
	serveAddr    string
	serveOrigins string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the workspace over HTTP",
	Long: `Serve the tracker as a JSON HTTP API.

The server holds the workspace lock while it runs. Pending changes are saved
on shutdown (Ctrl+C or SIGTERM), or after every change when autosave is on.

Routes:
  GET  /health, /stats, /snapshot      POST /snapshot
  POST /commands                       {"line": "createuser alice"}
  /users, /projects/{project}/tasks/{task}/subtasks/...`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sess, err := openSession(ctx, true)
		if err != nil {
			return err
		}
		// The signal context is done by the time the deferred close runs
		defer closeSession(context.Background(), sess)

		addr := cfg.HTTP.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		var origins []string
		if serveOrigins != "" {
			for _, o := range strings.Split(serveOrigins, ",") {
				if o = strings.TrimSpace(o); o != "" {
					origins = append(origins, o)
				}
			}
		}

		server := api.New(sess, logger, api.Options{
			Rate:           cfg.HTTP.Rate,
			Burst:          cfg.HTTP.Burst,
			AllowedOrigins: origins,
		})
		httpServer := &http.Server{
			Addr:              addr,
			Handler:           server.Handler(),
			ReadTimeout:       cfg.HTTP.ReadTimeout(),
			ReadHeaderTimeout: cfg.HTTP.ReadTimeout(),
			WriteTimeout:      cfg.HTTP.WriteTimeout(),
		}

		green := color.New(color.FgGreen).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()
		fmt.Printf("%s Serving %s on %s\n", green("✓"), cyan(sess.Describe()), cyan("http://"+addr))
		fmt.Printf("  Press Ctrl+C to stop\n\n")

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			logger.Info("shutting down http server")
			return httpServer.Shutdown(shutdownCtx)
		})

		err = g.Wait()
		fmt.Println("\nServer stopped")
		return err
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides http.addr)")
	serveCmd.Flags().StringVar(&serveOrigins, "cors-origins", "", "Comma-separated origins allowed by CORS")
	rootCmd.AddCommand(serveCmd)
}

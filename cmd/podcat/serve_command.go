package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"podcat/internal/auth"
	"podcat/internal/config"
	"podcat/internal/content"
	"podcat/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var listenFlag string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the content API and RSS feed over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := ctx.logger(cmd, true)

			listenAddr := listenFlag
			if listenAddr == "" {
				listenAddr = config.ListenAddr()
			}
			if err := config.ValidateListenAddr(listenAddr); err != nil {
				return fmt.Errorf("invalid listen address %q: %w", listenAddr, err)
			}

			debounce := config.RefreshDebounce()

			opts, err := ctx.contentOptions()
			if err != nil {
				return err
			}
			opts.Watch = true
			opts.Debounce = debounce

			store, err := content.NewStore(opts, logger)
			if err != nil {
				return fmt.Errorf("initialise content store: %w", err)
			}
			defer func() {
				if err := store.Close(); err != nil {
					logger.Printf("error closing content store: %v", err)
				}
			}()

			tokenFile, tokensEnabled, err := config.ResolveTokenFile()
			if err != nil {
				return fmt.Errorf("resolve token file: %w", err)
			}

			// A nil *auth.TokenStore must not end up inside the interface.
			var validator server.TokenValidator
			if tokensEnabled {
				tokenStore, err := auth.NewTokenStore(tokenFile, debounce, logger)
				if err != nil {
					return fmt.Errorf("initialise token store: %w", err)
				}
				defer func() {
					if err := tokenStore.Close(); err != nil {
						logger.Printf("error closing token store: %v", err)
					}
				}()
				validator = tokenStore
			}

			site, err := config.ResolveSiteMetadata()
			if err != nil {
				return fmt.Errorf("resolve site metadata: %w", err)
			}

			handler := server.New(store, validator, server.Config{
				Feed: server.FeedMetadata{
					Title:       site.Title,
					Description: site.Description,
					Language:    site.Language,
					Author:      site.Author,
					Link:        site.Link,
				},
				RecentCount:       config.RecentCount(),
				AllowedExtensions: config.AllowedExtensions(),
			}, logger)

			httpServer := &http.Server{
				Addr:              listenAddr,
				Handler:           handler,
				ReadHeaderTimeout: 5 * time.Second,
				WriteTimeout:      30 * time.Second,
				IdleTimeout:       120 * time.Second,
			}

			sigCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go func() {
				<-sigCtx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
				defer cancel()
				if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Printf("graceful shutdown error: %v", err)
				}
			}()

			source := "embedded content"
			if opts.Dir != "" {
				source = opts.Dir
			}
			logger.Printf("listening on %s (content: %s)", listenAddr, source)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server error: %w", err)
			}
			logger.Println("shutdown complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&listenFlag, "listen", "", "Listen address (default: $PODCAT_LISTEN_ADDR or 127.0.0.1:8080)")
	return cmd
}

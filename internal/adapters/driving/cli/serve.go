package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oswaldlabs/sitechat/internal/adapters/driven/analytics"
	"github.com/oswaldlabs/sitechat/internal/adapters/driven/faqsource"
	"github.com/oswaldlabs/sitechat/internal/adapters/driven/llm/openai"
	"github.com/oswaldlabs/sitechat/internal/adapters/driven/storage/memory"
	"github.com/oswaldlabs/sitechat/internal/adapters/driven/watch"
	"github.com/oswaldlabs/sitechat/internal/adapters/driving/httpapi"
	"github.com/oswaldlabs/sitechat/internal/analyzer"
	"github.com/oswaldlabs/sitechat/internal/config"
	"github.com/oswaldlabs/sitechat/internal/connectors/site"
	"github.com/oswaldlabs/sitechat/internal/core/ports/driven"
	"github.com/oswaldlabs/sitechat/internal/core/services"
	"github.com/oswaldlabs/sitechat/internal/logger"
)

// shutdownGrace bounds how long in-flight requests get on shutdown.
const shutdownGrace = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat HTTP server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		return runServer(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServer(ctx context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tokenizer := analyzer.NewTokenizer()
	store := memory.NewIndexStore(tokenizer)
	fetcher := site.NewFetcher(cfg.Site.FetchTimeout, cfg.Site.FetchRate)
	faqs := faqsource.NewSource(cfg.FAQ.EntriesPath, cfg.FAQ.MarkdownPath)

	coordinator := services.NewCoordinator(store, fetcher, faqs, services.CoordinatorOptions{
		FetchConcurrency: cfg.Site.FetchConcurrency,
		SiteMaxAge:       cfg.Site.MaxAge,
	})
	retriever := services.NewRetriever(store, tokenizer, services.Weights{
		Title: cfg.Retrieval.TitleWeight,
		Tag:   cfg.Retrieval.TagWeight,
		Text:  cfg.Retrieval.TextWeight,
	})

	capturer := analytics.NewCapturer(cfg.Analytics.BufferSize, nil)
	defer capturer.Close()

	var answerer driven.Answerer
	if cfg.OpenAI.APIKey != "" {
		a, err := openai.NewAnswerer(openai.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
		})
		if err != nil {
			return fmt.Errorf("configure answerer: %w", err)
		}
		answerer = a
		logger.Info("answer generation enabled (model %s)", a.ModelName())
	} else {
		logger.Info("no OpenAI key configured, responses carry sources only")
	}

	if cfg.FAQ.Watch && cfg.FAQ.MarkdownPath != "" {
		watcher, err := watch.NewMarkdownWatcher(cfg.FAQ.MarkdownPath, coordinator)
		if err != nil {
			return fmt.Errorf("watch faq markdown: %w", err)
		}
		defer watcher.Close()
		go watcher.Run(ctx)
	}

	handler := httpapi.NewHandler(coordinator, retriever, answerer, capturer, httpapi.Options{
		Origin: cfg.Site.Origin,
		Paths:  cfg.Site.Paths,
		TopK:   cfg.Retrieval.TopK,
	})

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: handler.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

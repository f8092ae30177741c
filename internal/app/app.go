package app

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/currentspace/mychat-api/internal/auth"
	"github.com/currentspace/mychat-api/internal/config"
	"github.com/currentspace/mychat-api/internal/core"
	"github.com/currentspace/mychat-api/internal/core/llm"
	"github.com/currentspace/mychat-api/internal/metrics"
	"github.com/currentspace/mychat-api/internal/store"
)

const sweepInterval = time.Hour

type App struct {
	History  store.ConversationStore
	Registry *core.Registry
	Server   *Server

	sweeper *store.PostgresStore
	closers []func() error
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Registry: core.NewRegistry()}

	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.History = pg
		a.sweeper = pg
		log.Println("Chat history store initialized and ready.")
	} else {
		a.History = store.NewMemoryStore()
		log.Println("No DATABASE_URL; chat history kept in memory only.")
	}

	if cfg.OpenAIAPIKey != "" {
		a.Registry.Register(llm.NewOpenAILLM(cfg.OpenAIAPIKey, cfg.OpenAIModel, ""))
	}
	if cfg.AnthropicAPIKey != "" {
		a.Registry.Register(llm.NewAnthropicLLM(cfg.AnthropicAPIKey, cfg.AnthropicModel, ""))
	}
	if cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewGeminiLLM(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		a.Registry.Register(gemini)
		a.closers = append(a.closers, gemini.Close)
	}
	log.Printf("Providers configured: %v", a.Registry.Names())

	verifier := auth.NewGoogleVerifier(cfg.GoogleClientID, cfg.GoogleVerifySignature)
	collector := metrics.NewCollector(prometheus.DefaultRegisterer)

	a.Server = NewServer(cfg, verifier, a.History, a.Registry, collector)
	return a, nil
}

// Run serves HTTP and sweeps expired history until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.Server.Start(ctx)
	})
	if a.sweeper != nil {
		g.Go(func() error {
			err := a.sweeper.RunSweeper(ctx, sweepInterval)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	return g.Wait()
}

func (a *App) Close() {
	if a.History != nil {
		_ = a.History.Close()
	}
	for _, c := range a.closers {
		_ = c()
	}
}

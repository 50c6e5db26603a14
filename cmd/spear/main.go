// spear is the S.P.E.A.R backend: it turns natural-language prompts into
// HTML/CSS/JS bundles and answers design chat, routing each request to the
// right model provider.
//
//	POST /generate-code  prompt -> formatted code bundle (OpenAI)
//	POST /chat           message -> code update (OpenAI) or text reply (Gemini)
//	GET  /api/status     liveness + connected feed clients
//	GET  /ws             WebSocket activity feed of orchestration events
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Rohith-AI-HUB/S.P.E.A.R-Backend/internal/config"
	"github.com/Rohith-AI-HUB/S.P.E.A.R-Backend/internal/llm"
	"github.com/Rohith-AI-HUB/S.P.E.A.R-Backend/internal/mq"
	"github.com/Rohith-AI-HUB/S.P.E.A.R-Backend/internal/orchestrator"
	"github.com/Rohith-AI-HUB/S.P.E.A.R-Backend/internal/server"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("DEBUG") == "1" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	_ = godotenv.Load()

	cfg := config.FromEnv()
	if cfg.OpenAIKey == "" {
		log.Fatal().Str("key", "OPENAI_API_KEY").Msg("required env var missing")
	}
	if cfg.GeminiKey == "" {
		log.Fatal().Str("key", "GEMINI_API_KEY").Msg("required env var missing")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info().Msg("shutdown signal, stopping")
		cancel()
	}()

	hub := server.NewHub()

	// Audit bus is optional: without AMQP_URL events only reach the
	// WebSocket feed. bus stays a nil interface, never a typed-nil broker.
	var bus server.Publisher
	if cfg.AMQPURL != "" {
		broker, err := mq.New(cfg.AMQPURL)
		if err != nil {
			log.Fatal().Err(err).Msg("mq connect")
		}
		defer broker.Close()
		bus = broker
	}
	audit := server.NewAudit(hub, bus)

	structured := llm.NewOpenAI(cfg.OpenAIKey, cfg.OpenAIModel, cfg.ProviderTimeout, cfg.ProviderAttempts)
	conversational := llm.NewGemini(cfg.GeminiKey, cfg.GeminiModel, cfg.ProviderTimeout, cfg.ProviderAttempts)

	orch := orchestrator.New(structured, conversational, orchestrator.WithEmitter(audit))
	srv := server.New(cfg, orch, hub)

	log.Info().
		Str("port", cfg.Port).
		Str("structured_model", cfg.OpenAIModel).
		Str("conversational_model", cfg.GeminiModel).
		Bool("audit_bus", bus != nil).
		Msg("spear backend online")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Run(ctx) })
	g.Go(func() error { return srv.Run(ctx) })

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Fatal().Err(err).Msg("server exited")
	}
}

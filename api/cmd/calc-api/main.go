package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"mathcalc/api/internal/calc"
	"mathcalc/api/internal/calc/gemini"
	"mathcalc/api/internal/calc/openai"
	"mathcalc/api/internal/config"
	"mathcalc/api/internal/handle"
	"mathcalc/api/internal/httpserver"
	"mathcalc/api/internal/logger"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("cannot initialize logger: %v", err)
	}
	defer zl.Sync()
	sugar := zl.Sugar()

	sugar.Infow("starting calculator api",
		"addr", cfg.Addr(),
		"env", cfg.Env,
		"provider", cfg.ModelProvider,
		"model", cfg.Model(),
		"strict_parse", cfg.StrictParse,
		"allowed_origins", cfg.AllowedOrigins,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engs := &calc.Engines{}
	if cfg.GeminiAPIKey != "" {
		engs.Gemini = gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	if cfg.OpenAIAPIKey != "" {
		engs.OpenAI = openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}
	engine, err := engs.GetEngine(cfg.ModelProvider)
	if err != nil {
		sugar.Fatalw("no model engine", "error", err)
	}
	if cfg.StartupCheck {
		pingCtx, cancel := context.WithTimeout(ctx, cfg.ModelTimeout)
		err := engine.Ping(pingCtx)
		cancel()
		if err != nil {
			sugar.Fatalw("model connection check failed", "engine", engine.Name(), "error", err)
		}
		sugar.Infow("model connection verified", "engine", engine.Name())
	}

	analyzer := calc.NewAnalyzer(engine, zl, calc.AnalyzerOptions{
		Strict:  cfg.StrictParse,
		Timeout: cfg.ModelTimeout,
	})
	h := handle.New(analyzer, engine, zl, handle.Options{
		Version:        version,
		PingTimeout:    cfg.ModelTimeout,
		MaxImagePixels: cfg.MaxImagePixels,
	})

	r := httpserver.NewEngine(cfg, zl)
	h.Register(r)

	if err := httpserver.Run(ctx, cfg.Addr(), r, zl); err != nil {
		sugar.Fatalw("server stopped", "error", err)
	}
	sugar.Info("application shut down")
}

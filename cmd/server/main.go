// Command server is the clinicrag engine's process entrypoint: it loads
// configuration, wires the record store, vector index, object store,
// provider capabilities and the C10 façade, then serves the §6 HTTP surface.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"clinicrag/internal/api"
	"clinicrag/internal/config"
	"clinicrag/internal/diarization"
	"clinicrag/internal/extraction"
	"clinicrag/internal/httpapi"
	"clinicrag/internal/ingestion"
	"clinicrag/internal/objectstore"
	"clinicrag/internal/observability"
	"clinicrag/internal/providers"
	"clinicrag/internal/records"
	"clinicrag/internal/vectorstore"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.Logging.LogPath, cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.OTel.Enabled {
		shutdown, err := observability.InitOTel(ctx, cfg.OTel)
		if err != nil {
			log.Fatal().Err(err).Msg("init otel")
		}
		defer func() {
			shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shCtx)
		}()
	}

	facade, err := build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("build engine")
	}

	server := httpapi.New(facade)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(addr)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("http server exited")
		}
	}

	shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// build constructs every backend named in SPEC_FULL.md's persisted-state and
// provider sections and wires them into the façade.
func build(ctx context.Context, cfg *config.Config) (*api.Facade, error) {
	store, err := records.New(ctx, cfg.Database.Backend, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("record store: %w", err)
	}

	vectors, err := vectorstore.New(ctx, cfg.Vector)
	if err != nil {
		return nil, fmt.Errorf("vector store: %w", err)
	}

	objects, err := objectstore.New(ctx, cfg.ObjectStore)
	if err != nil {
		return nil, fmt.Errorf("object store: %w", err)
	}

	httpClient := observability.NewHTTPClient(nil)

	asr, err := providers.NewASR(cfg.Providers.ASR, httpClient)
	if err != nil {
		return nil, fmt.Errorf("asr provider: %w", err)
	}
	llm, err := providers.NewLLM(cfg.Providers.LLM, httpClient)
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	embedder, err := providers.NewEmbedder(cfg.Providers.Embedder, cfg.Vector.Dimensions, httpClient)
	if err != nil {
		return nil, fmt.Errorf("embedder provider: %w", err)
	}
	ocr := providers.NewOCR(cfg.Providers.OCR, httpClient)

	extractor := extraction.New(llm)

	orchestrator := ingestion.New(
		store, objects, vectors, asr, extractor, embedder, ocr,
		diarization.Config{MinSegmentSeconds: cfg.Diarization.MinSegmentSeconds},
		ingestion.Config{MaxWorkers: cfg.Ingestion.MaxWorkers, QueueSize: cfg.Ingestion.QueueSize},
	)

	healthDeps := map[string]api.HealthChecker{
		"object_store": objects,
		"records":      api.RecordStoreHealthChecker{Store: store},
		"embedder":     api.EmbedderHealthChecker{Embedder: embedder},
	}

	return api.New(store, vectors, orchestrator, llm, embedder, healthDeps), nil
}

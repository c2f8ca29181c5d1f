package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/samvad-hq/samvad-wiki-quiz/internal/config"
	"github.com/samvad-hq/samvad-wiki-quiz/internal/logger"
	"github.com/samvad-hq/samvad-wiki-quiz/internal/metrics"
	"github.com/samvad-hq/samvad-wiki-quiz/internal/pipeline"
	"github.com/samvad-hq/samvad-wiki-quiz/internal/quiz"
	"github.com/samvad-hq/samvad-wiki-quiz/internal/scraper"
	"github.com/samvad-hq/samvad-wiki-quiz/internal/storage"
	"github.com/samvad-hq/samvad-wiki-quiz/pkg/httpclient"
	"github.com/samvad-hq/samvad-wiki-quiz/pkg/publishers"
	"github.com/samvad-hq/samvad-wiki-quiz/pkg/sources"
)

// Runtime holds the long-lived collaborators shared by the server and the one-shot command:
// the source profiles, the store, the event fanout and the pipeline built on top of them.
type Runtime struct {
	cfg       *config.Config
	sourceReg *sources.Registry
	fanout    *publishers.Fanout
	store     storage.Store
	service   *pipeline.Service
	log       logger.Logger
}

// NewRuntime builds a runtime from config.
func NewRuntime(ctx context.Context, cfg *config.Config, log logger.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)
	if ctx == nil {
		ctx = context.Background()
	}

	sourceReg, err := sources.LoadRegistry(cfg.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("load sources registry: %w", err)
	}
	sourceList := sourceReg.All()
	sourceIDs := make([]string, 0, len(sourceList))
	for _, s := range sourceList {
		sourceIDs = append(sourceIDs, s.ID)
	}
	log.InfoObj("sources registry loaded", "sources_meta", map[string]any{
		"count": len(sourceIDs),
		"ids":   sourceIDs,
	})

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStore(ctx, cfg.StorageType, storage.Options{
		BBoltPath:   cfg.BBoltPath,
		DatabaseURL: cfg.DatabaseURL,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type": cfg.StorageType,
		"path": cfg.BBoltPath,
	})

	client := httpclient.NewRestyClient(httpclient.Options{
		Timeout:   cfg.FetchHTTPTimeout,
		UserAgent: cfg.UserAgent,
	})
	fetcher := scraper.NewFetcher(client, sourceReg, scraper.FetcherOptions{
		MaxMarkupBytes: cfg.MaxMarkupBytes,
		Logger:         log,
	})
	service := pipeline.NewService(
		scraper.NewScraper(fetcher, sourceReg, log),
		quiz.Synthesizer{},
		store,
		pipeline.Options{
			Timeouts: pipeline.Timeouts{
				Request:    cfg.RequestTimeout,
				Scrape:     cfg.ScrapeTimeout,
				Synthesize: cfg.SynthTimeout,
			},
			Publisher: fanout,
			Logger:    log,
		},
	)

	return &Runtime{
		cfg:       cfg,
		sourceReg: sourceReg,
		fanout:    fanout,
		store:     store,
		service:   service,
		log:       log,
	}, nil
}

// buildFanout loads the optional publishers file. Without one the fanout is empty and
// publishing is a no-op.
func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Fanout, error) {
	hook := publishers.WithFailureHook(func(p publishers.Publisher, err error) {
		metrics.RecordPublishFailure(p.ID())
	})
	if cfg.PublishersFile == "" {
		log.InfoObj("no publishers file configured; quiz events disabled", "publishers_file", "")
		return publishers.NewFanout(nil, hook), nil
	}

	publisherCfg, err := publishers.LoadConfig(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := publisherCfg.Enabled()
	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubClients, hook), nil
}

// Service exposes the pipeline.
func (rt *Runtime) Service() *pipeline.Service { return rt.service }

// Store exposes the storage backend.
func (rt *Runtime) Store() storage.Store { return rt.store }

// Close releases publishers and storage.
func (rt *Runtime) Close() error {
	if rt == nil {
		return nil
	}
	var errs []error
	if err := rt.fanout.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publishers: %w", err))
	}
	if rt.store != nil {
		if err := rt.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	return errors.Join(errs...)
}

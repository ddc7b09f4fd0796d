package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"estimator/internal/calculator"
	"estimator/internal/catalog"
	"estimator/internal/comparator"
	"estimator/internal/config"
	"estimator/internal/domain"
	"estimator/internal/embedding/openai"
	"estimator/internal/embedding/tfidf"
	"estimator/internal/logger"
	"estimator/internal/metrics"
	"estimator/internal/normalizer"
	"estimator/internal/search"
	"estimator/internal/service"
	"estimator/internal/vectorstore/bolt"
	"estimator/internal/vectorstore/memory"
	"estimator/internal/vectorstore/qdrant"
)

// app is the wired set of components one command runs against.
type app struct {
	cfg        *config.AppConfig
	log        *zap.Logger
	store      *catalog.Store
	normalizer *normalizer.Normalizer
	engine     *search.Engine
	service    *service.Service
	closers    []func() error
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (*config.AppConfig, error) {
	var (
		cfg *config.AppConfig
		err error
	)
	if flagConfig == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(flagConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flagDB != "" {
		cfg.Catalog.Path = flagDB
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if flagStrategy != "" {
		cfg.Search.Strategy = strings.ToLower(flagStrategy)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStore loads config, builds the logger and opens the catalog.
// Commands that only touch the catalog stop here.
func openStore() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a := &app{cfg: cfg, log: log}
	a.closers = append(a.closers, func() error {
		_ = log.Sync()
		return nil
	})

	c := cfg.Catalog
	store, err := catalog.Open(catalog.Config{
		Path:         c.Path,
		BusyTimeout:  time.Duration(c.BusyTimeoutMS) * time.Millisecond,
		CacheSizeKB:  c.CacheSizeKB,
		MaxOpenConns: c.MaxOpenConns,
		SlowQuery:    time.Duration(c.SlowQueryMS) * time.Millisecond,
		Debug:        c.Debug,
	}, log)
	if err != nil {
		a.close()
		return nil, err
	}
	a.store = store
	a.closers = append(a.closers, store.Close)
	a.normalizer = normalizer.New(
		normalizer.WithMinPrefixLen(cfg.Search.MinPrefixLen),
		normalizer.WithSynonyms(cfg.Search.Synonyms),
	)
	return a, nil
}

// openApp wires every component. The semantic index is attached or built
// here when the configured strategy needs it.
func openApp(ctx context.Context) (*app, error) {
	a, err := openStore()
	if err != nil {
		return nil, err
	}
	if err := a.wire(ctx); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(ctx context.Context) error {
	cfg := a.cfg
	fulltext := search.NewFullText(a.store, a.normalizer)

	var strategy search.Strategy = fulltext
	if cfg.Search.Strategy != "fulltext" {
		sem, _, err := a.buildSemantic(ctx, false)
		if err != nil {
			return err
		}
		strategy = sem
		if cfg.Search.Strategy == "hybrid" {
			strategy = search.NewHybrid(sem, fulltext, a.log)
		}
	}
	a.engine = search.NewEngine(a.store, strategy, a.log)

	calc := calculator.New(a.store, a.log)
	cmp := comparator.New(a.store, calc, a.engine, a.log,
		comparator.WithConcurrency(cfg.Similar.Concurrency),
		comparator.WithKeywords(cfg.Similar.Keywords),
		comparator.WithNormalizer(a.normalizer),
	)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if cfg.Metrics.Addr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr, reg, a.log); err != nil {
				a.log.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}

	a.service = service.New(service.Deps{
		Engine:     a.engine,
		Calculator: calc,
		Comparator: cmp,
		Metrics:    m,
		Logger:     a.log,
	})
	return nil
}

// buildSemantic assembles the embedder and vector store. Unless rebuild is
// set, vectors already persisted for the current catalog are reused.
func (a *app) buildSemantic(ctx context.Context, rebuild bool) (*search.Semantic, int, error) {
	emb, err := a.newEmbedder()
	if err != nil {
		return nil, 0, err
	}
	store, err := a.newVectorStore()
	if err != nil {
		return nil, 0, err
	}
	sem := search.NewSemantic(a.store, emb, store, search.SemanticOptions{Threshold: a.cfg.Search.Threshold}, a.log)
	if !rebuild {
		st, err := a.store.Stats(ctx)
		if err != nil {
			return nil, 0, err
		}
		attached, err := sem.Attach(ctx, int(st.Rates))
		if err != nil {
			return nil, 0, err
		}
		if attached {
			return sem, int(st.Rates), nil
		}
	}
	n, err := sem.Build(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("build semantic index: %w", err)
	}
	a.log.Debug("semantic index ready", zap.Int("rates", n))
	return sem, n, nil
}

func (a *app) newEmbedder() (domain.Embedder, error) {
	ec := a.cfg.Embedder
	switch ec.Type {
	case "tfidf":
		return tfidf.NewEmbedder(
			tfidf.WithMaxFeatures(ec.MaxFeatures),
			tfidf.WithStopwords(a.normalizer),
		), nil
	case "openai":
		if ec.OpenAI == nil {
			return nil, errors.New("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:    ec.OpenAI.BaseURL,
			APIKeyEnv:  ec.OpenAI.APIKeyEnv,
			Model:      ec.OpenAI.Model,
			Timeout:    time.Duration(ec.OpenAI.TimeoutSecs) * time.Second,
			MaxRetries: ec.OpenAI.MaxRetries,
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedder init: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", ec.Type)
	}
}

func (a *app) newVectorStore() (domain.VectorStore, error) {
	vc := a.cfg.VectorStore
	switch vc.Type {
	case "memory":
		return memory.NewStorage(), nil
	case "bolt":
		if err := os.MkdirAll(filepath.Dir(vc.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create vector store dir: %w", err)
		}
		st, err := bolt.Open(vc.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, st.Close)
		return st, nil
	case "qdrant":
		if vc.Qdrant == nil {
			return nil, errors.New("qdrant config missing")
		}
		return qdrant.NewStorage(qdrant.Config{
			URL:        vc.Qdrant.URL,
			APIKey:     vc.Qdrant.APIKey,
			Collection: vc.Qdrant.Collection,
			Timeout:    time.Duration(vc.Qdrant.TimeoutSecs) * time.Second,
		}), nil
	default:
		return nil, fmt.Errorf("unknown vector store: %s", vc.Type)
	}
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && a.log != nil {
			a.log.Warn("close failed", zap.Error(err))
		}
	}
	a.closers = nil
}

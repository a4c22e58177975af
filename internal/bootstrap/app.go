package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/PabloGalante/wisdom-coach/internal/adapters/crypto"
	httpadapter "github.com/PabloGalante/wisdom-coach/internal/adapters/http"
	"github.com/PabloGalante/wisdom-coach/internal/adapters/llm"
	"github.com/PabloGalante/wisdom-coach/internal/adapters/storage/dynamo"
	firestorestore "github.com/PabloGalante/wisdom-coach/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/wisdom-coach/internal/adapters/storage/memory"
	"github.com/PabloGalante/wisdom-coach/internal/adapters/storage/postgres"
	"github.com/PabloGalante/wisdom-coach/internal/app/coaching"
	"github.com/PabloGalante/wisdom-coach/internal/app/journal"
	"github.com/PabloGalante/wisdom-coach/internal/app/signals"
	"github.com/PabloGalante/wisdom-coach/internal/auth"
	"github.com/PabloGalante/wisdom-coach/internal/config"
	"github.com/PabloGalante/wisdom-coach/internal/domain"
	"github.com/PabloGalante/wisdom-coach/internal/observability"
)

// App holds the wired services for one process.
type App struct {
	Config   *config.Config
	Coach    *coaching.Orchestrator
	Journal  *journal.Service
	Sessions domain.SessionStore
	Auth     *auth.Authenticator

	// TriggerFile is set when triggers come from a YAML file.
	TriggerFile *config.FileTriggerConfig

	closers []func() error
}

// Build wires every backend selected by cfg.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	log := observability.Logger()
	app := &App{Config: cfg}

	gen, err := app.generator(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	journalStore, err := app.journalStore(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Journal = journal.NewService(journalStore)

	var fsStore *firestorestore.Store
	switch cfg.StorageBackend {
	case "firestore":
		log.Info("using firestore session storage", "project", cfg.GCPProjectID)
		fsStore, err = firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("error initializing Firestore store: %w", err)
		}
		app.closers = append(app.closers, fsStore.Close)
		app.Sessions = fsStore
	default:
		log.Info("using in-memory session storage")
		app.Sessions = memstore.NewSessionStore()
	}

	var triggers domain.TriggerConfigLoader
	switch {
	case cfg.TriggerConfigPath != "":
		app.TriggerFile, err = config.NewFileTriggerConfig(cfg.TriggerConfigPath, coaching.DefaultTriggers())
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidTriggerConfig, err)
		}
		triggers = app.TriggerFile
	case fsStore != nil:
		triggers = fsStore
	default:
		triggers = memstore.NewTriggerStore(coaching.DefaultTriggers())
	}

	app.Coach = coaching.NewOrchestrator(coaching.Dependencies{
		Journal:   app.Journal,
		Generator: gen,
		People:    signals.NewNameExtractor(cfg.KnownNames...),
		Triggers:  triggers,
		Sessions:  app.Sessions,
	}, coaching.Options{
		GenerationTimeout: cfg.GenerationTimeout,
		SummaryLimit:      cfg.SummaryLimit,
		Policy:            coaching.ParsePolicy(cfg.ActiveSessionPolicy),
	})

	if cfg.JWTSecret != "" {
		app.Auth = auth.NewAuthenticator(cfg.JWTSecret)
	}
	return app, nil
}

// Handler returns the HTTP API over the app.
func (a *App) Handler() http.Handler {
	return httpadapter.NewServer(httpadapter.Deps{
		Coach:    a.Coach,
		Journal:  a.Journal,
		Sessions: a.Sessions,
		Auth:     a.Auth,
	})
}

// Close releases every client opened by Build.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) generator(ctx context.Context) (domain.TextGenerator, error) {
	cfg := a.Config
	log := observability.Logger()

	var gen domain.TextGenerator
	if cfg.UseMockLLM {
		log.Info("using mock text generator")
		gen = llm.NewMockGenerator()
	} else {
		log.Info("using Vertex text generator", "model", cfg.ModelName)
		v, err := llm.NewVertexGenerator(ctx, cfg.GCPProjectID, cfg.GCPLocation, cfg.ModelName)
		if err != nil {
			return nil, fmt.Errorf("error initializing Vertex generator: %w", err)
		}
		gen = v
	}

	if !cfg.SpendEnabled {
		return gen, nil
	}
	ledger, err := dynamo.NewSpendLedger(ctx, cfg.SpendTableName, cfg.DailySpendLimit)
	if err != nil {
		return nil, fmt.Errorf("error initializing spend ledger: %w", err)
	}
	log.Info("daily spend limit enabled", "table", cfg.SpendTableName, "limit", cfg.DailySpendLimit)
	return llm.NewBudgetedGenerator(gen, ledger, cfg.ModelName), nil
}

func (a *App) journalStore(ctx context.Context) (domain.JournalStore, error) {
	cfg := a.Config
	log := observability.Logger()

	if cfg.JournalBackend != "postgres" {
		log.Info("using in-memory journal storage")
		return memstore.NewJournalStore(), nil
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, db.Close)

	var opts []postgres.Option
	if cfg.KMSKeyID != "" {
		cipher, err := crypto.NewKMSCipher(ctx, cfg.KMSKeyID)
		if err != nil {
			return nil, fmt.Errorf("error initializing KMS cipher: %w", err)
		}
		opts = append(opts, postgres.WithCipher(cipher))
	}

	store := postgres.NewJournalStore(db, opts...)
	if err := store.CreateSchema(ctx); err != nil {
		return nil, err
	}
	log.Info("using postgres journal storage", "encrypted", cfg.KMSKeyID != "")
	return store, nil
}

package app

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/club-roster/internal/config"
	"github.com/riskibarqy/club-roster/internal/docstore"
	"github.com/riskibarqy/club-roster/internal/domain/ledger"
	"github.com/riskibarqy/club-roster/internal/domain/motm"
	"github.com/riskibarqy/club-roster/internal/domain/player"
	cachedrepo "github.com/riskibarqy/club-roster/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/club-roster/internal/infrastructure/repository/document"
	"github.com/riskibarqy/club-roster/internal/interfaces/httpapi"
	"github.com/riskibarqy/club-roster/internal/platform/cache"
	idgen "github.com/riskibarqy/club-roster/internal/platform/id"
	"github.com/riskibarqy/club-roster/internal/platform/logging"
	"github.com/riskibarqy/club-roster/internal/reconcile"
	"github.com/riskibarqy/club-roster/internal/usecase"
)

// App holds the wired service: the HTTP server plus the background loops that
// main runs next to it.
type App struct {
	Server   *http.Server
	Watcher  *reconcile.Watcher
	Feed     *reconcile.Feed
	AwardJob *usecase.AwardJobService

	closers []io.Closer
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	base, closers, err := openStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	store := docstore.NewGuarded(base, cfg.StoreCircuit, logger)
	ns := docstore.Namespace(cfg.Tenant)

	playerRepo := document.NewPlayerRepository(store, ns)
	teamSetRepo := document.NewTeamSetRepository(store, ns)
	overrideRepo := document.NewOverrideRepository(store, ns)
	ledgerRepo := document.NewLedgerRepository(store, ns)
	nominationRepo := document.NewNominationRepository(store, ns)
	var awardRepo motm.AwardRepository = document.NewAwardRepository(store, ns)
	if cfg.CacheEnabled {
		awardRepo = cachedrepo.NewAwardRepository(awardRepo,
			cache.NewStore[motm.Award](cfg.CacheTTL),
			cache.NewStore[[]motm.Award](cfg.CacheTTL),
		)
	}
	submissionRepo := document.NewSubmissionRepository(store, ns)

	ids := idgen.NewUUIDGenerator()
	rosterSvc := usecase.NewRosterService(playerRepo, teamSetRepo, overrideRepo, ids, logger.Named("roster"))
	teamSvc := usecase.NewTeamService(playerRepo, teamSetRepo, overrideRepo, logger.Named("teams"))
	ledgerSvc := usecase.NewLedgerService(playerRepo, ledgerRepo, cfg.Schedule, usecase.LedgerConfig{
		MaxRetries:        cfg.LedgerMaxRetries,
		AttendanceWorkers: cfg.AttendanceWorkers,
	}, logger.Named("ledger"))
	nominationSvc := usecase.NewNominationService(playerRepo, nominationRepo, awardRepo, cfg.Schedule, ledgerSvc, logger.Named("motm"))
	submissionSvc := usecase.NewSubmissionService(playerRepo, submissionRepo, cfg.Schedule, ledgerSvc, ids, logger.Named("submissions"))
	awardJobSvc := usecase.NewAwardJobService(ledgerSvc, nominationSvc, cfg.Schedule, usecase.AwardJobConfig{
		Interval:     cfg.AwardJobInterval,
		LookbackDays: cfg.AwardJobLookbackDays,
	}, logger.Named("award_job"))

	feed := reconcile.NewFeed()
	watcher := newWatcher(store, ns, feed, logger)

	handler := httpapi.NewHandler(
		rosterSvc,
		teamSvc,
		ledgerSvc,
		nominationSvc,
		submissionSvc,
		awardJobSvc,
		feed,
		logger.Named("http"),
	)
	router := httpapi.NewRouter(handler, logger.Named("http"), cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	return &App{
		Server: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		Watcher:  watcher,
		Feed:     feed,
		AwardJob: awardJobSvc,
		closers:  closers,
	}, nil
}

// Close releases the store connections opened by New.
func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func newWatcher(store docstore.Store, ns docstore.Namespace, feed *reconcile.Feed, logger *logging.Logger) *reconcile.Watcher {
	w := reconcile.NewWatcher(store, feed, logger)
	reconcile.Register(w, reconcile.Source[[]player.Player]{
		Name:       "players",
		Collection: ns.Collection(document.CollectionPlayers),
		Decode:     document.DecodePlayers,
		Equal:      reconcile.PlayersEqual,
	})
	reconcile.Register(w, reconcile.Source[reconcile.TeamsView]{
		Name:       "teams",
		Collection: ns.Collection(document.CollectionTeams),
		Decode:     decodeTeamsView,
		Equal:      reconcile.TeamsEqual,
	})
	reconcile.Register(w, reconcile.Source[[]ledger.Ledger]{
		Name:       "ledger",
		Collection: ns.Collection(document.CollectionLedger),
		Decode:     document.DecodeLedgers,
		Equal:      reconcile.LedgersEqual,
	})
	return w
}

func decodeTeamsView(snap docstore.Snapshot) (reconcile.TeamsView, error) {
	set, exists, err := document.DecodeTeamSet(snap)
	if err != nil {
		return reconcile.TeamsView{}, err
	}
	return reconcile.TeamsView{Set: set, Exists: exists}, nil
}

func openStore(cfg config.Config, logger *logging.Logger) (docstore.Store, []io.Closer, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		dsn := postgresDSN(cfg.DBURL, cfg.ServiceName, cfg.DBDisablePreparedBinary)
		db, err := otelsqlx.Open("postgres", dsn,
			otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
			otelsql.WithDBName(dbNameFromURL(dsn)),
			otelsql.WithQueryFormatter(formatDBQueryForTrace),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(context.Background()); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}

		store := docstore.NewPostgres(db, docstore.PostgresConfig{DSN: dsn}, logger)
		logger.Info("document store ready", "driver", cfg.StoreDriver, "db", dbNameFromURL(dsn), "tenant", cfg.Tenant)
		return store, []io.Closer{db, store}, nil
	default:
		store := docstore.NewMemory()
		logger.Info("document store ready", "driver", config.StoreMemory, "tenant", cfg.Tenant)
		return store, []io.Closer{closerFunc(store.Close)}, nil
	}
}

type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	dashcache "marketlevy/internal/dashboard/cache"
	dashhandler "marketlevy/internal/dashboard/handler"
	dashmetrics "marketlevy/internal/dashboard/metrics"
	dashservice "marketlevy/internal/dashboard/service"
	dirmemory "marketlevy/internal/directory/store/memory"
	dirpostgres "marketlevy/internal/directory/store/postgres"
	dirsqlite "marketlevy/internal/directory/store/sqlite"
	jwttoken "marketlevy/internal/jwt_token"
	ledgerhandler "marketlevy/internal/ledger/handler"
	ledgermetrics "marketlevy/internal/ledger/metrics"
	ledgerservice "marketlevy/internal/ledger/service"
	ledgermemory "marketlevy/internal/ledger/store/memory"
	ledgerpostgres "marketlevy/internal/ledger/store/postgres"
	ledgersqlite "marketlevy/internal/ledger/store/sqlite"
	"marketlevy/internal/platform/config"
	"marketlevy/internal/platform/httpserver"
	"marketlevy/internal/platform/logger"
	platformmetrics "marketlevy/internal/platform/metrics"
	platformotel "marketlevy/internal/platform/otel"
	platformredis "marketlevy/internal/platform/redis"
	pgstorage "marketlevy/internal/platform/storage/postgres"
	sqlitestorage "marketlevy/internal/platform/storage/sqlite"
	ratemetrics "marketlevy/internal/ratelimit/metrics"
	ratemiddleware "marketlevy/internal/ratelimit/middleware"
	"marketlevy/internal/ratelimit/store/bucket"
	httptransport "marketlevy/internal/transport/http"
	verifyhandler "marketlevy/internal/verification/handler"
	verifymetrics "marketlevy/internal/verification/metrics"
	verifyservice "marketlevy/internal/verification/service"
	audit "marketlevy/pkg/platform/audit"
	"marketlevy/pkg/platform/audit/publishers/compliance"
	"marketlevy/pkg/platform/audit/relay"
	auditmemory "marketlevy/pkg/platform/audit/store/memory"
	auditpostgres "marketlevy/pkg/platform/audit/store/postgres"
	"marketlevy/pkg/platform/tx"
)

const serviceName = "levy-gateway"

// stores bundles the backend chosen by LEVY_STORE.
type stores struct {
	directory interface {
		ledgerservice.Directory
		dashservice.Directory
	}
	ledger     ledgerservice.Store
	audit      audit.Store
	outbox     *auditpostgres.Store
	transactor ledgerservice.Transactor
	db         *sql.DB
}

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "levy-gateway: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := platformotel.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("flush traces", "error", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	if st.db != nil {
		defer st.db.Close()
	}

	publisher := compliance.New(st.audit,
		compliance.WithLogger(log),
		compliance.WithMetrics(compliance.NewMetrics(reg)),
	)

	loc := cfg.Location()
	ledgerMetrics := ledgermetrics.New(reg)
	ledgerOpts := []ledgerservice.Option{
		ledgerservice.WithLogger(log),
		ledgerservice.WithMetrics(ledgerMetrics),
		ledgerservice.WithLocation(loc),
	}
	if st.transactor != nil {
		ledgerOpts = append(ledgerOpts, ledgerservice.WithTransactor(st.transactor))
	}
	// Admin actions write their own audit event. The gateway records exactly
	// one event per scan, so its ledger instance publishes nothing.
	adminLedger := ledgerservice.New(st.ledger, st.directory,
		append(ledgerOpts, ledgerservice.WithAuditPublisher(publisher))...)
	gatewayLedger := ledgerservice.New(st.ledger, st.directory, ledgerOpts...)

	gateway := verifyservice.New(gatewayLedger, st.directory, publisher,
		verifyservice.WithLogger(log),
		verifyservice.WithMetrics(verifymetrics.New(reg)),
	)

	healthChecks := map[string]func(context.Context) error{}
	if st.db != nil {
		healthChecks["database"] = st.db.PingContext
	}
	dashboardCache, redisClient, err := openDashboardCache(ctx, cfg, log)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		healthChecks["redis"] = redisClient.Health
	}
	dashboard := dashservice.New(adminLedger, st.directory,
		dashservice.WithCache(dashboardCache, cfg.Dashboard.CacheTTL),
		dashservice.WithLogger(log),
		dashservice.WithMetrics(dashmetrics.New(reg)),
		dashservice.WithLocation(loc),
	)

	jwtService := jwttoken.NewJWTService(cfg.AgentJWTSigningKey, cfg.AgentJWTIssuer, cfg.AgentJWTAudience)
	scanLimiter := ratemiddleware.New(bucket.NewInMemoryBucketStore(), cfg.AgentScanLimit, cfg.AgentScanWindow, log,
		ratemiddleware.WithMetrics(ratemetrics.New(reg)),
	)
	router := httptransport.NewRouter(httptransport.Config{
		Logger:         log,
		Observer:       platformmetrics.New(reg),
		AgentValidator: jwtService,
		AgentLimiter:   scanLimiter.PerAgent,
		AdminToken:     cfg.AdminToken,
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		HealthChecks:   healthChecks,
		Agent: []httptransport.Registrar{
			verifyhandler.New(gateway, log),
		},
		Admin: []httptransport.Registrar{
			ledgerhandler.New(adminLedger, log),
			dashhandler.New(dashboard, log),
		},
	})

	g, gctx := errgroup.WithContext(ctx)

	refresher := dashservice.NewRefresher(dashboard, cfg.Dashboard.RefreshInterval, log)
	g.Go(func() error {
		if err := refresher.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	if st.outbox != nil && cfg.Audit.Relay != config.RelayNone {
		broker, err := openBroker(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer broker.Close()
		worker := relay.New(st.outbox, broker, relay.WithLogger(log))
		g.Go(func() error {
			if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	srv := httpserver.New(cfg.Addr, router, cfg.HTTP)
	g.Go(func() error {
		log.Info("starting levy gateway", "addr", cfg.Addr, "store", cfg.Store, "timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		log.Info("server stopped")
		return nil
	})

	return g.Wait()
}

func openStores(ctx context.Context, cfg config.Server, log *slog.Logger) (stores, error) {
	switch strings.ToLower(cfg.Store) {
	case config.StorePostgres:
		db, err := pgstorage.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return stores{}, fmt.Errorf("open postgres: %w", err)
		}
		outbox := auditpostgres.New(db)
		log.Info("using postgres store")
		return stores{
			directory:  dirpostgres.New(db),
			ledger:     ledgerpostgres.New(db),
			audit:      outbox,
			outbox:     outbox,
			transactor: tx.NewTransactor(db),
			db:         db,
		}, nil

	case config.StoreSQLite:
		db, err := sqlitestorage.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return stores{}, fmt.Errorf("open sqlite: %w", err)
		}
		// The audit trail stays in memory for the single-box profile.
		log.Info("using sqlite store", "path", cfg.SQLitePath)
		return stores{
			directory:  dirsqlite.New(db),
			ledger:     ledgersqlite.New(db),
			audit:      auditmemory.NewInMemoryStore(),
			transactor: tx.NewTransactor(db),
			db:         db,
		}, nil

	default:
		log.Info("using in-memory store")
		return stores{
			directory: dirmemory.New(),
			ledger:    ledgermemory.New(),
			audit:     auditmemory.NewInMemoryStore(),
		}, nil
	}
}

func openDashboardCache(ctx context.Context, cfg config.Server, log *slog.Logger) (dashservice.Cache, *platformredis.Client, error) {
	client, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	if client == nil {
		log.Info("dashboard cache in memory")
		return dashcache.NewInMemory(), nil, nil
	}
	log.Info("dashboard cache in redis")
	return dashcache.NewRedis(client.Client), client, nil
}

func openBroker(ctx context.Context, cfg config.Server, log *slog.Logger) (relay.Broker, error) {
	switch strings.ToLower(cfg.Audit.Relay) {
	case config.RelayKafka:
		broker, err := relay.NewKafkaBroker(ctx, cfg.Audit.KafkaBrokers, cfg.Audit.KafkaTopic)
		if err != nil {
			return nil, fmt.Errorf("connect kafka: %w", err)
		}
		return broker, nil
	case config.RelayAMQP:
		broker, err := relay.NewAMQPBroker(cfg.Audit.AMQPURL, cfg.Audit.AMQPExchange, log)
		if err != nil {
			return nil, fmt.Errorf("connect amqp: %w", err)
		}
		return broker, nil
	default:
		return nil, fmt.Errorf("unknown audit relay %q", cfg.Audit.Relay)
	}
}

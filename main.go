package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"analyzer-training/internal/audit"
	"analyzer-training/internal/auth"
	"analyzer-training/internal/config"
	dataset "analyzer-training/internal/dataset/domain"
	"analyzer-training/internal/dataset/infrastructure/filestore"
	datasetpostgres "analyzer-training/internal/dataset/infrastructure/postgres"
	datasets3 "analyzer-training/internal/dataset/infrastructure/s3"
	"analyzer-training/internal/observability/metrics"
	pipeline "analyzer-training/internal/pipeline/application"
	pipelinehttp "analyzer-training/internal/pipeline/interfaces/http"
	"analyzer-training/internal/pipeline/notify"
	analyzersignal "analyzer-training/internal/signal"
	telemetryapp "analyzer-training/internal/telemetry/application"
	telemetry "analyzer-training/internal/telemetry/domain"
	telemetrymemory "analyzer-training/internal/telemetry/infrastructure/memory"
	telemetrypostgres "analyzer-training/internal/telemetry/infrastructure/postgres"
	telemetryredis "analyzer-training/internal/telemetry/infrastructure/redis"
	telemetryhttp "analyzer-training/internal/telemetry/interfaces/http"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)
	if err := godotenv.Load(); err != nil {
		logger.Printf("no .env file, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}
	if cfg.JWTSecret == "" {
		logger.Fatal("AUTH_JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("open db error: %v", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			logger.Fatalf("ping db error: %v", err)
		}
	}
	metrics.Init(db, logger)

	records, err := openRecordStore(ctx, cfg, db)
	if err != nil {
		logger.Fatalf("record store error: %v", err)
	}
	logger.Printf("record store: %s", cfg.Store)

	filter, err := analyzersignal.NewBandFilter(cfg.Filter)
	if err != nil {
		logger.Fatalf("band filter error: %v", err)
	}
	processor, err := pipeline.NewProcessor(filter, cfg.Thresholds.Current, cfg.Thresholds.Voltage)
	if err != nil {
		logger.Fatalf("processor error: %v", err)
	}

	opts := []pipeline.ServiceOption{
		pipeline.WithLogger(logger),
		pipeline.WithReports(cfg.Output.XLSX, cfg.Output.PDF),
	}
	if cfg.Output.PersistRows {
		opts = append(opts, pipeline.WithRepository(datasetpostgres.NewRepository(db)))
	}
	stores, err := openArtifactStores(cfg.Output)
	if err != nil {
		logger.Fatalf("artifact store error: %v", err)
	}
	for _, store := range stores {
		opts = append(opts, pipeline.WithArtifactStore(store))
	}
	if notifier := buildNotifier(cfg.Output.WebhookURL); notifier != nil {
		opts = append(opts, pipeline.WithNotifier(notifier))
	}
	service, err := pipeline.NewService(records, processor, opts...)
	if err != nil {
		logger.Fatalf("pipeline service error: %v", err)
	}

	if cfg.BuildCron != "" {
		scheduler, err := pipeline.NewScheduler(service, cfg.BuildCron, pipeline.WithSchedulerLogger(logger))
		if err != nil {
			logger.Fatalf("scheduler error: %v", err)
		}
		if err := scheduler.Start(ctx); err != nil {
			logger.Fatalf("scheduler error: %v", err)
		}
		defer scheduler.Stop()
	}

	collector, err := telemetryapp.NewCollector(records, telemetryapp.WithLogger(logger))
	if err != nil {
		logger.Fatalf("collector error: %v", err)
	}
	ingestHandler, err := telemetryhttp.NewIngestHandler(collector, logger)
	if err != nil {
		logger.Fatalf("ingest handler error: %v", err)
	}
	countsHandler, err := telemetryhttp.NewCountsHandler(collector, logger)
	if err != nil {
		logger.Fatalf("counts handler error: %v", err)
	}
	exportHandler, err := telemetryhttp.NewRecordsExportHandler(collector, logger)
	if err != nil {
		logger.Fatalf("records export handler error: %v", err)
	}
	var auditLogger audit.Logger = audit.NewLogWriter(logger.Printf)
	if db != nil {
		auditLogger = audit.NewRepository(db)
	}
	datasetHandler, err := pipelinehttp.NewHandler(service, cfg.Synthetic, cfg.Seed, logger, pipelinehttp.WithAudit(auditLogger))
	if err != nil {
		logger.Fatalf("dataset handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/ingest/records", ingestHandler)
	mux.Handle("/api/v1/registers/counts", countsHandler)
	mux.Handle("/api/v1/records/", exportHandler)
	mux.Handle("/api/v1/datasets/", datasetHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal(err)
	}
}

func openRecordStore(ctx context.Context, cfg config.Config, db *sql.DB) (telemetry.RecordStore, error) {
	switch cfg.Store {
	case config.StorePostgres:
		return telemetrypostgres.NewRecordStore(db), nil
	case config.StoreRedis:
		client, err := telemetryredis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		var opts []telemetryredis.Option
		if cfg.Redis.TTL > 0 {
			opts = append(opts, telemetryredis.WithTTL(cfg.Redis.TTL))
		}
		return telemetryredis.NewRecordStore(client, opts...)
	default:
		return telemetrymemory.NewRecordStore(), nil
	}
}

func openArtifactStores(out config.OutputConfig) ([]dataset.ArtifactStore, error) {
	var stores []dataset.ArtifactStore
	if out.Dir != "" {
		dir, err := filestore.NewDirectory(out.Dir)
		if err != nil {
			return nil, err
		}
		stores = append(stores, dir)
	}
	if out.S3Bucket != "" {
		sess, err := datasets3.NewSession(out.S3Region)
		if err != nil {
			return nil, err
		}
		uploader, err := datasets3.NewUploader(sess, out.S3Bucket, out.S3Prefix)
		if err != nil {
			return nil, err
		}
		stores = append(stores, uploader)
	}
	return stores, nil
}

// buildNotifier returns a notifier for a comma-separated list of webhook URLs, or nil.
func buildNotifier(urls string) notify.Notifier {
	var notifiers []notify.Notifier
	for _, url := range strings.Split(urls, ",") {
		if url = strings.TrimSpace(url); url != "" {
			notifiers = append(notifiers, notify.NewWebhookNotifier(url))
		}
	}
	if len(notifiers) == 0 {
		return nil
	}
	return notify.NewMultiNotifier(notifiers...)
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

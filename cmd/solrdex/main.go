package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/solrdex/internal/config"
	dbMysql "github.com/kailas-cloud/solrdex/internal/db/mysql"
	dbRedis "github.com/kailas-cloud/solrdex/internal/db/redis"
	"github.com/kailas-cloud/solrdex/internal/db/solr"
	"github.com/kailas-cloud/solrdex/internal/domain/index"
	logpkg "github.com/kailas-cloud/solrdex/internal/logger"
	"github.com/kailas-cloud/solrdex/internal/metrics"
	chiTransport "github.com/kailas-cloud/solrdex/internal/transport/chi"
	collectionuc "github.com/kailas-cloud/solrdex/internal/usecase/collection"
	documentuc "github.com/kailas-cloud/solrdex/internal/usecase/document"
	exportuc "github.com/kailas-cloud/solrdex/internal/usecase/export"
	healthuc "github.com/kailas-cloud/solrdex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/solrdex/internal/usecase/search"
	"github.com/kailas-cloud/solrdex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting solrdex",
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Bool("exports", cfg.Exports.Enabled),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics()
	metrics.RegisterSolrMetrics()

	solrCfg := solrConfig(cfg, logger)
	logger.Info("Configured indices", zap.Strings("names", solrCfg.Indices.Names()))
	newClient := func() *solr.Client { return solr.New(solrCfg) }

	collSvc := collectionuc.New(func() collectionuc.Admin { return newClient() }, solrCfg.Indices)
	docSvc := documentuc.New(func() documentuc.Writer { return newClient() }).
		WithMaxBatchSize(cfg.Solr.MaxBatchSize)
	searchSvc := searchuc.New(func() searchuc.Searcher { return newClient() }).
		WithPagination(cfg.Search.DefaultPageSize, cfg.Search.MaxPageSize)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Pass nil interfaces (not typed nil pointers) when exports are disabled.
	var (
		exportSvc *exportuc.Service
		worker    *exportuc.Worker
		queuePing healthuc.Pinger
		dbPing    healthuc.Pinger
	)
	if cfg.Exports.Enabled {
		queue, err := dbRedis.NewQueue(dbRedis.Config{
			Addrs:        cfg.Queue.Addrs,
			Username:     cfg.Queue.Username,
			Password:     cfg.Queue.Password,
			DB:           cfg.Queue.DB,
			Key:          cfg.Queue.Key,
			BlockTimeout: time.Duration(cfg.Queue.BlockTimeoutSec) * time.Second,
		})
		if err != nil {
			logger.Fatal("Failed to create job queue", zap.Error(err))
		}
		defer queue.Close()
		if err := queue.WaitForReady(ctx, time.Duration(cfg.Queue.ReadinessSec)*time.Second); err != nil {
			logger.Fatal("Job queue not ready", zap.Error(err))
		}
		logger.Info("Connected to job queue", zap.String("key", queue.Key()))

		store, err := dbMysql.NewStore(dbMysql.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			Database: cfg.Database.Name,
		}, recordClasses(cfg.Records))
		if err != nil {
			logger.Fatal("Failed to connect to record database", zap.Error(err))
		}
		defer func() { _ = store.Close() }()
		logger.Info("Connected to record database", zap.String("database", cfg.Database.Name))

		exportSvc = exportuc.New(queue, store, func(name string) (exportuc.Indexer, error) {
			c := newClient()
			if err := c.Use(name); err != nil {
				return nil, err
			}
			return c, nil
		}).WithBatchLength(cfg.Exports.BatchLength)
		worker = exportuc.NewWorker(queue, exportSvc, logger.Named("worker"))
		queuePing, dbPing = queue, store
	}

	healthSvc := healthuc.New(func() healthuc.EngineChecker { return newClient() }, queuePing, dbPing)

	server := chiTransport.NewServer(collSvc, docSvc, searchSvc, exportSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	var wg sync.WaitGroup
	if worker != nil {
		for range cfg.Exports.Workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				worker.Run(ctx)
			}()
		}
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	// Workers finish their current job, then stop.
	cancel()
	wg.Wait()

	logger.Info("Server stopped gracefully")
}

// solrConfig builds the adaptor settings shared by every per-request client.
func solrConfig(cfg config.Config, logger *zap.Logger) solr.Config {
	configs := make([]index.Config, len(cfg.Indices))
	for i, ic := range cfg.Indices {
		configs[i] = index.New(ic.Name, ic.NumShards, ic.AttributesForFaceting)
	}

	endpoint := solr.EnvEndpoint
	if cfg.Solr.Endpoint != "" {
		endpoint = solr.StaticEndpoint(cfg.Solr.Endpoint)
	}

	timeout := time.Duration(cfg.Solr.TimeoutSec) * time.Second
	return solr.Config{
		Endpoint:  endpoint,
		Indices:   index.NewRegistry(configs...),
		VerifyTLS: cfg.Solr.VerifyTLS,
		Timeout:   timeout,
		Debug:     cfg.Solr.Debug,
		Logger:    logger.Named("solr"),
		// One connection pool for every per-request client.
		Handler: solr.NewHTTPHandler(timeout),
	}
}

func recordClasses(records map[string]config.RecordClass) map[string]dbMysql.Class {
	out := make(map[string]dbMysql.Class, len(records))
	for name, rc := range records {
		out[name] = dbMysql.Class{
			Table:    rc.Table,
			IDColumn: rc.IDColumn,
			Columns:  rc.Columns,
		}
	}
	return out
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits one log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("index", chi.URLParam(r, "name")),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/gustycube/repuhub/internal/analytics"
	"github.com/gustycube/repuhub/internal/cache"
	"github.com/gustycube/repuhub/internal/checker"
	"github.com/gustycube/repuhub/internal/config"
	"github.com/gustycube/repuhub/internal/health"
	"github.com/gustycube/repuhub/internal/httpclient"
	"github.com/gustycube/repuhub/internal/logging"
	"github.com/gustycube/repuhub/internal/metrics"
	"github.com/gustycube/repuhub/internal/provider"
	"github.com/gustycube/repuhub/internal/server"
	"github.com/gustycube/repuhub/internal/telemetry"
)

func main() {
	var configFile string
	var listenAddr string
	var cacheTTLSec int
	var cacheNamespace string
	var requestTimeoutSec int
	var providerTimeoutSec int
	var metricsAddr string
	var redisAddr string
	var otelEndpoint string
	var otelInsecure bool
	var otelService string
	var showVersion bool

	flag.StringVar(&configFile, "config", "", "path to config file (YAML or JSON)")
	flag.StringVar(&listenAddr, "listen_addr", "", "API listen addr")
	flag.IntVar(&cacheTTLSec, "cache_ttl_sec", 0, "verdict cache TTL in seconds")
	flag.StringVar(&cacheNamespace, "cache_namespace", "", "cache key namespace")
	flag.IntVar(&requestTimeoutSec, "request_timeout_sec", 0, "per-request budget in seconds")
	flag.IntVar(&providerTimeoutSec, "provider_timeout_sec", 0, "per-provider lookup budget in seconds")
	flag.StringVar(&metricsAddr, "metrics_addr", "", "metrics listen addr (empty to disable)")
	flag.StringVar(&redisAddr, "redis_addr", "", "redis addr for shared cache and counters")
	flag.StringVar(&otelEndpoint, "otel_endpoint", "", "OTLP HTTP endpoint (host:port)")
	flag.BoolVar(&otelInsecure, "otel_insecure", true, "OTLP insecure (no TLS)")
	flag.StringVar(&otelService, "otel_service", "", "OTEL service.name")
	flag.BoolVar(&showVersion, "version", false, "show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "REPUHUB (Reputation Hub)\n")
		fmt.Fprintf(os.Stderr, "An aggregation gateway for threat-intelligence reputation lookups\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -listen_addr=:8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -config=config.yaml -redis_addr=localhost:6379\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  REDIS_ADDR       Redis server for shared cache and usage counters\n")
		fmt.Fprintf(os.Stderr, "  LISTEN_ADDR      API listen address\n")
		fmt.Fprintf(os.Stderr, "  CACHE_NAMESPACE  Cache key namespace\n")
		fmt.Fprintf(os.Stderr, "  LOG_LEVEL        Log level (debug, info, warn, error)\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Println("RepuHub v1.0.0")
		fmt.Println("Built with Go", strings.TrimPrefix(runtime.Version(), "go"))
		os.Exit(0)
	}

	ctx := context.Background()
	log := logging.New()
	defer log.Sync()

	var cfg *config.Config
	var err error

	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			log.Fatalw("failed to load config file", "file", configFile, "err", err)
		}
		log.Infow("loaded config from file", "file", configFile)
	} else {
		cfg = &config.Config{}
		cfg.SetDefaults()
	}

	cfg.LoadFromEnv()

	flags := make(map[string]interface{})
	if listenAddr != "" {
		flags["listen_addr"] = listenAddr
	}
	if cacheTTLSec > 0 {
		flags["cache_ttl_sec"] = cacheTTLSec
	}
	if cacheNamespace != "" {
		flags["cache_namespace"] = cacheNamespace
	}
	if requestTimeoutSec > 0 {
		flags["request_timeout_sec"] = requestTimeoutSec
	}
	if providerTimeoutSec > 0 {
		flags["provider_timeout_sec"] = providerTimeoutSec
	}
	if metricsAddr != "" {
		flags["metrics_addr"] = metricsAddr
	}
	if redisAddr != "" {
		flags["redis_addr"] = redisAddr
	}
	if otelEndpoint != "" {
		flags["otel_endpoint"] = otelEndpoint
	}
	if otelService != "" {
		flags["otel_service"] = otelService
	}
	flags["otel_insecure"] = otelInsecure

	cfg.MergeWithFlags(flags)

	if err := cfg.Validate(); err != nil {
		log.Fatalw("invalid configuration", "err", err)
	}

	shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{
		Endpoint: cfg.OTELEndpoint,
		Service:  cfg.OTELService,
		Insecure: cfg.OTELInsecure,
	})
	if err != nil {
		log.Warnw("otel init failed", "err", err)
	} else {
		defer shutdownTracing(context.Background())
	}

	healthHandler := health.NewHandler(log)
	healthHandler.SetMetadata("service", "repuhub")
	healthHandler.SetMetadata("version", "1.0.0")

	if cfg.MetricsAddr != "" {
		go metrics.ServeWithHealth(cfg.MetricsAddr, healthHandler, log)
		log.Infow("metrics and health server started", "addr", cfg.MetricsAddr)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cacheTTL := time.Duration(cfg.CacheTTLSec) * time.Second

	// Cache and counter backends share one redis connection when configured.
	var verdictCache cache.Store
	var stats analytics.Store
	if cfg.RedisAddr != "" {
		rd, err := cache.NewRedis(cfg.RedisAddr, log)
		if err != nil {
			log.Fatalw("redis init", "err", err)
		}
		log.Infow("redis cache enabled", "addr", cfg.RedisAddr)
		verdictCache = rd
		stats = analytics.NewRedis(rd.Client(), cfg.CacheNamespace, log)
		healthHandler.RegisterChecker("redis", health.NewPingChecker("redis", rd.Ping))
	} else {
		verdictCache = cache.NewMemory(cfg.CacheSize, cacheTTL)
		stats = analytics.NewMemory()
		log.Infow("memory cache enabled", "size", cfg.CacheSize)
		healthHandler.RegisterChecker("cache", health.NewPingChecker("memory cache", nil))
	}

	registry := provider.Default(httpclient.Default())

	chk := checker.New(registry, verdictCache, stats, log, checker.Options{
		Namespace:       cfg.CacheNamespace,
		CacheTTL:        cacheTTL,
		ProviderTimeout: time.Duration(cfg.ProviderTimeoutSec) * time.Second,
		ProviderRate:    cfg.ProviderRate,
		ProviderBurst:   cfg.ProviderBurst,
	})

	srv := server.New(chk, registry, stats, log, time.Duration(cfg.RequestTimeoutSec)*time.Second)
	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Warnw("http shutdown", "err", err)
		}
	}()

	log.Infow("starting repuhub",
		"listen_addr", cfg.ListenAddr,
		"cache_namespace", cfg.CacheNamespace,
		"cache_ttl_sec", cfg.CacheTTLSec,
		"providers", len(registry.Entries()),
		"config_file", configFile,
	)

	healthHandler.SetReady(true)
	log.Info("service marked as ready")

	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalw("http server", "err", err)
	}
	log.Info("shutdown complete")
}

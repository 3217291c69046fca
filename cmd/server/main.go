package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"clinic-scheduling-api/internal/auth"
	"clinic-scheduling-api/internal/booking"
	"clinic-scheduling-api/internal/cache"
	"clinic-scheduling-api/internal/calendar"
	"clinic-scheduling-api/internal/config"
	"clinic-scheduling-api/internal/handler"
	"clinic-scheduling-api/internal/logging"
	"clinic-scheduling-api/internal/metrics"
	"clinic-scheduling-api/internal/rpc"
	"clinic-scheduling-api/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// database
	st, closeDB, err := store.Open(ctx, cfg.DatabaseURL, cfg.DBMaxConns, log)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer closeDB()
	log.Info("connected to postgres")

	if cfg.AutoMigrate {
		if err := st.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("schema migrated")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// catalog, cached in redis when configured
	var catalog handler.Catalog = st
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, catalog reads go to postgres", zap.Error(err))
		}
		cc := cache.NewCatalog(st, rdb, cfg.CatalogCacheTTL, log)
		// catalog rows are seeded out of band; a restart must not serve lists cached before a reseed
		if err := cc.Invalidate(ctx); err != nil {
			log.Warn("catalog cache not cleared", zap.Error(err))
		}
		catalog = cc
	}

	opts := []booking.Option{booking.WithLogger(log), booking.WithMetrics(m)}
	if cfg.CalendarEnabled() {
		cal, err := calendar.New(ctx, calendar.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RefreshToken: cfg.GoogleRefreshToken,
			CalendarID:   cfg.GoogleCalendarID,
			TimeZone:     cfg.Timezone,
		})
		if err != nil {
			return fmt.Errorf("calendar: %w", err)
		}
		opts = append(opts, booking.WithConferencer(cal, cfg.CalendarTimeout))
	} else {
		log.Warn("google calendar not configured, telemedicine bookings get no meet link")
	}

	authSvc := auth.NewService(st, cfg.JWTSecret)
	engine := booking.New(st, opts...)

	h := handler.New(handler.Deps{
		Auth:    authSvc,
		Booker:  engine,
		Catalog: catalog,
		Health:  st,
	}, handler.Config{
		Location:       cfg.Location(),
		TrustedProxies: cfg.TrustedProxies,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		LoginPerMinute: cfg.LoginRatePerMinute,
		Metrics:        m,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Log:            log,
	})

	// grpc server
	gs := rpc.NewGRPCServer(ctx, rpc.NewServer(authSvc, engine, catalog, cfg.Location(), log), authSvc, cfg.LoginRatePerMinute, log)
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 2)
	go func() {
		log.Info("grpc listening", zap.String("addr", lis.Addr().String()))
		if err := gs.Serve(lis); err != nil {
			errc <- fmt.Errorf("grpc: %w", err)
		}
	}()
	go func() {
		log.Info("http listening", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("http: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errc:
		log.Error("listener failed", zap.Error(err))
	}

	// graceful shutdown
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	gs.GracefulStop()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

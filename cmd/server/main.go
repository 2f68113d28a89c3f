package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/config"
	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/handler"
	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/repository"
	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/service"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Carga de la configuración
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Error cargando la configuración: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithError(err).Warn("LOG_LEVEL inválido, se usa info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	catalogs, err := config.NewCatalogStore(cfg.CatalogPath, logger)
	if err != nil {
		logger.Fatalf("Error cargando el catálogo: %v", err)
	}

	// Inicialización de los almacenes
	logger.WithFields(logrus.Fields{
		"store":   cfg.StoreBackend,
		"counter": cfg.CounterBackend,
	}).Info("Inicializando almacenes...")
	stores, err := openStores(cfg, logger)
	if err != nil {
		logger.Fatalf("Error inicializando los almacenes: %v", err)
	}
	defer stores.Close()

	// Inicialización de los servicios
	logger.Info("Inicializando servicios...")
	emailSender := service.NewEmailSender(cfg, logger)
	authService := service.NewAuthService(cfg.AdminUser, cfg.AdminPasswordHash, cfg.JWTSecret, cfg.TokenExpiry, logger)
	financingService := service.NewFinancingService(catalogs, logger)
	sequencer := service.NewQuotationSequencer(stores.counters, cfg.SequencerTimeout, logger)
	quotationService := service.NewQuotationService(financingService, sequencer, stores.quotations, emailSender, cfg.Location, logger)
	rateLimiter := handler.NewRateLimiter(cfg.RateLimitPerMinute, cfg.TrustedProxies, logger)

	router := handler.NewRouter(handler.RouterDeps{
		Auth:        authService,
		Financing:   financingService,
		Quotations:  quotationService,
		Sequencer:   sequencer,
		RateLimiter: rateLimiter,
		Logger:      logger,
	})

	// Tareas programadas
	logger.Info("Configurando el planificador...")
	c := cron.New(cron.WithLocation(cfg.Location))
	_, err = c.AddFunc(cfg.SummaryCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := quotationService.DailySummary(ctx); err != nil {
			logger.WithError(err).Error("Error generando el resumen diario")
		}
	})
	if err != nil {
		logger.Fatalf("SUMMARY_CRON inválido: %v", err)
	}
	if cfg.CatalogReloadCron != "" {
		_, err = c.AddFunc(cfg.CatalogReloadCron, func() {
			if err := financingService.ReloadCatalog(); err != nil {
				logger.WithError(err).Warn("Recarga programada del catálogo fallida, se conserva el anterior")
			}
		})
		if err != nil {
			logger.Fatalf("CATALOG_RELOAD_CRON inválido: %v", err)
		}
	}
	_, err = c.AddFunc("@every 10m", func() {
		if removed := rateLimiter.Cleanup(); removed > 0 {
			logger.WithField("removed", removed).Debug("Clientes inactivos eliminados del limitador")
		}
	})
	if err != nil {
		logger.Fatalf("Error configurando el planificador: %v", err)
	}
	c.Start()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Servidor escuchando en %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Error del servidor: %v", err)
		}
	}()

	// Apagado ordenado
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Deteniendo el servidor...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Error deteniendo el servidor: %v", err)
	}
	<-c.Stop().Done()
	quotationService.Wait()
	logger.Info("Servidor detenido")
}

type stores struct {
	counters   repository.CounterStore
	quotations repository.QuotationRepository
	closers    []func() error
}

func (s *stores) Close() {
	for _, closeFn := range s.closers {
		closeFn()
	}
}

// openStores abre solo las conexiones que piden STORE_BACKEND y COUNTER_BACKEND
func openStores(cfg *config.Config, logger *logrus.Logger) (*stores, error) {
	s := &stores{}
	policy := repository.DefaultRetryPolicy()
	policy.MaxAttempts = uint(cfg.SequencerMaxAttempts)

	var pg, lite *sql.DB
	postgresDB := func() (*sql.DB, error) {
		if pg != nil {
			return pg, nil
		}
		db, err := sql.Open("postgres", cfg.PostgresDSN())
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		pg = db
		s.closers = append(s.closers, db.Close)
		return db, nil
	}
	sqliteDB := func() (*sql.DB, error) {
		if lite != nil {
			return lite, nil
		}
		db, err := repository.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		lite = db
		s.closers = append(s.closers, db.Close)
		return db, nil
	}

	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := postgresDB()
		if err != nil {
			s.Close()
			return nil, err
		}
		s.quotations = repository.NewPostgresQuotationRepository(db, logger)
	case config.BackendSQLite:
		db, err := sqliteDB()
		if err != nil {
			s.Close()
			return nil, err
		}
		s.quotations = repository.NewSQLiteQuotationRepository(db, logger)
	default:
		s.quotations = repository.NewMemoryQuotationRepository(logger)
	}

	switch cfg.CounterBackend {
	case config.BackendPostgres:
		db, err := postgresDB()
		if err != nil {
			s.Close()
			return nil, err
		}
		s.counters = repository.NewPostgresCounterStore(db, policy, logger)
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			client.Close()
			s.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		s.closers = append(s.closers, client.Close)
		s.counters = repository.NewRedisCounterStore(client, policy, logger)
	case config.BackendSQLite:
		db, err := sqliteDB()
		if err != nil {
			s.Close()
			return nil, err
		}
		s.counters = repository.NewSQLiteCounterStore(db, policy, logger)
	default:
		logger.Warn("Consecutivo en memoria: los números se reinician con el proceso")
		s.counters = repository.NewMemoryCounterStore(policy, logger)
	}

	return s, nil
}

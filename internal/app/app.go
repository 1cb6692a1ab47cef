// Package app wires configuration into the running API.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/hospital-portal/config"
	"github.com/jwalitptl/hospital-portal/internal/handler/admin"
	"github.com/jwalitptl/hospital-portal/internal/handler/appointment"
	authhandler "github.com/jwalitptl/hospital-portal/internal/handler/auth"
	"github.com/jwalitptl/hospital-portal/internal/handler/health"
	"github.com/jwalitptl/hospital-portal/internal/handler/medical"
	"github.com/jwalitptl/hospital-portal/internal/handler/patient"
	"github.com/jwalitptl/hospital-portal/internal/handler/prescription"
	"github.com/jwalitptl/hospital-portal/internal/middleware"
	"github.com/jwalitptl/hospital-portal/internal/repository/kvstore"
	"github.com/jwalitptl/hospital-portal/internal/router"
	appointmentService "github.com/jwalitptl/hospital-portal/internal/service/appointment"
	medicalService "github.com/jwalitptl/hospital-portal/internal/service/medical"
	patientService "github.com/jwalitptl/hospital-portal/internal/service/patient"
	prescriptionService "github.com/jwalitptl/hospital-portal/internal/service/prescription"
	sessionService "github.com/jwalitptl/hospital-portal/internal/service/session"
	statsService "github.com/jwalitptl/hospital-portal/internal/service/stats"
	"github.com/jwalitptl/hospital-portal/pkg/auth"
	"github.com/jwalitptl/hospital-portal/pkg/kv"
	"github.com/jwalitptl/hospital-portal/pkg/logger"
	"github.com/jwalitptl/hospital-portal/pkg/messaging"
	"github.com/jwalitptl/hospital-portal/pkg/messaging/redis"
	"github.com/jwalitptl/hospital-portal/pkg/metrics"
	"github.com/jwalitptl/hospital-portal/pkg/security"
	"github.com/jwalitptl/hospital-portal/pkg/worker"
)

// App holds everything the API process owns.
type App struct {
	Router *router.Router
	Store  kv.Store
	Broker messaging.Broker
	// Worker is set when events stay in process and must be audited here
	Worker *worker.AuditWorker

	// Session is exposed for tests that need to mint tokens
	Session *sessionService.Service
}

type Options struct {
	// Store overrides the configured storage backend
	Store kv.Store
	// Broker overrides the configured events broker
	Broker   messaging.Broker
	Registry *prometheus.Registry
	Logger   *logger.Logger
	Now      func() time.Time
}

// New builds the API from cfg. The caller owns Close.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	m := metrics.NewMetrics(cfg.Monitoring.Namespace, "store", reg)

	checks := make(map[string]health.Pinger)

	store := opts.Store
	if store == nil {
		var err error
		store, err = kv.Open(ctx, cfg.ToKVConfig())
		if err != nil {
			return nil, fmt.Errorf("failed to open storage: %w", err)
		}
	}
	if p, ok := store.(kv.Pinger); ok {
		checks["storage"] = p
	}

	broker := opts.Broker
	if broker == nil {
		var err error
		broker, err = openBroker(ctx, cfg, &log.ZL)
		if err != nil {
			store.Close()
			return nil, err
		}
	}
	if p, ok := broker.(health.Pinger); ok {
		checks["broker"] = p
	}

	var publisher messaging.Publisher = messaging.NopPublisher{}
	if broker != nil {
		publisher = messaging.NewBrokerPublisher(broker, m)
	}

	repos := kvstore.New(kv.Instrument(store, m))

	var statsOpts []statsService.Option
	if opts.Now != nil {
		statsOpts = append(statsOpts, statsService.WithClock(opts.Now))
	}

	patients := patientService.NewService(repos.Patients(), repos, publisher, log)
	records := medicalService.NewService(repos.MedicalRecords(), publisher, log)
	prescriptions := prescriptionService.NewService(repos.Prescriptions(), publisher, log)
	appointments := appointmentService.NewService(repos.Appointments(), publisher, log)
	stats := statsService.NewService(repos.MedicalRecords(), repos.Prescriptions(), repos.Appointments(), repos.Patients(), log, statsOpts...)

	tokens := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWTExpiry())
	sessions := sessionService.NewService(store, repos.Patients(), security.NewBcryptHasher(cfg.Security.BcryptCost), tokens, publisher, log)

	var gatherer prometheus.Gatherer = reg
	if !cfg.Monitoring.PrometheusEnabled {
		gatherer = prometheus.Gatherers{}
	}

	handlers := router.Handlers{
		Health:       health.NewHandler(checks, gatherer),
		Auth:         authhandler.NewHandler(sessions),
		Patient:      patient.NewHandler(patients, records, prescriptions, appointments, stats),
		Medical:      medical.NewHandler(records),
		Prescription: prescription.NewHandler(prescriptions),
		Appointment:  appointment.NewHandler(appointments),
		Admin:        admin.NewHandler(stats, patients),
	}

	rateLimit := cfg.RateLimit.RequestsPerSecond
	if !cfg.RateLimit.Enabled {
		rateLimit = 0
	}
	cors := middleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		cors.AllowOrigins = cfg.CORS.AllowedOrigins
	}
	if len(cfg.CORS.AllowedMethods) > 0 {
		cors.AllowMethods = cfg.CORS.AllowedMethods
	}
	if len(cfg.CORS.AllowedHeaders) > 0 {
		cors.AllowHeaders = cfg.CORS.AllowedHeaders
	}
	cors.AllowCredentials = cfg.CORS.AllowCredentials

	r := router.NewRouter(middleware.NewAuthMiddleware(sessions), handlers, router.RouterConfig{
		RateLimit:  rateLimit,
		RateBurst:  cfg.RateLimit.Burst,
		CORSConfig: cors,
		SizeLimit: middleware.SizeLimitConfig{
			MaxBodySize:   cfg.Server.MaxBodyBytes,
			MaxUploadSize: cfg.Server.MaxUploadBytes,
		},
		RequestTimeout: cfg.Server.RequestTimeout,
		MetricsPrefix:  cfg.Monitoring.Namespace,
		Registerer:     reg,
	})
	r.Setup()

	a := &App{Router: r, Store: store, Broker: broker, Session: sessions}
	if _, ok := broker.(*messaging.MemoryBroker); ok {
		a.Worker = worker.NewAuditWorker(broker, nil, log, m)
	}
	return a, nil
}

func openBroker(ctx context.Context, cfg *config.Config, zl *zerolog.Logger) (messaging.Broker, error) {
	switch cfg.Events.Broker {
	case config.BrokerRedis:
		b, err := redis.NewRedisBroker(ctx, cfg.ToBrokerConfig(), zl)
		if err != nil {
			return nil, fmt.Errorf("failed to connect events broker: %w", err)
		}
		return b, nil
	case config.BrokerMemory:
		return messaging.NewMemoryBroker(), nil
	default:
		return nil, nil
	}
}

func (a *App) Close() error {
	if a.Broker != nil {
		if err := a.Broker.Close(); err != nil {
			return fmt.Errorf("failed to close broker: %w", err)
		}
	}
	if err := a.Store.Close(); err != nil {
		return fmt.Errorf("failed to close storage: %w", err)
	}
	return nil
}

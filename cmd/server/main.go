package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"brokerdesk/internal/audit"
	clienthandler "brokerdesk/internal/client/handler"
	clientservice "brokerdesk/internal/client/service"
	clientstore "brokerdesk/internal/client/store"
	"brokerdesk/internal/deadline"
	"brokerdesk/internal/document"
	jobshandler "brokerdesk/internal/jobs/handler"
	jobsservice "brokerdesk/internal/jobs/service"
	jobsstore "brokerdesk/internal/jobs/store"
	jwttoken "brokerdesk/internal/jwt_token"
	leadhandler "brokerdesk/internal/lead/handler"
	leadmetrics "brokerdesk/internal/lead/metrics"
	leadservice "brokerdesk/internal/lead/service"
	leadstore "brokerdesk/internal/lead/store"
	notifhandler "brokerdesk/internal/notification/handler"
	notifhub "brokerdesk/internal/notification/hub"
	notifservice "brokerdesk/internal/notification/service"
	notifstore "brokerdesk/internal/notification/store"
	"brokerdesk/internal/platform/config"
	"brokerdesk/internal/platform/httpserver"
	"brokerdesk/internal/platform/kafka"
	"brokerdesk/internal/platform/logger"
	"brokerdesk/internal/platform/metrics"
	"brokerdesk/internal/platform/postgres"
	"brokerdesk/internal/platform/redis"
	processhandler "brokerdesk/internal/process/handler"
	processmetrics "brokerdesk/internal/process/metrics"
	processservice "brokerdesk/internal/process/service"
	processstore "brokerdesk/internal/process/store"
	"brokerdesk/internal/property"
	httptransport "brokerdesk/internal/transport/http"
	userhandler "brokerdesk/internal/user/handler"
	userservice "brokerdesk/internal/user/service"
	userstore "brokerdesk/internal/user/store"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	// Backends degrade instead of failing startup: no database means memory
	// stores, no redis means in-process pushes, no kafka means log-only audit.
	pool, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
		if err := pool.EnsureSchema(ctx); err != nil {
			return err
		}
		log.Info("using postgres stores")
	} else {
		log.Info("no DATABASE_URL set, using in-memory stores")
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, notifications stay in-process", "error", err.Error())
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		log.Warn("kafka unavailable, audit trail degrades to logs", "error", err.Error())
		producer = nil
	}

	var auditor audit.Publisher
	if producer != nil {
		defer producer.Close()
		if err := kafka.EnsureTopics(ctx, cfg.Kafka, cfg.Kafka.AuditTopic); err != nil {
			log.Warn("failed to ensure audit topic", "error", err.Error())
		}
		auditor = audit.NewKafkaPublisher(producer, cfg.Kafka.AuditTopic)
	} else {
		auditor = audit.NewLogPublisher(log)
	}

	// Stores.
	var (
		users     userstore.Store
		clients   clientstore.Store
		processes processstore.Store
		documents document.Store
		props     property.Store
		leads     leadstore.Store
		deadlines deadline.Store
		notifs    notifstore.Store
		jobs      jobsstore.Store
		events    audit.Store
	)
	if pool != nil {
		users = userstore.NewPostgres(pool)
		clients = clientstore.NewPostgres(pool)
		processes = processstore.NewPostgres(pool)
		documents = document.NewPostgresStore(pool)
		props = property.NewPostgresStore(pool)
		leads = leadstore.NewPostgres(pool)
		deadlines = deadline.NewPostgresStore(pool)
		notifs = notifstore.NewPostgres(pool)
		jobs = jobsstore.NewPostgres(pool)
		events = audit.NewPostgresStore(pool)
	} else {
		users = userstore.NewMemory()
		clients = clientstore.NewMemory()
		processes = processstore.NewMemory()
		documents = document.NewMemoryStore()
		props = property.NewMemoryStore()
		leads = leadstore.NewMemory()
		deadlines = deadline.NewMemoryStore()
		notifs = notifstore.NewMemory()
		jobs = jobsstore.NewMemory()
		events = audit.NewMemoryStore()
	}

	// Notifications: persist always, push over redis when available so every
	// server replica's websocket sessions hear about it.
	wsHub := notifhub.New(log)
	var pusher notifservice.Pusher
	if redisClient != nil {
		pusher = notifservice.NewRedisPusher(redisClient)
	} else {
		pusher = notifservice.NewHubPusher(wsHub)
	}
	notifications := notifservice.New(notifs, pusher, log)

	// Services.
	tokens := jwttoken.NewService(cfg.Auth.JWTSigningKey)
	validator := jwttoken.NewMiddlewareAdapter(tokens)
	userSvc := userservice.New(users, tokens, cfg.Auth.TokenTTL, auditor, log)
	clientSvc := clientservice.New(clients, auditor, log)
	processSvc := processservice.New(processes, clientSvc, userSvc, notifications, auditor,
		processmetrics.New(prometheus.DefaultRegisterer), log)
	documentSvc := document.NewService(documents, processSvc, auditor, log)
	propertySvc := property.NewService(props, log)
	leadSvc := leadservice.New(leads, clientSvc, propertySvc, processSvc, notifications, auditor,
		leadmetrics.New(prometheus.DefaultRegisterer), log)
	deadlineSvc := deadline.NewService(deadlines, processSvc, processes, notifications, log)
	jobSvc := jobsservice.New(jobs)

	if err := userSvc.Seed(ctx, cfg.Auth.SeedAdmin, cfg.Auth.SeedPassword); err != nil {
		return err
	}

	notifHandler := notifhandler.New(notifications, validator, log)
	deps := httptransport.Deps{
		Logger:      log,
		HTTPMetrics: metrics.NewHTTP(),
		Handlers: []httptransport.Registrar{
			userhandler.New(userSvc, validator, log),
			clienthandler.New(clientSvc, validator, log),
			processhandler.New(processSvc, validator, log),
			document.NewHandler(documentSvc, validator, log),
			property.NewHandler(propertySvc, validator, log),
			leadhandler.New(leadSvc, validator, log),
			deadline.NewHandler(deadlineSvc, validator, log),
			notifHandler,
			jobshandler.New(jobSvc, validator, log),
			audit.NewHandler(events, validator, log),
		},
		WebSocket: notifhandler.NewWS(notifHandler, wsHub),
	}
	if pool != nil {
		deps.Postgres = pool
	}
	if redisClient != nil {
		deps.Redis = redisClient
	}

	srv := httpserver.New(cfg.Server.Addr, httptransport.NewRouter(deps))

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if redisClient != nil {
		subscriber := notifservice.NewSubscriber(redisClient, wsHub, log)
		group.Go(func() error {
			return subscriber.Run(ctx)
		})
	}
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

// The worker drains the job queue and persists the audit trail. It shares
// stores with the server but carries no HTTP surface.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"brokerdesk/internal/audit"
	auditconsumer "brokerdesk/internal/audit/consumer"
	clientservice "brokerdesk/internal/client/service"
	clientstore "brokerdesk/internal/client/store"
	"brokerdesk/internal/deadline"
	jobsmodels "brokerdesk/internal/jobs/models"
	jobsrunner "brokerdesk/internal/jobs/runner"
	jobsstore "brokerdesk/internal/jobs/store"
	leadmetrics "brokerdesk/internal/lead/metrics"
	leadservice "brokerdesk/internal/lead/service"
	leadstore "brokerdesk/internal/lead/store"
	notifhub "brokerdesk/internal/notification/hub"
	notifservice "brokerdesk/internal/notification/service"
	notifstore "brokerdesk/internal/notification/store"
	"brokerdesk/internal/platform/config"
	"brokerdesk/internal/platform/kafka"
	"brokerdesk/internal/platform/logger"
	"brokerdesk/internal/platform/postgres"
	"brokerdesk/internal/platform/redis"
	processmetrics "brokerdesk/internal/process/metrics"
	processservice "brokerdesk/internal/process/service"
	processstore "brokerdesk/internal/process/store"
	"brokerdesk/internal/property"
	userservice "brokerdesk/internal/user/service"
	userstore "brokerdesk/internal/user/store"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("worker exited", "error", err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	pool, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
		if err := pool.EnsureSchema(ctx); err != nil {
			return err
		}
	} else {
		// Without a shared database the worker only sees its own queue.
		log.Warn("no DATABASE_URL set, worker runs against in-memory stores")
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, sweep notifications stay unpushed", "error", err.Error())
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var (
		users     userstore.Store
		clients   clientstore.Store
		processes processstore.Store
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
		props = property.NewMemoryStore()
		leads = leadstore.NewMemory()
		deadlines = deadline.NewMemoryStore()
		notifs = notifstore.NewMemory()
		jobs = jobsstore.NewMemory()
		events = audit.NewMemoryStore()
	}
	return runWith(ctx, cfg, log, redisClient, users, clients, processes, props, leads, deadlines, notifs, jobs, events)
}

func runWith(
	ctx context.Context,
	cfg config.Config,
	log *slog.Logger,
	redisClient *redis.Client,
	users userstore.Store,
	clients clientstore.Store,
	processes processstore.Store,
	props property.Store,
	leads leadstore.Store,
	deadlines deadline.Store,
	notifs notifstore.Store,
	jobs jobsstore.Store,
	events audit.Store,
) error {
	auditor := audit.Publisher(audit.NewLogPublisher(log))
	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		log.Warn("kafka unavailable, audit trail degrades to logs", "error", err.Error())
		producer = nil
	}
	if producer != nil {
		defer producer.Close()
		if err := kafka.EnsureTopics(ctx, cfg.Kafka, cfg.Kafka.AuditTopic); err != nil {
			log.Warn("failed to ensure audit topic", "error", err.Error())
		}
		auditor = audit.NewKafkaPublisher(producer, cfg.Kafka.AuditTopic)
	}

	// Sweep notifications are persisted here and pushed over redis so the
	// server's websocket sessions hear about them.
	var pusher notifservice.Pusher
	if redisClient != nil {
		pusher = notifservice.NewRedisPusher(redisClient)
	} else {
		pusher = notifservice.NewHubPusher(notifhub.New(log))
	}
	notifications := notifservice.New(notifs, pusher, log)

	userSvc := userservice.New(users, nil, 0, auditor, log)
	clientSvc := clientservice.New(clients, auditor, log)
	processSvc := processservice.New(processes, clientSvc, userSvc, notifications, auditor,
		processmetrics.New(prometheus.NewRegistry()), log)
	propertySvc := property.NewService(props, log)
	leadSvc := leadservice.New(leads, clientSvc, propertySvc, processSvc, notifications, auditor,
		leadmetrics.New(prometheus.NewRegistry()), log)
	deadlineSvc := deadline.NewService(deadlines, processSvc, processes, notifications, log)

	runner := jobsrunner.New(jobs, cfg.Worker.PollInterval, auditor, log)
	runner.Register(jobsmodels.KindLeadMatchSweep, func(ctx context.Context, payload json.RawMessage) error {
		var params struct {
			Since time.Time `json:"since"`
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &params); err != nil {
				return err
			}
		}
		since := params.Since
		if since.IsZero() {
			since = time.Now().Add(-24 * time.Hour)
		}
		sent, err := leadSvc.SweepMatches(ctx, since)
		if err != nil {
			return err
		}
		log.InfoContext(ctx, "lead match sweep finished", "notifications", sent)
		return nil
	})
	runner.Register(jobsmodels.KindDeadlineSweep, func(ctx context.Context, _ json.RawMessage) error {
		sent, err := deadlineSvc.Sweep(ctx, time.Now())
		if err != nil {
			return err
		}
		log.InfoContext(ctx, "deadline sweep finished", "notifications", sent)
		return nil
	})

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return runner.Run(ctx)
	})

	if len(cfg.Kafka.Brokers) > 0 {
		consumer, err := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.AuditTopic)
		if err != nil {
			log.Warn("kafka consumer unavailable, audit trail not persisted", "error", err.Error())
		} else {
			router := auditconsumer.NewRouter(log)
			router.Register(cfg.Kafka.AuditTopic, auditconsumer.NewTrailHandler(events, log))
			group.Go(func() error {
				defer consumer.Close()
				return consumer.Run(ctx, router)
			})
		}
	}
	return group.Wait()
}

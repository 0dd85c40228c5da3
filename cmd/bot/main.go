package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/remindly/bot/api/handler"
	"github.com/remindly/bot/domain"
	"github.com/remindly/bot/internal/ai"
	"github.com/remindly/bot/internal/config"
	"github.com/remindly/bot/internal/infrastructure/buffer"
	"github.com/remindly/bot/internal/infrastructure/monitor"
	pgInfra "github.com/remindly/bot/internal/infrastructure/postgres"
	redisInfra "github.com/remindly/bot/internal/infrastructure/redis"
	"github.com/remindly/bot/internal/middleware"
	"github.com/remindly/bot/internal/router"
	"github.com/remindly/bot/internal/scheduler"
	"github.com/remindly/bot/internal/services"
	"github.com/remindly/bot/internal/services/lifecycle"
	"github.com/remindly/bot/internal/transport/telegram"
	"github.com/remindly/bot/pkg/chrono"
	"github.com/remindly/bot/pkg/httpcontext"
	"github.com/remindly/bot/pkg/logger"
	"github.com/remindly/bot/repository"
	"github.com/remindly/bot/repository/postgres"
	redisRepo "github.com/remindly/bot/repository/redis"
	"github.com/remindly/bot/usecase/command"
	"github.com/remindly/bot/usecase/digest"
	"github.com/remindly/bot/usecase/intent"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	loc, err := time.LoadLocation(cfg.Reminder.Timezone)
	if err != nil {
		zapLogger.Fatal("invalid timezone", zap.String("timezone", cfg.Reminder.Timezone), zap.Error(err))
	}

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	queueStore, err := buffer.Open(cfg.Buffer.Path, "enrich")
	if err != nil {
		zapLogger.Fatal("failed to open enrichment queue", zap.Error(err))
	}
	manager.Register("enrich_queue", func(ctx context.Context) error {
		return queueStore.Close()
	})

	mon := monitor.New(pool, redisClient, queueStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	todoRepo := postgres.NewTodoRepository(pool)
	linkRepo := postgres.NewLinkRepository(pool)
	stateRepo := redisRepo.NewStateRepository(redisClient)

	parser := chrono.NewParser(loc, chrono.SystemClock{})
	classifier := intent.NewClassifier(parser)

	aiClient := ai.NewClient(cfg.AI, zapLogger)

	enricher := services.NewEnricher(
		queueStore,
		linkRepo,
		aiClient,
		cfg.Buffer.MaxRetry,
		cfg.Buffer.DrainInterval,
		zapLogger,
	)
	if err := enricher.Start(); err != nil {
		zapLogger.Fatal("failed to start link enricher", zap.Error(err))
	}
	manager.Register("enricher", func(ctx context.Context) error {
		enricher.Stop()
		return nil
	})

	tgClient := telegram.NewClient(cfg.Telegram, zapLogger)

	sched := scheduler.New(tgClient, cfg.Telegram.ChatID, chrono.SystemClock{}, loc, zapLogger)
	registerReminderJobs(appCtx, sched, cfg, parser, todoRepo, linkRepo, stateRepo, zapLogger)
	sched.Start()
	manager.Register("scheduler", func(ctx context.Context) error {
		sched.Stop()
		return nil
	})

	commandSvc := command.NewService(
		classifier,
		parser,
		todoRepo,
		linkRepo,
		stateRepo,
		sched,
		enricher,
		aiClient,
		zapLogger,
	)

	// /summarize calls the AI API synchronously, so inbound handling
	// gets the AI budget on top of the store budget.
	handlerTimeout := cfg.Context.RequestTimeout + cfg.AI.Timeout
	poller := telegram.NewPoller(tgClient, stateRepo, commandSvc.HandleText, cfg.Telegram.ChatID, handlerTimeout, zapLogger)
	poller.Start()
	manager.Register("poller", func(ctx context.Context) error {
		poller.Stop()
		return nil
	})

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
		Todo:   apiHandler.NewTodoHandler(todoRepo, ctxAdapter, zapLogger),
		Link:   apiHandler.NewLinkHandler(linkRepo, cfg.Telegram.ChatID, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, cfg.JWT.Issuer, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("admin server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("admin server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

// registerReminderJobs wires the two daily digests. The morning job's
// fire time prefers the persisted value over the configured default so
// a "change time" survives restarts.
func registerReminderJobs(
	ctx context.Context,
	sched *scheduler.Scheduler,
	cfg *config.Config,
	parser *chrono.Parser,
	todoRepo repository.TodoRepository,
	linkRepo repository.LinkRepository,
	stateRepo repository.BotStateRepository,
	zapLogger *zap.Logger,
) {
	morningTime := cfg.Reminder.TodoTime
	if stored, err := stateRepo.ReminderTime(ctx); err != nil {
		zapLogger.Warn("loading persisted reminder time failed", zap.Error(err))
	} else if stored != "" {
		morningTime = stored
	}

	morningHour, morningMinute, err := chrono.ParseClock(morningTime)
	if err != nil {
		zapLogger.Warn("stored reminder time invalid, using default",
			zap.String("value", morningTime))
		morningHour, morningMinute, _ = chrono.ParseClock(cfg.Reminder.TodoTime)
	}

	sched.Register(&scheduler.Job{
		Name:   domain.ReminderJobMorning,
		Hour:   morningHour,
		Minute: morningMinute,
		Build: func(ctx context.Context) (string, error) {
			pending, err := todoRepo.List(ctx, repository.TodoFilter{
				Mode:  domain.TodoListPending,
				Order: repository.TodoOrderDeadlineAsc,
			})
			if err != nil {
				return "", err
			}
			now := parser.Now()
			day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, parser.Location())
			dueToday, err := todoRepo.ListDueOn(ctx, day)
			if err != nil {
				return "", err
			}
			return digest.MorningDigest(pending, dueToday, now), nil
		},
	})

	linkHour, linkMinute, err := chrono.ParseClock(cfg.Reminder.LinkTime)
	if err != nil {
		zapLogger.Warn("configured link reminder time invalid, using 10:00",
			zap.String("value", cfg.Reminder.LinkTime))
		linkHour, linkMinute = 10, 0
	}

	sched.Register(&scheduler.Job{
		Name:   domain.ReminderJobLinks,
		Hour:   linkHour,
		Minute: linkMinute,
		Build: func(ctx context.Context) (string, error) {
			links, err := linkRepo.ListUnread(ctx, cfg.Telegram.ChatID, cfg.Reminder.LinkDigestLimit)
			if err != nil {
				return "", err
			}
			return digest.LinkDigest(links), nil
		},
	})
}

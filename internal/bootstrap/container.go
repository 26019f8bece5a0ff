package bootstrap

import (
	"context"
	"log"
	"time"

	"ai-tutoring-be/internal/config"
	"ai-tutoring-be/internal/constant"
	"ai-tutoring-be/internal/controller"
	"ai-tutoring-be/internal/handler"
	"ai-tutoring-be/internal/pkg/logger"
	"ai-tutoring-be/internal/repository/implementation"
	"ai-tutoring-be/internal/repository/memory"
	"ai-tutoring-be/internal/repository/unitofwork"
	"ai-tutoring-be/internal/service"
	"ai-tutoring-be/internal/websocket"
	"ai-tutoring-be/pkg/governance/budget"
	"ai-tutoring-be/pkg/governance/lifecycle"
	"ai-tutoring-be/pkg/governance/pedagogy"
	"ai-tutoring-be/pkg/governance/quota"
	"ai-tutoring-be/pkg/governance/ratelimit"
	"ai-tutoring-be/pkg/governance/tokens"
	"ai-tutoring-be/pkg/llm"
	"ai-tutoring-be/pkg/llm/factory"
	"ai-tutoring-be/pkg/resilience"

	pktNats "ai-tutoring-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController  controller.IAuthController
	TutorController controller.ITutorController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	TutorService    service.ITutorService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Reasoning Provider
	baseProvider, err := factory.NewLLMProvider(
		cfg.Ai.Provider,
		cfg.Ai.Model,
		cfg.Ai.BaseURL,
		cfg.Ai.APIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.Provider, cfg.Ai.Model)

	breaker := resilience.NewBreaker(resilience.DefaultBreakerConfig())
	llmProvider := llm.NewResilientProvider(baseProvider, breaker, cfg.Ai.Timeout)

	// 4. Governance Engines
	gov := cfg.Governance
	rateStore := memory.NewRateBucketRepository(10 * time.Minute)
	limiter := ratelimit.NewLimiter(rateStore, ratelimit.Config{
		RequestsPerWindow: gov.RateRequestsPerWindow,
		WindowSeconds:     gov.RateWindowSeconds,
	})

	dailyStore := memory.NewDailyUsageRepository()
	dailyQuota := quota.NewDailyQuota(dailyStore, gov.DailyProblemLimit)

	turnPolicy := quota.TurnPolicy{
		MaxTurns:       gov.MaxTurnsPerSession,
		WarnThresholds: gov.TurnWarnThresholds,
	}

	counter := tokens.NewCounter()
	budgetMgr := budget.NewManager(counter, budget.Config{
		HardLimit:           gov.TokenHardLimit,
		SoftLimit:           gov.TokenSoftLimit,
		ReservedForResponse: gov.ReservedForResponse,
		MaxTurnPairs:        gov.MaxTurnPairs,
		CompressThreshold:   gov.CompressThreshold,
		KeepSystemPrompt:    true,
	})

	detector := pedagogy.NewDetector(pedagogy.DefaultDetectorConfig())
	advisor := pedagogy.NewAdvisor(llmProvider, pedagogy.DefaultAdvisorConfig())
	judge := pedagogy.NewJudge(llmProvider, pedagogy.DefaultJudgeConfig())

	monitorCfg := lifecycle.MonitorConfig{
		InactivityTimeout: gov.InactivityTimeout,
		Tick:              gov.MonitorTick,
	}

	// 5. Infrastructure
	// NATS mirror for external event consumers; optional.
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis for cross-node websocket fan-out; optional.
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		rdb = nil
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 6. Services
	authService := service.NewAuthService(uowFactory)

	tutorService := service.NewTutorService(
		uowFactory,
		limiter,
		dailyQuota,
		turnPolicy,
		budgetMgr,
		counter,
		detector,
		advisor,
		judge,
		monitorCfg,
		llmProvider,
		pubSub,
		sysLogger,
	)

	// Notification Domain
	notifRepo := implementation.NewNotificationRepository(db)
	notifService := service.NewNotificationService(notifRepo, wsHub, wsLogger)

	consumerService := service.NewConsumerService(
		pubSub,
		constant.GovernanceEventTopic,
		notifService,
		natsPub,
	)

	notifHandler := handler.NewNotificationHandler(notifService, wsHub, wsLogger)

	// 7. Controllers
	return &Container{
		AuthController:  controller.NewAuthController(authService),
		TutorController: controller.NewTutorController(tutorService),

		ConsumerService: consumerService,
		TutorService:    tutorService,

		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
	}
}

package bootstrap

import (
	"context"
	"log"
	"time"

	"ai-legal-assistant-be/internal/config"
	"ai-legal-assistant-be/internal/controller"
	"ai-legal-assistant-be/internal/pkg/logger"
	"ai-legal-assistant-be/internal/pkg/mailer"
	"ai-legal-assistant-be/internal/repository/contract"
	"ai-legal-assistant-be/internal/repository/memory"
	"ai-legal-assistant-be/internal/repository/redisrepo"
	"ai-legal-assistant-be/internal/repository/unitofwork"
	"ai-legal-assistant-be/internal/service"
	"ai-legal-assistant-be/internal/websocket"
	"ai-legal-assistant-be/pkg/codegen"
	"ai-legal-assistant-be/pkg/extract"
	"ai-legal-assistant-be/pkg/llm/factory"

	pktNats "ai-legal-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const auditTopic = "analysis.completed"

type Container struct {
	// Controllers
	ConversationController controller.IConversationController

	// WebSocket transport
	ChatHandler *websocket.ChatHandler

	// Background Services (Exposed for main.go to run)
	AuditService service.IAuditService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	auditLogger := logger.NewIsolatedLogger(cfg.App.AuditLogFilePath)

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Dialogue context store. Memory is the default; Redis keeps an active
	// stage conversation across restarts.
	dialogueTTL := time.Duration(cfg.App.DialogueTTLMinutes) * time.Minute
	var dialogueRepo contract.DialogueRepository
	if cfg.App.DialogueStore == "redis" {
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
		}
		dialogueRepo = redisrepo.NewDialogueRepository(rdb, dialogueTTL)
		log.Printf("[INFO] Using Dialogue Store: REDIS")
	} else {
		dialogueRepo = memory.NewDialogueRepository(dialogueTTL)
		log.Printf("[INFO] Using Dialogue Store: MEMORY")
	}

	// Initialize LLM Provider based on Config
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OpenAIBaseURL,
		cfg.Ai.OpenAIAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 3. Services
	publisherService := service.NewPublisherService(auditTopic, pubSub)
	auditService := service.NewAuditService(pubSub, auditTopic, auditLogger)

	analysisService := service.NewAnalysisService(
		dialogueRepo,
		llmProvider,
		publisherService,
		sysLogger,
	)

	conversationService := service.NewConversationService(
		uowFactory,
		analysisService,
		emailService,
		codegen.New(cfg.Verification.CodeLength),
		extract.NewExtractor(),
		natsPub,
		sysLogger,
		cfg.Verification.AllowedEmailDomains,
	)

	// 4. Transports
	return &Container{
		ConversationController: controller.NewConversationController(conversationService, sysLogger),
		ChatHandler:            websocket.NewChatHandler(conversationService, sysLogger),
		AuditService:           auditService,
	}
}

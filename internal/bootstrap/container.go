package bootstrap

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"intellicart-assistant-be/internal/client"
	"intellicart-assistant-be/internal/config"
	"intellicart-assistant-be/internal/controller"
	"intellicart-assistant-be/internal/pkg/logger"
	"intellicart-assistant-be/internal/pkg/mailer"
	"intellicart-assistant-be/internal/repository/contract"
	"intellicart-assistant-be/internal/repository/implementation"
	"intellicart-assistant-be/internal/repository/memory"
	"intellicart-assistant-be/internal/repository/redisstore"
	"intellicart-assistant-be/internal/service"
	"intellicart-assistant-be/internal/tools"
	"intellicart-assistant-be/pkg/agent"
	"intellicart-assistant-be/pkg/embedding"
	"intellicart-assistant-be/pkg/llm/factory"
	"intellicart-assistant-be/pkg/rag"
	"intellicart-assistant-be/pkg/rag/index"
	"intellicart-assistant-be/pkg/rag/intent"

	pktNats "intellicart-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AssistantController controller.IAssistantController
	AgentController     controller.IAgentController

	// Background Services (Exposed for main.go to run)
	ConsumerService  service.IConsumerService
	CatalogueService service.ICatalogueService

	ReindexOnStartup bool
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Session storage: in-process by default, Redis when configured
	var sessionRepo contract.ISessionRepository
	if cfg.Session.Store == "redis" {
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
		sessionRepo = redisstore.NewSessionRepository(rdb)
		log.Printf("[INFO] Using Session Store: REDIS")
	} else {
		sessionRepo = memory.NewSessionRepository()
		log.Printf("[INFO] Using Session Store: MEMORY")
	}

	// Vector index: in-process by default, pgvector when configured
	var catalogueIndex index.Index
	if cfg.Index.Backend == "pgvector" && db != nil {
		catalogueIndex = implementation.NewBookEmbeddingRepository(db)
		log.Printf("[INFO] Using Catalogue Index: PGVECTOR")
	} else {
		catalogueIndex = index.NewMemoryIndex()
		log.Printf("[INFO] Using Catalogue Index: MEMORY")
	}

	// 5. Shop microservice clients
	userClient := client.NewUserClient(cfg.Services.UserBaseURL)
	orderClient := client.NewOrderClient(cfg.Services.OrderBaseURL)
	bookClient := client.NewBookClient(cfg.Services.BookBaseURL)

	// 6. Domain services
	aiLogger := initAILogger()
	ragEngine := rag.NewEngine(embeddingProvider, catalogueIndex, llmProvider, aiLogger)
	intentResolver := intent.NewResolver(llmProvider, aiLogger)

	publisherService := service.NewPublisherService(cfg.Keys.OrderPlacedTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.OrderPlacedTopic,
		natsPub,
		emailService,
		userClient,
		sysLogger,
	)

	catalogueService := service.NewCatalogueService(bookClient, ragEngine, sysLogger)

	assistantService := service.NewAssistantService(
		sessionRepo,
		userClient,
		orderClient,
		ragEngine,
		intentResolver,
		llmProvider,
		publisherService,
		sysLogger,
	)

	// 7. Agent tool bridge
	toolRouter := agent.NewRouter(map[string]agent.Tool{
		"userTool":         tools.NewUserTool(userClient),
		"orderTool":        tools.NewOrderTool(orderClient),
		"bookTool":         tools.NewBookTool(bookClient),
		"recommend_books":  tools.NewRecommendBooksTool(ragEngine),
		"search_catalogue": tools.NewSearchCatalogueTool(bookClient),
	})
	bridge := agent.NewBridge(llmProvider, toolRouter, agent.SystemPrompt, agent.StylePrompt, aiLogger)
	agentService := service.NewAgentService(sessionRepo, bridge, sysLogger)

	return &Container{
		AssistantController: controller.NewAssistantController(assistantService, catalogueService),
		AgentController:     controller.NewAgentController(agentService),

		ConsumerService:  consumerService,
		CatalogueService: catalogueService,

		ReindexOnStartup: cfg.Index.OnStartup,
	}
}

// initAILogger writes LLM and retrieval traffic to its own file so
// prompt debugging doesn't drown the request log.
func initAILogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "llm_rag.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[LLM-RAG] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}

package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"info-seeker-be/internal/config"
	"info-seeker-be/internal/controller"
	"info-seeker-be/internal/handler"
	"info-seeker-be/internal/pkg/logger"
	"info-seeker-be/internal/repository/contract"
	"info-seeker-be/internal/repository/implementation"
	"info-seeker-be/internal/repository/memory"
	"info-seeker-be/internal/repository/redisstore"
	"info-seeker-be/internal/service"
	"info-seeker-be/internal/websocket"
	"info-seeker-be/pkg/agents"
	"info-seeker-be/pkg/embedding"
	"info-seeker-be/pkg/llm/factory"
	pktNats "info-seeker-be/pkg/nats"
	"info-seeker-be/pkg/pipeline"
	"info-seeker-be/pkg/progress"
	"info-seeker-be/pkg/retrieval"
	"info-seeker-be/pkg/scoring"
	"info-seeker-be/pkg/taskset"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const orphanGrace = 2 * time.Minute

type Container struct {
	// Controllers
	SearchController   controller.ISearchController
	DocumentController controller.IDocumentController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Streaming
	StreamHandler *handler.StreamHandler
	StreamHub     *websocket.Hub
	ProgressBus   *progress.Bus

	// Pipeline for in-process callers such as the CLI
	Pipeline *pipeline.Controller

	Logger logger.ILogger

	runTasks     *taskset.Set
	persistTasks *taskset.Set
	closers      []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	streamLogger := logger.NewIsolatedLogger(cfg.App.StreamLogFilePath)
	c := &Container{Logger: sysLogger}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. AI providers
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.LLMTimeout,
	)
	if err != nil {
		return nil, fmt.Errorf("init llm provider: %w", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	embedder := embedding.NewOllamaProvider(
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.EmbeddingModel,
		cfg.Ai.EmbeddingDimensions,
	)

	// 4. Infrastructure
	var eventPublisher service.EventPublisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		eventPublisher = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}

	sessionRepo := newSessionRepository(cfg, c)

	var (
		workflowRepo contract.WorkflowSessionRepository
		documentRepo contract.DocumentRepository
	)
	if db != nil {
		workflowRepo = implementation.NewWorkflowSessionRepository(db)
		documentRepo = implementation.NewDocumentRepository(db)
	} else {
		log.Printf("[WARN] No database configured; audit history and knowledge base are disabled")
	}

	// 5. Worker pools
	runTasks, err := taskset.New("search-runs", cfg.Pipeline.RunWorkers, sysLogger)
	if err != nil {
		return nil, err
	}
	persistTasks, err := taskset.New("session-persist", cfg.Pipeline.PersistWorkers, sysLogger)
	if err != nil {
		return nil, err
	}
	c.runTasks = runTasks
	c.persistTasks = persistTasks

	// 6. Services
	documentService := service.NewDocumentService(documentRepo, embedder, sysLogger)
	auditService := service.NewAuditService(workflowRepo, eventPublisher, sysLogger)

	web := retrieval.NewWeb(retrieval.WebConfig{
		APIKey:     cfg.Search.SerpAPIKey,
		Endpoint:   cfg.Search.Endpoint,
		Engine:     cfg.Search.Engine,
		MaxResults: cfg.Search.MaxResults,
		Timeout:    cfg.Pipeline.PhaseTimeout,
	})
	caps := pipeline.Capabilities{
		Web:         web,
		Synthesizer: agents.NewSynthesizer(llmProvider),
		Validator:   agents.NewValidator(llmProvider, web, sysLogger),
		Composer:    agents.NewComposer(llmProvider),
	}
	if documentRepo != nil {
		caps.Knowledge = retrieval.NewKnowledge(embedder, documentService, retrieval.KnowledgeConfig{
			Limit:               cfg.Search.KnowledgeLimit,
			SimilarityThreshold: cfg.Search.SimilarityThreshold,
		})
	}

	bus := progress.NewBus(cfg.ProgressBus())
	runner, err := pipeline.NewController(
		caps,
		bus,
		scoring.NewEngine(cfg.ScoringEngine()),
		pipeline.Config{PhaseTimeout: cfg.Pipeline.PhaseTimeout, Sources: cfg.SourcePolicy()},
		pipeline.WithLogger(sysLogger),
		pipeline.WithSessionStore(sessionRepo),
		pipeline.WithAudit(auditService, persistTasks),
	)
	if err != nil {
		return nil, fmt.Errorf("init pipeline: %w", err)
	}

	searchService := service.NewSearchService(pubSub, service.SearchTopic, runner, bus, sessionRepo, workflowRepo, sysLogger)
	consumerService := service.NewConsumerService(pubSub, service.SearchTopic, runner, runTasks, bus, bus, orphanGrace, sysLogger)

	// 7. Streaming
	hub := websocket.NewHub(streamLogger)
	streamHandler := handler.NewStreamHandler(hub, bus, sessionRepo, websocket.StreamConfig{
		PollInterval:   cfg.Progress.PollInterval,
		HeartbeatEvery: cfg.Progress.HeartbeatEvery,
	}, streamLogger)

	// 8. Controllers
	c.SearchController = controller.NewSearchController(searchService, auditService)
	c.DocumentController = controller.NewDocumentController(documentService)
	c.ConsumerService = consumerService
	c.StreamHandler = streamHandler
	c.StreamHub = hub
	c.ProgressBus = bus
	c.Pipeline = runner
	return c, nil
}

// newSessionRepository returns the redis store when configured and reachable,
// otherwise the in-process cache.
func newSessionRepository(cfg *config.Config, c *Container) contract.SessionRepository {
	if cfg.App.SessionStore != "redis" {
		return memory.NewSessionRepository(cfg.App.SessionTTL)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Falling back to memory session store", err)
		_ = rdb.Close()
		return memory.NewSessionRepository(cfg.App.SessionTTL)
	}
	c.closers = append(c.closers, func() { _ = rdb.Close() })
	return redisstore.NewSessionRepository(rdb, cfg.App.SessionTTL)
}

// Shutdown stops accepting runs, waits for in-flight runs and their
// persistence tasks, then releases infrastructure connections.
func (c *Container) Shutdown(ctx context.Context) error {
	var firstErr error
	if c.runTasks != nil {
		if err := c.runTasks.Drain(ctx); err != nil {
			firstErr = err
		}
	}
	if c.persistTasks != nil {
		if err := c.persistTasks.Drain(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	if z, ok := c.Logger.(interface{ Sync() error }); ok {
		_ = z.Sync()
	}
	return firstErr
}

package bootstrap

import (
	"context"
	"log"
	"time"

	"ai-memory-capture/internal/config"
	"ai-memory-capture/internal/controller"
	"ai-memory-capture/internal/handler"
	"ai-memory-capture/internal/pkg/logger"
	"ai-memory-capture/internal/repository/memory"
	"ai-memory-capture/internal/repository/unitofwork"
	"ai-memory-capture/internal/service"
	"ai-memory-capture/internal/websocket"
	"ai-memory-capture/pkg/audio"
	"ai-memory-capture/pkg/calendar"
	"ai-memory-capture/pkg/cloudstore"
	"ai-memory-capture/pkg/llm/factory"
	pktNats "ai-memory-capture/pkg/nats"
	"ai-memory-capture/pkg/recorder"
	sttopenai "ai-memory-capture/pkg/stt/openai"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/openai/openai-go/option"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const locationCacheTTL = 10 * time.Minute

type Container struct {
	// Controllers
	UserController     controller.IUserController
	SessionController  controller.ISessionController
	QuestionController controller.IQuestionController
	SyncController     controller.ISyncController
	CalendarController controller.ICalendarController
	LocationController controller.ILocationController

	// Services used directly by the commands
	SessionService  service.ISessionService
	SyncService     service.ISyncService
	CloudService    service.ICloudService
	ConsumerService service.IConsumerService

	// Live feed
	LiveHandler  *handler.LiveHandler
	WebSocketHub *websocket.Hub

	Logger *logger.ZapLogger

	pubSub     *gochannel.GoChannel
	cloudStore cloudstore.Store
	natsPub    *pktNats.Publisher
	rdb        *redis.Client
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermillLogger,
	)
	publisherService := service.NewPublisherService(service.EventsTopic, pubSub)

	// 3. Providers
	llmProvider, err := factory.NewLLMProvider(factory.ProviderConfig{
		Type:    cfg.Ai.LLMProvider,
		Model:   cfg.Ai.LLMModel,
		BaseURL: llmBaseURL(cfg),
		APIKey:  cfg.Keys.OpenAI,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	var sttOpts []option.RequestOption
	if cfg.Ai.OpenAIBaseURL != "" {
		sttOpts = append(sttOpts, option.WithBaseURL(cfg.Ai.OpenAIBaseURL))
	}
	transcriber := sttopenai.NewWhisperTranscriber(cfg.Keys.OpenAI, cfg.Ai.TranscriptionModel, sttOpts...)

	// 4. Cloud mirror
	var store cloudstore.Store
	if cfg.Cloud.ProjectID != "" {
		fsStore, err := cloudstore.NewFirestoreStore(context.Background(), cfg.Cloud.ProjectID, cfg.Cloud.SessionsCollection, cfg.Cloud.CredentialsFile)
		if err != nil {
			log.Printf("[WARN] Failed to connect to Firestore: %v. Cloud mirroring disabled", err)
		} else {
			store = fsStore
		}
	} else {
		log.Println("[INFO] FIRESTORE_PROJECT_ID not set, cloud mirroring disabled")
	}
	cloudService := service.NewCloudService(store, cfg.Pipeline.MirrorQueueSize, sysLogger)

	// 5. Infrastructure
	// NATS
	var natsPub *pktNats.Publisher
	var forwarder service.EventForwarder
	if cfg.App.NatsURL != "" {
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			forwarder = natsPub
		}
	}

	// Redis
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	}

	// WebSocket Hub
	wsHub := websocket.NewHub(rdb, sysLogger)

	consumerService := service.NewConsumerService(
		pubSub,
		service.EventsTopic,
		forwarder,
		wsHub, // Hub implements LiveBroadcaster
		sysLogger,
	)

	// 6. Services
	transcriptionService := service.NewTranscriptionService(transcriber, cfg.Recording.KeepAudioChunks, sysLogger)
	titleService := service.NewTitleService(llmProvider)
	locationService := service.NewLocationService(
		cfg.Keys.GoogleMaps,
		cfg.Pipeline.LocationLookupTimeout,
		memory.NewLocationCache(locationCacheTTL),
		sysLogger,
	)

	recorderFactory, err := newRecorderFactory(cfg.Recording, sysLogger)
	if err != nil {
		log.Fatalf("[FATAL] Invalid CAPTURE_COMMAND: %v", err)
	}

	sessionService := service.NewSessionService(
		uowFactory,
		recorderFactory,
		transcriptionService,
		titleService,
		cloudService,
		locationService,
		publisherService,
		sysLogger,
		service.SessionConfig{
			StopPollAttempts: cfg.Pipeline.StopPollAttempts,
			StopPollInterval: cfg.Pipeline.StopPollInterval,
			TitleTimeout:     cfg.Pipeline.TitleTimeout,
		},
	)
	summaryService := service.NewSummaryService(
		uowFactory,
		llmProvider,
		titleService,
		cloudService,
		publisherService,
		sysLogger,
		service.SummaryConfig{
			WaitAttempts: cfg.Pipeline.SummaryWaitAttempts,
			WaitInterval: cfg.Pipeline.SummaryWaitInterval,
		},
	)
	questionService := service.NewQuestionService(
		uowFactory,
		llmProvider,
		sessionService, // live transcript of the recording session
		cloudService,
		publisherService,
		sysLogger,
		cfg.Pipeline.ShortTranscriptWordMin,
	)
	syncService := service.NewSyncService(uowFactory, cloudService, publisherService, sysLogger)
	calendarService := service.NewCalendarService(calendar.NewGoogleClient(), sysLogger)

	// 7. Controllers
	return &Container{
		UserController:     controller.NewUserController(),
		SessionController:  controller.NewSessionController(sessionService, summaryService, questionService),
		QuestionController: controller.NewQuestionController(questionService),
		SyncController:     controller.NewSyncController(syncService),
		CalendarController: controller.NewCalendarController(calendarService),
		LocationController: controller.NewLocationController(locationService),

		SessionService:  sessionService,
		SyncService:     syncService,
		CloudService:    cloudService,
		ConsumerService: consumerService,

		LiveHandler:  handler.NewLiveHandler(wsHub, sysLogger),
		WebSocketHub: wsHub,

		Logger: sysLogger,

		pubSub:     pubSub,
		cloudStore: store,
		natsPub:    natsPub,
		rdb:        rdb,
	}
}

// Close drains the cloud mirror and releases external connections. Active
// sessions must already be stopped.
func (c *Container) Close() {
	c.CloudService.Close()
	if c.cloudStore != nil {
		if err := c.cloudStore.Close(); err != nil {
			log.Printf("[WARN] Failed to close cloud store: %v", err)
		}
	}
	if err := c.pubSub.Close(); err != nil {
		log.Printf("[WARN] Failed to close event bus: %v", err)
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	if c.rdb != nil {
		_ = c.rdb.Close()
	}
	_ = c.Logger.Sync()
}

// newRecorderFactory validates the capture command once; each session then
// gets its own engine and sink.
func newRecorderFactory(cfg config.RecordingConfig, log logger.ILogger) (service.RecorderFactory, error) {
	args, err := audio.ParseCaptureCommand(cfg.CaptureCommand)
	if err != nil {
		return nil, err
	}
	engineCfg := recorder.Config{
		Dir:                cfg.AudioDir,
		Extension:          cfg.FileExtension,
		ChunkDuration:      cfg.ChunkDuration,
		TickInterval:       cfg.TickInterval,
		QueueSize:          cfg.QueueSize,
		FlushPartialOnStop: cfg.FlushPartialOnStop,
	}
	return func() service.IRecorder {
		return recorder.NewEngine(audio.NewExecSinkArgs(args), audio.AlwaysGranted{}, engineCfg, log)
	}, nil
}

func llmBaseURL(cfg *config.Config) string {
	if cfg.Ai.LLMProvider == "ollama" {
		return cfg.Ai.OllamaBaseURL
	}
	return cfg.Ai.OpenAIBaseURL
}

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"sarvuday-server/internal/ai"
	"sarvuday-server/internal/app"
	"sarvuday-server/internal/cache"
	"sarvuday-server/internal/config"
	"sarvuday-server/internal/logging"
	"sarvuday-server/internal/platform/database"
	rabbitmqClient "sarvuday-server/internal/platform/rabbitmq"
	redisClient "sarvuday-server/internal/platform/redis"
	"sarvuday-server/internal/repository"
	"sarvuday-server/internal/worker"
)

// App owns every long-lived resource of the process.
type App struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *gorm.DB
	Redis  *redis.Client
	MQConn *amqp.Connection

	AuthService       *app.AuthService
	ChatService       *app.ChatService
	AssessmentService *app.AssessmentService
	TranscriptService *app.TranscriptService
	QuizService       *app.QuizService

	transcriptWorker *worker.TranscriptWorker
	localDispatcher  *worker.LocalDispatcher

	StartedAt time.Time
}

// Open loads configuration, builds the logger and connects the database. It
// is enough for commands that only touch the schema.
func Open(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	logger, err := logging.New(cfg.App.Env, cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	dsn := cfg.MySQLDSN()
	if cfg.Database.Driver == "sqlite" {
		dsn = cfg.Database.SQLite
	}
	db, err := database.New(ctx, cfg.Database.Driver, dsn, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	return &App{
		Config:    cfg,
		Logger:    logger,
		DB:        db,
		StartedAt: time.Now(),
	}, nil
}

// New opens the app, migrates the schema and wires every service.
func New(ctx context.Context) (*App, error) {
	a, err := Open(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.init(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.Config
	if err := database.Migrate(a.DB); err != nil {
		return err
	}

	var (
		historyCache app.HistoryCache
		locker       app.ConversationLocker
	)
	if cfg.Redis.Addr != "" {
		client, err := redisClient.New(ctx, cfg.Redis, cfg.App.Name)
		if err != nil {
			return err
		}
		a.Redis = client
		historyCache = cache.NewHistoryCache(client,
			time.Duration(cfg.Redis.HistoryTTLSeconds)*time.Second,
			time.Duration(cfg.Redis.HistoryDirtyTTLSeconds)*time.Second)
		locker = cache.NewConversationLock(client, time.Duration(cfg.Assessment.LockTTLSeconds)*time.Second)
	} else {
		a.Logger.Info("redis disabled, history cache and assessment lock off")
	}

	userRepo := repository.NewUserRepository(a.DB)
	turnRepo := repository.NewChatTurnRepository(a.DB)
	assessmentRepo := repository.NewAssessmentRepository(a.DB)

	a.TranscriptService = app.NewTranscriptService(turnRepo, cfg.Export.Dir)
	a.QuizService = app.NewQuizService(repository.NewQuizResultRepository(a.DB))

	var transcripts app.TranscriptQueue
	if cfg.RabbitMQ.URL != "" {
		conn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.App.Name, cfg.RabbitMQ.ExportQueue)
		if err != nil {
			return err
		}
		a.MQConn = conn
		a.transcriptWorker = worker.NewTranscriptWorker(conn, a.TranscriptService, cfg.RabbitMQ.ExportQueue, a.Logger)
		if err := a.transcriptWorker.Start(ctx); err != nil {
			return fmt.Errorf("start transcript worker failed: %w", err)
		}
		transcripts = rabbitmqClient.NewTranscriptPublisher(conn, cfg.RabbitMQ.ExportQueue)
	} else {
		a.localDispatcher = worker.NewLocalDispatcher(a.TranscriptService, 64, a.Logger)
		transcripts = a.localDispatcher
		a.Logger.Info("rabbitmq disabled, exporting transcripts in process")
	}

	a.AuthService = app.NewAuthService(
		userRepo,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute,
	)

	mapper := ai.NewSemanticMapperClient(cfg.Semantic.URL, time.Duration(cfg.Semantic.TimeoutSeconds)*time.Second)
	a.AssessmentService = app.NewAssessmentService(assessmentRepo, mapper, locker, assessmentPolicy(cfg.Assessment), a.Logger)

	completion := ai.NewCompletionClient(ai.CompletionConfig{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: float32(cfg.LLM.Temperature),
		Timeout:     time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	})
	a.ChatService = app.NewChatService(
		turnRepo,
		a.AssessmentService,
		completion,
		historyCache,
		transcripts,
		app.ChatOptions{
			SystemPrompt:  cfg.Chat.SystemPrompt,
			HistoryWindow: cfg.Chat.HistoryWindow,
		},
		a.Logger,
	)
	return nil
}

// assessmentPolicy applies configured floors over the defaults; a zero value
// in the option or question floor keeps the default.
func assessmentPolicy(cfg config.AssessmentConfig) app.AssessmentPolicy {
	policy := app.DefaultAssessmentPolicy()
	if cfg.OptionConfidence > 0 {
		policy.OptionConfidence = cfg.OptionConfidence
	}
	if cfg.QuestionConfidence > 0 {
		policy.QuestionConfidence = cfg.QuestionConfidence
	}
	policy.InitialQuestionConfidence = cfg.InitialQuestionConfidence
	return policy
}

// PingDB, PingRedis and PingRabbitMQ back the health endpoint.
func (a *App) PingDB(ctx context.Context) error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (a *App) PingRedis(ctx context.Context) error {
	if a.Redis == nil {
		return errors.New("redis disabled")
	}
	return a.Redis.Ping(ctx).Err()
}

func (a *App) PingRabbitMQ(context.Context) error {
	if a.MQConn == nil {
		return errors.New("rabbitmq disabled")
	}
	if a.MQConn.IsClosed() {
		return errors.New("connection closed")
	}
	return nil
}

func (a *App) Close() error {
	var closeErr error
	if a.transcriptWorker != nil {
		a.transcriptWorker.Close()
	}
	if a.localDispatcher != nil {
		a.localDispatcher.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.DB != nil {
		if err := database.Close(a.DB); err != nil {
			closeErr = err
		}
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return closeErr
}

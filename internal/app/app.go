package app

import (
	"context"
	"history_quiz_backend/internal/config"
	"history_quiz_backend/internal/controller"
	"history_quiz_backend/internal/event"
	"history_quiz_backend/internal/repository"
	"history_quiz_backend/internal/service"
	"history_quiz_backend/internal/util"
	"history_quiz_backend/pkg/database"
	"history_quiz_backend/pkg/logger"
	"history_quiz_backend/pkg/monitoring"
	"history_quiz_backend/pkg/security"
	"history_quiz_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/v2/mongo"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	Mongo           *mongo.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	sessions repository.SessionStore
	results  *repository.QuizResultRepository
}

type services struct {
	ai        *service.AIService
	generator *service.AIGenerator
	history   *service.HistoryService
	quiz      *service.QuizService
	publisher *event.EventPublisher
}

type controllers struct {
	quiz   *controller.QuizController
	health *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 由配置热加载调用
func (a *App) ApplyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(cfg *config.Config, db *gorm.DB, rdb *redis.Client, mdb *mongo.Database) *repositories {
	repos := &repositories{
		results: repository.NewQuizResultRepository(db),
	}

	switch cfg.SessionStore.Driver {
	case util.SessionStoreRedis:
		repos.sessions = repository.NewRedisSessionStore(rdb, cfg.SessionStore.TTL)
	case util.SessionStoreMongo:
		repos.sessions = repository.NewMongoSessionStore(mdb)
	default:
		repos.sessions = repository.NewGormSessionStore(db)
	}
	logger.Log.Info("Session store selected", zap.String("driver", cfg.SessionStore.Driver))
	return repos
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	publisher, err := event.NewEventPublisher(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange)
	if err != nil {
		logger.Log.Error("Failed to connect RabbitMQ, events disabled", zap.Error(err))
		publisher, _ = event.NewEventPublisher("", "")
	}
	s.publisher = publisher

	var archive service.Archiver
	if cfg.Storage.ArchiveResults {
		archive = service.NewArchiveService(&cfg.Storage)
	}

	s.ai = service.NewAIService(cfg.AI)
	s.generator = service.NewAIGenerator(s.ai)
	s.history = service.NewHistoryService(repos.results, archive, s.publisher)
	s.quiz = service.NewQuizService(repos.sessions, s.generator, s.history, cfg.Exam)

	a.RegisterConfigCallback(func(newCfg *config.Config) {
		s.ai.UpdateConfig(newCfg.AI)
		if len(newCfg.Exam.Blueprint) == 0 {
			newCfg.Exam.Blueprint = config.DefaultBlueprint()
		}
		s.quiz.UpdateExamConfig(newCfg.Exam)
		logger.Log.Info("AI and exam settings reloaded")
	})

	return s
}

func (a *App) initControllers(s *services) *controllers {
	checks := map[string]controller.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := a.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if a.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return a.Redis.Ping(ctx).Err()
		}
	}
	if a.Mongo != nil {
		checks["mongo"] = func(ctx context.Context) error {
			return a.Mongo.Ping(ctx, nil)
		}
	}

	return &controllers{
		quiz:   controller.NewQuizController(s.quiz, s.history),
		health: controller.NewHealthController(checks),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == "debug")
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.Server.Mode != "release" || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}
	if cfg.MigrateOnly {
		return app
	}

	// Redis / Mongo 只在被选为会话存储时连接
	if cfg.SessionStore.Driver == util.SessionStoreRedis {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		}
		app.Redis = rdb
	}

	var mdb *mongo.Database
	if cfg.SessionStore.Driver == util.SessionStoreMongo {
		client, mongoDB, err := database.InitMongo(&cfg.Mongo)
		if err != nil {
			logger.Log.Fatal("Failed to initialize mongo", zap.Error(err))
		}
		app.Mongo = client
		mdb = mongoDB
	}

	repos := app.initRepositories(cfg, db, app.Redis, mdb)
	services := app.initServices(repos, cfg)
	app.services = services
	controllers := app.initControllers(services)

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("history-quiz", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	// 先停止接收请求，再停考试计时器并保存进行中的会话
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.Close(ctx)
	logger.Log.Info("Server exiting")
}

func (a *App) Close(ctx context.Context) {
	if a.services != nil {
		if err := a.services.quiz.Shutdown(ctx); err != nil {
			logger.Log.Warn("Exam timers did not stop in time", zap.Error(err))
		}
		a.services.history.Wait()
		if err := a.services.publisher.Close(); err != nil {
			logger.Log.Warn("Failed to close event publisher", zap.Error(err))
		}
	}
	if err := tracing.Shutdown(ctx, a.tracer); err != nil {
		logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
	}
	if a.Mongo != nil {
		_ = a.Mongo.Disconnect(ctx)
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = logger.Log.Sync()
}

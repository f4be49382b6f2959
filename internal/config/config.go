package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig
	Log          LogConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Mongo        MongoConfig
	SessionStore SessionStoreConfig `mapstructure:"session_store"`
	JWT          JWTConfig
	AI           AIConfig
	Exam         ExamConfig
	Storage      StorageConfig
	RabbitMQ     RabbitMQConfig  `mapstructure:"rabbitmq"`
	Tracing      TracingConfig   `mapstructure:"tracing"`
	CORS         CORSConfig      `mapstructure:"cors"`
	RateLimit    RateLimitConfig `mapstructure:"rate_limit"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-"`
	MigrateOnly  bool `mapstructure:"-"`
}

type ServerConfig struct {
	Port string
	Mode string
}

// LogConfig 空 Level 时按 server.mode 推断
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// SessionStoreConfig 选择已保存会话的存储后端：mysql / redis / mongo
type SessionStoreConfig struct {
	Driver string        `mapstructure:"driver"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type AIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type BlueprintEntry struct {
	Topic   string `mapstructure:"topic"`
	MCQ     int    `mapstructure:"mcq"`
	TFGroup int    `mapstructure:"tf_group"`
}

type ExamConfig struct {
	Title           string           `mapstructure:"title"`
	DurationSeconds int              `mapstructure:"duration_seconds"`
	CountdownTicks  int              `mapstructure:"countdown_ticks"`
	TickInterval    time.Duration    `mapstructure:"tick_interval"`
	Blueprint       []BlueprintEntry `mapstructure:"blueprint"`
}

type StorageConfig struct {
	Type           string `mapstructure:"type"`
	ArchiveResults bool   `mapstructure:"archive_results"`
	LocalPath      string `mapstructure:"local_path"`
	MinioEndpoint  string `mapstructure:"minio_endpoint"`
	MinioAccessID  string `mapstructure:"minio_access_key"`
	MinioSecret    string `mapstructure:"minio_secret_key"`
	MinioBucket    string `mapstructure:"minio_bucket"`
	OSSEndpoint    string `mapstructure:"oss_endpoint"`
	OSSAccessKey   string `mapstructure:"oss_access_key"`
	OSSSecretKey   string `mapstructure:"oss_secret_key"`
	OSSBucket      string `mapstructure:"oss_bucket"`
}

type RabbitMQConfig struct {
	URI      string `mapstructure:"uri"`
	Exchange string `mapstructure:"exchange"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

// DefaultBlueprint 24 道单选 (0.25) + 4 组判断 (1.0) = 10 分
func DefaultBlueprint() []BlueprintEntry {
	return []BlueprintEntry{
		{Topic: "Lịch sử thế giới cận hiện đại", MCQ: 8, TFGroup: 1},
		{Topic: "Cách mạng Việt Nam 1930-1945", MCQ: 6, TFGroup: 1},
		{Topic: "Kháng chiến chống Pháp và chống Mỹ", MCQ: 6, TFGroup: 1},
		{Topic: "Công cuộc Đổi mới từ 1986", MCQ: 4, TFGroup: 1},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.file", "logs/app.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parsetime", true)
	v.SetDefault("session_store.driver", "mysql")
	v.SetDefault("session_store.ttl", "168h")
	v.SetDefault("ai.timeout", "90s")
	v.SetDefault("exam.title", "Đề thi thử tốt nghiệp THPT môn Lịch sử")
	v.SetDefault("exam.duration_seconds", 2700)
	v.SetDefault("exam.countdown_ticks", 3)
	v.SetDefault("exam.tick_interval", "1s")
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "./archive")
	v.SetDefault("rabbitmq.exchange", "quiz.events")
	v.SetDefault("rate_limit.max_requests", 600)
	v.SetDefault("rate_limit.window_minutes", 1)
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("HISTORY_QUIZ")
	v.AutomaticEnv()
	setDefaults(v)

	// Database
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// Redis / Mongo
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("mongo.uri", "MONGO_URI")
	v.BindEnv("session_store.driver", "SESSION_STORE_DRIVER")

	// JWT
	v.BindEnv("jwt.secret", "JWT_SECRET")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("log.level", "LOG_LEVEL")

	// AI
	v.BindEnv("ai.base_url", "AI_BASE_URL")
	v.BindEnv("ai.api_key", "AI_API_KEY")
	v.BindEnv("ai.model", "AI_MODEL")

	// Storage
	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	v.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("storage.minio_bucket", "MINIO_BUCKET")
	v.BindEnv("storage.oss_endpoint", "OSS_ENDPOINT")
	v.BindEnv("storage.oss_access_key", "OSS_ACCESS_KEY")
	v.BindEnv("storage.oss_secret_key", "OSS_SECRET_KEY")
	v.BindEnv("storage.oss_bucket", "OSS_BUCKET")

	// RabbitMQ
	v.BindEnv("rabbitmq.uri", "RABBITMQ_URI")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if len(cfg.Exam.Blueprint) == 0 {
		cfg.Exam.Blueprint = DefaultBlueprint()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Storage.Type == "local" && cfg.Storage.ArchiveResults {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	// 生产环境校验 JWT Secret 强度
	if c.Server.Mode == "release" && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(c.JWT.Secret))
	}

	switch c.SessionStore.Driver {
	case "mysql", "redis", "mongo":
	default:
		return fmt.Errorf("unknown session_store.driver %q", c.SessionStore.Driver)
	}

	if c.Exam.DurationSeconds <= 0 {
		return fmt.Errorf("exam.duration_seconds must be positive, got %d", c.Exam.DurationSeconds)
	}
	if c.Exam.TickInterval <= 0 {
		return fmt.Errorf("exam.tick_interval must be positive")
	}
	for i, e := range c.Exam.Blueprint {
		if e.MCQ < 0 || e.TFGroup < 0 || e.MCQ+e.TFGroup == 0 {
			return fmt.Errorf("exam.blueprint[%d] (%s) has no questions", i, e.Topic)
		}
	}
	return nil
}

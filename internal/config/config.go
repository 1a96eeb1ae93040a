package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/learninghub-api/internal/pkg/validate"
)

const (
	DriverDynamo = "dynamo"
	DriverMongo  = "mongo"
	DriverMemory = "memory"

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	App         AppConfig
	Store       StoreConfig
	AWS         AWSConfig
	Mongo       MongoConfig
	Collections Collections
	HTTP        HTTPConfig
	Broadcast   BroadcastConfig
	Seed        SeedConfig
}

// Load reads the configuration from the environment and validates it.
// The caller is expected to have loaded any .env file beforehand.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Port         string `envconfig:"APP_PORT" default:"3000" validate:"required,numeric"`
	Env          string `envconfig:"APP_ENV" default:"development"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json console"`
	LogWarnStack bool   `envconfig:"LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type StoreConfig struct {
	Driver string `envconfig:"STORE_DRIVER" default:"dynamo" validate:"oneof=dynamo mongo memory"`
}

type AWSConfig struct {
	Region string `envconfig:"AWS_REGION" default:"us-east-1" validate:"required"`
	// EndpointURL is empty in prod and points at LocalStack in dev.
	EndpointURL     string `envconfig:"AWS_ENDPOINT_URL"`
	AccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY"`
	DynamoBootstrap bool   `envconfig:"DYNAMO_BOOTSTRAP" default:"true"`
}

type MongoConfig struct {
	URI      string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017" validate:"required"`
	Database string `envconfig:"MONGO_DATABASE" default:"learning_hub" validate:"required"`
}

// Collections maps each resource to its collection (or table) name.
type Collections struct {
	Courses       string `envconfig:"COLLECTION_COURSES" default:"courses" validate:"required"`
	Lessons       string `envconfig:"COLLECTION_LESSONS" default:"lessons" validate:"required"`
	Quizzes       string `envconfig:"COLLECTION_QUIZZES" default:"quizzes" validate:"required"`
	QuizQuestions string `envconfig:"COLLECTION_QUIZ_QUESTIONS" default:"quiz_questions" validate:"required"`
	Users         string `envconfig:"COLLECTION_USERS" default:"users" validate:"required"`
	QuizResults   string `envconfig:"COLLECTION_QUIZ_RESULTS" default:"quiz_results" validate:"required"`
	UserProgress  string `envconfig:"COLLECTION_USER_PROGRESS" default:"user_progress" validate:"required"`
	Notifications string `envconfig:"COLLECTION_NOTIFICATIONS" default:"notifications" validate:"required"`
}

// All lists every configured collection name.
func (c Collections) All() []string {
	return []string{
		c.Courses, c.Lessons, c.Quizzes, c.QuizQuestions,
		c.Users, c.QuizResults, c.UserProgress, c.Notifications,
	}
}

type HTTPConfig struct {
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"*"`
}

type BroadcastConfig struct {
	RateLimit float64 `envconfig:"BROADCAST_RATE_LIMIT" default:"1" validate:"gt=0"`
	RateBurst int     `envconfig:"BROADCAST_RATE_BURST" default:"3" validate:"gte=1"`
	// TopicARN enables the SNS announcement after a broadcast commits.
	TopicARN string `envconfig:"BROADCAST_TOPIC_ARN"`
}

type SeedConfig struct {
	// Source is a local path or an s3://bucket/key URL. Empty means the embedded fixture.
	Source string `envconfig:"SEED_SOURCE"`
}

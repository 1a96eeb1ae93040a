package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.App.Port)
	assert.Equal(t, DriverDynamo, cfg.Store.Driver)
	assert.Equal(t, "us-east-1", cfg.AWS.Region)
	assert.True(t, cfg.AWS.DynamoBootstrap)
	assert.Equal(t, "learning_hub", cfg.Mongo.Database)
	assert.Equal(t, "notifications", cfg.Collections.Notifications)
	assert.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, float64(1), cfg.Broadcast.RateLimit)
	assert.Equal(t, 3, cfg.Broadcast.RateBurst)
	assert.Empty(t, cfg.Seed.Source)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "8081")
	t.Setenv("STORE_DRIVER", "mongo")
	t.Setenv("COLLECTION_COURSES", "lh_courses")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("BROADCAST_RATE_LIMIT", "0.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.App.Port)
	assert.Equal(t, DriverMongo, cfg.Store.Driver)
	assert.Equal(t, "lh_courses", cfg.Collections.Courses)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, 0.5, cfg.Broadcast.RateLimit)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Driver")
}

func TestLoad_RejectsBadPort(t *testing.T) {
	t.Setenv("APP_PORT", "http")

	_, err := Load()
	assert.Error(t, err)
}

func TestCollections_All(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Len(t, cfg.Collections.All(), 8)
	assert.Contains(t, cfg.Collections.All(), "quiz_questions")
}

func TestAppConfigEnvHelpers(t *testing.T) {
	assert.True(t, AppConfig{Env: "DEVELOPMENT"}.IsDev())
	assert.False(t, AppConfig{Env: "development"}.IsProd())
	assert.True(t, AppConfig{Env: "production"}.IsProd())
}

package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, 12, cfg.Security.BcryptCost)
	assert.Equal(t, int32(10), cfg.DB.MaxConns)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.Equal(t, 2*time.Second, cfg.Audit.PersistTimeout)
	assert.Equal(t, 10*time.Second, cfg.Registry.Timeout)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("DB_AUTO_MIGRATE", "false")
	v.Set("BCRYPT_COST", "11")
	v.Set("AUDIT_PERSIST_TIMEOUT_MS", "500")
	v.Set("REGISTRY_BASE_URL", "https://legado.example.com/")
	v.Set("WORKFLOW_FALLBACK_CREATOR_ID", "u-1")
	v.Set("DATABASE_URL", "postgres://x@db/y")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.False(t, cfg.DB.AutoMigrate)
	assert.Equal(t, 11, cfg.Security.BcryptCost)
	assert.Equal(t, 500*time.Millisecond, cfg.Audit.PersistTimeout)
	assert.Equal(t, "https://legado.example.com", cfg.Registry.BaseURL)
	assert.Equal(t, "u-1", cfg.Workflow.FallbackCreatorID)
	assert.Equal(t, "postgres://x@db/y", cfg.DB.ConnectionString())
}

func TestFromViper_RejectsWeakBcryptCost(t *testing.T) {
	v := viper.New()
	v.Set("BCRYPT_COST", "4")
	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestFromViper_ProductionNeedsJWTSecret(t *testing.T) {
	v := viper.New()
	v.Set("APP_ENV", "production")
	_, err := fromViper(v)
	assert.Error(t, err)

	v.Set("JWT_SECRET", "s3cr3t")
	_, err = fromViper(v)
	assert.NoError(t, err)
}

func TestDSN_EscapesPassword(t *testing.T) {
	c := DBConfig{User: "app", Password: "p@ss/word", Host: "db", Port: 5432, DBName: "sd", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/sd?sslmode=disable", c.DSN())
}

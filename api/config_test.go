package api

import (
	"testing"
	"time"

	"github.com/alex-pricope/teacher-evaluation-system/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfig(t *testing.T) {
	logging.Log = logrus.New()

	t.Run("Happy path - defaults with memory backend", func(t *testing.T) {
		viper.Reset()
		t.Cleanup(viper.Reset)
		viper.Set("storage.backend", "memory")

		conf := ReadConfig()
		require.NoError(t, conf.Validate())
		assert.Equal(t, BackendMemory, conf.Backend)
		assert.Equal(t, 8080, conf.Port)
		assert.Equal(t, 60*time.Second, conf.SyncInterval)
		assert.Equal(t, RemoteBin, conf.SyncRemote)
		assert.Equal(t, "https://api.npoint.io", conf.BinURL)
		assert.Equal(t, "gemini-2.5-flash", conf.FeedbackModel)
		assert.Empty(t, conf.AdminToken)
		assert.Equal(t, "Local", conf.LegacyTimezone)
	})

	t.Run("Happy path - explicit settings", func(t *testing.T) {
		viper.Reset()
		t.Cleanup(viper.Reset)
		viper.Set("server.port", 9000)
		viper.Set("server.adminToken", "secret")
		viper.Set("storage.TableNameSubmissions", "subs")
		viper.Set("storage.TableNameJudges", "judges")
		viper.Set("storage.TableNameOverrides", "overrides")
		viper.Set("storage.TableNameSettings", "settings")
		viper.Set("sync.interval", "30s")
		viper.Set("sync.remote", "redis")
		viper.Set("sync.redisURL", "redis://localhost:6379/0")
		viper.Set("sync.legacyTimezone", "UTC")
		viper.Set("log.level", "info")

		conf := ReadConfig()
		require.NoError(t, conf.Validate())
		assert.Equal(t, BackendDynamo, conf.Backend)
		assert.Equal(t, 9000, conf.Port)
		assert.Equal(t, "secret", conf.AdminToken)
		assert.Equal(t, 30*time.Second, conf.SyncInterval)
		assert.Equal(t, "redis://localhost:6379/0", conf.RedisURL)
		assert.Equal(t, "info", conf.LogLevel)
		loc, err := conf.LegacyLocation()
		require.NoError(t, err)
		assert.Equal(t, time.UTC, loc)
	})

	t.Run("Unhappy path - unknown legacy timezone", func(t *testing.T) {
		viper.Reset()
		t.Cleanup(viper.Reset)
		viper.Set("storage.backend", "memory")
		viper.Set("sync.legacyTimezone", "Mars/Olympus")

		assert.Error(t, ReadConfig().Validate())
	})

	t.Run("Unhappy path - dynamo without table names", func(t *testing.T) {
		viper.Reset()
		t.Cleanup(viper.Reset)

		assert.Error(t, ReadConfig().Validate())
	})

	t.Run("Unhappy path - redis remote without url", func(t *testing.T) {
		viper.Reset()
		t.Cleanup(viper.Reset)
		viper.Set("storage.backend", "memory")
		viper.Set("sync.remote", "redis")

		assert.Error(t, ReadConfig().Validate())
	})

	t.Run("Unhappy path - unknown backend", func(t *testing.T) {
		viper.Reset()
		t.Cleanup(viper.Reset)
		viper.Set("storage.backend", "postgres")

		assert.Error(t, ReadConfig().Validate())
	})
}

package api

import (
	"fmt"
	"sync"
	"time"

	"github.com/alex-pricope/teacher-evaluation-system/feedback"
	"github.com/alex-pricope/teacher-evaluation-system/logging"
	"github.com/alex-pricope/teacher-evaluation-system/syncer"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	BackendDynamo = "dynamo"
	BackendMemory = "memory"

	RemoteBin   = "bin"
	RemoteRedis = "redis"
)

type Config struct {
	StorageConfig
	ServerConfig
	SyncSettings
	FeedbackConfig
	LogLevel string
}

type StorageConfig struct {
	Backend              string `validate:"oneof=dynamo memory"`
	TableNameSubmissions string `validate:"required_if=Backend dynamo"`
	TableNameJudges      string `validate:"required_if=Backend dynamo"`
	TableNameOverrides   string `validate:"required_if=Backend dynamo"`
	TableNameSettings    string `validate:"required_if=Backend dynamo"`
}

type ServerConfig struct {
	Port int `validate:"min=1,max=65535"`
	// AdminToken guards /api/admin. Empty locks the admin routes.
	AdminToken string
}

type SyncSettings struct {
	SyncInterval time.Duration `validate:"gt=0"`
	SyncTimeout  time.Duration `validate:"gt=0"`
	SyncRemote   string        `validate:"oneof=bin redis"`
	BinURL       string        `validate:"required_if=SyncRemote bin,omitempty,url"`
	RedisURL     string        `validate:"required_if=SyncRemote redis"`
	// LegacyTimezone is the zone older clients wrote offset-less timestamps in.
	LegacyTimezone string `validate:"required"`
}

type FeedbackConfig struct {
	FeedbackAPIKey string
	FeedbackModel  string `validate:"required"`
}

var (
	settingsOnce sync.Once
	validate     = validator.New()
)

func ReadConfig() *Config {

	var conf = &Config{
		StorageConfig: StorageConfig{
			Backend:              getStringOrDefault("storage.backend", BackendDynamo),
			TableNameSubmissions: getStringOrDefault("storage.TableNameSubmissions", ""),
			TableNameJudges:      getStringOrDefault("storage.TableNameJudges", ""),
			TableNameOverrides:   getStringOrDefault("storage.TableNameOverrides", ""),
			TableNameSettings:    getStringOrDefault("storage.TableNameSettings", ""),
		},
		ServerConfig: ServerConfig{
			Port:       getIntOrDefault("server.port", 8080),
			AdminToken: getStringOrDefault("server.adminToken", ""),
		},
		SyncSettings: SyncSettings{
			SyncInterval:   getDurationOrDefault("sync.interval", syncer.DefaultInterval),
			SyncTimeout:    getDurationOrDefault("sync.timeout", 10*time.Second),
			SyncRemote:     getStringOrDefault("sync.remote", RemoteBin),
			BinURL:         getStringOrDefault("sync.binURL", syncer.DefaultBinURL),
			RedisURL:       getStringOrDefault("sync.redisURL", ""),
			LegacyTimezone: getStringOrDefault("sync.legacyTimezone", "Local"),
		},
		FeedbackConfig: FeedbackConfig{
			FeedbackAPIKey: getStringOrDefault("feedback.apiKey", ""),
			FeedbackModel:  getStringOrDefault("feedback.model", feedback.DefaultModel),
		},
		LogLevel: getStringOrDefault("log.level", "debug"),
	}

	settingsOnce.Do(func() {
		logging.Log.Print("Reading settings!")
	})

	return conf
}

// Validate checks the combination of settings, e.g. that Dynamo tables are named
// when the Dynamo backend is selected.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if _, err := c.LegacyLocation(); err != nil {
		return fmt.Errorf("sync.legacyTimezone: %w", err)
	}
	return nil
}

// LegacyLocation resolves LegacyTimezone, e.g. "Asia/Shanghai" or "Local".
func (c *Config) LegacyLocation() (*time.Location, error) {
	return time.LoadLocation(c.LegacyTimezone)
}

func getIntOrDefault(name string, def int) int {
	if viper.IsSet(name) {
		v := viper.GetInt(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}

func getDurationOrDefault(name string, def time.Duration) time.Duration {
	if viper.IsSet(name) {
		v := viper.GetDuration(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}

func getStringOrDefault(name string, def string) string {
	if viper.IsSet(name) {
		v := viper.GetString(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}

// @title Teacher Evaluation System API
// @version 1.0
// @description Backend API for judge scoring, candidate aggregation and remote sync

// @securityDefinitions.apikey AdminToken
// @in header
// @name x-admin-token
package main

import (
	"strings"
	// Zone data for sync.legacyTimezone on hosts without zoneinfo, e.g. Lambda.
	_ "time/tzdata"

	_ "github.com/alex-pricope/teacher-evaluation-system/docs"

	"github.com/alex-pricope/teacher-evaluation-system/api"
	"github.com/alex-pricope/teacher-evaluation-system/logging"
	"github.com/spf13/viper"
)

func main() {
	logging.BoostrapLogger()

	// Load env, e.g. SERVER_ADMINTOKEN overrides server.adminToken
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logging.Log.Errorf("Failed to read config file: %v", err)
		panic("Failed to read config file: " + err.Error())
	}

	// Read config
	config := api.ReadConfig()
	if err := config.Validate(); err != nil {
		logging.Log.Errorf("Invalid config: %v", err)
		panic("Invalid config: " + err.Error())
	}
	logging.SetLevel(config.LogLevel)

	// Start the service (inside the lambda)
	service := api.NewServer(config)
	service.Start()
}

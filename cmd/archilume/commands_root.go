package main

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spf13/cobra"

	"github.com/vincentlogarzo/archilume/internal/config"
)

var (
	configFile string
	debugMode  bool
	longFormat bool
)

var rootCmd = &cobra.Command{
	Use:   "archilume",
	Short: "Batch driver for daylight rendering and compliance scoring",
	Long:  "archilume plans and executes Radiance renders across lighting conditions and viewpoints, then scores the results against analysis regions.",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "archilume.yaml", "Project configuration file")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug output")

	registerPlanCommand(rootCmd)
	registerRenderCommand(rootCmd)
	registerAggregateCommand(rootCmd)
	registerValidateCommand(rootCmd)
}

// loadProject loads the configuration and builds the logger every command
// shares.
func loadProject() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	log, err := newLogger()
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}

func newLogger() (*zap.Logger, error) {
	if debugMode {
		return zap.NewDevelopment()
	}
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zc.Build()
}

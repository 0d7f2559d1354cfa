package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose bool
	logger  *zap.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "openapi2robot",
	Short: "Robot Framework DataDriver test generator for OpenAPI specifications",
	Long: `openapi2robot reads a resolved OpenAPI V2/V3 specification file and
generates data-driven Robot Framework tests out of it: an Excel test
matrix with one row per API operation, the matching DataDriver test
suite, and a shared includes resource file.

Optionally, every discovered operation is mirrored into Jira/XRay as a
"Test" ticket and linked under a single "Test Execution" ticket.`,
}

func Execute() {
	cobra.OnInitialize(initConfig, initLogger)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initConfig loads an optional config.toml from the working directory.
// Running without one is fine; flags carry their own defaults.
func initConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("toml")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}
}

func initLogger() {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	var err error
	logger, err = config.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// Package root contains the root command for the application
package root

import (
	"context"
	"sync"

	"rbc2mm/internal/config"
	"rbc2mm/internal/container"
	"rbc2mm/internal/logging"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	ConfigFile string
	Input      []string
	Output     string
	Validate   bool
}

var (
	// Log is the shared logger instance for commands
	Log logging.Logger = logging.GetLogger()

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "rbc2mm",
		Short: "Convert RBC bank exports into categorized Money Manager ledgers.",
		Long: `rbc2mm converts RBC online-banking CSV exports into the Money Manager
import layout. Each transaction is categorized from the description mapping
file, falling back to Gemini or to an interactive prompt, and transfers
between your own accounts are collapsed into a single Transfer-Out row.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to rbc2mm!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if loaded := config.LoadEnv(); loaded != "" {
				Log.Debug("Loaded environment variables", logging.Field{Key: logging.FieldFile, Value: loaded})
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if appContainer != nil {
				if err := appContainer.Close(); err != nil {
					Log.WithError(err).Warn("Failed to close container")
				}
			}
		},
	}

	// Common flags accessible to all commands
	SharedFlags = CommonFlags{}

	configMu     sync.Mutex
	appConfig    *config.Config
	appContainer *container.Container
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.ConfigFile, "config", "c", "", "Config file (default: ./config.yaml, .rbc2mm/ or $HOME/.rbc2mm/)")
	Cmd.PersistentFlags().StringSliceVarP(&SharedFlags.Input, "input", "i", nil, "Input file or directory (repeatable)")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file")
	Cmd.PersistentFlags().BoolVarP(&SharedFlags.Validate, "validate", "v", false, "Validate file format before conversion")
}

// GetConfig loads the configuration once and reconfigures the shared logger
// from it. A broken configuration is fatal.
func GetConfig() *config.Config {
	configMu.Lock()
	defer configMu.Unlock()

	if appConfig == nil {
		cfg, err := config.LoadConfig(SharedFlags.ConfigFile)
		if err != nil {
			Log.Fatalf("Failed to load configuration: %v", err)
			return nil
		}
		appConfig = cfg
		Log = logging.NewLogrusAdapterFromLogger(config.ConfigureLoggingFromConfig(cfg))
	}
	return appConfig
}

// GetLogrusAdapter returns the shared logger.
func GetLogrusAdapter() logging.Logger {
	return Log
}

// GetContainer builds the dependency container on first use.
func GetContainer(ctx context.Context) *container.Container {
	cfg := GetConfig()

	configMu.Lock()
	defer configMu.Unlock()
	if appContainer == nil {
		c, err := container.NewContainerWithOptions(ctx, cfg, container.Options{Logger: Log})
		if err != nil {
			Log.Fatalf("Failed to initialize: %v", err)
			return nil
		}
		appContainer = c
	}
	return appContainer
}

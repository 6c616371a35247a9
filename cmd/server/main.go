package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"lexassist/internal/config"
	"lexassist/internal/logging"
	"lexassist/internal/providers"
)

// Version is set at build time via -ldflags "-X main.Version=X.Y.Z"
var Version = "0.0.0-dev"

var envFile string

var rootCmd = &cobra.Command{
	Use:   "lexassist",
	Short: "Legal assistant model service",
	Long: `lexassist answers legal questions through a local or remote Ollama runtime,
or a built-in simulator for demo deployments.

Commands:
  serve     Start the HTTP server (default)
  models    Check that the configured models are installed

Provider selection (read on every request):
  MODEL_PROVIDER           ollama-local | ollama-remote | mock
  OLLAMA_REMOTE_URL        remote runtime endpoint
  OLLAMA_HOST              local runtime endpoint (default 127.0.0.1:11434)
  HOSTED_PROVIDER_POLICY   simulated | remote, for hosted deployments`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to the .env file (default $ENV_FILE or .env)")
	rootCmd.AddCommand(serveCmd, modelsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}

// deps holds what every command needs
type deps struct {
	cfg      *config.Config
	resolver *config.Resolver
	factory  *providers.Factory
}

// bootstrap loads .env, process configuration and the provider table, and sets up logging
func bootstrap() (*deps, error) {
	path := envFile
	if path == "" {
		path = os.Getenv("ENV_FILE")
	}
	if path == "" {
		path = ".env"
	}
	envErr := godotenv.Load(path)

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.EnvFile = path

	logging.Init(cfg.Environment, cfg.LogLevel)
	if envErr != nil {
		log.WithField("file", path).Debug("No .env file loaded")
	} else {
		log.WithField("file", path).Info(".env file loaded")
	}

	resolver := config.NewResolver(loadProviderTable(cfg.ProvidersFile))
	factory := providers.NewFactory(resolver, cfg.SimulatedDelay, cfg.OllamaTimeout)

	return &deps{cfg: cfg, resolver: resolver, factory: factory}, nil
}

// loadProviderTable returns the table from path, or the defaults when the file is absent or invalid
func loadProviderTable(path string) config.ProviderTable {
	if path == "" {
		return config.DefaultProviderTable()
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return config.DefaultProviderTable()
	}

	table, err := config.LoadProviders(path)
	if err != nil {
		log.WithError(err).WithField("file", path).Warn("Invalid provider table, using defaults")
		return config.DefaultProviderTable()
	}
	log.WithField("file", path).Info("Provider table loaded")
	return table
}

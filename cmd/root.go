package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/osrs-mcp/config"
	"github.com/yourusername/osrs-mcp/internal/logging"
	"github.com/yourusername/osrs-mcp/internal/quest"
	"github.com/yourusername/osrs-mcp/internal/wiki"
)

// Version is reported by the MCP handshake, Sentry releases and traces.
const Version = "1.0.0"

var (
	configPath  string
	cfg         *config.Config
	logger      *logrus.Logger
	flushSentry = func() {}
)

var rootCmd = &cobra.Command{
	Use:           "osrs-mcp",
	Short:         "Old School RuneScape Wiki MCP server and quest data extractor",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return eris.Wrap(err, "loading config")
		}

		logger, err = logging.NewLogger(cfg.Log.Level, os.Stderr)
		if err != nil {
			return err
		}

		flushSentry, err = logging.InitSentry(logger, logging.SentrySettings{
			DSN:         cfg.Log.SentryDSN,
			Environment: cfg.Log.Environment,
			Release:     "osrs-mcp@" + Version,
		})
		if err != nil {
			return err
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		flushSentry()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.toml", "Path to configuration file")
}

// Execute runs the root command. Errors are logged before returning.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		if logger != nil {
			logger.WithField("error", eris.ToString(err, false)).Error("command failed")
			flushSentry()
		} else {
			os.Stderr.WriteString("error: " + err.Error() + "\n")
		}
	}
	return err
}

// newBackend builds the wiki client and quest service from the loaded config.
func newBackend() (*wiki.Client, *quest.Service) {
	client := wiki.NewClient(cfg.Wiki, logger)
	quests := quest.NewService(quest.Options{
		Fetcher:         client,
		Logger:          logger,
		NonItemKeywords: cfg.Quest.NonItemKeywords,
	})
	return client, quests
}

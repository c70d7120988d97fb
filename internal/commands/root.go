package commands

import (
	"fmt"

	"ai-memory-capture/internal/config"
	"ai-memory-capture/internal/model"
	"ai-memory-capture/internal/pkg/logger"
	"ai-memory-capture/internal/repository/unitofwork"
	"ai-memory-capture/pkg/database"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "memcap",
	Short: "Operate the local memory capture store",
	Long: `memcap inspects and maintains the local session store: import sessions
from the cloud mirror, browse recorded sessions, follow pipeline events
and read the service logs.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("memcap %s (commit %s, built %s)\n", version, commit, date)
	},
}

// env bundles what most commands need: configuration, the local store and a
// logger that writes to the service log file.
type env struct {
	cfg        *config.Config
	uowFactory unitofwork.RepositoryFactory
	logger     *logger.ZapLogger
}

func openEnv() (*env, error) {
	cfg := config.Load()
	db, err := database.NewGormDB(database.GormConfig{
		Driver:   cfg.Database.Driver,
		DSN:      cfg.Database.Connection,
		LogLevel: "silent",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		return nil, fmt.Errorf("failed to migrate local store: %w", err)
	}
	return &env{
		cfg:        cfg,
		uowFactory: unitofwork.NewRepositoryFactory(db),
		logger:     logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction()),
	}, nil
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(versionCmd)
}

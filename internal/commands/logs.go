package commands

import (
	"fmt"

	"ai-memory-capture/internal/config"
	"ai-memory-capture/internal/pkg/logger"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent service log entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		level, _ := cmd.Flags().GetString("level")
		module, _ := cmd.Flags().GetString("module")
		limit, _ := cmd.Flags().GetInt("limit")

		entries, err := logger.ReadLogs(cfg.App.LogFilePath, level, module, limit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No log entries found.")
			return nil
		}

		for _, e := range entries {
			fmt.Printf("%s %s %-14s %s", e.Timestamp, levelColor(e.Level), e.Module, e.Message)
			if len(e.Details) > 0 {
				fmt.Printf(" %v", e.Details)
			}
			fmt.Println()
		}
		return nil
	},
}

func levelColor(level string) string {
	switch level {
	case "ERROR":
		return color.RedString("%-5s", level)
	case "WARN":
		return color.YellowString("%-5s", level)
	case "DEBUG":
		return color.HiBlackString("%-5s", level)
	default:
		return color.GreenString("%-5s", level)
	}
}

func init() {
	logsCmd.Flags().StringP("level", "l", "", "Filter by level (INFO, WARN, ERROR)")
	logsCmd.Flags().StringP("module", "m", "", "Filter by module")
	logsCmd.Flags().IntP("limit", "n", 50, "Number of entries to show")
}

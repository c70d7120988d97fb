package commands

import (
	"fmt"
	"strconv"
	"strings"

	"ai-memory-capture/internal/service"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:     "sessions [id]",
	Aliases: []string{"ls"},
	Short:   "List sessions, or show one session's transcript",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.logger.Sync()

		// read-only: recording collaborators are never touched
		sessions := service.NewSessionService(e.uowFactory, nil, nil, nil, nil, nil, nil, e.logger, service.SessionConfig{})

		if len(args) == 1 {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid session id %q", args[0])
			}
			return showSession(cmd, sessions, uint(id))
		}

		groups, err := sessions.ListSessions(cmd.Context())
		if err != nil {
			return err
		}
		if len(groups) == 0 {
			fmt.Println("No sessions recorded yet.")
			return nil
		}

		for _, g := range groups {
			color.Cyan(g.Day)
			for _, s := range g.Sessions {
				title := s.Title
				if len(title) > 48 {
					title = title[:45] + "..."
				}
				fmt.Printf("  %-5d %-50s %s\n", s.Id, title, s.Location)
			}
		}
		return nil
	},
}

func showSession(cmd *cobra.Command, sessions service.ISessionService, id uint) error {
	detail, err := sessions.LoadExisting(cmd.Context(), id)
	if err != nil {
		return err
	}

	color.Cyan(detail.Title)
	fmt.Printf("%s  %s\n", detail.StartTime, detail.Location)
	fmt.Println(strings.Repeat("-", 60))
	if len(detail.Transcripts) == 0 {
		color.Yellow("No transcript for this session.")
		return nil
	}
	for _, t := range detail.Transcripts {
		fmt.Printf("[%s] %s\n", t.Timestamp, t.Text)
	}
	return nil
}

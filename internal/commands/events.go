package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"ai-memory-capture/internal/config"
	"ai-memory-capture/pkg/events"
	pktNats "ai-memory-capture/pkg/nats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Follow pipeline events from NATS",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if cfg.App.NatsURL == "" {
			return fmt.Errorf("NATS_URL is not set")
		}

		eventType, _ := cmd.Flags().GetString("type")
		subject := pktNats.SubjectPrefix + ".>"
		if eventType != "" {
			subject = pktNats.Subject(eventType)
		}

		sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			return err
		}
		defer sub.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cc, err := sub.Subscribe(ctx, subject, "", func(ctx context.Context, event events.Event) error {
			printEvent(event)
			return nil
		})
		if err != nil {
			return err
		}
		defer cc.Stop()

		color.Cyan("Listening on %s (Ctrl+C to stop)", subject)
		<-ctx.Done()
		return nil
	},
}

func printEvent(event events.Event) {
	ts := event.Timestamp().Local().Format("15:04:05")
	label := color.New(color.FgGreen).SprintFunc()
	if event.EventType() == events.SessionFinalized {
		label = color.New(color.FgMagenta).SprintFunc()
	}
	fmt.Printf("%s %s %v\n", ts, label(event.EventType()), event.Payload())
}

func init() {
	eventsCmd.Flags().StringP("type", "t", "", "Only show one event type, e.g. TRANSCRIPT_APPENDED")
}

package commands

import (
	"fmt"

	"ai-memory-capture/internal/service"
	"ai-memory-capture/pkg/cloudstore"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Import sessions from the cloud mirror",
	Long:  "Import every cloud session that is not yet in the local store. Sessions already present are skipped.",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.logger.Sync()

		if e.cfg.Cloud.ProjectID == "" {
			color.Red("FIRESTORE_PROJECT_ID is not set, nothing to sync from")
			return service.ErrCloudDisabled
		}

		ctx := cmd.Context()
		store, err := cloudstore.NewFirestoreStore(ctx, e.cfg.Cloud.ProjectID, e.cfg.Cloud.SessionsCollection, e.cfg.Cloud.CredentialsFile)
		if err != nil {
			return err
		}
		defer store.Close()

		cloud := service.NewCloudService(store, e.cfg.Pipeline.MirrorQueueSize, e.logger)
		defer cloud.Close()

		report, err := service.NewSyncService(e.uowFactory, cloud, service.NewNopPublisher(), e.logger).SyncFromCloud(ctx)
		if err != nil {
			color.Red("Sync failed: %v", err)
			return err
		}
		printReport(report.Remote, report.Imported, report.Skipped, report.Failed)
		return nil
	},
}

func printReport(remote, imported, skipped, failed int) {
	fmt.Printf("Remote sessions: %d\n", remote)
	color.Green("Imported: %d", imported)
	fmt.Printf("Skipped:  %d\n", skipped)
	if failed > 0 {
		color.Red("Failed:   %d", failed)
	}
}

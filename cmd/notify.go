package cmd

import (
	"context"
	"strings"

	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/frahmantamala/leave-management/internal/notification"
	"github.com/spf13/cobra"
)

var notifyEmployees []int64

var notifyCmd = &cobra.Command{
	Use:   "notify [message]",
	Short: "Send an announcement notification",
	Long:  `Store an announcement for the given employees, or for every active employee when none are named.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := initializeDependencies()
		if err != nil {
			return err
		}
		defer deps.Close()

		lg := deps.Logger
		deps.Bus.Subscribe(events.EventTypeNotificationCreated, func(ctx context.Context, event events.Event) error {
			lg.Debug("notification stored", "event_id", event.EventID(), "payload", event.Payload())
			return nil
		})

		ctx := context.Background()
		targets := notifyEmployees
		if len(targets) == 0 {
			if targets, err = deps.Employee.ListActiveIDs(ctx); err != nil {
				return err
			}
		}

		message := strings.Join(args, " ")
		if err := deps.Notification.NotifyMany(ctx, targets, notification.TypeAnnouncement, message, nil); err != nil {
			return err
		}
		lg.Info("announcement sent", "recipients", len(targets))
		return nil
	},
}

func init() {
	notifyCmd.Flags().Int64SliceVar(&notifyEmployees, "employee", nil, "employee ids to notify (default: all active)")
	rootCmd.AddCommand(notifyCmd)
}

package cmd

import (
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/service"
	"github.com/spf13/cobra"
)

var readAll bool

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notif"},
	Short:   "Notification commands",
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List unread notifications",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewNotificationService().List()
	},
}

var notificationsCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Show the unread count",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewNotificationService().Count()
	},
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read [notification-id]",
	Short: "Mark a notification as read (--all for every one)",
	Args: func(cmd *cobra.Command, args []string) error {
		if readAll {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		id := ""
		if len(args) == 1 {
			id = args[0]
		}
		return service.NewNotificationService().MarkRead(id)
	},
}

var notificationsDeleteCmd = &cobra.Command{
	Use:   "delete <notification-id>",
	Short: "Delete a notification",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewNotificationService().Delete(args[0])
	},
}

func init() {
	notificationsReadCmd.Flags().BoolVar(&readAll, "all", false, "Mark every notification as read")

	notificationsCmd.AddCommand(notificationsListCmd)
	notificationsCmd.AddCommand(notificationsCountCmd)
	notificationsCmd.AddCommand(notificationsReadCmd)
	notificationsCmd.AddCommand(notificationsDeleteCmd)
}

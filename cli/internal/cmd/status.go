package cmd

import (
	"strings"

	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/api"
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/service"
	"github.com/spf13/cobra"
)

var (
	statusBackground string
	statusMedia      string
	statusMusic      string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Statuses that expire after a day",
}

var statusPostCmd = &cobra.Command{
	Use:   "post [text...]",
	Short: "Post a status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewStatusService().Create(api.CreateStatusRequest{
			Text:       strings.Join(args, " "),
			Background: statusBackground,
			MediaPath:  statusMedia,
			MusicPath:  statusMusic,
		})
	},
}

var statusListCmd = &cobra.Command{
	Use:   "list",
	Short: "List live statuses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewStatusService().List()
	},
}

var statusReplyCmd = &cobra.Command{
	Use:   "reply <status-id> <text...>",
	Short: "Reply to a status with a direct message",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewStatusService().Reply(args[0], strings.Join(args[1:], " "))
	},
}

func init() {
	statusPostCmd.Flags().StringVar(&statusBackground, "background", "", "Background color for text statuses")
	statusPostCmd.Flags().StringVar(&statusMedia, "media", "", "Image or video to post")
	statusPostCmd.Flags().StringVar(&statusMusic, "music", "", "Audio track to attach")

	statusCmd.AddCommand(statusPostCmd)
	statusCmd.AddCommand(statusListCmd)
	statusCmd.AddCommand(statusReplyCmd)
}

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/service"
	"github.com/spf13/cobra"
)

var watchEvents []string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream realtime events until interrupted",
	Long: `Connect to the realtime endpoint and print messages, reactions,
notifications, group changes, statuses and typing indicators as they
arrive. Use --events to limit the output, e.g. --events newMessage,typing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return service.NewWatchService().Watch(ctx, watchEvents)
	},
}

func init() {
	watchCmd.Flags().StringSliceVar(&watchEvents, "events", nil, "Only show these event types")
}

package cmd

import (
	"strings"

	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/api"
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/service"
	"github.com/spf13/cobra"
)

// attachmentFlags are shared by direct and group sends
type attachmentFlags struct {
	image, video, audio, file string
}

func (f *attachmentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.image, "image", "", "Attach an image")
	cmd.Flags().StringVar(&f.video, "video", "", "Attach a video")
	cmd.Flags().StringVar(&f.audio, "audio", "", "Attach an audio clip")
	cmd.Flags().StringVar(&f.file, "file", "", "Attach any other file")
}

func (f *attachmentFlags) attachments() api.Attachments {
	files := api.Attachments{}
	for field, path := range map[string]string{"image": f.image, "video": f.video, "audio": f.audio, "file": f.file} {
		if path != "" {
			files[field] = path
		}
	}
	return files
}

var (
	messageFiles attachmentFlags
	unreact      bool
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List people you can message",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewMessageService().ListUsers()
	},
}

var messageCmd = &cobra.Command{
	Use:     "message",
	Aliases: []string{"msg"},
	Short:   "Direct messaging commands",
	Long:    "Send and manage direct messages with other users",
}

var messageHistoryCmd = &cobra.Command{
	Use:   "history <user-id>",
	Short: "Show the conversation with a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewMessageService().History(args[0])
	},
}

var messageSendCmd = &cobra.Command{
	Use:   "send <user-id> [text...]",
	Short: "Send a direct message",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args[1:], " ")
		return service.NewMessageService().Send(args[0], text, messageFiles.attachments())
	},
}

var messageForwardCmd = &cobra.Command{
	Use:   "forward <message-id> <user-id>",
	Short: "Forward a message to another user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewMessageService().Forward(args[0], args[1])
	},
}

var messageEditCmd = &cobra.Command{
	Use:   "edit <message-id> <text...>",
	Short: "Edit one of your recent messages",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewMessageService().Edit(args[0], strings.Join(args[1:], " "))
	},
}

var messageDeleteCmd = &cobra.Command{
	Use:   "delete <message-id>",
	Short: "Delete one of your messages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewMessageService().Delete(args[0])
	},
}

var messageReactCmd = &cobra.Command{
	Use:   "react <message-id> <emoji>",
	Short: "React to a message (--remove to take it back)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewMessageService().React(args[0], args[1], unreact)
	},
}

func init() {
	messageFiles.register(messageSendCmd)
	messageReactCmd.Flags().BoolVar(&unreact, "remove", false, "Remove the reaction instead of adding it")

	messageCmd.AddCommand(messageHistoryCmd)
	messageCmd.AddCommand(messageSendCmd)
	messageCmd.AddCommand(messageForwardCmd)
	messageCmd.AddCommand(messageEditCmd)
	messageCmd.AddCommand(messageDeleteCmd)
	messageCmd.AddCommand(messageReactCmd)
}

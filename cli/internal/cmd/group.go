package cmd

import (
	"strings"

	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/api"
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/service"
	"github.com/spf13/cobra"
)

var (
	groupDescription string
	groupImage       string
	groupMembers     []string
	groupFiles       attachmentFlags
	groupPage        int
	groupLimit       int
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Group chat commands",
}

var groupCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a group with you as admin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewGroupService().Create(api.CreateGroupRequest{
			Name:        args[0],
			Description: groupDescription,
			Members:     groupMembers,
			ImagePath:   groupImage,
		})
	},
}

var groupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your groups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewGroupService().List()
	},
}

var groupAddCmd = &cobra.Command{
	Use:   "add <group-id> <user-id>...",
	Short: "Add members to a group (admins only)",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewGroupService().AddMembers(args[0], args[1:])
	},
}

var groupRemoveCmd = &cobra.Command{
	Use:   "remove <group-id> <user-id>...",
	Short: "Remove members from a group (admins only)",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewGroupService().RemoveMembers(args[0], args[1:])
	},
}

var groupSendCmd = &cobra.Command{
	Use:   "send <group-id> [text...]",
	Short: "Send a message to a group",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewGroupService().Send(args[0], strings.Join(args[1:], " "), groupFiles.attachments())
	},
}

var groupMessagesCmd = &cobra.Command{
	Use:   "messages <group-id>",
	Short: "Show group history, newest page first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewGroupService().Messages(args[0], groupPage, groupLimit)
	},
}

func init() {
	groupCreateCmd.Flags().StringVarP(&groupDescription, "description", "d", "", "Group description")
	groupCreateCmd.Flags().StringVar(&groupImage, "image", "", "Group picture")
	groupCreateCmd.Flags().StringSliceVarP(&groupMembers, "members", "m", nil, "Member user ids (at least two besides you)")
	groupCreateCmd.MarkFlagRequired("members")

	groupFiles.register(groupSendCmd)

	groupMessagesCmd.Flags().IntVar(&groupPage, "page", 1, "Page number")
	groupMessagesCmd.Flags().IntVar(&groupLimit, "limit", 50, "Messages per page (max 100)")

	groupCmd.AddCommand(groupCreateCmd)
	groupCmd.AddCommand(groupListCmd)
	groupCmd.AddCommand(groupAddCmd)
	groupCmd.AddCommand(groupRemoveCmd)
	groupCmd.AddCommand(groupSendCmd)
	groupCmd.AddCommand(groupMessagesCmd)
}

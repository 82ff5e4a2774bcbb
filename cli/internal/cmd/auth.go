package cmd

import (
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/service"
	"github.com/spf13/cobra"
)

var loginEmail string

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  "Sign up, sign in and manage your chat account",
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a new account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewAuthService().Signup()
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewAuthService().Login(loginEmail)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the saved session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewAuthService().Logout()
	},
}

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Display current authenticated user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewAuthService().Me()
	},
}

var avatarCmd = &cobra.Command{
	Use:   "avatar <image>",
	Short: "Upload a new profile picture",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewAuthService().UpdateProfilePic(args[0])
	},
}

var forgotPasswordCmd = &cobra.Command{
	Use:   "forgot-password [email]",
	Short: "Request a password reset email",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := ""
		if len(args) == 1 {
			email = args[0]
		}
		return service.NewAuthService().ForgotPassword(email)
	},
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password <token>",
	Short: "Set a new password with the token from the reset email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewAuthService().ResetPassword(args[0])
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email (prompted when omitted)")

	authCmd.AddCommand(signupCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(meCmd)
	authCmd.AddCommand(avatarCmd)
	authCmd.AddCommand(forgotPasswordCmd)
	authCmd.AddCommand(resetPasswordCmd)
}

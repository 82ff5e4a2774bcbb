package service

import (
	"fmt"
	"os"
	"strings"

	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/api"
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/client"
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/credentials"
	clierrors "github.com/Hicham-Azeroual/chatApplication/cli/pkg/errors"
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/formatter"
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/logger"
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/output"
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/prompter"
)

const minPasswordLength = 6

type AuthService struct{}

// NewAuthService creates a new auth service
func NewAuthService() *AuthService {
	return &AuthService{}
}

// Signup creates an account interactively and saves the session
func (s *AuthService) Signup() error {
	name, err := prompter.Required("Full name: ", prompter.PromptString)
	if err != nil {
		return err
	}
	email, err := prompter.Required("Email: ", prompter.PromptString)
	if err != nil {
		return err
	}
	password, err := s.newPassword()
	if err != nil {
		return err
	}

	output.PrintInfo("Creating account...")
	resp, err := api.Signup(api.SignupRequest{FullName: name, Email: email, Password: password})
	if err != nil {
		return err
	}
	return s.saveSession(resp, "Account created")
}

// Login authenticates with email and password and saves the session
func (s *AuthService) Login(email string) error {
	creds, err := credentials.Load()
	if err != nil {
		logger.Error("Failed to load credentials", "error", err)
		return err
	}
	if creds != nil && creds.IsValid() {
		output.PrintWarning("Already logged in as %s", creds.Email)
		confirm, err := prompter.PromptConfirm("Continue with new login?")
		if err != nil {
			return err
		}
		if !confirm {
			return nil
		}
	}

	if email == "" {
		if email, err = prompter.Required("Email: ", prompter.PromptString); err != nil {
			return err
		}
	}
	password, err := prompter.PromptPassword("Password: ")
	if err != nil {
		return err
	}
	if password == "" {
		return clierrors.ValidationError("password", "cannot be empty")
	}

	output.PrintInfo("Authenticating...")
	resp, err := api.Login(email, password)
	if err != nil {
		return err
	}
	return s.saveSession(resp, "Login successful")
}

func (s *AuthService) saveSession(resp *api.AuthResponse, headline string) error {
	client.SetAuthToken(resp.Token)

	creds := &credentials.Credentials{
		Token:     resp.Token,
		ExpiresAt: resp.ExpiresAt,
		UserID:    resp.ID,
		FullName:  resp.FullName,
		Email:     resp.Email,
	}
	if err := credentials.Save(creds); err != nil {
		output.PrintError("Failed to save credentials: %v", err)
		return err
	}

	output.PrintSuccess("✓ %s", headline)
	return output.Record("", map[string]interface{}{
		"ID":      resp.ID,
		"Name":    resp.FullName,
		"Email":   resp.Email,
		"Expires": formatter.ExpiresIn(resp.ExpiresAt),
	}, resp)
}

// Logout ends the server session and forgets the saved token. The local
// credentials are removed even when the server call fails.
func (s *AuthService) Logout() error {
	creds, err := credentials.Load()
	if err != nil {
		return err
	}
	if creds == nil {
		output.PrintInfo("Not logged in")
		return nil
	}

	client.SetAuthToken(creds.Token)
	if err := api.Logout(); err != nil {
		logger.Warn("Server logout failed", "error", err)
	}
	client.ClearAuthToken()

	if err := credentials.Delete(); err != nil {
		return err
	}
	output.PrintSuccess("✓ Logged out")
	return nil
}

// Me shows the account behind the saved session
func (s *AuthService) Me() error {
	if _, err := Authenticated(); err != nil {
		return err
	}
	user, err := api.CurrentUser()
	if err != nil {
		return err
	}
	return output.Record(user.FullName, userFields(user), user)
}

// UpdateProfilePic uploads a new profile picture
func (s *AuthService) UpdateProfilePic(path string) error {
	if _, err := os.Stat(path); err != nil {
		return clierrors.FileNotFoundError(path)
	}
	if _, err := Authenticated(); err != nil {
		return err
	}

	output.PrintInfo("Uploading %s...", path)
	user, err := api.UpdateProfilePic(path)
	if err != nil {
		return err
	}
	output.PrintSuccess("✓ Profile picture updated")
	return output.Record("", userFields(user), user)
}

// ForgotPassword requests a reset mail
func (s *AuthService) ForgotPassword(email string) error {
	var err error
	if email == "" {
		if email, err = prompter.Required("Email: ", prompter.PromptString); err != nil {
			return err
		}
	}
	msg, err := api.ForgotPassword(email)
	if err != nil {
		return err
	}
	output.PrintSuccess("✓ %s", msg)
	return nil
}

// ResetPassword sets a new password with the token from the reset mail
func (s *AuthService) ResetPassword(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return clierrors.ValidationError("token", "cannot be empty")
	}
	password, err := s.newPassword()
	if err != nil {
		return err
	}
	msg, err := api.ResetPassword(token, password)
	if err != nil {
		return err
	}
	output.PrintSuccess("✓ %s", msg)
	return nil
}

func (s *AuthService) newPassword() (string, error) {
	password, err := prompter.PromptPassword("Password: ")
	if err != nil {
		return "", err
	}
	if len(password) < minPasswordLength {
		return "", clierrors.ValidationError("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	confirm, err := prompter.PromptPassword("Confirm password: ")
	if err != nil {
		return "", err
	}
	if confirm != password {
		return "", clierrors.ValidationError("password", "passwords do not match")
	}
	return password, nil
}

func userFields(u *api.User) map[string]interface{} {
	fields := map[string]interface{}{
		"ID":     u.ID,
		"Name":   u.FullName,
		"Email":  u.Email,
		"Joined": formatter.TimeAgo(u.CreatedAt),
	}
	if u.ProfilePic != "" {
		fields["Picture"] = u.ProfilePic
	}
	return fields
}

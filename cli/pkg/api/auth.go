package api

import (
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/client"
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/logger"
)

// Signup creates an account and returns its session
func Signup(req SignupRequest) (*AuthResponse, error) {
	logger.Debug("Signing up", "email", req.Email)

	var out AuthResponse
	resp, err := client.GetClient().R().
		SetBody(req).
		SetResult(&out).
		Post("/api/auth/signup")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates with email and password
func Login(email, password string) (*AuthResponse, error) {
	logger.Debug("Attempting login", "email", email)

	var out AuthResponse
	resp, err := client.GetClient().R().
		SetBody(LoginRequest{Email: email, Password: password}).
		SetResult(&out).
		Post("/api/auth/login")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout ends the server session
func Logout() error {
	resp, err := client.GetClient().R().Post("/api/auth/logout")
	return CheckResponse(resp, err)
}

// CurrentUser returns the account behind the session token
func CurrentUser() (*User, error) {
	var out User
	resp, err := client.GetClient().R().SetResult(&out).Get("/api/auth/check")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfilePic uploads path as the new profile picture
func UpdateProfilePic(path string) (*User, error) {
	logger.Debug("Uploading profile picture", "path", path)

	var out User
	resp, err := client.GetClient().R().
		SetFile("profilePic", path).
		SetResult(&out).
		Put("/api/auth/update-profile")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// ForgotPassword asks the server to mail a reset link
func ForgotPassword(email string) (string, error) {
	var out MessageResponse
	resp, err := client.GetClient().R().
		SetBody(map[string]string{"email": email}).
		SetResult(&out).
		Post("/api/auth/forgot-password")
	if err := CheckResponse(resp, err); err != nil {
		return "", err
	}
	return out.Message, nil
}

// ResetPassword sets a new password using a mailed token
func ResetPassword(token, password string) (string, error) {
	var out MessageResponse
	resp, err := client.GetClient().R().
		SetPathParam("token", token).
		SetBody(map[string]string{"password": password}).
		SetResult(&out).
		Post("/api/auth/reset-password/{token}")
	if err := CheckResponse(resp, err); err != nil {
		return "", err
	}
	return out.Message, nil
}

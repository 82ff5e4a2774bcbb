package auth

import "github.com/Hicham-Azeroual/chatApplication/internal/models"

// AuthServiceInterface defines the contract for authentication operations.
// Handlers depend on this so they can be exercised without the real service.
type AuthServiceInterface interface {
	// Registration and Login
	Signup(req SignupRequest) (*AuthResponse, error)
	Login(req LoginRequest) (*AuthResponse, error)

	// Token operations
	ValidateToken(tokenString string) (*models.User, error)

	// Profile
	UpdateProfilePic(userID, url string) (*models.User, error)

	// Password reset
	RequestPasswordReset(email string) (*models.PasswordReset, *models.User, error)
	InvalidateReset(reset *models.PasswordReset) error
	ResetPassword(token, newPassword string) error
}

// Ensure Service implements AuthServiceInterface
var _ AuthServiceInterface = (*Service)(nil)

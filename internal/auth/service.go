package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Hicham-Azeroual/chatApplication/internal/database"
	apierrors "github.com/Hicham-Azeroual/chatApplication/internal/errors"
	"github.com/Hicham-Azeroual/chatApplication/internal/logger"
	"github.com/Hicham-Azeroual/chatApplication/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// MinPasswordLength is enforced on signup and password reset
const MinPasswordLength = 6

// ResetTokenTTL is how long a password reset link stays valid
const ResetTokenTTL = time.Hour

// Service errors are API errors so handlers can pass them straight through
var (
	ErrMissingFields       = apierrors.BadRequest("All fields are required")
	ErrPasswordTooShort    = apierrors.BadRequest(fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	ErrInvalidEmail        = apierrors.BadRequest("Invalid email format")
	ErrEmailExists         = apierrors.BadRequest("Email already exists")
	ErrInvalidCredentials  = apierrors.BadRequest("Invalid credentials")
	ErrUserNotFound        = apierrors.NotFound("User")
	ErrInvalidResetToken   = apierrors.BadRequest("Invalid or expired token")
	ErrInvalidToken        = apierrors.Unauthorized("Unauthorized - Invalid Token")
	ErrMissingResetRequest = apierrors.BadRequest("Email is required")
)

var validate = validator.New()

// Service handles all authentication operations
type Service struct {
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewService creates a new authentication service
func NewService(jwtSecret []byte, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 15 * 24 * time.Hour
	}
	return &Service{
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// TokenTTL returns how long issued tokens (and the session cookie) last
func (s *Service) TokenTTL() time.Duration {
	return s.tokenTTL
}

// AuthResponse is the public user plus the issued session token
type AuthResponse struct {
	ID         string    `json:"_id"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	ProfilePic string    `json:"profilePic"`
	CreatedAt  time.Time `json:"createdAt"`
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// SignupRequest represents native registration request
type SignupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents native login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup creates a new user with email/password
func (s *Service) Signup(req SignupRequest) (*AuthResponse, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = models.NormalizeEmail(req.Email)

	if req.FullName == "" || req.Email == "" || req.Password == "" {
		return nil, ErrMissingFields
	}
	if len(req.Password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if err := validate.Var(req.Email, "email"); err != nil {
		return nil, ErrInvalidEmail
	}

	// Check if user exists by email (case-insensitive)
	var existing models.User
	err := database.DB.Where("LOWER(email) = ?", req.Email).First(&existing).Error
	if err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: string(hashedPassword),
	}
	if err := database.DB.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Log.Info("User signed up", logger.WithUserID(user.ID))
	return s.generateAuthResponse(&user)
}

// Login authenticates with email/password
func (s *Service) Login(req LoginRequest) (*AuthResponse, error) {
	var user models.User
	err := database.DB.Where("LOWER(email) = ?", models.NormalizeEmail(req.Email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Same answer as a wrong password so emails can't be probed
		return nil, ErrInvalidCredentials
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.generateAuthResponse(&user)
}

// GenerateToken signs a session token for the user
func (s *Service) GenerateToken(user *models.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.tokenTTL)

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     expiresAt.Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, expiresAt, nil
}

// generateAuthResponse creates JWT token and auth response
func (s *Service) generateAuthResponse(user *models.User) (*AuthResponse, error) {
	tokenString, expiresAt, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		ID:         user.ID,
		FullName:   user.FullName,
		Email:      user.Email,
		ProfilePic: user.ProfilePic,
		CreatedAt:  user.CreatedAt,
		Token:      tokenString,
		ExpiresAt:  expiresAt,
	}, nil
}

// ParseUserID validates a token's signature and expiry and returns its user id
// without touching the database
func (s *Service) ParseUserID(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		logger.Log.Debug("Token rejected", zap.Error(err))
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", ErrInvalidToken
	}
	return userID, nil
}

// ValidateToken validates a JWT token and returns the current user record
func (s *Service) ValidateToken(tokenString string) (*models.User, error) {
	userID, err := s.ParseUserID(tokenString)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = database.DB.Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &user, nil
}

// UpdateProfilePic stores the URL of a freshly uploaded profile picture
func (s *Service) UpdateProfilePic(userID, url string) (*models.User, error) {
	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := database.DB.Model(&user).Update("profile_pic", url).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &user, nil
}

// RequestPasswordReset creates a password reset token and stores it in the database
func (s *Service) RequestPasswordReset(email string) (*models.PasswordReset, *models.User, error) {
	email = models.NormalizeEmail(email)
	if email == "" {
		return nil, nil, ErrMissingResetRequest
	}

	var user models.User
	err := database.DB.Where("LOWER(email) = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrUserNotFound
	} else if err != nil {
		return nil, nil, fmt.Errorf("database error: %w", err)
	}

	// 96 chars from three UUIDs
	tokenStr := strings.ReplaceAll(uuid.New().String()+uuid.New().String()+uuid.New().String(), "-", "")

	reset := models.PasswordReset{
		UserID:    user.ID,
		Token:     tokenStr,
		ExpiresAt: time.Now().UTC().Add(ResetTokenTTL),
	}
	if err := database.DB.Create(&reset).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to create reset token: %w", err)
	}

	return &reset, &user, nil
}

// InvalidateReset burns a token whose email could not be delivered
func (s *Service) InvalidateReset(reset *models.PasswordReset) error {
	return database.DB.Model(reset).Update("used", true).Error
}

// ResetPassword validates the reset token and updates the user's password
func (s *Service) ResetPassword(token, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	var resetToken models.PasswordReset
	err := database.DB.Where("token = ? AND used = ? AND expires_at > ?", token, false, time.Now().UTC()).First(&resetToken).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("database error: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return database.DB.Transaction(func(tx *gorm.DB) error {
		// Claim the token first; only one concurrent redemption can flip it
		claim := tx.Model(&models.PasswordReset{}).
			Where("id = ? AND used = ?", resetToken.ID, false).
			Update("used", true)
		if claim.Error != nil {
			logger.Log.Warn("Failed to mark reset token as used", zap.Error(claim.Error))
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			return ErrInvalidResetToken
		}

		res := tx.Model(&models.User{}).Where("id = ?", resetToken.UserID).Update("password_hash", string(hashedPassword))
		if res.Error != nil {
			return fmt.Errorf("failed to update password: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

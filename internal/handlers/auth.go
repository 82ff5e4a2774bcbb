package handlers

import (
	"net/http"
	"strings"

	"github.com/Hicham-Azeroual/chatApplication/internal/auth"
	"github.com/Hicham-Azeroual/chatApplication/internal/email"
	"github.com/Hicham-Azeroual/chatApplication/internal/logger"
	"github.com/Hicham-Azeroual/chatApplication/internal/metrics"
	"github.com/Hicham-Azeroual/chatApplication/internal/storage"
	"github.com/Hicham-Azeroual/chatApplication/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandlers serves /api/auth
type AuthHandlers struct {
	authService auth.AuthServiceInterface
	uploader    storage.MediaUploader
	mailer      email.Mailer
	cookie      auth.CookieOptions
	clientURL   string
}

// NewAuthHandlers creates auth handlers. clientURL is the web app base used
// in password reset links.
func NewAuthHandlers(authService auth.AuthServiceInterface, uploader storage.MediaUploader, mailer email.Mailer, cookie auth.CookieOptions, clientURL string) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		uploader:    uploader,
		mailer:      mailer,
		cookie:      cookie,
		clientURL:   strings.TrimRight(clientURL, "/"),
	}
}

// AuthMiddleware returns the session middleware backed by this service
func (h *AuthHandlers) AuthMiddleware() gin.HandlerFunc {
	return auth.Middleware(h.authService)
}

// Signup handles POST /api/auth/signup
func (h *AuthHandlers) Signup(c *gin.Context) {
	var req auth.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "All fields are required")
		return
	}

	resp, err := h.authService.Signup(req)
	if err != nil {
		metrics.RecordAuthEvent("signup", "failure")
		util.RespondError(c, err)
		return
	}
	metrics.RecordAuthEvent("signup", "success")

	auth.SetSessionCookie(c, resp.Token, h.cookie)
	c.JSON(http.StatusCreated, resp)
}

// Login handles POST /api/auth/login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "Invalid credentials")
		return
	}

	resp, err := h.authService.Login(req)
	if err != nil {
		metrics.RecordAuthEvent("login", "failure")
		util.RespondError(c, err)
		return
	}
	metrics.RecordAuthEvent("login", "success")

	auth.SetSessionCookie(c, resp.Token, h.cookie)
	c.JSON(http.StatusOK, resp)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandlers) Logout(c *gin.Context) {
	auth.ClearSessionCookie(c, h.cookie)
	util.RespondMessage(c, "Logged out successfully")
}

// CheckAuth handles GET /api/auth/check
func (h *AuthHandlers) CheckAuth(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile handles PUT /api/auth/update-profile (multipart profilePic)
func (h *AuthHandlers) UpdateProfile(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	header, err := c.FormFile("profilePic")
	if err != nil {
		util.RespondBadRequest(c, "Profile pic is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		util.RespondInternalError(c, "Failed to read upload", err)
		return
	}
	defer file.Close()

	result, err := h.uploader.UploadProfilePicture(c.Request.Context(), file, header, user.ID)
	metrics.RecordUpload("profile_pic", backendName(h.uploader), err)
	if err != nil {
		util.RespondInternalError(c, "Failed to upload profile picture", err)
		return
	}

	updated, err := h.authService.UpdateProfilePic(user.ID, result.URL)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// ForgotPassword handles POST /api/auth/forgot-password
func (h *AuthHandlers) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "Email is required")
		return
	}

	reset, user, err := h.authService.RequestPasswordReset(req.Email)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	resetURL := h.clientURL + "/reset-password/" + reset.Token
	if err := h.mailer.SendPasswordResetEmail(c.Request.Context(), user.Email, resetURL); err != nil {
		// An undeliverable token must not stay redeemable
		if invalidateErr := h.authService.InvalidateReset(reset); invalidateErr != nil {
			logger.Log.Error("Failed to invalidate reset token", logger.WithUserID(user.ID), zap.Error(invalidateErr))
		}
		metrics.RecordAuthEvent("password_reset_request", "failure")
		util.RespondInternalError(c, "Failed to send password reset email", err)
		return
	}

	metrics.RecordAuthEvent("password_reset_request", "success")
	util.RespondMessage(c, "Password reset email sent")
}

// ResetPassword handles POST /api/auth/reset-password/:token
func (h *AuthHandlers) ResetPassword(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "Password is required")
		return
	}

	if err := h.authService.ResetPassword(c.Param("token"), req.Password); err != nil {
		metrics.RecordAuthEvent("password_reset", "failure")
		util.RespondError(c, err)
		return
	}

	metrics.RecordAuthEvent("password_reset", "success")
	util.RespondMessage(c, "Password reset successful")
}

// backendName labels upload metrics with the configured store
func backendName(uploader storage.MediaUploader) string {
	if store, ok := uploader.(interface{ Backend() string }); ok {
		return store.Backend()
	}
	return "unknown"
}

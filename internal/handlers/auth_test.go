package handlers

import (
	"net/http"
	"strings"

	"github.com/Hicham-Azeroual/chatApplication/internal/auth"
	"github.com/Hicham-Azeroual/chatApplication/internal/models"
	"github.com/stretchr/testify/assert"
)

// =============================================================================
// AUTH ENDPOINT TESTS
// =============================================================================

func (suite *HandlersTestSuite) TestSignupSetsCookieAndReturnsUser() {
	t := suite.T()

	w := suite.request(http.MethodPost, "/api/auth/signup", nil, map[string]string{
		"fullName": "Dana Scully",
		"email":    "Dana@Example.com",
		"password": "trustno1",
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp auth.AuthResponse
	suite.decode(w, &resp)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "dana@example.com", resp.Email)
	assert.NotEmpty(t, resp.Token)
	assert.NotContains(t, w.Body.String(), "password")

	cookie := w.Header().Get("Set-Cookie")
	assert.Contains(t, cookie, auth.CookieName+"=")
	assert.Contains(t, cookie, "HttpOnly")
	assert.Contains(t, cookie, "SameSite=Strict")
}

func (suite *HandlersTestSuite) TestSignupValidation() {
	cases := []struct {
		name    string
		body    map[string]string
		message string
	}{
		{"missing fields", map[string]string{"email": "x@example.com"}, "All fields are required"},
		{"short password", map[string]string{"fullName": "X", "email": "x@example.com", "password": "123"}, "Password must be at least 6 characters"},
		{"bad email", map[string]string{"fullName": "X", "email": "nope", "password": "123456"}, "Invalid email format"},
		{"duplicate email", map[string]string{"fullName": "X", "email": strings.ToUpper(suite.alice.Email), "password": "123456"}, "Email already exists"},
	}
	for _, tc := range cases {
		suite.Run(tc.name, func() {
			w := suite.request(http.MethodPost, "/api/auth/signup", nil, tc.body)
			suite.Equal(http.StatusBadRequest, w.Code)
			suite.Equal(tc.message, suite.errorMessage(w))
		})
	}
}

func (suite *HandlersTestSuite) TestLogin() {
	t := suite.T()

	w := suite.request(http.MethodPost, "/api/auth/login", nil, map[string]string{
		"email": suite.alice.Email, "password": testPassword,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), auth.CookieName+"=")

	w = suite.request(http.MethodPost, "/api/auth/login", nil, map[string]string{
		"email": suite.alice.Email, "password": "wrong-password",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid credentials", suite.errorMessage(w))

	w = suite.request(http.MethodPost, "/api/auth/login", nil, map[string]string{
		"email": "ghost@example.com", "password": testPassword,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid credentials", suite.errorMessage(w))
}

func (suite *HandlersTestSuite) TestLogoutClearsCookie() {
	w := suite.request(http.MethodPost, "/api/auth/logout", nil, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Header().Get("Set-Cookie"), "Max-Age=0")
}

func (suite *HandlersTestSuite) TestCheckRequiresToken() {
	t := suite.T()

	w := suite.request(http.MethodGet, "/api/auth/check", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized - No Token Provided", suite.errorMessage(w))

	w = suite.requestWithToken(http.MethodGet, "/api/auth/check", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized - Invalid Token", suite.errorMessage(w))

	w = suite.request(http.MethodGet, "/api/auth/check", suite.alice, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var user models.User
	suite.decode(w, &user)
	assert.Equal(t, suite.alice.ID, user.ID)
}

func (suite *HandlersTestSuite) TestCheckRejectsDeletedUser() {
	token := suite.token(suite.carol)
	suite.Require().NoError(suite.db.Delete(suite.carol).Error)

	w := suite.requestWithToken(http.MethodGet, "/api/auth/check", token)
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal("User not found", suite.errorMessage(w))
}

func (suite *HandlersTestSuite) TestCookieAuthentication() {
	req := newRequest(http.MethodGet, "/api/auth/check")
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: suite.token(suite.bob)})

	w := suite.serve(req)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlersTestSuite) TestUpdateProfile() {
	t := suite.T()

	w := suite.multipartRequest(http.MethodPut, "/api/auth/update-profile", suite.alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Profile pic is required", suite.errorMessage(w))

	w = suite.multipartRequest(http.MethodPut, "/api/auth/update-profile", suite.alice, nil,
		formFile{"profilePic", "me.png", "image/png", []byte("png")})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stored models.User
	suite.Require().NoError(suite.db.First(&stored, "id = ?", suite.alice.ID).Error)
	assert.Equal(t, "https://cdn.test/profile-pics/"+suite.alice.ID+"/me.png", stored.ProfilePic)
}

func (suite *HandlersTestSuite) TestForgotAndResetPassword() {
	t := suite.T()

	w := suite.request(http.MethodPost, "/api/auth/forgot-password", nil, map[string]string{"email": "ghost@example.com"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", suite.errorMessage(w))

	w = suite.request(http.MethodPost, "/api/auth/forgot-password", nil, map[string]string{"email": suite.bob.Email})
	assert.Equal(t, http.StatusOK, w.Code)
	suite.Require().Len(suite.mailer.sent, 1)

	link := suite.mailer.sent[0]
	assert.True(t, strings.HasPrefix(link, "http://localhost:5173/reset-password/"), link)
	token := strings.TrimPrefix(link, "http://localhost:5173/reset-password/")

	w = suite.request(http.MethodPost, "/api/auth/reset-password/"+token, nil, map[string]string{"password": "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPost, "/api/auth/reset-password/"+token, nil, map[string]string{"password": "new-secret"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Password reset successful", suite.messageOf(w))

	// Tokens are single use
	w = suite.request(http.MethodPost, "/api/auth/reset-password/"+token, nil, map[string]string{"password": "another-secret"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid or expired token", suite.errorMessage(w))

	w = suite.request(http.MethodPost, "/api/auth/login", nil, map[string]string{"email": suite.bob.Email, "password": "new-secret"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func (suite *HandlersTestSuite) TestForgotPasswordMailFailureBurnsToken() {
	suite.mailer.shouldFail = true

	w := suite.request(http.MethodPost, "/api/auth/forgot-password", nil, map[string]string{"email": suite.bob.Email})
	suite.Equal(http.StatusInternalServerError, w.Code)

	var live int64
	suite.db.Model(&models.PasswordReset{}).Where("user_id = ? AND used = ?", suite.bob.ID, false).Count(&live)
	suite.Zero(live)
}

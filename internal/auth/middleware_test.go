package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Hicham-Azeroual/chatApplication/internal/models"
	"github.com/Hicham-Azeroual/chatApplication/internal/util"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubValidator struct {
	user *models.User
	err  error
}

func (s stubValidator) ValidateToken(string) (*models.User, error) {
	return s.user, s.err
}

func serveProtected(tokens TokenValidator, req *http.Request) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", Middleware(tokens), func(c *gin.Context) {
		userID, _ := util.GetUserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"userId": userID})
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bodyMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	var body struct {
		Message string `json:"message"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Message
}

func TestMiddleware(t *testing.T) {
	alice := &models.User{ID: "u-alice", FullName: "Alice"}

	testCases := []struct {
		name       string
		token      string
		validator  stubValidator
		wantStatus int
		wantMsg    string
	}{
		{"no token", "", stubValidator{user: alice}, http.StatusUnauthorized, "Unauthorized - No Token Provided"},
		{"invalid token", "bad", stubValidator{err: ErrInvalidToken}, http.StatusUnauthorized, "Unauthorized - Invalid Token"},
		{"deleted user", "ok", stubValidator{err: ErrUserNotFound}, http.StatusUnauthorized, "User not found"},
		{"database down", "ok", stubValidator{err: errors.New("connection refused")}, http.StatusInternalServerError, ""},
		{"valid", "ok", stubValidator{user: alice}, http.StatusOK, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			w := serveProtected(tc.validator, req)
			assert.Equal(t, tc.wantStatus, w.Code)
			if tc.wantMsg != "" {
				assert.Equal(t, tc.wantMsg, bodyMessage(t, w))
			}
		})
	}
}

func TestMiddlewareSetsUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "ok"})

	w := serveProtected(stubValidator{user: &models.User{ID: "u-bob"}}, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":"u-bob"}`, w.Body.String())
}

func TestTokenFromRequestPrefersCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "from-cookie"})
	req.Header.Set("Authorization", "Bearer from-header")

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req
	assert.Equal(t, "from-cookie", TokenFromRequest(c))

	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Authorization", "Bearer  from-header ")
	assert.Equal(t, "from-header", TokenFromRequest(c))

	c.Request.Header.Set("Authorization", "Basic abc")
	assert.Equal(t, "", TokenFromRequest(c))
}

func TestSessionCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	SetSessionCookie(c, "tok", CookieOptions{MaxAge: time.Hour, Secure: true})
	cookie := w.Header().Get("Set-Cookie")
	assert.Contains(t, cookie, "jwt=tok")
	assert.Contains(t, cookie, "Max-Age=3600")
	assert.Contains(t, cookie, "HttpOnly")
	assert.Contains(t, cookie, "Secure")
	assert.Contains(t, cookie, "SameSite=Strict")

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	ClearSessionCookie(c, CookieOptions{})
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
}

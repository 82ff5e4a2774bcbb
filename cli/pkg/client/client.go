package client

import (
	"time"

	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/config"
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/logger"
	"github.com/go-resty/resty/v2"
)

// UserAgent identifies the CLI to the server
const UserAgent = "chatctl/0.1.0"

var httpClient *resty.Client

func newClient() *resty.Client {
	c := resty.New()
	c.SetBaseURL(config.GetString("api.base_url"))
	c.SetTimeout(time.Duration(config.GetInt("api.timeout")) * time.Second)
	c.SetHeader("User-Agent", UserAgent)

	c.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		logger.Debug("HTTP Request", "method", req.Method, "url", req.URL)
		return nil
	})
	c.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug("HTTP Response", "status", resp.StatusCode(), "duration", resp.Time())
		return nil
	})
	return c
}

// Init (re)creates the HTTP client from the current configuration
func Init() {
	httpClient = newClient()
}

// GetClient returns the HTTP client
func GetClient() *resty.Client {
	if httpClient == nil {
		Init()
	}
	return httpClient
}

// SetAuthToken sends token as a bearer token on every request
func SetAuthToken(token string) {
	GetClient().SetAuthToken(token)
}

// ClearAuthToken drops the session from the client
func ClearAuthToken() {
	Init()
}

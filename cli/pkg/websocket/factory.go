package websocket

import (
	"time"

	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/config"
)

// FromConfig builds a client for the configured server, deriving the
// ws:// URL from api.base_url
func FromConfig() (*Client, error) {
	wsURL, err := config.WebSocketURL()
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig(wsURL)
	if t := config.GetInt("api.timeout"); t > 0 {
		cfg.ConnectTimeout = time.Duration(t) * time.Second
	}
	return NewClient(cfg), nil
}

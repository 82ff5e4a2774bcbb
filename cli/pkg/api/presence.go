package api

import (
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/client"
)

// OnlineUsers returns the ids currently connected to the realtime server
func OnlineUsers() ([]string, error) {
	var out struct {
		OnlineUsers []string `json:"onlineUsers"`
	}
	resp, err := client.GetClient().R().SetResult(&out).Get("/api/presence/online")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}
	return out.OnlineUsers, nil
}

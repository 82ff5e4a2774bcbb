package service

import (
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/client"
	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/credentials"
	clierrors "github.com/Hicham-Azeroual/chatApplication/cli/pkg/errors"
)

// Authenticated loads the saved session and attaches its token to the HTTP
// client. Commands that need a login call it first.
func Authenticated() (*credentials.Credentials, error) {
	creds, err := credentials.Load()
	if err != nil {
		return nil, err
	}
	if creds == nil || creds.Token == "" {
		return nil, clierrors.NotLoggedIn()
	}
	if creds.IsExpired() {
		return nil, clierrors.SessionExpired()
	}
	client.SetAuthToken(creds.Token)
	return creds, nil
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

package credentials

import (
	"encoding/json"
	"os"
	"time"

	"github.com/Hicham-Azeroual/chatApplication/cli/pkg/config"
)

// Credentials is the saved session of the logged-in user
type Credentials struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
}

// Load loads credentials from disk. It returns nil, nil when none are saved.
func Load() (*Credentials, error) {
	path := config.GetCredentialsPath()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, err
	}

	return &creds, nil
}

// Save saves credentials to disk
func Save(creds *Credentials) error {
	path := config.GetCredentialsPath()

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}

	// Owner read/write only
	return os.WriteFile(path, data, 0600)
}

// Delete deletes credentials from disk. Missing credentials are not an error.
func Delete() error {
	err := os.Remove(config.GetCredentialsPath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// IsExpired checks if the session token is expired. A zero expiry never expires.
func (c *Credentials) IsExpired() bool {
	return !c.ExpiresAt.IsZero() && time.Now().After(c.ExpiresAt)
}

// IsValid checks if credentials are usable
func (c *Credentials) IsValid() bool {
	return c.Token != "" && !c.IsExpired()
}

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

var configDir string
var configFilePath string
var credentialsPath string

// Keys lists the settings `config set` accepts
var Keys = []string{"api.base_url", "api.timeout", "output.format", "log.level", "log.file"}

// getConfigDir returns platform-specific config directory
func getConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		// Windows: %LOCALAPPDATA%\chatapp\cli
		appData := os.Getenv("LOCALAPPDATA")
		if appData == "" {
			appData = os.Getenv("APPDATA")
		}
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = home
		}
		return filepath.Join(appData, "chatapp", "cli"), nil
	}

	// Unix-like (macOS, Linux): ~/.config/chatapp/cli
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "chatapp", "cli"), nil
}

// getSystemConfigPaths returns platform-specific system config paths
func getSystemConfigPaths() []string {
	if runtime.GOOS == "windows" {
		return []string{filepath.Join(os.Getenv("ProgramFiles"), "ChatApp", "cli", "config.toml")}
	}
	return []string{
		"/etc/chatapp/cli/config.toml",
		"/usr/local/etc/chatapp/cli/config.toml",
	}
}

// Init initializes the configuration. An empty configPath uses the per-user
// config directory.
func Init(configPath string) error {
	viper.Reset()

	var err error
	if configPath != "" {
		configDir = filepath.Dir(configPath)
		configFilePath = configPath
	} else {
		configDir, err = getConfigDir()
		if err != nil {
			return err
		}
		configFilePath = filepath.Join(configDir, "config.toml")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	credentialsPath = filepath.Join(configDir, "credentials")

	viper.SetConfigType("toml")
	setDefaults()

	// System config first, user config overrides it
	for _, sysConfigPath := range getSystemConfigPaths() {
		if _, err := os.Stat(sysConfigPath); err == nil {
			viper.SetConfigFile(sysConfigPath)
			_ = viper.ReadInConfig()
			break
		}
	}

	viper.SetConfigFile(configFilePath)
	_ = viper.ReadInConfig()

	// CHATCTL_API_BASE_URL and friends
	viper.SetEnvPrefix("chatctl")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	return nil
}

func setDefaults() {
	viper.SetDefault("api.base_url", "http://localhost:5001")
	viper.SetDefault("api.timeout", 30)
	viper.SetDefault("output.format", "text")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.file", filepath.Join(configDir, "chatctl.log"))
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetString returns a string configuration value
func GetString(key string) string {
	value := viper.GetString(key)
	if key == "log.file" {
		return expandPath(value)
	}
	return value
}

// GetInt returns an int configuration value
func GetInt(key string) int {
	return viper.GetInt(key)
}

// Override sets a value for this run only
func Override(key string, value interface{}) {
	viper.Set(key, value)
}

// Set validates key and persists value to the user config file
func Set(key, value string) error {
	if !isKnownKey(key) {
		return fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(Keys, ", "))
	}
	if key == "api.base_url" {
		if _, err := url.ParseRequestURI(value); err != nil {
			return fmt.Errorf("invalid URL %q: %w", value, err)
		}
	}
	viper.Set(key, value)
	return viper.WriteConfigAs(configFilePath)
}

// All returns every effective setting, sorted by key
func All() [][2]string {
	out := make([][2]string, 0, len(Keys))
	for _, k := range Keys {
		out = append(out, [2]string{k, GetString(k)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

func isKnownKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// WebSocketURL derives the realtime endpoint from api.base_url
func WebSocketURL() (string, error) {
	u, err := url.Parse(GetString("api.base_url"))
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String(), nil
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() string {
	return configDir
}

// GetConfigFile returns the user config file path
func GetConfigFile() string {
	return configFilePath
}

// GetCredentialsPath returns the path to the credentials file
func GetCredentialsPath() string {
	return credentialsPath
}

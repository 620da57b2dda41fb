package config

import (
	"encoding/json"
	"fmt"
	"os"

	"go.mau.fi/whatsmeow/types"

	"waingest/internal/models"
	"waingest/internal/security"
)

var (
	ErrMissingOwnJID = models.ConfigError{Message: "missing own JID"}
	ErrMissingDBPath = models.ConfigError{Message: "missing database path"}
)

// LoadConfig reads the JSON configuration file, applies environment
// overrides and validates the result.
func LoadConfig(path string) (*models.Config, error) {
	// Validate config file path to prevent directory traversal
	if err := security.ValidateFilePath(path); err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	file, err := os.ReadFile(path) // #nosec G304 - Path validated by security.ValidateFilePath above
	if err != nil {
		return nil, err
	}

	var config models.Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	applyEnvironmentOverrides(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validate(c *models.Config) error {
	if c.Identity.OwnJID == "" {
		return ErrMissingOwnJID
	}
	if c.Database.Path == "" {
		return ErrMissingDBPath
	}

	if _, err := types.ParseJID(c.Identity.OwnJID); err != nil {
		return models.ConfigError{Message: fmt.Sprintf("invalid own JID: %v", err)}
	}
	if c.Identity.OwnLID != "" {
		if _, err := types.ParseJID(c.Identity.OwnLID); err != nil {
			return models.ConfigError{Message: fmt.Sprintf("invalid own LID: %v", err)}
		}
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return models.ConfigError{Message: "tracing sample rate must be between 0 and 1"}
	}

	return nil
}

func applyEnvironmentOverrides(c *models.Config) {
	if v := os.Getenv("WAINGEST_OWN_JID"); v != "" {
		c.Identity.OwnJID = v
	}
	if v := os.Getenv("WAINGEST_OWN_LID"); v != "" {
		c.Identity.OwnLID = v
	}
	if v := os.Getenv("WAINGEST_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("WAINGEST_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// OwnIdentities parses the configured identity strings into JIDs. The LID
// may be empty when the account has none assigned.
func OwnIdentities(c *models.Config) (ownID, ownLID types.JID, err error) {
	ownID, err = types.ParseJID(c.Identity.OwnJID)
	if err != nil {
		return ownID, ownLID, fmt.Errorf("invalid own JID: %w", err)
	}
	if c.Identity.OwnLID != "" {
		ownLID, err = types.ParseJID(c.Identity.OwnLID)
		if err != nil {
			return ownID, ownLID, fmt.Errorf("invalid own LID: %w", err)
		}
	}
	return ownID, ownLID, nil
}

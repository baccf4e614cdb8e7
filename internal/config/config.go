// Package config persists per-engine default speakers. The file is a
// single JSON object shared with external editors, so reads degrade to
// defaults on any problem instead of failing.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	dirName  = "speak-mcp"
	fileName = "config.json"
)

// Config holds the persisted default speaker per engine. Absent fields
// fall back to speaker id 1 (or the OS default voice for say).
type Config struct {
	VoicevoxDefaultSpeaker *uint32 `json:"voicevoxDefaultSpeaker,omitempty"`
	AivisDefaultSpeaker    *uint32 `json:"aivisDefaultSpeaker,omitempty"`
	NativeDefaultVoice     string  `json:"nativeDefaultVoice,omitempty"`
}

// Path returns the primary config file location, ~/speak-mcp/config.json,
// creating the directory on first access.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	dir := filepath.Join(home, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return filepath.Join(dir, fileName), nil
}

// Load reads the config, trying the primary path first and then
// ./config.json. Concurrent external writes mean a read may observe a
// partial file; any read or parse failure yields the zero config rather
// than an error, so callers always get usable defaults.
func Load() Config {
	if path, err := Path(); err == nil {
		if cfg, ok := read(path); ok {
			return cfg
		}
	}
	if cfg, ok := read(fileName); ok {
		return cfg
	}
	return Config{}
}

func read(path string) (Config, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, false
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, false
	}
	return cfg, true
}

// Save writes the config to the primary path.
func Save(cfg Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

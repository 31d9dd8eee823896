/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the
// user scope. Environment variables are treated as read-only overrides at
// runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type BackendConfig struct {
	BaseURL     string `yaml:"base_url"`
	TimeoutMs   int    `yaml:"timeout_ms"`
	TLSInsecure bool   `yaml:"tls_insecure"`
	// Provider selects how albums are persisted: "api" (hosted HTTP API) or
	// "postgres" (direct database, self-hosted).
	Provider    string `yaml:"provider"`
	PostgresDSN string `yaml:"postgres_dsn"`
	// Token is not stored on disk; it lives in the OS keychain.
}

type GeneralConfig struct {
	TelemetryOptIn bool   `yaml:"telemetry_opt_in"`
	Theme          string `yaml:"theme"` // "system" | "light" | "dark"
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AutosaveConfig struct {
	DebounceMs   int `yaml:"debounce_ms"`
	FallbackMs   int `yaml:"fallback_ms"`
	HistoryLimit int `yaml:"history_limit"`
}

type AppConfig struct {
	ConfigVersion int            `yaml:"config_version"`
	General       GeneralConfig  `yaml:"general"`
	Backend       BackendConfig  `yaml:"backend"`
	Logging       LoggingConfig  `yaml:"logging"`
	Autosave      AutosaveConfig `yaml:"autosave"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false, Theme: "system"},
		Backend:       BackendConfig{BaseURL: "http://localhost:8080", TimeoutMs: 15000, TLSInsecure: false, Provider: "api"},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
		Autosave:      AutosaveConfig{DebounceMs: 5000, FallbackMs: 120000, HistoryLimit: 50},
	}
}

// Env var names used as overrides.
const (
	EnvBackendURL       = "GAS_BACKEND_URL"
	EnvBackendTimeoutMs = "GAS_BACKEND_TIMEOUT_MS"
	EnvBackendTLSInsec  = "GAS_TLS_INSECURE"
	EnvBackendProvider  = "GAS_BACKEND_PROVIDER"
	EnvPostgresDSN      = "GAS_PG_DSN"
	EnvTelemetryOptIn   = "GAS_TELEMETRY_OPT_IN"
	EnvLogLevel         = "GAS_LOG_LEVEL"
	EnvLogFormat        = "GAS_LOG_FORMAT"
	EnvLogSource        = "GAS_LOG_SOURCE"
	EnvLogFile          = "GAS_LOG_FILE"
	EnvAutosaveDebounce = "GAS_AUTOSAVE_DEBOUNCE_MS"
	EnvAutosaveFallback = "GAS_AUTOSAVE_FALLBACK_MS"
	EnvHistoryLimit     = "GAS_HISTORY_LIMIT"
)

// Service/keys for OS keyring.
const (
	keyringService = "GoAlbumStudio"
	keyringToken   = "backend_token"
)

// TokenStore abstracts the OS keyring, so tests can stub it.
type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

var tokenStore TokenStore = &osKeyring{}

// osKeyring stores the token via github.com/zalando/go-keyring.
type osKeyring struct{}

func (k *osKeyring) Get(service, key string) (string, error) {
	return keyring.Get(service, key)
}
func (k *osKeyring) Set(service, key, value string) error {
	return keyring.Set(service, key, value)
}
func (k *osKeyring) Delete(service, key string) error {
	return keyring.Delete(service, key)
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "GoAlbumStudio")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GoAlbumStudio")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "goalbumstudio")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges
// environment overrides. The backend token is loaded from the OS keyring and
// returned separately; it never lives in the struct.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	tok, _ := tokenStore.Get(keyringService, keyringToken)
	return cfg, tok, nil
}

// Save writes the user config YAML and persists the token into the OS keyring
// (if non-empty).
func Save(cfg AppConfig, token string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if token != "" {
		if err := tokenStore.Set(keyringService, keyringToken, token); err != nil {
			return err
		}
	}
	return nil
}

// ForgetToken removes the stored backend token from the OS keyring.
func ForgetToken() error {
	return tokenStore.Delete(keyringService, keyringToken)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.General.Theme != "" {
		dst.General.Theme = src.General.Theme
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	if src.Backend.BaseURL != "" {
		dst.Backend.BaseURL = src.Backend.BaseURL
	}
	if src.Backend.TimeoutMs != 0 {
		dst.Backend.TimeoutMs = src.Backend.TimeoutMs
	}
	dst.Backend.TLSInsecure = src.Backend.TLSInsecure
	if strings.TrimSpace(src.Backend.Provider) != "" {
		dst.Backend.Provider = strings.ToLower(strings.TrimSpace(src.Backend.Provider))
	}
	if strings.TrimSpace(src.Backend.PostgresDSN) != "" {
		dst.Backend.PostgresDSN = strings.TrimSpace(src.Backend.PostgresDSN)
	}
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
	if src.Autosave.DebounceMs > 0 {
		dst.Autosave.DebounceMs = src.Autosave.DebounceMs
	}
	if src.Autosave.FallbackMs > 0 {
		dst.Autosave.FallbackMs = src.Autosave.FallbackMs
	}
	if src.Autosave.HistoryLimit > 0 {
		dst.Autosave.HistoryLimit = src.Autosave.HistoryLimit
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvBackendURL)); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackendTimeoutMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Backend.TimeoutMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackendTLSInsec)); v != "" {
		cfg.Backend.TLSInsecure = isTruthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackendProvider)); v != "" {
		cfg.Backend.Provider = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvPostgresDSN)); v != "" {
		cfg.Backend.PostgresDSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.General.TelemetryOptIn = isTruthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = isTruthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAutosaveDebounce)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Autosave.DebounceMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvAutosaveFallback)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Autosave.FallbackMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvHistoryLimit)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Autosave.HistoryLimit = n
		}
	}
}

func isTruthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

// Debounce returns the autosave debounce interval as a duration.
func (a AutosaveConfig) Debounce() time.Duration {
	if a.DebounceMs <= 0 {
		return time.Duration(Defaults().Autosave.DebounceMs) * time.Millisecond
	}
	return time.Duration(a.DebounceMs) * time.Millisecond
}

// Fallback returns the autosave fallback interval as a duration.
func (a AutosaveConfig) Fallback() time.Duration {
	if a.FallbackMs <= 0 {
		return time.Duration(Defaults().Autosave.FallbackMs) * time.Millisecond
	}
	return time.Duration(a.FallbackMs) * time.Millisecond
}

// EffectiveTimeout returns the backend timeout, falling back to the default.
func (b BackendConfig) EffectiveTimeout() time.Duration {
	if b.TimeoutMs <= 0 {
		return time.Duration(Defaults().Backend.TimeoutMs) * time.Millisecond
	}
	return time.Duration(b.TimeoutMs) * time.Millisecond
}

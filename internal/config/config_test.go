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
	"testing"
	"time"
)

// fakeTokenStore keeps tokens in memory so tests never touch the OS keyring.
type fakeTokenStore struct {
	vals map[string]string
}

func (f *fakeTokenStore) Get(service, key string) (string, error) {
	v, ok := f.vals[service+"/"+key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}
func (f *fakeTokenStore) Set(service, key, value string) error {
	f.vals[service+"/"+key] = value
	return nil
}
func (f *fakeTokenStore) Delete(service, key string) error {
	delete(f.vals, service+"/"+key)
	return nil
}

func stubKeyring(t *testing.T) *fakeTokenStore {
	t.Helper()
	old := tokenStore
	fts := &fakeTokenStore{vals: map[string]string{}}
	tokenStore = fts
	t.Cleanup(func() { tokenStore = old })
	return fts
}

func TestEnvOverridesBackendURL(t *testing.T) {
	stubKeyring(t)
	old := os.Getenv(EnvBackendURL)
	_ = os.Setenv(EnvBackendURL, "https://example.test:8443")
	t.Cleanup(func() { _ = os.Setenv(EnvBackendURL, old) })
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got, want := cfg.Backend.BaseURL, "https://example.test:8443"; got != want {
		t.Fatalf("Backend.BaseURL = %q, want %q", got, want)
	}
}

func TestEnvOverridesProviderAndDSN(t *testing.T) {
	stubKeyring(t)
	oldP := os.Getenv(EnvBackendProvider)
	oldD := os.Getenv(EnvPostgresDSN)
	_ = os.Setenv(EnvBackendProvider, "Postgres")
	_ = os.Setenv(EnvPostgresDSN, "postgres://u:p@db:5432/albums")
	t.Cleanup(func() {
		_ = os.Setenv(EnvBackendProvider, oldP)
		_ = os.Setenv(EnvPostgresDSN, oldD)
	})
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Backend.Provider != "postgres" {
		t.Fatalf("Backend.Provider = %q, want postgres", cfg.Backend.Provider)
	}
	if cfg.Backend.PostgresDSN != "postgres://u:p@db:5432/albums" {
		t.Fatalf("Backend.PostgresDSN not applied: %q", cfg.Backend.PostgresDSN)
	}
}

func TestMergeIncludesAutosave(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Autosave.DebounceMs = 2000
	src.Autosave.FallbackMs = 60000
	src.Autosave.HistoryLimit = 25
	mergeInto(&dst, &src)
	if dst.Autosave.DebounceMs != 2000 || dst.Autosave.FallbackMs != 60000 || dst.Autosave.HistoryLimit != 25 {
		t.Fatalf("autosave fields not merged correctly: %#v", dst.Autosave)
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "debug"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "/tmp/gas.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "/tmp/gas.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestEnvOverridesAutosave(t *testing.T) {
	stubKeyring(t)
	oldD := os.Getenv(EnvAutosaveDebounce)
	oldF := os.Getenv(EnvAutosaveFallback)
	_ = os.Setenv(EnvAutosaveDebounce, "1500")
	_ = os.Setenv(EnvAutosaveFallback, "45000")
	t.Cleanup(func() {
		_ = os.Setenv(EnvAutosaveDebounce, oldD)
		_ = os.Setenv(EnvAutosaveFallback, oldF)
	})
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Autosave.Debounce() != 1500*time.Millisecond {
		t.Fatalf("Debounce = %v, want 1.5s", cfg.Autosave.Debounce())
	}
	if cfg.Autosave.Fallback() != 45*time.Second {
		t.Fatalf("Fallback = %v, want 45s", cfg.Autosave.Fallback())
	}
}

func TestTokenRoundTripThroughStore(t *testing.T) {
	fts := stubKeyring(t)
	home := t.TempDir()
	oldHome := os.Getenv("HOME")
	_ = os.Setenv("HOME", home)
	t.Cleanup(func() { _ = os.Setenv("HOME", oldHome) })

	if err := Save(Defaults(), "secret-token"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := fts.vals[keyringService+"/"+keyringToken]; got != "secret-token" {
		t.Fatalf("token not stored in keyring: %q", got)
	}
	_, tok, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tok != "secret-token" {
		t.Fatalf("token from Load = %q, want secret-token", tok)
	}
	if err := ForgetToken(); err != nil {
		t.Fatalf("ForgetToken: %v", err)
	}
	if _, ok := fts.vals[keyringService+"/"+keyringToken]; ok {
		t.Fatal("token survived ForgetToken")
	}
}

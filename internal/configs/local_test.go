package configs

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	kerrors "github.com/PolarWolf314/dotenvpull/internal/errors"
	"github.com/PolarWolf314/dotenvpull/internal/secrets"
)

func testEntry(t *testing.T) ProjectEntry {
	t.Helper()
	key, err := secrets.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	return ProjectEntry{
		AccessKey:     "3f1c2a9e-8d4b-4c6e-9a1f-2b3c4d5e6f70",
		EncryptionKey: secrets.EncodeKey(key),
	}
}

func TestLoadLocalConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dotenvpull_config.json")

	cfg, err := LoadLocalConfig(path)
	if err != nil {
		t.Fatalf("LoadLocalConfig failed: %v", err)
	}

	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("Expected api_url %q, got %q", DefaultAPIURL, cfg.APIURL)
	}
	if len(cfg.Projects) != 0 {
		t.Errorf("Expected no projects, got %d", len(cfg.Projects))
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Loading a missing config must not create it")
	}
}

func TestSaveAndLoadLocalConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dotenvpull_config.json")

	cfg := NewLocalConfig()
	cfg.APIURL = "https://env.example.com"
	app1 := testEntry(t)
	app2 := testEntry(t)
	app2.Cipher = string(secrets.SuiteChaCha20Poly1305)
	cfg.SetProject("app1", app1)
	cfg.SetProject("app2", app2)

	if err := SaveLocalConfig(path, cfg); err != nil {
		t.Fatalf("SaveLocalConfig failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Expected permissions 0600, got %o", perm)
	}

	loaded, err := LoadLocalConfig(path)
	if err != nil {
		t.Fatalf("LoadLocalConfig failed: %v", err)
	}

	if loaded.APIURL != cfg.APIURL {
		t.Errorf("Expected api_url %q, got %q", cfg.APIURL, loaded.APIURL)
	}
	if got := loaded.Projects["app1"]; got != app1 {
		t.Errorf("Expected app1 %+v, got %+v", app1, got)
	}
	if got := loaded.Projects["app2"]; got != app2 {
		t.Errorf("Expected app2 %+v, got %+v", app2, got)
	}
}

func TestLocalConfigFlatLayout(t *testing.T) {
	cfg := NewLocalConfig()
	entry := testEntry(t)
	cfg.SetProject("app1", entry)

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if raw["api_url"] != DefaultAPIURL {
		t.Errorf("Expected api_url member, got %v", raw["api_url"])
	}
	project, ok := raw["app1"].(map[string]any)
	if !ok {
		t.Fatalf("Expected app1 member to be an object, got %T", raw["app1"])
	}
	if project["access_key"] != entry.AccessKey {
		t.Errorf("Expected access_key %q, got %v", entry.AccessKey, project["access_key"])
	}
	if _, ok := project["cipher"]; ok {
		t.Errorf("Default cipher must be omitted")
	}
}

func TestParseLocalConfigWithoutAPIURL(t *testing.T) {
	entry := testEntry(t)
	data := `{"app1": {"access_key": "` + entry.AccessKey + `", "encryption_key": "` + entry.EncryptionKey + `"}}`

	cfg, err := ParseLocalConfig([]byte(data))
	if err != nil {
		t.Fatalf("ParseLocalConfig failed: %v", err)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("Expected default api_url, got %q", cfg.APIURL)
	}
	if _, err := cfg.Project("app1"); err != nil {
		t.Errorf("Expected app1 entry: %v", err)
	}
}

func TestParseLocalConfigErrors(t *testing.T) {
	validKey := testEntry(t).EncryptionKey

	tests := []struct {
		name     string
		data     string
		contains string
	}{
		{"not an object", `["app1"]`, "JSON object"},
		{"invalid json", `{"api_url": `, "JSON object"},
		{"api_url not a string", `{"api_url": 8080}`, "api_url"},
		{"entry not an object", `{"app1": "secret"}`, `"app1"`},
		{"missing access key", `{"app1": {"encryption_key": "` + validKey + `"}}`, "access_key"},
		{"missing encryption key", `{"app1": {"access_key": "k"}}`, "encryption_key"},
		{"short encryption key", `{"app1": {"access_key": "k", "encryption_key": "c2hvcnQ="}}`, `"app1"`},
		{"bad base64 key", `{"app1": {"access_key": "k", "encryption_key": "!!!"}}`, `"app1"`},
		{"unknown cipher", `{"app1": {"access_key": "k", "encryption_key": "` + validKey + `", "cipher": "rot13"}}`, "rot13"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLocalConfig([]byte(tt.data))
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !errors.Is(err, kerrors.ErrConfig) {
				t.Errorf("Expected ErrConfig, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("Expected error to mention %q, got %q", tt.contains, err.Error())
			}
		})
	}
}

func TestLocalConfigProjectLookup(t *testing.T) {
	cfg := NewLocalConfig()
	cfg.SetProject("app1", testEntry(t))

	if _, err := cfg.Project("app2"); !errors.Is(err, kerrors.ErrUnknownProject) {
		t.Errorf("Expected ErrUnknownProject, got %v", err)
	}

	cfg.SetProject("app0", testEntry(t))
	ids := cfg.ProjectIDs()
	if len(ids) != 2 || ids[0] != "app0" || ids[1] != "app1" {
		t.Errorf("Expected sorted ids [app0 app1], got %v", ids)
	}

	cfg.RemoveProject("app0")
	if _, err := cfg.Project("app0"); !errors.Is(err, kerrors.ErrUnknownProject) {
		t.Errorf("Expected app0 to be removed")
	}
	if _, err := cfg.Project("app1"); err != nil {
		t.Errorf("Removing app0 must keep app1: %v", err)
	}
}

func TestHasAPIURL(t *testing.T) {
	tests := []struct {
		data string
		want bool
	}{
		{`{"api_url": "http://x", "app1": {}}`, true},
		{`{"app1": {"access_key": "k"}}`, false},
		{`not json`, false},
	}
	for _, tt := range tests {
		if got := HasAPIURL([]byte(tt.data)); got != tt.want {
			t.Errorf("HasAPIURL(%s) = %v, want %v", tt.data, got, tt.want)
		}
	}
}

func TestResolveLocalConfigPath(t *testing.T) {
	t.Setenv(LocalConfigEnv, "")
	if got := ResolveLocalConfigPath(""); got != DefaultLocalConfigPath {
		t.Errorf("Expected default path, got %q", got)
	}

	t.Setenv(LocalConfigEnv, "/tmp/from-env.json")
	if got := ResolveLocalConfigPath(""); got != "/tmp/from-env.json" {
		t.Errorf("Expected env path, got %q", got)
	}
	if got := ResolveLocalConfigPath("flag.json"); got != "flag.json" {
		t.Errorf("Expected flag path to win, got %q", got)
	}
}

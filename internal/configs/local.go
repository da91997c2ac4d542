package configs

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	kerrors "github.com/PolarWolf314/dotenvpull/internal/errors"
	"github.com/PolarWolf314/dotenvpull/internal/secrets"
	"github.com/PolarWolf314/dotenvpull/internal/utils"
)

const (
	// DefaultAPIURL is the server address used when the config names none.
	DefaultAPIURL = "http://localhost:8080"

	// DefaultLocalConfigPath is relative to the working directory.
	DefaultLocalConfigPath = "dotenvpull_config.json"

	// LocalConfigEnv overrides the local config path.
	LocalConfigEnv = "DOTENVPULL_CONFIG"

	localConfigPermissions os.FileMode = 0600
)

// ProjectEntry is the client-side record of one pushed project.
type ProjectEntry struct {
	AccessKey     string `json:"access_key"`
	EncryptionKey string `json:"encryption_key"`

	// Cipher is empty for the default suite.
	Cipher string `json:"cipher,omitempty"`
}

// Key decodes the entry's encryption key.
func (e ProjectEntry) Key() ([]byte, error) {
	return secrets.DecodeKey(e.EncryptionKey)
}

// Suite returns the cipher suite the entry was sealed with.
func (e ProjectEntry) Suite() (secrets.Suite, error) {
	return secrets.ParseSuite(e.Cipher)
}

func (e ProjectEntry) validate(projectID string) error {
	if e.AccessKey == "" {
		return fmt.Errorf("%w: project %q has no access_key", kerrors.ErrConfig, projectID)
	}
	if e.EncryptionKey == "" {
		return fmt.Errorf("%w: project %q has no encryption_key", kerrors.ErrConfig, projectID)
	}
	if _, err := e.Key(); err != nil {
		return fmt.Errorf("%w: project %q: %v", kerrors.ErrConfig, projectID, err)
	}
	if _, err := e.Suite(); err != nil {
		return fmt.Errorf("%w: project %q: %v", kerrors.ErrConfig, projectID, err)
	}
	return nil
}

// LocalConfig is the client's durable state.
type LocalConfig struct {
	APIURL   string
	Projects map[string]ProjectEntry
}

// NewLocalConfig returns an empty config pointing at DefaultAPIURL.
func NewLocalConfig() *LocalConfig {
	return &LocalConfig{
		APIURL:   DefaultAPIURL,
		Projects: make(map[string]ProjectEntry),
	}
}

// Project looks up the entry for projectID.
func (c *LocalConfig) Project(projectID string) (ProjectEntry, error) {
	entry, ok := c.Projects[projectID]
	if !ok {
		return ProjectEntry{}, fmt.Errorf("%w: %q", kerrors.ErrUnknownProject, projectID)
	}
	return entry, nil
}

// SetProject adds or replaces the entry for projectID.
func (c *LocalConfig) SetProject(projectID string, entry ProjectEntry) {
	if c.Projects == nil {
		c.Projects = make(map[string]ProjectEntry)
	}
	c.Projects[projectID] = entry
}

// RemoveProject deletes the entry for projectID, if any.
func (c *LocalConfig) RemoveProject(projectID string) {
	delete(c.Projects, projectID)
}

// ProjectIDs returns the project ids in lexical order.
func (c *LocalConfig) ProjectIDs() []string {
	ids := make([]string, 0, len(c.Projects))
	for id := range c.Projects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Validate reports the first malformed entry as ErrConfig.
func (c *LocalConfig) Validate() error {
	for _, id := range c.ProjectIDs() {
		if err := c.Projects[id].validate(id); err != nil {
			return err
		}
	}
	return nil
}

// MarshalJSON writes the flat on-disk layout, with api_url next to the projects.
func (c LocalConfig) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(c.Projects)+1)
	for id, entry := range c.Projects {
		doc[id] = entry
	}
	apiURL := c.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	doc[utils.ReservedConfigKey] = apiURL
	return json.Marshal(doc)
}

// UnmarshalJSON reads the flat on-disk layout. Shape errors are ErrConfig.
func (c *LocalConfig) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: config must be a JSON object: %v", kerrors.ErrConfig, err)
	}

	cfg := NewLocalConfig()
	for key, value := range raw {
		if key == utils.ReservedConfigKey {
			if err := json.Unmarshal(value, &cfg.APIURL); err != nil {
				return fmt.Errorf("%w: %s must be a string", kerrors.ErrConfig, utils.ReservedConfigKey)
			}
			continue
		}

		var entry ProjectEntry
		if err := json.Unmarshal(value, &entry); err != nil {
			return fmt.Errorf("%w: project %q must be an object with access_key and encryption_key", kerrors.ErrConfig, key)
		}
		cfg.Projects[key] = entry
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}

	*c = *cfg
	return nil
}

// HasAPIURL reports whether data is a whole local config rather than a
// project fragment, by the presence of the api_url member.
func HasAPIURL(data []byte) bool {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return false
	}
	_, ok := raw[utils.ReservedConfigKey]
	return ok
}

// ResolveLocalConfigPath picks the flag value, then DOTENVPULL_CONFIG, then
// the default.
func ResolveLocalConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(LocalConfigEnv); env != "" {
		return env
	}
	return DefaultLocalConfigPath
}

// LoadLocalConfig reads and validates the config at path. A missing file
// yields an empty config; nothing is written.
func LoadLocalConfig(path string) (*LocalConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewLocalConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg, err := ParseLocalConfig(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseLocalConfig decodes and validates a config document.
func ParseLocalConfig(data []byte) (*LocalConfig, error) {
	cfg := NewLocalConfig()
	if err := cfg.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveLocalConfig writes cfg to path with owner-only permissions.
func SaveLocalConfig(path string, cfg *LocalConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	data = append(data, '\n')

	if err := utils.WriteFileAtomic(path, data, localConfigPermissions); err != nil {
		return fmt.Errorf("failed to save config %s: %w", path, err)
	}
	return nil
}

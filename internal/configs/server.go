package configs

import (
	"fmt"
	"io"
	"os"
	"time"

	kerrors "github.com/PolarWolf314/dotenvpull/internal/errors"
	"github.com/PolarWolf314/dotenvpull/internal/store"

	"github.com/joho/godotenv"
)

// Environment variables read by the server.
const (
	EnvServerURL    = "SERVER_URL"
	EnvDatabaseURL  = "DATABASE_URL"
	EnvDatabaseName = "DATABASE_NAME"
	EnvStore        = "DOTENVPULL_STORE"
	EnvDataDir      = "DOTENVPULL_DATA_DIR"
	EnvShareTTL     = "DOTENVPULL_SHARE_TTL"
)

const (
	DefaultServerAddr   = "127.0.0.1:8080"
	DefaultDataDir      = "dotenvpull-data"
	DefaultReadTimeout  = 15 * time.Second
	DefaultWriteTimeout = 15 * time.Second
)

// ServerConfig holds the settings of `dotenvpull serve`.
type ServerConfig struct {
	Addr          string
	StoreType     string
	DataDir       string
	MongoURI      string
	MongoDatabase string
	ShareTTL      time.Duration
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
}

// serverConfigFile is the TOML layout. Durations are strings such as "10m".
type serverConfigFile struct {
	Addr          string `toml:"addr,omitempty"`
	Store         string `toml:"store,omitempty"`
	DataDir       string `toml:"data_dir,omitempty"`
	MongoURI      string `toml:"mongo_uri,omitempty"`
	MongoDatabase string `toml:"mongo_database,omitempty"`
	ShareTTL      string `toml:"share_ttl,omitempty"`
	ReadTimeout   string `toml:"read_timeout,omitempty"`
	WriteTimeout  string `toml:"write_timeout,omitempty"`
}

// DefaultServerConfig serves a file store from ./dotenvpull-data on localhost.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         DefaultServerAddr,
		StoreType:    string(store.TypeFile),
		DataDir:      DefaultDataDir,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
	}
}

// ApplyFile overlays the non-empty settings of a TOML file.
func (c *ServerConfig) ApplyFile(path string) error {
	var f serverConfigFile
	if err := LoadTOML(path, &f); err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrConfig, err)
	}

	setString(&c.Addr, f.Addr)
	setString(&c.StoreType, f.Store)
	setString(&c.DataDir, f.DataDir)
	setString(&c.MongoURI, f.MongoURI)
	setString(&c.MongoDatabase, f.MongoDatabase)

	for _, d := range []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"share_ttl", f.ShareTTL, &c.ShareTTL},
		{"read_timeout", f.ReadTimeout, &c.ReadTimeout},
		{"write_timeout", f.WriteTimeout, &c.WriteTimeout},
	} {
		if err := setDuration(d.dst, d.name, d.value); err != nil {
			return err
		}
	}
	return nil
}

// ApplyEnv overlays settings from the environment. DATABASE_URL selects the
// mongo store unless DOTENVPULL_STORE names one.
func (c *ServerConfig) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(name string) string {
		v, _ := lookup(name)
		return v
	}

	setString(&c.Addr, get(EnvServerURL))
	setString(&c.MongoURI, get(EnvDatabaseURL))
	setString(&c.MongoDatabase, get(EnvDatabaseName))
	setString(&c.DataDir, get(EnvDataDir))

	if s := get(EnvStore); s != "" {
		c.StoreType = s
	} else if get(EnvDatabaseURL) != "" {
		c.StoreType = string(store.TypeMongo)
	}

	return setDuration(&c.ShareTTL, EnvShareTTL, get(EnvShareTTL))
}

// LoadEnvFile loads a .env file into the process environment. Variables
// already set are not overridden.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("%w: failed to load env file %s: %v", kerrors.ErrConfig, path, err)
	}
	return nil
}

// Validate checks that the selected store has the settings it needs.
func (c ServerConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: listen address cannot be empty", kerrors.ErrConfig)
	}
	if c.ShareTTL < 0 || c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		return fmt.Errorf("%w: durations cannot be negative", kerrors.ErrConfig)
	}
	if c.ShareTTL > 0 && c.ShareTTL < time.Second {
		return fmt.Errorf("%w: share TTL must be at least one second", kerrors.ErrConfig)
	}

	switch store.Type(c.StoreType) {
	case store.TypeMemory:
	case store.TypeFile:
		if c.DataDir == "" {
			return fmt.Errorf("%w: the file store needs a data directory", kerrors.ErrConfig)
		}
	case store.TypeMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("%w: the mongo store needs %s", kerrors.ErrConfig, EnvDatabaseURL)
		}
		if c.MongoDatabase == "" {
			return fmt.Errorf("%w: the mongo store needs %s", kerrors.ErrConfig, EnvDatabaseName)
		}
	default:
		return fmt.Errorf("%w: unknown store type %q (want memory, file or mongo)", kerrors.ErrConfig, c.StoreType)
	}
	return nil
}

// StoreConfig converts the settings into a store.Config.
func (c ServerConfig) StoreConfig() store.Config {
	return store.Config{
		Type:          store.Type(c.StoreType),
		DataDir:       c.DataDir,
		MongoURI:      c.MongoURI,
		MongoDatabase: c.MongoDatabase,
		ShareTTL:      c.ShareTTL,
	}
}

// WriteTOML prints the settings in the config file layout.
func (c ServerConfig) WriteTOML(w io.Writer) error {
	f := serverConfigFile{
		Addr:          c.Addr,
		Store:         c.StoreType,
		DataDir:       c.DataDir,
		MongoURI:      c.MongoURI,
		MongoDatabase: c.MongoDatabase,
		ReadTimeout:   c.ReadTimeout.String(),
		WriteTimeout:  c.WriteTimeout.String(),
	}
	if c.ShareTTL > 0 {
		f.ShareTTL = c.ShareTTL.String()
	}
	return WriteTOML(w, f)
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func setDuration(dst *time.Duration, name, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", kerrors.ErrConfig, name, err)
	}
	*dst = d
	return nil
}

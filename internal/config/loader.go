package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"
)

const (
	configDir  = ".missionpulse"
	configFile = "config"
	configType = "yaml"
	envPrefix  = "MISSIONPULSE"

	keyringService = "missionpulse"
)

// Loader reads and writes the configuration file.
type Loader struct {
	v    *viper.Viper
	path string
}

// NewLoader returns a loader for path, or ~/.missionpulse/config.yaml if path is empty.
func NewLoader(path string) (*Loader, error) {
	if path == "" {
		dir, err := configDirPath()
		if err != nil {
			return nil, fmt.Errorf("config dir: %w", err)
		}
		path = filepath.Join(dir, configFile+"."+configType)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("preferences.theme", "default")
	v.SetDefault("database.max_conns", 5)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("export.dir", ".")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(filepath.Dir(path), "missionpulse.log"))

	return &Loader{v: v, path: path}, nil
}

// Path returns the config file location.
func (l *Loader) Path() string {
	return l.path
}

// Load reads the configuration. A missing file yields defaults.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration file. Passwords are not included.
func (l *Loader) Save(cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	l.v.Set("connections", cfg.Connections)
	l.v.Set("preferences", cfg.Preferences)
	l.v.Set("database", cfg.Database)
	l.v.Set("export", cfg.Export)
	l.v.Set("server", cfg.Server)
	l.v.Set("log", cfg.Log)

	if err := l.v.WriteConfigAs(l.path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// SaveConnection stores conn in cfg, moves its password to the keyring and
// persists the file.
func (l *Loader) SaveConnection(cfg *Config, conn Connection) error {
	if conn.Password != "" {
		if err := StorePassword(conn.Name, conn.Password); err != nil {
			return err
		}
	}
	if !cfg.AddConnection(conn) {
		return nil
	}
	return l.Save(cfg)
}

// StorePassword saves a connection password in the OS keyring.
func StorePassword(name, password string) error {
	if err := keyring.Set(keyringService, name, password); err != nil {
		return fmt.Errorf("store password: %w", err)
	}
	return nil
}

// ResolvePassword fills conn.Password from the keyring if present.
func ResolvePassword(conn Connection) (Connection, error) {
	if conn.Password != "" {
		return conn, nil
	}
	p, err := keyring.Get(keyringService, conn.Name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return conn, nil
		}
		return conn, fmt.Errorf("lookup password: %w", err)
	}
	conn.Password = p
	return conn, nil
}

func configDirPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDir), nil
}

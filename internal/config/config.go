package config

import (
	"fmt"
	"net/url"
	"strconv"
)

// Config represents the application configuration.
type Config struct {
	Connections []Connection   `mapstructure:"connections" yaml:"connections"`
	Preferences Preferences    `mapstructure:"preferences" yaml:"preferences"`
	Database    DatabaseConfig `mapstructure:"database" yaml:"database"`
	Export      ExportConfig   `mapstructure:"export" yaml:"export"`
	Server      ServerConfig   `mapstructure:"server" yaml:"server"`
	Log         LogConfig      `mapstructure:"log" yaml:"log"`
}

// Connection represents a saved database connection profile.
// Password is never written to the config file; see StorePassword.
type Connection struct {
	Name     string `mapstructure:"name" yaml:"name"`
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Database string `mapstructure:"database" yaml:"database"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"-" yaml:"-"`
	SSLMode  string `mapstructure:"sslmode" yaml:"sslmode"`
}

// Preferences holds user preferences.
type Preferences struct {
	Theme             string `mapstructure:"theme" yaml:"theme"`
	DefaultConnection string `mapstructure:"default_connection" yaml:"default_connection"`
}

// DatabaseConfig sizes the connection pool.
type DatabaseConfig struct {
	MaxConns int32 `mapstructure:"max_conns" yaml:"max_conns"`
	MinConns int32 `mapstructure:"min_conns" yaml:"min_conns"`
}

// ExportConfig controls where CSV reports land.
type ExportConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// ServerConfig configures the report API.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// DSN builds a PostgreSQL connection string from the connection profile.
func (c Connection) DSN() string {
	u := url.URL{
		Scheme: "postgresql",
		Host:   c.Host,
		Path:   "/" + c.Database,
	}
	if c.Port > 0 {
		u.Host += ":" + strconv.Itoa(c.Port)
	}
	if c.Username != "" {
		if c.Password != "" {
			u.User = url.UserPassword(c.Username, c.Password)
		} else {
			u.User = url.User(c.Username)
		}
	}
	if c.SSLMode != "" {
		u.RawQuery = "sslmode=" + url.QueryEscape(c.SSLMode)
	}
	return u.String()
}

// DisplayString returns a human-readable summary of the connection.
func (c Connection) DisplayString() string {
	s := c.Host
	if c.Port > 0 {
		s += ":" + strconv.Itoa(c.Port)
	}
	s += "/" + c.Database
	if c.Username != "" {
		s = c.Username + "@" + s
	}
	return s
}

// ParseDSN parses a PostgreSQL connection string into a Connection.
func ParseDSN(dsn string) (Connection, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return Connection{}, fmt.Errorf("invalid DSN: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return Connection{}, fmt.Errorf("invalid DSN: unsupported scheme %q", u.Scheme)
	}

	conn := Connection{
		Host:     u.Hostname(),
		Database: trimPrefix(u.Path, "/"),
		SSLMode:  u.Query().Get("sslmode"),
	}

	if u.User != nil {
		conn.Username = u.User.Username()
		if p, ok := u.User.Password(); ok {
			conn.Password = p
		}
	}

	if portStr := u.Port(); portStr != "" {
		conn.Port, _ = strconv.Atoi(portStr)
	}
	if conn.Port == 0 {
		conn.Port = 5432
	}

	// Auto-generate a name
	conn.Name = fmt.Sprintf("postgres-%s-%d-%s", conn.Host, conn.Port, conn.Database)

	return conn, nil
}

// HasConnection checks if a connection with the given name already exists.
func (cfg *Config) HasConnection(name string) bool {
	for _, c := range cfg.Connections {
		if c.Name == name {
			return true
		}
	}
	return false
}

// AddConnection appends a connection if it doesn't already exist.
func (cfg *Config) AddConnection(conn Connection) bool {
	if cfg.HasConnection(conn.Name) {
		return false
	}
	cfg.Connections = append(cfg.Connections, conn)
	return true
}

// Clone returns a copy that shares no connection slice with cfg.
func (cfg *Config) Clone() *Config {
	if cfg == nil {
		return &Config{}
	}
	c := *cfg
	c.Connections = append([]Connection(nil), cfg.Connections...)
	return &c
}

// DefaultConnection returns the default connection from config, or the first one.
func (cfg *Config) DefaultConnection() *Connection {
	if len(cfg.Connections) == 0 {
		return nil
	}

	if cfg.Preferences.DefaultConnection != "" {
		for i := range cfg.Connections {
			if cfg.Connections[i].Name == cfg.Preferences.DefaultConnection {
				return &cfg.Connections[i]
			}
		}
	}

	return &cfg.Connections[0]
}

func trimPrefix(s, prefix string) string {
	if len(s) >= len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):]
	}
	return s
}

// Package config handles loading and parsing application configuration.
// It supports two sources for the config file path (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//
// Every value read from the YAML file can be overridden by the
// environment variable named in its env:"..." tag.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"golang.org/x/crypto/bcrypt"
)

// Supported storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the root configuration structure.
//
// env-required:"true" means the app refuses to start if that value is
// missing; better to crash at boot than to silently use a wrong default.
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-required:"true"`

	HTTPServer `yaml:"http_server"`
	Storage    Storage `yaml:"storage"`
	Auth       Auth    `yaml:"auth"`
}

// HTTPServer holds settings specific to the HTTP server.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8082".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-required:"true"`
}

// Storage selects the database backend and sizes its connection pool.
//
// The pool keys map onto each backend as follows:
//
//	key                 sqlite (database/sql)          postgres (pgxpool)
//	max_open_conns      SetMaxOpenConns (<=0: no cap)  MaxConns (must be >= 1)
//	max_idle_conns      SetMaxIdleConns (idle cap)     MinConns (kept open)
//	conn_max_lifetime   SetConnMaxLifetime             MaxConnLifetime
//	conn_max_idle_time  SetConnMaxIdleTime             MaxConnIdleTime
type Storage struct {
	// Driver is "sqlite" (default) or "postgres".
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"sqlite"`

	// DSN is the SQLite file path or the postgres connection URL.
	DSN string `yaml:"dsn" env:"STORAGE_DSN" env-required:"true"`

	MaxOpenConns    int           `yaml:"max_open_conns" env:"STORAGE_MAX_OPEN_CONNS" env-default:"10"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"STORAGE_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"STORAGE_CONN_MAX_LIFETIME" env-default:"1h"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" env:"STORAGE_CONN_MAX_IDLE_TIME" env-default:"30m"`
}

// Auth is the single credential pair accepted by the Basic-Auth guard.
// When PasswordHash (bcrypt) is set it takes precedence over Password.
type Auth struct {
	Username     string `yaml:"username" env:"AUTH_USERNAME" env-required:"true"`
	Password     string `yaml:"password" env:"AUTH_PASSWORD"`
	PasswordHash string `yaml:"password_hash" env:"AUTH_PASSWORD_HASH"`
	Realm        string `yaml:"realm" env:"AUTH_REALM" env-default:"Secure Area"`
}

// Load reads the YAML file at path, applies environment overrides and
// defaults, and checks the values cleanenv cannot check on its own.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file does not exist: %s: %w", path, err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.Storage.MaxOpenConns < 1 {
			return errors.New("storage: max_open_conns must be at least 1 for postgres")
		}
		if c.Storage.MaxIdleConns > c.Storage.MaxOpenConns {
			return errors.New("storage: max_idle_conns must not exceed max_open_conns for postgres")
		}
	default:
		return fmt.Errorf("unsupported storage driver: %q", c.Storage.Driver)
	}

	if c.Auth.Password == "" && c.Auth.PasswordHash == "" {
		return errors.New("auth: either password or password_hash must be set")
	}

	if c.Auth.PasswordHash != "" {
		if _, err := bcrypt.Cost([]byte(c.Auth.PasswordHash)); err != nil {
			return fmt.Errorf("auth: password_hash is not a bcrypt hash: %w", err)
		}
	}

	return nil
}

// MustLoad resolves the config path, loads the config, and exits the
// process if anything is wrong. If it returns, the config is valid.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	if configPath == "" {
		log.Fatal("config path is not set: use --config flag or CONFIG_PATH env var")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err.Error())
	}

	return cfg
}

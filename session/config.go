package session

import (
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Backend names accepted by Config.Backend.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config selects and parameterizes the history store.
type Config struct {
	Backend     string `json:"backend,omitempty" yaml:"backend,omitempty"`
	Path        string `json:"path,omitempty" yaml:"path,omitempty"`                 // file backend root directory
	DSN         string `json:"dsn,omitempty" yaml:"dsn,omitempty"`                   // sqlite data source name
	RedisAddr   string `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty"`     // host:port
	RedisPrefix string `json:"redis_prefix,omitempty" yaml:"redis_prefix,omitempty"` // list key prefix
}

// DefaultConfig returns the in-memory session configuration.
func DefaultConfig() Config {
	return Config{Backend: BackendMemory}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Backend != "" {
		c.Backend = source.Backend
	}
	if source.Path != "" {
		c.Path = source.Path
	}
	if source.DSN != "" {
		c.DSN = source.DSN
	}
	if source.RedisAddr != "" {
		c.RedisAddr = source.RedisAddr
	}
	if source.RedisPrefix != "" {
		c.RedisPrefix = source.RedisPrefix
	}
}

// NewStore creates the Store named by cfg.Backend.
func NewStore(cfg *Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		if cfg.Path == "" {
			return nil, fmt.Errorf("file session store: empty path")
		}
		return NewFileStore(cfg.Path), nil
	case BackendSQLite:
		return NewSQLiteStore(cfg.DSN)
	case BackendRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis session store: empty address")
		}
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return NewRedisStore(client, cfg.RedisPrefix), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, cfg.Backend)
	}
}

// New creates a Manager over the Store described by cfg.
func New(cfg *Config) (*Manager, error) {
	store, err := NewStore(cfg)
	if err != nil {
		return nil, err
	}
	return NewManager(store), nil
}

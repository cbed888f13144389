package session_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/tailored-agentic-units/querymind/session"
)

func TestDefaultConfig(t *testing.T) {
	cfg := session.DefaultConfig()

	if cfg.Backend != session.BackendMemory {
		t.Errorf("got Backend %q, want %q", cfg.Backend, session.BackendMemory)
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := session.DefaultConfig()
	source := session.Config{Backend: session.BackendSQLite, DSN: "file.db"}

	cfg.Merge(&source)

	if cfg.Backend != session.BackendSQLite {
		t.Errorf("got Backend %q, want sqlite", cfg.Backend)
	}
	if cfg.DSN != "file.db" {
		t.Errorf("got DSN %q, want file.db", cfg.DSN)
	}
}

func TestConfig_Merge_ZeroValuesPreserveDefaults(t *testing.T) {
	cfg := session.DefaultConfig()

	cfg.Merge(&session.Config{})

	if cfg.Backend != session.BackendMemory {
		t.Errorf("got Backend %q, want memory (preserved default)", cfg.Backend)
	}
}

func TestNewStore(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     session.Config
		wantErr bool
	}{
		{name: "default", cfg: session.Config{}},
		{name: "memory", cfg: session.Config{Backend: session.BackendMemory}},
		{name: "file", cfg: session.Config{Backend: session.BackendFile, Path: dir}},
		{name: "file without path", cfg: session.Config{Backend: session.BackendFile}, wantErr: true},
		{name: "sqlite", cfg: session.Config{Backend: session.BackendSQLite, DSN: filepath.Join(dir, "h.db")}},
		{name: "sqlite without dsn", cfg: session.Config{Backend: session.BackendSQLite}, wantErr: true},
		{name: "redis without addr", cfg: session.Config{Backend: session.BackendRedis}, wantErr: true},
		{name: "unknown", cfg: session.Config{Backend: "etcd"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := session.NewStore(&tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewStore error = %v, wantErr %v", err, tt.wantErr)
			}
			if s != nil {
				s.Close()
			}
		})
	}
}

func TestNewStore_UnknownBackend(t *testing.T) {
	_, err := session.NewStore(&session.Config{Backend: "etcd"})
	if !errors.Is(err, session.ErrUnknownKind) {
		t.Errorf("got %v, want ErrUnknownKind", err)
	}
}

func TestNew_FromConfig(t *testing.T) {
	cfg := session.DefaultConfig()

	m, err := session.New(&cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer m.Close()

	if m.Store() == nil {
		t.Fatal("New returned manager without store")
	}
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLoad(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "valid config",
			yaml: `
env: dev
http_server:
  address: localhost:8082
storage:
  dsn: storage/mountains.db
auth:
  username: admin
  password: secret
`,
		},
		{
			name: "password hash only",
			yaml: fmt.Sprintf(`
env: prod
http_server:
  address: ":8080"
storage:
  driver: postgres
  dsn: postgres://localhost/mountains
auth:
  username: admin
  password_hash: %q
`, hash),
		},
		{
			name: "truncated password hash",
			yaml: `
env: prod
http_server:
  address: ":8080"
storage:
  dsn: storage/mountains.db
auth:
  username: admin
  password_hash: "$2a$10$abcdefghijklmnopqrstuv"
`,
			wantErr: "password_hash is not a bcrypt hash",
		},
		{
			name: "postgres without connection cap",
			yaml: `
env: prod
http_server:
  address: ":8080"
storage:
  driver: postgres
  dsn: postgres://localhost/mountains
  max_open_conns: -1
auth:
  username: admin
  password: secret
`,
			wantErr: "max_open_conns must be at least 1",
		},
		{
			name: "postgres idle above cap",
			yaml: `
env: prod
http_server:
  address: ":8080"
storage:
  driver: postgres
  dsn: postgres://localhost/mountains
  max_open_conns: 2
  max_idle_conns: 3
auth:
  username: admin
  password: secret
`,
			wantErr: "max_idle_conns must not exceed max_open_conns",
		},
		{
			name: "sqlite without connection cap",
			yaml: `
env: dev
http_server:
  address: localhost:8082
storage:
  dsn: storage/mountains.db
  max_open_conns: -1
auth:
  username: admin
  password: secret
`,
		},
		{
			name: "missing username",
			yaml: `
env: dev
http_server:
  address: localhost:8082
storage:
  dsn: storage/mountains.db
auth:
  password: secret
`,
			wantErr: "cannot read config",
		},
		{
			name: "missing password and hash",
			yaml: `
env: dev
http_server:
  address: localhost:8082
storage:
  dsn: storage/mountains.db
auth:
  username: admin
`,
			wantErr: "either password or password_hash must be set",
		},
		{
			name: "unknown driver",
			yaml: `
env: dev
http_server:
  address: localhost:8082
storage:
  driver: mysql
  dsn: root@/mountains
auth:
  username: admin
  password: secret
`,
			wantErr: "unsupported storage driver",
		},
		{
			name:    "invalid yaml syntax",
			yaml:    `invalid: [yaml: content`,
			wantErr: "cannot read config",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := writeTestConfig(t, test.yaml)
			cfg, err := Load(path)

			if test.wantErr != "" {
				require.ErrorContains(t, err, test.wantErr)
				assert.Nil(t, cfg)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeTestConfig(t, `
env: dev
http_server:
  address: localhost:8082
storage:
  dsn: storage/mountains.db
auth:
  username: admin
  password: secret
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, 10, cfg.Storage.MaxOpenConns)
	assert.Equal(t, 5, cfg.Storage.MaxIdleConns)
	assert.Equal(t, time.Hour, cfg.Storage.ConnMaxLifetime)
	assert.Equal(t, 30*time.Minute, cfg.Storage.ConnMaxIdleTime)
	assert.Equal(t, "Secure Area", cfg.Auth.Realm)
	assert.Equal(t, "localhost:8082", cfg.HTTPServer.Addr)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("AUTH_USERNAME", "root")
	t.Setenv("AUTH_PASSWORD", "rotated")

	path := writeTestConfig(t, `
env: dev
http_server:
  address: localhost:8082
storage:
  dsn: storage/mountains.db
auth:
  username: admin
  password: secret
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "root", cfg.Auth.Username)
	assert.Equal(t, "rotated", cfg.Auth.Password)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	require.ErrorContains(t, err, "config file does not exist")
	assert.Nil(t, cfg)
}

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	err := os.WriteFile(path, []byte(content), 0o600)
	require.NoError(t, err)
	return path
}

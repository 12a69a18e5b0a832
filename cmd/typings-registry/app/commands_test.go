package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/typings-registry/database"
	"github.com/stacklok/typings-registry/internal/config"
	"github.com/stacklok/typings-registry/internal/queue"
)

// execute runs the command tree with args and returns its standard output
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetContext(t.Context())

	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	names := make([]string, 0, len(cmd.Commands()))
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"worker", "sync", "migrate", "cursor", "validate", "version"}, names)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestVersionCmd(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "", "version", "--format", "json")
	require.NoError(t, err)

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.NotEmpty(t, info["version"])
	assert.NotEmpty(t, info["go_version"])

	out, err = execute(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "typings-registry "))
}

func TestCommandsRequireConfig(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{
		{"sync"},
		{"worker"},
		{"migrate", "up", "--yes"},
		{"cursor", "get", "dt"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			t.Parallel()
			_, err := execute(t, "", args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "configuration file is required")
		})
	}
}

func TestValidateCmd(t *testing.T) {
	t.Parallel()

	valid := writeConfig(t, `
repositories:
  - name: typings
    format: typings
    url: https://github.com/typings/registry.git
    path: ./data/typings
`)
	out, err := execute(t, "", "validate", "--config", valid)
	require.NoError(t, err)
	assert.Contains(t, out, "typings: typings from https://github.com/typings/registry.git")
	assert.Contains(t, out, "start from head")

	invalid := writeConfig(t, `
repositories:
  - name: dt
    format: npm
    url: https://example.com/dt.git
    path: ./data/dt
`)
	_, err = execute(t, "", "validate", "--config", invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestSelectRepositories(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Repositories: []config.RepositoryConfig{{Name: "dt"}, {Name: "typings"}}}

	tests := []struct {
		name    string
		args    []string
		want    []string
		wantErr bool
	}{
		{name: "all by default", want: []string{"dt", "typings"}},
		{name: "named", args: []string{"typings"}, want: []string{"typings"}},
		{name: "duplicates collapse", args: []string{"dt", "dt"}, want: []string{"dt"}},
		{name: "unknown", args: []string{"npm"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := selectRepositories(cfg, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			names := make([]string, 0, len(got))
			for _, r := range got {
				names = append(names, r.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestConfirm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{input: "yes\n", want: true},
		{input: "Y\n", want: true},
		{input: "  y  \n", want: true},
		{input: "no\n", want: false},
		{input: "\n", want: false},
		{input: "", want: false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.input), func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			assert.Equal(t, tt.want, confirm(strings.NewReader(tt.input), &out, "Continue?"))
			assert.Equal(t, "Continue? (yes/no): ", out.String())
		})
	}
}

type fakeMigrator struct {
	database.Migrator
	steps   []int
	down    int
	downErr error
}

func (f *fakeMigrator) Down() error {
	f.down++
	return f.downErr
}

func (f *fakeMigrator) Steps(n int) error {
	f.steps = append(f.steps, n)
	return nil
}

func TestExecuteMigrateDown(t *testing.T) {
	t.Parallel()

	m := &fakeMigrator{}
	require.NoError(t, executeMigrateDown(m, 2))
	assert.Equal(t, []int{-2}, m.steps)

	require.NoError(t, executeMigrateDown(m, 0))
	assert.Equal(t, 1, m.down)

	m = &fakeMigrator{downErr: migrate.ErrNoChange}
	require.NoError(t, executeMigrateDown(m, 0))

	m = &fakeMigrator{downErr: errors.New("locked")}
	require.Error(t, executeMigrateDown(m, 0))
}

func TestCommandsAgainstDatabase(t *testing.T) {
	connStr, cleanup := database.SetupTestDBContainer(t, t.Context())
	t.Cleanup(cleanup)

	u, err := url.Parse(connStr)
	require.NoError(t, err)
	password, _ := u.User.Password()
	t.Setenv(config.EnvPrefix+"_DATABASE_PASSWORD", password)

	path := writeConfig(t, fmt.Sprintf(`
database:
  host: %s
  port: %s
  user: %s
  database: %s
  sslMode: disable
repositories:
  - name: dt
    format: definitelytyped
    url: https://github.com/DefinitelyTyped/DefinitelyTyped.git
    path: %s
`, u.Hostname(), u.Port(), u.User.Username(), strings.TrimPrefix(u.Path, "/"), t.TempDir()))

	// declining the prompt leaves the schema untouched
	_, err = execute(t, "no\n", "migrate", "up", "--config", path)
	require.NoError(t, err)
	_, _, err = database.GetVersion(connStr)
	require.ErrorIs(t, err, migrate.ErrNilVersion)

	_, err = execute(t, "", "migrate", "up", "--yes", "--config", path)
	require.NoError(t, err)

	out, err := execute(t, "", "cursor", "get", "dt", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "no cursor")

	_, err = execute(t, "", "cursor", "set", "dt", "abc123", "--config", path)
	require.NoError(t, err)

	out, err = execute(t, "", "cursor", "get", "dt", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "dt: abc123")

	_, err = execute(t, "", "cursor", "reset", "dt", "--config", path)
	require.NoError(t, err)
	_, err = execute(t, "", "cursor", "reset", "dt", "--config", path)
	require.NoError(t, err)

	_, err = execute(t, "", "cursor", "get", "npm", "--config", path)
	require.Error(t, err)

	// repeated triggers coalesce into one queued walk
	_, err = execute(t, "", "sync", "--config", path)
	require.NoError(t, err)
	_, err = execute(t, "", "sync", "dt", "--config", path)
	require.NoError(t, err)

	pool, err := newTestPool(t, connStr)
	require.NoError(t, err)
	pending, err := queue.NewDBQueue(pool).Pending(t.Context(), queue.KindSyncCommits)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)

	_, err = execute(t, "", "migrate", "down", "--yes", "--config", path)
	require.NoError(t, err)
	_, _, err = database.GetVersion(connStr)
	require.ErrorIs(t, err, migrate.ErrNilVersion)
}

func newTestPool(t *testing.T, connStr string) (*pgxpool.Pool, error) {
	t.Helper()
	pool, err := pgxpool.New(t.Context(), connStr)
	if err != nil {
		return nil, err
	}
	t.Cleanup(pool.Close)
	return pool, nil
}

func TestMigrateRefusesNonInteractivePrompt(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
database:
  host: localhost
  port: 5432
  user: typings
  passwordFile: /dev/null
  database: typings
repositories:
  - name: dt
    format: definitelytyped
    url: https://github.com/DefinitelyTyped/DefinitelyTyped.git
    path: ./data/dt
`)

	devNull, err := os.Open(os.DevNull)
	require.NoError(t, err)
	t.Cleanup(func() { _ = devNull.Close() })

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"migrate", "down", "--config", path})
	cmd.SetIn(devNull)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetContext(t.Context())

	err = cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pass --yes")
}

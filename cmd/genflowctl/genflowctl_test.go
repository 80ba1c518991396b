package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/phrazzld/genflow/internal/config"
	"github.com/phrazzld/genflow/internal/durable"
	"github.com/phrazzld/genflow/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret-that-is-32-chars-long"

// writeConfig writes a config file selecting backend and returns its path.
func writeConfig(t *testing.T, backend string, extra string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	body := fmt.Sprintf(`server:
  log_level: error
store:
  backend: %s
  dir: %s
auth:
  jwt_secret: %s
%s`, backend, dataDir, testSecret, extra)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path, dataDir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTokenIssue(t *testing.T) {
	path, _ := writeConfig(t, config.BackendFile, "")

	out, err := execute(t, "--config", path, "token", "issue", "workspace-7")
	require.NoError(t, err)

	token := strings.TrimSpace(out)
	require.NotEmpty(t, token)

	svc, err := auth.NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 60})
	require.NoError(t, err)
	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "workspace-7", claims.ContextID)
}

func TestTokenIssue_InvalidContextID(t *testing.T) {
	path, _ := writeConfig(t, config.BackendFile, "")

	_, err := execute(t, "--config", path, "token", "issue", "has space")
	assert.ErrorIs(t, err, auth.ErrInvalidContextID)
}

func TestTokenIssue_RequiresArgument(t *testing.T) {
	path, _ := writeConfig(t, config.BackendFile, "")

	_, err := execute(t, "--config", path, "token", "issue")
	assert.Error(t, err)
}

func TestMissingConfigFile(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "token", "issue", "x")
	assert.Error(t, err)
}

func TestSnapshotShow(t *testing.T) {
	path, dataDir := writeConfig(t, config.BackendFile, "")

	out, err := execute(t, "--config", path, "snapshot", "show", "ctx-1")
	require.NoError(t, err)
	assert.Contains(t, out, `no snapshot for context "ctx-1"`)

	store := durable.NewFileStore(dataDir, durable.ContextKey("ctx-1"), 0)
	require.NoError(t, store.Write([]byte(`{"savedState":{"currentStep":2}}`)))

	out, err = execute(t, "--config", path, "snapshot", "show", "ctx-1")
	require.NoError(t, err)
	assert.Contains(t, out, `"currentStep": 2`)
}

func TestSnapshotShow_NotJSON(t *testing.T) {
	path, dataDir := writeConfig(t, config.BackendFile, "")

	store := durable.NewFileStore(dataDir, durable.ContextKey("ctx-1"), 0)
	require.NoError(t, store.Write([]byte(`not json`)))

	out, err := execute(t, "--config", path, "snapshot", "show", "ctx-1")
	require.NoError(t, err)
	assert.Contains(t, out, "not json")
}

func TestSnapshotErase(t *testing.T) {
	path, dataDir := writeConfig(t, config.BackendFile, "")

	store := durable.NewFileStore(dataDir, durable.ContextKey("ctx-1"), 0)
	require.NoError(t, store.Write([]byte(`{}`)))

	out, err := execute(t, "--config", path, "snapshot", "erase", "ctx-1")
	require.NoError(t, err)
	assert.Contains(t, out, "erased")

	_, err = store.Read()
	assert.True(t, durable.IsNotFound(err))

	// erasing again is not an error
	_, err = execute(t, "--config", path, "snapshot", "erase", "ctx-1")
	assert.NoError(t, err)
}

func TestSnapshot_MemoryBackendRefused(t *testing.T) {
	path, _ := writeConfig(t, config.BackendMemory, "")

	_, err := execute(t, "--config", path, "snapshot", "show", "ctx-1")
	assert.ErrorContains(t, err, "does not persist")
}

func TestSnapshotList_FileBackendUnsupported(t *testing.T) {
	path, _ := writeConfig(t, config.BackendFile, "")

	_, err := execute(t, "--config", path, "snapshot", "list")
	assert.ErrorContains(t, err, "not supported")
}

func TestSnapshotList_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set(durable.ContextKey("alpha"), `{}`))
	require.NoError(t, mr.Set(durable.ContextKey("beta"), `{}`))
	require.NoError(t, mr.Set("unrelated", "x"))

	path, _ := writeConfig(t, config.BackendRedis, fmt.Sprintf("redis:\n  addr: %s\n", mr.Addr()))

	out, err := execute(t, "--config", path, "snapshot", "list")
	require.NoError(t, err)
	assert.Contains(t, out, durable.ContextKey("alpha"))
	assert.Contains(t, out, durable.ContextKey("beta"))
	assert.NotContains(t, out, "unrelated")
}

func TestMigrate(t *testing.T) {
	path, _ := writeConfig(t, config.BackendFile, "")

	t.Run("requires a database url", func(t *testing.T) {
		_, err := execute(t, "--config", path, "migrate", "up")
		assert.ErrorIs(t, err, errNoDatabase)
	})

	t.Run("rejects unknown commands", func(t *testing.T) {
		_, err := execute(t, "--config", path, "migrate", "sideways")
		assert.Error(t, err)
	})
}

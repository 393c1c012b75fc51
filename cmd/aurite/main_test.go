package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

const validConfig = `
log_level = "info"

[[llms]]
name = "default"
provider = "ollama"
model = "llama3"

[[mcp_servers]]
name = "builtin"
transport = "http"
url = "http://localhost:8765/mcp"

[[agents]]
name = "assistant"
llm = "default"
mcp_servers = ["builtin"]
`

const invalidConfig = `
[[agents]]
name = "assistant"
llm = "missing_llm"
`

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aurite.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestApp() *cli.Command {
	return &cli.Command{
		Name:     "aurite",
		Version:  Version,
		Commands: []*cli.Command{runCmd, validateCmd, toolsCmd, versionCmd},
	}
}

func TestValidateCommand(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		path := writeTempConfig(t, validConfig)
		err := newTestApp().Run(context.Background(), []string{"aurite", "validate", path})
		require.NoError(t, err)
	})

	t.Run("valid config via flag with tree", func(t *testing.T) {
		path := writeTempConfig(t, validConfig)
		err := newTestApp().Run(context.Background(),
			[]string{"aurite", "validate", "--config", path, "--tree"})
		require.NoError(t, err)
	})

	t.Run("invalid config", func(t *testing.T) {
		path := writeTempConfig(t, invalidConfig)
		err := newTestApp().Run(context.Background(), []string{"aurite", "validate", path})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation failed")
	})

	t.Run("missing path", func(t *testing.T) {
		err := newTestApp().Run(context.Background(), []string{"aurite", "validate"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "config file path required")
	})

	t.Run("nonexistent file", func(t *testing.T) {
		err := newTestApp().Run(context.Background(),
			[]string{"aurite", "validate", "/does/not/exist.toml"})
		require.Error(t, err)
	})
}

func TestVersionCommand(t *testing.T) {
	err := newTestApp().Run(context.Background(), []string{"aurite", "version"})
	require.NoError(t, err)
}

func TestRunCommand_ArgValidation(t *testing.T) {
	t.Run("missing args", func(t *testing.T) {
		err := newTestApp().Run(context.Background(), []string{"aurite", "run"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "usage: aurite run")
	})

	t.Run("unknown agent", func(t *testing.T) {
		path := writeTempConfig(t, validConfig)
		err := newTestApp().Run(context.Background(),
			[]string{"aurite", "run", "--config", path, "nobody", "hello"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown agent "nobody"`)
		assert.Contains(t, err.Error(), "assistant")
	})
}

func TestSetupLogger(t *testing.T) {
	// Must not panic for any supported combination.
	SetupLogger("debug", "text")
	SetupLogger("info", "json")
	SetupLogger("", "")
}

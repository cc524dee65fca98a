// Package cmdtest builds vaults, configs and state for command tests.
package cmdtest

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/an-kanban/internal/cards"
	"github.com/Paintersrp/an-kanban/internal/config"
	"github.com/Paintersrp/an-kanban/internal/handler"
	"github.com/Paintersrp/an-kanban/internal/logging"
	"github.com/Paintersrp/an-kanban/internal/state"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

// ReadFile returns the content of path.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	return string(data)
}

// NewState writes files into a fresh vault, writes a config whose boards
// section is boards (YAML indented two spaces under "boards:") and returns
// state with the first board selected. HOME points at a temp dir for the
// rest of the test.
func NewState(t *testing.T, files map[string]string, boards string) *state.State {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	vault := filepath.Join(home, "vault")
	if err := os.MkdirAll(vault, 0o755); err != nil {
		t.Fatalf("failed to create vault: %v", err)
	}
	for name, content := range files {
		WriteFile(t, filepath.Join(vault, filepath.FromSlash(name)), content)
	}

	data := "vaultdir: " + vault + "\n"
	if boards != "" {
		data += "boards:\n" + boards
	}
	WriteFile(t, config.GetConfigPath(home), data)

	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	h := handler.NewFileHandler(vault)
	logger := logging.Discard()
	s := &state.State{
		Config:        cfg,
		Workspace:     cfg.MustWorkspace(),
		WorkspaceName: cfg.CurrentWorkspace,
		Handler:       h,
		Cards:         cards.NewManager(h, logger),
		Logger:        logger,
		Home:          home,
		Vault:         vault,
		Status:        &state.StatusLine{},
	}
	if _, err := s.SelectBoard(""); err != nil {
		t.Fatalf("failed to select board: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// Run executes c with args and returns what it wrote to stdout.
func Run(c *cobra.Command, args ...string) (string, error) {
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetErr(&bytes.Buffer{})
	c.SetArgs(args)
	err := c.Execute()
	return out.String(), err
}

// WithBoardFlag wraps c in a parent carrying the global --board flag, the
// way the root command does.
func WithBoardFlag(c *cobra.Command) *cobra.Command {
	parent := &cobra.Command{Use: "kb", SilenceUsage: true, SilenceErrors: true}
	parent.PersistentFlags().StringP("board", "b", "", "")
	parent.AddCommand(c)
	return parent
}

// Package editor opens card files in the editor configured for a workspace.
package editor

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Paintersrp/an-kanban/internal/config"
	"github.com/Paintersrp/an-kanban/internal/pathutil"
)

// Launch is a prepared editor process. Wait reports whether the editor runs
// in the terminal and must be waited on before the caller resumes.
type Launch struct {
	Cmd  *exec.Cmd
	Wait bool
}

// Editor builds launches for one workspace.
type Editor struct {
	Name     string
	NvimArgs string
	VaultDir string

	goos string
}

func New(ws *config.Workspace) Editor {
	return Editor{
		Name:     strings.TrimSpace(ws.Editor),
		NvimArgs: ws.NvimArgs,
		VaultDir: ws.VaultDir,
		goos:     runtime.GOOS,
	}
}

type command struct {
	name    string
	args    []string
	wait    bool
	silence bool
}

// For prepares an editor command for path without starting it.
func (e Editor) For(path string) (*Launch, error) {
	cmd, err := e.command(path)
	if err != nil {
		return nil, err
	}

	c := exec.Command(cmd.name, cmd.args...)
	if cmd.silence {
		c.Stdout = io.Discard
		c.Stderr = io.Discard
	}
	return &Launch{Cmd: c, Wait: cmd.wait}, nil
}

// Open starts the editor on path and, for terminal editors, waits for it to
// exit.
func (e Editor) Open(path string) error {
	launch, err := e.For(path)
	if err != nil {
		return err
	}

	if launch.Wait {
		launch.Cmd.Stdin = os.Stdin
		launch.Cmd.Stdout = os.Stdout
		launch.Cmd.Stderr = os.Stderr
	}

	if err := launch.Cmd.Start(); err != nil {
		return fmt.Errorf("error starting editor: %w", err)
	}
	if !launch.Wait {
		return nil
	}
	if err := launch.Cmd.Wait(); err != nil {
		return fmt.Errorf("error waiting for editor to close: %w", err)
	}
	return nil
}

func (e Editor) command(path string) (command, error) {
	switch e.Name {
	case "nvim":
		args := strings.Fields(e.NvimArgs)
		return command{name: "nvim", args: append(args, path), wait: true}, nil
	case "vim", "nano":
		return command{name: e.Name, args: []string{path}, wait: true}, nil
	case "vscode", "code":
		return e.vscode(path)
	case "obsidian":
		return e.obsidian(path)
	case "custom":
		return e.fromEnv(path)
	case "":
		if env := strings.TrimSpace(os.Getenv("EDITOR")); env != "" {
			return e.fromEnv(path)
		}
		return command{}, fmt.Errorf("editor not configured")
	default:
		return command{}, fmt.Errorf("unsupported editor: %s", e.Name)
	}
}

// fromEnv runs $EDITOR, which may carry its own arguments.
func (e Editor) fromEnv(path string) (command, error) {
	fields := strings.Fields(os.Getenv("EDITOR"))
	if len(fields) == 0 {
		return command{}, fmt.Errorf("custom editor requires $EDITOR to be set")
	}
	return command{name: fields[0], args: append(fields[1:], path), wait: true}, nil
}

func (e Editor) vscode(path string) (command, error) {
	switch e.goos {
	case "darwin":
		return command{name: "open", args: []string{"-n", "-b", "com.microsoft.VSCode", "--args", path}, silence: true}, nil
	case "linux":
		return command{name: "code", args: []string{path}, silence: true}, nil
	case "windows":
		return command{name: "cmd", args: []string{"/c", "code", path}, silence: true}, nil
	default:
		return command{}, fmt.Errorf("unsupported operating system: %s", e.goos)
	}
}

func (e Editor) obsidian(path string) (command, error) {
	vaultName := filepath.Base(pathutil.NormalizePath(e.VaultDir))
	rel, err := pathutil.VaultRelative(e.VaultDir, path)
	if err != nil {
		return command{}, fmt.Errorf("unable to determine relative path for obsidian: %w", err)
	}

	uri := fmt.Sprintf("obsidian://open?vault=%s&file=%s", url.QueryEscape(vaultName), url.QueryEscape(rel))

	switch e.goos {
	case "darwin":
		return command{name: "open", args: []string{uri}, silence: true}, nil
	case "linux":
		return command{name: "xdg-open", args: []string{uri}, silence: true}, nil
	case "windows":
		return command{name: "cmd", args: []string{"/c", "start", uri}, silence: true}, nil
	default:
		return command{}, fmt.Errorf("unsupported operating system: %s", e.goos)
	}
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Workspace is one vault together with the boards defined over it.
type Workspace struct {
	VaultDir   string                  `yaml:"vaultdir"    json:"vault_dir"`
	Editor     string                  `yaml:"editor"      json:"editor"`
	NvimArgs   string                  `yaml:"nvimargs"    json:"nvim_args"`
	Settings   *Settings               `yaml:"settings"    json:"settings"`
	Boards     map[string]*BoardConfig `yaml:"boards"      json:"boards"`
	BoardOrder []string                `yaml:"board_order" json:"board_order"`
}

type Config struct {
	Workspaces       map[string]*Workspace `yaml:"workspaces"        json:"workspaces"`
	CurrentWorkspace string                `yaml:"current_workspace" json:"current_workspace"`

	active *Workspace `yaml:"-"`
	home   string     `yaml:"-"`
}

const (
	defaultWorkspaceName = "default"

	// DefaultBoardName is created for workspaces without any boards. It
	// spans the whole vault.
	DefaultBoardName = "default"
)

var validEditorNames = []string{"nvim", "obsidian", "vscode", "code", "vim", "nano", "custom"}

var ValidEditors = func() map[string]bool {
	editors := make(map[string]bool, len(validEditorNames))
	for _, editor := range validEditorNames {
		editors[editor] = true
	}

	return editors
}()

func ValidateEditor(editor string) error {
	if _, valid := ValidEditors[editor]; valid {
		return nil
	}

	return fmt.Errorf(
		"invalid editor: %q. Please choose from %s.",
		editor,
		quoteList(validEditorNames),
	)
}

func newWorkspace() *Workspace {
	ws := &Workspace{}
	ws.ensureDefaults()
	return ws
}

func (ws *Workspace) ensureDefaults() {
	if ws.Settings == nil {
		defaults := DefaultSettings()
		ws.Settings = &defaults
	}
	if ws.Boards == nil {
		ws.Boards = make(map[string]*BoardConfig)
	}
	if len(ws.Boards) == 0 {
		ws.Boards[DefaultBoardName] = &BoardConfig{}
	}
	for name, b := range ws.Boards {
		if b == nil {
			ws.Boards[name] = &BoardConfig{}
		}
	}
	ws.BoardOrder = normalizeOrder(ws.BoardOrder, ws.Boards)
}

// normalizeOrder drops names without a board and appends boards missing from
// the order alphabetically.
func normalizeOrder(order []string, boards map[string]*BoardConfig) []string {
	seen := make(map[string]struct{}, len(order))
	out := make([]string, 0, len(boards))
	for _, name := range order {
		if _, ok := boards[name]; !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	for _, name := range sortedKeys(boards) {
		if _, ok := seen[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}

func Load(home string) (*Config, error) {
	path := GetConfigPath(home)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{home: home}
	if len(strings.TrimSpace(string(data))) == 0 {
		cfg.Workspaces = map[string]*Workspace{
			defaultWorkspaceName: newWorkspace(),
		}
		cfg.CurrentWorkspace = defaultWorkspaceName
	} else {
		raw := make(map[string]interface{})
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}

		if _, ok := raw["workspaces"]; ok {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		} else {
			// A bare workspace at the top level of the file.
			ws := &Workspace{}
			if err := yaml.Unmarshal(data, ws); err != nil {
				return nil, err
			}
			cfg.Workspaces = map[string]*Workspace{defaultWorkspaceName: ws}
			cfg.CurrentWorkspace = defaultWorkspaceName
		}
	}

	if err := cfg.ensureInitialized(); err != nil {
		return nil, err
	}

	ws, err := cfg.ActiveWorkspace()
	if err != nil {
		return nil, err
	}

	if err := ws.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the editor and every stored choice against its valid set.
func (ws *Workspace) Validate() error {
	if ws.Editor != "" {
		if err := ValidateEditor(ws.Editor); err != nil {
			return err
		}
	}

	s := ws.settings()
	if _, err := parseChoice("card size", s.CardSize, validCardSizes); err != nil {
		return err
	}
	if s.LogLevel != "" {
		if _, err := parseChoice("log level", s.LogLevel, validLogLevels); err != nil {
			return err
		}
	}
	if s.LogFormat != "" {
		if _, err := parseChoice("log format", s.LogFormat, validFormats); err != nil {
			return err
		}
	}

	for _, name := range sortedKeys(ws.Boards) {
		b := ws.Boards[name]
		if b.CardSize != nil {
			if _, err := parseChoice("card size", *b.CardSize, validCardSizes); err != nil {
				return fmt.Errorf("board %q: %w", name, err)
			}
		}
		if b.Sort != "" {
			if _, err := parseChoice("sort", b.Sort, validSorts); err != nil {
				return fmt.Errorf("board %q: %w", name, err)
			}
		}
	}
	return nil
}

func (cfg *Config) ensureInitialized() error {
	if cfg.Workspaces == nil {
		cfg.Workspaces = make(map[string]*Workspace)
	}

	if cfg.CurrentWorkspace == "" {
		if len(cfg.Workspaces) == 0 {
			cfg.Workspaces[defaultWorkspaceName] = newWorkspace()
			cfg.CurrentWorkspace = defaultWorkspaceName
		} else {
			cfg.CurrentWorkspace = cfg.WorkspaceNames()[0]
		}
	}

	return cfg.setActiveWorkspace(cfg.CurrentWorkspace)
}

func (cfg *Config) setActiveWorkspace(name string) error {
	if name == "" {
		return fmt.Errorf("workspace name cannot be empty")
	}
	ws, ok := cfg.Workspaces[name]
	if !ok {
		return fmt.Errorf("workspace %q does not exist", name)
	}
	if ws == nil {
		ws = newWorkspace()
		cfg.Workspaces[name] = ws
	}

	ws.ensureDefaults()
	cfg.CurrentWorkspace = name
	cfg.active = ws

	syncWorkspaceWithViper(ws)

	return nil
}

// syncWorkspaceWithViper publishes the active workspace so flags bound
// through viper fall back to it.
func syncWorkspaceWithViper(ws *Workspace) {
	viper.Set("vaultdir", ws.VaultDir)
	viper.Set("editor", ws.Editor)
	viper.Set("nvimargs", ws.NvimArgs)

	s := ws.settings()
	viper.SetDefault("log_level", s.LogLevel)
	viper.SetDefault("log_format", s.LogFormat)
	if len(ws.BoardOrder) > 0 {
		viper.SetDefault("board", ws.BoardOrder[0])
	}
}

func (cfg *Config) ActiveWorkspace() (*Workspace, error) {
	if cfg.active != nil {
		return cfg.active, nil
	}

	if cfg.CurrentWorkspace == "" {
		if err := cfg.ensureInitialized(); err != nil {
			return nil, err
		}
		return cfg.active, nil
	}

	if err := cfg.setActiveWorkspace(cfg.CurrentWorkspace); err != nil {
		return nil, err
	}

	return cfg.active, nil
}

func (cfg *Config) MustWorkspace() *Workspace {
	ws, err := cfg.ActiveWorkspace()
	if err != nil {
		panic(err)
	}
	return ws
}

func (cfg *Config) WorkspaceNames() []string {
	names := make([]string, 0, len(cfg.Workspaces))
	for name := range cfg.Workspaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (cfg *Config) ActivateWorkspace(name string) error {
	return cfg.setActiveWorkspace(name)
}

func (cfg *Config) SwitchWorkspace(name string) error {
	if err := cfg.setActiveWorkspace(name); err != nil {
		return err
	}
	return cfg.Save()
}

func (cfg *Config) AddWorkspace(name string, ws *Workspace, makeCurrent bool) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("workspace name cannot be empty")
	}

	if cfg.Workspaces == nil {
		cfg.Workspaces = make(map[string]*Workspace)
	}

	if _, exists := cfg.Workspaces[trimmed]; exists {
		return fmt.Errorf("workspace %q already exists", trimmed)
	}

	if ws == nil {
		ws = newWorkspace()
	}
	ws.ensureDefaults()
	cfg.Workspaces[trimmed] = ws

	if cfg.CurrentWorkspace == "" || makeCurrent {
		if err := cfg.setActiveWorkspace(trimmed); err != nil {
			return err
		}
	}

	return cfg.Save()
}

func (cfg *Config) RemoveWorkspace(name string) error {
	if len(cfg.Workspaces) <= 1 {
		return fmt.Errorf("cannot remove the last workspace")
	}

	if _, exists := cfg.Workspaces[name]; !exists {
		return fmt.Errorf("workspace %q does not exist", name)
	}

	delete(cfg.Workspaces, name)

	if cfg.CurrentWorkspace == name {
		cfg.active = nil
		cfg.CurrentWorkspace = ""
		if err := cfg.ensureInitialized(); err != nil {
			return err
		}
	}

	return cfg.Save()
}

func (cfg *Config) ChangeEditor(editor string) error {
	if err := ValidateEditor(editor); err != nil {
		return err
	}

	ws, err := cfg.ActiveWorkspace()
	if err != nil {
		return err
	}

	ws.Editor = editor
	return cfg.Save()
}

func (cfg *Config) GetConfigPath() string {
	if cfg.home != "" {
		return GetConfigPath(cfg.home)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return GetConfigPath(homeDir)
}

// Save validates the active workspace and writes the whole config file.
func (cfg *Config) Save() error {
	ws, err := cfg.ActiveWorkspace()
	if err != nil {
		return err
	}

	if err := ws.Validate(); err != nil {
		return err
	}

	syncWorkspaceWithViper(ws)

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	configPath := cfg.GetConfigPath()
	if configPath == "" {
		return fmt.Errorf("unable to resolve config path")
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0o644)
}

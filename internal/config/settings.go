package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	CardSmall  = "small"
	CardMedium = "medium"
	CardLarge  = "large"

	SortTitle   = "title"
	SortUpdated = "updated"
	SortPath    = "path"
)

var (
	validCardSizes = []string{CardSmall, CardMedium, CardLarge}
	validSorts     = []string{SortTitle, SortUpdated, SortPath}
	validLogLevels = []string{"trace", "debug", "info", "warn", "error"}
	validFormats   = []string{"text", "json"}
)

// Settings are the workspace wide defaults every board inherits.
type Settings struct {
	GroupBy           string        `yaml:"group_by"             json:"group_by"`
	CardSize          string        `yaml:"card_size"            json:"card_size"`
	MaxCardsPerColumn int           `yaml:"max_cards_per_column" json:"max_cards_per_column"`
	Draggable         bool          `yaml:"draggable"            json:"draggable"`
	ShowCardCount     bool          `yaml:"show_card_count"      json:"show_card_count"`
	CompactMode       bool          `yaml:"compact_mode"         json:"compact_mode"`
	ShowColors        bool          `yaml:"show_colors"          json:"show_colors"`
	NewFileFolder     string        `yaml:"new_file_folder"      json:"new_file_folder"`
	ConfirmDelete     bool          `yaml:"confirm_delete"       json:"confirm_delete"`
	UndoDelay         time.Duration `yaml:"undo_delay"           json:"undo_delay"`
	LogLevel          string        `yaml:"log_level"            json:"log_level"`
	LogFormat         string        `yaml:"log_format"           json:"log_format"`
}

// DefaultSettings returns the built in defaults.
func DefaultSettings() Settings {
	return Settings{
		GroupBy:       "status",
		CardSize:      CardMedium,
		Draggable:     true,
		ShowCardCount: true,
		ShowColors:    true,
		ConfirmDelete: true,
		UndoDelay:     5 * time.Second,
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// UnmarshalYAML fills keys missing from the file with defaults.
func (s *Settings) UnmarshalYAML(value *yaml.Node) error {
	type plain Settings
	raw := plain(DefaultSettings())
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*s = Settings(raw)
	return nil
}

// BoardConfig holds one board's query scope and its overrides of the
// workspace settings. Nil override fields inherit.
type BoardConfig struct {
	Folder            string   `yaml:"folder"                       json:"folder"`
	Exclude           []string `yaml:"exclude,omitempty"            json:"exclude,omitempty"`
	ColumnOrder       []string `yaml:"column_order,omitempty"       json:"column_order,omitempty"`
	VisibleProperties []string `yaml:"visible_properties,omitempty" json:"visible_properties,omitempty"`
	Sort              string   `yaml:"sort,omitempty"               json:"sort,omitempty"`

	GroupBy           *string        `yaml:"group_by,omitempty"             json:"group_by,omitempty"`
	CardSize          *string        `yaml:"card_size,omitempty"            json:"card_size,omitempty"`
	MaxCardsPerColumn *int           `yaml:"max_cards_per_column,omitempty" json:"max_cards_per_column,omitempty"`
	Draggable         *bool          `yaml:"draggable,omitempty"            json:"draggable,omitempty"`
	ShowCardCount     *bool          `yaml:"show_card_count,omitempty"      json:"show_card_count,omitempty"`
	CompactMode       *bool          `yaml:"compact_mode,omitempty"         json:"compact_mode,omitempty"`
	ShowColors        *bool          `yaml:"show_colors,omitempty"          json:"show_colors,omitempty"`
	NewFileFolder     *string        `yaml:"new_file_folder,omitempty"      json:"new_file_folder,omitempty"`
	ConfirmDelete     *bool          `yaml:"confirm_delete,omitempty"       json:"confirm_delete,omitempty"`
	UndoDelay         *time.Duration `yaml:"undo_delay,omitempty"           json:"undo_delay,omitempty"`
}

// Effective is a board's configuration with every override resolved.
type Effective struct {
	Board string
	Settings
	Folder            string
	Exclude           []string
	ColumnOrder       []string
	VisibleProperties []string
	Sort              string

	overridden map[string]bool
}

// Overridden reports whether key is set on the board rather than inherited.
func (e Effective) Overridden(key string) bool {
	return e.overridden[key]
}

// EffectiveSetting is a single resolved setting.
type EffectiveSetting struct {
	Key        string `json:"key"`
	Value      string `json:"value"`
	Overridden bool   `json:"overridden"`
}

type settingField struct {
	key       string
	boardOnly bool
	global    func(*Settings) any
	setGlobal func(*Settings, string) error
	board     func(*BoardConfig) (any, bool)
	setBoard  func(*BoardConfig, string) error
	unset     func(*BoardConfig)
}

var settingFields = []settingField{
	{
		key:    "group_by",
		global: func(s *Settings) any { return s.GroupBy },
		setGlobal: func(s *Settings, v string) error {
			name, err := parseGroupBy(v)
			s.GroupBy = name
			return err
		},
		board: func(b *BoardConfig) (any, bool) { return deref(b.GroupBy) },
		setBoard: func(b *BoardConfig, v string) error {
			name, err := parseGroupBy(v)
			b.GroupBy = &name
			return err
		},
		unset: func(b *BoardConfig) { b.GroupBy = nil },
	},
	{
		key:    "card_size",
		global: func(s *Settings) any { return s.CardSize },
		setGlobal: func(s *Settings, v string) error {
			size, err := parseChoice("card size", v, validCardSizes)
			s.CardSize = size
			return err
		},
		board: func(b *BoardConfig) (any, bool) { return deref(b.CardSize) },
		setBoard: func(b *BoardConfig, v string) error {
			size, err := parseChoice("card size", v, validCardSizes)
			b.CardSize = &size
			return err
		},
		unset: func(b *BoardConfig) { b.CardSize = nil },
	},
	{
		key:    "max_cards_per_column",
		global: func(s *Settings) any { return s.MaxCardsPerColumn },
		setGlobal: func(s *Settings, v string) error {
			n, err := parseLimit(v)
			s.MaxCardsPerColumn = n
			return err
		},
		board: func(b *BoardConfig) (any, bool) { return deref(b.MaxCardsPerColumn) },
		setBoard: func(b *BoardConfig, v string) error {
			n, err := parseLimit(v)
			b.MaxCardsPerColumn = &n
			return err
		},
		unset: func(b *BoardConfig) { b.MaxCardsPerColumn = nil },
	},
	boolField("draggable",
		func(s *Settings) *bool { return &s.Draggable },
		func(b *BoardConfig) **bool { return &b.Draggable }),
	boolField("show_card_count",
		func(s *Settings) *bool { return &s.ShowCardCount },
		func(b *BoardConfig) **bool { return &b.ShowCardCount }),
	boolField("compact_mode",
		func(s *Settings) *bool { return &s.CompactMode },
		func(b *BoardConfig) **bool { return &b.CompactMode }),
	boolField("show_colors",
		func(s *Settings) *bool { return &s.ShowColors },
		func(b *BoardConfig) **bool { return &b.ShowColors }),
	{
		key:    "new_file_folder",
		global: func(s *Settings) any { return s.NewFileFolder },
		setGlobal: func(s *Settings, v string) error {
			s.NewFileFolder = strings.TrimSpace(v)
			return nil
		},
		board: func(b *BoardConfig) (any, bool) { return deref(b.NewFileFolder) },
		setBoard: func(b *BoardConfig, v string) error {
			folder := strings.TrimSpace(v)
			b.NewFileFolder = &folder
			return nil
		},
		unset: func(b *BoardConfig) { b.NewFileFolder = nil },
	},
	boolField("confirm_delete",
		func(s *Settings) *bool { return &s.ConfirmDelete },
		func(b *BoardConfig) **bool { return &b.ConfirmDelete }),
	{
		key:    "undo_delay",
		global: func(s *Settings) any { return s.UndoDelay },
		setGlobal: func(s *Settings, v string) error {
			d, err := parseDelay(v)
			s.UndoDelay = d
			return err
		},
		board: func(b *BoardConfig) (any, bool) { return deref(b.UndoDelay) },
		setBoard: func(b *BoardConfig, v string) error {
			d, err := parseDelay(v)
			b.UndoDelay = &d
			return err
		},
		unset: func(b *BoardConfig) { b.UndoDelay = nil },
	},
	{
		key:    "log_level",
		global: func(s *Settings) any { return s.LogLevel },
		setGlobal: func(s *Settings, v string) error {
			level, err := parseChoice("log level", v, validLogLevels)
			s.LogLevel = level
			return err
		},
	},
	{
		key:    "log_format",
		global: func(s *Settings) any { return s.LogFormat },
		setGlobal: func(s *Settings, v string) error {
			format, err := parseChoice("log format", v, validFormats)
			s.LogFormat = format
			return err
		},
	},
	{
		key:       "folder",
		boardOnly: true,
		board:     func(b *BoardConfig) (any, bool) { return b.Folder, b.Folder != "" },
		setBoard: func(b *BoardConfig, v string) error {
			b.Folder = strings.Trim(strings.TrimSpace(v), "/")
			return nil
		},
		unset: func(b *BoardConfig) { b.Folder = "" },
	},
	{
		key:       "sort",
		boardOnly: true,
		board:     func(b *BoardConfig) (any, bool) { return b.Sort, b.Sort != "" },
		setBoard: func(b *BoardConfig, v string) error {
			mode, err := parseChoice("sort", v, validSorts)
			b.Sort = mode
			return err
		},
		unset: func(b *BoardConfig) { b.Sort = "" },
	},
	{
		key:       "visible_properties",
		boardOnly: true,
		board: func(b *BoardConfig) (any, bool) {
			return strings.Join(b.VisibleProperties, ", "), len(b.VisibleProperties) > 0
		},
		setBoard: func(b *BoardConfig, v string) error {
			b.VisibleProperties = splitNames(v)
			return nil
		},
		unset: func(b *BoardConfig) { b.VisibleProperties = nil },
	},
	{
		key:       "exclude",
		boardOnly: true,
		board: func(b *BoardConfig) (any, bool) {
			return strings.Join(b.Exclude, ", "), len(b.Exclude) > 0
		},
		setBoard: func(b *BoardConfig, v string) error {
			b.Exclude = splitNames(v)
			return nil
		},
		unset: func(b *BoardConfig) { b.Exclude = nil },
	},
}

func boolField(key string, global func(*Settings) *bool, board func(*BoardConfig) **bool) settingField {
	return settingField{
		key:    key,
		global: func(s *Settings) any { return *global(s) },
		setGlobal: func(s *Settings, v string) error {
			b, err := parseBool(key, v)
			*global(s) = b
			return err
		},
		board: func(b *BoardConfig) (any, bool) { return deref(*board(b)) },
		setBoard: func(b *BoardConfig, v string) error {
			parsed, err := parseBool(key, v)
			if err != nil {
				return err
			}
			*board(b) = &parsed
			return nil
		},
		unset: func(b *BoardConfig) { *board(b) = nil },
	}
}

func deref[T any](p *T) (any, bool) {
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}

// SettingKeys lists every key accepted by Get, SetSetting and UnsetSetting.
func SettingKeys() []string {
	keys := make([]string, len(settingFields))
	for i, f := range settingFields {
		keys[i] = f.key
	}
	return keys
}

func lookupField(key string) (settingField, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, f := range settingFields {
		if f.key == key {
			return f, nil
		}
	}
	return settingField{}, fmt.Errorf("unknown setting %q. Valid settings are %s", key, quoteList(SettingKeys()))
}

// Resolve merges the workspace settings with the overrides of the named
// board.
func (ws *Workspace) Resolve(name string) (Effective, error) {
	name, b, err := ws.Board(name)
	if err != nil {
		return Effective{}, err
	}

	settings := DefaultSettings()
	if ws.Settings != nil {
		settings = *ws.Settings
	}
	eff := Effective{
		Board:             name,
		Settings:          settings,
		Folder:            b.Folder,
		Exclude:           append([]string(nil), b.Exclude...),
		ColumnOrder:       append([]string(nil), b.ColumnOrder...),
		VisibleProperties: append([]string(nil), b.VisibleProperties...),
		Sort:              b.Sort,
		overridden:        make(map[string]bool),
	}
	if eff.Sort == "" {
		eff.Sort = SortTitle
	}

	if b.GroupBy != nil {
		eff.GroupBy = *b.GroupBy
	}
	if b.CardSize != nil {
		eff.CardSize = *b.CardSize
	}
	if b.MaxCardsPerColumn != nil {
		eff.MaxCardsPerColumn = *b.MaxCardsPerColumn
	}
	if b.Draggable != nil {
		eff.Draggable = *b.Draggable
	}
	if b.ShowCardCount != nil {
		eff.ShowCardCount = *b.ShowCardCount
	}
	if b.CompactMode != nil {
		eff.CompactMode = *b.CompactMode
	}
	if b.ShowColors != nil {
		eff.ShowColors = *b.ShowColors
	}
	if b.NewFileFolder != nil {
		eff.NewFileFolder = *b.NewFileFolder
	}
	if b.ConfirmDelete != nil {
		eff.ConfirmDelete = *b.ConfirmDelete
	}
	if b.UndoDelay != nil {
		eff.UndoDelay = *b.UndoDelay
	}

	for _, f := range settingFields {
		if f.board == nil {
			continue
		}
		if _, set := f.board(b); set {
			eff.overridden[f.key] = true
		}
	}
	return eff, nil
}

// EffectiveSettings lists every setting for a board. An empty board name
// lists the workspace defaults.
func (ws *Workspace) EffectiveSettings(board string) ([]EffectiveSetting, error) {
	out := make([]EffectiveSetting, 0, len(settingFields))
	for _, f := range settingFields {
		if board == "" && f.boardOnly {
			continue
		}
		s, err := ws.Setting(board, f.key)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Setting resolves one key for a board, or the workspace default when board
// is empty.
func (ws *Workspace) Setting(board, key string) (EffectiveSetting, error) {
	f, err := lookupField(key)
	if err != nil {
		return EffectiveSetting{}, err
	}
	settings := ws.settings()

	if board == "" {
		if f.boardOnly {
			return EffectiveSetting{}, fmt.Errorf("setting %q is per board; pass --board", f.key)
		}
		return EffectiveSetting{Key: f.key, Value: formatValue(f.global(settings))}, nil
	}

	_, b, err := ws.Board(board)
	if err != nil {
		return EffectiveSetting{}, err
	}
	if f.board != nil {
		if v, set := f.board(b); set {
			return EffectiveSetting{Key: f.key, Value: formatValue(v), Overridden: true}, nil
		}
	}
	if f.global == nil {
		return EffectiveSetting{Key: f.key}, nil
	}
	return EffectiveSetting{Key: f.key, Value: formatValue(f.global(settings))}, nil
}

// SetSetting validates and stores a setting, globally when board is empty,
// then saves the config.
func (cfg *Config) SetSetting(board, key, value string) error {
	ws, err := cfg.ActiveWorkspace()
	if err != nil {
		return err
	}
	f, err := lookupField(key)
	if err != nil {
		return err
	}

	if board == "" {
		if f.boardOnly {
			return fmt.Errorf("setting %q is per board; pass --board", f.key)
		}
		settings := *ws.settings()
		if err := f.setGlobal(&settings, value); err != nil {
			return err
		}
		ws.Settings = &settings
		return cfg.Save()
	}

	_, b, err := ws.Board(board)
	if err != nil {
		return err
	}
	if f.setBoard == nil {
		return fmt.Errorf("setting %q cannot be overridden per board", f.key)
	}
	next := *b
	if err := f.setBoard(&next, value); err != nil {
		return err
	}
	*b = next
	return cfg.Save()
}

// UnsetSetting drops a board override so the board inherits the workspace
// value again. With no board it resets the workspace value to its default.
func (cfg *Config) UnsetSetting(board, key string) error {
	ws, err := cfg.ActiveWorkspace()
	if err != nil {
		return err
	}
	f, err := lookupField(key)
	if err != nil {
		return err
	}

	if board == "" {
		if f.boardOnly {
			return fmt.Errorf("setting %q is per board; pass --board", f.key)
		}
		defaults := DefaultSettings()
		settings := *ws.settings()
		if err := f.setGlobal(&settings, formatValue(f.global(&defaults))); err != nil {
			return err
		}
		ws.Settings = &settings
		return cfg.Save()
	}

	_, b, err := ws.Board(board)
	if err != nil {
		return err
	}
	if f.unset == nil {
		return fmt.Errorf("setting %q cannot be overridden per board", f.key)
	}
	f.unset(b)
	return cfg.Save()
}

func (ws *Workspace) settings() *Settings {
	if ws.Settings == nil {
		defaults := DefaultSettings()
		ws.Settings = &defaults
	}
	return ws.Settings
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case time.Duration:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func parseGroupBy(v string) (string, error) {
	name := strings.TrimSpace(v)
	if name == "" {
		return "", fmt.Errorf("group_by cannot be empty")
	}
	return name, nil
}

func parseChoice(label, v string, valid []string) (string, error) {
	choice := strings.ToLower(strings.TrimSpace(v))
	for _, option := range valid {
		if option == choice {
			return choice, nil
		}
	}
	return "", fmt.Errorf("invalid %s: %q. Please choose from %s.", label, v, quoteList(valid))
}

func parseBool(key, v string) (bool, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, fmt.Errorf("invalid value for %s: %q is not a boolean", key, v)
	}
	return b, nil
}

func parseLimit(v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("max_cards_per_column must be a non-negative integer, got %q", v)
	}
	return n, nil
}

func parseDelay(v string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid undo_delay %q: %w", v, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("undo_delay cannot be negative")
	}
	return d, nil
}

func splitNames(v string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(v, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, name := range values {
		quoted[i] = fmt.Sprintf("'%s'", name)
	}

	switch len(quoted) {
	case 0:
		return ""
	case 1:
		return quoted[0]
	}
	return strings.Join(quoted[:len(quoted)-1], ", ") + ", or " + quoted[len(quoted)-1]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

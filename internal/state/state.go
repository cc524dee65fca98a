package state

import (
	"errors"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/Paintersrp/an-kanban/internal/cards"
	"github.com/Paintersrp/an-kanban/internal/config"
	"github.com/Paintersrp/an-kanban/internal/constants"
	"github.com/Paintersrp/an-kanban/internal/feed"
	"github.com/Paintersrp/an-kanban/internal/handler"
	"github.com/Paintersrp/an-kanban/internal/logging"
)

type State struct {
	Config        *config.Config
	Workspace     *config.Workspace
	WorkspaceName string
	Handler       *handler.FileHandler
	Cards         *cards.Manager
	Feed          *feed.Feed
	Board         config.Effective
	Logger        *log.Logger
	Home          string
	Vault         string
	Watcher       *VaultWatcher
	Status        *StatusLine

	logFile io.Closer
}

func NewState(workspaceOverride string) (*State, error) {
	home, err := GetHomeDir()
	if err != nil {
		return nil, err
	}

	cfg, err := LoadConfig(home)
	if err != nil {
		return nil, err
	}

	if workspaceOverride != "" {
		if err := cfg.ActivateWorkspace(workspaceOverride); err != nil {
			return nil, err
		}
	}

	ws, err := cfg.ActiveWorkspace()
	if err != nil {
		return nil, err
	}

	logger, logFile, err := newLogger(home)
	if err != nil {
		return nil, err
	}

	h := handler.NewFileHandler(ws.VaultDir)
	s := &State{
		Config:        cfg,
		Workspace:     ws,
		WorkspaceName: cfg.CurrentWorkspace,
		Handler:       h,
		Cards:         cards.NewManager(h, logger),
		Logger:        logger,
		Home:          home,
		Vault:         ws.VaultDir,
		Status:        &StatusLine{},
		logFile:       logFile,
	}

	if _, err := s.SelectBoard(viper.GetString("board")); err != nil {
		_ = s.Close()
		return nil, err
	}

	return s, nil
}

// SelectBoard points the feed at the named board and returns its resolved
// settings. An empty name selects the first board.
func (s *State) SelectBoard(name string) (config.Effective, error) {
	eff, err := s.Workspace.Resolve(name)
	if err != nil {
		return config.Effective{}, err
	}

	scope := feed.Scope{Folder: eff.Folder, Exclude: eff.Exclude, Sort: eff.Sort}
	if s.Feed == nil {
		s.Feed = feed.New(s.Handler, scope, s.Logger.WithField("board", eff.Board))
	} else {
		s.Feed.SetScope(scope)
	}
	s.Board = eff
	return eff, nil
}

// StartWatcher begins watching the vault and routes changes into the feed.
// It is a no-op once a watcher is running.
func (s *State) StartWatcher() (*VaultWatcher, error) {
	if s.Watcher != nil {
		return s.Watcher, nil
	}

	watcher, err := NewVaultWatcher(s.Vault)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault watcher: %w", err)
	}

	fd := s.Feed
	watcher.OnChange(func(rel string) {
		if fd != nil {
			fd.Invalidate(rel)
		}
	})
	watcher.OnClose(func() {
		if fd != nil {
			_ = fd.Close()
		}
	})

	s.Watcher = watcher
	return watcher, nil
}

func GetHomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory. err: %s", err)
	}

	return home, nil
}

func LoadConfig(home string) (*config.Config, error) {
	viper.AddConfigPath(home + constants.ConfigDir)
	viper.SetConfigName(constants.ConfigFile)
	viper.SetConfigType(constants.ConfigFileType)
	viper.ReadInConfig()

	err := config.EnsureConfigExists(home)
	if err != nil {
		return nil, err
	}

	return config.Load(home)
}

// newLogger writes to the log file next to the config, so log lines never
// land on a terminal owned by the board UI. Level and format come from
// viper, which holds the --log-level flag over the config defaults.
func newLogger(home string) (*log.Logger, io.Closer, error) {
	var out io.Writer = os.Stderr
	var closer io.Closer

	if f, err := logging.OpenFile(config.GetConfigDir(home)); err == nil {
		out = f
		closer = f
	}

	logger, err := logging.New(viper.GetString("log_level"), viper.GetString("log_format"), out)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, nil, err
	}
	return logger, closer, nil
}

// Close releases resources associated with the state, including the vault
// watcher, the feed and the log file.
func (s *State) Close() error {
	if s == nil {
		return nil
	}

	var errs []error
	if s.Watcher != nil {
		if err := s.Watcher.Close(); err != nil {
			errs = append(errs, err)
		}
		s.Watcher = nil
	}
	if s.Feed != nil {
		if err := s.Feed.Close(); err != nil && !errors.Is(err, feed.ErrClosed) {
			errs = append(errs, err)
		}
		s.Feed = nil
	}
	if s.logFile != nil {
		if err := s.logFile.Close(); err != nil {
			errs = append(errs, err)
		}
		s.logFile = nil
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

package constants

const (
	Version        = `0.1.0`
	AppName        = `an-kanban`
	ConfigFile     = `config`
	ConfigFileType = `yaml`
	ConfigDir      = `/.an-kanban/`

	// EmptyBoardHint is shown when a board has no columns to render.
	EmptyBoardHint = `No columns found. Make sure the column property "%s" exists in your files.`
)

package cards

import (
	"errors"
	"fmt"
)

// ErrEmptyTitle is returned when a title is empty after sanitisation.
var ErrEmptyTitle = errors.New("title is empty")

// CreationError reports a failed card create.
type CreationError struct {
	Path string
	Err  error
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("create card %q: %v", e.Path, e.Err)
}

func (e *CreationError) Unwrap() error { return e.Err }

// RenameError reports a failed rename.
type RenameError struct {
	ID     string
	Target string
	Err    error
}

func (e *RenameError) Error() string {
	return fmt.Sprintf("rename card %q to %q: %v", e.ID, e.Target, e.Err)
}

func (e *RenameError) Unwrap() error { return e.Err }

// DeleteError reports a failed delete.
type DeleteError struct {
	ID  string
	Err error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("delete card %q: %v", e.ID, e.Err)
}

func (e *DeleteError) Unwrap() error { return e.Err }

// PropertyWriteError reports a failed front matter write.
type PropertyWriteError struct {
	ID       string
	Property string
	Err      error
}

func (e *PropertyWriteError) Error() string {
	return fmt.Sprintf("set %q on card %q: %v", e.Property, e.ID, e.Err)
}

func (e *PropertyWriteError) Unwrap() error { return e.Err }

// FolderConflictError reports a target folder path occupied by a file.
type FolderConflictError struct {
	Folder string
	Err    error
}

func (e *FolderConflictError) Error() string {
	return fmt.Sprintf("path exists but is not a folder: %s", e.Folder)
}

func (e *FolderConflictError) Unwrap() error { return e.Err }

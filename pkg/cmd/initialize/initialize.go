/*
Copyright © 2024 Ryan Painter paintersrp@gmail.com

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package initialize

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/an-kanban/internal/config"
)

func NewCmdInit(home string) *cobra.Command {
	var editor string
	var groupBy string

	cmd := &cobra.Command{
		Use:     "init <vault>",
		Aliases: []string{"i", "initialize"},
		Short:   "Point the active workspace at a vault",
		Long: heredoc.Doc(`
			Creates the config file if needed and stores the vault directory of
			the active workspace. The directory is created when it does not
			exist yet.
		`),
		Example: heredoc.Doc(`
			kb init ~/notes
			kb init ~/notes --editor nvim --group-by stage
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vault, err := filepath.Abs(expandHome(home, args[0]))
			if err != nil {
				return err
			}
			if err := os.MkdirAll(vault, 0o755); err != nil {
				return fmt.Errorf("failed to create vault directory: %w", err)
			}

			if err := config.EnsureConfigExists(home); err != nil {
				var initErr *config.ConfigInitError
				if !errors.As(err, &initErr) {
					return err
				}
			}

			cfg, err := config.Load(home)
			if err != nil {
				return err
			}
			ws, err := cfg.ActiveWorkspace()
			if err != nil {
				return err
			}

			ws.VaultDir = vault
			if editor = strings.TrimSpace(editor); editor != "" {
				if err := config.ValidateEditor(editor); err != nil {
					return err
				}
				ws.Editor = editor
			}
			if err := cfg.Save(); err != nil {
				return err
			}
			if strings.TrimSpace(groupBy) != "" {
				if err := cfg.SetSetting("", "group_by", groupBy); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Workspace %q now uses vault %s\n", cfg.CurrentWorkspace, vault)
			return nil
		},
	}

	cmd.Flags().StringVar(&editor, "editor", "", "Editor used to open cards")
	cmd.Flags().StringVar(&groupBy, "group-by", "", "Property that groups cards into columns")

	return cmd
}

func expandHome(home, path string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

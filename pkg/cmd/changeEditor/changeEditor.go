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
package changeEditor

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/an-kanban/internal/config"
)

func NewCmdChangeEditor(c *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "change-editor [editor]",
		Short: "Change the editor cards open in",
		Long: heredoc.Doc(`
			Updates the editor the board view and "kb card open" use for the
			active workspace and saves it to the configuration file.
		`),
		Example: heredoc.Doc(`
			# Open cards in vim
			kb change-editor vim
		`),
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			names := make([]string, 0, len(config.ValidEditors))
			for name := range config.ValidEditors {
				names = append(names, name)
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.ChangeEditor(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Editor set to %s\n", args[0])
			return nil
		},
	}

	return cmd
}

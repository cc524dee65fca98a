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
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Paintersrp/an-kanban/internal/config"
	"github.com/Paintersrp/an-kanban/internal/state"
	"github.com/Paintersrp/an-kanban/pkg/cmd/root"
)

// Globals are the flags that shape the state every command runs against.
// They are read before cobra parses the command line.
type Globals struct {
	Workspace string
	Board     string
	LogLevel  string
}

// ParseGlobals pulls the global flags out of args, ignoring everything the
// subcommands define.
func ParseGlobals(args []string) Globals {
	var g Globals

	flags := pflag.NewFlagSet("an-kanban", pflag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.SetOutput(io.Discard)
	flags.StringVarP(&g.Workspace, "workspace", "w", "", "")
	flags.StringVarP(&g.Board, "board", "b", "", "")
	flags.StringVar(&g.LogLevel, "log-level", "", "")
	flags.BoolP("help", "h", false, "")

	_ = flags.Parse(args)
	return g
}

func Execute() error {
	g := ParseGlobals(os.Args[1:])
	if g.Board != "" {
		viper.Set("board", g.Board)
	}
	if g.LogLevel != "" {
		viper.Set("log_level", g.LogLevel)
	}

	s, err := state.NewState(g.Workspace)
	if err != nil {
		var initErr *config.ConfigInitError
		if !errors.As(err, &initErr) {
			return err
		}

		home, homeErr := state.GetHomeDir()
		if homeErr != nil {
			return homeErr
		}
		fmt.Fprintf(os.Stderr, "Configuration incomplete: %v\nRun `kb init <vault>` to get started.\n\n", err)
		return root.NewCmdSetup(home).Execute()
	}
	defer s.Close()

	return root.NewCmdRoot(s).Execute()
}
